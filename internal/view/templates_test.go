package view

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestCurrency(t *testing.T) {
	assert.Equal(t, "$1,234,567.89", Currency(decimal.RequireFromString("1234567.89")))
	assert.Equal(t, "$0.00", Currency(decimal.Zero))
	assert.Equal(t, "$-500.00", Currency(decimal.NewFromInt(-500)))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "75.00%", Percent(75))
	assert.Equal(t, "-12.50%", Percent(-12.5))
}
