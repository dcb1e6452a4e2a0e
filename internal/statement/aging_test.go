package statement

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucerolu/Dshb-dm/internal/compras"
	"github.com/lucerolu/Dshb-dm/internal/refdata"
)

const testConfigJSON = `{
	"divisiones": {
		"Refacciones": {"color": "#FF0000", "abreviatura": "REF", "codigos": ["600100"]},
		"Servicio":    {"color": "#00FF00", "abreviatura": "SER", "codigos": ["600200"]}
	},
	"sucursales": {
		"Matriz": {"color": "#0000FF", "abreviatura": "MTZ"},
		"Norte":  {"color": "#00FFFF", "abreviatura": "NTE"}
	}
}`

func testConfig(t *testing.T) *refdata.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config_colores.json")
	require.NoError(t, os.WriteFile(path, []byte(testConfigJSON), 0o600))
	cfg, err := refdata.Load(path, refdata.PolicyDrop)
	require.NoError(t, err)
	return cfg
}

var today = time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

func aging(branch, code string, amount int64, due string) compras.AgingRecord {
	d, err := time.Parse("2006-01-02", due)
	if err != nil {
		panic(err)
	}
	return compras.AgingRecord{
		Branch:      branch,
		AccountCode: code,
		DueDate:     d,
		Amount:      decimal.NewFromInt(amount),
	}
}

func TestBucketFor(t *testing.T) {
	cases := map[string]string{
		"2025-03-14": BucketOverdue,
		"2025-03-15": Bucket0to30,
		"2025-04-14": Bucket0to30,
		"2025-04-15": Bucket31to60,
		"2025-05-14": Bucket31to60,
		"2025-05-15": Bucket61to90,
		"2025-06-13": Bucket61to90,
		"2025-06-14": Bucket91Plus,
		"2026-01-01": Bucket91Plus,
	}
	for due, want := range cases {
		d, _ := time.Parse("2006-01-02", due)
		assert.Equal(t, want, BucketFor(d, today), "due %s", due)
	}
}

func TestUsage(t *testing.T) {
	s := compras.Statement{Records: []compras.AgingRecord{
		aging("Matriz", "600100", 30_000_000, "2025-04-01"),
		aging("Norte", "600200", 15_000_000, "2025-05-01"),
	}}
	usage := Usage(s, decimal.NewFromInt(180_000_000))
	assert.True(t, usage.Used.Equal(decimal.NewFromInt(45_000_000)))
	assert.True(t, usage.Available.Equal(decimal.NewFromInt(135_000_000)))
	assert.InDelta(t, 25.0, usage.PctUsed, 0.001)
	assert.InDelta(t, 75.0, usage.PctAvailable, 0.001)
}

func TestUsageZeroLimit(t *testing.T) {
	usage := Usage(compras.Statement{}, decimal.Zero)
	assert.Zero(t, usage.PctUsed)
	assert.Zero(t, usage.PctAvailable)
}

func TestSummarize(t *testing.T) {
	s := compras.Statement{Records: []compras.AgingRecord{
		aging("Matriz", "600100", 100, "2025-03-01"), // overdue
		aging("Matriz", "600100", 200, "2025-03-20"), // within 30
		aging("Matriz", "600100", 300, "2025-05-01"), // 31-60, not in any card
		aging("Matriz", "600100", 400, "2025-07-01"), // beyond 90
	}}
	sum := Summarize(s, today)
	assert.True(t, sum.Overdue.Equal(decimal.NewFromInt(100)))
	assert.True(t, sum.DueWithin30.Equal(decimal.NewFromInt(200)))
	assert.True(t, sum.DueAfter90.Equal(decimal.NewFromInt(400)))
}

func TestNextDue(t *testing.T) {
	s := compras.Statement{Records: []compras.AgingRecord{
		aging("Matriz", "600100", 100, "2025-03-01"),
		aging("Matriz", "600100", 200, "2025-03-20"),
		aging("Matriz", "600100", 300, "2025-04-10"),
	}}
	date, days, ok := NextDue(s, today)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC), date)
	assert.Equal(t, 5, days)

	_, _, ok = NextDue(compras.Statement{Records: []compras.AgingRecord{
		aging("Matriz", "600100", 100, "2025-03-01"),
	}}, today)
	assert.False(t, ok, "only overdue rows means nothing pending")
}

func TestByDueDate(t *testing.T) {
	cfg := testConfig(t)
	s := compras.Statement{Records: []compras.AgingRecord{
		aging("Matriz", "600100", 100, "2025-04-01"),
		aging("Matriz", "600100", 50, "2025-03-01"),
		aging("Norte", "999999", 70, "2025-03-01"),
	}}
	p := ByDueDate(s, cfg)
	assert.Equal(t, []string{"01/03/2025", "01/04/2025"}, p.ColKeys)
	assert.Equal(t, []string{"600100 (REF) - Matriz", "999999 - Norte"}, p.RowKeys)
	assert.True(t, p.Value("600100 (REF) - Matriz", "01/04/2025").Equal(decimal.NewFromInt(100)))
	assert.True(t, p.GrandTotal().Equal(decimal.NewFromInt(220)))
}

func TestByBucket(t *testing.T) {
	cfg := testConfig(t)
	s := compras.Statement{Records: []compras.AgingRecord{
		aging("Matriz", "600100", 100, "2025-03-01"),
		aging("Matriz", "600100", 200, "2025-04-01"),
		aging("Desconocida", "999999", 300, "2025-08-01"),
	}}
	p := ByBucket(s, cfg, today)
	assert.Equal(t, []string{BucketOverdue, Bucket0to30, Bucket91Plus}, p.ColKeys)
	assert.Contains(t, p.RowKeys, "600100 - REF - MTZ")
	assert.Contains(t, p.RowKeys, "999999 - 999999 - Desconocida")
	assert.True(t, p.Value("600100 - REF - MTZ", BucketOverdue).Equal(decimal.NewFromInt(100)))
}

func TestDistribution(t *testing.T) {
	s := compras.Statement{Records: []compras.AgingRecord{
		aging("Matriz", "600100", 25, "2025-03-01"),
		aging("Matriz", "600100", 75, "2025-04-01"),
	}}
	shares := Distribution(s, today)
	require.Len(t, shares, 2)
	assert.Equal(t, BucketOverdue, shares[0].Bucket)
	assert.InDelta(t, 25.0, shares[0].Pct, 0.001)
	assert.Equal(t, Bucket0to30, shares[1].Bucket)
	assert.InDelta(t, 75.0, shares[1].Pct, 0.001)
}

func TestMonthlyDue(t *testing.T) {
	s := compras.Statement{Records: []compras.AgingRecord{
		aging("Matriz", "600100", 10, "2025-03-01"),
		aging("Matriz", "600100", 20, "2025-03-20"),
		aging("Matriz", "600100", 30, "2025-04-05"),
	}}
	p := MonthlyDue(s, today)
	assert.Equal(t, []string{"Marzo 2025", "Abril 2025"}, p.RowKeys)
	assert.True(t, p.Value("Marzo 2025", BucketOverdue).Equal(decimal.NewFromInt(10)))
	assert.True(t, p.Value("Marzo 2025", Bucket0to30).Equal(decimal.NewFromInt(20)))
	assert.True(t, p.Value("Abril 2025", Bucket0to30).Equal(decimal.NewFromInt(30)))
}
