// Package compras holds the purchase domain: upstream rows, the period
// window logic, and the month/division/branch aggregation every report
// view consumes.
package compras

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseRecord is one pre-aggregated purchase row from the upstream
// API: one row per account, branch and month. The dashboard never
// deduplicates or persists these.
type PurchaseRecord struct {
	Branch      string          `json:"sucursal"`
	AccountCode string          `json:"codigo_normalizado"`
	AccountID   string          `json:"cuenta_id"`
	Folio       string          `json:"folio"`
	Amount      decimal.Decimal `json:"monto"`
	PeriodDate  time.Time       `json:"mes"`
	Linked      bool            `json:"ligado_sistema"`
}

// LastUpdate reports when the upstream dataset was refreshed.
type LastUpdate struct {
	Date        time.Time `json:"fecha"`
	Description string    `json:"descripcion"`
}
