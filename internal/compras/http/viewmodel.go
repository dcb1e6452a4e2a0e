package comprashttp

import (
	"html/template"

	"github.com/lucerolu/Dshb-dm/internal/compras"
	"github.com/lucerolu/Dshb-dm/internal/view"
)

// Shell carries the sidebar content shared by every page: period
// totals, the upstream refresh banner and the branch filter state.
type Shell struct {
	PeriodTitle  string
	PeriodTotal  string
	MonthLabel   string
	MonthTotal   string
	LastUpdate   *LastUpdateVM
	Years        []int
	Year         int
	Period       compras.Period
	Branches     []BranchOptionVM
	DataUnready  bool
	QuerySuffix  string
}

// LastUpdateVM renders the upstream refresh banner.
type LastUpdateVM struct {
	Date        string
	Description string
}

// BranchOptionVM is one entry of the branch multi-select.
type BranchOptionVM struct {
	Name     string
	Abbrev   string
	Color    string
	Selected bool
}

// PivotVM is a formatted pivot table ready for the template.
type PivotVM struct {
	RowHeader string
	Cols      []string
	Rows      []PivotRowVM
	ColTotals []string
	Grand     string
	Empty     bool
}

// PivotRowVM is one formatted pivot row with its total.
type PivotRowVM struct {
	Label string
	Cells []string
	Total string
}

// NewPivotVM formats a pivot with currency cells.
func NewPivotVM(p *compras.Pivot, rowHeader string) PivotVM {
	vm := PivotVM{RowHeader: rowHeader, Cols: p.ColKeys, Empty: p.Empty()}
	for _, row := range p.RowKeys {
		rowVM := PivotRowVM{Label: row, Total: view.Currency(p.RowTotal(row))}
		for _, col := range p.ColKeys {
			rowVM.Cells = append(rowVM.Cells, view.Currency(p.Value(row, col)))
		}
		vm.Rows = append(vm.Rows, rowVM)
	}
	for _, col := range p.ColKeys {
		vm.ColTotals = append(vm.ColTotals, view.Currency(p.ColTotal(col)))
	}
	vm.Grand = view.Currency(p.GrandTotal())
	return vm
}

// CompareRowVM is one line of the month-over-month table. Trend is
// "up", "down" or "flat" and drives the row tint.
type CompareRowVM struct {
	Month string
	Total string
	Delta string
	Pct   string
	Trend string
}

// NewCompareRows formats the month-over-month comparison with the
// direction markers the comparative table colors by.
func NewCompareRows(comparisons []compras.MonthlyComparison) []CompareRowVM {
	rows := make([]CompareRowVM, 0, len(comparisons))
	for _, cmp := range comparisons {
		row := CompareRowVM{
			Month: cmp.Label,
			Total: view.Currency(cmp.Amount),
			Delta: view.Currency(cmp.Delta),
			Trend: "flat",
		}
		pct, _ := cmp.PctChange.Float64()
		row.Pct = view.Percent(pct)
		switch cmp.Delta.Sign() {
		case 1:
			row.Trend = "up"
			row.Delta += " ⬆"
			row.Pct += " ⬆"
		case -1:
			row.Trend = "down"
			row.Delta += " ⬇"
			row.Pct += " ⬇"
		}
		rows = append(rows, row)
	}
	return rows
}

// DivisionTotalVM is one row of the division share table.
type DivisionTotalVM struct {
	Division string
	Abbrev   string
	Color    string
	Amount   string
	Pct      string
}

// NewDivisionTotals formats the division share breakdown.
func NewDivisionTotals(totals []compras.DivisionTotal) []DivisionTotalVM {
	rows := make([]DivisionTotalVM, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, DivisionTotalVM{
			Division: t.Division,
			Abbrev:   t.Abbrev,
			Color:    t.Color,
			Amount:   view.Currency(t.Amount),
			Pct:      view.Percent(t.Pct),
		})
	}
	return rows
}

// resumenVM backs the Resumen General page.
type resumenVM struct {
	Shell          Shell
	TrendChart     template.HTML
	DeltaChart     template.HTML
	DivisionChart  template.HTML
	MonthlyTable   PivotVM
	CompareRows    []CompareRowVM
	DivisionTotals []DivisionTotalVM
}

// divisionVM backs the Compra por División page.
type divisionVM struct {
	Shell          Shell
	StackedChart   template.HTML
	DivisionChart  template.HTML
	Pivot          PivotVM
	BranchPivot    PivotVM
	DivisionTotals []DivisionTotalVM
}

// cuentaVM backs the Compra por Cuenta page.
type cuentaVM struct {
	Shell       Shell
	TopChart    template.HTML
	ByBranch    PivotVM
	ByMonth     PivotVM
}

// sucursalVM backs the Compra por Sucursal page.
type sucursalVM struct {
	Shell        Shell
	MonthlyChart template.HTML
	Pivot        PivotVM
	Shares       []DivisionTotalVM
}

// vistaVM backs the single-branch drilldown page.
type vistaVM struct {
	Shell          Shell
	Branch         string
	BranchColor    string
	TrendChart     template.HTML
	CompareRows    []CompareRowVM
	DivisionTotals []DivisionTotalVM
	AccountPivot   PivotVM
}

// ligadoVM backs the Estado de Ligado page.
type ligadoVM struct {
	Shell          Shell
	LinkedTotal    string
	UnlinkedTotal  string
	LinkedPct      string
	ComparisonBars template.HTML
	UnlinkedPivot  PivotVM
}
