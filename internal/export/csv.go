// Package export serialises the dashboard tables for download, as CSV
// for the purchase views and XLSX for the statement tables.
package export

import (
	"encoding/csv"
	"io"

	"github.com/shopspring/decimal"

	"github.com/lucerolu/Dshb-dm/internal/compras"
)

// WriteMonthlyCSV emits the month-over-month summary as CSV.
func WriteMonthlyCSV(w io.Writer, comparisons []compras.MonthlyComparison) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Mes", "Total", "Diferencia", "% Cambio"}); err != nil {
		return err
	}
	for _, cmp := range comparisons {
		if err := writer.Write([]string{
			cmp.Label,
			formatAmount(cmp.Amount),
			formatAmount(cmp.Delta),
			formatAmount(cmp.PctChange),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WritePivotCSV emits a pivot with row totals and a closing totals row.
// The first header cell names the row dimension.
func WritePivotCSV(w io.Writer, p *compras.Pivot, rowHeader string) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := append([]string{rowHeader}, p.ColKeys...)
	header = append(header, "Total")
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, row := range p.RowKeys {
		record := make([]string, 0, len(p.ColKeys)+2)
		record = append(record, row)
		for _, col := range p.ColKeys {
			record = append(record, formatAmount(p.Value(row, col)))
		}
		record = append(record, formatAmount(p.RowTotal(row)))
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	totals := make([]string, 0, len(p.ColKeys)+2)
	totals = append(totals, "Total")
	for _, col := range p.ColKeys {
		totals = append(totals, formatAmount(p.ColTotal(col)))
	}
	totals = append(totals, formatAmount(p.GrandTotal()))
	if err := writer.Write(totals); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
