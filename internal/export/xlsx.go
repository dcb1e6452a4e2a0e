package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/lucerolu/Dshb-dm/internal/compras"
)

// StatementFilename builds the download name for the statement export,
// stamped with the cutoff date.
func StatementFilename(cutoff time.Time) string {
	return fmt.Sprintf("estado_cuenta_%s.xlsx", cutoff.Format("20060102"))
}

// WritePivotXLSX renders a pivot to a single-sheet workbook, row totals
// included, and returns the serialized file.
func WritePivotXLSX(p *compras.Pivot, sheet, rowHeader string) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	if err := setCell(f, sheet, 1, 1, rowHeader); err != nil {
		return nil, err
	}
	for i, col := range p.ColKeys {
		if err := setCell(f, sheet, i+2, 1, col); err != nil {
			return nil, err
		}
	}
	if err := setCell(f, sheet, len(p.ColKeys)+2, 1, "Total"); err != nil {
		return nil, err
	}

	for ri, row := range p.RowKeys {
		r := ri + 2
		if err := setCell(f, sheet, 1, r, row); err != nil {
			return nil, err
		}
		for ci, col := range p.ColKeys {
			value, _ := p.Value(row, col).Float64()
			if err := setCell(f, sheet, ci+2, r, value); err != nil {
				return nil, err
			}
		}
		total, _ := p.RowTotal(row).Float64()
		if err := setCell(f, sheet, len(p.ColKeys)+2, r, total); err != nil {
			return nil, err
		}
	}

	totalsRow := len(p.RowKeys) + 2
	if err := setCell(f, sheet, 1, totalsRow, "Total"); err != nil {
		return nil, err
	}
	for ci, col := range p.ColKeys {
		value, _ := p.ColTotal(col).Float64()
		if err := setCell(f, sheet, ci+2, totalsRow, value); err != nil {
			return nil, err
		}
	}
	grand, _ := p.GrandTotal().Float64()
	if err := setCell(f, sheet, len(p.ColKeys)+2, totalsRow, grand); err != nil {
		return nil, err
	}

	return f.WriteToBuffer()
}

func setCell(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}
