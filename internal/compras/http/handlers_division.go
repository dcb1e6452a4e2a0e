package comprashttp

import (
	"bytes"
	"context"
	"net/http"

	"github.com/lucerolu/Dshb-dm/internal/compras"
	"github.com/lucerolu/Dshb-dm/internal/export"
	"github.com/lucerolu/Dshb-dm/internal/svg"
)

// handleDivision renders Compra por División: the share ring, the
// division-by-month pivot, the stacked monthly composition and the
// branch-by-division table.
func (h *Handler) handleDivision(w http.ResponseWriter, r *http.Request) {
	f, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data := h.loadPageData(ctx, f)
	vm := divisionVM{Shell: data.shell}

	totals := compras.TotalsByDivision(data.scoped, h.cfg)
	vm.DivisionTotals = NewDivisionTotals(totals)
	if len(totals) > 0 {
		slices := make([]svg.Slice, 0, len(totals))
		for _, t := range totals {
			v, _ := t.Amount.Float64()
			slices = append(slices, svg.Slice{Label: t.Division, Color: t.Color, Value: v})
		}
		ring, err := svg.Donut(svg.DefaultHeight, slices, svg.DonutOpts{
			Title:       "Distribución del total anual comprado por División",
			CenterLabel: data.shell.PeriodTitle,
		})
		if err != nil {
			h.handleServerError(w, "render division ring", err)
			return
		}
		vm.DivisionChart = ring
	}

	pivot := compras.MonthlyByDivision(data.scoped, h.cfg)
	vm.Pivot = NewPivotVM(pivot, "División")
	if !pivot.Empty() {
		series := make([]svg.Series, 0, len(pivot.RowKeys))
		for _, division := range pivot.RowKeys {
			style := h.cfg.DivisionStyle(division)
			values := make([]float64, 0, len(pivot.ColKeys))
			for _, col := range pivot.ColKeys {
				v, _ := pivot.Value(division, col).Float64()
				values = append(values, v)
			}
			series = append(series, svg.Series{Label: division, Color: style.Color, Values: values})
		}
		stacked, err := svg.StackedBars(svg.DefaultWidth, svg.DefaultHeight, series, pivot.ColKeys, svg.BarOpts{
			Title:       "Evolución mensual de compras por División",
			Description: "Composición mensual del gasto por división",
		})
		if err != nil {
			h.handleServerError(w, "render stacked chart", err)
			return
		}
		vm.StackedChart = stacked
	}

	vm.BranchPivot = NewPivotVM(compras.BranchByDivision(data.scoped, h.cfg), "Sucursal")

	h.render(w, r, "pages/division.html", "Compra por División", vm)
}

// handleDivisionCSV streams the division-by-month pivot.
func (h *Handler) handleDivisionCSV(w http.ResponseWriter, r *http.Request) {
	f, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data := h.loadPageData(ctx, f)
	pivot := compras.MonthlyByDivision(data.scoped, h.cfg)
	h.streamCSV(w, "compra_por_division.csv", func(buf *bytes.Buffer) error {
		return export.WritePivotCSV(buf, pivot, "División")
	})
}
