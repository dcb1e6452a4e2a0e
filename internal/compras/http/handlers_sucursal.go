package comprashttp

import (
	"bytes"
	"context"
	"net/http"

	"github.com/lucerolu/Dshb-dm/internal/compras"
	"github.com/lucerolu/Dshb-dm/internal/export"
	"github.com/lucerolu/Dshb-dm/internal/svg"
	"github.com/lucerolu/Dshb-dm/internal/view"
)

// handleSucursal renders Compra por Sucursal: the branch-by-month
// pivot, the stacked monthly composition and each branch's share of
// the period total.
func (h *Handler) handleSucursal(w http.ResponseWriter, r *http.Request) {
	f, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data := h.loadPageData(ctx, f)
	vm := sucursalVM{Shell: data.shell}

	pivot := compras.MonthlyByBranch(data.scoped)
	vm.Pivot = NewPivotVM(pivot, "Sucursal")

	if !pivot.Empty() {
		series := make([]svg.Series, 0, len(pivot.RowKeys))
		for _, branch := range pivot.RowKeys {
			values := make([]float64, 0, len(pivot.ColKeys))
			for _, col := range pivot.ColKeys {
				v, _ := pivot.Value(branch, col).Float64()
				values = append(values, v)
			}
			series = append(series, svg.Series{
				Label:  branch,
				Color:  h.cfg.BranchStyle(branch).Color,
				Values: values,
			})
		}
		chart, err := svg.StackedBars(svg.DefaultWidth, svg.DefaultHeight, series, pivot.ColKeys, svg.BarOpts{
			Title:       "Total de Compras por Mes y Sucursal",
			Description: "Composición mensual del total por sucursal",
		})
		if err != nil {
			h.handleServerError(w, "render branch chart", err)
			return
		}
		vm.MonthlyChart = chart
	}

	grand := pivot.GrandTotal()
	for _, branch := range pivot.RowKeys {
		total := pivot.RowTotal(branch)
		share := 0.0
		if !grand.IsZero() {
			ratio, _ := total.Div(grand).Float64()
			share = ratio * 100
		}
		style := h.cfg.BranchStyle(branch)
		vm.Shares = append(vm.Shares, DivisionTotalVM{
			Division: branch,
			Abbrev:   style.Abbrev,
			Color:    style.Color,
			Amount:   view.Currency(total),
			Pct:      view.Percent(share),
		})
	}

	h.render(w, r, "pages/sucursal.html", "Compra por Sucursal", vm)
}

// handleSucursalCSV streams the branch-by-month pivot.
func (h *Handler) handleSucursalCSV(w http.ResponseWriter, r *http.Request) {
	f, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data := h.loadPageData(ctx, f)
	pivot := compras.MonthlyByBranch(data.scoped)
	h.streamCSV(w, "resumen_mensual_sucursal.csv", func(buf *bytes.Buffer) error {
		return export.WritePivotCSV(buf, pivot, "Sucursal")
	})
}

// handleSucursalXLSX streams the branch-by-month pivot as a workbook.
func (h *Handler) handleSucursalXLSX(w http.ResponseWriter, r *http.Request) {
	f, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data := h.loadPageData(ctx, f)
	pivot := compras.MonthlyByBranch(data.scoped)
	h.streamXLSX(w, "resumen_mensual_sucursal.xlsx", pivot, "Sucursales", "Sucursal")
}
