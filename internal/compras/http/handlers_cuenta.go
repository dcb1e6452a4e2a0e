package comprashttp

import (
	"bytes"
	"context"
	"net/http"

	"github.com/lucerolu/Dshb-dm/internal/compras"
	"github.com/lucerolu/Dshb-dm/internal/export"
	"github.com/lucerolu/Dshb-dm/internal/svg"
)

const topAccounts = 15

// handleCuenta renders Compra por Cuenta: the annual ranking per
// account with its branch breakdown, plus the account-by-month pivot.
func (h *Handler) handleCuenta(w http.ResponseWriter, r *http.Request) {
	f, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data := h.loadPageData(ctx, f)
	vm := cuentaVM{Shell: data.shell}

	byBranch := compras.AccountByBranch(data.scoped, h.cfg)
	vm.ByBranch = NewPivotVM(byBranch, "Cuenta - Sucursal")
	vm.ByMonth = NewPivotVM(compras.AccountByMonth(data.scoped, h.cfg), "Cuenta - Sucursal")

	if !byBranch.Empty() {
		rows := byBranch.RowKeys
		if len(rows) > topAccounts {
			rows = rows[:topAccounts]
		}
		chart, err := svg.Bars(svg.DefaultWidth, svg.DefaultHeight, []svg.Series{
			{Label: "Total anual", Color: "#1f77b4", Values: floats(rows, byBranch, true)},
		}, rows, svg.BarOpts{
			Title:       "Compra Total Anual por Cuenta",
			Description: "Cuentas con mayor gasto en " + data.shell.PeriodTitle,
			HideLegend:  true,
		})
		if err != nil {
			h.handleServerError(w, "render account chart", err)
			return
		}
		vm.TopChart = chart
	}

	h.render(w, r, "pages/cuenta.html", "Compra por Cuenta", vm)
}

// handleCuentaCSV streams the account-by-month pivot.
func (h *Handler) handleCuentaCSV(w http.ResponseWriter, r *http.Request) {
	f, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data := h.loadPageData(ctx, f)
	pivot := compras.AccountByMonth(data.scoped, h.cfg)
	h.streamCSV(w, "compras_por_mes_por_cuenta.csv", func(buf *bytes.Buffer) error {
		return export.WritePivotCSV(buf, pivot, "Cuenta - Sucursal")
	})
}

// handleCuentaXLSX streams the account-by-month pivot as a workbook.
func (h *Handler) handleCuentaXLSX(w http.ResponseWriter, r *http.Request) {
	f, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data := h.loadPageData(ctx, f)
	pivot := compras.AccountByMonth(data.scoped, h.cfg)
	h.streamXLSX(w, "compras_por_mes_por_cuenta.xlsx", pivot, "Cuentas", "Cuenta - Sucursal")
}
