package comprashttp

import (
	"bytes"
	"context"
	"net/http"

	"github.com/lucerolu/Dshb-dm/internal/compras"
	"github.com/lucerolu/Dshb-dm/internal/export"
	"github.com/lucerolu/Dshb-dm/internal/svg"
)

// handleResumen renders the Resumen General page: period cards, the
// monthly trend, the month totals table, the month-over-month
// comparison and the division share ring.
func (h *Handler) handleResumen(w http.ResponseWriter, r *http.Request) {
	f, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data := h.loadPageData(ctx, f)
	vm := resumenVM{Shell: data.shell}

	points := compras.MonthlyTotals(data.scoped)
	comparisons := compras.MonthOverMonth(points)
	vm.CompareRows = NewCompareRows(comparisons)

	if len(points) > 0 {
		labels := make([]string, 0, len(points))
		values := make([]float64, 0, len(points))
		deltas := make([]float64, 0, len(comparisons))
		for i, p := range points {
			labels = append(labels, p.Label)
			v, _ := p.Amount.Float64()
			values = append(values, v)
			d, _ := comparisons[i].Delta.Float64()
			deltas = append(deltas, d)
		}
		trend, err := svg.Line(svg.DefaultWidth, svg.DefaultHeight, values, labels, svg.LineOpts{
			Title:       "Evolución mensual del total comprado",
			Description: "Total comprado por mes en " + data.shell.PeriodTitle,
			ShowDots:    true,
		})
		if err != nil {
			h.handleServerError(w, "render trend chart", err)
			return
		}
		vm.TrendChart = trend

		delta, err := svg.Bars(svg.DefaultWidth, svg.DefaultHeight, []svg.Series{
			{Label: "Diferencia", Color: "#f81515", Values: deltas},
		}, labels, svg.BarOpts{
			Title:       "Variación de compras respecto al mes anterior",
			Description: "Diferencia mensual contra el mes previo",
			HideLegend:  true,
		})
		if err != nil {
			h.handleServerError(w, "render delta chart", err)
			return
		}
		vm.DeltaChart = delta
	}

	monthly := compras.NewPivot()
	for _, p := range points {
		monthly.Add("Total Comprado", p.Label, p.Amount)
	}
	vm.MonthlyTable = NewPivotVM(monthly, "")

	totals := compras.TotalsByDivision(data.scoped, h.cfg)
	vm.DivisionTotals = NewDivisionTotals(totals)
	if len(totals) > 0 {
		slices := make([]svg.Slice, 0, len(totals))
		for _, t := range totals {
			v, _ := t.Amount.Float64()
			slices = append(slices, svg.Slice{Label: t.Division, Color: t.Color, Value: v})
		}
		ring, err := svg.Donut(svg.DefaultHeight, slices, svg.DonutOpts{
			Title:       "Distribución por división",
			Description: "Participación de cada división en el total",
			CenterLabel: data.shell.PeriodTitle,
		})
		if err != nil {
			h.handleServerError(w, "render division ring", err)
			return
		}
		vm.DivisionChart = ring
	}

	h.render(w, r, "pages/resumen.html", "Resumen General de Compras", vm)
}

// handleResumenCSV streams the month-over-month table.
func (h *Handler) handleResumenCSV(w http.ResponseWriter, r *http.Request) {
	f, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data := h.loadPageData(ctx, f)
	comparisons := compras.MonthOverMonth(compras.MonthlyTotals(data.scoped))
	h.streamCSV(w, "resumen_mensual.csv", func(buf *bytes.Buffer) error {
		return export.WriteMonthlyCSV(buf, comparisons)
	})
}
