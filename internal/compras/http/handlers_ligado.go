package comprashttp

import (
	"context"
	"net/http"
	"sort"

	"github.com/lucerolu/Dshb-dm/internal/compras"
	"github.com/lucerolu/Dshb-dm/internal/svg"
	"github.com/lucerolu/Dshb-dm/internal/view"
)

// handleLigado renders Estado de Ligado: reconciliation cards, the
// unlinked monthly trend and the unlinked amount per branch with the
// still-moving current month excluded.
func (h *Handler) handleLigado(w http.ResponseWriter, r *http.Request) {
	f, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data := h.loadPageData(ctx, f)
	vm := ligadoVM{Shell: data.shell}

	linked := compras.Total(compras.FilterLinked(data.scoped, true))
	unlinked := compras.Total(compras.FilterLinked(data.scoped, false))
	vm.LinkedTotal = view.Currency(linked)
	vm.UnlinkedTotal = view.Currency(unlinked)
	total := linked.Add(unlinked)
	pct := 0.0
	if !total.IsZero() {
		ratio, _ := linked.Div(total).Float64()
		pct = ratio * 100
	}
	vm.LinkedPct = view.Percent(pct)

	unlinkedRecords := compras.FilterLinked(data.scoped, false)
	points := compras.MonthlyTotals(unlinkedRecords)
	linkedPoints := compras.MonthlyTotals(compras.FilterLinked(data.scoped, true))
	if len(points) > 0 || len(linkedPoints) > 0 {
		labels := monthUnion(linkedPoints, points)
		chart, err := svg.Bars(svg.DefaultWidth, svg.DefaultHeight, []svg.Series{
			{Label: "Ligado", Color: "#16a34a", Values: alignSeries(linkedPoints, labels)},
			{Label: "Sin ligar", Color: "#dc2626", Values: alignSeries(points, labels)},
		}, labels, svg.BarOpts{
			Title:       "Tendencia mensual de facturas no ligadas",
			Description: "Monto ligado contra pendiente de ligar por mes",
		})
		if err != nil {
			h.handleServerError(w, "render ligado chart", err)
			return
		}
		vm.ComparisonBars = chart
	}

	// The current month is still receiving invoices upstream, so the
	// per-branch breakdown stops at the previous month.
	settled := compras.FilterBeforeMonth(unlinkedRecords, h.now().UTC())
	vm.UnlinkedPivot = NewPivotVM(compras.MonthlyByBranch(settled), "Sucursal")

	h.render(w, r, "pages/ligado.html", "Estado de Ligado", vm)
}

// monthUnion merges two point sets into one chronological label axis.
func monthUnion(a, b []compras.MonthlyPoint) []string {
	merged := make([]compras.MonthlyPoint, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	seen := make(map[string]struct{}, len(merged))
	unique := merged[:0]
	for _, p := range merged {
		if _, ok := seen[p.Label]; ok {
			continue
		}
		seen[p.Label] = struct{}{}
		unique = append(unique, p)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i].Month.Before(unique[j].Month) })
	labels := make([]string, 0, len(unique))
	for _, p := range unique {
		labels = append(labels, p.Label)
	}
	return labels
}

// alignSeries projects points onto the shared label axis, zero-filling
// months one side does not have.
func alignSeries(points []compras.MonthlyPoint, labels []string) []float64 {
	byLabel := make(map[string]float64, len(points))
	for _, p := range points {
		v, _ := p.Amount.Float64()
		byLabel[p.Label] = v
	}
	out := make([]float64, 0, len(labels))
	for _, label := range labels {
		out = append(out, byLabel[label])
	}
	return out
}
