package comprashttp

import (
	"context"
	"net/http"
	"strings"

	"github.com/lucerolu/Dshb-dm/internal/compras"
	"github.com/lucerolu/Dshb-dm/internal/svg"
)

// handleVista renders the single-branch drilldown. The branch comes
// from the "sucursal" query parameter; with none selected the page
// falls back to the first configured branch.
func (h *Handler) handleVista(w http.ResponseWriter, r *http.Request) {
	f, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}
	branch := ""
	if len(f.Branches) > 0 {
		branch = f.Branches[0]
	}
	if branch == "" {
		if configured := h.cfg.Branches(); len(configured) > 0 {
			branch = configured[0]
		}
	}
	if strings.TrimSpace(branch) == "" {
		h.handleFilterError(w, validationError{field: "sucursal"})
		return
	}
	f.Branches = []string{branch}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data := h.loadPageData(ctx, f)
	vm := vistaVM{
		Shell:       data.shell,
		Branch:      branch,
		BranchColor: h.cfg.BranchStyle(branch).Color,
	}

	points := compras.MonthlyTotals(data.scoped)
	vm.CompareRows = NewCompareRows(compras.MonthOverMonth(points))
	if len(points) > 0 {
		labels := make([]string, 0, len(points))
		values := make([]float64, 0, len(points))
		for _, p := range points {
			labels = append(labels, p.Label)
			v, _ := p.Amount.Float64()
			values = append(values, v)
		}
		trend, err := svg.Line(svg.DefaultWidth, svg.DefaultHeight, values, labels, svg.LineOpts{
			Title:       "Evolución mensual de compras de " + branch,
			StrokeColor: vm.BranchColor,
			ShowDots:    true,
		})
		if err != nil {
			h.handleServerError(w, "render branch trend", err)
			return
		}
		vm.TrendChart = trend
	}

	vm.DivisionTotals = NewDivisionTotals(compras.TotalsByDivision(data.scoped, h.cfg))
	vm.AccountPivot = NewPivotVM(compras.AccountByMonth(data.scoped, h.cfg), "Cuenta - Sucursal")

	h.render(w, r, "pages/vista_sucursal.html", "Vista por Sucursal", vm)
}
