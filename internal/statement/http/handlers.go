// Package statementhttp serves the account statement page and its
// XLSX download.
package statementhttp

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lucerolu/Dshb-dm/internal/compras"
	"github.com/lucerolu/Dshb-dm/internal/export"
	"github.com/lucerolu/Dshb-dm/internal/platform/httpx"
	"github.com/lucerolu/Dshb-dm/internal/refdata"
	"github.com/lucerolu/Dshb-dm/internal/shared"
	"github.com/lucerolu/Dshb-dm/internal/statement"
	"github.com/lucerolu/Dshb-dm/internal/svg"
	"github.com/lucerolu/Dshb-dm/internal/view"
)

const requestTimeout = 5 * time.Second

// StatementService is the data contract for the statement page.
type StatementService interface {
	Statement(ctx context.Context) compras.Statement
}

// Handler coordinates HTTP requests for the account statement.
type Handler struct {
	logger      *slog.Logger
	service     StatementService
	cfg         *refdata.Config
	templates   *view.Engine
	creditLimit decimal.Decimal
	now         func() time.Time
}

// NewHandler constructs the statement handler.
func NewHandler(logger *slog.Logger, service StatementService, cfg *refdata.Config, templates *view.Engine, creditLimit decimal.Decimal) *Handler {
	return &Handler{
		logger:      logger,
		service:     service,
		cfg:         cfg,
		templates:   templates,
		creditLimit: creditLimit,
		now:         time.Now,
	}
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

// statementVM backs the Estado de Cuenta page.
type statementVM struct {
	Cutoff        string
	Empty         bool
	CreditLimit   string
	CreditUsed    string
	CreditFree    string
	PctUsed       string
	PctFree       string
	Overdue       string
	DueWithin30   string
	DueAfter90    string
	NextDueDate   string
	NextDueDays   int
	HasNextDue    bool
	DuePivot      pivotVM
	BucketPivot   pivotVM
	BucketRing    template.HTML
	MonthlyStack  template.HTML
	ExportName    string
}

type pivotVM struct {
	RowHeader string
	Cols      []string
	Rows      []pivotRowVM
	ColTotals []string
	Grand     string
	Empty     bool
}

type pivotRowVM struct {
	Label string
	Cells []string
	Total string
}

func newPivotVM(p *compras.Pivot, rowHeader string) pivotVM {
	vm := pivotVM{RowHeader: rowHeader, Cols: p.ColKeys, Empty: p.Empty()}
	for _, row := range p.RowKeys {
		rowVM := pivotRowVM{Label: row, Total: view.Currency(p.RowTotal(row))}
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

func (h *Handler) handleStatement(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	s := h.service.Statement(ctx)
	today := h.now().UTC()

	vm := statementVM{Empty: s.Empty()}
	if !s.Empty() {
		vm.Cutoff = s.Cutoff.Format("02/01/2006")
		vm.ExportName = export.StatementFilename(s.Cutoff)

		usage := statement.Usage(s, h.creditLimit)
		vm.CreditLimit = view.Currency(usage.Limit)
		vm.CreditUsed = view.Currency(usage.Used)
		vm.CreditFree = view.Currency(usage.Available)
		vm.PctUsed = view.Percent(usage.PctUsed)
		vm.PctFree = view.Percent(usage.PctAvailable)

		sum := statement.Summarize(s, today)
		vm.Overdue = view.Currency(sum.Overdue)
		vm.DueWithin30 = view.Currency(sum.DueWithin30)
		vm.DueAfter90 = view.Currency(sum.DueAfter90)

		if date, days, ok := statement.NextDue(s, today); ok {
			vm.HasNextDue = true
			vm.NextDueDate = date.Format("02/01/2006")
			vm.NextDueDays = days
		}

		vm.DuePivot = newPivotVM(statement.ByDueDate(s, h.cfg), "Cuenta - Sucursal")
		vm.BucketPivot = newPivotVM(statement.ByBucket(s, h.cfg, today), "Codigo - Division - Sucursal")

		shares := statement.Distribution(s, today)
		if len(shares) > 0 {
			slices := make([]svg.Slice, 0, len(shares))
			for _, share := range shares {
				v, _ := share.Amount.Float64()
				slices = append(slices, svg.Slice{Label: share.Bucket, Color: share.Color, Value: v})
			}
			ring, err := svg.Donut(svg.DefaultHeight, slices, svg.DonutOpts{
				Title:       "Distribución de la deuda según la fecha de exigibilidad",
				CenterLabel: view.Currency(usage.Used),
			})
			if err != nil {
				h.handleServerError(w, "render bucket ring", err)
				return
			}
			vm.BucketRing = ring
		}

		monthly := statement.MonthlyDue(s, today)
		if !monthly.Empty() {
			series := make([]svg.Series, 0, len(monthly.ColKeys))
			for _, bucket := range monthly.ColKeys {
				values := make([]float64, 0, len(monthly.RowKeys))
				for _, month := range monthly.RowKeys {
					v, _ := monthly.Value(month, bucket).Float64()
					values = append(values, v)
				}
				series = append(series, svg.Series{Label: bucket, Color: statement.BucketColors[bucket], Values: values})
			}
			stack, err := svg.StackedBars(svg.DefaultWidth, svg.DefaultHeight, series, monthly.RowKeys, svg.BarOpts{
				Title: "Vencimientos por mes",
			})
			if err != nil {
				h.handleServerError(w, "render maturity chart", err)
				return
			}
			vm.MonthlyStack = stack
		}
	}

	sess := shared.SessionFromContext(r.Context())
	var flash *shared.FlashMessage
	csrfToken := ""
	user := ""
	if sess != nil {
		flash = sess.PopFlash()
		csrfToken = sess.Get(shared.CSRFSessionKey)
		user = sess.User()
	}
	data := view.TemplateData{
		Title:       "Estado de Cuenta",
		Flash:       flash,
		CSRFToken:   csrfToken,
		User:        user,
		CurrentPath: r.URL.Path,
		Data:        vm,
	}
	if err := h.templates.Render(w, "pages/estado_cuenta.html", data); err != nil {
		h.handleServerError(w, "render template", err)
	}
}

// handleXLSX streams the bucketed statement as a workbook named after
// the cutoff date.
func (h *Handler) handleXLSX(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	s := h.service.Statement(ctx)
	if s.Empty() {
		httpx.Problem(w, http.StatusNotFound, "Estado de cuenta no disponible", "el upstream no ha publicado un estado de cuenta")
		return
	}

	pivot := statement.ByBucket(s, h.cfg, h.now().UTC())
	buf, err := export.WritePivotXLSX(pivot, "Vencimiento", "Codigo - Division - Sucursal")
	if err != nil {
		h.handleServerError(w, "write xlsx", err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+export.StatementFilename(s.Cutoff)+"\"")
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream xlsx", err)
	}
}

func (h *Handler) handleServerError(w http.ResponseWriter, action string, err error) {
	h.logError(action, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) logError(action string, err error) {
	if h.logger != nil {
		h.logger.Error("statement http: "+action, "error", err)
	}
}
