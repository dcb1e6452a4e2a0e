// Package comprashttp serves the purchase report pages and their CSV
// downloads.
package comprashttp

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lucerolu/Dshb-dm/internal/compras"
	"github.com/lucerolu/Dshb-dm/internal/export"
	"github.com/lucerolu/Dshb-dm/internal/refdata"
	"github.com/lucerolu/Dshb-dm/internal/shared"
	"github.com/lucerolu/Dshb-dm/internal/view"
)

const requestTimeout = 5 * time.Second

// PurchaseService is the data contract the report pages depend on.
type PurchaseService interface {
	Purchases(ctx context.Context) []compras.PurchaseRecord
	LastUpdate(ctx context.Context) (compras.LastUpdate, bool)
}

// Handler coordinates HTTP requests for the purchase report pages.
type Handler struct {
	logger    *slog.Logger
	service   PurchaseService
	cfg       *refdata.Config
	templates *view.Engine
	csvPool   sync.Pool
	now       func() time.Time
}

// NewHandler constructs the purchase pages handler.
func NewHandler(logger *slog.Logger, service PurchaseService, cfg *refdata.Config, templates *view.Engine) *Handler {
	h := &Handler{
		logger:    logger,
		service:   service,
		cfg:       cfg,
		templates: templates,
		now:       time.Now,
	}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

// filters is the parsed filter state shared by all report pages.
type filters struct {
	Period   compras.Period
	Year     int
	Branches []string
}

func (h *Handler) parseFilters(r *http.Request) (filters, error) {
	period, err := compras.ParsePeriod(strings.TrimSpace(r.URL.Query().Get("periodo")))
	if err != nil {
		return filters{}, validationError{field: "periodo"}
	}
	f := filters{Period: period}
	if raw := strings.TrimSpace(r.URL.Query().Get("anio")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year < 2000 || year > 2200 {
			return filters{}, validationError{field: "anio"}
		}
		f.Year = year
	}
	for _, branch := range r.URL.Query()["sucursal"] {
		if branch = strings.TrimSpace(branch); branch != "" {
			f.Branches = append(f.Branches, branch)
		}
	}
	sort.Strings(f.Branches)
	return f, nil
}

// pageData is the fully scoped dataset every page handler starts from.
type pageData struct {
	filters  filters
	all      []compras.PurchaseRecord
	scoped   []compras.PurchaseRecord
	years    []int
	shell    Shell
}

// loadPageData fetches the dataset, resolves the default year and
// applies the period and branch filters. A missing dataset is not an
// error: pages render empty with a warning banner.
func (h *Handler) loadPageData(ctx context.Context, f filters) pageData {
	records := h.service.Purchases(ctx)
	years := compras.YearsAvailable(records)
	year := f.Year
	if year == 0 {
		if len(years) > 0 {
			year = years[len(years)-1]
		} else {
			year = h.now().UTC().Year()
		}
	}
	f.Year = year

	scoped := compras.FilterPeriod(records, f.Period, year)
	scoped = compras.FilterBranches(scoped, f.Branches)

	data := pageData{filters: f, all: records, scoped: scoped, years: years}
	data.shell = h.buildShell(ctx, data)
	return data
}

func (h *Handler) buildShell(ctx context.Context, data pageData) Shell {
	now := h.now().UTC()
	shell := Shell{
		PeriodTitle: data.filters.Period.Title(data.filters.Year),
		PeriodTotal: view.Currency(compras.Total(data.scoped)),
		MonthLabel:  compras.MonthLabel(now),
		MonthTotal:  view.Currency(compras.CurrentMonthTotal(data.all, now)),
		Years:       data.years,
		Year:        data.filters.Year,
		Period:      data.filters.Period,
		DataUnready: len(data.all) == 0,
		QuerySuffix: querySuffix(data.filters),
	}
	selected := make(map[string]struct{}, len(data.filters.Branches))
	for _, b := range data.filters.Branches {
		selected[b] = struct{}{}
	}
	for _, name := range h.cfg.Branches() {
		style := h.cfg.BranchStyle(name)
		_, isSelected := selected[name]
		shell.Branches = append(shell.Branches, BranchOptionVM{
			Name:     name,
			Abbrev:   style.Abbrev,
			Color:    style.Color,
			Selected: isSelected,
		})
	}
	if update, ok := h.service.LastUpdate(ctx); ok {
		shell.LastUpdate = &LastUpdateVM{
			Date:        update.Date.Format("02/01/2006 15:04"),
			Description: update.Description,
		}
	}
	return shell
}

// querySuffix reproduces the active filters as a query string so export
// links and nav links keep the selection.
func querySuffix(f filters) string {
	values := url.Values{}
	values.Set("periodo", string(f.Period))
	values.Set("anio", strconv.Itoa(f.Year))
	for _, b := range f.Branches {
		values.Add("sucursal", b)
	}
	return "?" + values.Encode()
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page, title string, vm any) {
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
		Title:       title,
		Flash:       flash,
		CSRFToken:   csrfToken,
		User:        user,
		CurrentPath: r.URL.Path,
		Data:        vm,
	}
	if err := h.templates.Render(w, page, data); err != nil {
		h.handleServerError(w, "render template", err)
	}
}

type validationError struct {
	field string
}

func (e validationError) Error() string {
	return "invalid filter: " + e.field
}

func (h *Handler) handleFilterError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func (h *Handler) handleServerError(w http.ResponseWriter, action string, err error) {
	h.logError(action, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) logError(action string, err error) {
	if h.logger != nil {
		h.logger.Error("compras http: "+action, "error", err)
	}
}

// streamCSV writes a CSV download through the pooled buffer.
func (h *Handler) streamCSV(w http.ResponseWriter, filename string, write func(*bytes.Buffer) error) {
	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()
	if err := write(buf); err != nil {
		h.handleServerError(w, "write csv", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

// streamXLSX writes a pivot as a workbook download.
func (h *Handler) streamXLSX(w http.ResponseWriter, filename string, p *compras.Pivot, sheet, rowHeader string) {
	buf, err := export.WritePivotXLSX(p, sheet, rowHeader)
	if err != nil {
		h.handleServerError(w, "write xlsx", err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream xlsx", err)
	}
}

func floats(values []string, p *compras.Pivot, row bool) []float64 {
	out := make([]float64, 0, len(values))
	for _, key := range values {
		var v float64
		if row {
			v, _ = p.RowTotal(key).Float64()
		} else {
			v, _ = p.ColTotal(key).Float64()
		}
		out = append(out, v)
	}
	return out
}
