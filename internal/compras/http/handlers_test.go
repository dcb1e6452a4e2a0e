package comprashttp_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucerolu/Dshb-dm/internal/compras"
	comprashttp "github.com/lucerolu/Dshb-dm/internal/compras/http"
	"github.com/lucerolu/Dshb-dm/internal/refdata"
	"github.com/lucerolu/Dshb-dm/internal/view"
)

const testConfigJSON = `{
	"divisiones": {
		"Refacciones": {"color": "#FF0000", "abreviatura": "REF", "codigos": ["600100"]},
		"Servicio":    {"color": "#00FF00", "abreviatura": "SER", "codigos": ["600200"]}
	},
	"sucursales": {
		"Matriz": {"color": "#0000FF", "abreviatura": "MTZ"},
		"Norte":  {"color": "#00FFFF", "abreviatura": "NTE"}
	}
}`

type fakeService struct {
	records []compras.PurchaseRecord
	update  compras.LastUpdate
	hasUpd  bool
}

func (f *fakeService) Purchases(ctx context.Context) []compras.PurchaseRecord {
	return f.records
}

func (f *fakeService) LastUpdate(ctx context.Context) (compras.LastUpdate, bool) {
	return f.update, f.hasUpd
}

func record(branch, code string, amount int64, month string, linked bool) compras.PurchaseRecord {
	d, err := time.Parse("2006-01-02", month)
	if err != nil {
		panic(err)
	}
	return compras.PurchaseRecord{
		Branch:      branch,
		AccountCode: code,
		AccountID:   code + "-01",
		Folio:       "F-" + code,
		Amount:      decimal.NewFromInt(amount),
		PeriodDate:  d,
		Linked:      linked,
	}
}

func sampleRecords() []compras.PurchaseRecord {
	return []compras.PurchaseRecord{
		record("Matriz", "600100", 1000, "2025-01-01", true),
		record("Matriz", "600200", 500, "2025-02-01", false),
		record("Norte", "600100", 750, "2025-02-01", true),
		record("Norte", "600200", 250, "2025-03-01", false),
	}
}

func newRouter(t *testing.T, svc *fakeService) chi.Router {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config_colores.json")
	require.NoError(t, os.WriteFile(path, []byte(testConfigJSON), 0o600))
	cfg, err := refdata.Load(path, refdata.PolicyDrop)
	require.NoError(t, err)

	templates, err := view.NewEngine()
	require.NoError(t, err)

	handler := comprashttp.NewHandler(nil, svc, cfg, templates)
	handler.WithNow(func() time.Time {
		return time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	})

	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r
}

func get(t *testing.T, router chi.Router, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestResumenPage(t *testing.T) {
	svc := &fakeService{
		records: sampleRecords(),
		update:  compras.LastUpdate{Date: time.Date(2025, time.March, 15, 8, 0, 0, 0, time.UTC), Description: "Carga nocturna"},
		hasUpd:  true,
	}
	res := get(t, newRouter(t, svc), "/?periodo=natural&anio=2025")

	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "Resumen General")
	assert.Contains(t, body, "Enero 2025")
	assert.Contains(t, body, "Carga nocturna")
	assert.Contains(t, body, "Refacciones")
}

func TestResumenDefaultsToLatestYear(t *testing.T) {
	svc := &fakeService{records: sampleRecords()}
	res := get(t, newRouter(t, svc), "/")

	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `value="2025" selected`)
}

func TestResumenEmptyDataset(t *testing.T) {
	res := get(t, newRouter(t, &fakeService{}), "/")

	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "Sin datos disponibles")
}

func TestInvalidFilterRejected(t *testing.T) {
	svc := &fakeService{records: sampleRecords()}
	router := newRouter(t, svc)

	for _, target := range []string{"/?periodo=semanal", "/?anio=abc", "/?anio=1990"} {
		res := get(t, router, target)
		assert.Equal(t, http.StatusBadRequest, res.Code, target)
	}
}

func TestBranchFilterScopesPages(t *testing.T) {
	svc := &fakeService{records: sampleRecords()}
	res := get(t, newRouter(t, svc), "/sucursales?periodo=natural&anio=2025&sucursal=Matriz")

	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "Matriz")
	// Norte still shows in the filter list but not as a pivot row.
	assert.NotContains(t, body, `<th scope="row">Norte</th>`)
}

func TestSucursalChartStacksBranches(t *testing.T) {
	svc := &fakeService{records: sampleRecords()}
	res := get(t, newRouter(t, svc), "/sucursales?periodo=natural&anio=2025")

	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	// The monthly chart stacks branches into one bar per month.
	assert.Contains(t, body, "stack-title")
	assert.Contains(t, body, "Total de Compras por Mes y Sucursal")
}

func TestDivisionAndCuentaPages(t *testing.T) {
	svc := &fakeService{records: sampleRecords()}
	router := newRouter(t, svc)

	for _, target := range []string{"/divisiones", "/cuentas", "/sucursales/detalle", "/ligado"} {
		res := get(t, router, target)
		assert.Equal(t, http.StatusOK, res.Code, target)
	}
}

func TestCuentaRowsCarryDivisionAndBranch(t *testing.T) {
	svc := &fakeService{records: sampleRecords()}
	res := get(t, newRouter(t, svc), "/cuentas?periodo=natural&anio=2025")

	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	// One row per account-branch pair, never a bare code.
	assert.Contains(t, body, `<th scope="row">600100 (REF) - Matriz</th>`)
	assert.Contains(t, body, `<th scope="row">600100 (REF) - Norte</th>`)
	assert.NotContains(t, body, `<th scope="row">600100</th>`)
}

func TestLigadoExcludesCurrentMonthFromPivot(t *testing.T) {
	records := sampleRecords()
	// An unlinked invoice in the running month must stay out of the
	// per-branch pivot.
	records = append(records, record("Matriz", "600100", 9999, "2025-03-01", false))
	svc := &fakeService{records: records}

	res := get(t, newRouter(t, svc), "/ligado?periodo=natural&anio=2025")
	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.NotContains(t, body, "9,999.00")
}

func TestResumenCSVDownload(t *testing.T) {
	svc := &fakeService{records: sampleRecords()}
	res := get(t, newRouter(t, svc), "/export/resumen.csv?periodo=natural&anio=2025")

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "text/csv; charset=utf-8", res.Header().Get("Content-Type"))
	assert.Contains(t, res.Header().Get("Content-Disposition"), "resumen_mensual.csv")
	body := res.Body.String()
	assert.Contains(t, body, "Mes,Total,Diferencia,% Cambio")
	assert.Contains(t, body, "Enero 2025,1000.00")
}

func TestExportPreservesFilters(t *testing.T) {
	svc := &fakeService{records: sampleRecords()}
	res := get(t, newRouter(t, svc), "/?periodo=fiscal&anio=2025&sucursal=Norte")

	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.True(t, strings.Contains(body, "periodo=fiscal"), "export links keep the period filter")
	assert.True(t, strings.Contains(body, "sucursal=Norte"), "export links keep the branch filter")
}
