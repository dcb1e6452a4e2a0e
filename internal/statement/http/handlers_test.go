package statementhttp_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/lucerolu/Dshb-dm/internal/compras"
	"github.com/lucerolu/Dshb-dm/internal/refdata"
	statementhttp "github.com/lucerolu/Dshb-dm/internal/statement/http"
	"github.com/lucerolu/Dshb-dm/internal/view"
)

const testConfigJSON = `{
	"divisiones": {
		"Refacciones": {"color": "#FF0000", "abreviatura": "REF", "codigos": ["600100"]}
	},
	"sucursales": {
		"Matriz": {"color": "#0000FF", "abreviatura": "MTZ"}
	}
}`

type fakeStatementService struct {
	statement compras.Statement
}

func (f *fakeStatementService) Statement(ctx context.Context) compras.Statement {
	return f.statement
}

func sampleStatement() compras.Statement {
	due := func(day string) time.Time {
		d, err := time.Parse("2006-01-02", day)
		if err != nil {
			panic(err)
		}
		return d
	}
	return compras.Statement{
		Cutoff: due("2025-03-15"),
		Records: []compras.AgingRecord{
			{Branch: "Matriz", AccountCode: "600100", DueDate: due("2025-03-01"), Amount: decimal.NewFromInt(45000000)},
			{Branch: "Matriz", AccountCode: "600100", DueDate: due("2025-04-01"), Amount: decimal.NewFromInt(90000000)},
		},
	}
}

func newRouter(t *testing.T, svc *fakeStatementService) chi.Router {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config_colores.json")
	require.NoError(t, os.WriteFile(path, []byte(testConfigJSON), 0o600))
	cfg, err := refdata.Load(path, refdata.PolicyDrop)
	require.NoError(t, err)

	templates, err := view.NewEngine()
	require.NoError(t, err)

	handler := statementhttp.NewHandler(nil, svc, cfg, templates, decimal.NewFromInt(180000000))
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

func TestStatementPage(t *testing.T) {
	svc := &fakeStatementService{statement: sampleStatement()}
	res := get(t, newRouter(t, svc), "/estado-cuenta")

	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "Estado de Cuenta")
	assert.Contains(t, body, "15/03/2025")
	assert.Contains(t, body, "Vencido")
	assert.Contains(t, body, "600100 (REF) - Matriz")
	// 135M of 180M credit line used.
	assert.Contains(t, body, "75.00%")
}

func TestStatementPageEmpty(t *testing.T) {
	svc := &fakeStatementService{}
	res := get(t, newRouter(t, svc), "/estado-cuenta")

	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "no disponible")
}

func TestStatementXLSXDownload(t *testing.T) {
	svc := &fakeStatementService{statement: sampleStatement()}
	res := get(t, newRouter(t, svc), "/estado-cuenta/export.xlsx")

	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Header().Get("Content-Disposition"), "estado_cuenta_20250315.xlsx")

	f, err := excelize.OpenReader(res.Body)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetCellValue("Vencimiento", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Codigo - Division - Sucursal", got)
}

func TestStatementXLSXUnavailable(t *testing.T) {
	svc := &fakeStatementService{}
	res := get(t, newRouter(t, svc), "/estado-cuenta/export.xlsx")

	assert.Equal(t, http.StatusNotFound, res.Code)
}
