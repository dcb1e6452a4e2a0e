package comprashttp

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/lucerolu/Dshb-dm/internal/shared"
)

// MountRoutes registers the purchase report pages onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get("/", h.handleResumen)
	r.Get("/divisiones", h.handleDivision)
	r.Get("/cuentas", h.handleCuenta)
	r.Get("/sucursales", h.handleSucursal)
	r.Get("/sucursales/detalle", h.handleVista)
	r.Get("/ligado", h.handleLigado)

	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/export/resumen.csv", h.handleResumenCSV)
		gr.Get("/export/divisiones.csv", h.handleDivisionCSV)
		gr.Get("/export/cuentas.csv", h.handleCuentaCSV)
		gr.Get("/export/cuentas.xlsx", h.handleCuentaXLSX)
		gr.Get("/export/sucursales.csv", h.handleSucursalCSV)
		gr.Get("/export/sucursales.xlsx", h.handleSucursalXLSX)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if user := strings.TrimSpace(sess.User()); user != "" {
			return "user:" + user, nil
		}
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
