package compras

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucerolu/Dshb-dm/internal/platform/cache"
)

func newTestService(t *testing.T, handler http.HandlerFunc) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	client := newUpstream(t, handler)
	return NewService(client, cache.NewTTL(rdb, 5*time.Minute), slog.Default()), mr
}

func TestServicePurchasesCached(t *testing.T) {
	var hits int64
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		_, _ = w.Write([]byte(`[{"sucursal":"Matriz","codigo_normalizado":"600100","monto":10,"mes":"2025-01-01","ligado_sistema":1}]`))
	})

	first := svc.Purchases(context.Background())
	second := svc.Purchases(context.Background())
	require.Len(t, first, 1)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, atomic.LoadInt64(&hits), "second read must come from cache")
}

func TestServicePurchasesDegradesToEmpty(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})
	assert.Empty(t, svc.Purchases(context.Background()))
}

func TestServiceStatementDegradesToEmpty(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})
	assert.True(t, svc.Statement(context.Background()).Empty())
}

func TestServiceLastUpdate(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"fecha":"2025-03-15T06:30:00","descripcion":"Carga nocturna"}`))
	})
	update, ok := svc.LastUpdate(context.Background())
	require.True(t, ok)
	assert.Equal(t, "Carga nocturna", update.Description)
}

func TestServiceWarmRefreshesCache(t *testing.T) {
	var hits int64
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		switch r.URL.Path {
		case "/datos":
			_, _ = w.Write([]byte(`[{"sucursal":"Matriz","codigo_normalizado":"600100","monto":10,"mes":"2025-01-01","ligado_sistema":1}]`))
		case "/estado_cuenta":
			_, _ = w.Write([]byte(`{"fecha_corte":"2025-03-15","datos":[{"sucursal":"Matriz","codigo_6digitos":"600100","fecha_exigibilidad":"2025-04-01","total":5}]}`))
		case "/ultima_actualizacion":
			_, _ = w.Write([]byte(`{"fecha":"2025-03-15T06:30:00","descripcion":"ok"}`))
		}
	})

	// Seed the cache, then warm: every dataset must be refetched.
	_ = svc.Purchases(context.Background())
	before := atomic.LoadInt64(&hits)
	require.NoError(t, svc.Warm(context.Background()))
	assert.EqualValues(t, before+3, atomic.LoadInt64(&hits))

	// Reads after warm come from cache.
	_ = svc.Purchases(context.Background())
	_, _ = svc.LastUpdate(context.Background())
	assert.EqualValues(t, before+3, atomic.LoadInt64(&hits))
}

func TestServiceWarmPropagatesFailure(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})
	assert.Error(t, svc.Warm(context.Background()))
}
