package compras

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/lucerolu/Dshb-dm/internal/platform/cache"
)

// Cache keys shared with the warmup worker.
const (
	CacheKeyPurchases  = "compras:datos"
	CacheKeyStatement  = "compras:estado_cuenta"
	CacheKeyLastUpdate = "compras:ultima_actualizacion"
)

// Service fronts the upstream API with the shared TTL cache. Read
// methods degrade to empty data when the upstream is unreachable so
// the dashboard keeps rendering; the failure is logged, not surfaced.
type Service struct {
	client *Client
	cache  *cache.TTL
	logger *slog.Logger
}

// NewService wires the upstream client, cache and logger together.
func NewService(client *Client, ttlCache *cache.TTL, logger *slog.Logger) *Service {
	return &Service{client: client, cache: ttlCache, logger: logger}
}

// Purchases returns the cached purchase dataset, empty on upstream
// failure.
func (s *Service) Purchases(ctx context.Context) []PurchaseRecord {
	var records []PurchaseRecord
	err := s.cache.FetchJSON(ctx, CacheKeyPurchases, &records, func(ctx context.Context) (interface{}, error) {
		return s.client.FetchPurchases(ctx)
	})
	if err != nil {
		s.logger.Error("compras: fetch purchases", "error", err)
		return nil
	}
	return records
}

// Statement returns the cached account statement, empty on upstream
// failure.
func (s *Service) Statement(ctx context.Context) Statement {
	var statement Statement
	err := s.cache.FetchJSON(ctx, CacheKeyStatement, &statement, func(ctx context.Context) (interface{}, error) {
		return s.client.FetchStatement(ctx)
	})
	if err != nil {
		s.logger.Error("compras: fetch statement", "error", err)
		return Statement{}
	}
	return statement
}

// LastUpdate returns the cached refresh marker. The boolean is false
// when the upstream could not be reached.
func (s *Service) LastUpdate(ctx context.Context) (LastUpdate, bool) {
	var update LastUpdate
	err := s.cache.FetchJSON(ctx, CacheKeyLastUpdate, &update, func(ctx context.Context) (interface{}, error) {
		return s.client.FetchLastUpdate(ctx)
	})
	if err != nil {
		s.logger.Error("compras: fetch last update", "error", err)
		return LastUpdate{}, false
	}
	return update, true
}

// Warm refreshes all three cached datasets in parallel, reporting the
// first upstream failure. The background worker calls this on a
// schedule so interactive requests rarely pay the upstream round trip.
func (s *Service) Warm(ctx context.Context) error {
	if err := s.cache.Invalidate(ctx, CacheKeyPurchases, CacheKeyStatement, CacheKeyLastUpdate); err != nil {
		return err
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var records []PurchaseRecord
		return s.cache.FetchJSON(ctx, CacheKeyPurchases, &records, func(ctx context.Context) (interface{}, error) {
			return s.client.FetchPurchases(ctx)
		})
	})
	g.Go(func() error {
		var statement Statement
		return s.cache.FetchJSON(ctx, CacheKeyStatement, &statement, func(ctx context.Context) (interface{}, error) {
			return s.client.FetchStatement(ctx)
		})
	})
	g.Go(func() error {
		var update LastUpdate
		return s.cache.FetchJSON(ctx, CacheKeyLastUpdate, &update, func(ctx context.Context) (interface{}, error) {
			return s.client.FetchLastUpdate(ctx)
		})
	})
	return g.Wait()
}
