package scraper

import (
	"context"

	"go.uber.org/zap"

	"github.com/pageharvest/pageharvest/internal/auth"
)

// Query serves authorized reads over stored items.
type Query struct {
	store  ItemStore
	logger *zap.Logger
}

// NewQuery wires the store and logger.
func NewQuery(store ItemStore, logger *zap.Logger) *Query {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Query{store: store, logger: logger}
}

// ListItems returns up to limit stored items, most recently scraped first.
// Any authenticated principal may read; the admin role is not required. A
// non-positive limit falls back to the default and oversized limits are
// clamped. An empty store yields an empty slice, not an error.
func (q *Query) ListItems(ctx context.Context, principal auth.Principal, limit int) ([]StoredItem, error) {
	if !principal.Authenticated() {
		return nil, NewError(CodeUnauthenticated, "you must be logged in to perform this action", nil)
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	items, err := q.store.List(ctx, OrderByScrapedAt, Descending, limit)
	if err != nil {
		q.logger.Error("list items failed", zap.Error(err))
		return nil, NewError(CodeStorage, "failed to fetch items", err)
	}
	return items, nil
}
