package scraper

import (
	"context"
	"time"
)

// Direction orders list results.
type Direction string

// List directions.
const (
	Ascending  Direction = "ASC"
	Descending Direction = "DESC"
)

// List bounds. Limits above MaxListLimit are clamped, not rejected.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500

	// OrderByScrapedAt is the default ordering field for reads.
	OrderByScrapedAt = "scraped_at"
)

// ItemStore persists scraped items and reads them back in order.
type ItemStore interface {
	// UpsertBatch writes every item with merge semantics, atomically for the
	// whole batch, and returns the number of items written.
	UpsertBatch(ctx context.Context, items []StoredItem) (int, error)

	// List returns at most limit items ordered by orderBy in the given
	// direction.
	List(ctx context.Context, orderBy string, dir Direction, limit int) ([]StoredItem, error)
}

// Fetcher retrieves a single page body.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (FetchResult, error)
}

// FetchResult is the outcome of a successful page fetch.
type FetchResult struct {
	// URL is the final URL after redirects; link resolution uses it as base.
	URL        string
	StatusCode int
	Body       []byte
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
