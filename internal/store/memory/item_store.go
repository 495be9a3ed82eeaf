// Package memory provides an in-memory ItemStore for tests and local runs.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/pageharvest/pageharvest/internal/scraper"
)

// ItemStore keeps items in a map keyed by derived id.
type ItemStore struct {
	mu    sync.RWMutex
	items map[string]scraper.StoredItem
}

// New creates an empty in-memory store.
func New() *ItemStore {
	return &ItemStore{items: make(map[string]scraper.StoredItem)}
}

// UpsertBatch merges every item into the map. The whole batch is validated
// before anything is written so a malformed item leaves the store untouched.
// An empty incoming price keeps any stored price.
func (s *ItemStore) UpsertBatch(_ context.Context, items []scraper.StoredItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	for _, item := range items {
		if item.ID == "" || item.Title == "" || item.URL == "" {
			return 0, scraper.NewStorageError(
				scraper.StorageMalformed,
				fmt.Errorf("item %q is missing required fields", item.URL),
			)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		if existing, ok := s.items[item.ID]; ok && item.Price == "" {
			item.Price = existing.Price
		}
		s.items[item.ID] = item
	}
	return len(items), nil
}

// List returns at most limit items ordered by orderBy in the given
// direction.
func (s *ItemStore) List(_ context.Context, orderBy string, dir scraper.Direction, limit int) ([]scraper.StoredItem, error) {
	if orderBy == "" {
		orderBy = scraper.OrderByScrapedAt
	}
	var less func(a, b scraper.StoredItem) bool
	switch orderBy {
	case scraper.OrderByScrapedAt:
		less = func(a, b scraper.StoredItem) bool { return a.ScrapedAt.Before(b.ScrapedAt) }
	case "title":
		less = func(a, b scraper.StoredItem) bool { return a.Title < b.Title }
	case "source":
		less = func(a, b scraper.StoredItem) bool { return a.Source < b.Source }
	default:
		return nil, scraper.NewStorageError(scraper.StorageMalformed, errors.New("invalid order column "+orderBy))
	}
	if limit <= 0 {
		limit = scraper.DefaultListLimit
	}
	if limit > scraper.MaxListLimit {
		limit = scraper.MaxListLimit
	}

	s.mu.RLock()
	items := make([]scraper.StoredItem, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if dir == scraper.Ascending {
			return less(items[i], items[j])
		}
		return less(items[j], items[i])
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// Len reports how many items the store holds.
func (s *ItemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Get returns the stored item for id, if any.
func (s *ItemStore) Get(id string) (scraper.StoredItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	return item, ok
}
