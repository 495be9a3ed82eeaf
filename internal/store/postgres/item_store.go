// Package postgres provides the Postgres-backed item store.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pageharvest/pageharvest/internal/scraper"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

var validOrderColumn = map[string]struct{}{
	"scraped_at": {},
	"title":      {},
	"source":     {},
}

// Config controls the Postgres connection pool used for item rows.
type Config struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type dbConn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// ItemStore writes scraped items into Postgres and reads them back.
// It assumes a table schema like:
//
//	CREATE TABLE scraped_items (
//		id TEXT PRIMARY KEY,
//		title TEXT NOT NULL,
//		url TEXT NOT NULL,
//		price TEXT NOT NULL DEFAULT '',
//		source TEXT NOT NULL,
//		scraped_at TIMESTAMPTZ NOT NULL
//	);
type ItemStore struct {
	pool  dbConn
	table string
}

// New creates a Postgres-backed ItemStore using the provided config.
func New(ctx context.Context, cfg Config) (*ItemStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("store.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "scraped_items"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &ItemStore{pool: pool, table: table}, nil
}

// NewWithPool constructs a store from an existing pool (primarily for
// testing).
func NewWithPool(pool dbConn, table string) (*ItemStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "scraped_items"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &ItemStore{pool: pool, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *ItemStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// UpsertBatch writes all items inside one transaction. Rows merge on id
// conflict; an empty incoming price keeps the stored one so a re-scrape
// without a price selector never clears existing prices. Any failure rolls
// the whole batch back.
func (s *ItemStore) UpsertBatch(ctx context.Context, items []scraper.StoredItem) (int, error) {
	if s == nil || s.pool == nil {
		return 0, scraper.NewStorageError(scraper.StorageUnavailable, errors.New("item store is not configured"))
	}
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

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, scraper.NewStorageError(scraper.StorageUnavailable, fmt.Errorf("begin upsert: %w", err))
	}

	query := fmt.Sprintf(`
INSERT INTO %s (id, title, url, price, source, scraped_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
	title = EXCLUDED.title,
	url = EXCLUDED.url,
	price = COALESCE(NULLIF(EXCLUDED.price, ''), %s.price),
	source = EXCLUDED.source,
	scraped_at = EXCLUDED.scraped_at`, s.table, s.table)

	for _, item := range items {
		if _, err := tx.Exec(ctx, query,
			item.ID,
			item.Title,
			item.URL,
			item.Price,
			item.Source,
			item.ScrapedAt,
		); err != nil {
			_ = tx.Rollback(ctx)
			return 0, scraper.NewStorageError(scraper.StorageUnavailable, fmt.Errorf("upsert item %s: %w", item.ID, err))
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, scraper.NewStorageError(scraper.StorageUnavailable, fmt.Errorf("commit upsert: %w", err))
	}
	return len(items), nil
}

// List returns at most limit items ordered by orderBy in the given
// direction. The column is checked against an allow-list because it is
// interpolated into the statement.
func (s *ItemStore) List(ctx context.Context, orderBy string, dir scraper.Direction, limit int) ([]scraper.StoredItem, error) {
	if s == nil || s.pool == nil {
		return nil, scraper.NewStorageError(scraper.StorageUnavailable, errors.New("item store is not configured"))
	}
	if orderBy == "" {
		orderBy = scraper.OrderByScrapedAt
	}
	if _, ok := validOrderColumn[orderBy]; !ok {
		return nil, scraper.NewStorageError(scraper.StorageMalformed, fmt.Errorf("invalid order column %q", orderBy))
	}
	if dir != scraper.Ascending {
		dir = scraper.Descending
	}
	if limit <= 0 {
		limit = scraper.DefaultListLimit
	}
	if limit > scraper.MaxListLimit {
		limit = scraper.MaxListLimit
	}

	query := fmt.Sprintf(
		`SELECT id, title, url, price, source, scraped_at FROM %s ORDER BY %s %s LIMIT $1`,
		s.table, orderBy, dir,
	)
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, scraper.NewStorageError(scraper.StorageUnavailable, fmt.Errorf("list items: %w", err))
	}
	defer rows.Close()

	var items []scraper.StoredItem
	for rows.Next() {
		var item scraper.StoredItem
		if err := rows.Scan(&item.ID, &item.Title, &item.URL, &item.Price, &item.Source, &item.ScrapedAt); err != nil {
			return nil, scraper.NewStorageError(scraper.StorageMalformed, fmt.Errorf("scan item: %w", err))
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, scraper.NewStorageError(scraper.StorageUnavailable, fmt.Errorf("iterate items: %w", err))
	}
	return items, nil
}
