package scraper

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pageharvest/pageharvest/internal/archive"
	"github.com/pageharvest/pageharvest/internal/auth"
	"github.com/pageharvest/pageharvest/internal/publisher"
)

// Pipeline wires fetch, extraction, normalization, and persistence behind a
// single authorized entrypoint. One Run is synchronous end-to-end; there is
// no internal retry, so a failed run is reported once and retrying is the
// caller's call. Concurrent runs are safe: persistence merges on the
// URL-derived id, so overlapping scrapes of the same page converge.
type Pipeline struct {
	fetcher   Fetcher
	store     ItemStore
	clock     Clock
	events    publisher.Publisher
	snapshots archive.Provider
	logger    *zap.Logger
}

// NewPipeline assembles the orchestrator. events and snapshots may be nil,
// in which case those steps are skipped.
func NewPipeline(
	fetcher Fetcher,
	store ItemStore,
	clock Clock,
	events publisher.Publisher,
	snapshots archive.Provider,
	logger *zap.Logger,
) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		fetcher:   fetcher,
		store:     store,
		clock:     clock,
		events:    events,
		snapshots: snapshots,
		logger:    logger,
	}
}

// Run executes one scrape. Authorization precedes every side effect: an
// unauthenticated or under-privileged caller causes no fetch and no write.
// Zero extracted records is a successful run with a "no items found"
// outcome, skipping persistence entirely.
func (p *Pipeline) Run(ctx context.Context, principal auth.Principal, cfg Config) (Summary, error) {
	if !principal.Authenticated() {
		p.logger.Error("scrape attempt by unauthenticated caller")
		return Summary{}, NewError(CodeUnauthenticated, "you must be logged in to perform this action", nil)
	}
	if !principal.CanWrite() {
		p.logger.Warn("unauthorized scrape attempt", zap.String("subject", principal.Subject))
		return Summary{}, NewError(CodePermissionDenied, "you do not have permission to perform this action", nil)
	}
	if err := cfg.Validate(); err != nil {
		return Summary{}, NewError(CodeInternal, "invalid scrape configuration", err)
	}

	TotalScrapes.Inc()
	p.logger.Info("scrape started",
		zap.String("subject", principal.Subject),
		zap.String("url", cfg.URL),
	)

	page, err := p.fetcher.Fetch(ctx, cfg.URL)
	if err != nil {
		TotalScrapeFailures.WithLabelValues(string(CodeFetchFailed)).Inc()
		return Summary{}, NewError(CodeFetchFailed, fmt.Sprintf("failed to fetch %s", cfg.URL), err)
	}

	base := page.URL
	if base == "" {
		base = cfg.URL
	}
	records, err := Extract(string(page.Body), base, cfg.Selectors)
	if err != nil {
		TotalScrapeFailures.WithLabelValues(string(CodeInternal)).Inc()
		return Summary{}, NewError(CodeInternal, "failed to extract records", err)
	}
	TotalItemsExtracted.Add(float64(len(records)))
	p.logger.Info("extraction finished", zap.Int("records", len(records)))

	if len(records) == 0 {
		return Summary{Message: "no items found", Count: 0}, nil
	}

	now := p.clock.Now()
	items := make([]StoredItem, 0, len(records))
	for _, rec := range records {
		items = append(items, Normalize(rec, base, now))
	}

	count, err := p.store.UpsertBatch(ctx, items)
	if err != nil {
		code := CodeStorage
		var serr *StorageError
		if !errors.As(err, &serr) {
			code = CodeInternal
		}
		TotalScrapeFailures.WithLabelValues(string(code)).Inc()
		return Summary{}, NewError(code, "failed to save scraped items", err)
	}
	TotalItemsUpserted.Add(float64(count))

	p.snapshot(ctx, base, page.Body)
	p.announce(ctx, items[0].Source, base, count)

	p.logger.Info("scrape finished",
		zap.String("subject", principal.Subject),
		zap.Int("count", count),
	)
	return Summary{
		Message: fmt.Sprintf("%d items scraped and saved/updated", count),
		Count:   count,
	}, nil
}

func (p *Pipeline) snapshot(ctx context.Context, pageURL string, body []byte) {
	if p.snapshots == nil {
		return
	}
	uri, err := p.snapshots.Put(ctx, DocumentID(pageURL), "text/html; charset=utf-8", body)
	if err != nil {
		p.logger.Warn("page snapshot failed", zap.Error(err))
		return
	}
	p.logger.Debug("page snapshot stored", zap.String("uri", uri))
}

func (p *Pipeline) announce(ctx context.Context, source, pageURL string, count int) {
	if p.events == nil {
		return
	}
	event := publisher.Event{
		Source:    source,
		URL:       pageURL,
		Count:     count,
		ScrapedAt: p.clock.Now(),
	}
	if err := p.events.Publish(ctx, event); err != nil {
		p.logger.Warn("publish scrape event failed", zap.Error(err))
	}
}
