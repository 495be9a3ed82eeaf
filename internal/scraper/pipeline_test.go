package scraper_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	archivemem "github.com/pageharvest/pageharvest/internal/archive/memory"
	"github.com/pageharvest/pageharvest/internal/auth"
	pubmem "github.com/pageharvest/pageharvest/internal/publisher/memory"
	"github.com/pageharvest/pageharvest/internal/scraper"
	storemem "github.com/pageharvest/pageharvest/internal/store/memory"
)

const pipelineMarkup = `<html><body>
<article class="product_pod">
	<h3><a href="catalogue/a-light-in-the-attic_1000/index.html" title="A Light in the Attic">A Light ...</a></h3>
	<div class="product_price"><p class="price_color">£51.77</p></div>
</article>
<article class="product_pod">
	<h3><a href="catalogue/tipping-the-velvet_999/index.html" title="Tipping the Velvet">Tipping the Velvet</a></h3>
	<div class="product_price"><p class="price_color">£53.74</p></div>
</article>
</body></html>`

var pipelineTarget = scraper.Config{
	URL: "http://books.toscrape.com/",
	Selectors: scraper.Selectors{
		Article: "article.product_pod",
		Title:   "h3 > a",
		Link:    "h3 > a",
		Price:   "div.product_price > p.price_color",
	},
}

// fakeFetcher counts calls so tests can prove unauthorized runs never fetch.
type fakeFetcher struct {
	calls int
	body  string
	err   error
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) (scraper.FetchResult, error) {
	f.calls++
	if f.err != nil {
		return scraper.FetchResult{}, f.err
	}
	return scraper.FetchResult{URL: rawURL, StatusCode: 200, Body: []byte(f.body)}, nil
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

var (
	adminPrincipal  = auth.Principal{Subject: "admin@example.com", Role: auth.RoleAdmin}
	viewerPrincipal = auth.Principal{Subject: "viewer@example.com", Role: auth.RoleViewer}
)

func TestPipeline_Run_ScrapesAndPersists(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{body: pipelineMarkup}
	store := storemem.New()
	events := pubmem.New()
	snapshots := archivemem.New()
	clock := &fakeClock{now: time.Unix(1700000000, 0).UTC()}
	pipeline := scraper.NewPipeline(fetcher, store, clock, events, snapshots, nil)

	summary, err := pipeline.Run(context.Background(), adminPrincipal, pipelineTarget)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Count)
	require.Equal(t, "2 items scraped and saved/updated", summary.Message)
	require.Equal(t, 2, store.Len())

	id := scraper.DocumentID("http://books.toscrape.com/catalogue/a-light-in-the-attic_1000/index.html")
	item, ok := store.Get(id)
	require.True(t, ok)
	require.Equal(t, "A Light in the Attic", item.Title)
	require.Equal(t, "books.toscrape.com", item.Source)
	require.Equal(t, clock.now, item.ScrapedAt)

	published := events.Events()
	require.Len(t, published, 1)
	require.Equal(t, "books.toscrape.com", published[0].Source)
	require.Equal(t, 2, published[0].Count)

	require.Equal(t, 1, snapshots.Len())
}

func TestPipeline_Run_RescrapeUpdatesTimestampKeepsID(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{body: pipelineMarkup}
	store := storemem.New()
	clock := &fakeClock{now: time.Unix(1700000000, 0).UTC()}
	pipeline := scraper.NewPipeline(fetcher, store, clock, nil, nil, nil)

	_, err := pipeline.Run(context.Background(), adminPrincipal, pipelineTarget)
	require.NoError(t, err)

	clock.now = clock.now.Add(time.Hour)
	_, err = pipeline.Run(context.Background(), adminPrincipal, pipelineTarget)
	require.NoError(t, err)

	// Still one document per URL, with a fresher timestamp.
	require.Equal(t, 2, store.Len())
	id := scraper.DocumentID("http://books.toscrape.com/catalogue/tipping-the-velvet_999/index.html")
	item, ok := store.Get(id)
	require.True(t, ok)
	require.Equal(t, clock.now, item.ScrapedAt)
}

func TestPipeline_Run_UnauthenticatedPerformsNoFetch(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{body: pipelineMarkup}
	store := storemem.New()
	pipeline := scraper.NewPipeline(fetcher, store, &fakeClock{}, nil, nil, nil)

	_, err := pipeline.Run(context.Background(), auth.Principal{}, pipelineTarget)
	require.Equal(t, scraper.CodeUnauthenticated, scraper.CodeOf(err))
	require.Zero(t, fetcher.calls)
	require.Zero(t, store.Len())
}

func TestPipeline_Run_ViewerRolePerformsNoFetch(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{body: pipelineMarkup}
	store := storemem.New()
	pipeline := scraper.NewPipeline(fetcher, store, &fakeClock{}, nil, nil, nil)

	_, err := pipeline.Run(context.Background(), viewerPrincipal, pipelineTarget)
	require.Equal(t, scraper.CodePermissionDenied, scraper.CodeOf(err))
	require.Zero(t, fetcher.calls)
	require.Zero(t, store.Len())
}

func TestPipeline_Run_FetchFailureLeavesStoreUnchanged(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{err: errors.New("dial tcp: connection refused")}
	store := storemem.New()
	pipeline := scraper.NewPipeline(fetcher, store, &fakeClock{}, nil, nil, nil)

	_, err := pipeline.Run(context.Background(), adminPrincipal, pipelineTarget)
	require.Equal(t, scraper.CodeFetchFailed, scraper.CodeOf(err))
	require.Zero(t, store.Len())
}

func TestPipeline_Run_NothingFoundIsSuccess(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{body: "<html><body><p>empty shelf</p></body></html>"}
	store := storemem.New()
	events := pubmem.New()
	pipeline := scraper.NewPipeline(fetcher, store, &fakeClock{}, events, nil, nil)

	summary, err := pipeline.Run(context.Background(), adminPrincipal, pipelineTarget)
	require.NoError(t, err)
	require.Zero(t, summary.Count)
	require.Equal(t, "no items found", summary.Message)
	require.Zero(t, store.Len())
	// Persistence was skipped, so no event either.
	require.Empty(t, events.Events())
}

func TestPipeline_Run_InvalidConfigRejected(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{body: pipelineMarkup}
	pipeline := scraper.NewPipeline(fetcher, storemem.New(), &fakeClock{}, nil, nil, nil)

	bad := pipelineTarget
	bad.URL = "/relative/only"
	_, err := pipeline.Run(context.Background(), adminPrincipal, bad)
	require.Error(t, err)
	require.Zero(t, fetcher.calls)
}

func TestPipeline_Run_StorageFailureSurfacesCode(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{body: pipelineMarkup}
	store := &failingStore{err: scraper.NewStorageError(scraper.StorageUnavailable, errors.New("down"))}
	pipeline := scraper.NewPipeline(fetcher, store, &fakeClock{}, nil, nil, nil)

	_, err := pipeline.Run(context.Background(), adminPrincipal, pipelineTarget)
	require.Equal(t, scraper.CodeStorage, scraper.CodeOf(err))
	reason, ok := scraper.StorageReasonOf(err)
	require.True(t, ok)
	require.Equal(t, scraper.StorageUnavailable, reason)
}

type failingStore struct {
	err error
}

func (s *failingStore) UpsertBatch(context.Context, []scraper.StoredItem) (int, error) {
	return 0, s.err
}

func (s *failingStore) List(context.Context, string, scraper.Direction, int) ([]scraper.StoredItem, error) {
	return nil, s.err
}
