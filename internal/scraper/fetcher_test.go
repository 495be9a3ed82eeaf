package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCollyFetcher_FetchReturnsBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	fetcher := NewCollyFetcher(5*time.Second, "pageharvest-test/0.1", nil)
	result, err := fetcher.Fetch(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, result.StatusCode)
	require.Contains(t, string(result.Body), "ok")
	require.Equal(t, srv.URL+"/page", result.URL)
}

func TestCollyFetcher_NonOKStatusIsAnError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	fetcher := NewCollyFetcher(5*time.Second, "pageharvest-test/0.1", nil)
	_, err := fetcher.Fetch(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	require.Contains(t, err.Error(), "410")
}

func TestCollyFetcher_UnreachableHost(t *testing.T) {
	t.Parallel()

	// Reserved TEST-NET address; nothing listens there.
	fetcher := NewCollyFetcher(2*time.Second, "pageharvest-test/0.1", nil)
	_, err := fetcher.Fetch(context.Background(), "http://192.0.2.1:9/")
	require.Error(t, err)
}

func TestCollyFetcher_InvalidURL(t *testing.T) {
	t.Parallel()

	fetcher := NewCollyFetcher(time.Second, "pageharvest-test/0.1", nil)
	_, err := fetcher.Fetch(context.Background(), "not-a-url")
	require.Error(t, err)
}
