// Package scraper implements the scrape-ingest-query core: selector-driven
// extraction of records from a fetched page, identity derivation, and the
// pipeline that persists them.
package scraper

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Selectors locates record fields within a page. Article, Title and Link are
// required; Price is optional and its absence on a candidate never drops it.
type Selectors struct {
	Article string `json:"article" mapstructure:"article"`
	Title   string `json:"title" mapstructure:"title"`
	Link    string `json:"link" mapstructure:"link"`
	Price   string `json:"price,omitempty" mapstructure:"price"`
}

// Config describes one scrape target: the page to fetch and the selectors
// used to locate records within it.
type Config struct {
	URL       string    `json:"url" mapstructure:"url"`
	Selectors Selectors `json:"selectors" mapstructure:"selectors"`
}

// Validate enforces the target invariants: an absolute URL and non-empty
// required selectors.
func (c Config) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("parse target url: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("target url %q must be absolute", c.URL)
	}
	if strings.TrimSpace(c.Selectors.Article) == "" {
		return fmt.Errorf("selectors.article is required")
	}
	if strings.TrimSpace(c.Selectors.Title) == "" {
		return fmt.Errorf("selectors.title is required")
	}
	if strings.TrimSpace(c.Selectors.Link) == "" {
		return fmt.Errorf("selectors.link is required")
	}
	return nil
}

// Record is one extracted item before persistence. Title and URL are always
// non-empty; the extractor drops candidates that cannot satisfy that.
type Record struct {
	Title string
	URL   string
	Price string
}

// StoredItem is a Record plus its derived id and the server-assigned
// persistence timestamp.
type StoredItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Price     string    `json:"price,omitempty"`
	Source    string    `json:"source"`
	ScrapedAt time.Time `json:"scrapedAt"`
}

// Summary is the outward result of a successful pipeline run.
type Summary struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}
