package scraper

import (
	"net/url"
	"regexp"
	"time"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// DocumentID derives the stable storage key for a record URL: every
// character outside [A-Za-z0-9] becomes "_". Re-scraping the same URL
// therefore overwrites its row instead of duplicating it. Two distinct URLs
// that differ only in replaced characters collide; the transform is kept
// as-is for compatibility with existing stored ids.
func DocumentID(rawURL string) string {
	return nonAlphanumeric.ReplaceAllString(rawURL, "_")
}

// Normalize converts an extracted record into its stored form: derived id,
// source host taken from the page URL, and the persistence timestamp. When
// the page URL does not yield a host the record's own URL supplies it.
func Normalize(rec Record, pageURL string, scrapedAt time.Time) StoredItem {
	source := hostOf(pageURL)
	if source == "" {
		source = hostOf(rec.URL)
	}
	return StoredItem{
		ID:        DocumentID(rec.URL),
		Title:     rec.Title,
		URL:       rec.URL,
		Price:     rec.Price,
		Source:    source,
		ScrapedAt: scrapedAt,
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
