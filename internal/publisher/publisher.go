// Package publisher emits scrape-completion events for downstream
// consumers. Publishing is best-effort: the pipeline logs failures but a
// scrape never fails because of its event.
package publisher

import (
	"context"
	"time"
)

// Event summarizes a completed scrape run.
type Event struct {
	Source    string    `json:"source"`
	URL       string    `json:"url"`
	Count     int       `json:"count"`
	ScrapedAt time.Time `json:"scrapedAt"`
}

// Publisher pushes completion events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
