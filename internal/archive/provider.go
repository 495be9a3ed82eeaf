// Package archive stores raw page snapshots so a scrape's input can be
// inspected after the fact. Archiving is best-effort and never fails a run.
package archive

import "context"

// Provider writes a page snapshot under a key and returns its URI.
type Provider interface {
	Put(ctx context.Context, key string, contentType string, data []byte) (string, error)
	Close() error
}

// NoOp discards snapshots.
type NoOp struct{}

// Put drops the data and returns a placeholder URI.
func (NoOp) Put(_ context.Context, key string, _ string, _ []byte) (string, error) {
	return "noop://" + key, nil
}

// Close is a no-op.
func (NoOp) Close() error { return nil }
