// Package memory provides an in-process Publisher for tests and local runs.
package memory

import (
	"context"
	"sync"

	"github.com/pageharvest/pageharvest/internal/publisher"
)

// Publisher records events in memory.
type Publisher struct {
	mu     sync.Mutex
	events []publisher.Event
}

// New creates an empty in-memory publisher.
func New() *Publisher {
	return &Publisher{}
}

// Publish appends the event to the in-memory log.
func (p *Publisher) Publish(_ context.Context, event publisher.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Events returns a copy of everything published so far.
func (p *Publisher) Events() []publisher.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]publisher.Event, len(p.events))
	copy(out, p.events)
	return out
}

// Close is a no-op.
func (p *Publisher) Close() error { return nil }
