package store

import (
	"context"
	"sync"

	"github.com/use-agent/folio/models"
)

// Memory keeps only the latest snapshot per URL, in process. It backs
// the CLI and tests when no MongoDB is configured.
type Memory struct {
	mu     sync.Mutex
	latest map[string]*Snapshot
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{latest: make(map[string]*Snapshot)}
}

// SaveSnapshot validates r and replaces the latest snapshot for its URL.
func (m *Memory) SaveSnapshot(_ context.Context, r *models.ScrapeResult) (*Snapshot, error) {
	if err := Validate(r); err != nil {
		return nil, storageError("result does not match the snapshot schema", err)
	}

	key := NormalizeURL(r.URL)
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := NewSnapshot(r, m.latest[key])
	m.latest[key] = snap
	return snap, nil
}

// Latest returns the newest snapshot for url, or nil.
func (m *Memory) Latest(_ context.Context, url string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest[NormalizeURL(url)], nil
}

// Close is a no-op.
func (m *Memory) Close(context.Context) error { return nil }
