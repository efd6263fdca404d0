package engine

import (
	"sync"
	"time"
)

type domainEntry struct {
	engineName string
	expiresAt  time.Time
}

// DomainMemory remembers which engine last served each portfolio host.
// Entries expire after ttl; a sweeper drops stale ones hourly.
type DomainMemory struct {
	mu      sync.Mutex
	entries map[string]domainEntry
	ttl     time.Duration
	now     func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

// NewDomainMemory creates a DomainMemory and starts its sweeper.
func NewDomainMemory(ttl time.Duration) *DomainMemory {
	dm := &DomainMemory{
		entries: make(map[string]domainEntry),
		ttl:     ttl,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go dm.sweepLoop()
	return dm
}

// Get returns the remembered engine name for a domain, or "" if unknown or expired.
func (dm *DomainMemory) Get(domain string) string {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	entry, ok := dm.entries[domain]
	if !ok {
		return ""
	}
	if dm.now().After(entry.expiresAt) {
		delete(dm.entries, domain)
		return ""
	}
	return entry.engineName
}

// Set records which engine served a domain.
func (dm *DomainMemory) Set(domain, engineName string) {
	dm.mu.Lock()
	dm.entries[domain] = domainEntry{engineName: engineName, expiresAt: dm.now().Add(dm.ttl)}
	dm.mu.Unlock()
}

// Delete forgets a domain.
func (dm *DomainMemory) Delete(domain string) {
	dm.mu.Lock()
	delete(dm.entries, domain)
	dm.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included.
func (dm *DomainMemory) Len() int {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return len(dm.entries)
}

// Stop terminates the sweeper. Safe to call more than once.
func (dm *DomainMemory) Stop() {
	dm.stopOnce.Do(func() { close(dm.done) })
}

func (dm *DomainMemory) sweepLoop() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-dm.done:
			return
		case <-ticker.C:
			dm.sweep()
		}
	}
}

func (dm *DomainMemory) sweep() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	now := dm.now()
	for domain, entry := range dm.entries {
		if now.After(entry.expiresAt) {
			delete(dm.entries, domain)
		}
	}
}
