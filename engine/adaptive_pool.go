package engine

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// ErrPoolClosed is returned by Get after Stop.
var ErrPoolClosed = errors.New("adaptive_pool: pool closed")

// Health scoring. A success heals half a point, a failure costs one.
// A tab is retired when any limit is crossed.
const (
	retireErrScore = 3.0
	retireUses     = 50
	retireAge      = 50 * time.Minute
)

// PageHandle is a pooled tab identified by ID, with health tracking.
// The pool never touches the tab itself; the factory's owner maps IDs
// to real pages.
type PageHandle struct {
	ID       int64
	errScore float64
	useCount int
	created  time.Time
	mu       sync.Mutex
}

// NewPageHandle creates a new PageHandle with the given ID.
func NewPageHandle(id int64) *PageHandle {
	return &PageHandle{ID: id, created: time.Now()}
}

// RecordSuccess decreases the error score (min 0).
func (h *PageHandle) RecordSuccess() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.useCount++
	h.errScore = math.Max(0, h.errScore-0.5)
}

// RecordFailure increases the error score.
func (h *PageHandle) RecordFailure() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.useCount++
	h.errScore += 1.0
}

// ShouldRetire reports whether the tab has become too unhealthy, too used or too old.
func (h *PageHandle) ShouldRetire() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.errScore >= retireErrScore ||
		h.useCount >= retireUses ||
		time.Since(h.created) >= retireAge
}

// AdaptivePoolConfig holds configuration for the adaptive pool.
type AdaptivePoolConfig struct {
	MinPages     int
	HardMax      int
	MemThreshold float64 // 0.0–1.0, heap in-use fraction that triggers shrinking
	ScaleStep    float64 // 0.0–1.0, fraction to grow/shrink per check
}

// PageFactory creates a new tab and returns its ID.
type PageFactory func() (int64, error)

// PageDestroyer closes a tab by ID.
type PageDestroyer func(id int64)

// PoolStats is a point-in-time view of the pool.
type PoolStats struct {
	Total  int
	Active int
	Idle   int
	Max    int
}

// AdaptivePool bounds the number of live tabs to HardMax, reuses healthy
// tabs, retires unhealthy ones, and trims idle tabs under memory pressure.
type AdaptivePool struct {
	cfg       AdaptivePoolConfig
	factory   PageFactory
	destroyer PageDestroyer

	idle     chan *PageHandle
	mu       sync.Mutex
	all      map[int64]*PageHandle
	reserved int // slots claimed by in-flight factory calls
	active   atomic.Int32

	stopped  chan struct{}
	stopOnce sync.Once
}

// NewAdaptivePool creates a pool, pre-creates MinPages tabs, and starts
// the scaling loop. Pre-creation failures are logged, not fatal: tabs are
// created on demand later.
func NewAdaptivePool(cfg AdaptivePoolConfig, factory PageFactory, destroyer PageDestroyer) *AdaptivePool {
	if cfg.MinPages < 1 {
		cfg.MinPages = 1
	}
	if cfg.HardMax < cfg.MinPages {
		cfg.HardMax = cfg.MinPages
	}
	if cfg.MemThreshold <= 0 {
		cfg.MemThreshold = 0.9
	}
	if cfg.ScaleStep <= 0 {
		cfg.ScaleStep = 0.1
	}

	ap := &AdaptivePool{
		cfg:       cfg,
		factory:   factory,
		destroyer: destroyer,
		idle:      make(chan *PageHandle, cfg.HardMax),
		all:       make(map[int64]*PageHandle),
		stopped:   make(chan struct{}),
	}

	for i := 0; i < cfg.MinPages; i++ {
		h, err := ap.create()
		if err != nil {
			slog.Warn("adaptive_pool: failed to pre-create page", "error", err)
			continue
		}
		ap.idle <- h
	}

	go ap.scalingLoop()
	return ap
}

// Get checks out a tab. It prefers an idle tab, creates one while under
// HardMax, and otherwise waits until a tab is returned, ctx is done, or
// the pool is stopped.
func (ap *AdaptivePool) Get(ctx context.Context) (*PageHandle, error) {
	select {
	case <-ap.stopped:
		return nil, ErrPoolClosed
	default:
	}

	select {
	case h := <-ap.idle:
		ap.active.Add(1)
		return h, nil
	default:
	}

	if ap.tryReserve() {
		h, err := ap.createReserved()
		if err == nil {
			ap.active.Add(1)
			return h, nil
		}
		slog.Warn("adaptive_pool: failed to create page, waiting for an idle one", "error", err)
	}

	select {
	case h := <-ap.idle:
		ap.active.Add(1)
		return h, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-ap.stopped:
		return nil, ErrPoolClosed
	}
}

// Put returns a tab. Unhealthy tabs are destroyed, and replaced when the
// pool would otherwise drop below MinPages.
func (ap *AdaptivePool) Put(h *PageHandle, success bool) {
	ap.active.Add(-1)

	if success {
		h.RecordSuccess()
	} else {
		h.RecordFailure()
	}

	select {
	case <-ap.stopped:
		ap.destroy(h)
		return
	default:
	}

	if !h.ShouldRetire() {
		ap.idle <- h
		return
	}

	slog.Debug("adaptive_pool: retiring page", "id", h.ID)
	ap.destroy(h)

	if ap.Size() < ap.cfg.MinPages {
		if fresh, err := ap.create(); err == nil {
			ap.idle <- fresh
		}
	}
}

// Size returns the total number of live tabs.
func (ap *AdaptivePool) Size() int {
	ap.mu.Lock()
	defer ap.mu.Unlock()
	return len(ap.all)
}

// ActiveCount returns the number of checked-out tabs.
func (ap *AdaptivePool) ActiveCount() int {
	return int(ap.active.Load())
}

// Stats returns a snapshot of the pool.
func (ap *AdaptivePool) Stats() PoolStats {
	total := ap.Size()
	active := ap.ActiveCount()
	return PoolStats{
		Total:  total,
		Active: active,
		Idle:   len(ap.idle),
		Max:    ap.cfg.HardMax,
	}
}

// Stop halts scaling and destroys every tab. Checked-out tabs are
// destroyed when they are returned.
func (ap *AdaptivePool) Stop() {
	ap.stopOnce.Do(func() {
		close(ap.stopped)
		for {
			select {
			case h := <-ap.idle:
				ap.destroy(h)
			default:
				return
			}
		}
	})
}

func (ap *AdaptivePool) tryReserve() bool {
	ap.mu.Lock()
	defer ap.mu.Unlock()
	if len(ap.all)+ap.reserved >= ap.cfg.HardMax {
		return false
	}
	ap.reserved++
	return true
}

// create reserves a slot and builds a tab.
func (ap *AdaptivePool) create() (*PageHandle, error) {
	if !ap.tryReserve() {
		return nil, errors.New("adaptive_pool: at hard max")
	}
	return ap.createReserved()
}

// createReserved runs the factory outside the lock for a reserved slot.
func (ap *AdaptivePool) createReserved() (*PageHandle, error) {
	id, err := ap.factory()

	ap.mu.Lock()
	defer ap.mu.Unlock()
	ap.reserved--
	if err != nil {
		return nil, err
	}
	h := NewPageHandle(id)
	ap.all[id] = h
	return h, nil
}

func (ap *AdaptivePool) destroy(h *PageHandle) {
	ap.mu.Lock()
	delete(ap.all, h.ID)
	ap.mu.Unlock()
	ap.destroyer(h.ID)
}

func (ap *AdaptivePool) scalingLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ap.stopped:
			return
		case <-ticker.C:
			ap.scaleCheck(heapPressure())
		}
	}
}

func heapPressure() float64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	if m.HeapSys == 0 {
		return 0
	}
	return float64(m.HeapInuse) / float64(m.HeapSys)
}

// scaleCheck shrinks idle tabs under memory pressure, or pre-warms tabs
// when most of the pool is busy.
func (ap *AdaptivePool) scaleCheck(memPressure float64) {
	total := ap.Size()
	if total == 0 {
		return
	}
	step := int(math.Ceil(float64(total) * ap.cfg.ScaleStep))
	activeRate := float64(ap.ActiveCount()) / float64(total)

	switch {
	case memPressure > ap.cfg.MemThreshold:
		for i := 0; i < step && ap.Size() > ap.cfg.MinPages; i++ {
			select {
			case h := <-ap.idle:
				slog.Debug("adaptive_pool: shrinking, retiring page", "id", h.ID)
				ap.destroy(h)
			default:
				return
			}
		}
	case activeRate > 0.8:
		for i := 0; i < step; i++ {
			h, err := ap.create()
			if err != nil {
				return
			}
			slog.Debug("adaptive_pool: grew pool", "id", h.ID)
			ap.idle <- h
		}
	}
}
