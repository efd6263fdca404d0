package scraper

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/folio/config"
	"github.com/use-agent/folio/engine"
	"github.com/use-agent/folio/models"
)

var errBrowserClosed = errors.New("browser: closed")

// Browser owns one headless Chrome process and its tab pool. Chrome is
// launched on the first Acquire, so HTTP-only deployments never start it.
// It is safe for concurrent use.
type Browser struct {
	cfg     config.BrowserConfig
	poolCfg config.AdaptivePoolConfig

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	pool     *engine.AdaptivePool
	closed   bool

	pagesMu sync.Mutex
	pages   map[int64]*rod.Page
	nextID  atomic.Int64
}

// NewBrowser prepares a Browser without launching Chrome.
func NewBrowser(cfg config.BrowserConfig, poolCfg config.AdaptivePoolConfig) *Browser {
	return &Browser{
		cfg:     cfg,
		poolCfg: poolCfg,
		pages:   make(map[int64]*rod.Page),
	}
}

// start launches Chrome and the pool once. Callers hold b.mu.
func (b *Browser) start() error {
	if b.closed {
		return errBrowserClosed
	}
	if b.browser != nil {
		return nil
	}

	l := launcher.New().
		Headless(b.cfg.Headless).
		NoSandbox(b.cfg.NoSandbox)

	if b.cfg.BrowserBin != "" {
		l = l.Bin(b.cfg.BrowserBin)
	}
	if b.cfg.DefaultProxy != "" {
		l = l.Proxy(b.cfg.DefaultProxy)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to launch browser", err)
	}
	slog.Info("browser launched", "controlURL", controlURL, "pid", l.PID())

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to connect to browser", err)
	}

	b.launcher = l
	b.browser = browser
	b.pool = engine.NewAdaptivePool(engine.AdaptivePoolConfig{
		MinPages:     b.poolCfg.MinPages,
		HardMax:      b.poolCfg.HardMax,
		MemThreshold: b.poolCfg.MemThreshold,
		ScaleStep:    b.poolCfg.ScaleStep,
	}, b.newPage, b.closePage)
	slog.Info("tab pool created", "min", b.poolCfg.MinPages, "max", b.poolCfg.HardMax)
	return nil
}

func (b *Browser) newPage() (int64, error) {
	page, err := b.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return 0, err
	}
	id := b.nextID.Add(1)
	b.pagesMu.Lock()
	b.pages[id] = page
	b.pagesMu.Unlock()
	return id, nil
}

func (b *Browser) closePage(id int64) {
	b.pagesMu.Lock()
	page := b.pages[id]
	delete(b.pages, id)
	b.pagesMu.Unlock()
	if page != nil {
		_ = page.Close()
	}
}

// Tab is a checked-out browser tab. Release must be called exactly once.
type Tab struct {
	Page *rod.Page

	b      *Browser
	handle *engine.PageHandle
	failed bool
	once   sync.Once
}

// Fail marks the tab as having failed its job, which counts against its
// health when released.
func (t *Tab) Fail() { t.failed = true }

// Release blanks the tab and hands it back to the pool. The blanking uses
// the tab without any request context, so it works after a deadline.
func (t *Tab) Release() {
	t.once.Do(func() {
		success := !t.failed
		if err := t.Page.Navigate("about:blank"); err != nil {
			slog.Warn("cleanup: failed to navigate to about:blank", "error", err)
			success = false
		}
		t.b.pool.Put(t.handle, success)
	})
}

// Acquire checks out a tab, launching Chrome if needed. It blocks while
// the pool is at capacity, until ctx is done.
func (b *Browser) Acquire(ctx context.Context) (*Tab, error) {
	b.mu.Lock()
	err := b.start()
	pool := b.pool
	b.mu.Unlock()
	if err != nil {
		return nil, err
	}

	h, err := pool.Get(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, models.NewScrapeError(models.ErrCodeTimeout, "timed out waiting for a browser tab", err)
		}
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to acquire browser tab", err)
	}

	b.pagesMu.Lock()
	page := b.pages[h.ID]
	b.pagesMu.Unlock()
	if page == nil {
		pool.Put(h, false)
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "pooled tab vanished", nil)
	}
	return &Tab{Page: page, b: b, handle: h}, nil
}

// Stats reports pool occupancy. Before launch only MaxPages is set.
func (b *Browser) Stats() models.PoolStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	stats := models.PoolStats{MaxPages: b.poolCfg.HardMax}
	if b.pool == nil {
		return stats
	}
	ps := b.pool.Stats()
	stats.Started = true
	stats.ActivePages = ps.Active
	stats.IdlePages = ps.Idle
	stats.TotalPages = ps.Total
	stats.MaxPages = ps.Max
	stats.BrowserPID = b.launcher.PID()
	return stats
}

// Close stops the pool and kills Chrome. Later Acquire calls fail.
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	if b.browser == nil {
		return
	}

	slog.Info("browser shutting down: draining tab pool")
	b.pool.Stop()
	slog.Info("browser shutting down: closing chrome")
	if err := b.browser.Close(); err != nil {
		slog.Warn("browser close failed, killing process", "error", err)
		b.launcher.Kill()
	}
	b.launcher.Cleanup()
	b.browser = nil
	slog.Info("browser shutdown complete")
}
