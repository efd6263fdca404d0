// Package scraper loads portfolio pages and turns them into ScrapeResults.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/use-agent/folio/config"
	"github.com/use-agent/folio/engine"
	"github.com/use-agent/folio/extract"
	"github.com/use-agent/folio/models"
)

// Scraper is the portfolio scraping pipeline: navigate once, extract
// every field, validate. It is safe for concurrent use.
type Scraper struct {
	cfg       *config.Config
	browser   *Browser
	filter    *requestFilter
	extractor *extract.Extractor
	robots    *engine.RobotsChecker
	memory    *engine.DomainMemory

	dispatchers map[string]*engine.Dispatcher
}

// New builds a Scraper. Chrome is not started until a browser fetch
// needs it.
func New(cfg *config.Config) (*Scraper, error) {
	switch cfg.Scraper.FetchMode {
	case config.FetchModeHTTP, config.FetchModeBrowser, config.FetchModeAuto:
	default:
		return nil, fmt.Errorf("scraper: unknown fetch mode %q", cfg.Scraper.FetchMode)
	}

	vocab := extract.DefaultVocabulary()
	if cfg.Scraper.VocabularyFile != "" {
		v, err := extract.LoadVocabulary(cfg.Scraper.VocabularyFile)
		if err != nil {
			return nil, err
		}
		vocab = v
		slog.Info("vocabulary loaded", "file", cfg.Scraper.VocabularyFile,
			"skills", len(v.Skills), "roles", len(v.Roles))
	}

	s := &Scraper{
		cfg:       cfg,
		browser:   NewBrowser(cfg.Browser, cfg.AdaptivePool),
		filter:    newRequestFilter(cfg.Scraper.BlockedResourceTypes, cfg.Scraper.BlockAds),
		extractor: extract.NewExtractor(vocab),
		memory:    engine.NewDomainMemory(cfg.Engine.DomainMemoryTTL),
	}

	httpEngine := engine.NewHTTPEngine(cfg.Browser.UserAgent, cfg.Browser.DefaultProxy)
	rodEngine := engine.NewRodEngine(s.render)
	s.dispatchers = map[string]*engine.Dispatcher{
		config.FetchModeHTTP:    engine.NewDispatcher([]engine.Engine{httpEngine}, nil, nil),
		config.FetchModeBrowser: engine.NewDispatcher([]engine.Engine{rodEngine}, nil, nil),
		config.FetchModeAuto:    engine.NewDispatcher([]engine.Engine{httpEngine, rodEngine}, engine.ShouldEscalate, s.memory),
	}
	if cfg.Scraper.RespectRobots {
		s.robots = engine.NewRobotsChecker(httpEngine.Client(), cfg.Browser.UserAgent)
	}

	slog.Info("scraper ready", "fetchMode", cfg.Scraper.FetchMode,
		"engines", s.dispatchers[cfg.Scraper.FetchMode].Engines())
	return s, nil
}

func (s *Scraper) dispatcherFor(mode string) (*engine.Dispatcher, error) {
	if mode == "" {
		mode = s.cfg.Scraper.FetchMode
	}
	d, ok := s.dispatchers[mode]
	if !ok {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput,
			fmt.Sprintf("unknown fetch mode %q", mode), nil)
	}
	return d, nil
}

// ScrapePortfolio scrapes rawURL with the configured fetch mode.
func (s *Scraper) ScrapePortfolio(ctx context.Context, rawURL string) (*models.ScrapeResult, error) {
	return s.ScrapePortfolioWith(ctx, rawURL, "")
}

// ScrapePortfolioWith scrapes rawURL with an explicit fetch mode; ""
// selects the configured one.
func (s *Scraper) ScrapePortfolioWith(ctx context.Context, rawURL, mode string) (*models.ScrapeResult, error) {
	target, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Scraper.MaxTimeout)
	defer cancel()

	start := time.Now()
	fetched, err := s.navigate(ctx, target, mode)
	if err != nil {
		slog.Info("portfolio navigation failed", "url", target, "error", err)
		return nil, err
	}

	base := fetched.FinalURL
	if base == "" {
		base = target
	}
	page, err := extract.NewPage(fetched.HTML, base)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "failed to parse page", err)
	}

	result := s.extractor.Portfolio(page)
	result.URL = target
	result.FinalURL = fetched.FinalURL
	result.EngineUsed = fetched.EngineName
	result.ScrapedAt = time.Now().UTC()
	result.RawHTML = fetched.HTML
	if fetched.Design != nil {
		result.DesignAnalysis = *fetched.Design
	}

	if err := extract.Validate(&result); err != nil {
		slog.Info("portfolio rejected", "url", target, "error", err)
		return nil, err
	}

	slog.Info("portfolio scraped",
		"url", target,
		"engine", result.EngineUsed,
		"skills", len(result.Skills),
		"projects", len(result.Projects),
		"duration", time.Since(start),
	)
	return &result, nil
}

// Stats reports the browser tab pool.
func (s *Scraper) Stats() models.PoolStats { return s.browser.Stats() }

// Close shuts the browser down. Call it on graceful shutdown to prevent
// zombie Chrome processes.
func (s *Scraper) Close() {
	s.memory.Stop()
	s.browser.Close()
}
