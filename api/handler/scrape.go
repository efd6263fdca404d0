package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/folio/cache"
	"github.com/use-agent/folio/models"
	"github.com/use-agent/folio/scraper"
	"github.com/use-agent/folio/store"
)

// Scrape returns a handler for POST /api/v1/portfolio/scrape.
//
// Orchestration flow:
//  1. Parse & validate request.
//  2. Cache lookup when max_age allows it.
//  3. Scraper.ScrapePortfolioWith → ScrapeResult (records scrape_ms).
//  4. Cache store and snapshot persistence, both best effort.
//  5. Fill Timing, return 200.
func Scrape(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ScrapeRequest
		if !bindJSON(c, &req) {
			return
		}

		resp, err := d.scrapeOne(c.Request.Context(), req.URL, req.FetchMode, d.maxAge(req.MaxAge))
		if err != nil {
			c.JSON(mapErrorToStatus(asScrapeError(err)), resp)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// maxAge resolves the request's max_age in milliseconds: 0 selects the
// server default, negative bypasses the cache.
func (d *Deps) maxAge(ms int64) time.Duration {
	switch {
	case ms < 0:
		return 0
	case ms == 0:
		return d.Config.Cache.DefaultMaxAge
	default:
		return time.Duration(ms) * time.Millisecond
	}
}

// scrapeOne scrapes rawURL with cache and persistence around it. On
// failure the returned response already carries the error detail.
func (d *Deps) scrapeOne(ctx context.Context, rawURL, mode string, maxAge time.Duration) (*models.ScrapeResponse, error) {
	totalStart := time.Now()
	if mode == "" {
		mode = d.Config.Scraper.FetchMode
	}

	// ── 1. Cache lookup ────────────────────────────────────────────
	var cacheKey string
	if d.Cache != nil && maxAge > 0 {
		if target, err := scraper.NormalizeURL(rawURL); err == nil {
			cacheKey = cache.Key(target, mode)
			if cached, hit := d.Cache.Get(cacheKey, maxAge); hit {
				return &models.ScrapeResponse{
					Success:     true,
					Data:        cached,
					CacheStatus: "hit",
					Timing:      models.TimingInfo{TotalMs: time.Since(totalStart).Milliseconds()},
				}, nil
			}
		}
	}

	// ── 2. Scrape ──────────────────────────────────────────────────
	scrapeStart := time.Now()
	result, err := d.Scraper.ScrapePortfolioWith(ctx, rawURL, mode)
	scrapeMs := time.Since(scrapeStart).Milliseconds()
	if err != nil {
		return &models.ScrapeResponse{
			Success:    false,
			Error:      asScrapeError(err).ToDetail(),
			Suggestion: suggestionFor(err),
			Timing: models.TimingInfo{
				TotalMs:  time.Since(totalStart).Milliseconds(),
				ScrapeMs: scrapeMs,
			},
		}, err
	}

	resp := &models.ScrapeResponse{Success: true, Data: result}

	// ── 3. Cache store ─────────────────────────────────────────────
	if cacheKey != "" {
		d.Cache.Set(cacheKey, result)
		resp.CacheStatus = "miss"
	}

	// ── 4. Persist ─────────────────────────────────────────────────
	if d.Store != nil {
		snap, err := d.Store.SaveSnapshot(ctx, result)
		if err != nil {
			slog.Warn("snapshot save failed", "url", result.URL, "error", err)
		} else {
			resp.Changes = changeInfo(snap)
		}
	}

	resp.Timing = models.TimingInfo{
		TotalMs:  time.Since(totalStart).Milliseconds(),
		ScrapeMs: scrapeMs,
	}
	return resp, nil
}

func changeInfo(s *store.Snapshot) *models.ChangeInfo {
	return &models.ChangeInfo{
		SnapshotID:       s.ID,
		PreviousID:       s.PreviousID,
		ContentChanged:   s.ContentChanged,
		StructureChanged: s.StructureChanged,
	}
}
