package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/folio/engine"
	"github.com/use-agent/folio/models"
	"github.com/ysmood/gson"
)

// NormalizeURL coerces scheme-less input to https and rejects anything
// that still has no host.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", models.NewScrapeError(models.ErrCodeInvalidInput, "url is required", nil)
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeInvalidInput, "url is not valid", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", models.NewScrapeError(models.ErrCodeInvalidInput, "only http and https urls are supported", nil)
	}
	if u.Hostname() == "" {
		return "", models.NewScrapeError(models.ErrCodeInvalidInput, "url has no host", nil)
	}
	return u.String(), nil
}

// errorPhrases are texts hosts put on their not-found and parked pages.
var errorPhrases = []string{
	"page not found",
	"site not found",
	"404",
	"broken link",
	"doesn't exist on netlify",
	"this page could not be found",
	"the page you are looking for",
	"error 404",
}

// detectErrorPage flags short pages whose visible text reads like an
// error page. Long pages can mention "404" legitimately.
func detectErrorPage(visibleText string, maxChars int) error {
	if len([]rune(visibleText)) >= maxChars {
		return nil
	}
	lower := strings.ToLower(visibleText)
	for _, phrase := range errorPhrases {
		if strings.Contains(lower, phrase) {
			return models.NewErrorPageError(phrase)
		}
	}
	return nil
}

// checkStatus maps the document status to a page failure. StatusUnknown
// passes: browsers do not always expose the status.
func checkStatus(status int) error {
	switch {
	case status == engine.StatusNoResponse:
		return models.NewNoResponseError()
	case status == 404:
		return models.NewNotFoundError()
	case status >= 400:
		return models.NewHTTPStatusError(status)
	}
	return nil
}

// judge rejects fetched documents that are not a usable portfolio page.
func (s *Scraper) judge(r *engine.FetchResult) error {
	if err := checkStatus(r.StatusCode); err != nil {
		return err
	}
	return detectErrorPage(engine.VisibleText(r.HTML), s.cfg.Scraper.ErrorPageMaxChars)
}

// navigate loads target with the engine chain for mode and judges the
// result.
func (s *Scraper) navigate(ctx context.Context, target, mode string) (*engine.FetchResult, error) {
	if s.robots != nil {
		allowed, err := s.robots.Allowed(ctx, target)
		if err != nil {
			return nil, models.NewScrapeError(models.ErrCodeInvalidInput, "url is not valid", err)
		}
		if !allowed {
			return nil, models.NewScrapeError(models.ErrCodeRobotsDisallowed,
				"the site's robots.txt does not allow fetching this page", nil)
		}
	}

	d, err := s.dispatcherFor(mode)
	if err != nil {
		return nil, err
	}
	result, err := d.Dispatch(ctx, &engine.FetchRequest{
		URL:       target,
		UserAgent: s.cfg.Browser.UserAgent,
		Timeout:   s.cfg.Engine.HTTPTimeout,
	})
	if err != nil {
		if _, ok := models.AsScrapeError(err); ok {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, categorizeError(ctx.Err(), "portfolio load timed out")
		}
		return nil, models.NewNavigationError(err)
	}
	if err := s.judge(result); err != nil {
		return nil, err
	}
	return result, nil
}

// waitStrategy is one navigation attempt: the lifecycle event that
// counts as loaded and how long to wait for it.
type waitStrategy struct {
	name    string
	event   proto.PageLifecycleEventName
	timeout time.Duration
}

func (s *Scraper) waitStrategies() []waitStrategy {
	return []waitStrategy{
		{"network-almost-idle", proto.PageLifecycleEventNameNetworkAlmostIdle, s.cfg.Scraper.PrimaryWaitTimeout},
		{"load", proto.PageLifecycleEventNameLoad, s.cfg.Scraper.FallbackWaitTimeout},
	}
}

// statusJS reads the document status from the Navigation Timing entry.
// -1 means there is no entry at all.
const statusJS = `() => {
	try {
		const entries = performance.getEntriesByType("navigation");
		if (entries.length === 0) return -1;
		return entries[0].responseStatus || 0;
	} catch (e) {
		return 0;
	}
}`

// render is the rod engine's fetch function.
//
// Lifecycle (numbered steps match the inline comments):
//
//  1. Acquire tab       – borrow from the pool, DEFER release
//  2. Stealth, UA       – installed before any navigation
//  3. Headers, hijack   – extra headers and resource blocking
//  4. Navigate          – wait strategies in order, first success wins
//  5. Status            – fail fast on 404 / 4xx / 5xx / no response
//  6. Settle, scroll    – let client-side rendering finish
//  7. Capture           – HTML, title, final URL and live design
//
// Every read of the page happens before step 1's deferred release.
func (s *Scraper) render(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	// ── 1. Acquire tab ────────────────────────────────────────────────
	tab, err := s.browser.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer tab.Release()
	page := tab.Page

	// ── 2. Stealth and user agent ─────────────────────────────────────
	if s.cfg.Browser.Stealth {
		remove, evalErr := page.EvalOnNewDocument(stealth.JS)
		if evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
		} else {
			defer func() { _ = remove() }()
		}
	}
	if req.UserAgent != "" {
		if uaErr := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: req.UserAgent}); uaErr != nil {
			slog.Debug("user agent override failed", "error", uaErr)
		}
	}

	// ── 3. Extra headers and hijack router ───────────────────────────
	headers := make(map[string]string, len(req.Headers)+1)
	if u, parseErr := url.Parse(req.URL); parseErr == nil {
		headers["Referer"] = "https://www.google.com/search?q=" + url.QueryEscape(u.Hostname())
	}
	for k, v := range req.Headers {
		headers[k] = v
	}
	_ = proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(headers)}.Call(page)

	if router := s.filter.mount(page); router != nil {
		defer func() { _ = router.Stop() }()
	}

	// ── 4. Navigate ───────────────────────────────────────────────────
	if err := s.load(ctx, page, req.URL); err != nil {
		tab.Fail()
		return nil, err
	}
	p := page.Context(ctx)

	// ── 5. Status check ───────────────────────────────────────────────
	status := engine.StatusUnknown
	if res, evalErr := p.Eval(statusJS); evalErr == nil {
		status = res.Value.Int()
	}
	if err := checkStatus(status); err != nil {
		return nil, err
	}

	// ── 6. Settle and scroll ──────────────────────────────────────────
	if err := sleepCtx(ctx, s.cfg.Scraper.SettleDelay); err != nil {
		return nil, categorizeError(err, "portfolio load timed out")
	}
	if s.cfg.Scraper.ScrollPasses > 0 {
		scroll(p, s.cfg.Scraper.ScrollPasses)
	}

	// ── 7. Capture ────────────────────────────────────────────────────
	rawHTML, err := p.HTML()
	if err != nil {
		tab.Fail()
		return nil, categorizeError(err, "failed to read page HTML")
	}
	finalURL := evalString(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = req.URL
	}

	return &engine.FetchResult{
		HTML:       rawHTML,
		Title:      evalString(p, `() => document.title`),
		StatusCode: status,
		FinalURL:   finalURL,
		Design:     analyzeDesign(p),
	}, nil
}

// load runs the wait strategies in order. Each attempt registers its
// lifecycle waiter before navigating so early events are not missed.
func (s *Scraper) load(ctx context.Context, page *rod.Page, target string) error {
	var lastErr error
	for _, w := range s.waitStrategies() {
		err := attempt(ctx, page, target, w)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return categorizeError(ctx.Err(), "portfolio load timed out")
		}
		slog.Info("navigation attempt failed", "url", target, "strategy", w.name, "error", err)
		lastErr = err
	}
	return models.NewNavigationError(lastErr)
}

func attempt(ctx context.Context, page *rod.Page, target string, w waitStrategy) error {
	attemptCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	p := page.Context(attemptCtx)
	wait := p.WaitNavigation(w.event)
	if err := p.Navigate(target); err != nil {
		return err
	}
	wait()
	return attemptCtx.Err()
}

// scroll moves down one viewport per pass so lazy sections render.
func scroll(p *rod.Page, passes int) {
	res, err := p.Eval(`() => window.innerHeight`)
	if err != nil {
		return
	}
	height := float64(res.Value.Int())
	for i := 0; i < passes; i++ {
		if err := p.Mouse.Scroll(0, height, 0); err != nil {
			slog.Debug("scroll pass failed", "pass", i, "error", err)
			return
		}
		if sleepCtx(p.GetContext(), 250*time.Millisecond) != nil {
			return
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// evalString evaluates js and returns its string result, or "".
func evalString(p *rod.Page, js string) string {
	res, err := p.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// categorizeError wraps raw errors into typed ScrapeErrors so the API layer
// can map them to appropriate HTTP status codes.
func categorizeError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
