package engine

import (
	"context"
	"time"

	"github.com/use-agent/folio/models"
)

// Engine is the interface that all fetch engines must implement.
type Engine interface {
	// Name returns the engine identifier ("http" or "rod").
	Name() string

	// Fetch retrieves the page content for the given request.
	// A 4xx/5xx from the target is a successful fetch: the status is
	// reported in FetchResult and judged by the caller.
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// FetchRequest contains everything an engine needs to fetch a page.
type FetchRequest struct {
	URL       string
	UserAgent string
	Headers   map[string]string
	Timeout   time.Duration
}

// Status sentinels for FetchResult.StatusCode.
const (
	// StatusUnknown means the page loaded but the engine could not read the status.
	StatusUnknown = 0

	// StatusNoResponse means navigation completed without a document response.
	StatusNoResponse = -1
)

// FetchResult is the output of a successful engine fetch.
type FetchResult struct {
	HTML       string
	Title      string
	StatusCode int
	FinalURL   string
	EngineName string

	// Design is the live design analysis, nil when the engine cannot
	// evaluate styles (plain HTTP).
	Design *models.DesignAnalysis
}
