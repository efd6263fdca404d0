package engine

import (
	"context"
	"fmt"
)

// RodFetchFunc is the browser fetch callback. It is injected by the
// scraper package, which owns the browser, to avoid an import cycle.
type RodFetchFunc func(ctx context.Context, req *FetchRequest) (*FetchResult, error)

// RodEngine renders pages in headless Chrome through a RodFetchFunc.
type RodEngine struct {
	fetchFunc RodFetchFunc
}

// NewRodEngine creates a RodEngine.
func NewRodEngine(fetchFunc RodFetchFunc) *RodEngine {
	return &RodEngine{fetchFunc: fetchFunc}
}

func (e *RodEngine) Name() string { return "rod" }

// Fetch returns the callback's error unwrapped-compatible so typed
// ScrapeErrors (not found, error page) survive to the caller.
func (e *RodEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if e.fetchFunc == nil {
		return nil, fmt.Errorf("rod: fetchFunc not configured")
	}

	r := *req
	result, err := e.fetchFunc(ctx, &r)
	if err != nil {
		return nil, fmt.Errorf("rod: %w", err)
	}

	result.EngineName = e.Name()
	return result, nil
}
