package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/use-agent/folio/models"
)

// EscalateFunc decides whether a result from a lighter engine is too thin
// to use and the next engine in the chain should be tried.
type EscalateFunc func(*FetchResult) bool

// Dispatcher runs engines in order, cheapest first, and escalates to the
// next engine when a fetch fails or its result needs escalation.
// The engine that finally served a domain is remembered so later
// requests skip straight to it.
type Dispatcher struct {
	engines  []Engine
	escalate EscalateFunc
	memory   *DomainMemory
}

// NewDispatcher creates a Dispatcher. memory and escalate may be nil.
func NewDispatcher(engines []Engine, escalate EscalateFunc, memory *DomainMemory) *Dispatcher {
	if escalate == nil {
		escalate = func(*FetchResult) bool { return false }
	}
	return &Dispatcher{
		engines:  engines,
		escalate: escalate,
		memory:   memory,
	}
}

// Engines returns the engine names in escalation order.
func (d *Dispatcher) Engines() []string {
	names := make([]string, len(d.engines))
	for i, e := range d.engines {
		names[i] = e.Name()
	}
	return names
}

// Dispatch fetches req with the remembered engine for its domain, or the
// full chain otherwise. Page-level failures (404, error status, error page)
// end the chain immediately: every engine would see the same page.
func (d *Dispatcher) Dispatch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if len(d.engines) == 0 {
		return nil, fmt.Errorf("dispatcher: no engines configured")
	}
	domain := extractDomain(req.URL)

	if d.memory != nil {
		if remembered := d.memory.Get(domain); remembered != "" {
			for _, eng := range d.engines {
				if eng.Name() != remembered {
					continue
				}
				slog.Debug("domain memory hit", "domain", domain, "engine", remembered)
				result, err := eng.Fetch(ctx, req)
				if err == nil {
					return result, nil
				}
				if models.IsPageFailure(err) || ctx.Err() != nil {
					return nil, err
				}
				slog.Info("remembered engine failed, running full chain",
					"domain", domain, "engine", remembered, "error", err)
				d.memory.Delete(domain)
				break
			}
		}
	}

	return d.chain(ctx, req, domain)
}

func (d *Dispatcher) chain(ctx context.Context, req *FetchRequest, domain string) (*FetchResult, error) {
	var (
		lastErr   error
		fallback  *FetchResult // thin result kept in case heavier engines fail
		lastIndex = len(d.engines) - 1
	)

	for i, eng := range d.engines {
		slog.Debug("engine starting", "engine", eng.Name(), "url", req.URL)
		result, err := eng.Fetch(ctx, req)
		if err != nil {
			if models.IsPageFailure(err) || ctx.Err() != nil {
				return nil, err
			}
			slog.Debug("engine failed", "engine", eng.Name(), "url", req.URL, "error", err)
			lastErr = err
			continue
		}

		if i < lastIndex && d.escalate(result) {
			slog.Info("escalating to next engine", "from", eng.Name(), "url", req.URL)
			fallback = result
			continue
		}

		d.remember(domain, result.EngineName)
		return result, nil
	}

	if fallback != nil {
		slog.Warn("heavier engines failed, using thin result",
			"engine", fallback.EngineName, "url", req.URL, "error", lastErr)
		return fallback, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("dispatcher: all engines failed for %s", req.URL)
	}
	return nil, lastErr
}

func (d *Dispatcher) remember(domain, engineName string) {
	if d.memory != nil && len(d.engines) > 1 {
		d.memory.Set(domain, engineName)
	}
}

// extractDomain parses the hostname from a URL string.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
