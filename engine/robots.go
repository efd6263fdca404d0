package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// robotsTTL is how long a host's parsed robots.txt is reused.
const robotsTTL = time.Hour

type robotsEntry struct {
	data      *robotstxt.RobotsData
	fetchedAt time.Time
}

// RobotsChecker answers whether a URL may be fetched under the host's
// robots.txt. Lookups are cached per scheme+host.
type RobotsChecker struct {
	client *http.Client
	agent  string

	mu    sync.Mutex
	hosts map[string]robotsEntry
}

// NewRobotsChecker creates a checker that identifies itself as agent.
func NewRobotsChecker(client *http.Client, agent string) *RobotsChecker {
	return &RobotsChecker{
		client: client,
		agent:  agent,
		hosts:  make(map[string]robotsEntry),
	}
}

// Allowed reports whether rawURL may be fetched. An unreachable
// robots.txt allows everything; a 5xx disallows everything, following
// the usual crawler convention.
func (rc *RobotsChecker) Allowed(ctx context.Context, rawURL string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("robots: parse url: %w", err)
	}
	key := u.Scheme + "://" + u.Host

	data, err := rc.lookup(ctx, key)
	if err != nil {
		slog.Debug("robots.txt unavailable, allowing", "host", u.Host, "error", err)
		return true, nil
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return data.TestAgent(path, rc.agent), nil
}

func (rc *RobotsChecker) lookup(ctx context.Context, origin string) (*robotstxt.RobotsData, error) {
	rc.mu.Lock()
	entry, ok := rc.hosts[origin]
	rc.mu.Unlock()
	if ok && time.Since(entry.fetchedAt) < robotsTTL {
		return entry.data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil, err
	}
	resp, err := rc.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512<<10))
	if err != nil {
		return nil, err
	}
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, err
	}

	rc.mu.Lock()
	rc.hosts[origin] = robotsEntry{data: data, fetchedAt: time.Now()}
	rc.mu.Unlock()
	return data, nil
}
