package models

// ScrapeResponse is the response for POST /api/v1/portfolio/scrape.
type ScrapeResponse struct {
	// Success indicates whether the scrape completed without errors.
	Success bool `json:"success"`

	// Data is the extracted portfolio, nil on failure.
	Data *ScrapeResult `json:"data,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// CacheStatus indicates whether the response was served from cache.
	// Values: "hit", "miss", or empty (caching not requested).
	CacheStatus string `json:"cache_status,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`

	// Suggestion tells the caller how to recover from a page-level failure.
	Suggestion string `json:"suggestion,omitempty"`

	// Changes compares this scrape with the previous stored snapshot.
	// Nil when persistence is disabled or the save failed.
	Changes *ChangeInfo `json:"changes,omitempty"`
}

// ChangeInfo summarizes a stored snapshot.
type ChangeInfo struct {
	SnapshotID       string `json:"snapshot_id"`
	PreviousID       string `json:"previous_id,omitempty"`
	ContentChanged   bool   `json:"content_changed"`
	StructureChanged bool   `json:"structure_changed"`
}

// AnalyzeResponse is the response for POST /api/v1/portfolio/analyze.
type AnalyzeResponse struct {
	Success bool `json:"success"`

	// CurrentStyle is "dark" or "light".
	CurrentStyle string `json:"current_style,omitempty"`

	// ContentSummary is a one-line summary of what was found.
	ContentSummary string `json:"content_summary,omitempty"`

	// Analysis is the generated design and content critique.
	Analysis string `json:"analysis,omitempty"`

	Data *ScrapeResult `json:"data,omitempty"`

	Timing TimingInfo `json:"timing"`

	Error      *ErrorDetail `json:"error,omitempty"`
	Suggestion string       `json:"suggestion,omitempty"`
}

// ImproveResponse is the response for POST /api/v1/content/improve.
type ImproveResponse struct {
	Success         bool         `json:"success"`
	ImprovedContent string       `json:"improved_content,omitempty"`
	Error           *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// ScrapeMs is the time spent loading and extracting the portfolio.
	ScrapeMs int64 `json:"scrape_ms,omitempty"`

	// LLMMs is the time spent waiting on the language model.
	LLMMs int64 `json:"llm_ms,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status    string    `json:"status"` // "healthy" or "degraded"
	Uptime    string    `json:"uptime"`
	PoolStats PoolStats `json:"pool_stats"`
	Version   string    `json:"version"`
}

// PoolStats reports the state of the browser tab pool.
type PoolStats struct {
	Started     bool `json:"started"`
	MaxPages    int  `json:"max_pages"`
	ActivePages int  `json:"active_pages"`
	IdlePages   int  `json:"idle_pages"`
	TotalPages  int  `json:"total_pages"`
	BrowserPID  int  `json:"browser_pid,omitempty"`
}
