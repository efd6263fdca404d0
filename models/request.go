package models

// ScrapeRequest is the payload for POST /api/v1/portfolio/scrape.
type ScrapeRequest struct {
	// URL is the portfolio to scrape. Required. A missing scheme is
	// treated as https.
	URL string `json:"url" binding:"required"`

	// FetchMode overrides the server default for this request.
	// "browser": headless Chrome. "http": plain fetch, no JS.
	// "auto": HTTP first, browser when the page needs JS.
	FetchMode string `json:"fetch_mode,omitempty" binding:"omitempty,oneof=auto browser http"`

	// MaxAge allows a cached result up to this many milliseconds old.
	// 0 uses the server default; negative values bypass the cache.
	MaxAge int64 `json:"max_age,omitempty"`
}

// AnalyzeRequest is the payload for POST /api/v1/portfolio/analyze.
type AnalyzeRequest struct {
	URL       string `json:"url" binding:"required"`
	FetchMode string `json:"fetch_mode,omitempty" binding:"omitempty,oneof=auto browser http"`
}

// ImproveRequest is the payload for POST /api/v1/content/improve.
type ImproveRequest struct {
	// Field is the kind of content being rewritten.
	Field string `json:"field" binding:"required,oneof=bio project"`

	// Content is the user's current text.
	Content string `json:"content" binding:"required"`
}
