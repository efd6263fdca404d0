package models

// BatchRequest is the payload for POST /api/v1/portfolio/batch.
type BatchRequest struct {
	// URLs is the list of portfolios to scrape. Required.
	URLs []string `json:"urls" binding:"required,min=1"`

	FetchMode string `json:"fetch_mode,omitempty" binding:"omitempty,oneof=auto browser http"`

	// WebhookURL receives a signed batch.completed event when the job finishes.
	WebhookURL string `json:"webhook_url,omitempty" binding:"omitempty,url"`

	// WebhookSecret signs the webhook body (X-Folio-Signature).
	WebhookSecret string `json:"webhook_secret,omitempty"`
}

// BatchResponse is the immediate response for POST /api/v1/portfolio/batch.
type BatchResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Status  string `json:"status"`
	Total   int    `json:"total"`
}

// BatchStatusResponse is the response for GET /api/v1/portfolio/batch/:id.
type BatchStatusResponse struct {
	ID        string            `json:"id"`
	Status    string            `json:"status"`
	Completed int               `json:"completed"`
	Total     int               `json:"total"`
	Results   []*ScrapeResponse `json:"results,omitempty"`
}

// Batch job states.
const (
	BatchProcessing = "processing"
	BatchCompleted  = "completed"
	BatchPartial    = "partial"
	BatchFailed     = "failed"
)
