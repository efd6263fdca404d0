// Package handler implements the HTTP API endpoints.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/folio/cache"
	"github.com/use-agent/folio/cleaner"
	"github.com/use-agent/folio/config"
	"github.com/use-agent/folio/llm"
	"github.com/use-agent/folio/models"
	"github.com/use-agent/folio/store"
	"github.com/use-agent/folio/webhook"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// pageFailureSuggestion is returned with every page-level scrape failure.
const pageFailureSuggestion = "Please ensure the URL is correct and the portfolio is publicly accessible. The URL should not be a 404 page or require authentication."

// Scraper is the part of *scraper.Scraper the handlers use.
type Scraper interface {
	ScrapePortfolioWith(ctx context.Context, rawURL, mode string) (*models.ScrapeResult, error)
	Stats() models.PoolStats
}

// Deps are the collaborators shared by all handlers. Cache, Store, LLM
// and Webhooks are optional.
type Deps struct {
	Config   *config.Config
	Scraper  Scraper
	Cache    *cache.Cache
	Store    store.Store
	LLM      llm.Generator
	Digester *cleaner.Digester
	Webhooks *webhook.Sender
	Started  time.Time
}

// asScrapeError returns err as a ScrapeError, wrapping foreign errors as
// INTERNAL_ERROR.
func asScrapeError(err error) *models.ScrapeError {
	if se, ok := models.AsScrapeError(err); ok {
		return se
	}
	return models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
}

// suggestionFor is the recovery hint for err, or "".
func suggestionFor(err error) string {
	if models.IsPageFailure(err) {
		return pageFailureSuggestion
	}
	return ""
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeNavigation, models.ErrCodeNotFound, models.ErrCodeHTTPStatus,
		models.ErrCodeNoResponse, models.ErrCodeErrorPage, models.ErrCodeInsufficientData,
		models.ErrCodeRobotsDisallowed, models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeLLMFailure, models.ErrCodeLLMAuthFailure, models.ErrCodeLLMRateLimited:
		return http.StatusBadGateway // 502
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}

func invalidInput(msg string) *models.ErrorDetail {
	return &models.ErrorDetail{Code: models.ErrCodeInvalidInput, Message: msg}
}

// bindJSON decodes the body into req or writes a 400 and returns false.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   invalidInput(err.Error()),
		})
		return false
	}
	return true
}
