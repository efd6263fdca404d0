package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/folio/llm"
	"github.com/use-agent/folio/models"
)

// digestTokens bounds the page Markdown included in analysis prompts.
const digestTokens = 1500

var llmDisabled = &models.ErrorDetail{
	Code:    models.ErrCodeLLMFailure,
	Message: "no language model is configured on this server",
}

// Analyze returns a handler for POST /api/v1/portfolio/analyze: scrape
// the portfolio, then ask the model for a design and content critique.
func Analyze(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()
		if d.LLM == nil {
			c.JSON(http.StatusServiceUnavailable, models.AnalyzeResponse{Error: llmDisabled})
			return
		}

		var req models.AnalyzeRequest
		if !bindJSON(c, &req) {
			return
		}

		// ── 1. Scrape ───────────────────────────────────────────────
		scraped, err := d.scrapeOne(c.Request.Context(), req.URL, req.FetchMode, d.maxAge(0))
		if err != nil {
			c.JSON(mapErrorToStatus(asScrapeError(err)), models.AnalyzeResponse{
				Error:      scraped.Error,
				Suggestion: scraped.Suggestion,
				Timing:     scraped.Timing,
			})
			return
		}
		result := scraped.Data

		// ── 2. Prompt ───────────────────────────────────────────────
		var digest string
		if d.Digester != nil && result.RawHTML != "" {
			digest = d.Digester.Digest(result.RawHTML, result.URL, digestTokens).Markdown
		}
		prompt := llm.AnalysisPrompt(result, digest)

		// ── 3. Generate ─────────────────────────────────────────────
		llmStart := time.Now()
		analysis, err := d.LLM.Generate(c.Request.Context(), prompt, llm.AnalysisMaxTokens)
		timing := models.TimingInfo{
			TotalMs:  time.Since(totalStart).Milliseconds(),
			ScrapeMs: scraped.Timing.ScrapeMs,
			LLMMs:    time.Since(llmStart).Milliseconds(),
		}
		if err != nil {
			slog.Warn("portfolio analysis failed", "url", result.URL, "error", err)
			se := asScrapeError(err)
			c.JSON(mapErrorToStatus(se), models.AnalyzeResponse{Error: se.ToDetail(), Timing: timing})
			return
		}

		c.JSON(http.StatusOK, models.AnalyzeResponse{
			Success:        true,
			CurrentStyle:   llm.CurrentStyle(result),
			ContentSummary: llm.ContentSummary(result),
			Analysis:       analysis,
			Data:           result,
			Timing:         timing,
		})
	}
}

// Improve returns a handler for POST /api/v1/content/improve.
func Improve(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d.LLM == nil {
			c.JSON(http.StatusServiceUnavailable, models.ImproveResponse{Error: llmDisabled})
			return
		}

		var req models.ImproveRequest
		if !bindJSON(c, &req) {
			return
		}
		prompt, err := llm.ImprovePrompt(req.Field, req.Content)
		if err != nil {
			se := asScrapeError(err)
			c.JSON(mapErrorToStatus(se), models.ImproveResponse{Error: se.ToDetail()})
			return
		}

		improved, err := d.LLM.Generate(c.Request.Context(), prompt, llm.ImproveMaxTokens)
		if err != nil {
			slog.Warn("content improvement failed", "field", req.Field, "error", err)
			se := asScrapeError(err)
			c.JSON(mapErrorToStatus(se), models.ImproveResponse{Error: se.ToDetail()})
			return
		}
		c.JSON(http.StatusOK, models.ImproveResponse{Success: true, ImprovedContent: improved})
	}
}
