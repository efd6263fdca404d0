// Command folio-mcp exposes the folio HTTP API as MCP tools over stdio.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/folio/models"
)

// client talks to a running folio server.
type client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

func main() {
	apiURL := os.Getenv("FOLIO_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	c := &client{
		http:    &http.Client{Timeout: 180 * time.Second},
		baseURL: strings.TrimRight(apiURL, "/"),
		apiKey:  os.Getenv("FOLIO_API_KEY"),
	}

	s := server.NewMCPServer(
		"folio",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	s.AddTool(mcp.NewTool("scrape_portfolio",
		mcp.WithDescription("Scrape a personal portfolio site and return the owner's name, title, bio, skills, projects, experience and education. Renders JavaScript-heavy sites in a headless browser."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The portfolio URL; a missing scheme defaults to https"),
		),
		mcp.WithString("fetch_mode",
			mcp.Description("'browser' (default, headless Chrome), 'http' (static HTML only) or 'auto' (HTTP first, browser when the page needs it)"),
			mcp.Enum("browser", "http", "auto"),
		),
	), c.handleScrape)

	s.AddTool(mcp.NewTool("analyze_portfolio",
		mcp.WithDescription("Scrape a portfolio and return a short critique of its design and content from a language model. The server needs an LLM API key."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The portfolio URL"),
		),
		mcp.WithString("fetch_mode",
			mcp.Description("'browser', 'http' or 'auto'"),
			mcp.Enum("browser", "http", "auto"),
		),
	), c.handleAnalyze)

	s.AddTool(mcp.NewTool("improve_content",
		mcp.WithDescription("Rewrite a portfolio bio or project description to read more professionally."),
		mcp.WithString("field",
			mcp.Required(),
			mcp.Description("What the text is"),
			mcp.Enum("bio", "project"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The text to improve"),
		),
	), c.handleImprove)

	s.AddTool(mcp.NewTool("batch_scrape_portfolios",
		mcp.WithDescription("Scrape several portfolios in parallel and summarise each one."),
		mcp.WithArray("urls",
			mcp.Required(),
			mcp.Description("Portfolio URLs to scrape"),
		),
		mcp.WithString("fetch_mode",
			mcp.Description("'browser', 'http' or 'auto'"),
			mcp.Enum("browser", "http", "auto"),
		),
	), c.handleBatch)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// do sends a request to the folio API and decodes the JSON body into out.
// Error responses still decode: folio reports failures in the body.
func (c *client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse response (status %d): %w", resp.StatusCode, err)
	}
	return nil
}

func (c *client) handleScrape(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil
	}

	var resp models.ScrapeResponse
	err = c.do(ctx, http.MethodPost, "/api/v1/portfolio/scrape", models.ScrapeRequest{
		URL:       url,
		FetchMode: request.GetString("fetch_mode", ""),
	}, &resp)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !resp.Success || resp.Data == nil {
		return mcp.NewToolResultError(failure(resp.Error, resp.Suggestion)), nil
	}
	return mcp.NewToolResultText(summarize(resp.Data)), nil
}

func (c *client) handleAnalyze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil
	}

	var resp models.AnalyzeResponse
	err = c.do(ctx, http.MethodPost, "/api/v1/portfolio/analyze", models.AnalyzeRequest{
		URL:       url,
		FetchMode: request.GetString("fetch_mode", ""),
	}, &resp)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !resp.Success {
		return mcp.NewToolResultError(failure(resp.Error, resp.Suggestion)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Style: %s\n%s\n\n", resp.CurrentStyle, resp.ContentSummary)
	sb.WriteString(resp.Analysis)
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *client) handleImprove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	field, err := request.RequireString("field")
	if err != nil {
		return mcp.NewToolResultError("field is required"), nil
	}
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("content is required"), nil
	}

	var resp models.ImproveResponse
	err = c.do(ctx, http.MethodPost, "/api/v1/content/improve", models.ImproveRequest{
		Field:   field,
		Content: content,
	}, &resp)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !resp.Success {
		return mcp.NewToolResultError(failure(resp.Error, "")), nil
	}
	return mcp.NewToolResultText(resp.ImprovedContent), nil
}

func (c *client) handleBatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	urls, err := request.RequireStringSlice("urls")
	if err != nil {
		return mcp.NewToolResultError("urls is required and must be an array of strings"), nil
	}

	var created models.BatchResponse
	err = c.do(ctx, http.MethodPost, "/api/v1/portfolio/batch", models.BatchRequest{
		URLs:      urls,
		FetchMode: request.GetString("fetch_mode", ""),
	}, &created)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("batch request failed: %v", err)), nil
	}
	if created.ID == "" {
		return mcp.NewToolResultError("batch job creation failed"), nil
	}

	status, err := c.poll(ctx, "/api/v1/portfolio/batch/"+created.ID, 2*time.Second)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("polling batch job failed: %v", err)), nil
	}
	return mcp.NewToolResultText(summarizeBatch(status, urls)), nil
}

// poll fetches a batch until it leaves the processing state or ctx ends.
func (c *client) poll(ctx context.Context, path string, every time.Duration) (*models.BatchStatusResponse, error) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			var status models.BatchStatusResponse
			if err := c.do(ctx, http.MethodGet, path, nil, &status); err != nil {
				return nil, err
			}
			if status.Status != models.BatchProcessing {
				return &status, nil
			}
		}
	}
}

func failure(detail *models.ErrorDetail, suggestion string) string {
	msg := "request failed"
	if detail != nil {
		msg = fmt.Sprintf("[%s] %s", detail.Code, detail.Message)
	}
	if suggestion != "" {
		msg += "\n" + suggestion
	}
	return msg
}

// summarize renders a portfolio as plain text for the model.
func summarize(r *models.ScrapeResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Name: %s\n", r.Name)
	if r.Title != "" {
		fmt.Fprintf(&sb, "Title: %s\n", r.Title)
	}
	if r.Email != "" {
		fmt.Fprintf(&sb, "Email: %s\n", r.Email)
	}
	fmt.Fprintf(&sb, "Source: %s\n", r.URL)
	if r.Bio != "" {
		fmt.Fprintf(&sb, "\n%s\n", r.Bio)
	}
	if len(r.Skills) > 0 {
		fmt.Fprintf(&sb, "\nSkills: %s\n", strings.Join(r.Skills, ", "))
	}
	if len(r.Projects) > 0 {
		sb.WriteString("\nProjects:\n")
		for _, p := range r.Projects {
			fmt.Fprintf(&sb, "- %s", p.Name)
			if p.Description != "" {
				fmt.Fprintf(&sb, ": %s", p.Description)
			}
			if p.Link != "" {
				fmt.Fprintf(&sb, " (%s)", p.Link)
			}
			sb.WriteString("\n")
		}
	}
	if len(r.Experience) > 0 {
		sb.WriteString("\nExperience:\n")
		for _, e := range r.Experience {
			fmt.Fprintf(&sb, "- %s at %s\n", e.Position, e.Company)
		}
	}
	if len(r.Education) > 0 {
		sb.WriteString("\nEducation:\n")
		for _, e := range r.Education {
			fmt.Fprintf(&sb, "- %s, %s\n", e.Degree, e.Institution)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func summarizeBatch(status *models.BatchStatusResponse, urls []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Batch %s: %s (%d/%d completed)\n\n", status.ID, status.Status, status.Completed, status.Total)
	for i, r := range status.Results {
		label := fmt.Sprintf("%d", i+1)
		if i < len(urls) {
			label = urls[i]
		}
		switch {
		case r == nil:
			fmt.Fprintf(&sb, "--- %s: not finished ---\n\n", label)
		case r.Success && r.Data != nil:
			fmt.Fprintf(&sb, "--- %s ---\n%s\n\n", label, summarize(r.Data))
		default:
			fmt.Fprintf(&sb, "--- %s: FAILED ---\n%s\n\n", label, failure(r.Error, r.Suggestion))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
