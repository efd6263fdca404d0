package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/folio/config"
	"github.com/use-agent/folio/models"
)

func testLLMConfig(baseURL string) config.LLMConfig {
	return config.LLMConfig{
		Provider:    ProviderOpenAI,
		APIKey:      "sk-test",
		BaseURL:     baseURL + "/",
		Model:       "llama-3.3-70b-versatile",
		Temperature: 0.7,
		Timeout:     5 * time.Second,
	}
}

func TestOpenAIGenerate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  A sharper bio.\n"}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAI(testLLMConfig(srv.URL), nil)
	out, err := c.Generate(context.Background(), "improve me", 300)
	require.NoError(t, err)
	assert.Equal(t, "A sharper bio.", out)

	assert.Equal(t, "llama-3.3-70b-versatile", got.Model)
	assert.Equal(t, 300, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, SystemPrompt, got.Messages[0].Content)
	assert.Equal(t, "improve me", got.Messages[1].Content)
}

func TestOpenAIErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, models.ErrCodeLLMAuthFailure},
		{"rate limited", http.StatusTooManyRequests, `{}`, models.ErrCodeLLMRateLimited},
		{"server error", http.StatusBadGateway, `upstream`, models.ErrCodeLLMFailure},
		{"no choices", http.StatusOK, `{"choices":[]}`, models.ErrCodeLLMFailure},
		{"not json", http.StatusOK, `<html>`, models.ErrCodeLLMFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewOpenAI(testLLMConfig(srv.URL), nil).Generate(context.Background(), "x", 10)
			assert.True(t, models.IsCode(err, tt.code), "got %v", err)
		})
	}
}

func TestClassifyLLMErrorKeepsProviderMessage(t *testing.T) {
	se := classifyLLMError(http.StatusForbidden, []byte(`{"error":{"message":"key revoked"}}`))
	assert.Equal(t, models.ErrCodeLLMAuthFailure, se.Code)
	assert.Equal(t, "key revoked", se.Message)
}

func TestNew(t *testing.T) {
	_, err := New(context.Background(), config.LLMConfig{Provider: ProviderOpenAI})
	assert.Error(t, err, "missing key")

	_, err = New(context.Background(), config.LLMConfig{Provider: "claude", APIKey: "k"})
	assert.Error(t, err)

	g, err := New(context.Background(), testLLMConfig("http://127.0.0.1:1"))
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, g)
	assert.NoError(t, g.Close())
}

func TestAnalysisPrompt(t *testing.T) {
	r := &models.ScrapeResult{
		URL:            "https://janedoe.dev",
		Name:           "Jane Doe",
		Title:          "Full Stack Developer",
		Skills:         []string{"Go", "React"},
		Projects:       []models.Project{{Name: "Weather"}, {Name: "Tracer"}},
		DesignAnalysis: models.DesignAnalysis{IsDarkMode: true},
	}
	p := AnalysisPrompt(r, "# Jane Doe")
	assert.Contains(t, p, "Name: Jane Doe")
	assert.Contains(t, p, "Skills: Go, React")
	assert.Contains(t, p, "Projects: 2")
	assert.Contains(t, p, "Current style: dark mode")
	assert.Contains(t, p, "# Jane Doe")

	assert.Contains(t, AnalysisPrompt(&models.ScrapeResult{}, ""), "Skills: Various")
	assert.NotContains(t, AnalysisPrompt(&models.ScrapeResult{}, ""), "Page content")
}

func TestImprovePrompt(t *testing.T) {
	p, err := ImprovePrompt(FieldBio, " I make apps. ")
	require.NoError(t, err)
	assert.Contains(t, p, "portfolio bio")
	assert.Contains(t, p, `Original: "I make apps."`)
	assert.Contains(t, p, "NEVER change the user's core field of interest")

	p, err = ImprovePrompt(FieldProject, "A todo app")
	require.NoError(t, err)
	assert.Contains(t, p, "improved description")

	_, err = ImprovePrompt("headline", "x")
	assert.True(t, models.IsCode(err, models.ErrCodeInvalidInput))
	_, err = ImprovePrompt(FieldBio, "   ")
	assert.True(t, models.IsCode(err, models.ErrCodeInvalidInput))
}

func TestSummaries(t *testing.T) {
	r := &models.ScrapeResult{Skills: []string{"Go"}, Projects: make([]models.Project, 3)}
	assert.Equal(t, "light", CurrentStyle(r))
	assert.Equal(t, "Found: 3 projects, 1 skills", ContentSummary(r))
}
