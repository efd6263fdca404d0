package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/folio/models"
)

const page = `<!DOCTYPE html>
<html>
<head><title>Jane Doe - Portfolio</title></head>
<body>
<header>
  <h1>Jane Doe</h1>
  <p class="tagline">Software engineer building developer tools</p>
</header>
<section id="skills"><ul><li>Go</li><li>Kubernetes</li></ul></section>
<section id="projects">
  <div class="project-card"><h3>Tracer</h3><p>Distributed tracing for small teams.</p></div>
</section>
<a href="mailto:jane@janedoe.dev">Email</a>
</body>
</html>`

func setTestEnv(t *testing.T) {
	t.Setenv("FOLIO_FETCH_MODE", "http")
	t.Setenv("FOLIO_SETTLE_DELAY", "0s")
	t.Setenv("FOLIO_RESPECT_ROBOTS", "false")
	t.Setenv("FOLIO_VOCABULARY_FILE", "")
	t.Setenv("FOLIO_LOG_LEVEL", "error")
	t.Setenv("FOLIO_MONGO_URI", "")
	t.Setenv("FOLIO_LLM_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")
}

func TestScrapeCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()
	setTestEnv(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"scrape", srv.URL, "--compact"})
	require.NoError(t, rootCmd.Execute())

	var resp models.ScrapeResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp), out.String())
	assert.True(t, resp.Success)
	assert.Equal(t, "Jane Doe", resp.Data.Name)
	assert.Equal(t, "jane@janedoe.dev", resp.Data.Email)
	assert.Contains(t, resp.Data.Skills, "Go")
}

func TestScrapeCommandRequiresURL(t *testing.T) {
	setTestEnv(t)
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"scrape"})
	assert.Error(t, rootCmd.Execute())
}

func TestAnalyzeCommandRequiresKey(t *testing.T) {
	setTestEnv(t)
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"analyze", "janedoe.dev"})
	assert.ErrorContains(t, rootCmd.Execute(), "API key required")
}
