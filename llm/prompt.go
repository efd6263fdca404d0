package llm

import (
	"fmt"
	"strings"

	"github.com/use-agent/folio/models"
)

// SystemPrompt frames every request.
const SystemPrompt = "You are an expert professional and content writer. Provide clear, concise responses that strictly maintain the user's core intent and specific field of interest."

// Token budgets per request kind.
const (
	AnalysisMaxTokens = 500
	ImproveMaxTokens  = 300
)

// Improvable content fields.
const (
	FieldBio     = "bio"
	FieldProject = "project"
)

const fieldGuard = "CRITICAL: NEVER change the user's core field of interest (e.g., if they mention App Development, do NOT change it to Web Development)."

// AnalysisPrompt asks for a short design and content critique of r.
// digest, when non-empty, is a Markdown rendering of the page.
func AnalysisPrompt(r *models.ScrapeResult, digest string) string {
	skills := "Various"
	if len(r.Skills) > 0 {
		skills = strings.Join(r.Skills, ", ")
	}

	var b strings.Builder
	b.WriteString("Analyze this portfolio and provide design improvement suggestions:\n\n")
	fmt.Fprintf(&b, "URL: %s\n", r.URL)
	fmt.Fprintf(&b, "Name: %s\n", r.Name)
	fmt.Fprintf(&b, "Title: %s\n", r.Title)
	fmt.Fprintf(&b, "Skills: %s\n", skills)
	fmt.Fprintf(&b, "Projects: %d\n", len(r.Projects))
	fmt.Fprintf(&b, "Current style: %s mode\n", CurrentStyle(r))
	if digest != "" {
		b.WriteString("\nPage content:\n")
		b.WriteString(digest)
		b.WriteString("\n")
	}
	b.WriteString(`
Provide brief analysis:
1. Current design style
2. Content summary
3. Design improvement suggestions (colors, layout, style)

Keep it concise (3-4 sentences total).`)
	return b.String()
}

// ImprovePrompt asks for a rewrite of a bio or project description.
func ImprovePrompt(field, content string) (string, error) {
	var instruction, kind string
	switch field {
	case FieldBio:
		instruction = "Improve this portfolio bio. Make it compelling, professional, and engaging. Keep it 2-3 sentences. Focus on impact."
		kind = "bio"
	case FieldProject:
		instruction = "Improve this project description. Highlight impact, technical skills, and results. Make it compelling for recruiters."
		kind = "description"
	default:
		return "", models.NewScrapeError(models.ErrCodeInvalidInput,
			fmt.Sprintf("field must be %q or %q", FieldBio, FieldProject), nil)
	}
	if strings.TrimSpace(content) == "" {
		return "", models.NewScrapeError(models.ErrCodeInvalidInput, "content cannot be empty", nil)
	}

	return fmt.Sprintf("%s\n\n%s\n\nOriginal: %q\n\nReturn ONLY the improved %s, nothing else.",
		instruction, fieldGuard, strings.TrimSpace(content), kind), nil
}

// CurrentStyle is "dark" or "light" from the design signals.
func CurrentStyle(r *models.ScrapeResult) string {
	if r.DesignAnalysis.IsDarkMode {
		return "dark"
	}
	return "light"
}

// ContentSummary counts what the scrape found.
func ContentSummary(r *models.ScrapeResult) string {
	return fmt.Sprintf("Found: %d projects, %d skills", len(r.Projects), len(r.Skills))
}
