// Package cleaner condenses a rendered portfolio into compact Markdown
// for language-model prompts.
package cleaner

import (
	"log/slog"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
)

// Digest sources.
const (
	SourcePage        = "page"
	SourceReadability = "readability"
)

// Digest is a prompt-sized rendering of a page.
type Digest struct {
	Markdown  string
	Tokens    int
	Source    string
	Truncated bool
}

// Digester builds digests. The converter is created once and reused
// across all requests (goroutine-safe).
type Digester struct {
	mdConverter *converter.Converter
}

// NewDigester initialises the Markdown converter.
func NewDigester() *Digester {
	return &Digester{mdConverter: newMarkdownConverter()}
}

// Digest renders rawHTML to Markdown within maxTokens.
//
//  1. Strip noise (scripts, forms, hidden nodes) and convert the whole body.
//  2. Over budget: use readability's main content instead, if it is smaller.
//  3. Still over budget: truncate.
func (d *Digester) Digest(rawHTML, sourceURL string, maxTokens int) Digest {
	// ── 1. Whole page ──────────────────────────────────────────────
	md, err := toMarkdown(d.mdConverter, StripNoise(rawHTML), sourceURL)
	if err != nil {
		slog.Warn("digest: markdown conversion failed", "url", sourceURL, "error", err)
		md = ""
	}
	out := Digest{Markdown: strings.TrimSpace(md), Source: SourcePage}

	// ── 2. Main content ────────────────────────────────────────────
	if maxTokens > 0 && EstimateTokens(out.Markdown) > maxTokens {
		if article, ok := Readable(rawHTML, sourceURL); ok {
			if rmd, err := toMarkdown(d.mdConverter, article.Content, sourceURL); err == nil {
				rmd = strings.TrimSpace(rmd)
				if rmd != "" && len(rmd) < len(out.Markdown) {
					out.Markdown = rmd
					out.Source = SourceReadability
				}
			}
		}
	}

	// ── 3. Hard cap ────────────────────────────────────────────────
	out.Markdown, out.Truncated = TruncateTokens(out.Markdown, maxTokens)
	out.Tokens = EstimateTokens(out.Markdown)
	return out
}
