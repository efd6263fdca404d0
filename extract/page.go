// Package extract turns one rendered portfolio page into structured
// fields. Every extractor is a pure function of a *Page: no network, no
// browser, and no shared state between calls.
package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Page is a parsed DOM snapshot of one portfolio.
type Page struct {
	Doc *goquery.Document

	// HTML is the raw markup the snapshot was parsed from.
	HTML string

	// URL is the address relative links are resolved against.
	URL *url.URL

	text      string // visible body text, whitespace preserved
	lowerText string
}

// NewPage parses rawHTML. baseURL is used to resolve relative links and
// must be absolute.
func NewPage(rawHTML, baseURL string) (*Page, error) {
	base, err := url.Parse(baseURL)
	if err != nil || !base.IsAbs() {
		return nil, fmt.Errorf("extract: base url %q is not absolute", baseURL)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("extract: parse html: %w", err)
	}

	// Script and style bodies are text nodes to the parser; drop them so
	// they never leak into text heuristics.
	doc.FindMatcher(sel.nonVisible).Remove()

	text := strings.TrimSpace(doc.Find("body").Text())
	return &Page{
		Doc:       doc,
		HTML:      rawHTML,
		URL:       base,
		text:      text,
		lowerText: strings.ToLower(text),
	}, nil
}

// Text returns the visible body text.
func (p *Page) Text() string { return p.text }

// LowerText returns the visible body text lowercased.
func (p *Page) LowerText() string { return p.lowerText }

// Resolve turns ref into an absolute http(s) URL, or "" if it cannot.
func (p *Page) Resolve(ref string) string {
	ref = strings.Trim(strings.TrimSpace(ref), `"'`)
	if ref == "" || strings.HasPrefix(ref, "#") {
		return ""
	}
	u, err := p.URL.Parse(ref)
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

// text returns the trimmed text of s.
func text(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}

// firstText returns the trimmed text of the first element under s
// matching m, in document order.
func firstText(s *goquery.Selection, m goquery.Matcher) string {
	return text(s.FindMatcher(m).First())
}

var reSpace = regexp.MustCompile(`\s+`)

// collapse squeezes runs of whitespace to one space.
func collapse(s string) string {
	return strings.TrimSpace(reSpace.ReplaceAllString(s, " "))
}

// firstLine returns the first line of the trimmed text.
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// runeLen counts characters, not bytes: length thresholds are about
// what a reader sees.
func runeLen(s string) int { return utf8.RuneCountInString(s) }

// truncate cuts s to at most n characters.
func truncate(s string, n int) string {
	if runeLen(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n]))
}

// imageSource picks the first usable source attribute. attrs are tried
// in order; a srcset contributes its first URL.
func imageSource(img *goquery.Selection, attrs ...string) string {
	for _, a := range attrs {
		v, ok := img.Attr(a)
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		if a == "srcset" {
			v = firstSrcsetURL(v)
		}
		if v != "" {
			return v
		}
	}
	return ""
}

func firstSrcsetURL(srcset string) string {
	first, _, _ := strings.Cut(srcset, ",")
	fields := strings.Fields(first)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// inlineImage reports sources that are embedded data rather than links.
func inlineImage(src string) bool {
	lower := strings.ToLower(src)
	return strings.HasPrefix(lower, "data:") || strings.Contains(lower, "base64")
}

// containsAny reports whether s contains any of the needles.
func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
