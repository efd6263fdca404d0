package engine

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Empty mount points left by client-rendered frameworks.
var spaRoots = []string{
	`<div id="root"></div>`,
	`<div id="app"></div>`,
	`<div id="__next"></div>`,
	`<div id="___gatsby"></div>`,
	`<app-root></app-root>`,
}

var reNoscript = regexp.MustCompile(`<noscript[^>]*>[^<]*(enable|activate|turn on|requires?)\s+javascript`)

// NeedsBrowser reports whether statically fetched HTML looks like a
// client-rendered shell that only a browser can fill in.
func NeedsBrowser(body string) bool {
	text := VisibleText(body)
	if len(text) < 200 {
		return true
	}

	lower := strings.ToLower(body)
	for _, root := range spaRoots {
		if strings.Contains(lower, root) {
			return true
		}
	}
	if reNoscript.MatchString(lower) {
		return true
	}

	// Script-heavy with little text.
	return strings.Count(lower, "<script") > 10 && len(text) < 500
}

// ShouldEscalate is the auto-mode escalation rule: only healthy responses
// that look like SPA shells go to the browser. Error statuses would come
// back the same from Chrome.
func ShouldEscalate(r *FetchResult) bool {
	if r.StatusCode >= 400 {
		return false
	}
	return NeedsBrowser(r.HTML)
}

// VisibleText returns the text inside <body>, skipping script, style,
// noscript and template content. The parser supplies the body element
// when the markup omits it.
func VisibleText(body string) string {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return ""
	}
	var buf strings.Builder
	collectText(findBody(doc), &buf)
	return strings.TrimSpace(buf.String())
}

func findBody(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

func collectText(n *html.Node, buf *strings.Builder) {
	if n == nil {
		return
	}
	switch n.Type {
	case html.TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			buf.WriteString(text)
			buf.WriteByte(' ')
		}
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "template":
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, buf)
	}
}
