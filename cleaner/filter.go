package cleaner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// noiseSelectors never carry portfolio content worth sending to a model.
var noiseSelectors = []string{
	"script", "style", "noscript", "template", "iframe", "svg", "canvas",
	"form", "button", "[aria-hidden=true]", "[hidden]",
}

// StripNoise removes non-content elements and returns the body's inner
// HTML. extra selectors are removed as well. On parse failure the input
// is returned unchanged.
func StripNoise(html string, extra ...string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	for _, selector := range noiseSelectors {
		doc.Find(selector).Remove()
	}
	for _, selector := range extra {
		doc.Find(selector).Remove()
	}

	body := doc.Find("body")
	if body.Length() == 0 {
		result, err := doc.Html()
		if err != nil {
			return html
		}
		return result
	}
	result, err := body.Html()
	if err != nil {
		return html
	}
	return result
}
