package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/folio/models"
)

// Headings returns the non-empty h1-h3 texts in document order.
func Headings(p *Page) []string {
	out := []string{}
	p.Doc.FindMatcher(sel.h1h2h3).Each(func(_ int, s *goquery.Selection) {
		if t := text(s); t != "" {
			out = append(out, t)
		}
	})
	return out
}

// allParagraphs returns every paragraph longer than 20 characters.
func allParagraphs(p *Page) []string {
	out := []string{}
	p.Doc.FindMatcher(sel.paragraph).Each(func(_ int, s *goquery.Selection) {
		if t := text(s); runeLen(t) > 20 {
			out = append(out, t)
		}
	})
	return out
}

// Paragraphs returns the first MaxParagraphs substantial paragraphs.
func Paragraphs(p *Page) []string {
	paras := allParagraphs(p)
	if len(paras) > models.MaxParagraphs {
		paras = paras[:models.MaxParagraphs]
	}
	return paras
}

// DetectSections looks for conventional section names in headings and
// paragraph text.
func DetectSections(headings, paragraphs []string) models.Sections {
	all := strings.ToLower(strings.Join(append(append([]string{}, headings...), paragraphs...), " "))
	return models.Sections{
		About:      strings.Contains(all, "about"),
		Projects:   containsAny(all, "project", "portfolio"),
		Experience: containsAny(all, "experience", "work"),
		Contact:    strings.Contains(all, "contact"),
		Skills:     containsAny(all, "skill", "technology"),
	}
}
