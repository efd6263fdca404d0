package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/folio/cleaner"
	"github.com/use-agent/folio/models"
)

const maxNameLen = 50

// sectionWords are heading texts that name a section, not a person's role.
var sectionWords = map[string]struct{}{
	"about": {}, "about me": {}, "contact": {}, "projects": {}, "skills": {},
	"experience": {}, "education": {}, "home": {},
}

func isSectionWord(s string) bool {
	_, ok := sectionWords[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// ── Name ──────────────────────────────────────────────────────────────

// reTitleDash splits "Jane Doe - Portfolio" style titles. The dash must
// be spaced so hyphenated names survive.
var reTitleDash = regexp.MustCompile(`\s+[-–—]\s+`)

var nameChain = Chain{
	Strategies: []Strategy{nameFromTitle, nameFromH1, nameFromOG},
	Fallback:   models.FallbackName,
}

// Name returns the portfolio owner's name.
func Name(p *Page) string { return nameChain.Run(p) }

func acceptName(s string) string {
	s = collapse(s)
	if s == "" || runeLen(s) > maxNameLen {
		return ""
	}
	return s
}

func nameFromTitle(p *Page) string {
	title := text(p.Doc.Find("title").First())
	segment := reTitleDash.Split(title, 2)[0]
	return acceptName(segment)
}

func nameFromH1(p *Page) string {
	return acceptName(text(p.Doc.FindMatcher(sel.h1).First()))
}

func nameFromOG(p *Page) string {
	content, _ := p.Doc.FindMatcher(sel.ogTitle).First().Attr("content")
	return acceptName(content)
}

// ── Title ─────────────────────────────────────────────────────────────

// TitleExtractor finds the professional role. Role phrases come from the
// vocabulary so they can be tuned without code changes.
type TitleExtractor struct {
	chain Chain
}

// NewTitleExtractor builds the role chain for a vocabulary.
func NewTitleExtractor(v *Vocabulary) *TitleExtractor {
	return &TitleExtractor{chain: Chain{
		Strategies: []Strategy{
			rolePhrase(v.Roles),
			titleFromHooks,
			titleFromH2,
			titleAfterH1,
		},
		Fallback: models.FallbackTitle,
	}}
}

// Extract returns the role for p.
func (t *TitleExtractor) Extract(p *Page) string { return t.chain.Run(p) }

func rolePhrase(roles []Role) Strategy {
	return func(p *Page) string {
		for _, r := range roles {
			if strings.Contains(p.LowerText(), r.Phrase) {
				return r.Display
			}
		}
		return ""
	}
}

func titleFromHooks(p *Page) string {
	var found string
	p.Doc.FindMatcher(sel.roleHooks).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		t := collapse(s.Text())
		if t != "" && !isSectionWord(t) {
			found = t
			return false
		}
		return true
	})
	return found
}

func titleFromH2(p *Page) string {
	t := collapse(p.Doc.FindMatcher(sel.h2).First().Text())
	if n := runeLen(t); n > 5 && n < 100 && !isSectionWord(t) {
		return t
	}
	return ""
}

func titleAfterH1(p *Page) string {
	next := p.Doc.FindMatcher(sel.h1).First().NextMatcher(sel.afterH1)
	t := collapse(next.Text())
	if t != "" && runeLen(t) < 100 && !isSectionWord(t) {
		return t
	}
	return ""
}

// ── Bio ───────────────────────────────────────────────────────────────

var bioChain = Chain{
	Strategies: []Strategy{bioFromAbout, bioFromLongestParagraphs, bioFromReadability},
	Fallback:   models.FallbackBio,
}

// Bio returns the owner's self-description.
func Bio(p *Page) string { return bioChain.Run(p) }

func bioFromAbout(p *Page) string {
	var parts []string
	p.Doc.FindMatcher(sel.aboutContainer).FindMatcher(sel.paragraph).Each(func(_ int, s *goquery.Selection) {
		if t := text(s); runeLen(t) > 20 {
			parts = append(parts, t)
		}
	})
	bio := strings.Join(parts, "\n\n")
	if runeLen(bio) > 30 {
		return bio
	}
	return ""
}

func bioFromLongestParagraphs(p *Page) string {
	var paras []string
	p.Doc.FindMatcher(sel.paragraph).Each(func(_ int, s *goquery.Selection) {
		if t := text(s); runeLen(t) > 50 && runeLen(t) < 1000 {
			paras = append(paras, t)
		}
	})
	if len(paras) == 0 {
		return ""
	}
	sort.SliceStable(paras, func(i, j int) bool { return runeLen(paras[i]) > runeLen(paras[j]) })
	if len(paras) > 3 {
		paras = paras[:3]
	}
	return strings.Join(paras, "\n\n")
}

// bioFromReadability covers pages that keep their prose out of <p> tags.
func bioFromReadability(p *Page) string {
	article, ok := cleaner.Readable(p.HTML, p.URL.String())
	if !ok {
		return ""
	}
	excerpt := collapse(article.Excerpt)
	if runeLen(excerpt) < 50 {
		return ""
	}
	return excerpt
}

// ── Hero intro ────────────────────────────────────────────────────────

// HeroIntro returns the tagline-sized sentence in the page's hero area, or "".
func HeroIntro(p *Page) string {
	hero := p.Doc.FindMatcher(sel.heroContainer).First()
	var intro string
	hero.FindMatcher(sel.heroText).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		t := collapse(s.Text())
		if n := runeLen(t); n > 40 && n < 400 {
			intro = t
			return false
		}
		return true
	})
	return intro
}
