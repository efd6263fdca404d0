package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/folio/models"
)

// orderedSet keeps first-seen order and drops exact repeats.
type orderedSet struct {
	items []string
	seen  map[string]struct{}
	limit int
}

func newOrderedSet(limit int) *orderedSet {
	return &orderedSet{items: []string{}, seen: make(map[string]struct{}), limit: limit}
}

func (s *orderedSet) add(v string) {
	if s.full() {
		return
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

func (s *orderedSet) full() bool { return len(s.items) >= s.limit }

// SkillsOf reports technologies named on the page: first keyword hits in
// the visible text, then short tag-like elements mentioning a keyword,
// kept verbatim.
func (v *Vocabulary) SkillsOf(p *Page) []string {
	skills := newOrderedSet(models.MaxSkills)

	for i, kw := range v.Skills {
		if v.patterns[i].MatchString(p.LowerText()) {
			skills.add(v.DisplayName(kw))
		}
	}

	p.Doc.FindMatcher(sel.skillTags).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if skills.full() {
			return false
		}
		t := text(s)
		if n := runeLen(t); n <= 1 || n >= 25 {
			return true
		}
		lower := strings.ToLower(t)
		for _, kw := range v.Skills {
			if strings.Contains(lower, kw) {
				skills.add(t)
				break
			}
		}
		return true
	})

	return skills.items
}
