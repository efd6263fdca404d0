package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/folio/models"
)

var achievementTerms = []string{"certificate", "certification", "award", "achievement", "honor", "winner", "scholarship"}

// achievementPhaseMin is the count below which the selector phase runs.
const achievementPhaseMin = 5

type achievementCollector struct {
	page  *Page
	items []models.Achievement
	seen  map[string]struct{}
}

func (c *achievementCollector) full() bool { return len(c.items) >= models.MaxAchievements }

// add records el if it reads like one achievement entry.
func (c *achievementCollector) add(el *goquery.Selection) {
	raw := text(el)
	if n := runeLen(raw); n < 5 || n > 500 {
		return
	}
	title := firstLine(raw)
	if title == "" {
		return
	}
	if _, dup := c.seen[title]; dup {
		return
	}
	c.seen[title] = struct{}{}

	var image string
	if img := el.FindMatcher(sel.img).First(); img.Length() > 0 {
		if src := imageSource(img, "src", "data-src", "data-original", "srcset"); src != "" && !inlineImage(src) {
			image = c.page.Resolve(src)
		}
	}
	href, _ := el.FindMatcher(sel.anchor).First().Attr("href")

	desc := ""
	if all := collapse(raw); runeLen(all) > runeLen(title) {
		desc = strings.TrimSpace(strings.Replace(all, title, "", 1))
	}

	c.items = append(c.items, models.Achievement{
		Title:       title,
		Description: desc,
		Image:       image,
		Link:        c.page.Resolve(href),
	})
}

// Achievements collects awards and certificates in two phases: entries
// under headings that name them, then elements whose class or id does,
// when the first phase found fewer than five.
func Achievements(p *Page) []models.Achievement {
	c := &achievementCollector{page: p, items: []models.Achievement{}, seen: make(map[string]struct{})}

	p.Doc.FindMatcher(sel.headingH1to4).EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if c.full() {
			return false
		}
		if !containsAny(strings.ToLower(h.Text()), achievementTerms...) {
			return true
		}
		h.Parent().FindMatcher(sel.achievementItem).EachWithBreak(func(_ int, item *goquery.Selection) bool {
			c.add(item)
			return !c.full()
		})
		return true
	})

	if len(c.items) < achievementPhaseMin {
		p.Doc.FindMatcher(sel.achievementEntry).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			if c.full() {
				return false
			}
			c.add(el)
			return !c.full()
		})
	}
	return c.items
}
