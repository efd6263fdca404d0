package extract

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/folio/models"
)

const maxFallbackTitle = 50

// projectCandidates prefers items inside a projects section. A section
// with no recognizable items contributes its direct children instead.
func projectCandidates(p *Page) *goquery.Selection {
	containers := p.Doc.FindMatcher(sel.projectContainer)
	if containers.Length() == 0 {
		return p.Doc.FindMatcher(sel.projectItem)
	}
	items := containers.FindMatcher(sel.projectItem)
	if items.Length() == 0 {
		return containers.Children()
	}
	return items
}

// Projects extracts up to MaxProjects work items, unique by title.
func Projects(p *Page) []models.Project {
	projects := []models.Project{}
	seen := make(map[string]struct{})

	projectCandidates(p).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if len(projects) >= models.MaxProjects {
			return false
		}

		// Wrappers holding other items are skipped, unless they are cards
		// in their own right.
		if el.FindMatcher(sel.projectItem).Length() > 0 && !el.IsMatcher(sel.projectCard) {
			return true
		}

		title := firstText(el, sel.projectTitle)
		desc := firstText(el, sel.projectDesc)
		if title == "" {
			title = truncate(firstLine(el.Text()), maxFallbackTitle)
		}
		if runeLen(title) < 2 {
			return true
		}
		if _, dup := seen[title]; dup {
			return true
		}
		seen[title] = struct{}{}

		href, _ := el.FindMatcher(sel.anchor).First().Attr("href")
		if href == "" && goquery.NodeName(el) == "a" {
			href, _ = el.Attr("href")
		}

		var image string
		if img := el.FindMatcher(sel.img).First(); img.Length() > 0 {
			if src := imageSource(img, "src", "data-src", "srcset"); src != "" && !inlineImage(src) {
				image = p.Resolve(src)
			}
		}

		if desc == "" {
			desc = models.FallbackProjectDesc
		}
		projects = append(projects, models.Project{
			Name:        title,
			Description: desc,
			Link:        p.Resolve(href),
			Image:       image,
		})
		return true
	})

	return projects
}
