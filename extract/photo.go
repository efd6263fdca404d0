package extract

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/folio/models"
)

// metaPhotoScore is the flat score of a profile-looking og:image.
const metaPhotoScore = 45

// imageCandidate is one <img> considered for the profile photo.
type imageCandidate struct {
	el     *goquery.Selection
	src    string // as written in the page
	lower  string // lowercased src
	alt    string // lowercased alt
	width  int
	height int
	name   string // lowercased owner name, "" to disable name matching
}

func (c imageCandidate) mentions(terms ...string) bool {
	return containsAny(c.lower, terms...) || containsAny(c.alt, terms...)
}

// projectImageTerms mark screenshots and covers, not portraits.
var projectImageTerms = []string{"project", "screenshot", "demo", "preview", "cover", "banner", "mockup", "thumb"}

// photoPolicy scores profile photo candidates. Rules are independent;
// weights add.
var photoPolicy = Policy[imageCandidate]{
	{Name: "decoration", Weight: -50, Match: func(c imageCandidate) bool {
		return c.mentions("icon", "logo", "tracker")
	}},
	{Name: "tiny", Weight: -50, Match: func(c imageCandidate) bool {
		return c.width > 0 && c.width < 40
	}},
	{Name: "project-terms", Weight: -100, Match: func(c imageCandidate) bool {
		return c.mentions(projectImageTerms...)
	}},
	{Name: "in-projects-section", Weight: -100, Match: func(c imageCandidate) bool {
		return c.el.ClosestMatcher(sel.photoProjects).Length() > 0
	}},
	{Name: "in-project-card", Weight: -100, Match: func(c imageCandidate) bool {
		return c.el.ClosestMatcher(sel.photoCard).Length() > 0
	}},
	{Name: "name-match", Weight: 60, Match: func(c imageCandidate) bool {
		if c.name == "" {
			return false
		}
		return strings.Contains(c.alt, c.name) ||
			strings.Contains(c.lower, strings.Join(strings.Fields(c.name), ""))
	}},
	{Name: "cloudinary", Weight: 50, Match: func(c imageCandidate) bool {
		return strings.Contains(c.lower, "cloudinary") && !strings.Contains(c.lower, ".pdf")
	}},
	{Name: "profile-terms", Weight: 40, Match: func(c imageCandidate) bool {
		return c.mentions("profile", "avatar", "me")
	}},
	{Name: "in-hero", Weight: 30, Match: func(c imageCandidate) bool {
		return c.el.ClosestMatcher(sel.photoHero).Length() > 0
	}},
	{Name: "in-nav-or-footer", Weight: -20, Match: func(c imageCandidate) bool {
		return c.el.ClosestMatcher(sel.photoHero).Length() == 0 &&
			c.el.ClosestMatcher(sel.photoChrome).Length() > 0
	}},
	{Name: "profile-hook", Weight: 30, Match: func(c imageCandidate) bool {
		return c.el.IsMatcher(sel.photoHook)
	}},
	{Name: "square", Weight: 20, Match: func(c imageCandidate) bool {
		if c.width <= 50 || c.height <= 50 {
			return false
		}
		ratio := float64(c.width) / float64(c.height)
		return ratio > 0.8 && ratio < 1.2
	}},
	{Name: "large", Weight: 10, Match: func(c imageCandidate) bool {
		return c.width > 150
	}},
}

// ProfilePhoto picks the image most likely to be the owner's portrait and
// returns its absolute URL, or "" when nothing scores above zero.
// name is the extracted owner name.
func ProfilePhoto(p *Page, name string) string {
	ownerName := strings.ToLower(strings.TrimSpace(name))
	if ownerName == strings.ToLower(models.FallbackName) {
		ownerName = ""
	}

	var candidates []imageCandidate
	p.Doc.FindMatcher(sel.img).Each(func(_ int, img *goquery.Selection) {
		src := imageSource(img, "src", "data-src", "srcset")
		if src == "" || inlineImage(src) || isSVG(src) {
			return
		}
		alt, _ := img.Attr("alt")
		candidates = append(candidates, imageCandidate{
			el:     img,
			src:    src,
			lower:  strings.ToLower(src),
			alt:    strings.ToLower(alt),
			width:  leadingInt(img.AttrOr("width", "")),
			height: leadingInt(img.AttrOr("height", "")),
			name:   ownerName,
		})
	})

	best, ok := Best(photoPolicy, candidates)
	chosen, score := "", 0
	if ok {
		chosen, score = best.Candidate.src, best.Score
		slog.Debug("profile photo candidate", "src", chosen, "score", score,
			"rules", photoPolicy.Explain(best.Candidate))
	}

	if meta := metaPhotoURL(p); meta != "" && metaPhotoScore > score {
		chosen, score = meta, metaPhotoScore
	}
	if score <= 0 {
		return ""
	}
	return p.Resolve(chosen)
}

// metaPhotoURL returns og:image or twitter:image when it looks like a portrait.
func metaPhotoURL(p *Page) string {
	content, _ := p.Doc.FindMatcher(sel.ogImage).First().Attr("content")
	if strings.TrimSpace(content) == "" {
		content, _ = p.Doc.FindMatcher(sel.twitterImage).First().Attr("content")
	}
	lower := strings.ToLower(content)
	if strings.Contains(lower, "profile") || strings.Contains(lower, "avatar") {
		return strings.TrimSpace(content)
	}
	return ""
}

func isSVG(src string) bool {
	path, _, _ := strings.Cut(strings.ToLower(src), "?")
	return strings.HasSuffix(path, ".svg")
}

// leadingInt parses the leading digits of an attribute like "120px".
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
