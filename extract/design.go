package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/use-agent/folio/models"
)

var reRGB = regexp.MustCompile(`^rgba?\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*(?:,\s*([\d.]+)\s*)?\)$`)

// IsDarkBackground reports whether a computed CSS colour like
// "rgb(18, 18, 18)" has a red channel under 50. Fully transparent rgba
// values are never dark: the canvas behind them is white.
func IsDarkBackground(color string) bool {
	m := reRGB.FindStringSubmatch(strings.TrimSpace(strings.ToLower(color)))
	if m == nil {
		return false
	}
	if m[4] != "" {
		if alpha, err := strconv.ParseFloat(m[4], 64); err == nil && alpha == 0 {
			return false
		}
	}
	red, err := strconv.Atoi(m[1])
	return err == nil && red < 50
}

var (
	reInlineBackground = regexp.MustCompile(`(?i)background(?:-color)?\s*:\s*([^;]+)`)
	reInlineColor      = regexp.MustCompile(`(?i)(?:^|[;\s])color\s*:\s*([^;]+)`)
)

// StaticDesign derives design signals from markup alone. It is used when
// no browser rendered the page, so colours come only from the body's
// inline style and are often empty.
func StaticDesign(p *Page) models.DesignAnalysis {
	style := p.Doc.Find("body").AttrOr("style", "")
	d := models.DesignAnalysis{
		HasNavbar: p.Doc.FindMatcher(sel.navbar).Length() > 0,
		HasFooter: p.Doc.FindMatcher(sel.footer).Length() > 0,
	}
	if m := reInlineBackground.FindStringSubmatch(style); m != nil {
		d.BackgroundColor = strings.TrimSpace(m[1])
	}
	if m := reInlineColor.FindStringSubmatch(style); m != nil {
		d.TextColor = strings.TrimSpace(m[1])
	}
	d.IsDarkMode = IsDarkBackground(d.BackgroundColor)
	return d
}
