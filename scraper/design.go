package scraper

import (
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/use-agent/folio/extract"
	"github.com/use-agent/folio/models"
)

const designJS = `() => {
	const body = document.body;
	if (!body) return { error: "no body", background: "", color: "", navbar: false, footer: false };
	const style = window.getComputedStyle(body);
	return {
		error: "",
		background: style.backgroundColor || "",
		color: style.color || "",
		navbar: !!document.querySelector("nav, header"),
		footer: !!document.querySelector("footer"),
	};
}`

// analyzeDesign reads computed theme signals from a rendered page. It
// never fails the scrape: any error becomes the error indicator.
func analyzeDesign(p *rod.Page) *models.DesignAnalysis {
	res, err := p.Eval(designJS)
	if err != nil {
		slog.Debug("design analysis failed", "error", err)
		return &models.DesignAnalysis{Error: models.DesignUnavailable}
	}
	v := res.Value
	if msg := v.Get("error").Str(); msg != "" {
		slog.Debug("design analysis failed", "error", msg)
		return &models.DesignAnalysis{Error: models.DesignUnavailable}
	}

	bg := v.Get("background").Str()
	return &models.DesignAnalysis{
		BackgroundColor: bg,
		TextColor:       v.Get("color").Str(),
		HasNavbar:       v.Get("navbar").Bool(),
		HasFooter:       v.Get("footer").Bool(),
		IsDarkMode:      extract.IsDarkBackground(bg),
	}
}
