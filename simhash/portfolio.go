package simhash

import (
	"strings"

	"github.com/use-agent/folio/models"
)

// OfPortfolio fingerprints the extracted content of r: identity, skills,
// and the names and descriptions of projects and jobs. Fallback values
// are included so a page that loses its data drifts away from one that
// had it.
func OfPortfolio(r *models.ScrapeResult) Fingerprint {
	var tokens []string
	add := func(s string) {
		tokens = append(tokens, strings.Fields(strings.ToLower(s))...)
	}

	add(r.Name)
	add(r.Title)
	add(r.Bio)
	for _, s := range r.Skills {
		tokens = append(tokens, "skill:"+strings.ToLower(s))
	}
	for _, p := range r.Projects {
		tokens = append(tokens, "project:"+strings.ToLower(p.Name))
		add(p.Description)
	}
	for _, e := range r.Experience {
		tokens = append(tokens, "job:"+strings.ToLower(e.Position+"@"+e.Company))
	}
	for _, e := range r.Education {
		tokens = append(tokens, "school:"+strings.ToLower(e.Institution))
	}
	return Sum(tokens)
}
