package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/folio/models"
)

// Date fragments: "Jan 2020", "January, 2020", "03/2020", "2020".
const datePart = `(?:(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?,?\s+\d{4}|\d{1,2}/\d{4}|(?:19|20)\d{2})`

var (
	reDateRange = regexp.MustCompile(`(?i)(` + datePart + `)\s*(?:-|–|—|to|until)\s*(` + datePart + `|present|current|now|today)`)
	reYear      = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
)

// dateRange finds the first "start - end" span in s. Both are empty when
// the text states no range.
func dateRange(s string) (start, end string) {
	m := reDateRange.FindStringSubmatch(collapse(s))
	if m == nil {
		return "", ""
	}
	end = m[2]
	switch strings.ToLower(end) {
	case "present", "current", "now", "today":
		end = "Present"
	}
	return m[1], end
}

// lastYear returns the latest-written four-digit year in s, or "".
func lastYear(s string) string {
	years := reYear.FindAllString(s, -1)
	if len(years) == 0 {
		return ""
	}
	return years[len(years)-1]
}

// Experience extracts up to MaxExperience jobs. Elements without a
// position heading are skipped; nested wrappers repeating an entry are
// collapsed.
func Experience(p *Page) []models.Experience {
	jobs := []models.Experience{}
	seen := make(map[[2]string]struct{})

	p.Doc.FindMatcher(sel.experienceItem).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if len(jobs) >= models.MaxExperience {
			return false
		}
		position := firstText(el, sel.position)
		if position == "" {
			return true
		}
		company := firstText(el, sel.company)
		key := [2]string{position, company}
		if _, dup := seen[key]; dup {
			return true
		}
		seen[key] = struct{}{}

		if company == "" {
			company = models.FallbackCompany
		}
		desc := firstText(el, sel.expDesc)
		if desc == "" {
			desc = models.FallbackExpDesc
		}
		start, end := dateRange(el.Text())
		jobs = append(jobs, models.Experience{
			Position:    position,
			Company:     company,
			Description: desc,
			StartDate:   start,
			EndDate:     end,
		})
		return true
	})
	return jobs
}

// Education extracts up to MaxEducation degrees.
func Education(p *Page) []models.Education {
	degrees := []models.Education{}
	seen := make(map[[2]string]struct{})

	p.Doc.FindMatcher(sel.educationItem).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if len(degrees) >= models.MaxEducation {
			return false
		}
		degree := firstText(el, sel.degree)
		institution := firstText(el, sel.institution)
		if degree == "" && institution == "" {
			return true
		}
		key := [2]string{degree, institution}
		if _, dup := seen[key]; dup {
			return true
		}
		seen[key] = struct{}{}

		if degree == "" {
			degree = models.FallbackDegree
		}
		if institution == "" {
			institution = models.FallbackInstitution
		}
		degrees = append(degrees, models.Education{
			Degree:         degree,
			Institution:    institution,
			Field:          firstText(el, sel.field),
			GraduationYear: lastYear(el.Text()),
		})
		return true
	})
	return degrees
}
