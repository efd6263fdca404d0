package extract

import (
	"fmt"
	"log/slog"

	"github.com/use-agent/folio/models"
)

// Extractor runs every field heuristic over a page.
type Extractor struct {
	vocab *Vocabulary
	title *TitleExtractor
}

// NewExtractor returns an Extractor backed by v. A nil v selects the
// built-in vocabulary.
func NewExtractor(v *Vocabulary) *Extractor {
	if v == nil {
		v = DefaultVocabulary()
	}
	return &Extractor{vocab: v, title: NewTitleExtractor(v)}
}

// guard runs fn and substitutes fallback if it panics. One broken
// heuristic must not cost the rest of the result.
func guard[T any](field string, fallback T, fn func() T) (out T) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("field extraction panicked",
				"field", field,
				"panic", fmt.Sprint(r),
			)
			out = fallback
		}
	}()
	return fn()
}

// Portfolio extracts every field of p. Design signals come from markup
// only; callers with a rendered page overwrite DesignAnalysis.
func (e *Extractor) Portfolio(p *Page) models.ScrapeResult {
	name := guard("name", models.FallbackName, func() string { return Name(p) })
	headings := guard("headings", []string{}, func() []string { return Headings(p) })
	allParas := guard("paragraphs", []string{}, func() []string { return allParagraphs(p) })

	return models.ScrapeResult{
		URL:             p.URL.String(),
		Name:            name,
		Title:           guard("title", models.FallbackTitle, func() string { return e.title.Extract(p) }),
		Bio:             guard("bio", models.FallbackBio, func() string { return Bio(p) }),
		HeroIntro:       guard("hero_intro", "", func() string { return HeroIntro(p) }),
		ProfilePhotoURL: guard("profile_photo_url", "", func() string { return ProfilePhoto(p, name) }),
		Email:           guard("email", models.FallbackEmail, func() string { return Email(p) }),
		SocialLinks:     guard("social_links", models.SocialLinks{}, func() models.SocialLinks { return Social(p) }),
		Headings:        headings,
		Paragraphs:      guard("paragraphs", []string{}, func() []string { return Paragraphs(p) }),
		Skills:          guard("skills", []string{}, func() []string { return e.vocab.SkillsOf(p) }),
		Projects:        guard("projects", []models.Project{}, func() []models.Project { return Projects(p) }),
		Experience:      guard("experience", []models.Experience{}, func() []models.Experience { return Experience(p) }),
		Education:       guard("education", []models.Education{}, func() []models.Education { return Education(p) }),
		Achievements:    guard("achievements", []models.Achievement{}, func() []models.Achievement { return Achievements(p) }),
		DesignAnalysis: guard("design_analysis", models.DesignAnalysis{Error: models.DesignUnavailable},
			func() models.DesignAnalysis { return StaticDesign(p) }),
		Sections: DetectSections(headings, allParas),
	}
}

// Validate rejects results that carry no portfolio signal: the name fell
// back and no skills, projects or experience were found.
func Validate(r *models.ScrapeResult) error {
	if r.Name == models.FallbackName && len(r.Skills) == 0 && len(r.Projects) == 0 && len(r.Experience) == 0 {
		return models.NewInsufficientDataError()
	}
	return nil
}
