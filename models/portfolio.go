package models

import (
	"encoding/json"
	"time"
)

// Fallback values substituted when a field heuristic finds nothing.
const (
	FallbackName        = "Portfolio Owner"
	FallbackTitle       = "Software Engineer"
	FallbackBio         = "Passionate professional with diverse skills and experience."
	FallbackEmail       = "contact@example.com"
	FallbackProjectDesc = "Project details"
	FallbackCompany     = "Company"
	FallbackExpDesc     = "Professional experience"
	FallbackDegree      = "Degree"
	FallbackInstitution = "Institution"
)

// Collection caps. Extraction stops silently once a cap is reached.
const (
	MaxParagraphs   = 10
	MaxSkills       = 25
	MaxProjects     = 12
	MaxExperience   = 5
	MaxEducation    = 5
	MaxAchievements = 10
)

// ScrapeResult is everything extracted from one portfolio page.
type ScrapeResult struct {
	URL             string         `json:"url"`
	FinalURL        string         `json:"final_url,omitempty"`
	Name            string         `json:"name"`
	Title           string         `json:"title"`
	Bio             string         `json:"bio"`
	HeroIntro       string         `json:"hero_intro"`
	ProfilePhotoURL string         `json:"profile_photo_url"`
	Email           string         `json:"email"`
	SocialLinks     SocialLinks    `json:"social_links"`
	Headings        []string       `json:"headings"`
	Paragraphs      []string       `json:"paragraphs"`
	Skills          []string       `json:"skills"`
	Projects        []Project      `json:"projects"`
	Experience      []Experience   `json:"experience"`
	Education       []Education    `json:"education"`
	Achievements    []Achievement  `json:"achievements"`
	DesignAnalysis  DesignAnalysis `json:"design_analysis"`
	Sections        Sections       `json:"sections"`
	EngineUsed      string         `json:"engine_used,omitempty"`
	ScrapedAt       time.Time      `json:"scraped_at"`

	// RawHTML is the captured document. It feeds prompt digests and
	// snapshot fingerprints and is never serialized.
	RawHTML string `json:"-" bson:"-"`
}

// SocialLinks holds one profile URL per platform, empty when absent.
type SocialLinks struct {
	LinkedIn  string `json:"linkedin"`
	GitHub    string `json:"github"`
	Twitter   string `json:"twitter"`
	Instagram string `json:"instagram"`
}

// Project is one portfolio work item.
type Project struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Link        string `json:"link,omitempty"`
	Image       string `json:"image,omitempty"`
}

// Experience is one job entry. Dates are empty when the page does not state them.
type Experience struct {
	Position    string `json:"position"`
	Company     string `json:"company"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

// Education is one degree entry.
type Education struct {
	Degree         string `json:"degree"`
	Institution    string `json:"institution"`
	Field          string `json:"field"`
	GraduationYear string `json:"graduation_year"`
}

// Achievement is an award, certificate or honor.
type Achievement struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
	Link        string `json:"link,omitempty"`
}

// DesignAnalysis carries coarse theme signals. When Error is set the
// other fields are meaningless and are not serialized.
type DesignAnalysis struct {
	BackgroundColor string `json:"background_color"`
	TextColor       string `json:"text_color"`
	HasNavbar       bool   `json:"has_navbar"`
	HasFooter       bool   `json:"has_footer"`
	IsDarkMode      bool   `json:"is_dark_mode"`
	Error           string `json:"error,omitempty"`
}

// DesignUnavailable is the error indicator used when analysis fails.
const DesignUnavailable = "could not analyze design"

// MarshalJSON emits only the error indicator for failed analyses.
func (d DesignAnalysis) MarshalJSON() ([]byte, error) {
	if d.Error != "" {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{d.Error})
	}
	type plain DesignAnalysis
	return json.Marshal(plain(d))
}

// Sections records which conventional portfolio sections were detected.
type Sections struct {
	About      bool `json:"about"`
	Projects   bool `json:"projects"`
	Experience bool `json:"experience"`
	Contact    bool `json:"contact"`
	Skills     bool `json:"skills"`
}
