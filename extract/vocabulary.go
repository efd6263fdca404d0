package extract

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v2"
)

// Role maps a lowercase phrase found in page text to its display form.
type Role struct {
	Phrase  string `yaml:"phrase"`
	Display string `yaml:"display"`
}

// Vocabulary is the data behind the skills and title heuristics.
type Vocabulary struct {
	// Skills are lowercase technology keywords, in reporting order.
	Skills []string `yaml:"skills"`

	// Roles are tried in order; the first phrase present wins.
	Roles []Role `yaml:"roles"`

	// Display overrides the capitalized default for specific keywords.
	Display map[string]string `yaml:"display"`

	patterns []*regexp.Regexp
}

var defaultSkills = []string{
	"javascript", "python", "java", "react", "node.js", "node", "angular", "vue",
	"html", "html5", "css", "css3", "typescript", "mongodb", "sql", "mysql", "postgresql",
	"aws", "docker", "git", "github", "api", "rest", "graphql", "express", "django", "flask",
	"c++", "c#", ".net", "php", "ruby", "go", "rust", "swift", "kotlin", "flutter", "dart",
	"redis", "kubernetes", "jenkins", "figma", "adobe", "photoshop", "illustrator",
	"bootstrap", "tailwind", "sass", "scss", "jquery", "firebase", "azure", "gcp",
	"linux", "bash", "shell", "agile", "scrum", "jira", "trello",
}

var defaultRoles = []Role{
	{Phrase: "front end engineer", Display: "Front End Engineer"},
	{Phrase: "frontend engineer", Display: "Front End Engineer"},
	{Phrase: "software engineer", Display: "Software Engineer"},
	{Phrase: "full stack developer", Display: "Full Stack Developer"},
}

// symbolKeywords end or start in punctuation, where \b does not apply.
var symbolKeywords = map[string]bool{"c++": true, "c#": true, ".net": true}

// DefaultVocabulary returns the built-in vocabulary.
func DefaultVocabulary() *Vocabulary {
	v := &Vocabulary{
		Skills:  append([]string(nil), defaultSkills...),
		Roles:   append([]Role(nil), defaultRoles...),
		Display: map[string]string{"node": "Node.js"},
	}
	v.compile()
	return v
}

// LoadVocabulary reads a YAML vocabulary file. Sections left out of the
// file keep their built-in defaults.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vocabulary: read %s: %w", path, err)
	}
	return ParseVocabulary(data)
}

// ParseVocabulary decodes a YAML vocabulary.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.UnmarshalStrict(data, &v); err != nil {
		return nil, fmt.Errorf("vocabulary: decode: %w", err)
	}

	def := DefaultVocabulary()
	if len(v.Skills) == 0 {
		v.Skills = def.Skills
	}
	if len(v.Roles) == 0 {
		v.Roles = def.Roles
	}
	if v.Display == nil {
		v.Display = def.Display
	}
	for i, s := range v.Skills {
		v.Skills[i] = strings.ToLower(strings.TrimSpace(s))
	}
	for i, r := range v.Roles {
		if r.Phrase == "" || r.Display == "" {
			return nil, fmt.Errorf("vocabulary: role %d needs phrase and display", i)
		}
		v.Roles[i].Phrase = strings.ToLower(r.Phrase)
	}
	v.compile()
	return &v, nil
}

func (v *Vocabulary) compile() {
	v.patterns = make([]*regexp.Regexp, len(v.Skills))
	for i, kw := range v.Skills {
		quoted := regexp.QuoteMeta(kw)
		if symbolKeywords[kw] {
			v.patterns[i] = regexp.MustCompile(`(^|\s)` + quoted + `($|\s)`)
		} else {
			v.patterns[i] = regexp.MustCompile(`\b` + quoted + `\b`)
		}
	}
}

// DisplayName is the normalized form reported for a keyword.
func (v *Vocabulary) DisplayName(kw string) string {
	if d, ok := v.Display[kw]; ok {
		return d
	}
	r, size := utf8.DecodeRuneInString(kw)
	if r == utf8.RuneError {
		return kw
	}
	return string(unicode.ToUpper(r)) + kw[size:]
}
