package extract

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/folio/models"
)

func page(t *testing.T, body string) *Page {
	t.Helper()
	p, err := NewPage(body, "https://janedoe.dev/")
	require.NoError(t, err)
	return p
}

const janeDoe = `<!DOCTYPE html>
<html>
<head>
<title>Jane Doe - Portfolio</title>
<meta property="og:title" content="Jane Doe">
<script>var tracker = "contact@tracker.example";</script>
</head>
<body>
<nav><a href="#about">About</a> <a href="#projects">Projects</a></nav>
<header id="hero">
  <img class="avatar" src="/images/jane.jpg" alt="Jane Doe" width="240" height="240">
  <h1>Jane Doe</h1>
  <p class="tagline">Full Stack Developer</p>
</header>
<section id="about">
  <h2>About Me</h2>
  <p>I am a full stack developer who builds fast web applications with React and Go.</p>
</section>
<section id="projects">
  <h2>Projects</h2>
  <div class="project-card"><h3>Weather App</h3><p>Forecasts with charts.</p><a href="https://weather.janedoe.dev">Live</a></div>
  <div class="project-card"><h3>Chat Service</h3><p>Realtime messaging.</p></div>
</section>
<section id="experience">
  <h2>Experience</h2>
  <div class="experience-item">
    <h3>Backend Developer</h3>
    <span class="company">Acme Corp</span>
    <p>Built internal tools.</p>
    <span class="dates">Jan 2020 - Present</span>
  </div>
</section>
<section id="contact">
  <h2>Contact</h2>
  <a href="mailto:jane@example.com">Email me</a>
  <a href="https://github.com/janedoe">GitHub</a>
  <a href="https://www.linkedin.com/in/janedoe">LinkedIn</a>
</section>
<footer><p>© 2024 Jane Doe</p></footer>
</body>
</html>`

func TestPortfolioEndToEnd(t *testing.T) {
	res := NewExtractor(nil).Portfolio(page(t, janeDoe))

	assert.Equal(t, "Jane Doe", res.Name)
	assert.Equal(t, "Full Stack Developer", res.Title)
	assert.Equal(t, "I am a full stack developer who builds fast web applications with React and Go.", res.Bio)
	assert.Equal(t, "https://janedoe.dev/images/jane.jpg", res.ProfilePhotoURL)
	assert.Equal(t, "jane@example.com", res.Email)
	assert.Equal(t, "https://github.com/janedoe", res.SocialLinks.GitHub)
	assert.Equal(t, "https://www.linkedin.com/in/janedoe", res.SocialLinks.LinkedIn)
	assert.Empty(t, res.SocialLinks.Twitter)

	assert.Contains(t, res.Skills, "React")
	assert.Contains(t, res.Skills, "Go")
	assert.NotContains(t, res.Skills, "Java")

	require.Len(t, res.Projects, 2)
	assert.Equal(t, models.Project{
		Name:        "Weather App",
		Description: "Forecasts with charts.",
		Link:        "https://weather.janedoe.dev",
	}, res.Projects[0])
	assert.Equal(t, "Chat Service", res.Projects[1].Name)

	require.Len(t, res.Experience, 1)
	assert.Equal(t, models.Experience{
		Position:    "Backend Developer",
		Company:     "Acme Corp",
		Description: "Built internal tools.",
		StartDate:   "Jan 2020",
		EndDate:     "Present",
	}, res.Experience[0])
	assert.Empty(t, res.Education)
	assert.Empty(t, res.Achievements)

	assert.Equal(t, "Jane Doe", res.Headings[0])
	assert.Len(t, res.Paragraphs, 3)
	assert.True(t, res.Sections.About)
	assert.True(t, res.Sections.Projects)
	assert.True(t, res.Sections.Experience)
	assert.True(t, res.Sections.Contact)
	assert.False(t, res.Sections.Skills)

	assert.True(t, res.DesignAnalysis.HasNavbar)
	assert.True(t, res.DesignAnalysis.HasFooter)
	assert.False(t, res.DesignAnalysis.IsDarkMode)

	assert.NoError(t, Validate(&res))
}

func TestPortfolioGlobalProjectCards(t *testing.T) {
	const about = "I design and build accessible web applications for startups and small teams now."
	require.Len(t, []rune(about), 80)

	p := page(t, `<html><head><title>Jane Doe - Portfolio</title></head><body>
		<div id="about"><p>`+about+`</p></div>
		<div class="project-card"><h3>Weather App</h3><p>Forecasts with charts.</p></div>
		<div class="project-card"><h3>Chat Service</h3><p>Realtime messaging.</p></div>
		<div class="project-card"><h3>Budget Tracker</h3><p>Personal finance in Go.</p></div>
		</body></html>`)
	res := NewExtractor(nil).Portfolio(p)

	assert.Equal(t, "Jane Doe", res.Name)
	assert.Equal(t, about, res.Bio)
	require.Len(t, res.Projects, 3)
	assert.Equal(t, "Weather App", res.Projects[0].Name)
	assert.Equal(t, "Chat Service", res.Projects[1].Name)
	assert.Equal(t, "Budget Tracker", res.Projects[2].Name)
	assert.Equal(t, "Personal finance in Go.", res.Projects[2].Description)
}

func TestPortfolioIsDeterministic(t *testing.T) {
	e := NewExtractor(nil)
	first := e.Portfolio(page(t, janeDoe))
	second := e.Portfolio(page(t, janeDoe))
	assert.Equal(t, first, second)

	p := page(t, janeDoe)
	assert.Equal(t, e.Portfolio(p), e.Portfolio(p))
}

func repeat(n int, format string) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, format, i)
	}
	return b.String()
}

func TestCollectionCaps(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		count func(*Page) int
		want  int
	}{
		{
			name:  "experience",
			body:  repeat(200, `<div class="job"><h3>Engineer %[1]d</h3><span class="company">Company %[1]d</span></div>`),
			count: func(p *Page) int { return len(Experience(p)) },
			want:  models.MaxExperience,
		},
		{
			name:  "education",
			body:  repeat(200, `<div class="degree-entry education"><h3>Degree %[1]d</h3><span class="university">University %[1]d</span></div>`),
			count: func(p *Page) int { return len(Education(p)) },
			want:  models.MaxEducation,
		},
		{
			name:  "achievements",
			body:  repeat(200, `<div class="award-item">Award number %d for open source</div>`),
			count: func(p *Page) int { return len(Achievements(p)) },
			want:  models.MaxAchievements,
		},
		{
			name:  "paragraphs",
			body:  repeat(300, `<p>Paragraph number %d with more than twenty characters.</p>`),
			count: func(p *Page) int { return len(Paragraphs(p)) },
			want:  models.MaxParagraphs,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.count(page(t, "<html><body>"+tt.body+"</body></html>")))
		})
	}
}

func TestPortfolioCapsParagraphsButDetectsSectionsFromAll(t *testing.T) {
	body := repeat(12, `<p>Paragraph number %d with more than twenty characters.</p>`) +
		`<p>Get in touch through the contact form below.</p>`
	res := NewExtractor(nil).Portfolio(page(t, "<html><body>"+body+"</body></html>"))

	assert.Len(t, res.Paragraphs, models.MaxParagraphs)
	assert.Equal(t, "Paragraph number 0 with more than twenty characters.", res.Paragraphs[0])
	assert.True(t, res.Sections.Contact)
}

func TestPortfolioFallbacks(t *testing.T) {
	res := NewExtractor(nil).Portfolio(page(t, `<html><body></body></html>`))

	assert.Equal(t, models.FallbackName, res.Name)
	assert.Equal(t, models.FallbackTitle, res.Title)
	assert.Equal(t, models.FallbackBio, res.Bio)
	assert.Equal(t, models.FallbackEmail, res.Email)
	assert.Empty(t, res.ProfilePhotoURL)
	assert.Equal(t, models.SocialLinks{}, res.SocialLinks)

	// Collections are empty, never nil, so they serialize as [].
	assert.NotNil(t, res.Skills)
	assert.NotNil(t, res.Projects)
	assert.NotNil(t, res.Experience)
	assert.NotNil(t, res.Education)
	assert.NotNil(t, res.Achievements)
	assert.NotNil(t, res.Headings)
	assert.NotNil(t, res.Paragraphs)
	assert.Equal(t, models.Sections{}, res.Sections)

	err := Validate(&res)
	assert.True(t, models.IsCode(err, models.ErrCodeInsufficientData))
}

func TestValidateAcceptsFallbackNameWithSkills(t *testing.T) {
	res := models.ScrapeResult{Name: models.FallbackName, Skills: []string{"Go"}}
	assert.NoError(t, Validate(&res))
}

func TestGuardRecoversPanics(t *testing.T) {
	got := guard("name", "fallback", func() string { panic("boom") })
	assert.Equal(t, "fallback", got)
	assert.Equal(t, "ok", guard("name", "fallback", func() string { return "ok" }))
}

func TestName(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"title segment", `<title>Jane Doe | Dev - Home</title>`, "Jane Doe | Dev"},
		{"hyphenated name kept", `<title>Mary-Jane Watson</title>`, "Mary-Jane Watson"},
		{"long title falls to h1", `<title>` + strings.Repeat("word ", 15) + `</title><h1>Ada Lovelace</h1>`, "Ada Lovelace"},
		{"og title", `<meta property="og:title" content="Grace Hopper">`, "Grace Hopper"},
		{"fallback", `<p>nothing here</p>`, models.FallbackName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Name(page(t, tt.html)))
		})
	}
}

func TestTitle(t *testing.T) {
	te := NewTitleExtractor(DefaultVocabulary())

	assert.Equal(t, "Front End Engineer", te.Extract(page(t, `<p>Hi, I am a frontend engineer.</p>`)))
	assert.Equal(t, "Data Engineer",
		te.Extract(page(t, `<p class="subtitle">About</p><p class="role">Data Engineer</p>`)))
	assert.Equal(t, "Product Designer at Studio", te.Extract(page(t, `<h2>Product Designer at Studio</h2>`)))
	assert.Equal(t, "Maker of things", te.Extract(page(t, `<h1>Sam</h1><p>Maker of things</p>`)))
	assert.Equal(t, models.FallbackTitle, te.Extract(page(t, `<h2>Skills</h2>`)))
}

func TestBioUsesLongestParagraphs(t *testing.T) {
	short := "This paragraph is long enough to count as biography text."
	long := "This one is longer still and should therefore come first in the joined biography."
	p := page(t, `<p>`+short+`</p><p>tiny</p><p>`+long+`</p>`)
	assert.Equal(t, long+"\n\n"+short, Bio(p))
}

func TestEmail(t *testing.T) {
	assert.Equal(t, "jane@example.com",
		Email(page(t, `<a href="mailto:jane%40example.com?subject=Hi">mail</a>`)))
	assert.Equal(t, "hello@jane.dev",
		Email(page(t, `<p>Reach me at hello@jane.dev any time.</p>`)))
	assert.Equal(t, models.FallbackEmail,
		Email(page(t, `<script>var a = "bot@spam.example"</script><p>No address.</p>`)))
}

func TestSocialSkipsShareLinks(t *testing.T) {
	p := page(t, `
		<a href="https://twitter.com/intent/tweet?text=hi">tweet</a>
		<a href="https://x.com/janedoe">x</a>
		<a href="https://github.com/settings/profile">settings</a>
		<a href="https://github.com/janedoe">gh</a>
		<a href="https://www.linkedin.com/shareArticle?mini=true">share</a>
		<a href="https://www.linkedin.com/in/janedoe">li</a>
		<a href="https://instagram.com/">root</a>
		<a href="https://notgithub.com/janedoe">lookalike</a>`)

	assert.Equal(t, models.SocialLinks{
		LinkedIn: "https://www.linkedin.com/in/janedoe",
		GitHub:   "https://github.com/janedoe",
		Twitter:  "https://x.com/janedoe",
	}, Social(p))
}

func TestProfilePhoto(t *testing.T) {
	t.Run("portrait beats project shot", func(t *testing.T) {
		p := page(t, `
			<section id="projects"><img src="/img/jane-doe-project.png" alt="Jane Doe project" width="400" height="400"></section>
			<header><img src="/img/jane-doe.jpg" alt="Jane Doe" width="200" height="200"></header>`)
		assert.Equal(t, "https://janedoe.dev/img/jane-doe.jpg", ProfilePhoto(p, "Jane Doe"))
	})

	t.Run("project card images are never chosen", func(t *testing.T) {
		p := page(t, `<div class="project-card"><img src="/shots/app.png" width="300" height="300"></div>`)
		assert.Empty(t, ProfilePhoto(p, "Jane Doe"))
	})

	t.Run("lone project screenshot is disqualified", func(t *testing.T) {
		p := page(t, `<main><img src="/img/project-screenshot.jpg" alt="Project Demo" width="300" height="300"></main>`)
		assert.Empty(t, ProfilePhoto(p, "Jane Doe"))
	})

	t.Run("profile og image", func(t *testing.T) {
		p := page(t, `<meta property="og:image" content="https://cdn.example.com/profile.jpg"><p>hi</p>`)
		assert.Equal(t, "https://cdn.example.com/profile.jpg", ProfilePhoto(p, models.FallbackName))
	})

	t.Run("inline and svg sources skipped", func(t *testing.T) {
		p := page(t, `<header><img src="data:image/png;base64,AAAA" alt="avatar"><img src="/me.svg" class="avatar"></header>`)
		assert.Empty(t, ProfilePhoto(p, "Jane Doe"))
	})
}

func TestSkills(t *testing.T) {
	v := DefaultVocabulary()

	t.Run("word boundaries", func(t *testing.T) {
		assert.Equal(t, []string{"Javascript"}, v.SkillsOf(page(t, `<p>I write JavaScript daily</p>`)))
	})

	t.Run("symbol keywords", func(t *testing.T) {
		assert.Equal(t, []string{"C++", "Rust"}, v.SkillsOf(page(t, `<p>Fluent in C++ and rust</p>`)))
	})

	t.Run("tags kept verbatim", func(t *testing.T) {
		got := v.SkillsOf(page(t, `<ul><li>React Native</li><li>Gardening</li></ul>`))
		assert.Equal(t, []string{"React", "React Native"}, got)
	})

	t.Run("capped", func(t *testing.T) {
		got := v.SkillsOf(page(t, `<p>`+strings.Join(defaultSkills, " ")+`</p>`))
		assert.Len(t, got, models.MaxSkills)
		assert.Equal(t, "Javascript", got[0])
	})
}

func TestProjects(t *testing.T) {
	t.Run("wrappers skipped and titles unique", func(t *testing.T) {
		p := page(t, `
			<section id="projects">
			  <div class="project">
			    <div class="project-card"><h3>Alpha</h3><p>First</p><a href="/alpha">open</a></div>
			    <div class="project-card"><h3>Alpha</h3><p>Again</p></div>
			    <div class="project-card"><h3>Beta</h3><img src="/beta.png"></div>
			  </div>
			</section>`)
		assert.Equal(t, []models.Project{
			{Name: "Alpha", Description: "First", Link: "https://janedoe.dev/alpha"},
			{Name: "Beta", Description: models.FallbackProjectDesc, Image: "https://janedoe.dev/beta.png"},
		}, Projects(p))
	})

	t.Run("capped", func(t *testing.T) {
		var b strings.Builder
		b.WriteString(`<section id="projects">`)
		for i := 0; i < 14; i++ {
			b.WriteString(`<article><h3>Project ` + string(rune('A'+i)) + `</h3></article>`)
		}
		b.WriteString(`</section>`)
		assert.Len(t, Projects(page(t, b.String())), models.MaxProjects)
	})
}

func TestDateRange(t *testing.T) {
	tests := []struct {
		in, start, end string
	}{
		{"Jan 2020 - Present", "Jan 2020", "Present"},
		{"2018 to 2020", "2018", "2020"},
		{"03/2019 – 05/2021", "03/2019", "05/2021"},
		{"September 2015 until current", "September 2015", "Present"},
		{"no dates here", "", ""},
	}
	for _, tt := range tests {
		start, end := dateRange(tt.in)
		assert.Equal(t, tt.start, start, tt.in)
		assert.Equal(t, tt.end, end, tt.in)
	}
}

func TestEducation(t *testing.T) {
	p := page(t, `
		<div class="education">
		  <h3>BSc Computer Science</h3>
		  <span class="university">State University</span>
		  <span class="major">Distributed Systems</span>
		  <span>2014 - 2018</span>
		</div>`)
	assert.Equal(t, []models.Education{{
		Degree:         "BSc Computer Science",
		Institution:    "State University",
		Field:          "Distributed Systems",
		GraduationYear: "2018",
	}}, Education(p))
}

func TestAchievements(t *testing.T) {
	p := page(t, `
		<section>
		  <h2>Awards</h2>
		  <ul><li>Best Hackathon Project 2022</li><li>Dean's List</li><li>Dean's List</li></ul>
		</section>`)
	got := Achievements(p)
	require.Len(t, got, 2)
	assert.Equal(t, "Best Hackathon Project 2022", got[0].Title)
	assert.Empty(t, got[0].Description)
	assert.Equal(t, "Dean's List", got[1].Title)
}

func TestVocabularyYAML(t *testing.T) {
	v, err := ParseVocabulary([]byte(`
skills:
  - Elixir
roles:
  - phrase: Data Scientist
    display: Data Scientist
`))
	require.NoError(t, err)

	p := page(t, `<p>Senior data scientist working in Elixir</p>`)
	assert.Equal(t, "Data Scientist", NewTitleExtractor(v).Extract(p))
	assert.Equal(t, []string{"Elixir"}, v.SkillsOf(p))

	_, err = ParseVocabulary([]byte("colours: [red]\n"))
	assert.Error(t, err)

	_, err = ParseVocabulary([]byte("roles:\n  - phrase: cto\n"))
	assert.Error(t, err)
}

func TestIsDarkBackground(t *testing.T) {
	assert.True(t, IsDarkBackground("rgb(18, 18, 18)"))
	assert.True(t, IsDarkBackground("rgba(10, 200, 200, 0.9)"))
	assert.False(t, IsDarkBackground("rgb(255, 255, 255)"))
	assert.False(t, IsDarkBackground("rgba(0, 0, 0, 0)"))
	assert.False(t, IsDarkBackground("#000"))
	assert.False(t, IsDarkBackground(""))
}

func TestStaticDesign(t *testing.T) {
	d := StaticDesign(page(t, `<body style="background-color: rgb(10, 10, 10); color: rgb(240, 240, 240)"><footer>x</footer></body>`))
	assert.Equal(t, "rgb(10, 10, 10)", d.BackgroundColor)
	assert.Equal(t, "rgb(240, 240, 240)", d.TextColor)
	assert.True(t, d.IsDarkMode)
	assert.False(t, d.HasNavbar)
	assert.True(t, d.HasFooter)
}

func TestBestPrefersFirstOnTies(t *testing.T) {
	pol := Policy[int]{{Name: "positive", Weight: 1, Match: func(c int) bool { return c > 0 }}}
	best, ok := Best(pol, []int{-1, 3, 5})
	assert.True(t, ok)
	assert.Equal(t, 3, best.Candidate)

	_, ok = Best(pol, []int{-1, -2})
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	p := page(t, `<p></p>`)
	assert.Equal(t, "https://janedoe.dev/a/b", p.Resolve(` "/a/b" `))
	assert.Empty(t, p.Resolve("#top"))
	assert.Empty(t, p.Resolve("javascript:void(0)"))
	assert.Empty(t, p.Resolve(""))
}
