package extract

import "github.com/andybalholm/cascadia"

// sel holds every selector the extractors use, compiled once.
var sel = struct {
	nonVisible cascadia.Selector

	// identity
	h1, h2, h1h2h3 cascadia.Selector
	heroContainer  cascadia.Selector
	heroText       cascadia.Selector
	roleHooks      cascadia.Selector
	afterH1        cascadia.Selector
	aboutContainer cascadia.Selector
	paragraph      cascadia.Selector
	ogTitle        cascadia.Selector

	// contact
	mailto cascadia.Selector
	anchor cascadia.Selector

	// photo
	img            cascadia.Selector
	photoProjects  cascadia.Selector
	photoCard      cascadia.Selector
	photoHero      cascadia.Selector
	photoChrome    cascadia.Selector
	photoHook      cascadia.Selector
	ogImage        cascadia.Selector
	twitterImage   cascadia.Selector

	// skills
	skillTags cascadia.Selector

	// projects
	projectItem      cascadia.Selector
	projectContainer cascadia.Selector
	projectCard      cascadia.Selector
	projectTitle     cascadia.Selector
	projectDesc      cascadia.Selector

	// experience and education
	experienceItem cascadia.Selector
	position       cascadia.Selector
	company        cascadia.Selector
	expDesc        cascadia.Selector
	educationItem  cascadia.Selector
	degree         cascadia.Selector
	institution    cascadia.Selector
	field          cascadia.Selector

	// achievements
	headingH1to4     cascadia.Selector
	achievementEntry cascadia.Selector
	achievementItem  cascadia.Selector

	// design
	navbar cascadia.Selector
	footer cascadia.Selector
}{
	nonVisible: cascadia.MustCompile("script, style, noscript, template"),

	h1:             cascadia.MustCompile("h1"),
	h2:             cascadia.MustCompile("h2"),
	h1h2h3:         cascadia.MustCompile("h1, h2, h3"),
	heroContainer:  cascadia.MustCompile("#home, #hero, .hero, .intro, header, .header"),
	heroText:       cascadia.MustCompile("p, h2, h3"),
	roleHooks:      cascadia.MustCompile(".subtitle, .role, .job-title, .tagline"),
	afterH1:        cascadia.MustCompile("p, h2, .subtitle"),
	aboutContainer: cascadia.MustCompile(`#about, .about, [class*="about"]`),
	paragraph:      cascadia.MustCompile("p"),
	ogTitle:        cascadia.MustCompile(`meta[property="og:title"]`),

	mailto: cascadia.MustCompile(`a[href^="mailto:"], a[href^="MAILTO:"]`),
	anchor: cascadia.MustCompile("a[href]"),

	img:           cascadia.MustCompile("img"),
	photoProjects: cascadia.MustCompile("#projects, #portfolio, #work, .projects-section, .portfolio-section"),
	photoCard:     cascadia.MustCompile(".project-card, .portfolio-item, .work-item"),
	photoHero:     cascadia.MustCompile("#hero, #about, header, .hero, .about, .intro"),
	photoChrome:   cascadia.MustCompile("nav, footer"),
	photoHook:     cascadia.MustCompile("#profile-pic, .profile-pic, .avatar, .hero-img"),
	ogImage:       cascadia.MustCompile(`meta[property="og:image"]`),
	twitterImage:  cascadia.MustCompile(`meta[name="twitter:image"]`),

	skillTags: cascadia.MustCompile(`.skill, .tag, .badge, .chip, li, [class*="skill"], [class*="tech"], [class*="stack"]`),

	projectItem: cascadia.MustCompile(`.project, .work-item, .portfolio-item, .card, .featured-project, .project-card, ` +
		`.project-item, [class*="project-card"], [class*="portfolio-card"], article, .grid-item`),
	projectContainer: cascadia.MustCompile("#projects, #portfolio, #work, .projects, .portfolio"),
	projectCard:      cascadia.MustCompile(".card, .project-card, .featured-project, article"),
	projectTitle:     cascadia.MustCompile("h3, h4, h5, .title, strong, b, .project-title"),
	projectDesc:      cascadia.MustCompile("p, .description, span, .project-description"),

	experienceItem: cascadia.MustCompile(`[class*="experience"], [class*="work"], .job, .position`),
	position:       cascadia.MustCompile("h3, h4, .title, .role"),
	company:        cascadia.MustCompile(".company, .org, .employer"),
	expDesc:        cascadia.MustCompile("p, .description"),
	educationItem:  cascadia.MustCompile(`[class*="education"], .degree, .school`),
	degree:         cascadia.MustCompile("h3, h4, .degree, .title"),
	institution:    cascadia.MustCompile(".school, .university, .institution"),
	field:          cascadia.MustCompile(".field, .major, .specialization"),

	headingH1to4: cascadia.MustCompile("h1, h2, h3, h4"),
	achievementEntry: cascadia.MustCompile(`[class*="achievement"], [id*="achievement"], [class*="certificate"], ` +
		`[id*="certificate"], [class*="award"], [id*="award"], .certification, .honor, .award-item`),
	achievementItem: cascadia.MustCompile(`li, .item, .card, [class*="item"]`),

	navbar: cascadia.MustCompile("nav, header"),
	footer: cascadia.MustCompile("footer"),
}
