package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/folio/models"
)

var reEmail = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

var emailChain = Chain{
	Strategies: []Strategy{emailFromMailto, emailFromText},
	Fallback:   models.FallbackEmail,
}

// Email returns the owner's contact address.
func Email(p *Page) string { return emailChain.Run(p) }

func emailFromMailto(p *Page) string {
	href, _ := p.Doc.FindMatcher(sel.mailto).First().Attr("href")
	addr := strings.TrimSpace(href)
	if len(addr) < len("mailto:") {
		return ""
	}
	addr = addr[len("mailto:"):]
	addr, _, _ = strings.Cut(addr, "?")
	if unescaped, err := url.PathUnescape(addr); err == nil {
		addr = unescaped
	}
	return strings.TrimSpace(addr)
}

func emailFromText(p *Page) string {
	return reEmail.FindString(p.Text())
}

// shareTerms mark links that post to a network rather than point at a profile.
var shareTerms = []string{"share", "intent", "sharing", "post", "status", "plugins"}

type platform struct {
	domains []string
	skip    func(u *url.URL) bool
	set     func(l *models.SocialLinks, href string)
	get     func(l *models.SocialLinks) string
}

var platforms = []platform{
	{
		domains: []string{"linkedin.com"},
		set:     func(l *models.SocialLinks, h string) { l.LinkedIn = h },
		get:     func(l *models.SocialLinks) string { return l.LinkedIn },
	},
	{
		domains: []string{"github.com"},
		skip:    func(u *url.URL) bool { return strings.HasPrefix(strings.ToLower(u.Path), "/settings") },
		set:     func(l *models.SocialLinks, h string) { l.GitHub = h },
		get:     func(l *models.SocialLinks) string { return l.GitHub },
	},
	{
		domains: []string{"twitter.com", "x.com"},
		set:     func(l *models.SocialLinks, h string) { l.Twitter = h },
		get:     func(l *models.SocialLinks) string { return l.Twitter },
	},
	{
		domains: []string{"instagram.com"},
		set:     func(l *models.SocialLinks, h string) { l.Instagram = h },
		get:     func(l *models.SocialLinks) string { return l.Instagram },
	},
}

// hostIs matches a host against a domain or any of its subdomains.
func hostIs(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// Social returns the first profile link per platform. Share and intent
// links are skipped entirely.
func Social(p *Page) models.SocialLinks {
	var links models.SocialLinks
	p.Doc.FindMatcher(sel.anchor).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		abs := p.Resolve(href)
		if abs == "" {
			return
		}
		u, err := url.Parse(abs)
		if err != nil {
			return
		}
		if strings.Trim(u.Path, "/") == "" {
			return
		}
		if containsAny(strings.ToLower(u.Path+"?"+u.RawQuery), shareTerms...) {
			return
		}
		host := strings.ToLower(u.Hostname())
		for _, pl := range platforms {
			if pl.get(&links) != "" || !matchesAny(host, pl.domains) {
				continue
			}
			if pl.skip != nil && pl.skip(u) {
				continue
			}
			pl.set(&links, abs)
			return
		}
	})
	return links
}

func matchesAny(host string, domains []string) bool {
	for _, d := range domains {
		if hostIs(host, d) {
			return true
		}
	}
	return false
}
