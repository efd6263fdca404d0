package scraper

import (
	"net/url"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// resourceTypes maps config names to CDP resource types. Stylesheets are
// accepted but blocking them empties the computed colours the design
// analysis reads.
var resourceTypes = map[string]proto.NetworkResourceType{
	"Image":      proto.NetworkResourceTypeImage,
	"Stylesheet": proto.NetworkResourceTypeStylesheet,
	"Font":       proto.NetworkResourceTypeFont,
	"Media":      proto.NetworkResourceTypeMedia,
	"Script":     proto.NetworkResourceTypeScript,
}

// trackerDomains are ad, analytics and embed hosts common on personal
// sites. Subdomains match too.
var trackerDomains = map[string]struct{}{
	"doubleclick.net":       {},
	"googlesyndication.com": {},
	"googleadservices.com":  {},
	"google-analytics.com":  {},
	"googletagmanager.com":  {},
	"googletagservices.com": {},
	"connect.facebook.net":  {},
	"facebook.net":          {},
	"adnxs.com":             {},
	"amazon-adsystem.com":   {},
	"criteo.com":            {},
	"taboola.com":           {},
	"outbrain.com":          {},
	"hotjar.com":            {},
	"mixpanel.com":          {},
	"segment.io":            {},
	"segment.com":           {},
	"clarity.ms":            {},
	"plausible.io":          {},
	"fullstory.com":         {},
	"heapanalytics.com":     {},
	"intercom.io":           {},
	"crisp.chat":            {},
	"tawk.to":               {},
	"ads-twitter.com":       {},
	"analytics.twitter.com": {},
	"scorecardresearch.com": {},
	"quantserve.com":        {},
	"sharethis.com":         {},
	"addthis.com":           {},
	"consensu.org":          {},
}

// isTrackerHost checks host and each parent domain against trackerDomains.
func isTrackerHost(host string) bool {
	host = strings.ToLower(host)
	for host != "" {
		if _, ok := trackerDomains[host]; ok {
			return true
		}
		i := strings.IndexByte(host, '.')
		if i < 0 {
			break
		}
		host = host[i+1:]
	}
	return false
}

// requestFilter decides which subresource requests a tab drops.
type requestFilter struct {
	types    map[proto.NetworkResourceType]struct{}
	trackers bool
}

func newRequestFilter(typeNames []string, blockTrackers bool) *requestFilter {
	f := &requestFilter{
		types:    make(map[proto.NetworkResourceType]struct{}, len(typeNames)),
		trackers: blockTrackers,
	}
	for _, name := range typeNames {
		if rt, ok := resourceTypes[name]; ok {
			f.types[rt] = struct{}{}
		}
	}
	return f
}

func (f *requestFilter) empty() bool { return len(f.types) == 0 && !f.trackers }

// blocks reports whether a request of type rt to rawURL is dropped.
// Documents always load.
func (f *requestFilter) blocks(rt proto.NetworkResourceType, rawURL string) bool {
	if rt == proto.NetworkResourceTypeDocument {
		return false
	}
	if _, ok := f.types[rt]; ok {
		return true
	}
	if f.trackers {
		if u, err := url.Parse(rawURL); err == nil && isTrackerHost(u.Hostname()) {
			return true
		}
	}
	return false
}

// mount installs the filter on page and starts the router. It returns
// nil when there is nothing to block; otherwise the caller stops the
// router when the tab is done.
func (f *requestFilter) mount(page *rod.Page) *rod.HijackRouter {
	if f.empty() {
		return nil
	}
	router := page.HijackRequests()
	_ = router.Add("*", "", func(h *rod.Hijack) {
		if f.blocks(h.Request.Type(), h.Request.URL().String()) {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})
	// Run blocks until Stop.
	go router.Run()
	return router
}
