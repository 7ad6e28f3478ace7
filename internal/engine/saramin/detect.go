package saramin

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RouteDecision says where a posting routes applicants.
type RouteDecision struct {
	IsExternal  bool   `json:"isExternal"`
	ExternalURL string `json:"externalUrl,omitempty"`
}

var (
	relayIdxRe = regexp.MustCompile(`rec_idx=(\d+)`)
	dataHrefRe = regexp.MustCompile(`data-href="(https?://[^"]+)"`)
)

// homepageApplyMarkers flag "apply via company homepage" postings: a button
// title attribute plus the two script call patterns the aggregator renders
// for homepage applications. Pure substring sniffing over raw markup.
var homepageApplyMarkers = []string{
	`title="홈페이지 지원"`,
	`try_apply_homepage(`,
	`homepage_apply(`,
}

// DirectViewURL rewrites a relay indirection link to the canonical detail
// URL. Relay links redirect via script, which listing fetches cannot
// follow. Links without a posting id are returned unchanged.
func DirectViewURL(baseURL, link string) string {
	if !strings.Contains(link, "/relay/") {
		return link
	}
	m := relayIdxRe.FindStringSubmatch(link)
	if m == nil {
		return link
	}
	return baseURL + "/zf_user/jobs/view?rec_idx=" + m[1]
}

// DetectApplicationRoute inspects raw posting markup for homepage-apply
// markers and extracts the external site URL when present. Absence of
// markers means internal; markers without an extractable URL degrade to
// internal rather than erroring.
func DetectApplicationRoute(html string) RouteDecision {
	marked := false
	for _, m := range homepageApplyMarkers {
		if strings.Contains(html, m) {
			marked = true
			break
		}
	}
	if !marked {
		return RouteDecision{}
	}

	if u := applyButtonHref(html); u != "" {
		return RouteDecision{IsExternal: true, ExternalURL: u}
	}
	if m := dataHrefRe.FindStringSubmatch(html); m != nil {
		return RouteDecision{IsExternal: true, ExternalURL: m[1]}
	}
	return RouteDecision{}
}

// applyButtonHref looks for a structured data-href inside the application
// button region before falling back to a document-wide regex.
func applyButtonHref(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	var href string
	doc.Find(".jv_apply [data-href], .apply_wrap [data-href], .btn_apply[data-href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, ok := s.Attr("data-href"); ok && strings.HasPrefix(v, "http") {
			href = v
			return false
		}
		return true
	})
	return href
}

// DirectViewURL resolves relay links against the client's base URL.
func (c *Client) DirectViewURL(link string) string {
	return DirectViewURL(c.BaseURL, link)
}

// DetectExternalSite fetches one sample posting and decides whether the
// company routes applicants to its own career site.
func (c *Client) DetectExternalSite(ctx context.Context, sampleLink string) (RouteDecision, error) {
	direct := DirectViewURL(c.BaseURL, sampleLink)
	body, err := c.get(ctx, direct)
	if err != nil {
		return RouteDecision{}, err
	}
	return DetectApplicationRoute(string(body)), nil
}
