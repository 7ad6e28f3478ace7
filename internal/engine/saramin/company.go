package saramin

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	companyParenRe = regexp.MustCompile(`\([^)]*\)`)
	companyCodeRe  = regexp.MustCompile(`company-info/view\?csn=([^&"'\s]+)`)
)

// legalMarkers are stripped before fuzzy company-name comparison.
var legalMarkers = []string{"주식회사", "㈜", "유한회사", "(유)"}

// NormalizeCompanyName lowercases and removes parenthetical content, legal
// entity markers and all whitespace. Idempotent: normalizing an already
// normalized name is a no-op.
func NormalizeCompanyName(s string) string {
	s = strings.ToLower(s)
	s = companyParenRe.ReplaceAllString(s, "")
	for _, m := range legalMarkers {
		s = strings.ReplaceAll(s, m, "")
	}
	return strings.Join(strings.Fields(s), "")
}

// ResolveCompanyCode maps a free-text company name to the aggregator's
// company code via its company-search page. The first anchor in document
// order whose normalized link text contains, or is contained in, the
// normalized query wins; there is no tie-break scoring, so near-duplicate
// company names may resolve to the wrong entry.
func (c *Client) ResolveCompanyCode(ctx context.Context, name string) (string, error) {
	query := NormalizeCompanyName(name)
	if query == "" {
		return "", fmt.Errorf("saramin: empty company name")
	}

	searchURL := fmt.Sprintf("%s/zf_user/search/company?searchType=company&searchword=%s",
		c.BaseURL, url.QueryEscape(name))
	body, err := c.get(ctx, searchURL)
	if err != nil {
		return "", err
	}

	code := findCompanyCode(string(body), query)
	if code == "" {
		return "", ErrCompanyNotFound
	}
	return code, nil
}

// findCompanyCode scans company-view anchors for the first fuzzy name match.
func findCompanyCode(html, normalizedQuery string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	var code string
	doc.Find(`a[href*="company-info/view"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		m := companyCodeRe.FindStringSubmatch(href)
		if m == nil {
			return true
		}
		text := NormalizeCompanyName(a.Text())
		if text == "" {
			return true
		}
		if strings.Contains(text, normalizedQuery) || strings.Contains(normalizedQuery, text) {
			code = m[1]
			return false
		}
		return true
	})
	return code
}
