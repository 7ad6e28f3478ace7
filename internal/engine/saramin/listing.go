package saramin

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// maxListingPages bounds pagination regardless of what the aggregator
	// reports; ~100 postings is more than any matching run needs.
	maxListingPages = 20
	// minPerFullPage: a page with fewer stubs than this is the last one.
	minPerFullPage = 5
)

// PostingStub is one row of a company's listing.
type PostingStub struct {
	Title        string   `json:"title"`
	Link         string   `json:"link"`
	Deadline     string   `json:"deadline,omitempty"`
	TechStack    []string `json:"techStack,omitempty"`
	Requirements []string `json:"requirements,omitempty"`
}

// StubFilter decides whether a stub is kept in results.
type StubFilter func(PostingStub) bool

// entry-level allowance vocabulary for DefaultStubFilter. Substring-based
// and intentionally approximate; a named source of false negatives.
var (
	careerRequiredMarker = "경력"
	entryLevelMarkers    = []string{"신입", "무관", "인턴"}
)

// DefaultStubFilter drops postings that demand prior experience with no
// entry-level allowance: requirement text mentioning 경력 without any of
// 신입, 무관 or 인턴.
func DefaultStubFilter(s PostingStub) bool {
	joined := strings.Join(s.Requirements, " ")
	if !strings.Contains(joined, careerRequiredMarker) {
		return true
	}
	for _, m := range entryLevelMarkers {
		if strings.Contains(joined, m) {
			return true
		}
	}
	return false
}

// PostingsPage fetches one unfiltered page of the company's recruit
// listing. Page numbers start at 1.
func (c *Client) PostingsPage(ctx context.Context, companyCode string, page int) ([]PostingStub, error) {
	listURL := fmt.Sprintf("%s/zf_user/company-info/get-company-recruit-list?csn=%s&page=%d",
		c.BaseURL, url.QueryEscape(companyCode), page)
	body, err := c.get(ctx, listURL)
	if err != nil {
		return nil, err
	}
	return parsePostingList(string(body), c.BaseURL), nil
}

// CompanyPostings pages through the company's recruit listing and returns
// filtered stubs. Stops at the first page returning zero stubs or fewer
// than minPerFullPage, whichever comes first, capped at maxListingPages.
func (c *Client) CompanyPostings(ctx context.Context, companyCode string) ([]PostingStub, error) {
	filter := c.StubFilter
	if filter == nil {
		filter = DefaultStubFilter
	}

	var kept []PostingStub
	for page := 1; page <= maxListingPages; page++ {
		stubs, err := c.PostingsPage(ctx, companyCode, page)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			slog.Warn("saramin: listing page failed, keeping earlier pages",
				slog.Int("page", page), slog.Any("error", err))
			break
		}
		if len(stubs) == 0 {
			break
		}
		for _, s := range stubs {
			if filter(s) {
				kept = append(kept, s)
			}
		}
		if len(stubs) < minPerFullPage {
			break
		}
	}
	return kept, nil
}

// KeywordPostings is the fallback when no company code resolves: full-text
// recruit search filtered to rows whose company name matches the query by
// normalized substring.
func (c *Client) KeywordPostings(ctx context.Context, companyName string) ([]PostingStub, error) {
	query := NormalizeCompanyName(companyName)
	searchURL := fmt.Sprintf("%s/zf_user/search/recruit?searchType=search&searchword=%s",
		c.BaseURL, url.QueryEscape(companyName))
	body, err := c.get(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	filter := c.StubFilter
	if filter == nil {
		filter = DefaultStubFilter
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("saramin: parse search results: %w", err)
	}

	var kept []PostingStub
	doc.Find(".item_recruit").Each(func(_ int, row *goquery.Selection) {
		corp := NormalizeCompanyName(row.Find(".corp_name a").First().Text())
		if corp == "" || (!strings.Contains(corp, query) && !strings.Contains(query, corp)) {
			return
		}
		if stub, ok := stubFromItem(row, c.BaseURL); ok && filter(stub) {
			kept = append(kept, stub)
		}
	})
	return kept, nil
}

// parsePostingList extracts stubs from one listing page. The aggregator
// serves slightly different markup for the AJAX fragment and full pages,
// so two block selectors are tried.
func parsePostingList(html, baseURL string) []PostingStub {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	items := doc.Find(".list_recruiting .list_item")
	if items.Length() == 0 {
		items = doc.Find(".item_recruit")
	}

	var stubs []PostingStub
	items.Each(func(_ int, item *goquery.Selection) {
		if stub, ok := stubFromItem(item, baseURL); ok {
			stubs = append(stubs, stub)
		}
	})
	return stubs
}

// stubFromItem builds one stub from a list-item block. Title and an
// absolute link are mandatory; everything else is best-effort.
func stubFromItem(item *goquery.Selection, baseURL string) (PostingStub, bool) {
	anchor := item.Find(".job_tit a, .notification_info .job_tit a, a.str_tit").First()
	title := strings.TrimSpace(anchor.Text())
	if title == "" {
		if t, ok := anchor.Attr("title"); ok {
			title = strings.TrimSpace(t)
		}
	}
	href, _ := anchor.Attr("href")
	link := absoluteURL(baseURL, href)
	if title == "" || link == "" {
		return PostingStub{}, false
	}

	stub := PostingStub{Title: title, Link: link}
	stub.Deadline = strings.TrimSpace(item.Find(".job_date .date, .deadlines, .support_detail .date").First().Text())

	item.Find(".job_sector span, .job_sector b").Each(func(_ int, s *goquery.Selection) {
		if tag := strings.TrimSpace(s.Text()); tag != "" {
			stub.TechStack = append(stub.TechStack, tag)
		}
	})
	item.Find(".job_condition span, .support_detail span").Each(func(_ int, s *goquery.Selection) {
		if cond := strings.TrimSpace(s.Text()); cond != "" {
			stub.Requirements = append(stub.Requirements, cond)
		}
	})
	return stub, true
}

// absoluteURL resolves href against the aggregator origin.
func absoluteURL(baseURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme == "" || abs.Host == "" {
		return ""
	}
	return abs.String()
}
