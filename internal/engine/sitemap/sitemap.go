// Package sitemap locates individual job-posting URLs on a company career
// site by probing well-known sitemap paths and filtering <loc> entries by
// path shape.
package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/daylab/jobscout/internal/engine/fetch"
)

// Entry is one posting URL discovered in a sitemap, with a title derived
// from the URL slug.
type Entry struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// candidatePaths are probed in order against the site origin. The first
// sitemap yielding at least one posting URL wins.
var candidatePaths = []string{
	"/sitemap.xml",
	"/sitemap-jobs.xml",
	"/sitemap_index.xml",
	"/careers/sitemap.xml",
	"/career/sitemap.xml",
	"/jobs/sitemap.xml",
}

// Resolver probes career-site sitemaps over a shared HTTP client.
type Resolver struct {
	Client *http.Client
}

// Resolve derives the origin of baseURL, probes candidate sitemap paths and
// returns posting entries from the first sitemap that yields any. Returns an
// empty slice (not an error) when no candidate produces postings.
func (r *Resolver) Resolve(ctx context.Context, baseURL string) ([]Entry, error) {
	origin, err := originOf(baseURL)
	if err != nil {
		return nil, fmt.Errorf("sitemap: bad base URL %q: %w", baseURL, err)
	}

	for _, p := range candidatePaths {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		entries, err := r.fetchOne(ctx, origin+p)
		if err != nil {
			slog.Debug("sitemap: candidate failed", slog.String("url", origin+p), slog.Any("error", err))
			continue
		}
		if len(entries) > 0 {
			slog.Info("sitemap: resolved", slog.String("url", origin+p), slog.Int("postings", len(entries)))
			return entries, nil
		}
	}
	return nil, nil
}

func (r *Resolver) fetchOne(ctx context.Context, sitemapURL string) ([]Entry, error) {
	body, err := fetch.Get(ctx, r.Client, sitemapURL, map[string]string{
		"Accept": "application/xml,text/xml,*/*;q=0.8",
	})
	if err != nil {
		return nil, err
	}

	locs, err := parseLocs(body)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, loc := range locs {
		if IsPostingURL(loc) {
			entries = append(entries, Entry{URL: loc, Title: TitleFromURL(loc)})
		}
	}
	return entries, nil
}

// parseLocs extracts every <loc> value from sitemap XML. Works for both
// urlset and sitemapindex documents; nested index entries are classified
// out later rather than recursed into.
func parseLocs(body []byte) ([]string, error) {
	dec := xml.NewDecoder(strings.NewReader(string(body)))
	var locs []string
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "loc" {
			continue
		}
		var loc string
		if err := dec.DecodeElement(&loc, &se); err != nil {
			return nil, fmt.Errorf("decode loc: %w", err)
		}
		if loc = strings.TrimSpace(loc); loc != "" {
			locs = append(locs, loc)
		}
	}
	if len(locs) == 0 && !strings.Contains(string(body), "<loc") {
		return nil, fmt.Errorf("not a sitemap document")
	}
	return locs, nil
}

func originOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("missing scheme or host")
	}
	return u.Scheme + "://" + u.Host, nil
}
