package sitemap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const jobsSitemap = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.com/jobs</loc></url>
  <url><loc>https://example.com/jobs/backend-engineer</loc></url>
  <url><loc>https://example.com/jobs/frontend-engineer</loc></url>
  <url><loc>https://example.com/blog/we-are-hiring</loc></url>
</urlset>`

func TestResolvePicksFirstCandidateWithPostings(t *testing.T) {
	var probes []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		probes = append(probes, r.URL.Path)
		if r.URL.Path == "/sitemap-jobs.xml" {
			w.Write([]byte(jobsSitemap))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	res := &Resolver{Client: srv.Client()}
	entries, err := res.Resolve(context.Background(), srv.URL+"/careers")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "https://example.com/jobs/backend-engineer", entries[0].URL)
	require.Equal(t, "Backend Engineer", entries[0].Title)

	// root sitemap probed first, then the jobs variant
	require.GreaterOrEqual(t, len(probes), 2)
	require.Equal(t, "/sitemap.xml", probes[0])
}

func TestResolveEmptyWhenNoSitemap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	res := &Resolver{Client: srv.Client()}
	entries, err := res.Resolve(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestResolveIgnoresSitemapWithOnlyExcludedURLs(t *testing.T) {
	index := `<?xml version="1.0"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>https://example.com/sitemap-pages.xml</loc></sitemap>
</sitemapindex>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/sitemap.xml" {
			w.Write([]byte(index))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	res := &Resolver{Client: srv.Client()}
	entries, err := res.Resolve(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Empty(t, entries)
}
