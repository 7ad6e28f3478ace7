package catalog

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/daylab/jobscout/internal/engine/fetch"
)

// enrichConcurrency bounds in-flight metadata fetches.
const enrichConcurrency = 10

// Enricher fills missing course thumbnails/titles by fetching each course
// page's OpenGraph tags. Results land in the MetaCache; a fetch failure
// leaves the course as-is.
type Enricher struct {
	Client *http.Client
	Cache  *MetaCache
}

// Enrich mutates courses in place, at most enrichConcurrency fetches in
// flight. Each course is independently retriable; errors never propagate.
func (e *Enricher) Enrich(ctx context.Context, courses []CourseRecord) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)

	var mu sync.Mutex
	for i := range courses {
		if courses[i].Thumbnail != "" || courses[i].URL == "" {
			continue
		}
		i := i
		g.Go(func() error {
			meta, ok := e.lookup(ctx, courses[i].Slug, courses[i].URL)
			if !ok {
				return nil
			}
			mu.Lock()
			courses[i].Thumbnail = meta.Thumbnail
			if courses[i].Title == "" {
				courses[i].Title = meta.Title
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
}

func (e *Enricher) lookup(ctx context.Context, slug, pageURL string) (CourseMeta, bool) {
	if e.Cache != nil {
		if m, ok := e.Cache.Get(ctx, slug); ok {
			return m, true
		}
	}

	body, err := fetch.Get(ctx, e.Client, pageURL, nil)
	if err != nil {
		return CourseMeta{}, false
	}

	meta, ok := parseOpenGraph(string(body))
	if !ok {
		return CourseMeta{}, false
	}
	if e.Cache != nil {
		e.Cache.Set(ctx, slug, meta)
	}
	return meta, true
}

func parseOpenGraph(html string) (CourseMeta, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return CourseMeta{}, false
	}
	var m CourseMeta
	m.Title, _ = doc.Find(`meta[property="og:title"]`).First().Attr("content")
	m.Thumbnail, _ = doc.Find(`meta[property="og:image"]`).First().Attr("content")
	if m.Title == "" {
		m.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if m.Title == "" && m.Thumbnail == "" {
		return CourseMeta{}, false
	}
	return m, true
}
