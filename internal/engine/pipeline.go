package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/daylab/jobscout/internal/engine/catalog"
	"github.com/daylab/jobscout/internal/engine/extract"
	"github.com/daylab/jobscout/internal/engine/match"
	"github.com/daylab/jobscout/internal/engine/reader"
	"github.com/daylab/jobscout/internal/engine/saramin"
	"github.com/daylab/jobscout/internal/engine/sitemap"
)

// ErrDetailUnavailable means every detail acquisition strategy came back
// empty for a posting.
var ErrDetailUnavailable = errors.New("engine: posting detail unavailable")

// listingStrategy is one tier of external listing acquisition. Tiers run
// in declaration order; a tier runs only when every earlier tier returned
// zero postings, and its error degrades to an empty result.
type listingStrategy struct {
	name string
	run  func(ctx context.Context) ([]saramin.PostingStub, error)
}

// detailStrategy is one way to obtain posting text. ok gates the strategy
// on the request shape; first non-empty text wins.
type detailStrategy struct {
	name string
	ok   func(req DetailRequest) bool
	run  func(ctx context.Context, req DetailRequest) (string, error)
}

// SearchCompany resolves a company on the aggregator, determines whether
// it hires on an external site, and acquires its posting list. Events go
// to sink before each phase. Company-not-found is a domain error; a
// resolved company with no open postings is a successful empty result.
func (e *Engine) SearchCompany(ctx context.Context, name string, sink Sink) (*SearchResult, error) {
	e.Metrics.SearchRequests.Add(1)
	runID := uuid.NewString()
	log := slog.With(slog.String("run", runID), slog.String("company", name))

	emit(sink, runID, StepResolvingCompany, fmt.Sprintf("'%s' 기업 정보를 찾는 중...", name))

	var sample saramin.PostingStub
	var keywordJobs []saramin.PostingStub

	code, err := e.cfg.Saramin.ResolveCompanyCode(ctx, name)
	switch {
	case errors.Is(err, saramin.ErrCompanyNotFound):
		keywordJobs, err = e.cfg.Saramin.KeywordPostings(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("keyword search for %q: %w", name, err)
		}
		if len(keywordJobs) == 0 {
			e.Metrics.CompanyNotFound.Add(1)
			return nil, fmt.Errorf("company %q: %w", name, saramin.ErrCompanyNotFound)
		}
		sample = keywordJobs[0]
		log.Info("company resolved via keyword search", slog.Int("postings", len(keywordJobs)))
	case err != nil:
		return nil, fmt.Errorf("resolve company %q: %w", name, err)
	default:
		page, err := e.cfg.Saramin.PostingsPage(ctx, code, 1)
		if err != nil {
			return nil, fmt.Errorf("listing page for %q: %w", name, err)
		}
		if len(page) == 0 {
			log.Info("company has no open postings")
			return &SearchResult{Jobs: []saramin.PostingStub{}}, nil
		}
		sample = page[0]
		log.Info("company resolved", slog.String("code", code))
	}

	emit(sink, runID, StepDeterminingSiteType, "채용 사이트 유형을 확인하는 중...")

	route, err := e.cfg.Saramin.DetectExternalSite(ctx, sample.Link)
	if err != nil {
		log.Warn("site type detection failed, assuming aggregator-hosted", slog.Any("error", err))
		route = saramin.RouteDecision{}
	}
	if route.IsExternal {
		e.Metrics.ExternalRoutes.Add(1)
	}

	emit(sink, runID, StepAcquiringListings, "채용 공고 목록을 수집하는 중...")

	var jobs []saramin.PostingStub
	if route.IsExternal {
		jobs = e.externalListings(ctx, runID, route.ExternalURL, code, keywordJobs, sink)
	} else {
		jobs = e.aggregatorListings(ctx, code, keywordJobs, log)
	}
	if jobs == nil {
		jobs = []saramin.PostingStub{}
	}

	log.Info("search complete",
		slog.Bool("external", route.IsExternal), slog.Int("postings", len(jobs)))
	return &SearchResult{
		IsExternal:  route.IsExternal,
		ExternalURL: route.ExternalURL,
		Jobs:        jobs,
	}, nil
}

// aggregatorListings fetches the full filtered listing from the
// aggregator, preferring the company-code endpoint.
func (e *Engine) aggregatorListings(ctx context.Context, code string, keywordJobs []saramin.PostingStub, log *slog.Logger) []saramin.PostingStub {
	if code == "" {
		return keywordJobs
	}
	jobs, err := e.cfg.Saramin.CompanyPostings(ctx, code)
	if err != nil {
		log.Warn("aggregator listing failed", slog.Any("error", err))
		return nil
	}
	return jobs
}

// externalListings runs the listing fallback tiers for an external-site
// company: sitemap, then rendered listing page, then the aggregator as a
// last resort.
func (e *Engine) externalListings(ctx context.Context, runID, externalURL, code string, keywordJobs []saramin.PostingStub, sink Sink) []saramin.PostingStub {
	log := slog.With(slog.String("run", runID), slog.String("site", externalURL))

	strategies := []listingStrategy{
		{name: "sitemap", run: func(ctx context.Context) ([]saramin.PostingStub, error) {
			entries, err := e.cfg.Sitemap.Resolve(ctx, externalURL)
			if err != nil {
				return nil, err
			}
			stubs := make([]saramin.PostingStub, 0, len(entries))
			for _, entry := range entries {
				stubs = append(stubs, saramin.PostingStub{Title: entry.Title, Link: entry.URL})
			}
			if len(stubs) > 0 {
				e.Metrics.SitemapHits.Add(1)
			}
			return stubs, nil
		}},
		{name: "reader-listing", run: func(ctx context.Context) ([]saramin.PostingStub, error) {
			e.Metrics.ReaderFallbacks.Add(1)
			md, err := e.cfg.Reader.Render(ctx, externalURL, reader.Options{
				WaitForIdle: true,
				MaxAttempts: 1,
				Progress:    progressFunc(sink, runID, StepAcquiringListings),
			})
			if err != nil {
				return nil, err
			}
			var stubs []saramin.PostingStub
			for _, cand := range reader.ParseMarkdownLinks(md) {
				if !sitemap.IsPostingURL(cand.URL) {
					continue
				}
				title := strings.TrimSpace(cand.Label)
				if title == "" {
					title = sitemap.TitleFromURL(cand.URL)
				}
				stubs = append(stubs, saramin.PostingStub{Title: title, Link: cand.URL})
			}
			return stubs, nil
		}},
		{name: "aggregator", run: func(ctx context.Context) ([]saramin.PostingStub, error) {
			if code == "" {
				return keywordJobs, nil
			}
			return e.cfg.Saramin.CompanyPostings(ctx, code)
		}},
	}

	for _, st := range strategies {
		jobs, err := st.run(ctx)
		if err != nil {
			log.Warn("listing strategy failed", slog.String("strategy", st.name), slog.Any("error", err))
			continue
		}
		if len(jobs) > 0 {
			log.Info("listing strategy succeeded",
				slog.String("strategy", st.name), slog.Int("postings", len(jobs)))
			return jobs
		}
	}
	return nil
}

// PostingDetail acquires one posting's text, extracts skills constrained
// to the catalog vocabulary, and allocates courses. Skill extraction and
// matching degrade rather than fail; only a posting whose text cannot be
// acquired at all is an error.
func (e *Engine) PostingDetail(ctx context.Context, req DetailRequest, sink Sink) (*DetailResult, error) {
	e.Metrics.DetailRequests.Add(1)
	runID := uuid.NewString()
	log := slog.With(slog.String("run", runID), slog.String("link", req.Link))

	emit(sink, runID, StepAcquiringDetail, "공고 상세 내용을 가져오는 중...")

	text, err := e.acquireDetailText(ctx, runID, req, sink, log)
	if err != nil {
		return nil, err
	}

	emit(sink, runID, StepExtractingSkills, "요구 기술 스택을 분석하는 중...")

	pool := e.KeywordPool(ctx)
	if strings.TrimSpace(text) != "" {
		e.Metrics.LLMCalls.Add(1)
	}
	res := e.cfg.Extractor.Extract(ctx, text, pool)
	if res.Degraded && strings.TrimSpace(text) != "" {
		e.Metrics.LLMFailures.Add(1)
	}

	emit(sink, runID, StepMatchingCourses, "관련 강의를 매칭하는 중...")

	courses := e.matchCourses(ctx, res, log)

	return &DetailResult{
		Job: JobDetail{
			Skills:          res.Skills,
			PreferredSkills: res.PreferredSkills,
			Summary:         res.Summary,
			RawContent:      res.RawContent,
			IsExternal:      req.IsExternal,
			ExternalURL:     req.ExternalURL,
		},
		Courses: courses,
	}, nil
}

// acquireDetailText runs the detail strategies in order and returns the
// first non-empty posting text.
func (e *Engine) acquireDetailText(ctx context.Context, runID string, req DetailRequest, sink Sink, log *slog.Logger) (string, error) {
	strategies := []detailStrategy{
		{
			name: "aggregator-html",
			ok:   func(req DetailRequest) bool { return !req.IsExternal },
			run: func(ctx context.Context, req DetailRequest) (string, error) {
				html, err := e.cfg.Saramin.PostingHTML(ctx, req.Link)
				if err != nil {
					return "", err
				}
				return extract.HTMLToText(html), nil
			},
		},
		{
			name: "title-matched-external",
			ok: func(req DetailRequest) bool {
				return req.IsExternal && req.ExternalURL != "" && req.Title != ""
			},
			run: func(ctx context.Context, req DetailRequest) (string, error) {
				return e.titleMatchedDetail(ctx, runID, req, sink)
			},
		},
		{
			name: "direct-render",
			ok:   func(req DetailRequest) bool { return true },
			run: func(ctx context.Context, req DetailRequest) (string, error) {
				target := req.Link
				if !req.IsExternal {
					target = e.cfg.Saramin.DirectViewURL(req.Link)
				}
				md, err := e.cfg.Reader.Render(ctx, target, reader.Options{
					WaitForIdle: true,
					MaxAttempts: 3,
					Progress:    progressFunc(sink, runID, StepAcquiringDetail),
				})
				if err != nil {
					return "", err
				}
				return extract.CapText(md), nil
			},
		},
	}

	fetched := false
	for _, st := range strategies {
		if !st.ok(req) {
			continue
		}
		text, err := st.run(ctx, req)
		if err != nil {
			log.Warn("detail strategy failed", slog.String("strategy", st.name), slog.Any("error", err))
			continue
		}
		if strings.TrimSpace(text) != "" {
			log.Info("detail strategy succeeded", slog.String("strategy", st.name))
			return text, nil
		}
		// the fetch itself worked; keep trying for non-empty content but
		// remember that the posting was reachable
		fetched = true
	}
	if fetched {
		log.Info("posting reachable but reduced to empty text")
		return "", nil
	}
	return "", ErrDetailUnavailable
}

// titleMatchedDetail renders the external listing once, ranks its links
// against the posting title, and renders the best candidate's page. When
// no candidate scores above zero it falls back to a coarse job-path scan.
func (e *Engine) titleMatchedDetail(ctx context.Context, runID string, req DetailRequest, sink Sink) (string, error) {
	progress := progressFunc(sink, runID, StepAcquiringDetail)

	listing, err := e.cfg.Reader.Render(ctx, req.ExternalURL, reader.Options{
		WaitForIdle: true,
		MaxAttempts: 1,
		Progress:    progress,
	})
	if err != nil {
		return "", fmt.Errorf("render listing: %w", err)
	}

	candidates := reader.ParseMarkdownLinks(listing)
	labels := make([]string, len(candidates))
	for i, c := range candidates {
		labels[i] = c.Label
	}

	detailURL := ""
	if ranked := match.RankTitles(req.Title, labels); len(ranked) > 0 && ranked[0].Score > 0 {
		detailURL = candidates[ranked[0].Index].URL
	}
	if detailURL == "" {
		detailURL = reader.FindJobPathURL(listing)
	}
	if detailURL == "" {
		return "", fmt.Errorf("no candidate link for %q", req.Title)
	}

	md, err := e.cfg.Reader.Render(ctx, detailURL, reader.Options{
		WaitForIdle: true,
		MaxAttempts: 3,
		Progress:    progress,
	})
	if err != nil {
		return "", fmt.Errorf("render detail %s: %w", detailURL, err)
	}
	return extract.CapText(md), nil
}

// matchCourses allocates catalog courses to required then preferred skills
// against one shared used-set, then enriches metadata. Matching failures
// degrade to empty maps.
func (e *Engine) matchCourses(ctx context.Context, res extract.Result, log *slog.Logger) MatchedCourses {
	used := match.UsedSet{}

	required, err := e.matcher.Match(ctx, toMatchSkills(res.Skills), used)
	if err != nil {
		log.Warn("required course matching failed", slog.Any("error", err))
		required = emptyCourses(res.Skills)
	}
	preferred, err := e.matcher.Match(ctx, toMatchSkills(res.PreferredSkills), used)
	if err != nil {
		log.Warn("preferred course matching failed", slog.Any("error", err))
		preferred = emptyCourses(res.PreferredSkills)
	}

	matched := 0
	for _, courses := range required {
		matched += len(courses)
	}
	for _, courses := range preferred {
		matched += len(courses)
	}
	e.Metrics.CoursesMatched.Add(int64(matched))

	if e.cfg.Enricher != nil {
		enrichCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		for _, courses := range required {
			e.cfg.Enricher.Enrich(enrichCtx, courses)
		}
		for _, courses := range preferred {
			e.cfg.Enricher.Enrich(enrichCtx, courses)
		}
	}

	return MatchedCourses{Required: required, Preferred: preferred}
}

func toMatchSkills(items []extract.SkillItem) []match.Skill {
	out := make([]match.Skill, len(items))
	for i, it := range items {
		out[i] = match.Skill{Display: it.Display, Keyword: it.Keyword, Relevance: it.Relevance}
	}
	return out
}

func emptyCourses(items []extract.SkillItem) map[string][]catalog.CourseRecord {
	out := make(map[string][]catalog.CourseRecord, len(items))
	for _, it := range items {
		out[it.Display] = []catalog.CourseRecord{}
	}
	return out
}

// emit sends one progress event; a nil sink drops it.
func emit(sink Sink, runID string, step Step, message string) {
	if sink != nil {
		sink.Notify(Event{RunID: runID, Step: step, Message: message})
	}
}

// progressFunc adapts the sink to the reader's plain progress callback.
func progressFunc(sink Sink, runID string, step Step) func(string) {
	return func(message string) { emit(sink, runID, step, message) }
}
