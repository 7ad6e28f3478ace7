// Package engine orchestrates the discovery pipeline: company resolution
// on the aggregator, external-site detection, multi-strategy listing and
// detail acquisition, LLM skill extraction and course matching.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/daylab/jobscout/internal/engine/catalog"
	"github.com/daylab/jobscout/internal/engine/extract"
	"github.com/daylab/jobscout/internal/engine/match"
	"github.com/daylab/jobscout/internal/engine/reader"
	"github.com/daylab/jobscout/internal/engine/saramin"
	"github.com/daylab/jobscout/internal/engine/sitemap"
)

// Aggregator is the surface of the job-board client the pipeline needs.
// Satisfied by *saramin.Client.
type Aggregator interface {
	ResolveCompanyCode(ctx context.Context, name string) (string, error)
	KeywordPostings(ctx context.Context, name string) ([]saramin.PostingStub, error)
	CompanyPostings(ctx context.Context, code string) ([]saramin.PostingStub, error)
	PostingsPage(ctx context.Context, code string, page int) ([]saramin.PostingStub, error)
	DetectExternalSite(ctx context.Context, link string) (saramin.RouteDecision, error)
	PostingHTML(ctx context.Context, link string) (string, error)
	DirectViewURL(link string) string
}

// Renderer renders script-driven pages to markdown. Satisfied by
// *reader.Client.
type Renderer interface {
	Render(ctx context.Context, targetURL string, opts reader.Options) (string, error)
}

// SitemapResolver probes an external site for posting URLs. Satisfied by
// *sitemap.Resolver.
type SitemapResolver interface {
	Resolve(ctx context.Context, baseURL string) ([]sitemap.Entry, error)
}

// SkillExtractor turns posting text into ranked skills. Satisfied by
// *extract.Extractor.
type SkillExtractor interface {
	Extract(ctx context.Context, text string, pool []string) extract.Result
}

// Config wires the engine's collaborators. Everything is injected; the
// engine owns no process-wide state.
type Config struct {
	Saramin   Aggregator
	Sitemap   SitemapResolver
	Reader    Renderer
	Extractor SkillExtractor
	Catalog   catalog.Store
	Enricher  *catalog.Enricher // nil disables metadata enrichment

	// KeywordPoolTTL bounds staleness of the cached catalog vocabulary.
	KeywordPoolTTL time.Duration
}

// Engine runs pipeline requests. Safe for concurrent use; per-request
// state lives on the stack.
type Engine struct {
	cfg     Config
	matcher *match.CourseMatcher
	Metrics Metrics

	poolMu sync.RWMutex
	pool   []string
	poolAt time.Time
}

// New builds an Engine from injected collaborators.
func New(cfg Config) *Engine {
	if cfg.KeywordPoolTTL <= 0 {
		cfg.KeywordPoolTTL = 10 * time.Minute
	}
	return &Engine{
		cfg:     cfg,
		matcher: &match.CourseMatcher{Catalog: cfg.Catalog},
	}
}

// KeywordPool returns the catalog vocabulary, cached for KeywordPoolTTL.
// A lookup failure returns the stale pool (or nil): extraction still works,
// just unconstrained.
func (e *Engine) KeywordPool(ctx context.Context) []string {
	e.poolMu.RLock()
	fresh := time.Since(e.poolAt) < e.cfg.KeywordPoolTTL && e.pool != nil
	pool := e.pool
	e.poolMu.RUnlock()
	if fresh {
		return pool
	}

	if err := e.RefreshKeywordPool(ctx); err != nil {
		slog.Warn("engine: keyword pool refresh failed, using stale pool", slog.Any("error", err))
		return pool
	}

	e.poolMu.RLock()
	defer e.poolMu.RUnlock()
	return e.pool
}

// RefreshKeywordPool fetches the vocabulary from the catalog. Also invoked
// on a schedule so interactive requests rarely pay for the fetch.
func (e *Engine) RefreshKeywordPool(ctx context.Context) error {
	pool, err := e.cfg.Catalog.KeywordPool(ctx)
	if err != nil {
		return err
	}
	e.poolMu.Lock()
	e.pool = pool
	e.poolAt = time.Now()
	e.poolMu.Unlock()
	slog.Debug("engine: keyword pool refreshed", slog.Int("keywords", len(pool)))
	return nil
}
