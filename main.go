// jobscout — Korean job-posting discovery and course-matching service.
//
// Resolves a company on the aggregator, detects whether it hires on its
// own career site, acquires its posting list through sitemap / render
// proxy / aggregator fallbacks, extracts skills with an LLM constrained
// to the course-catalog vocabulary, and recommends courses without
// duplicates. Serves an HTTP API with SSE progress streaming.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/daylab/jobscout/internal/engine"
	"github.com/daylab/jobscout/internal/engine/catalog"
	"github.com/daylab/jobscout/internal/engine/extract"
	"github.com/daylab/jobscout/internal/engine/fetch"
	"github.com/daylab/jobscout/internal/engine/reader"
	"github.com/daylab/jobscout/internal/engine/saramin"
	"github.com/daylab/jobscout/internal/engine/sitemap"
	"github.com/daylab/jobscout/internal/server"
)

var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file, using process environment")
	}

	slog.Info("starting jobscout", slog.String("version", version))

	eng, cleanup, err := buildEngine()
	if err != nil {
		slog.Error("engine init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer cleanup()

	startPoolRefresh(eng)

	srv := server.New(eng, &eng.Metrics)
	if err := srv.Run(":" + env.Str("PORT", "8890")); err != nil {
		slog.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func buildEngine() (*engine.Engine, func(), error) {
	browser, err := fetch.NewBrowserClient(env.Int("BROWSER_TIMEOUT_SECONDS", 15))
	if err != nil {
		return nil, nil, err
	}

	sarClient := saramin.NewClient(browser)
	if base := env.Str("SARAMIN_BASE_URL", ""); base != "" {
		sarClient.BaseURL = base
	}

	store, closeStore, err := openCatalog()
	if err != nil {
		return nil, nil, err
	}

	metaCache := catalog.NewMetaCache(
		env.Str("REDIS_URL", ""),
		env.Duration("META_CACHE_TTL", 6*time.Hour),
		env.Int("META_CACHE_MAX_ENTRIES", 1000),
		env.Duration("META_CACHE_CLEANUP_INTERVAL", 300*time.Second),
	)

	llmClient, err := openai.New(
		openai.WithToken(env.Str("LLM_API_KEY", "")),
		openai.WithModel(env.Str("LLM_MODEL", "gpt-4o-mini")),
		openai.WithBaseURL(env.Str("LLM_API_BASE", "https://api.openai.com/v1")),
	)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	httpClient := fetch.NewClient(env.Duration("FETCH_TIMEOUT", 10*time.Second))

	eng := engine.New(engine.Config{
		Saramin: sarClient,
		Sitemap: &sitemap.Resolver{Client: httpClient},
		Reader: &reader.Client{
			BaseURL:    env.Str("READER_BASE_URL", "https://r.jina.ai/"),
			APIKey:     env.Str("READER_API_KEY", ""),
			HTTPClient: fetch.NewClient(env.Duration("READER_TIMEOUT", 60*time.Second)),
		},
		Extractor: &extract.Extractor{
			Model:       llmClient,
			Temperature: env.Float("LLM_TEMPERATURE", 0.1),
		},
		Catalog:        store,
		Enricher:       &catalog.Enricher{Client: httpClient, Cache: metaCache},
		KeywordPoolTTL: env.Duration("KEYWORD_POOL_TTL", 10*time.Minute),
	})

	cleanup := func() {
		metaCache.Stop()
		closeStore()
	}
	return eng, cleanup, nil
}

// openCatalog prefers Postgres; a SQLite file serves local runs.
func openCatalog() (catalog.Store, func(), error) {
	if dsn := env.Str("DATABASE_URL", ""); dsn != "" {
		pg, err := catalog.NewPGStore(context.Background(), dsn)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("course catalog: postgres")
		return pg, pg.Close, nil
	}

	path := env.Str("SQLITE_PATH", "jobscout.db")
	sq, err := catalog.NewSQLiteStore(path)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("course catalog: sqlite", slog.String("path", path))
	return sq, func() { _ = sq.Close() }, nil
}

// startPoolRefresh warms the keyword pool and keeps it fresh on a
// schedule, so interactive requests rarely pay for the catalog query.
func startPoolRefresh(eng *engine.Engine) {
	if err := eng.RefreshKeywordPool(context.Background()); err != nil {
		slog.Warn("initial keyword pool load failed", slog.Any("error", err))
	}

	c := cron.New()
	spec := env.Str("KEYWORD_POOL_CRON", "@every 10m")
	if _, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := eng.RefreshKeywordPool(ctx); err != nil {
			slog.Warn("keyword pool refresh failed", slog.Any("error", err))
		}
	}); err != nil {
		slog.Warn("keyword pool cron not scheduled", slog.Any("error", err))
		return
	}
	c.Start()
}
