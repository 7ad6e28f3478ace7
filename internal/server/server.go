// Package server exposes the discovery pipeline over HTTP with SSE
// progress streaming.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/daylab/jobscout/internal/engine"
)

// Pipeline is the engine surface the handlers need.
type Pipeline interface {
	SearchCompany(ctx context.Context, name string, sink engine.Sink) (*engine.SearchResult, error)
	PostingDetail(ctx context.Context, req engine.DetailRequest, sink engine.Sink) (*engine.DetailResult, error)
}

// Server wires the HTTP routes to the pipeline.
type Server struct {
	pipeline Pipeline
	metrics  *engine.Metrics
	router   *gin.Engine
}

// New builds the router. Pass nil metrics to disable the metrics endpoint's
// counters (it then serves an empty snapshot).
func New(pipeline Pipeline, metrics *engine.Metrics) *Server {
	s := &Server{pipeline: pipeline, metrics: metrics}

	router := gin.New()
	router.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", s.healthz)
	api := router.Group("/api")
	{
		api.GET("/company-search", s.companySearch)
		api.GET("/posting-detail", s.postingDetail)
		api.GET("/metrics", s.metricsSnapshot)
	}

	s.router = router
	return s
}

// Handler exposes the router for tests and custom http.Server setups.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	slog.Info("http server starting", slog.String("addr", addr))
	return s.router.Run(addr)
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) metricsSnapshot(c *gin.Context) {
	if s.metrics == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, s.metrics.Snapshot())
}
