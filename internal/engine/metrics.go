package engine

import "sync/atomic"

// Metrics tracks operational counters for one Engine instance.
type Metrics struct {
	SearchRequests  atomic.Int64
	DetailRequests  atomic.Int64
	CompanyNotFound atomic.Int64
	ExternalRoutes  atomic.Int64
	SitemapHits     atomic.Int64
	ReaderFallbacks atomic.Int64
	LLMCalls        atomic.Int64
	LLMFailures     atomic.Int64
	CoursesMatched  atomic.Int64
}

// Snapshot returns all counters as a map for the metrics endpoint.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"search_requests":   m.SearchRequests.Load(),
		"detail_requests":   m.DetailRequests.Load(),
		"company_not_found": m.CompanyNotFound.Load(),
		"external_routes":   m.ExternalRoutes.Load(),
		"sitemap_hits":      m.SitemapHits.Load(),
		"reader_fallbacks":  m.ReaderFallbacks.Load(),
		"llm_calls":         m.LLMCalls.Load(),
		"llm_failures":      m.LLMFailures.Load(),
		"courses_matched":   m.CoursesMatched.Load(),
	}
}
