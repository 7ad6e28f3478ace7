// Package catalog is the course-catalog collaborator: a keyword-indexed,
// read-only lookup over the online course offerings that postings are
// matched against. Postgres backs production; SQLite backs local runs.
package catalog

import "context"

// CourseRecord is one catalogued course.
type CourseRecord struct {
	ID        int64    `json:"id"`
	Slug      string   `json:"slug"`
	Title     string   `json:"title"`
	URL       string   `json:"url"`
	Category  string   `json:"category"`
	Thumbnail string   `json:"thumbnail,omitempty"`
	Keywords  []string `json:"keywords"`
}

// Store is the read surface the pipeline depends on.
//
// FindCoursesByKeywords returns every course whose keyword set intersects
// the given keywords, ordered by match count descending, then title.
// KeywordPool returns the distinct keywords across all catalogued courses;
// it constrains LLM skill extraction so every extracted keyword is
// matchable.
type Store interface {
	FindCoursesByKeywords(ctx context.Context, keywords []string) ([]CourseRecord, error)
	KeywordPool(ctx context.Context) ([]string, error)
}
