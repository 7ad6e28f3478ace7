package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore reads the course catalog from Postgres. Keywords are stored
// normalized (lowercase, no whitespace/periods) at index time, so lookups
// are exact matches.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore connects a pgx pool and verifies it with a ping.
func NewPGStore(ctx context.Context, dsn string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("catalog: pg connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("catalog: pg ping: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

// Close releases the pool.
func (s *PGStore) Close() {
	s.pool.Close()
}

// FindCoursesByKeywords returns courses whose keyword set intersects the
// given keywords, ordered by match count descending then title.
func (s *PGStore) FindCoursesByKeywords(ctx context.Context, keywords []string) ([]CourseRecord, error) {
	if len(keywords) == 0 {
		return nil, nil
	}
	lowered := make([]string, len(keywords))
	for i, k := range keywords {
		lowered[i] = strings.ToLower(k)
	}

	const q = `
SELECT c.id, c.slug, c.title, c.url, c.category, COALESCE(c.thumbnail, ''), c.keywords,
       (SELECT count(*) FROM unnest(c.keywords) AS k WHERE k = ANY($1)) AS matches
FROM courses c
WHERE c.keywords && $1
ORDER BY matches DESC, c.title ASC`

	rows, err := s.pool.Query(ctx, q, lowered)
	if err != nil {
		return nil, fmt.Errorf("catalog: keyword query: %w", err)
	}
	defer rows.Close()

	var out []CourseRecord
	for rows.Next() {
		var c CourseRecord
		var matches int
		if err := rows.Scan(&c.ID, &c.Slug, &c.Title, &c.URL, &c.Category, &c.Thumbnail, &c.Keywords, &matches); err != nil {
			return nil, fmt.Errorf("catalog: scan course: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// KeywordPool returns the distinct keywords across all catalogued courses.
func (s *PGStore) KeywordPool(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT unnest(keywords) FROM courses ORDER BY 1`)
	if err != nil {
		return nil, fmt.Errorf("catalog: keyword pool: %w", err)
	}
	defer rows.Close()

	var pool []string
	for rows.Next() {
		var kw string
		if err := rows.Scan(&kw); err != nil {
			return nil, fmt.Errorf("catalog: scan keyword: %w", err)
		}
		pool = append(pool, kw)
	}
	return pool, rows.Err()
}
