package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteStore backs local runs and tests with a file (or in-memory)
// catalog. Same read contract as PGStore.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed initializes) a SQLite catalog.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("catalog: sqlite open: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	const schema = `
CREATE TABLE IF NOT EXISTS courses (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	slug      TEXT NOT NULL UNIQUE,
	title     TEXT NOT NULL,
	url       TEXT NOT NULL,
	category  TEXT NOT NULL DEFAULT '',
	thumbnail TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS course_keywords (
	course_id INTEGER NOT NULL REFERENCES courses(id),
	keyword   TEXT NOT NULL,
	PRIMARY KEY (course_id, keyword)
);
CREATE INDEX IF NOT EXISTS idx_course_keywords_keyword ON course_keywords(keyword);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("catalog: sqlite schema: %w", err)
	}
	return nil
}

// Close closes the underlying handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// AddCourse inserts one course with its keywords. Used by local seeding
// and tests; the production catalog is maintained elsewhere.
func (s *SQLiteStore) AddCourse(ctx context.Context, c CourseRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO courses(slug, title, url, category, thumbnail) VALUES(?, ?, ?, ?, ?)`,
		c.Slug, c.Title, c.URL, c.Category, c.Thumbnail)
	if err != nil {
		return 0, fmt.Errorf("catalog: insert course: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, kw := range c.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO course_keywords(course_id, keyword) VALUES(?, ?)`, id, kw); err != nil {
			return 0, fmt.Errorf("catalog: insert keyword: %w", err)
		}
	}
	return id, nil
}

// FindCoursesByKeywords returns courses whose keyword set intersects the
// given keywords, ordered by match count descending then title.
func (s *SQLiteStore) FindCoursesByKeywords(ctx context.Context, keywords []string) ([]CourseRecord, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keywords)), ",")
	args := make([]any, len(keywords))
	for i, k := range keywords {
		args[i] = strings.ToLower(k)
	}

	q := fmt.Sprintf(`
SELECT c.id, c.slug, c.title, c.url, c.category, c.thumbnail,
       (SELECT GROUP_CONCAT(k2.keyword, ',') FROM course_keywords k2 WHERE k2.course_id = c.id) AS all_keywords,
       COUNT(k.keyword) AS matches
FROM courses c
JOIN course_keywords k ON k.course_id = c.id
WHERE k.keyword IN (%s)
GROUP BY c.id
ORDER BY matches DESC, c.title ASC`, placeholders)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: keyword query: %w", err)
	}
	defer rows.Close()

	var out []CourseRecord
	for rows.Next() {
		var c CourseRecord
		var joined sql.NullString
		var matches int
		if err := rows.Scan(&c.ID, &c.Slug, &c.Title, &c.URL, &c.Category, &c.Thumbnail, &joined, &matches); err != nil {
			return nil, fmt.Errorf("catalog: scan course: %w", err)
		}
		if joined.Valid && joined.String != "" {
			c.Keywords = strings.Split(joined.String, ",")
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// KeywordPool returns the distinct keywords across all catalogued courses.
func (s *SQLiteStore) KeywordPool(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT keyword FROM course_keywords ORDER BY keyword`)
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
