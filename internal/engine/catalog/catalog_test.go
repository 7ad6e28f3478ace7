package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteFindCoursesByKeywords(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddCourse(ctx, CourseRecord{Slug: "go-basics", Title: "Go Basics", URL: "https://c/1", Keywords: []string{"go"}})
	require.NoError(t, err)
	_, err = s.AddCourse(ctx, CourseRecord{Slug: "backend-bootcamp", Title: "Backend Bootcamp", URL: "https://c/2", Keywords: []string{"go", "docker", "sql"}})
	require.NoError(t, err)
	_, err = s.AddCourse(ctx, CourseRecord{Slug: "figma-design", Title: "Figma Design", URL: "https://c/3", Keywords: []string{"figma"}})
	require.NoError(t, err)

	got, err := s.FindCoursesByKeywords(ctx, []string{"go", "docker"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	// two keyword matches beat one
	require.Equal(t, "backend-bootcamp", got[0].Slug)
	require.ElementsMatch(t, []string{"go", "docker", "sql"}, got[0].Keywords)
	require.Equal(t, "go-basics", got[1].Slug)
}

func TestSQLiteFindCoursesOrderTieBrokenByTitle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddCourse(ctx, CourseRecord{Slug: "b", Title: "Zebra Go", URL: "u", Keywords: []string{"go"}})
	require.NoError(t, err)
	_, err = s.AddCourse(ctx, CourseRecord{Slug: "a", Title: "Alpha Go", URL: "u", Keywords: []string{"go"}})
	require.NoError(t, err)

	got, err := s.FindCoursesByKeywords(ctx, []string{"go"})
	require.NoError(t, err)
	require.Equal(t, []string{"Alpha Go", "Zebra Go"}, []string{got[0].Title, got[1].Title})
}

func TestSQLiteKeywordPool(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddCourse(ctx, CourseRecord{Slug: "x", Title: "X", URL: "u", Keywords: []string{"Go", "docker"}})
	require.NoError(t, err)
	_, err = s.AddCourse(ctx, CourseRecord{Slug: "y", Title: "Y", URL: "u", Keywords: []string{"go", "sql"}})
	require.NoError(t, err)

	pool, err := s.KeywordPool(ctx)
	require.NoError(t, err)
	// keywords are normalized lowercase at insert time, so "Go" and "go" collapse
	require.Equal(t, []string{"docker", "go", "sql"}, pool)
}

func TestSQLiteEmptyKeywords(t *testing.T) {
	s := newTestStore(t)
	got, err := s.FindCoursesByKeywords(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestMetaCacheSetGet(t *testing.T) {
	c := NewMetaCache("", time.Minute, 100, time.Minute)
	defer c.Stop()
	ctx := context.Background()

	_, ok := c.Get(ctx, "go-basics")
	require.False(t, ok)

	c.Set(ctx, "go-basics", CourseMeta{Title: "Go Basics", Thumbnail: "https://img/1.png"})
	m, ok := c.Get(ctx, "go-basics")
	require.True(t, ok)
	require.Equal(t, "Go Basics", m.Title)
}

func TestMetaCacheExpiry(t *testing.T) {
	c := NewMetaCache("", 10*time.Millisecond, 100, time.Minute)
	defer c.Stop()
	ctx := context.Background()

	c.Set(ctx, "s", CourseMeta{Title: "T"})
	time.Sleep(20 * time.Millisecond)
	_, ok := c.Get(ctx, "s")
	require.False(t, ok)
}

func TestMetaCacheEviction(t *testing.T) {
	c := NewMetaCache("", time.Minute, 3, time.Minute)
	defer c.Stop()
	ctx := context.Background()

	for _, slug := range []string{"a", "b", "c", "d", "e"} {
		c.Set(ctx, slug, CourseMeta{Title: slug})
		time.Sleep(time.Millisecond) // distinct expiry ordering
	}

	count := 0
	c.l1.Range(func(_, _ any) bool {
		count++
		return true
	})
	require.LessOrEqual(t, count, 3)

	// the most recent entry survives
	_, ok := c.Get(ctx, "e")
	require.True(t, ok)
}

func TestParseOpenGraph(t *testing.T) {
	html := `<html><head>
<meta property="og:title" content="Go Bootcamp">
<meta property="og:image" content="https://img.example.com/go.png">
</head><body></body></html>`
	m, ok := parseOpenGraph(html)
	require.True(t, ok)
	require.Equal(t, "Go Bootcamp", m.Title)
	require.Equal(t, "https://img.example.com/go.png", m.Thumbnail)

	_, ok = parseOpenGraph("<html><head></head><body></body></html>")
	require.False(t, ok)
}
