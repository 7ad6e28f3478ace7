package match

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTitleScoreExactMatch(t *testing.T) {
	for _, s := range []string{"Backend Engineer", "백엔드 엔지니어", "Data Engineer (ML Platform)"} {
		require.Equal(t, 1.0, TitleScore(s, s), "score(x, x) must be 1.0 for %q", s)
	}
}

func TestTitleScoreEmptyNormalization(t *testing.T) {
	// titles that normalize to nothing still match themselves exactly
	for _, s := range []string{"(주)", "!!!", "(신입)"} {
		require.Equal(t, 1.0, TitleScore(s, s), "score(x, x) must be 1.0 for %q", s)
	}
	require.Equal(t, 0.0, TitleScore("(주)", "!!!"))
	require.Equal(t, 0.0, TitleScore("", ""))
	require.Equal(t, 0.0, TitleScore("(주)", "백엔드 엔지니어"))
}

func TestTitleScoreNormalization(t *testing.T) {
	// parenthetical content and punctuation are stripped before comparison
	require.Equal(t, 1.0, TitleScore("Backend Engineer (Platform)", "backend engineer!"))
	require.Equal(t, 1.0, TitleScore("백엔드 엔지니어", "백엔드 엔지니어 (신입)"))
}

func TestTitleScoreHardTokenFilter(t *testing.T) {
	// "ios" never overlaps any candidate token, so the score must be 0
	require.Equal(t, 0.0, TitleScore("iOS Engineer", "Backend Engineer"))
	require.Equal(t, 0.0, TitleScore("Data Scientist", "Frontend Developer"))
}

func TestTitleScoreWordCountPenalty(t *testing.T) {
	tests := []struct {
		search, candidate string
		want              float64
	}{
		// all tokens overlap, one extra word
		{"backend engineer", "senior backend engineer", 0.9 - 0.15},
		// two extra words
		{"backend engineer", "senior staff backend engineer", 0.9 - 0.3},
	}
	for _, tt := range tests {
		require.InDelta(t, tt.want, TitleScore(tt.search, tt.candidate), 1e-9,
			"score(%q, %q)", tt.search, tt.candidate)
	}
}

func TestTitleScoreFloor(t *testing.T) {
	// huge word-count difference still floors at 0.1
	got := TitleScore("engineer", "engineer of many various exciting platform teams here")
	require.InDelta(t, 0.1, got, 1e-9)
}

func TestRankTitlesOrderAndTies(t *testing.T) {
	candidates := []string{
		"iOS Engineer",              // 0 — filtered out
		"Senior Backend Engineer",   // 0.75
		"Backend Engineer",          // 1.0
		"Backend Engineer (Remote)", // 1.0 — tie, later document order
	}
	ranked := RankTitles("Backend Engineer", candidates)
	require.Len(t, ranked, 3)
	require.Equal(t, 2, ranked[0].Index)
	require.Equal(t, 3, ranked[1].Index)
	require.Equal(t, 1, ranked[2].Index)
}
