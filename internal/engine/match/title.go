// Package match holds the pure ranking logic of the pipeline: title
// similarity scoring for external detail-page resolution, and the
// duplicate-free allocation of catalog courses to extracted skills.
package match

import (
	"regexp"
	"sort"
	"strings"
)

var (
	parenRe    = regexp.MustCompile(`\([^)]*\)`)
	nonWordRe  = regexp.MustCompile(`[^\w\s가-힣]`)
	multiSpace = regexp.MustCompile(`\s+`)
)

// normalizeTitle lowercases, strips parenthetical content and keeps only
// word characters, whitespace and Hangul.
func normalizeTitle(s string) string {
	s = strings.ToLower(s)
	s = parenRe.ReplaceAllString(s, "")
	s = nonWordRe.ReplaceAllString(s, "")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// TitleScore rates how likely candidate names the same posting as search.
//
// Exact match after normalization scores 1.0. Otherwise every search token
// (length > 1) must substring-overlap at least one candidate token or the
// score is 0 — a hard filter, not a soft weighting. Surviving candidates
// score 0.9 minus 0.15 per word-count difference, floored at 0.1: a true
// match rarely adds or drops many words.
func TitleScore(search, candidate string) float64 {
	ns := normalizeTitle(search)
	nc := normalizeTitle(candidate)
	if ns == "" || nc == "" {
		// titles made entirely of stripped characters still score as an
		// exact match against themselves
		if strings.TrimSpace(search) != "" && search == candidate {
			return 1.0
		}
		return 0
	}
	if ns == nc {
		return 1.0
	}

	searchTokens := tokens(ns)
	candTokens := tokens(nc)
	if len(searchTokens) == 0 || len(candTokens) == 0 {
		return 0
	}

	for _, st := range searchTokens {
		if !overlapsAny(st, candTokens) {
			return 0
		}
	}

	diff := len(searchTokens) - len(candTokens)
	if diff < 0 {
		diff = -diff
	}
	score := 0.9 - 0.15*float64(diff)
	if score < 0.1 {
		score = 0.1
	}
	return score
}

func tokens(s string) []string {
	var out []string
	for _, w := range strings.Fields(s) {
		if len([]rune(w)) > 1 {
			out = append(out, w)
		}
	}
	return out
}

func overlapsAny(tok string, candidates []string) bool {
	for _, c := range candidates {
		if strings.Contains(c, tok) || strings.Contains(tok, c) {
			return true
		}
	}
	return false
}

// Ranked pairs a candidate index with its score.
type Ranked struct {
	Index int
	Score float64
}

// RankTitles scores every candidate against search and returns candidates
// with score > 0, ordered by score descending; ties keep document order.
func RankTitles(search string, candidates []string) []Ranked {
	var ranked []Ranked
	for i, c := range candidates {
		if s := TitleScore(search, c); s > 0 {
			ranked = append(ranked, Ranked{Index: i, Score: s})
		}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score > ranked[b].Score
	})
	return ranked
}
