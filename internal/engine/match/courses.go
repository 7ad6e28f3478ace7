package match

import (
	"context"
	"fmt"
	"strings"

	"github.com/daylab/jobscout/internal/engine/catalog"
)

// Skill is one extracted skill keyword, already relevance-ranked.
type Skill struct {
	Display   string
	Keyword   string
	Relevance int
}

// MaxCoursesPerSkill caps each skill's recommendation list.
const MaxCoursesPerSkill = 5

// CourseMatcher allocates catalog courses to skills without duplication.
type CourseMatcher struct {
	Catalog catalog.Store
}

// UsedSet tracks course ids already allocated within one matching pass.
// Run required skills first, then preferred skills against the same set, so
// a course recommended for a required skill never reappears under a
// preferred one.
type UsedSet map[int64]bool

// Match allocates up to MaxCoursesPerSkill courses to each skill:
//
//  1. One bulk catalog lookup over the union of all skill keywords.
//  2. Each returned course is owned by the single most relevant skill whose
//     keyword appears in the course's keyword list (case-insensitive exact
//     match), so a course is never fragmented across several skills.
//  3. Skills consume their owned courses in input order, skipping ids in
//     used and marking what they take.
//
// Every input skill is present in the result, with an empty list when it
// owns no unused course. Duplicate keywords keep the first occurrence's
// ranking.
func (m *CourseMatcher) Match(ctx context.Context, skills []Skill, used UsedSet) (map[string][]catalog.CourseRecord, error) {
	result := make(map[string][]catalog.CourseRecord, len(skills))
	for _, s := range skills {
		result[s.Display] = []catalog.CourseRecord{}
	}
	if len(skills) == 0 {
		return result, nil
	}

	// first occurrence wins on duplicate keywords
	byKeyword := make(map[string]Skill, len(skills))
	var union []string
	for _, s := range skills {
		kw := strings.ToLower(s.Keyword)
		if _, ok := byKeyword[kw]; ok {
			continue
		}
		byKeyword[kw] = s
		union = append(union, kw)
	}

	courses, err := m.Catalog.FindCoursesByKeywords(ctx, union)
	if err != nil {
		return nil, fmt.Errorf("course lookup: %w", err)
	}

	// owner skill per course: highest relevance among matching skills
	owned := make(map[string][]catalog.CourseRecord)
	for _, c := range courses {
		var owner Skill
		found := false
		for _, ck := range c.Keywords {
			s, ok := byKeyword[strings.ToLower(ck)]
			if !ok {
				continue
			}
			if !found || s.Relevance > owner.Relevance {
				owner = s
				found = true
			}
		}
		if found {
			owned[strings.ToLower(owner.Keyword)] = append(owned[strings.ToLower(owner.Keyword)], c)
		}
	}

	for _, s := range skills {
		kw := strings.ToLower(s.Keyword)
		if byKeyword[kw].Display != s.Display {
			continue // duplicate keyword, first occurrence already handled
		}
		var picked []catalog.CourseRecord
		for _, c := range owned[kw] {
			if used[c.ID] {
				continue
			}
			picked = append(picked, c)
			used[c.ID] = true
			if len(picked) == MaxCoursesPerSkill {
				break
			}
		}
		if picked != nil {
			result[s.Display] = picked
		}
	}

	return result, nil
}
