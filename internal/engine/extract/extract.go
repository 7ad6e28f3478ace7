// Package extract turns job-posting free text into ranked skill keywords
// via an LLM, constrained to the course catalog's keyword vocabulary so
// downstream course matching never sees an unmatchable keyword.
package extract

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// SkillItem is one extracted skill keyword.
type SkillItem struct {
	Display   string `json:"display"`
	Keyword   string `json:"keyword"`
	Relevance int    `json:"relevance"`
}

// Result is the extractor output. On any LLM or parse failure both skill
// lists are empty and RawContent carries the input text, so a posting
// degrades to "no skills found" instead of failing.
type Result struct {
	Skills          []SkillItem `json:"skills"`
	PreferredSkills []SkillItem `json:"preferredSkills"`
	Summary         string      `json:"summary,omitempty"`
	RawContent      string      `json:"rawContent,omitempty"`
	Degraded        bool        `json:"-"`
}

// minRelevance drops skills the model itself considers marginal.
const minRelevance = 50

// Extractor calls the model and repairs its output defensively.
type Extractor struct {
	Model       llms.Model
	Temperature float64
}

// llmOutput is the JSON shape requested from the model. Skill entries may
// come back as plain strings from less compliant models; rawSkill absorbs
// both forms.
type llmOutput struct {
	Skills          []rawSkill `json:"skills"`
	PreferredSkills []rawSkill `json:"preferredSkills"`
	Summary         string     `json:"summary"`
}

type rawSkill struct {
	Display   string
	Keyword   string
	Relevance int
	legacy    bool
}

func (r *rawSkill) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.Display = s
		r.legacy = true
		return nil
	}
	var obj struct {
		Display   string `json:"display"`
		Keyword   string `json:"keyword"`
		Relevance int    `json:"relevance"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	r.Display, r.Keyword, r.Relevance = obj.Display, obj.Keyword, obj.Relevance
	return nil
}

// Extract runs the model over posting text. pool, when non-empty,
// constrains the output vocabulary. Never returns an error: failures
// degrade to an empty Result carrying text as RawContent.
func (e *Extractor) Extract(ctx context.Context, text string, pool []string) Result {
	fallback := Result{Skills: []SkillItem{}, PreferredSkills: []SkillItem{}, RawContent: text, Degraded: true}
	if strings.TrimSpace(text) == "" {
		return fallback
	}

	prompt := buildPrompt(text, pool)
	raw, err := llms.GenerateFromSinglePrompt(ctx, e.Model, prompt,
		llms.WithTemperature(e.Temperature),
		llms.WithJSONMode(),
	)
	if err != nil {
		slog.Warn("extract: LLM call failed", slog.Any("error", err))
		return fallback
	}

	var out llmOutput
	if err := json.Unmarshal([]byte(stripFences(raw)), &out); err != nil {
		slog.Warn("extract: parse failed", slog.Any("error", err))
		return fallback
	}

	poolSet := make(map[string]bool, len(pool))
	for _, kw := range pool {
		poolSet[NormalizeKeyword(kw)] = true
	}

	return Result{
		Skills:          postprocess(out.Skills, poolSet),
		PreferredSkills: postprocess(out.PreferredSkills, poolSet),
		Summary:         strings.TrimSpace(out.Summary),
		RawContent:      text,
	}
}

// postprocess is applied uniformly regardless of model compliance: coerce
// legacy string entries, derive missing keywords, drop low-relevance items,
// drop keywords outside the pool, sort by relevance descending (stable).
func postprocess(items []rawSkill, pool map[string]bool) []SkillItem {
	out := []SkillItem{}
	for _, it := range items {
		display := strings.TrimSpace(it.Display)
		if display == "" {
			continue
		}
		keyword := NormalizeKeyword(it.Keyword)
		if keyword == "" {
			keyword = NormalizeKeyword(display)
		}
		relevance := it.Relevance
		if it.legacy {
			relevance = 50
		}
		if relevance < minRelevance {
			continue
		}
		if len(pool) > 0 && !pool[keyword] {
			continue
		}
		out = append(out, SkillItem{Display: display, Keyword: keyword, Relevance: relevance})
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Relevance > out[b].Relevance
	})
	return out
}

// NormalizeKeyword lowercases and strips whitespace and periods, matching
// how catalog keywords are normalized at index time.
func NormalizeKeyword(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, ".", "")
	return strings.Join(strings.Fields(s), "")
}

// stripFences removes markdown code fences from LLM output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
