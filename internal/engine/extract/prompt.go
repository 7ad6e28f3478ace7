package extract

import (
	"fmt"
	"strings"
)

const extractPromptBase = `You are a technical recruiter's assistant. Analyze the job posting below and extract the skill keywords a candidate must have (required) and the ones that are a plus (preferred).

Rules:
1. "display" is the human-readable skill label as commonly written (e.g. "Node.js", "AWS").
2. "keyword" is the canonical lookup form: lowercase, no whitespace, no periods (e.g. "nodejs", "aws").
3. "relevance" is an integer 0-100: how central the skill is to this specific role.
4. Deduplicate skills; do not list the same keyword twice.
5. Also write a 2-3 sentence Korean "summary" of the role.
%s
Return ONLY a JSON object with this exact structure, no markdown, no explanation:
{
  "skills": [{"display": "...", "keyword": "...", "relevance": 0}],
  "preferredSkills": [{"display": "...", "keyword": "...", "relevance": 0}],
  "summary": "..."
}

JOB POSTING:
%s`

const poolConstraint = `6. Every "keyword" MUST be chosen from this allowed vocabulary (skip skills that have no match in it):
%s
`

// buildPrompt assembles the extraction prompt, embedding the keyword pool
// constraint when a pool is supplied.
func buildPrompt(text string, pool []string) string {
	constraint := "\n"
	if len(pool) > 0 {
		constraint = "\n" + fmt.Sprintf(poolConstraint, strings.Join(pool, ", "))
	}
	return fmt.Sprintf(extractPromptBase, constraint, text)
}
