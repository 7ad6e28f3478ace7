package reader

import (
	"regexp"
	"strings"
)

// LinkCandidate is one (label, url) pair pulled from a rendered listing page.
type LinkCandidate struct {
	Label string
	URL   string
}

// bulletLinkRe matches markdown list items that carry a link:
//
//	- [Backend Engineer](https://example.com/jobs/backend-engineer)
//	* [Frontend Engineer](https://example.com/jobs/frontend-engineer)
var bulletLinkRe = regexp.MustCompile(`(?m)^\s*[-*+]\s*\[([^\]]+)\]\((https?://[^)\s]+)\)`)

// inlineLinkRe matches any markdown link, used when a listing renders links
// outside bullet lists (tables, bare paragraphs).
var inlineLinkRe = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^)\s]+)\)`)

// jobPathRe is the coarse fallback: any URL whose path carries a job-detail
// marker segment.
var jobPathRe = regexp.MustCompile(`https?://[^\s)\]"']+/(?:jobs?|positions?|careers?|recruit|openings?)/[^\s)\]"']+`)

// ParseMarkdownLinks extracts link candidates from rendered markdown in
// document order. Bullet-style links are preferred; when none exist, any
// markdown link is considered.
func ParseMarkdownLinks(markdown string) []LinkCandidate {
	matches := bulletLinkRe.FindAllStringSubmatch(markdown, -1)
	if len(matches) == 0 {
		matches = inlineLinkRe.FindAllStringSubmatch(markdown, -1)
	}

	seen := make(map[string]bool)
	var out []LinkCandidate
	for _, m := range matches {
		label := strings.TrimSpace(m[1])
		url := strings.TrimSpace(m[2])
		if label == "" || seen[url] {
			continue
		}
		seen[url] = true
		out = append(out, LinkCandidate{Label: label, URL: url})
	}
	return out
}

// FindJobPathURL scans markdown for the first URL containing a job-detail
// path marker. Used when no link candidate scores above zero.
func FindJobPathURL(markdown string) string {
	return jobPathRe.FindString(markdown)
}
