package engine

import (
	"github.com/daylab/jobscout/internal/engine/catalog"
	"github.com/daylab/jobscout/internal/engine/extract"
	"github.com/daylab/jobscout/internal/engine/saramin"
)

// SearchResult is the terminal payload of a company search run.
type SearchResult struct {
	IsExternal  bool                  `json:"isExternal"`
	ExternalURL string                `json:"externalUrl,omitempty"`
	Jobs        []saramin.PostingStub `json:"jobs"`
}

// DetailRequest identifies one posting for detail resolution. Link is the
// aggregator detail link; Title and ExternalURL come from the preceding
// search run when the company hires on its own site.
type DetailRequest struct {
	Link        string
	Title       string
	IsExternal  bool
	ExternalURL string
}

// JobDetail is the extracted content of one posting.
type JobDetail struct {
	Skills          []extract.SkillItem `json:"skills"`
	PreferredSkills []extract.SkillItem `json:"preferredSkills"`
	Summary         string              `json:"summary,omitempty"`
	RawContent      string              `json:"rawContent,omitempty"`
	IsExternal      bool                `json:"isExternal"`
	ExternalURL     string              `json:"externalUrl,omitempty"`
}

// MatchedCourses maps skill display names to recommended courses, split
// by requirement class. A skill with no courses maps to an empty list.
type MatchedCourses struct {
	Required  map[string][]catalog.CourseRecord `json:"required"`
	Preferred map[string][]catalog.CourseRecord `json:"preferred"`
}

// DetailResult is the terminal payload of a posting detail run.
type DetailResult struct {
	Job     JobDetail      `json:"jobDetail"`
	Courses MatchedCourses `json:"matchedCourses"`
}
