// Package types provides type definitions for structured data used throughout the job-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// RequirementCategory distinguishes hard requirements from nice-to-haves.
type RequirementCategory string

// Requirement categories as extracted by the JD parser.
const (
	CategoryRequired  RequirementCategory = "required"
	CategoryPreferred RequirementCategory = "preferred"
)

// JobRequirement represents a single requirement extracted from a job posting
type JobRequirement struct {
	ID       string              `json:"id"`
	Text     string              `json:"text"`
	Category RequirementCategory `json:"category"`
	Keywords []string            `json:"keywords"`
	Skills   []string            `json:"skills,omitempty"`
}

// ParsedJob represents a structured job posting extracted from raw text
type ParsedJob struct {
	Company          string           `json:"company"`
	RoleTitle        string           `json:"role_title"`
	Location         string           `json:"location,omitempty"`
	Responsibilities []string         `json:"responsibilities,omitempty"`
	Requirements     []JobRequirement `json:"requirements"`
	Keywords         []string         `json:"keywords,omitempty"`
}

// RequiredOnly returns the subset of requirements in the required category.
func (j *ParsedJob) RequiredOnly() []JobRequirement {
	var out []JobRequirement
	for _, r := range j.Requirements {
		if r.Category == CategoryRequired {
			out = append(out, r)
		}
	}
	return out
}
