//nolint:revive // types is a standard Go package name pattern
package types

// CompanyProfile summarizes company research for downstream writing stages
type CompanyProfile struct {
	Company  string   `json:"company"`
	Summary  string   `json:"summary"`
	Values   []string `json:"values,omitempty"`
	Tone     string   `json:"tone,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Sources  []string `json:"sources,omitempty"`
}

// TailoredResume is the generated resume document in markdown
type TailoredResume struct {
	Markdown   string   `json:"markdown"`
	Highlights []string `json:"highlights,omitempty"`
}

// CoverLetter is the generated cover letter document in markdown
type CoverLetter struct {
	Markdown string `json:"markdown"`
}

// FactFinding classifies one claim in a generated document against the
// master resume.
type FactFinding struct {
	Claim    string `json:"claim"`
	Verdict  string `json:"verdict"` // supported, unverifiable, inflated
	Evidence string `json:"evidence,omitempty"`
	Document string `json:"document,omitempty"` // resume or cover_letter
}

// FactCheckReport is the output of the fact-checking stage
type FactCheckReport struct {
	Findings []FactFinding `json:"findings"`
}

// Flagged returns findings that are not supported by the master resume.
func (r *FactCheckReport) Flagged() []FactFinding {
	var out []FactFinding
	for _, f := range r.Findings {
		if f.Verdict != "supported" {
			out = append(out, f)
		}
	}
	return out
}

// PrunedResume is the result of the pruning pass: the trimmed document plus
// what was removed or rewritten and why.
type PrunedResume struct {
	Markdown string        `json:"markdown"`
	Changes  []PruneChange `json:"changes,omitempty"`
}

// PruneChange records one removal or rewrite applied during pruning
type PruneChange struct {
	Action   string `json:"action"` // remove or rewrite
	Original string `json:"original"`
	Revised  string `json:"revised,omitempty"`
	Reason   string `json:"reason,omitempty"`
}
