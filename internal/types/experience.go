//nolint:revive // types is a standard Go package name pattern
package types

// ExperienceEntry represents a single experience record from the master resume
type ExperienceEntry struct {
	ID       string   `json:"id"`
	Position string   `json:"position"`
	Company  string   `json:"company,omitempty"`
	Text     string   `json:"text"`
	Keywords []string `json:"keywords,omitempty"`
	Skills   []string `json:"skills,omitempty"`
	// StartDate and EndDate use "YYYY-MM" format. An empty EndDate means
	// the position is current.
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// MasterResume is the candidate's complete experience record loaded from
// structured markdown. Read-only after load.
type MasterResume struct {
	CandidateName string            `json:"candidate_name,omitempty"`
	RawText       string            `json:"raw_text"`
	Entries       []ExperienceEntry `json:"entries"`
}
