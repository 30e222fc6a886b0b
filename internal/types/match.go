//nolint:revive // types is a standard Go package name pattern
package types

// MatchBucket is the categorical label for a match score.
type MatchBucket string

// Match buckets by descending fit quality.
const (
	BucketStrong   MatchBucket = "strong"
	BucketModerate MatchBucket = "moderate"
	BucketWeak     MatchBucket = "weak"
	BucketGap      MatchBucket = "gap"
)

// Bucket thresholds on the 0-100 score scale.
const (
	StrongThreshold   = 70.0
	ModerateThreshold = 50.0
	WeakThreshold     = 30.0
)

// BucketFor returns the bucket for a score. It is a pure function of the score.
func BucketFor(score float64) MatchBucket {
	switch {
	case score >= StrongThreshold:
		return BucketStrong
	case score >= ModerateThreshold:
		return BucketModerate
	case score >= WeakThreshold:
		return BucketWeak
	default:
		return BucketGap
	}
}

// SubScores holds the four component scores of a match, each in [0,100].
type SubScores struct {
	Keyword      float64 `json:"keyword"`
	SkillOverlap float64 `json:"skill_overlap"`
	Relevance    float64 `json:"relevance"`
	Recency      float64 `json:"recency"`
}

// MatchResult pairs one job requirement with its best-fitting experience
// entry. EntryID is empty when the requirement is a gap. Immutable once
// produced.
type MatchResult struct {
	RequirementID   string      `json:"requirement_id"`
	EntryID         string      `json:"entry_id,omitempty"`
	Score           float64     `json:"score"`
	Bucket          MatchBucket `json:"bucket"`
	SubScores       SubScores   `json:"sub_scores"`
	MatchedKeywords []string    `json:"matched_keywords,omitempty"`
	Notes           string      `json:"notes,omitempty"`
}
