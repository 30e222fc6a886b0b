package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBucketFor_Thresholds(t *testing.T) {
	tests := []struct {
		name   string
		score  float64
		bucket MatchBucket
	}{
		{"perfect score", 100, BucketStrong},
		{"exactly strong threshold", 70, BucketStrong},
		{"just below strong", 69.99, BucketModerate},
		{"exactly moderate threshold", 50, BucketModerate},
		{"just below moderate", 49.99, BucketWeak},
		{"exactly weak threshold", 30, BucketWeak},
		{"just below weak", 29.99, BucketGap},
		{"zero", 0, BucketGap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.bucket, BucketFor(tt.score))
		})
	}
}

func TestWorkflowState_ResultFor(t *testing.T) {
	state := &WorkflowState{
		Results: []StageResult{
			{Stage: "parse_jd", Status: StageFailure},
			{Stage: "parse_jd", Status: StageSuccess},
			{Stage: "match_requirements", Status: StageSuccess},
		},
	}

	// Most recent entry wins; corrections are new entries, never mutations.
	r := state.ResultFor("parse_jd")
	assert.NotNil(t, r)
	assert.Equal(t, StageSuccess, r.Status)

	assert.True(t, state.Succeeded("parse_jd"))
	assert.False(t, state.Succeeded("research_company"))
	assert.Nil(t, state.ResultFor("research_company"))
}

func TestWorkflowState_DegradedStages(t *testing.T) {
	state := &WorkflowState{
		Results: []StageResult{
			{Stage: "parse_jd", Status: StageSuccess},
			{Stage: "research_company", Status: StageFailure},
			{Stage: "write_cover_letter", Status: StageTimeout},
		},
	}

	assert.Equal(t, []string{"research_company", "write_cover_letter"}, state.DegradedStages())
}

func TestParsedJob_RequiredOnly(t *testing.T) {
	job := &ParsedJob{
		Requirements: []JobRequirement{
			{ID: "req_001", Category: CategoryRequired},
			{ID: "req_002", Category: CategoryPreferred},
			{ID: "req_003", Category: CategoryRequired},
		},
	}

	required := job.RequiredOnly()
	assert.Len(t, required, 2)
	assert.Equal(t, "req_001", required[0].ID)
	assert.Equal(t, "req_003", required[1].ID)
}
