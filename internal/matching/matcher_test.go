package matching

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-tailor/internal/config"
	"github.com/jonathan/job-tailor/internal/types"
)

var testNow = time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)

func testMatchConfig() config.MatchConfig {
	return config.MatchConfig{
		Weights: config.Weights{
			Keyword:      0.40,
			SkillOverlap: 0.30,
			Relevance:    0.20,
			Recency:      0.10,
		},
		GapFloor:            30.0,
		RecencyHorizonYears: 8.0,
		Parallelism:         4,
	}
}

func constantSimilarity(score float64) Similarity {
	return SimilarityFunc(func(ctx context.Context, req, entry string) (float64, error) {
		return score, nil
	})
}

func TestKeywordScore(t *testing.T) {
	req := types.JobRequirement{Keywords: []string{"Go", "Kubernetes", "Terraform", "AWS"}}
	entry := types.ExperienceEntry{Keywords: []string{"go", "kubernetes", "postgres"}}

	score, matched := keywordScore(req, entry)
	assert.InDelta(t, 50.0, score, 1e-9)
	assert.Equal(t, []string{"Go", "Kubernetes"}, matched)
}

func TestKeywordScore_NoRequirementKeywords(t *testing.T) {
	score, matched := keywordScore(types.JobRequirement{}, types.ExperienceEntry{Keywords: []string{"go"}})
	assert.Zero(t, score)
	assert.Empty(t, matched)
}

func TestSkillOverlapScore_Jaccard(t *testing.T) {
	req := types.JobRequirement{Skills: []string{"Go", "PostgreSQL", "Docker"}}
	entry := types.ExperienceEntry{Skills: []string{"go", "postgresql", "kafka"}}

	// Intersection 2, union 4.
	assert.InDelta(t, 50.0, skillOverlapScore(req, entry), 1e-9)
}

func TestSkillOverlapScore_EmptySets(t *testing.T) {
	assert.Zero(t, skillOverlapScore(types.JobRequirement{}, types.ExperienceEntry{}))
	assert.Zero(t, skillOverlapScore(
		types.JobRequirement{Skills: []string{"Go"}},
		types.ExperienceEntry{},
	))
}

func TestRecencyScore(t *testing.T) {
	tests := []struct {
		name    string
		endDate string
		want    float64
	}{
		{"current position", "", 100},
		{"ended this month", "2026-08", 100},
		{"four years ago, midpoint of decay", "2022-08", 70},
		{"at the horizon", "2018-08", 40},
		{"well past the horizon", "2005-01", 40},
		{"unparseable date", "sometime", 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := recencyScore(types.ExperienceEntry{EndDate: tt.endDate}, testNow, 8.0)
			assert.InDelta(t, tt.want, got, 0.5)
		})
	}
}

func TestMatch_OneResultPerRequirement(t *testing.T) {
	reqs := []types.JobRequirement{
		{ID: "req_001", Text: "Build Go services", Keywords: []string{"go", "services"}, Skills: []string{"Go"}},
		{ID: "req_002", Text: "Operate Kubernetes", Keywords: []string{"kubernetes"}, Skills: []string{"Kubernetes"}},
	}
	entries := []types.ExperienceEntry{
		{
			ID: "exp_001", Position: "Senior Engineer", Company: "Acme",
			Text:     "Built Go services on Kubernetes",
			Keywords: []string{"go", "services", "kubernetes"},
			Skills:   []string{"Go", "Kubernetes"},
		},
	}

	m := NewMatcher(testMatchConfig(), constantSimilarity(80), WithClock(testNow))
	results, err := m.Match(context.Background(), reqs, entries)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "req_001", results[0].RequirementID)
	assert.Equal(t, "req_002", results[1].RequirementID)
	for _, r := range results {
		assert.Equal(t, "exp_001", r.EntryID)
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 100.0)
		assert.Equal(t, types.BucketFor(r.Score), r.Bucket)
		assert.NotEmpty(t, r.Notes)
	}
}

func TestMatch_EmptyExperiences_AllGaps(t *testing.T) {
	reqs := []types.JobRequirement{
		{ID: "req_001", Text: "Build Go services"},
		{ID: "req_002", Text: "Operate Kubernetes"},
	}

	m := NewMatcher(testMatchConfig(), constantSimilarity(100), WithClock(testNow))
	results, err := m.Match(context.Background(), reqs, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, r := range results {
		assert.Equal(t, types.BucketGap, r.Bucket)
		assert.Empty(t, r.EntryID)
		assert.Zero(t, r.Score)
	}
}

func TestMatch_BelowFloorIsGap(t *testing.T) {
	reqs := []types.JobRequirement{
		{ID: "req_001", Text: "Ten years of COBOL", Keywords: []string{"cobol"}, Skills: []string{"COBOL"}},
	}
	entries := []types.ExperienceEntry{
		{ID: "exp_001", Position: "Engineer", Keywords: []string{"go"}, Skills: []string{"Go"}, EndDate: "2010-01"},
	}

	m := NewMatcher(testMatchConfig(), constantSimilarity(0), WithClock(testNow))
	results, err := m.Match(context.Background(), reqs, entries)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// Only recency contributes: 0.10 * 40 = 4, well under the floor.
	assert.Equal(t, types.BucketGap, results[0].Bucket)
	assert.Empty(t, results[0].EntryID)
	assert.Less(t, results[0].Score, 30.0)
}

func TestMatch_TieBreakRecencyThenID(t *testing.T) {
	reqs := []types.JobRequirement{
		{ID: "req_001", Text: "Build Go services", Keywords: []string{"go"}, Skills: []string{"Go"}},
	}
	// Identical evidence except end dates.
	older := types.ExperienceEntry{
		ID: "exp_001", Position: "Engineer", Keywords: []string{"go"}, Skills: []string{"Go"}, EndDate: "2026-08",
	}
	current := types.ExperienceEntry{
		ID: "exp_002", Position: "Engineer", Keywords: []string{"go"}, Skills: []string{"Go"},
	}

	m := NewMatcher(testMatchConfig(), constantSimilarity(90), WithClock(testNow))

	results, err := m.Match(context.Background(), reqs, []types.ExperienceEntry{older, current})
	require.NoError(t, err)
	assert.Equal(t, "exp_002", results[0].EntryID, "current position wins on recency rank")

	// With equal recency the lower entry ID wins, regardless of input order.
	tied := current
	tied.ID = "exp_003"
	results, err = m.Match(context.Background(), reqs, []types.ExperienceEntry{tied, current})
	require.NoError(t, err)
	assert.Equal(t, "exp_002", results[0].EntryID)
}

func TestMatch_Deterministic(t *testing.T) {
	reqs := []types.JobRequirement{
		{ID: "req_001", Text: "Build Go services", Keywords: []string{"go", "grpc"}, Skills: []string{"Go"}},
		{ID: "req_002", Text: "Own CI pipelines", Keywords: []string{"ci", "pipelines"}, Skills: []string{"GitHub Actions"}},
		{ID: "req_003", Text: "Mentor engineers", Keywords: []string{"mentoring"}},
	}
	entries := []types.ExperienceEntry{
		{ID: "exp_001", Position: "Senior Engineer", Keywords: []string{"go", "grpc", "mentoring"}, Skills: []string{"Go"}},
		{ID: "exp_002", Position: "Platform Engineer", Keywords: []string{"ci", "pipelines"}, Skills: []string{"GitHub Actions"}, EndDate: "2023-05"},
	}

	sim := SimilarityFunc(func(ctx context.Context, req, entry string) (float64, error) {
		return float64(len(req)+len(entry)) / 4, nil
	})

	m := NewMatcher(testMatchConfig(), sim, WithClock(testNow))

	first, err := m.Match(context.Background(), reqs, entries)
	require.NoError(t, err)
	second, err := m.Match(context.Background(), reqs, entries)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMatch_SimilarityErrorPropagates(t *testing.T) {
	simErr := errors.New("provider unavailable")
	sim := SimilarityFunc(func(ctx context.Context, req, entry string) (float64, error) {
		return 0, simErr
	})

	m := NewMatcher(testMatchConfig(), sim, WithClock(testNow))
	_, err := m.Match(context.Background(),
		[]types.JobRequirement{{ID: "req_001", Text: "anything"}},
		[]types.ExperienceEntry{{ID: "exp_001", Text: "something"}},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, simErr)
}

func TestMatch_NilSimilarity(t *testing.T) {
	reqs := []types.JobRequirement{
		{ID: "req_001", Keywords: []string{"go"}, Skills: []string{"Go"}},
	}
	entries := []types.ExperienceEntry{
		{ID: "exp_001", Position: "Engineer", Keywords: []string{"go"}, Skills: []string{"Go"}},
	}

	m := NewMatcher(testMatchConfig(), nil, WithClock(testNow))
	results, err := m.Match(context.Background(), reqs, entries)
	require.NoError(t, err)
	assert.Zero(t, results[0].SubScores.Relevance)
	// keyword 100*0.4 + skills 100*0.3 + recency 100*0.1 = 80.
	assert.InDelta(t, 80.0, results[0].Score, 1e-9)
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	s := strings.Repeat("é", 10)

	out := truncate(s, 5)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, "éé...", out)

	assert.Equal(t, s, truncate(s, 100))
	assert.Equal(t, "short", truncate("  short  ", 10))
}
