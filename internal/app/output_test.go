package app

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-tailor/internal/config"
	"github.com/jonathan/job-tailor/internal/pipeline"
	"github.com/jonathan/job-tailor/internal/types"
)

func testDefaultConfig() *config.Config {
	return config.Default()
}

func mustRaw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestWriteDocuments_PrunedSupersedesTailored(t *testing.T) {
	dir := t.TempDir()
	ws := types.WorkflowState{
		Artifacts: map[string]json.RawMessage{
			pipeline.KeyTailoredResume: mustRaw(t, types.TailoredResume{Markdown: "tailored version"}),
			pipeline.KeyPrunedResume:   mustRaw(t, types.PrunedResume{Markdown: "final version"}),
			pipeline.KeyCoverLetter:    mustRaw(t, types.CoverLetter{Markdown: "Dear team"}),
			pipeline.KeyMatchResults: mustRaw(t, []types.MatchResult{
				{RequirementID: "req_001", Score: 80, Bucket: types.BucketStrong},
			}),
		},
	}

	require.NoError(t, WriteDocuments(ws, dir))

	final, err := os.ReadFile(filepath.Join(dir, "resume.md"))
	require.NoError(t, err)
	assert.Equal(t, "final version", string(final))

	before, err := os.ReadFile(filepath.Join(dir, "resume_before_prune.md"))
	require.NoError(t, err)
	assert.Equal(t, "tailored version", string(before))

	letter, err := os.ReadFile(filepath.Join(dir, "cover_letter.md"))
	require.NoError(t, err)
	assert.Equal(t, "Dear team", string(letter))

	var results []types.MatchResult
	data, err := os.ReadFile(filepath.Join(dir, "match_results.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &results))
	assert.Len(t, results, 1)
}

func TestWriteDocuments_TailoredOnly(t *testing.T) {
	dir := t.TempDir()
	ws := types.WorkflowState{
		Artifacts: map[string]json.RawMessage{
			pipeline.KeyTailoredResume: mustRaw(t, types.TailoredResume{Markdown: "tailored version"}),
		},
	}

	require.NoError(t, WriteDocuments(ws, dir))

	final, err := os.ReadFile(filepath.Join(dir, "resume.md"))
	require.NoError(t, err)
	assert.Equal(t, "tailored version", string(final))

	_, err = os.Stat(filepath.Join(dir, "resume_before_prune.md"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "cover_letter.md"))
	assert.True(t, os.IsNotExist(err))
}

func TestWriteDocuments_EmptyState(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteDocuments(types.WorkflowState{}, dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadPosting_Validation(t *testing.T) {
	cfg := testDefaultConfig()

	_, err := loadPosting(t.Context(), cfg, RunOptions{})
	require.Error(t, err)

	_, err = loadPosting(t.Context(), cfg, RunOptions{JobPath: "a.txt", JobURL: "https://x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestLoadPosting_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.txt")
	require.NoError(t, os.WriteFile(path, []byte("We are hiring"), 0o644))

	posting, err := loadPosting(t.Context(), testDefaultConfig(), RunOptions{JobPath: path})
	require.NoError(t, err)
	assert.Equal(t, "We are hiring", posting)
}
