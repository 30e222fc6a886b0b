package state

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-tailor/internal/types"
)

func TestStore_PersistAndOpen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir, json.RawMessage(`{"provider":"gemini"}`))
	require.NoError(t, err)

	store.SetRunState(types.RunRunning, "parse_jd")
	store.Append(types.StageResult{
		Stage:       "parse_jd",
		Status:      types.StageSuccess,
		Attempts:    1,
		StartedAt:   time.Now().UTC(),
		CompletedAt: time.Now().UTC(),
	})
	store.SetArtifact("parsed_job", json.RawMessage(`{"company":"Acme"}`))
	require.NoError(t, store.Persist())

	reopened, err := Open(dir, store.RunID())
	require.NoError(t, err)

	snap := reopened.Snapshot()
	assert.Equal(t, store.RunID(), snap.RunID)
	assert.Equal(t, types.RunRunning, snap.State)
	assert.True(t, snap.Succeeded("parse_jd"))

	artifact, ok := reopened.Artifact("parsed_job")
	require.True(t, ok)
	assert.JSONEq(t, `{"company":"Acme"}`, string(artifact))
}

func TestStore_AppendIsAppendOnly(t *testing.T) {
	store, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	store.Append(types.StageResult{Stage: "research_company", Status: types.StageFailure})
	store.Append(types.StageResult{Stage: "research_company", Status: types.StageSuccess})

	snap := store.Snapshot()
	require.Len(t, snap.Results, 2)
	assert.Equal(t, types.StageFailure, snap.Results[0].Status)

	// ResultFor reports the latest entry.
	latest := snap.ResultFor("research_company")
	require.NotNil(t, latest)
	assert.Equal(t, types.StageSuccess, latest.Status)
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	store, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	store.SetArtifact("parsed_job", json.RawMessage(`{"company":"Acme"}`))

	snap := store.Snapshot()
	snap.Artifacts["parsed_job"] = json.RawMessage(`{"company":"Mutated"}`)
	snap.Results = append(snap.Results, types.StageResult{Stage: "bogus"})

	fresh := store.Snapshot()
	assert.JSONEq(t, `{"company":"Acme"}`, string(fresh.Artifacts["parsed_job"]))
	assert.Empty(t, fresh.Results)
}

func TestOpen_MissingRun(t *testing.T) {
	_, err := Open(t.TempDir(), "no-such-run")
	require.Error(t, err)
}

func TestOpen_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, nil)
	require.NoError(t, err)
	require.NoError(t, store.Persist())

	// Truncate the file to simulate a partial write from outside the store.
	path := statePath(dir, store.RunID())
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err = Open(dir, store.RunID())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt")
}
