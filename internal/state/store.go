// Package state persists workflow state to disk so interrupted runs can be
// resumed. Each run is one JSON file named by run ID under the output
// directory; writes go through a temp file and rename so a crash never
// leaves a truncated state file.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-tailor/internal/types"
)

// Store owns the workflow state for one run and its on-disk copy.
type Store struct {
	mu    sync.Mutex
	dir   string
	state *types.WorkflowState
}

// NewStore creates a store for a fresh run, with a new run ID and the given
// resolved configuration snapshot.
func NewStore(dir string, configSnapshot json.RawMessage) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	now := time.Now().UTC()
	return &Store{
		dir: dir,
		state: &types.WorkflowState{
			RunID:     uuid.NewString(),
			State:     types.RunPending,
			Config:    configSnapshot,
			Artifacts: make(map[string]json.RawMessage),
			CreatedAt: now,
			UpdatedAt: now,
		},
	}, nil
}

// Open loads an existing run's state file for resumption.
func Open(dir, runID string) (*Store, error) {
	path := statePath(dir, runID)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file %s: %w", path, err)
	}

	var ws types.WorkflowState
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("state file %s is corrupt: %w", path, err)
	}
	if ws.Artifacts == nil {
		ws.Artifacts = make(map[string]json.RawMessage)
	}

	return &Store{dir: dir, state: &ws}, nil
}

// RunID returns the run's identifier.
func (s *Store) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.RunID
}

// SetRunState updates the run-level state and the current stage marker.
func (s *Store) SetRunState(state types.RunState, currentStage string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.State = state
	s.state.CurrentStage = currentStage
	s.state.UpdatedAt = time.Now().UTC()
}

// Append records a stage result. Results are never overwritten; a retry of
// an earlier stage appends a fresh entry.
func (s *Store) Append(result types.StageResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Results = append(s.state.Results, result)
	s.state.UpdatedAt = time.Now().UTC()
}

// SetArtifact stores a stage output under its artifact key.
func (s *Store) SetArtifact(key string, value json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Artifacts[key] = value
	s.state.UpdatedAt = time.Now().UTC()
}

// Artifact returns the stored artifact for key, if present.
func (s *Store) Artifact(key string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.state.Artifacts[key]
	return v, ok
}

// Snapshot returns a deep copy of the current workflow state.
func (s *Store) Snapshot() types.WorkflowState {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *s.state
	copied.Results = append([]types.StageResult(nil), s.state.Results...)
	copied.Artifacts = make(map[string]json.RawMessage, len(s.state.Artifacts))
	for k, v := range s.state.Artifacts {
		copied.Artifacts[k] = append(json.RawMessage(nil), v...)
	}
	return copied
}

// Persist writes the current state to disk atomically.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal workflow state: %w", err)
	}

	path := statePath(s.dir, s.state.RunID)
	tmp, err := os.CreateTemp(s.dir, ".state-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp state file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

func statePath(dir, runID string) string {
	return filepath.Join(dir, fmt.Sprintf("run-%s.json", runID))
}
