package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/job-tailor/internal/config"
	"github.com/jonathan/job-tailor/internal/llm"
	"github.com/jonathan/job-tailor/internal/state"
	"github.com/jonathan/job-tailor/internal/types"
)

// retryBaseDelay is the first retry backoff; it doubles per attempt.
const retryBaseDelay = 500 * time.Millisecond

// Runner drives a registry of stages to completion, recording results and
// artifacts in the state store as it goes.
type Runner struct {
	cfg      *config.Config
	registry *Registry
	store    *state.Store
	log      *zap.Logger
}

// NewRunner wires a runner. The logger may not be nil; pass zap.NewNop()
// when logging is unwanted.
func NewRunner(cfg *config.Config, registry *Registry, store *state.Store, log *zap.Logger) *Runner {
	return &Runner{cfg: cfg, registry: registry, store: store, log: log}
}

// Run executes the stage sequence. It returns the final workflow state and
// a non-nil error when the run did not reach the succeeded state. Stages
// with a recorded success in the store are skipped, which makes resuming an
// interrupted run the same call as starting one.
func (r *Runner) Run(ctx context.Context) (types.WorkflowState, error) {
	r.store.SetRunState(types.RunRunning, "")

	for _, stage := range r.registry.Stages() {
		if err := ctx.Err(); err != nil {
			return r.finish(types.RunFailed, fmt.Errorf("run interrupted: %w", err))
		}

		snap := r.store.Snapshot()
		if snap.Succeeded(stage.Name()) {
			r.log.Info("skipping stage with recorded success", zap.String("stage", stage.Name()))
			continue
		}

		r.store.SetRunState(types.RunRunning, stage.Name())

		stageCfg, ok := r.cfg.Stages.ForStage(stage.Name())
		if !ok {
			stageCfg = config.StageConfig{Timeout: 2 * time.Minute}
		}

		if missing := r.missingInputs(stage); len(missing) > 0 {
			err := fmt.Errorf("stage %s is missing inputs %v (an earlier stage failed)", stage.Name(), missing)
			if abortErr := r.handleFailure(stage, types.StageFailure, 0, 0, err); abortErr != nil {
				return r.finish(types.RunAborted, abortErr)
			}
			continue
		}

		status, attempts, elapsed, err := r.runStage(ctx, stage, stageCfg)
		if err != nil {
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				r.record(stage.Name(), status, attempts, elapsed, err.Error(), time.Now().UTC())
				return r.finish(types.RunFailed, fmt.Errorf("run interrupted during %s: %w", stage.Name(), err))
			}
			if abortErr := r.handleFailure(stage, status, attempts, elapsed, err); abortErr != nil {
				return r.finish(types.RunAborted, abortErr)
			}
			continue
		}

		r.record(stage.Name(), types.StageSuccess, attempts, elapsed, "", time.Now().UTC())
	}

	return r.finish(types.RunSucceeded, nil)
}

// runStage executes one stage with its timeout and retry budget. It returns
// the terminal status for the attempt series.
func (r *Runner) runStage(ctx context.Context, stage Stage, stageCfg config.StageConfig) (types.StageStatus, int, time.Duration, error) {
	started := time.Now()

	// The timeout is a wall-clock budget for the whole stage. Every retry
	// and its backoff delay draws from the same deadline.
	stageCtx := ctx
	if stageCfg.Timeout > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(ctx, stageCfg.Timeout)
		defer cancel()
	}

	var lastErr error
	for attempt := 1; ; attempt++ {
		outputs, err := r.attempt(stageCtx, stage)
		if err == nil {
			for key, value := range outputs {
				r.store.SetArtifact(key, value)
			}
			return types.StageSuccess, attempt, time.Since(started), nil
		}
		lastErr = err

		// A stage that exhausts its deadline is done; there is no budget
		// left to retry into.
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return types.StageTimeout, attempt, time.Since(started),
				fmt.Errorf("stage %s exceeded its %s timeout", stage.Name(), stageCfg.Timeout)
		}

		if attempt > stageCfg.MaxRetries || !llm.IsTransient(err) {
			return types.StageFailure, attempt, time.Since(started),
				fmt.Errorf("stage %s failed: %w", stage.Name(), err)
		}

		delay := backoffDelay(attempt, err)
		r.log.Warn("stage attempt failed, retrying",
			zap.String("stage", stage.Name()),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))

		select {
		case <-stageCtx.Done():
			if errors.Is(stageCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
				return types.StageTimeout, attempt, time.Since(started),
					fmt.Errorf("stage %s exceeded its %s timeout", stage.Name(), stageCfg.Timeout)
			}
			return types.StageFailure, attempt, time.Since(started),
				fmt.Errorf("stage %s: %w", stage.Name(), lastErr)
		case <-time.After(delay):
		}
	}
}

func (r *Runner) attempt(ctx context.Context, stage Stage) (Outputs, error) {
	snap := r.store.Snapshot()
	sc := NewStageContext(r.cfg, snap.Artifacts)
	return stage.Run(ctx, sc)
}

// handleFailure records a failed stage and decides whether the run can
// continue. It returns a non-nil error when the failure aborts the run.
func (r *Runner) handleFailure(stage Stage, status types.StageStatus, attempts int, elapsed time.Duration, err error) error {
	r.record(stage.Name(), status, attempts, elapsed, err.Error(), time.Now().UTC())

	if stage.Optional() {
		r.log.Warn("optional stage failed, continuing",
			zap.String("stage", stage.Name()),
			zap.Error(err))
		return nil
	}
	return fmt.Errorf("required stage %s did not complete: %w", stage.Name(), err)
}

func (r *Runner) record(stageName string, status types.StageStatus, attempts int, elapsed time.Duration, errMsg string, completed time.Time) {
	r.store.Append(types.StageResult{
		Stage:       stageName,
		Status:      status,
		Attempts:    attempts,
		DurationMS:  elapsed.Milliseconds(),
		Error:       errMsg,
		StartedAt:   completed.Add(-elapsed),
		CompletedAt: completed,
	})

	if r.cfg.PersistEveryStage {
		if err := r.store.Persist(); err != nil {
			r.log.Error("failed to persist workflow state", zap.Error(err))
		}
	}
}

func (r *Runner) missingInputs(stage Stage) []string {
	var missing []string
	for _, key := range stage.Inputs() {
		if _, ok := r.store.Artifact(key); !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

func (r *Runner) finish(final types.RunState, err error) (types.WorkflowState, error) {
	r.store.SetRunState(final, "")
	if perr := r.store.Persist(); perr != nil {
		r.log.Error("failed to persist final workflow state", zap.Error(perr))
		if err == nil {
			err = perr
		}
	}
	return r.store.Snapshot(), err
}

// backoffDelay doubles the base delay per attempt, except that a rate limit
// response with an explicit retry-after wins.
func backoffDelay(attempt int, err error) time.Duration {
	var rle *llm.RateLimitedError
	if errors.As(err, &rle) && rle.RetryAfter > 0 {
		return rle.RetryAfter
	}
	return retryBaseDelay << (attempt - 1)
}

// ConfigSnapshot serializes the resolved configuration for embedding in
// workflow state. Secrets are excluded by the Config JSON tags.
func ConfigSnapshot(cfg *config.Config) json.RawMessage {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil
	}
	return data
}
