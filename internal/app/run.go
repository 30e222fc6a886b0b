// Package app wires the pieces into a runnable pipeline: configuration,
// inputs, the LLM client, the stage registry, persistence, and output
// documents. The CLI commands are thin wrappers over this package.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/job-tailor/internal/agents"
	"github.com/jonathan/job-tailor/internal/config"
	"github.com/jonathan/job-tailor/internal/db"
	"github.com/jonathan/job-tailor/internal/fetch"
	"github.com/jonathan/job-tailor/internal/llm"
	"github.com/jonathan/job-tailor/internal/observability"
	"github.com/jonathan/job-tailor/internal/pipeline"
	"github.com/jonathan/job-tailor/internal/ratelimit"
	"github.com/jonathan/job-tailor/internal/resume"
	"github.com/jonathan/job-tailor/internal/state"
	"github.com/jonathan/job-tailor/internal/types"
)

// RunOptions identify the inputs for one pipeline run.
type RunOptions struct {
	// JobPath and JobURL are mutually exclusive posting sources.
	JobPath string
	JobURL  string

	// ResumePath is the master resume markdown file.
	ResumePath string

	// OutputDir receives workflow state and the generated documents.
	OutputDir string

	// ResumeRunID resumes a previously interrupted run instead of
	// starting a new one. Inputs are taken from the stored state.
	ResumeRunID string
}

// governors are shared per provider so concurrent runs in one process draw
// from the same request budget.
var (
	governorMu sync.Mutex
	governors  = make(map[string]*ratelimit.Governor)
)

func governorFor(provider string, rl config.RateLimitConfig) *ratelimit.Governor {
	governorMu.Lock()
	defer governorMu.Unlock()
	if g, ok := governors[provider]; ok {
		return g
	}
	g := ratelimit.NewGovernor(rl.RequestsPerMinute, rl.Burst)
	governors[provider] = g
	return g
}

// Run executes the full tailoring pipeline and writes the generated
// documents to the output directory.
func Run(ctx context.Context, cfg *config.Config, opts RunOptions) (types.WorkflowState, error) {
	log, err := observability.NewLogger(cfg.Verbose)
	if err != nil {
		return types.WorkflowState{}, fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	store, err := prepareStore(ctx, cfg, opts, log)
	if err != nil {
		return types.WorkflowState{}, err
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey, governorFor(cfg.Provider, cfg.RateLimit))
	if err != nil {
		return types.WorkflowState{}, fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	stages := pipeline.EnabledStages(cfg, agents.DefaultStages(client))
	registry, err := pipeline.NewRegistry(stages...)
	if err != nil {
		return types.WorkflowState{}, err
	}

	runner := pipeline.NewRunner(cfg, registry, store, log)
	final, runErr := runner.Run(ctx)

	mirrorRun(ctx, cfg, final, log)

	if werr := WriteDocuments(final, opts.OutputDir); werr != nil {
		log.Warn("failed to write output documents", zap.Error(werr))
	}

	if cfg.Verbose {
		printVerbose(os.Stdout, final)
	}

	return final, runErr
}

// prepareStore builds a fresh state store seeded with the run inputs, or
// reopens an existing run for resumption.
func prepareStore(ctx context.Context, cfg *config.Config, opts RunOptions, log *zap.Logger) (*state.Store, error) {
	if opts.ResumeRunID != "" {
		store, err := state.Open(opts.OutputDir, opts.ResumeRunID)
		if err != nil {
			return nil, fmt.Errorf("cannot resume run %s: %w", opts.ResumeRunID, err)
		}
		log.Info("resuming run", zap.String("run_id", opts.ResumeRunID))
		return store, nil
	}

	posting, err := loadPosting(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}

	master, err := resume.Load(opts.ResumePath)
	if err != nil {
		return nil, err
	}

	store, err := state.NewStore(opts.OutputDir, pipeline.ConfigSnapshot(cfg))
	if err != nil {
		return nil, err
	}

	if err := seedArtifacts(store, posting, master); err != nil {
		return nil, err
	}

	log.Info("starting run",
		zap.String("run_id", store.RunID()),
		zap.Int("experience_entries", len(master.Entries)))
	return store, nil
}

func loadPosting(ctx context.Context, cfg *config.Config, opts RunOptions) (string, error) {
	switch {
	case opts.JobPath != "" && opts.JobURL != "":
		return "", fmt.Errorf("job file and job URL are mutually exclusive")

	case opts.JobPath != "":
		data, err := os.ReadFile(opts.JobPath)
		if err != nil {
			return "", fmt.Errorf("failed to read job posting: %w", err)
		}
		return string(data), nil

	case opts.JobURL != "":
		result, err := fetch.URL(ctx, opts.JobURL, nil)
		if err != nil {
			return "", err
		}
		if cfg.UseBrowser && fetch.ShouldUseBrowser(result.Text) {
			html, berr := fetch.WithBrowser(ctx, opts.JobURL, fetch.DefaultTimeout)
			if berr != nil {
				return "", berr
			}
			text, terr := fetch.ExtractMainText(html, fetch.DefaultTextSelectors())
			if terr != nil {
				return "", terr
			}
			return text, nil
		}
		return result.Text, nil

	default:
		return "", fmt.Errorf("a job posting file or URL is required")
	}
}

func seedArtifacts(store *state.Store, posting string, master *types.MasterResume) error {
	for key, value := range map[string]any{
		pipeline.KeyJobPosting:        posting,
		pipeline.KeyMasterResume:      master,
		pipeline.KeyExperienceEntries: master.Entries,
	} {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		store.SetArtifact(key, data)
	}
	return nil
}

// mirrorRun copies the finished run into Postgres when configured. Mirror
// problems are logged, never fatal.
func mirrorRun(ctx context.Context, cfg *config.Config, ws types.WorkflowState, log *zap.Logger) {
	if cfg.DatabaseURL == "" {
		return
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Warn("database mirror unavailable", zap.Error(err))
		return
	}
	defer database.Close()

	runID, err := uuid.Parse(ws.RunID)
	if err != nil {
		log.Warn("run ID is not mirrorable", zap.Error(err))
		return
	}

	company, roleTitle := runIdentity(ws)
	if err := database.CreateRun(ctx, runID, company, roleTitle); err != nil {
		log.Warn("failed to register run in mirror", zap.Error(err))
		return
	}
	if err := database.MirrorState(ctx, ws); err != nil {
		log.Warn("failed to mirror artifacts", zap.Error(err))
	}
	for _, result := range ws.Results {
		if err := database.SaveStageResult(ctx, runID, result); err != nil {
			log.Warn("failed to mirror stage result", zap.Error(err))
			break
		}
	}
	if err := database.CompleteRun(ctx, runID, ws.State); err != nil {
		log.Warn("failed to finalize mirrored run", zap.Error(err))
	}
}

func runIdentity(ws types.WorkflowState) (company, roleTitle string) {
	raw, ok := ws.Artifacts[pipeline.KeyParsedJob]
	if !ok {
		return "", ""
	}
	var parsed types.ParsedJob
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", ""
	}
	return parsed.Company, parsed.RoleTitle
}

func printVerbose(out *os.File, ws types.WorkflowState) {
	printer := observability.NewPrinter(out)

	var parsed types.ParsedJob
	if decodeArtifact(ws, pipeline.KeyParsedJob, &parsed) {
		printer.PrintParsedJob(&parsed)
	}
	var profile types.CompanyProfile
	if decodeArtifact(ws, pipeline.KeyCompanyProfile, &profile) {
		printer.PrintCompanyProfile(&profile)
	}
	var results []types.MatchResult
	if decodeArtifact(ws, pipeline.KeyMatchResults, &results) {
		printer.PrintMatchResults(results)
	}
	var report types.FactCheckReport
	if decodeArtifact(ws, pipeline.KeyFactCheckReport, &report) {
		printer.PrintFactCheck(&report)
	}
	printer.PrintRunSummary(&ws)
}

func decodeArtifact(ws types.WorkflowState, key string, out any) bool {
	raw, ok := ws.Artifacts[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}
