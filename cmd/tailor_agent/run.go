package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-tailor/internal/app"
	"github.com/jonathan/job-tailor/internal/config"
	"github.com/jonathan/job-tailor/internal/types"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full tailoring pipeline end-to-end",
	Long: `Orchestrates the tailoring pipeline: parse the posting -> research the
company -> match requirements against experience -> tailor the resume ->
write the cover letter -> fact-check -> prune.

Configuration is resolved from defaults, tailor.yaml, ~/.config/tailor/,
and TAILOR_* environment variables. Flags override the resolved values.`,
	RunE: runPipelineCmd,
}

var (
	runJob         string
	runJobURL      string
	runResume      string
	runOutputDir   string
	runResumeRunID string
	runSeeds       []string
	runAPIKey      string
	runUseBrowser  bool
	runVerbose     bool
	runDatabaseURL string
)

func init() {
	runCommand.Flags().StringVarP(&runJob, "job", "j", "", "Path to job posting text file (mutually exclusive with --job-url)")
	runCommand.Flags().StringVar(&runJobURL, "job-url", "", "URL to fetch the job posting from (mutually exclusive with --job)")
	runCommand.Flags().StringVarP(&runResume, "resume", "r", "", "Path to master resume markdown file")
	runCommand.Flags().StringVarP(&runOutputDir, "out", "o", "out", "Output directory for documents and run state")
	runCommand.Flags().StringVar(&runResumeRunID, "resume-run", "", "Resume a previously interrupted run by its ID")
	runCommand.Flags().StringSliceVar(&runSeeds, "research-seed", nil, "Company page URL for research (repeatable)")
	runCommand.Flags().BoolVar(&runUseBrowser, "use-browser", false, "Use a headless browser for JavaScript-rendered pages (requires Chrome)")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed progress and match tables")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "Gemini API key (optional, defaults to TAILOR_API_KEY or GEMINI_API_KEY)")

	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL URL for the optional artifact mirror")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfigWithFlags(cmd)
	if err != nil {
		return err
	}

	if runResumeRunID == "" {
		if runJob == "" && runJobURL == "" {
			return fmt.Errorf("either --job or --job-url must be provided")
		}
		if runResume == "" {
			return fmt.Errorf("--resume is required")
		}
	}

	final, err := app.Run(cmd.Context(), cfg, app.RunOptions{
		JobPath:     runJob,
		JobURL:      runJobURL,
		ResumePath:  runResume,
		OutputDir:   runOutputDir,
		ResumeRunID: runResumeRunID,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Run %s finished: %s\n", final.RunID, final.State)
	if degraded := final.DegradedStages(); len(degraded) > 0 && final.State == types.RunSucceeded {
		fmt.Printf("Degraded stages: %v\n", degraded)
	}
	fmt.Printf("Documents written to %s\n", runOutputDir)
	return nil
}

// resolveConfigWithFlags resolves the layered configuration and applies
// explicitly set CLI flags on top.
func resolveConfigWithFlags(cmd *cobra.Command) (*config.Config, error) {
	// The API key flag participates in resolution as the highest-priority
	// environment source, so validation sees it.
	if cmd.Flags().Changed("api-key") {
		if err := os.Setenv("TAILOR_API_KEY", runAPIKey); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Resolve()
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = runUseBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}
	if cmd.Flags().Changed("research-seed") {
		cfg.ResearchSeeds = runSeeds
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
