package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-tailor/internal/agents"
	"github.com/jonathan/job-tailor/internal/config"
	"github.com/jonathan/job-tailor/internal/llm"
	"github.com/jonathan/job-tailor/internal/matching"
	"github.com/jonathan/job-tailor/internal/observability"
	"github.com/jonathan/job-tailor/internal/pipeline"
	"github.com/jonathan/job-tailor/internal/resume"
	"github.com/jonathan/job-tailor/internal/types"
)

var matchCommand = &cobra.Command{
	Use:   "match",
	Short: "Analyze how well your experience matches a job posting",
	Long: `Parses the job posting and scores every requirement against your
experience entries without generating any documents. Useful for deciding
whether a role is worth applying to.`,
	RunE: runMatchCmd,
}

var (
	matchJob    string
	matchResume string
	matchJSON   bool
)

func init() {
	matchCommand.Flags().StringVarP(&matchJob, "job", "j", "", "Path to job posting text file")
	matchCommand.Flags().StringVarP(&matchResume, "resume", "r", "", "Path to master resume markdown file")
	matchCommand.Flags().BoolVar(&matchJSON, "json", false, "Emit raw match results as JSON")
	_ = matchCommand.MarkFlagRequired("job")
	_ = matchCommand.MarkFlagRequired("resume")

	rootCmd.AddCommand(matchCommand)
}

func runMatchCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Resolve()
	if err != nil {
		return err
	}

	posting, err := os.ReadFile(matchJob)
	if err != nil {
		return fmt.Errorf("failed to read job posting: %w", err)
	}

	master, err := resume.Load(matchResume)
	if err != nil {
		return err
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey, nil)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	parsed, err := parsePosting(ctx, cfg, client, string(posting))
	if err != nil {
		return err
	}

	matcher := matching.NewMatcher(cfg.Match, matching.NewLLMSimilarity(client))
	results, err := matcher.Match(ctx, parsed.Requirements, master.Entries)
	if err != nil {
		return fmt.Errorf("matching failed: %w", err)
	}

	if matchJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintParsedJob(parsed)
	printer.PrintMatchResults(results)
	return nil
}

// parsePosting runs just the parsing stage against the raw posting text.
func parsePosting(ctx context.Context, cfg *config.Config, client llm.Client, posting string) (*types.ParsedJob, error) {
	raw, err := json.Marshal(posting)
	if err != nil {
		return nil, err
	}

	sc := pipeline.NewStageContext(cfg, map[string]json.RawMessage{
		pipeline.KeyJobPosting: raw,
	})

	out, err := agents.NewParseJD(client).Run(ctx, sc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse job posting: %w", err)
	}

	var parsed types.ParsedJob
	if err := json.Unmarshal(out[pipeline.KeyParsedJob], &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}
