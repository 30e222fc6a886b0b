package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/job-tailor/internal/fetch"
	"github.com/jonathan/job-tailor/internal/llm"
	"github.com/jonathan/job-tailor/internal/pipeline"
	"github.com/jonathan/job-tailor/internal/prompts"
	"github.com/jonathan/job-tailor/internal/types"
)

// maxSourceChars caps the research corpus fed to the model per source.
const maxSourceChars = 6000

// ResearchCompany builds a company profile from configured seed URLs. The
// stage is optional: with no seeds or unreachable pages it profiles the
// company from the posting text alone, and a failure does not abort the run.
type ResearchCompany struct {
	client  llm.Client
	fetchFn func(ctx context.Context, url string, useBrowser bool) (*fetch.Result, error)
}

// NewResearchCompany returns the company research stage.
func NewResearchCompany(client llm.Client) *ResearchCompany {
	return &ResearchCompany{client: client, fetchFn: fetchPage}
}

func (a *ResearchCompany) Name() string             { return "research_company" }
func (a *ResearchCompany) Inputs() []string         { return []string{pipeline.KeyParsedJob} }
func (a *ResearchCompany) OptionalInputs() []string { return []string{pipeline.KeyJobPosting} }
func (a *ResearchCompany) Outputs() []string        { return []string{pipeline.KeyCompanyProfile} }
func (a *ResearchCompany) Optional() bool           { return true }

func (a *ResearchCompany) Run(ctx context.Context, sc *pipeline.StageContext) (pipeline.Outputs, error) {
	var parsed types.ParsedJob
	if err := sc.Decode(pipeline.KeyParsedJob, &parsed); err != nil {
		return nil, err
	}

	corpus, sources := a.gatherSources(ctx, sc)
	if corpus == "" {
		// Fall back to the posting itself so the profile is grounded in
		// something rather than free association.
		var posting string
		if ok, err := sc.DecodeOptional(pipeline.KeyJobPosting, &posting); err == nil && ok {
			corpus = "## Job posting\n" + truncateChars(posting, maxSourceChars)
		}
	}
	if corpus == "" {
		return nil, fmt.Errorf("no research sources available for %s", parsed.Company)
	}

	prompt := prompts.Format(prompts.MustGet("research.json", "company-profile"), map[string]string{
		"Company":   parsed.Company,
		"RoleTitle": parsed.RoleTitle,
		"Sources":   corpus,
	})

	doc, err := completeDocument(ctx, a.client, prompt, llm.TierStandard, "company_profile")
	if err != nil {
		return nil, err
	}

	var profile types.CompanyProfile
	if err := json.Unmarshal(doc, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode company profile: %w", err)
	}
	profile.Sources = sources

	artifact, err := marshalArtifact(pipeline.KeyCompanyProfile, profile)
	if err != nil {
		return nil, err
	}
	return pipeline.Outputs{pipeline.KeyCompanyProfile: artifact}, nil
}

// gatherSources fetches each configured seed URL and concatenates the
// extracted text. Unreachable seeds are dropped, not fatal.
func (a *ResearchCompany) gatherSources(ctx context.Context, sc *pipeline.StageContext) (string, []string) {
	var sb strings.Builder
	var sources []string

	for _, seed := range sc.Config.ResearchSeeds {
		result, err := a.fetchFn(ctx, seed, sc.Config.UseBrowser)
		if err != nil || result.Text == "" {
			continue
		}
		fmt.Fprintf(&sb, "## %s\n%s\n\n", seed, truncateChars(result.Text, maxSourceChars))
		sources = append(sources, seed)
	}
	return sb.String(), sources
}

func fetchPage(ctx context.Context, url string, useBrowser bool) (*fetch.Result, error) {
	result, err := fetch.URL(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	if useBrowser && fetch.ShouldUseBrowser(result.Text) {
		if html, berr := fetch.WithBrowser(ctx, url, fetch.DefaultTimeout); berr == nil {
			if text, terr := fetch.ExtractMainText(html, fetch.CompanyPageSelectors()); terr == nil {
				result.HTML = html
				result.Text = text
			}
		}
	}
	return result, nil
}

func truncateChars(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Back up to a rune boundary so a multi-byte character is never split.
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
