package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/job-tailor/internal/types"
)

const (
	// boxWidth is the width of formatted output boxes
	boxWidth = 60
	// maxItemsToShow caps list output in verbose mode
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a Printer writing to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintParsedJob outputs a summary of the extracted job description.
func (p *Printer) PrintParsedJob(job *types.ParsedJob) {
	if job == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Company:  %s\n", job.Company))
	sb.WriteString(fmt.Sprintf("Role:     %s\n", job.RoleTitle))
	if job.Location != "" {
		sb.WriteString(fmt.Sprintf("Location: %s\n", job.Location))
	}
	sb.WriteString("\n")

	required := job.RequiredOnly()
	if len(required) > 0 {
		sb.WriteString("Required:\n")
		count := min(len(required), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", required[i].Text))
		}
		if len(required) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(required)-maxItemsToShow))
		}
	}

	preferred := len(job.Requirements) - len(required)
	if preferred > 0 {
		sb.WriteString(fmt.Sprintf("\nPreferred: %d requirements\n", preferred))
	}

	p.printBox("PARSED JOB", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMatchResults outputs the requirement match table with bucket counts.
func (p *Printer) PrintMatchResults(results []types.MatchResult) {
	if len(results) == 0 {
		return
	}

	buckets := make(map[types.MatchBucket]int)
	for _, r := range results {
		buckets[r.Bucket]++
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Requirements matched: %d\n", len(results)))
	sb.WriteString(fmt.Sprintf("strong %d  moderate %d  weak %d  gap %d\n\n",
		buckets[types.BucketStrong], buckets[types.BucketModerate],
		buckets[types.BucketWeak], buckets[types.BucketGap]))

	count := min(len(results), maxItemsToShow)
	for i := 0; i < count; i++ {
		r := results[i]
		entry := r.EntryID
		if entry == "" {
			entry = "(gap)"
		}
		sb.WriteString(fmt.Sprintf("%s  %5.1f  %-8s  %s\n", r.RequirementID, r.Score, r.Bucket, entry))
	}
	if len(results) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(results)-maxItemsToShow))
	}

	p.printBox("REQUIREMENT MATCHES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCompanyProfile outputs the research summary.
func (p *Printer) PrintCompanyProfile(profile *types.CompanyProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Company:  %s\n", profile.Company))
	if profile.Tone != "" {
		sb.WriteString(fmt.Sprintf("Tone:     %s\n", profile.Tone))
	}
	sb.WriteString("\n")
	sb.WriteString(profile.Summary)
	sb.WriteString("\n")

	if len(profile.Values) > 0 {
		sb.WriteString("\nValues:\n")
		count := min(len(profile.Values), 3)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", profile.Values[i]))
		}
		if len(profile.Values) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(profile.Values)-3))
		}
	}

	p.printBox("COMPANY PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintFactCheck outputs flagged claims, or a clean bill of health.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintFactCheck(report *types.FactCheckReport) {
	flagged := report.Flagged()
	if len(flagged) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO CLAIMS FLAGGED")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Flagged %d claims:\n\n", len(flagged)))
	for i, f := range flagged {
		claim := f.Claim
		if len(claim) > 45 {
			claim = claim[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("⚠ [%s] %s\n", f.Verdict, claim))
		if f.Evidence != "" {
			evidence := f.Evidence
			if len(evidence) > 45 {
				evidence = evidence[:42] + "..."
			}
			sb.WriteString(fmt.Sprintf("  %s\n", evidence))
		}
		if i < len(flagged)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("FACT CHECK FINDINGS", sb.String())
}

// PrintRunSummary outputs per-stage outcomes at the end of a run.
func (p *Printer) PrintRunSummary(ws *types.WorkflowState) {
	if ws == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:   %s\n", ws.RunID))
	sb.WriteString(fmt.Sprintf("State: %s\n\n", ws.State))

	for _, r := range ws.Results {
		marker := "✓"
		switch r.Status {
		case types.StageFailure, types.StageTimeout:
			marker = "✗"
		case types.StageSkipped:
			marker = "-"
		}
		sb.WriteString(fmt.Sprintf("%s %-20s %-8s %d attempt(s) %dms\n",
			marker, r.Stage, r.Status, r.Attempts, r.DurationMS))
	}

	if degraded := ws.DegradedStages(); len(degraded) > 0 {
		sb.WriteString(fmt.Sprintf("\nDegraded: %s\n", strings.Join(degraded, ", ")))
	}

	p.printBox("RUN SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}
