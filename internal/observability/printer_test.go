package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-tailor/internal/types"
)

func TestPrintMatchResults_BucketCounts(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintMatchResults([]types.MatchResult{
		{RequirementID: "req_001", EntryID: "exp_001", Score: 88, Bucket: types.BucketStrong},
		{RequirementID: "req_002", Score: 12, Bucket: types.BucketGap},
	})

	out := buf.String()
	assert.Contains(t, out, "REQUIREMENT MATCHES")
	assert.Contains(t, out, "strong 1")
	assert.Contains(t, out, "gap 1")
	assert.Contains(t, out, "(gap)")
}

func TestPrintMatchResults_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintMatchResults(nil)
	assert.Empty(t, buf.String())
}

func TestPrintFactCheck_Clean(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintFactCheck(&types.FactCheckReport{
		Findings: []types.FactFinding{{Claim: "x", Verdict: "supported"}},
	})
	assert.Contains(t, buf.String(), "NO CLAIMS FLAGGED")
}

func TestPrintFactCheck_Flagged(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintFactCheck(&types.FactCheckReport{
		Findings: []types.FactFinding{
			{Claim: "Led a team of 40", Verdict: "inflated", Evidence: "resume says 4"},
		},
	})
	out := buf.String()
	assert.Contains(t, out, "FACT CHECK FINDINGS")
	assert.Contains(t, out, "inflated")
}

func TestPrintRunSummary_MarksFailures(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRunSummary(&types.WorkflowState{
		RunID: "run-1",
		State: types.RunSucceeded,
		Results: []types.StageResult{
			{Stage: "parse_jd", Status: types.StageSuccess, Attempts: 1},
			{Stage: "research_company", Status: types.StageFailure, Attempts: 3},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "✓ parse_jd")
	assert.Contains(t, out, "✗ research_company")
	assert.Contains(t, out, "Degraded: research_company")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.printBox("TITLE", strings.Repeat("x", 200))

	for _, line := range strings.Split(buf.String(), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth+2)
	}
}

func TestNewLogger(t *testing.T) {
	for _, verbose := range []bool{true, false} {
		log, err := NewLogger(verbose)
		require.NoError(t, err)
		require.NotNil(t, log)
		_ = log.Sync()
	}
}
