package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/job-tailor/internal/pipeline"
	"github.com/jonathan/job-tailor/internal/types"
)

// WriteDocuments extracts the generated documents from workflow state and
// writes them to dir. The pruned resume, when present, supersedes the
// tailored one as resume.md; the pre-prune version is kept alongside it.
func WriteDocuments(ws types.WorkflowState, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var tailored types.TailoredResume
	haveTailored := decodeArtifact(ws, pipeline.KeyTailoredResume, &tailored)

	var pruned types.PrunedResume
	if decodeArtifact(ws, pipeline.KeyPrunedResume, &pruned) {
		if err := writeText(dir, "resume.md", pruned.Markdown); err != nil {
			return err
		}
		if haveTailored {
			if err := writeText(dir, "resume_before_prune.md", tailored.Markdown); err != nil {
				return err
			}
		}
	} else if haveTailored {
		if err := writeText(dir, "resume.md", tailored.Markdown); err != nil {
			return err
		}
	}

	var letter types.CoverLetter
	if decodeArtifact(ws, pipeline.KeyCoverLetter, &letter) {
		if err := writeText(dir, "cover_letter.md", letter.Markdown); err != nil {
			return err
		}
	}

	var results []types.MatchResult
	if decodeArtifact(ws, pipeline.KeyMatchResults, &results) {
		if err := writeJSON(dir, "match_results.json", results); err != nil {
			return err
		}
	}

	var report types.FactCheckReport
	if decodeArtifact(ws, pipeline.KeyFactCheckReport, &report) {
		if err := writeJSON(dir, "fact_check_report.json", report); err != nil {
			return err
		}
	}

	return nil
}

func writeText(dir, name, content string) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func writeJSON(dir, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return writeText(dir, name, string(data))
}
