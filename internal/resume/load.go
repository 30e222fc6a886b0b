// Package resume loads the candidate's master resume from structured
// markdown into experience entries. The expected shape is one H2 section per
// position:
//
//	# Jane Doe
//
//	## Senior Engineer — Acme Corp (2021-03 – present)
//	Skills: Go, Kubernetes, PostgreSQL
//	- Led the migration of the billing monolith to services
//	- Cut deploy time by 80% with a new CI pipeline
//
// Entries are read-only after load.
package resume

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/jonathan/job-tailor/internal/types"
)

// headingRe matches "## Position — Company (start – end)". Both em-dash and
// hyphen separators are accepted; the company and date range are optional.
var headingRe = regexp.MustCompile(`^##\s+(.+?)(?:\s+[—-]\s+(.+?))?(?:\s+\((\d{4}-\d{2})\s*[—–-]\s*([\w-]+)\))?\s*$`)

// Load reads and parses the master resume file at path.
func Load(path string) (*types.MasterResume, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Message: "failed to read file", Cause: err}
	}

	master, err := Parse(string(data))
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.Path = path
		}
		return nil, err
	}
	return master, nil
}

// Parse parses master resume markdown content.
func Parse(content string) (*types.MasterResume, error) {
	master := &types.MasterResume{RawText: content}

	var current *types.ExperienceEntry
	var body strings.Builder
	lineNo := 0

	flush := func() {
		if current == nil {
			return
		}
		current.Text = strings.TrimSpace(body.String())
		master.Entries = append(master.Entries, *current)
		current = nil
		body.Reset()
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "# ") && !strings.HasPrefix(trimmed, "## "):
			if master.CandidateName == "" {
				master.CandidateName = strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
			}

		case strings.HasPrefix(trimmed, "## "):
			flush()
			entry, err := parseHeading(trimmed, lineNo)
			if err != nil {
				return nil, err
			}
			current = entry

		case current != nil && strings.HasPrefix(trimmed, "Skills:"):
			current.Skills = splitCommaList(strings.TrimPrefix(trimmed, "Skills:"))

		case current != nil && trimmed != "":
			body.WriteString(trimmed)
			body.WriteString("\n")
		}
	}
	flush()

	if len(master.Entries) == 0 {
		return nil, &ParseError{Message: "no experience sections found (expected '## Position — Company (YYYY-MM – YYYY-MM)' headings)"}
	}

	Normalize(master)
	return master, nil
}

func parseHeading(line string, lineNo int) (*types.ExperienceEntry, error) {
	m := headingRe.FindStringSubmatch(line)
	if m == nil || strings.TrimSpace(m[1]) == "" {
		return nil, &ParseError{Line: lineNo, Message: "malformed experience heading"}
	}

	entry := &types.ExperienceEntry{
		Position:  strings.TrimSpace(m[1]),
		Company:   strings.TrimSpace(m[2]),
		StartDate: m[3],
	}
	if end := strings.TrimSpace(m[4]); end != "" && !strings.EqualFold(end, "present") {
		entry.EndDate = end
	}
	return entry, nil
}

func splitCommaList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
