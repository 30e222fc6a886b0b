package resume

import (
	"fmt"
	"strings"

	"github.com/jonathan/job-tailor/internal/types"
)

// minKeywordLength filters trivial tokens when deriving keywords from text.
const minKeywordLength = 4

// Normalize assigns stable sequential IDs and derives keyword sets for
// entries that do not declare any. Idempotent.
func Normalize(master *types.MasterResume) {
	for i := range master.Entries {
		entry := &master.Entries[i]
		if entry.ID == "" {
			entry.ID = fmt.Sprintf("exp_%03d", i+1)
		}
		if len(entry.Keywords) == 0 {
			entry.Keywords = deriveKeywords(entry)
		}
	}
}

// deriveKeywords builds a lowercase keyword set from the entry's skills,
// position title, and body text.
func deriveKeywords(entry *types.ExperienceEntry) []string {
	seen := make(map[string]bool)
	var keywords []string

	add := func(word string) {
		word = strings.ToLower(strings.Trim(word, ".,;:()[]\"'"))
		if len(word) < minKeywordLength || seen[word] {
			return
		}
		seen[word] = true
		keywords = append(keywords, word)
	}

	for _, skill := range entry.Skills {
		add(skill)
	}
	for _, word := range strings.Fields(entry.Position) {
		add(word)
	}
	for _, word := range strings.Fields(entry.Text) {
		add(word)
	}

	return keywords
}
