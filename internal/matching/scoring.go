package matching

import (
	"strings"
	"time"

	"github.com/jonathan/job-tailor/internal/types"
)

// monthLayout is the resolution experience dates carry.
const monthLayout = "2006-01"

// recencyFloor is the score an entry decays to at the horizon. Entries older
// than the horizon stay at the floor rather than decaying further.
const recencyFloor = 40.0

// keywordScore returns the fraction of requirement keywords found in the
// entry's keyword set, on the 0-100 scale, along with the matched keywords.
// Matching is case-insensitive. A requirement without keywords scores 0.
func keywordScore(req types.JobRequirement, entry types.ExperienceEntry) (float64, []string) {
	if len(req.Keywords) == 0 {
		return 0, nil
	}

	entrySet := lowerSet(entry.Keywords)
	var matched []string
	for _, kw := range req.Keywords {
		if entrySet[strings.ToLower(kw)] {
			matched = append(matched, kw)
		}
	}

	return float64(len(matched)) / float64(len(req.Keywords)) * 100, matched
}

// skillOverlapScore returns the Jaccard index of the two skill sets on the
// 0-100 scale. Two empty sets score 0, not 100; no stated skills is absence
// of evidence, not a perfect match.
func skillOverlapScore(req types.JobRequirement, entry types.ExperienceEntry) float64 {
	reqSet := lowerSet(req.Skills)
	entrySet := lowerSet(entry.Skills)
	if len(reqSet) == 0 || len(entrySet) == 0 {
		return 0
	}

	intersection := 0
	for skill := range reqSet {
		if entrySet[skill] {
			intersection++
		}
	}
	union := len(reqSet) + len(entrySet) - intersection

	return float64(intersection) / float64(union) * 100
}

// recencyScore decays linearly from 100 for current work to recencyFloor at
// the horizon, measured from the entry's end date. A current position (empty
// end date) always scores 100. Unparseable dates score the floor.
func recencyScore(entry types.ExperienceEntry, now time.Time, horizonYears float64) float64 {
	if entry.EndDate == "" {
		return 100
	}

	end, err := time.Parse(monthLayout, entry.EndDate)
	if err != nil {
		return recencyFloor
	}

	ageYears := now.Sub(end).Hours() / (24 * 365.25)
	if ageYears <= 0 {
		return 100
	}
	if ageYears >= horizonYears {
		return recencyFloor
	}

	return 100 - (100-recencyFloor)*(ageYears/horizonYears)
}

// recencyRank orders entries for tie-breaking: current positions first, then
// later end dates. Returns a sortable key where higher means more recent.
func recencyRank(entry types.ExperienceEntry) string {
	if entry.EndDate == "" {
		return "9999-99"
	}
	return entry.EndDate
}

func lowerSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.ToLower(strings.TrimSpace(item))] = true
	}
	delete(set, "")
	return set
}
