// Package matching scores job requirements against the candidate's
// experience entries using a weighted rubric. Every requirement receives
// exactly one result: its best-fitting entry, or a gap when nothing clears
// the floor. Given the same inputs and similarity scores the output is
// deterministic.
package matching

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-tailor/internal/config"
	"github.com/jonathan/job-tailor/internal/types"
)

// Matcher scores requirements against experience entries.
type Matcher struct {
	weights      config.Weights
	horizonYears float64
	gapFloor     float64
	parallelism  int
	sim          Similarity
	now          time.Time
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithClock fixes the reference time used for recency scoring.
func WithClock(now time.Time) Option {
	return func(m *Matcher) {
		m.now = now
	}
}

// NewMatcher builds a Matcher from the resolved match configuration and a
// similarity scorer. The similarity scorer may be nil, in which case the
// relevance component contributes zero.
func NewMatcher(cfg config.MatchConfig, sim Similarity, opts ...Option) *Matcher {
	m := &Matcher{
		weights:      cfg.Weights,
		horizonYears: cfg.RecencyHorizonYears,
		gapFloor:     cfg.GapFloor,
		parallelism:  cfg.Parallelism,
		sim:          sim,
		now:          time.Now(),
	}
	if m.parallelism < 1 {
		m.parallelism = 1
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match scores every requirement against every entry and returns one result
// per requirement, in requirement order. With no entries every requirement
// is reported as a gap.
func (m *Matcher) Match(ctx context.Context, reqs []types.JobRequirement, entries []types.ExperienceEntry) ([]types.MatchResult, error) {
	results := make([]types.MatchResult, len(reqs))

	if len(entries) == 0 {
		for i, req := range reqs {
			results[i] = gapResult(req)
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.parallelism)

	for i, req := range reqs {
		g.Go(func() error {
			result, err := m.matchOne(gctx, req, entries)
			if err != nil {
				return fmt.Errorf("requirement %s: %w", req.ID, err)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// matchOne scores one requirement against all entries and keeps the best.
func (m *Matcher) matchOne(ctx context.Context, req types.JobRequirement, entries []types.ExperienceEntry) (types.MatchResult, error) {
	var best types.MatchResult
	var bestEntry *types.ExperienceEntry

	for i := range entries {
		entry := &entries[i]

		candidate, err := m.score(ctx, req, *entry)
		if err != nil {
			return types.MatchResult{}, err
		}

		if bestEntry == nil || better(candidate, *entry, best, *bestEntry) {
			best = candidate
			bestEntry = entry
		}
	}

	if best.Score < m.gapFloor {
		best.EntryID = ""
		best.Bucket = types.BucketGap
		best.MatchedKeywords = nil
		best.Notes = gapNote(req)
		return best, nil
	}

	best.Notes = coverageNote(req, *bestEntry, best)
	return best, nil
}

// score computes the weighted rubric score for one requirement/entry pair.
func (m *Matcher) score(ctx context.Context, req types.JobRequirement, entry types.ExperienceEntry) (types.MatchResult, error) {
	kwScore, matched := keywordScore(req, entry)

	sub := types.SubScores{
		Keyword:      kwScore,
		SkillOverlap: skillOverlapScore(req, entry),
		Recency:      recencyScore(entry, m.now, m.horizonYears),
	}

	if m.sim != nil {
		relevance, err := m.sim.Score(ctx, req.Text, entry.Text)
		if err != nil {
			return types.MatchResult{}, fmt.Errorf("similarity scoring failed: %w", err)
		}
		sub.Relevance = relevance
	}

	total := m.weights.Keyword*sub.Keyword +
		m.weights.SkillOverlap*sub.SkillOverlap +
		m.weights.Relevance*sub.Relevance +
		m.weights.Recency*sub.Recency

	return types.MatchResult{
		RequirementID:   req.ID,
		EntryID:         entry.ID,
		Score:           total,
		Bucket:          types.BucketFor(total),
		SubScores:       sub,
		MatchedKeywords: matched,
	}, nil
}

// better reports whether candidate beats the current best. Ties go to the
// more recent entry, then to the lexically lowest entry ID.
func better(candidate types.MatchResult, candidateEntry types.ExperienceEntry, best types.MatchResult, bestEntry types.ExperienceEntry) bool {
	if candidate.Score != best.Score {
		return candidate.Score > best.Score
	}
	cr, br := recencyRank(candidateEntry), recencyRank(bestEntry)
	if cr != br {
		return cr > br
	}
	return candidateEntry.ID < bestEntry.ID
}

func gapResult(req types.JobRequirement) types.MatchResult {
	return types.MatchResult{
		RequirementID: req.ID,
		Score:         0,
		Bucket:        types.BucketGap,
		Notes:         gapNote(req),
	}
}

func gapNote(req types.JobRequirement) string {
	return fmt.Sprintf("no experience covers %q", truncate(req.Text, 60))
}

func coverageNote(req types.JobRequirement, entry types.ExperienceEntry, result types.MatchResult) string {
	where := entry.Position
	if entry.Company != "" {
		where += " at " + entry.Company
	}
	note := fmt.Sprintf("%s evidence in %s", result.Bucket, where)
	if n := len(result.MatchedKeywords); n > 0 {
		note += fmt.Sprintf(" (%d of %d keywords)", n, len(req.Keywords))
	}
	return note
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	// Back up to a rune boundary so a multi-byte character is never split.
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
