// Package config provides layered configuration loading and validation for
// the tailoring pipeline. Sources are merged in order: built-in defaults,
// project config file, user config file, environment variables. The resolved
// Config is a frozen snapshot for the run; stages receive it read-only.
package config

import (
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
)

// ConfigError reports a fatal configuration problem detected at resolve
// time, before any stage runs.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// Weights holds the requirement-matching rubric weights. They must sum to 1.0.
type Weights struct {
	Keyword      float64 `mapstructure:"keyword" json:"keyword" validate:"gte=0,lte=1"`
	SkillOverlap float64 `mapstructure:"skill_overlap" json:"skill_overlap" validate:"gte=0,lte=1"`
	Relevance    float64 `mapstructure:"relevance" json:"relevance" validate:"gte=0,lte=1"`
	Recency      float64 `mapstructure:"recency" json:"recency" validate:"gte=0,lte=1"`
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Keyword + w.SkillOverlap + w.Relevance + w.Recency
}

// MatchConfig configures the requirement matcher.
type MatchConfig struct {
	Weights             Weights `mapstructure:"weights" json:"weights"`
	GapFloor            float64 `mapstructure:"gap_floor" json:"gap_floor" validate:"gte=0,lte=100"`
	RecencyHorizonYears float64 `mapstructure:"recency_horizon_years" json:"recency_horizon_years" validate:"gt=0"`
	Parallelism         int     `mapstructure:"parallelism" json:"parallelism" validate:"gte=1"`
}

// StageConfig configures one pipeline stage.
type StageConfig struct {
	Enabled    bool          `mapstructure:"enabled" json:"enabled"`
	Timeout    time.Duration `mapstructure:"timeout" json:"timeout" validate:"gt=0"`
	MaxRetries int           `mapstructure:"max_retries" json:"max_retries" validate:"gte=0"`
}

// StagesConfig holds per-stage settings keyed by pipeline position.
type StagesConfig struct {
	ParseJD         StageConfig `mapstructure:"parse_jd" json:"parse_jd"`
	ResearchCompany StageConfig `mapstructure:"research_company" json:"research_company"`
	Match           StageConfig `mapstructure:"match" json:"match"`
	TailorResume    StageConfig `mapstructure:"tailor_resume" json:"tailor_resume"`
	CoverLetter     StageConfig `mapstructure:"cover_letter" json:"cover_letter"`
	FactCheck       StageConfig `mapstructure:"fact_check" json:"fact_check"`
	Prune           StageConfig `mapstructure:"prune" json:"prune"`
}

// ForStage returns the settings for the named pipeline stage.
func (s *StagesConfig) ForStage(name string) (StageConfig, bool) {
	switch name {
	case "parse_jd":
		return s.ParseJD, true
	case "research_company":
		return s.ResearchCompany, true
	case "match_requirements":
		return s.Match, true
	case "tailor_resume":
		return s.TailorResume, true
	case "write_cover_letter":
		return s.CoverLetter, true
	case "fact_check":
		return s.FactCheck, true
	case "prune":
		return s.Prune, true
	}
	return StageConfig{}, false
}

// RateLimitConfig bounds outbound provider requests. The limit is shared
// per provider across concurrent runs, not per run.
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute" json:"requests_per_minute" validate:"gte=1"`
	Burst             int `mapstructure:"burst" json:"burst" validate:"gte=1"`
}

// Config is the resolved, immutable settings object for one run.
type Config struct {
	Provider string `mapstructure:"provider" json:"provider" validate:"required,oneof=gemini"`
	APIKey   string `mapstructure:"api_key" json:"-" validate:"required"`

	ResearchSeeds []string `mapstructure:"research_seeds" json:"research_seeds,omitempty"`
	UseBrowser    bool     `mapstructure:"use_browser" json:"use_browser"`
	Verbose       bool     `mapstructure:"verbose" json:"verbose"`

	// PersistEveryStage writes workflow state after each stage for
	// crash-resumability; when false only the final state is written.
	PersistEveryStage bool `mapstructure:"persist_every_stage" json:"persist_every_stage"`

	// DatabaseURL enables the optional Postgres artifact mirror.
	DatabaseURL string `mapstructure:"database_url" json:"-"`

	Stages    StagesConfig    `mapstructure:"stages" json:"stages"`
	Match     MatchConfig     `mapstructure:"match" json:"match"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" json:"rate_limit"`
}

// weightSumTolerance absorbs float accumulation noise when checking the
// weights sum to 1.0.
const weightSumTolerance = 1e-9

// Validate checks the resolved configuration. It returns a *ConfigError for
// the first violation found.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			first := errs[0]
			return &ConfigError{
				Field:   first.Namespace(),
				Message: fmt.Sprintf("failed %q validation (value %v)", first.Tag(), first.Value()),
			}
		}
		return &ConfigError{Message: err.Error()}
	}

	if sum := c.Match.Weights.Sum(); math.Abs(sum-1.0) > weightSumTolerance {
		return &ConfigError{
			Field:   "match.weights",
			Message: fmt.Sprintf("weights must sum to 1.0, got %v", sum),
		}
	}

	return nil
}
