package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// File and environment conventions for layered resolution.
const (
	projectConfigName = "tailor"
	userConfigSubdir  = ".config/tailor"
	envPrefix         = "TAILOR"
)

// Default stage timeouts. Research and writing stages call the LLM with
// larger contexts and get more headroom.
const (
	defaultStageTimeout   = 2 * time.Minute
	defaultWritingTimeout = 4 * time.Minute
)

// Resolve builds the run configuration by merging, in order: defaults, the
// project config file (tailor.yaml in the working directory), the user
// config file (~/.config/tailor/tailor.yaml), and TAILOR_* environment
// variables. Later sources override earlier ones key by key. The result is
// validated before being returned; failures surface as *ConfigError.
func Resolve() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Project file. Absence is fine; parse errors are not.
	v.SetConfigName(projectConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, &ConfigError{Message: err.Error()}
		}
	}

	// User file merges over the project file.
	if home, err := os.UserHomeDir(); err == nil {
		v.SetConfigFile(filepath.Join(home, userConfigSubdir, projectConfigName+".yaml"))
		if err := v.MergeInConfig(); err != nil && !os.IsNotExist(err) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, &ConfigError{Message: err.Error()}
			}
		}
	}

	// Environment variables win over files: TAILOR_API_KEY,
	// TAILOR_MATCH_PARALLELISM, etc.
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Common provider key fallback when TAILOR_API_KEY is unset.
	if v.GetString("api_key") == "" {
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			v.Set("api_key", key)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{Message: err.Error()}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in defaults as a resolved Config without reading
// files or the environment. Used by tests and by callers that assemble
// configuration programmatically.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults are statically known; unmarshal cannot fail on them.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", "gemini")
	// Keys without meaningful defaults still need to be registered so
	// environment overrides are picked up during unmarshal.
	v.SetDefault("api_key", "")
	v.SetDefault("database_url", "")
	v.SetDefault("research_seeds", []string{})
	v.SetDefault("use_browser", false)
	v.SetDefault("verbose", false)
	v.SetDefault("persist_every_stage", true)

	v.SetDefault("match.weights.keyword", 0.40)
	v.SetDefault("match.weights.skill_overlap", 0.30)
	v.SetDefault("match.weights.relevance", 0.20)
	v.SetDefault("match.weights.recency", 0.10)
	v.SetDefault("match.gap_floor", 30.0)
	v.SetDefault("match.recency_horizon_years", 8.0)
	v.SetDefault("match.parallelism", 4)

	v.SetDefault("rate_limit.requests_per_minute", 30)
	v.SetDefault("rate_limit.burst", 5)

	for stage, timeout := range map[string]time.Duration{
		"parse_jd":         defaultStageTimeout,
		"research_company": defaultWritingTimeout,
		"match":            defaultStageTimeout,
		"tailor_resume":    defaultWritingTimeout,
		"cover_letter":     defaultWritingTimeout,
		"fact_check":       defaultStageTimeout,
		"prune":            defaultStageTimeout,
	} {
		v.SetDefault("stages."+stage+".enabled", true)
		v.SetDefault("stages."+stage+".timeout", timeout)
		v.SetDefault("stages."+stage+".max_retries", 2)
	}
}
