package config

import (
	"os"
	"strconv"
	"strings"

	"abstats/domain/hypothesis"
	"abstats/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Permutation PermutationConfig
	Analysis    AnalysisConfig
	Logging     LoggingConfig
}

// PermutationConfig holds resampling defaults for permutation tests
type PermutationConfig struct {
	Reps          int
	Seed          int64
	ProgressEvery int // 0 selects reps/100
}

// AnalysisConfig holds batch analysis settings
type AnalysisConfig struct {
	Workers             int
	DefaultAlternative  hypothesis.Alternative
	CrossCheckTolerance float64
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	permutationConfig, err := loadPermutationConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load permutation configuration")
	}
	config.Permutation = *permutationConfig

	analysisConfig, err := loadAnalysisConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load analysis configuration")
	}
	config.Analysis = *analysisConfig

	config.Logging = *loadLoggingConfig()

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Default returns the configuration used when no environment is set
func Default() *Config {
	return &Config{
		Permutation: PermutationConfig{Reps: 10000, Seed: 42},
		Analysis:    AnalysisConfig{Workers: 4, CrossCheckTolerance: 1e-6},
		Logging:     LoggingConfig{Level: "info", Format: "text"},
	}
}

func loadPermutationConfig() (*PermutationConfig, error) {
	reps, err := getEnvIntOrDefault("ABSTATS_PERMUTATION_REPS", 10000)
	if err != nil {
		return nil, err
	}
	seed, err := getEnvIntOrDefault("ABSTATS_PERMUTATION_SEED", 42)
	if err != nil {
		return nil, err
	}
	every, err := getEnvIntOrDefault("ABSTATS_PROGRESS_EVERY", 0)
	if err != nil {
		return nil, err
	}

	return &PermutationConfig{
		Reps:          reps,
		Seed:          int64(seed),
		ProgressEvery: every,
	}, nil
}

func loadAnalysisConfig() (*AnalysisConfig, error) {
	workers, err := getEnvIntOrDefault("ABSTATS_WORKERS", 4)
	if err != nil {
		return nil, err
	}
	tolerance, err := getEnvFloatOrDefault("ABSTATS_CROSSCHECK_TOLERANCE", 1e-6)
	if err != nil {
		return nil, err
	}
	alt, err := hypothesis.ParseAlternative(getEnvOrDefault("ABSTATS_DEFAULT_ALTERNATIVE", "two-sided"))
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrap(err, "ABSTATS_DEFAULT_ALTERNATIVE"))
	}

	return &AnalysisConfig{
		Workers:             workers,
		DefaultAlternative:  alt,
		CrossCheckTolerance: tolerance,
	}, nil
}

func loadLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		Level:  strings.ToLower(getEnvOrDefault("ABSTATS_LOG_LEVEL", "info")),
		Format: strings.ToLower(getEnvOrDefault("ABSTATS_LOG_FORMAT", "text")),
	}
}

func validateConfig(config *Config) error {
	if config.Permutation.Reps < 1 {
		return errors.ConfigInvalid("permutation reps must be at least 1")
	}
	if config.Permutation.ProgressEvery < 0 {
		return errors.ConfigInvalid("progress interval must not be negative")
	}
	if config.Analysis.Workers < 1 {
		return errors.ConfigInvalid("workers must be at least 1")
	}
	if !(config.Analysis.CrossCheckTolerance >= 0) {
		return errors.ConfigInvalid("cross-check tolerance must be a non-negative number")
	}
	switch config.Logging.Format {
	case "text", "json":
	default:
		return errors.ConfigInvalid("log format must be text or json")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) (int, error) {
	value := getEnvOrDefault(key, "")
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Newf(errors.CodeConfigInvalid, "%s=%q is not an integer", key, value)
	}
	return intValue, nil
}

func getEnvFloatOrDefault(key string, defaultValue float64) (float64, error) {
	value := getEnvOrDefault(key, "")
	if value == "" {
		return defaultValue, nil
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.Newf(errors.CodeConfigInvalid, "%s=%q is not a number", key, value)
	}
	return floatValue, nil
}
