package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Analyzer modes
const (
	ModeInProcess  = "inprocess"
	ModeSubprocess = "subprocess"
)

// Config holds all configuration for the host backend
type Config struct {
	// Server settings
	Port           string   `json:"port"`
	Host           string   `json:"host"`
	AllowedOrigins []string `json:"allowed_origins"`

	// Analyzer settings
	AnalyzerMode    string        `json:"analyzer_mode"` // "inprocess" or "subprocess"
	AnalyzerPath    string        `json:"analyzer_path"`
	AnalyzerTimeout time.Duration `json:"analyzer_timeout"`

	// Summary settings
	SummaryLanguage     string `json:"summary_language"`
	SummarySentences    int    `json:"summary_sentences"`
	SummaryMaxSentences int    `json:"summary_max_sentences"` // in-process only, 0 disables

	// Cache settings
	CacheType          string `json:"cache_type"`     // only "memory"
	CacheDuration      int    `json:"cache_duration"` // in minutes
	CacheSweepSchedule string `json:"cache_sweep_schedule"`

	// Logging
	LogLevel string `json:"log_level"`
	LogFile  string `json:"-"` // Don't expose paths in JSON
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "5001")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("ANALYZER_MODE", ModeInProcess)
	v.SetDefault("ANALYZER_PATH", "note-analyze")
	v.SetDefault("ANALYZER_TIMEOUT_SECONDS", 30)
	v.SetDefault("SUMMARY_LANGUAGE", "english")
	v.SetDefault("SUMMARY_SENTENCES", 2)
	v.SetDefault("SUMMARY_MAX_SENTENCES", 1000)
	v.SetDefault("CACHE_TYPE", "memory")
	v.SetDefault("CACHE_DURATION_MINUTES", 60)
	v.SetDefault("CACHE_SWEEP_SCHEDULE", "@every 10m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")

	config := &Config{
		Port:                v.GetString("PORT"),
		Host:                v.GetString("HOST"),
		AllowedOrigins:      parseStringSlice(v.GetString("ALLOWED_ORIGINS")),
		AnalyzerMode:        strings.ToLower(v.GetString("ANALYZER_MODE")),
		AnalyzerPath:        v.GetString("ANALYZER_PATH"),
		AnalyzerTimeout:     time.Duration(v.GetInt("ANALYZER_TIMEOUT_SECONDS")) * time.Second,
		SummaryLanguage:     v.GetString("SUMMARY_LANGUAGE"),
		SummarySentences:    v.GetInt("SUMMARY_SENTENCES"),
		SummaryMaxSentences: v.GetInt("SUMMARY_MAX_SENTENCES"),
		CacheType:           v.GetString("CACHE_TYPE"),
		CacheDuration:       v.GetInt("CACHE_DURATION_MINUTES"),
		CacheSweepSchedule:  v.GetString("CACHE_SWEEP_SCHEDULE"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		LogFile:             v.GetString("LOG_FILE"),
	}

	return config, config.validate()
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// CacheTTL returns the cache duration
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheDuration) * time.Minute
}

// validate checks configuration values
func (c *Config) validate() error {
	switch c.AnalyzerMode {
	case ModeInProcess:
	case ModeSubprocess:
		if c.AnalyzerPath == "" {
			return &ConfigError{Field: "ANALYZER_PATH", Message: "required in subprocess mode"}
		}
		if c.AnalyzerTimeout <= 0 {
			return &ConfigError{Field: "ANALYZER_TIMEOUT_SECONDS", Message: "must be positive"}
		}
	default:
		return &ConfigError{Field: "ANALYZER_MODE", Message: "must be inprocess or subprocess"}
	}
	if c.SummarySentences <= 0 {
		return &ConfigError{Field: "SUMMARY_SENTENCES", Message: "must be positive"}
	}
	if c.SummaryMaxSentences < 0 {
		return &ConfigError{Field: "SUMMARY_MAX_SENTENCES", Message: "must not be negative"}
	}
	if c.CacheDuration <= 0 {
		return &ConfigError{Field: "CACHE_DURATION_MINUTES", Message: "must be positive"}
	}
	if _, err := cron.ParseStandard(c.CacheSweepSchedule); err != nil {
		return &ConfigError{Field: "CACHE_SWEEP_SCHEDULE", Message: err.Error()}
	}
	return nil
}

// parseStringSlice parses comma-separated string into slice
func parseStringSlice(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
