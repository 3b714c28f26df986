// Package config loads the pipeline's hierarchical configuration document
// (spec.md §6). It follows the layering `sawpanic-cryptorun`'s
// ProviderConfig uses: a YAML document for structure, environment variables
// layered on top for secrets and per-deployment overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration document. Its sections mirror
// spec.md §6, plus a redis section for the alert throttler's client.
type Config struct {
	Database   DatabaseConfig              `yaml:"database"`
	Redis      RedisConfig                 `yaml:"redis"`
	Collectors map[string]CollectorConfig  `yaml:"collectors"`
	Pipeline   PipelineConfig              `yaml:"pipeline"`
	Health     HealthConfig                `yaml:"health"`
	Alerting   AlertingConfig              `yaml:"alerting"`
	Identity   IdentityConfig              `yaml:"identity"`
	Retention  RetentionConfig             `yaml:"retention"`
}

// RedisConfig configures the Redis client the alert throttler uses for its
// SETNX-with-TTL keys (spec.md §4.7).
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
}

// DatabaseConfig configures the Postgres connection pool.
type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Database     string `yaml:"database"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	PoolSize     int    `yaml:"pool_size"`
	MaxOverflow  int    `yaml:"max_overflow"`
	PoolTimeoutS int    `yaml:"pool_timeout"`
	PoolRecycleS int    `yaml:"pool_recycle"`
}

// CollectorConfig configures one named source collector.
type CollectorConfig struct {
	Enabled                       bool    `yaml:"enabled"`
	BaseURL                       string  `yaml:"base_url"`
	RateLimitRPS                  float64 `yaml:"rate_limit_rps"`
	RateLimitRPH                  float64 `yaml:"rate_limit_rph"`
	TimeoutS                      int     `yaml:"timeout_s"`
	RetryMaxAttempts              int     `yaml:"retry_max_attempts"`
	RetryBackoffS                 float64 `yaml:"retry_backoff_s"`
	CircuitBreakerFailureThreshold int    `yaml:"circuit_breaker_failure_threshold"`
	CircuitBreakerCooldownS       int     `yaml:"circuit_breaker_cooldown_s"`
	APIKeyEnv                     string  `yaml:"api_key_env"`
}

// ErrorRateThresholds bounds the per-zone error rate a run tolerates before
// being marked partial (spec.md §4.6).
type ErrorRateThresholds struct {
	Raw     float64 `yaml:"raw"`
	Staging float64 `yaml:"staging"`
	Curated float64 `yaml:"curated"`
}

// PipelineConfig configures zone enablement and worker-pool sizing.
type PipelineConfig struct {
	RawEnabled          bool                `yaml:"raw_enabled"`
	StagingEnabled      bool                `yaml:"staging_enabled"`
	CuratedEnabled      bool                `yaml:"curated_enabled"`
	ZoneWorkerPoolSize  int                 `yaml:"zone_worker_pool_size"`
	QueueCapacity       int                 `yaml:"queue_capacity"`
	ErrorRateThresholds ErrorRateThresholds `yaml:"error_rate_thresholds"`
	// TimingGraceEnabled is loaded from timing_grace_enabled; no staging code
	// reads it, so no timing-grace filter is applied whatever its value.
	TimingGraceEnabled bool `yaml:"timing_grace_enabled"`
	// SteamBookPctThreshold and SteamWindowS implement the steam-detection
	// configuration SPEC_FULL.md §12 resolves as configurable rather than
	// hardcoded.
	SteamBookPctThreshold float64 `yaml:"steam_book_pct_threshold"`
	SteamWindowS          int     `yaml:"steam_window_s"`
	// ClockSkewToleranceS bounds how far into the future an odds_timestamp
	// may sit before staging rejects it (spec.md §3 invariant, §8 testable
	// property #6). Zero falls back to the spec's 60s default in New.
	ClockSkewToleranceS int `yaml:"clock_skew_tolerance_s"`
}

// HealthConfig configures the collection-health tracker (spec.md §4.7).
type HealthConfig struct {
	RingBufferSize          int     `yaml:"ring_buffer_size"`
	PatternIntervalS        int     `yaml:"pattern_interval_s"`
	PredictionIntervalS     int     `yaml:"prediction_interval_s"`
	DegradationSuccessRatio float64 `yaml:"degradation_success_ratio"`
	DegradationLatencyRatio float64 `yaml:"degradation_latency_ratio"`
}

// AlertSinkConfig configures one alert sink.
type AlertSinkConfig struct {
	Type       string `yaml:"type"`
	WebhookURL string `yaml:"webhook_url,omitempty"`
	WebhookEnv string `yaml:"webhook_url_env,omitempty"`
	SlackEnv   string `yaml:"slack_webhook_env,omitempty"`
	SMTPHost    string `yaml:"smtp_host,omitempty"`
	FromAddress string `yaml:"from_address,omitempty"`
	ToAddress   string `yaml:"to_address,omitempty"`
}

// ThrottleBySeverity bounds alert frequency per severity (spec.md §4.7/§6).
type ThrottleBySeverity struct {
	InfoS     int `yaml:"info"`
	WarningS  int `yaml:"warning"`
	CriticalS int `yaml:"critical"`
}

// AlertingConfig configures outbound alert sinks and throttling.
type AlertingConfig struct {
	Sinks             []AlertSinkConfig  `yaml:"sinks"`
	ThrottleBySeverity ThrottleBySeverity `yaml:"throttle_by_severity"`
}

// IdentityConfig configures the game/sportsbook resolver.
type IdentityConfig struct {
	MappingCacheSize  int  `yaml:"mapping_cache_size"`
	FuzzyMatchEnabled bool `yaml:"fuzzy_match_enabled"`
}

// RetentionConfig configures how long raw payloads and attempt logs persist.
type RetentionConfig struct {
	RawDays      int `yaml:"raw_days"`
	AttemptsDays int `yaml:"attempts_days"`
}

// Load reads path, unmarshals it into a Config, and layers environment
// overrides on top per applyEnvOverrides. Matches the teacher's layering of
// env vars over whatever static defaults a service carries.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid: %w", err)
	}
	return &cfg, nil
}

// applyEnvOverrides layers secret/env-sourced values on top of the YAML
// document. Credentials are never read from the YAML file itself (spec.md
// §6: "credentials must never be embedded in configuration files").
func applyEnvOverrides(cfg *Config) {
	cfg.Database.Password = os.Getenv("MLBCORE_DB_PASSWORD")
	if host := os.Getenv("MLBCORE_DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	cfg.Database.Port = getEnvInt("MLBCORE_DB_PORT", cfg.Database.Port)

	cfg.Redis.Addr = getEnv("MLBCORE_REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = os.Getenv("MLBCORE_REDIS_PASSWORD")

	for name, c := range cfg.Collectors {
		if c.APIKeyEnv == "" {
			continue
		}
		// Collector-specific API keys are resolved lazily by the collector
		// itself via os.Getenv(c.APIKeyEnv); nothing to merge into the struct.
		cfg.Collectors[name] = c
	}

	for i, sink := range cfg.Alerting.Sinks {
		if sink.WebhookEnv != "" {
			cfg.Alerting.Sinks[i].WebhookURL = getEnv(sink.WebhookEnv, sink.WebhookURL)
		}
		if sink.SlackEnv != "" {
			cfg.Alerting.Sinks[i].WebhookURL = getEnv(sink.SlackEnv, cfg.Alerting.Sinks[i].WebhookURL)
		}
	}
}

// Validate checks the config for the structural requirements spec.md §7
// treats as a fatal `configuration_error`.
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database.database is required")
	}
	if c.Pipeline.ZoneWorkerPoolSize <= 0 {
		return fmt.Errorf("pipeline.zone_worker_pool_size must be > 0")
	}
	if c.Pipeline.QueueCapacity <= 0 {
		return fmt.Errorf("pipeline.queue_capacity must be > 0")
	}
	for name, c := range c.Collectors {
		if !c.Enabled {
			continue
		}
		if c.BaseURL == "" {
			return fmt.Errorf("collectors[%s].base_url is required when enabled", name)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intValue int
		if _, err := fmt.Sscanf(value, "%d", &intValue); err == nil {
			return intValue
		}
	}
	return defaultValue
}
