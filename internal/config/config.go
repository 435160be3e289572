package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	Environment string `toml:"environment"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	PostgresUser   string `toml:"postgres_user"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// prometheus
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	AllowedOrigins              []string `toml:"allowed_origins"`
	AuthRateLimitAllowedPerMin  int      `toml:"auth_rate_limit_allowed_per_min"`
	SessionTTLHours             int      `toml:"session_ttl_hours"`
	PasswordResetTokenTTLMinute int      `toml:"password_reset_token_ttl_minutes"`

	// media: "disk" or "gcs"
	MediaBackend        string `toml:"media_backend"`
	MediaDiskRootPath   string `toml:"media_disk_root_path"`
	MediaPublicBaseURL  string `toml:"media_public_base_url"`
	MediaGCSBucket      string `toml:"media_gcs_bucket"`
	MediaMaxUploadBytes int64  `toml:"media_max_upload_bytes"`

	// projection
	GeminiBaseURL            string `toml:"gemini_base_url"`
	GeminiModel              string `toml:"gemini_model"`
	ProjectionPlaceholderURL string `toml:"projection_placeholder_url"`
	ProjectionCacheSizeMB    int    `toml:"projection_cache_size_mb"`
	ProjectionCacheTTLMinute int    `toml:"projection_cache_ttl_minutes"`

	// insights
	DashboardWorkoutsLimit int    `toml:"dashboard_workouts_limit"`
	MotivationCsvPath      string `toml:"motivation_csv_path"`
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func (c *Config) PasswordResetTokenTTL() time.Duration {
	return time.Duration(c.PasswordResetTokenTTLMinute) * time.Minute
}

func (c *Config) ProjectionCacheTTL() time.Duration {
	return time.Duration(c.ProjectionCacheTTLMinute) * time.Minute
}

// applyDefaults fills in the values a minimal config file may leave out.
func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.AuthRateLimitAllowedPerMin == 0 {
		c.AuthRateLimitAllowedPerMin = 10
	}
	if c.SessionTTLHours == 0 {
		c.SessionTTLHours = 24 * 7
	}
	if c.PasswordResetTokenTTLMinute == 0 {
		c.PasswordResetTokenTTLMinute = 60
	}
	if c.MediaBackend == "" {
		c.MediaBackend = "disk"
	}
	if c.MediaMaxUploadBytes == 0 {
		c.MediaMaxUploadBytes = 10 << 20
	}
	if c.GeminiBaseURL == "" {
		c.GeminiBaseURL = "https://generativelanguage.googleapis.com"
	}
	if c.GeminiModel == "" {
		c.GeminiModel = "gemini-pro"
	}
	if c.ProjectionPlaceholderURL == "" {
		c.ProjectionPlaceholderURL = "https://example.com/future-body.jpg"
	}
	if c.ProjectionCacheSizeMB == 0 {
		c.ProjectionCacheSizeMB = 8
	}
	if c.ProjectionCacheTTLMinute == 0 {
		c.ProjectionCacheTTLMinute = 60
	}
	if c.DashboardWorkoutsLimit == 0 {
		c.DashboardWorkoutsLimit = 5
	}
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config for env: %s", env)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Load reads the TOML file at path and returns the config for env.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return t.Get(env)
}
