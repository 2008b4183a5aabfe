// Package config defines service configuration structures and loading hooks.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// OpsAddr configures the operational HTTP listen address serving
	// /healthz and /metrics, e.g. ":9100".
	OpsAddr string `koanf:"ops_addr"`

	// SourceURL is the base URL of the official scoreboard.
	SourceURL string `koanf:"source_url"`

	// SourceTimeoutSeconds bounds a single scoreboard request.
	SourceTimeoutSeconds int `koanf:"source_timeout_seconds"`

	// DatabasePath is the sqlite database file.
	DatabasePath string `koanf:"database_path"`

	// MigrationsDir holds the SQL migration files.
	MigrationsDir string `koanf:"migrations_dir"`

	// CheckHour and CheckMinute set the daily check time, expressed in the
	// scoreboard's clock.
	CheckHour   int `koanf:"check_hour"`
	CheckMinute int `koanf:"check_minute"`

	// CheckTimezone names the zone whose seasonal UTC offset is corrected
	// for when aligning the daily check time.
	CheckTimezone string `koanf:"check_timezone"`

	// FallbackDelayMinutes is the short retry delay after a round where
	// every fetch failed.
	FallbackDelayMinutes int `koanf:"fallback_delay_minutes"`

	// StaleThresholdHours is how old reported data may be before a fetch
	// is retried as stale.
	StaleThresholdHours int `koanf:"stale_threshold_hours"`

	// RetryDelaySeconds and RetryTimeoutSeconds shape the per-category
	// fetch retry policy; RetryJitter is the randomization factor 0..1.
	RetryDelaySeconds   int     `koanf:"retry_delay_seconds"`
	RetryTimeoutSeconds int     `koanf:"retry_timeout_seconds"`
	RetryJitter         float64 `koanf:"retry_jitter"`

	// GhostsEnabled toggles replay evidence downloads.
	GhostsEnabled bool `koanf:"ghosts_enabled"`

	// GhostsURL is the base URL of the replay source; GhostsDir is where
	// downloads are stored; GhostsPerSecond throttles them.
	GhostsURL       string  `koanf:"ghosts_url"`
	GhostsDir       string  `koanf:"ghosts_dir"`
	GhostsPerSecond float64 `koanf:"ghosts_per_second"`

	// WebhookURL is the chat webhook reports and alerts are posted to;
	// empty disables reporting.
	WebhookURL string `koanf:"webhook_url"`

	// InitialRound is the round identifier of the first run, 1..6; zero
	// discovers the latest from the source.
	InitialRound int `koanf:"initial_round"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		OpsAddr:              ":9100",
		SourceURL:            "https://scoreboard.example.com",
		SourceTimeoutSeconds: 30,
		DatabasePath:         "./tmwrr.sqlite3",
		MigrationsDir:        "./migrations",
		CheckHour:            17,
		CheckMinute:          0,
		CheckTimezone:        "Europe/Paris",
		FallbackDelayMinutes: 240,
		StaleThresholdHours:  36,
		RetryDelaySeconds:    30,
		RetryTimeoutSeconds:  60,
		RetryJitter:          0.5,
		GhostsEnabled:        true,
		GhostsDir:            "./ghosts",
		GhostsPerSecond:      2,
	}
}
