package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Black-And-White-Club/guild-bot/internal/observability"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	HTTP          HTTPConfig          `yaml:"http"`
	JWT           JWTConfig           `yaml:"jwt"`
	Observability ObservabilityConfig `yaml:"observability"`
	Discord       DiscordConfig       `yaml:"discord"`
	Leveling      LevelingConfig      `yaml:"leveling"`
	Competition   CompetitionConfig   `yaml:"competition"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL        string `yaml:"url"`
	QueueGroup string `yaml:"queue_group"`
}

// HTTPConfig holds the admin API listener configuration.
type HTTPConfig struct {
	Address        string  `yaml:"address"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"` // json|text
	LogFile     string `yaml:"log_file"`
	LogMaxSize  int    `yaml:"log_max_size"`
	LogMaxFiles int    `yaml:"log_max_files"`
	LogMaxAge   int    `yaml:"log_max_age"`
}

// DiscordConfig selects how platform calls leave the process.
type DiscordConfig struct {
	Mode  string `yaml:"mode"` // bus|rest
	Token string `yaml:"token"`
}

// LevelingConfig holds defaults for new guild configurations and auditor pacing.
type LevelingConfig struct {
	DefaultCooldownSeconds  int           `yaml:"default_cooldown_seconds"`
	DefaultPointsPerMessage int           `yaml:"default_points_per_message"`
	AuditInterval           time.Duration `yaml:"audit_interval"`
	RoleCallsPerSecond      float64       `yaml:"role_calls_per_second"`
	ConfigCacheTTL          time.Duration `yaml:"config_cache_ttl"`
}

// CompetitionConfig holds season scheduler settings.
type CompetitionConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	BallotSize   int           `yaml:"ballot_size"`
	Timezone     string        `yaml:"timezone"`
}

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	// Try reading configuration from the file first
	data, err := os.ReadFile(filename)
	if err != nil {
		// If the file is not found, try loading from environment variables
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// --- OVERRIDE WITH ENV VARS IF PRESENT ---
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.Observability.LogFile = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("JWT_DEFAULT_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.JWT.DefaultTTL = d
		}
	}
	if v := os.Getenv("DISCORD_MODE"); v != "" {
		cfg.Discord.Mode = v
	}
	if v := os.Getenv("DISCORD_TOKEN"); v != "" {
		cfg.Discord.Token = v
	}
	if v := os.Getenv("LEVELING_AUDIT_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Leveling.AuditInterval = d
		}
	}
	if v := os.Getenv("COMPETITION_TICK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Competition.TickInterval = d
		}
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config

	// Load Postgres DSN
	cfg.Postgres.DSN = os.Getenv("DATABASE_URL")
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	// Load NATS URL
	cfg.NATS.URL = os.Getenv("NATS_URL")
	if cfg.NATS.URL == "" {
		return nil, fmt.Errorf("NATS_URL environment variable not set")
	}
	cfg.NATS.QueueGroup = os.Getenv("NATS_QUEUE_GROUP")

	cfg.HTTP.Address = os.Getenv("HTTP_ADDRESS")
	if v := os.Getenv("HTTP_RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid HTTP_RATE_LIMIT_RPS value: %v", err)
		}
		cfg.HTTP.RateLimitRPS = f
	}

	cfg.Observability.Environment = os.Getenv("ENV")
	cfg.Observability.LogLevel = os.Getenv("LOG_LEVEL")
	cfg.Observability.LogFormat = os.Getenv("LOG_FORMAT")
	cfg.Observability.LogFile = os.Getenv("LOG_FILE")

	// Load JWT settings
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	if v := os.Getenv("JWT_DEFAULT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_DEFAULT_TTL value: %v", err)
		}
		cfg.JWT.DefaultTTL = d
	}

	cfg.Discord.Mode = os.Getenv("DISCORD_MODE")
	cfg.Discord.Token = os.Getenv("DISCORD_TOKEN")

	if v := os.Getenv("LEVELING_AUDIT_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LEVELING_AUDIT_INTERVAL value: %v", err)
		}
		cfg.Leveling.AuditInterval = d
	}
	if v := os.Getenv("COMPETITION_TICK_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid COMPETITION_TICK_INTERVAL value: %v", err)
		}
		cfg.Competition.TickInterval = d
	}
	cfg.Competition.Timezone = os.Getenv("COMPETITION_TIMEZONE")

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.NATS.QueueGroup == "" {
		c.NATS.QueueGroup = "guild-bot"
	}
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.HTTP.RateLimitRPS <= 0 {
		c.HTTP.RateLimitRPS = 5
	}
	if c.HTTP.RateLimitBurst <= 0 {
		c.HTTP.RateLimitBurst = 10
	}
	if c.JWT.DefaultTTL <= 0 {
		c.JWT.DefaultTTL = 24 * time.Hour
	}
	if c.Discord.Mode == "" {
		c.Discord.Mode = "bus"
	}
	if c.Leveling.DefaultCooldownSeconds <= 0 {
		c.Leveling.DefaultCooldownSeconds = 60
	}
	if c.Leveling.DefaultPointsPerMessage <= 0 {
		c.Leveling.DefaultPointsPerMessage = 5
	}
	if c.Leveling.AuditInterval <= 0 {
		c.Leveling.AuditInterval = 7 * 24 * time.Hour
	}
	if c.Leveling.RoleCallsPerSecond <= 0 {
		c.Leveling.RoleCallsPerSecond = 5
	}
	if c.Leveling.ConfigCacheTTL <= 0 {
		c.Leveling.ConfigCacheTTL = 10 * time.Minute
	}
	if c.Competition.TickInterval <= 0 {
		c.Competition.TickInterval = time.Minute
	}
	if c.Competition.BallotSize <= 0 || c.Competition.BallotSize > 25 {
		c.Competition.BallotSize = 25
	}
	if c.Competition.Timezone == "" {
		c.Competition.Timezone = "UTC"
	}
}

func ToObsConfig(appCfg *Config) observability.Config {
	return observability.Config{
		ServiceName: "guild-bot",
		Environment: appCfg.Observability.Environment,
		Version:     "0.1.0", // Could inject via `ldflags`
		LogLevel:    appCfg.Observability.LogLevel,
		LogFormat:   appCfg.Observability.LogFormat,
		LogFile:     appCfg.Observability.LogFile,
		LogMaxSize:  appCfg.Observability.LogMaxSize,
		LogMaxFiles: appCfg.Observability.LogMaxFiles,
		LogMaxAge:   appCfg.Observability.LogMaxAge,
	}
}
