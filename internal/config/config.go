// Package config loads the server configuration from recruiting.yaml,
// RECRUITING_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/secrets"
)

const (
	// AppName names the CLI and the zap logger.
	AppName   = "recruiting-demo"
	envPrefix = "RECRUITING"

	ModeDebug   = "debug"
	ModeRelease = "release"

	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"

	minSecretLength = 32
)

type Config struct {
	Debug bool `mapstructure:"debug"`
	JSON  bool `mapstructure:"json"`

	Server        ServerConfig        `mapstructure:"server"`
	Log           LogConfig           `mapstructure:"log"`
	Session       SessionConfig       `mapstructure:"session"`
	Store         StoreConfig         `mapstructure:"store"`
	Questionnaire QuestionnaireConfig `mapstructure:"questionnaire"`
	Catalog       CatalogConfig       `mapstructure:"catalog"`
	CORS          CORSConfig          `mapstructure:"cors"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
	AI            AIConfig            `mapstructure:"ai"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	Mode            string        `mapstructure:"mode"`
	StaticDir       string        `mapstructure:"static_dir"`
	DevFrontendURL  string        `mapstructure:"dev_frontend_url"`
	DefaultLocale   string        `mapstructure:"default_locale"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	// File enables rotating file output. Empty disables it.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type SessionConfig struct {
	Secret          string        `mapstructure:"secret"`
	SecretFile      string        `mapstructure:"secret_file"`
	CookieName      string        `mapstructure:"cookie_name"`
	TTL             time.Duration `mapstructure:"ttl"`
	Secure          bool          `mapstructure:"secure"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type StoreConfig struct {
	Kind string `mapstructure:"kind"`
	DSN  string `mapstructure:"dsn"`
}

type QuestionnaireConfig struct {
	Shuffle                 bool   `mapstructure:"shuffle"`
	RequireAnswerBeforeNext bool   `mapstructure:"require_answer_before_next"`
	DefaultPosition         string `mapstructure:"default_position"`
}

// CatalogConfig overrides the embedded catalog files.
type CatalogConfig struct {
	Questions       string `mapstructure:"questions"`
	Interpretations string `mapstructure:"interpretations"`
	Positions       string `mapstructure:"positions"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type AIConfig struct {
	Enabled  bool         `mapstructure:"enabled"`
	Provider string       `mapstructure:"provider"`
	Gemini   GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey            string  `mapstructure:"api_key"`
	APIKeyFile        string  `mapstructure:"api_key_file"`
	Model             string  `mapstructure:"model"`
	MaxRetries        int     `mapstructure:"max_retries"`
	MaxLogLength      int     `mapstructure:"max_log_length"`
	RequestsPerMinute float64 `mapstructure:"requests_per_minute"`
}

// SetDefaults registers a default for every key so env overrides work
// without a config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("json", false)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", ModeDebug)
	v.SetDefault("server.static_dir", "")
	v.SetDefault("server.dev_frontend_url", "")
	v.SetDefault("server.default_locale", "de")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("log.file", "logs/app.log")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", false)

	v.SetDefault("session.secret", "")
	v.SetDefault("session.secret_file", "")
	v.SetDefault("session.cookie_name", "recruiting_session")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.secure", false)
	v.SetDefault("session.cleanup_interval", "10m")

	v.SetDefault("store.kind", StoreMemory)
	v.SetDefault("store.dsn", "")

	v.SetDefault("questionnaire.shuffle", false)
	v.SetDefault("questionnaire.require_answer_before_next", false)
	v.SetDefault("questionnaire.default_position", "power-bi-dev-fttx")

	v.SetDefault("catalog.questions", "")
	v.SetDefault("catalog.interpretations", "")
	v.SetDefault("catalog.positions", "")

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:8080"})

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 5.0)
	v.SetDefault("rate_limit.burst", 20)

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.gemini.api_key", "")
	v.SetDefault("ai.gemini.api_key_file", "")
	v.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	v.SetDefault("ai.gemini.max_retries", 2)
	v.SetDefault("ai.gemini.max_log_length", 500)
	v.SetDefault("ai.gemini.requests_per_minute", 10.0)
}

// Load reads file (or recruiting.yaml in the working directory when file is
// empty) into a Config. A missing default file is not an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("recruiting")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks settings that cannot be repaired by defaults.
func (c *Config) Validate() error {
	var problems []string
	switch c.Server.Mode {
	case ModeDebug, ModeRelease:
	default:
		problems = append(problems, fmt.Sprintf("server.mode %q must be %q or %q", c.Server.Mode, ModeDebug, ModeRelease))
	}
	switch c.Server.DefaultLocale {
	case "de", "en":
	default:
		problems = append(problems, fmt.Sprintf("server.default_locale %q is not supported", c.Server.DefaultLocale))
	}

	secret, err := c.SessionSecret()
	if c.Server.Mode == ModeRelease {
		if err != nil {
			problems = append(problems, err.Error())
		} else if len(secret) < minSecretLength {
			problems = append(problems, fmt.Sprintf("session secret must be at least %d characters in release mode", minSecretLength))
		}
	}
	if c.Session.TTL <= 0 {
		problems = append(problems, "session.ttl must be positive")
	}
	if c.Session.CleanupInterval <= 0 {
		problems = append(problems, "session.cleanup_interval must be positive")
	}

	switch c.Store.Kind {
	case StoreMemory:
	case StoreSQLite, StorePostgres:
		if strings.TrimSpace(c.Store.DSN) == "" {
			problems = append(problems, fmt.Sprintf("store.dsn is required for store.kind %q", c.Store.Kind))
		}
	default:
		problems = append(problems, fmt.Sprintf("store.kind %q is unknown", c.Store.Kind))
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		problems = append(problems, "rate_limit requires positive requests_per_second and burst")
	}
	if c.AI.Enabled {
		if c.AI.Provider != "gemini" {
			problems = append(problems, fmt.Sprintf("ai.provider %q is not supported", c.AI.Provider))
		}
		if _, err := c.GeminiAPIKey(); err != nil {
			problems = append(problems, err.Error())
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// SessionSecret resolves the cookie signing secret; the file wins over the value.
func (c *Config) SessionSecret() (string, error) {
	return secrets.Load(secrets.Source{Name: "session secret", Value: c.Session.Secret, File: c.Session.SecretFile})
}

func (c *Config) GeminiAPIKey() (string, error) {
	return secrets.Load(secrets.Source{Name: "gemini api key", Value: c.AI.Gemini.APIKey, File: c.AI.Gemini.APIKeyFile})
}

// SQLDriver maps the store kind to a database/sql driver name.
func (c *Config) SQLDriver() string {
	switch c.Store.Kind {
	case StorePostgres:
		return "pgx"
	case StoreSQLite:
		return "sqlite"
	}
	return ""
}
