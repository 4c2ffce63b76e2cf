package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Source    SourceConfig    `yaml:"source" mapstructure:"source"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Wikidata  WikidataConfig  `yaml:"wikidata" mapstructure:"wikidata"`
	Wikipedia WikipediaConfig `yaml:"wikipedia" mapstructure:"wikipedia"`
	Bulk      BulkConfig      `yaml:"bulk" mapstructure:"bulk"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Rules     RulesConfig     `yaml:"rules" mapstructure:"rules"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// SourceConfig locates the disclosure site.
type SourceConfig struct {
	SearchURL string `yaml:"search_url" mapstructure:"search_url"`
	// CandidatePattern is a printf pattern taking a candidate id.
	CandidatePattern string `yaml:"candidate_pattern" mapstructure:"candidate_pattern"`
}

// FetchConfig configures page downloads.
type FetchConfig struct {
	UserAgent    string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs  int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxAttempts  int    `yaml:"max_attempts" mapstructure:"max_attempts"`
	RetryDelayMs int    `yaml:"retry_delay_ms" mapstructure:"retry_delay_ms"`
	PauseMs      int    `yaml:"pause_ms" mapstructure:"pause_ms"`
}

// Timeout returns the request timeout.
func (c FetchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// RetryDelay returns the pause between attempts.
func (c FetchConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

// Pause returns the minimum spacing between requests to one host.
func (c FetchConfig) Pause() time.Duration {
	return time.Duration(c.PauseMs) * time.Millisecond
}

// WikidataConfig configures the Secondary source.
type WikidataConfig struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	Endpoint  string `yaml:"endpoint" mapstructure:"endpoint"`
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`
}

// WikipediaConfig configures the Tertiary source.
type WikipediaConfig struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`
}

// BulkConfig configures id-range scraping.
type BulkConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
	PauseMs     int `yaml:"pause_ms" mapstructure:"pause_ms"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// RulesConfig points at an optional rule-table file.
type RulesConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PROFILE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.sqlite_path", "profiles.db")
	v.SetDefault("source.search_url", "https://myneta.info/search_myneta.php")
	v.SetDefault("source.candidate_pattern", "https://www.myneta.info/LokSabha2024/candidate.php?candidate_id=%d")
	v.SetDefault("fetch.user_agent", "")
	v.SetDefault("fetch.timeout_secs", 15)
	v.SetDefault("fetch.max_attempts", 3)
	v.SetDefault("fetch.retry_delay_ms", 2000)
	v.SetDefault("fetch.pause_ms", 1000)
	v.SetDefault("wikidata.enabled", true)
	v.SetDefault("wikidata.endpoint", "https://query.wikidata.org/sparql")
	v.SetDefault("wikidata.user_agent", "profile-cli/1.0")
	v.SetDefault("wikipedia.enabled", true)
	v.SetDefault("wikipedia.base_url", "https://en.wikipedia.org")
	v.SetDefault("wikipedia.user_agent", "profile-cli/1.0")
	v.SetDefault("bulk.concurrency", 2)
	v.SetDefault("bulk.pause_ms", 2000)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("rules.path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch c.Store.Driver {
	case "sqlite":
		if c.Store.SQLitePath == "" {
			errs = append(errs, "store.sqlite_path is required for the sqlite driver")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required for the postgres driver")
		}
	default:
		errs = append(errs, "store.driver must be sqlite or postgres")
	}
	if c.Fetch.TimeoutSecs <= 0 {
		errs = append(errs, "fetch.timeout_secs must be > 0")
	}
	if c.Fetch.MaxAttempts < 1 || c.Fetch.MaxAttempts > 10 {
		errs = append(errs, "fetch.max_attempts must be between 1 and 10")
	}

	switch mode {
	case "build":
	case "bulk":
		if c.Bulk.Concurrency < 1 || c.Bulk.Concurrency > 20 {
			errs = append(errs, "bulk.concurrency must be between 1 and 20")
		}
		if !strings.Contains(c.Source.CandidatePattern, "%d") {
			errs = append(errs, "source.candidate_pattern must contain %d")
		}
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
