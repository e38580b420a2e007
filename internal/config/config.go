package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Jina       JinaConfig       `yaml:"jina" mapstructure:"jina"`
	Firecrawl  FirecrawlConfig  `yaml:"firecrawl" mapstructure:"firecrawl"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Ingest     IngestConfig     `yaml:"ingest" mapstructure:"ingest"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// JinaConfig holds Jina AI Reader settings.
type JinaConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// FirecrawlConfig holds Firecrawl API settings (fallback only).
type FirecrawlConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// SalesforceConfig holds Salesforce JWT auth settings.
type SalesforceConfig struct {
	Domain      string `yaml:"domain" mapstructure:"domain"`
	Username    string `yaml:"username" mapstructure:"username"`
	ConsumerKey string `yaml:"consumer_key" mapstructure:"consumer_key"`
	KeyPath     string `yaml:"key_path" mapstructure:"key_path"`
}

// IngestConfig configures the scrape-and-ingest pipeline.
type IngestConfig struct {
	Sources          []string `yaml:"sources" mapstructure:"sources"`
	LimitPerSource   int      `yaml:"limit_per_source" mapstructure:"limit_per_source"`
	CandidateDelayMS int      `yaml:"candidate_delay_ms" mapstructure:"candidate_delay_ms"`
	SourceDelayMS    int      `yaml:"source_delay_ms" mapstructure:"source_delay_ms"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	BaseURL        string   `yaml:"base_url" mapstructure:"base_url"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AdminUser      string   `yaml:"admin_user" mapstructure:"admin_user"`
	AdminPassword  string   `yaml:"admin_password" mapstructure:"admin_password"`
	SessionSecret  string   `yaml:"session_secret" mapstructure:"session_secret"`
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
	v.SetEnvPrefix("DIRECTORY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "directory.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev/v1")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5")
	v.SetDefault("salesforce.domain", "https://login.salesforce.com")
	v.SetDefault("ingest.sources", []string{
		"https://www.wiseradvisor.com/financial-advisors",
		"https://www.feeonlynetwork.com/advisors",
	})
	v.SetDefault("ingest.limit_per_source", 25)
	v.SetDefault("ingest.candidate_delay_ms", 500)
	v.SetDefault("ingest.source_delay_ms", 3000)

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

// ValidateServe checks the settings the API server cannot run without.
func (c *Config) ValidateServe() error {
	if c.Server.AdminUser == "" || c.Server.AdminPassword == "" {
		return eris.New("config: server.admin_user and server.admin_password are required")
	}
	if c.Server.SessionSecret == "" {
		return eris.New("config: server.session_secret is required")
	}
	return nil
}

// ValidateIngest checks the settings the ingest pipeline cannot run without.
func (c *Config) ValidateIngest() error {
	if c.Jina.Key == "" && c.Firecrawl.Key == "" {
		return eris.New("config: at least one of jina.key or firecrawl.key is required")
	}
	if c.Anthropic.Key == "" {
		return eris.New("config: anthropic.key is required")
	}
	if len(c.Ingest.Sources) == 0 {
		return eris.New("config: ingest.sources is empty")
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
