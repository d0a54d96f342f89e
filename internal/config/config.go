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
	Catalog   CatalogConfig   `yaml:"catalog" mapstructure:"catalog"`
	RunLog    RunLogConfig    `yaml:"runlog" mapstructure:"runlog"`
	Map       MapConfig       `yaml:"map" mapstructure:"map"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Extractor ExtractorConfig `yaml:"extractor" mapstructure:"extractor"`
	Discovery DiscoveryConfig `yaml:"discovery" mapstructure:"discovery"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Retrieval RetrievalConfig `yaml:"retrieval" mapstructure:"retrieval"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Monitor   MonitorConfig   `yaml:"monitor" mapstructure:"monitor"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// CatalogConfig configures the discount catalog store.
type CatalogConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
}

// RunLogConfig configures run/stage persistence.
type RunLogConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// MapConfig holds the map/review/geocode provider settings.
type MapConfig struct {
	ClientID     string  `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string  `yaml:"client_secret" mapstructure:"client_secret"`
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimitRPS float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
}

// AnthropicConfig holds answer-generation LLM settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ExtractorConfig configures LLM keyword extraction for the query filter.
// When Key is empty the rule-based extractor is used alone.
type ExtractorConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// DiscoveryConfig configures nearby merchant discovery.
type DiscoveryConfig struct {
	RadiusMeters       int   `yaml:"radius_meters" mapstructure:"radius_meters"`
	MaxCandidates      int   `yaml:"max_candidates" mapstructure:"max_candidates"`
	ReviewsPerMerchant int   `yaml:"reviews_per_merchant" mapstructure:"reviews_per_merchant"`
	MaxPages           int   `yaml:"max_pages" mapstructure:"max_pages"`
	PageSize           int   `yaml:"page_size" mapstructure:"page_size"`
	SampleSeed         int64 `yaml:"sample_seed" mapstructure:"sample_seed"`
	ReviewConcurrency  int   `yaml:"review_concurrency" mapstructure:"review_concurrency"`
}

// PipelineConfig configures orchestration behavior.
type PipelineConfig struct {
	GeocodeTimeoutMS  int    `yaml:"geocode_timeout_ms" mapstructure:"geocode_timeout_ms"`
	DiscoverTimeoutMS int    `yaml:"discover_timeout_ms" mapstructure:"discover_timeout_ms"`
	ResolveTimeoutMS  int    `yaml:"resolve_timeout_ms" mapstructure:"resolve_timeout_ms"`
	RankTimeoutMS     int    `yaml:"rank_timeout_ms" mapstructure:"rank_timeout_ms"`
	ContextTimeoutMS  int    `yaml:"context_timeout_ms" mapstructure:"context_timeout_ms"`
	ReferenceAmount   int64  `yaml:"reference_amount" mapstructure:"reference_amount"`
	Channel           string `yaml:"channel" mapstructure:"channel"`
}

// RetrievalConfig configures the retrieval context builder.
type RetrievalConfig struct {
	TopK int `yaml:"top_k" mapstructure:"top_k"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// MonitorConfig configures health alerting on the serve command.
type MonitorConfig struct {
	WebhookURL            string  `yaml:"webhook_url" mapstructure:"webhook_url"`
	DegradedRateThreshold float64 `yaml:"degraded_rate_threshold" mapstructure:"degraded_rate_threshold"`
	MinRequests           int     `yaml:"min_requests" mapstructure:"min_requests"`
	CheckIntervalSecs     int     `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
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
	v.SetEnvPrefix("NEARBITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("catalog.max_conns", 5)
	v.SetDefault("runlog.driver", "sqlite")
	v.SetDefault("runlog.path", "nearbite.db")
	v.SetDefault("map.base_url", "https://openapi.naver.com")
	v.SetDefault("map.rate_limit_rps", 10)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("extractor.base_url", "https://api.perplexity.ai")
	v.SetDefault("extractor.model", "sonar")
	v.SetDefault("discovery.radius_meters", 1000)
	v.SetDefault("discovery.max_candidates", 10)
	v.SetDefault("discovery.reviews_per_merchant", 3)
	v.SetDefault("discovery.max_pages", 5)
	v.SetDefault("discovery.page_size", 5)
	v.SetDefault("discovery.review_concurrency", 4)
	v.SetDefault("pipeline.geocode_timeout_ms", 2000)
	v.SetDefault("pipeline.discover_timeout_ms", 15000)
	v.SetDefault("pipeline.resolve_timeout_ms", 5000)
	v.SetDefault("pipeline.rank_timeout_ms", 500)
	v.SetDefault("pipeline.context_timeout_ms", 500)
	v.SetDefault("pipeline.reference_amount", 12000)
	v.SetDefault("pipeline.channel", "OFFLINE")
	v.SetDefault("retrieval.top_k", 3)
	v.SetDefault("monitor.degraded_rate_threshold", 0.5)
	v.SetDefault("monitor.min_requests", 5)
	v.SetDefault("monitor.check_interval_secs", 300)

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
