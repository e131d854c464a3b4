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
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Tavily    TavilyConfig    `yaml:"tavily" mapstructure:"tavily"`
	Gemini    GeminiConfig    `yaml:"gemini" mapstructure:"gemini"`
	DeepSeek  DeepSeekConfig  `yaml:"deepseek" mapstructure:"deepseek"`
	Jina      JinaConfig      `yaml:"jina" mapstructure:"jina"`
	Firecrawl FirecrawlConfig `yaml:"firecrawl" mapstructure:"firecrawl"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Harvest   HarvestConfig   `yaml:"harvest" mapstructure:"harvest"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the case store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// TavilyConfig holds Tavily search API settings.
type TavilyConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// GeminiConfig holds settings for the primary generative-text service.
type GeminiConfig struct {
	Key     string   `yaml:"key" mapstructure:"key"`
	BaseURL string   `yaml:"base_url" mapstructure:"base_url"`
	Models  []string `yaml:"models" mapstructure:"models"`
}

// DeepSeekConfig holds settings for the backup generative-text service.
// DeepSeek speaks the OpenAI chat-completions wire format.
type DeepSeekConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// JinaConfig holds Jina AI Reader settings.
type JinaConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// FirecrawlConfig holds Firecrawl API settings (fetch fallback).
type FirecrawlConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// SearchConfig configures the search phase.
type SearchConfig struct {
	MaxResults      int     `yaml:"max_results" mapstructure:"max_results"`
	HotspotMinScore float64 `yaml:"hotspot_min_score" mapstructure:"hotspot_min_score"`
}

// ExtractConfig configures the case extractor.
type ExtractConfig struct {
	Variant         string `yaml:"variant" mapstructure:"variant"`
	MinProcessChars int    `yaml:"min_process_chars" mapstructure:"min_process_chars"`
	MaxOutputTokens int    `yaml:"max_output_tokens" mapstructure:"max_output_tokens"`
}

// PipelineConfig configures orchestration behavior.
type PipelineConfig struct {
	// PacingSecs is the minimum interval between successive extraction
	// calls, matching the primary service's per-minute rate limit.
	PacingSecs int `yaml:"pacing_secs" mapstructure:"pacing_secs"`
	// OnReject decides what happens to records the quality gate refuses:
	// "discard" or "store_flagged".
	OnReject string `yaml:"on_reject" mapstructure:"on_reject"`
	// MaxCases caps how many search hits are pushed through extraction.
	MaxCases int `yaml:"max_cases" mapstructure:"max_cases"`
}

// HarvestConfig configures the recursive link harvester.
type HarvestConfig struct {
	AllowedSuffixes []string `yaml:"allowed_suffixes" mapstructure:"allowed_suffixes"`
	MaxLinks        int      `yaml:"max_links" mapstructure:"max_links"`
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
	v.SetEnvPrefix("FRAUDINTEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("tavily.base_url", "https://api.tavily.com")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("gemini.models", []string{
		"gemini-2.5-flash",
		"gemini-1.5-pro",
		"gemini-flash-latest",
	})
	v.SetDefault("deepseek.base_url", "https://api.deepseek.com")
	v.SetDefault("deepseek.model", "deepseek-chat")
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev/v1")
	v.SetDefault("search.max_results", 15)
	v.SetDefault("search.hotspot_min_score", 0.7)
	v.SetDefault("extract.variant", "siu")
	v.SetDefault("extract.min_process_chars", 500)
	v.SetDefault("extract.max_output_tokens", 2000)
	v.SetDefault("pipeline.pacing_secs", 15)
	v.SetDefault("pipeline.on_reject", "discard")
	v.SetDefault("pipeline.max_cases", 5)
	v.SetDefault("harvest.allowed_suffixes", []string{".org", ".gov"})
	v.SetDefault("harvest.max_links", 5)

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

// Validate checks that the mandatory credentials are present. The run
// aborts here, before any processing, if one is missing.
func (c *Config) Validate() error {
	var missing []string
	if c.Tavily.Key == "" {
		missing = append(missing, "tavily.key")
	}
	if c.Gemini.Key == "" {
		missing = append(missing, "gemini.key")
	}
	if c.Store.DatabaseURL == "" {
		missing = append(missing, "store.database_url")
	}
	if len(missing) > 0 {
		return eris.Errorf("config: missing mandatory settings: %s", strings.Join(missing, ", "))
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
