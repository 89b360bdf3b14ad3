// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	ITAD          ITADConfig          `yaml:"itad"`
	Catalog       CatalogConfig       `yaml:"catalog"`
	Engine        EngineConfig        `yaml:"engine"`
	Popularity    PopularityConfig    `yaml:"popularity"`
	Schedule      ScheduleConfig      `yaml:"schedule"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// ITADConfig defines IsThereAnyDeal API settings.
type ITADConfig struct {
	APIKey      string          `yaml:"api_key"`
	BaseURL     string          `yaml:"base_url"`
	Country     string          `yaml:"country"`
	Stores      []string        `yaml:"stores"`
	MaxPerFetch int             `yaml:"max_per_fetch"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines ITAD API rate limiting settings.
type RateLimitConfig struct {
	PerSecond  float64 `yaml:"per_second"`
	Burst      int     `yaml:"burst"`
	DailyLimit int64   `yaml:"daily_limit"`
}

// CatalogConfig defines where the curated priority-game catalog lives.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// EngineConfig holds the tuning knobs of the ranking engine. The
// thresholds were empirically tuned against real listing data and are
// deliberately configuration rather than constants.
type EngineConfig struct {
	OverlapThreshold    float64       `yaml:"overlap_threshold"`    // catalog match rule 3
	SimilarityThreshold float64       `yaml:"similarity_threshold"` // popularity lookup
	PriorityPivot       int           `yaml:"priority_pivot"`       // discount % above which priority leads
	PageSize            int           `yaml:"page_size"`
	IncludeAssetFlips   bool          `yaml:"include_asset_flips"`
	MinDiscountPercent  int           `yaml:"min_discount_percent"` // listings below are not fetched
	Quality             QualityConfig `yaml:"quality"`
}

// QualityConfig defines the asset-flip classifier thresholds.
type QualityConfig struct {
	PriceFloor          float64 `yaml:"price_floor"`
	DeepDiscountPercent int     `yaml:"deep_discount_percent"`
	GenericRatio        float64 `yaml:"generic_ratio"`
}

// PopularityConfig defines popularity snapshot caching.
type PopularityConfig struct {
	CacheTTL time.Duration `yaml:"cache_ttl"`
	Limit    int           `yaml:"limit"` // records fetched per source list
}

// ScheduleConfig defines cron intervals.
type ScheduleConfig struct {
	DealInterval       time.Duration `yaml:"deal_interval"`
	PopularityInterval time.Duration `yaml:"popularity_interval"`
	StaggerOffset      time.Duration `yaml:"stagger_offset"`
}

// NotificationsConfig defines notification targets.
type NotificationsConfig struct {
	Discord DiscordConfig `yaml:"discord"`
}

// DiscordConfig defines Discord webhook settings.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyITADDefaults(&cfg.ITAD)
	applyCatalogDefaults(&cfg.Catalog)
	applyEngineDefaults(&cfg.Engine)
	applyPopularityDefaults(&cfg.Popularity)
	applyScheduleDefaults(&cfg.Schedule)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyITADDefaults(i *ITADConfig) {
	if i.BaseURL == "" {
		i.BaseURL = "https://api.isthereanydeal.com"
	}
	if i.Country == "" {
		i.Country = "US"
	}
	if len(i.Stores) == 0 {
		i.Stores = []string{"steam"}
	}
	if i.MaxPerFetch == 0 {
		i.MaxPerFetch = 200
	}
	applyRateLimitDefaults(&i.RateLimit)
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.PerSecond == 0 {
		r.PerSecond = 2.0
	}
	if r.Burst == 0 {
		r.Burst = 5
	}
	if r.DailyLimit == 0 {
		r.DailyLimit = 2000
	}
}

func applyCatalogDefaults(c *CatalogConfig) {
	if c.Path == "" {
		c.Path = "priority_games.json"
	}
}

func applyEngineDefaults(e *EngineConfig) {
	if e.OverlapThreshold == 0 {
		e.OverlapThreshold = 0.60
	}
	if e.SimilarityThreshold == 0 {
		e.SimilarityThreshold = 0.80
	}
	if e.PriorityPivot == 0 {
		e.PriorityPivot = 50
	}
	if e.PageSize == 0 {
		e.PageSize = 10
	}
	if e.MinDiscountPercent == 0 {
		e.MinDiscountPercent = 30
	}
	if e.Quality.PriceFloor == 0 {
		e.Quality.PriceFloor = 1.0
	}
	if e.Quality.DeepDiscountPercent == 0 {
		e.Quality.DeepDiscountPercent = 90
	}
	if e.Quality.GenericRatio == 0 {
		e.Quality.GenericRatio = 0.6
	}
}

func applyPopularityDefaults(p *PopularityConfig) {
	if p.CacheTTL == 0 {
		p.CacheTTL = time.Hour
	}
	if p.Limit == 0 {
		p.Limit = 500
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.DealInterval == 0 {
		s.DealInterval = time.Hour
	}
	if s.PopularityInterval == 0 {
		s.PopularityInterval = time.Hour
	}
	if s.StaggerOffset == 0 {
		s.StaggerOffset = 30 * time.Second
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.ITAD.APIKey == "" {
		errs = append(errs, fmt.Errorf("itad.api_key is required"))
	}

	if t := cfg.Engine.OverlapThreshold; t <= 0 || t > 1 {
		errs = append(errs, fmt.Errorf("engine.overlap_threshold must be in (0,1], got %v", t))
	}
	if t := cfg.Engine.SimilarityThreshold; t <= 0 || t > 1 {
		errs = append(errs, fmt.Errorf("engine.similarity_threshold must be in (0,1], got %v", t))
	}
	if p := cfg.Engine.PriorityPivot; p < 0 || p > 100 {
		errs = append(errs, fmt.Errorf("engine.priority_pivot must be in [0,100], got %d", p))
	}
	if cfg.Engine.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("engine.page_size must be positive, got %d", cfg.Engine.PageSize))
	}

	if cfg.Notifications.Discord.Enabled && cfg.Notifications.Discord.WebhookURL == "" {
		errs = append(errs, fmt.Errorf("notifications.discord.webhook_url is required when discord is enabled"))
	}

	return errors.Join(errs...)
}
