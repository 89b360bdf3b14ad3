package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/gamedealer/gamedealer/internal/catalog"
	"github.com/gamedealer/gamedealer/internal/config"
	"github.com/gamedealer/gamedealer/internal/engine"
	"github.com/gamedealer/gamedealer/internal/itad"
	"github.com/gamedealer/gamedealer/internal/notify"
	"github.com/gamedealer/gamedealer/internal/popcache"
	"github.com/gamedealer/gamedealer/pkg/logger"
	"github.com/gamedealer/gamedealer/pkg/match"
	"github.com/gamedealer/gamedealer/pkg/popularity"
	"github.com/gamedealer/gamedealer/pkg/quality"
	"github.com/gamedealer/gamedealer/pkg/rank"
)

// components holds the wired application graph shared by serve and the
// one-shot commands.
type components struct {
	cfg         *config.Config
	log         *slog.Logger
	rateLimiter *itad.RateLimiter
	fetcher     *itad.Fetcher
	catalog     *catalog.Store
	popcache    *popcache.Cache
	pipeline    *rank.Pipeline
	notifier    notify.Notifier
	engine      *engine.Engine
}

// buildComponents assembles the full component graph from configuration.
// When notifications are disabled (or muted for one-shot commands) the
// engine gets a no-op notifier.
func buildComponents(cfg *config.Config, mute bool) (*components, error) {
	appLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	rl := itad.NewRateLimiter(
		cfg.ITAD.RateLimit.PerSecond,
		cfg.ITAD.RateLimit.Burst,
		cfg.ITAD.RateLimit.DailyLimit,
	)

	client := itad.NewHTTPClient(
		cfg.ITAD.APIKey,
		itad.WithBaseURL(cfg.ITAD.BaseURL),
		itad.WithCountry(cfg.ITAD.Country),
		itad.WithRateLimiter(rl),
	)

	fetcher := itad.NewFetcher(
		client,
		itad.WithFetchPageSize(cfg.ITAD.MaxPerFetch),
		itad.WithFetcherLogger(logger.Component(appLog, "fetcher")),
	)

	catalogStore, err := catalog.Load(cfg.Catalog.Path,
		catalog.WithLogger(logger.Component(appLog, "catalog")))
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	popCache := popcache.New(
		fetcher.FetchPopularity,
		popcache.WithTTL(cfg.Popularity.CacheTTL),
		popcache.WithLimit(cfg.Popularity.Limit),
		popcache.WithLogger(logger.Component(appLog, "popularity")),
	)

	pipeline := buildPipeline(cfg)

	var notifier notify.Notifier = notify.NewNoOpNotifier(appLog)
	if !mute && cfg.Notifications.Discord.Enabled {
		notifier = notify.NewDiscordNotifier(cfg.Notifications.Discord.WebhookURL)
	}

	eng := engine.NewEngine(
		fetcher,
		catalogStore,
		popCache,
		pipeline,
		notifier,
		engine.WithLogger(logger.Component(appLog, "engine")),
		engine.WithStores(cfg.ITAD.Stores),
		engine.WithMinDiscount(cfg.Engine.MinDiscountPercent),
		engine.WithIncludeAssetFlips(cfg.Engine.IncludeAssetFlips),
		engine.WithPageSize(cfg.Engine.PageSize),
		engine.WithStaggerOffset(cfg.Schedule.StaggerOffset),
	)

	return &components{
		cfg:         cfg,
		log:         appLog,
		rateLimiter: rl,
		fetcher:     fetcher,
		catalog:     catalogStore,
		popcache:    popCache,
		pipeline:    pipeline,
		notifier:    notifier,
		engine:      eng,
	}, nil
}

// buildPipeline constructs the ranking pipeline with the configured
// thresholds.
func buildPipeline(cfg *config.Config) *rank.Pipeline {
	thresholds := quality.Thresholds{
		PriceFloor:          decimal.NewFromFloat(cfg.Engine.Quality.PriceFloor),
		DeepDiscountPercent: cfg.Engine.Quality.DeepDiscountPercent,
		GenericRatio:        cfg.Engine.Quality.GenericRatio,
	}

	return rank.NewPipeline(
		rank.WithMatcher(buildMatcher(cfg)),
		rank.WithClassifier(quality.New(thresholds)),
		rank.WithAggregator(buildAggregator(cfg)),
		rank.WithRanker(rank.NewRanker(
			rank.WithPriorityPivot(cfg.Engine.PriorityPivot),
		)),
	)
}

func buildMatcher(cfg *config.Config) *match.Matcher {
	return match.New(match.WithOverlapThreshold(cfg.Engine.OverlapThreshold))
}

func buildAggregator(cfg *config.Config) *popularity.Aggregator {
	return popularity.New(popularity.WithSimilarityThreshold(cfg.Engine.SimilarityThreshold))
}

// newCLILogger builds the charmbracelet logger used for operator-facing
// command output.
func newCLILogger(level string) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Level: parseLogLevel(level),
	})
}

func parseLogLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
