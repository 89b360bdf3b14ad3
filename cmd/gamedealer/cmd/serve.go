package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/gamedealer/gamedealer/internal/api/handlers"
	mw "github.com/gamedealer/gamedealer/internal/api/middleware"
	"github.com/gamedealer/gamedealer/internal/config"
	"github.com/gamedealer/gamedealer/internal/engine"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and scheduler",
	RunE:  runServe,
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cliLog := newCLILogger(cfg.Logging.Level)

	comp, err := buildComponents(cfg, false)
	if err != nil {
		return err
	}

	sched, err := engine.NewScheduler(
		comp.engine,
		cfg.Schedule.DealInterval,
		cfg.Schedule.PopularityInterval,
		comp.log,
	)
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(mw.RequestLog(comp.log))
	e.Use(mw.Recovery(comp.log))
	e.Use(mw.Metrics())

	healthH := handlers.NewHealthHandler(comp.catalog)
	e.GET("/healthz", healthH.Healthz)
	e.GET("/readyz", healthH.Readyz)

	// Prometheus metrics.
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := humaecho.New(e, huma.DefaultConfig("GameDealer API", Version))

	handlers.RegisterRankRoutes(api, handlers.NewRankHandler(
		comp.pipeline, comp.catalog, comp.popcache, cfg.Engine.PageSize,
	))
	handlers.RegisterMatchRoutes(api, handlers.NewMatchHandler(
		buildMatcher(cfg), buildAggregator(cfg), comp.catalog, comp.popcache,
	))
	handlers.RegisterCatalogRoutes(api, handlers.NewCatalogHandler(comp.catalog))
	handlers.RegisterTriggerRoutes(api,
		handlers.NewSyncHandler(comp.engine),
		handlers.NewRefreshHandler(comp.engine),
	)
	handlers.RegisterQuotaRoutes(api, handlers.NewQuotaHandler(comp.rateLimiter))

	sched.Start()
	defer sched.Stop()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	cliLog.Info("starting server", "addr", addr)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cliLog.Error("server error", "err", err)
		}
	}()

	// Wait for interrupt signal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cliLog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	cliLog.Info("server stopped")
	return nil
}
