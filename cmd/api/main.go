package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	httpapi "catalogstudio/internal/http/httpapi"
	"catalogstudio/internal/infra"
	"catalogstudio/internal/infra/geoip"
	"catalogstudio/internal/middleware"
	"catalogstudio/internal/observability"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := openBackend(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("failed to open store")
	}
	defer backend.close()

	metrics := observability.InitMetrics(prometheus.DefaultRegisterer)
	svc, err := buildServices(ctx, cfg, backend, metrics, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build services")
	}
	defer svc.close()

	var lookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		defer resolver.Close()
		lookup = resolver.CountryCode
	}

	router := httpapi.NewRouter(svc.app, httpapi.Options{
		Logger:          logger,
		JWTSecret:       cfg.JWTSecret,
		CORSOrigins:     cfg.CORSAllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		DefaultLanguage: cfg.DefaultLanguage,
		CountryLookup:   lookup,
		Metrics:         metrics,
		MetricsHandler:  observability.Handler(),
	})
	server := infra.NewHTTPServer(cfg, router)

	scheduler := newMaintenance(cfg, svc, logger)
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	logger.Info().Str("backend", cfg.StoreBackend).Msgf("API listening on %s", server.Addr())
	if err := server.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("http server failed")
		return
	}
	logger.Info().Msg("server stopped")
}
