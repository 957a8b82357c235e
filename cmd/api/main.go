package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"dreamtown/internal/generation"
	"dreamtown/internal/http/handlers"
	httpapi "dreamtown/internal/http/httpapi"
	"dreamtown/internal/infra"
	"dreamtown/internal/infra/geoip"
	"dreamtown/internal/metrics"
	"dreamtown/internal/middleware"
	"dreamtown/internal/session"
	"dreamtown/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	assets, err := storage.NewFileStore(cfg.AssetsDir)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.AssetsDir).Msg("assets directory unavailable")
	}

	var lookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		lookup = resolver.CountryCode
		defer resolver.Close()
	}

	m := metrics.New()
	expander, err := infra.NewExpander(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("prompt provider")
	}
	images, err := infra.NewImageProviders(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("image provider")
	}
	generator, err := generation.NewService(generation.Dependencies{
		Expander:  expander,
		Inpainter: images.Inpainter,
		Creator:   images.Creator,
		Assets:    assets,
		Metrics:   m,
		Logger:    logger.With().Str("component", "generation").Logger(),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("generation service")
	}

	sessions := session.NewMemoryStore(session.Options{TTL: cfg.SessionTTL})
	app := &handlers.App{
		Sessions:      sessions,
		Generator:     generator,
		Mailer:        infra.NewMailer(cfg, logger, m),
		Photos:        assets,
		Metrics:       m,
		Logger:        logger,
		SessionTTL:    cfg.SessionTTL,
		SecureCookies: cfg.IsProduction(),
	}
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		DefaultLocale:   cfg.DefaultLocale,
		CountryLookup:   lookup,
		RateLimitPerMin: cfg.RateLimitPerMin,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sessions.Run(ctx, time.Minute)

	server := infra.NewHTTPServer(cfg, router)
	go func() {
		logger.Info().
			Str("addr", server.Addr()).
			Str("prompt_provider", cfg.PromptProvider).
			Str("image_provider", cfg.ImageProvider).
			Msg("kiosk API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPWriteTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
