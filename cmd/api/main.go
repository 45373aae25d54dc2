package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/naturkollen/skyddadnatur/internal/adapters/http"
	"github.com/naturkollen/skyddadnatur/internal/adapters/naturvard"
	"github.com/naturkollen/skyddadnatur/internal/adapters/valkey"
	"github.com/naturkollen/skyddadnatur/internal/core/domain"
	"github.com/naturkollen/skyddadnatur/internal/core/ports"
	"github.com/naturkollen/skyddadnatur/internal/core/usecases"
	"github.com/naturkollen/skyddadnatur/internal/pkg/config"
	"github.com/naturkollen/skyddadnatur/internal/pkg/logging"
	"github.com/naturkollen/skyddadnatur/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("skyddadnatur-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Cache. The service works without it, just slower and harder on
	// the upstream registries.
	var cacheSvc ports.CacheService
	if cfg.Valkey.Enabled {
		cache, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable, running uncached", "error", err)
		} else {
			cacheSvc = cache
			defer cache.Close()
		}
	}

	// Upstream registry clients
	timeout := time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second
	sources := map[domain.Source]ports.AreaSource{
		domain.SourceNVR:        naturvard.NewNVR(naturvard.NewClient(cfg.Upstream.URLFor("nvr"), timeout)),
		domain.SourceNatura2000: naturvard.NewNatura2000(naturvard.NewClient(cfg.Upstream.URLFor("natura2000"), timeout)),
		domain.SourceRamsar:     naturvard.NewRamsar(naturvard.NewClient(cfg.Upstream.URLFor("ramsar"), timeout)),
	}

	// Use cases
	areaSvc := usecases.NewAreaService(sources, cacheSvc)
	extentSvc := usecases.NewExtentService(sources, areaSvc)

	deps := &http.Dependencies{
		Areas:   areaSvc,
		Extents: extentSvc,
		Sources: sources,
		Cache:   cacheSvc,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Skyddad Natur API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173, https://*.naturkollen.se",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
