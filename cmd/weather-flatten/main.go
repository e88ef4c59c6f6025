package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-flatten/internal/api/http"
	"github.com/i474232898/weather-flatten/internal/config"
	"github.com/i474232898/weather-flatten/internal/export"
	"github.com/i474232898/weather-flatten/internal/scheduler"
	"github.com/i474232898/weather-flatten/internal/weather"
	"github.com/i474232898/weather-flatten/internal/weather/providers"
)

func main() {
	configPath := flag.String("config", "config.ini", "path to the INI configuration file")
	serve := flag.Bool("serve", false, "serve the HTTP API instead of running a single batch")
	format := flag.String("format", "csv", "output format for a single batch: csv, json or arrow")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	log := setupLogger(cfg)

	// Shared HTTP client for outbound OpenWeather calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	provider := providers.NewOpenWeatherProvider(httpClient, cfg.BaseURL, cfg.APIKey, providers.DefaultBreakerConfig, log)
	service := weather.NewService(provider, cfg.Fields, cfg.FailurePolicy, log)

	if !*serve {
		os.Exit(runOnce(service, cfg.Cities, *format, log))
	}

	// Periodic batches, when configured.
	sched := scheduler.New(cfg.Cities, cfg.FetchInterval, 5*time.Minute, service, os.Stdout, log)
	if err := sched.Start(); err != nil {
		log.Error("failed to start scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-flatten",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-flatten",
		})
	})

	httpapi.RegisterRoutes(app, service, cfg.Cities)

	go func() {
		log.Info("http server listening", slog.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", slog.Any("error", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", slog.Any("error", err))
	}
}

// runOnce fetches the configured cities and writes the table to stdout.
// It returns the process exit code.
func runOnce(service *weather.Service, cities []string, format string, log *slog.Logger) int {
	if len(cities) == 0 {
		log.Error("no cities configured")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := service.Run(ctx, cities)
	if err != nil {
		log.Error("weather batch failed", slog.Any("error", err))
		return 1
	}

	switch format {
	case "json":
		err = export.WriteJSON(os.Stdout, report)
	case "arrow":
		err = export.WriteArrow(os.Stdout, &report.Table)
	default:
		err = export.WriteCSV(os.Stdout, &report.Table)
	}
	if err != nil {
		log.Error("failed to write output", slog.Any("error", err))
		return 1
	}
	return 0
}

func setupLogger(cfg *config.AppConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}

	// Logs go to stderr so stdout carries only the table.
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.Env == "production" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
