// Evaluator server - runs the activity evaluation pipeline behind an HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nsundt-ai/evaluator-v16/pkg/activity"
	"github.com/nsundt-ai/evaluator-v16/pkg/api"
	"github.com/nsundt-ai/evaluator-v16/pkg/config"
	"github.com/nsundt-ai/evaluator-v16/pkg/database"
	"github.com/nsundt-ai/evaluator-v16/pkg/eventlog"
	"github.com/nsundt-ai/evaluator-v16/pkg/llm"
	"github.com/nsundt-ai/evaluator-v16/pkg/llm/providers/anthropic"
	"github.com/nsundt-ai/evaluator-v16/pkg/llm/providers/gemini"
	"github.com/nsundt-ai/evaluator-v16/pkg/llm/providers/openai"
	"github.com/nsundt-ai/evaluator-v16/pkg/models"
	"github.com/nsundt-ai/evaluator-v16/pkg/pipeline"
	"github.com/nsundt-ai/evaluator-v16/pkg/prompt"
	"github.com/nsundt-ai/evaluator-v16/pkg/scoring"
	"github.com/nsundt-ai/evaluator-v16/pkg/services"
	"github.com/nsundt-ai/evaluator-v16/pkg/version"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./config"),
		"Path to configuration directory")
	flag.Parse()

	// Load .env from the config directory; missing files are fine.
	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		slog.Warn("Could not load .env file, continuing with existing environment", "path", envPath)
	}

	httpPort := getEnv("HTTP_PORT", "8080")
	activitiesPath := getEnv("ACTIVITIES_PATH", "./activities")
	logDir := getEnv("LOG_DIR", "./data/logs")

	slog.Info("Starting evaluator",
		"version", version.Full(),
		"http_port", httpPort,
		"config_dir", *configDir,
		"activities_path", activitiesPath)

	ctx := context.Background()

	cfg, err := config.Initialize(*configDir)
	if err != nil {
		slog.Error("Failed to initialize configuration", "error", err)
		os.Exit(1)
	}

	events, err := eventlog.New(logDir)
	if err != nil {
		slog.Error("Failed to open event logs", "error", err)
		os.Exit(1)
	}
	defer func() { _ = events.Close() }()

	dbClient, err := database.NewClient(ctx, database.LoadConfigFromEnv())
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			slog.Error("Error closing database", "error", err)
		}
	}()
	slog.Info("Database ready")

	learnerService := services.NewLearnerService(dbClient.DB())
	recordService := services.NewRecordService(dbClient.DB())
	progressService := services.NewProgressService(dbClient.DB())
	historyService := services.NewHistoryService(dbClient.DB())

	gateway := llm.NewGateway(cfg, events,
		anthropic.NewClient(os.Getenv("ANTHROPIC_API_KEY"), ""),
		openai.NewClient(os.Getenv("OPENAI_API_KEY"), ""),
		gemini.NewClient(os.Getenv("GEMINI_API_KEY"), ""),
	)
	available := gateway.AvailableProviders()
	if len(available) == 0 {
		slog.Warn("No LLM providers configured; evaluations will record phase failures")
	} else {
		slog.Info("LLM providers ready", "providers", available)
	}

	activityManager := activity.NewManager(activitiesPath, events)
	if stats, err := activityManager.Stats(); err != nil {
		slog.Warn("Failed to load activities at startup", "error", err)
	} else {
		slog.Info("Activities loaded", "total", stats.Total, "by_type", stats.ByType)
	}

	if err := cfg.SetAppState("last_startup", models.NowUTC()); err != nil {
		slog.Warn("Failed to record startup in app state", "error", err)
	}

	// Retention: prune old evaluation/error events daily.
	retentionDays := 30
	if v := os.Getenv("LOG_RETENTION_DAYS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			retentionDays = parsed
		}
	}
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := events.Prune(time.Duration(retentionDays) * 24 * time.Hour); err != nil {
				slog.Error("Event log pruning failed", "error", err)
			}
		}
	}()

	scorer := scoring.NewEngine(cfg, historyService, progressService, events)
	orchestrator := pipeline.New(cfg, gateway, prompt.NewBuilder(), scorer,
		activityManager, learnerService, recordService, historyService, events)

	server := api.NewServer(cfg, dbClient, orchestrator, scorer, gateway,
		activityManager, learnerService, historyService)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", ":"+httpPort)
		errCh <- server.Start(":" + httpPort)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		slog.Info("Shutting down", "signal", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
	slog.Info("Shutdown complete")
}
