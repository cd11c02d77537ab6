package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MikeSquared-Agency/usher/internal/api"
	"github.com/MikeSquared-Agency/usher/internal/config"
	"github.com/MikeSquared-Agency/usher/internal/handoff"
	"github.com/MikeSquared-Agency/usher/internal/hermes"
	"github.com/MikeSquared-Agency/usher/internal/oracle"
	"github.com/MikeSquared-Agency/usher/internal/platform"
	"github.com/MikeSquared-Agency/usher/internal/session"
	"github.com/MikeSquared-Agency/usher/internal/transcript"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("usher starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, req := range []struct{ name, val string }{
		{"OPENAI_API_KEY", cfg.OpenAIAPIKey},
		{"PLATFORM_BASE_URL", cfg.PlatformBaseURL},
		{"PLATFORM_SECRET", cfg.PlatformSecret},
		{"BOT_OPERATOR_ID", cfg.BotOperatorID},
		{"HUMAN_OPERATOR_ID", cfg.HumanOperatorID},
	} {
		if req.val == "" {
			slog.Error(req.name + " is required")
			os.Exit(1)
		}
	}

	// Session store — Redis when configured, otherwise process-local.
	var sessions session.Store
	if cfg.RedisAddr != "" {
		redisStore, err := session.NewRedisStore(ctx, cfg.RedisAddr, time.Duration(cfg.SessionTTLHours)*time.Hour)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisStore.Close()
		sessions = redisStore
		slog.Info("redis session store ready", "addr", cfg.RedisAddr)
	} else {
		sessions = session.NewMemoryStore()
		slog.Warn("REDIS_ADDR not set — sessions are in-memory and will not survive a restart")
	}

	// Transcript store (optional — usher works without it, just no history).
	var transcripts handoff.Transcripts
	if cfg.DatabaseURL != "" {
		db, err := transcript.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		transcripts = db
		slog.Info("transcript store ready")
	} else {
		slog.Warn("DATABASE_URL not set — running without transcripts")
	}

	// NATS/Hermes (optional — other swarm agents just won't see handoffs).
	var announcer handoff.Announcer
	if cfg.NatsURL != "" {
		hermesClient, err := hermes.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer hermesClient.Close()
		announcer = hermesClient
		slog.Info("NATS connected", "url", cfg.NatsURL)

		if err := hermesClient.Publish(hermes.SubjectRegistered, map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"port":      cfg.Port,
		}); err != nil {
			slog.Warn("failed to publish registration", "error", err)
		}
	} else {
		slog.Warn("NATS_URL not set — running without handoff announcements")
	}

	// Responder oracle.
	responder := oracle.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, slog.Default())
	slog.Info("oracle client ready", "model", cfg.OpenAIModel)

	// Platform gateway.
	gateway := platform.NewClient(cfg.PlatformBaseURL, cfg.PlatformSecret, slog.Default())

	// Handoff controller — the core.
	controller := handoff.New(sessions, responder, gateway, transcripts, announcer, handoff.Options{
		BotOperatorID:   cfg.BotOperatorID,
		HumanOperatorID: cfg.HumanOperatorID,
		OracleTimeout:   time.Duration(cfg.OracleTimeout) * time.Second,
		Workers:         cfg.WorkerCount,
		QueueSize:       cfg.QueueSize,
	}, slog.Default())

	// HTTP API.
	srv := api.NewServer(cfg.Port, controller)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("usher ready", "port", cfg.Port)

	// Graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	controller.Stop()
	cancel()
	slog.Info("usher stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
