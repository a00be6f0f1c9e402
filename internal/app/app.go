package app

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"textgenai/internal/config"
	"textgenai/internal/core"
	db "textgenai/internal/core/database"
	"textgenai/internal/core/llm"
	"textgenai/internal/core/mail"
	"textgenai/internal/core/runner"
	"textgenai/internal/services"
)

type App struct {
	DBClient core.DbClient
	LLM      *llm.GeminiLLM
	Server   *Server
	Logger   *slog.Logger
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := newLogger(cfg.LogLevel)

	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("database initialized and ready")

	gemini, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		_ = dbClient.Close()
		return nil, err
	}

	ollama := runner.NewOllamaRunner(cfg.OllamaBin, cfg.RunnerTimeout)
	mailer := mail.NewGomailMailer(cfg, logger)

	users := services.NewUserService(dbClient)
	otp := services.NewOTPService(cfg.OTPValidity)

	server := NewServer(cfg, logger, dbClient, users, otp, mailer, gemini, ollama)

	return &App{DBClient: dbClient, LLM: gemini, Server: server, Logger: logger}, nil
}

func (a *App) Close() {
	if a.LLM != nil {
		_ = a.LLM.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
