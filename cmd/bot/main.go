package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/exam-bot/internal/config"
	"github.com/aliskhannn/exam-bot/internal/delivery/telegram"
	"github.com/aliskhannn/exam-bot/internal/domain/entities"
	"github.com/aliskhannn/exam-bot/internal/generator"
	"github.com/aliskhannn/exam-bot/internal/infra/postgres"
	"github.com/aliskhannn/exam-bot/internal/logger"
	"github.com/aliskhannn/exam-bot/internal/repository"
	"github.com/aliskhannn/exam-bot/internal/service"
	"github.com/aliskhannn/exam-bot/internal/session"
	"github.com/aliskhannn/exam-bot/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		lg.Fatal("failed to create bot", zap.Error(err))
	}

	// Set commands.
	commands := []tgbotapi.BotCommand{
		{
			Command:     "start",
			Description: "Start the bot",
		},
		{
			Command:     "quiz",
			Description: "Start a new exam (usage: /quiz Linear Algebra)",
		},
		{
			Command:     "submit",
			Description: "Finish the current exam",
		},
		{
			Command:     "settings",
			Description: "Exam settings",
		},
		{
			Command:     "topic",
			Description: "Set the default topic",
		},
		{
			Command:     "language",
			Description: "Set the question language",
		},
		{
			Command:     "help",
			Description: "Help",
		},
	}

	_, err = bot.Request(tgbotapi.NewSetMyCommands(commands...))
	if err != nil {
		lg.Warn("failed to set bot commands", zap.Error(err))
	}

	bot.Debug = cfg.Env == "local"
	lg.Info("authorized on account", zap.String("username", bot.Self.UserName))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dsn, err := cfg.DB.DSN()
	if err != nil {
		lg.Fatal("database is not configured", zap.Error(err))
	}
	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
		MaxConns:        int32(cfg.DB.MaxConnections),
		MaxConnLifetime: cfg.DB.MaxConnLifetime,
	})
	if err != nil {
		lg.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	difficulty, err := entities.ParseDifficulty(cfg.Quiz.Difficulty)
	if err != nil {
		lg.Fatal("invalid default difficulty", zap.Error(err))
	}
	defaults := entities.QuizRequest{
		Topic:      cfg.Quiz.Topic,
		Difficulty: difficulty,
		Count:      cfg.Quiz.Count,
		Language:   cfg.Quiz.Language,
	}
	if err := defaults.Validate(); err != nil {
		lg.Fatal("invalid default quiz settings", zap.Error(err))
	}

	// Initialize repositories and services.
	preferencesRepo := repository.NewPreferencesRepository(pool)
	preferencesService := service.NewPreferencesService(preferencesRepo, defaults)

	fetcher := generator.NewFetcher(generator.Options{
		Endpoint:     cfg.Generator.Endpoint,
		Timeout:      cfg.Generator.Timeout,
		MaxBodyBytes: cfg.Generator.MaxBodyBytes,
	}, lg)

	sessions := storage.NewSessionStorage[*session.Controller]()

	janitor := service.NewSessionJanitor(sessions, cfg.Sessions.IdleTTL, cfg.Sessions.SweepSchedule, lg)
	go func() {
		if err := janitor.Start(ctx); err != nil {
			lg.Error("session janitor stopped", zap.Error(err))
		}
	}()

	handler := telegram.NewHandler(
		bot,
		lg,
		fetcher,
		sessions,
		preferencesService,
	)
	if err := handler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		lg.Error("telegram handler failed", zap.Error(err))
	}

	lg.Info("shutdown signal received")
}
