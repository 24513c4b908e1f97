package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/skillmatch/internal/app"
	"github.com/Freeeeeet/skillmatch/internal/config"
	"github.com/Freeeeeet/skillmatch/internal/controller"
	"github.com/Freeeeeet/skillmatch/internal/controller/common"
	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

const limiterIdle = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Sugar().Infow("Starting skillmatch bot",
		"environment", cfg.Environment,
		"token_length", len(cfg.TelegramToken))

	if cfg.TelegramToken == "" {
		logger.Fatal("TELEGRAM_TOKEN is required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize app", zap.Error(err))
	}
	defer a.Close()

	if err := a.Migrate(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}

	limiter := common.NewLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	// Забываем лимиты пользователей, которые давно не писали
	scheduler := app.NewScheduler(logger, app.Task{
		Name:     "prune_rate_limiter",
		Interval: limiterIdle,
		Run: func(context.Context) error {
			if n := limiter.Prune(limiterIdle); n > 0 {
				logger.Debug("Rate limiter pruned", zap.Int("visitors", n))
			}
			return nil
		},
	})
	scheduler.Start(ctx)
	defer scheduler.Stop()

	b, err := bot.New(cfg.TelegramToken, bot.WithMiddlewares(controller.Middlewares(limiter, logger)...))
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	botController := controller.NewBotController(b, a.Users, a.Catalog, a.Engine, logger)
	if err := botController.RegisterHandlers(ctx); err != nil {
		logger.Warn("Bot commands menu not set", zap.Error(err))
	}

	if err := botController.Start(ctx); err != nil {
		logger.Error("Bot stopped with error", zap.Error(err))
	}

	logger.Info("Bot stopped")
}
