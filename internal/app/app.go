package app

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/skillmatch/internal/config"
	"github.com/Freeeeeet/skillmatch/internal/repository"
	"github.com/Freeeeeet/skillmatch/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App собранные зависимости приложения
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Pool    *pgxpool.Pool
	Store   *repository.Store
	Engine  *service.Engine
	Users   *service.UserService
	Catalog *service.CatalogService
}

// New подключается к базе и собирает сервисы
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := repository.NewStore(pool, repository.WithLockTimeout(cfg.DBLockTimeout))

	return &App{
		Config:  cfg,
		Logger:  logger,
		Pool:    pool,
		Store:   store,
		Engine:  service.NewEngine(store, logger, service.WithMeetingBaseURL(cfg.MeetingBaseURL)),
		Users:   service.NewUserService(store, logger),
		Catalog: service.NewCatalogService(store, logger),
	}, nil
}

// Migrate применяет миграции
func (a *App) Migrate(ctx context.Context) error {
	migrator, err := NewMigrator(a.Pool, a.Config.MigrationsDir, a.Logger)
	if err != nil {
		return err
	}
	defer migrator.Close()

	return migrator.Run(ctx)
}

// MigrationStatus выводит состояние миграций
func (a *App) MigrationStatus(ctx context.Context) error {
	migrator, err := NewMigrator(a.Pool, a.Config.MigrationsDir, a.Logger)
	if err != nil {
		return err
	}
	defer migrator.Close()

	return migrator.Status(ctx)
}

func (a *App) Close() {
	a.Pool.Close()
}
