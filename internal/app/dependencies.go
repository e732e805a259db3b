package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
	"github.com/vladislavdragonenkov/ecom/internal/storage/memory"
	"github.com/vladislavdragonenkov/ecom/internal/storage/postgres"
)

// Dependencies содержит хранилище и связанные с ним репозитории.
type Dependencies struct {
	TxManager  domain.TxManager
	OutboxRepo domain.OutboxRepository
	IdemRepo   domain.IdempotencyRepository
	Logger     *log.Entry

	pg *postgres.Store
}

// NewDependencies выбирает хранилище по конфигурации: PostgreSQL при
// заданном DSN, иначе in-memory.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	if cfg.PostgresDSN == "" {
		logger.Info("using in-memory storage")
		store := memory.NewStore()
		return &Dependencies{
			TxManager:  store,
			OutboxRepo: store.OutboxRepository(),
			IdemRepo:   memory.NewIdempotencyRepository(),
			Logger:     logger,
		}, nil
	}

	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info("using postgres storage")

	return &Dependencies{
		TxManager:  store,
		OutboxRepo: postgres.NewOutboxRepository(store),
		IdemRepo:   postgres.NewIdempotencyRepository(store),
		Logger:     logger,
		pg:         store,
	}, nil
}

// Ping проверяет доступность хранилища; in-memory всегда доступно.
func (d *Dependencies) Ping(ctx context.Context) error {
	if d.pg == nil {
		return nil
	}
	return d.pg.Ping(ctx)
}

// Close освобождает ресурсы хранилища.
func (d *Dependencies) Close() error {
	if d.pg == nil {
		return nil
	}
	return d.pg.Close()
}
