package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultMeetingBaseURL = "https://meet.jit.si/skillmatch"

// Engine движок принятия, вместимости и расписания.
// Каждая публичная операция выполняется ровно в одной транзакции хранилища;
// состояние между вызовами не хранится.
type Engine struct {
	store          Store
	logger         *zap.Logger
	meetingBaseURL string
	newMeetingCode func() uuid.UUID
}

type EngineOption func(*Engine)

// WithMeetingBaseURL задаёт базовый адрес для сгенерированных онлайн-встреч
func WithMeetingBaseURL(url string) EngineOption {
	return func(e *Engine) {
		if url != "" {
			e.meetingBaseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithMeetingCodes подменяет генератор кодов встреч (для тестов)
func WithMeetingCodes(fn func() uuid.UUID) EngineOption {
	return func(e *Engine) { e.newMeetingCode = fn }
}

func NewEngine(store Store, logger *zap.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		store:          store,
		logger:         logger,
		meetingBaseURL: defaultMeetingBaseURL,
		newMeetingCode: uuid.New,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// withTx выполняет fn в транзакции. Любая ошибка fn или отмена контекста
// приводит к полному откату; Rollback вызывается на каждом пути выхода.
func withTx(ctx context.Context, store Store, fn func(tx Tx) error) error {
	tx, err := store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func (e *Engine) meetingLink() string {
	return e.meetingBaseURL + "/" + e.newMeetingCode().String()
}
