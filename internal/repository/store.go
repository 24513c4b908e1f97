package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/skillmatch/internal/repository/base"
	"github.com/Freeeeeet/skillmatch/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store хранилище движка поверх Postgres
type Store struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

type StoreOption func(*Store)

// WithLockTimeout ограничивает ожидание блокировок строк внутри транзакции.
// Истечение даёт SQLSTATE 55P03, который движок считает конфликтом.
func WithLockTimeout(d time.Duration) StoreOption {
	return func(s *Store) { s.lockTimeout = d }
}

func NewStore(pool *pgxpool.Pool, opts ...StoreOption) *Store {
	s := &Store{pool: pool}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Pool возвращает пул соединений
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Begin открывает транзакцию READ COMMITTED. Сериализация конкурентных
// изменений обеспечивается блокировками строк (SELECT ... FOR UPDATE).
func (s *Store) Begin(ctx context.Context) (service.Tx, error) {
	pgTx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}

	if s.lockTimeout > 0 {
		timeout := fmt.Sprintf("%dms", s.lockTimeout.Milliseconds())
		if _, err := pgTx.Exec(ctx, `SELECT set_config('lock_timeout', $1, true)`, timeout); err != nil {
			_ = pgTx.Rollback(ctx)
			return nil, fmt.Errorf("set lock timeout: %w", err)
		}
	}

	return newTx(pgTx), nil
}

// Tx транзакция Postgres с репозиториями, привязанными к ней
type Tx struct {
	tx           pgx.Tx
	requests     *RequestRepository
	acceptances  *AcceptedRequestRepository
	lessons      *LessonRepository
	participants *ParticipantRepository
	users        *UserRepository
}

func newTx(tx pgx.Tx) *Tx {
	return &Tx{
		tx:           tx,
		requests:     NewRequestRepository(tx),
		acceptances:  NewAcceptedRequestRepository(tx),
		lessons:      NewLessonRepository(tx),
		participants: NewParticipantRepository(tx),
		users:        NewUserRepository(tx),
	}
}

func (t *Tx) Requests() service.RequestRepository         { return t.requests }
func (t *Tx) Acceptances() service.AcceptanceRepository   { return t.acceptances }
func (t *Tx) Lessons() service.LessonRepository           { return t.lessons }
func (t *Tx) Participants() service.ParticipantRepository { return t.participants }
func (t *Tx) Users() service.UserRepository               { return t.users }

func (t *Tx) Commit(ctx context.Context) error {
	return base.Classify("commit", t.tx.Commit(ctx))
}

// Rollback игнорирует pgx.ErrTxClosed, чтобы его можно было вызывать через defer после Commit
func (t *Tx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}
