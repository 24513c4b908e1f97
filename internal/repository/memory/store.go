// Package memory реализует хранилище движка в памяти процесса.
//
// Транзакции полностью сериализованы: Begin захватывает хранилище до Commit
// или Rollback и работает с копией данных, которая подменяет оригинал при Commit.
// Это строже построчных блокировок Postgres, но даёт те же гарантии атомарности
// и используется в модульных тестах.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Freeeeeet/skillmatch/internal/model"
	"github.com/Freeeeeet/skillmatch/internal/service"
)

// ErrTxClosed операция над завершённой транзакцией
var ErrTxClosed = errors.New("memory: transaction already closed")

type participantKey struct {
	lessonID int64
	userID   int64
}

type data struct {
	nextID       int64
	users        map[int64]model.User
	requests     map[int64]model.Request
	acceptances  map[int64]model.AcceptedRequest
	lessons      map[int64]model.Lesson
	participants map[participantKey]model.LessonParticipant
}

func newData() *data {
	return &data{
		users:        make(map[int64]model.User),
		requests:     make(map[int64]model.Request),
		acceptances:  make(map[int64]model.AcceptedRequest),
		lessons:      make(map[int64]model.Lesson),
		participants: make(map[participantKey]model.LessonParticipant),
	}
}

func (d *data) clone() *data {
	c := &data{
		nextID:       d.nextID,
		users:        make(map[int64]model.User, len(d.users)),
		requests:     make(map[int64]model.Request, len(d.requests)),
		acceptances:  make(map[int64]model.AcceptedRequest, len(d.acceptances)),
		lessons:      make(map[int64]model.Lesson, len(d.lessons)),
		participants: make(map[participantKey]model.LessonParticipant, len(d.participants)),
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.requests {
		c.requests[k] = v
	}
	for k, v := range d.acceptances {
		c.acceptances[k] = v
	}
	for k, v := range d.lessons {
		c.lessons[k] = v
	}
	for k, v := range d.participants {
		c.participants[k] = v
	}
	return c
}

func (d *data) newID() int64 {
	d.nextID++
	return d.nextID
}

// Store хранилище в памяти
type Store struct {
	sem  chan struct{}
	mu   sync.Mutex // защищает data и faults
	data *data
	now  func() time.Time

	faults map[string]error
}

type Option func(*Store)

// WithClock подменяет источник времени
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		sem:    make(chan struct{}, 1),
		data:   newData(),
		now:    time.Now,
		faults: make(map[string]error),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FailNext заставляет следующий вызов операции op вернуть err.
// Имена операций: "<repository>.<method>", например "requests.update_status".
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

func (s *Store) takeFault(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err, ok := s.faults[op]
	if !ok {
		return nil
	}
	delete(s.faults, op)
	return err
}

// Begin ждёт освобождения хранилища или отмены контекста
func (s *Store) Begin(ctx context.Context) (service.Tx, error) {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	return &Tx{store: s, data: snapshot}, nil
}

// Tx транзакция хранилища в памяти
type Tx struct {
	store *Store
	data  *data
	done  bool
}

func (t *Tx) Requests() service.RequestRepository         { return &requestRepo{tx: t} }
func (t *Tx) Acceptances() service.AcceptanceRepository   { return &acceptanceRepo{tx: t} }
func (t *Tx) Lessons() service.LessonRepository           { return &lessonRepo{tx: t} }
func (t *Tx) Participants() service.ParticipantRepository { return &participantRepo{tx: t} }
func (t *Tx) Users() service.UserRepository               { return &userRepo{tx: t} }

func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return ErrTxClosed
	}
	if err := t.store.takeFault("tx.commit"); err != nil {
		t.release()
		return err
	}
	if err := ctx.Err(); err != nil {
		t.release()
		return err
	}

	t.store.mu.Lock()
	t.store.data = t.data
	t.store.mu.Unlock()

	t.release()
	return nil
}

func (t *Tx) Rollback(context.Context) error {
	if t.done {
		return nil
	}
	t.release()
	return nil
}

func (t *Tx) release() {
	t.done = true
	t.data = nil
	<-t.store.sem
}

// check проверяет состояние транзакции и внедрённые ошибки
func (t *Tx) check(ctx context.Context, op string) error {
	if t.done {
		return ErrTxClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.store.takeFault(op)
}

func (t *Tx) now() time.Time {
	return t.store.now().UTC()
}
