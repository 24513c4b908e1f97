package service_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Freeeeeet/skillmatch/internal/model"
	"github.com/Freeeeeet/skillmatch/internal/repository/memory"
	"github.com/Freeeeeet/skillmatch/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedMeetingCode = uuid.MustParse("6f1c2a7e-0d4b-4b8e-9a53-2f0d6c1e8b11")

type testEnv struct {
	store   *memory.Store
	engine  *service.Engine
	catalog *service.CatalogService
	users   *service.UserService
	nextTg  atomic.Int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	logger := zap.NewNop()
	return &testEnv{
		store: store,
		engine: service.NewEngine(store, logger,
			service.WithMeetingBaseURL("https://meet.example.org/"),
			service.WithMeetingCodes(func() uuid.UUID { return fixedMeetingCode }),
		),
		catalog: service.NewCatalogService(store, logger),
		users:   service.NewUserService(store, logger),
	}
}

// seedUser создаёт пользователя с заданной ролью в обход регистрации
func (e *testEnv) seedUser(t *testing.T, role model.Role) *model.User {
	t.Helper()
	ctx := context.Background()

	tx, err := e.store.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	user := &model.User{TelegramID: 1000 + e.nextTg.Add(1), FirstName: string(role), Role: role}
	require.NoError(t, tx.Users().Create(ctx, user))
	require.NoError(t, tx.Commit(ctx))
	return user
}

func (e *testEnv) seedRequest(t *testing.T, learner *model.User, preferredTutor *model.User) *model.Request {
	t.Helper()
	in := service.NewRequest{LearnerID: learner.ID, SkillName: "Go", Topic: "concurrency"}
	if preferredTutor != nil {
		in.PreferredTutorID = &preferredTutor.ID
	}
	request, err := e.catalog.CreateRequest(context.Background(), in)
	require.NoError(t, err)
	return request
}

func (e *testEnv) seedLesson(t *testing.T, tutor *model.User, max int) *model.Lesson {
	t.Helper()
	lesson, err := e.catalog.CreateLesson(context.Background(), service.NewLesson{
		TutorID:         tutor.ID,
		Title:           "Intro to SQL",
		MaxParticipants: max,
	})
	require.NoError(t, err)
	return lesson
}

func (e *testEnv) request(t *testing.T, id int64) *model.Request {
	t.Helper()
	request, err := e.catalog.GetRequest(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, request)
	return request
}

func (e *testEnv) acceptance(t *testing.T, id int64) *model.AcceptedRequest {
	t.Helper()
	acceptance, err := e.catalog.GetAcceptance(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, acceptance)
	return acceptance
}

func (e *testEnv) lesson(t *testing.T, id int64) *model.Lesson {
	t.Helper()
	lesson, err := e.catalog.GetLesson(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, lesson)
	return lesson
}

func (e *testEnv) countRole(t *testing.T, role model.Role) int {
	t.Helper()
	ctx := context.Background()
	tx, err := e.store.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	n, err := tx.Users().CountByRole(ctx, role)
	require.NoError(t, err)
	return n
}

// race запускает n вызовов fn одновременно и возвращает их ошибки
func race(n int, fn func(i int) error) []error {
	errs := make([]error, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = fn(i)
		}(i)
	}
	close(start)
	wg.Wait()
	return errs
}
