package handlers

import (
	"context"
	"testing"

	"github.com/Freeeeeet/skillmatch/internal/apperr"
	"github.com/Freeeeeet/skillmatch/internal/controller/common"
	"github.com/Freeeeeet/skillmatch/internal/model"
	"github.com/Freeeeeet/skillmatch/internal/repository/memory"
	"github.com/Freeeeeet/skillmatch/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	store    *memory.Store
	engine   *service.Engine
	catalog  *service.CatalogService
	handlers *Handlers
	nextTg   int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	logger := zap.NewNop()
	engine := service.NewEngine(store, logger)
	catalog := service.NewCatalogService(store, logger)
	return &fixture{
		store:    store,
		engine:   engine,
		catalog:  catalog,
		handlers: NewHandlers(service.NewUserService(store, logger), catalog, engine, nil, logger),
	}
}

func (f *fixture) user(t *testing.T, role model.Role) *model.User {
	t.Helper()
	ctx := context.Background()

	tx, err := f.store.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	f.nextTg++
	user := &model.User{TelegramID: 500 + f.nextTg, FirstName: string(role), Role: role}
	require.NoError(t, tx.Users().Create(ctx, user))
	require.NoError(t, tx.Commit(ctx))
	return user
}

func TestRequireMatchParty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	learner := f.user(t, model.RoleLearner)
	tutor := f.user(t, model.RoleTutor)
	stranger := f.user(t, model.RoleTutor)

	request, err := f.catalog.CreateRequest(ctx, service.NewRequest{LearnerID: learner.ID, SkillName: "Go"})
	require.NoError(t, err)
	match, err := f.engine.AcceptRequest(ctx, request.ID, tutor.ID)
	require.NoError(t, err)

	tests := []struct {
		name       string
		user       *model.User
		acceptedID int64
		wantErr    error
	}{
		{"learner", learner, match.ID, nil},
		{"acceptor", tutor, match.ID, nil},
		{"stranger", stranger, match.ID, common.ErrNotMatchParty},
		{"missing acceptance", learner, 9999, apperr.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.handlers.requireMatchParty(ctx, tt.user, tt.acceptedID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got.Request)
			assert.Equal(t, match.ID, got.ID)
			assert.Equal(t, learner.ID, got.Request.LearnerID)
		})
	}
}

func TestCounterpart(t *testing.T) {
	match := &model.AcceptedRequest{
		AcceptorID: 2,
		Request:    &model.Request{LearnerID: 1},
	}

	tests := []struct {
		name   string
		userID int64
		want   int64
	}{
		{"acceptor gets learner", 2, 1},
		{"learner gets acceptor", 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, counterpart(match, tt.userID))
		})
	}
}

func TestRequireLessonOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tutor := f.user(t, model.RoleTutor)
	other := f.user(t, model.RoleTutor)
	lesson, err := f.catalog.CreateLesson(ctx, service.NewLesson{TutorID: tutor.ID, Title: "SQL", MaxParticipants: 3})
	require.NoError(t, err)

	tests := []struct {
		name     string
		user     *model.User
		lessonID int64
		wantErr  error
	}{
		{"owner", tutor, lesson.ID, nil},
		{"another tutor", other, lesson.ID, common.ErrNotLessonOwner},
		{"missing lesson", tutor, 4242, apperr.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.handlers.requireLessonOwner(ctx, tt.user, tt.lessonID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCheckAdmin(t *testing.T) {
	tests := []struct {
		name    string
		user    *model.User
		wantErr error
	}{
		{"admin", &model.User{Role: model.RoleAdmin}, nil},
		{"tutor", &model.User{Role: model.RoleTutor}, common.ErrNotAnAdmin},
		{"learner", &model.User{Role: model.RoleLearner}, common.ErrNotAnAdmin},
		{"unknown user", nil, common.ErrNotAnAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkAdmin(tt.user)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}
