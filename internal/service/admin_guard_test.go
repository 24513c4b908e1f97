package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/skillmatch/internal/apperr"
	"github.com/Freeeeeet/skillmatch/internal/model"
	"github.com/Freeeeeet/skillmatch/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteUser_SoleAdminIsProtected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.seedUser(t, model.RoleAdmin)
	env.seedUser(t, model.RoleLearner)

	err := env.engine.DeleteUser(ctx, admin.ID)
	require.ErrorIs(t, err, apperr.ErrLastAdminProtection)

	user, err := env.users.GetByID(ctx, admin.ID)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, model.RoleAdmin, user.Role)
}

func TestDeleteUser_OneOfTwoAdmins(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first := env.seedUser(t, model.RoleAdmin)
	second := env.seedUser(t, model.RoleAdmin)

	require.NoError(t, env.engine.DeleteUser(ctx, first.ID))
	assert.Equal(t, 1, env.countRole(t, model.RoleAdmin))

	err := env.engine.DeleteUser(ctx, second.ID)
	require.ErrorIs(t, err, apperr.ErrLastAdminProtection)
	assert.Equal(t, 1, env.countRole(t, model.RoleAdmin))
}

func TestDeleteUser_ConcurrentAdminDeletionsKeepOne(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admins := []*model.User{env.seedUser(t, model.RoleAdmin), env.seedUser(t, model.RoleAdmin)}

	errs := race(len(admins), func(i int) error {
		return env.engine.DeleteUser(ctx, admins[i].ID)
	})

	deleted := 0
	for _, err := range errs {
		if err == nil {
			deleted++
			continue
		}
		assert.ErrorIs(t, err, apperr.ErrLastAdminProtection)
	}
	assert.Equal(t, 1, deleted)
	assert.Equal(t, 1, env.countRole(t, model.RoleAdmin))
}

func TestDeleteUser_NonAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, model.RoleAdmin)
	learner := env.seedUser(t, model.RoleLearner)
	tutor := env.seedUser(t, model.RoleTutor)

	request := env.seedRequest(t, learner, nil)
	lesson := env.seedLesson(t, tutor, 2)
	_, err := env.engine.AcceptLesson(ctx, lesson.ID, learner.ID)
	require.NoError(t, err)

	require.NoError(t, env.engine.DeleteUser(ctx, learner.ID))

	gone, err := env.catalog.GetRequest(ctx, request.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	ids, err := env.catalog.ListParticipants(ctx, lesson.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	err = env.engine.DeleteUser(ctx, learner.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteUser_AcceptorReleasesRequests(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	learner := env.seedUser(t, model.RoleLearner)
	tutor := env.seedUser(t, model.RoleTutor)

	scheduledReq := env.seedRequest(t, learner, nil)
	acceptedReq := env.seedRequest(t, learner, nil)
	completedReq := env.seedRequest(t, learner, nil)

	scheduled, err := env.engine.AcceptRequest(ctx, scheduledReq.ID, tutor.ID)
	require.NoError(t, err)
	_, err = env.engine.ScheduleMeeting(ctx, scheduled.ID, time.Now().Add(time.Hour), model.MeetingTypeOnline, "")
	require.NoError(t, err)

	accepted, err := env.engine.AcceptRequest(ctx, acceptedReq.ID, tutor.ID)
	require.NoError(t, err)

	completed, err := env.engine.AcceptRequest(ctx, completedReq.ID, tutor.ID)
	require.NoError(t, err)
	_, err = env.engine.Complete(ctx, completed.ID)
	require.NoError(t, err)

	require.NoError(t, env.engine.DeleteUser(ctx, tutor.ID))

	for _, id := range []int64{scheduled.ID, accepted.ID, completed.ID} {
		gone, err := env.catalog.GetAcceptance(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, gone)
	}

	assert.Equal(t, model.RequestStatusPending, env.request(t, scheduledReq.ID).Status)
	assert.Equal(t, model.RequestStatusPending, env.request(t, acceptedReq.ID).Status)
	assert.Equal(t, model.RequestStatusCompleted, env.request(t, completedReq.ID).Status)

	// Освобождённые запросы снова можно принять или отменить
	replacement := env.seedUser(t, model.RoleTutor)
	_, err = env.engine.AcceptRequest(ctx, scheduledReq.ID, replacement.ID)
	require.NoError(t, err)

	cancelled, err := env.engine.CancelRequest(ctx, acceptedReq.ID, learner.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusCancelled, cancelled.Status)
}

func TestDeleteUser_ReleaseFailureKeepsAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	learner := env.seedUser(t, model.RoleLearner)
	tutor := env.seedUser(t, model.RoleTutor)
	request := env.seedRequest(t, learner, nil)

	match, err := env.engine.AcceptRequest(ctx, request.ID, tutor.ID)
	require.NoError(t, err)
	_, err = env.engine.ScheduleMeeting(ctx, match.ID, time.Now().Add(time.Hour), model.MeetingTypeOnline, "")
	require.NoError(t, err)

	boom := errors.New("connection reset")
	env.store.FailNext("requests.update_status", boom)

	err = env.engine.DeleteUser(ctx, tutor.ID)
	require.ErrorIs(t, err, boom)

	user, err := env.users.GetByID(ctx, tutor.ID)
	require.NoError(t, err)
	require.NotNil(t, user)

	stored := env.acceptance(t, match.ID)
	assert.Equal(t, model.AcceptanceStatusScheduled, stored.Status)
	assert.Equal(t, model.RequestStatusScheduled, stored.Request.Status)
}

func TestChangeRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.seedUser(t, model.RoleAdmin)
	tutor := env.seedUser(t, model.RoleTutor)

	_, err := env.engine.ChangeRole(ctx, admin.ID, model.RoleLearner)
	require.ErrorIs(t, err, apperr.ErrLastAdminProtection)

	promoted, err := env.engine.ChangeRole(ctx, tutor.ID, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, promoted.Role)

	demoted, err := env.engine.ChangeRole(ctx, admin.ID, model.RoleTutor)
	require.NoError(t, err)
	assert.Equal(t, model.RoleTutor, demoted.Role)
	assert.Equal(t, 1, env.countRole(t, model.RoleAdmin))

	same, err := env.engine.ChangeRole(ctx, tutor.ID, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, same.Role)

	_, err = env.engine.ChangeRole(ctx, 9999, model.RoleTutor)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = env.engine.ChangeRole(ctx, tutor.ID, model.Role("root"))
	require.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestRegisterUser_FirstUserBecomesAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.users.RegisterUser(ctx, 11, "ada", "Ada", "Lovelace", "en")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, first.Role)

	second, err := env.users.RegisterUser(ctx, 12, "alan", "Alan", "Turing", "en")
	require.NoError(t, err)
	assert.Equal(t, model.RoleLearner, second.Role)

	again, err := env.users.RegisterUser(ctx, 12, "aturing", "Alan", "Turing", "en")
	require.NoError(t, err)
	assert.Equal(t, second.ID, again.ID)
	assert.Equal(t, "aturing", again.Username)

	byTelegram, err := env.users.GetByTelegramID(ctx, 12)
	require.NoError(t, err)
	assert.Equal(t, "aturing", byTelegram.Username)
}
