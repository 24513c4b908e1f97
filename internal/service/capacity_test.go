package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Freeeeeet/skillmatch/internal/apperr"
	"github.com/Freeeeeet/skillmatch/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcceptLesson_FillsAndCloses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tutor := env.seedUser(t, model.RoleTutor)
	a := env.seedUser(t, model.RoleLearner)
	b := env.seedUser(t, model.RoleLearner)
	c := env.seedUser(t, model.RoleLearner)
	p1 := env.seedLesson(t, tutor, 2)

	res, err := env.engine.AcceptLesson(ctx, p1.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LessonStatusOpen, res.Lesson.Status)
	assert.Equal(t, 1, res.Participants)

	res, err = env.engine.AcceptLesson(ctx, p1.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LessonStatusClosed, res.Lesson.Status)
	assert.Equal(t, 2, res.Participants)
	assert.Equal(t, model.LessonStatusClosed, env.lesson(t, p1.ID).Status)

	_, err = env.engine.AcceptLesson(ctx, p1.ID, c.ID)
	require.ErrorIs(t, err, apperr.ErrCapacityExceeded)

	ids, err := env.catalog.ListParticipants(ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, b.ID}, ids)
}

func TestAcceptLesson_ExactlyMaxSucceed(t *testing.T) {
	for _, max := range []int{1, 3, 5} {
		t.Run(fmt.Sprintf("max=%d", max), func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()

			tutor := env.seedUser(t, model.RoleTutor)
			lesson := env.seedLesson(t, tutor, max)

			for i := 1; i <= max+1; i++ {
				user := env.seedUser(t, model.RoleLearner)
				res, err := env.engine.AcceptLesson(ctx, lesson.ID, user.ID)

				if i > max {
					require.ErrorIs(t, err, apperr.ErrCapacityExceeded)
					continue
				}

				require.NoError(t, err)
				assert.Equal(t, i, res.Participants)
				if i == max {
					assert.Equal(t, model.LessonStatusClosed, res.Lesson.Status)
				} else {
					assert.Equal(t, model.LessonStatusOpen, res.Lesson.Status)
				}
			}
		})
	}
}

func TestAcceptLesson_Preconditions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tutor := env.seedUser(t, model.RoleTutor)
	learner := env.seedUser(t, model.RoleLearner)

	t.Run("missing lesson", func(t *testing.T) {
		_, err := env.engine.AcceptLesson(ctx, 777, learner.ID)
		require.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("tutor joins own lesson", func(t *testing.T) {
		lesson := env.seedLesson(t, tutor, 3)
		_, err := env.engine.AcceptLesson(ctx, lesson.ID, tutor.ID)
		require.ErrorIs(t, err, apperr.ErrSelfAcceptanceForbidden)
	})

	t.Run("joins twice", func(t *testing.T) {
		lesson := env.seedLesson(t, tutor, 3)
		_, err := env.engine.AcceptLesson(ctx, lesson.ID, learner.ID)
		require.NoError(t, err)

		_, err = env.engine.AcceptLesson(ctx, lesson.ID, learner.ID)
		require.ErrorIs(t, err, apperr.ErrAlreadyJoined)
	})

	t.Run("joins twice a full lesson", func(t *testing.T) {
		lesson := env.seedLesson(t, tutor, 1)
		_, err := env.engine.AcceptLesson(ctx, lesson.ID, learner.ID)
		require.NoError(t, err)

		_, err = env.engine.AcceptLesson(ctx, lesson.ID, learner.ID)
		require.ErrorIs(t, err, apperr.ErrAlreadyJoined)
	})

	t.Run("scheduled lesson", func(t *testing.T) {
		lesson := env.seedLesson(t, tutor, 3)
		_, err := env.engine.ScheduleLesson(ctx, lesson.ID, time.Now().Add(24*time.Hour))
		require.NoError(t, err)

		_, err = env.engine.AcceptLesson(ctx, lesson.ID, learner.ID)
		require.ErrorIs(t, err, apperr.ErrInvalidStateTransition)
	})

	t.Run("completed lesson", func(t *testing.T) {
		lesson := env.seedLesson(t, tutor, 3)
		_, err := env.engine.CompleteLesson(ctx, lesson.ID)
		require.NoError(t, err)

		_, err = env.engine.AcceptLesson(ctx, lesson.ID, learner.ID)
		require.ErrorIs(t, err, apperr.ErrInvalidStateTransition)
	})
}

func TestAcceptLesson_ConcurrentJoinersNeverOverbook(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	const max, joiners = 3, 24
	tutor := env.seedUser(t, model.RoleTutor)
	lesson := env.seedLesson(t, tutor, max)

	users := make([]*model.User, joiners)
	for i := range users {
		users[i] = env.seedUser(t, model.RoleLearner)
	}

	errs := race(joiners, func(i int) error {
		_, err := env.engine.AcceptLesson(ctx, lesson.ID, users[i].ID)
		return err
	})

	admitted := 0
	for _, err := range errs {
		if err == nil {
			admitted++
			continue
		}
		assert.ErrorIs(t, err, apperr.ErrCapacityExceeded)
	}
	assert.Equal(t, max, admitted)

	ids, err := env.catalog.ListParticipants(ctx, lesson.ID)
	require.NoError(t, err)
	assert.Len(t, ids, max)
	assert.Equal(t, model.LessonStatusClosed, env.lesson(t, lesson.ID).Status)
}

func TestAcceptLesson_FailedCloseRollsBackJoin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tutor := env.seedUser(t, model.RoleTutor)
	learner := env.seedUser(t, model.RoleLearner)
	lesson := env.seedLesson(t, tutor, 1)

	boom := errors.New("disk full")
	env.store.FailNext("lessons.update_status", boom)

	_, err := env.engine.AcceptLesson(ctx, lesson.ID, learner.ID)
	require.ErrorIs(t, err, boom)

	ids, err := env.catalog.ListParticipants(ctx, lesson.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Equal(t, model.LessonStatusOpen, env.lesson(t, lesson.ID).Status)

	_, err = env.engine.AcceptLesson(ctx, lesson.ID, learner.ID)
	require.NoError(t, err)
}

func TestLeaveLesson_ReopensClosedLesson(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tutor := env.seedUser(t, model.RoleTutor)
	a := env.seedUser(t, model.RoleLearner)
	b := env.seedUser(t, model.RoleLearner)
	c := env.seedUser(t, model.RoleLearner)
	lesson := env.seedLesson(t, tutor, 2)

	for _, u := range []*model.User{a, b} {
		_, err := env.engine.AcceptLesson(ctx, lesson.ID, u.ID)
		require.NoError(t, err)
	}

	res, err := env.engine.LeaveLesson(ctx, lesson.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LessonStatusOpen, res.Lesson.Status)
	assert.Equal(t, 1, res.Participants)

	_, err = env.engine.LeaveLesson(ctx, lesson.ID, a.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	res, err = env.engine.AcceptLesson(ctx, lesson.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LessonStatusClosed, res.Lesson.Status)
}

func TestLeaveLesson_ScheduledLesson(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tutor := env.seedUser(t, model.RoleTutor)
	learner := env.seedUser(t, model.RoleLearner)
	lesson := env.seedLesson(t, tutor, 2)

	_, err := env.engine.AcceptLesson(ctx, lesson.ID, learner.ID)
	require.NoError(t, err)
	_, err = env.engine.ScheduleLesson(ctx, lesson.ID, time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = env.engine.LeaveLesson(ctx, lesson.ID, learner.ID)
	require.ErrorIs(t, err, apperr.ErrInvalidStateTransition)
}
