package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/skillmatch/internal/apperr"
	"github.com/Freeeeeet/skillmatch/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)

	user := &model.User{TelegramID: 1, Role: model.RoleLearner}
	require.NoError(t, tx.Users().Create(ctx, user))
	require.NoError(t, tx.Rollback(ctx))

	tx, err = s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	got, err := tx.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_CommitPublishesWrites(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(WithClock(func() time.Time { return now }))

	tx, err := s.Begin(ctx)
	require.NoError(t, err)

	user := &model.User{TelegramID: 7, Role: model.RoleTutor}
	require.NoError(t, tx.Users().Create(ctx, user))
	require.NoError(t, tx.Commit(ctx))
	require.NoError(t, tx.Rollback(ctx))

	_, err = tx.Users().GetByID(ctx, user.ID)
	require.ErrorIs(t, err, ErrTxClosed)

	tx, err = s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	got, err := tx.Users().GetByTelegramID(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, now, got.CreatedAt)
}

func TestStore_BeginWaitsForOpenTransaction(t *testing.T) {
	s := NewStore()

	tx, err := s.Begin(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = s.Begin(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, tx.Rollback(context.Background()))

	tx, err = s.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Rollback(context.Background()))
}

func TestStore_FailNextFiresOnce(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	boom := errors.New("boom")

	s.FailNext("lessons.create", boom)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	lesson := &model.Lesson{TutorID: 1, Title: "SQL", MaxParticipants: 2, Status: model.LessonStatusOpen}
	require.ErrorIs(t, tx.Lessons().Create(ctx, lesson), boom)
	require.NoError(t, tx.Lessons().Create(ctx, lesson))
}

func TestStore_UniqueConstraints(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	request := &model.Request{LearnerID: 1, SkillName: "Go", Status: model.RequestStatusPending}
	require.NoError(t, tx.Requests().Create(ctx, request))
	lesson := &model.Lesson{TutorID: 1, Title: "SQL", MaxParticipants: 2, Status: model.LessonStatusOpen}
	require.NoError(t, tx.Lessons().Create(ctx, lesson))

	require.NoError(t, tx.Acceptances().Create(ctx, &model.AcceptedRequest{RequestID: request.ID, AcceptorID: 2, Status: model.AcceptanceStatusAccepted}))
	err = tx.Acceptances().Create(ctx, &model.AcceptedRequest{RequestID: request.ID, AcceptorID: 3, Status: model.AcceptanceStatusAccepted})
	require.ErrorIs(t, err, apperr.ErrAlreadyAccepted)

	require.NoError(t, tx.Participants().Add(ctx, &model.LessonParticipant{LessonID: lesson.ID, UserID: 2}))
	err = tx.Participants().Add(ctx, &model.LessonParticipant{LessonID: lesson.ID, UserID: 2})
	require.ErrorIs(t, err, apperr.ErrAlreadyJoined)

	err = tx.Participants().Add(ctx, &model.LessonParticipant{LessonID: 404, UserID: 2})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStore_ConditionalUpdates(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	request := &model.Request{LearnerID: 1, SkillName: "Go", Status: model.RequestStatusPending}
	require.NoError(t, tx.Requests().Create(ctx, request))

	ok, err := tx.Requests().UpdateStatus(ctx, request.ID, model.RequestStatusScheduled, model.RequestStatusCompleted)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = tx.Requests().UpdateStatus(ctx, request.ID, model.RequestStatusPending, model.RequestStatusScheduled)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = tx.Requests().UpdateStatus(ctx, 999, model.RequestStatusPending, model.RequestStatusScheduled)
	require.NoError(t, err)
	assert.False(t, ok)
}
