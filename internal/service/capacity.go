package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/skillmatch/internal/apperr"
	"github.com/Freeeeeet/skillmatch/internal/model"
	"go.uber.org/zap"
)

// JoinResult состояние занятия после изменения состава участников
type JoinResult struct {
	Lesson       *model.Lesson
	Participants int
}

// AcceptLesson записывает пользователя на групповое занятие.
// Строка занятия блокируется, поэтому проверка вместимости, вставка участника
// и закрытие занятия выполняются атомарно относительно других записей на то же занятие.
func (e *Engine) AcceptLesson(ctx context.Context, lessonID, userID int64) (*JoinResult, error) {
	const op = "accept lesson"

	var result *JoinResult
	err := withTx(ctx, e.store, func(tx Tx) error {
		lesson, err := tx.Lessons().LockByID(ctx, lessonID)
		if err != nil {
			return fmt.Errorf("lock lesson: %w", err)
		}
		if lesson == nil {
			return apperr.New(apperr.KindNotFound, op, "lesson not found")
		}

		switch lesson.Status {
		case model.LessonStatusScheduled:
			return apperr.New(apperr.KindInvalidStateTransition, op, "lesson already scheduled")
		case model.LessonStatusCompleted:
			return apperr.New(apperr.KindInvalidStateTransition, op, "lesson already completed")
		}

		if lesson.TutorID == userID {
			return apperr.New(apperr.KindSelfAcceptanceForbidden, op, "cannot join own lesson")
		}

		joined, err := tx.Participants().Exists(ctx, lessonID, userID)
		if err != nil {
			return fmt.Errorf("check participant: %w", err)
		}
		if joined {
			return apperr.New(apperr.KindAlreadyJoined, op, "already joined this lesson")
		}

		count, err := tx.Participants().Count(ctx, lessonID)
		if err != nil {
			return fmt.Errorf("count participants: %w", err)
		}
		if count >= lesson.MaxParticipants {
			return apperr.New(apperr.KindCapacityExceeded, op,
				fmt.Sprintf("lesson is full (%d/%d)", count, lesson.MaxParticipants))
		}

		// Закрыто вручную при свободных местах
		if lesson.Status == model.LessonStatusClosed {
			return apperr.New(apperr.KindInvalidStateTransition, op, "lesson already closed")
		}

		err = tx.Participants().Add(ctx, &model.LessonParticipant{LessonID: lessonID, UserID: userID})
		if err != nil {
			return fmt.Errorf("add participant: %w", err)
		}

		count, err = tx.Participants().Count(ctx, lessonID)
		if err != nil {
			return fmt.Errorf("recount participants: %w", err)
		}
		if count > lesson.MaxParticipants {
			return apperr.New(apperr.KindCapacityExceeded, op, "lesson overbooked concurrently")
		}

		if count == lesson.MaxParticipants {
			ok, err := tx.Lessons().UpdateStatus(ctx, lessonID,
				[]model.LessonStatus{model.LessonStatusOpen}, model.LessonStatusClosed)
			if err != nil {
				return fmt.Errorf("close lesson: %w", err)
			}
			if !ok {
				return apperr.New(apperr.KindConcurrencyConflict, op, "lesson status changed concurrently")
			}
			lesson.Status = model.LessonStatusClosed
		}

		result = &JoinResult{Lesson: lesson, Participants: count}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Lesson joined",
		zap.Int64("lesson_id", lessonID),
		zap.Int64("user_id", userID),
		zap.Int("participants", result.Participants),
		zap.Int("max_participants", result.Lesson.MaxParticipants),
		zap.String("status", string(result.Lesson.Status)),
	)

	return result, nil
}

// LeaveLesson выписывает участника. Закрытое по заполнению занятие снова открывается.
func (e *Engine) LeaveLesson(ctx context.Context, lessonID, userID int64) (*JoinResult, error) {
	const op = "leave lesson"

	var result *JoinResult
	err := withTx(ctx, e.store, func(tx Tx) error {
		lesson, err := tx.Lessons().LockByID(ctx, lessonID)
		if err != nil {
			return fmt.Errorf("lock lesson: %w", err)
		}
		if lesson == nil {
			return apperr.New(apperr.KindNotFound, op, "lesson not found")
		}

		if lesson.Status != model.LessonStatusOpen && lesson.Status != model.LessonStatusClosed {
			return apperr.New(apperr.KindInvalidStateTransition, op,
				fmt.Sprintf("lesson is %s", lesson.Status))
		}

		removed, err := tx.Participants().Remove(ctx, lessonID, userID)
		if err != nil {
			return fmt.Errorf("remove participant: %w", err)
		}
		if !removed {
			return apperr.New(apperr.KindNotFound, op, "not a participant of this lesson")
		}

		count, err := tx.Participants().Count(ctx, lessonID)
		if err != nil {
			return fmt.Errorf("count participants: %w", err)
		}

		if lesson.Status == model.LessonStatusClosed && count < lesson.MaxParticipants {
			ok, err := tx.Lessons().UpdateStatus(ctx, lessonID,
				[]model.LessonStatus{model.LessonStatusClosed}, model.LessonStatusOpen)
			if err != nil {
				return fmt.Errorf("reopen lesson: %w", err)
			}
			if !ok {
				return apperr.New(apperr.KindConcurrencyConflict, op, "lesson status changed concurrently")
			}
			lesson.Status = model.LessonStatusOpen
		}

		result = &JoinResult{Lesson: lesson, Participants: count}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Lesson left",
		zap.Int64("lesson_id", lessonID),
		zap.Int64("user_id", userID),
		zap.Int("participants", result.Participants),
	)

	return result, nil
}
