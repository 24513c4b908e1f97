package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/skillmatch/internal/apperr"
	"github.com/Freeeeeet/skillmatch/internal/model"
	"go.uber.org/zap"
)

// Complete завершает занятие по принятому запросу.
// COMPLETED терминален для записи реестра и для запроса.
func (e *Engine) Complete(ctx context.Context, acceptedID int64) (*model.AcceptedRequest, error) {
	const op = "complete"

	var acceptance *model.AcceptedRequest
	err := withTx(ctx, e.store, func(tx Tx) error {
		var err error
		acceptance, err = tx.Acceptances().LockByID(ctx, acceptedID)
		if err != nil {
			return fmt.Errorf("lock acceptance: %w", err)
		}
		if acceptance == nil {
			return apperr.New(apperr.KindNotFound, op, "acceptance not found")
		}

		// Статус запроса повторяет статус записи реестра
		var requestFrom model.RequestStatus
		switch acceptance.Status {
		case model.AcceptanceStatusAccepted:
			requestFrom = model.RequestStatusPending
		case model.AcceptanceStatusScheduled:
			requestFrom = model.RequestStatusScheduled
		default:
			return apperr.New(apperr.KindInvalidStateTransition, op,
				fmt.Sprintf("acceptance is %s", acceptance.Status))
		}

		ok, err := tx.Acceptances().UpdateStatus(ctx, acceptedID,
			[]model.AcceptanceStatus{acceptance.Status}, model.AcceptanceStatusCompleted)
		if err != nil {
			return fmt.Errorf("update acceptance status: %w", err)
		}
		if !ok {
			return apperr.New(apperr.KindConcurrencyConflict, op, "acceptance status changed concurrently")
		}

		ok, err = tx.Requests().UpdateStatus(ctx, acceptance.RequestID, requestFrom, model.RequestStatusCompleted)
		if err != nil {
			return fmt.Errorf("update request status: %w", err)
		}
		if !ok {
			return apperr.New(apperr.KindConcurrencyConflict, op, "request status changed concurrently")
		}

		acceptance.Status = model.AcceptanceStatusCompleted
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Match completed",
		zap.Int64("acceptance_id", acceptedID),
		zap.Int64("request_id", acceptance.RequestID),
	)

	return acceptance, nil
}

// CompleteLesson завершает групповое занятие. Права владельца проверяет вызывающий слой.
func (e *Engine) CompleteLesson(ctx context.Context, lessonID int64) (*model.Lesson, error) {
	const op = "complete lesson"

	var lesson *model.Lesson
	err := withTx(ctx, e.store, func(tx Tx) error {
		var err error
		lesson, err = tx.Lessons().LockByID(ctx, lessonID)
		if err != nil {
			return fmt.Errorf("lock lesson: %w", err)
		}
		if lesson == nil {
			return apperr.New(apperr.KindNotFound, op, "lesson not found")
		}

		if lesson.Status == model.LessonStatusCompleted {
			return apperr.New(apperr.KindInvalidStateTransition, op, "lesson already completed")
		}

		from := []model.LessonStatus{model.LessonStatusOpen, model.LessonStatusClosed, model.LessonStatusScheduled}
		ok, err := tx.Lessons().UpdateStatus(ctx, lessonID, from, model.LessonStatusCompleted)
		if err != nil {
			return fmt.Errorf("update lesson status: %w", err)
		}
		if !ok {
			return apperr.New(apperr.KindConcurrencyConflict, op, "lesson status changed concurrently")
		}

		lesson.Status = model.LessonStatusCompleted
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Lesson completed", zap.Int64("lesson_id", lessonID))

	return lesson, nil
}
