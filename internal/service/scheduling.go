package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/skillmatch/internal/apperr"
	"github.com/Freeeeeet/skillmatch/internal/model"
	"go.uber.org/zap"
)

// ScheduleMeeting назначает встречу по принятому запросу.
// Запись реестра и родительский запрос переходят в SCHEDULED в одной транзакции:
// оба обновления фиксируются вместе или откатываются вместе.
func (e *Engine) ScheduleMeeting(ctx context.Context, acceptedID int64, date time.Time, meetingType model.MeetingType, meetingLink string) (*model.AcceptedRequest, error) {
	const op = "schedule meeting"

	if _, ok := model.ParseMeetingType(string(meetingType)); !ok {
		return nil, fmt.Errorf("%w: unknown meeting type %q", ErrInvalidInput, meetingType)
	}

	if meetingLink == "" && meetingType == model.MeetingTypeOnline {
		meetingLink = e.meetingLink()
	}
	meeting := model.Meeting{Date: date, Type: meetingType, Link: meetingLink}

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

		if acceptance.Status != model.AcceptanceStatusAccepted {
			return apperr.New(apperr.KindInvalidStateTransition, op,
				fmt.Sprintf("acceptance is %s", acceptance.Status))
		}

		ok, err := tx.Acceptances().Schedule(ctx, acceptedID, meeting)
		if err != nil {
			return fmt.Errorf("schedule acceptance: %w", err)
		}
		if !ok {
			return apperr.New(apperr.KindConcurrencyConflict, op, "acceptance status changed concurrently")
		}

		ok, err = tx.Requests().UpdateStatus(ctx, acceptance.RequestID,
			model.RequestStatusPending, model.RequestStatusScheduled)
		if err != nil {
			return fmt.Errorf("update request status: %w", err)
		}
		if !ok {
			return apperr.New(apperr.KindConcurrencyConflict, op, "request status changed concurrently")
		}

		acceptance.Status = model.AcceptanceStatusScheduled
		acceptance.ScheduleDate = &meeting.Date
		acceptance.MeetingType = &meeting.Type
		if meeting.Link != "" {
			acceptance.MeetingLink = &meeting.Link
		} else {
			acceptance.MeetingLink = nil
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Meeting scheduled",
		zap.Int64("acceptance_id", acceptedID),
		zap.Int64("request_id", acceptance.RequestID),
		zap.Time("date", date),
		zap.String("meeting_type", string(meetingType)),
	)

	return acceptance, nil
}

// ScheduleLesson назначает время группового занятия
func (e *Engine) ScheduleLesson(ctx context.Context, lessonID int64, at time.Time) (*model.Lesson, error) {
	const op = "schedule lesson"

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

		from := []model.LessonStatus{model.LessonStatusOpen, model.LessonStatusClosed}
		if !containsLessonStatus(from, lesson.Status) {
			return apperr.New(apperr.KindInvalidStateTransition, op,
				fmt.Sprintf("lesson is %s", lesson.Status))
		}

		ok, err := tx.Lessons().Schedule(ctx, lessonID, at, from)
		if err != nil {
			return fmt.Errorf("schedule lesson: %w", err)
		}
		if !ok {
			return apperr.New(apperr.KindConcurrencyConflict, op, "lesson status changed concurrently")
		}

		lesson.Status = model.LessonStatusScheduled
		lesson.ScheduledAt = &at
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Lesson scheduled",
		zap.Int64("lesson_id", lessonID),
		zap.Time("scheduled_at", at),
	)

	return lesson, nil
}

func containsLessonStatus(statuses []model.LessonStatus, status model.LessonStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
