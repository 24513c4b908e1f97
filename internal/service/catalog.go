package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/skillmatch/internal/model"
	"go.uber.org/zap"
)

// ErrInvalidInput некорректные входные данные операции
var ErrInvalidInput = errors.New("invalid input")

const defaultListLimit = 20

// CatalogService создание и чтение запросов и занятий.
// Переходы статусов выполняет только Engine.
type CatalogService struct {
	store  Store
	logger *zap.Logger
}

func NewCatalogService(store Store, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		store:  store,
		logger: logger,
	}
}

// NewRequest параметры нового запроса
type NewRequest struct {
	LearnerID        int64
	SkillName        string
	Topic            string
	Description      string
	PreferredTutorID *int64 // если задан, запрос приватный
}

// CreateRequest публикует запрос ученика
func (s *CatalogService) CreateRequest(ctx context.Context, in NewRequest) (*model.Request, error) {
	skill := strings.TrimSpace(in.SkillName)
	if skill == "" {
		return nil, fmt.Errorf("%w: skill name is required", ErrInvalidInput)
	}
	if in.PreferredTutorID != nil && *in.PreferredTutorID == in.LearnerID {
		return nil, fmt.Errorf("%w: cannot direct a request to yourself", ErrInvalidInput)
	}

	request := &model.Request{
		LearnerID:        in.LearnerID,
		SkillName:        skill,
		Topic:            optional(in.Topic),
		Description:      optional(in.Description),
		Status:           model.RequestStatusPending,
		IsPrivate:        in.PreferredTutorID != nil,
		PreferredTutorID: in.PreferredTutorID,
	}

	err := withTx(ctx, s.store, func(tx Tx) error {
		if in.PreferredTutorID != nil {
			tutor, err := tx.Users().GetByID(ctx, *in.PreferredTutorID)
			if err != nil {
				return fmt.Errorf("get preferred tutor: %w", err)
			}
			if tutor == nil {
				return fmt.Errorf("%w: preferred tutor not found", ErrInvalidInput)
			}
		}

		if err := tx.Requests().Create(ctx, request); err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Request created",
		zap.Int64("request_id", request.ID),
		zap.Int64("learner_id", request.LearnerID),
		zap.String("skill", request.SkillName),
		zap.Bool("private", request.IsPrivate),
	)

	return request, nil
}

// NewLesson параметры нового группового занятия
type NewLesson struct {
	TutorID         int64
	Title           string
	Description     string
	MaxParticipants int
	ImageURL        string
}

// CreateLesson публикует групповое занятие репетитора
func (s *CatalogService) CreateLesson(ctx context.Context, in NewLesson) (*model.Lesson, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.MaxParticipants < 1 {
		return nil, fmt.Errorf("%w: max participants must be positive", ErrInvalidInput)
	}

	lesson := &model.Lesson{
		TutorID:         in.TutorID,
		Title:           title,
		Description:     in.Description,
		MaxParticipants: in.MaxParticipants,
		Status:          model.LessonStatusOpen,
		ImageURL:        optional(in.ImageURL),
	}

	err := withTx(ctx, s.store, func(tx Tx) error {
		if err := tx.Lessons().Create(ctx, lesson); err != nil {
			return fmt.Errorf("create lesson: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Lesson created",
		zap.Int64("lesson_id", lesson.ID),
		zap.Int64("tutor_id", lesson.TutorID),
		zap.Int("max_participants", lesson.MaxParticipants),
	)

	return lesson, nil
}

// GetRequest получает запрос по ID
func (s *CatalogService) GetRequest(ctx context.Context, id int64) (*model.Request, error) {
	var request *model.Request
	err := withTx(ctx, s.store, func(tx Tx) error {
		var err error
		request, err = tx.Requests().GetByID(ctx, id)
		return err
	})
	return request, err
}

// GetAcceptance получает запись реестра вместе с запросом
func (s *CatalogService) GetAcceptance(ctx context.Context, id int64) (*model.AcceptedRequest, error) {
	var acceptance *model.AcceptedRequest
	err := withTx(ctx, s.store, func(tx Tx) error {
		var err error
		acceptance, err = tx.Acceptances().GetByID(ctx, id)
		if err != nil || acceptance == nil {
			return err
		}
		acceptance.Request, err = tx.Requests().GetByID(ctx, acceptance.RequestID)
		return err
	})
	return acceptance, err
}

// GetLesson получает занятие по ID
func (s *CatalogService) GetLesson(ctx context.Context, id int64) (*model.Lesson, error) {
	var lesson *model.Lesson
	err := withTx(ctx, s.store, func(tx Tx) error {
		var err error
		lesson, err = tx.Lessons().GetByID(ctx, id)
		return err
	})
	return lesson, err
}

// ListOpenRequests получает свободные запросы, видимые пользователю
func (s *CatalogService) ListOpenRequests(ctx context.Context, viewerID int64) ([]*model.Request, error) {
	var requests []*model.Request
	err := withTx(ctx, s.store, func(tx Tx) error {
		var err error
		requests, err = tx.Requests().ListOpen(ctx, viewerID, defaultListLimit)
		return err
	})
	return requests, err
}

// ListOpenLessons получает занятия со свободными местами
func (s *CatalogService) ListOpenLessons(ctx context.Context) ([]*model.Lesson, error) {
	var lessons []*model.Lesson
	err := withTx(ctx, s.store, func(tx Tx) error {
		var err error
		lessons, err = tx.Lessons().ListOpen(ctx, defaultListLimit)
		return err
	})
	return lessons, err
}

// ListParticipants получает ID участников занятия
func (s *CatalogService) ListParticipants(ctx context.Context, lessonID int64) ([]int64, error) {
	var ids []int64
	err := withTx(ctx, s.store, func(tx Tx) error {
		var err error
		ids, err = tx.Participants().ListUserIDs(ctx, lessonID)
		return err
	})
	return ids, err
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
