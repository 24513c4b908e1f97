package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/skillmatch/internal/model"
)

// Store открывает транзакции хранилища. Все изменения движка идут через Tx.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx транзакция с типизированными репозиториями, привязанными к ней.
// Rollback после Commit безопасен и ничего не делает.
type Tx interface {
	Requests() RequestRepository
	Acceptances() AcceptanceRepository
	Lessons() LessonRepository
	Participants() ParticipantRepository
	Users() UserRepository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Методы Get* возвращают nil, nil если строка не найдена.
// Методы Lock* дополнительно берут блокировку строки до конца транзакции.
// Условные обновления возвращают false если ни одна строка не подошла.

type RequestRepository interface {
	Create(ctx context.Context, request *model.Request) error
	GetByID(ctx context.Context, id int64) (*model.Request, error)
	LockByID(ctx context.Context, id int64) (*model.Request, error)
	ListOpen(ctx context.Context, viewerID int64, limit int) ([]*model.Request, error)
	UpdateStatus(ctx context.Context, id int64, from, to model.RequestStatus) (bool, error)
}

type AcceptanceRepository interface {
	Create(ctx context.Context, acceptance *model.AcceptedRequest) error
	GetByID(ctx context.Context, id int64) (*model.AcceptedRequest, error)
	LockByID(ctx context.Context, id int64) (*model.AcceptedRequest, error)
	GetByRequestID(ctx context.Context, requestID int64) (*model.AcceptedRequest, error)
	// LockLiveByAcceptor блокирует записи исполнителя в статусах ACCEPTED и SCHEDULED
	LockLiveByAcceptor(ctx context.Context, acceptorID int64) ([]*model.AcceptedRequest, error)
	Schedule(ctx context.Context, id int64, meeting model.Meeting) (bool, error)
	UpdateStatus(ctx context.Context, id int64, from []model.AcceptanceStatus, to model.AcceptanceStatus) (bool, error)
}

type LessonRepository interface {
	Create(ctx context.Context, lesson *model.Lesson) error
	GetByID(ctx context.Context, id int64) (*model.Lesson, error)
	LockByID(ctx context.Context, id int64) (*model.Lesson, error)
	ListOpen(ctx context.Context, limit int) ([]*model.Lesson, error)
	UpdateStatus(ctx context.Context, id int64, from []model.LessonStatus, to model.LessonStatus) (bool, error)
	Schedule(ctx context.Context, id int64, at time.Time, from []model.LessonStatus) (bool, error)
}

type ParticipantRepository interface {
	Add(ctx context.Context, participant *model.LessonParticipant) error
	Remove(ctx context.Context, lessonID, userID int64) (bool, error)
	Exists(ctx context.Context, lessonID, userID int64) (bool, error)
	Count(ctx context.Context, lessonID int64) (int, error)
	ListUserIDs(ctx context.Context, lessonID int64) ([]int64, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	LockByID(ctx context.Context, id int64) (*model.User, error)
	// LockAdminGuard сериализует все операции, которые могут уменьшить число админов
	LockAdminGuard(ctx context.Context) error
	CountByRole(ctx context.Context, role model.Role) (int, error)
	UpdateRole(ctx context.Context, id int64, role model.Role) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
