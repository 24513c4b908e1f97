package model

import "time"

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "PENDING"   // Ждёт исполнителя
	RequestStatusScheduled RequestStatus = "SCHEDULED" // Встреча назначена
	RequestStatusCompleted RequestStatus = "COMPLETED" // Занятие проведено
	RequestStatusCancelled RequestStatus = "CANCELLED" // Отменён или отклонён
)

// Request запрос ученика на занятие по навыку
type Request struct {
	ID               int64         `json:"id"`
	LearnerID        int64         `json:"learner_id"`
	SkillName        string        `json:"skill_name"`
	Topic            *string       `json:"topic"`
	Description      *string       `json:"description"`
	Status           RequestStatus `json:"status"`
	IsPrivate        bool          `json:"is_private"`
	PreferredTutorID *int64        `json:"preferred_tutor_id"` // nil для публичных запросов
	CreatedAt        time.Time     `json:"created_at"`
}

// IsDirectedTo проверяет что запрос адресован конкретному репетитору
func (r *Request) IsDirectedTo(userID int64) bool {
	return r.PreferredTutorID != nil && *r.PreferredTutorID == userID
}
