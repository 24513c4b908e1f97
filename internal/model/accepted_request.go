package model

import "time"

type AcceptanceStatus string

const (
	AcceptanceStatusAccepted  AcceptanceStatus = "ACCEPTED"
	AcceptanceStatusScheduled AcceptanceStatus = "SCHEDULED"
	AcceptanceStatusCompleted AcceptanceStatus = "COMPLETED"
)

type MeetingType string

const (
	MeetingTypeOnline   MeetingType = "online"
	MeetingTypeInPerson MeetingType = "in_person"
)

// ParseMeetingType разбирает тип встречи из пользовательского ввода
func ParseMeetingType(s string) (MeetingType, bool) {
	switch MeetingType(s) {
	case MeetingTypeOnline, MeetingTypeInPerson:
		return MeetingType(s), true
	}
	return "", false
}

// AcceptedRequest запись реестра: кто взял какой запрос
type AcceptedRequest struct {
	ID           int64            `json:"id"`
	RequestID    int64            `json:"request_id"`
	AcceptorID   int64            `json:"acceptor_id"`
	Status       AcceptanceStatus `json:"status"`
	ScheduleDate *time.Time       `json:"schedule_date"`
	MeetingType  *MeetingType     `json:"meeting_type"`
	MeetingLink  *string          `json:"meeting_link"`
	AcceptedAt   time.Time        `json:"accepted_at"`

	// Дополнительные поля для удобства (не из БД)
	Request *Request `json:"request,omitempty"`
}

// Meeting данные назначенной встречи
type Meeting struct {
	Date time.Time
	Type MeetingType
	Link string
}
