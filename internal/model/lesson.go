package model

import "time"

type LessonStatus string

const (
	LessonStatusOpen      LessonStatus = "Open"
	LessonStatusClosed    LessonStatus = "Closed" // Все места заняты
	LessonStatusScheduled LessonStatus = "Scheduled"
	LessonStatusCompleted LessonStatus = "Completed"
)

// Lesson групповое занятие, опубликованное репетитором
type Lesson struct {
	ID              int64        `json:"id"`
	TutorID         int64        `json:"tutor_id"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	MaxParticipants int          `json:"max_participants"`
	Status          LessonStatus `json:"status"`
	ScheduledAt     *time.Time   `json:"scheduled_at"`
	ImageURL        *string      `json:"image_url"`
	CreatedAt       time.Time    `json:"created_at"`
}

// LessonParticipant участник группового занятия
type LessonParticipant struct {
	LessonID int64     `json:"lesson_id"`
	UserID   int64     `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}
