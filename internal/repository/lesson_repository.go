package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/skillmatch/internal/model"
	"github.com/Freeeeeet/skillmatch/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

const lessonColumns = `id, tutor_id, title, description, max_participants, status, scheduled_at, image_url, created_at`

type LessonRepository struct {
	*base.Repository
}

func NewLessonRepository(db base.DBTX) *LessonRepository {
	return &LessonRepository{Repository: base.NewRepository(db)}
}

// Create создаёт новое групповое занятие
func (r *LessonRepository) Create(ctx context.Context, lesson *model.Lesson) error {
	query := `
		INSERT INTO tutor_posts (tutor_id, title, description, max_participants, status, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		lesson.TutorID,
		lesson.Title,
		lesson.Description,
		lesson.MaxParticipants,
		string(lesson.Status),
		lesson.ImageURL,
	).Scan(&lesson.ID, &lesson.CreatedAt)

	if err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}

	return nil
}

// GetByID получает занятие по ID
func (r *LessonRepository) GetByID(ctx context.Context, id int64) (*model.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM tutor_posts WHERE id = $1`

	lesson, err := scanLesson(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lesson by id: %w", err)
	}

	return lesson, nil
}

// LockByID получает занятие и блокирует строку до конца транзакции.
// Все записи на одно занятие сериализуются на этой блокировке.
func (r *LessonRepository) LockByID(ctx context.Context, id int64) (*model.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM tutor_posts WHERE id = $1 FOR UPDATE`

	lesson, err := scanLesson(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, base.Classify("lock lesson", err)
	}

	return lesson, nil
}

// ListOpen получает открытые занятия
func (r *LessonRepository) ListOpen(ctx context.Context, limit int) ([]*model.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + `
		FROM tutor_posts
		WHERE status = 'Open'
		ORDER BY id DESC
		LIMIT $1
	`

	rows, err := r.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list open lessons: %w", err)
	}
	defer rows.Close()

	var lessons []*model.Lesson
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		lessons = append(lessons, lesson)
	}

	return lessons, rows.Err()
}

// UpdateStatus условно меняет статус занятия
func (r *LessonRepository) UpdateStatus(ctx context.Context, id int64, from []model.LessonStatus, to model.LessonStatus) (bool, error) {
	query := `
		UPDATE tutor_posts
		SET status = $1
		WHERE id = $2 AND status = ANY($3)
	`

	affected, err := r.ExecAffected(ctx, query, string(to), id, toStrings(from))
	if err != nil {
		return false, base.Classify("update lesson status", err)
	}

	return affected > 0, nil
}

// Schedule назначает время занятия, если его статус входит в from
func (r *LessonRepository) Schedule(ctx context.Context, id int64, at time.Time, from []model.LessonStatus) (bool, error) {
	query := `
		UPDATE tutor_posts
		SET status = 'Scheduled', scheduled_at = $1
		WHERE id = $2 AND status = ANY($3)
	`

	affected, err := r.ExecAffected(ctx, query, at, id, toStrings(from))
	if err != nil {
		return false, base.Classify("schedule lesson", err)
	}

	return affected > 0, nil
}

func scanLesson(row pgx.Row) (*model.Lesson, error) {
	var lesson model.Lesson
	var status string
	err := row.Scan(
		&lesson.ID,
		&lesson.TutorID,
		&lesson.Title,
		&lesson.Description,
		&lesson.MaxParticipants,
		&status,
		&lesson.ScheduledAt,
		&lesson.ImageURL,
		&lesson.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	lesson.Status = model.LessonStatus(status)
	return &lesson, nil
}
