package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/skillmatch/internal/apperr"
	"github.com/Freeeeeet/skillmatch/internal/model"
	"github.com/Freeeeeet/skillmatch/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

type ParticipantRepository struct {
	*base.Repository
}

func NewParticipantRepository(db base.DBTX) *ParticipantRepository {
	return &ParticipantRepository{Repository: base.NewRepository(db)}
}

// Add записывает участника. Повторная запись отсекается первичным ключом (lesson_id, user_id).
func (r *ParticipantRepository) Add(ctx context.Context, participant *model.LessonParticipant) error {
	query := `
		INSERT INTO lesson_participants (lesson_id, user_id)
		VALUES ($1, $2)
		RETURNING joined_at
	`

	err := r.QueryRow(ctx, query, participant.LessonID, participant.UserID).Scan(&participant.JoinedAt)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return apperr.Wrap(apperr.KindAlreadyJoined, "add participant", err)
		}
		return base.Classify("add participant", err)
	}

	return nil
}

// Remove удаляет участника
func (r *ParticipantRepository) Remove(ctx context.Context, lessonID, userID int64) (bool, error) {
	query := `DELETE FROM lesson_participants WHERE lesson_id = $1 AND user_id = $2`

	affected, err := r.ExecAffected(ctx, query, lessonID, userID)
	if err != nil {
		return false, base.Classify("remove participant", err)
	}

	return affected > 0, nil
}

// Exists проверяет что пользователь уже записан
func (r *ParticipantRepository) Exists(ctx context.Context, lessonID, userID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM lesson_participants
			WHERE lesson_id = $1 AND user_id = $2
		)
	`

	var exists bool
	if err := r.QueryRow(ctx, query, lessonID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check participant exists: %w", err)
	}

	return exists, nil
}

// Count считает участников занятия
func (r *ParticipantRepository) Count(ctx context.Context, lessonID int64) (int, error) {
	query := `SELECT COUNT(*) FROM lesson_participants WHERE lesson_id = $1`

	var count int
	if err := r.QueryRow(ctx, query, lessonID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}

	return count, nil
}

// ListUserIDs получает ID участников занятия
func (r *ParticipantRepository) ListUserIDs(ctx context.Context, lessonID int64) ([]int64, error) {
	query := `SELECT user_id FROM lesson_participants WHERE lesson_id = $1 ORDER BY user_id`

	rows, err := r.Query(ctx, query, lessonID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("scan participants: %w", err)
	}

	return ids, nil
}
