package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/skillmatch/internal/model"
	"github.com/Freeeeeet/skillmatch/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

const requestColumns = `id, learner_id, skill_name, topic, description, status, is_private, preferred_tutor_id, created_at`

type RequestRepository struct {
	*base.Repository
}

func NewRequestRepository(db base.DBTX) *RequestRepository {
	return &RequestRepository{Repository: base.NewRepository(db)}
}

// Create создаёт новый запрос
func (r *RequestRepository) Create(ctx context.Context, request *model.Request) error {
	query := `
		INSERT INTO requests (learner_id, skill_name, topic, description, status, is_private, preferred_tutor_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		request.LearnerID,
		request.SkillName,
		request.Topic,
		request.Description,
		string(request.Status),
		request.IsPrivate,
		request.PreferredTutorID,
	).Scan(&request.ID, &request.CreatedAt)

	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	return nil
}

// GetByID получает запрос по ID
func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*model.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1`

	request, err := scanRequest(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get request by id: %w", err)
	}

	return request, nil
}

// LockByID получает запрос и блокирует строку до конца транзакции
func (r *RequestRepository) LockByID(ctx context.Context, id int64) (*model.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1 FOR UPDATE`

	request, err := scanRequest(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, base.Classify("lock request", err)
	}

	return request, nil
}

// ListOpen получает свободные запросы, видимые пользователю
func (r *RequestRepository) ListOpen(ctx context.Context, viewerID int64, limit int) ([]*model.Request, error) {
	query := `
		SELECT r.id, r.learner_id, r.skill_name, r.topic, r.description, r.status, r.is_private, r.preferred_tutor_id, r.created_at
		FROM requests r
		WHERE r.status = 'PENDING'
		  AND r.learner_id <> $1
		  AND (NOT r.is_private OR r.preferred_tutor_id = $1)
		  AND NOT EXISTS (SELECT 1 FROM accepted_requests a WHERE a.request_id = r.id)
		ORDER BY r.id DESC
		LIMIT $2
	`

	rows, err := r.Query(ctx, query, viewerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list open requests: %w", err)
	}
	defer rows.Close()

	var requests []*model.Request
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		requests = append(requests, request)
	}

	return requests, rows.Err()
}

// UpdateStatus условно меняет статус запроса: только если текущий статус равен from
func (r *RequestRepository) UpdateStatus(ctx context.Context, id int64, from, to model.RequestStatus) (bool, error) {
	query := `
		UPDATE requests
		SET status = $1
		WHERE id = $2 AND status = $3
	`

	affected, err := r.ExecAffected(ctx, query, string(to), id, string(from))
	if err != nil {
		return false, base.Classify("update request status", err)
	}

	return affected > 0, nil
}

func scanRequest(row pgx.Row) (*model.Request, error) {
	var request model.Request
	var status string
	err := row.Scan(
		&request.ID,
		&request.LearnerID,
		&request.SkillName,
		&request.Topic,
		&request.Description,
		&status,
		&request.IsPrivate,
		&request.PreferredTutorID,
		&request.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	request.Status = model.RequestStatus(status)
	return &request, nil
}
