package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/skillmatch/internal/apperr"
	"github.com/Freeeeeet/skillmatch/internal/model"
	"github.com/Freeeeeet/skillmatch/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

const acceptanceColumns = `id, request_id, acceptor_id, status, schedule_date, meeting_type, meeting_link, accepted_at`

type AcceptedRequestRepository struct {
	*base.Repository
}

func NewAcceptedRequestRepository(db base.DBTX) *AcceptedRequestRepository {
	return &AcceptedRequestRepository{Repository: base.NewRepository(db)}
}

// Create создаёт запись реестра. Уникальный индекс по request_id
// не даёт двум исполнителям взять один запрос.
func (r *AcceptedRequestRepository) Create(ctx context.Context, acceptance *model.AcceptedRequest) error {
	query := `
		INSERT INTO accepted_requests (request_id, acceptor_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, accepted_at
	`

	err := r.QueryRow(
		ctx, query,
		acceptance.RequestID,
		acceptance.AcceptorID,
		string(acceptance.Status),
	).Scan(&acceptance.ID, &acceptance.AcceptedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return apperr.Wrap(apperr.KindAlreadyAccepted, "create acceptance", err)
		}
		return base.Classify("create acceptance", err)
	}

	return nil
}

// GetByID получает запись реестра по ID
func (r *AcceptedRequestRepository) GetByID(ctx context.Context, id int64) (*model.AcceptedRequest, error) {
	query := `SELECT ` + acceptanceColumns + ` FROM accepted_requests WHERE id = $1`

	acceptance, err := scanAcceptance(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get acceptance by id: %w", err)
	}

	return acceptance, nil
}

// LockByID получает запись реестра и блокирует строку до конца транзакции
func (r *AcceptedRequestRepository) LockByID(ctx context.Context, id int64) (*model.AcceptedRequest, error) {
	query := `SELECT ` + acceptanceColumns + ` FROM accepted_requests WHERE id = $1 FOR UPDATE`

	acceptance, err := scanAcceptance(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, base.Classify("lock acceptance", err)
	}

	return acceptance, nil
}

// GetByRequestID получает запись реестра для запроса
func (r *AcceptedRequestRepository) GetByRequestID(ctx context.Context, requestID int64) (*model.AcceptedRequest, error) {
	query := `SELECT ` + acceptanceColumns + ` FROM accepted_requests WHERE request_id = $1`

	acceptance, err := scanAcceptance(r.QueryRow(ctx, query, requestID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get acceptance by request: %w", err)
	}

	return acceptance, nil
}

// LockLiveByAcceptor блокирует незавершённые записи исполнителя
func (r *AcceptedRequestRepository) LockLiveByAcceptor(ctx context.Context, acceptorID int64) ([]*model.AcceptedRequest, error) {
	query := `
		SELECT ` + acceptanceColumns + `
		FROM accepted_requests
		WHERE acceptor_id = $1 AND status IN ('ACCEPTED', 'SCHEDULED')
		ORDER BY id
		FOR UPDATE
	`

	rows, err := r.Query(ctx, query, acceptorID)
	if err != nil {
		return nil, base.Classify("lock acceptances by acceptor", err)
	}
	defer rows.Close()

	var acceptances []*model.AcceptedRequest
	for rows.Next() {
		acceptance, err := scanAcceptance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan acceptance: %w", err)
		}
		acceptances = append(acceptances, acceptance)
	}
	if err := rows.Err(); err != nil {
		return nil, base.Classify("lock acceptances by acceptor", err)
	}

	return acceptances, nil
}

// Schedule записывает данные встречи, только если запись ещё в статусе ACCEPTED
func (r *AcceptedRequestRepository) Schedule(ctx context.Context, id int64, meeting model.Meeting) (bool, error) {
	query := `
		UPDATE accepted_requests
		SET status = 'SCHEDULED', schedule_date = $1, meeting_type = $2, meeting_link = NULLIF($3, '')
		WHERE id = $4 AND status = 'ACCEPTED'
	`

	affected, err := r.ExecAffected(ctx, query, meeting.Date, string(meeting.Type), meeting.Link, id)
	if err != nil {
		return false, base.Classify("schedule acceptance", err)
	}

	return affected > 0, nil
}

// UpdateStatus условно меняет статус записи реестра
func (r *AcceptedRequestRepository) UpdateStatus(ctx context.Context, id int64, from []model.AcceptanceStatus, to model.AcceptanceStatus) (bool, error) {
	query := `
		UPDATE accepted_requests
		SET status = $1
		WHERE id = $2 AND status = ANY($3)
	`

	affected, err := r.ExecAffected(ctx, query, string(to), id, toStrings(from))
	if err != nil {
		return false, base.Classify("update acceptance status", err)
	}

	return affected > 0, nil
}

func scanAcceptance(row pgx.Row) (*model.AcceptedRequest, error) {
	var acceptance model.AcceptedRequest
	var status string
	var meetingType *string
	err := row.Scan(
		&acceptance.ID,
		&acceptance.RequestID,
		&acceptance.AcceptorID,
		&status,
		&acceptance.ScheduleDate,
		&meetingType,
		&acceptance.MeetingLink,
		&acceptance.AcceptedAt,
	)
	if err != nil {
		return nil, err
	}
	acceptance.Status = model.AcceptanceStatus(status)
	if meetingType != nil {
		mt := model.MeetingType(*meetingType)
		acceptance.MeetingType = &mt
	}
	return &acceptance, nil
}

func toStrings[S ~string](values []S) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
