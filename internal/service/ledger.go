package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/skillmatch/internal/apperr"
	"github.com/Freeeeeet/skillmatch/internal/model"
	"go.uber.org/zap"
)

// AcceptRequest закрепляет запрос за исполнителем.
// Строка запроса блокируется до конца транзакции, поэтому проверка
// "запрос ещё свободен" и вставка записи реестра не пересекаются с
// конкурентными вызовами для того же запроса. Статус запроса остаётся
// PENDING до назначения встречи.
func (e *Engine) AcceptRequest(ctx context.Context, requestID, acceptorID int64) (*model.AcceptedRequest, error) {
	const op = "accept request"

	var acceptance *model.AcceptedRequest
	err := withTx(ctx, e.store, func(tx Tx) error {
		request, err := tx.Requests().LockByID(ctx, requestID)
		if err != nil {
			return fmt.Errorf("lock request: %w", err)
		}
		if request == nil {
			return apperr.New(apperr.KindNotFound, op, "request not found")
		}

		if request.LearnerID == acceptorID {
			return apperr.New(apperr.KindSelfAcceptanceForbidden, op, "cannot accept own request")
		}

		if request.IsPrivate && !request.IsDirectedTo(acceptorID) {
			return apperr.New(apperr.KindForbidden, op, "private request is directed to another tutor")
		}

		existing, err := tx.Acceptances().GetByRequestID(ctx, requestID)
		if err != nil {
			return fmt.Errorf("get acceptance: %w", err)
		}
		if existing != nil {
			return apperr.New(apperr.KindAlreadyAccepted, op, "request already accepted")
		}

		if request.Status != model.RequestStatusPending {
			return apperr.New(apperr.KindInvalidStateTransition, op,
				fmt.Sprintf("request is %s", request.Status))
		}

		acceptance = &model.AcceptedRequest{
			RequestID:  requestID,
			AcceptorID: acceptorID,
			Status:     model.AcceptanceStatusAccepted,
		}
		if err := tx.Acceptances().Create(ctx, acceptance); err != nil {
			return fmt.Errorf("create acceptance: %w", err)
		}
		acceptance.Request = request

		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Request accepted",
		zap.Int64("acceptance_id", acceptance.ID),
		zap.Int64("request_id", requestID),
		zap.Int64("acceptor_id", acceptorID),
	)

	return acceptance, nil
}

// DeclineDirected отклоняет адресованный репетитору запрос.
// Запись реестра не создаётся, запрос переходит в CANCELLED.
func (e *Engine) DeclineDirected(ctx context.Context, requestID, viewerID int64) (*model.Request, error) {
	const op = "decline request"

	request, err := e.cancelPending(ctx, op, requestID, func(r *model.Request) error {
		if !r.IsDirectedTo(viewerID) {
			return apperr.New(apperr.KindForbidden, op, "request is not directed to this tutor")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Directed request declined",
		zap.Int64("request_id", requestID),
		zap.Int64("tutor_id", viewerID),
	)

	return request, nil
}

// CancelRequest отменяет свой ещё не принятый запрос
func (e *Engine) CancelRequest(ctx context.Context, requestID, learnerID int64) (*model.Request, error) {
	const op = "cancel request"

	request, err := e.cancelPending(ctx, op, requestID, func(r *model.Request) error {
		if r.LearnerID != learnerID {
			return apperr.New(apperr.KindForbidden, op, "request belongs to another learner")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Request cancelled",
		zap.Int64("request_id", requestID),
		zap.Int64("learner_id", learnerID),
	)

	return request, nil
}

// cancelPending переводит свободный PENDING запрос в CANCELLED после проверки authorize
func (e *Engine) cancelPending(ctx context.Context, op string, requestID int64, authorize func(*model.Request) error) (*model.Request, error) {
	var request *model.Request
	err := withTx(ctx, e.store, func(tx Tx) error {
		var err error
		request, err = tx.Requests().LockByID(ctx, requestID)
		if err != nil {
			return fmt.Errorf("lock request: %w", err)
		}
		if request == nil {
			return apperr.New(apperr.KindNotFound, op, "request not found")
		}

		if err := authorize(request); err != nil {
			return err
		}

		if request.Status != model.RequestStatusPending {
			return apperr.New(apperr.KindInvalidStateTransition, op,
				fmt.Sprintf("request is %s", request.Status))
		}

		existing, err := tx.Acceptances().GetByRequestID(ctx, requestID)
		if err != nil {
			return fmt.Errorf("get acceptance: %w", err)
		}
		if existing != nil {
			return apperr.New(apperr.KindInvalidStateTransition, op, "request already accepted")
		}

		ok, err := tx.Requests().UpdateStatus(ctx, requestID, model.RequestStatusPending, model.RequestStatusCancelled)
		if err != nil {
			return fmt.Errorf("update request status: %w", err)
		}
		if !ok {
			return apperr.New(apperr.KindConcurrencyConflict, op, "request status changed concurrently")
		}
		request.Status = model.RequestStatusCancelled

		return nil
	})
	if err != nil {
		return nil, err
	}

	return request, nil
}
