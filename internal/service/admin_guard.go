package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/skillmatch/internal/apperr"
	"github.com/Freeeeeet/skillmatch/internal/model"
	"go.uber.org/zap"
)

// DeleteUser удаляет аккаунт, не допуская удаления последнего администратора.
//
// Блокировка охраны и блокировка строки удерживаются от подсчёта админов до
// удаления, иначе два параллельных удаления "последних двух" админов оба
// увидели бы count=2 и оставили бы систему без администратора.
// Запросы, взятые удаляемым исполнителем, возвращаются в PENDING до того,
// как каскад удалит записи реестра.
func (e *Engine) DeleteUser(ctx context.Context, userID int64) error {
	const op = "delete user"

	var role model.Role
	var released int
	err := withTx(ctx, e.store, func(tx Tx) error {
		user, err := e.lockForRoleChange(ctx, tx, op, userID)
		if err != nil {
			return err
		}
		role = user.Role

		if user.IsAdmin() {
			if err := e.ensureAnotherAdmin(ctx, tx, op); err != nil {
				return err
			}
		}

		released, err = e.releaseMatches(ctx, tx, op, userID)
		if err != nil {
			return err
		}

		deleted, err := tx.Users().Delete(ctx, userID)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if !deleted {
			return apperr.New(apperr.KindNotFound, op, "user vanished before delete")
		}

		return nil
	})
	if err != nil {
		return err
	}

	e.logger.Info("User deleted",
		zap.Int64("user_id", userID),
		zap.String("role", string(role)),
		zap.Int("released_requests", released),
	)

	return nil
}

// ChangeRole меняет роль пользователя под той же охраной, что и удаление
func (e *Engine) ChangeRole(ctx context.Context, userID int64, role model.Role) (*model.User, error) {
	const op = "change role"

	if _, ok := model.ParseRole(string(role)); !ok {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	var user *model.User
	var previous model.Role
	err := withTx(ctx, e.store, func(tx Tx) error {
		var err error
		user, err = e.lockForRoleChange(ctx, tx, op, userID)
		if err != nil {
			return err
		}
		previous = user.Role

		if user.Role == role {
			return nil
		}

		if user.IsAdmin() {
			if err := e.ensureAnotherAdmin(ctx, tx, op); err != nil {
				return err
			}
		}

		updated, err := tx.Users().UpdateRole(ctx, userID, role)
		if err != nil {
			return fmt.Errorf("update role: %w", err)
		}
		if !updated {
			return apperr.New(apperr.KindNotFound, op, "user vanished before update")
		}
		user.Role = role

		return nil
	})
	if err != nil {
		return nil, err
	}

	if previous != role {
		e.logger.Info("User role changed",
			zap.Int64("user_id", userID),
			zap.String("from", string(previous)),
			zap.String("to", string(role)),
		)
	}

	return user, nil
}

func (e *Engine) lockForRoleChange(ctx context.Context, tx Tx, op string, userID int64) (*model.User, error) {
	if err := tx.Users().LockAdminGuard(ctx); err != nil {
		return nil, fmt.Errorf("lock admin guard: %w", err)
	}

	user, err := tx.Users().LockByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lock user: %w", err)
	}
	if user == nil {
		return nil, apperr.New(apperr.KindNotFound, op, "user not found")
	}

	return user, nil
}

func (e *Engine) ensureAnotherAdmin(ctx context.Context, tx Tx, op string) error {
	admins, err := tx.Users().CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if admins <= 1 {
		return apperr.New(apperr.KindLastAdminProtection, op, "cannot remove the last administrator")
	}
	return nil
}

// releaseMatches освобождает запросы исполнителя. Родитель SCHEDULED записи
// возвращается в PENDING условным обновлением, у ACCEPTED он уже PENDING.
func (e *Engine) releaseMatches(ctx context.Context, tx Tx, op string, acceptorID int64) (int, error) {
	matches, err := tx.Acceptances().LockLiveByAcceptor(ctx, acceptorID)
	if err != nil {
		return 0, fmt.Errorf("lock acceptances: %w", err)
	}

	for _, match := range matches {
		if match.Status != model.AcceptanceStatusScheduled {
			continue
		}
		ok, err := tx.Requests().UpdateStatus(ctx, match.RequestID,
			model.RequestStatusScheduled, model.RequestStatusPending)
		if err != nil {
			return 0, fmt.Errorf("update request status: %w", err)
		}
		if !ok {
			return 0, apperr.New(apperr.KindConcurrencyConflict, op, "request status changed concurrently")
		}
	}

	return len(matches), nil
}
