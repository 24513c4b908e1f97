package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/skillmatch/internal/model"
	"go.uber.org/zap"
)

type UserService struct {
	store  Store
	logger *zap.Logger
}

func NewUserService(store Store, logger *zap.Logger) *UserService {
	return &UserService{
		store:  store,
		logger: logger,
	}
}

// RegisterUser регистрирует или обновляет пользователя.
// Первый зарегистрированный пользователь становится администратором.
func (s *UserService) RegisterUser(ctx context.Context, telegramID int64, username, firstName, lastName, languageCode string) (*model.User, error) {
	var user *model.User
	created := false

	err := withTx(ctx, s.store, func(tx Tx) error {
		existing, err := tx.Users().GetByTelegramID(ctx, telegramID)
		if err != nil {
			return fmt.Errorf("check existing user: %w", err)
		}

		// Если пользователь уже существует, обновляем данные
		if existing != nil {
			existing.Username = username
			existing.FirstName = firstName
			existing.LastName = lastName
			existing.LanguageCode = languageCode

			if err := tx.Users().Update(ctx, existing); err != nil {
				return fmt.Errorf("update user: %w", err)
			}
			user = existing
			return nil
		}

		if err := tx.Users().LockAdminGuard(ctx); err != nil {
			return fmt.Errorf("lock admin guard: %w", err)
		}
		admins, err := tx.Users().CountByRole(ctx, model.RoleAdmin)
		if err != nil {
			return fmt.Errorf("count admins: %w", err)
		}

		role := model.RoleLearner // По умолчанию ученик
		if admins == 0 {
			role = model.RoleAdmin
		}

		user = &model.User{
			TelegramID:   telegramID,
			Username:     username,
			FirstName:    firstName,
			LastName:     lastName,
			LanguageCode: languageCode,
			Role:         role,
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		created = true

		return nil
	})
	if err != nil {
		return nil, err
	}

	if created {
		s.logger.Info("New user registered",
			zap.Int64("user_id", user.ID),
			zap.Int64("telegram_id", telegramID),
			zap.String("username", username),
			zap.String("role", string(user.Role)),
		)
	} else {
		s.logger.Info("User updated",
			zap.Int64("telegram_id", telegramID),
			zap.String("username", username),
		)
	}

	return user, nil
}

// GetByTelegramID получает пользователя по Telegram ID
func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user *model.User
	err := withTx(ctx, s.store, func(tx Tx) error {
		var err error
		user, err = tx.Users().GetByTelegramID(ctx, telegramID)
		return err
	})
	return user, err
}

// GetByID получает пользователя по ID
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user *model.User
	err := withTx(ctx, s.store, func(tx Tx) error {
		var err error
		user, err = tx.Users().GetByID(ctx, id)
		return err
	})
	return user, err
}
