package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/skillmatch/internal/model"
	"github.com/Freeeeeet/skillmatch/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

// adminGuardLockKey ключ транзакционной advisory-блокировки охраны админов
const adminGuardLockKey int64 = 0x736b6d61646d

const userColumns = `id, telegram_id, username, first_name, last_name, language_code, role, created_at`

type UserRepository struct {
	*base.Repository
}

func NewUserRepository(db base.DBTX) *UserRepository {
	return &UserRepository{Repository: base.NewRepository(db)}
}

// Create создаёт нового пользователя
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (telegram_id, username, first_name, last_name, language_code, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		user.TelegramID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.LanguageCode,
		string(user.Role),
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		return base.Classify("create user", err)
	}

	return nil
}

// Update обновляет профиль пользователя. Роль меняется только через UpdateRole.
func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET username = $1, first_name = $2, last_name = $3, language_code = $4
		WHERE id = $5
	`

	affected, err := r.ExecAffected(ctx, query, user.Username, user.FirstName, user.LastName, user.LanguageCode, user.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return user, nil
}

// GetByTelegramID получает пользователя по Telegram ID
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`

	user, err := scanUser(r.QueryRow(ctx, query, telegramID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by telegram id: %w", err)
	}

	return user, nil
}

// LockByID получает пользователя и блокирует строку до конца транзакции
func (r *UserRepository) LockByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`

	user, err := scanUser(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, base.Classify("lock user", err)
	}

	return user, nil
}

// LockAdminGuard берёт транзакционную advisory-блокировку.
// Блокировка отпускается при COMMIT или ROLLBACK.
func (r *UserRepository) LockAdminGuard(ctx context.Context) error {
	_, err := r.DB().Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, adminGuardLockKey)
	if err != nil {
		return base.Classify("lock admin guard", err)
	}
	return nil
}

// CountByRole считает пользователей с заданной ролью
func (r *UserRepository) CountByRole(ctx context.Context, role model.Role) (int, error) {
	query := `SELECT COUNT(*) FROM users WHERE role = $1`

	var count int
	if err := r.QueryRow(ctx, query, string(role)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users by role: %w", err)
	}

	return count, nil
}

// UpdateRole меняет роль пользователя
func (r *UserRepository) UpdateRole(ctx context.Context, id int64, role model.Role) (bool, error) {
	query := `
		UPDATE users
		SET role = $1
		WHERE id = $2
	`

	affected, err := r.ExecAffected(ctx, query, string(role), id)
	if err != nil {
		return false, base.Classify("update role", err)
	}

	return affected > 0, nil
}

// Delete удаляет пользователя. Связанные запросы, записи реестра,
// занятия и участия удаляются каскадно.
func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, base.Classify("delete user", err)
	}

	return affected > 0, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	var role string
	err := row.Scan(
		&user.ID,
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.LanguageCode,
		&role,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Role = model.Role(role)
	return &user, nil
}
