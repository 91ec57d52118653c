package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/doggys-shop/internal/domain/models"
)

type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, filter models.ListFilter) ([]*models.User, error)
	// UpdateUser обновляет профиль, пароль не трогает
	UpdateUser(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id int64, passHash []byte) error
	DeleteUser(ctx context.Context, id int64) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db: db}
}

const userColumns = "id, name, email, phone, address, is_admin, pass_hash, created_at"

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Phone, &user.Address, &user.IsAdmin, &user.PassHash, &user.CreatedAt); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO users (name, email, phone, address, is_admin, pass_hash) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at",
		user.Name, user.Email, user.Phone, user.Address, user.IsAdmin, user.PassHash,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if hasPgCode(err, pgUniqueViolation) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// получение пользователя по email, используется при входе
func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) ListUsers(ctx context.Context, filter models.ListFilter) ([]*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		ORDER BY id
		LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, filter.Query, limitOrDefault(filter.Limit), filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) UpdateUser(ctx context.Context, user *models.User) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET name = $1, email = $2, phone = $3, address = $4 WHERE id = $5",
		user.Name, user.Email, user.Phone, user.Address, user.ID,
	)
	if err != nil {
		if hasPgCode(err, pgUniqueViolation) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return checkAffected(res, ErrUserNotFound)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int64, passHash []byte) error {
	res, err := r.db.ExecContext(ctx, "UPDATE users SET pass_hash = $1 WHERE id = $2", passHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return checkAffected(res, ErrUserNotFound)
}

func (r *userRepository) DeleteUser(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		if hasPgCode(err, pgForeignKeyViolation) {
			return ErrUserReferenced
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return checkAffected(res, ErrUserNotFound)
}
