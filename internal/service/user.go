package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/linemk/doggys-shop/internal/domain/models"
	"github.com/linemk/doggys-shop/internal/storage"
)

// UserService работа с профилями покупателей.
type UserService interface {
	Get(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

type userService struct {
	log      *slog.Logger
	userRepo storage.UserStorage
}

func NewUserService(log *slog.Logger, userRepo storage.UserStorage) UserService {
	return &userService{log: log, userRepo: userRepo}
}

func (s *userService) Get(ctx context.Context, id int64) (*models.User, error) {
	const op = "service.UserService.Get"

	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrUserNotFound) {
			s.log.Error("failed to get user", slog.String("op", op), slog.Any("error", err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, filter models.ListFilter) ([]*models.User, error) {
	const op = "service.UserService.List"

	users, err := s.userRepo.ListUsers(ctx, filter)
	if err != nil {
		s.log.Error("failed to list users", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// UpdateProfile меняет имя, email, телефон и адрес. Флаг администратора и пароль не меняются.
func (s *userService) UpdateProfile(ctx context.Context, user *models.User) (*models.User, error) {
	const op = "service.UserService.UpdateProfile"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", user.ID))

	user.Email = normalizeEmail(user.Email)
	user.Name = strings.TrimSpace(user.Name)
	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, storage.ErrEmailTaken):
			logger.Warn("email already registered")
		case errors.Is(err, storage.ErrUserNotFound):
		default:
			logger.Error("failed to update user", slog.Any("error", err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := s.userRepo.GetUserByID(ctx, user.ID)
	if err != nil {
		logger.Error("failed to reload user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("profile updated")
	return updated, nil
}

func (s *userService) Delete(ctx context.Context, id int64) error {
	const op = "service.UserService.Delete"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", id))

	if err := s.userRepo.DeleteUser(ctx, id); err != nil {
		if !errors.Is(err, storage.ErrUserNotFound) && !errors.Is(err, storage.ErrUserReferenced) {
			logger.Error("failed to delete user", slog.Any("error", err))
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("user deleted")
	return nil
}
