package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/linemk/doggys-shop/internal/domain/models"
	security "github.com/linemk/doggys-shop/internal/jwt-new"
	"github.com/linemk/doggys-shop/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput данные для регистрации
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
}

type AuthService struct {
	log       *slog.Logger
	userRepo  storage.UserStorage
	tokenTTL  time.Duration
	jwtSecret string
}

func NewAuthService(log *slog.Logger, userRepo storage.UserStorage, tokenTTL time.Duration, jwtSecret string) *AuthService {
	return &AuthService{
		log:       log,
		userRepo:  userRepo,
		tokenTTL:  tokenTTL,
		jwtSecret: jwtSecret,
	}
}

type AuthServiceInterface interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error
}

// Register создаёт покупателя. Пароль хэшируется через bcrypt (соль добавляется автоматически).
func (a *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	const op = "auth.Register"
	logger := a.log.With(slog.String("op", op), slog.String("email", in.Email))
	logger.Info("registering user")

	return a.createUser(ctx, logger, op, in, false)
}

// EnsureAdmin создаёт администратора из конфигурации, если его еще нет.
func (a *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	const op = "auth.EnsureAdmin"
	logger := a.log.With(slog.String("op", op), slog.String("email", email))

	_, err := a.userRepo.GetUserByEmail(ctx, normalizeEmail(email))
	if err == nil {
		logger.Debug("admin already exists")
		return nil
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		logger.Error("failed to get admin", slog.Any("error", err))
		return fmt.Errorf("%s: failed to get admin: %w", op, err)
	}

	_, err = a.createUser(ctx, logger, op, RegisterInput{Name: name, Email: email, Password: password}, true)
	if err != nil && !errors.Is(err, ErrDuplicateEmail) {
		return err
	}
	logger.Info("admin created")
	return nil
}

func (a *AuthService) createUser(ctx context.Context, logger *slog.Logger, op string, in RegisterInput, isAdmin bool) (*models.User, error) {
	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	user, err := a.userRepo.CreateUser(ctx, &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    normalizeEmail(in.Email),
		Phone:    in.Phone,
		Address:  in.Address,
		IsAdmin:  isAdmin,
		PassHash: passHash,
	})
	if err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			logger.Warn("email already registered")
			return nil, fmt.Errorf("%s: %w", op, ErrDuplicateEmail)
		}
		logger.Error("failed to create user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create user: %w", op, err)
	}

	logger.Info("user created", slog.Int64("userID", user.ID))
	return user, nil
}

// Login проверяет пароль и выдает JWT-токен.
// Неизвестный email и неверный пароль неразличимы для вызывающего.
func (a *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	const op = "auth.Login"
	logger := a.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)
	logger.Info("checking user")

	user, err := a.userRepo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Warn("user not found")
			return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredential)
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return "", nil, fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		logger.Warn("invalid password")
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredential)
	}

	token, err := security.NewToken(user, a.tokenTTL, a.jwtSecret)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return "", nil, fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("user logged in successfully", slog.Int64("userID", user.ID))
	return token, user, nil
}

// ChangePassword меняет пароль независимо от остальных полей профиля.
func (a *AuthService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	const op = "auth.ChangePassword"
	logger := a.log.With(slog.String("op", op), slog.Int64("userID", userID))

	user, err := a.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return fmt.Errorf("%s: %w", op, ErrAccountNotFound)
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(oldPassword)); err != nil {
		logger.Warn("invalid password")
		return fmt.Errorf("%s: %w", op, ErrInvalidCredential)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", slog.Any("error", err))
		return fmt.Errorf("%s: failed to hash password: %w", op, err)
	}
	if err := a.userRepo.UpdatePassword(ctx, userID, passHash); err != nil {
		logger.Error("failed to update password", slog.Any("error", err))
		return fmt.Errorf("%s: failed to update password: %w", op, err)
	}

	logger.Info("password changed")
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
