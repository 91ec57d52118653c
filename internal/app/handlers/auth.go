package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/doggys-shop/internal/service"
)

// RegisterRequest запрос на регистрацию покупателя
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone" validate:"max=30"`
	Address  string `json:"address" validate:"max=255"`
}

// LoginRequest представляет структуру запроса для входа с тегами валидации
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse JWT-токен и профиль пользователя
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// RegisterHandler обрабатывает POST /api/users
func RegisterHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RegisterHandler"
		logger := log.With(slog.String("op", op))

		var req RegisterRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, logger, "invalid request", err)
			return
		}

		user, err := authService.Register(r.Context(), service.RegisterInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			Phone:    req.Phone,
			Address:  req.Address,
		})
		if err != nil {
			writeError(w, logger, "registration failed", err)
			return
		}
		writeJSON(w, logger, http.StatusCreated, toUserResponse(user))
	}
}

// LoginHandler HTTP-обработчик для входа по email и паролю
func LoginHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.LoginHandler"
		logger := log.With(slog.String("op", op))

		var req LoginRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, logger, "invalid request", err)
			return
		}

		// Вызов бизнес-логики для аутентификации
		token, user, err := authService.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, logger, "login failed", err)
			return
		}

		writeJSON(w, logger, http.StatusOK, LoginResponse{Token: token, User: toUserResponse(user)})
	}
}
