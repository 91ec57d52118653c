package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/linemk/doggys-shop/internal/domain/models"
	"github.com/linemk/doggys-shop/internal/service"
)

type UpdateUserRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"max=30"`
	Address string `json:"address" validate:"max=255"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ListUsersHandler GET /api/users (только администратор)
func ListUsersHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListUsersHandler"
		logger := log.With(slog.String("op", op))

		offset, limit, err := paging(r)
		if err != nil {
			writeError(w, logger, "invalid paging", err)
			return
		}
		users, err := userService.List(r.Context(), models.ListFilter{
			Query:  strings.TrimSpace(r.URL.Query().Get("q")),
			Offset: offset,
			Limit:  limit,
		})
		if err != nil {
			writeError(w, logger, "failed to list users", err)
			return
		}
		writeJSON(w, logger, http.StatusOK, toUserList(users))
	}
}

// userFromPath разбирает {id} и проверяет, что вызывающий сам пользователь или администратор
func userFromPath(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (int64, bool) {
	p, ok := currentUser(r)
	if !ok {
		unauthorized(w, logger)
		return 0, false
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, logger, "invalid user id", err)
		return 0, false
	}
	if !p.canAccess(id) {
		writeError(w, logger, "access denied", service.ErrForbidden)
		return 0, false
	}
	return id, true
}

func GetUserHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetUserHandler"
		logger := log.With(slog.String("op", op))

		id, ok := userFromPath(w, r, logger)
		if !ok {
			return
		}
		user, err := userService.Get(r.Context(), id)
		if err != nil {
			writeError(w, logger, "failed to get user", err)
			return
		}
		writeJSON(w, logger, http.StatusOK, toUserResponse(user))
	}
}

// UpdateUserHandler PUT /api/users/{id}: обновление профиля без пароля
func UpdateUserHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateUserHandler"
		logger := log.With(slog.String("op", op))

		id, ok := userFromPath(w, r, logger)
		if !ok {
			return
		}
		var req UpdateUserRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, logger, "invalid request", err)
			return
		}

		user, err := userService.UpdateProfile(r.Context(), &models.User{
			ID:      id,
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Address: req.Address,
		})
		if err != nil {
			writeError(w, logger, "failed to update user", err)
			return
		}
		writeJSON(w, logger, http.StatusOK, toUserResponse(user))
	}
}

// ChangePasswordHandler PUT /api/users/{id}/password
func ChangePasswordHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ChangePasswordHandler"
		logger := log.With(slog.String("op", op))

		id, ok := userFromPath(w, r, logger)
		if !ok {
			return
		}
		var req ChangePasswordRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, logger, "invalid request", err)
			return
		}
		if err := authService.ChangePassword(r.Context(), id, req.OldPassword, req.NewPassword); err != nil {
			writeError(w, logger, "failed to change password", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteUserHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteUserHandler"
		logger := log.With(slog.String("op", op))

		id, ok := userFromPath(w, r, logger)
		if !ok {
			return
		}
		if err := userService.Delete(r.Context(), id); err != nil {
			writeError(w, logger, "failed to delete user", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
