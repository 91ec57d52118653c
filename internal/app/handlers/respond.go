package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/linemk/doggys-shop/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/doggys-shop/internal/service"
)

var validate = validator.New()

var errInvalidRequest = errors.New("invalid request")

// errorKinds сопоставление ошибок ядра с HTTP-статусами
var errorKinds = []struct {
	err    error
	status int
}{
	{service.ErrAccountNotFound, http.StatusNotFound},
	{service.ErrProductNotFound, http.StatusNotFound},
	{service.ErrOrderNotFound, http.StatusNotFound},
	{service.ErrReceiptNotFound, http.StatusNotFound},

	{service.ErrInsufficientStock, http.StatusConflict},
	{service.ErrDuplicateEmail, http.StatusConflict},
	{service.ErrProductReferenced, http.StatusConflict},
	{service.ErrAccountReferenced, http.StatusConflict},
	{service.ErrOrderNotPaid, http.StatusConflict},
	{service.ErrInvalidTransition, http.StatusConflict},

	{service.ErrInvalidQuantity, http.StatusBadRequest},
	{service.ErrEmptyOrder, http.StatusBadRequest},
	{service.ErrInvalidStatus, http.StatusBadRequest},
	{service.ErrProductUnavailable, http.StatusBadRequest},
	{service.ErrInvalidProduct, http.StatusBadRequest},
	{errInvalidRequest, http.StatusBadRequest},

	{service.ErrInvalidCredential, http.StatusUnauthorized},
	{service.ErrForbidden, http.StatusForbidden},
}

// StatusFor возвращает HTTP-статус и публичное сообщение для ошибки
func StatusFor(err error) (int, string) {
	var stockErr *service.InsufficientStockError
	if errors.As(err, &stockErr) {
		return http.StatusConflict, stockErr.Error()
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.status, k.err.Error()
		}
	}
	return http.StatusInternalServerError, "internal server error"
}

// writeError пишет ответ с ошибкой. Ошибки клиента логируются как Warn, остальные как Error.
func writeError(w http.ResponseWriter, logger *slog.Logger, msg string, err error) {
	status, public := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error(msg, slog.Any("error", err))
	} else {
		logger.Warn(msg, slog.Any("error", err), slog.Int("status", status))
	}
	http.Error(w, public, status)
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}

// decodeJSON разбирает тело запроса и проверяет его тегами validate
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decoding error: %v", errInvalidRequest, err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: validation error: %v", errInvalidRequest, err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad %s", errInvalidRequest, name)
	}
	return id, nil
}

// queryInt читает необязательный числовой параметр запроса
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: bad %s", errInvalidRequest, name)
	}
	return v, nil
}

const (
	defaultLimit = 50
	maxLimit     = 200
)

// paging читает skip/limit: skip >= 0, limit в диапазоне 1..200
func paging(r *http.Request) (offset, limit int, err error) {
	if offset, err = queryInt(r, "skip", 0); err != nil {
		return 0, 0, err
	}
	if limit, err = queryInt(r, "limit", defaultLimit); err != nil {
		return 0, 0, err
	}
	if offset < 0 || limit < 1 || limit > maxLimit {
		return 0, 0, fmt.Errorf("%w: skip must be >= 0 and limit in 1..%d", errInvalidRequest, maxLimit)
	}
	return offset, limit, nil
}

type principal struct {
	userID  int64
	isAdmin bool
}

// currentUser пользователь, положенный в контекст JWT middleware
func currentUser(r *http.Request) (principal, bool) {
	id, ok := jwtmiddleware.FromContext(r.Context())
	if !ok {
		return principal{}, false
	}
	return principal{userID: id, isAdmin: jwtmiddleware.IsAdmin(r.Context())}, true
}

// canAccess администратор видит всё, покупатель только свое
func (p principal) canAccess(ownerID int64) bool {
	return p.isAdmin || p.userID == ownerID
}

func unauthorized(w http.ResponseWriter, logger *slog.Logger) {
	logger.Error("userID not found in context")
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}
