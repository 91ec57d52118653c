package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/linemk/doggys-shop/internal/domain/models"
	"github.com/linemk/doggys-shop/internal/service"
)

type OrderLineRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity"`
}

// CreateOrderRequest строки корзины. user_id учитывается только для администратора.
type CreateOrderRequest struct {
	UserID  int64              `json:"user_id"`
	Items   []OrderLineRequest `json:"items" validate:"dive"`
	Comment string             `json:"comment" validate:"max=500"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// CreateOrderHandler POST /api/orders: заказ создаётся в статусе pending
func CreateOrderHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateOrderHandler"
		logger := log.With(slog.String("op", op))

		p, ok := currentUser(r)
		if !ok {
			unauthorized(w, logger)
			return
		}
		var req CreateOrderRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, logger, "invalid request", err)
			return
		}

		userID := p.userID
		if req.UserID != 0 && req.UserID != p.userID {
			if !p.isAdmin {
				writeError(w, logger, "order for another account", service.ErrForbidden)
				return
			}
			userID = req.UserID
		}

		lines := make([]models.LineRequest, 0, len(req.Items))
		for _, item := range req.Items {
			lines = append(lines, models.LineRequest{ProductID: item.ProductID, Quantity: item.Quantity})
		}

		order, err := orders.Create(r.Context(), userID, lines, req.Comment)
		if err != nil {
			writeError(w, logger, "failed to create order", err)
			return
		}
		writeJSON(w, logger, http.StatusCreated, toOrderResponse(order))
	}
}

// ListOrdersHandler GET /api/orders: администратор видит все заказы, покупатель только свои
func ListOrdersHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListOrdersHandler"
		logger := log.With(slog.String("op", op))

		p, ok := currentUser(r)
		if !ok {
			unauthorized(w, logger)
			return
		}
		filter, err := orderFilterFromQuery(r)
		if err != nil {
			writeError(w, logger, "invalid filter", err)
			return
		}
		if !p.isAdmin {
			filter.UserID = p.userID
		}

		list, err := orders.List(r.Context(), filter)
		if err != nil {
			writeError(w, logger, "failed to list orders", err)
			return
		}
		writeJSON(w, logger, http.StatusOK, toOrderList(list))
	}
}

func orderFilterFromQuery(r *http.Request) (models.OrderFilter, error) {
	q := r.URL.Query()
	var filter models.OrderFilter

	if raw := q.Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, fmt.Errorf("%w: bad user_id", errInvalidRequest)
		}
		filter.UserID = id
	}
	if raw := q.Get("status"); raw != "" {
		status, err := models.ParseOrderStatus(raw)
		if err != nil {
			return filter, fmt.Errorf("%w: %s", service.ErrInvalidStatus, raw)
		}
		filter.Status = status
	}
	from, to, err := dateRange(r)
	if err != nil {
		return filter, err
	}
	filter.From, filter.To = from, to
	return filter, nil
}

// dateRange читает from/to в формате YYYY-MM-DD или RFC3339.
// Дата без времени в to включает весь день.
func dateRange(r *http.Request) (time.Time, time.Time, error) {
	from, err := parseDate(r.URL.Query().Get("from"), false)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseDate(r.URL.Query().Get("to"), true)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

func parseDate(raw string, endOfDay bool) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q", errInvalidRequest, raw)
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}

func GetOrderHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetOrderHandler"
		logger := log.With(slog.String("op", op))

		order, ok := loadOwnOrder(w, r, logger, orders)
		if !ok {
			return
		}
		writeJSON(w, logger, http.StatusOK, toOrderResponse(order))
	}
}

// UpdateOrderStatusHandler PATCH /api/orders/{id}/status.
// Покупатель может только оплатить или отменить свой заказ.
func UpdateOrderStatusHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateOrderStatusHandler"
		logger := log.With(slog.String("op", op))

		p, ok := currentUser(r)
		if !ok {
			unauthorized(w, logger)
			return
		}
		var req UpdateStatusRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, logger, "invalid request", err)
			return
		}
		status, err := models.ParseOrderStatus(req.Status)
		if err != nil {
			writeError(w, logger, "invalid status", fmt.Errorf("%w: %s", service.ErrInvalidStatus, req.Status))
			return
		}

		order, ok := loadOwnOrder(w, r, logger, orders)
		if !ok {
			return
		}
		if !p.isAdmin && status != models.StatusPaid && status != models.StatusCancelled {
			writeError(w, logger, "status change not allowed for customer", service.ErrForbidden)
			return
		}

		updated, err := orders.UpdateStatus(r.Context(), order.ID, status)
		if err != nil {
			writeError(w, logger, "failed to update order status", err)
			return
		}
		writeJSON(w, logger, http.StatusOK, toOrderResponse(updated))
	}
}

// loadOwnOrder читает заказ из {id} и проверяет доступ вызывающего
func loadOwnOrder(w http.ResponseWriter, r *http.Request, logger *slog.Logger, orders service.OrderService) (*models.Order, bool) {
	p, ok := currentUser(r)
	if !ok {
		unauthorized(w, logger)
		return nil, false
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, logger, "invalid order id", err)
		return nil, false
	}
	order, err := orders.Get(r.Context(), id)
	if err != nil {
		writeError(w, logger, "failed to get order", err)
		return nil, false
	}
	if !p.canAccess(order.UserID) {
		writeError(w, logger, "access denied", service.ErrForbidden)
		return nil, false
	}
	return order, true
}
