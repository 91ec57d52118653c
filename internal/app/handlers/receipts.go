package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/doggys-shop/internal/service"
)

type IssueReceiptRequest struct {
	OrderID int64 `json:"order_id" validate:"required,gt=0"`
}

// IssueReceiptHandler POST /api/receipts: 201 для нового чека, 200 если чек уже был выдан
func IssueReceiptHandler(log *slog.Logger, orders service.OrderService, receipts service.ReceiptService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.IssueReceiptHandler"
		logger := log.With(slog.String("op", op))

		p, ok := currentUser(r)
		if !ok {
			unauthorized(w, logger)
			return
		}
		var req IssueReceiptRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, logger, "invalid request", err)
			return
		}

		order, err := orders.Get(r.Context(), req.OrderID)
		if err != nil {
			writeError(w, logger, "failed to get order", err)
			return
		}
		if !p.canAccess(order.UserID) {
			writeError(w, logger, "access denied", service.ErrForbidden)
			return
		}

		receipt, created, err := receipts.Issue(r.Context(), req.OrderID)
		if err != nil {
			writeError(w, logger, "failed to issue receipt", err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		writeJSON(w, logger, status, toReceiptResponse(receipt))
	}
}

// ListReceiptsHandler GET /api/receipts (только администратор)
func ListReceiptsHandler(log *slog.Logger, receipts service.ReceiptService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListReceiptsHandler"
		logger := log.With(slog.String("op", op))

		list, err := receipts.List(r.Context())
		if err != nil {
			writeError(w, logger, "failed to list receipts", err)
			return
		}
		writeJSON(w, logger, http.StatusOK, toReceiptList(list))
	}
}

func GetReceiptHandler(log *slog.Logger, orders service.OrderService, receipts service.ReceiptService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetReceiptHandler"
		logger := log.With(slog.String("op", op))

		p, ok := currentUser(r)
		if !ok {
			unauthorized(w, logger)
			return
		}
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, logger, "invalid receipt id", err)
			return
		}
		receipt, err := receipts.Get(r.Context(), id)
		if err != nil {
			writeError(w, logger, "failed to get receipt", err)
			return
		}
		if !p.isAdmin {
			order, err := orders.Get(r.Context(), receipt.OrderID)
			if err != nil {
				writeError(w, logger, "failed to get order", err)
				return
			}
			if order.UserID != p.userID {
				writeError(w, logger, "access denied", service.ErrForbidden)
				return
			}
		}
		writeJSON(w, logger, http.StatusOK, toReceiptResponse(receipt))
	}
}
