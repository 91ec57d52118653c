package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/linemk/doggys-shop/internal/domain/models"
	"github.com/linemk/doggys-shop/internal/storage"
)

// ReceiptService выдает чеки по оплаченным заказам.
type ReceiptService interface {
	// Issue возвращает чек и признак того, что он создан этим вызовом.
	// Для заказа, по которому чек уже выдан, возвращается существующий чек.
	Issue(ctx context.Context, orderID int64) (*models.Receipt, bool, error)
	Get(ctx context.Context, id int64) (*models.Receipt, error)
	GetByOrder(ctx context.Context, orderID int64) (*models.Receipt, error)
	List(ctx context.Context) ([]*models.Receipt, error)
}

type receiptService struct {
	log         *slog.Logger
	receiptRepo storage.ReceiptStorage
	tx          storage.Transactor
	now         func() time.Time
	newCode     func() string
}

// NewReceiptService создаёт сервис чеков. Статус заказа проверяется и чек пишется
// под блокировкой заказа в одной транзакции tx.
func NewReceiptService(log *slog.Logger, receiptRepo storage.ReceiptStorage, tx storage.Transactor) ReceiptService {
	return &receiptService{
		log:         log,
		receiptRepo: receiptRepo,
		tx:          tx,
		now:         time.Now,
		newCode:     uuid.NewString,
	}
}

func (s *receiptService) Issue(ctx context.Context, orderID int64) (*models.Receipt, bool, error) {
	const op = "service.ReceiptService.Issue"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", orderID))
	logger.Info("issuing receipt")

	var (
		receipt *models.Receipt
		created bool
	)
	err := s.tx.InTx(ctx, func(tx storage.OrderTx) error {
		order, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status != models.StatusPaid {
			return fmt.Errorf("%w: status %s", ErrOrderNotPaid, order.Status)
		}

		existing, err := s.receiptRepo.GetReceiptByOrderID(ctx, orderID)
		switch {
		case err == nil:
			receipt = existing
			return nil
		case !errors.Is(err, storage.ErrReceiptNotFound):
			return fmt.Errorf("failed to get receipt: %w", err)
		}

		receipt, err = tx.CreateReceipt(ctx, &models.Receipt{
			OrderID:  order.ID,
			Code:     s.newCode(),
			Total:    order.Total,
			IssuedAt: s.now(),
		})
		if err != nil {
			return err
		}
		created = true
		return nil
	})

	switch {
	case err == nil:
	case errors.Is(err, storage.ErrReceiptExists):
		// параллельный запрос успел выдать чек раньше
		existing, getErr := s.receiptRepo.GetReceiptByOrderID(ctx, orderID)
		if getErr != nil {
			logger.Error("failed to get concurrent receipt", slog.Any("error", getErr))
			return nil, false, fmt.Errorf("%s: failed to get receipt: %w", op, getErr)
		}
		return existing, false, nil
	case errors.Is(err, ErrOrderNotFound), errors.Is(err, ErrOrderNotPaid):
		logger.Warn("receipt rejected", slog.Any("error", err))
		return nil, false, fmt.Errorf("%s: %w", op, err)
	default:
		logger.Error("failed to issue receipt", slog.Any("error", err))
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	if !created {
		logger.Info("receipt already issued", slog.Int64("receiptID", receipt.ID))
		return receipt, false, nil
	}
	logger.Info("receipt issued", slog.Int64("receiptID", receipt.ID), slog.String("total", receipt.Total.String()))
	return receipt, true, nil
}

func (s *receiptService) Get(ctx context.Context, id int64) (*models.Receipt, error) {
	const op = "service.ReceiptService.Get"

	receipt, err := s.receiptRepo.GetReceiptByID(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrReceiptNotFound) {
			s.log.Error("failed to get receipt", slog.String("op", op), slog.Any("error", err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return receipt, nil
}

func (s *receiptService) GetByOrder(ctx context.Context, orderID int64) (*models.Receipt, error) {
	const op = "service.ReceiptService.GetByOrder"

	receipt, err := s.receiptRepo.GetReceiptByOrderID(ctx, orderID)
	if err != nil {
		if !errors.Is(err, storage.ErrReceiptNotFound) {
			s.log.Error("failed to get receipt", slog.String("op", op), slog.Any("error", err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return receipt, nil
}

func (s *receiptService) List(ctx context.Context) ([]*models.Receipt, error) {
	const op = "service.ReceiptService.List"

	receipts, err := s.receiptRepo.ListReceipts(ctx)
	if err != nil {
		s.log.Error("failed to list receipts", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return receipts, nil
}
