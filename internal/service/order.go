package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/linemk/doggys-shop/internal/domain/models"
	"github.com/linemk/doggys-shop/internal/storage"
)

// OrderService управляет жизненным циклом заказа и списанием склада.
type OrderService interface {
	Create(ctx context.Context, userID int64, lines []models.LineRequest, comment string) (*models.Order, error)
	Get(ctx context.Context, id int64) (*models.Order, error)
	List(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error)
}

type orderService struct {
	log         *slog.Logger
	userRepo    storage.UserStorage
	productRepo storage.ProductStorage
	orderRepo   storage.OrderStorage
	tx          storage.Transactor
	strict      bool
}

// NewOrderService создаёт сервис заказов. strict включает таблицу разрешенных переходов статусов.
func NewOrderService(log *slog.Logger, userRepo storage.UserStorage, productRepo storage.ProductStorage, orderRepo storage.OrderStorage, tx storage.Transactor, strict bool) OrderService {
	return &orderService{
		log:         log,
		userRepo:    userRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		tx:          tx,
		strict:      strict,
	}
}

// Create создаёт заказ в статусе pending.
// Остаток проверяется, но не списывается: окончательная проверка происходит при оплате.
func (s *orderService) Create(ctx context.Context, userID int64, lines []models.LineRequest, comment string) (*models.Order, error) {
	const op = "service.OrderService.Create"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int("lines", len(lines)))
	logger.Info("creating order")

	if _, err := s.userRepo.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Warn("account not found")
			return nil, fmt.Errorf("%s: %w", op, ErrAccountNotFound)
		}
		logger.Error("failed to get account", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get account: %w", op, err)
	}

	if len(lines) == 0 {
		logger.Warn("empty order")
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyOrder)
	}

	quantities := models.SumQuantities(lines)
	ids := models.SortedProductIDs(quantities)
	products, err := s.productRepo.GetProductsByIDs(ctx, ids)
	if err != nil {
		logger.Error("failed to load products", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to load products: %w", op, err)
	}
	catalog := CatalogSnapshot(products)

	items, total, err := PriceLines(catalog, lines)
	if err != nil {
		logger.Warn("failed to price order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// проверка наличия при создании, склад не резервируется
	for _, id := range ids {
		product := products[id]
		if !product.Available {
			logger.Warn("product unavailable", slog.Int64("productID", id))
			return nil, fmt.Errorf("%s: product %d: %w", op, id, ErrProductUnavailable)
		}
		if product.Stock < quantities[id] {
			logger.Warn("insufficient stock", slog.Int64("productID", id), slog.Int("stock", product.Stock), slog.Int("requested", quantities[id]))
			return nil, fmt.Errorf("%s: %w", op, &InsufficientStockError{ProductID: id, Requested: quantities[id], Available: product.Stock})
		}
	}

	order := &models.Order{
		UserID:  userID,
		Items:   items,
		Status:  models.StatusPending,
		Total:   total,
		Comment: comment,
	}
	created, err := s.orderRepo.CreateOrder(ctx, order)
	if err != nil {
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create order: %w", op, err)
	}

	logger.Info("order created", slog.Int64("orderID", created.ID), slog.String("total", created.Total.String()))
	return created, nil
}

func (s *orderService) Get(ctx context.Context, id int64) (*models.Order, error) {
	const op = "service.OrderService.Get"

	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrOrderNotFound) {
			s.log.Error("failed to get order", slog.String("op", op), slog.Int64("orderID", id), slog.Any("error", err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return order, nil
}

// List возвращает сохраненные итоги заказов, ничего не пересчитывая
func (s *orderService) List(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error) {
	const op = "service.OrderService.List"

	orders, err := s.orderRepo.ListOrders(ctx, filter)
	if err != nil {
		s.log.Error("failed to list orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

// UpdateStatus меняет статус заказа.
// Первый переход в paid списывает склад по всем строкам или не списывает ничего.
// Повторная оплата уже оплаченного заказа склад не трогает.
func (s *orderService) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	const op = "service.OrderService.UpdateStatus"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", id), slog.String("status", string(status)))
	logger.Info("updating order status")

	if !status.Valid() {
		logger.Warn("invalid status")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidStatus)
	}

	var updated *models.Order
	err := s.tx.InTx(ctx, func(tx storage.OrderTx) error {
		order, err := tx.LockOrder(ctx, id)
		if err != nil {
			return err
		}

		if s.strict && !order.Status.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, status)
		}

		settled := order.Settled
		if status == models.StatusPaid && !order.Settled {
			if err := settle(ctx, tx, order); err != nil {
				return err
			}
			settled = true
		}

		if err := tx.UpdateOrderStatus(ctx, order.ID, status, settled); err != nil {
			return err
		}
		order.Status = status
		order.Settled = settled
		order.UpdatedAt = time.Now()
		updated = order
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound), errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrInvalidTransition):
			logger.Warn("status change rejected", slog.Any("error", err))
		default:
			logger.Error("failed to update order status", slog.Any("error", err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("order status updated", slog.Bool("settled", updated.Settled))
	return updated, nil
}

// settle списывает склад по заказу. Вызывается внутри транзакции,
// товары блокируются до ее завершения, поэтому проверка и списание атомарны.
func settle(ctx context.Context, tx storage.OrderTx, order *models.Order) error {
	quantities := order.Quantities()
	ids := models.SortedProductIDs(quantities)

	products, err := tx.LockProducts(ctx, ids)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if products[id].Stock < quantities[id] {
			return &InsufficientStockError{ProductID: id, Requested: quantities[id], Available: products[id].Stock}
		}
	}
	for _, id := range ids {
		if err := tx.SetStock(ctx, id, products[id].Stock-quantities[id]); err != nil {
			return err
		}
	}
	return nil
}
