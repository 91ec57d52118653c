package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/linemk/doggys-shop/internal/domain/models"
)

type transactor struct {
	db *sql.DB
}

// NewTransactor создаёт Transactor поверх postgres.
// Блокировки берутся через SELECT ... FOR UPDATE и живут до commit/rollback.
func NewTransactor(db *sql.DB) Transactor {
	return &transactor{db: db}
}

func (t *transactor) InTx(ctx context.Context, fn func(tx OrderTx) error) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&orderTx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type orderTx struct {
	tx *sql.Tx
}

func (t *orderTx) LockOrder(ctx context.Context, id int64) (*models.Order, error) {
	return getOrder(ctx, t.tx, "SELECT "+orderColumns+" FROM orders WHERE id = $1 FOR UPDATE", id)
}

// ORDER BY id задает одинаковый порядок блокировок для всех транзакций
func (t *orderTx) LockProducts(ctx context.Context, ids []int64) (map[int64]*models.Product, error) {
	products, err := queryProducts(ctx, t.tx,
		"SELECT "+productColumns+" FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE", pq.Array(ids))
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := products[id]; !ok {
			return nil, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
		}
	}
	return products, nil
}

func (t *orderTx) SetStock(ctx context.Context, productID int64, stock int) error {
	return setStock(ctx, t.tx, productID, stock)
}

func (t *orderTx) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus, settled bool) error {
	res, err := t.tx.ExecContext(ctx,
		"UPDATE orders SET status = $1, settled = $2, updated_at = NOW() WHERE id = $3",
		status, settled, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return checkAffected(res, ErrOrderNotFound)
}

func (t *orderTx) CreateReceipt(ctx context.Context, receipt *models.Receipt) (*models.Receipt, error) {
	return createReceipt(ctx, t.tx, receipt)
}
