package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/linemk/doggys-shop/internal/domain/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("email already registered")
	ErrUserReferenced    = errors.New("user has orders")
	ErrProductNotFound   = errors.New("product not found")
	ErrProductReferenced = errors.New("product is referenced by orders")
	ErrOrderNotFound     = errors.New("order not found")
	ErrReceiptNotFound   = errors.New("receipt not found")
	ErrReceiptExists     = errors.New("receipt already issued for order")
)

// коды ошибок postgres
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// OrderTx единица работы над заказом: смена статуса и выдача чека.
// Заказ и товары, полученные через Lock*, заблокированы до конца транзакции.
type OrderTx interface {
	// LockOrder блокирует заказ и возвращает его вместе со строками.
	LockOrder(ctx context.Context, id int64) (*models.Order, error)
	// LockProducts блокирует товары в порядке возрастания id.
	LockProducts(ctx context.Context, ids []int64) (map[int64]*models.Product, error)
	SetStock(ctx context.Context, productID int64, stock int) error
	UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus, settled bool) error
	// CreateReceipt выдает чек под блокировкой заказа, ErrReceiptExists если чек уже есть.
	CreateReceipt(ctx context.Context, receipt *models.Receipt) (*models.Receipt, error)
}

// Transactor выполняет fn в одной транзакции: ошибка из fn откатывает все изменения.
type Transactor interface {
	InTx(ctx context.Context, fn func(tx OrderTx) error) error
}

// querier общий интерфейс *sql.DB и *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

func hasPgCode(err error, code string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == code
	}
	return false
}

// checkAffected возвращает notFound, если запрос не затронул ни одной строки
func checkAffected(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return 50
	}
	return limit
}
