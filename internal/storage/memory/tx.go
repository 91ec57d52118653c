package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/linemk/doggys-shop/internal/domain/models"
	"github.com/linemk/doggys-shop/internal/storage"
)

var errNotLocked = errors.New("record is not locked by transaction")

// InTx выполняет fn с буфером записей. Записи применяются только если fn
// вернула nil, блокировки снимаются в любом случае.
func (s *Store) InTx(ctx context.Context, fn func(tx storage.OrderTx) error) error {
	tx := &memTx{
		s:        s,
		products: make(map[int64]bool),
		stock:    make(map[int64]int),
	}
	defer tx.release()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.commit()
}

type statusWrite struct {
	status  models.OrderStatus
	settled bool
}

type memTx struct {
	s        *Store
	unlock   []func()
	orderID  int64
	products map[int64]bool // заблокированные товары
	stock    map[int64]int
	status   *statusWrite
	receipt  *models.Receipt
}

func (t *memTx) LockOrder(_ context.Context, id int64) (*models.Order, error) {
	if t.orderID != 0 && t.orderID != id {
		return nil, fmt.Errorf("transaction already holds order %d", t.orderID)
	}
	if t.orderID == 0 {
		l := t.s.orderLock(id)
		l.Lock()
		t.unlock = append(t.unlock, l.Unlock)
		t.orderID = id
	}

	t.s.mu.RLock()
	o, ok := t.s.orders[id]
	var res *models.Order
	if ok {
		res = cloneOrder(o)
	}
	t.s.mu.RUnlock()

	if !ok {
		return nil, storage.ErrOrderNotFound
	}
	return res, nil
}

// LockProducts берет блокировки по возрастанию id, чтобы две транзакции
// с пересекающимися товарами не могли взаимно заблокироваться.
func (t *memTx) LockProducts(_ context.Context, ids []int64) (map[int64]*models.Product, error) {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	for _, id := range sorted {
		if t.products[id] {
			continue
		}
		l := t.s.productLock(id)
		l.Lock()
		t.unlock = append(t.unlock, l.Unlock)
		t.products[id] = true
	}

	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	res := make(map[int64]*models.Product, len(sorted))
	for _, id := range sorted {
		p, ok := t.s.products[id]
		if !ok {
			return nil, fmt.Errorf("product %d: %w", id, storage.ErrProductNotFound)
		}
		c := cloneProduct(p)
		if stock, ok := t.stock[id]; ok {
			c.Stock = stock
		}
		res[id] = c
	}
	return res, nil
}

func (t *memTx) SetStock(_ context.Context, productID int64, stock int) error {
	if !t.products[productID] {
		return errNotLocked
	}
	t.stock[productID] = stock
	return nil
}

func (t *memTx) UpdateOrderStatus(_ context.Context, id int64, status models.OrderStatus, settled bool) error {
	if t.orderID != id {
		return errNotLocked
	}
	t.status = &statusWrite{status: status, settled: settled}
	return nil
}

// CreateReceipt откладывает запись чека до commit. ID присваивается при commit.
func (t *memTx) CreateReceipt(_ context.Context, receipt *models.Receipt) (*models.Receipt, error) {
	if t.orderID != receipt.OrderID {
		return nil, errNotLocked
	}
	t.s.mu.RLock()
	exists := t.s.hasReceipt(receipt.OrderID)
	t.s.mu.RUnlock()
	if exists || t.receipt != nil {
		return nil, storage.ErrReceiptExists
	}
	t.receipt = receipt
	return receipt, nil
}

func (t *memTx) commit() error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	// сначала проверяем, что все записи применимы, затем применяем
	for id := range t.stock {
		if _, ok := t.s.products[id]; !ok {
			return storage.ErrProductNotFound
		}
	}
	var order *models.Order
	if t.status != nil {
		o, ok := t.s.orders[t.orderID]
		if !ok {
			return storage.ErrOrderNotFound
		}
		order = o
	}
	if t.receipt != nil {
		if _, ok := t.s.orders[t.receipt.OrderID]; !ok {
			return storage.ErrOrderNotFound
		}
		if t.s.hasReceipt(t.receipt.OrderID) {
			return storage.ErrReceiptExists
		}
	}

	for id, stock := range t.stock {
		t.s.products[id].Stock = stock
	}
	if order != nil {
		order.Status = t.status.status
		order.Settled = t.status.settled
		order.UpdatedAt = t.s.now()
	}
	if t.receipt != nil {
		t.s.seqReceipts++
		t.receipt.ID = t.s.seqReceipts
		t.s.receipts[t.receipt.ID] = cloneReceipt(t.receipt)
	}
	return nil
}

// release снимает блокировки в обратном порядке
func (t *memTx) release() {
	for i := len(t.unlock) - 1; i >= 0; i-- {
		t.unlock[i]()
	}
	t.unlock = nil
}
