package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linemk/doggys-shop/internal/domain/models"
	"github.com/linemk/doggys-shop/internal/storage"
	"github.com/linemk/doggys-shop/internal/storage/memory"
)

func seed(t *testing.T) (*memory.Store, *models.User, *models.Product, *models.Order) {
	t.Helper()
	ctx := context.Background()
	s := memory.New()

	u, err := s.CreateUser(ctx, &models.User{Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)
	p, err := s.CreateProduct(ctx, &models.Product{Name: "Croquetas", Price: decimal.NewFromInt(2500), Stock: 10, Available: true, Tags: []string{"perro"}})
	require.NoError(t, err)
	o, err := s.CreateOrder(ctx, &models.Order{
		UserID: u.ID,
		Status: models.StatusPending,
		Total:  decimal.NewFromInt(7500),
		Items:  []models.OrderItem{{ProductID: p.ID, ProductName: p.Name, UnitPrice: p.Price, Quantity: 3}},
	})
	require.NoError(t, err)
	return s, u, p, o
}

func TestInTx_CommitAppliesWrites(t *testing.T) {
	s, _, p, o := seed(t)
	ctx := context.Background()

	err := s.InTx(ctx, func(tx storage.OrderTx) error {
		order, err := tx.LockOrder(ctx, o.ID)
		require.NoError(t, err)
		products, err := tx.LockProducts(ctx, []int64{p.ID})
		require.NoError(t, err)
		require.NoError(t, tx.SetStock(ctx, p.ID, products[p.ID].Stock-3))

		// запись видна внутри транзакции
		again, err := tx.LockProducts(ctx, []int64{p.ID})
		require.NoError(t, err)
		assert.Equal(t, 7, again[p.ID].Stock)

		return tx.UpdateOrderStatus(ctx, order.ID, models.StatusPaid, true)
	})
	require.NoError(t, err)

	got, err := s.GetProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock)

	order, err := s.GetOrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, order.Status)
	assert.True(t, order.Settled)
}

func TestInTx_ErrorDiscardsWrites(t *testing.T) {
	s, _, p, o := seed(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(tx storage.OrderTx) error {
		_, err := tx.LockOrder(ctx, o.ID)
		require.NoError(t, err)
		_, err = tx.LockProducts(ctx, []int64{p.ID})
		require.NoError(t, err)
		require.NoError(t, tx.SetStock(ctx, p.ID, 0))
		require.NoError(t, tx.UpdateOrderStatus(ctx, o.ID, models.StatusPaid, true))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.GetProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock)
	order, err := s.GetOrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, order.Status)

	// блокировки сняты: следующая транзакция не зависает
	assert.NoError(t, s.InTx(ctx, func(tx storage.OrderTx) error {
		_, err := tx.LockOrder(ctx, o.ID)
		return err
	}))
}

func TestInTx_WritesRequireLocks(t *testing.T) {
	s, _, p, o := seed(t)
	ctx := context.Background()

	err := s.InTx(ctx, func(tx storage.OrderTx) error {
		return tx.SetStock(ctx, p.ID, 1)
	})
	assert.Error(t, err)

	err = s.InTx(ctx, func(tx storage.OrderTx) error {
		return tx.UpdateOrderStatus(ctx, o.ID, models.StatusPaid, false)
	})
	assert.Error(t, err)
}

func TestInTx_NotFound(t *testing.T) {
	s, _, _, _ := seed(t)
	ctx := context.Background()

	err := s.InTx(ctx, func(tx storage.OrderTx) error {
		_, err := tx.LockOrder(ctx, 99)
		return err
	})
	assert.ErrorIs(t, err, storage.ErrOrderNotFound)

	err = s.InTx(ctx, func(tx storage.OrderTx) error {
		_, err := tx.LockProducts(ctx, []int64{99})
		return err
	})
	assert.ErrorIs(t, err, storage.ErrProductNotFound)
}

func TestInTx_CancelledContext(t *testing.T) {
	s, _, _, _ := seed(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.InTx(ctx, func(tx storage.OrderTx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestStore_ReturnsCopies(t *testing.T) {
	s, _, p, o := seed(t)
	ctx := context.Background()

	got, err := s.GetProductByID(ctx, p.ID)
	require.NoError(t, err)
	got.Tags[0] = "gato"
	got.Stock = 0

	again, err := s.GetProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"perro"}, again.Tags)
	assert.Equal(t, 10, again.Stock)

	order, err := s.GetOrderByID(ctx, o.ID)
	require.NoError(t, err)
	order.Items[0].Quantity = 100
	order, err = s.GetOrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, order.Items[0].Quantity)
}

func TestStore_ReferentialChecks(t *testing.T) {
	s, u, p, o := seed(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.DeleteProduct(ctx, p.ID), storage.ErrProductReferenced)
	assert.ErrorIs(t, s.DeleteUser(ctx, u.ID), storage.ErrUserReferenced)

	_, err := s.CreateUser(ctx, &models.User{Name: "Otra", Email: "ANA@example.com"})
	assert.ErrorIs(t, err, storage.ErrEmailTaken)

	_, err = s.CreateOrder(ctx, &models.Order{UserID: 42})
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	_, err = s.CreateReceipt(ctx, &models.Receipt{OrderID: o.ID, Code: "a"})
	require.NoError(t, err)
	_, err = s.CreateReceipt(ctx, &models.Receipt{OrderID: o.ID, Code: "b"})
	assert.ErrorIs(t, err, storage.ErrReceiptExists)
	_, err = s.CreateReceipt(ctx, &models.Receipt{OrderID: 404, Code: "c"})
	assert.ErrorIs(t, err, storage.ErrOrderNotFound)
}

func TestListProducts_FiltersAndPaging(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	for _, p := range []models.Product{
		{Name: "Croquetas perro", Tags: []string{"perro"}, Available: true},
		{Name: "Croquetas gato", Tags: []string{"gato"}, Available: true},
		{Name: "Arena gato", Tags: []string{"gato"}, Available: false},
	} {
		p := p
		p.Price = decimal.NewFromInt(1000)
		_, err := s.CreateProduct(ctx, &p)
		require.NoError(t, err)
	}

	list, err := s.ListProducts(ctx, models.ProductFilter{ListFilter: models.ListFilter{Query: "CROQUETAS"}})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = s.ListProducts(ctx, models.ProductFilter{Tag: "gato", AvailableOnly: true})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Croquetas gato", list[0].Name)

	list, err = s.ListProducts(ctx, models.ProductFilter{ListFilter: models.ListFilter{Offset: 1, Limit: 1}})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(2), list[0].ID)

	list, err = s.ListProducts(ctx, models.ProductFilter{ListFilter: models.ListFilter{Offset: 10}})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestInTx_CreateReceipt(t *testing.T) {
	s, _, _, o := seed(t)
	ctx := context.Background()

	// без блокировки заказа чек не пишется
	err := s.InTx(ctx, func(tx storage.OrderTx) error {
		_, err := tx.CreateReceipt(ctx, &models.Receipt{OrderID: o.ID, Code: "c"})
		return err
	})
	assert.Error(t, err)

	// при ошибке чек отбрасывается
	boom := errors.New("boom")
	err = s.InTx(ctx, func(tx storage.OrderTx) error {
		_, err := tx.LockOrder(ctx, o.ID)
		require.NoError(t, err)
		_, err = tx.CreateReceipt(ctx, &models.Receipt{OrderID: o.ID, Code: "c", Total: o.Total})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	_, err = s.GetReceiptByOrderID(ctx, o.ID)
	assert.ErrorIs(t, err, storage.ErrReceiptNotFound)

	var receipt *models.Receipt
	err = s.InTx(ctx, func(tx storage.OrderTx) error {
		_, err := tx.LockOrder(ctx, o.ID)
		require.NoError(t, err)
		receipt, err = tx.CreateReceipt(ctx, &models.Receipt{OrderID: o.ID, Code: "c", Total: o.Total})
		return err
	})
	require.NoError(t, err)
	assert.NotZero(t, receipt.ID)

	got, err := s.GetReceiptByOrderID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, receipt.ID, got.ID)

	err = s.InTx(ctx, func(tx storage.OrderTx) error {
		_, err := tx.LockOrder(ctx, o.ID)
		require.NoError(t, err)
		_, err = tx.CreateReceipt(ctx, &models.Receipt{OrderID: o.ID, Code: "d"})
		return err
	})
	assert.ErrorIs(t, err, storage.ErrReceiptExists)
}
