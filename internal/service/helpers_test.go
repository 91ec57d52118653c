package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/linemk/doggys-shop/internal/domain/models"
	"github.com/linemk/doggys-shop/internal/service"
	"github.com/linemk/doggys-shop/internal/storage/memory"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	store    *memory.Store
	orders   service.OrderService
	receipts service.ReceiptService
}

func newFixture(t *testing.T, strict bool) *fixture {
	t.Helper()
	store := memory.New()
	log := discardLogger()
	return &fixture{
		store:    store,
		orders:   service.NewOrderService(log, store, store, store, store, strict),
		receipts: service.NewReceiptService(log, store, store),
	}
}

func (f *fixture) addUser(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := f.store.CreateUser(context.Background(), &models.User{Name: "Cliente", Email: email, PassHash: []byte("x")})
	require.NoError(t, err)
	return u
}

func (f *fixture) addProduct(t *testing.T, name, price string, stock int) *models.Product {
	t.Helper()
	p, err := f.store.CreateProduct(context.Background(), &models.Product{
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		Available: true,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) stock(t *testing.T, productID int64) int {
	t.Helper()
	p, err := f.store.GetProductByID(context.Background(), productID)
	require.NoError(t, err)
	return p.Stock
}
