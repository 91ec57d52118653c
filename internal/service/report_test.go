package service_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linemk/doggys-shop/internal/domain/models"
	"github.com/linemk/doggys-shop/internal/service"
)

func TestReportService_Sales(t *testing.T) {
	f := newFixture(t, false)
	svc := service.NewReportService(discardLogger(), f.store)
	ctx := context.Background()
	user := f.addUser(t, "ana@example.com")
	food := f.addProduct(t, "Croquetas adulto", "2500", 50)
	toy := f.addProduct(t, "Pelota", "800", 50)

	paid, err := f.orders.Create(ctx, user.ID, []models.LineRequest{
		{ProductID: food.ID, Quantity: 2},
		{ProductID: toy.ID, Quantity: 1},
	}, "")
	require.NoError(t, err)
	_, err = f.orders.UpdateStatus(ctx, paid.ID, models.StatusPaid)
	require.NoError(t, err)

	delivered, err := f.orders.Create(ctx, user.ID, []models.LineRequest{{ProductID: food.ID, Quantity: 1}}, "")
	require.NoError(t, err)
	for _, s := range []models.OrderStatus{models.StatusPaid, models.StatusDelivered} {
		_, err = f.orders.UpdateStatus(ctx, delivered.ID, s)
		require.NoError(t, err)
	}

	// не учитываются: неоплаченный и отмененный после оплаты
	_, err = f.orders.Create(ctx, user.ID, []models.LineRequest{{ProductID: food.ID, Quantity: 5}}, "")
	require.NoError(t, err)
	cancelled, err := f.orders.Create(ctx, user.ID, []models.LineRequest{{ProductID: toy.ID, Quantity: 3}}, "")
	require.NoError(t, err)
	_, err = f.orders.UpdateStatus(ctx, cancelled.ID, models.StatusPaid)
	require.NoError(t, err)
	_, err = f.orders.UpdateStatus(ctx, cancelled.ID, models.StatusCancelled)
	require.NoError(t, err)

	report, err := svc.Sales(ctx, service.SalesFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Orders)
	assert.Len(t, report.Rows, 3)
	assert.True(t, report.Total.Equal(decimal.NewFromInt(8300)), "total %s", report.Total)
	require.Len(t, report.Products, 2)
	assert.Equal(t, food.ID, report.Products[0].ProductID)
	assert.Equal(t, 3, report.Products[0].Quantity)
	assert.True(t, report.Products[0].Amount.Equal(decimal.NewFromInt(7500)))

	filtered, err := svc.Sales(ctx, service.SalesFilter{Query: "pelota"})
	require.NoError(t, err)
	assert.Equal(t, 1, filtered.Orders)
	assert.True(t, filtered.Total.Equal(decimal.NewFromInt(800)))
}
