package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/linemk/doggys-shop/internal/domain/models"
	"github.com/linemk/doggys-shop/internal/storage"
)

// SalesFilter период и поиск по названию товара. Нулевые значения не фильтруют.
type SalesFilter struct {
	From  time.Time
	To    time.Time
	Query string
}

// SalesRow одна строка проданного заказа
type SalesRow struct {
	OrderID     int64
	UserID      int64
	CreatedAt   time.Time
	Status      models.OrderStatus
	ProductID   int64
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	Subtotal    decimal.Decimal
}

// ProductSales агрегат по товару
type ProductSales struct {
	ProductID   int64
	ProductName string
	Quantity    int
	Amount      decimal.Decimal
}

type SalesReport struct {
	Rows     []SalesRow
	Products []ProductSales
	Total    decimal.Decimal
	Orders   int
}

// ReportService отчеты для администратора
type ReportService interface {
	Sales(ctx context.Context, filter SalesFilter) (*SalesReport, error)
}

type reportService struct {
	log       *slog.Logger
	orderRepo storage.OrderStorage
}

func NewReportService(log *slog.Logger, orderRepo storage.OrderStorage) ReportService {
	return &reportService{log: log, orderRepo: orderRepo}
}

// Sales учитывает только заказы со списанным складом, отмененные пропускаются.
// Суммы берутся из сохраненных строк заказов.
func (s *reportService) Sales(ctx context.Context, filter SalesFilter) (*SalesReport, error) {
	const op = "service.ReportService.Sales"
	logger := s.log.With(slog.String("op", op), slog.String("query", filter.Query))

	orders, err := s.orderRepo.ListOrders(ctx, models.OrderFilter{From: filter.From, To: filter.To})
	if err != nil {
		logger.Error("failed to list orders", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	report := &SalesReport{Total: decimal.Zero}
	byProduct := make(map[int64]*ProductSales)
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	for _, order := range orders {
		if !order.Settled || order.Status == models.StatusCancelled {
			continue
		}
		matched := false
		for _, item := range order.Items {
			if query != "" && !strings.Contains(strings.ToLower(item.ProductName), query) {
				continue
			}
			matched = true
			subtotal := item.Subtotal()
			report.Rows = append(report.Rows, SalesRow{
				OrderID:     order.ID,
				UserID:      order.UserID,
				CreatedAt:   order.CreatedAt,
				Status:      order.Status,
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				UnitPrice:   item.UnitPrice,
				Quantity:    item.Quantity,
				Subtotal:    subtotal,
			})
			report.Total = report.Total.Add(subtotal)

			agg, ok := byProduct[item.ProductID]
			if !ok {
				agg = &ProductSales{ProductID: item.ProductID, ProductName: item.ProductName, Amount: decimal.Zero}
				byProduct[item.ProductID] = agg
			}
			agg.Quantity += item.Quantity
			agg.Amount = agg.Amount.Add(subtotal)
		}
		if matched {
			report.Orders++
		}
	}

	for _, agg := range byProduct {
		report.Products = append(report.Products, *agg)
	}
	sort.Slice(report.Products, func(i, j int) bool {
		return report.Products[i].ProductID < report.Products[j].ProductID
	})

	logger.Info("sales report built", slog.Int("orders", report.Orders), slog.String("total", report.Total.String()))
	return report, nil
}
