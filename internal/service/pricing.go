package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/linemk/doggys-shop/internal/domain/models"
)

// Catalog доступный только на чтение срез каталога
type Catalog interface {
	Product(id int64) (*models.Product, bool)
}

// CatalogSnapshot каталог, загруженный в память на время расчета
type CatalogSnapshot map[int64]*models.Product

func (c CatalogSnapshot) Product(id int64) (*models.Product, bool) {
	p, ok := c[id]
	return p, ok
}

// PriceLines фиксирует цену и название товара в каждой строке и считает итог.
// Повторяющиеся товары сливаются в одну строку с суммарным количеством,
// порядок строк соответствует первому появлению товара.
// Функция чистая: склад не меняет, при первой же ошибке возвращает ее без частичного результата.
func PriceLines(catalog Catalog, lines []models.LineRequest) ([]models.OrderItem, decimal.Decimal, error) {
	items := make([]models.OrderItem, 0, len(lines))
	index := make(map[int64]int, len(lines))

	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, decimal.Zero, fmt.Errorf("product %d: %w", line.ProductID, ErrInvalidQuantity)
		}
		product, ok := catalog.Product(line.ProductID)
		if !ok {
			return nil, decimal.Zero, fmt.Errorf("product %d: %w", line.ProductID, ErrProductNotFound)
		}

		if i, seen := index[product.ID]; seen {
			items[i].Quantity += line.Quantity
			continue
		}
		index[product.ID] = len(items)
		items = append(items, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    line.Quantity,
		})
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return items, total, nil
}
