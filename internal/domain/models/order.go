package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// LineRequest строка заказа в том виде, как ее прислал клиент
type LineRequest struct {
	ProductID int64
	Quantity  int
}

// OrderItem строка заказа со снимком имени и цены товара на момент создания заказа.
// Последующие изменения каталога на нее не влияют.
type OrderItem struct {
	ProductID   int64
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// Subtotal стоимость строки
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order представляет заказ (pedido). В статусе pending работает как корзина.
type Order struct {
	ID        int64
	UserID    int64
	Items     []OrderItem
	Status    OrderStatus
	Total     decimal.Decimal // считается один раз при создании
	Comment   string
	Settled   bool // склад уже списан по этому заказу
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ItemsTotal сумма по строкам, должна совпадать с Total
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Quantities суммирует количество по каждому товару
// (один товар может встречаться в нескольких строках)
func (o *Order) Quantities() map[int64]int {
	return SumQuantities(toLineRequests(o.Items))
}

// SumQuantities суммирует запрошенное количество по товарам
func SumQuantities(lines []LineRequest) map[int64]int {
	res := make(map[int64]int, len(lines))
	for _, l := range lines {
		res[l.ProductID] += l.Quantity
	}
	return res
}

// SortedProductIDs возвращает идентификаторы товаров по возрастанию.
// В таком порядке берутся блокировки при списании склада.
func SortedProductIDs(quantities map[int64]int) []int64 {
	ids := make([]int64, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func toLineRequests(items []OrderItem) []LineRequest {
	lines := make([]LineRequest, 0, len(items))
	for _, item := range items {
		lines = append(lines, LineRequest{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return lines
}

// OrderFilter фильтр для списка заказов, нулевые значения не фильтруют
type OrderFilter struct {
	UserID int64
	Status OrderStatus
	From   time.Time
	To     time.Time
}
