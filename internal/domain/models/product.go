package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product представляет товар каталога
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal // цена в CLP, всегда > 0
	Stock       int             // остаток на складе, никогда не уходит в минус
	Available   bool            // доступен ли товар для продажи
	Tags        []string
	ImageURL    string
	CreatedAt   time.Time
}

// ProductFilter фильтр для списка товаров
type ProductFilter struct {
	ListFilter
	Tag           string
	AvailableOnly bool
}
