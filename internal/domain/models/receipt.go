package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt представляет чек (boleta) по оплаченному заказу. После создания не меняется.
type Receipt struct {
	ID       int64
	OrderID  int64
	Code     string          // публичный номер чека
	Total    decimal.Decimal // копия Total заказа на момент выдачи
	IssuedAt time.Time
}
