package models

import (
	"errors"
	"strings"
)

// OrderStatus статус жизненного цикла заказа
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusPaid       OrderStatus = "paid"
	StatusPreparing  OrderStatus = "preparing"
	StatusDispatched OrderStatus = "dispatched"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

var ErrUnknownStatus = errors.New("unknown order status")

// витрина присылает статусы на испанском
var statusAliases = map[string]OrderStatus{
	"pendiente":  StatusPending,
	"pagado":     StatusPaid,
	"preparando": StatusPreparing,
	"despachado": StatusDispatched,
	"entregado":  StatusDelivered,
	"anulado":    StatusCancelled,
	"cancelado":  StatusCancelled,
	"canceled":   StatusCancelled,
}

// ParseOrderStatus разбирает статус, принимая и испанские названия
func ParseOrderStatus(s string) (OrderStatus, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	st := OrderStatus(s)
	if st.Valid() {
		return st, nil
	}
	if alias, ok := statusAliases[s]; ok {
		return alias, nil
	}
	return "", ErrUnknownStatus
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusPreparing, StatusDispatched, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal delivered и cancelled дальше никуда не переходят
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// разрешенные переходы для строгого режима
var transitions = map[OrderStatus]OrderStatus{
	StatusPending:    StatusPaid,
	StatusPaid:       StatusPreparing,
	StatusPreparing:  StatusDispatched,
	StatusDispatched: StatusDelivered,
}

// CanTransitionTo проверяет переход по строгой таблице:
// pending→paid→preparing→dispatched→delivered и отмена из любого нетерминального статуса.
// Переход в тот же статус всегда разрешен.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if s == target {
		return true
	}
	if s.Terminal() {
		return false
	}
	if target == StatusCancelled {
		return true
	}
	return transitions[s] == target
}
