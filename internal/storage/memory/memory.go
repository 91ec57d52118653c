// Package memory реализует хранилища в памяти процесса.
// Используется для локального запуска (storage.driver: memory) и в тестах сервисов.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/linemk/doggys-shop/internal/domain/models"
	"github.com/linemk/doggys-shop/internal/storage"
)

var (
	_ storage.UserStorage    = (*Store)(nil)
	_ storage.ProductStorage = (*Store)(nil)
	_ storage.OrderStorage   = (*Store)(nil)
	_ storage.ReceiptStorage = (*Store)(nil)
	_ storage.Transactor     = (*Store)(nil)
)

// Store хранит все сущности в картах.
// mu защищает карты и счетчики. Остаток товара меняется только под
// блокировкой этого товара (productLocks), смена статуса заказа под
// блокировкой заказа (orderLocks). mu никогда не удерживается при
// ожидании блокировки товара или заказа.
type Store struct {
	mu       sync.RWMutex
	users    map[int64]*models.User
	products map[int64]*models.Product
	orders   map[int64]*models.Order
	receipts map[int64]*models.Receipt

	seqUsers, seqProducts, seqOrders, seqReceipts int64

	locksMu      sync.Mutex
	productLocks map[int64]*sync.Mutex
	orderLocks   map[int64]*sync.Mutex

	now func() time.Time
}

func New() *Store {
	return &Store{
		users:        make(map[int64]*models.User),
		products:     make(map[int64]*models.Product),
		orders:       make(map[int64]*models.Order),
		receipts:     make(map[int64]*models.Receipt),
		productLocks: make(map[int64]*sync.Mutex),
		orderLocks:   make(map[int64]*sync.Mutex),
		now:          time.Now,
	}
}

func (s *Store) productLock(id int64) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.productLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.productLocks[id] = l
	}
	return l
}

func (s *Store) orderLock(id int64) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.orderLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.orderLocks[id] = l
	}
	return l
}

func containsFold(s, sub string) bool {
	return sub == "" || strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// page применяет offset/limit к отсортированному срезу
func page[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		limit = 50
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.PassHash = append([]byte(nil), u.PassHash...)
	return &c
}

func cloneProduct(p *models.Product) *models.Product {
	c := *p
	c.Tags = append([]string(nil), p.Tags...)
	return &c
}

func cloneOrder(o *models.Order) *models.Order {
	c := *o
	c.Items = append([]models.OrderItem(nil), o.Items...)
	return &c
}

func cloneReceipt(r *models.Receipt) *models.Receipt {
	c := *r
	return &c
}
