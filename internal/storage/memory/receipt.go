package memory

import (
	"context"

	"github.com/linemk/doggys-shop/internal/domain/models"
	"github.com/linemk/doggys-shop/internal/storage"
)

func (s *Store) CreateReceipt(_ context.Context, receipt *models.Receipt) (*models.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[receipt.OrderID]; !ok {
		return nil, storage.ErrOrderNotFound
	}
	if s.hasReceipt(receipt.OrderID) {
		return nil, storage.ErrReceiptExists
	}
	s.seqReceipts++
	receipt.ID = s.seqReceipts
	s.receipts[receipt.ID] = cloneReceipt(receipt)
	return receipt, nil
}

func (s *Store) GetReceiptByID(_ context.Context, id int64) (*models.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.receipts[id]
	if !ok {
		return nil, storage.ErrReceiptNotFound
	}
	return cloneReceipt(r), nil
}

func (s *Store) GetReceiptByOrderID(_ context.Context, orderID int64) (*models.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.receipts {
		if r.OrderID == orderID {
			return cloneReceipt(r), nil
		}
	}
	return nil, storage.ErrReceiptNotFound
}

func (s *Store) ListReceipts(_ context.Context) ([]*models.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	receipts := make([]*models.Receipt, 0, len(s.receipts))
	for _, id := range sortedKeys(s.receipts) {
		receipts = append(receipts, cloneReceipt(s.receipts[id]))
	}
	return receipts, nil
}

// hasReceipt вызывается под s.mu
func (s *Store) hasReceipt(orderID int64) bool {
	for _, r := range s.receipts {
		if r.OrderID == orderID {
			return true
		}
	}
	return false
}
