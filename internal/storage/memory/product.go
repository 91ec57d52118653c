package memory

import (
	"context"
	"slices"

	"github.com/linemk/doggys-shop/internal/domain/models"
	"github.com/linemk/doggys-shop/internal/storage"
)

func (s *Store) CreateProduct(_ context.Context, product *models.Product) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seqProducts++
	product.ID = s.seqProducts
	product.CreatedAt = s.now()
	s.products[product.ID] = cloneProduct(product)
	return product, nil
}

func (s *Store) GetProductByID(_ context.Context, id int64) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, storage.ErrProductNotFound
	}
	return cloneProduct(p), nil
}

func (s *Store) GetProductsByIDs(_ context.Context, ids []int64) (map[int64]*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make(map[int64]*models.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			res[id] = cloneProduct(p)
		}
	}
	return res, nil
}

func (s *Store) ListProducts(_ context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var products []*models.Product
	for _, id := range sortedKeys(s.products) {
		p := s.products[id]
		if !containsFold(p.Name, filter.Query) {
			continue
		}
		if filter.Tag != "" && !slices.Contains(p.Tags, filter.Tag) {
			continue
		}
		if filter.AvailableOnly && !p.Available {
			continue
		}
		products = append(products, cloneProduct(p))
	}
	return page(products, filter.Offset, filter.Limit), nil
}

// UpdateProduct заменяет товар целиком, включая остаток,
// поэтому выполняется под блокировкой товара.
func (s *Store) UpdateProduct(_ context.Context, product *models.Product) error {
	l := s.productLock(product.ID)
	l.Lock()
	defer l.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.products[product.ID]
	if !ok {
		return storage.ErrProductNotFound
	}
	c := cloneProduct(product)
	c.CreatedAt = old.CreatedAt
	s.products[product.ID] = c
	return nil
}

func (s *Store) SetAvailability(_ context.Context, id int64, available bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return storage.ErrProductNotFound
	}
	p.Available = available
	return nil
}

func (s *Store) SetStock(_ context.Context, id int64, stock int) error {
	l := s.productLock(id)
	l.Lock()
	defer l.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return storage.ErrProductNotFound
	}
	p.Stock = stock
	return nil
}

func (s *Store) DeleteProduct(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return storage.ErrProductNotFound
	}
	for _, o := range s.orders {
		for _, item := range o.Items {
			if item.ProductID == id {
				return storage.ErrProductReferenced
			}
		}
	}
	delete(s.products, id)
	return nil
}
