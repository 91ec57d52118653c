package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/linemk/doggys-shop/internal/domain/models"
)

// ProductStorage описывает методы для работы с каталогом.
type ProductStorage interface {
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	// GetProductsByIDs возвращает найденные товары, отсутствующих в карте нет.
	GetProductsByIDs(ctx context.Context, ids []int64) (map[int64]*models.Product, error)
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	SetAvailability(ctx context.Context, id int64, available bool) error
	SetStock(ctx context.Context, id int64, stock int) error
	// DeleteProduct не удаляет товар, на который ссылаются заказы.
	DeleteProduct(ctx context.Context, id int64) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт новый репозиторий каталога.
func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

const productColumns = "id, name, description, price, stock, available, tags, image_url, created_at"

func scanProduct(row rowScanner) (*models.Product, error) {
	p := &models.Product{}
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Available, pq.Array(&p.Tags), &p.ImageURL, &p.CreatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	query := `INSERT INTO products (name, description, price, stock, available, tags, image_url)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		product.Name, product.Description, product.Price, product.Stock, product.Available, pq.Array(product.Tags), product.ImageURL,
	).Scan(&product.ID, &product.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *productRepository) GetProductsByIDs(ctx context.Context, ids []int64) (map[int64]*models.Product, error) {
	return queryProducts(ctx, r.db, "SELECT "+productColumns+" FROM products WHERE id = ANY($1)", pq.Array(ids))
}

func (r *productRepository) ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR $2 = ANY(tags))
		  AND (NOT $3 OR available)
		ORDER BY id
		LIMIT $4 OFFSET $5`
	rows, err := r.db.QueryContext(ctx, query, filter.Query, filter.Tag, filter.AvailableOnly, limitOrDefault(filter.Limit), filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	query := `UPDATE products
	          SET name = $1, description = $2, price = $3, stock = $4, available = $5, tags = $6, image_url = $7
	          WHERE id = $8`
	res, err := r.db.ExecContext(ctx, query,
		product.Name, product.Description, product.Price, product.Stock, product.Available, pq.Array(product.Tags), product.ImageURL, product.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return checkAffected(res, ErrProductNotFound)
}

func (r *productRepository) SetAvailability(ctx context.Context, id int64, available bool) error {
	res, err := r.db.ExecContext(ctx, "UPDATE products SET available = $1 WHERE id = $2", available, id)
	if err != nil {
		return fmt.Errorf("failed to update availability: %w", err)
	}
	return checkAffected(res, ErrProductNotFound)
}

func (r *productRepository) SetStock(ctx context.Context, id int64, stock int) error {
	return setStock(ctx, r.db, id, stock)
}

func (r *productRepository) DeleteProduct(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		if hasPgCode(err, pgForeignKeyViolation) {
			return ErrProductReferenced
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return checkAffected(res, ErrProductNotFound)
}

func setStock(ctx context.Context, q querier, id int64, stock int) error {
	res, err := q.ExecContext(ctx, "UPDATE products SET stock = $1 WHERE id = $2", stock, id)
	if err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}
	return checkAffected(res, ErrProductNotFound)
}

func queryProducts(ctx context.Context, q querier, query string, args ...any) (map[int64]*models.Product, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make(map[int64]*models.Product)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}
