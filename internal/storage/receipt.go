package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/doggys-shop/internal/domain/models"
)

// ReceiptStorage описывает методы для работы с чеками.
type ReceiptStorage interface {
	// CreateReceipt возвращает ErrReceiptExists, если чек по заказу уже есть.
	CreateReceipt(ctx context.Context, receipt *models.Receipt) (*models.Receipt, error)
	GetReceiptByID(ctx context.Context, id int64) (*models.Receipt, error)
	GetReceiptByOrderID(ctx context.Context, orderID int64) (*models.Receipt, error)
	ListReceipts(ctx context.Context) ([]*models.Receipt, error)
}

type receiptRepository struct {
	db *sql.DB
}

func NewReceiptRepository(db *sql.DB) ReceiptStorage {
	return &receiptRepository{db: db}
}

const receiptColumns = "id, order_id, code, total, issued_at"

func scanReceipt(row rowScanner) (*models.Receipt, error) {
	rc := &models.Receipt{}
	if err := row.Scan(&rc.ID, &rc.OrderID, &rc.Code, &rc.Total, &rc.IssuedAt); err != nil {
		return nil, err
	}
	return rc, nil
}

func (r *receiptRepository) CreateReceipt(ctx context.Context, receipt *models.Receipt) (*models.Receipt, error) {
	return createReceipt(ctx, r.db, receipt)
}

func createReceipt(ctx context.Context, q querier, receipt *models.Receipt) (*models.Receipt, error) {
	query := `INSERT INTO receipts (order_id, code, total, issued_at)
	          VALUES ($1, $2, $3, $4) RETURNING id`
	err := q.QueryRowContext(ctx, query, receipt.OrderID, receipt.Code, receipt.Total, receipt.IssuedAt).Scan(&receipt.ID)
	if err != nil {
		if hasPgCode(err, pgUniqueViolation) {
			return nil, ErrReceiptExists
		}
		if hasPgCode(err, pgForeignKeyViolation) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to create receipt: %w", err)
	}
	return receipt, nil
}

func (r *receiptRepository) GetReceiptByID(ctx context.Context, id int64) (*models.Receipt, error) {
	return r.getOne(ctx, "SELECT "+receiptColumns+" FROM receipts WHERE id = $1", id)
}

func (r *receiptRepository) GetReceiptByOrderID(ctx context.Context, orderID int64) (*models.Receipt, error) {
	return r.getOne(ctx, "SELECT "+receiptColumns+" FROM receipts WHERE order_id = $1", orderID)
}

func (r *receiptRepository) getOne(ctx context.Context, query string, arg int64) (*models.Receipt, error) {
	rc, err := scanReceipt(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReceiptNotFound
		}
		return nil, err
	}
	return rc, nil
}

func (r *receiptRepository) ListReceipts(ctx context.Context) ([]*models.Receipt, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+receiptColumns+" FROM receipts ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer rows.Close()

	var receipts []*models.Receipt
	for rows.Next() {
		rc, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		receipts = append(receipts, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return receipts, nil
}
