package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/linemk/doggys-shop/internal/domain/models"
	"github.com/linemk/doggys-shop/internal/service"
)

// Ответы API. Хэш пароля и служебные поля наружу не отдаются.

type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

type ProductResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Available   bool            `json:"available"`
	Tags        []string        `json:"tags"`
	ImageURL    string          `json:"image_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type OrderItemResponse struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type OrderResponse struct {
	ID        int64               `json:"id"`
	UserID    int64               `json:"user_id"`
	Status    models.OrderStatus  `json:"status"`
	Items     []OrderItemResponse `json:"items"`
	Total     decimal.Decimal     `json:"total"`
	Comment   string              `json:"comment,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

type ReceiptResponse struct {
	ID       int64           `json:"id"`
	OrderID  int64           `json:"order_id"`
	Code     string          `json:"code"`
	Total    decimal.Decimal `json:"total"`
	IssuedAt time.Time       `json:"issued_at"`
}

type SalesRowResponse struct {
	OrderID     int64              `json:"order_id"`
	UserID      int64              `json:"user_id"`
	CreatedAt   time.Time          `json:"created_at"`
	Status      models.OrderStatus `json:"status"`
	ProductID   int64              `json:"product_id"`
	ProductName string             `json:"product_name"`
	UnitPrice   decimal.Decimal    `json:"unit_price"`
	Quantity    int                `json:"quantity"`
	Subtotal    decimal.Decimal    `json:"subtotal"`
}

type ProductSalesResponse struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
}

type SalesReportResponse struct {
	Rows     []SalesRowResponse     `json:"rows"`
	Products []ProductSalesResponse `json:"products"`
	Total    decimal.Decimal        `json:"total"`
	Orders   int                    `json:"orders"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Address:   u.Address,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

func toUserList(users []*models.User) []UserResponse {
	res := make([]UserResponse, 0, len(users))
	for _, u := range users {
		res = append(res, toUserResponse(u))
	}
	return res
}

func toProductResponse(p *models.Product) ProductResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Available:   p.Available,
		Tags:        tags,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
	}
}

func toProductList(products []*models.Product) []ProductResponse {
	res := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		res = append(res, toProductResponse(p))
	}
	return res
}

// toOrderResponse отдает сохраненный итог заказа без пересчета
func toOrderResponse(o *models.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Subtotal:    item.Subtotal(),
		})
	}
	return OrderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		Status:    o.Status,
		Items:     items,
		Total:     o.Total,
		Comment:   o.Comment,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func toOrderList(orders []*models.Order) []OrderResponse {
	res := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		res = append(res, toOrderResponse(o))
	}
	return res
}

func toReceiptResponse(r *models.Receipt) ReceiptResponse {
	return ReceiptResponse{
		ID:       r.ID,
		OrderID:  r.OrderID,
		Code:     r.Code,
		Total:    r.Total,
		IssuedAt: r.IssuedAt,
	}
}

func toReceiptList(receipts []*models.Receipt) []ReceiptResponse {
	res := make([]ReceiptResponse, 0, len(receipts))
	for _, r := range receipts {
		res = append(res, toReceiptResponse(r))
	}
	return res
}

func toSalesReportResponse(rep *service.SalesReport) SalesReportResponse {
	res := SalesReportResponse{
		Rows:     make([]SalesRowResponse, 0, len(rep.Rows)),
		Products: make([]ProductSalesResponse, 0, len(rep.Products)),
		Total:    rep.Total,
		Orders:   rep.Orders,
	}
	for _, row := range rep.Rows {
		res.Rows = append(res.Rows, SalesRowResponse(row))
	}
	for _, p := range rep.Products {
		res.Products = append(res.Products, ProductSalesResponse(p))
	}
	return res
}
