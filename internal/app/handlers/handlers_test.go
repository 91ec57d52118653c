package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linemk/doggys-shop/internal/app/handlers"
	"github.com/linemk/doggys-shop/internal/domain/models"
	"github.com/linemk/doggys-shop/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/doggys-shop/internal/service"
)

// fakeAuthService фиктивная реализация для тестирования.
type fakeAuthService struct {
	token string
	user  *models.User
	err   error
}

func (f *fakeAuthService) Register(ctx context.Context, in service.RegisterInput) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: 1, Name: in.Name, Email: in.Email}, nil
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	return f.token, f.user, f.err
}

func (f *fakeAuthService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	return f.err
}

// fakeOrderService хранит заказы в map и запоминает последний статус
type fakeOrderService struct {
	orders     map[int64]*models.Order
	err        error
	lastStatus models.OrderStatus
	lastFilter models.OrderFilter
	lastUserID int64
}

func newFakeOrders(orders ...*models.Order) *fakeOrderService {
	f := &fakeOrderService{orders: map[int64]*models.Order{}}
	for _, o := range orders {
		f.orders[o.ID] = o
	}
	return f
}

func (f *fakeOrderService) Create(ctx context.Context, userID int64, lines []models.LineRequest, comment string) (*models.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastUserID = userID
	items := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, models.OrderItem{ProductID: l.ProductID, ProductName: "food", UnitPrice: decimal.NewFromInt(2500), Quantity: l.Quantity})
	}
	o := &models.Order{ID: 100, UserID: userID, Items: items, Status: models.StatusPending, Comment: comment}
	o.Total = o.ItemsTotal()
	return o, nil
}

func (f *fakeOrderService) Get(ctx context.Context, id int64) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("fake: %w", service.ErrOrderNotFound)
	}
	return o, nil
}

func (f *fakeOrderService) List(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error) {
	f.lastFilter = filter
	return nil, f.err
}

func (f *fakeOrderService) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastStatus = status
	o := *f.orders[id]
	o.Status = status
	return &o, nil
}

type fakeReceiptService struct {
	receipt *models.Receipt
	created bool
	err     error
}

func (f *fakeReceiptService) Issue(ctx context.Context, orderID int64) (*models.Receipt, bool, error) {
	return f.receipt, f.created, f.err
}

func (f *fakeReceiptService) Get(ctx context.Context, id int64) (*models.Receipt, error) {
	if f.receipt == nil || f.receipt.ID != id {
		return nil, service.ErrReceiptNotFound
	}
	return f.receipt, nil
}

func (f *fakeReceiptService) GetByOrder(ctx context.Context, orderID int64) (*models.Receipt, error) {
	return f.receipt, f.err
}

func (f *fakeReceiptService) List(ctx context.Context) ([]*models.Receipt, error) {
	return []*models.Receipt{f.receipt}, f.err
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// newRequest собирает запрос с пользователем в контексте и параметрами chi
func newRequest(method, target, body string, userID int64, admin bool, params map[string]string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if userID != 0 {
		ctx = jwtmiddleware.WithUser(ctx, userID, admin)
	}
	return req.WithContext(ctx)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", fmt.Errorf("op: %w", service.ErrOrderNotFound), http.StatusNotFound},
		{"duplicate email", service.ErrDuplicateEmail, http.StatusConflict},
		{"not paid", service.ErrOrderNotPaid, http.StatusConflict},
		{"stock", &service.InsufficientStockError{ProductID: 1, Requested: 3, Available: 2}, http.StatusConflict},
		{"quantity", service.ErrInvalidQuantity, http.StatusBadRequest},
		{"credentials", service.ErrInvalidCredential, http.StatusUnauthorized},
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"unknown", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := handlers.StatusFor(tt.err)
			assert.Equal(t, tt.status, status)
		})
	}

	_, msg := handlers.StatusFor(assert.AnError)
	assert.Equal(t, "internal server error", msg, "внутренние ошибки не раскрываются")
}

func TestLoginHandler_Success(t *testing.T) {
	fakeSvc := &fakeAuthService{token: "test-token", user: &models.User{ID: 7, Email: "ana@doggys.cl"}}
	handler := handlers.LoginHandler(newLogger(), fakeSvc)

	req := newRequest(http.MethodPost, "/api/auth/login", `{"email": "ana@doggys.cl", "password": "secret123"}`, 0, false, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.LoginResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "test-token", resp.Token)
	assert.Equal(t, int64(7), resp.User.ID)
}

func TestLoginHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"invalid json", `{"email": "ana@doggys.cl", "password":`, nil, http.StatusBadRequest},
		{"bad email", `{"email": "not-an-email", "password": "secret123"}`, nil, http.StatusBadRequest},
		{"missing password", `{"email": "ana@doggys.cl"}`, nil, http.StatusBadRequest},
		{"wrong credentials", `{"email": "ana@doggys.cl", "password": "secret123"}`, service.ErrInvalidCredential, http.StatusUnauthorized},
		{"storage failure", `{"email": "ana@doggys.cl", "password": "secret123"}`, assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := handlers.LoginHandler(newLogger(), &fakeAuthService{err: tt.err})
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, newRequest(http.MethodPost, "/api/auth/login", tt.body, 0, false, nil))
			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

func TestRegisterHandler(t *testing.T) {
	handler := handlers.RegisterHandler(newLogger(), &fakeAuthService{})
	rr := httptest.NewRecorder()
	body := `{"name": "Ana", "email": "ana@doggys.cl", "password": "secret123"}`
	handler.ServeHTTP(rr, newRequest(http.MethodPost, "/api/users", body, 0, false, nil))

	assert.Equal(t, http.StatusCreated, rr.Code)
	var resp handlers.UserResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "ana@doggys.cl", resp.Email)
	assert.False(t, resp.IsAdmin)

	handler = handlers.RegisterHandler(newLogger(), &fakeAuthService{err: service.ErrDuplicateEmail})
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, newRequest(http.MethodPost, "/api/users", body, 0, false, nil))
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, newRequest(http.MethodPost, "/api/users", `{"name": "Ana", "email": "ana@doggys.cl", "password": "short"}`, 0, false, nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateOrderHandler(t *testing.T) {
	orders := newFakeOrders()
	handler := handlers.CreateOrderHandler(newLogger(), orders)

	body := `{"items": [{"product_id": 1, "quantity": 3}], "comment": "sin cebolla"}`
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newRequest(http.MethodPost, "/api/orders", body, 5, false, nil))

	require.Equal(t, http.StatusCreated, rr.Code)
	var resp handlers.OrderResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, models.StatusPending, resp.Status)
	assert.True(t, decimal.NewFromInt(7500).Equal(resp.Total))
	require.Len(t, resp.Items, 1)
	assert.True(t, decimal.NewFromInt(7500).Equal(resp.Items[0].Subtotal))
	assert.Equal(t, int64(5), orders.lastUserID)
}

func TestCreateOrderHandler_ForAnotherUser(t *testing.T) {
	body := `{"user_id": 9, "items": [{"product_id": 1, "quantity": 1}]}`

	orders := newFakeOrders()
	rr := httptest.NewRecorder()
	handlers.CreateOrderHandler(newLogger(), orders).ServeHTTP(rr, newRequest(http.MethodPost, "/api/orders", body, 5, false, nil))
	assert.Equal(t, http.StatusForbidden, rr.Code, "покупатель не может создать заказ за другого")

	rr = httptest.NewRecorder()
	handlers.CreateOrderHandler(newLogger(), orders).ServeHTTP(rr, newRequest(http.MethodPost, "/api/orders", body, 1, true, nil))
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, int64(9), orders.lastUserID)
}

func TestCreateOrderHandler_Errors(t *testing.T) {
	stockErr := &service.InsufficientStockError{ProductID: 1, Requested: 3, Available: 2}
	tests := []struct {
		name   string
		userID int64
		body   string
		err    error
		status int
	}{
		{"unauthorized", 0, `{"items": [{"product_id": 1, "quantity": 1}]}`, nil, http.StatusUnauthorized},
		{"bad json", 5, `{"items": [`, nil, http.StatusBadRequest},
		{"bad product id", 5, `{"items": [{"product_id": 0, "quantity": 1}]}`, nil, http.StatusBadRequest},
		{"insufficient stock", 5, `{"items": [{"product_id": 1, "quantity": 3}]}`, fmt.Errorf("op: %w", stockErr), http.StatusConflict},
		{"empty order", 5, `{"items": []}`, service.ErrEmptyOrder, http.StatusBadRequest},
		{"unknown product", 5, `{"items": [{"product_id": 42, "quantity": 1}]}`, service.ErrProductNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := newFakeOrders()
			orders.err = tt.err
			rr := httptest.NewRecorder()
			handlers.CreateOrderHandler(newLogger(), orders).ServeHTTP(rr, newRequest(http.MethodPost, "/api/orders", tt.body, tt.userID, false, nil))
			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

func TestListOrdersHandler_Scope(t *testing.T) {
	orders := newFakeOrders()

	rr := httptest.NewRecorder()
	handlers.ListOrdersHandler(newLogger(), orders).ServeHTTP(rr, newRequest(http.MethodGet, "/api/orders?user_id=9&status=pagado", "", 5, false, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(5), orders.lastFilter.UserID, "покупатель видит только свои заказы")
	assert.Equal(t, models.StatusPaid, orders.lastFilter.Status)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = httptest.NewRecorder()
	handlers.ListOrdersHandler(newLogger(), orders).ServeHTTP(rr, newRequest(http.MethodGet, "/api/orders?user_id=9&from=2026-01-01&to=2026-01-31", "", 1, true, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(9), orders.lastFilter.UserID)
	assert.Equal(t, 2026, orders.lastFilter.From.Year())
	assert.Equal(t, 1, orders.lastFilter.To.Day(), "to включает весь последний день")

	rr = httptest.NewRecorder()
	handlers.ListOrdersHandler(newLogger(), orders).ServeHTTP(rr, newRequest(http.MethodGet, "/api/orders?status=lost", "", 1, true, nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetOrderHandler_Access(t *testing.T) {
	orders := newFakeOrders(&models.Order{ID: 10, UserID: 5, Status: models.StatusPending})
	params := map[string]string{"id": "10"}

	tests := []struct {
		name   string
		userID int64
		admin  bool
		params map[string]string
		status int
	}{
		{"owner", 5, false, params, http.StatusOK},
		{"admin", 1, true, params, http.StatusOK},
		{"stranger", 6, false, params, http.StatusForbidden},
		{"unknown order", 5, false, map[string]string{"id": "11"}, http.StatusNotFound},
		{"bad id", 5, false, map[string]string{"id": "abc"}, http.StatusBadRequest},
		{"unauthorized", 0, false, params, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handlers.GetOrderHandler(newLogger(), orders).ServeHTTP(rr, newRequest(http.MethodGet, "/api/orders/x", "", tt.userID, tt.admin, tt.params))
			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

func TestUpdateOrderStatusHandler(t *testing.T) {
	params := map[string]string{"id": "10"}
	tests := []struct {
		name   string
		userID int64
		admin  bool
		body   string
		status int
		want   models.OrderStatus
	}{
		{"customer pays", 5, false, `{"status": "paid"}`, http.StatusOK, models.StatusPaid},
		{"customer cancels with alias", 5, false, `{"status": "cancelado"}`, http.StatusOK, models.StatusCancelled},
		{"customer cannot dispatch", 5, false, `{"status": "dispatched"}`, http.StatusForbidden, ""},
		{"admin dispatches", 1, true, `{"status": "dispatched"}`, http.StatusOK, models.StatusDispatched},
		{"stranger", 6, false, `{"status": "paid"}`, http.StatusForbidden, ""},
		{"unknown status", 5, false, `{"status": "lost"}`, http.StatusBadRequest, ""},
		{"missing status", 5, false, `{}`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := newFakeOrders(&models.Order{ID: 10, UserID: 5, Status: models.StatusPending})
			rr := httptest.NewRecorder()
			handlers.UpdateOrderStatusHandler(newLogger(), orders).ServeHTTP(rr, newRequest(http.MethodPatch, "/api/orders/10/status", tt.body, tt.userID, tt.admin, params))
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.want, orders.lastStatus)
		})
	}
}

func TestUpdateOrderStatusHandler_ServiceError(t *testing.T) {
	orders := newFakeOrders(&models.Order{ID: 10, UserID: 5, Status: models.StatusPending})
	orders.err = fmt.Errorf("op: %w", &service.InsufficientStockError{ProductID: 1, Requested: 3, Available: 2})

	rr := httptest.NewRecorder()
	handlers.UpdateOrderStatusHandler(newLogger(), orders).ServeHTTP(rr, newRequest(http.MethodPatch, "/api/orders/10/status", `{"status": "paid"}`, 5, false, map[string]string{"id": "10"}))
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "product 1")
}

func TestIssueReceiptHandler(t *testing.T) {
	orders := newFakeOrders(&models.Order{ID: 10, UserID: 5, Status: models.StatusPaid})
	receipt := &models.Receipt{ID: 1, OrderID: 10, Code: "B-000010", Total: decimal.NewFromInt(7500)}

	rr := httptest.NewRecorder()
	handlers.IssueReceiptHandler(newLogger(), orders, &fakeReceiptService{receipt: receipt, created: true}).
		ServeHTTP(rr, newRequest(http.MethodPost, "/api/receipts", `{"order_id": 10}`, 5, false, nil))
	require.Equal(t, http.StatusCreated, rr.Code)
	var resp handlers.ReceiptResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "B-000010", resp.Code)
	assert.True(t, decimal.NewFromInt(7500).Equal(resp.Total))

	rr = httptest.NewRecorder()
	handlers.IssueReceiptHandler(newLogger(), orders, &fakeReceiptService{receipt: receipt}).
		ServeHTTP(rr, newRequest(http.MethodPost, "/api/receipts", `{"order_id": 10}`, 5, false, nil))
	assert.Equal(t, http.StatusOK, rr.Code, "повторная выдача возвращает тот же чек")

	rr = httptest.NewRecorder()
	handlers.IssueReceiptHandler(newLogger(), orders, &fakeReceiptService{err: service.ErrOrderNotPaid}).
		ServeHTTP(rr, newRequest(http.MethodPost, "/api/receipts", `{"order_id": 10}`, 5, false, nil))
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = httptest.NewRecorder()
	handlers.IssueReceiptHandler(newLogger(), orders, &fakeReceiptService{receipt: receipt}).
		ServeHTTP(rr, newRequest(http.MethodPost, "/api/receipts", `{"order_id": 10}`, 6, false, nil))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestGetReceiptHandler_Access(t *testing.T) {
	orders := newFakeOrders(&models.Order{ID: 10, UserID: 5, Status: models.StatusPaid})
	receipts := &fakeReceiptService{receipt: &models.Receipt{ID: 3, OrderID: 10, Code: "B-000010"}}
	params := map[string]string{"id": "3"}

	rr := httptest.NewRecorder()
	handlers.GetReceiptHandler(newLogger(), orders, receipts).ServeHTTP(rr, newRequest(http.MethodGet, "/api/receipts/3", "", 5, false, params))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	handlers.GetReceiptHandler(newLogger(), orders, receipts).ServeHTTP(rr, newRequest(http.MethodGet, "/api/receipts/3", "", 6, false, params))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = httptest.NewRecorder()
	handlers.GetReceiptHandler(newLogger(), orders, receipts).ServeHTTP(rr, newRequest(http.MethodGet, "/api/receipts/4", "", 1, true, map[string]string{"id": "4"}))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(ctx context.Context) error { return f.err }

func TestHealthHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	handlers.HealthHandler(newLogger(), nil).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok","storage":"memory"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	handlers.HealthHandler(newLogger(), fakePinger{err: assert.AnError}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
