package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/linemk/doggys-shop/internal/app/handlers"
	"github.com/linemk/doggys-shop/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/doggys-shop/internal/lib/logger/handlers/urllog"
	"github.com/linemk/doggys-shop/internal/lib/metrics"
)

// Router собирает HTTP-маршруты приложения
func (a *App) Router() http.Handler {
	log := a.Logger
	svc := a.Services

	router := chi.NewRouter()
	serverMetrics := metrics.NewServerMetrics("api")

	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.Config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(serverMetrics.Middleware)

	router.Handle("/metrics", serverMetrics.Handler())

	var pinger handlers.Pinger
	if a.DB != nil {
		pinger = a.DB
	}
	router.Get("/health", handlers.HealthHandler(log, pinger))

	// публичные эндпоинты
	router.Post("/api/users", handlers.RegisterHandler(log, svc.Auth))
	router.Post("/api/auth/login", handlers.LoginHandler(log, svc.Auth))
	router.Get("/api/products", handlers.ListProductsHandler(log, svc.Catalog))
	router.Get("/api/products/{id}", handlers.GetProductHandler(log, svc.Catalog))

	router.Group(func(r chi.Router) {
		r.Use(jwtmiddleware.NewJWTMiddleware(a.Config.JWT.Secret))

		// профиль: сам пользователь или администратор
		r.Get("/api/users/{id}", handlers.GetUserHandler(log, svc.Users))
		r.Put("/api/users/{id}", handlers.UpdateUserHandler(log, svc.Users))
		r.Put("/api/users/{id}/password", handlers.ChangePasswordHandler(log, svc.Auth))
		r.Delete("/api/users/{id}", handlers.DeleteUserHandler(log, svc.Users))

		// заказы
		r.Post("/api/orders", handlers.CreateOrderHandler(log, svc.Orders))
		r.Get("/api/orders", handlers.ListOrdersHandler(log, svc.Orders))
		r.Get("/api/orders/{id}", handlers.GetOrderHandler(log, svc.Orders))
		r.Patch("/api/orders/{id}/status", handlers.UpdateOrderStatusHandler(log, svc.Orders))

		// чеки
		r.Post("/api/receipts", handlers.IssueReceiptHandler(log, svc.Orders, svc.Receipts))
		r.Get("/api/receipts/{id}", handlers.GetReceiptHandler(log, svc.Orders, svc.Receipts))

		r.Group(func(r chi.Router) {
			r.Use(jwtmiddleware.RequireAdmin)

			r.Get("/api/users", handlers.ListUsersHandler(log, svc.Users))

			r.Post("/api/products", handlers.CreateProductHandler(log, svc.Catalog))
			r.Put("/api/products/{id}", handlers.UpdateProductHandler(log, svc.Catalog))
			r.Patch("/api/products/{id}/available", handlers.SetAvailabilityHandler(log, svc.Catalog))
			r.Patch("/api/products/{id}/stock", handlers.SetStockHandler(log, svc.Catalog))
			r.Delete("/api/products/{id}", handlers.DeleteProductHandler(log, svc.Catalog))

			r.Get("/api/receipts", handlers.ListReceiptsHandler(log, svc.Receipts))
			r.Get("/api/reports/sales", handlers.SalesReportHandler(log, svc.Reports))
		})
	})

	return router
}
