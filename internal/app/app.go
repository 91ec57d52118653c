package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/linemk/doggys-shop/internal/config"
	"github.com/linemk/doggys-shop/internal/service"
	"github.com/linemk/doggys-shop/internal/storage"
	"github.com/linemk/doggys-shop/internal/storage/memory"
)

// Services сервисный слой приложения
type Services struct {
	Auth     *service.AuthService
	Users    service.UserService
	Catalog  service.CatalogService
	Orders   service.OrderService
	Receipts service.ReceiptService
	Reports  service.ReportService
}

type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	DB       *sql.DB // nil для хранилища в памяти
	Services Services
}

type repositories struct {
	users    storage.UserStorage
	products storage.ProductStorage
	orders   storage.OrderStorage
	receipts storage.ReceiptStorage
	tx       storage.Transactor
}

// NewApp создаёт новый экземпляр App: открывает хранилище, собирает сервисы
// и создаёт администратора, если в окружении задан ADMIN_PASSWORD.
func NewApp(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg, Logger: log}

	var repos repositories
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		db, err := openPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		app.DB = db
		repos = repositories{
			users:    storage.NewUserRepository(db),
			products: storage.NewProductRepository(db),
			orders:   storage.NewOrderRepository(db),
			receipts: storage.NewReceiptRepository(db),
			tx:       storage.NewTransactor(db),
		}
	case config.DriverMemory:
		log.Warn("using in-memory storage, data is lost on restart")
		store := memory.New()
		repos = repositories{users: store, products: store, orders: store, receipts: store, tx: store}
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	app.Services = Services{
		Auth:     service.NewAuthService(log, repos.users, cfg.JWT.TokenTTLDuration(), cfg.JWT.Secret),
		Users:    service.NewUserService(log, repos.users),
		Catalog:  service.NewCatalogService(log, repos.products),
		Orders:   service.NewOrderService(log, repos.users, repos.products, repos.orders, repos.tx, cfg.Orders.StrictTransitions),
		Receipts: service.NewReceiptService(log, repos.receipts, repos.tx),
		Reports:  service.NewReportService(log, repos.orders),
	}

	if cfg.Admin.Password != "" {
		if err := app.Services.Auth.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			_ = app.Close()
			return nil, errors.Wrap(err, "failed to bootstrap admin")
		}
	}

	return app, nil
}

// DSN строка подключения к Postgres
func DSN(dbCfg config.DatabaseConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		dbCfg.User,
		dbCfg.Password,
		dbCfg.Host,
		dbCfg.Port,
		dbCfg.Name,
		dbCfg.SSLMode,
	)
}

func openPostgres(ctx context.Context, dbCfg config.DatabaseConfig) (*sql.DB, error) {
	if dbCfg.Password == "" {
		return nil, errors.New("DB_PASSWORD environment variable is not set")
	}

	db, err := sql.Open("postgres", DSN(dbCfg))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}
	return db, nil
}

// Close закрывает подключение к БД, если оно есть
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
