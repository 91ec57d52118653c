package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linemk/doggys-shop/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	// Создаем временный файл с конфигурацией
	tmpFile, err := os.CreateTemp(t.TempDir(), "config_test_*.yaml")
	require.NoError(t, err)

	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpFile.Close())
	return tmpFile.Name()
}

func TestMustLoadByPath_Success(t *testing.T) {
	// Устанавливаем обязательные переменные окружения
	t.Setenv("DB_PASSWORD", "mypassword")
	t.Setenv("JWT_SECRET", "mysecret")
	t.Setenv("ADMIN_PASSWORD", "adminpass")

	path := writeConfig(t, `
env: "local"
http_server:
  address: "localhost:8080"
  timeout: "4s"
  idle_timeout: "60s"
storage:
  driver: "postgres"
database:
  host: "localhost"
  port: 5432
  user: "postgres"
  name: "doggys"
jwt:
  token_ttl: 90
migrations:
  path: "./migrations"
orders:
  strict_transitions: true
cors:
  allowed_origins: ["http://localhost:5173", "https://doggys.cl"]
admin:
  email: "admin@doggys.cl"
  name: "Admin"
`)

	// Загружаем конфигурацию из временного файла
	cfg := config.MustLoadByPath(path)

	// Проверяем, что конфигурация загружена корректно
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "localhost:8080", cfg.HTTPServer.Address)
	assert.Equal(t, 4*time.Second, cfg.HTTPServer.Timeout)
	assert.Equal(t, 60*time.Second, cfg.HTTPServer.IdleTimeout)
	assert.Equal(t, config.DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, "mypassword", cfg.Database.Password)
	assert.Equal(t, "doggys", cfg.Database.Name)
	assert.Equal(t, "mysecret", cfg.JWT.Secret)
	assert.Equal(t, 90*time.Minute, cfg.JWT.TokenTTLDuration())
	assert.Equal(t, "./migrations", cfg.Migrations.Path)
	assert.True(t, cfg.Orders.StrictTransitions)
	assert.Equal(t, []string{"http://localhost:5173", "https://doggys.cl"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "adminpass", cfg.Admin.Password)
}

func TestMustLoadByPath_MemoryDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "mysecret")

	path := writeConfig(t, `
env: "local"
storage:
  driver: "memory"
`)
	cfg := config.MustLoadByPath(path)

	assert.Equal(t, config.DriverMemory, cfg.Storage.Driver)
	assert.Empty(t, cfg.Database.Password)
	assert.False(t, cfg.Orders.StrictTransitions)
	assert.Equal(t, 60*time.Minute, cfg.JWT.TokenTTLDuration())
	assert.Equal(t, "admin@doggys.cl", cfg.Admin.Email)
	assert.Empty(t, cfg.Log.Level)
}

func TestMustLoadByPath_LogLevelFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "mysecret")
	t.Setenv("LOG_LEVEL", "warn")

	path := writeConfig(t, `
env: "prod"
log:
  level: "debug"
`)
	cfg := config.MustLoadByPath(path)

	// переменная окружения важнее файла
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestMustLoadByPath_FileNotFound(t *testing.T) {
	// Ожидаем панику, если файла не существует
	assert.Panics(t, func() {
		config.MustLoadByPath("non_existent_config.yaml")
	})
}
