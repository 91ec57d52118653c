package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/linemk/doggys-shop/internal/lib/logger/handlers/slogpretty"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// SetupLogger логгер для окружения env: local пишет в консоль цветным текстом,
// остальные окружения пишут JSON в stdout.
// level (debug, info, warn, error) переопределяет уровень окружения, пустой оставляет его.
func SetupLogger(env, level string) *slog.Logger {
	log, err := New(os.Stdout, env, level)
	if err != nil {
		log.Warn("log level ignored", slog.Any("error", err))
	}
	return log
}

// New собирает логгер поверх w. При неизвестном level возвращает логгер
// с уровнем окружения и ошибку.
func New(w io.Writer, env, level string) (*slog.Logger, error) {
	lvl, err := resolveLevel(env, level)
	opts := &slog.HandlerOptions{Level: lvl}

	if env == EnvLocal {
		color.NoColor = false
		pretty := slogpretty.PrettyHandlerOptions{SlogOpts: opts}
		return slog.New(pretty.NewPrettyHandler(w)), err
	}
	return slog.New(slog.NewJSONHandler(w, opts)), err
}

func resolveLevel(env, level string) (slog.Level, error) {
	def := slog.LevelInfo
	if env == EnvLocal || env == EnvDev {
		def = slog.LevelDebug
	}
	if strings.TrimSpace(level) == "" {
		return def, nil
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return def, fmt.Errorf("unknown log level %q", level)
	}
	return lvl, nil
}
