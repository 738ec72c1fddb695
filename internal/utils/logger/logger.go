package logger

import (
	"io"
	"os"

	"golang.org/x/exp/slog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Окружения, определяющие формат и уровень логов
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// New создает логгер в зависимости от окружения
func New(env string) *slog.Logger {
	return NewWithOutput(env, os.Stdout)
}

// NewWithOutput создает логгер, пишущий в указанный поток
func NewWithOutput(env string, out io.Writer) *slog.Logger {
	switch env {
	case EnvLocal, "":
		return setupPrettySlog(out)
	case EnvDev:
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}

// NewFile создает логгер с ротацией файла (для фонового режима клиента)
func NewFile(env, path string) *slog.Logger {
	if path == "" {
		return New(env)
	}

	return NewWithOutput(env, &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})
}

func setupPrettySlog(out io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: false,
	}))
}
