// Package common содержит общие для команд клиента помощники
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lunasync/internal/app/client"
)

type appKey struct{}

// WithApp кладет приложение в контекст команды
func WithApp(ctx context.Context, app *client.App) context.Context {
	return context.WithValue(ctx, appKey{}, app)
}

// App достает приложение из контекста команды
func App(cmd *cobra.Command) (*client.App, error) {
	if cmd.Context() == nil {
		return nil, errors.New("приложение не инициализировано")
	}
	app, ok := cmd.Context().Value(appKey{}).(*client.App)
	if !ok || app == nil {
		return nil, errors.New("приложение не инициализировано")
	}
	return app, nil
}

// timeLayouts допустимые форматы ввода даты и времени
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"02.01.2006 15:04",
}

// ParseTime разбирает дату в локальной зоне и возвращает миллисекунды
func ParseTime(s string) (int64, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t.UnixMilli(), nil
		}
	}
	return 0, fmt.Errorf("не удалось разобрать время %q, ожидается формат 2006-01-02 15:04", s)
}

// FormatTime форматирует миллисекунды для вывода
func FormatTime(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}

// SyncMark показывает, отправлена ли запись на сервер
func SyncMark(synced bool) string {
	if synced {
		return "✓"
	}
	return "…"
}
