package logger

import (
	"net/http"
	"slices"
	"time"

	"github.com/danielgtaylor/huma/v2"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/exp/slog"
)

// Logger middleware для логирования входящих HTTP запросов
type Logger struct {
	log   *slog.Logger
	quiet []string
}

// New создает middleware. Успешные вызовы операций из quiet (например,
// проверка здоровья, которую клиенты шлют постоянно) пишутся в Debug.
func New(log *slog.Logger, quiet ...string) *Logger {
	return &Logger{
		log:   log.With(slog.String("component", "http_logger")),
		quiet: quiet,
	}
}

// Middleware пишет одну строку на запрос; уровень зависит от статуса ответа
func (l *Logger) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()

		next(ctx)

		op := ctx.Operation()
		status := ctx.Status()
		attrs := []slog.Attr{
			slog.String("method", ctx.Method()),
			slog.String("path", ctx.URL().Path),
			slog.String("operation", op.OperationID),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("remote_addr", ctx.RemoteAddr()),
		}
		if collection := ctx.Param("collection"); collection != "" {
			attrs = append(attrs, slog.String("collection", collection))
		}
		if reqID := chimw.GetReqID(ctx.Context()); reqID != "" {
			attrs = append(attrs, slog.String("request_id", reqID))
		}

		l.log.LogAttrs(ctx.Context(), l.level(op.OperationID, status), "HTTP request", attrs...)
	}
}

func (l *Logger) level(operationID string, status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	case slices.Contains(l.quiet, operationID):
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
