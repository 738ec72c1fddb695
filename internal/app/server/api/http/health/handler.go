package health

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// Pinger проверяет доступность хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	db         Pinger
	log        *slog.Logger
	middleware huma.Middlewares
	clock      func() time.Time
}

func NewHandler(db Pinger, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		db:         db,
		log:        log,
		middleware: middleware,
		clock:      time.Now,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.healthCheckOp(), h.healthCheck)
}

func (h *Handler) healthCheck(ctx context.Context, _ *Input) (*Output, error) {
	out := &Output{
		Status: http.StatusOK,
		Body: Response{
			Status:     "OK",
			Database:   DatabaseDisabled,
			ServerTime: h.clock().UnixMilli(),
		},
	}

	if h.db == nil {
		return out, nil
	}

	if err := h.db.Ping(ctx); err != nil {
		h.log.Warn("database is unavailable", "error", err)
		out.Status = http.StatusServiceUnavailable
		out.Body.Status = "DEGRADED"
		out.Body.Database = DatabaseUnavailable
		return out, nil
	}

	out.Body.Database = DatabaseOK
	return out, nil
}
