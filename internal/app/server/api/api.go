// API сервера синхронизации:
//
//	GET  /api/v1/health
//	POST /api/v1/collections/{collection}/documents        создать документ
//	GET  /api/v1/collections/{collection}/documents        изменения после ?since
//	GET  /api/v1/collections/{collection}/documents/{id}   получить документ
//	PUT  /api/v1/collections/{collection}/documents/{id}   слить поля в документ
package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/exp/slog"

	documentsAPI "lunasync/internal/app/server/api/http/documents"
	healthAPI "lunasync/internal/app/server/api/http/health"
	"lunasync/internal/app/server/api/http/middleware"
	"lunasync/internal/app/server/api/http/middleware/logger"
	"lunasync/internal/domain/document"
)

type Handlers struct {
	Health    *healthAPI.Handler
	Documents *documentsAPI.Handler
}

// New создает *chi.Mux со всеми операциями через huma.Register
func New(db healthAPI.Pinger, repo document.Repository, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.Recoverer)

	API := humachi.New(mux, huma.DefaultConfig("Lunasync API", "1.0.0"))

	h := handlers(db, repo, log)
	h.Health.SetupRoutes(API)
	h.Documents.SetupRoutes(API)

	return mux
}

func handlers(db healthAPI.Pinger, repo document.Repository, log *slog.Logger) *Handlers {
	loggerMW := logger.New(log, healthAPI.OperationID)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(db, log, middlewares.GetAllAndClear())

	documentService := document.NewService(repo, log)
	middlewares.Add(loggerMW.Middleware())
	documentsHandler := documentsAPI.NewHandler(documentService, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health:    healthHandler,
		Documents: documentsHandler,
	}
}
