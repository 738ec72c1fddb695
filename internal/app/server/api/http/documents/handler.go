package documents

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"lunasync/internal/domain/document"
	"lunasync/internal/domain/record"
)

type Handler struct {
	service    document.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service document.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.createOp(), h.create)
	huma.Register(api, h.upsertOp(), h.upsert)
	huma.Register(api, h.getOp(), h.get)
	huma.Register(api, h.listOp(), h.list)
}

func (h *Handler) create(ctx context.Context, input *createInput) (*documentOutput, error) {
	doc, err := h.service.Create(ctx, record.Collection(input.Collection),
		input.Body.Fields, input.Body.DeviceID, input.Body.ClientRef)
	if err != nil {
		return nil, h.toHTTPError(err)
	}
	return &documentOutput{Body: toResponse(doc)}, nil
}

func (h *Handler) upsert(ctx context.Context, input *upsertInput) (*documentOutput, error) {
	doc, err := h.service.Upsert(ctx, record.Collection(input.Collection),
		input.ID, input.Body.Fields, input.Body.DeviceID)
	if err != nil {
		return nil, h.toHTTPError(err)
	}
	return &documentOutput{Body: toResponse(doc)}, nil
}

func (h *Handler) get(ctx context.Context, input *getInput) (*documentOutput, error) {
	doc, err := h.service.Get(ctx, record.Collection(input.Collection), input.ID)
	if err != nil {
		return nil, h.toHTTPError(err)
	}
	return &documentOutput{Body: toResponse(doc)}, nil
}

func (h *Handler) list(ctx context.Context, input *listInput) (*listOutput, error) {
	page, err := h.service.ListSince(ctx, record.Collection(input.Collection), input.Since, input.Limit)
	if err != nil {
		return nil, h.toHTTPError(err)
	}

	records := make([]documentResponse, 0, len(page.Documents))
	for i := range page.Documents {
		records = append(records, toResponse(&page.Documents[i]))
	}

	return &listOutput{
		Body: listResponse{
			Records:    records,
			ServerTime: page.ServerTime,
		},
	}, nil
}

func (h *Handler) toHTTPError(err error) error {
	switch {
	case errors.Is(err, record.ErrUnknownCollection), errors.Is(err, document.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, document.ErrInvalidDocument):
		return huma.Error422UnprocessableEntity(err.Error())
	default:
		h.log.Error("document operation failed", "error", err)
		return huma.Error500InternalServerError("internal error")
	}
}
