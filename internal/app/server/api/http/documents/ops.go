package documents

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

const basePath = "/api/v1/collections/{collection}/documents"

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID:   "documents-create",
		Method:        http.MethodPost,
		Path:          basePath,
		Summary:       "Создать документ",
		Description:   "Создает документ и назначает ему серверный идентификатор и время",
		Tags:          []string{"documents"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   h.middleware,
	}
}

func (h *Handler) upsertOp() huma.Operation {
	return huma.Operation{
		OperationID: "documents-upsert",
		Method:      http.MethodPut,
		Path:        basePath + "/{id}",
		Summary:     "Слить поля в документ",
		Description: "Сливает переданные поля в документ, создавая его при отсутствии",
		Tags:        []string{"documents"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) getOp() huma.Operation {
	return huma.Operation{
		OperationID: "documents-get",
		Method:      http.MethodGet,
		Path:        basePath + "/{id}",
		Summary:     "Получить документ",
		Tags:        []string{"documents"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "documents-list",
		Method:      http.MethodGet,
		Path:        basePath,
		Summary:     "Изменения коллекции",
		Description: "Возвращает документы, измененные после since, новые первыми",
		Tags:        []string{"documents"},
		Middlewares: h.middleware,
	}
}
