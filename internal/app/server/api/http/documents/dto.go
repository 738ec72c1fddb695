package documents

import (
	"lunasync/internal/domain/document"
)

type createInput struct {
	Collection string `path:"collection" example:"users" doc:"Имя коллекции"`
	Body       createRequest
}

type createRequest struct {
	Fields    map[string]any `json:"fields" doc:"Поля документа"`
	DeviceID  string         `json:"deviceId,omitempty" doc:"Идентификатор устройства-автора"`
	ClientRef string         `json:"clientRef,omitempty" doc:"Локальный идентификатор записи для защиты от дублей"`
}

type upsertInput struct {
	Collection string `path:"collection" example:"users" doc:"Имя коллекции"`
	ID         string `path:"id" doc:"Серверный идентификатор документа"`
	Body       upsertRequest
}

type upsertRequest struct {
	Fields   map[string]any `json:"fields" doc:"Поля, сливаемые в документ"`
	DeviceID string         `json:"deviceId,omitempty" doc:"Идентификатор устройства-автора"`
}

type getInput struct {
	Collection string `path:"collection" example:"users" doc:"Имя коллекции"`
	ID         string `path:"id" doc:"Серверный идентификатор документа"`
}

type listInput struct {
	Collection string `path:"collection" example:"users" doc:"Имя коллекции"`
	Since      int64  `query:"since" minimum:"0" doc:"Вернуть документы с updatedAt строго больше since (мс)"`
	Limit      int    `query:"limit" minimum:"0" maximum:"1000" doc:"Максимум документов, 0 без ограничения"`
}

type documentOutput struct {
	Body documentResponse
}

type listOutput struct {
	Body listResponse
}

type documentResponse struct {
	ID        string         `json:"id"`
	Fields    map[string]any `json:"fields"`
	DeviceID  string         `json:"deviceId,omitempty"`
	CreatedAt int64          `json:"createdAt"`
	UpdatedAt int64          `json:"updatedAt"`
}

type listResponse struct {
	Records    []documentResponse `json:"records"`
	ServerTime int64              `json:"serverTime" doc:"Время сервера на момент выборки (мс)"`
}

func toResponse(doc *document.Document) documentResponse {
	return documentResponse{
		ID:        doc.ID,
		Fields:    doc.Fields,
		DeviceID:  doc.DeviceID,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}
