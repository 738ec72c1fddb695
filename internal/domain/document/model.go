package document

import (
	"lunasync/internal/domain/record"
)

// Document серверное представление записи коллекции.
// Поля документа хранятся как есть, сервер не знает их схему.
type Document struct {
	Collection record.Collection
	ID         string
	Fields     map[string]any
	DeviceID   string
	ClientRef  string
	CreatedAt  int64
	UpdatedAt  int64
}

// Page результат выборки изменений
type Page struct {
	Documents  []Document
	ServerTime int64
}

// reservedFields заполняются сервером и не принимаются от клиента
var reservedFields = []string{"id", "createdAt", "updatedAt", "synced", "deviceId"}
