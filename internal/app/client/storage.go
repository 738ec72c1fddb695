package client

import (
	"context"
	"encoding/json"

	"lunasync/internal/domain/record"
)

// Ключи скалярных значений локального хранилища
const (
	keyDeviceID   = "device_id"
	keyLastSyncAt = "last_sync_at"
)

// Storage локальное хранилище коллекций и скалярных значений.
// WriteCollection заменяет коллекцию целиком: при ошибке остается
// читаемым прежнее состояние.
type Storage interface {
	ReadCollection(ctx context.Context, name record.Collection) ([]json.RawMessage, error)
	WriteCollection(ctx context.Context, name record.Collection, docs []json.RawMessage) error
	ReadScalar(ctx context.Context, key string) (string, bool, error)
	WriteScalar(ctx context.Context, key, value string) error
	Close() error
}

// pendingCounter хранилище, которое считает ожидающие отправки записи без
// чтения коллекции целиком
type pendingCounter interface {
	CountPending(ctx context.Context, name record.Collection, since int64) (int, error)
}
