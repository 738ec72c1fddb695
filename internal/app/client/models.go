package client

import (
	"time"

	"lunasync/internal/domain/record"
)

// PushDoc документ, отправляемый на сервер. Пустой ID означает создание.
type PushDoc struct {
	ID        string
	ClientRef string
	DeviceID  string
	Fields    map[string]any
}

// RemoteRecord документ в том виде, в котором его вернул сервер
type RemoteRecord struct {
	ID        string         `json:"id"`
	Fields    map[string]any `json:"fields,omitempty"`
	DeviceID  string         `json:"deviceId,omitempty"`
	CreatedAt int64          `json:"createdAt"`
	UpdatedAt int64          `json:"updatedAt"`
}

// тела запросов и ответов API документов
type createDocumentRequest struct {
	Fields    map[string]any `json:"fields"`
	DeviceID  string         `json:"deviceId"`
	ClientRef string         `json:"clientRef,omitempty"`
}

type upsertDocumentRequest struct {
	Fields   map[string]any `json:"fields"`
	DeviceID string         `json:"deviceId"`
}

// PullPage ответ сервера на запрос изменений. ServerTime снимается сервером
// до чтения, поэтому все записи позже него попадут в следующую страницу.
type PullPage struct {
	Records    []RemoteRecord `json:"records"`
	ServerTime int64          `json:"serverTime"`
}

// SyncResult результат одного цикла синхронизации
type SyncResult struct {
	Uploaded   int           `json:"uploaded"`
	Downloaded int           `json:"downloaded"`
	Skipped    int           `json:"skipped"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration"`
}

// SyncStats статистика синхронизации за время жизни процесса
type SyncStats struct {
	TotalSyncs      int       `json:"total_syncs"`
	TotalErrors     int       `json:"total_errors"`
	TotalUploaded   int       `json:"total_uploaded"`
	TotalDownloaded int       `json:"total_downloaded"`
	LastSuccessful  time.Time `json:"last_successful"`
	LastFailed      time.Time `json:"last_failed"`
	LastError       string    `json:"last_error,omitempty"`
	AvgSyncDuration float64   `json:"avg_sync_duration"`
}

// SyncStatus состояние синхронизации устройства
type SyncStatus struct {
	DeviceID   string
	LastSyncAt time.Time
	Online     bool
	Syncing    bool
	Pending    map[record.Collection]int
	Stats      SyncStats
}
