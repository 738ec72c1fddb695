package document

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"lunasync/internal/domain/record"
)

const maxListLimit = 1000

// Servicer интерфейс сервиса документов
type Servicer interface {
	Create(ctx context.Context, collection record.Collection, fields map[string]any, deviceID, clientRef string) (*Document, error)
	Upsert(ctx context.Context, collection record.Collection, id string, fields map[string]any, deviceID string) (*Document, error)
	Get(ctx context.Context, collection record.Collection, id string) (*Document, error)
	ListSince(ctx context.Context, collection record.Collection, since int64, limit int) (*Page, error)
}

// Service назначает идентификаторы и серверное время, остальное делегирует хранилищу
type Service struct {
	repo  Repository
	log   *slog.Logger
	clock func() time.Time
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		log:   log.With("component", "document_service"),
		clock: time.Now,
	}
}

func (s *Service) Create(ctx context.Context, collection record.Collection, fields map[string]any, deviceID, clientRef string) (*Document, error) {
	if err := collection.Validate(); err != nil {
		return nil, err
	}
	clean, err := cleanFields(fields)
	if err != nil {
		return nil, err
	}

	now := s.clock().UnixMilli()
	doc := &Document{
		Collection: collection,
		ID:         uuid.NewString(),
		Fields:     clean,
		DeviceID:   deviceID,
		ClientRef:  clientRef,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	saved, err := s.repo.Create(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	s.log.Debug("document created",
		"collection", collection, "id", saved.ID, "device_id", deviceID, "deduplicated", saved.ID != doc.ID)
	return saved, nil
}

func (s *Service) Upsert(ctx context.Context, collection record.Collection, id string, fields map[string]any, deviceID string) (*Document, error) {
	if err := collection.Validate(); err != nil {
		return nil, err
	}
	if id == "" || record.IsPlaceholder(id) {
		return nil, fmt.Errorf("%w: id %q is not a server id", ErrInvalidDocument, id)
	}
	clean, err := cleanFields(fields)
	if err != nil {
		return nil, err
	}

	now := s.clock().UnixMilli()
	saved, err := s.repo.Upsert(ctx, &Document{
		Collection: collection,
		ID:         id,
		Fields:     clean,
		DeviceID:   deviceID,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert document: %w", err)
	}

	s.log.Debug("document upserted", "collection", collection, "id", id, "updated_at", saved.UpdatedAt)
	return saved, nil
}

func (s *Service) Get(ctx context.Context, collection record.Collection, id string) (*Document, error) {
	if err := collection.Validate(); err != nil {
		return nil, err
	}
	doc, err := s.repo.Get(ctx, collection, id)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// ListSince возвращает изменения коллекции после since.
// ServerTime фиксируется до чтения, чтобы клиент не пропустил параллельные записи.
func (s *Service) ListSince(ctx context.Context, collection record.Collection, since int64, limit int) (*Page, error) {
	if err := collection.Validate(); err != nil {
		return nil, err
	}
	if since < 0 {
		since = 0
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	serverTime := s.clock().UnixMilli()
	docs, err := s.repo.ListSince(ctx, collection, since, limit)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if docs == nil {
		docs = []Document{}
	}

	return &Page{Documents: docs, ServerTime: serverTime}, nil
}

// cleanFields копирует поля без служебных ключей
func cleanFields(fields map[string]any) (map[string]any, error) {
	if fields == nil {
		return nil, fmt.Errorf("%w: fields are required", ErrInvalidDocument)
	}
	clean := maps.Clone(fields)
	for _, key := range reservedFields {
		delete(clean, key)
	}
	return clean, nil
}
