package document

import (
	"context"

	"lunasync/internal/domain/record"
)

// Repository хранилище документов.
//
// Create и Upsert принимают в doc.UpdatedAt серверное время записи; хранилище
// обязано гарантировать строгий рост updatedAt для одного документа.
type Repository interface {
	// Create вставляет новый документ. Повтор с тем же (deviceId, clientRef)
	// сливает поля в уже созданный документ вместо создания дубля.
	Create(ctx context.Context, doc *Document) (*Document, error)
	// Upsert сливает поля в документ с указанным id, создавая его при отсутствии.
	Upsert(ctx context.Context, doc *Document) (*Document, error)
	Get(ctx context.Context, collection record.Collection, id string) (*Document, error)
	// ListSince возвращает документы с updatedAt > since, новые первыми.
	// limit <= 0 означает без ограничения.
	ListSince(ctx context.Context, collection record.Collection, since int64, limit int) ([]Document, error)
}
