package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"lunasync/internal/domain/document"
	"lunasync/internal/domain/record"
)

// updated_at растет строго монотонно даже при отстающих часах сервера
const (
	createQuery = `
		INSERT INTO documents (collection, id, fields, device_id, client_ref, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $6)
		ON CONFLICT (collection, device_id, client_ref) WHERE client_ref IS NOT NULL
		DO UPDATE SET
			fields = documents.fields || EXCLUDED.fields,
			updated_at = GREATEST(EXCLUDED.updated_at, documents.updated_at + 1)
		RETURNING id, fields, device_id, COALESCE(client_ref, ''), created_at, updated_at`

	upsertQuery = `
		INSERT INTO documents (collection, id, fields, device_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (collection, id)
		DO UPDATE SET
			fields = documents.fields || EXCLUDED.fields,
			device_id = COALESCE(NULLIF(EXCLUDED.device_id, ''), documents.device_id),
			updated_at = GREATEST(EXCLUDED.updated_at, documents.updated_at + 1)
		RETURNING id, fields, device_id, COALESCE(client_ref, ''), created_at, updated_at`

	getQuery = `
		SELECT id, fields, device_id, COALESCE(client_ref, ''), created_at, updated_at
		FROM documents
		WHERE collection = $1 AND id = $2`

	listSinceQuery = `
		SELECT id, fields, device_id, COALESCE(client_ref, ''), created_at, updated_at
		FROM documents
		WHERE collection = $1 AND updated_at > $2
		ORDER BY updated_at DESC, id ASC
		LIMIT $3`
)

type DocumentRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewDocumentRepository(pool *pgxpool.Pool, log *slog.Logger) *DocumentRepository {
	return &DocumentRepository{
		pool: pool,
		log:  log.With("component", "document_repository"),
	}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *document.Document) (*document.Document, error) {
	row := r.pool.QueryRow(ctx, createQuery,
		string(doc.Collection), doc.ID, doc.Fields, doc.DeviceID, doc.ClientRef, doc.UpdatedAt)

	saved, err := scanDocument(row, doc.Collection)
	if err != nil {
		r.log.Error("failed to create document",
			"collection", doc.Collection, "client_ref", doc.ClientRef, "error", err)
		return nil, fmt.Errorf("insert document: %w", err)
	}
	return saved, nil
}

func (r *DocumentRepository) Upsert(ctx context.Context, doc *document.Document) (*document.Document, error) {
	row := r.pool.QueryRow(ctx, upsertQuery,
		string(doc.Collection), doc.ID, doc.Fields, doc.DeviceID, doc.UpdatedAt)

	saved, err := scanDocument(row, doc.Collection)
	if err != nil {
		r.log.Error("failed to upsert document",
			"collection", doc.Collection, "id", doc.ID, "error", err)
		return nil, fmt.Errorf("upsert document: %w", err)
	}
	return saved, nil
}

func (r *DocumentRepository) Get(ctx context.Context, collection record.Collection, id string) (*document.Document, error) {
	saved, err := scanDocument(r.pool.QueryRow(ctx, getQuery, string(collection), id), collection)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, document.ErrNotFound
		}
		r.log.Error("failed to get document", "collection", collection, "id", id, "error", err)
		return nil, fmt.Errorf("get document: %w", err)
	}
	return saved, nil
}

func (r *DocumentRepository) ListSince(ctx context.Context, collection record.Collection, since int64, limit int) ([]document.Document, error) {
	// LIMIT NULL в postgres означает отсутствие ограничения
	var lim *int
	if limit > 0 {
		lim = &limit
	}

	rows, err := r.pool.Query(ctx, listSinceQuery, string(collection), since, lim)
	if err != nil {
		r.log.Error("failed to list documents", "collection", collection, "since", since, "error", err)
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]document.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows, collection)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return docs, nil
}

func scanDocument(row pgx.Row, collection record.Collection) (*document.Document, error) {
	doc := document.Document{Collection: collection}
	if err := row.Scan(&doc.ID, &doc.Fields, &doc.DeviceID, &doc.ClientRef, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return nil, err
	}
	if doc.Fields == nil {
		doc.Fields = map[string]any{}
	}
	return &doc, nil
}
