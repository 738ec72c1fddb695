package client

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"lunasync/internal/domain/record"
)

type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("ошибка создания директории данных: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы данных: %w", err)
	}
	// одно соединение: запись коллекции и чтение идут последовательно
	db.SetMaxOpenConns(1)

	storage := &SQLiteStorage{db: db}

	// Создаем таблицы
	if err := storage.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка инициализации таблиц: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) initTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			collection TEXT NOT NULL,
			position INTEGER NOT NULL,
			id TEXT NOT NULL,
			payload TEXT NOT NULL,
			updated_at INTEGER NOT NULL DEFAULT 0,
			synced BOOLEAN NOT NULL DEFAULT 0,
			PRIMARY KEY (collection, position)
		);

		CREATE INDEX IF NOT EXISTS idx_records_id ON records(collection, id);
		CREATE INDEX IF NOT EXISTS idx_records_synced ON records(collection, synced);

		CREATE TABLE IF NOT EXISTS scalars (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)

	return err
}

func (s *SQLiteStorage) ReadCollection(ctx context.Context, name record.Collection) ([]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT payload FROM records WHERE collection = ? ORDER BY position ASC", string(name))
	if err != nil {
		return nil, storageErr("read", string(name), err)
	}
	defer rows.Close()

	docs := make([]json.RawMessage, 0)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, storageErr("read", string(name), fmt.Errorf("ошибка сканирования записи: %w", err))
		}
		docs = append(docs, json.RawMessage(payload))
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("read", string(name), err)
	}

	return docs, nil
}

// WriteCollection атомарно заменяет коллекцию в одной транзакции
func (s *SQLiteStorage) WriteCollection(ctx context.Context, name record.Collection, docs []json.RawMessage) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("write", string(name), err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM records WHERE collection = ?", string(name)); err != nil {
		return storageErr("write", string(name), err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (collection, position, id, payload, updated_at, synced)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return storageErr("write", string(name), err)
	}
	defer stmt.Close()

	for i, doc := range docs {
		var h record.Header
		if err = json.Unmarshal(doc, &h); err != nil {
			return storageErr("write", string(name), fmt.Errorf("ошибка разбора записи %d: %w", i, err))
		}
		if _, err = stmt.ExecContext(ctx, string(name), i, h.ID, string(doc), h.UpdatedAt, h.Synced); err != nil {
			return storageErr("write", string(name), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return storageErr("write", string(name), err)
	}

	return nil
}

func (s *SQLiteStorage) ReadScalar(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM scalars WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storageErr("read", key, err)
	}

	return value, true, nil
}

func (s *SQLiteStorage) WriteScalar(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scalars (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)

	return storageErr("write", key, err)
}

// CountPending возвращает число записей коллекции, которые уйдут на сервер:
// несинхронизированных или измененных после since
func (s *SQLiteStorage) CountPending(ctx context.Context, name record.Collection, since int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM records WHERE collection = ? AND (synced = 0 OR updated_at > ?)",
		string(name), since).Scan(&count)
	if err != nil {
		return 0, storageErr("count", string(name), err)
	}

	return count, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
