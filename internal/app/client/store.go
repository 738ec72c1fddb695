package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"lunasync/internal/domain/record"
)

const deviceIDPrefix = "device_"

// LocalStore типизированный доступ к локальному хранилищу. Все
// чтения-изменения-записи коллекций идут под одним мьютексом, поэтому
// локальные правки и шаги синхронизации не перетирают друг друга.
type LocalStore struct {
	storage Storage
	mu      sync.Mutex
}

func NewLocalStore(storage Storage) *LocalStore {
	return &LocalStore{storage: storage}
}

func (l *LocalStore) Users(ctx context.Context) ([]record.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return readCollection[record.User](ctx, l.storage, record.Users)
}

func (l *LocalStore) SaveUsers(ctx context.Context, users []record.User) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return writeCollection(ctx, l.storage, record.Users, users)
}

func (l *LocalStore) Appointments(ctx context.Context) ([]record.Appointment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return readCollection[record.Appointment](ctx, l.storage, record.Appointments)
}

func (l *LocalStore) SaveAppointments(ctx context.Context, appointments []record.Appointment) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return writeCollection(ctx, l.storage, record.Appointments, appointments)
}

// DeviceID возвращает идентификатор устройства, создавая его при первом обращении
func (l *LocalStore) DeviceID(ctx context.Context) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id, ok, err := l.storage.ReadScalar(ctx, keyDeviceID)
	if err != nil {
		return "", storageErr("read", keyDeviceID, err)
	}
	if ok && id != "" {
		return id, nil
	}

	id = deviceIDPrefix + uuid.NewString()
	if err := l.storage.WriteScalar(ctx, keyDeviceID, id); err != nil {
		return "", storageErr("write", keyDeviceID, err)
	}

	return id, nil
}

// LastSyncAt время последней успешной синхронизации в миллисекундах, 0 если ее не было
func (l *LocalStore) LastSyncAt(ctx context.Context) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, ok, err := l.storage.ReadScalar(ctx, keyLastSyncAt)
	if err != nil {
		return 0, storageErr("read", keyLastSyncAt, err)
	}
	if !ok || raw == "" {
		return 0, nil
	}

	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, storageErr("read", keyLastSyncAt, fmt.Errorf("некорректное значение %q: %w", raw, err))
	}

	return ts, nil
}

// SetLastSyncAt сохраняет время синхронизации. Значение не уменьшается.
func (l *LocalStore) SetLastSyncAt(ctx context.Context, ts int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, ok, err := l.storage.ReadScalar(ctx, keyLastSyncAt)
	if err != nil {
		return storageErr("read", keyLastSyncAt, err)
	}
	if ok {
		if current, err := strconv.ParseInt(raw, 10, 64); err == nil && current > ts {
			ts = current
		}
	}

	return storageErr("write", keyLastSyncAt, l.storage.WriteScalar(ctx, keyLastSyncAt, strconv.FormatInt(ts, 10)))
}

func loadCollection[T any, P record.Entity[T]](ctx context.Context, l *LocalStore, name record.Collection) ([]T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return readCollection[T, P](ctx, l.storage, name)
}

// pendingCount число записей коллекции, которые уйдут в следующем цикле
func pendingCount[T any, P record.Entity[T]](ctx context.Context, l *LocalStore, name record.Collection, since int64) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if counter, ok := l.storage.(pendingCounter); ok {
		n, err := counter.CountPending(ctx, name, since)
		return n, storageErr("count", string(name), err)
	}

	items, err := readCollection[T, P](ctx, l.storage, name)
	if err != nil {
		return 0, err
	}
	return len(record.LocalChanges[T, P](items, since)), nil
}

// loadForPush читает коллекцию и выдает временные идентификаторы записям
// без id, чтобы подтверждения сервера можно было сопоставить с записями.
func loadForPush[T any, P record.Entity[T]](ctx context.Context, l *LocalStore, name record.Collection) ([]T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	items, err := readCollection[T, P](ctx, l.storage, name)
	if err != nil {
		return nil, err
	}

	missing := false
	for i := range items {
		if h := P(&items[i]).Meta(); h.ID == "" {
			h.ID = record.NewPlaceholderID()
			missing = true
		}
	}
	if missing {
		if err := writeCollection[T, P](ctx, l.storage, name, items); err != nil {
			return nil, err
		}
	}

	return items, nil
}

// updateCollection читает коллекцию, применяет fn и записывает результат,
// удерживая мьютекс хранилища. Если fn вернула ошибку, ничего не пишется.
func updateCollection[T any, P record.Entity[T]](
	ctx context.Context, l *LocalStore, name record.Collection, fn func([]T) ([]T, error),
) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	items, err := readCollection[T, P](ctx, l.storage, name)
	if err != nil {
		return err
	}

	updated, err := fn(items)
	if err != nil {
		return err
	}

	return writeCollection[T, P](ctx, l.storage, name, updated)
}

func readCollection[T any, P record.Entity[T]](ctx context.Context, storage Storage, name record.Collection) ([]T, error) {
	docs, err := storage.ReadCollection(ctx, name)
	if err != nil {
		return nil, storageErr("read", string(name), err)
	}

	items := make([]T, 0, len(docs))
	for i, doc := range docs {
		var item T
		if err := json.Unmarshal(doc, &item); err != nil {
			return nil, storageErr("read", string(name), fmt.Errorf("запись %d повреждена: %w", i, err))
		}
		items = append(items, item)
	}

	return items, nil
}

func writeCollection[T any, P record.Entity[T]](ctx context.Context, storage Storage, name record.Collection, items []T) error {
	docs := make([]json.RawMessage, 0, len(items))
	for i := range items {
		doc, err := json.Marshal(P(&items[i]))
		if err != nil {
			return storageErr("write", string(name), fmt.Errorf("ошибка сериализации записи: %w", err))
		}
		docs = append(docs, doc)
	}

	return storageErr("write", string(name), storage.WriteCollection(ctx, name, docs))
}
