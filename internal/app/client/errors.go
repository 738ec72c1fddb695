package client

import (
	"errors"
	"fmt"

	"lunasync/internal/domain/record"
)

var (
	// ErrAlreadyInProgress цикл синхронизации уже выполняется
	ErrAlreadyInProgress = errors.New("синхронизация уже выполняется")
	// ErrNoConnectivity сервер недоступен, цикл не запускался
	ErrNoConnectivity = errors.New("нет соединения с сервером")
	// ErrRecordNotFound локальная запись не найдена
	ErrRecordNotFound = errors.New("запись не найдена")
)

// Операции удаленного хранилища
const (
	OpCreate = "create"
	OpUpsert = "upsert"
	OpPull   = "pull"
	OpHealth = "health"
)

// RemoteError ошибка обращения к серверу: сеть, отказ в записи или
// недоступность сервиса. Status равен 0, если ответа не было.
type RemoteError struct {
	Collection record.Collection
	Op         string
	RecordID   string
	Status     int
	Err        error
}

func (e *RemoteError) Error() string {
	msg := fmt.Sprintf("ошибка сервера (%s", e.Op)
	if e.Collection != "" {
		msg += " " + string(e.Collection)
	}
	if e.RecordID != "" {
		msg += " " + e.RecordID
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(", статус %d", e.Status)
	}
	return msg + "): " + e.Err.Error()
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Temporary сообщает, имеет ли смысл повторить запрос в следующем цикле
func (e *RemoteError) Temporary() bool {
	return e.Status == 0 || e.Status >= 500
}

// isTemporary сообщает, что цикл сорвался из-за временной недоступности сервера
func isTemporary(err error) bool {
	var remoteErr *RemoteError
	return errors.As(err, &remoteErr) && remoteErr.Temporary()
}

// LocalStorageError ошибка чтения или записи локального хранилища
type LocalStorageError struct {
	Op  string
	Key string
	Err error
}

func (e *LocalStorageError) Error() string {
	return fmt.Sprintf("ошибка локального хранилища (%s %s): %v", e.Op, e.Key, e.Err)
}

func (e *LocalStorageError) Unwrap() error {
	return e.Err
}

func storageErr(op, key string, err error) error {
	if err == nil {
		return nil
	}
	var lse *LocalStorageError
	if errors.As(err, &lse) {
		return err
	}
	return &LocalStorageError{Op: op, Key: key, Err: err}
}
