package record

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// PlaceholderPrefix префикс временного локального идентификатора
const PlaceholderPrefix = "local_"

// Header общие поля любой записи коллекции
type Header struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"createdAt,omitempty"`
	UpdatedAt int64  `json:"updatedAt"`
	Synced    bool   `json:"synced"`
	DeviceID  string `json:"deviceId,omitempty"`
}

// Meta возвращает заголовок записи
func (h *Header) Meta() *Header {
	return h
}

// ChangedSince сообщает, нужно ли отправлять запись на сервер
func (h *Header) ChangedSince(since int64) bool {
	return !h.Synced || h.UpdatedAt > since
}

// Touch помечает запись как измененную локально
func (h *Header) Touch(now int64) {
	h.UpdatedAt = now
	h.Synced = false
}

// HasRemoteID сообщает, выдан ли записи идентификатор сервером
func (h *Header) HasRemoteID() bool {
	return !IsPlaceholder(h.ID)
}

// NewPlaceholderID создает временный идентификатор для новой локальной записи
func NewPlaceholderID() string {
	return PlaceholderPrefix + uuid.NewString()
}

// IsPlaceholder проверяет, является ли идентификатор временным
func IsPlaceholder(id string) bool {
	return id == "" || strings.HasPrefix(id, PlaceholderPrefix)
}

// User клиент салона
type User struct {
	Header
	Name  string         `json:"name"`
	Email string         `json:"email"`
	Phone string         `json:"phone"`
	Notes string         `json:"notes"`
	Extra map[string]any `json:"extra,omitempty"`
}

var userFields = []string{"name", "email", "phone", "notes"}

func (u *User) fieldSet() []string { return userFields }
func (u *User) extraFields() *map[string]any { return &u.Extra }

// Validate проверяет обязательные поля клиента
func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("%w: user name is required", ErrInvalidRecord)
	}
	return nil
}

// AppointmentStatus статус записи на прием
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusDone      AppointmentStatus = "done"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Appointment запись клиента на прием
type Appointment struct {
	Header
	UserID          string            `json:"userId"`
	Title           string            `json:"title"`
	StartsAt        int64             `json:"startsAt"`
	DurationMinutes int               `json:"durationMinutes"`
	Status          AppointmentStatus `json:"status"`
	Notes           string            `json:"notes"`
	Extra           map[string]any    `json:"extra,omitempty"`
}

var appointmentFields = []string{"userId", "title", "startsAt", "durationMinutes", "status", "notes"}

func (a *Appointment) fieldSet() []string { return appointmentFields }
func (a *Appointment) extraFields() *map[string]any { return &a.Extra }

// Validate проверяет обязательные поля записи на прием
func (a *Appointment) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("%w: appointment title is required", ErrInvalidRecord)
	}
	if a.StartsAt <= 0 {
		return fmt.Errorf("%w: appointment start time is required", ErrInvalidRecord)
	}
	if a.DurationMinutes < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalidRecord)
	}
	switch a.Status {
	case "", StatusScheduled, StatusDone, StatusCancelled:
		return nil
	}
	return fmt.Errorf("%w: unknown status %q", ErrInvalidRecord, a.Status)
}

// Entity ограничение для типов записей, которые умеет синхронизировать движок
type Entity[T any] interface {
	*T
	Meta() *Header
	Validate() error
	fieldSet() []string
	extraFields() *map[string]any
}
