package record

import (
	"fmt"

	"github.com/danielgtaylor/huma/v2"
)

// Collection имя синхронизируемой коллекции
type Collection string

const (
	Users        Collection = "users"
	Appointments Collection = "appointments"
)

// Collections возвращает коллекции в порядке синхронизации
func Collections() []Collection {
	return []Collection{Users, Appointments}
}

func (Collection) Schema(huma.Registry) *huma.Schema {
	return &huma.Schema{
		Type: "string",
		Enum: []any{
			string(Users),
			string(Appointments),
		},
		Description: "Имя коллекции",
		Examples:    []any{Users},
	}
}

// Validate реализует интерфейс huma.Validatable.
func (c Collection) Validate() error {
	switch c {
	case Users, Appointments:
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownCollection, string(c))
}

// String возвращает строковое представление коллекции.
func (c Collection) String() string {
	return string(c)
}

// DisplayName возвращает человекочитаемое название коллекции.
func (c Collection) DisplayName() string {
	switch c {
	case Users:
		return "Клиенты"
	case Appointments:
		return "Записи на прием"
	default:
		return string(c)
	}
}
