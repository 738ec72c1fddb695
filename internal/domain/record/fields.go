package record

import (
	"encoding/json"
	"fmt"
)

// служебные поля, которые не уходят на сервер как данные документа
var headerFields = []string{"id", "createdAt", "updatedAt", "synced", "deviceId", "extra"}

// ToFields превращает запись в набор полей документа для отправки на сервер.
// Неизвестные поля из Extra разворачиваются на верхний уровень.
func ToFields[T any, P Entity[T]](item *T) (map[string]any, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}

	fields := make(map[string]any)
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal record fields: %w", err)
	}

	for _, key := range headerFields {
		delete(fields, key)
	}

	for key, value := range *P(item).extraFields() {
		if _, known := fields[key]; known || isHeaderField(key) {
			continue
		}
		fields[key] = value
	}

	return fields, nil
}

// FromFields собирает запись из полей документа сервера. Поля, которых нет
// в схеме коллекции, попадают в Extra.
func FromFields[T any, P Entity[T]](fields map[string]any) (T, error) {
	var item T

	data, err := json.Marshal(fields)
	if err != nil {
		return item, fmt.Errorf("marshal document fields: %w", err)
	}
	if err := json.Unmarshal(data, &item); err != nil {
		return item, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	p := P(&item)
	*p.Meta() = Header{}

	known := make(map[string]struct{}, len(p.fieldSet()))
	for _, key := range p.fieldSet() {
		known[key] = struct{}{}
	}

	var extra map[string]any
	for key, value := range fields {
		if _, ok := known[key]; ok || isHeaderField(key) {
			continue
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[key] = value
	}
	*p.extraFields() = extra

	return item, nil
}

func isHeaderField(key string) bool {
	for _, f := range headerFields {
		if f == key {
			return true
		}
	}
	return false
}
