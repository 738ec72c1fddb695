package record

// LocalChanges возвращает записи, которые нужно отправить на сервер:
// несинхронизированные или измененные после since. Порядок сохраняется.
func LocalChanges[T any, P Entity[T]](items []T, since int64) []T {
	changes := make([]T, 0)
	for i := range items {
		if P(&items[i]).Meta().ChangedSince(since) {
			changes = append(changes, items[i])
		}
	}
	return changes
}

// Merge объединяет локальную и серверную коллекции по идентификатору.
//
// Локальная коллекция берется за основу с сохранением порядка. Серверная
// запись добавляется, если локальной с таким id нет, и заменяет локальную
// только при строго большем updatedAt; при равенстве остается локальная
// версия, поэтому повторное слияние с теми же данными ничего не меняет.
// Записи с временным id хранятся как есть: сервер о них еще не знает.
func Merge[T any, P Entity[T]](local, remote []T) []T {
	merged := make([]T, 0, len(local)+len(remote))
	index := make(map[string]int, len(local)+len(remote))

	put := func(item T) {
		id := P(&item).Meta().ID
		if IsPlaceholder(id) {
			merged = append(merged, item)
			return
		}

		i, exists := index[id]
		if !exists {
			index[id] = len(merged)
			merged = append(merged, item)
			return
		}

		if Newer(P(&item).Meta(), P(&merged[i]).Meta()) {
			merged[i] = item
		}
	}

	for _, item := range local {
		put(item)
	}
	for _, item := range remote {
		put(item)
	}

	return merged
}

// Newer реализует last-writer-wins: candidate побеждает только со строго
// большей меткой времени.
func Newer(candidate, current *Header) bool {
	return candidate.UpdatedAt > current.UpdatedAt
}
