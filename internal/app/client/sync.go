package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"lunasync/internal/domain/record"
)

// SyncService управляет синхронизацией локальных коллекций с сервером.
//
// Цикл: проверка соединения, отправка локальных изменений (сначала users,
// затем appointments, по одной записи), получение изменений с сервера,
// слияние с локальными коллекциями и фиксация lastSyncAt. Одновременно
// выполняется не больше одного цикла.
type SyncService struct {
	store       *LocalStore
	transport   Transport
	conn        Connectivity
	notifier    Notifier
	log         *slog.Logger
	pullOverlap time.Duration
	clock       func() time.Time

	mu        sync.RWMutex
	isSyncing bool
	stats     SyncStats
}

// NewSyncService создает новый сервис синхронизации. pullOverlap расширяет
// окно получения изменений назад от lastSyncAt.
func NewSyncService(
	store *LocalStore,
	transport Transport,
	conn Connectivity,
	notifier Notifier,
	log *slog.Logger,
	pullOverlap time.Duration,
) *SyncService {
	if notifier == nil {
		notifier = NopNotifier{}
	}

	return &SyncService{
		store:       store,
		transport:   transport,
		conn:        conn,
		notifier:    notifier,
		log:         log.With(slog.String("component", "sync")),
		pullOverlap: pullOverlap,
		clock:       time.Now,
	}
}

// pushAck подтверждение сервера для отправленной записи
type pushAck struct {
	localID  string
	pushedAt int64
	remote   RemoteRecord
}

// Sync выполняет полный цикл синхронизации
func (s *SyncService) Sync(ctx context.Context) (*SyncResult, error) {
	return s.cycle(ctx, nil)
}

// AutoSync цикл, запускаемый планировщиком: без уведомлений, только лог
func (s *SyncService) AutoSync(ctx context.Context) (*SyncResult, error) {
	result, err := s.Sync(ctx)

	switch {
	case err == nil:
		s.log.Info("Синхронизация успешно завершена",
			"duration", result.Duration,
			"uploaded", result.Uploaded,
			"downloaded", result.Downloaded,
		)
	case errors.Is(err, ErrAlreadyInProgress), errors.Is(err, ErrNoConnectivity):
		s.log.Debug("Синхронизация пропущена", "reason", err)
	case isTemporary(err):
		s.log.Info("Синхронизация отложена до следующего цикла", "error", err)
	default:
		s.log.Warn("Ошибка автоматической синхронизации", "error", err)
	}

	return result, err
}

// ManualSync цикл по запросу пользователя с уведомлениями о начале и итоге
func (s *SyncService) ManualSync(ctx context.Context) (*SyncResult, error) {
	result, err := s.cycle(ctx, func() {
		s.notifier.Notify("Синхронизация...", SeverityInfo)
	})
	if err != nil {
		severity := SeverityError
		if errors.Is(err, ErrAlreadyInProgress) {
			severity = SeverityInfo
		}
		s.notifier.Notify(describeSyncError(err), severity)
		s.log.Warn("Ошибка синхронизации", "error", err)
		return result, err
	}

	msg := fmt.Sprintf("Синхронизировано: отправлено %d, получено %d", result.Uploaded, result.Downloaded)
	if result.Skipped > 0 {
		msg += fmt.Sprintf(", пропущено некорректных %d", result.Skipped)
	}
	s.notifier.Notify(msg, SeveritySuccess)
	return result, nil
}

// QuickSync только отправляет локальные изменения, без получения и слияния.
// Используется перед завершением процесса; ошибки не сообщаются, lastSyncAt
// не меняется.
func (s *SyncService) QuickSync(ctx context.Context) bool {
	if !s.begin() {
		return false
	}
	defer s.end()

	if !s.conn.Online() {
		return false
	}

	deviceID, err := s.store.DeviceID(ctx)
	if err != nil {
		s.log.Debug("Быстрая синхронизация прервана", "error", err)
		return false
	}
	since, err := s.store.LastSyncAt(ctx)
	if err != nil {
		s.log.Debug("Быстрая синхронизация прервана", "error", err)
		return false
	}

	uploaded, _, err := s.pushAll(ctx, deviceID, since)
	if err != nil {
		s.log.Debug("Быстрая синхронизация прервана", "error", err, "uploaded", uploaded)
		return false
	}

	s.log.Debug("Быстрая синхронизация завершена", "uploaded", uploaded)
	return true
}

func (s *SyncService) cycle(ctx context.Context, onStart func()) (*SyncResult, error) {
	if !s.begin() {
		return nil, ErrAlreadyInProgress
	}
	defer s.end()

	// Проверяем соединение до любых изменений
	if !s.conn.Online() {
		return nil, ErrNoConnectivity
	}

	if onStart != nil {
		onStart()
	}

	result := &SyncResult{StartedAt: s.clock()}
	s.log.Debug("Начало синхронизации", "start_time", result.StartedAt)

	err := s.run(ctx, result)
	if result.FinishedAt.IsZero() {
		result.FinishedAt = s.clock()
	}
	result.Duration = result.FinishedAt.Sub(result.StartedAt)

	s.updateStats(result, err)

	return result, err
}

func (s *SyncService) run(ctx context.Context, result *SyncResult) error {
	deviceID, err := s.store.DeviceID(ctx)
	if err != nil {
		return err
	}
	since, err := s.store.LastSyncAt(ctx)
	if err != nil {
		return err
	}

	// 1. Отправляем локальные изменения
	uploaded, newest, err := s.pushAll(ctx, deviceID, since)
	result.Uploaded = uploaded
	if err != nil {
		return err
	}

	// 2. Получаем изменения с сервера по обеим коллекциям
	pullSince := since - s.pullOverlap.Milliseconds()
	if pullSince < 0 {
		pullSince = 0
	}

	var mark syncMark
	users, err := pullCollection[record.User](ctx, s, record.Users, pullSince, &mark)
	if err != nil {
		return err
	}
	appointments, err := pullCollection[record.Appointment](ctx, s, record.Appointments, pullSince, &mark)
	if err != nil {
		return err
	}
	result.Downloaded = len(users) + len(appointments)
	result.Skipped = mark.skipped
	newest = max(newest, newestOf[record.User](users), newestOf[record.Appointment](appointments))

	// 3. Сливаем с полными локальными коллекциями
	if err := mergeCollection(ctx, s, record.Users, users); err != nil {
		return err
	}
	if err := mergeCollection(ctx, s, record.Appointments, appointments); err != nil {
		return err
	}

	// 4. Фиксируем прогресс по часам сервера. Часы клиента используются,
	// только если сервер не сообщил свое время.
	completed := s.clock()
	result.FinishedAt = completed

	return s.store.SetLastSyncAt(ctx, mark.value(max(completed.UnixMilli(), newest)))
}

// syncMark граница, до которой изменения сервера гарантированно получены
// в текущем цикле
type syncMark struct {
	serverTime   int64
	noClock      bool
	skipped      int
	firstSkipped int64
}

// page учитывает время сервера очередной страницы. Берется минимум: запись,
// попавшая на сервер между чтениями коллекций, позже этой границы.
func (m *syncMark) page(serverTime int64) {
	if serverTime <= 0 {
		m.noClock = true
		return
	}
	if m.serverTime == 0 || serverTime < m.serverTime {
		m.serverTime = serverTime
	}
}

// skip запоминает пропущенный документ, чтобы следующий цикл запросил его снова
func (m *syncMark) skip(updatedAt int64) {
	if m.skipped == 0 || updatedAt < m.firstSkipped {
		m.firstSkipped = updatedAt
	}
	m.skipped++
}

func (m *syncMark) value(fallback int64) int64 {
	ts := fallback
	if !m.noClock && m.serverTime > 0 {
		ts = m.serverTime
	}
	if m.skipped > 0 {
		ts = min(ts, m.firstSkipped-1)
	}
	return ts
}

// pushAll отправляет изменения users, затем appointments
func (s *SyncService) pushAll(ctx context.Context, deviceID string, since int64) (int, int64, error) {
	uploaded, newest, err := pushCollection[record.User](ctx, s, record.Users, deviceID, since)
	if err != nil {
		return uploaded, newest, err
	}

	n, newestAppointment, err := pushCollection[record.Appointment](ctx, s, record.Appointments, deviceID, since)
	return uploaded + n, max(newest, newestAppointment), err
}

// pushCollection отправляет измененные записи по порядку. Принятые сервером
// записи получают серверный id и метки времени и сохраняются, даже если
// отправка следующей записи не удалась.
func pushCollection[T any, P record.Entity[T]](
	ctx context.Context, s *SyncService, name record.Collection, deviceID string, since int64,
) (int, int64, error) {
	items, err := loadForPush[T, P](ctx, s.store, name)
	if err != nil {
		return 0, 0, err
	}

	changes := record.LocalChanges[T, P](items, since)
	if len(changes) == 0 {
		return 0, 0, nil
	}

	s.log.Debug("Найдены локальные изменения", "collection", name, "count", len(changes))

	acks := make([]pushAck, 0, len(changes))
	var pushErr error
	for i := range changes {
		h := P(&changes[i]).Meta()

		fields, err := record.ToFields[T, P](&changes[i])
		if err != nil {
			pushErr = &LocalStorageError{Op: "encode", Key: h.ID, Err: err}
			break
		}

		doc := PushDoc{Fields: fields, DeviceID: deviceID}
		if h.HasRemoteID() {
			doc.ID = h.ID
		} else {
			doc.ClientRef = h.ID
		}

		remote, err := s.transport.Push(ctx, name, doc)
		if err != nil {
			pushErr = err
			break
		}

		acks = append(acks, pushAck{localID: h.ID, pushedAt: h.UpdatedAt, remote: remote})
	}

	var newest int64
	for _, ack := range acks {
		newest = max(newest, ack.remote.UpdatedAt)
	}

	if len(acks) > 0 {
		err := updateCollection[T, P](ctx, s.store, name, func(current []T) ([]T, error) {
			applyAcks[T, P](current, acks, deviceID)
			return current, nil
		})
		if err != nil {
			return len(acks), newest, err
		}
	}

	return len(acks), newest, pushErr
}

// applyAcks переносит серверные id и метки на локальные записи. Если запись
// изменили локально во время отправки, она остается несинхронизированной.
func applyAcks[T any, P record.Entity[T]](items []T, acks []pushAck, deviceID string) {
	byID := make(map[string]pushAck, len(acks))
	for _, ack := range acks {
		byID[ack.localID] = ack
	}

	for i := range items {
		h := P(&items[i]).Meta()
		ack, ok := byID[h.ID]
		if !ok {
			continue
		}

		h.ID = ack.remote.ID
		h.DeviceID = deviceID
		if ack.remote.CreatedAt != 0 {
			h.CreatedAt = ack.remote.CreatedAt
		}
		if h.UpdatedAt != ack.pushedAt {
			continue
		}
		if ack.remote.UpdatedAt != 0 {
			h.UpdatedAt = ack.remote.UpdatedAt
		}
		h.Synced = true
	}
}

// pullCollection получает изменения коллекции и превращает их в записи.
// Документы, не подходящие под схему, пропускаются и отмечаются в mark.
func pullCollection[T any, P record.Entity[T]](
	ctx context.Context, s *SyncService, name record.Collection, since int64, mark *syncMark,
) ([]T, error) {
	page, err := s.transport.Pull(ctx, name, since)
	if err != nil {
		return nil, err
	}
	mark.page(page.ServerTime)

	items := make([]T, 0, len(page.Records))
	for _, doc := range page.Records {
		item, err := record.FromFields[T, P](doc.Fields)
		if err != nil {
			s.log.Warn("Пропущен некорректный документ", "collection", name, "id", doc.ID, "error", err)
			mark.skip(doc.UpdatedAt)
			continue
		}

		h := P(&item).Meta()
		h.ID = doc.ID
		h.CreatedAt = doc.CreatedAt
		h.UpdatedAt = doc.UpdatedAt
		h.DeviceID = doc.DeviceID
		h.Synced = true

		items = append(items, item)
	}

	return items, nil
}

func mergeCollection[T any, P record.Entity[T]](ctx context.Context, s *SyncService, name record.Collection, pulled []T) error {
	if len(pulled) == 0 {
		return nil
	}

	return updateCollection[T, P](ctx, s.store, name, func(local []T) ([]T, error) {
		return record.Merge[T, P](local, pulled), nil
	})
}

func newestOf[T any, P record.Entity[T]](items []T) int64 {
	var newest int64
	for i := range items {
		newest = max(newest, P(&items[i]).Meta().UpdatedAt)
	}
	return newest
}

func (s *SyncService) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isSyncing {
		return false
	}
	s.isSyncing = true
	return true
}

func (s *SyncService) end() {
	s.mu.Lock()
	s.isSyncing = false
	s.mu.Unlock()
}

// updateStats обновляет статистику синхронизации
func (s *SyncService) updateStats(result *SyncResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.TotalSyncs++
	if err != nil {
		s.stats.TotalErrors++
		s.stats.LastFailed = result.FinishedAt
		s.stats.LastError = err.Error()
		return
	}

	s.stats.TotalUploaded += result.Uploaded
	s.stats.TotalDownloaded += result.Downloaded
	s.stats.LastSuccessful = result.FinishedAt

	successful := float64(s.stats.TotalSyncs - s.stats.TotalErrors)
	s.stats.AvgSyncDuration += (result.Duration.Seconds() - s.stats.AvgSyncDuration) / successful
}

// Stats возвращает копию статистики синхронизации
func (s *SyncService) Stats() SyncStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// IsSyncing проверяет, выполняется ли синхронизация
func (s *SyncService) IsSyncing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isSyncing
}

// LastSyncAt возвращает время последней успешной синхронизации
func (s *SyncService) LastSyncAt(ctx context.Context) (time.Time, error) {
	ts, err := s.store.LastSyncAt(ctx)
	if err != nil || ts == 0 {
		return time.Time{}, err
	}
	return time.UnixMilli(ts), nil
}

func describeSyncError(err error) string {
	var remoteErr *RemoteError
	var localErr *LocalStorageError

	switch {
	case errors.Is(err, ErrAlreadyInProgress):
		return "Синхронизация уже выполняется"
	case errors.Is(err, ErrNoConnectivity):
		return "Нет соединения с сервером, работаем локально"
	case errors.As(err, &remoteErr):
		return fmt.Sprintf("Ошибка синхронизации %s (%s): %v", remoteErr.Collection, remoteErr.Op, remoteErr.Err)
	case errors.As(err, &localErr):
		return fmt.Sprintf("Ошибка локального хранилища: %v", localErr.Err)
	default:
		return fmt.Sprintf("Ошибка синхронизации: %v", err)
	}
}
