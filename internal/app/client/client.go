package client

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	gosync "sync"
	"syscall"
	"time"

	"golang.org/x/exp/slog"

	"lunasync/internal/app/client/config"
	"lunasync/internal/domain/record"
)

type App struct {
	config      *config.Config
	log         *slog.Logger
	storage     Storage
	store       *LocalStore
	transport   Transport
	prober      *Prober
	notifier    Notifier
	syncService *SyncService
	clock       func() time.Time
	wg          gosync.WaitGroup
	cancel      context.CancelFunc
	mu          gosync.Mutex
}

func New(cfg *config.Config, log *slog.Logger, notifier Notifier) (*App, error) {
	transport, err := NewHTTPTransport(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации HTTP клиента: %w", err)
	}

	// Инициализируем локальное хранилище (используем SQLite)
	var storage Storage
	sqliteStorage, err := NewSQLiteStorage(cfg.DataPath)
	if err != nil {
		log.Warn("Не удалось инициализировать SQLite, используем память", "error", err)
		storage = NewMemoryStorage()
	} else {
		storage = sqliteStorage
	}

	return newApp(cfg, log, storage, transport, notifier), nil
}

func newApp(cfg *config.Config, log *slog.Logger, storage Storage, transport Transport, notifier Notifier) *App {
	if notifier == nil {
		notifier = NopNotifier{}
	}

	store := NewLocalStore(storage)
	prober := NewProber(transport, cfg.Probe.Interval, cfg.Probe.Timeout, log)

	return &App{
		config:      cfg,
		log:         log,
		storage:     storage,
		store:       store,
		transport:   transport,
		prober:      prober,
		notifier:    notifier,
		syncService: NewSyncService(store, transport, prober, notifier, log, cfg.Sync.PullOverlap),
		clock:       time.Now,
	}
}

// Run запускает фоновую синхронизацию и блокируется до сигнала завершения
// или отмены контекста.
func (a *App) Run(ctx context.Context) error {
	a.mu.Lock()
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.mu.Unlock()
	defer cancel()

	go a.handleSignals(ctx)

	deviceID, err := a.store.DeviceID(ctx)
	if err != nil {
		return err
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.prober.Run(ctx)
	}()

	scheduler := NewScheduler(a.syncService, a.prober, a.notifier, a.log, SchedulerConfig{
		StartupDelay:    a.config.Sync.StartupDelay,
		ReconnectDelay:  a.config.Sync.ReconnectDelay,
		Interval:        a.config.Sync.Interval,
		ShutdownTimeout: a.config.Sync.ShutdownTimeout,
		CycleTimeout:    a.config.Sync.CycleTimeout,
	})

	a.log.Info("Клиент запущен",
		"server", a.config.ServerAddress,
		"env", a.config.Env,
		"device_id", deviceID,
	)

	scheduler.Run(ctx)
	a.wg.Wait()

	a.log.Info("Клиент завершил работу")
	return nil
}

func (a *App) handleSignals(ctx context.Context) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		a.log.Info("Получен сигнал завершения", "signal", sig.String())
		a.Shutdown()
	case <-ctx.Done():
	}
}

// Shutdown останавливает фоновую синхронизацию
func (a *App) Shutdown() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		a.log.Info("Завершение работы клиента...")
		a.cancel()
	}
}

// Close закрывает локальное хранилище
func (a *App) Close() error {
	return a.storage.Close()
}

// Sync запускает синхронизацию по запросу пользователя
func (a *App) Sync(ctx context.Context) (*SyncResult, error) {
	a.prober.Check(ctx)
	return a.syncService.ManualSync(ctx)
}

// QuickSync отправляет локальные изменения без получения серверных
func (a *App) QuickSync(ctx context.Context) bool {
	a.prober.Check(ctx)
	return a.syncService.QuickSync(ctx)
}

// SyncStatus собирает состояние синхронизации устройства
func (a *App) SyncStatus(ctx context.Context) (*SyncStatus, error) {
	deviceID, err := a.store.DeviceID(ctx)
	if err != nil {
		return nil, err
	}
	lastSync, err := a.syncService.LastSyncAt(ctx)
	if err != nil {
		return nil, err
	}
	since, err := a.store.LastSyncAt(ctx)
	if err != nil {
		return nil, err
	}

	pendingUsers, err := pendingCount[record.User](ctx, a.store, record.Users, since)
	if err != nil {
		return nil, err
	}
	pendingAppointments, err := pendingCount[record.Appointment](ctx, a.store, record.Appointments, since)
	if err != nil {
		return nil, err
	}

	return &SyncStatus{
		DeviceID:   deviceID,
		LastSyncAt: lastSync,
		Online:     a.prober.Check(ctx),
		Syncing:    a.syncService.IsSyncing(),
		Pending: map[record.Collection]int{
			record.Users:        pendingUsers,
			record.Appointments: pendingAppointments,
		},
		Stats: a.syncService.Stats(),
	}, nil
}

// ==================== Record Operations ====================

// AddUser сохраняет нового клиента локально с временным идентификатором
func (a *App) AddUser(ctx context.Context, u record.User) (record.User, error) {
	return addRecord(ctx, a, record.Users, u)
}

// UpdateUser изменяет клиента локально; изменения уйдут в следующем цикле
func (a *App) UpdateUser(ctx context.Context, id string, apply func(*record.User)) (record.User, error) {
	return updateRecord(ctx, a, record.Users, id, apply)
}

// ListUsers возвращает локальных клиентов
func (a *App) ListUsers(ctx context.Context) ([]record.User, error) {
	return a.store.Users(ctx)
}

// AddAppointment сохраняет новую запись на прием
func (a *App) AddAppointment(ctx context.Context, apt record.Appointment) (record.Appointment, error) {
	if apt.Status == "" {
		apt.Status = record.StatusScheduled
	}
	return addRecord(ctx, a, record.Appointments, apt)
}

// UpdateAppointment изменяет запись на прием
func (a *App) UpdateAppointment(
	ctx context.Context, id string, apply func(*record.Appointment),
) (record.Appointment, error) {
	return updateRecord(ctx, a, record.Appointments, id, apply)
}

// ListAppointments возвращает локальные записи на прием
func (a *App) ListAppointments(ctx context.Context) ([]record.Appointment, error) {
	return a.store.Appointments(ctx)
}

func addRecord[T any, P record.Entity[T]](ctx context.Context, a *App, name record.Collection, item T) (T, error) {
	var zero T

	if err := P(&item).Validate(); err != nil {
		return zero, err
	}

	deviceID, err := a.store.DeviceID(ctx)
	if err != nil {
		return zero, err
	}

	h := P(&item).Meta()
	now := a.clock().UnixMilli()
	*h = record.Header{
		ID:        record.NewPlaceholderID(),
		CreatedAt: now,
		DeviceID:  deviceID,
	}
	h.Touch(now)

	err = updateCollection[T, P](ctx, a.store, name, func(items []T) ([]T, error) {
		return append(items, item), nil
	})
	if err != nil {
		return zero, err
	}

	a.log.Debug("Запись сохранена локально", "collection", name, "id", h.ID)
	return item, nil
}

func updateRecord[T any, P record.Entity[T]](
	ctx context.Context, a *App, name record.Collection, id string, apply func(*T),
) (T, error) {
	var updated T

	err := updateCollection[T, P](ctx, a.store, name, func(items []T) ([]T, error) {
		for i := range items {
			p := P(&items[i])
			if p.Meta().ID != id {
				continue
			}

			candidate := items[i]
			apply(&candidate)
			cp := P(&candidate)
			// заголовок меняет только хранилище
			*cp.Meta() = *p.Meta()
			if err := cp.Validate(); err != nil {
				return nil, err
			}
			cp.Meta().Touch(a.clock().UnixMilli())

			items[i] = candidate
			updated = candidate
			return items, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	})

	return updated, err
}
