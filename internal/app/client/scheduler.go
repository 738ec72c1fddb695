package client

import (
	"context"
	"sync"
	"time"

	"golang.org/x/exp/slog"
)

type syncRunner interface {
	AutoSync(ctx context.Context) (*SyncResult, error)
	QuickSync(ctx context.Context) bool
	IsSyncing() bool
}

type connectivitySource interface {
	Online() bool
	Events() <-chan bool
}

// SchedulerConfig задержки и интервалы запуска синхронизации
type SchedulerConfig struct {
	StartupDelay    time.Duration
	ReconnectDelay  time.Duration
	Interval        time.Duration
	ShutdownTimeout time.Duration
	// CycleTimeout ограничивает цикл, начатый до завершения процесса
	CycleTimeout time.Duration
}

// DefaultSchedulerConfig значения по умолчанию
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		StartupDelay:    3 * time.Second,
		ReconnectDelay:  time.Second,
		Interval:        2 * time.Minute,
		ShutdownTimeout: 5 * time.Second,
		CycleTimeout:    2 * time.Minute,
	}
}

// Scheduler связывает запуск синхронизации с событиями: старт процесса,
// восстановление соединения, периодический таймер и завершение. Все
// источники пишут в одну очередь команд, которую разбирает одна горутина.
// Пересечение циклов исключает сам SyncService.
type Scheduler struct {
	runner   syncRunner
	conn     connectivitySource
	notifier Notifier
	log      *slog.Logger
	cfg      SchedulerConfig

	queue chan string
}

func NewScheduler(runner syncRunner, conn connectivitySource, notifier Notifier, log *slog.Logger, cfg SchedulerConfig) *Scheduler {
	def := DefaultSchedulerConfig()
	if cfg.StartupDelay <= 0 {
		cfg.StartupDelay = def.StartupDelay
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = def.ReconnectDelay
	}
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = def.ShutdownTimeout
	}
	if cfg.CycleTimeout <= 0 {
		cfg.CycleTimeout = def.CycleTimeout
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}

	return &Scheduler{
		runner:   runner,
		conn:     conn,
		notifier: notifier,
		log:      log.With(slog.String("component", "scheduler")),
		cfg:      cfg,
		queue:    make(chan string, 1),
	}
}

// Run работает до отмены контекста, затем выполняет одну быструю
// синхронизацию с ограничением по времени.
func (s *Scheduler) Run(ctx context.Context) {
	s.log.Info("Запуск автоматической синхронизации",
		"interval", s.cfg.Interval,
		"startup_delay", s.cfg.StartupDelay,
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.produce(ctx)
	}()

	s.consume(ctx)
	wg.Wait()

	s.shutdown()
}

// produce переводит таймеры и события соединения в команды очереди
func (s *Scheduler) produce(ctx context.Context) {
	var timers []*time.Timer
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	after := func(delay time.Duration, reason string) {
		timers = append(timers, time.AfterFunc(delay, func() {
			if ctx.Err() == nil {
				s.enqueue(reason)
			}
		}))
	}

	after(s.cfg.StartupDelay, "startup")

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	events := s.conn.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case online, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if online {
				s.notifier.Notify("Соединение восстановлено", SeverityInfo)
				after(s.cfg.ReconnectDelay, "reconnect")
			} else {
				s.notifier.Notify("Нет соединения, работаем локально", SeverityInfo)
			}
		case <-ticker.C:
			if s.conn.Online() && !s.runner.IsSyncing() {
				s.enqueue("interval")
			}
		}
	}
}

// enqueue не блокирует: если команда уже ждет в очереди, новая с ней сливается
func (s *Scheduler) enqueue(reason string) {
	select {
	case s.queue <- reason:
	default:
		s.log.Debug("Синхронизация уже запланирована", "reason", reason)
	}
}

func (s *Scheduler) consume(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case reason := <-s.queue:
			s.runCycle(ctx, reason)
		}
	}
}

// runCycle не прерывает начатый цикл при отмене ctx: иначе подтверждения уже
// принятых сервером записей не попали бы в локальное хранилище. Завершение
// процесса ждет окончания цикла, но не дольше CycleTimeout.
func (s *Scheduler) runCycle(ctx context.Context, reason string) {
	cycleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.CycleTimeout)
	defer cancel()

	s.log.Debug("Запуск синхронизации", "reason", reason)
	_, _ = s.runner.AutoSync(cycleCtx)
}

func (s *Scheduler) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if s.runner.QuickSync(ctx) {
		s.log.Info("Локальные изменения отправлены перед завершением")
		return
	}
	s.log.Debug("Быстрая синхронизация перед завершением не выполнена")
}
