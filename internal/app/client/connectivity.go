package client

import (
	"context"
	"sync"
	"time"

	"golang.org/x/exp/slog"
)

// Connectivity синхронный признак доступности сервера
type Connectivity interface {
	Online() bool
}

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Prober периодически опрашивает сервер и сообщает о смене состояния.
// В канал Events попадают только переходы: true при восстановлении связи,
// false при ее потере.
type Prober struct {
	checker  healthChecker
	interval time.Duration
	timeout  time.Duration
	log      *slog.Logger

	mu     sync.RWMutex
	online bool
	known  bool
	events chan bool
}

func NewProber(checker healthChecker, interval, timeout time.Duration, log *slog.Logger) *Prober {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Prober{
		checker:  checker,
		interval: interval,
		timeout:  timeout,
		log:      log.With(slog.String("component", "prober")),
		events:   make(chan bool, 8),
	}
}

// Online возвращает последнее известное состояние соединения
func (p *Prober) Online() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.online
}

func (p *Prober) Events() <-chan bool {
	return p.events
}

// Check выполняет одну проверку и обновляет состояние
func (p *Prober) Check(parent context.Context) bool {
	ctx, cancel := context.WithTimeout(parent, p.timeout)
	defer cancel()

	err := p.checker.HealthCheck(ctx)
	if parent.Err() != nil {
		// проверку прервали снаружи, о сервере она ничего не говорит
		return p.Online()
	}

	online := err == nil
	if err != nil {
		p.log.Debug("Сервер недоступен", "error", err)
	}

	p.set(online)
	return online
}

// Run опрашивает сервер до отмены контекста
func (p *Prober) Run(ctx context.Context) {
	p.Check(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Check(ctx)
		}
	}
}

func (p *Prober) set(online bool) {
	p.mu.Lock()
	changed := p.known && p.online != online
	p.online = online
	p.known = true
	p.mu.Unlock()

	if !changed {
		return
	}

	p.log.Info("Состояние соединения изменилось", "online", online)

	select {
	case p.events <- online:
	default:
		p.log.Warn("Очередь событий соединения переполнена", "online", online)
	}
}
