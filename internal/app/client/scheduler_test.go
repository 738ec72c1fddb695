package client

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunasync/internal/domain/record"
)

type fakeRunner struct {
	auto    atomic.Int32
	quick   atomic.Int32
	syncing atomic.Bool

	mu      sync.Mutex
	quickOK bool
	calls   chan struct{}
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{calls: make(chan struct{}, 16), quickOK: true}
}

func (r *fakeRunner) AutoSync(context.Context) (*SyncResult, error) {
	r.auto.Add(1)
	r.calls <- struct{}{}
	return &SyncResult{}, nil
}

func (r *fakeRunner) QuickSync(context.Context) bool {
	r.quick.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.quickOK
}

func (r *fakeRunner) IsSyncing() bool {
	return r.syncing.Load()
}

type fakeSignal struct {
	online atomic.Bool
	events chan bool
}

func newFakeSignal(online bool) *fakeSignal {
	s := &fakeSignal{events: make(chan bool, 4)}
	s.online.Store(online)
	return s
}

func (s *fakeSignal) Online() bool        { return s.online.Load() }
func (s *fakeSignal) Events() <-chan bool { return s.events }

func waitCall(t *testing.T, r *fakeRunner) {
	t.Helper()
	select {
	case <-r.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("синхронизация не была запущена")
	}
}

func runScheduler(t *testing.T, s *Scheduler) (context.CancelFunc, <-chan struct{}) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()
	t.Cleanup(cancel)
	return cancel, done
}

func TestScheduler_StartupTrigger(t *testing.T) {
	runner := newFakeRunner()
	notifier := &recordingNotifier{}
	s := NewScheduler(runner, newFakeSignal(true), notifier, discardLogger(), SchedulerConfig{
		StartupDelay: 10 * time.Millisecond,
		Interval:     time.Hour,
	})

	cancel, done := runScheduler(t, s)
	waitCall(t, runner)

	cancel()
	<-done

	assert.Equal(t, int32(1), runner.auto.Load())
	assert.Equal(t, int32(1), runner.quick.Load())
	assert.Empty(t, notifier.all())
}

func TestScheduler_ReconnectTrigger(t *testing.T) {
	runner := newFakeRunner()
	signal := newFakeSignal(false)
	notifier := &recordingNotifier{}
	s := NewScheduler(runner, signal, notifier, discardLogger(), SchedulerConfig{
		StartupDelay:   time.Hour,
		ReconnectDelay: 10 * time.Millisecond,
		Interval:       time.Hour,
	})

	cancel, done := runScheduler(t, s)

	signal.online.Store(true)
	signal.events <- true
	waitCall(t, runner)

	signal.online.Store(false)
	signal.events <- false

	require.Eventually(t, func() bool { return len(notifier.all()) == 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done

	sent := notifier.all()
	assert.Equal(t, "Соединение восстановлено", sent[0].Msg)
	assert.Equal(t, "Нет соединения, работаем локально", sent[1].Msg)
	assert.Equal(t, int32(1), runner.auto.Load())
}

func TestScheduler_IntervalSkipsWhenOfflineOrBusy(t *testing.T) {
	runner := newFakeRunner()
	signal := newFakeSignal(false)
	s := NewScheduler(runner, signal, nil, discardLogger(), SchedulerConfig{
		StartupDelay: time.Hour,
		Interval:     10 * time.Millisecond,
	})

	cancel, done := runScheduler(t, s)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), runner.auto.Load())

	runner.syncing.Store(true)
	signal.online.Store(true)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), runner.auto.Load())

	runner.syncing.Store(false)
	waitCall(t, runner)

	cancel()
	<-done
	assert.GreaterOrEqual(t, runner.auto.Load(), int32(1))
}

func TestScheduler_ShutdownRunsQuickSyncOnce(t *testing.T) {
	runner := newFakeRunner()
	runner.quickOK = false
	s := NewScheduler(runner, newFakeSignal(true), nil, discardLogger(), SchedulerConfig{
		StartupDelay:    time.Hour,
		Interval:        time.Hour,
		ShutdownTimeout: 50 * time.Millisecond,
	})

	cancel, done := runScheduler(t, s)
	cancel()
	<-done

	assert.Equal(t, int32(0), runner.auto.Load())
	assert.Equal(t, int32(1), runner.quick.Load())
}

func TestScheduler_CancelDuringPushKeepsAcks(t *testing.T) {
	storage, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "data.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	store := NewLocalStore(storage)
	require.NoError(t, store.SaveUsers(context.Background(), []record.User{
		{Header: record.Header{ID: "local_a", UpdatedAt: 100}, Name: "A"},
	}))

	transport := newFakeTransport()
	svc := NewSyncService(store, transport, newFakeConn(true), nil, discardLogger(), 0)
	s := NewScheduler(svc, newFakeSignal(true), nil, discardLogger(), SchedulerConfig{
		StartupDelay: 10 * time.Millisecond,
		Interval:     time.Hour,
	})

	// сигнал завершения приходит, пока сервер принимает запись
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	transport.onPush = func(record.Collection, PushDoc) error {
		cancel()
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("планировщик не завершился")
	}

	users, err := store.Users(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "srv-1", users[0].ID)
	assert.True(t, users[0].Synced)
	assert.Len(t, transport.pushLog(), 1)

	lastSync, err := store.LastSyncAt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, transport.serverTime(), lastSync)
}

func TestNewScheduler_Defaults(t *testing.T) {
	s := NewScheduler(newFakeRunner(), newFakeSignal(true), nil, discardLogger(), SchedulerConfig{})

	assert.Equal(t, DefaultSchedulerConfig(), s.cfg)
}
