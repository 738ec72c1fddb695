package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func drain(ch <-chan bool) []bool {
	var out []bool
	for {
		select {
		case v := <-ch:
			out = append(out, v)
		default:
			return out
		}
	}
}

func TestProber_EdgeEvents(t *testing.T) {
	transport := newFakeTransport()
	p := NewProber(transport, time.Hour, time.Second, discardLogger())
	ctx := context.Background()

	assert.False(t, p.Online())

	// первая проверка устанавливает состояние без события
	assert.True(t, p.Check(ctx))
	assert.True(t, p.Online())
	assert.Empty(t, drain(p.Events()))

	assert.True(t, p.Check(ctx))
	assert.Empty(t, drain(p.Events()))

	transport.mu.Lock()
	transport.healthErr = errors.New("connection refused")
	transport.mu.Unlock()
	assert.False(t, p.Check(ctx))
	assert.False(t, p.Check(ctx))

	transport.mu.Lock()
	transport.healthErr = nil
	transport.mu.Unlock()
	assert.True(t, p.Check(ctx))

	assert.Equal(t, []bool{false, true}, drain(p.Events()))
}

func TestProber_CancelledCheckKeepsState(t *testing.T) {
	transport := newFakeTransport()
	p := NewProber(transport, time.Hour, time.Second, discardLogger())
	assert.True(t, p.Check(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	transport.mu.Lock()
	transport.healthErr = context.Canceled
	transport.mu.Unlock()

	assert.True(t, p.Check(ctx))
	assert.Empty(t, drain(p.Events()))
}

func TestProber_Run(t *testing.T) {
	transport := newFakeTransport()
	p := NewProber(transport, 5*time.Millisecond, time.Second, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(ctx)
	}()

	assert.Eventually(t, p.Online, time.Second, time.Millisecond)

	transport.mu.Lock()
	transport.healthErr = errors.New("down")
	transport.mu.Unlock()

	select {
	case online := <-p.Events():
		assert.False(t, online)
	case <-time.After(time.Second):
		t.Fatal("нет события о потере соединения")
	}

	cancel()
	<-done
}
