package client

import (
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Severity уровень уведомления
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Notifier поверхность уведомлений пользователя. Вызов не блокирует
// синхронизацию и ничего не возвращает.
type Notifier interface {
	Notify(msg string, severity Severity)
}

// ConsoleNotifier печатает уведомления в терминал с цветом по уровню
type ConsoleNotifier struct {
	out    io.Writer
	mu     sync.Mutex
	colors map[Severity]*color.Color
}

func NewConsoleNotifier(out io.Writer) *ConsoleNotifier {
	if out == nil {
		out = os.Stderr
	}

	return &ConsoleNotifier{
		out: out,
		colors: map[Severity]*color.Color{
			SeverityInfo:    color.New(color.FgCyan),
			SeveritySuccess: color.New(color.FgGreen),
			SeverityError:   color.New(color.FgRed, color.Bold),
		},
	}
}

func (n *ConsoleNotifier) Notify(msg string, severity Severity) {
	n.mu.Lock()
	defer n.mu.Unlock()

	c, ok := n.colors[severity]
	if !ok {
		c = n.colors[SeverityInfo]
	}
	_, _ = c.Fprintln(n.out, msg)
}

// NopNotifier молча отбрасывает уведомления
type NopNotifier struct{}

func (NopNotifier) Notify(string, Severity) {}
