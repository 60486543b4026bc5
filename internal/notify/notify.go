// Package notify delivers transient user-facing messages.
package notify

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Level is the severity of a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Notification is a single toast. Link, when set, points at a page where
// the user can fix the problem.
type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
	Link    string `json:"link,omitempty"`
}

// Notifier shows notifications to the user.
type Notifier interface {
	Notify(n Notification)
}

func Success(n Notifier, format string, args ...any) {
	n.Notify(Notification{Level: LevelSuccess, Message: fmt.Sprintf(format, args...)})
}

func Info(n Notifier, format string, args ...any) {
	n.Notify(Notification{Level: LevelInfo, Message: fmt.Sprintf(format, args...)})
}

// Error reports err as an error notification.
func Error(n Notifier, err error) {
	n.Notify(Notification{Level: LevelError, Message: err.Error()})
}

// Console prints notifications to a writer and mirrors them to the logger.
type Console struct {
	w      io.Writer
	logger *slog.Logger
}

func NewConsole(w io.Writer, logger *slog.Logger) *Console {
	return &Console{w: w, logger: logger}
}

func (c *Console) Notify(n Notification) {
	prefix := "✓"
	switch n.Level {
	case LevelError:
		prefix = "✗"
	case LevelInfo:
		prefix = "•"
	}
	fmt.Fprintf(c.w, "%s %s\n", prefix, n.Message)
	if n.Link != "" {
		fmt.Fprintf(c.w, "  %s\n", n.Link)
	}
	if c.logger != nil {
		c.logger.Debug("Notification shown", "level", n.Level, "message", n.Message)
	}
}

// Recorder keeps notifications in memory so they can be returned with a
// response.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns the notifications recorded so far.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}
