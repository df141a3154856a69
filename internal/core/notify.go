package core

// notify.go carries user-facing side-channel messages ("settings load
// failed", "export ready") out of the core. The core never fails an
// operation outright; it degrades and reports through a Notifier instead.

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// NotificationLevel is the severity of a notification.
type NotificationLevel string

const (
	LevelInfo  NotificationLevel = "info"
	LevelError NotificationLevel = "error"
)

// Notification is a single user-facing message.
type Notification struct {
	Level   NotificationLevel `json:"level"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Time    time.Time         `json:"time"`
}

// Notifier receives notifications.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Notification)

// Notify implements Notifier.
func (f NotifierFunc) Notify(n Notification) { f(n) }

// notifyError builds an error-level notification from a mapped error.
func notifyError(n Notifier, err error) {
	if n == nil || err == nil {
		return
	}
	msg := MapError(err)
	n.Notify(Notification{
		Level:   LevelError,
		Code:    msg.Code,
		Message: msg.Message,
		Time:    time.Now(),
	})
}

// LogNotifier writes notifications to a structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify implements Notifier.
func (l LogNotifier) Notify(n Notification) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	if n.Level == LevelError {
		level = slog.LevelWarn
	}
	logger.Log(context.Background(), level, "notification", "code", n.Code, "message", n.Message)
}

// MultiNotifier fans a notification out to several notifiers.
type MultiNotifier []Notifier

// Notify implements Notifier.
func (m MultiNotifier) Notify(n Notification) {
	for _, target := range m {
		if target != nil {
			target.Notify(n)
		}
	}
}

// DefaultNotificationCapacity bounds a NotificationQueue when no size is given.
const DefaultNotificationCapacity = 50

// NotificationQueue is a bounded FIFO of notifications. When full, the
// oldest entry is dropped. Safe for concurrent use.
type NotificationQueue struct {
	mu    sync.Mutex
	items []Notification
	max   int
}

// NewNotificationQueue creates a queue holding at most capacity entries.
func NewNotificationQueue(capacity int) *NotificationQueue {
	if capacity <= 0 {
		capacity = DefaultNotificationCapacity
	}
	return &NotificationQueue{max: capacity}
}

// Notify implements Notifier.
func (q *NotificationQueue) Notify(n Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) >= q.max {
		q.items = q.items[1:]
	}
	q.items = append(q.items, n)
}

// Drain returns and clears all queued notifications, oldest first.
func (q *NotificationQueue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.items
	q.items = nil
	if out == nil {
		return []Notification{}
	}
	return out
}

// Len returns the number of queued notifications.
func (q *NotificationQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
