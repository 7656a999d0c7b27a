// Package notify holds the single transient status message shown to the
// user and expires it after a fixed delay.
package notify

import (
	"sync"
	"time"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 5 * time.Second

// Severity classifies a notification.
type Severity string

const (
	SeverityNone    Severity = "none"
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is a user-facing status message. The zero value means no
// notification is showing.
type Notification struct {
	Text     string   `json:"text"`
	Severity Severity `json:"severity"`
}

// IsZero reports whether n is empty.
func (n Notification) IsZero() bool {
	return n.Text == "" && (n.Severity == "" || n.Severity == SeverityNone)
}

// Scheduler runs fn after d and returns a function that cancels it. The
// cancel function reports whether fn was prevented from running.
type Scheduler func(d time.Duration, fn func()) (cancel func() bool)

// TimerScheduler schedules with time.AfterFunc.
func TimerScheduler(d time.Duration, fn func()) func() bool {
	t := time.AfterFunc(d, fn)
	return t.Stop
}

// Option configures a Manager.
type Option func(*Manager)

// WithScheduler replaces the timer implementation.
func WithScheduler(s Scheduler) Option {
	return func(m *Manager) { m.schedule = s }
}

// WithOnChange registers a callback invoked after every change of the
// current notification, including expiry. It runs outside the lock.
func WithOnChange(fn func(Notification)) Option {
	return func(m *Manager) { m.onChange = fn }
}

// Manager owns one notification slot and at most one pending dismissal.
type Manager struct {
	mu       sync.Mutex
	ttl      time.Duration
	schedule Scheduler
	onChange func(Notification)

	current Notification
	cancel  func() bool
	gen     uint64
	closed  bool
}

// NewManager creates a Manager whose notifications expire after ttl.
func NewManager(ttl time.Duration, opts ...Option) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Manager{
		ttl:      ttl,
		schedule: TimerScheduler,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Notify replaces the current notification and restarts the dismissal
// timer. The previous timer is cancelled before the new one is scheduled.
func (m *Manager) Notify(text string, severity Severity) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.stopLocked()
	m.gen++
	gen := m.gen
	m.current = Notification{Text: text, Severity: severity}
	m.cancel = m.schedule(m.ttl, func() { m.expire(gen) })
	n := m.current
	m.mu.Unlock()

	m.changed(n)
}

// Dismiss clears the notification immediately and cancels its timer.
func (m *Manager) Dismiss() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	had := !m.current.IsZero()
	m.stopLocked()
	m.gen++
	m.current = Notification{}
	m.mu.Unlock()

	if had {
		m.changed(Notification{})
	}
}

// Current returns the visible notification, or the zero value.
func (m *Manager) Current() Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Pending reports whether a dismissal timer is outstanding.
func (m *Manager) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancel != nil
}

// Close cancels any pending timer. After Close the manager ignores all
// calls and no callback fires again.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
	m.gen++
	m.closed = true
}

// expire clears the notification if gen still identifies it. A timer that
// already fired while a newer notification was being installed finds a
// newer generation and does nothing.
func (m *Manager) expire(gen uint64) {
	m.mu.Lock()
	if m.closed || gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.cancel = nil
	m.current = Notification{}
	m.mu.Unlock()

	m.changed(Notification{})
}

func (m *Manager) stopLocked() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Manager) changed(n Notification) {
	if m.onChange != nil {
		m.onChange(n)
	}
}
