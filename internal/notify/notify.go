// Package notify carries user-visible, non-blocking notices from the core
// services to whatever front end is attached.
package notify

import "sync"

// Level orders notices by severity.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is one message for the user.
type Notice struct {
	Level   Level
	Title   string
	Message string
}

// Notifier shows notices to the user. Implementations must not block on
// user input.
type Notifier interface {
	Notify(n Notice)
}

// Func adapts a function to Notifier.
type Func func(Notice)

// Notify calls f(n).
func (f Func) Notify(n Notice) { f(n) }

// Nop discards every notice.
var Nop Notifier = Func(func(Notice) {})

// Recorder keeps notices in memory.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify records n.
func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of everything recorded so far.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Warn is shorthand for a warning notice.
func Warn(n Notifier, title, message string) {
	if n != nil {
		n.Notify(Notice{Level: LevelWarning, Title: title, Message: message})
	}
}

// Error is shorthand for an error notice.
func Error(n Notifier, title, message string) {
	if n != nil {
		n.Notify(Notice{Level: LevelError, Title: title, Message: message})
	}
}

// Info is shorthand for an informational notice.
func Info(n Notifier, title, message string) {
	if n != nil {
		n.Notify(Notice{Level: LevelInfo, Title: title, Message: message})
	}
}
