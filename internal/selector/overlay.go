package selector

import (
	"image"
	"sync"
)

// Overlay owns the single live selection session. Opening a new session
// cancels the previous one first so overlays never stack and any capture
// waiting on the old session is released.
type Overlay struct {
	mu      sync.Mutex
	current *Session
}

// Begin tears down any live session and opens a new one.
func (o *Overlay) Begin(displayBounds image.Rectangle, backgroundSize image.Point, onConfirm func(Rect), onCancel func()) *Session {
	o.mu.Lock()
	prev := o.current
	o.current = nil
	o.mu.Unlock()

	if prev != nil {
		prev.Escape()
	}

	s := Begin(displayBounds, backgroundSize, onConfirm, onCancel)

	o.mu.Lock()
	o.current = s
	o.mu.Unlock()
	return s
}

// Current returns the live session, or nil when none is open.
func (o *Overlay) Current() *Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current == nil || o.current.Done() {
		return nil
	}
	return o.current
}

// Close cancels the live session, if any.
func (o *Overlay) Close() {
	o.mu.Lock()
	s := o.current
	o.current = nil
	o.mu.Unlock()

	if s != nil {
		s.Escape()
	}
}
