package engine

import (
	"github.com/snaptile/snaptile/internal/geometry"
	"github.com/snaptile/snaptile/internal/platform"
)

// NotificationKind classifies an advisory engine event. Notifications
// carry no mutation; they exist so a caller can render previews.
type NotificationKind int

const (
	// NoteZone fires when the pending edge-snap zone changes during a
	// drag. Zone is empty when the cursor left all zones.
	NoteZone NotificationKind = iota
	// NoteSwapTarget fires when the pending swap target changes. Target
	// is zero when no target is pending.
	NoteSwapTarget
	// NoteGap fires when the fillable gap under the cursor changes.
	NoteGap
	// NoteGestureEnd fires when a drag or resize session finishes and
	// any pending preview should be dismissed.
	NoteGestureEnd
)

// Notification is the advisory event payload.
type Notification struct {
	Kind   NotificationKind
	Window platform.WindowID
	Zone   string
	Target platform.WindowID
	Rect   geometry.Rect
}

// Listener receives engine notifications. A panicking listener is
// isolated and logged, matching registry observer semantics.
type Listener func(Notification)

// Subscribe registers a notification listener and returns its id.
func (e *Engine) Subscribe(l Listener) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextListener
	e.nextListener++
	e.listeners[id] = l
	return id
}

// Unsubscribe removes a listener.
func (e *Engine) Unsubscribe(id int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.listeners, id)
}

// notifyLocked fans a notification out to all listeners. Callers hold
// e.mu; listeners must not call back into the engine.
func (e *Engine) notifyLocked(n Notification) {
	for _, l := range e.listeners {
		e.dispatch(l, n)
	}
}

func (e *Engine) dispatch(l Listener, n Notification) {
	defer func() {
		if err := recover(); err != nil {
			e.logger.Error("notification listener panicked", "error", err, "kind", n.Kind)
		}
	}()
	l(n)
}
