package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/snaptile/snaptile/internal/platform"
)

// GestureEngine receives grab begin/end events synthesized by the watcher.
type GestureEngine interface {
	HandleGrabBegin(id platform.WindowID, op platform.OpKind)
	HandleGrabEnd(id platform.WindowID, op platform.OpKind)
}

// DragWatcher polls the pointer and the active window to detect drag and
// resize gestures on window managers that do not report grabs directly.
// A gesture begins when the primary button is held and the window's
// geometry starts changing; the direction of the first change classifies
// the gesture.
type DragWatcher struct {
	backend  platform.Backend
	engine   GestureEngine
	interval time.Duration
	logger   *slog.Logger

	buttonWas bool
	window    platform.WindowID
	pressRect platform.Rect
	op        platform.OpKind
	started   bool
}

// NewDragWatcher creates a drag watcher polling at the given interval.
func NewDragWatcher(backend platform.Backend, engine GestureEngine, interval time.Duration, logger *slog.Logger) *DragWatcher {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DragWatcher{
		backend:  backend,
		engine:   engine,
		interval: interval,
		logger:   logger,
	}
}

// Run polls until the context is canceled.
func (w *DragWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Tick()
		}
	}
}

// Tick runs one poll step.
func (w *DragWatcher) Tick() {
	ptr, err := w.backend.Pointer()
	if err != nil {
		w.logger.Debug("pointer query failed", "error", err)
		return
	}

	switch {
	case ptr.ButtonDown && !w.buttonWas:
		w.onPress()
	case ptr.ButtonDown && w.buttonWas:
		w.onHold()
	case !ptr.ButtonDown && w.buttonWas:
		w.onRelease()
	}

	w.buttonWas = ptr.ButtonDown
}

func (w *DragWatcher) onPress() {
	w.window = 0
	w.started = false

	id, err := w.backend.ActiveWindow()
	if err != nil || id == 0 {
		return
	}
	rect, err := w.backend.WindowRect(id)
	if err != nil {
		return
	}

	w.window = id
	w.pressRect = rect
}

func (w *DragWatcher) onHold() {
	if w.window == 0 || w.started {
		return
	}

	rect, err := w.backend.WindowRect(w.window)
	if err != nil {
		w.window = 0
		return
	}

	op, changed := classifyGesture(w.pressRect, rect)
	if !changed {
		return
	}

	w.op = op
	w.started = true
	w.engine.HandleGrabBegin(w.window, op)
}

func (w *DragWatcher) onRelease() {
	if w.started {
		w.engine.HandleGrabEnd(w.window, w.op)
	}
	w.window = 0
	w.started = false
}

// classifyGesture compares the rect at button press with the current rect.
// A size change on an edge wins over a position change, so resizes are not
// mistaken for moves when the grabbed edge is the left or top one.
func classifyGesture(before, after platform.Rect) (platform.OpKind, bool) {
	if before == after {
		return platform.OpMove, false
	}

	if after.Width != before.Width {
		if after.X != before.X {
			return platform.OpResizeLeft, true
		}
		return platform.OpResizeRight, true
	}
	if after.Height != before.Height {
		if after.Y != before.Y {
			return platform.OpResizeTop, true
		}
		return platform.OpResizeBottom, true
	}

	return platform.OpMove, true
}
