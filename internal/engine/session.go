package engine

import (
	"context"
	"time"

	"github.com/snaptile/snaptile/internal/geometry"
	"github.com/snaptile/snaptile/internal/platform"
	"github.com/snaptile/snaptile/internal/tiling"
)

// session tracks one in-flight drag or resize gesture. The poll loop
// synthesizes zone, swap, gap, and seam decisions from cursor and window
// geometry; the decisions commit on grab end.
type session struct {
	window    platform.WindowID
	op        platform.OpKind
	dragStart geometry.Rect
	lastRect  geometry.Rect
	wasTiled  bool

	zone       string
	swapTarget platform.WindowID
	hasSwap    bool
	gapRect    geometry.Rect
	hasGap     bool
	seamX      int
	hasSeam    bool

	cancel context.CancelFunc
}

// HandleGrabBegin starts a gesture session for a window. Move gestures
// run zone, swap, gap, and seam detection; resize gestures run neighbor
// propagation. Excluded windows and resizes of untracked windows are
// ignored. A new grab supersedes any session still open.
func (e *Engine) HandleGrabBegin(id platform.WindowID, op platform.OpKind) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil {
		e.session.cancel()
		e.session = nil
	}

	if meta, ok := e.findWindow(id); ok && e.cfg.IsExcluded(meta.AppID) {
		e.logger.Debug("ignoring gesture on excluded window", "window", id, "app", meta.AppID)
		return
	}

	state, tracked := e.registry.GetWindow(id)
	wasTiled := tracked && state.Tiled
	if op != platform.OpMove && !wasTiled {
		// Resize propagation only applies to tiled windows.
		return
	}

	rect, err := e.backend.WindowRect(id)
	if err != nil {
		e.logger.Debug("grab begin failed to read rect", "window", id, "error", err)
		return
	}
	start := fromPlatformRect(rect)

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		window:    id,
		op:        op,
		dragStart: start,
		lastRect:  start,
		wasTiled:  wasTiled,
		cancel:    cancel,
	}
	e.session = s
	e.logger.Debug("gesture began", "window", id, "op", op.String())

	go e.pollLoop(ctx, s)
}

// pollLoop drives the session on a fixed interval until canceled.
func (e *Engine) pollLoop(ctx context.Context, s *session) {
	ticker := time.NewTicker(time.Duration(e.cfg.PollIntervalMS) * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.tick(s)
		}
	}
}

// tick runs one detection pass. Within a tick, detection and notification
// happen atomically under the engine lock.
func (e *Engine) tick(s *session) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != s {
		return
	}
	if !e.backend.WindowExists(s.window) {
		// Tracked window vanished mid-gesture: stop polling, drop state.
		s.cancel()
		e.session = nil
		e.registry.RemoveWindow(s.window)
		e.registry.RecalculateNeighbors()
		return
	}

	if s.op == platform.OpMove {
		e.tickMove(s)
	} else {
		e.tickResize(s)
	}
}

func (e *Engine) tickMove(s *session) {
	pointer, err := e.backend.Pointer()
	if err != nil {
		return
	}
	display, err := e.backend.DisplayForPoint(pointer.X, pointer.Y)
	if err != nil {
		return
	}
	work := e.workArea(display)
	point := geometry.Point{X: pointer.X, Y: pointer.Y}
	gap := e.cfg.InnerGap

	zone := zoneForPoint(point, work, e.cfg.SnapThreshold)
	if zone != s.zone {
		s.zone = zone
		e.notifyLocked(Notification{Kind: NoteZone, Window: s.window, Zone: zone})
	}

	if zone != "" {
		// Edge zones take precedence; dismiss other pending previews.
		if s.hasSwap {
			s.hasSwap = false
			s.swapTarget = 0
			e.notifyLocked(Notification{Kind: NoteSwapTarget, Window: s.window})
		}
		if s.hasGap {
			s.hasGap = false
			e.notifyLocked(Notification{Kind: NoteGap, Window: s.window})
		}
		s.hasSeam = false
		return
	}

	if s.wasTiled {
		rect, err := e.backend.WindowRect(s.window)
		if err == nil {
			center := fromPlatformRect(rect).Center()
			target, ok := e.swaps.TargetAt(s.window, center)
			if ok != s.hasSwap || target != s.swapTarget {
				s.hasSwap = ok
				s.swapTarget = target
				e.notifyLocked(Notification{Kind: NoteSwapTarget, Window: s.window, Target: target})
			}
		}
	}
	if s.hasSwap {
		s.hasSeam = false
		if s.hasGap {
			s.hasGap = false
			e.notifyLocked(Notification{Kind: NoteGap, Window: s.window})
		}
		return
	}

	if x, ok := e.gaps.FindSeam(s.window, point, gap); ok {
		s.seamX = x
		s.hasSeam = true
	} else {
		s.hasSeam = false
	}

	gapRect, ok := e.gaps.FindGap(s.window, point, work, gap)
	if ok != s.hasGap || (ok && gapRect != s.gapRect) {
		s.hasGap = ok
		s.gapRect = gapRect
		e.notifyLocked(Notification{Kind: NoteGap, Window: s.window, Rect: gapRect})
	}
}

func (e *Engine) tickResize(s *session) {
	rect, err := e.backend.WindowRect(s.window)
	if err != nil {
		return
	}
	cur := fromPlatformRect(rect)

	var edge tiling.Edge
	var delta int
	switch s.op {
	case platform.OpResizeRight:
		edge, delta = tiling.EdgeRight, cur.Width-s.lastRect.Width
	case platform.OpResizeLeft:
		edge, delta = tiling.EdgeLeft, s.lastRect.X-cur.X
	case platform.OpResizeTop:
		edge, delta = tiling.EdgeTop, s.lastRect.Y-cur.Y
	case platform.OpResizeBottom:
		edge, delta = tiling.EdgeBottom, cur.Height-s.lastRect.Height
	default:
		return
	}
	if delta == 0 {
		return
	}

	plan := e.propagator.PlanEdgeResize(s.window, edge, delta)
	if plan.Revert {
		if err := e.backend.MoveResize(s.window, toPlatformRect(plan.RevertRect)); err == nil {
			s.lastRect = plan.RevertRect
		}
		return
	}

	e.applyPlacements(plan.Placements, "")
	e.registry.SetWindow(s.window, tiling.WindowUpdate{Rect: &cur})
	s.lastRect = cur
}

// HandleGrabEnd commits the gesture. For moves the decision priority is
// edge zone, then swap, then seam insertion, then gap fill; a tiled
// window released over none of these leaves the tiled set. For resizes
// the final rectangle is persisted and the neighbor graph refreshed.
func (e *Engine) HandleGrabEnd(id platform.WindowID, op platform.OpKind) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.session
	if s == nil || s.window != id {
		return
	}
	s.cancel()
	e.session = nil

	defer e.notifyLocked(Notification{Kind: NoteGestureEnd, Window: id})

	if op != platform.OpMove {
		if rect, err := e.backend.WindowRect(id); err == nil {
			final := fromPlatformRect(rect)
			e.registry.SetWindow(id, tiling.WindowUpdate{Rect: &final})
		}
		e.registry.RecalculateNeighbors()
		return
	}

	switch {
	case s.zone != "":
		e.commitZone(s)
	case s.hasSwap && s.wasTiled:
		e.commitSwap(s)
	case s.hasSeam:
		e.commitInsert(s)
	case s.hasGap:
		e.commitGapFill(s)
	case s.wasTiled:
		// Released over empty space: the window leaves the tiled row and
		// the survivors redistribute.
		e.registry.RemoveWindow(s.window)
		if display, err := e.backend.DisplayForWindow(s.window); err == nil {
			e.redistributeLocked(display, 0)
		}
		e.registry.RecalculateNeighbors()
		e.logger.Info("window left tiled row", "window", s.window)
	}
}

func (e *Engine) commitZone(s *session) {
	if _, tracked := e.registry.GetWindow(s.window); !tracked {
		// Preserve the pre-drag rectangle for untile, not the rect at
		// the drop position.
		e.registry.SetWindow(s.window, tiling.WindowUpdate{OriginalRect: &s.dragStart})
	}
	if err := e.snapLocked(s.window, s.zone); err != nil {
		e.logger.Warn("zone snap failed", "window", s.window, "zone", s.zone, "error", err)
	}
}

func (e *Engine) commitSwap(s *session) {
	placements := e.swaps.Commit(s.window, s.swapTarget, s.dragStart)
	for _, p := range placements {
		if err := e.backend.MoveResize(p.ID, toPlatformRect(p.Rect)); err != nil {
			e.logger.Warn("swap move failed", "window", p.ID, "error", err)
		}
	}
	e.registry.RecalculateNeighbors()
	e.logger.Info("windows swapped", "dragged", s.window, "target", s.swapTarget)
}

func (e *Engine) commitInsert(s *session) {
	display, err := e.backend.DisplayForPoint(s.seamX, s.dragStart.Center().Y)
	if err != nil {
		return
	}
	work := e.workArea(display)
	gap := e.cfg.InnerGap

	var existing []tiling.WindowState
	for _, w := range e.tiledOnDisplay(display) {
		if w.ID != s.window {
			existing = append(existing, w)
		}
	}

	zone := tiling.ZoneInserted
	tiled := true
	upd := tiling.WindowUpdate{Zone: &zone, Tiled: &tiled}
	if _, tracked := e.registry.GetWindow(s.window); !tracked {
		// Preserve the pre-tile rectangle for untile. An already tiled
		// window keeps the one captured when it first entered the layout.
		upd.OriginalRect = &s.dragStart
	}
	e.registry.SetWindow(s.window, upd)

	plan := e.redistributor.InsertPlan(existing, s.window, s.seamX, work, gap)
	e.applyPlacements(plan, "")

	ids := make([]platform.WindowID, len(plan))
	for i, p := range plan {
		ids[i] = p.ID
	}
	e.correctLocked(ids, s.window, work, gap)
	e.registry.RecalculateNeighbors()
	e.logger.Info("window inserted at seam", "window", s.window, "seam_x", s.seamX)
}

func (e *Engine) commitGapFill(s *session) {
	if err := e.backend.MoveResize(s.window, toPlatformRect(s.gapRect)); err != nil {
		e.logger.Warn("gap fill move failed", "window", s.window, "error", err)
		return
	}
	zone := tiling.ZoneGapFill
	tiled := true
	rect := s.gapRect
	upd := tiling.WindowUpdate{Rect: &rect, Zone: &zone, Tiled: &tiled}
	if _, tracked := e.registry.GetWindow(s.window); !tracked {
		upd.OriginalRect = &s.dragStart
	}
	e.registry.SetWindow(s.window, upd)
	e.registry.RecalculateNeighbors()
	e.logger.Info("window filled gap", "window", s.window,
		"x", rect.X, "w", rect.Width)
}

// zoneForPoint maps a cursor position to a named snap zone. Vertical
// screen edges select halves, refined into quadrants when the cursor is
// also in the top or bottom quarter of the work area; the top edge
// selects maximize. The bottom edge is not a zone.
func zoneForPoint(p geometry.Point, work geometry.Rect, threshold int) string {
	nearLeft := p.X <= work.X+threshold
	nearRight := p.X >= work.RightEdge()-threshold
	nearTop := p.Y <= work.Y+threshold
	topQuarter := p.Y <= work.Y+work.Height/4
	bottomQuarter := p.Y >= work.BottomEdge()-work.Height/4

	switch {
	case nearLeft && topQuarter:
		return tiling.ZoneLeftTop
	case nearLeft && bottomQuarter:
		return tiling.ZoneLeftBottom
	case nearLeft:
		return tiling.ZoneLeft
	case nearRight && topQuarter:
		return tiling.ZoneRightTop
	case nearRight && bottomQuarter:
		return tiling.ZoneRightBottom
	case nearRight:
		return tiling.ZoneRight
	case nearTop:
		return tiling.ZoneMaximize
	default:
		return ""
	}
}
