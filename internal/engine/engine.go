// Package engine orchestrates the tiling core against a platform backend:
// it applies planner output to real windows, tracks drag and resize
// gestures, and keeps the registry's neighbor graph current.
package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/snaptile/snaptile/internal/config"
	"github.com/snaptile/snaptile/internal/geometry"
	"github.com/snaptile/snaptile/internal/platform"
	"github.com/snaptile/snaptile/internal/tiling"
)

// Engine owns the registry, the planners, and the active gesture session.
// All public methods are safe for concurrent use.
type Engine struct {
	mu      sync.Mutex
	backend platform.Backend
	cfg     *config.Config
	logger  *slog.Logger

	registry      *tiling.Registry
	propagator    *tiling.Propagator
	redistributor *tiling.Redistributor
	swaps         *tiling.SwapPlanner
	gaps          *tiling.GapPlanner

	listeners    map[int]Listener
	nextListener int

	session *session
}

// New creates an engine over the given backend and configuration.
func New(backend platform.Backend, cfg *config.Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	registry := tiling.NewRegistry(cfg.NeighborOverlapMin, cfg.EdgeTolerance, logger)
	e := &Engine{
		backend:       backend,
		cfg:           cfg,
		logger:        logger,
		registry:      registry,
		propagator:    tiling.NewPropagator(registry, cfg.MinWindowWidth, cfg.MinWindowHeight, logger),
		redistributor: tiling.NewRedistributor(cfg.MinWindowWidth, logger),
		swaps:         tiling.NewSwapPlanner(registry, logger),
		gaps:          tiling.NewGapPlanner(registry, cfg.MinWindowWidth, cfg.BoundaryThreshold),
		listeners:     make(map[int]Listener),
	}
	return e
}

// Registry exposes the window registry for the reconciler and IPC status.
func (e *Engine) Registry() *tiling.Registry {
	return e.registry
}

// Reload swaps the configuration and rebuilds the planners that bake in
// threshold values. Tiled state survives the reload.
func (e *Engine) Reload(cfg *config.Config) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg
	e.registry.SetThresholds(cfg.NeighborOverlapMin, cfg.EdgeTolerance)
	e.propagator = tiling.NewPropagator(e.registry, cfg.MinWindowWidth, cfg.MinWindowHeight, e.logger)
	e.redistributor = tiling.NewRedistributor(cfg.MinWindowWidth, e.logger)
	e.gaps = tiling.NewGapPlanner(e.registry, cfg.MinWindowWidth, cfg.BoundaryThreshold)
	e.logger.Info("configuration reloaded")
}

// Close cancels any in-flight gesture session and drops all state. The
// drag in progress is discarded without side effects.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.session != nil {
		e.session.cancel()
		e.session = nil
	}
	e.listeners = make(map[int]Listener)
	e.mu.Unlock()
	e.registry.Clear()
}

// Clear cancels any in-flight gesture and forgets all tiled state.
// Windows keep their on-screen rectangles.
func (e *Engine) Clear() {
	e.mu.Lock()
	if e.session != nil {
		e.session.cancel()
		e.session = nil
	}
	e.mu.Unlock()
	e.registry.Clear()
	e.logger.Info("tiled state cleared")
}

// SnapWindow tiles a window into a named zone on its current display.
// Third zones (left-third, center-third, right-third, left-two-thirds,
// right-two-thirds) are resolved here; everything else goes through
// ZoneRect, where unknown names fall back to maximize.
func (e *Engine) SnapWindow(id platform.WindowID, zone string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapLocked(id, zone)
}

// SnapActiveWindow snaps whichever window currently holds focus.
func (e *Engine) SnapActiveWindow(zone string) error {
	id, err := e.backend.ActiveWindow()
	if err != nil {
		return fmt.Errorf("resolving active window: %w", err)
	}
	return e.SnapWindow(id, zone)
}

func (e *Engine) snapLocked(id platform.WindowID, zone string) error {
	if meta, ok := e.findWindow(id); ok && e.cfg.IsExcluded(meta.AppID) {
		return fmt.Errorf("window %d (%s) is excluded from tiling", id, meta.AppID)
	}

	display, err := e.backend.DisplayForWindow(id)
	if err != nil {
		return fmt.Errorf("resolving display for window %d: %w", id, err)
	}
	work := e.workArea(display)
	gap := e.cfg.InnerGap

	var rect geometry.Rect
	switch zone {
	case "left-third":
		rect = tiling.ThirdRect(work, 0, gap)
	case "center-third":
		rect = tiling.ThirdRect(work, 1, gap)
	case "right-third":
		rect = tiling.ThirdRect(work, 2, gap)
	case "left-two-thirds":
		rect = tiling.TwoThirdsRect(work, 0, gap)
	case "right-two-thirds":
		rect = tiling.TwoThirdsRect(work, 1, gap)
	default:
		rect = tiling.ZoneRect(zone, work, gap)
	}

	return e.placeLocked(id, rect, zone)
}

// placeLocked moves a window into rect and records it as tiled, capturing
// the pre-tile rectangle on first contact for later restore.
func (e *Engine) placeLocked(id platform.WindowID, rect geometry.Rect, zone string) error {
	upd := tiling.WindowUpdate{Rect: &rect, Zone: &zone}
	tiled := true
	upd.Tiled = &tiled

	if _, tracked := e.registry.GetWindow(id); !tracked {
		current, err := e.backend.WindowRect(id)
		if err != nil {
			return fmt.Errorf("reading rect of window %d: %w", id, err)
		}
		original := fromPlatformRect(current)
		upd.OriginalRect = &original
	}

	if err := e.backend.MoveResize(id, toPlatformRect(rect)); err != nil {
		return fmt.Errorf("moving window %d: %w", id, err)
	}
	if err := e.backend.Raise(id); err != nil {
		e.logger.Debug("raise failed", "window", id, "error", err)
	}

	e.registry.SetWindow(id, upd)
	e.registry.RecalculateNeighbors()
	e.logger.Info("window snapped", "window", id, "zone", zone,
		"x", rect.X, "y", rect.Y, "w", rect.Width, "h", rect.Height)
	return nil
}

// Untile restores a window to its pre-tile rectangle, removes it from the
// registry, and redistributes the remaining row.
func (e *Engine) Untile(id platform.WindowID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	display, derr := e.backend.DisplayForWindow(id)

	original, ok := e.registry.Untile(id)
	if !ok {
		return fmt.Errorf("window %d is not tiled", id)
	}
	if e.backend.WindowExists(id) {
		if err := e.backend.MoveResize(id, toPlatformRect(original)); err != nil {
			return fmt.Errorf("restoring window %d: %w", id, err)
		}
	}
	e.logger.Info("window untiled", "window", id)

	if derr == nil {
		e.redistributeLocked(display, 0)
	}
	e.registry.RecalculateNeighbors()
	return nil
}

// AutoTile brings a window into the tiled row: the first window on a
// display maximizes, later windows trigger an equal redistribution.
func (e *Engine) AutoTile(id platform.WindowID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if meta, ok := e.findWindow(id); ok && e.cfg.IsExcluded(meta.AppID) {
		return fmt.Errorf("window %d (%s) is excluded from tiling", id, meta.AppID)
	}

	display, err := e.backend.DisplayForWindow(id)
	if err != nil {
		return fmt.Errorf("resolving display for window %d: %w", id, err)
	}

	if len(e.tiledOnDisplay(display)) == 0 {
		work := e.workArea(display)
		rect := tiling.ZoneRect(tiling.ZoneMaximize, work, e.cfg.InnerGap)
		return e.placeLocked(id, rect, tiling.ZoneAuto)
	}

	current, err := e.backend.WindowRect(id)
	if err != nil {
		return fmt.Errorf("reading rect of window %d: %w", id, err)
	}
	original := fromPlatformRect(current)
	zone := tiling.ZoneAuto
	tiled := true
	e.registry.SetWindow(id, tiling.WindowUpdate{
		Rect: &original, OriginalRect: &original, Zone: &zone, Tiled: &tiled,
	})
	e.redistributeLocked(display, id)
	e.registry.RecalculateNeighbors()
	return nil
}

// Retile redistributes the active display's tiled row into equal widths.
func (e *Engine) Retile() error {
	display, err := e.backend.ActiveDisplay()
	if err != nil {
		return fmt.Errorf("resolving active display: %w", err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.redistributeLocked(display, 0)
	e.registry.RecalculateNeighbors()
	return nil
}

// HandleWindowRemoved reacts to a window destroyed by the host: the entry
// is dropped, neighbor lists are purged, and the survivors redistribute.
func (e *Engine) HandleWindowRemoved(id platform.WindowID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, ok := e.registry.GetWindow(id)
	if !ok {
		return
	}
	e.registry.RemoveWindow(id)
	e.logger.Info("window removed", "window", id)

	// Redistribute on the display that hosted the window's rectangle.
	if display, err := e.backend.DisplayForPoint(state.Rect.Center().X, state.Rect.Center().Y); err == nil {
		e.redistributeLocked(display, 0)
	}
	e.registry.RecalculateNeighbors()
}

// PruneStale drops registry entries whose windows no longer exist and
// redistributes if anything was removed. Returns the number pruned.
func (e *Engine) PruneStale() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	pruned := 0
	for _, w := range e.registry.TiledWindows() {
		if !e.backend.WindowExists(w.ID) {
			e.registry.RemoveWindow(w.ID)
			pruned++
		}
	}
	if pruned > 0 {
		e.logger.Info("pruned stale windows", "count", pruned)
		if display, err := e.backend.ActiveDisplay(); err == nil {
			e.redistributeLocked(display, 0)
		}
		e.registry.RecalculateNeighbors()
	}
	return pruned
}

// TiledCount returns the number of tiled windows.
func (e *Engine) TiledCount() int {
	return len(e.registry.TiledWindows())
}

// TiledStates returns a snapshot of all tiled window states.
func (e *Engine) TiledStates() []tiling.WindowState {
	return e.registry.TiledWindows()
}

// redistributeLocked lays the display's tiled row out in equal widths,
// preserving left-to-right order, then heals any divergence between the
// requested and actual rectangles. primary names the window allowed to
// shrink during overflow correction; zero means the rightmost one.
func (e *Engine) redistributeLocked(display platform.Display, primary platform.WindowID) {
	states := e.tiledOnDisplay(display)
	if len(states) == 0 {
		return
	}
	work := e.workArea(display)
	gap := e.cfg.InnerGap

	sort.Slice(states, func(i, j int) bool { return states[i].Rect.X < states[j].Rect.X })
	ids := make([]platform.WindowID, len(states))
	for i, s := range states {
		ids[i] = s.ID
	}
	if primary == 0 {
		primary = ids[len(ids)-1]
	}

	plan := e.redistributor.EqualPlan(ids, work, gap)
	e.applyPlacements(plan, tiling.ZoneAuto)
	e.correctLocked(ids, primary, work, gap)
	e.logger.Info("redistributed", "windows", len(ids), "display", display.ID)
}

// correctLocked re-reads real rectangles and applies the overlap
// correction plan if the compositor overrode any requested size.
func (e *Engine) correctLocked(ids []platform.WindowID, primary platform.WindowID, work geometry.Rect, gap int) {
	actual := make([]tiling.WindowState, 0, len(ids))
	for _, id := range ids {
		rect, err := e.backend.WindowRect(id)
		if err != nil {
			continue
		}
		actual = append(actual, tiling.WindowState{ID: id, Rect: fromPlatformRect(rect), Tiled: true})
	}
	plan := e.redistributor.CorrectOverlaps(actual, primary, work, gap)
	if plan == nil {
		return
	}
	e.logger.Warn("layout needed correction", "windows", len(plan))
	e.applyPlacements(plan, "")
}

// applyPlacements moves windows and confirms the new rectangles back into
// the registry. An empty zone leaves each window's zone label untouched.
func (e *Engine) applyPlacements(placements []tiling.Placement, zone string) {
	for _, p := range placements {
		if err := e.backend.MoveResize(p.ID, toPlatformRect(p.Rect)); err != nil {
			e.logger.Warn("move failed", "window", p.ID, "error", err)
			continue
		}
		rect := p.Rect
		upd := tiling.WindowUpdate{Rect: &rect}
		if zone != "" {
			z := zone
			upd.Zone = &z
		}
		e.registry.SetWindow(p.ID, upd)
	}
}

// tiledOnDisplay filters the tiled set to windows whose centers fall on
// the given display.
func (e *Engine) tiledOnDisplay(display platform.Display) []tiling.WindowState {
	var out []tiling.WindowState
	for _, w := range e.registry.TiledWindows() {
		center := w.Rect.Center()
		d, err := e.backend.DisplayForPoint(center.X, center.Y)
		if err != nil || d.ID != display.ID {
			continue
		}
		out = append(out, w)
	}
	return out
}

// workArea converts a display's usable area to engine coordinates. The
// outer gap acts as extra screen padding on top of the inner gap that all
// layout formulas already apply at the work-area border.
func (e *Engine) workArea(display platform.Display) geometry.Rect {
	pad := e.cfg.OuterGap - e.cfg.InnerGap
	if pad < 0 {
		pad = 0
	}
	u := display.Usable
	return geometry.NewRect(u.X+pad, u.Y+pad, u.Width-2*pad, u.Height-2*pad)
}

// findWindow resolves window metadata via the backend's window list.
func (e *Engine) findWindow(id platform.WindowID) (platform.Window, bool) {
	display, err := e.backend.DisplayForWindow(id)
	if err != nil {
		return platform.Window{}, false
	}
	windows, err := e.backend.ListWindowsOnDisplay(display.ID)
	if err != nil {
		return platform.Window{}, false
	}
	for _, w := range windows {
		if w.ID == id {
			return w, true
		}
	}
	return platform.Window{}, false
}

func fromPlatformRect(r platform.Rect) geometry.Rect {
	return geometry.NewRect(r.X, r.Y, r.Width, r.Height)
}

func toPlatformRect(r geometry.Rect) platform.Rect {
	return platform.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}
