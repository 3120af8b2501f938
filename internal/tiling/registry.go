package tiling

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/snaptile/snaptile/internal/geometry"
	"github.com/snaptile/snaptile/internal/platform"
)

// Direction identifies one side of a window for neighbor lookups.
type Direction int

const (
	DirLeft Direction = iota
	DirRight
	DirTop
	DirBottom
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	case DirTop:
		return "top"
	case DirBottom:
		return "bottom"
	default:
		return "unknown"
	}
}

// Neighbors holds the adjacent window ids per side. The graph is directional:
// A listing B as a right neighbor does not imply B lists A as a left
// neighbor, because each direction is classified independently against the
// edge tolerance and overlap threshold.
type Neighbors struct {
	Left   []platform.WindowID
	Right  []platform.WindowID
	Top    []platform.WindowID
	Bottom []platform.WindowID
}

func (n Neighbors) forDirection(dir Direction) []platform.WindowID {
	switch dir {
	case DirLeft:
		return n.Left
	case DirRight:
		return n.Right
	case DirTop:
		return n.Top
	case DirBottom:
		return n.Bottom
	default:
		return nil
	}
}

// WindowState is the registry's view of one tracked window.
type WindowState struct {
	ID platform.WindowID
	// Rect is the engine's authoritative rectangle. It may lag the real
	// on-screen rectangle until the caller confirms via SetWindow.
	Rect geometry.Rect
	// OriginalRect is captured when the window first becomes tiled and is
	// used to restore it on untile. Set once, cleared only on removal.
	OriginalRect geometry.Rect
	// Zone records the last operation that produced this state. It is
	// informational only; no algorithm branches on it.
	Zone      string
	Tiled     bool
	Neighbors Neighbors
}

// WindowUpdate is a partial state for SetWindow. Nil fields keep the
// existing value (or the zero baseline for new entries).
type WindowUpdate struct {
	Rect         *geometry.Rect
	OriginalRect *geometry.Rect
	Zone         *string
	Tiled        *bool
}

// ChangeKind describes a registry mutation delivered to observers.
type ChangeKind int

const (
	ChangeUpserted ChangeKind = iota
	ChangeRemoved
	ChangeCleared
)

// Change is the event payload delivered to observers.
type Change struct {
	Kind ChangeKind
	ID   platform.WindowID
}

// Observer receives registry change events. A panicking observer is
// isolated and logged; delivery to the remaining observers continues.
type Observer func(Change)

// Registry is the single source of truth for tiled-window state and the
// derived neighbor adjacency graph.
type Registry struct {
	mu            sync.RWMutex
	windows       map[platform.WindowID]*WindowState
	observers     map[int]Observer
	nextObserver  int
	overlapMin    int
	edgeTolerance int
	logger        *slog.Logger
}

// NewRegistry creates an empty registry. overlapMin is the minimum
// projected overlap for neighbor classification; edgeTolerance is the
// maximum facing-edge distance.
func NewRegistry(overlapMin, edgeTolerance int, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		windows:       make(map[platform.WindowID]*WindowState),
		observers:     make(map[int]Observer),
		overlapMin:    overlapMin,
		edgeTolerance: edgeTolerance,
		logger:        logger,
	}
}

// SetThresholds updates the neighbor classification parameters. Takes
// effect on the next RecalculateNeighbors.
func (r *Registry) SetThresholds(overlapMin, edgeTolerance int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overlapMin = overlapMin
	r.edgeTolerance = edgeTolerance
}

// Subscribe registers an observer and returns its id for Unsubscribe.
func (r *Registry) Subscribe(obs Observer) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextObserver
	r.nextObserver++
	r.observers[id] = obs
	return id
}

// Unsubscribe removes a previously registered observer.
func (r *Registry) Unsubscribe(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.observers, id)
}

// SetWindow upserts a window's state from a partial update and notifies
// observers. New entries start from a zero-rect, untiled baseline.
func (r *Registry) SetWindow(id platform.WindowID, upd WindowUpdate) {
	r.mu.Lock()
	state, ok := r.windows[id]
	if !ok {
		state = &WindowState{ID: id}
		r.windows[id] = state
	}
	if upd.Rect != nil {
		state.Rect = *upd.Rect
	}
	if upd.OriginalRect != nil {
		state.OriginalRect = *upd.OriginalRect
	}
	if upd.Zone != nil {
		state.Zone = *upd.Zone
	}
	if upd.Tiled != nil {
		state.Tiled = *upd.Tiled
	}
	r.mu.Unlock()

	r.notify(Change{Kind: ChangeUpserted, ID: id})
}

// GetWindow returns a copy of the window's state.
func (r *Registry) GetWindow(id platform.WindowID) (WindowState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.windows[id]
	if !ok {
		return WindowState{}, false
	}
	return *state, true
}

// RemoveWindow deletes the entry and purges the id from every other
// entry's neighbor lists. No-op if the id is unknown.
func (r *Registry) RemoveWindow(id platform.WindowID) {
	r.mu.Lock()
	if _, ok := r.windows[id]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.windows, id)
	for _, other := range r.windows {
		other.Neighbors = Neighbors{
			Left:   purgeID(other.Neighbors.Left, id),
			Right:  purgeID(other.Neighbors.Right, id),
			Top:    purgeID(other.Neighbors.Top, id),
			Bottom: purgeID(other.Neighbors.Bottom, id),
		}
	}
	r.mu.Unlock()

	r.notify(Change{Kind: ChangeRemoved, ID: id})
}

// Untile removes the window and returns the rectangle it should be
// restored to. The second return is false if the window was not tracked.
func (r *Registry) Untile(id platform.WindowID) (geometry.Rect, bool) {
	r.mu.RLock()
	state, ok := r.windows[id]
	var original geometry.Rect
	if ok {
		original = state.OriginalRect
	}
	r.mu.RUnlock()
	if !ok {
		return geometry.Rect{}, false
	}
	r.RemoveWindow(id)
	return original, true
}

// TiledWindows returns copies of all entries with Tiled set, sorted by id
// for deterministic iteration. Callers needing spatial order sort by X.
func (r *Registry) TiledWindows() []WindowState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]WindowState, 0, len(r.windows))
	for _, state := range r.windows {
		if state.Tiled {
			out = append(out, *state)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of tracked windows.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.windows)
}

// Neighbors resolves the id list for one side to live window states,
// silently dropping ids that no longer resolve.
func (r *Registry) Neighbors(id platform.WindowID, dir Direction) []WindowState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.windows[id]
	if !ok {
		return nil
	}
	ids := state.Neighbors.forDirection(dir)
	out := make([]WindowState, 0, len(ids))
	for _, nid := range ids {
		if neighbor, ok := r.windows[nid]; ok {
			out = append(out, *neighbor)
		}
	}
	return out
}

// RecalculateNeighbors recomputes the full adjacency graph over all tiled
// windows. This is the sole mechanism that keeps the graph consistent and
// must run after any operation that changes multiple rectangles at once.
// O(n²) over the tiled window count.
func (r *Registry) RecalculateNeighbors() {
	r.mu.Lock()
	defer r.mu.Unlock()

	tiled := make([]*WindowState, 0, len(r.windows))
	for _, state := range r.windows {
		if state.Tiled {
			state.Neighbors = Neighbors{}
			tiled = append(tiled, state)
		}
	}
	sort.Slice(tiled, func(i, j int) bool { return tiled[i].ID < tiled[j].ID })

	for _, w := range tiled {
		for _, other := range tiled {
			if w.ID == other.ID {
				continue
			}
			wr, or := w.Rect, other.Rect

			if geometry.Abs(wr.RightEdge()-or.X) <= r.edgeTolerance &&
				geometry.VerticalOverlap(wr, or, r.overlapMin) {
				w.Neighbors.Right = append(w.Neighbors.Right, other.ID)
			}
			if geometry.Abs(or.RightEdge()-wr.X) <= r.edgeTolerance &&
				geometry.VerticalOverlap(wr, or, r.overlapMin) {
				w.Neighbors.Left = append(w.Neighbors.Left, other.ID)
			}
			if geometry.Abs(or.BottomEdge()-wr.Y) <= r.edgeTolerance &&
				geometry.HorizontalOverlap(wr, or, r.overlapMin) {
				w.Neighbors.Top = append(w.Neighbors.Top, other.ID)
			}
			if geometry.Abs(wr.BottomEdge()-or.Y) <= r.edgeTolerance &&
				geometry.HorizontalOverlap(wr, or, r.overlapMin) {
				w.Neighbors.Bottom = append(w.Neighbors.Bottom, other.ID)
			}
		}
	}
}

// Clear empties the registry and drops all observer registrations.
// In-flight state is discarded without notifications beyond the final
// cleared event.
func (r *Registry) Clear() {
	r.mu.Lock()
	observers := r.observers
	r.windows = make(map[platform.WindowID]*WindowState)
	r.observers = make(map[int]Observer)
	r.mu.Unlock()

	for _, obs := range observers {
		r.dispatch(obs, Change{Kind: ChangeCleared})
	}
}

func (r *Registry) notify(change Change) {
	r.mu.RLock()
	observers := make([]Observer, 0, len(r.observers))
	for _, obs := range r.observers {
		observers = append(observers, obs)
	}
	r.mu.RUnlock()

	for _, obs := range observers {
		r.dispatch(obs, change)
	}
}

// dispatch isolates a single observer: a panic is logged and does not
// block delivery to the remaining observers.
func (r *Registry) dispatch(obs Observer, change Change) {
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("registry observer panicked", "error", err, "window", change.ID)
		}
	}()
	obs(change)
}

func purgeID(ids []platform.WindowID, remove platform.WindowID) []platform.WindowID {
	out := ids[:0]
	for _, id := range ids {
		if id != remove {
			out = append(out, id)
		}
	}
	return out
}
