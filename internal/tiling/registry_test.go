package tiling

import (
	"testing"

	"github.com/snaptile/snaptile/internal/geometry"
	"github.com/snaptile/snaptile/internal/platform"
)

func newTestRegistry() *Registry {
	return NewRegistry(50, 10, nil)
}

func setTiled(r *Registry, id platform.WindowID, rect geometry.Rect) {
	tiled := true
	r.SetWindow(id, WindowUpdate{Rect: &rect, OriginalRect: &rect, Tiled: &tiled})
}

func TestSetWindow_PartialUpdateKeepsExistingFields(t *testing.T) {
	r := newTestRegistry()
	setTiled(r, 1, geometry.NewRect(8, 8, 948, 1064))

	zone := ZoneLeft
	r.SetWindow(1, WindowUpdate{Zone: &zone})

	state, ok := r.GetWindow(1)
	if !ok {
		t.Fatalf("expected window 1 to exist")
	}
	if state.Zone != ZoneLeft {
		t.Fatalf("expected zone %q, got %q", ZoneLeft, state.Zone)
	}
	if state.Rect.Width != 948 || !state.Tiled {
		t.Fatalf("partial update clobbered existing fields: %+v", state)
	}
}

func TestSetWindow_NewEntryStartsUntiled(t *testing.T) {
	r := newTestRegistry()
	zone := ZoneAuto
	r.SetWindow(7, WindowUpdate{Zone: &zone})

	state, ok := r.GetWindow(7)
	if !ok {
		t.Fatalf("expected window 7 to exist")
	}
	if state.Tiled {
		t.Fatalf("new entry should start untiled")
	}
	if state.Rect != (geometry.Rect{}) {
		t.Fatalf("new entry should start with zero rect, got %+v", state.Rect)
	}
}

func TestRecalculateNeighbors_SideBySide(t *testing.T) {
	r := newTestRegistry()
	setTiled(r, 1, geometry.NewRect(8, 8, 948, 1064))
	setTiled(r, 2, geometry.NewRect(964, 8, 948, 1064))

	r.RecalculateNeighbors()

	// Facing edges are 8px apart, within the 10px tolerance.
	right := r.Neighbors(1, DirRight)
	if len(right) != 1 || right[0].ID != 2 {
		t.Fatalf("expected window 2 as right neighbor of 1, got %+v", right)
	}
	left := r.Neighbors(2, DirLeft)
	if len(left) != 1 || left[0].ID != 1 {
		t.Fatalf("expected window 1 as left neighbor of 2, got %+v", left)
	}
	if top := r.Neighbors(1, DirTop); len(top) != 0 {
		t.Fatalf("expected no top neighbors, got %+v", top)
	}
}

func TestRecalculateNeighbors_EdgeTooFar(t *testing.T) {
	r := newTestRegistry()
	setTiled(r, 1, geometry.NewRect(0, 0, 500, 500))
	// Facing edges 11px apart, just past tolerance.
	setTiled(r, 2, geometry.NewRect(511, 0, 500, 500))

	r.RecalculateNeighbors()

	if n := r.Neighbors(1, DirRight); len(n) != 0 {
		t.Fatalf("expected no neighbors past edge tolerance, got %+v", n)
	}
}

func TestRecalculateNeighbors_InsufficientOverlap(t *testing.T) {
	r := newTestRegistry()
	setTiled(r, 1, geometry.NewRect(0, 0, 500, 100))
	// Adjacent on x, but vertical overlap is only 40 < 50.
	setTiled(r, 2, geometry.NewRect(505, 60, 500, 100))

	r.RecalculateNeighbors()

	if n := r.Neighbors(1, DirRight); len(n) != 0 {
		t.Fatalf("expected no neighbors below overlap minimum, got %+v", n)
	}
}

func TestRecalculateNeighbors_StackedVertically(t *testing.T) {
	r := newTestRegistry()
	setTiled(r, 1, geometry.NewRect(8, 8, 948, 528))
	setTiled(r, 2, geometry.NewRect(8, 544, 948, 528))

	r.RecalculateNeighbors()

	bottom := r.Neighbors(1, DirBottom)
	if len(bottom) != 1 || bottom[0].ID != 2 {
		t.Fatalf("expected window 2 as bottom neighbor of 1, got %+v", bottom)
	}
	top := r.Neighbors(2, DirTop)
	if len(top) != 1 || top[0].ID != 1 {
		t.Fatalf("expected window 1 as top neighbor of 2, got %+v", top)
	}
}

func TestRecalculateNeighbors_IgnoresUntiled(t *testing.T) {
	r := newTestRegistry()
	setTiled(r, 1, geometry.NewRect(8, 8, 948, 1064))
	rect := geometry.NewRect(964, 8, 948, 1064)
	r.SetWindow(2, WindowUpdate{Rect: &rect})

	r.RecalculateNeighbors()

	if n := r.Neighbors(1, DirRight); len(n) != 0 {
		t.Fatalf("untiled window should not enter the graph, got %+v", n)
	}
}

func TestRemoveWindow_PurgesNeighborLists(t *testing.T) {
	r := newTestRegistry()
	setTiled(r, 1, geometry.NewRect(8, 8, 948, 1064))
	setTiled(r, 2, geometry.NewRect(964, 8, 948, 1064))
	r.RecalculateNeighbors()

	r.RemoveWindow(2)

	if _, ok := r.GetWindow(2); ok {
		t.Fatalf("expected window 2 removed")
	}
	state, _ := r.GetWindow(1)
	if len(state.Neighbors.Right) != 0 {
		t.Fatalf("expected window 2 purged from neighbor lists, got %+v", state.Neighbors.Right)
	}
}

func TestNeighbors_DropsStaleIDs(t *testing.T) {
	r := newTestRegistry()
	setTiled(r, 1, geometry.NewRect(8, 8, 948, 1064))
	setTiled(r, 2, geometry.NewRect(964, 8, 948, 1064))
	r.RecalculateNeighbors()

	// Simulate an entry vanishing without going through RemoveWindow.
	r.mu.Lock()
	delete(r.windows, 2)
	r.mu.Unlock()

	if n := r.Neighbors(1, DirRight); len(n) != 0 {
		t.Fatalf("expected stale neighbor id dropped, got %+v", n)
	}
}

func TestUntile_ReturnsOriginalRectAndRemoves(t *testing.T) {
	r := newTestRegistry()
	original := geometry.NewRect(100, 120, 640, 480)
	tiled := true
	snapped := geometry.NewRect(8, 8, 948, 1064)
	r.SetWindow(3, WindowUpdate{Rect: &snapped, OriginalRect: &original, Tiled: &tiled})

	got, ok := r.Untile(3)
	if !ok {
		t.Fatalf("expected untile to succeed")
	}
	if got != original {
		t.Fatalf("expected original rect %+v, got %+v", original, got)
	}
	if _, ok := r.GetWindow(3); ok {
		t.Fatalf("expected window removed after untile")
	}
}

func TestUntile_UnknownWindow(t *testing.T) {
	r := newTestRegistry()
	if _, ok := r.Untile(99); ok {
		t.Fatalf("expected untile of unknown window to fail")
	}
}

func TestTiledWindows_SortedByID(t *testing.T) {
	r := newTestRegistry()
	setTiled(r, 5, geometry.NewRect(964, 8, 948, 1064))
	setTiled(r, 2, geometry.NewRect(8, 8, 948, 1064))
	rect := geometry.NewRect(0, 0, 100, 100)
	r.SetWindow(9, WindowUpdate{Rect: &rect})

	tiled := r.TiledWindows()
	if len(tiled) != 2 {
		t.Fatalf("expected 2 tiled windows, got %d", len(tiled))
	}
	if tiled[0].ID != 2 || tiled[1].ID != 5 {
		t.Fatalf("expected id order [2 5], got [%d %d]", tiled[0].ID, tiled[1].ID)
	}
}

func TestObservers_ReceiveChanges(t *testing.T) {
	r := newTestRegistry()
	var got []Change
	r.Subscribe(func(c Change) { got = append(got, c) })

	setTiled(r, 1, geometry.NewRect(8, 8, 948, 1064))
	r.RemoveWindow(1)

	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Kind != ChangeUpserted || got[0].ID != 1 {
		t.Fatalf("expected upsert for window 1, got %+v", got[0])
	}
	if got[1].Kind != ChangeRemoved || got[1].ID != 1 {
		t.Fatalf("expected removal for window 1, got %+v", got[1])
	}
}

func TestObservers_PanicIsIsolated(t *testing.T) {
	r := newTestRegistry()
	r.Subscribe(func(Change) { panic("observer bug") })
	delivered := 0
	r.Subscribe(func(Change) { delivered++ })

	setTiled(r, 1, geometry.NewRect(8, 8, 948, 1064))

	if delivered != 1 {
		t.Fatalf("expected healthy observer to receive event despite sibling panic, got %d", delivered)
	}
}

func TestUnsubscribe_StopsDelivery(t *testing.T) {
	r := newTestRegistry()
	delivered := 0
	id := r.Subscribe(func(Change) { delivered++ })
	r.Unsubscribe(id)

	setTiled(r, 1, geometry.NewRect(8, 8, 948, 1064))

	if delivered != 0 {
		t.Fatalf("expected no delivery after unsubscribe, got %d", delivered)
	}
}

func TestClear_EmptiesStateAndObservers(t *testing.T) {
	r := newTestRegistry()
	setTiled(r, 1, geometry.NewRect(8, 8, 948, 1064))
	var kinds []ChangeKind
	r.Subscribe(func(c Change) { kinds = append(kinds, c.Kind) })

	r.Clear()

	if r.Len() != 0 {
		t.Fatalf("expected empty registry after clear, got %d entries", r.Len())
	}
	if len(kinds) != 1 || kinds[0] != ChangeCleared {
		t.Fatalf("expected single cleared event, got %+v", kinds)
	}

	// Observer registrations do not survive a clear.
	setTiled(r, 2, geometry.NewRect(8, 8, 948, 1064))
	if len(kinds) != 1 {
		t.Fatalf("expected no delivery to dropped observer, got %+v", kinds)
	}
}
