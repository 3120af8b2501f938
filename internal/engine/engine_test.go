package engine

import (
	"fmt"
	"testing"

	"github.com/snaptile/snaptile/internal/config"
	"github.com/snaptile/snaptile/internal/geometry"
	"github.com/snaptile/snaptile/internal/platform"
)

// fakeBackend is an in-memory Backend with a single 1920x1080 display
// unless configured otherwise.
type fakeBackend struct {
	displays []platform.Display
	windows  map[platform.WindowID]*platform.Window
	active   platform.WindowID
	pointer  platform.Pointer

	// minWidth simulates a compositor size hint per window: any
	// MoveResize request narrower than this is silently clamped up,
	// like a terminal enforcing cell increments.
	minWidth map[platform.WindowID]int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		displays: []platform.Display{{
			ID:     0,
			Name:   "fake-0",
			Bounds: platform.Rect{Width: 1920, Height: 1080},
			Usable: platform.Rect{Width: 1920, Height: 1080},
		}},
		windows:  make(map[platform.WindowID]*platform.Window),
		minWidth: make(map[platform.WindowID]int),
	}
}

func (f *fakeBackend) addWindow(id platform.WindowID, appID string, rect platform.Rect) {
	f.windows[id] = &platform.Window{ID: id, AppID: appID, Bounds: rect}
}

func (f *fakeBackend) Displays() ([]platform.Display, error) { return f.displays, nil }

func (f *fakeBackend) ActiveDisplay() (platform.Display, error) { return f.displays[0], nil }

func (f *fakeBackend) ActiveWindow() (platform.WindowID, error) {
	if f.active == 0 {
		return 0, fmt.Errorf("no active window")
	}
	return f.active, nil
}

func (f *fakeBackend) ListWindowsOnDisplay(displayID int) ([]platform.Window, error) {
	var out []platform.Window
	for _, w := range f.windows {
		out = append(out, *w)
	}
	return out, nil
}

func (f *fakeBackend) WindowRect(id platform.WindowID) (platform.Rect, error) {
	w, ok := f.windows[id]
	if !ok {
		return platform.Rect{}, fmt.Errorf("window %d not found", id)
	}
	return w.Bounds, nil
}

func (f *fakeBackend) WindowExists(id platform.WindowID) bool {
	_, ok := f.windows[id]
	return ok
}

func (f *fakeBackend) MoveResize(id platform.WindowID, bounds platform.Rect) error {
	w, ok := f.windows[id]
	if !ok {
		return fmt.Errorf("window %d not found", id)
	}
	if min, capped := f.minWidth[id]; capped && bounds.Width < min {
		bounds.Width = min
	}
	w.Bounds = bounds
	return nil
}

func (f *fakeBackend) Raise(id platform.WindowID) error { return nil }

func (f *fakeBackend) Pointer() (platform.Pointer, error) { return f.pointer, nil }

func (f *fakeBackend) DisplayForWindow(id platform.WindowID) (platform.Display, error) {
	if _, ok := f.windows[id]; !ok {
		return platform.Display{}, fmt.Errorf("window %d not found", id)
	}
	return f.displays[0], nil
}

func (f *fakeBackend) DisplayForPoint(x, y int) (platform.Display, error) {
	return f.displays[0], nil
}

func newTestEngine() (*Engine, *fakeBackend) {
	cfg := config.Default()
	// Keep the background poll loop out of the way; tests drive ticks
	// directly.
	cfg.PollIntervalMS = 10000
	backend := newFakeBackend()
	return New(backend, cfg, nil), backend
}

func TestSnapWindow_LeftHalfScenario(t *testing.T) {
	e, backend := newTestEngine()
	backend.addWindow(1, "term", platform.Rect{X: 200, Y: 200, Width: 640, Height: 480})

	if err := e.SnapWindow(1, "left"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := backend.WindowRect(1)
	want := platform.Rect{X: 8, Y: 8, Width: 948, Height: 1064}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	state, ok := e.Registry().GetWindow(1)
	if !ok || !state.Tiled || state.Zone != "left" {
		t.Fatalf("expected tiled state with zone left, got %+v", state)
	}
	if state.OriginalRect != geometry.NewRect(200, 200, 640, 480) {
		t.Fatalf("expected original rect captured, got %+v", state.OriginalRect)
	}
}

func TestSnapWindow_ThirdZones(t *testing.T) {
	e, backend := newTestEngine()
	backend.addWindow(1, "term", platform.Rect{X: 0, Y: 0, Width: 640, Height: 480})

	if err := e.SnapWindow(1, "center-third"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := backend.WindowRect(1)
	// thirdW = (1920-32)/3 = 629, center slot at x = 8 + 637 = 645
	want := platform.Rect{X: 645, Y: 8, Width: 629, Height: 1064}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestSnapWindow_ExcludedApp(t *testing.T) {
	e, backend := newTestEngine()
	e.cfg.ExcludedApps = []string{"mpv"}
	backend.addWindow(1, "mpv", platform.Rect{X: 0, Y: 0, Width: 640, Height: 480})

	if err := e.SnapWindow(1, "left"); err == nil {
		t.Fatalf("expected error snapping excluded app")
	}
	if _, ok := e.Registry().GetWindow(1); ok {
		t.Fatalf("excluded window must never enter the registry")
	}
}

func TestSnapActiveWindow(t *testing.T) {
	e, backend := newTestEngine()
	backend.addWindow(4, "term", platform.Rect{X: 0, Y: 0, Width: 640, Height: 480})
	backend.active = 4

	if err := e.SnapActiveWindow("right"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := backend.WindowRect(4)
	if got.X != 964 || got.Width != 948 {
		t.Fatalf("expected right half at x=964 w=948, got %+v", got)
	}
}

func TestUntile_RoundTrip(t *testing.T) {
	e, backend := newTestEngine()
	original := platform.Rect{X: 300, Y: 150, Width: 700, Height: 500}
	backend.addWindow(1, "term", original)

	if err := e.SnapWindow(1, "maximize"); err != nil {
		t.Fatalf("snap failed: %v", err)
	}
	if err := e.Untile(1); err != nil {
		t.Fatalf("untile failed: %v", err)
	}

	got, _ := backend.WindowRect(1)
	if got != original {
		t.Fatalf("expected original rect %+v restored, got %+v", original, got)
	}
	if e.TiledCount() != 0 {
		t.Fatalf("expected empty registry after untile, got %d", e.TiledCount())
	}
}

func TestUntile_NotTiled(t *testing.T) {
	e, backend := newTestEngine()
	backend.addWindow(1, "term", platform.Rect{Width: 640, Height: 480})

	if err := e.Untile(1); err == nil {
		t.Fatalf("expected error untiling untracked window")
	}
}

func TestAutoTile_FirstWindowMaximizes(t *testing.T) {
	e, backend := newTestEngine()
	backend.addWindow(1, "term", platform.Rect{X: 100, Y: 100, Width: 640, Height: 480})

	if err := e.AutoTile(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := backend.WindowRect(1)
	want := platform.Rect{X: 8, Y: 8, Width: 1904, Height: 1064}
	if got != want {
		t.Fatalf("expected maximize %+v, got %+v", want, got)
	}
	state, _ := e.Registry().GetWindow(1)
	if state.Zone != "auto" {
		t.Fatalf("expected zone auto, got %q", state.Zone)
	}
}

func TestAutoTile_SecondWindowRedistributes(t *testing.T) {
	e, backend := newTestEngine()
	backend.addWindow(1, "term", platform.Rect{X: 100, Y: 100, Width: 640, Height: 480})
	backend.addWindow(2, "edit", platform.Rect{X: 900, Y: 300, Width: 640, Height: 480})

	if err := e.AutoTile(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.AutoTile(2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r1, _ := backend.WindowRect(1)
	r2, _ := backend.WindowRect(2)
	if r1.Width != 948 || r2.Width != 948 {
		t.Fatalf("expected two 948-wide windows, got %d and %d", r1.Width, r2.Width)
	}
	if r1.X != 8 || r2.X != 964 {
		t.Fatalf("expected x positions 8 and 964, got %d and %d", r1.X, r2.X)
	}
}

func TestHandleWindowRemoved_SurvivorsRedistribute(t *testing.T) {
	e, backend := newTestEngine()
	for i := platform.WindowID(1); i <= 3; i++ {
		backend.addWindow(i, "term", platform.Rect{X: int(i) * 100, Y: 100, Width: 640, Height: 480})
		if err := e.AutoTile(i); err != nil {
			t.Fatalf("auto tile %d failed: %v", i, err)
		}
	}

	// Three tiled windows occupy thirds.
	r1, _ := backend.WindowRect(1)
	if r1.Width != 629 {
		t.Fatalf("expected three-way split width 629, got %d", r1.Width)
	}

	delete(backend.windows, 2)
	e.HandleWindowRemoved(2)

	r1, _ = backend.WindowRect(1)
	r3, _ := backend.WindowRect(3)
	if r1.Width != 948 || r3.Width != 948 {
		t.Fatalf("expected survivors at width 948, got %d and %d", r1.Width, r3.Width)
	}
	if e.TiledCount() != 2 {
		t.Fatalf("expected 2 tiled windows, got %d", e.TiledCount())
	}
}

func TestHandleWindowRemoved_UnknownWindow(t *testing.T) {
	e, _ := newTestEngine()
	e.HandleWindowRemoved(99)
	if e.TiledCount() != 0 {
		t.Fatalf("expected no state change, got %d tiled", e.TiledCount())
	}
}

func TestPruneStale_RemovesVanishedWindows(t *testing.T) {
	e, backend := newTestEngine()
	backend.addWindow(1, "term", platform.Rect{X: 100, Y: 100, Width: 640, Height: 480})
	backend.addWindow(2, "edit", platform.Rect{X: 900, Y: 100, Width: 640, Height: 480})
	if err := e.AutoTile(1); err != nil {
		t.Fatalf("auto tile failed: %v", err)
	}
	if err := e.AutoTile(2); err != nil {
		t.Fatalf("auto tile failed: %v", err)
	}

	delete(backend.windows, 1)

	if pruned := e.PruneStale(); pruned != 1 {
		t.Fatalf("expected 1 pruned, got %d", pruned)
	}
	r2, _ := backend.WindowRect(2)
	if r2.Width != 1904 {
		t.Fatalf("expected lone survivor redistributed to 1904, got %d", r2.Width)
	}
}

func TestPruneStale_NothingStale(t *testing.T) {
	e, backend := newTestEngine()
	backend.addWindow(1, "term", platform.Rect{Width: 640, Height: 480})
	if err := e.SnapWindow(1, "left"); err != nil {
		t.Fatalf("snap failed: %v", err)
	}
	if pruned := e.PruneStale(); pruned != 0 {
		t.Fatalf("expected 0 pruned, got %d", pruned)
	}
}

func TestRetile_EqualizesRow(t *testing.T) {
	e, backend := newTestEngine()
	backend.addWindow(1, "term", platform.Rect{Width: 640, Height: 480})
	backend.addWindow(2, "edit", platform.Rect{X: 1000, Width: 640, Height: 480})
	if err := e.SnapWindow(1, "left"); err != nil {
		t.Fatalf("snap failed: %v", err)
	}
	if err := e.SnapWindow(2, "right"); err != nil {
		t.Fatalf("snap failed: %v", err)
	}

	// Skew the row, then retile.
	backend.MoveResize(1, platform.Rect{X: 8, Y: 8, Width: 500, Height: 1064})

	if err := e.Retile(); err != nil {
		t.Fatalf("retile failed: %v", err)
	}
	r1, _ := backend.WindowRect(1)
	r2, _ := backend.WindowRect(2)
	if r1.Width != 948 || r2.Width != 948 {
		t.Fatalf("expected equal widths 948, got %d and %d", r1.Width, r2.Width)
	}
}

func TestRedistribute_CorrectionHealsCompositorOverride(t *testing.T) {
	e, backend := newTestEngine()
	backend.addWindow(1, "term", platform.Rect{X: 100, Width: 640, Height: 480})
	backend.addWindow(2, "edit", platform.Rect{X: 1000, Width: 640, Height: 480})
	// Window 1 refuses to shrink below 1000 wide, so the 948 request
	// from the equal split overlaps window 2 and triggers correction.
	backend.minWidth[1] = 1000
	if err := e.AutoTile(1); err != nil {
		t.Fatalf("auto tile failed: %v", err)
	}
	if err := e.AutoTile(2); err != nil {
		t.Fatalf("auto tile failed: %v", err)
	}

	r1, _ := backend.WindowRect(1)
	r2, _ := backend.WindowRect(2)
	if r1.Width != 1000 {
		t.Fatalf("expected constrained window kept at 1000, got %d", r1.Width)
	}
	// Correction repositions window 2 contiguously and shrinks it (the
	// primary) to absorb the overflow.
	if r2.X-(r1.X+r1.Width) != 8 {
		t.Fatalf("expected 8px gap after correction, got %d", r2.X-(r1.X+r1.Width))
	}
	if r2.X+r2.Width > 1912 {
		t.Fatalf("row overflows work area: %+v", r2)
	}
}

func TestReload_PreservesTiledState(t *testing.T) {
	e, backend := newTestEngine()
	backend.addWindow(1, "term", platform.Rect{Width: 640, Height: 480})
	if err := e.SnapWindow(1, "left"); err != nil {
		t.Fatalf("snap failed: %v", err)
	}

	cfg := config.Default()
	cfg.MinWindowWidth = 300
	e.Reload(cfg)

	if e.TiledCount() != 1 {
		t.Fatalf("expected tiled state to survive reload, got %d", e.TiledCount())
	}
}

func TestClose_DiscardsSessionAndState(t *testing.T) {
	e, backend := newTestEngine()
	backend.addWindow(1, "term", platform.Rect{Width: 640, Height: 480})
	if err := e.SnapWindow(1, "left"); err != nil {
		t.Fatalf("snap failed: %v", err)
	}
	e.HandleGrabBegin(1, platform.OpMove)

	e.Close()

	if e.session != nil {
		t.Fatalf("expected session discarded on close")
	}
	if e.TiledCount() != 0 {
		t.Fatalf("expected registry cleared on close, got %d", e.TiledCount())
	}
}
