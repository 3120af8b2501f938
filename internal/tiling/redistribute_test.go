package tiling

import (
	"testing"

	"github.com/snaptile/snaptile/internal/geometry"
	"github.com/snaptile/snaptile/internal/platform"
)

func TestEqualPlan_TwoWindows(t *testing.T) {
	r := NewRedistributor(200, nil)
	work := geometry.NewRect(0, 0, 1920, 1080)

	plan := r.EqualPlan([]platform.WindowID{1, 2}, work, 8)

	// perWindow = (1920 - 3*8) / 2 = 948
	if len(plan) != 2 {
		t.Fatalf("expected 2 placements, got %d", len(plan))
	}
	if plan[0].Rect != geometry.NewRect(8, 8, 948, 1064) {
		t.Fatalf("unexpected first placement %+v", plan[0].Rect)
	}
	if plan[1].Rect != geometry.NewRect(964, 8, 948, 1064) {
		t.Fatalf("unexpected second placement %+v", plan[1].Rect)
	}
}

func TestEqualPlan_ThreeWindows(t *testing.T) {
	r := NewRedistributor(200, nil)
	work := geometry.NewRect(0, 0, 1920, 1080)

	plan := r.EqualPlan([]platform.WindowID{1, 2, 3}, work, 8)

	// perWindow = (1920 - 4*8) / 3 = 629
	wantX := []int{8, 645, 1282}
	for i, p := range plan {
		if p.Rect.X != wantX[i] || p.Rect.Width != 629 {
			t.Fatalf("placement %d: expected x=%d w=629, got %+v", i, wantX[i], p.Rect)
		}
	}

	// Total width plus gaps never exceeds the work area.
	total := 0
	for _, p := range plan {
		total += p.Rect.Width
	}
	if total+4*8 > work.Width {
		t.Fatalf("layout overflows work area: widths %d", total)
	}
}

func TestEqualPlan_Empty(t *testing.T) {
	r := NewRedistributor(200, nil)
	if plan := r.EqualPlan(nil, geometry.NewRect(0, 0, 1920, 1080), 8); plan != nil {
		t.Fatalf("expected nil plan for no windows, got %+v", plan)
	}
}

func TestInsertionIndex(t *testing.T) {
	r := NewRedistributor(200, nil)
	windows := []WindowState{
		{ID: 1, Rect: geometry.NewRect(8, 8, 948, 1064)},   // center x = 482
		{ID: 2, Rect: geometry.NewRect(964, 8, 948, 1064)}, // center x = 1438
	}

	if got := r.InsertionIndex(100, windows); got != 0 {
		t.Fatalf("expected index 0 for boundary left of both centers, got %d", got)
	}
	if got := r.InsertionIndex(956, windows); got != 1 {
		t.Fatalf("expected index 1 for boundary between centers, got %d", got)
	}
	if got := r.InsertionIndex(1900, windows); got != 2 {
		t.Fatalf("expected index 2 for boundary right of both centers, got %d", got)
	}
}

func TestInsertPlan_BetweenTwoEqualWindows(t *testing.T) {
	r := NewRedistributor(200, nil)
	work := geometry.NewRect(0, 0, 1920, 1080)
	existing := []WindowState{
		{ID: 1, Rect: geometry.NewRect(8, 8, 948, 1064), Tiled: true},
		{ID: 2, Rect: geometry.NewRect(964, 8, 948, 1064), Tiled: true},
	}

	plan := r.InsertPlan(existing, 3, 956, work, 8)

	if len(plan) != 3 {
		t.Fatalf("expected 3 placements, got %d", len(plan))
	}
	// availableWidth = 1920 - (16 + 16) = 1888; newWidth = 1888/3 = 629;
	// both existing scale to 629 as well.
	if plan[1].ID != 3 {
		t.Fatalf("expected new window in the middle slot, got id %d", plan[1].ID)
	}
	for i, p := range plan {
		if p.Rect.Width != 629 {
			t.Fatalf("placement %d: expected width 629, got %d", i, p.Rect.Width)
		}
		if p.Rect.Width < 200 {
			t.Fatalf("placement %d below minimum width: %+v", i, p.Rect)
		}
	}
	if plan[0].Rect.X != 8 || plan[1].Rect.X != 645 || plan[2].Rect.X != 1282 {
		t.Fatalf("unexpected x positions: %d %d %d", plan[0].Rect.X, plan[1].Rect.X, plan[2].Rect.X)
	}
}

func TestInsertPlan_ClampingRedistributesExcess(t *testing.T) {
	r := NewRedistributor(200, nil)
	work := geometry.NewRect(0, 0, 1000, 600)
	existing := []WindowState{
		{ID: 1, Rect: geometry.NewRect(0, 8, 400, 584), Tiled: true},
		{ID: 2, Rect: geometry.NewRect(410, 8, 400, 584), Tiled: true},
		{ID: 3, Rect: geometry.NewRect(820, 8, 210, 584), Tiled: true},
	}

	plan := r.InsertPlan(existing, 4, 0, work, 8)

	// availableWidth = 1000 - (16 + 24) = 960; newWidth = max(200, 240) = 240.
	// scaleFactor = 720/1010: windows 1 and 2 scale to 285, window 3 to 149
	// which clamps up to 200. The 50px excess comes back from the two
	// unclamped windows via ceiling division (25 each).
	byID := make(map[platform.WindowID]geometry.Rect)
	for _, p := range plan {
		byID[p.ID] = p.Rect
	}
	if byID[4].Width != 240 {
		t.Fatalf("expected new window width 240, got %d", byID[4].Width)
	}
	if byID[3].Width != 200 {
		t.Fatalf("expected clamped window at minimum 200, got %d", byID[3].Width)
	}
	if byID[1].Width != 260 || byID[2].Width != 260 {
		t.Fatalf("expected unclamped windows at 260, got %d and %d", byID[1].Width, byID[2].Width)
	}

	total := 0
	for _, p := range plan {
		if p.Rect.Width < 200 {
			t.Fatalf("placement below minimum width: %+v", p)
		}
		total += p.Rect.Width
	}
	// n+2 gaps around and between 4 windows.
	if total+5*8 > work.Width {
		t.Fatalf("layout overflows work area: widths sum to %d", total)
	}

	// Boundary at x=0 puts the new window first.
	if plan[0].ID != 4 {
		t.Fatalf("expected new window in first slot, got id %d", plan[0].ID)
	}
}

func TestInsertPlan_EmptyRowMaximizes(t *testing.T) {
	r := NewRedistributor(200, nil)
	work := geometry.NewRect(0, 0, 1920, 1080)

	plan := r.InsertPlan(nil, 7, 500, work, 8)

	if len(plan) != 1 || plan[0].Rect != geometry.NewRect(8, 8, 1904, 1064) {
		t.Fatalf("expected single maximized placement, got %+v", plan)
	}
}

func TestCorrectOverlaps_NoViolation(t *testing.T) {
	r := NewRedistributor(200, nil)
	work := geometry.NewRect(0, 0, 1920, 1080)
	windows := []WindowState{
		{ID: 1, Rect: geometry.NewRect(8, 8, 948, 1064), Tiled: true},
		{ID: 2, Rect: geometry.NewRect(964, 8, 948, 1064), Tiled: true},
	}

	if plan := r.CorrectOverlaps(windows, 1, work, 8); plan != nil {
		t.Fatalf("expected nil plan when gaps are within tolerance, got %+v", plan)
	}
}

func TestCorrectOverlaps_WithinTolerance(t *testing.T) {
	r := NewRedistributor(200, nil)
	work := geometry.NewRect(0, 0, 1920, 1080)
	// Actual gap is 12, expected 8: inside the 5px tolerance.
	windows := []WindowState{
		{ID: 1, Rect: geometry.NewRect(8, 8, 948, 1064), Tiled: true},
		{ID: 2, Rect: geometry.NewRect(968, 8, 944, 1064), Tiled: true},
	}

	if plan := r.CorrectOverlaps(windows, 2, work, 8); plan != nil {
		t.Fatalf("expected nil plan within tolerance, got %+v", plan)
	}
}

func TestCorrectOverlaps_OverWideGapLeftAlone(t *testing.T) {
	r := NewRedistributor(200, nil)
	work := geometry.NewRect(0, 0, 1920, 1080)
	// 40px between the windows, well past the tolerance, but compression
	// is the only trigger; loose rows stay as the user left them.
	windows := []WindowState{
		{ID: 1, Rect: geometry.NewRect(8, 8, 900, 1064), Tiled: true},
		{ID: 2, Rect: geometry.NewRect(948, 8, 900, 1064), Tiled: true},
	}

	if plan := r.CorrectOverlaps(windows, 1, work, 8); plan != nil {
		t.Fatalf("expected nil plan for an over-wide gap, got %+v", plan)
	}
}

func TestCorrectOverlaps_RepositionsOverlappingRow(t *testing.T) {
	r := NewRedistributor(200, nil)
	work := geometry.NewRect(0, 0, 1920, 1080)
	// Window 2 drifted left over window 1.
	windows := []WindowState{
		{ID: 1, Rect: geometry.NewRect(8, 8, 948, 1064), Tiled: true},
		{ID: 2, Rect: geometry.NewRect(900, 8, 948, 1064), Tiled: true},
	}

	plan := r.CorrectOverlaps(windows, 2, work, 8)

	if len(plan) != 2 {
		t.Fatalf("expected 2 placements, got %d", len(plan))
	}
	if plan[0].Rect.X != 8 || plan[1].Rect.X != 964 {
		t.Fatalf("expected contiguous repositioning to x=8 and x=964, got %d and %d",
			plan[0].Rect.X, plan[1].Rect.X)
	}
	// Widths are preserved: correction repositions, it does not resize.
	if plan[0].Rect.Width != 948 || plan[1].Rect.Width != 948 {
		t.Fatalf("correction must not change widths, got %d and %d",
			plan[0].Rect.Width, plan[1].Rect.Width)
	}
}

func TestCorrectOverlaps_OverflowShrinksPrimary(t *testing.T) {
	r := NewRedistributor(200, nil)
	work := geometry.NewRect(0, 0, 1920, 1080)
	// Window 1 was resized 52px too wide; repositioning alone overflows.
	windows := []WindowState{
		{ID: 1, Rect: geometry.NewRect(8, 8, 1000, 1064), Tiled: true},
		{ID: 2, Rect: geometry.NewRect(964, 8, 948, 1064), Tiled: true},
	}

	plan := r.CorrectOverlaps(windows, 1, work, 8)

	byID := make(map[platform.WindowID]geometry.Rect)
	for _, p := range plan {
		byID[p.ID] = p.Rect
	}
	if byID[1].Width != 948 {
		t.Fatalf("expected primary shrunk to 948, got %d", byID[1].Width)
	}
	if byID[2].X != 964 || byID[2].Width != 948 {
		t.Fatalf("expected second window back at x=964 w=948, got %+v", byID[2])
	}
	if byID[2].RightEdge() > work.RightEdge()-8 {
		t.Fatalf("row still overflows work area: %+v", byID[2])
	}
}

func TestCorrectOverlaps_PrimaryWithoutHeadroomKeepsWidths(t *testing.T) {
	r := NewRedistributor(200, nil)
	work := geometry.NewRect(0, 0, 500, 600)
	// Row genuinely does not fit; the primary is already at minimum.
	windows := []WindowState{
		{ID: 1, Rect: geometry.NewRect(8, 8, 200, 584), Tiled: true},
		{ID: 2, Rect: geometry.NewRect(100, 8, 400, 584), Tiled: true},
	}

	plan := r.CorrectOverlaps(windows, 1, work, 8)

	for _, p := range plan {
		if p.Rect.Width < 200 {
			t.Fatalf("no placement may fall below minimum width, got %+v", p)
		}
	}
}

func TestCorrectOverlaps_Empty(t *testing.T) {
	r := NewRedistributor(200, nil)
	if plan := r.CorrectOverlaps(nil, 1, geometry.NewRect(0, 0, 1920, 1080), 8); plan != nil {
		t.Fatalf("expected nil plan for empty input, got %+v", plan)
	}
}
