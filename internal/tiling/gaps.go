package tiling

import (
	"sort"

	"github.com/snaptile/snaptile/internal/geometry"
	"github.com/snaptile/snaptile/internal/platform"
)

// GapPlanner finds untiled regions wide enough to host a window, and
// seams between adjacent tiled windows where a window can be inserted.
// All methods are pure functions of the registry contents and a point.
type GapPlanner struct {
	registry          *Registry
	minWidth          int
	boundaryThreshold int
}

// NewGapPlanner creates a gap planner. boundaryThreshold is the maximum
// cursor distance from a window edge for seam detection.
func NewGapPlanner(registry *Registry, minWidth, boundaryThreshold int) *GapPlanner {
	return &GapPlanner{
		registry:          registry,
		minWidth:          minWidth,
		boundaryThreshold: boundaryThreshold,
	}
}

// FindGap returns the rectangle of the untiled gap under the cursor, if
// one at least minWidth wide exists. The dragged window is excluded from
// the occupancy check. Candidate spans are checked left to right: the
// region before the first window, each inter-window region, then the
// region after the last window. Height always spans the work area minus
// the outer gaps.
func (g *GapPlanner) FindGap(dragged platform.WindowID, cursor geometry.Point, work geometry.Rect, gap int) (geometry.Rect, bool) {
	windows := g.sortedTiled(dragged)
	if len(windows) == 0 {
		return geometry.Rect{}, false
	}

	for _, w := range windows {
		if w.Rect.ContainsPoint(cursor) {
			return geometry.Rect{}, false
		}
	}

	y := work.Y + gap
	height := work.Height - 2*gap

	spanStart := work.X
	for _, w := range windows {
		spanEnd := w.Rect.X
		if rect, ok := g.qualify(spanStart, spanEnd, cursor.X, y, height); ok {
			return rect, true
		}
		if w.Rect.RightEdge() > spanStart {
			spanStart = w.Rect.RightEdge()
		}
	}
	return g.qualify(spanStart, work.RightEdge(), cursor.X, y, height)
}

// qualify accepts a horizontal span as a gap when it is at least
// minWidth wide and the cursor x falls within it.
func (g *GapPlanner) qualify(start, end, cursorX, y, height int) (geometry.Rect, bool) {
	width := end - start
	if width < g.minWidth {
		return geometry.Rect{}, false
	}
	if cursorX < start || cursorX > end {
		return geometry.Rect{}, false
	}
	return geometry.NewRect(start, y, width, height), true
}

// FindSeam detects a boundary between two adjacent tiled windows near
// the cursor. It returns the x coordinate of the seam. A seam requires
// the cursor within the boundary threshold of one window's left or right
// edge, plus a second window whose opposing edge sits within twice the
// inner gap of the same coordinate. A lone edge next to empty space is a
// gap, not a seam.
func (g *GapPlanner) FindSeam(dragged platform.WindowID, cursor geometry.Point, gap int) (int, bool) {
	windows := g.sortedTiled(dragged)

	for _, w := range windows {
		// For w's left edge only another window's right edge counts, and
		// vice versa. Two same-side edges close together mean an overlap,
		// not a seam.
		edges := []struct {
			x        int
			opposing func(geometry.Rect) int
		}{
			{w.Rect.X, geometry.Rect.RightEdge},
			{w.Rect.RightEdge(), func(r geometry.Rect) int { return r.X }},
		}
		for _, edge := range edges {
			if geometry.Abs(cursor.X-edge.x) > g.boundaryThreshold {
				continue
			}
			for _, other := range windows {
				if other.ID == w.ID {
					continue
				}
				if geometry.Abs(edge.opposing(other.Rect)-edge.x) <= 2*gap {
					return edge.x, true
				}
			}
		}
	}
	return 0, false
}

func (g *GapPlanner) sortedTiled(exclude platform.WindowID) []WindowState {
	tiled := g.registry.TiledWindows()
	out := make([]WindowState, 0, len(tiled))
	for _, w := range tiled {
		if w.ID == exclude {
			continue
		}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rect.X < out[j].Rect.X })
	return out
}
