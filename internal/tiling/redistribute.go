package tiling

import (
	"log/slog"
	"sort"

	"github.com/snaptile/snaptile/internal/geometry"
	"github.com/snaptile/snaptile/internal/platform"
)

// gapCorrectionTolerance is the slack allowed between the expected and
// actual inter-window gap before the correction pass repositions windows.
const gapCorrectionTolerance = 5

// maxCorrectionPasses bounds the recursive overlap correction so
// pathological inputs cannot loop forever.
const maxCorrectionPasses = 2

// Redistributor computes full-row re-layouts when the tiled window count
// changes.
type Redistributor struct {
	minWidth int
	logger   *slog.Logger
}

// NewRedistributor creates a redistribution planner.
func NewRedistributor(minWidth int, logger *slog.Logger) *Redistributor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Redistributor{minWidth: minWidth, logger: logger}
}

// EqualPlan lays out the given windows left to right with equal widths.
// Used after window add/remove. ids are placed in the order given.
func (r *Redistributor) EqualPlan(ids []platform.WindowID, work geometry.Rect, gap int) []Placement {
	n := len(ids)
	if n == 0 {
		return nil
	}

	totalGaps := gap * (n + 1)
	perWindow := (work.Width - totalGaps) / n
	height := work.Height - 2*gap

	placements := make([]Placement, n)
	x := work.X + gap
	for i, id := range ids {
		placements[i] = Placement{
			ID:   id,
			Rect: geometry.NewRect(x, work.Y+gap, perWindow, height),
		}
		x += perWindow + gap
	}
	return placements
}

// InsertionIndex chooses where a window dropped at boundaryX slots into
// the row: before the first window whose center lies right of the
// boundary, scanning left to right. windows must be sorted by X.
func (r *Redistributor) InsertionIndex(boundaryX int, windows []WindowState) int {
	for i, w := range windows {
		if w.Rect.Center().X > boundaryX {
			return i
		}
	}
	return len(windows)
}

// InsertPlan computes the proportional re-layout for inserting one new
// window into a row of existing tiled windows at the given boundary.
// Existing windows shrink proportionally; any window pushed below the
// minimum width is clamped up, and the resulting excess is taken back
// from the windows that still have headroom.
func (r *Redistributor) InsertPlan(existing []WindowState, newID platform.WindowID, boundaryX int, work geometry.Rect, gap int) []Placement {
	n := len(existing)
	if n == 0 {
		rect := ZoneRect(ZoneMaximize, work, gap)
		return []Placement{{ID: newID, Rect: rect}}
	}

	sorted := make([]WindowState, n)
	copy(sorted, existing)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Rect.X < sorted[j].Rect.X })

	// Outer gaps plus one inner gap per seam between n+1 windows.
	availableWidth := work.Width - (2*gap + n*gap)

	newWidth := availableWidth / (n + 1)
	if newWidth < r.minWidth {
		newWidth = r.minWidth
	}

	currentTotal := 0
	for _, w := range sorted {
		currentTotal += w.Rect.Width
	}
	if currentTotal <= 0 {
		currentTotal = 1
	}

	scaleFactor := float64(availableWidth-newWidth) / float64(currentTotal)

	widths := make([]int, n)
	atFloor := make([]bool, n)
	floored := 0
	scaledTotal := 0
	for i, w := range sorted {
		scaled := int(float64(w.Rect.Width) * scaleFactor)
		if scaled < r.minWidth {
			scaled = r.minWidth
			atFloor[i] = true
			floored++
		}
		widths[i] = scaled
		scaledTotal += scaled
	}
	if floored > 0 {
		r.logger.Debug("insert plan clamped windows to minimum width",
			"clamped", floored, "windows", n)
	}

	// Clamping may have pushed the total past the available width. Take
	// the excess back from windows not at the floor, ceiling division so
	// the shortfall clears in one sweep. Windows already at minimum are
	// never asked to shrink further.
	excess := scaledTotal + newWidth - availableWidth
	if excess > 0 && floored < n {
		share := ceilDiv(excess, n-floored)
		for i := range widths {
			if excess <= 0 {
				break
			}
			if atFloor[i] {
				continue
			}
			cut := share
			if cut > excess {
				cut = excess
			}
			widths[i] -= cut
			excess -= cut
		}
	}

	insertAt := r.InsertionIndex(boundaryX, sorted)

	type slot struct {
		id    platform.WindowID
		width int
	}
	slots := make([]slot, 0, n+1)
	for i, w := range sorted {
		if i == insertAt {
			slots = append(slots, slot{id: newID, width: newWidth})
		}
		slots = append(slots, slot{id: w.ID, width: widths[i]})
	}
	if insertAt == n {
		slots = append(slots, slot{id: newID, width: newWidth})
	}

	height := work.Height - 2*gap
	placements := make([]Placement, len(slots))
	x := work.X + gap
	for i, s := range slots {
		placements[i] = Placement{
			ID:   s.id,
			Rect: geometry.NewRect(x, work.Y+gap, s.width, height),
		}
		x += s.width + gap
	}
	return placements
}

// CorrectOverlaps heals a row after the compositor silently overrode
// requested sizes. windows carry the actual current rectangles; primary
// is the window that was just inserted or resized and is the only one
// allowed to shrink if the row overflows the work area. Returns nil when
// every gap is already within tolerance.
func (r *Redistributor) CorrectOverlaps(windows []WindowState, primary platform.WindowID, work geometry.Rect, gap int) []Placement {
	return r.correctPass(windows, primary, work, gap, 0)
}

func (r *Redistributor) correctPass(windows []WindowState, primary platform.WindowID, work geometry.Rect, gap int, pass int) []Placement {
	if len(windows) == 0 {
		return nil
	}
	if pass >= maxCorrectionPasses {
		r.logger.Warn("overlap correction gave up after max passes", "passes", pass)
		return nil
	}

	sorted := make([]WindowState, len(windows))
	copy(sorted, windows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Rect.X < sorted[j].Rect.X })

	if !r.hasGapViolation(sorted, gap) {
		return nil
	}

	// Reposition (not resize) every window left to right contiguously
	// using its actual width.
	placements := make([]Placement, len(sorted))
	x := work.X + gap
	for i, w := range sorted {
		rect := w.Rect
		rect.X = x
		placements[i] = Placement{ID: w.ID, Rect: rect}
		x += rect.Width + gap
	}

	overflow := (x - gap) - (work.RightEdge() - gap)
	if overflow > 0 {
		for i := range placements {
			if placements[i].ID != primary {
				continue
			}
			if placements[i].Rect.Width >= r.minWidth+overflow {
				placements[i].Rect.Width -= overflow
				// Shift everything right of the primary back by the
				// reclaimed overflow.
				for j := i + 1; j < len(placements); j++ {
					placements[j].Rect.X -= overflow
				}
			} else {
				r.logger.Warn("layout overflow exceeds primary window headroom, needs correction",
					"overflow", overflow, "primary", primary)
			}
			break
		}
	}

	// One recursive re-check: idempotent once no gap violates tolerance
	// and no overflow remains.
	next := make([]WindowState, len(placements))
	for i, p := range placements {
		next[i] = WindowState{ID: p.ID, Rect: p.Rect, Tiled: true}
	}
	if again := r.correctPass(next, primary, work, gap, pass+1); again != nil {
		return again
	}
	return placements
}

// hasGapViolation reports whether any adjacent pair sits closer than the
// gap allows, including outright overlap. Over-wide gaps are left alone;
// only compression triggers repositioning.
func (r *Redistributor) hasGapViolation(sorted []WindowState, gap int) bool {
	for i := 0; i < len(sorted)-1; i++ {
		actual := sorted[i+1].Rect.X - sorted[i].Rect.RightEdge()
		if actual < gap-gapCorrectionTolerance {
			return true
		}
	}
	return false
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}
