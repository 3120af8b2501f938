package tiling

import (
	"log/slog"

	"github.com/snaptile/snaptile/internal/geometry"
)

// Named snap zones.
const (
	ZoneLeft        = "left"
	ZoneRight       = "right"
	ZoneTop         = "top"
	ZoneMaximize    = "maximize"
	ZoneLeftTop     = "left-top"
	ZoneRightTop    = "right-top"
	ZoneLeftBottom  = "left-bottom"
	ZoneRightBottom = "right-bottom"

	// Zone labels recorded for non-snap operations.
	ZoneSwapped  = "swapped"
	ZoneInserted = "inserted"
	ZoneGapFill  = "gap-fill"
	ZoneAuto     = "auto"
)

// ZoneRect maps a named zone and a work area to a target rectangle.
// Halves lose three gap widths across the split axis (outer, inner, outer);
// quadrants lose three on both axes. An unrecognized zone falls back to
// maximize and logs a warning.
func ZoneRect(zone string, work geometry.Rect, gap int) geometry.Rect {
	halfW := (work.Width - 3*gap) / 2
	halfH := (work.Height - 3*gap) / 2
	fullW := work.Width - 2*gap
	fullH := work.Height - 2*gap

	switch zone {
	case ZoneLeft:
		return geometry.NewRect(work.X+gap, work.Y+gap, halfW, fullH)
	case ZoneRight:
		return geometry.NewRect(work.RightEdge()-gap-halfW, work.Y+gap, halfW, fullH)
	case ZoneTop, ZoneMaximize:
		return geometry.NewRect(work.X+gap, work.Y+gap, fullW, fullH)
	case ZoneLeftTop:
		return geometry.NewRect(work.X+gap, work.Y+gap, halfW, halfH)
	case ZoneRightTop:
		return geometry.NewRect(work.RightEdge()-gap-halfW, work.Y+gap, halfW, halfH)
	case ZoneLeftBottom:
		return geometry.NewRect(work.X+gap, work.BottomEdge()-gap-halfH, halfW, halfH)
	case ZoneRightBottom:
		return geometry.NewRect(work.RightEdge()-gap-halfW, work.BottomEdge()-gap-halfH, halfW, halfH)
	default:
		slog.Warn("unknown snap zone, falling back to maximize", "zone", zone)
		return geometry.NewRect(work.X+gap, work.Y+gap, fullW, fullH)
	}
}

// ThirdRect divides the work area width into three equal segments
// separated by gaps. position is 0 (left), 1 (center), or 2 (right).
func ThirdRect(work geometry.Rect, position, gap int) geometry.Rect {
	if position < 0 {
		position = 0
	}
	if position > 2 {
		position = 2
	}
	thirdW := (work.Width - 4*gap) / 3
	x := work.X + gap + position*(thirdW+gap)
	return geometry.NewRect(x, work.Y+gap, thirdW, work.Height-2*gap)
}

// TwoThirdsRect merges two adjacent thirds plus the connecting gap.
// position 0 covers the left two thirds, position 1 the right two.
func TwoThirdsRect(work geometry.Rect, position, gap int) geometry.Rect {
	if position < 0 {
		position = 0
	}
	if position > 1 {
		position = 1
	}
	thirdW := (work.Width - 4*gap) / 3
	x := work.X + gap + position*(thirdW+gap)
	return geometry.NewRect(x, work.Y+gap, 2*thirdW+gap, work.Height-2*gap)
}

// IsUltrawide reports whether the work area has an aspect ratio wider
// than 2:1.
func IsUltrawide(work geometry.Rect) bool {
	if work.Height <= 0 {
		return false
	}
	return float64(work.Width)/float64(work.Height) > 2.0
}

// KnownZone reports whether zone names a snap target ZoneRect recognizes.
func KnownZone(zone string) bool {
	switch zone {
	case ZoneLeft, ZoneRight, ZoneTop, ZoneMaximize,
		ZoneLeftTop, ZoneRightTop, ZoneLeftBottom, ZoneRightBottom:
		return true
	}
	return false
}
