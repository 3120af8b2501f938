package tiling

import (
	"log/slog"

	"github.com/snaptile/snaptile/internal/geometry"
	"github.com/snaptile/snaptile/internal/platform"
)

// Edge identifies the edge of a window a manual resize moved.
type Edge int

const (
	EdgeLeft Edge = iota
	EdgeRight
	EdgeTop
	EdgeBottom
)

// String returns the edge name.
func (e Edge) String() string {
	switch e {
	case EdgeLeft:
		return "left"
	case EdgeRight:
		return "right"
	case EdgeTop:
		return "top"
	case EdgeBottom:
		return "bottom"
	default:
		return "unknown"
	}
}

// Placement pairs a window id with a proposed rectangle. Planners return
// placements; callers apply them to real windows and confirm via SetWindow.
type Placement struct {
	ID   platform.WindowID
	Rect geometry.Rect
}

// ResizePlan is the outcome of propagating one edge delta. When Revert is
// set the resizing window must be clamped back to RevertRect and no
// neighbor placements are emitted for this tick; the caller is expected to
// re-issue the real resize at the clamped size.
type ResizePlan struct {
	Placements []Placement
	Revert     bool
	RevertRect geometry.Rect
}

// Propagator computes neighbor adjustments for manual window resizes,
// enforcing minimum dimensions.
type Propagator struct {
	registry  *Registry
	minWidth  int
	minHeight int
	logger    *slog.Logger
}

// NewPropagator creates a resize propagator over the given registry.
func NewPropagator(registry *Registry, minWidth, minHeight int, logger *slog.Logger) *Propagator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Propagator{
		registry:  registry,
		minWidth:  minWidth,
		minHeight: minHeight,
		logger:    logger,
	}
}

// PlanEdgeResize computes new rectangles for the neighbors affected by a
// manual resize of one edge. delta is the signed pixel movement of that
// edge, positive when the window grew in that direction.
//
// Horizontal propagation has a revert branch: when a neighbor is already
// at minimum width and the resizer keeps encroaching, the resizer itself
// is clamped back to its last known rectangle. Vertical propagation
// deliberately lacks that branch; neighbors at minimum height are left
// untouched instead.
func (p *Propagator) PlanEdgeResize(id platform.WindowID, edge Edge, delta int) ResizePlan {
	if delta == 0 {
		return ResizePlan{}
	}

	state, ok := p.registry.GetWindow(id)
	if !ok {
		return ResizePlan{}
	}

	switch edge {
	case EdgeRight:
		return p.planHorizontal(state, p.registry.Neighbors(id, DirRight), delta, false)
	case EdgeLeft:
		return p.planHorizontal(state, p.registry.Neighbors(id, DirLeft), delta, true)
	case EdgeBottom:
		return p.planVertical(p.registry.Neighbors(id, DirBottom), delta, false)
	case EdgeTop:
		return p.planVertical(p.registry.Neighbors(id, DirTop), delta, true)
	default:
		return ResizePlan{}
	}
}

// planHorizontal adjusts left or right neighbors against MinWidth.
// farSide is true for left neighbors, whose origin stays fixed while
// their right edge follows the resizer's left edge.
func (p *Propagator) planHorizontal(resizer WindowState, neighbors []WindowState, delta int, farSide bool) ResizePlan {
	var plan ResizePlan
	for _, n := range neighbors {
		candidate := n.Rect.Width - delta

		if candidate < p.minWidth && delta > 0 {
			maxDelta := n.Rect.Width - p.minWidth
			if maxDelta <= 0 {
				// Neighbor has nothing left to give: clamp the resizer
				// back to its last known rectangle and stop this tick.
				p.logger.Debug("resize blocked by neighbor at minimum width",
					"window", resizer.ID, "neighbor", n.ID)
				return ResizePlan{Revert: true, RevertRect: resizer.Rect}
			}
			// Partial concession: the neighbor absorbs what it safely can.
			rect := n.Rect
			if !farSide {
				rect.X += maxDelta
			}
			rect.Width = p.minWidth
			plan.Placements = append(plan.Placements, Placement{ID: n.ID, Rect: rect})
			continue
		}

		rect := n.Rect
		if !farSide {
			rect.X += delta
		}
		rect.Width = candidate
		plan.Placements = append(plan.Placements, Placement{ID: n.ID, Rect: rect})
	}
	return plan
}

// planVertical adjusts top or bottom neighbors against MinHeight.
// farSide is true for top neighbors (origin fixed, bottom edge moves).
func (p *Propagator) planVertical(neighbors []WindowState, delta int, farSide bool) ResizePlan {
	var plan ResizePlan
	for _, n := range neighbors {
		candidate := n.Rect.Height - delta

		if candidate < p.minHeight && delta > 0 {
			maxDelta := n.Rect.Height - p.minHeight
			if maxDelta <= 0 {
				// No revert branch for vertical resizes; the neighbor is
				// simply left alone.
				p.logger.Debug("vertical resize skipped neighbor at minimum height",
					"neighbor", n.ID)
				continue
			}
			rect := n.Rect
			if !farSide {
				rect.Y += maxDelta
			}
			rect.Height = p.minHeight
			plan.Placements = append(plan.Placements, Placement{ID: n.ID, Rect: rect})
			continue
		}

		rect := n.Rect
		if !farSide {
			rect.Y += delta
		}
		rect.Height = candidate
		plan.Placements = append(plan.Placements, Placement{ID: n.ID, Rect: rect})
	}
	return plan
}
