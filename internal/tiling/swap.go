package tiling

import (
	"log/slog"

	"github.com/snaptile/snaptile/internal/geometry"
	"github.com/snaptile/snaptile/internal/platform"
)

// SwapPlanner decides swap targets while a tiled window is dragged over
// other tiled windows. It is stateless; the drag session owns the pending
// target and the drag-start rectangle.
type SwapPlanner struct {
	registry *Registry
	logger   *slog.Logger
}

// NewSwapPlanner creates a swap planner over the given registry.
func NewSwapPlanner(registry *Registry, logger *slog.Logger) *SwapPlanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &SwapPlanner{registry: registry, logger: logger}
}

// TargetAt returns the id of the tiled window whose last known rectangle
// contains the dragged window's center, if any. Matching is against
// stored rectangles rather than live geometry so a pending swap cannot
// feed back into itself. The first match in id order wins.
func (s *SwapPlanner) TargetAt(dragged platform.WindowID, center geometry.Point) (platform.WindowID, bool) {
	for _, w := range s.registry.TiledWindows() {
		if w.ID == dragged {
			continue
		}
		if w.Rect.ContainsPoint(center) {
			return w.ID, true
		}
	}
	return 0, false
}

// Commit computes the placement pair for a released swap. The dragged
// window takes the target's current rectangle; the target takes the
// rectangle the dragged window occupied when the drag began, giving a
// true position exchange even though the dragged window moved
// continuously. Zone labels travel with the rectangles. Returns nil if
// either window vanished.
func (s *SwapPlanner) Commit(dragged, target platform.WindowID, dragStart geometry.Rect) []Placement {
	draggedState, ok := s.registry.GetWindow(dragged)
	if !ok {
		s.logger.Debug("swap aborted, dragged window no longer tracked", "window", dragged)
		return nil
	}
	targetState, ok := s.registry.GetWindow(target)
	if !ok {
		s.logger.Debug("swap aborted, target window no longer tracked", "window", target)
		return nil
	}

	draggedZone := draggedState.Zone
	targetZone := targetState.Zone

	tiled := true
	s.registry.SetWindow(dragged, WindowUpdate{
		Rect:  &targetState.Rect,
		Zone:  &targetZone,
		Tiled: &tiled,
	})
	s.registry.SetWindow(target, WindowUpdate{
		Rect:  &dragStart,
		Zone:  &draggedZone,
		Tiled: &tiled,
	})

	return []Placement{
		{ID: dragged, Rect: targetState.Rect},
		{ID: target, Rect: dragStart},
	}
}
