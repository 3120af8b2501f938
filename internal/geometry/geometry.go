package geometry

// Rect describes a rectangular screen region in pixel coordinates.
// Width and Height are never negative; NewRect clamps rather than fail.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Point is a screen coordinate.
type Point struct {
	X int
	Y int
}

// NewRect builds a Rect, clamping negative dimensions to zero.
func NewRect(x, y, width, height int) Rect {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// RightEdge returns the x coordinate of the rect's right edge.
func (r Rect) RightEdge() int {
	return r.X + r.Width
}

// BottomEdge returns the y coordinate of the rect's bottom edge.
func (r Rect) BottomEdge() int {
	return r.Y + r.Height
}

// Center returns the rect's center point.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// ContainsPoint reports whether p lies inside r. Bounds are inclusive on
// all four edges so a point exactly on a border still registers.
func (r Rect) ContainsPoint(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// VerticalOverlap reports whether the projections of a and b onto the y
// axis overlap by at least minOverlap pixels.
func VerticalOverlap(a, b Rect, minOverlap int) bool {
	top := max(a.Y, b.Y)
	bottom := min(a.BottomEdge(), b.BottomEdge())
	return bottom-top >= minOverlap
}

// HorizontalOverlap reports whether the projections of a and b onto the x
// axis overlap by at least minOverlap pixels.
func HorizontalOverlap(a, b Rect, minOverlap int) bool {
	left := max(a.X, b.X)
	right := min(a.RightEdge(), b.RightEdge())
	return right-left >= minOverlap
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Abs returns the absolute value of x. Exported for edge-distance checks.
func Abs(x int) int {
	return abs(x)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
