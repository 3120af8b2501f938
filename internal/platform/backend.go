package platform

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Display describes a physical display and its usable work area.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
	Usable Rect
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID     WindowID
	PID    int
	AppID  string
	Title  string
	Bounds Rect
}

// Pointer is a snapshot of the cursor state.
type Pointer struct {
	X          int
	Y          int
	ButtonDown bool
}

// OpKind classifies a window gesture.
type OpKind int

const (
	OpMove OpKind = iota
	OpResizeLeft
	OpResizeRight
	OpResizeTop
	OpResizeBottom
)

// String returns the gesture name.
func (k OpKind) String() string {
	switch k {
	case OpMove:
		return "move"
	case OpResizeLeft:
		return "resize-left"
	case OpResizeRight:
		return "resize-right"
	case OpResizeTop:
		return "resize-top"
	case OpResizeBottom:
		return "resize-bottom"
	default:
		return "unknown"
	}
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	Displays() ([]Display, error)
	ActiveDisplay() (Display, error)
	ActiveWindow() (WindowID, error)
	ListWindowsOnDisplay(displayID int) ([]Window, error)
	WindowRect(windowID WindowID) (Rect, error)
	WindowExists(windowID WindowID) bool
	MoveResize(windowID WindowID, bounds Rect) error
	Raise(windowID WindowID) error
	Pointer() (Pointer, error)
	DisplayForWindow(windowID WindowID) (Display, error)
	DisplayForPoint(x, y int) (Display, error)
}
