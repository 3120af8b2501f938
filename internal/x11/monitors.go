package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents one active RandR output. The Work fields hold the
// monitor bounds with panel and dock struts subtracted; they equal the
// full bounds when no dock claims space on the monitor.
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int

	WorkX      int
	WorkY      int
	WorkWidth  int
	WorkHeight int
}

func (m *Monitor) contains(x, y int) bool {
	return x >= m.X && x < m.X+m.Width && y >= m.Y && y < m.Y+m.Height
}

// region is a half-open rectangle [x1,x2) x [y1,y2) used for strut math.
type region struct {
	x1, y1, x2, y2 int
}

func (r region) intersect(o region) region {
	out := region{
		x1: max(r.x1, o.x1),
		y1: max(r.y1, o.y1),
		x2: min(r.x2, o.x2),
		y2: min(r.y2, o.y2),
	}
	if out.x2 <= out.x1 || out.y2 <= out.y1 {
		return region{}
	}
	return out
}

func (r region) empty() bool {
	return r.x2 <= r.x1 || r.y2 <= r.y1
}

func (r region) width() int  { return r.x2 - r.x1 }
func (r region) height() int { return r.y2 - r.y1 }

// GetMonitors enumerates active monitors via XRandR and computes each
// monitor's work area.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		m := Monitor{
			ID:     i,
			Name:   name,
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		}
		m.WorkX, m.WorkY = m.X, m.Y
		m.WorkWidth, m.WorkHeight = m.Width, m.Height
		monitors = append(monitors, m)
	}

	c.applyWorkAreas(monitors)
	return monitors, nil
}

// GetActiveMonitor returns the monitor containing the focused window,
// falling back to the monitor under the pointer and then the first one.
func (c *Connection) GetActiveMonitor() (*Monitor, error) {
	monitors, err := c.GetMonitors()
	if err != nil {
		return nil, err
	}
	if len(monitors) == 0 {
		return nil, fmt.Errorf("no monitors found")
	}

	if activeWin, err := ewmh.ActiveWindowGet(c.XUtil); err == nil && activeWin != 0 {
		if m := monitorForWindow(c, monitors, activeWin); m != nil {
			return m, nil
		}
	}

	if m := monitorForPointer(c, monitors); m != nil {
		return m, nil
	}

	return &monitors[0], nil
}

// applyWorkAreas subtracts dock struts from every monitor. When no dock
// advertises struts the EWMH _NET_WORKAREA property is used instead;
// that property is root-relative, so it only constrains monitors it
// intersects.
func (c *Connection) applyWorkAreas(monitors []Monitor) {
	if c.applyStruts(monitors) {
		return
	}
	c.applyDesktopWorkarea(monitors)
}

func (c *Connection) applyStruts(monitors []Monitor) bool {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return false
	}
	rootW := int(rootGeom.Width)
	rootH := int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return false
	}

	applied := false
	for _, windowID := range clients {
		if !isDockWindow(c, windowID) {
			continue
		}

		sp := strutPartialFor(c, windowID, rootW, rootH)
		if sp == nil {
			continue
		}

		for i := range monitors {
			if subtractStruts(&monitors[i], rootW, rootH, sp) {
				applied = true
			}
		}
	}
	return applied
}

func isDockWindow(c *Connection, windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DOCK" {
			return true
		}
	}
	return false
}

// strutPartialFor reads a dock's struts, widening a plain _NET_WM_STRUT
// to full-span partial ranges when the partial property is absent.
func strutPartialFor(c *Connection, windowID xproto.Window, rootW, rootH int) *ewmh.WmStrutPartial {
	if sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID); err == nil {
		return sp
	}

	s, err := ewmh.WmStrutGet(c.XUtil, windowID)
	if err != nil {
		return nil
	}
	return &ewmh.WmStrutPartial{
		Left:         s.Left,
		Right:        s.Right,
		Top:          s.Top,
		Bottom:       s.Bottom,
		LeftStartY:   0,
		LeftEndY:     uint(rootH - 1),
		RightStartY:  0,
		RightEndY:    uint(rootH - 1),
		TopStartX:    0,
		TopEndX:      uint(rootW - 1),
		BottomStartX: 0,
		BottomEndX:   uint(rootW - 1),
	}
}

// subtractStruts shrinks the monitor's work area by every strut band that
// intersects it. Reports whether any band applied.
func subtractStruts(m *Monitor, rootW, rootH int, sp *ewmh.WmStrutPartial) bool {
	work := region{
		x1: m.WorkX,
		y1: m.WorkY,
		x2: m.WorkX + m.WorkWidth,
		y2: m.WorkY + m.WorkHeight,
	}
	applied := false

	if sp.Top > 0 {
		band := region{x1: int(sp.TopStartX), y1: 0, x2: int(sp.TopEndX) + 1, y2: int(sp.Top)}
		if isect := work.intersect(band); !isect.empty() {
			work.y1 += isect.height()
			applied = true
		}
	}
	if sp.Bottom > 0 {
		band := region{x1: int(sp.BottomStartX), y1: rootH - int(sp.Bottom), x2: int(sp.BottomEndX) + 1, y2: rootH}
		if isect := work.intersect(band); !isect.empty() {
			work.y2 -= isect.height()
			applied = true
		}
	}
	if sp.Left > 0 {
		band := region{x1: 0, y1: int(sp.LeftStartY), x2: int(sp.Left), y2: int(sp.LeftEndY) + 1}
		if isect := work.intersect(band); !isect.empty() {
			work.x1 += isect.width()
			applied = true
		}
	}
	if sp.Right > 0 {
		band := region{x1: rootW - int(sp.Right), y1: int(sp.RightStartY), x2: rootW, y2: int(sp.RightEndY) + 1}
		if isect := work.intersect(band); !isect.empty() {
			work.x2 -= isect.width()
			applied = true
		}
	}

	if !applied {
		return false
	}

	if work.x2 <= work.x1 {
		work.x2 = work.x1 + 1
	}
	if work.y2 <= work.y1 {
		work.y2 = work.y1 + 1
	}

	m.WorkX = work.x1
	m.WorkY = work.y1
	m.WorkWidth = work.width()
	m.WorkHeight = work.height()
	return true
}

func (c *Connection) applyDesktopWorkarea(monitors []Monitor) {
	workAreas, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workAreas) == 0 {
		return
	}

	desktopIndex := 0
	if current, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(current) < len(workAreas) {
		desktopIndex = int(current)
	}
	wa := workAreas[desktopIndex]
	waRegion := region{
		x1: int(wa.X),
		y1: int(wa.Y),
		x2: int(wa.X) + int(wa.Width),
		y2: int(wa.Y) + int(wa.Height),
	}

	for i := range monitors {
		m := &monitors[i]
		isect := waRegion.intersect(region{x1: m.X, y1: m.Y, x2: m.X + m.Width, y2: m.Y + m.Height})
		if isect.empty() {
			continue
		}
		m.WorkX = isect.x1
		m.WorkY = isect.y1
		m.WorkWidth = isect.width()
		m.WorkHeight = isect.height()
	}
}

func monitorForWindow(c *Connection, monitors []Monitor, windowID xproto.Window) *Monitor {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return nil
	}

	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return nil
	}

	centerX := int(translate.DstX) + int(geom.Width)/2
	centerY := int(translate.DstY) + int(geom.Height)/2

	for i := range monitors {
		if monitors[i].contains(centerX, centerY) {
			return &monitors[i]
		}
	}
	return nil
}

func monitorForPointer(c *Connection, monitors []Monitor) *Monitor {
	pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil
	}

	for i := range monitors {
		if monitors[i].contains(int(pointer.RootX), int(pointer.RootY)) {
			return &monitors[i]
		}
	}
	return nil
}
