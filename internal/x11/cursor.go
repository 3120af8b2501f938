package x11

import (
	"github.com/BurntSushi/xgb/xproto"
)

// QueryPointerState returns the cursor's root coordinates and whether the
// primary button is currently held.
func (c *Connection) QueryPointerState() (x, y int, buttonDown bool, err error) {
	pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return 0, 0, false, err
	}
	return int(pointer.RootX), int(pointer.RootY), pointer.Mask&xproto.ButtonMask1 != 0, nil
}
