//go:build linux

package input

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
)

// x11Simulator injects the key through the XTEST extension.
type x11Simulator struct {
	xu      *xgbutil.XUtil
	keycode xproto.Keycode
}

func newSimulator() (Simulator, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}
	if err := xtest.Init(xu.Conn()); err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("XTEST extension unavailable: %w", err)
	}

	keybind.Initialize(xu)
	codes := keybind.StrToKeycodes(xu, "F15")
	if len(codes) == 0 {
		xu.Conn().Close()
		return nil, fmt.Errorf("no keycode is mapped to F15 in the current keymap")
	}

	return &x11Simulator{xu: xu, keycode: codes[0]}, nil
}

func (x *x11Simulator) Tap() error {
	if err := x.fake(xproto.KeyPress); err != nil {
		return err
	}
	return x.fake(xproto.KeyRelease)
}

func (x *x11Simulator) fake(eventType byte) error {
	cookie := xtest.FakeInputChecked(x.xu.Conn(), eventType, byte(x.keycode), 0, x.xu.RootWin(), 0, 0, 0)
	if err := cookie.Check(); err != nil {
		return fmt.Errorf("xtest fake input: %w", err)
	}
	return nil
}

func (x *x11Simulator) Close() error {
	x.xu.Conn().Close()
	return nil
}
