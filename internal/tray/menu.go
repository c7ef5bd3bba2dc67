package tray

import (
	"github.com/scienceol/tea/internal/control"
	"github.com/scienceol/tea/internal/icon"
	"github.com/scienceol/tea/internal/power"
)

// view is what the tray shows for one controller state.
type view struct {
	toggleTitle  string
	keepChecked  bool
	allowChecked bool
	allowEnabled bool
	tooltip      string
	title        string
}

func viewFor(st control.Status) view {
	v := view{
		toggleTitle:  "Disable Sleep",
		keepChecked:  st.Mode == power.KeepScreenOn,
		allowChecked: st.Mode == power.AllowScreenOff,
		allowEnabled: st.AllowScreenOffSupported,
		tooltip:      icon.Tooltip(st.Awake, st.Mode),
		title:        "OFF",
	}
	if st.Awake {
		v.toggleTitle = "Enable Sleep"
		v.title = "ON"
	}
	return v
}
