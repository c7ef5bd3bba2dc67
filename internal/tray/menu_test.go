package tray

import (
	"testing"

	"github.com/scienceol/tea/internal/control"
	"github.com/scienceol/tea/internal/power"
	"github.com/stretchr/testify/assert"
)

func TestViewFor(t *testing.T) {
	tests := map[string]struct {
		st   control.Status
		want view
	}{
		"asleep": {
			st: control.Status{Mode: power.KeepScreenOn, AllowScreenOffSupported: true},
			want: view{
				toggleTitle:  "Disable Sleep",
				keepChecked:  true,
				allowEnabled: true,
				tooltip:      "Tea - Sleep prevention disabled",
				title:        "OFF",
			},
		},
		"awake keep": {
			st: control.Status{Awake: true, Mode: power.KeepScreenOn},
			want: view{
				toggleTitle: "Enable Sleep",
				keepChecked: true,
				tooltip:     "Tea - Screen & System On",
				title:       "ON",
			},
		},
		"awake allow": {
			st: control.Status{Awake: true, Mode: power.AllowScreenOff, AllowScreenOffSupported: true},
			want: view{
				toggleTitle:  "Enable Sleep",
				allowChecked: true,
				allowEnabled: true,
				tooltip:      "Tea - System On, Screen Can Sleep",
				title:        "ON",
			},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, viewFor(tt.st))
		})
	}
}
