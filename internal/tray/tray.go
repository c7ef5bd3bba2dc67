// Package tray is the system tray front end. It forwards menu clicks to the
// controller and redraws itself from controller state changes.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
	"github.com/scienceol/tea/internal/control"
	"github.com/scienceol/tea/internal/icon"
	"github.com/scienceol/tea/internal/power"
	"github.com/sirupsen/logrus"
)

// Controller is the subset of *control.Controller the tray drives.
type Controller interface {
	Toggle() (control.Status, error)
	ChangeMode(power.ScreenMode) (power.ScreenMode, error)
	Status() control.Status
	Subscribe(func(control.Status)) func()
}

// Tray owns the tray icon and menu.
type Tray struct {
	ctrl Controller
	log  *logrus.Entry

	quitCh   chan struct{}
	quitOnce sync.Once

	mu     sync.Mutex
	toggle *systray.MenuItem
	keep   *systray.MenuItem
	allow  *systray.MenuItem
}

// New creates a Tray for ctrl.
func New(ctrl Controller) *Tray {
	return &Tray{
		ctrl:   ctrl,
		log:    logrus.WithField("component", "tray"),
		quitCh: make(chan struct{}),
	}
}

// Run shows the tray and blocks until Stop is called. It must run on the
// main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Stop removes the tray icon and makes Run return.
func (t *Tray) Stop() {
	systray.Quit()
}

// Quit is closed when the user picks Quit from the menu.
func (t *Tray) Quit() <-chan struct{} {
	return t.quitCh
}

func (t *Tray) onReady() {
	st := t.ctrl.Status()
	v := viewFor(st)

	t.mu.Lock()
	t.toggle = systray.AddMenuItem(v.toggleTitle, "Toggle sleep prevention")
	systray.AddSeparator()
	t.keep = systray.AddMenuItemCheckbox("Keep Screen On", "Keep the display awake too", v.keepChecked)
	t.allow = systray.AddMenuItemCheckbox("Allow Screen Off", "Let the display sleep", v.allowChecked)
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Stop preventing sleep and exit")
	t.mu.Unlock()

	t.render(st)
	unsubscribe := t.ctrl.Subscribe(t.render)

	go func() {
		defer unsubscribe()
		for {
			select {
			case <-t.toggle.ClickedCh:
				if _, err := t.ctrl.Toggle(); err != nil {
					t.log.WithError(err).Error("toggle failed")
				}
			case <-t.keep.ClickedCh:
				t.changeMode(power.KeepScreenOn)
			case <-t.allow.ClickedCh:
				t.changeMode(power.AllowScreenOff)
			case <-mQuit.ClickedCh:
				t.quitOnce.Do(func() { close(t.quitCh) })
				return
			}
		}
	}()
}

func (t *Tray) changeMode(mode power.ScreenMode) {
	if _, err := t.ctrl.ChangeMode(mode); err != nil {
		t.log.WithError(err).WithField("mode", mode).Error("change mode failed")
		// The click flipped the checkbox on some platforms; redraw the truth.
		t.render(t.ctrl.Status())
	}
}

// render draws st. It is called from controller notifications and must not
// block.
func (t *Tray) render(st control.Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.toggle == nil {
		return
	}
	v := viewFor(st)

	data, err := icon.ForPlatform(st.Awake, st.Mode)
	if err != nil {
		t.log.WithError(err).Warn("failed to render tray icon")
	} else {
		systray.SetIcon(data)
	}
	systray.SetTitle(v.title)
	systray.SetTooltip(v.tooltip)

	t.toggle.SetTitle(v.toggleTitle)
	setChecked(t.keep, v.keepChecked)
	setChecked(t.allow, v.allowChecked)
	if v.allowEnabled {
		t.allow.Enable()
	} else {
		t.allow.Disable()
	}
}

func (t *Tray) onExit() {
	t.log.Debug("tray closed")
}

func setChecked(item *systray.MenuItem, checked bool) {
	if checked {
		item.Check()
	} else {
		item.Uncheck()
	}
}
