//go:build linux

package power

import (
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

const (
	login1Dest  = "org.freedesktop.login1"
	login1Path  = "/org/freedesktop/login1"
	screenDest  = "org.freedesktop.ScreenSaver"
	screenPath  = "/org/freedesktop/ScreenSaver"
	inhibitWho  = "tea"
	inhibitWhy  = "Keeping the system awake"
	displayWhy  = "Keeping the screen on"
	inhibitMode = "block"
)

// detectCapabilities reports a strong primitive when logind is reachable on
// the system bus, since its sleep lock leaves display blanking untouched.
func detectCapabilities() Capabilities {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return Capabilities{}
	}
	defer conn.Close()

	var hasOwner bool
	err = conn.BusObject().Call("org.freedesktop.DBus.NameHasOwner", 0, login1Dest).Store(&hasOwner)
	return Capabilities{StrongSleepPrimitive: err == nil && hasOwner}
}

// linuxDisplay holds a logind "sleep" inhibitor lock (a file descriptor that
// releases the lock when closed) and, for KeepScreenOn, a screensaver
// inhibit cookie bound to its own session bus connection.
type linuxDisplay struct {
	mu sync.Mutex

	sleepFD int

	session *dbus.Conn
	cookie  uint32

	log *logrus.Entry
}

func newDisplayControl() DisplayControl {
	return &linuxDisplay{
		sleepFD: -1,
		log:     logrus.WithField("component", "display"),
	}
}

func (l *linuxDisplay) SetDisplayMode(mode ScreenMode) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sleepFD < 0 {
		fd, err := acquireSleepLock()
		if err != nil {
			l.log.WithError(err).Warn("logind sleep inhibitor unavailable")
		} else {
			l.sleepFD = fd
			l.log.WithField("fd", fd).Debug("logind sleep inhibitor acquired")
		}
	}

	switch {
	case mode.ShouldKeepDisplayOn() && l.session == nil:
		conn, cookie, err := inhibitScreenSaver()
		if err != nil {
			l.log.WithError(err).Warn("screensaver inhibit unavailable")
			return
		}
		l.session, l.cookie = conn, cookie
		l.log.WithField("cookie", cookie).Debug("screensaver inhibited")
	case !mode.ShouldKeepDisplayOn() && l.session != nil:
		l.releaseScreenSaverLocked()
	}
}

func (l *linuxDisplay) RestoreNormalMode() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.releaseScreenSaverLocked()
	if l.sleepFD >= 0 {
		if err := unix.Close(l.sleepFD); err != nil {
			l.log.WithError(err).Warn("failed to close inhibitor fd")
		}
		l.sleepFD = -1
		l.log.Debug("logind sleep inhibitor released")
	}
}

func (l *linuxDisplay) releaseScreenSaverLocked() {
	if l.session == nil {
		return
	}
	obj := l.session.Object(screenDest, screenPath)
	if call := obj.Call(screenDest+".UnInhibit", 0, l.cookie); call.Err != nil {
		l.log.WithError(call.Err).Warn("screensaver uninhibit failed")
	}
	// Closing the connection drops the inhibit even if UnInhibit failed.
	l.session.Close()
	l.session, l.cookie = nil, 0
	l.log.Debug("screensaver inhibit released")
}

func acquireSleepLock() (int, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return -1, fmt.Errorf("failed to connect to system bus: %w", err)
	}
	defer conn.Close()

	obj := conn.Object(login1Dest, login1Path)
	call := obj.Call(login1Dest+".Manager.Inhibit", 0, "sleep", inhibitWho, inhibitWhy, inhibitMode)
	if call.Err != nil {
		return -1, fmt.Errorf("failed to acquire inhibitor lock: %w", call.Err)
	}

	var fd dbus.UnixFD
	if err := call.Store(&fd); err != nil {
		return -1, fmt.Errorf("failed to extract file descriptor: %w", err)
	}
	return int(fd), nil
}

func inhibitScreenSaver() (*dbus.Conn, uint32, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	var cookie uint32
	obj := conn.Object(screenDest, screenPath)
	if err := obj.Call(screenDest+".Inhibit", 0, inhibitWho, displayWhy).Store(&cookie); err != nil {
		conn.Close()
		return nil, 0, fmt.Errorf("screensaver inhibit: %w", err)
	}
	return conn, cookie, nil
}
