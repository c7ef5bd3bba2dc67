//go:build darwin

package power

import (
	"os"
	"os/exec"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
)

func detectCapabilities() Capabilities {
	_, err := exec.LookPath("caffeinate")
	return Capabilities{StrongSleepPrimitive: err == nil}
}

// darwinDisplay holds a caffeinate child for as long as an assertion is
// wanted. The child carries the assertion, killing it releases it.
type darwinDisplay struct {
	mu   sync.Mutex
	cmd  *exec.Cmd
	mode ScreenMode
	log  *logrus.Entry
}

func newDisplayControl() DisplayControl {
	return &darwinDisplay{log: logrus.WithField("component", "display")}
}

func (d *darwinDisplay) SetDisplayMode(mode ScreenMode) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cmd != nil {
		if d.mode == mode {
			return // already asserted
		}
		d.killLocked()
	}

	path, err := exec.LookPath("caffeinate")
	if err != nil {
		d.log.WithError(err).Warn("caffeinate not found")
		return
	}

	// -i: prevent idle system sleep
	// -d: prevent display sleep
	// -w <pid>: exit automatically when this process dies
	flags := "-i"
	if mode.ShouldKeepDisplayOn() {
		flags = "-di"
	}
	cmd := exec.Command(path, flags, "-w", strconv.Itoa(os.Getpid()))
	if err := cmd.Start(); err != nil {
		d.log.WithError(err).Warn("failed to start caffeinate")
		return
	}

	// Reap the child in background so it doesn't become a zombie.
	go cmd.Wait()

	d.cmd = cmd
	d.mode = mode
	d.log.WithFields(logrus.Fields{"mode": mode, "pid": cmd.Process.Pid}).Debug("caffeinate started")
}

func (d *darwinDisplay) RestoreNormalMode() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.killLocked()
}

func (d *darwinDisplay) killLocked() {
	if d.cmd != nil && d.cmd.Process != nil {
		d.cmd.Process.Kill()
		d.log.Debug("caffeinate stopped")
	}
	d.cmd = nil
}
