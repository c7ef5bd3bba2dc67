//go:build windows

package power

import (
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/windows"
)

const (
	esContinuous      uint32 = 0x80000000
	esSystemRequired  uint32 = 0x00000001
	esDisplayRequired uint32 = 0x00000002
)

var (
	kernel32                    = windows.NewLazySystemDLL("kernel32.dll")
	procSetThreadExecutionState = kernel32.NewProc("SetThreadExecutionState")
)

func detectCapabilities() Capabilities {
	return Capabilities{StrongSleepPrimitive: procSetThreadExecutionState.Find() == nil}
}

// windowsDisplay applies SetThreadExecutionState. The execution state belongs
// to the calling OS thread, so all calls go through one goroutine that stays
// locked to its thread while an assertion is held.
type windowsDisplay struct {
	mu    sync.Mutex
	reqs  chan uint32
	done  chan struct{}
	flags uint32
	log   *logrus.Entry
}

func newDisplayControl() DisplayControl {
	return &windowsDisplay{log: logrus.WithField("component", "display")}
}

func (w *windowsDisplay) SetDisplayMode(mode ScreenMode) {
	flags := esContinuous | esSystemRequired
	if mode.ShouldKeepDisplayOn() {
		flags |= esDisplayRequired
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.reqs != nil && w.flags == flags {
		return
	}
	if w.reqs == nil {
		w.reqs = make(chan uint32)
		w.done = make(chan struct{})
		go w.stateLoop(w.reqs, w.done)
	}
	w.reqs <- flags
	w.flags = flags
}

func (w *windowsDisplay) RestoreNormalMode() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.reqs == nil {
		return
	}
	close(w.reqs)
	<-w.done
	w.reqs, w.done, w.flags = nil, nil, 0
}

// stateLoop applies each requested state on its pinned thread and clears it
// when reqs is closed.
func (w *windowsDisplay) stateLoop(reqs <-chan uint32, done chan<- struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(done)

	for flags := range reqs {
		w.apply(flags)
	}
	w.apply(esContinuous)
}

func (w *windowsDisplay) apply(flags uint32) {
	prev, _, err := procSetThreadExecutionState.Call(uintptr(flags))
	if prev == 0 {
		w.log.WithError(err).WithField("flags", flags).Warn("SetThreadExecutionState failed")
		return
	}
	w.log.WithField("flags", flags).Debug("execution state applied")
}
