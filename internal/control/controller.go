// Package control implements the operations behind every UI event: toggling
// sleep prevention, changing the screen mode, restoring persisted state at
// startup and quitting. It owns the handle of the single active wake run.
package control

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/scienceol/tea/internal/apperr"
	"github.com/scienceol/tea/internal/power"
	"github.com/scienceol/tea/internal/state"
	"github.com/scienceol/tea/internal/wake"
	"github.com/sirupsen/logrus"
)

// DefaultStopTimeout bounds how long a stop or restart waits for the old run
// to finish before giving up on it.
const DefaultStopTimeout = 5 * time.Second

// Persister is the write side of the persistence collaborator.
type Persister interface {
	Write(state.State) error
}

// Runner is one wake run. *wake.Service implements it.
type Runner interface {
	Run(ctx context.Context, mode power.ScreenMode) error
}

// ServiceFactory builds a fresh Runner for every start.
type ServiceFactory func(st *wake.State) Runner

// Status is the observable controller state.
type Status struct {
	Awake                   bool             `json:"awake"`
	Mode                    power.ScreenMode `json:"mode"`
	Running                 bool             `json:"running"`
	AllowScreenOffSupported bool             `json:"allow_screen_off_supported"`
}

// run is the handle of a spawned wake run.
type run struct {
	mode   power.ScreenMode
	cancel context.CancelFunc
	done   chan struct{}
}

// Controller serializes control operations and owns the active run.
type Controller struct {
	state       *wake.State
	store       Persister
	caps        power.Capabilities
	factory     ServiceFactory
	stopTimeout time.Duration
	log         *logrus.Entry

	opMu   sync.Mutex
	active *run

	subMu  sync.Mutex
	subs   map[int]func(Status)
	nextID int
}

// Option configures a Controller.
type Option func(*Controller)

// WithCapabilities overrides the detected platform capabilities.
func WithCapabilities(caps power.Capabilities) Option {
	return func(c *Controller) { c.caps = caps }
}

// WithServiceFactory replaces the default wake service factory.
func WithServiceFactory(f ServiceFactory) Option {
	return func(c *Controller) { c.factory = f }
}

// WithStopTimeout bounds the wait for an old run during stop and restart.
func WithStopTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.stopTimeout = d
		}
	}
}

// WithLogger sets the log entry.
func WithLogger(l *logrus.Entry) Option {
	return func(c *Controller) { c.log = l }
}

// New creates a Controller over the shared wake state.
func New(st *wake.State, store Persister, opts ...Option) *Controller {
	c := &Controller{
		state:       st,
		store:       store,
		caps:        power.Detect(),
		stopTimeout: DefaultStopTimeout,
		log:         logrus.WithField("component", "control"),
		subs:        make(map[int]func(Status)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.factory == nil {
		c.factory = DefaultServiceFactory(c.caps, wake.DefaultInterval)
	}
	return c
}

// DefaultServiceFactory builds a wake.Service with the platform display
// controller, selected once per start.
func DefaultServiceFactory(caps power.Capabilities, interval time.Duration) ServiceFactory {
	return func(st *wake.State) Runner {
		return wake.New(st, power.NewDisplayControl(caps),
			wake.WithCapabilities(caps),
			wake.WithInterval(interval))
	}
}

// Capabilities returns the descriptor the controller validates modes against.
func (c *Controller) Capabilities() power.Capabilities {
	return c.caps
}

// Status returns a snapshot of the controller state.
func (c *Controller) Status() Status {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	return c.statusLocked()
}

func (c *Controller) statusLocked() Status {
	running := false
	if c.active != nil {
		select {
		case <-c.active.done:
		default:
			running = true
		}
	}
	return Status{
		Awake:                   c.state.Awake(),
		Mode:                    c.state.Mode(),
		Running:                 running,
		AllowScreenOffSupported: c.caps.Supports(power.AllowScreenOff),
	}
}

// Toggle flips sleep prevention. Turning it on starts a run with the current
// mode; turning it off stops the active run. The new state is persisted; a
// persistence failure is returned alongside the status already applied.
func (c *Controller) Toggle() (st Status, err error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	defer c.recoverOp("toggle", &err)

	was := c.state.Awake()
	now := !was
	c.state.SetAwake(now)
	mode := c.state.Mode()

	c.log.WithFields(logrus.Fields{"from": was, "to": now}).Info("toggle sleep prevention")

	if now {
		c.startLocked(mode)
	} else {
		c.stopLocked()
	}

	err = c.persist(now, mode)
	st = c.statusLocked()
	c.notify(st)
	return st, err
}

// ChangeMode sets the screen mode. Unsupported modes are rejected before any
// state changes. When awake, the active run is torn down and a new one is
// started with the new mode once the old one has finished.
func (c *Controller) ChangeMode(mode power.ScreenMode) (_ power.ScreenMode, err error) {
	if !c.caps.Supports(mode) {
		return c.state.Mode(), apperr.New(apperr.UnsupportedMode,
			fmt.Sprintf("%s is not available on this platform", mode), nil,
			"Use KeepScreenOn; this platform cannot keep the system awake while the screen sleeps.")
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()
	defer c.recoverOp("change mode", &err)

	c.log.WithField("mode", mode).Info("change screen mode")
	c.state.SetMode(mode)

	awake := c.state.Awake()
	err = c.persist(awake, mode)

	if awake {
		c.log.Info("restarting wake service with new screen mode")
		c.state.SetAwake(false)
		c.stopLocked()
		c.state.SetAwake(true)
		c.startLocked(mode)
	}

	c.notify(c.statusLocked())
	return mode, err
}

// Restore applies persisted state at startup and starts a run if it says
// awake. A persisted mode the platform cannot honor falls back to
// KeepScreenOn.
func (c *Controller) Restore(st state.State) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	mode := st.ScreenMode
	if !c.caps.Supports(mode) {
		c.log.WithField("mode", mode).Warn("persisted screen mode unsupported here, using KeepScreenOn")
		mode = power.KeepScreenOn
	}
	c.state.SetMode(mode)
	c.state.SetAwake(st.SleepDisabled)

	c.log.WithFields(logrus.Fields{"awake": st.SleepDisabled, "mode": mode}).Info("restored state")
	if st.SleepDisabled {
		c.startLocked(mode)
	}
	c.notify(c.statusLocked())
}

// Quit clears the flag and stops the active run. Nothing is persisted so the
// next launch resumes the last saved preference.
func (c *Controller) Quit() {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.log.Info("quit requested")
	c.state.SetAwake(false)
	c.stopLocked()
	c.notify(c.statusLocked())
}

// Subscribe registers fn for status changes and returns a function that
// removes it. fn is called synchronously and must not block.
func (c *Controller) Subscribe(fn func(Status)) (cancel func()) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	return func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Controller) notify(st Status) {
	c.subMu.Lock()
	fns := make([]func(Status), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

func (c *Controller) persist(awake bool, mode power.ScreenMode) error {
	err := c.store.Write(state.State{SleepDisabled: awake, ScreenMode: mode})
	if err != nil {
		c.log.WithError(err).Error("failed to persist state")
	}
	return err
}

// startLocked spawns a run. Any previous run must already be stopped.
func (c *Controller) startLocked(mode power.ScreenMode) {
	if c.active != nil {
		c.stopLocked()
	}

	svc := c.factory(c.state)
	ctx, cancel := context.WithCancel(context.Background())
	r := &run{mode: mode, cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(r.done)
		defer cancel()
		if err := svc.Run(ctx, mode); err != nil {
			c.log.WithError(err).Error("wake service error")
		}
	}()
	c.active = r
}

// stopLocked cancels the active run and waits for it to finish, bounded by
// the stop timeout.
func (c *Controller) stopLocked() {
	r := c.active
	if r == nil {
		return
	}
	c.active = nil

	r.cancel()
	select {
	case <-r.done:
	case <-time.After(c.stopTimeout):
		c.log.WithField("timeout", c.stopTimeout).Warn("wake service did not stop in time, abandoning it")
	}
}

// recoverOp turns a panic inside a control operation into a reported error
// so a UI event can never take the process down.
func (c *Controller) recoverOp(op string, err *error) {
	if r := recover(); r != nil {
		c.log.WithField("panic", r).Errorf("%s failed", op)
		*err = apperr.New(apperr.StateIO,
			fmt.Sprintf("Control operation %q failed", op), fmt.Errorf("%v", r),
			"Retry the operation; restart the application if it keeps failing.")
	}
}
