// Package wake runs the loop that keeps the system from sleeping.
//
// A Service applies the display policy for its screen mode, optionally taps a
// neutral key every interval, and restores the display policy when the shared
// awake flag drops or its context is cancelled. A Service runs once; a restart
// builds a new one.
package wake

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/scienceol/tea/internal/apperr"
	"github.com/scienceol/tea/internal/input"
	"github.com/scienceol/tea/internal/power"
	"github.com/sirupsen/logrus"
)

// DefaultInterval is the pause between activity taps. It must stay well
// below the shortest idle-sleep timeout it has to defeat.
const DefaultInterval = 60 * time.Second

// Phase is the lifecycle position of a Service.
type Phase int32

const (
	Idle Phase = iota
	Running
	Stopped
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ErrReused is returned by Run on a Service that already ran.
var ErrReused = errors.New("wake service already used; create a new one")

// Service is a single wake run.
type Service struct {
	state    *State
	display  power.DisplayControl
	caps     power.Capabilities
	newInput input.Factory
	interval time.Duration
	log      *logrus.Entry

	phase atomic.Int32
}

// Option configures a Service.
type Option func(*Service)

// WithCapabilities overrides the detected platform capabilities.
func WithCapabilities(caps power.Capabilities) Option {
	return func(s *Service) { s.caps = caps }
}

// WithInterval sets the pause between cycles.
func WithInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithInput sets the simulator factory.
func WithInput(f input.Factory) Option {
	return func(s *Service) { s.newInput = f }
}

// WithLogger sets the log entry.
func WithLogger(l *logrus.Entry) Option {
	return func(s *Service) { s.log = l }
}

// New creates a Service bound to the shared state and a display controller.
func New(st *State, display power.DisplayControl, opts ...Option) *Service {
	s := &Service{
		state:    st,
		display:  display,
		caps:     power.Detect(),
		newInput: input.New,
		interval: DefaultInterval,
		log:      logrus.WithField("component", "wake"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Phase returns the current lifecycle phase.
func (s *Service) Phase() Phase {
	return Phase(s.phase.Load())
}

// NeedsActivitySignal decides the wake strategy. Without a strong primitive
// the simulated tap is the only thing keeping the system up. With one, the
// tap is kept for KeepScreenOn as redundancy and skipped for AllowScreenOff
// so the display can sleep.
func NeedsActivitySignal(caps power.Capabilities, mode power.ScreenMode) bool {
	if !caps.StrongSleepPrimitive {
		return true
	}
	return mode.ShouldKeepDisplayOn()
}

// Run keeps the system awake until the shared flag is cleared or ctx is
// cancelled. The display policy for mode is applied on entry and restored
// on every exit path. The only error is a failure to acquire the input
// simulator; individual tap failures are logged and the loop continues.
func (s *Service) Run(ctx context.Context, mode power.ScreenMode) error {
	if !s.phase.CompareAndSwap(int32(Idle), int32(Running)) {
		return ErrReused
	}
	defer s.phase.Store(int32(Stopped))

	log := s.log.WithField("mode", mode)
	log.Info("starting wake service")

	s.display.SetDisplayMode(mode)
	defer func() {
		s.display.RestoreNormalMode()
		log.Info("wake service stopped")
	}()

	useActivity := NeedsActivitySignal(s.caps, mode)
	log.WithFields(logrus.Fields{
		"activity_signal": useActivity,
		"platform_api":    s.caps.StrongSleepPrimitive,
	}).Info("wake strategy selected")

	var sim input.Simulator
	if useActivity {
		var err error
		sim, err = s.newInput()
		if err != nil {
			return apperr.New(apperr.InputSimulation,
				"Failed to initialize input simulator", err,
				"Ensure the application has necessary permissions for input simulation.")
		}
		defer sim.Close()
	}

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for s.state.Awake() {
		if sim != nil {
			if err := sim.Tap(); err != nil {
				log.WithError(err).Error("F15 key press failed (continuing)")
			} else {
				log.Trace("F15 key press sent")
			}
		} else {
			log.Trace("keeping system awake via platform API only")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			timer.Reset(s.interval)
		}
	}
	return nil
}
