package control

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/scienceol/tea/internal/apperr"
	"github.com/scienceol/tea/internal/input"
	"github.com/scienceol/tea/internal/power"
	"github.com/scienceol/tea/internal/state"
	"github.com/scienceol/tea/internal/wake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu     sync.Mutex
	writes []state.State
	err    error
	panics bool
}

func (m *memStore) Write(st state.State) error {
	if m.panics {
		panic("disk on fire")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, st)
	return m.err
}

func (m *memStore) Last() state.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes[len(m.writes)-1]
}

func (m *memStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.writes)
}

type nopDisplay struct{}

func (nopDisplay) SetDisplayMode(power.ScreenMode) {}
func (nopDisplay) RestoreNormalMode()              {}

type nopSim struct{}

func (nopSim) Tap() error   { return nil }
func (nopSim) Close() error { return nil }

// recorder builds real wake services with fakes and tracks how many are live.
type recorder struct {
	mu    sync.Mutex
	modes []power.ScreenMode
	live  atomic.Int32
	peak  atomic.Int32
}

type trackedRunner struct {
	rec *recorder
	svc *wake.Service
}

func (r trackedRunner) Run(ctx context.Context, mode power.ScreenMode) error {
	r.rec.mu.Lock()
	r.rec.modes = append(r.rec.modes, mode)
	r.rec.mu.Unlock()

	n := r.rec.live.Add(1)
	for {
		peak := r.rec.peak.Load()
		if n <= peak || r.rec.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	defer r.rec.live.Add(-1)
	return r.svc.Run(ctx, mode)
}

func (r *recorder) factory(caps power.Capabilities) ServiceFactory {
	return func(st *wake.State) Runner {
		svc := wake.New(st, nopDisplay{},
			wake.WithCapabilities(caps),
			wake.WithInterval(10*time.Millisecond),
			wake.WithInput(func() (input.Simulator, error) { return nopSim{}, nil }))
		return trackedRunner{rec: r, svc: svc}
	}
}

func (r *recorder) Modes() []power.ScreenMode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]power.ScreenMode(nil), r.modes...)
}

var strong = power.Capabilities{StrongSleepPrimitive: true}
var weak = power.Capabilities{}

func newTestController(t *testing.T, caps power.Capabilities, awake bool, mode power.ScreenMode) (*Controller, *memStore, *recorder) {
	t.Helper()
	store := &memStore{}
	rec := &recorder{}
	c := New(wake.NewState(awake, mode), store,
		WithCapabilities(caps),
		WithServiceFactory(rec.factory(caps)),
		WithStopTimeout(time.Second))
	t.Cleanup(c.Quit)
	return c, store, rec
}

func waitLive(t *testing.T, rec *recorder, n int32) {
	t.Helper()
	require.Eventually(t, func() bool { return rec.live.Load() == n }, time.Second, 5*time.Millisecond)
}

func TestController_Scenario(t *testing.T) {
	c, store, rec := newTestController(t, strong, false, power.AllowScreenOff)

	st, err := c.Toggle()
	require.NoError(t, err)
	assert.True(t, st.Awake)
	assert.Equal(t, power.AllowScreenOff, st.Mode)
	assert.Equal(t, state.State{SleepDisabled: true, ScreenMode: power.AllowScreenOff}, store.Last())
	waitLive(t, rec, 1)
	assert.Equal(t, []power.ScreenMode{power.AllowScreenOff}, rec.Modes())

	mode, err := c.ChangeMode(power.KeepScreenOn)
	require.NoError(t, err)
	assert.Equal(t, power.KeepScreenOn, mode)
	assert.Equal(t, state.State{SleepDisabled: true, ScreenMode: power.KeepScreenOn}, store.Last())
	waitLive(t, rec, 1)
	assert.Equal(t, []power.ScreenMode{power.AllowScreenOff, power.KeepScreenOn}, rec.Modes())
	assert.EqualValues(t, 1, rec.peak.Load(), "old run must finish before the new one starts")

	st, err = c.Toggle()
	require.NoError(t, err)
	assert.False(t, st.Awake)
	assert.False(t, st.Running)
	assert.Equal(t, state.State{SleepDisabled: false, ScreenMode: power.KeepScreenOn}, store.Last())
	assert.Zero(t, rec.live.Load())
}

func TestController_ToggleTwiceIsIdentity(t *testing.T) {
	for _, mode := range []power.ScreenMode{power.AllowScreenOff, power.KeepScreenOn} {
		for _, awake := range []bool{false, true} {
			c, _, _ := newTestController(t, strong, awake, mode)
			before := c.Status()

			_, err := c.Toggle()
			require.NoError(t, err)
			after, err := c.Toggle()
			require.NoError(t, err)

			assert.Equal(t, before.Awake, after.Awake)
			assert.Equal(t, before.Mode, after.Mode)
		}
	}
}

func TestController_ChangeModeWhileAsleepDoesNotStart(t *testing.T) {
	c, store, rec := newTestController(t, strong, false, power.AllowScreenOff)

	_, err := c.ChangeMode(power.KeepScreenOn)
	require.NoError(t, err)

	assert.Equal(t, state.State{SleepDisabled: false, ScreenMode: power.KeepScreenOn}, store.Last())
	assert.Empty(t, rec.Modes())
	assert.False(t, c.Status().Running)
}

func TestController_RejectsUnsupportedMode(t *testing.T) {
	c, store, rec := newTestController(t, weak, false, power.KeepScreenOn)
	_, err := c.Toggle()
	require.NoError(t, err)
	waitLive(t, rec, 1)
	writes := store.Count()

	mode, err := c.ChangeMode(power.AllowScreenOff)

	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.UnsupportedMode))
	assert.Equal(t, power.KeepScreenOn, mode)
	assert.Equal(t, writes, store.Count())
	assert.Equal(t, []power.ScreenMode{power.KeepScreenOn}, rec.Modes())
	assert.False(t, c.Status().AllowScreenOffSupported)
}

func TestController_PersistFailureKeepsInMemoryState(t *testing.T) {
	c, store, rec := newTestController(t, strong, false, power.AllowScreenOff)
	store.err = apperr.New(apperr.StateIO, "disk full", errors.New("ENOSPC"), "")

	st, err := c.Toggle()

	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.StateIO))
	assert.True(t, st.Awake)
	waitLive(t, rec, 1)
}

func TestController_PanicIsReported(t *testing.T) {
	c, store, _ := newTestController(t, strong, false, power.AllowScreenOff)
	store.panics = true

	_, err := c.Toggle()
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.StateIO))

	// The operation mutex must have been released.
	store.panics = false
	_, err = c.Toggle()
	assert.NoError(t, err)
}

func TestController_Restore(t *testing.T) {
	t.Run("awake starts a run", func(t *testing.T) {
		c, store, rec := newTestController(t, strong, false, power.AllowScreenOff)
		c.Restore(state.State{SleepDisabled: true, ScreenMode: power.AllowScreenOff})

		waitLive(t, rec, 1)
		assert.Equal(t, []power.ScreenMode{power.AllowScreenOff}, rec.Modes())
		assert.Zero(t, store.Count(), "restore must not write")
	})

	t.Run("asleep starts nothing", func(t *testing.T) {
		c, _, rec := newTestController(t, strong, false, power.AllowScreenOff)
		c.Restore(state.State{SleepDisabled: false, ScreenMode: power.KeepScreenOn})

		assert.Equal(t, power.KeepScreenOn, c.Status().Mode)
		assert.Empty(t, rec.Modes())
	})

	t.Run("unsupported mode falls back", func(t *testing.T) {
		c, _, rec := newTestController(t, weak, false, power.KeepScreenOn)
		c.Restore(state.State{SleepDisabled: true, ScreenMode: power.AllowScreenOff})

		waitLive(t, rec, 1)
		assert.Equal(t, []power.ScreenMode{power.KeepScreenOn}, rec.Modes())
		assert.Equal(t, power.KeepScreenOn, c.Status().Mode)
	})
}

func TestController_QuitStopsWithoutPersisting(t *testing.T) {
	c, store, rec := newTestController(t, strong, false, power.KeepScreenOn)
	_, err := c.Toggle()
	require.NoError(t, err)
	waitLive(t, rec, 1)
	writes := store.Count()

	c.Quit()

	assert.Zero(t, rec.live.Load())
	assert.False(t, c.Status().Awake)
	assert.Equal(t, writes, store.Count())
}

func TestController_ConcurrentTogglesKeepOneRun(t *testing.T) {
	c, _, rec := newTestController(t, strong, false, power.KeepScreenOn)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%5 == 0 {
				_, _ = c.ChangeMode(power.AllowScreenOff)
				return
			}
			_, _ = c.Toggle()
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, rec.peak.Load(), int32(1))
	st := c.Status()
	// 16 toggles: even count returns to asleep.
	assert.False(t, st.Awake)
	assert.False(t, st.Running)
}

func TestController_Subscribe(t *testing.T) {
	c, _, _ := newTestController(t, strong, false, power.AllowScreenOff)

	var mu sync.Mutex
	var got []Status
	cancel := c.Subscribe(func(st Status) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, st)
	})

	_, err := c.Toggle()
	require.NoError(t, err)
	cancel()
	_, err = c.Toggle()
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.True(t, got[0].Awake)
	assert.True(t, got[0].Running)
}
