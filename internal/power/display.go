package power

// DisplayControl asserts or releases the platform power requirements that
// match a ScreenMode.
type DisplayControl interface {
	// SetDisplayMode applies the assertion for mode. Calling it again with
	// the same mode is a no-op. Platform failures are logged; the periodic
	// activity signal remains the fallback.
	SetDisplayMode(mode ScreenMode)

	// RestoreNormalMode releases anything SetDisplayMode asserted. Safe to
	// call when nothing is asserted and safe to call more than once.
	RestoreNormalMode()
}

// NewDisplayControl returns the platform controller when caps report a
// strong sleep primitive and the no-op controller otherwise.
// See display_darwin.go, display_linux.go, display_windows.go.
func NewDisplayControl(caps Capabilities) DisplayControl {
	if !caps.StrongSleepPrimitive {
		return NoopDisplayControl{}
	}
	return newDisplayControl()
}

// NoopDisplayControl is used where no native primitive exists; the wake loop
// then relies entirely on simulated activity.
type NoopDisplayControl struct{}

func (NoopDisplayControl) SetDisplayMode(ScreenMode) {}
func (NoopDisplayControl) RestoreNormalMode()        {}
