// Package input emits the periodic neutral key press that keeps idle timers
// from expiring on platforms without a native sleep-prevention primitive.
//
// F15 is used because almost no keyboard has it and applications rarely bind
// it, so the tap does not interfere with whatever the user is doing.
package input

// Simulator taps the neutral key.
type Simulator interface {
	// Tap presses and releases the key once.
	Tap() error
	// Close releases the underlying connection or handle.
	Close() error
}

// Factory creates a Simulator. New is the platform default.
type Factory func() (Simulator, error)

// New returns the platform Simulator, or an error when input cannot be
// simulated here (no display server, missing permissions, unsupported OS).
// See input_darwin.go, input_linux.go, input_windows.go, input_other.go.
func New() (Simulator, error) {
	return newSimulator()
}
