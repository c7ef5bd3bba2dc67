package power

import "sync"

// Capabilities describes what the platform can do to hold off sleep.
// It is resolved once per process and never changes afterwards.
type Capabilities struct {
	// StrongSleepPrimitive is set when the platform can suppress system
	// sleep without also forcing the display on.
	StrongSleepPrimitive bool
}

// Supports reports whether mode can be honored with these capabilities.
func (c Capabilities) Supports(mode ScreenMode) bool {
	if mode == KeepScreenOn {
		return true
	}
	return c.StrongSleepPrimitive
}

var (
	detectOnce sync.Once
	detected   Capabilities
)

// Detect probes the platform on first use and returns the cached result on
// every later call. See detectCapabilities in the display_*.go files.
func Detect() Capabilities {
	detectOnce.Do(func() {
		detected = detectCapabilities()
	})
	return detected
}
