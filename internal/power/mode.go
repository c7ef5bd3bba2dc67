package power

import "fmt"

// ScreenMode is the user's preference for the display while the system is
// kept awake.
type ScreenMode int

const (
	// AllowScreenOff keeps the system awake but lets the display follow the
	// normal power policy. It is the default.
	AllowScreenOff ScreenMode = iota
	// KeepScreenOn prevents the display from sleeping or dimming.
	KeepScreenOn
)

// ShouldKeepDisplayOn reports whether the mode requires an active display.
func (m ScreenMode) ShouldKeepDisplayOn() bool {
	return m == KeepScreenOn
}

// IsSupported reports whether the mode can be honored on this machine.
// KeepScreenOn is always supported.
func (m ScreenMode) IsSupported() bool {
	return Detect().Supports(m)
}

func (m ScreenMode) String() string {
	switch m {
	case KeepScreenOn:
		return "KeepScreenOn"
	case AllowScreenOff:
		return "AllowScreenOff"
	default:
		return fmt.Sprintf("ScreenMode(%d)", int(m))
	}
}

// MarshalText encodes the mode as its name so persisted state stays readable.
func (m ScreenMode) MarshalText() ([]byte, error) {
	switch m {
	case KeepScreenOn, AllowScreenOff:
		return []byte(m.String()), nil
	default:
		return nil, fmt.Errorf("unknown screen mode %d", int(m))
	}
}

// UnmarshalText accepts only the canonical names.
func (m *ScreenMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "KeepScreenOn":
		*m = KeepScreenOn
	case "AllowScreenOff":
		*m = AllowScreenOff
	default:
		return fmt.Errorf("unknown screen mode %q", string(text))
	}
	return nil
}

// ParseScreenMode accepts the canonical names plus the short CLI forms
// keep/on and allow/off.
func ParseScreenMode(s string) (ScreenMode, error) {
	switch s {
	case "KeepScreenOn", "keep", "on":
		return KeepScreenOn, nil
	case "AllowScreenOff", "allow", "off":
		return AllowScreenOff, nil
	}
	return AllowScreenOff, fmt.Errorf("unknown screen mode %q (want keep or allow)", s)
}
