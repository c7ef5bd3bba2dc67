//go:build !darwin && !linux && !windows

package power

func detectCapabilities() Capabilities {
	return Capabilities{}
}

func newDisplayControl() DisplayControl {
	return NoopDisplayControl{}
}
