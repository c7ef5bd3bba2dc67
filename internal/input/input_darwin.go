//go:build darwin

package input

import (
	"fmt"
	"os/exec"
)

// f15KeyCode is the macOS virtual key code for F15.
const f15KeyCode = "113"

// darwinSimulator asks System Events to send the key. The first tap may
// trigger an accessibility permission prompt.
type darwinSimulator struct {
	path string
}

func newSimulator() (Simulator, error) {
	path, err := exec.LookPath("osascript")
	if err != nil {
		return nil, fmt.Errorf("osascript not found: %w", err)
	}
	return &darwinSimulator{path: path}, nil
}

func (d *darwinSimulator) Tap() error {
	script := `tell application "System Events" to key code ` + f15KeyCode
	if out, err := exec.Command(d.path, "-e", script).CombinedOutput(); err != nil {
		return fmt.Errorf("osascript: %w: %s", err, out)
	}
	return nil
}

func (d *darwinSimulator) Close() error { return nil }
