//go:build !darwin && !linux && !windows

package input

import (
	"fmt"
	"runtime"
)

func newSimulator() (Simulator, error) {
	return nil, fmt.Errorf("input simulation is not supported on %s", runtime.GOOS)
}
