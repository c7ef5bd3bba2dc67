package apperr

import (
	"io/fs"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestError_Format(t *testing.T) {
	err := New(StateIO, "Failed to write state", fs.ErrPermission, "Check permissions.")
	assert.Equal(t,
		"State I/O error: Failed to write state (cause: permission denied, hint: Check permissions.)",
		err.Error())

	noCause := New(UnsupportedMode, "AllowScreenOff is not available", nil, "Use KeepScreenOn.")
	assert.Contains(t, noCause.Error(), "cause: none")
}

func TestIsKind_ThroughWrapping(t *testing.T) {
	base := New(InputSimulation, "Failed to initialize input simulator", errors.New("no display"), "")
	wrapped := errors.Wrap(base, "wake run")

	assert.True(t, IsKind(wrapped, InputSimulation))
	assert.False(t, IsKind(wrapped, StateIO))
	assert.False(t, IsKind(errors.New("plain"), InputSimulation))
	assert.True(t, errors.Is(New(StateIO, "x", fs.ErrNotExist, ""), fs.ErrNotExist))
}
