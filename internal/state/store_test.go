package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/scienceol/tea/internal/apperr"
	"github.com/scienceol/tea/internal/power"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nested", "state.json"))

	for _, st := range []State{
		{SleepDisabled: false, ScreenMode: power.AllowScreenOff},
		{SleepDisabled: false, ScreenMode: power.KeepScreenOn},
		{SleepDisabled: true, ScreenMode: power.AllowScreenOff},
		{SleepDisabled: true, ScreenMode: power.KeepScreenOn},
	} {
		require.NoError(t, store.Write(st))
		assert.Equal(t, st, store.Read())
	}
}

func TestStore_ReadMissingReturnsDefault(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "state.json"))
	assert.Equal(t, State{SleepDisabled: false, ScreenMode: power.AllowScreenOff}, store.Read())
}

func TestStore_ReadCorruptReturnsDefault(t *testing.T) {
	tests := map[string]string{
		"garbage":      "corrupted data",
		"invalid json": "{invalid json}",
		"unknown mode": `{"sleep_disabled": true, "screen_mode": "Dim"}`,
		"wrong type":   `{"sleep_disabled": "yes"}`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "state.json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
			assert.Equal(t, State{}, NewStore(path).Read())
		})
	}
}

func TestStore_ReadMissingFieldsUseDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sleep_disabled": true, "extra": 1}`), 0o644))

	assert.Equal(t, State{SleepDisabled: true, ScreenMode: power.AllowScreenOff}, NewStore(path).Read())
}

func TestStore_WriteFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, NewStore(path).Write(State{SleepDisabled: true, ScreenMode: power.KeepScreenOn}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sleep_disabled": true, "screen_mode": "KeepScreenOn"}`, string(data))
}

func TestStore_WriteErrors(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	// Parent "directory" is a regular file.
	err := NewStore(filepath.Join(blocker, "state.json")).Write(State{})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.StateIO))

	err = NewStore(filepath.Join(dir, "state.json")).Write(State{ScreenMode: power.ScreenMode(9)})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.StateSerialization))
}
