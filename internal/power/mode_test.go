package power

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreenMode_DefaultAllowsScreenOff(t *testing.T) {
	var m ScreenMode
	assert.Equal(t, AllowScreenOff, m)
}

func TestScreenMode_ShouldKeepDisplayOn(t *testing.T) {
	assert.True(t, KeepScreenOn.ShouldKeepDisplayOn())
	assert.False(t, AllowScreenOff.ShouldKeepDisplayOn())
}

func TestScreenMode_IsSupportedIsStable(t *testing.T) {
	assert.True(t, KeepScreenOn.IsSupported())

	first := AllowScreenOff.IsSupported()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, AllowScreenOff.IsSupported())
	}
	assert.Equal(t, Detect().StrongSleepPrimitive, first)
}

func TestCapabilities_Supports(t *testing.T) {
	strong := Capabilities{StrongSleepPrimitive: true}
	weak := Capabilities{}

	assert.True(t, strong.Supports(KeepScreenOn))
	assert.True(t, strong.Supports(AllowScreenOff))
	assert.True(t, weak.Supports(KeepScreenOn))
	assert.False(t, weak.Supports(AllowScreenOff))
}

func TestScreenMode_JSON(t *testing.T) {
	for _, m := range []ScreenMode{KeepScreenOn, AllowScreenOff} {
		data, err := json.Marshal(m)
		require.NoError(t, err)
		assert.Equal(t, `"`+m.String()+`"`, string(data))

		var got ScreenMode
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, m, got)
	}

	var m ScreenMode
	assert.Error(t, json.Unmarshal([]byte(`"Dim"`), &m))
	_, err := json.Marshal(ScreenMode(7))
	assert.Error(t, err)
}

func TestParseScreenMode(t *testing.T) {
	tests := []struct {
		in   string
		want ScreenMode
	}{
		{"keep", KeepScreenOn},
		{"on", KeepScreenOn},
		{"KeepScreenOn", KeepScreenOn},
		{"allow", AllowScreenOff},
		{"off", AllowScreenOff},
		{"AllowScreenOff", AllowScreenOff},
	}
	for _, tt := range tests {
		got, err := ParseScreenMode(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseScreenMode("dim")
	assert.Error(t, err)
}

func TestNewDisplayControl_NoopWithoutStrongPrimitive(t *testing.T) {
	dc := NewDisplayControl(Capabilities{})
	assert.IsType(t, NoopDisplayControl{}, dc)

	// Restore without a prior set, and twice in a row, must be harmless.
	dc.RestoreNormalMode()
	dc.SetDisplayMode(KeepScreenOn)
	dc.RestoreNormalMode()
	dc.RestoreNormalMode()
}
