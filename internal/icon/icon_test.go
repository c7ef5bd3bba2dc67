package icon

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"testing"

	"github.com/scienceol/tea/internal/power"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImage_Dimensions(t *testing.T) {
	for _, awake := range []bool{false, true} {
		for _, mode := range []power.ScreenMode{power.KeepScreenOn, power.AllowScreenOff} {
			img := Image(awake, mode)
			assert.Equal(t, Size, img.Bounds().Dx())
			assert.Equal(t, Size, img.Bounds().Dy())
			assert.Len(t, img.Pix, 32*32*4)
		}
	}
}

func TestImage_Distinct(t *testing.T) {
	asleep := Image(false, power.KeepScreenOn)
	keep := Image(true, power.KeepScreenOn)
	allow := Image(true, power.AllowScreenOff)

	assert.NotEqual(t, asleep.Pix, keep.Pix)
	assert.NotEqual(t, asleep.Pix, allow.Pix)
	assert.NotEqual(t, keep.Pix, allow.Pix)

	// Mode does not matter while asleep.
	assert.Equal(t, asleep.Pix, Image(false, power.AllowScreenOff).Pix)
}

func TestImage_Deterministic(t *testing.T) {
	assert.Equal(t, Image(true, power.AllowScreenOff).Pix, Image(true, power.AllowScreenOff).Pix)
}

func TestPNG_Decodes(t *testing.T) {
	data, err := PNG(true, power.KeepScreenOn)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, Size, img.Bounds().Dx())
}

func TestICO_Container(t *testing.T) {
	data, err := ICO(false, power.KeepScreenOn)
	require.NoError(t, err)
	require.Greater(t, len(data), 22)

	assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(data[0:]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[2:]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[4:]))
	assert.Equal(t, byte(32), data[6])

	size := binary.LittleEndian.Uint32(data[14:])
	offset := binary.LittleEndian.Uint32(data[18:])
	assert.Equal(t, uint32(22), offset)
	assert.Equal(t, int(size), len(data)-22)

	_, err = png.Decode(bytes.NewReader(data[offset:]))
	assert.NoError(t, err)
}

func TestTooltip(t *testing.T) {
	assert.Equal(t, "Tea - Sleep prevention disabled", Tooltip(false, power.KeepScreenOn))
	assert.Equal(t, "Tea - Sleep prevention disabled", Tooltip(false, power.AllowScreenOff))
	assert.Equal(t, "Tea - Screen & System On", Tooltip(true, power.KeepScreenOn))
	assert.Equal(t, "Tea - System On, Screen Can Sleep", Tooltip(true, power.AllowScreenOff))
}
