// Package icon renders the tray icon and tooltip for a controller state.
// Everything here is pure: the same inputs always produce the same pixels.
package icon

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"runtime"

	"github.com/scienceol/tea/internal/apperr"
	"github.com/scienceol/tea/internal/power"
)

// Size is the edge length of the icon in pixels.
const Size = 32

var (
	gray  = color.RGBA{R: 0x8a, G: 0x8a, B: 0x8a, A: 0xff}
	green = color.RGBA{R: 0x2e, G: 0xa0, B: 0x43, A: 0xff}
	steam = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xd0}
)

// Image draws the icon: a gray disc while sleep is allowed, a green disc
// while it is prevented. With AllowScreenOff the green disc is drawn as a
// ring, since only the system is held awake.
func Image(awake bool, mode power.ScreenMode) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Size, Size))

	fill := gray
	if awake {
		fill = green
	}
	hollow := awake && !mode.ShouldKeepDisplayOn()

	const (
		center = float64(Size-1) / 2
		outer  = 14.0
		inner  = 8.0
	)
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			dx, dy := float64(x)-center, float64(y)-center
			d2 := dx*dx + dy*dy
			if d2 > outer*outer {
				continue
			}
			if hollow && d2 < inner*inner {
				continue
			}
			img.SetRGBA(x, y, fill)
		}
	}

	if awake && mode.ShouldKeepDisplayOn() {
		// Three short bars across the middle.
		for _, x := range []int{11, 15, 19} {
			for y := 10; y < 22; y++ {
				img.SetRGBA(x, y, steam)
				img.SetRGBA(x+1, y, steam)
			}
		}
	}
	return img
}

// PNG returns the icon encoded as PNG.
func PNG(awake bool, mode power.ScreenMode) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, Image(awake, mode)); err != nil {
		return nil, apperr.New(apperr.IconProcessing,
			"Failed to encode tray icon as PNG", err,
			"The icon is generated at runtime; report this as a bug.")
	}
	return buf.Bytes(), nil
}

// ICO returns the icon as a single-image ICO container holding the PNG
// encoding, as Windows tray APIs expect.
func ICO(awake bool, mode power.ScreenMode) ([]byte, error) {
	data, err := PNG(awake, mode)
	if err != nil {
		return nil, err
	}

	const headerLen = 6 + 16
	var buf bytes.Buffer
	buf.Grow(headerLen + len(data))

	// ICONDIR
	_ = binary.Write(&buf, binary.LittleEndian, [3]uint16{0, 1, 1})
	// ICONDIRENTRY
	buf.WriteByte(Size)
	buf.WriteByte(Size)
	buf.WriteByte(0) // palette
	buf.WriteByte(0) // reserved
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))  // planes
	_ = binary.Write(&buf, binary.LittleEndian, uint16(32)) // bpp
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(data)))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(headerLen))

	buf.Write(data)
	return buf.Bytes(), nil
}

// ForPlatform returns the encoding the tray expects on the running OS.
func ForPlatform(awake bool, mode power.ScreenMode) ([]byte, error) {
	if runtime.GOOS == "windows" {
		return ICO(awake, mode)
	}
	return PNG(awake, mode)
}

// Tooltip returns the status text shown next to the icon.
func Tooltip(awake bool, mode power.ScreenMode) string {
	if !awake {
		return "Tea - Sleep prevention disabled"
	}
	if mode.ShouldKeepDisplayOn() {
		return "Tea - Screen & System On"
	}
	return "Tea - System On, Screen Can Sleep"
}
