//go:build windows

package input

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	inputKeyboard = 1
	keyEventKeyUp = 0x0002
	virtualKeyF15 = 0x7E
)

var (
	user32        = windows.NewLazySystemDLL("user32.dll")
	procSendInput = user32.NewProc("SendInput")
)

// keybdInput mirrors KEYBDINPUT.
type keybdInput struct {
	vk        uint16
	scan      uint16
	flags     uint32
	time      uint32
	extraInfo uintptr
}

// keyboardInput mirrors INPUT with the keyboard member of the union; the
// padding makes up the size of MOUSEINPUT, the largest member.
type keyboardInput struct {
	inputType uint32
	ki        keybdInput
	padding   uint64
}

type windowsSimulator struct{}

func newSimulator() (Simulator, error) {
	if err := procSendInput.Find(); err != nil {
		return nil, fmt.Errorf("SendInput unavailable: %w", err)
	}
	return windowsSimulator{}, nil
}

func (windowsSimulator) Tap() error {
	inputs := [2]keyboardInput{
		{inputType: inputKeyboard, ki: keybdInput{vk: virtualKeyF15}},
		{inputType: inputKeyboard, ki: keybdInput{vk: virtualKeyF15, flags: keyEventKeyUp}},
	}
	n, _, err := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if int(n) != len(inputs) {
		return fmt.Errorf("SendInput sent %d of %d events: %w", n, len(inputs), err)
	}
	return nil
}

func (windowsSimulator) Close() error { return nil }
