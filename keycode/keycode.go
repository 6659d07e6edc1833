// Package keycode defines the USB HID usage table subset that indexes
// abi.Events.KeysHeld. A-Z occupies 0x04..0x1D, matching the HID Keyboard
// and Keypad usage page.
package keycode

// Code identifies a keyboard key by its USB HID usage id.
type Code int

// MaxCode is the size of the keysHeld bitmap (abi.Events.KeysHeld).
const MaxCode = 512

// Letters, 0x04..0x1D.
const (
	A Code = 0x04 + iota
	B
	C
	D
	E
	F
	G
	H
	I
	J
	K
	L
	M
	N
	O
	P
	Q
	R
	S
	T
	U
	V
	W
	X
	Y
	Z
)

// Digits, 0x1E..0x27 (1 through 9, then 0).
const (
	Digit1 Code = 0x1E + iota
	Digit2
	Digit3
	Digit4
	Digit5
	Digit6
	Digit7
	Digit8
	Digit9
	Digit0
)

// Control keys.
const (
	Return    Code = 0x28
	Escape    Code = 0x29
	Backspace Code = 0x2A
	Tab       Code = 0x2B
	Space     Code = 0x2C
)

// Arrow keys.
const (
	ArrowRight Code = 0x4F
	ArrowLeft  Code = 0x50
	ArrowDown  Code = 0x51
	ArrowUp    Code = 0x52
)

// Valid reports whether code indexes within the KeysHeld bitmap.
func Valid(code Code) bool { return code >= 0 && int(code) < MaxCode }
