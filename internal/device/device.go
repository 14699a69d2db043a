// Package device defines the host boundary the emulator talks to: a sink for
// finished frames and a source of key state.
package device

// Key is one of the eight buttons of the emulated handheld. How a key maps to
// a physical host key is up to each Device.
type Key int

const (
	Up Key = iota
	Down
	Left
	Right
	A
	B
	Start
	Select
)

// Keys lists every Key in declaration order.
var Keys = [...]Key{Up, Down, Left, Right, A, B, Start, Select}

var keyNames = [...]string{"Up", "Down", "Left", "Right", "A", "B", "Start", "Select"}

func (k Key) String() string {
	if k < 0 || int(k) >= len(keyNames) {
		return "Key(?)"
	}
	return keyNames[k]
}

// Device is the capability a host frontend provides to the emulator.
//
// SetFrameBuffer stores a complete frame, replacing any frame not yet
// flushed. Update flushes the pending frame and does nothing when none is
// pending. KeyDown polls a key and must not block. Running reports whether the
// emulator should keep going; once it returns false the run loop stops before
// the next step.
type Device interface {
	SetFrameBuffer(pixels []uint32)
	Update()
	KeyDown(k Key) bool
	Running() bool
}
