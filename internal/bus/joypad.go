package bus

import "github.com/FabianRolfMatthiasNoll/gbcore/internal/device"

// Joypad state bits: low nibble is the direction group, high nibble the
// button group, both in P1 bit order.
const (
	JoypRight byte = 1 << iota
	JoypLeft
	JoypUp
	JoypDown
	JoypA
	JoypB
	JoypSelect
	JoypStart
)

var keyBits = map[device.Key]byte{
	device.Right:  JoypRight,
	device.Left:   JoypLeft,
	device.Up:     JoypUp,
	device.Down:   JoypDown,
	device.A:      JoypA,
	device.B:      JoypB,
	device.Select: JoypSelect,
	device.Start:  JoypStart,
}

type joypad struct {
	sel     byte // P1 bits 4-5 as written
	pressed byte
}

// read returns P1 with the selected group's keys active low.
func (j *joypad) read() byte {
	lines := byte(0)
	if j.sel&0x10 == 0 {
		lines |= j.pressed & 0x0F
	}
	if j.sel&0x20 == 0 {
		lines |= j.pressed >> 4
	}
	return 0xC0 | j.sel | ^lines&0x0F
}

// set replaces the pressed keys and reports whether a selected P1 line
// fell from high to low. Presses in an unselected group do not count.
func (j *joypad) set(state byte) bool {
	before := j.read()
	j.pressed = state
	return fell(before, j.read())
}

// selectGroups stores the P1 select bits and reports a falling line, as
// selecting a group with a key already held does.
func (j *joypad) selectGroups(v byte) bool {
	before := j.read()
	j.sel = v & 0x30
	return fell(before, j.read())
}

func fell(before, after byte) bool { return before&^after&0x0F != 0 }

func (j *joypad) poll(dev device.Device) bool {
	if dev == nil {
		return false
	}
	var state byte
	for _, k := range device.Keys {
		if dev.KeyDown(k) {
			state |= keyBits[k]
		}
	}
	return j.set(state)
}

// SetJoypadState sets the pressed keys directly, as a Joyp bit mask.
func (b *Bus) SetJoypadState(state byte) {
	if b.joypad.set(state) {
		b.Request(IntJoypad)
	}
}
