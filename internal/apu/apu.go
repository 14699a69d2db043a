// Package apu is the DMG sound register file. It stores NR10-NR52 and wave
// RAM with the read-back behaviour of the hardware but produces no audio.
package apu

const (
	regFirst = 0xFF10
	regLast  = 0xFF26
	waveLo   = 0xFF30
	waveHi   = 0xFF3F

	nr52 = 0xFF26
)

// readMask holds the bits that always read as 1 for FF10-FF26. Unused
// addresses read 0xFF.
var readMask = [regLast - regFirst + 1]byte{
	0x80, 0x3F, 0x00, 0xFF, 0xBF, // NR10-NR14
	0xFF, 0x3F, 0x00, 0xFF, 0xBF, // unused, NR21-NR24
	0x7F, 0xFF, 0x9F, 0xFF, 0xBF, // NR30-NR34
	0xFF, 0xFF, 0x00, 0x00, 0xBF, // unused, NR41-NR44
	0x00, 0x00, 0x70, // NR50-NR52
}

// Channel trigger registers and the register holding each channel's DAC
// enable bits.
var channels = [4]struct {
	trigger uint16
	dac     uint16
	dacMask byte
}{
	{0xFF14, 0xFF12, 0xF8},
	{0xFF19, 0xFF17, 0xF8},
	{0xFF1E, 0xFF1A, 0x80},
	{0xFF23, 0xFF21, 0xF8},
}

// APU holds the sound registers. Channel status in NR52 is derived from the
// stored registers: a channel is on while its last trigger-register write had
// bit 7 set and its DAC is enabled. The result depends only on register
// contents, never on the order they were written in.
type APU struct {
	regs  [regLast - regFirst + 1]byte
	wave  [16]byte
	power bool
}

// New returns a powered-on register file with every register zero.
func New() *APU {
	return &APU{power: true}
}

// Handles reports whether addr belongs to the sound unit.
func Handles(addr uint16) bool {
	return addr >= regFirst && addr <= waveHi
}

func (a *APU) CPURead(addr uint16) byte {
	switch {
	case addr >= waveLo && addr <= waveHi:
		return a.wave[addr-waveLo]
	case addr == nr52:
		v := readMask[addr-regFirst] | a.status()
		if a.power {
			v |= 0x80
		}
		return v
	case addr >= regFirst && addr <= regLast:
		return a.regs[addr-regFirst] | readMask[addr-regFirst]
	}
	return 0xFF
}

func (a *APU) CPUWrite(addr uint16, v byte) {
	switch {
	case addr >= waveLo && addr <= waveHi:
		a.wave[addr-waveLo] = v
		return
	case addr == nr52:
		on := v&0x80 != 0
		if a.power && !on {
			a.regs = [len(a.regs)]byte{}
		}
		a.power = on
		return
	case addr < regFirst || addr > regLast:
		return
	}
	if !a.power {
		return
	}
	a.regs[addr-regFirst] = v
}

func (a *APU) status() byte {
	var on byte
	for i, ch := range channels {
		if a.regs[ch.trigger-regFirst]&0x80 != 0 && a.regs[ch.dac-regFirst]&ch.dacMask != 0 {
			on |= 1 << i
		}
	}
	return on
}

// Powered reports the NR52 master enable.
func (a *APU) Powered() bool { return a.power }
