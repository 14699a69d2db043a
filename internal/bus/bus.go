// Package bus is the DMG interconnect: the CPU-visible memory map and the
// per-cycle stepping of the timer, OAM DMA and the PPU.
package bus

import (
	"io"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/apu"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/cart"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/device"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/logger"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/ppu"
)

// Interrupt bits in IF and IE.
const (
	IntVBlank = 0
	IntSTAT   = 1
	IntTimer  = 2
	IntSerial = 3
	IntJoypad = 4
)

// Bus owns WRAM, HRAM, the I/O registers and the PPU and APU, and routes
// every CPU access to the right component.
type Bus struct {
	boot       []byte
	bootActive bool
	cart       cart.Cartridge

	wram [0x2000]byte
	hram [0x7F]byte
	ie   byte
	ifr  byte

	ppu *ppu.PPU
	apu *apu.APU

	timer
	joypad
	dma

	sb     byte
	sc     byte
	serial io.Writer
}

// New builds a bus around a cartridge. A nil boot image leaves the boot
// overlay inactive from the start. A nil cartridge reads as 0xFF.
func New(boot []byte, c cart.Cartridge) *Bus {
	b := &Bus{
		boot:       boot,
		bootActive: len(boot) > 0,
		cart:       c,
		apu:        apu.New(),
	}
	b.ppu = ppu.New(b.Request)
	b.joypad.sel = 0x30
	return b
}

// Request sets bit in IF.
func (b *Bus) Request(bit int) { b.ifr |= 1 << bit }

func (b *Bus) SetSerialWriter(w io.Writer) { b.serial = w }

func (b *Bus) Cart() cart.Cartridge { return b.cart }

func (b *Bus) BootROMActive() bool { return b.bootActive }

// DisableBootROM removes the boot overlay for the rest of the bus's life, as
// a write to FF50 does.
func (b *Bus) DisableBootROM() {
	if b.bootActive {
		b.bootActive = false
		logger.Log("bus", "boot ROM overlay disabled")
	}
}

func (b *Bus) PPU() *ppu.PPU { return b.ppu }

func (b *Bus) Width() int  { return ppu.Width }
func (b *Bus) Height() int { return ppu.Height }

func (b *Bus) Read(addr uint16) byte {
	switch {
	case addr < 0x0100 && b.bootActive:
		if int(addr) < len(b.boot) {
			return b.boot[addr]
		}
		return 0xFF
	case addr < 0x8000:
		return b.cartRead(addr)
	case addr < 0xA000:
		return b.ppu.CPURead(addr)
	case addr < 0xC000:
		return b.cartRead(addr)
	case addr < 0xE000:
		return b.wram[addr-0xC000]
	case addr < 0xFE00:
		return b.wram[addr-0xE000]
	case addr < 0xFEA0:
		if b.dma.active {
			return 0xFF
		}
		return b.ppu.CPURead(addr)
	case addr < 0xFF00:
		return 0xFF
	case addr >= 0xFF80 && addr < 0xFFFF:
		return b.hram[addr-0xFF80]
	case addr == 0xFFFF:
		return b.ie
	}
	return b.readIO(addr)
}

func (b *Bus) readIO(addr uint16) byte {
	switch {
	case addr == 0xFF00:
		return b.joypad.read()
	case addr == 0xFF01:
		return b.sb
	case addr == 0xFF02:
		return 0x7E | b.sc&0x81
	case addr >= 0xFF04 && addr <= 0xFF07:
		return b.timer.read(addr)
	case addr == 0xFF0F:
		return 0xE0 | b.ifr&0x1F
	case apu.Handles(addr):
		return b.apu.CPURead(addr)
	case addr == 0xFF46:
		return b.dma.reg
	case addr >= 0xFF40 && addr <= 0xFF4B:
		return b.ppu.CPURead(addr)
	}
	return 0xFF
}

func (b *Bus) Write(addr uint16, v byte) {
	switch {
	case addr < 0x8000:
		b.cartWrite(addr, v)
	case addr < 0xA000:
		b.ppu.CPUWrite(addr, v)
	case addr < 0xC000:
		b.cartWrite(addr, v)
	case addr < 0xE000:
		b.wram[addr-0xC000] = v
	case addr < 0xFE00:
		b.wram[addr-0xE000] = v
	case addr < 0xFEA0:
		if !b.dma.active {
			b.ppu.CPUWrite(addr, v)
		}
	case addr < 0xFF00:
	case addr >= 0xFF80 && addr < 0xFFFF:
		b.hram[addr-0xFF80] = v
	case addr == 0xFFFF:
		b.ie = v
	default:
		b.writeIO(addr, v)
	}
}

func (b *Bus) writeIO(addr uint16, v byte) {
	switch {
	case addr == 0xFF00:
		if b.joypad.selectGroups(v) {
			b.Request(IntJoypad)
		}
	case addr == 0xFF01:
		b.sb = v
	case addr == 0xFF02:
		b.sc = v
		if v&0x81 == 0x81 {
			b.transferSerial()
		}
	case addr >= 0xFF04 && addr <= 0xFF07:
		b.timer.write(addr, v)
	case addr == 0xFF0F:
		b.ifr = v & 0x1F
	case apu.Handles(addr):
		b.apu.CPUWrite(addr, v)
	case addr == 0xFF46:
		b.dma.start(v)
	case addr >= 0xFF40 && addr <= 0xFF4B:
		b.ppu.CPUWrite(addr, v)
	case addr == 0xFF50:
		b.DisableBootROM()
	}
}

func (b *Bus) cartRead(addr uint16) byte {
	if b.cart == nil {
		return 0xFF
	}
	return b.cart.Read(addr)
}

func (b *Bus) cartWrite(addr uint16, v byte) {
	if b.cart != nil {
		b.cart.Write(addr, v)
	}
}

// transferSerial completes an internally clocked transfer at once. There is
// no link partner, so SB reads back 0xFF afterwards.
func (b *Bus) transferSerial() {
	if b.serial != nil {
		if _, err := b.serial.Write([]byte{b.sb}); err != nil {
			logger.Logf("bus", "serial write: %v", err)
		}
	}
	b.sb = 0xFF
	b.sc &^= 0x80
	b.Request(IntSerial)
}

// Step advances the components by cycles T-cycles after an instruction. The
// joypad is sampled once from dev. A completed frame is handed to dev and
// flushed.
func (b *Bus) Step(cycles int, dev device.Device) {
	if b.joypad.poll(dev) {
		b.Request(IntJoypad)
	}
	b.tick(cycles, dev)
}

// Tick advances the components without a device attached.
func (b *Bus) Tick(cycles int) { b.tick(cycles, nil) }

func (b *Bus) tick(cycles int, dev device.Device) {
	for i := 0; i < cycles; i++ {
		if b.timer.tick() {
			b.Request(IntTimer)
		}
		if b.dma.active {
			b.stepDMA()
		}
		if b.ppu.Tick(1) && dev != nil {
			dev.SetFrameBuffer(b.ppu.Frame())
			dev.Update()
		}
	}
}
