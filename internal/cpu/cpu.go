// Package cpu implements the SM83 execution engine. The CPU owns its register
// file and touches memory only through the Bus it is stepped against.
package cpu

import (
	"errors"
	"fmt"
)

// EntryPoint is where cartridge code starts once the boot program has run.
const EntryPoint uint16 = 0x0100

const (
	addrIF uint16 = 0xFF0F
	addrIE uint16 = 0xFFFF
)

// Bus is the byte-level address space the CPU executes against.
type Bus interface {
	Read(addr uint16) byte
	Write(addr uint16, v byte)
}

// ErrIllegalOpcode is returned (wrapped in an *OpcodeError) when the CPU
// fetches one of the eleven opcodes the SM83 does not define.
var ErrIllegalOpcode = errors.New("cpu: illegal opcode")

// OpcodeError records where an illegal opcode was fetched.
type OpcodeError struct {
	Op byte
	PC uint16
}

func (e *OpcodeError) Error() string {
	return fmt.Sprintf("cpu: illegal opcode %02X at %04X", e.Op, e.PC)
}

func (e *OpcodeError) Unwrap() error { return ErrIllegalOpcode }

// CPU is an SM83 core.
type CPU struct {
	Registers

	IME     bool
	halted  bool
	haltBug bool
	// EI takes effect after the instruction that follows it.
	eiDelay int

	// bound for the duration of Step
	bus Bus
}

// New returns a CPU with zeroed registers and PC at the cartridge entry point.
func New() *CPU {
	return &CPU{Registers: Registers{PC: EntryPoint}}
}

// Halted reports whether the CPU is waiting in HALT for an interrupt.
func (c *CPU) Halted() bool { return c.halted }

// Step executes one instruction (or services one interrupt) against b and
// returns the T-cycles consumed. An illegal opcode leaves PC on the opcode
// and returns zero cycles with an error wrapping ErrIllegalOpcode.
func (c *CPU) Step(b Bus) (int, error) {
	c.bus = b
	defer func() { c.bus = nil }()

	if c.eiDelay > 0 {
		c.eiDelay--
		if c.eiDelay == 0 {
			c.IME = true
		}
	}

	if c.halted {
		if c.pending() == 0 {
			return 4, nil
		}
		c.halted = false
	}

	if c.IME {
		if cyc := c.serviceInterrupt(); cyc != 0 {
			return cyc, nil
		}
	}

	pc := c.PC
	op := c.fetchOpcode()
	cycles := c.execute(op)
	if cycles == 0 {
		c.PC = pc
		return 0, &OpcodeError{Op: op, PC: pc}
	}
	return cycles, nil
}

func (c *CPU) pending() byte {
	return c.read8(addrIE) & c.read8(addrIF) & 0x1F
}

// serviceInterrupt dispatches the highest priority pending interrupt.
// Priority runs VBlank, STAT, Timer, Serial, Joypad.
func (c *CPU) serviceInterrupt() int {
	pending := c.pending()
	if pending == 0 {
		return 0
	}
	var bit uint
	for bit = 0; bit < 5; bit++ {
		if pending&(1<<bit) != 0 {
			break
		}
	}
	c.write8(addrIF, c.read8(addrIF)&^(1<<bit))
	c.IME = false
	c.push16(c.PC)
	c.PC = 0x0040 + uint16(bit)*8
	return 20
}

func (c *CPU) read8(addr uint16) byte     { return c.bus.Read(addr) }
func (c *CPU) write8(addr uint16, v byte) { c.bus.Write(addr, v) }

// fetchOpcode reads the next opcode. After the HALT bug the byte following
// HALT is read without advancing PC, so it executes twice.
func (c *CPU) fetchOpcode() byte {
	if c.haltBug {
		c.haltBug = false
		return c.read8(c.PC)
	}
	return c.fetch8()
}

func (c *CPU) fetch8() byte {
	v := c.read8(c.PC)
	c.PC++
	return v
}

func (c *CPU) fetch16() uint16 {
	lo := uint16(c.fetch8())
	hi := uint16(c.fetch8())
	return lo | hi<<8
}

func (c *CPU) write16(addr uint16, v uint16) {
	c.write8(addr, byte(v))
	c.write8(addr+1, byte(v>>8))
}

func (c *CPU) push16(v uint16) {
	c.SP--
	c.write8(c.SP, byte(v>>8))
	c.SP--
	c.write8(c.SP, byte(v))
}

func (c *CPU) pop16() uint16 {
	lo := uint16(c.read8(c.SP))
	c.SP++
	hi := uint16(c.read8(c.SP))
	c.SP++
	return lo | hi<<8
}
