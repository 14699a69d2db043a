package cpu

// reg reads an 8-bit operand by its opcode index. Index 6 is (HL).
func (c *CPU) reg(idx byte) byte {
	switch idx {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		return c.H
	case 5:
		return c.L
	case 6:
		return c.read8(c.HL())
	default:
		return c.A
	}
}

func (c *CPU) setReg(idx, v byte) {
	switch idx {
	case 0:
		c.B = v
	case 1:
		c.C = v
	case 2:
		c.D = v
	case 3:
		c.E = v
	case 4:
		c.H = v
	case 5:
		c.L = v
	case 6:
		c.write8(c.HL(), v)
	default:
		c.A = v
	}
}

// pair reads BC, DE, HL or SP.
func (c *CPU) pair(idx byte) uint16 {
	switch idx {
	case 0:
		return c.BC()
	case 1:
		return c.DE()
	case 2:
		return c.HL()
	default:
		return c.SP
	}
}

func (c *CPU) setPair(idx byte, v uint16) {
	switch idx {
	case 0:
		c.SetBC(v)
	case 1:
		c.SetDE(v)
	case 2:
		c.SetHL(v)
	default:
		c.SP = v
	}
}

// cond evaluates NZ, Z, NC or C.
func (c *CPU) cond(idx byte) bool {
	switch idx {
	case 0:
		return !c.F.Z()
	case 1:
		return c.F.Z()
	case 2:
		return !c.F.C()
	default:
		return c.F.C()
	}
}

func (c *CPU) halt() int {
	if !c.IME && c.pending() != 0 {
		c.haltBug = true
		return 4
	}
	c.halted = true
	return 4
}

// execute runs a fetched opcode and returns its T-cycle cost, or 0 for the
// opcodes the SM83 leaves undefined.
func (c *CPU) execute(op byte) int {
	switch {
	case op == 0x76: // HALT
		return c.halt()
	case op >= 0x40 && op < 0x80: // LD r,r'
		d, s := (op>>3)&7, op&7
		c.setReg(d, c.reg(s))
		if d == 6 || s == 6 {
			return 8
		}
		return 4
	case op >= 0x80 && op < 0xC0: // ALU A,r
		c.alu((op>>3)&7, c.reg(op&7))
		if op&7 == 6 {
			return 8
		}
		return 4
	}

	y := (op >> 3) & 7
	switch op & 0xC7 {
	case 0x04: // INC r
		c.setReg(y, c.inc8(c.reg(y)))
		if y == 6 {
			return 12
		}
		return 4
	case 0x05: // DEC r
		c.setReg(y, c.dec8(c.reg(y)))
		if y == 6 {
			return 12
		}
		return 4
	case 0x06: // LD r,d8
		c.setReg(y, c.fetch8())
		if y == 6 {
			return 12
		}
		return 8
	case 0xC6: // ALU A,d8
		c.alu(y, c.fetch8())
		return 8
	case 0xC7: // RST
		c.push16(c.PC)
		c.PC = uint16(y) * 8
		return 16
	}

	p := (op >> 4) & 3
	switch op & 0xCF {
	case 0x01: // LD rr,d16
		c.setPair(p, c.fetch16())
		return 12
	case 0x03: // INC rr
		c.setPair(p, c.pair(p)+1)
		return 8
	case 0x0B: // DEC rr
		c.setPair(p, c.pair(p)-1)
		return 8
	case 0x09: // ADD HL,rr
		c.addHL(c.pair(p))
		return 8
	case 0xC1: // POP rr
		v := c.pop16()
		if p == 3 {
			c.SetAF(v)
		} else {
			c.setPair(p, v)
		}
		return 12
	case 0xC5: // PUSH rr
		if p == 3 {
			c.push16(c.AF())
		} else {
			c.push16(c.pair(p))
		}
		return 16
	}

	cc := (op >> 3) & 3
	switch op & 0xE7 {
	case 0x20: // JR cc,e
		off := int8(c.fetch8())
		if c.cond(cc) {
			c.PC = uint16(int32(c.PC) + int32(off))
			return 12
		}
		return 8
	case 0xC2: // JP cc,a16
		addr := c.fetch16()
		if c.cond(cc) {
			c.PC = addr
			return 16
		}
		return 12
	case 0xC4: // CALL cc,a16
		addr := c.fetch16()
		if c.cond(cc) {
			c.push16(c.PC)
			c.PC = addr
			return 24
		}
		return 12
	case 0xC0: // RET cc
		if c.cond(cc) {
			c.PC = c.pop16()
			return 20
		}
		return 8
	}

	switch op {
	case 0x00: // NOP
		return 4
	case 0x10: // STOP consumes its padding byte
		c.fetch8()
		return 4
	case 0x02:
		c.write8(c.BC(), c.A)
		return 8
	case 0x12:
		c.write8(c.DE(), c.A)
		return 8
	case 0x0A:
		c.A = c.read8(c.BC())
		return 8
	case 0x1A:
		c.A = c.read8(c.DE())
		return 8
	case 0x22: // LD (HL+),A
		hl := c.HL()
		c.write8(hl, c.A)
		c.SetHL(hl + 1)
		return 8
	case 0x2A: // LD A,(HL+)
		hl := c.HL()
		c.A = c.read8(hl)
		c.SetHL(hl + 1)
		return 8
	case 0x32: // LD (HL-),A
		hl := c.HL()
		c.write8(hl, c.A)
		c.SetHL(hl - 1)
		return 8
	case 0x3A: // LD A,(HL-)
		hl := c.HL()
		c.A = c.read8(hl)
		c.SetHL(hl - 1)
		return 8
	case 0x08: // LD (a16),SP
		c.write16(c.fetch16(), c.SP)
		return 20

	// Accumulator rotates always clear Z.
	case 0x07, 0x0F, 0x17, 0x1F:
		c.A = c.shift(y, c.A)
		c.F &^= FlagZ
		return 4
	case 0x27:
		c.daa()
		return 4
	case 0x2F: // CPL
		c.A = ^c.A
		c.F = c.F&(FlagZ|FlagC) | FlagN | FlagH
		return 4
	case 0x37: // SCF
		c.F = c.F&FlagZ | FlagC
		return 4
	case 0x3F: // CCF
		c.F = (c.F ^ FlagC) & (FlagZ | FlagC)
		return 4

	case 0x18: // JR e
		off := int8(c.fetch8())
		c.PC = uint16(int32(c.PC) + int32(off))
		return 12
	case 0xC3: // JP a16
		c.PC = c.fetch16()
		return 16
	case 0xE9: // JP HL
		c.PC = c.HL()
		return 4
	case 0xCD: // CALL a16
		addr := c.fetch16()
		c.push16(c.PC)
		c.PC = addr
		return 24
	case 0xC9: // RET
		c.PC = c.pop16()
		return 16
	case 0xD9: // RETI
		c.PC = c.pop16()
		c.IME = true
		return 16

	case 0xE0: // LDH (a8),A
		c.write8(0xFF00+uint16(c.fetch8()), c.A)
		return 12
	case 0xF0: // LDH A,(a8)
		c.A = c.read8(0xFF00 + uint16(c.fetch8()))
		return 12
	case 0xE2: // LD (C),A
		c.write8(0xFF00+uint16(c.C), c.A)
		return 8
	case 0xF2: // LD A,(C)
		c.A = c.read8(0xFF00 + uint16(c.C))
		return 8
	case 0xEA: // LD (a16),A
		c.write8(c.fetch16(), c.A)
		return 16
	case 0xFA: // LD A,(a16)
		c.A = c.read8(c.fetch16())
		return 16

	case 0xE8: // ADD SP,e
		c.SP = c.addSP(c.fetch8())
		return 16
	case 0xF8: // LD HL,SP+e
		c.SetHL(c.addSP(c.fetch8()))
		return 12
	case 0xF9: // LD SP,HL
		c.SP = c.HL()
		return 8

	case 0xF3: // DI
		c.IME = false
		c.eiDelay = 0
		return 4
	case 0xFB: // EI
		if !c.IME {
			c.eiDelay = 2
		}
		return 4

	case 0xCB:
		return c.executeCB(c.fetch8())
	}

	// D3 DB DD E3 E4 EB EC ED F4 FC FD
	return 0
}

func (c *CPU) executeCB(op byte) int {
	r := op & 7
	y := (op >> 3) & 7
	cycles := 8
	if r == 6 {
		cycles = 16
	}
	switch op >> 6 {
	case 0:
		c.setReg(r, c.shift(y, c.reg(r)))
	case 1: // BIT only reads (HL)
		bit := c.reg(r) >> y & 1
		c.F = c.F&FlagC | FlagH
		if bit == 0 {
			c.F |= FlagZ
		}
		if r == 6 {
			cycles = 12
		}
	case 2:
		c.setReg(r, c.reg(r)&^(1<<y))
	case 3:
		c.setReg(r, c.reg(r)|1<<y)
	}
	return cycles
}
