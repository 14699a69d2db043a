package cpu

func (c *CPU) setZNHC(z, n, h, carry bool) {
	var f Flags
	if z {
		f |= FlagZ
	}
	if n {
		f |= FlagN
	}
	if h {
		f |= FlagH
	}
	if carry {
		f |= FlagC
	}
	c.F = f
}

func (c *CPU) carry() byte {
	if c.F.C() {
		return 1
	}
	return 0
}

// alu applies one of the eight accumulator operations, indexed the way the
// opcode encodes them: ADD ADC SUB SBC AND XOR OR CP.
func (c *CPU) alu(kind, v byte) {
	a := c.A
	switch kind {
	case 0, 1:
		ci := byte(0)
		if kind == 1 {
			ci = c.carry()
		}
		r := uint16(a) + uint16(v) + uint16(ci)
		c.A = byte(r)
		c.setZNHC(c.A == 0, false, (a&0x0F)+(v&0x0F)+ci > 0x0F, r > 0xFF)
	case 2, 3, 7:
		ci := byte(0)
		if kind == 3 {
			ci = c.carry()
		}
		r := int16(a) - int16(v) - int16(ci)
		res := byte(r)
		c.setZNHC(res == 0, true, int16(a&0x0F)-int16(v&0x0F)-int16(ci) < 0, r < 0)
		if kind != 7 {
			c.A = res
		}
	case 4:
		c.A = a & v
		c.setZNHC(c.A == 0, false, true, false)
	case 5:
		c.A = a ^ v
		c.setZNHC(c.A == 0, false, false, false)
	case 6:
		c.A = a | v
		c.setZNHC(c.A == 0, false, false, false)
	}
}

func (c *CPU) inc8(v byte) byte {
	r := v + 1
	c.setZNHC(r == 0, false, v&0x0F == 0x0F, c.F.C())
	return r
}

func (c *CPU) dec8(v byte) byte {
	r := v - 1
	c.setZNHC(r == 0, true, v&0x0F == 0x00, c.F.C())
	return r
}

// addHL adds v to HL. Z is preserved.
func (c *CPU) addHL(v uint16) {
	hl := c.HL()
	r := uint32(hl) + uint32(v)
	c.setZNHC(c.F.Z(), false, (hl&0x0FFF)+(v&0x0FFF) > 0x0FFF, r > 0xFFFF)
	c.SetHL(uint16(r))
}

// addSP computes SP plus a signed offset. H and C come from the unsigned
// add of the low byte; Z and N are cleared.
func (c *CPU) addSP(off byte) uint16 {
	sp := c.SP
	c.setZNHC(false, false, (sp&0x0F)+uint16(off&0x0F) > 0x0F, (sp&0xFF)+uint16(off) > 0xFF)
	return uint16(int32(sp) + int32(int8(off)))
}

func (c *CPU) daa() {
	a := c.A
	cf := c.F.C()
	if !c.F.N() {
		if cf || a > 0x99 {
			a += 0x60
			cf = true
		}
		if c.F.H() || a&0x0F > 0x09 {
			a += 0x06
		}
	} else {
		if cf {
			a -= 0x60
		}
		if c.F.H() {
			a -= 0x06
		}
	}
	c.A = a
	c.setZNHC(a == 0, c.F.N(), false, cf)
}

// shift performs the CB-prefixed rotate/shift group selected by y:
// RLC RRC RL RR SLA SRA SWAP SRL.
func (c *CPU) shift(y, v byte) byte {
	var out, cy byte
	switch y {
	case 0:
		cy = v >> 7
		out = v<<1 | cy
	case 1:
		cy = v & 1
		out = v>>1 | cy<<7
	case 2:
		cy = v >> 7
		out = v<<1 | c.carry()
	case 3:
		cy = v & 1
		out = v>>1 | c.carry()<<7
	case 4:
		cy = v >> 7
		out = v << 1
	case 5:
		cy = v & 1
		out = v>>1 | v&0x80
	case 6:
		out = v<<4 | v>>4
	case 7:
		cy = v & 1
		out = v >> 1
	}
	c.setZNHC(out == 0, false, false, cy == 1)
	return out
}
