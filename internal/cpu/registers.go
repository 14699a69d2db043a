package cpu

// Flags is the F register. Only the upper nibble is backed by hardware; the
// low nibble always reads as zero.
type Flags byte

const (
	FlagZ Flags = 1 << 7
	FlagN Flags = 1 << 6
	FlagH Flags = 1 << 5
	FlagC Flags = 1 << 4
)

// NewFlags builds a flag register from a raw byte, discarding the low nibble.
func NewFlags(b byte) Flags { return Flags(b) & 0xF0 }

func (f Flags) Z() bool    { return f&FlagZ != 0 }
func (f Flags) N() bool    { return f&FlagN != 0 }
func (f Flags) H() bool    { return f&FlagH != 0 }
func (f Flags) C() bool    { return f&FlagC != 0 }
func (f Flags) Byte() byte { return byte(f) }

func (f Flags) String() string {
	s := []byte("----")
	if f.Z() {
		s[0] = 'Z'
	}
	if f.N() {
		s[1] = 'N'
	}
	if f.H() {
		s[2] = 'H'
	}
	if f.C() {
		s[3] = 'C'
	}
	return string(s)
}

// Registers is the SM83 register file. The pairs BC, DE and HL are stored as
// their 8-bit halves, high byte first.
type Registers struct {
	A    byte
	F    Flags
	B, C byte
	D, E byte
	H, L byte

	SP uint16
	PC uint16
}

func (r *Registers) AF() uint16     { return uint16(r.A)<<8 | uint16(r.F) }
func (r *Registers) SetAF(v uint16) { r.A = byte(v >> 8); r.F = NewFlags(byte(v)) }
func (r *Registers) BC() uint16     { return uint16(r.B)<<8 | uint16(r.C) }
func (r *Registers) SetBC(v uint16) { r.B = byte(v >> 8); r.C = byte(v) }
func (r *Registers) DE() uint16     { return uint16(r.D)<<8 | uint16(r.E) }
func (r *Registers) SetDE(v uint16) { r.D = byte(v >> 8); r.E = byte(v) }
func (r *Registers) HL() uint16     { return uint16(r.H)<<8 | uint16(r.L) }
func (r *Registers) SetHL(v uint16) { r.H = byte(v >> 8); r.L = byte(v) }
