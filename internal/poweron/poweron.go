// Package poweron describes the machine state left behind by the boot
// program, so emulation can start at the cartridge entry point without
// running it.
package poweron

import (
	"fmt"
	"sort"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/cpu"
)

// Writer is the part of the bus a snapshot needs.
type Writer interface {
	Write(addr uint16, v byte)
}

// Write is one I/O register store.
type Write struct {
	Addr  uint16
	Value byte
}

// Registers holds the CPU registers a snapshot sets. PC is not part of it:
// the CPU's reset value already points at the cartridge entry.
type Registers struct {
	A  byte
	F  byte
	BC uint16
	DE uint16
	HL uint16
	SP uint16
}

// State is a complete power-on snapshot for one hardware variant.
type State struct {
	Name      string
	Registers Registers
	// IO is applied in slice order, which is address order for the
	// snapshots in this package.
	IO []Write
}

// Apply loads the registers into r and performs every I/O write through w.
// It is idempotent.
func (s State) Apply(r *cpu.Registers, w Writer) {
	r.A = s.Registers.A
	r.F = cpu.NewFlags(s.Registers.F)
	r.SetBC(s.Registers.BC)
	r.SetDE(s.Registers.DE)
	r.SetHL(s.Registers.HL)
	r.SP = s.Registers.SP
	for _, io := range s.IO {
		w.Write(io.Addr, io.Value)
	}
}

// Sorted reports whether the I/O table is in strictly ascending address
// order.
func (s State) Sorted() bool {
	return sort.SliceIsSorted(s.IO, func(i, j int) bool { return s.IO[i].Addr < s.IO[j].Addr }) && !s.duplicates()
}

func (s State) duplicates() bool {
	seen := make(map[uint16]bool, len(s.IO))
	for _, io := range s.IO {
		if seen[io.Addr] {
			return true
		}
		seen[io.Addr] = true
	}
	return false
}

// Default is the snapshot used when the boot ROM is skipped. Its values are
// kept exactly as listed even where they differ from measured DMG hardware;
// see DMGReference for those.
var Default = State{
	Name: "default",
	Registers: Registers{
		A:  0x00,
		F:  0x00,
		BC: 0x0000,
		DE: 0x0000,
		HL: 0x0000,
		SP: 0xFFFE,
	},
	IO: []Write{
		{0xFF05, 0x00}, // TIMA
		{0xFF06, 0x00}, // TMA
		{0xFF07, 0x00}, // TAC
		{0xFF10, 0x80}, // NR10
		{0xFF11, 0xBF}, // NR11
		{0xFF12, 0xF3}, // NR12
		{0xFF14, 0xBF}, // NR14
		{0xFF16, 0x3F}, // NR21
		{0xFF17, 0x00}, // NR22
		{0xFF19, 0xBF}, // NR24
		{0xFF1A, 0x7F}, // NR30
		{0xFF1B, 0xFF}, // NR31
		{0xFF1C, 0x9F}, // NR32
		{0xFF1E, 0xBF}, // NR34
		{0xFF20, 0xFF}, // NR41
		{0xFF21, 0x00}, // NR42
		{0xFF22, 0x00}, // NR43
		{0xFF23, 0xBF}, // NR44
		{0xFF24, 0x77}, // NR50
		{0xFF25, 0xF3}, // NR51
		{0xFF26, 0xF1}, // NR52
		{0xFF40, 0x91}, // LCDC
		{0xFF42, 0x00}, // SCY
		{0xFF43, 0x00}, // SCX
		{0xFF45, 0x00}, // LYC
		{0xFF47, 0xFC}, // BGP
		{0xFF48, 0xFF}, // OBP0
		{0xFF49, 0xFF}, // OBP1
		{0xFF4A, 0x00}, // WY
		{0xFF4B, 0x00}, // WX
		{0xFFFF, 0x00}, // IE
	},
}

// DMGReference carries the register values documented for a DMG after its
// boot program (A=01 F=B0 BC=0013 DE=00D8 HL=014D). The I/O table is shared
// with Default.
var DMGReference = State{
	Name: "reference",
	Registers: Registers{
		A:  0x01,
		F:  0xB0,
		BC: 0x0013,
		DE: 0x00D8,
		HL: 0x014D,
		SP: 0xFFFE,
	},
	IO: Default.IO,
}

var states = map[string]State{
	Default.Name:      Default,
	DMGReference.Name: DMGReference,
}

// Lookup returns a snapshot by name.
func Lookup(name string) (State, error) {
	s, ok := states[name]
	if !ok {
		return State{}, fmt.Errorf("poweron: unknown snapshot %q", name)
	}
	return s, nil
}

// Names lists the registered snapshots.
func Names() []string {
	names := make([]string, 0, len(states))
	for n := range states {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
