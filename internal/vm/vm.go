// Package vm owns a CPU and the interconnect it runs against. It sets up the
// power-on state and drives execution one instruction at a time, forwarding
// every instruction's cycle count to the interconnect.
//
// A VM, its CPU and its interconnect are used from one goroutine. Devices
// that draw on another goroutine do their own locking.
package vm

import (
	"errors"
	"fmt"
	"io"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/device"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/logger"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/poweron"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/symbols"
)

// Interconnect is what the VM needs from a bus. Read and Write never fail.
// Step advances every peripheral by exactly cycles T-cycles.
type Interconnect interface {
	cpu.Bus
	Step(cycles int, dev device.Device)
	Width() int
	Height() int
}

// bootOverlay is implemented by interconnects that map a boot image over
// the cartridge. SkipBootROM switches the overlay off so the boot program
// can never run, even through RST 00 or a jump to a low address.
type bootOverlay interface {
	DisableBootROM()
}

// BootMode selects how the machine starts.
type BootMode int

const (
	// WithBootROM starts at 0x0000 with zeroed registers and leaves the
	// interconnect's boot overlay to be disabled by the boot program.
	WithBootROM BootMode = iota

	// SkipBootROM applies a power-on snapshot and starts at the cartridge
	// entry point. An interconnect boot overlay is disabled first.
	SkipBootROM
)

func (m BootMode) String() string {
	switch m {
	case WithBootROM:
		return "with boot ROM"
	case SkipBootROM:
		return "skip boot ROM"
	}
	return fmt.Sprintf("BootMode(%d)", int(m))
}

// ErrDecomposed is returned by Step and Run after Decompose.
var ErrDecomposed = errors.New("vm: used after Decompose")

// Config is optional VM behaviour. The zero value is usable.
type Config struct {
	// PowerOn is the snapshot applied in SkipBootROM mode. A zero State
	// selects poweron.Default.
	PowerOn poweron.State

	// Trace, when set, receives one line per executed instruction.
	Trace io.Writer

	// Symbols labels traced addresses. May be nil.
	Symbols *symbols.Table
}

// VM drives one CPU against one interconnect.
type VM[B Interconnect] struct {
	cpu *cpu.CPU
	bus B
	cfg Config

	steps  uint64
	cycles uint64
}

// New builds a VM around bus. It never fails; loader errors are reported
// before a bus exists.
func New[B Interconnect](bus B, mode BootMode, cfg Config) *VM[B] {
	v := &VM[B]{cpu: cpu.New(), bus: bus, cfg: cfg}

	switch mode {
	case WithBootROM:
		v.cpu.PC = 0x0000
	default:
		if o, ok := any(bus).(bootOverlay); ok {
			o.DisableBootROM()
		}
		snap := cfg.PowerOn
		if snap.Name == "" && snap.IO == nil {
			snap = poweron.Default
		}
		snap.Apply(&v.cpu.Registers, bus)
		logger.Logf("vm", "applied power-on snapshot %q (%d writes)", snap.Name, len(snap.IO))
	}
	logger.Logf("vm", "start %s at PC=%04X", mode, v.cpu.PC)
	return v
}

// Step executes one instruction and then advances the interconnect by the
// cycles it took. On an illegal opcode the interconnect is not advanced and
// the error wraps cpu.ErrIllegalOpcode.
func (v *VM[B]) Step(dev device.Device) (int, error) {
	if v.cpu == nil {
		return 0, ErrDecomposed
	}

	pc := v.cpu.PC
	var op byte
	if v.cfg.Trace != nil {
		op = v.bus.Read(pc)
	}

	cycles, err := v.cpu.Step(v.bus)
	if err != nil {
		logger.Logf("vm", "%v", err)
		return 0, err
	}
	v.bus.Step(cycles, dev)

	v.steps++
	v.cycles += uint64(cycles)

	if v.cfg.Trace != nil {
		v.trace(pc, op, cycles)
	}
	return cycles, nil
}

// Run steps until dev stops running or the CPU fails. Running is checked
// before every step.
func (v *VM[B]) Run(dev device.Device) error {
	for dev.Running() {
		if _, err := v.Step(dev); err != nil {
			return err
		}
	}
	return nil
}

// Decompose hands the CPU and the interconnect to the caller. The VM must
// not be stepped afterwards.
func (v *VM[B]) Decompose() (*cpu.CPU, B) {
	c, b := v.cpu, v.bus
	var zero B
	v.cpu, v.bus = nil, zero
	return c, b
}

// CPU and Bus expose the parts for inspection between steps, as a debugger
// needs. Both are nil after Decompose.
func (v *VM[B]) CPU() *cpu.CPU { return v.cpu }
func (v *VM[B]) Bus() B        { return v.bus }

func (v *VM[B]) Width() int  { return v.bus.Width() }
func (v *VM[B]) Height() int { return v.bus.Height() }

// Steps and Cycles count completed instructions and their T-cycles.
func (v *VM[B]) Steps() uint64  { return v.steps }
func (v *VM[B]) Cycles() uint64 { return v.cycles }

func (v *VM[B]) trace(pc uint16, op byte, cycles int) {
	c := v.cpu
	label := ""
	if l, ok := v.cfg.Symbols.Lookup(pc); ok {
		label = " " + l + ":"
	}
	fmt.Fprintf(v.cfg.Trace, "PC=%04X%s OP=%02X cyc=%d A=%02X F=%s BC=%04X DE=%04X HL=%04X SP=%04X IME=%t\n",
		pc, label, op, cycles, c.A, c.F, c.BC(), c.DE(), c.HL(), c.SP, c.IME)
}
