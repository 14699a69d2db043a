// Package debugger is an interactive monitor over a VM. It stops on
// breakpoints (by address or label), on watched bytes changing value and
// after single steps, and accepts line commands to inspect or change
// registers and memory while stopped.
//
// A Debugger steps the VM itself and takes the place of vm.Run.
package debugger

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/device"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/logger"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/symbols"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/vm"
)

// Watchpoint stops execution when the byte at Addr changes.
type Watchpoint struct {
	Addr uint16
	last byte
}

// Debugger wraps a VM with breakpoints and watchpoints.
type Debugger[B vm.Interconnect] struct {
	Breakpoints []uint16
	Watchpoints []Watchpoint

	// Break stops before the next instruction. Set it before Run to start
	// stopped.
	Break bool

	m    *vm.VM[B]
	syms *symbols.Table
	out  io.Writer

	pending string // stop reason found after the last step
	lastCmd []string
	quit    bool
}

// New returns a debugger for m. syms may be nil. Command output goes to out.
func New[B vm.Interconnect](m *vm.VM[B], syms *symbols.Table, out io.Writer) *Debugger[B] {
	return &Debugger[B]{m: m, syms: syms, out: out}
}

// Run steps the VM until dev stops running, a quit command is read or the
// CPU fails. While stopped, command lines are read from in; the end of in
// counts as quit.
func (d *Debugger[B]) Run(dev device.Device, in io.Reader) error {
	sc := bufio.NewScanner(in)
	for dev.Running() && !d.quit {
		if reason := d.stopReason(); reason != "" {
			fmt.Fprintf(d.out, "stopped: %s\n", reason)
			d.printWhere()
			d.repl(sc)
			if d.quit {
				break
			}
		}
		if err := d.Step(dev); err != nil {
			return err
		}
	}
	return nil
}

// Step executes one instruction and records a watchpoint hit, if any, as the
// reason to stop before the next one.
func (d *Debugger[B]) Step(dev device.Device) error {
	if _, err := d.m.Step(dev); err != nil {
		fmt.Fprintf(d.out, "%v\n", err)
		return err
	}
	bus := d.m.Bus()
	for i := range d.Watchpoints {
		w := &d.Watchpoints[i]
		if v := bus.Read(w.Addr); v != w.last {
			d.pending = fmt.Sprintf("watch %s: %02X -> %02X", d.syms.Format(w.Addr), w.last, v)
			w.last = v
		}
	}
	return nil
}

func (d *Debugger[B]) stopReason() string {
	if r := d.pending; r != "" {
		d.pending = ""
		d.Break = false
		return r
	}
	if d.Break {
		d.Break = false
		return "step"
	}
	pc := d.m.CPU().PC
	for _, bp := range d.Breakpoints {
		if bp == pc {
			return "breakpoint at " + d.syms.Format(pc)
		}
	}
	return ""
}

func (d *Debugger[B]) repl(sc *bufio.Scanner) {
	for {
		fmt.Fprint(d.out, "(dbg) ")
		if !sc.Scan() {
			fmt.Fprintln(d.out)
			d.quit = true
			return
		}
		args := strings.Fields(sc.Text())
		if len(args) == 0 {
			if len(d.lastCmd) == 0 {
				continue
			}
			args = d.lastCmd
		} else {
			d.lastCmd = args
		}
		if d.Exec(args) {
			return
		}
	}
}

// Resolve turns a command argument into an address: a symbol label, or hex
// with an optional 0x or $ prefix.
func (d *Debugger[B]) Resolve(arg string) (uint16, error) {
	if a, ok := d.syms.Addr(arg); ok {
		return a, nil
	}
	return parseHex(arg, 16)
}

func parseHex(s string, bits int) (uint16, error) {
	t := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "0x"), "$")
	v, err := strconv.ParseUint(t, 16, bits)
	if err != nil {
		return 0, fmt.Errorf("%q is not a %d-bit hex value or known label", s, bits)
	}
	return uint16(v), nil
}

// AddBreakpoint adds addr unless it is already set.
func (d *Debugger[B]) AddBreakpoint(addr uint16) bool {
	for _, bp := range d.Breakpoints {
		if bp == addr {
			return false
		}
	}
	d.Breakpoints = append(d.Breakpoints, addr)
	logger.Logf("debugger", "breakpoint %04X", addr)
	return true
}

// AddWatchpoint watches the byte at addr, starting from its current value.
func (d *Debugger[B]) AddWatchpoint(addr uint16) bool {
	for _, w := range d.Watchpoints {
		if w.Addr == addr {
			return false
		}
	}
	d.Watchpoints = append(d.Watchpoints, Watchpoint{Addr: addr, last: d.m.Bus().Read(addr)})
	logger.Logf("debugger", "watchpoint %04X", addr)
	return true
}

func (d *Debugger[B]) printWhere() {
	pc := d.m.CPU().PC
	label := ""
	if l, off, ok := d.syms.Nearest(pc); ok {
		label = fmt.Sprintf(" (%s+%d)", l, off)
		if off == 0 {
			label = " (" + l + ")"
		}
	}
	fmt.Fprintf(d.out, "PC=%04X%s OP=%02X\n", pc, label, d.m.Bus().Read(pc))
}
