package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/cpu"
)

const help = `commands:
  b|break [add ADDR|list|rm N|clear]   breakpoints, ADDR is hex or a label
  w|watch [add ADDR|list|rm N|clear]   stop when the byte at ADDR changes
  r|reg [NAME VALUE]                   show registers or set one
  m|mem ADDR [N]                       dump N bytes (default 16)
  set ADDR VALUE                       write a byte through the bus
  n|next                               execute one instruction
  c|continue                           run to the next stop
  q|quit                               stop the session`

// Exec runs one command line split into fields and reports whether
// execution should resume.
func (d *Debugger[B]) Exec(args []string) (resume bool) {
	if len(args) == 0 {
		return false
	}
	cmd, args := args[0], args[1:]
	switch cmd {
	case "b", "bp", "break":
		d.cmdBreak(args)
	case "w", "wp", "watch":
		d.cmdWatch(args)
	case "r", "reg", "registers":
		d.cmdReg(args)
	case "m", "mem", "memory":
		d.cmdMem(args)
	case "set":
		d.cmdSet(args)
	case "n", "next", "s", "step":
		d.Break = true
		return true
	case "c", "continue":
		return true
	case "q", "quit", "exit":
		d.quit = true
		return true
	case "h", "help", "?":
		fmt.Fprintln(d.out, help)
	default:
		fmt.Fprintf(d.out, "error: '%s' is not a valid command\n", cmd)
	}
	return false
}

func (d *Debugger[B]) cmdBreak(args []string) {
	if len(args) == 0 {
		args = []string{"list"}
	}
	switch args[0] {
	case "a", "add":
		if len(args) != 2 {
			fmt.Fprintln(d.out, "break add ADDR")
			return
		}
		addr, err := d.Resolve(args[1])
		if err != nil {
			fmt.Fprintln(d.out, err)
			return
		}
		if d.AddBreakpoint(addr) {
			fmt.Fprintf(d.out, "Breakpoint added [%s]\n", d.syms.Format(addr))
		}
	case "l", "ls", "list":
		for i, bp := range d.Breakpoints {
			fmt.Fprintf(d.out, "#%d: %04X %s\n", i, bp, d.syms.Format(bp))
		}
	case "r", "rm", "remove":
		i, ok := d.index(args, len(d.Breakpoints))
		if !ok {
			return
		}
		d.Breakpoints = append(d.Breakpoints[:i], d.Breakpoints[i+1:]...)
		fmt.Fprintf(d.out, "Breakpoint removed [%d]\n", i)
	case "clear":
		d.Breakpoints = nil
		fmt.Fprintln(d.out, "Breakpoints reset")
	default:
		fmt.Fprintf(d.out, "break: '%s' is not a valid command\n", args[0])
	}
}

func (d *Debugger[B]) cmdWatch(args []string) {
	if len(args) == 0 {
		args = []string{"list"}
	}
	switch args[0] {
	case "a", "add":
		if len(args) != 2 {
			fmt.Fprintln(d.out, "watch add ADDR")
			return
		}
		addr, err := d.Resolve(args[1])
		if err != nil {
			fmt.Fprintln(d.out, err)
			return
		}
		if d.AddWatchpoint(addr) {
			fmt.Fprintf(d.out, "Watchpoint added [%s]\n", d.syms.Format(addr))
		}
	case "l", "ls", "list":
		for i, w := range d.Watchpoints {
			fmt.Fprintf(d.out, "#%d: %04X = %02X\n", i, w.Addr, w.last)
		}
	case "r", "rm", "remove":
		i, ok := d.index(args, len(d.Watchpoints))
		if !ok {
			return
		}
		d.Watchpoints = append(d.Watchpoints[:i], d.Watchpoints[i+1:]...)
		fmt.Fprintf(d.out, "Watchpoint removed [%d]\n", i)
	case "clear":
		d.Watchpoints = nil
		fmt.Fprintln(d.out, "Watchpoints reset")
	default:
		fmt.Fprintf(d.out, "watch: '%s' is not a valid command\n", args[0])
	}
}

// index parses the list position in args[1].
func (d *Debugger[B]) index(args []string, n int) (int, bool) {
	if len(args) != 2 {
		fmt.Fprintln(d.out, "rm N")
		return 0, false
	}
	i, err := strconv.Atoi(args[1])
	if err != nil || i < 0 || i >= n {
		fmt.Fprintf(d.out, "invalid number %q\n", args[1])
		return 0, false
	}
	return i, true
}

func (d *Debugger[B]) cmdReg(args []string) {
	c := d.m.CPU()
	if c == nil {
		fmt.Fprintln(d.out, "no CPU")
		return
	}
	if len(args) == 0 {
		d.printRegisters(c)
		return
	}
	if len(args) != 2 {
		fmt.Fprintln(d.out, "reg NAME VALUE")
		return
	}
	name := strings.ToUpper(args[0])
	bits := 8
	switch name {
	case "AF", "BC", "DE", "HL", "SP", "PC":
		bits = 16
	}
	v, err := parseHex(args[1], bits)
	if err != nil {
		fmt.Fprintln(d.out, err)
		return
	}
	r := &c.Registers
	switch name {
	case "A":
		r.A = byte(v)
	case "F":
		r.F = cpu.NewFlags(byte(v))
	case "B":
		r.B = byte(v)
	case "C":
		r.C = byte(v)
	case "D":
		r.D = byte(v)
	case "E":
		r.E = byte(v)
	case "H":
		r.H = byte(v)
	case "L":
		r.L = byte(v)
	case "AF":
		r.SetAF(v)
	case "BC":
		r.SetBC(v)
	case "DE":
		r.SetDE(v)
	case "HL":
		r.SetHL(v)
	case "SP":
		r.SP = v
	case "PC":
		r.PC = v
	default:
		fmt.Fprintf(d.out, "unknown register %q\n", args[0])
		return
	}
	d.printRegisters(c)
}

func (d *Debugger[B]) printRegisters(c *cpu.CPU) {
	fmt.Fprintf(d.out, "A=%02X F=%02X (%s) BC=%04X DE=%04X HL=%04X SP=%04X PC=%04X IME=%t halted=%t\n",
		c.A, c.F.Byte(), c.F, c.BC(), c.DE(), c.HL(), c.SP, c.PC, c.IME, c.Halted())
}

func (d *Debugger[B]) cmdMem(args []string) {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(d.out, "mem ADDR [N]")
		return
	}
	addr, err := d.Resolve(args[0])
	if err != nil {
		fmt.Fprintln(d.out, err)
		return
	}
	n := 16
	if len(args) == 2 {
		if n, err = strconv.Atoi(args[1]); err != nil || n <= 0 || n > 0x10000 {
			fmt.Fprintf(d.out, "invalid count %q\n", args[1])
			return
		}
	}
	bus := d.m.Bus()
	var line strings.Builder
	for i := 0; i < n; i++ {
		a := addr + uint16(i)
		if i%16 == 0 {
			if i > 0 {
				fmt.Fprintln(d.out, line.String())
				line.Reset()
			}
			fmt.Fprintf(&line, "%04X:", a)
		}
		fmt.Fprintf(&line, " %02X", bus.Read(a))
	}
	fmt.Fprintln(d.out, line.String())
}

func (d *Debugger[B]) cmdSet(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(d.out, "set ADDR VALUE")
		return
	}
	addr, err := d.Resolve(args[0])
	if err != nil {
		fmt.Fprintln(d.out, err)
		return
	}
	v, err := parseHex(args[1], 8)
	if err != nil {
		fmt.Fprintln(d.out, err)
		return
	}
	d.m.Bus().Write(addr, byte(v))
	d.cmdMem([]string{args[0], "1"})
}
