package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/bradleyjkemp/memviz"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/bootrom"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/bus"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/cart"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/device"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/logger"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/symbols"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/test"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/vm"
)

// exit codes
const (
	exitPass    = 0
	exitFail    = 1
	exitTimeout = 2
	exitCPU     = 3
)

// serialWatch collects serial output and notes when new bytes arrive so the
// pattern checks only run when there is something new to match.
type serialWatch struct {
	buf     bytes.Buffer
	changed bool
}

func (s *serialWatch) Write(p []byte) (int, error) {
	s.changed = true
	return s.buf.Write(p)
}

func main() {
	romPath := flag.String("rom", "", "path to ROM (.gb)")
	bootPath := flag.String("bootrom", "", "optional DMG boot ROM to run from 0x0000 until FF50 disables it")
	steps := flag.Int("steps", 5_000_000, "max CPU steps to run")
	trace := flag.Bool("trace", false, "print PC/opcodes")
	symPath := flag.String("sym", "", "symbol file used to label the trace")
	until := flag.String("until", "Passed", "stop when serial output contains this substring (case-insensitive); empty to disable")
	auto := flag.Bool("auto", false, "auto-detect 'Passed' or 'Failed N tests' in serial output and exit with code 0/1")
	timeout := flag.Duration("timeout", 0, "optional wall-clock timeout (e.g. 30s, 2m); 0 disables")
	traceOnFail := flag.Bool("traceOnFail", false, "when -auto detects failure, print a recent trace window (slows down)")
	traceWindow := flag.Int("traceWindow", 200, "number of recent instructions to include in 'traceOnFail' dump")
	serialWindow := flag.Int("serialWindow", 8192, "number of recent serial bytes to retain for diagnostics on fail")
	memvizPath := flag.String("memviz", "", "write a graphviz dump of the CPU state to this file on exit")
	verbose := flag.Bool("log", false, "echo the event log to stderr")
	flag.Parse()

	if *verbose {
		logger.SetEcho(os.Stderr)
	}
	if *romPath == "" {
		log.Fatal("-rom is required")
	}
	c, _, err := cart.Load(*romPath)
	if err != nil {
		log.Fatal(err)
	}
	var boot []byte
	mode := vm.SkipBootROM
	if *bootPath != "" {
		if boot, err = bootrom.Load(*bootPath); err != nil {
			log.Fatal(err)
		}
		mode = vm.WithBootROM
	}

	// serial streams to stdout and is kept for pattern detection and the
	// failure report
	if *serialWindow < 256 {
		*serialWindow = 256
	}
	serRing, err := test.NewRingWriter(*serialWindow)
	if err != nil {
		log.Fatal(err)
	}
	ser := &serialWatch{}
	b := bus.New(boot, c)
	b.SetSerialWriter(io.MultiWriter(os.Stdout, ser, serRing))

	var cfg vm.Config
	if *symPath != "" {
		if cfg.Symbols, err = symbols.Load(*symPath); err != nil {
			log.Fatal(err)
		}
	}
	var traceRing *test.RingWriter
	switch {
	case *trace:
		cfg.Trace = os.Stdout
	case *traceOnFail && *traceWindow > 0:
		// a trace line is under 128 bytes
		if traceRing, err = test.NewRingWriter(*traceWindow * 128); err != nil {
			log.Fatal(err)
		}
		cfg.Trace = traceRing
	}

	m := vm.New(b, mode, cfg)
	dev := device.NewHeadless(0)

	start := time.Now()
	var deadline time.Time
	if *timeout > 0 {
		deadline = start.Add(*timeout)
	}
	// failure summary: "Failed <n> tests"
	failRe := regexp.MustCompile(`(?i)failed\s+(\d+)\s+tests?`)
	// test markers like "11:01"
	stageRe := regexp.MustCompile(`\b(\d{2}:\d{2})\b`)
	lastStage := ""

	done := func(code int) {
		fmt.Printf("\nDone: steps=%d cycles=%d elapsed=%s\n", m.Steps(), m.Cycles(), time.Since(start).Truncate(time.Millisecond))
		if *memvizPath != "" {
			cp, _ := m.Decompose()
			if err := dumpCPU(*memvizPath, cp); err != nil {
				log.Printf("memviz: %v", err)
			}
		}
		os.Exit(code)
	}

	for i := 0; i < *steps; i++ {
		if _, err := m.Step(dev); err != nil {
			fmt.Printf("\n%v\n", err)
			var opErr *cpu.OpcodeError
			if errors.As(err, &opErr) && cfg.Symbols != nil {
				fmt.Printf("at %s\n", cfg.Symbols.Format(opErr.PC))
			}
			done(exitCPU)
		}

		if ser.changed {
			ser.changed = false
			s := ser.buf.String()
			if *auto {
				if mm := stageRe.FindAllString(s, -1); len(mm) > 0 {
					lastStage = mm[len(mm)-1]
				}
				if strings.Contains(strings.ToLower(s), "passed") {
					fmt.Printf("\nDetected PASS in serial output.\n")
					if lastStage != "" {
						fmt.Printf("Last stage seen: %s\n", lastStage)
					}
					done(exitPass)
				}
				if mm := failRe.FindStringSubmatch(s); mm != nil {
					fmt.Printf("\nDetected %s in serial output.\n", mm[0])
					if lastStage != "" {
						fmt.Printf("Last stage seen: %s\n", lastStage)
					}
					if traceRing != nil {
						fmt.Printf("\n--- recent trace (last %d instructions) ---\n", *traceWindow)
						fmt.Print(lastLines(traceRing.String(), *traceWindow))
						fmt.Printf("--- end trace ---\n")
					}
					fmt.Printf("\n--- recent serial (last %d bytes) ---\n", *serialWindow)
					fmt.Print(serRing.String())
					fmt.Printf("\n--- end serial ---\n")
					done(exitFail)
				}
			} else if *until != "" && strings.Contains(strings.ToLower(s), strings.ToLower(*until)) {
				fmt.Printf("\nDetected '%s' in serial output.\n", *until)
				done(exitPass)
			}
		}

		if !deadline.IsZero() && i&0x3FF == 0 && time.Now().After(deadline) {
			fmt.Printf("\nTimeout after %s.\n", time.Since(start).Truncate(time.Millisecond))
			done(exitTimeout)
		}
	}
	done(exitPass)
}

// lastLines returns the last n complete lines of s. The first line of a
// wrapped ring is usually cut and is dropped.
func lastLines(s string, n int) string {
	lines := strings.SplitAfter(s, "\n")
	if len(lines) > 0 && !strings.HasSuffix(lines[len(lines)-1], "\n") {
		lines = lines[:len(lines)-1]
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	} else if len(lines) > 1 {
		lines = lines[1:]
	}
	return strings.Join(lines, "")
}

func dumpCPU(path string, c *cpu.CPU) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	memviz.Map(f, c)
	log.Printf("wrote %s", path)
	return nil
}
