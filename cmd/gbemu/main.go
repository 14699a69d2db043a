package main

import (
	"errors"
	"flag"
	"fmt"
	"hash/crc32"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/bootrom"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/bus"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/cart"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/debugger"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/device"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/logger"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/poweron"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/ppu"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/statsview"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/symbols"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/term"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/ui"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/vm"
)

type CLIFlags struct {
	ROMPath  string
	BootROM  string
	PowerOn  string
	Device   string
	Scale    int
	Title    string
	Palette  string
	LimitFPS bool
	SaveRAM  bool // persist battery RAM next to ROM (.sav)

	Debug     bool
	Log       bool
	Trace     string
	Symbols   string
	StatsView string

	// headless
	Frames int
	PNGOut string
	Expect string // expected framebuffer CRC32 hex (e.g., "1a2b3c4d")
}

func parseFlags() CLIFlags {
	var f CLIFlags
	flag.StringVar(&f.ROMPath, "rom", "", "path to ROM (.gb)")
	flag.StringVar(&f.BootROM, "bootrom", "", "optional DMG boot ROM; without one the power-on snapshot is applied")
	flag.StringVar(&f.PowerOn, "poweron", poweron.Default.Name, fmt.Sprintf("power-on snapshot when skipping the boot ROM (%s)", strings.Join(poweron.Names(), ", ")))
	flag.StringVar(&f.Device, "device", "window", "frontend: window, term or headless")
	flag.IntVar(&f.Scale, "scale", 3, "window scale")
	flag.StringVar(&f.Title, "title", "gbemu", "window title")
	flag.StringVar(&f.Palette, "palette", "grey", "shade palette: grey or green")
	flag.BoolVar(&f.LimitFPS, "limitfps", true, "pace the window and terminal to the LCD refresh rate")
	flag.BoolVar(&f.SaveRAM, "save", true, "persist battery RAM to ROM.sav on exit and load on start")

	flag.BoolVar(&f.Debug, "debug", false, "start stopped in the debugger; commands are read from stdin")
	flag.BoolVar(&f.Log, "log", false, "echo the event log to stderr")
	flag.StringVar(&f.Trace, "trace", "", "write a CPU trace to this file (- for stdout)")
	flag.StringVar(&f.Symbols, "sym", "", "symbol file used to label the trace")
	flag.StringVar(&f.StatsView, "statsview", "", "serve runtime stats on this address (e.g. localhost:12600)")

	// headless options
	flag.IntVar(&f.Frames, "frames", 300, "frames to run in headless mode")
	flag.StringVar(&f.PNGOut, "outpng", "", "write last framebuffer to PNG at path")
	flag.StringVar(&f.Expect, "expect", "", "assert framebuffer CRC32 (hex)")
	flag.Parse()
	return f
}

type machine = vm.VM[*bus.Bus]

func main() {
	f := parseFlags()
	if f.Log {
		logger.SetEcho(os.Stderr)
	}
	if f.ROMPath == "" {
		log.Fatal("-rom is required")
	}
	if f.StatsView != "" {
		defer statsview.Launch(f.StatsView)()
	}

	c, h, err := cart.Load(f.ROMPath)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("ROM: %q type=%s banks=%d ram=%dB", h.Title, h.CartTypeStr, h.ROMBanks, h.RAMSizeBytes)

	var boot []byte
	mode := vm.SkipBootROM
	if f.BootROM != "" {
		if boot, err = bootrom.Load(f.BootROM); err != nil {
			log.Fatal(err)
		}
		mode = vm.WithBootROM
		log.Printf("boot ROM: %s", bootrom.Identify(boot))
	}

	snap, err := poweron.Lookup(f.PowerOn)
	if err != nil {
		log.Fatal(err)
	}

	cfg := vm.Config{PowerOn: snap}
	if f.Trace != "" {
		w, closeTrace, err := openTrace(f.Trace)
		if err != nil {
			log.Fatal(err)
		}
		defer closeTrace()
		cfg.Trace = w
	}
	if f.Symbols != "" {
		if cfg.Symbols, err = symbols.Load(f.Symbols); err != nil {
			log.Fatal(err)
		}
		log.Printf("loaded %d symbols", cfg.Symbols.Len())
	}

	savPath := ""
	if f.SaveRAM && h.HasBattery() {
		savPath = strings.TrimSuffix(f.ROMPath, ".gb") + ".sav"
		loadBattery(c, savPath)
	}

	b := bus.New(boot, c)
	pal, ok := ppu.LookupPalette(f.Palette)
	if !ok {
		log.Fatalf("unknown palette %q", f.Palette)
	}
	b.PPU().SetPalette(pal)

	m := vm.New(b, mode, cfg)

	run := m.Run
	if f.Debug {
		if f.Device == "term" {
			log.Fatal("-debug reads commands from stdin and cannot be used with -device term")
		}
		dbg := debugger.New(m, cfg.Symbols, os.Stdout)
		dbg.Break = true
		run = func(dev device.Device) error { return dbg.Run(dev, os.Stdin) }
	}

	switch f.Device {
	case "window":
		err = runWindow(m, run, f)
	case "term":
		err = runTerm(m, run, f)
	case "headless":
		err = runHeadless(m, run, f.Frames, f.PNGOut, f.Expect)
	default:
		err = fmt.Errorf("unknown device %q", f.Device)
	}

	if savPath != "" {
		saveBattery(c, savPath)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// runWindow runs the machine on its own goroutine: ebiten needs the main one.
// runner drives the machine against a device: vm.Run or a debugger.
type runner func(dev device.Device) error

func runWindow(m *machine, run runner, f CLIFlags) error {
	app := ui.NewApp(ui.Config{
		Title:    f.Title,
		Scale:    f.Scale,
		LimitFPS: f.LimitFPS,
	}, m.Width(), m.Height())

	var g errgroup.Group
	g.Go(func() error {
		defer app.Quit()
		return run(app)
	})
	uiErr := app.Run()
	app.Quit()
	return errors.Join(g.Wait(), uiErr)
}

func runTerm(m *machine, run runner, f CLIFlags) error {
	dev, err := term.New(term.Config{}, m.Width(), m.Height())
	if err != nil {
		return err
	}
	defer dev.Close()

	if !f.LimitFPS {
		return run(dev)
	}
	return run(&pacedDevice{Device: dev, next: time.Now()})
}

// pacedDevice sleeps after each flushed frame to hold the LCD refresh rate.
type pacedDevice struct {
	device.Device
	next time.Time
}

func (p *pacedDevice) Update() {
	p.Device.Update()
	p.next = p.next.Add(ui.FrameDuration)
	if d := time.Until(p.next); d > 0 {
		time.Sleep(d)
	} else {
		p.next = time.Now()
	}
}

func runHeadless(m *machine, run runner, frames int, pngPath, expectCRC string) error {
	if frames <= 0 {
		frames = 1
	}
	dev := device.NewHeadless(frames)

	start := time.Now()
	if err := run(dev); err != nil {
		return err
	}
	dur := time.Since(start)

	fb := dev.Frame()
	if fb == nil {
		return errors.New("headless: no frame produced")
	}
	crc := crc32.ChecksumIEEE(device.Image(fb, m.Width(), m.Height()).Pix)
	fps := float64(dev.Frames()) / dur.Seconds()

	log.Printf("headless: frames=%d steps=%d cycles=%d elapsed=%s fps=%.2f fb_crc32=%08x",
		dev.Frames(), m.Steps(), m.Cycles(), dur.Truncate(time.Millisecond), fps, crc)

	if pngPath != "" {
		if err := device.WritePNG(pngPath, fb, m.Width(), m.Height()); err != nil {
			return fmt.Errorf("write PNG: %w", err)
		}
		log.Printf("wrote %s", pngPath)
	}

	if expectCRC != "" {
		// allow with/without 0x, upper/lowercase
		want := strings.TrimPrefix(strings.ToLower(expectCRC), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}

func openTrace(path string) (io.Writer, func(), error) {
	if path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func loadBattery(c cart.Cartridge, path string) {
	bb, ok := c.(cart.BatteryBacked)
	if !ok {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	bb.LoadRAM(data)
	log.Printf("loaded save RAM: %s (%d bytes)", path, len(data))
}

func saveBattery(c cart.Cartridge, path string) {
	bb, ok := c.(cart.BatteryBacked)
	if !ok {
		return
	}
	data := bb.SaveRAM()
	if len(data) == 0 {
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Printf("write %s: %v", path, err)
		return
	}
	log.Printf("wrote %s", path)
}
