package vm

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/bus"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/cart"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/device"
)

// findROMs recursively collects .gb files under dir.
func findROMs(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(strings.ToLower(d.Name()), ".gb") {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

// serialVerdict stops a headless device once the ROM reports on serial.
type serialVerdict struct {
	*device.Headless
	out *bytes.Buffer
}

func (s serialVerdict) Running() bool {
	low := strings.ToLower(s.out.String())
	if strings.Contains(low, "passed") || strings.Contains(low, "failed") {
		return false
	}
	return s.Headless.Running()
}

// runBlargg executes a test ROM until it reports via serial or times out.
func runBlargg(t *testing.T, romPath string, maxFrames int) {
	t.Helper()
	c, _, err := cart.Load(romPath)
	if err != nil {
		t.Fatalf("load ROM: %v", err)
	}
	b := bus.New(nil, c)
	var buf bytes.Buffer
	b.SetSerialWriter(&buf)

	v := New(b, SkipBootROM, Config{})
	dev := serialVerdict{Headless: device.NewHeadless(maxFrames), out: &buf}
	if err := v.Run(dev); err != nil {
		t.Fatalf("%s: %v\nserial:\n%s", filepath.Base(romPath), err, buf.String())
	}

	out := strings.ToLower(buf.String())
	switch {
	case strings.Contains(out, "passed"):
	case strings.Contains(out, "failed"):
		t.Fatalf("%s reported failure via serial:\n%s", filepath.Base(romPath), buf.String())
	default:
		t.Fatalf("timeout waiting for serial 'Passed' in %s; last output:\n%s", filepath.Base(romPath), buf.String())
	}
}

// TestBlargg scans testroms/blargg (or BLARGG_DIR) and runs every .gb found.
func TestBlargg(t *testing.T) {
	if os.Getenv("RUN_BLARGG") == "" {
		t.Skip("set RUN_BLARGG=1 and place ROMs under testroms/blargg or set BLARGG_DIR to run")
	}

	base := os.Getenv("BLARGG_DIR")
	if base == "" {
		base = filepath.Join(moduleRoot(), "testroms", "blargg")
	}
	if _, err := os.Stat(base); err != nil {
		t.Skipf("blargg ROM dir missing: %s", base)
	}

	roms, err := findROMs(base)
	if err != nil {
		t.Fatalf("scan ROMs: %v", err)
	}
	if len(roms) == 0 {
		t.Skipf("no ROMs found in %s", base)
	}

	maxFrames := 1800
	if v := os.Getenv("BLARGG_MAX_FRAMES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxFrames = n
		}
	}

	for _, rom := range roms {
		name := strings.TrimSuffix(filepath.Base(rom), filepath.Ext(rom))
		t.Run(name, func(t *testing.T) { runBlargg(t, rom, maxFrames) })
	}
}

// moduleRoot walks up from this file to the directory holding go.mod, or
// falls back to the working directory.
func moduleRoot() string {
	if _, file, _, ok := runtime.Caller(0); ok {
		dir := filepath.Dir(file)
		for {
			if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
				return dir
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}
