// Package term is a Device that plays in a terminal. The screen is drawn
// with 24-bit ANSI colours, two pixel rows per character cell, and keys are
// read from a raw-mode stdin.
//
// A terminal reports key presses but not releases, so a key counts as held
// for a few frames after each byte arrives.
package term

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/device"
)

// ErrUnsupported is returned by New on platforms without termios.
var ErrUnsupported = errors.New("term: raw terminal not supported on this platform")

// Config selects the terminal streams. Zero fields use stdin, stdout and a
// six frame hold.
type Config struct {
	In         *os.File
	Out        io.Writer
	HoldFrames int
}

// Device renders frames as half-block text on a raw terminal and reads keys
// from its input.
type Device struct {
	cfg     Config
	w, h    int
	restore func() error

	mu      sync.Mutex
	pending []uint32
	dirty   bool
	held    [len(device.Keys)]int
	quit    bool

	out *bufio.Writer
}

// New puts the input terminal into raw mode and starts reading keys. Close
// must be called to restore the terminal.
func New(cfg Config, w, h int) (*Device, error) {
	d := newDevice(cfg, w, h)
	restore, err := makeRaw(int(d.cfg.In.Fd()))
	if err != nil {
		return nil, err
	}
	d.restore = restore
	d.out.WriteString("\x1b[?25l\x1b[2J")
	d.out.Flush()
	go d.readKeys()
	return d, nil
}

func newDevice(cfg Config, w, h int) *Device {
	if cfg.In == nil {
		cfg.In = os.Stdin
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.HoldFrames <= 0 {
		cfg.HoldFrames = 6
	}
	return &Device{cfg: cfg, w: w, h: h, out: bufio.NewWriter(cfg.Out)}
}

// Close restores the terminal.
func (d *Device) Close() error {
	d.Quit()
	d.out.WriteString("\x1b[0m\x1b[?25h\r\n")
	d.out.Flush()
	if d.restore == nil {
		return nil
	}
	return d.restore()
}

// Quit makes Running report false.
func (d *Device) Quit() {
	d.mu.Lock()
	d.quit = true
	d.mu.Unlock()
}

func (d *Device) readKeys() {
	buf := make([]byte, 32)
	for d.Running() {
		n, err := d.cfg.In.Read(buf)
		if n > 0 {
			d.feed(buf[:n])
		}
		if err != nil && err != io.EOF {
			d.Quit()
			return
		}
		if n == 0 {
			time.Sleep(5 * time.Millisecond)
		}
	}
}

// feed applies raw input bytes.
func (d *Device) feed(p []byte) {
	keys, quit := decodeKeys(p)
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, k := range keys {
		d.held[k] = d.cfg.HoldFrames
	}
	if quit {
		d.quit = true
	}
}

func (d *Device) SetFrameBuffer(pixels []uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if cap(d.pending) < len(pixels) {
		d.pending = make([]uint32, len(pixels))
	}
	d.pending = d.pending[:len(pixels)]
	copy(d.pending, pixels)
	d.dirty = true
}

// Update draws the pending frame and ages held keys by one frame.
func (d *Device) Update() {
	d.mu.Lock()
	for i := range d.held {
		if d.held[i] > 0 {
			d.held[i]--
		}
	}
	if !d.dirty {
		d.mu.Unlock()
		return
	}
	d.dirty = false
	frame := d.pending
	d.pending = nil
	d.mu.Unlock()

	render(d.out, frame, d.w, d.h)
	d.out.Flush()

	d.mu.Lock()
	if d.pending == nil {
		d.pending = frame
	}
	d.mu.Unlock()
}

func (d *Device) KeyDown(k device.Key) bool {
	if k < 0 || int(k) >= len(d.held) {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.held[k] > 0
}

func (d *Device) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.quit
}

// decodeKeys maps terminal input to keys: arrows, z=A, x=B, Enter=Start,
// Backspace=Select. q or a lone Escape asks to quit.
func decodeKeys(p []byte) (keys []device.Key, quit bool) {
	for i := 0; i < len(p); i++ {
		switch c := p[i]; c {
		case 0x1B:
			if i+2 < len(p) && p[i+1] == '[' {
				switch p[i+2] {
				case 'A':
					keys = append(keys, device.Up)
				case 'B':
					keys = append(keys, device.Down)
				case 'C':
					keys = append(keys, device.Right)
				case 'D':
					keys = append(keys, device.Left)
				}
				i += 2
				continue
			}
			quit = true
		case 'q', 'Q':
			quit = true
		case 'z', 'Z':
			keys = append(keys, device.A)
		case 'x', 'X':
			keys = append(keys, device.B)
		case '\r', '\n':
			keys = append(keys, device.Start)
		case 0x7F, 0x08:
			keys = append(keys, device.Select)
		}
	}
	return keys, quit
}

// render draws a frame from the top-left corner using upper half blocks:
// the foreground is the even row, the background the odd row.
func render(w *bufio.Writer, px []uint32, width, height int) {
	w.WriteString("\x1b[H")
	for y := 0; y < height; y += 2 {
		var fg, bg uint32
		for x := 0; x < width; x++ {
			top := px[y*width+x] & 0xFFFFFF
			bottom := uint32(0)
			if y+1 < height {
				bottom = px[(y+1)*width+x] & 0xFFFFFF
			}
			if top != fg || x == 0 {
				fmt.Fprintf(w, "\x1b[38;2;%d;%d;%dm", top>>16, top>>8&0xFF, top&0xFF)
				fg = top
			}
			if bottom != bg || x == 0 {
				fmt.Fprintf(w, "\x1b[48;2;%d;%d;%dm", bottom>>16, bottom>>8&0xFF, bottom&0xFF)
				bg = bottom
			}
			w.WriteString("▀")
		}
		w.WriteString("\x1b[0m\r\n")
	}
}
