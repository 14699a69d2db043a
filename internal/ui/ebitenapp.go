// Package ui is the windowed Device, built on ebiten. The emulation runs on
// its own goroutine and talks to App through the Device methods; ebiten's
// loop reads the keyboard and draws the last flushed frame.
package ui

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/device"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/logger"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// FrameDuration is one LCD frame: 70224 T-cycles at 4.194304 MHz.
const FrameDuration = time.Second * 70224 / 4194304

// fastForwardFrames is how many emulated frames share one paced interval
// while Tab is held.
const fastForwardFrames = 5

// Bindings maps each key to its host key.
var Bindings = map[device.Key]ebiten.Key{
	device.Up:     ebiten.KeyArrowUp,
	device.Down:   ebiten.KeyArrowDown,
	device.Left:   ebiten.KeyArrowLeft,
	device.Right:  ebiten.KeyArrowRight,
	device.A:      ebiten.KeyZ,
	device.B:      ebiten.KeyX,
	device.Start:  ebiten.KeyEnter,
	device.Select: ebiten.KeyBackspace,
}

// App is a Device that shows frames in an ebiten window and reads its keys.
type App struct {
	cfg  Config
	w, h int

	mu      sync.Mutex
	pending []uint32
	dirty   bool
	front   []uint32
	pix     []byte
	keys    [len(device.Keys)]bool
	quit    bool
	paused  bool
	fast    bool

	// emulation goroutine only
	nextFrame time.Time
	skipped   int

	tex *ebiten.Image
}

func NewApp(cfg Config, w, h int) *App {
	cfg.Defaults()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(w*cfg.Scale, h*cfg.Scale)
	ebiten.SetWindowClosingHandled(true)
	return &App{
		cfg:   cfg,
		w:     w,
		h:     h,
		front: make([]uint32, w*h),
		pix:   make([]byte, w*h*4),
	}
}

// Run blocks in ebiten's main loop until the window closes. It must be
// called from the main goroutine.
func (a *App) Run() error {
	return ebiten.RunGame(&game{a})
}

// Quit makes Running report false and closes the window on its next tick.
func (a *App) Quit() {
	a.mu.Lock()
	a.quit = true
	a.mu.Unlock()
}

func (a *App) SetFrameBuffer(pixels []uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if cap(a.pending) < len(pixels) {
		a.pending = make([]uint32, len(pixels))
	}
	a.pending = a.pending[:len(pixels)]
	copy(a.pending, pixels)
	a.dirty = true
}

// Update publishes the pending frame to the window. With LimitFPS it then
// waits out the rest of the frame; while paused it blocks until unpaused or
// quit.
func (a *App) Update() {
	a.mu.Lock()
	if a.dirty {
		a.dirty = false
		a.pending, a.front = a.front, a.pending
		device.FillRGBA(a.pix, a.front)
	}
	fast := a.fast
	a.mu.Unlock()

	for a.isPaused() {
		time.Sleep(FrameDuration)
	}
	a.pace(fast)
}

func (a *App) pace(fast bool) {
	if !a.cfg.LimitFPS {
		return
	}
	if fast {
		a.skipped++
		if a.skipped < fastForwardFrames {
			return
		}
		a.skipped = 0
	}
	now := time.Now()
	if a.nextFrame.IsZero() || now.Sub(a.nextFrame) > 4*FrameDuration {
		a.nextFrame = now
	}
	a.nextFrame = a.nextFrame.Add(FrameDuration)
	if d := time.Until(a.nextFrame); d > 0 {
		time.Sleep(d)
	}
}

func (a *App) isPaused() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.paused && !a.quit
}

func (a *App) KeyDown(k device.Key) bool {
	if k < 0 || int(k) >= len(a.keys) {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.keys[k]
}

func (a *App) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.quit
}

func (a *App) screenshot() {
	a.mu.Lock()
	frame := append([]uint32(nil), a.front...)
	a.mu.Unlock()

	name := filepath.Join(a.cfg.ScreenshotDir, fmt.Sprintf("screenshot_%s.png", time.Now().Format("20060102_150405")))
	if err := device.WritePNG(name, frame, a.w, a.h); err != nil {
		logger.Logf("ui", "screenshot: %v", err)
		return
	}
	logger.Logf("ui", "screenshot saved to %s", name)
}

// game is the ebiten side of App.
type game struct {
	a *App
}

func (g *game) Update() error {
	a := g.a
	var keys [len(device.Keys)]bool
	for k, hk := range Bindings {
		keys[k] = ebiten.IsKeyPressed(hk)
	}

	a.mu.Lock()
	a.keys = keys
	if ebiten.IsWindowBeingClosed() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		a.quit = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		a.paused = !a.paused
	}
	a.fast = ebiten.IsKeyPressed(ebiten.KeyTab)
	quit := a.quit
	a.mu.Unlock()

	if quit {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		a.screenshot()
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	a := g.a
	if a.tex == nil {
		a.tex = ebiten.NewImage(a.w, a.h)
	}
	a.mu.Lock()
	a.tex.WritePixels(a.pix)
	paused := a.paused
	a.mu.Unlock()

	screen.DrawImage(a.tex, nil)
	if paused {
		ebitenutil.DebugPrintAt(screen, "PAUSED", 4, 4)
	}
}

func (g *game) Layout(outW, outH int) (int, int) { return g.a.w, g.a.h }
