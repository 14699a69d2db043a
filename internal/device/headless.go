package device

// Headless is an in-memory Device for tests and batch runs. It keeps the last
// flushed frame and can stop itself after a fixed number of updates.
type Headless struct {
	// MaxFrames stops the device after that many non-empty updates. Zero
	// means no limit.
	MaxFrames int

	pending []uint32
	dirty   bool
	front   []uint32
	frames  int
	keys    [len(Keys)]bool
	stopped bool
}

// NewHeadless returns a headless device that stops after maxFrames flushed
// frames, or never when maxFrames is zero.
func NewHeadless(maxFrames int) *Headless {
	return &Headless{MaxFrames: maxFrames}
}

func (h *Headless) SetFrameBuffer(pixels []uint32) {
	if cap(h.pending) < len(pixels) {
		h.pending = make([]uint32, len(pixels))
	}
	h.pending = h.pending[:len(pixels)]
	copy(h.pending, pixels)
	h.dirty = true
}

func (h *Headless) Update() {
	if !h.dirty {
		return
	}
	h.dirty = false
	h.pending, h.front = h.front, h.pending
	h.frames++
	if h.MaxFrames > 0 && h.frames >= h.MaxFrames {
		h.stopped = true
	}
}

func (h *Headless) KeyDown(k Key) bool {
	if k < 0 || int(k) >= len(h.keys) {
		return false
	}
	return h.keys[k]
}

func (h *Headless) Running() bool { return !h.stopped }

// Press and Release script key state.
func (h *Headless) Press(k Key)   { h.keys[k] = true }
func (h *Headless) Release(k Key) { h.keys[k] = false }

// Stop makes Running report false.
func (h *Headless) Stop() { h.stopped = true }

// Frame returns a copy of the most recently flushed frame, or nil before the
// first. The copy stays valid across later updates.
func (h *Headless) Frame() []uint32 {
	if h.front == nil {
		return nil
	}
	return append([]uint32(nil), h.front...)
}

// Frames counts flushed frames.
func (h *Headless) Frames() int { return h.frames }
