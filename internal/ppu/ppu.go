// Package ppu implements the DMG pixel processing unit: mode timing, STAT
// and VBlank interrupts, CPU access to VRAM and OAM, and a scanline renderer
// that fills a packed-colour frame buffer.
package ppu

const (
	Width  = 160
	Height = 144

	dotsPerLine   = 456
	linesPerFrame = 154
	oamScanDots   = 80
	transferDots  = 172

	// DotsPerFrame is the length of one frame in T-cycles.
	DotsPerFrame = dotsPerLine * linesPerFrame
)

// Interrupt bits in IF requested by the PPU.
const (
	IntVBlank = 0
	IntSTAT   = 1
)

// InterruptRequester sets a bit in IF.
type InterruptRequester func(bit int)

// PPU models VRAM, OAM, the LCD registers FF40-FF4B (bar FF46, which the bus
// owns for DMA) and line timing.
type PPU struct {
	vram vram
	oam  [0xA0]byte

	lcdc byte
	stat byte // bits 0-1 mode, bit 2 coincidence, bits 3-6 enables
	scy  byte
	scx  byte
	ly   byte
	lyc  byte
	bgp  byte
	obp0 byte
	obp1 byte
	wy   byte
	wx   byte

	dot     int
	winLine byte
	offDots int

	req InterruptRequester

	palette Palette
	frame   []uint32
	sprites []Sprite
}

func New(req InterruptRequester) *PPU {
	p := &PPU{
		req:     req,
		palette: Grey,
		frame:   make([]uint32, Width*Height),
		sprites: make([]Sprite, 0, 10),
	}
	p.clearFrame()
	return p
}

// SetPalette selects the colours used for the four DMG shades.
func (p *PPU) SetPalette(pal Palette) { p.palette = pal }

// Frame returns the frame buffer, Width*Height packed colours, row major.
// The slice is reused; callers that keep it must copy.
func (p *PPU) Frame() []uint32 { return p.frame }

func (p *PPU) mode() byte { return p.stat & 0x03 }

// CPURead returns bytes for VRAM, OAM and the LCD registers. VRAM reads 0xFF
// during pixel transfer and OAM reads 0xFF during OAM scan and transfer.
func (p *PPU) CPURead(addr uint16) byte {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		if p.mode() == 3 {
			return 0xFF
		}
		return p.vram.Read(addr)
	case addr >= 0xFE00 && addr <= 0xFE9F:
		if m := p.mode(); m == 2 || m == 3 {
			return 0xFF
		}
		return p.oam[addr-0xFE00]
	}
	switch addr {
	case 0xFF40:
		return p.lcdc
	case 0xFF41:
		return 0x80 | p.stat&0x7F
	case 0xFF42:
		return p.scy
	case 0xFF43:
		return p.scx
	case 0xFF44:
		return p.ly
	case 0xFF45:
		return p.lyc
	case 0xFF47:
		return p.bgp
	case 0xFF48:
		return p.obp0
	case 0xFF49:
		return p.obp1
	case 0xFF4A:
		return p.wy
	case 0xFF4B:
		return p.wx
	}
	return 0xFF
}

// CPUWrite handles writes to VRAM, OAM and the LCD registers. LY is read
// only.
func (p *PPU) CPUWrite(addr uint16, value byte) {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		if p.mode() != 3 {
			p.vram[addr&0x1FFF] = value
		}
		return
	case addr >= 0xFE00 && addr <= 0xFE9F:
		if m := p.mode(); m != 2 && m != 3 {
			p.oam[addr-0xFE00] = value
		}
		return
	}
	switch addr {
	case 0xFF40:
		prev := p.lcdc
		p.lcdc = value
		switch {
		case prev&0x80 != 0 && value&0x80 == 0:
			p.ly = 0
			p.dot = 0
			p.offDots = 0
			p.setMode(0)
			p.updateLYC()
		case prev&0x80 == 0 && value&0x80 != 0:
			p.ly = 0
			p.dot = 0
			p.winLine = 0
			p.setMode(2)
			p.updateLYC()
		}
	case 0xFF41:
		p.stat = p.stat&0x07 | value&0x78
	case 0xFF42:
		p.scy = value
	case 0xFF43:
		p.scx = value
	case 0xFF45:
		p.lyc = value
		p.updateLYC()
	case 0xFF47:
		p.bgp = value
	case 0xFF48:
		p.obp0 = value
	case 0xFF49:
		p.obp1 = value
	case 0xFF4A:
		p.wy = value
	case 0xFF4B:
		p.wx = value
	}
}

// WriteOAM stores a byte during OAM DMA, which is not subject to the mode
// lockout.
func (p *PPU) WriteOAM(index int, value byte) {
	if index >= 0 && index < len(p.oam) {
		p.oam[index] = value
	}
}

// Tick advances the PPU by the given number of dots and reports whether a
// frame was completed. With the LCD off a blank frame is produced once per
// frame period so the display keeps a steady cadence.
func (p *PPU) Tick(cycles int) (frameDone bool) {
	for i := 0; i < cycles; i++ {
		if p.lcdc&0x80 == 0 {
			p.offDots++
			if p.offDots >= DotsPerFrame {
				p.offDots = 0
				p.clearFrame()
				frameDone = true
			}
			continue
		}
		if p.tick() {
			frameDone = true
		}
	}
	return frameDone
}

func (p *PPU) tick() (frameDone bool) {
	p.dot++

	if p.ly < Height {
		switch p.dot {
		case oamScanDots:
			p.setMode(3)
		case oamScanDots + transferDots:
			p.setMode(0)
		}
	}

	if p.dot < dotsPerLine {
		return false
	}

	p.dot = 0
	p.ly++
	switch {
	case p.ly == Height:
		frameDone = true
		p.setMode(1)
		if p.req != nil {
			p.req(IntVBlank)
		}
	case p.ly >= linesPerFrame:
		p.ly = 0
		p.winLine = 0
		p.setMode(2)
	case p.ly < Height:
		p.setMode(2)
	}
	p.updateLYC()
	return frameDone
}

func (p *PPU) setMode(mode byte) {
	if p.mode() == mode {
		return
	}
	p.stat = p.stat&^0x03 | mode&0x03
	var source byte
	switch mode {
	case 0:
		p.renderLine()
		source = 1 << 3
	case 1:
		source = 1 << 4
	case 2:
		source = 1 << 5
	}
	if source != 0 && p.stat&source != 0 && p.req != nil {
		p.req(IntSTAT)
	}
}

func (p *PPU) updateLYC() {
	if p.ly != p.lyc {
		p.stat &^= 1 << 2
		return
	}
	p.stat |= 1 << 2
	if p.stat&(1<<6) != 0 && p.req != nil {
		p.req(IntSTAT)
	}
}

func (p *PPU) clearFrame() {
	white := p.palette[0]
	for i := range p.frame {
		p.frame[i] = white
	}
}

// renderLine draws the current line into the frame using the register
// values in effect as the line enters HBlank.
func (p *PPU) renderLine() {
	if p.lcdc&0x80 == 0 || p.ly >= Height {
		return
	}
	ly := int(p.ly)
	tileData8000 := p.lcdc&0x10 != 0

	var bg [Width]byte
	if p.lcdc&0x01 != 0 {
		bgMap := uint16(0x9800)
		if p.lcdc&0x08 != 0 {
			bgMap = 0x9C00
		}
		bg = RenderBGLine(&p.vram, bgMap, tileData8000, p.scx, p.scy, p.ly)

		if p.lcdc&0x20 != 0 && p.ly >= p.wy && p.wx <= 166 {
			winMap := uint16(0x9800)
			if p.lcdc&0x40 != 0 {
				winMap = 0x9C00
			}
			winX := int(p.wx) - 7
			win := RenderWindowLine(&p.vram, winMap, tileData8000, winX, p.winLine)
			copy(bg[max(winX, 0):], win[max(winX, 0):])
			p.winLine++
		}
	}

	row := p.frame[ly*Width : (ly+1)*Width]
	for x, ci := range bg {
		row[x] = p.palette[shade(p.bgp, ci)]
	}

	if p.lcdc&0x02 == 0 {
		return
	}
	tall := p.lcdc&0x04 != 0
	p.sprites = SelectSprites(&p.oam, ly, tall, p.sprites)
	if len(p.sprites) == 0 {
		return
	}
	ci, pal := ComposeSprites(&p.vram, p.sprites, ly, bg, tall)
	for x := range row {
		if ci[x] == 0 {
			continue
		}
		obp := p.obp0
		if pal[x] == 1 {
			obp = p.obp1
		}
		row[x] = p.palette[shade(obp, ci[x])]
	}
}
