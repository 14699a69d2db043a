package ppu

// RenderBGLine produces the 160 background colour indices of line ly.
func RenderBGLine(mem VRAMReader, mapBase uint16, tileData8000 bool, scx, scy, ly byte) [Width]byte {
	var out [Width]byte

	bgY := ly + scy
	mapRow := mapBase + uint16(bgY>>3)*32
	tileX := uint16(scx >> 3)

	var q fifo
	f := newTileFetcher(mem, &q, tileData8000, bgY&7)
	f.Fetch(mapRow + tileX)
	for i := byte(0); i < scx&7; i++ {
		q.Pop()
	}

	for x := range out {
		if q.Len() == 0 {
			tileX = (tileX + 1) & 31
			f.Fetch(mapRow + tileX)
		}
		out[x], _ = q.Pop()
	}
	return out
}

// RenderWindowLine produces window colour indices for every x from winX
// (WX-7, possibly negative) to the right edge. Pixels left of winX are zero.
// winLine is the window's own line counter, not LY.
func RenderWindowLine(mem VRAMReader, mapBase uint16, tileData8000 bool, winX int, winLine byte) [Width]byte {
	var out [Width]byte
	if winX >= Width {
		return out
	}

	mapRow := mapBase + uint16(winLine>>3)*32
	tileX := uint16(0)

	var q fifo
	f := newTileFetcher(mem, &q, tileData8000, winLine&7)
	f.Fetch(mapRow)
	for x := winX; x < 0; x++ {
		if q.Len() == 0 {
			tileX++
			f.Fetch(mapRow + tileX)
		}
		q.Pop()
	}

	for x := max(winX, 0); x < Width; x++ {
		if q.Len() == 0 {
			tileX = (tileX + 1) & 31
			f.Fetch(mapRow + tileX)
		}
		out[x], _ = q.Pop()
	}
	return out
}

// Sprite is one OAM entry in screen coordinates (OAM Y-16, X-8).
type Sprite struct {
	Y, X     int
	Tile     byte
	Attr     byte
	OAMIndex int
}

const (
	attrBehindBG = 1 << 7
	attrYFlip    = 1 << 6
	attrXFlip    = 1 << 5
	attrOBP1     = 1 << 4
)

// SelectSprites returns up to ten sprites covering line ly, in OAM order.
func SelectSprites(oam *[0xA0]byte, ly int, tall bool, dst []Sprite) []Sprite {
	h := 8
	if tall {
		h = 16
	}
	dst = dst[:0]
	for i := 0; i < 40 && len(dst) < 10; i++ {
		e := oam[i*4 : i*4+4]
		y := int(e[0]) - 16
		if ly < y || ly >= y+h {
			continue
		}
		dst = append(dst, Sprite{Y: y, X: int(e[1]) - 8, Tile: e[2], Attr: e[3], OAMIndex: i})
	}
	return dst
}

// ComposeSprites resolves the sprite layer of line ly against the background
// colour indices bg. It returns the winning sprite colour index per pixel
// (0 where no sprite shows) and the palette (0 for OBP0, 1 for OBP1).
//
// Where sprites overlap the one with the smaller X wins, then the one earlier
// in OAM. A sprite with the behind-BG attribute loses to a non-zero
// background pixel.
func ComposeSprites(mem VRAMReader, sprites []Sprite, ly int, bg [Width]byte, tall bool) (ci, pal [Width]byte) {
	var owner [Width]*Sprite
	for i := range sprites {
		s := &sprites[i]
		row := ly - s.Y
		if s.Attr&attrYFlip != 0 {
			if tall {
				row = 15 - row
			} else {
				row = 7 - row
			}
		}
		tile := s.Tile
		if tall {
			tile &= 0xFE
			if row >= 8 {
				tile++
			}
		}
		base := 0x8000 + uint16(tile)*16 + uint16(row&7)*2
		lo, hi := mem.Read(base), mem.Read(base+1)

		for col := 0; col < 8; col++ {
			x := s.X + col
			if x < 0 || x >= Width {
				continue
			}
			bit := 7 - col
			if s.Attr&attrXFlip != 0 {
				bit = col
			}
			c := (hi>>bit)&1<<1 | (lo>>bit)&1
			if c == 0 {
				continue
			}
			if o := owner[x]; o != nil && (o.X < s.X || o.X == s.X && o.OAMIndex < s.OAMIndex) {
				continue
			}
			owner[x] = s
			ci[x] = c
			pal[x] = 0
			if s.Attr&attrOBP1 != 0 {
				pal[x] = 1
			}
		}
	}
	for x, o := range owner {
		if o != nil && o.Attr&attrBehindBG != 0 && bg[x] != 0 {
			ci[x] = 0
		}
	}
	return ci, pal
}
