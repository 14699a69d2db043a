package ppu

// VRAMReader gives the line renderers unrestricted read access to video
// memory, addressed by CPU address (8000-9FFF).
type VRAMReader interface {
	Read(addr uint16) byte
}

// vram is the 8 KiB video memory. Reading it through VRAMReader ignores the
// mode 3 lockout the CPU sees.
type vram [0x2000]byte

func (v *vram) Read(addr uint16) byte { return v[addr&0x1FFF] }

// fifo is a ring of 2-bit colour indices.
type fifo struct {
	buf  [32]byte
	head int
	tail int
	size int
}

func (q *fifo) Clear()   { q.head, q.tail, q.size = 0, 0, 0 }
func (q *fifo) Len() int { return q.size }

func (q *fifo) Push(ci byte) bool {
	if q.size == len(q.buf) {
		return false
	}
	q.buf[q.tail] = ci & 0x03
	q.tail = (q.tail + 1) % len(q.buf)
	q.size++
	return true
}

func (q *fifo) Pop() (byte, bool) {
	if q.size == 0 {
		return 0, false
	}
	v := q.buf[q.head]
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	return v, true
}

// tileFetcher pushes one 8 pixel tile row at a time into a fifo. The
// background and the window share it; they differ only in how the map
// address and fine Y are derived.
type tileFetcher struct {
	mem          VRAMReader
	fifo         *fifo
	tileData8000 bool // 8000 unsigned addressing, else 8800 signed
	fineY        byte
}

func newTileFetcher(mem VRAMReader, q *fifo, tileData8000 bool, fineY byte) *tileFetcher {
	return &tileFetcher{mem: mem, fifo: q, tileData8000: tileData8000, fineY: fineY & 7}
}

// tileRowAddr is the address of the low bitplane byte for tile n at the
// fetcher's fine Y.
func (f *tileFetcher) tileRowAddr(n byte) uint16 {
	if f.tileData8000 {
		return 0x8000 + uint16(n)*16 + uint16(f.fineY)*2
	}
	return uint16(int32(0x9000) + int32(int8(n))*16 + int32(f.fineY)*2)
}

// Fetch reads the tile number at mapAddr and pushes its row.
func (f *tileFetcher) Fetch(mapAddr uint16) {
	base := f.tileRowAddr(f.mem.Read(mapAddr))
	lo := f.mem.Read(base)
	hi := f.mem.Read(base + 1)
	for bit := 7; bit >= 0; bit-- {
		f.fifo.Push((hi>>bit)&1<<1 | (lo>>bit)&1)
	}
}
