package bus

const (
	oamSize        = 0xA0
	dmaCyclesPerOp = 4
)

// dma copies 160 bytes from XX00 into OAM, one byte every four T-cycles.
type dma struct {
	reg    byte
	active bool
	src    uint16
	index  int
	wait   int
}

func (d *dma) start(v byte) {
	d.reg = v
	d.active = true
	d.src = uint16(v) << 8
	d.index = 0
	d.wait = dmaCyclesPerOp
}

func (b *Bus) stepDMA() {
	d := &b.dma
	d.wait--
	if d.wait > 0 {
		return
	}
	d.wait = dmaCyclesPerOp
	b.ppu.WriteOAM(d.index, b.dmaRead(d.src+uint16(d.index)))
	d.index++
	if d.index == oamSize {
		d.active = false
	}
}

// dmaRead reads the source byte. Sources above DFFF map onto WRAM as on
// hardware.
func (b *Bus) dmaRead(addr uint16) byte {
	if addr >= 0xE000 {
		return b.wram[(addr-0xE000)&0x1FFF]
	}
	return b.Read(addr)
}
