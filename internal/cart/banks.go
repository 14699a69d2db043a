package cart

const (
	romBankSize = 0x4000
	ramBankSize = 0x2000
)

// romByte reads addr within the given 16 KiB bank. Bank numbers past the end
// of the image wrap, as the unused upper bank lines do on hardware.
func romByte(rom []byte, bank int, addr uint16) byte {
	n := len(rom) / romBankSize
	if n == 0 {
		if int(addr) < len(rom) {
			return rom[addr]
		}
		return 0xFF
	}
	off := (bank%n)*romBankSize + int(addr&(romBankSize-1))
	return rom[off]
}

// extRAM is banked external cartridge RAM. It reads 0xFF while disabled or
// absent.
type extRAM struct {
	data    []byte
	enabled bool
}

func newExtRAM(size int) extRAM {
	if size <= 0 {
		return extRAM{}
	}
	return extRAM{data: make([]byte, size)}
}

func (r *extRAM) offset(bank int, addr uint16) (int, bool) {
	if !r.enabled || len(r.data) == 0 {
		return 0, false
	}
	off := bank*ramBankSize + int(addr-0xA000)
	return off % len(r.data), true
}

func (r *extRAM) read(bank int, addr uint16) byte {
	off, ok := r.offset(bank, addr)
	if !ok {
		return 0xFF
	}
	return r.data[off]
}

func (r *extRAM) write(bank int, addr uint16, v byte) {
	if off, ok := r.offset(bank, addr); ok {
		r.data[off] = v
	}
}

// enable follows the common convention: 0x0A in the low nibble enables RAM,
// anything else disables it.
func (r *extRAM) enable(v byte) { r.enabled = v&0x0F == 0x0A }

func (r *extRAM) SaveRAM() []byte {
	if len(r.data) == 0 {
		return nil
	}
	out := make([]byte, len(r.data))
	copy(out, r.data)
	return out
}

func (r *extRAM) LoadRAM(data []byte) {
	copy(r.data, data)
}

func isExtRAM(addr uint16) bool { return addr >= 0xA000 && addr <= 0xBFFF }
