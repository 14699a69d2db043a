package cart

// ROMOnly is a 32 KiB cartridge with no bank controller and no RAM.
type ROMOnly struct {
	rom []byte
}

func NewROMOnly(rom []byte) *ROMOnly { return &ROMOnly{rom: rom} }

func (c *ROMOnly) Read(addr uint16) byte {
	if addr < 0x8000 && int(addr) < len(c.rom) {
		return c.rom[addr]
	}
	return 0xFF
}

func (c *ROMOnly) Write(addr uint16, value byte) {}

// MBC1 supports up to 2 MiB ROM and 32 KiB RAM.
type MBC1 struct {
	rom []byte
	extRAM

	bankLow  byte // 5 bits, 0 reads as 1
	bankHigh byte // 2 bits: RAM bank in mode 1, ROM bank bits 5-6 otherwise
	mode     byte
}

func NewMBC1(rom []byte, ramSize int) *MBC1 {
	return &MBC1{rom: rom, extRAM: newExtRAM(ramSize), bankLow: 1}
}

func (m *MBC1) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		bank := 0
		if m.mode == 1 {
			bank = int(m.bankHigh) << 5
		}
		return romByte(m.rom, bank, addr)
	case addr < 0x8000:
		return romByte(m.rom, int(m.bankHigh)<<5|int(m.bankLow), addr)
	case isExtRAM(addr):
		return m.read(m.ramBank(), addr)
	}
	return 0xFF
}

func (m *MBC1) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.enable(value)
	case addr < 0x4000:
		m.bankLow = value & 0x1F
		if m.bankLow == 0 {
			m.bankLow = 1
		}
	case addr < 0x6000:
		m.bankHigh = value & 0x03
	case addr < 0x8000:
		m.mode = value & 0x01
	case isExtRAM(addr):
		m.write(m.ramBank(), addr, value)
	}
}

func (m *MBC1) ramBank() int {
	if m.mode == 1 {
		return int(m.bankHigh)
	}
	return 0
}

// MBC3 supports up to 2 MiB ROM and 32 KiB RAM. The real-time clock is not
// emulated: selecting a clock register reads 0xFF.
type MBC3 struct {
	rom []byte
	extRAM

	romBank byte
	ramBank byte
}

func NewMBC3(rom []byte, ramSize int) *MBC3 {
	return &MBC3{rom: rom, extRAM: newExtRAM(ramSize), romBank: 1}
}

func (m *MBC3) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		return romByte(m.rom, 0, addr)
	case addr < 0x8000:
		return romByte(m.rom, int(m.romBank), addr)
	case isExtRAM(addr):
		if m.ramBank > 0x03 {
			return 0xFF
		}
		return m.read(int(m.ramBank), addr)
	}
	return 0xFF
}

func (m *MBC3) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.enable(value)
	case addr < 0x4000:
		m.romBank = value & 0x7F
		if m.romBank == 0 {
			m.romBank = 1
		}
	case addr < 0x6000:
		m.ramBank = value
	case addr < 0x8000:
		// clock latch
	case isExtRAM(addr):
		if m.ramBank <= 0x03 {
			m.write(int(m.ramBank), addr, value)
		}
	}
}

// MBC5 supports up to 8 MiB ROM and 128 KiB RAM. Unlike MBC1 and MBC3, bank 0
// may be mapped into the switchable area.
type MBC5 struct {
	rom []byte
	extRAM

	romBank uint16 // 9 bits
	ramBank byte   // 4 bits
}

func NewMBC5(rom []byte, ramSize int) *MBC5 {
	return &MBC5{rom: rom, extRAM: newExtRAM(ramSize), romBank: 1}
}

func (m *MBC5) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		return romByte(m.rom, 0, addr)
	case addr < 0x8000:
		return romByte(m.rom, int(m.romBank), addr)
	case isExtRAM(addr):
		return m.read(int(m.ramBank), addr)
	}
	return 0xFF
}

func (m *MBC5) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.enable(value)
	case addr < 0x3000:
		m.romBank = m.romBank&0x100 | uint16(value)
	case addr < 0x4000:
		m.romBank = m.romBank&0x0FF | uint16(value&0x01)<<8
	case addr < 0x6000:
		m.ramBank = value & 0x0F
	case isExtRAM(addr):
		m.write(int(m.ramBank), addr, value)
	}
}
