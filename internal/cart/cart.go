// Package cart loads cartridge images and implements their memory bank
// controllers.
package cart

import (
	"fmt"
	"os"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/logger"
)

// Cartridge is what the bus sees of a cartridge: ROM at 0000-7FFF and
// external RAM at A000-BFFF. Writes to the ROM range drive the bank
// controller.
type Cartridge interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
}

// BatteryBacked is implemented by cartridges whose external RAM can be
// persisted between sessions.
type BatteryBacked interface {
	SaveRAM() []byte
	LoadRAM(data []byte)
}

// New parses the header of rom and returns the matching cartridge. A bad
// header checksum or a size that disagrees with the header is logged but not
// fatal; plenty of test ROMs get both wrong.
func New(rom []byte) (Cartridge, *Header, error) {
	h, err := ParseHeader(rom)
	if err != nil {
		return nil, nil, err
	}
	if !HeaderChecksumOK(rom) {
		logger.Logf("cart", "header checksum mismatch (%q)", h.Title)
	}
	if h.ROMSizeBytes != 0 && h.ROMSizeBytes != len(rom) {
		logger.Logf("cart", "%v: header says %d bytes, image has %d", ErrROMSizeMismatch, h.ROMSizeBytes, len(rom))
	}
	logger.Logf("cart", "%q type=%02X (%s) rom=%dK ram=%dK", h.Title, h.CartType, h.CartTypeStr, len(rom)/1024, h.RAMSizeBytes/1024)

	switch h.CartType {
	case 0x00, 0x08, 0x09:
		return NewROMOnly(rom), h, nil
	case 0x01, 0x02, 0x03:
		return NewMBC1(rom, h.RAMSizeBytes), h, nil
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return NewMBC3(rom, h.RAMSizeBytes), h, nil
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return NewMBC5(rom, h.RAMSizeBytes), h, nil
	}
	logger.Logf("cart", "unsupported cartridge type %02X, mapping as ROM only", h.CartType)
	return NewROMOnly(rom), h, nil
}

// Load reads a cartridge image from disk.
func Load(path string) (Cartridge, *Header, error) {
	rom, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cart: %w", err)
	}
	c, h, err := New(rom)
	if err != nil {
		return nil, nil, fmt.Errorf("cart: %s: %w", path, err)
	}
	return c, h, nil
}
