package cart

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrROMTooSmall means the image ends before the header does.
	ErrROMTooSmall = errors.New("ROM too small to contain header")
	// ErrROMSizeMismatch is reported (not returned) when the image size
	// disagrees with the header's ROM size code.
	ErrROMSizeMismatch = errors.New("ROM size mismatch")
)

const headerEnd = 0x014F

var nintendoLogo = [48]byte{
	0xCE, 0xED, 0x66, 0x66, 0xCC, 0x0D, 0x00, 0x0B, 0x03, 0x73, 0x00, 0x83, 0x00, 0x0C, 0x00, 0x0D,
	0x00, 0x08, 0x11, 0x1F, 0x88, 0x89, 0x00, 0x0E, 0xDC, 0xCC, 0x6E, 0xE6, 0xDD, 0xDD, 0xD9, 0x99,
	0xBB, 0xBB, 0x67, 0x63, 0x6E, 0x0E, 0xEC, 0xCC, 0xDD, 0xDC, 0x99, 0x9F, 0xBB, 0xB9, 0x33, 0x3E,
}

// Header is the decoded cartridge header at 0100-014F.
type Header struct {
	Title          string
	CGBFlag        byte
	NewLicensee    string
	SGBFlag        byte
	CartType       byte
	ROMSizeCode    byte
	RAMSizeCode    byte
	Destination    byte
	OldLicensee    byte
	ROMVersion     byte
	HeaderChecksum byte
	GlobalChecksum uint16

	// LogoOK is false for images without the boot logo. Only the boot ROM
	// cares; skipping it runs such images fine.
	LogoOK bool

	ROMSizeBytes int
	ROMBanks     int
	RAMSizeBytes int
	CartTypeStr  string
}

func (h *Header) String() string {
	return fmt.Sprintf("%q %s", h.Title, h.CartTypeStr)
}

// HasBattery reports whether the cartridge type keeps RAM across power
// cycles.
func (h *Header) HasBattery() bool {
	switch h.CartType {
	case 0x03, 0x06, 0x09, 0x0D, 0x0F, 0x10, 0x13, 0x1B, 0x1E:
		return true
	}
	return false
}

func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) < headerEnd+1 {
		return nil, fmt.Errorf("%w (%d bytes)", ErrROMTooSmall, len(rom))
	}

	h := &Header{
		Title:          strings.TrimRight(string(rom[0x0134:0x0144]), "\x00"),
		CGBFlag:        rom[0x0143],
		NewLicensee:    string(rom[0x0144:0x0146]),
		SGBFlag:        rom[0x0146],
		CartType:       rom[0x0147],
		ROMSizeCode:    rom[0x0148],
		RAMSizeCode:    rom[0x0149],
		Destination:    rom[0x014A],
		OldLicensee:    rom[0x014B],
		ROMVersion:     rom[0x014C],
		HeaderChecksum: rom[0x014D],
		GlobalChecksum: binary.BigEndian.Uint16(rom[0x014E:0x0150]),
		LogoOK:         bytes.Equal(rom[0x0104:0x0134], nintendoLogo[:]),
	}
	// the CGB flag overlaps the last title byte
	if h.CGBFlag&0x80 != 0 {
		h.Title = strings.TrimRight(string(rom[0x0134:0x0143]), "\x00")
	}

	h.ROMSizeBytes, h.ROMBanks = decodeROMSize(h.ROMSizeCode)
	h.RAMSizeBytes = decodeRAMSize(h.RAMSizeCode)
	h.CartTypeStr = cartTypeString(h.CartType)
	return h, nil
}

// HeaderChecksumOK checks the byte at 014D against 0134-014C.
func HeaderChecksumOK(rom []byte) bool {
	if len(rom) < 0x014E {
		return false
	}
	var sum byte
	for addr := 0x0134; addr <= 0x014C; addr++ {
		sum = sum - rom[addr] - 1
	}
	return sum == rom[0x014D]
}

func decodeROMSize(code byte) (size, banks int) {
	switch code {
	case 0x52:
		return 1152 * 1024, 72
	case 0x53:
		return 1280 * 1024, 80
	case 0x54:
		return 1536 * 1024, 96
	}
	if code <= 0x08 {
		banks = 2 << code
		return banks * romBankSize, banks
	}
	return 0, 0
}

func decodeRAMSize(code byte) int {
	switch code {
	case 0x02:
		return 8 * 1024
	case 0x03:
		return 32 * 1024
	case 0x04:
		return 128 * 1024
	case 0x05:
		return 64 * 1024
	}
	return 0
}

func cartTypeString(code byte) string {
	switch code {
	case 0x00:
		return "ROM ONLY"
	case 0x01, 0x02, 0x03:
		return "MBC1 (variants)"
	case 0x05, 0x06:
		return "MBC2 (variants)"
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return "MBC3 (variants)"
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return "MBC5 (variants)"
	}
	return "Other/unknown"
}
