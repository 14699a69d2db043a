// Package bootrom loads the 256 byte DMG boot program.
package bootrom

import (
	"errors"
	"fmt"
	"hash/crc32"
	"os"
)

// Size is the length of a DMG boot ROM image.
const Size = 0x100

// ErrBootROMSize is returned for images that are not exactly Size bytes.
var ErrBootROMSize = errors.New("bootrom: image must be 256 bytes")

// Known CRC32 checksums of dumped boot ROMs. Unknown images still load.
var known = map[uint32]string{
	0x59C8598E: "DMG",
	0xC2F5CC97: "DMG0",
	0xE6920754: "MGB",
}

// Parse validates data and returns a private copy of it.
func Parse(data []byte) ([]byte, error) {
	if len(data) != Size {
		return nil, fmt.Errorf("%w (got %d)", ErrBootROMSize, len(data))
	}
	out := make([]byte, Size)
	copy(out, data)
	return out, nil
}

// Load reads and validates a boot ROM from disk.
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bootrom: %w", err)
	}
	return Parse(data)
}

// Identify names a known boot ROM dump, or returns "unknown".
func Identify(data []byte) string {
	if name, ok := known[crc32.ChecksumIEEE(data)]; ok {
		return name
	}
	return "unknown"
}
