package ppu

// Palette maps the four DMG shades, lightest first, to packed 0xAARRGGBB
// colours.
type Palette [4]uint32

var (
	Grey  = Palette{0xFFFFFFFF, 0xFFC0C0C0, 0xFF606060, 0xFF000000}
	Green = Palette{0xFFE0F8D0, 0xFF88C070, 0xFF346856, 0xFF081820}
)

var palettes = map[string]Palette{
	"grey":  Grey,
	"green": Green,
}

// LookupPalette returns a named palette.
func LookupPalette(name string) (Palette, bool) {
	p, ok := palettes[name]
	return p, ok
}

// shade maps colour index ci through a BGP/OBP register to a shade 0-3.
func shade(reg, ci byte) byte {
	return reg >> (ci * 2) & 0x03
}
