package device

import (
	"fmt"
	"image"
	"image/png"
	"os"
)

// Image converts a frame of packed 0xAARRGGBB pixels into an RGBA image.
func Image(pixels []uint32, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	FillRGBA(img.Pix, pixels)
	return img
}

// FillRGBA writes pixels into dst as RGBA bytes. dst must hold four bytes
// per pixel.
func FillRGBA(dst []byte, pixels []uint32) {
	for i, c := range pixels {
		o := i * 4
		if o+3 >= len(dst) {
			return
		}
		dst[o] = byte(c >> 16)
		dst[o+1] = byte(c >> 8)
		dst[o+2] = byte(c)
		dst[o+3] = byte(c >> 24)
	}
}

// WritePNG saves a frame as a PNG file.
func WritePNG(path string, pixels []uint32, w, h int) error {
	if len(pixels) != w*h {
		return fmt.Errorf("device: frame has %d pixels, want %d", len(pixels), w*h)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, Image(pixels, w, h)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
