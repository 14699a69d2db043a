package device

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestImageUnpacksARGB(t *testing.T) {
	img := Image([]uint32{0xFF102030, 0x80FFFFFF}, 2, 1)
	if got := img.Pix[:4]; got[0] != 0x10 || got[1] != 0x20 || got[2] != 0x30 || got[3] != 0xFF {
		t.Fatalf("pixel 0 got % X want 10 20 30 FF", got)
	}
	if a := img.Pix[7]; a != 0x80 {
		t.Fatalf("pixel 1 alpha got %02X want 80", a)
	}
}

func TestFillRGBAShortDestination(t *testing.T) {
	dst := make([]byte, 4)
	FillRGBA(dst, []uint32{0xFF000001, 0xFF000002})
	if dst[2] != 0x01 {
		t.Fatalf("got %02X want 01", dst[2])
	}
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	px := make([]uint32, 4*3)
	px[5] = 0xFF00FF00
	if err := WritePNG(path, px, 4, 3); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Fatalf("bounds got %v", b)
	}
	_, g, _, _ := img.At(1, 1).RGBA()
	if g>>8 != 0xFF {
		t.Fatalf("pixel (1,1) green got %02X want FF", g>>8)
	}

	if err := WritePNG(path, px[:3], 4, 3); err == nil {
		t.Fatalf("short frame accepted")
	}
}
