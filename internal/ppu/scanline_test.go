package ppu

import "testing"

func pixel(lo, hi byte, col int) byte {
	b := 7 - col
	return (hi>>b)&1<<1 | (lo>>b)&1
}

// sequentialMap fills the first map row with tiles 0..31, each tile row
// being lo=n, hi=^n.
func sequentialMap(mapBase uint16) mockVRAM {
	mem := mockVRAM{}
	for tile := 0; tile < 32; tile++ {
		mem[mapBase+uint16(tile)] = byte(tile)
		base := uint16(0x8000 + tile*16)
		mem[base] = byte(tile)
		mem[base+1] = ^byte(tile)
	}
	return mem
}

func TestRenderBGLineSCXOffset(t *testing.T) {
	mem := sequentialMap(0x9800)
	out := RenderBGLine(mem, 0x9800, true, 5, 0, 0)
	for i := 0; i < 3; i++ {
		if want := pixel(0, 0xFF, 5+i); out[i] != want {
			t.Fatalf("px %d got %d want %d", i, out[i], want)
		}
	}
	for i := 0; i < 8; i++ {
		if want := pixel(1, ^byte(1), i); out[3+i] != want {
			t.Fatalf("tile1 px %d got %d want %d", i, out[3+i], want)
		}
	}
}

func TestRenderBGLineWrapsHorizontally(t *testing.T) {
	mem := sequentialMap(0x9800)
	// scx=248 starts on tile 31 and wraps to tile 0 after 8 pixels.
	out := RenderBGLine(mem, 0x9800, true, 248, 0, 0)
	for i := 0; i < 8; i++ {
		if want := pixel(31, ^byte(31), i); out[i] != want {
			t.Fatalf("tile31 px %d got %d want %d", i, out[i], want)
		}
		if want := pixel(0, 0xFF, i); out[8+i] != want {
			t.Fatalf("tile0 px %d got %d want %d", i, out[8+i], want)
		}
	}
}

func TestRenderBGLineSCYSelectsRow(t *testing.T) {
	mem := mockVRAM{}
	// Map row 1 (bg y 8..15) uses tile 2, whose row 3 is solid colour 3.
	mem[0x9800+32] = 2
	mem[0x8000+2*16+3*2] = 0xFF
	mem[0x8000+2*16+3*2+1] = 0xFF
	out := RenderBGLine(mem, 0x9800, true, 0, 10, 1) // bg y = 11
	if out[0] != 3 || out[7] != 3 {
		t.Fatalf("got %d,%d want 3,3", out[0], out[7])
	}
	out = RenderBGLine(mem, 0x9800, true, 0, 10, 0) // bg y = 10, row 2
	if out[0] != 0 {
		t.Fatalf("row 2 got %d want 0", out[0])
	}
}

func TestRenderWindowLineStartsAtWinX(t *testing.T) {
	mem := mockVRAM{}
	mem[0x9C00] = 1
	mem[0x8010] = 0xFF
	out := RenderWindowLine(mem, 0x9C00, true, 20, 0)
	for x := 0; x < 20; x++ {
		if out[x] != 0 {
			t.Fatalf("px %d left of window got %d want 0", x, out[x])
		}
	}
	for x := 20; x < 28; x++ {
		if out[x] != 1 {
			t.Fatalf("px %d got %d want 1", x, out[x])
		}
	}
	if out[28] != 0 {
		t.Fatalf("px 28 got %d want 0 (tile 0)", out[28])
	}
}

func TestRenderWindowLineNegativeWinX(t *testing.T) {
	mem := mockVRAM{}
	mem[0x9800] = 1
	mem[0x8010] = 0x0F // right half of tile 1 opaque
	out := RenderWindowLine(mem, 0x9800, true, -4, 0)
	for x := 0; x < 4; x++ {
		if out[x] != 1 {
			t.Fatalf("px %d got %d want 1", x, out[x])
		}
	}
	if out[4] != 0 {
		t.Fatalf("px 4 got %d want 0", out[4])
	}
}

func TestRenderWindowLineOffscreen(t *testing.T) {
	mem := mockVRAM{0x8000: 0xFF}
	out := RenderWindowLine(mem, 0x9800, true, Width, 0)
	for x, v := range out {
		if v != 0 {
			t.Fatalf("px %d got %d want 0", x, v)
		}
	}
}
