package main

import "testing"

func TestMDAFramebufferDimensions(t *testing.T) {
	m := NewMDA()
	buf, w, h := m.Framebuffer(ApertureCropped)
	if w != mdaCols*mdaCharW || h != mdaRows*mdaCharH {
		t.Fatalf("framebuffer size = %dx%d, want %dx%d", w, h, mdaCols*mdaCharW, mdaRows*mdaCharH)
	}
	if len(buf) != w*h {
		t.Fatalf("framebuffer buffer length = %d, want %d", len(buf), w*h)
	}
}

func TestCGASnowOnlyCountedInHighResActiveDisplay(t *testing.T) {
	g := NewCGA()
	g.modeReg = cgaModeText80 // 80-col text: cycle-clocked, snow-prone
	before := g.snowCounter
	g.MMIOWrite(cgaVRAMBase, 0x41)
	if g.activeDisplay() && g.snowCounter == before {
		t.Fatal("VRAM write during active display in 80-col mode should increment snowCounter")
	}
}

func TestCGACharacterClockModeWhenNot80Column(t *testing.T) {
	g := NewCGA()
	g.modeReg = 0 // 40-column
	if !g.InCharacterClockMode() {
		t.Fatal("40-column CGA text mode should be character-clocked")
	}
	g.modeReg = cgaModeText80
	if g.InCharacterClockMode() {
		t.Fatal("80-column CGA text mode should be cycle-clocked")
	}
}

func TestEGAPelPanningShiftsVisibleWindow(t *testing.T) {
	e := NewEGA()
	e.lineCompare = 0xFFFF // disable the split entirely
	e.pelPanning = 8        // shift a full byte
	e.vram[0][0] = 0xFF
	buf, w, _ := e.Framebuffer(ApertureFull)
	if buf[0*w+0] != 0 {
		t.Fatal("pel panning should shift the set bits out of the leftmost column")
	}
}

func TestApertureTableHasAllFour(t *testing.T) {
	for _, name := range []string{"cropped", "accurate", "full", "debug"} {
		if _, ok := apertureTable[name]; !ok {
			t.Fatalf("aperture table missing %q", name)
		}
	}
}
