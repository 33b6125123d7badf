// video_mda.go - Monochrome Display Adapter (MC6845 + 9-dot character clock)
//
// The 9-dot clock, 80x25 text geometry, and attribute byte layout
// (bit 7 blink, bits 6-4 background, bit 3 intensity, bits 2-0
// foreground) are fixed 5150/5151 hardware facts taken from spec §5;
// the MC6845-register bank and port dispatch structure is grounded on
// the teacher's registers.go memory-mapped-register-bank pattern,
// narrowed from that file's multi-chip register space to the MDA's
// single CRTC.
//
// (c) 2024-2026 the pcxt authors - GPLv3 or later

package main

const (
	mdaCols, mdaRows   = 80, 25
	mdaCharW, mdaCharH = 9, 14
	mdaVRAMSize        = 0x1000 // 4 KiB window at B0000
	mdaVRAMBase        = 0xB0000
)

// mdaFont is a placeholder 8x14 bitmap font; real BIOS character ROM
// images are supplied at run time via LoadROMImage and copied in here
// by the machine's power-on sequence rather than compiled in.
var mdaFont [256 * mdaCharH]byte

type MDA struct {
	vram [mdaVRAMSize]byte

	crtcIndex byte
	crtcReg   [18]byte

	cursorBlinkPhase int
}

func NewMDA() *MDA { return &MDA{} }

func (m *MDA) Name() string { return "MDA" }

func (m *MDA) Reset() {
	for i := range m.vram {
		m.vram[i] = 0
	}
	m.crtcIndex = 0
	for i := range m.crtcReg {
		m.crtcReg[i] = 0
	}
}

func (m *MDA) Tick(n int) { m.cursorBlinkPhase += n }

func (m *MDA) MMIORead(addr uint32) byte {
	off := addr - mdaVRAMBase
	if off >= mdaVRAMSize {
		return openBusByte
	}
	return m.vram[off]
}

func (m *MDA) MMIOWrite(addr uint32, v byte) {
	off := addr - mdaVRAMBase
	if off >= mdaVRAMSize {
		return
	}
	m.vram[off] = v
}

func (m *MDA) In(port uint16) byte {
	switch port {
	case 0x3B1, 0x3B3, 0x3B5, 0x3B7:
		return m.crtcReg[m.crtcIndex]
	case 0x3BA:
		return 0 // status register: horizontal/vertical retrace bits, not modeled
	}
	return openBusByte
}

func (m *MDA) Out(port uint16, v byte) {
	switch port {
	case 0x3B0, 0x3B2, 0x3B4, 0x3B6:
		m.crtcIndex = v & 0x1F
	case 0x3B1, 0x3B3, 0x3B5, 0x3B7:
		if int(m.crtcIndex) < len(m.crtcReg) {
			m.crtcReg[m.crtcIndex] = v
		}
	}
}

// Framebuffer rasterizes text VRAM into palette indices: 0 = off,
// 1 = normal, 2 = intensified, matching the MDA's 3-level monochrome
// output. Aperture only affects whether the border/unused VRAM pages
// are included; MDA has no overscan to speak of so Cropped==Accurate.
func (m *MDA) Framebuffer(aperture Aperture) ([]byte, int, int) {
	w, h := mdaCols*mdaCharW, mdaRows*mdaCharH
	buf := make([]byte, w*h)
	for row := 0; row < mdaRows; row++ {
		for col := 0; col < mdaCols; col++ {
			cellOff := (row*mdaCols + col) * 2
			ch := m.vram[cellOff]
			attr := m.vram[cellOff+1]
			fg, bg := mdaAttrColors(attr)
			textGlyph(buf, w, col, row, mdaFont[:], mdaCharH, ch, fg, bg)
		}
	}
	return buf, w, h
}

func mdaAttrColors(attr byte) (fg, bg byte) {
	bg = 0
	fg = byte(1)
	if attr&0x08 != 0 {
		fg = 2 // intensified
	}
	if attr&0x77 == 0 {
		fg = 0 // foreground==background special case: blank
	}
	return
}

func (m *MDA) Palette() [][3]byte {
	return [][3]byte{{0, 0, 0}, {0, 170, 0}, {85, 255, 85}}
}
