// video.go - Shared video adapter interface and aperture table
//
// Grounded on spec §5's VideoCard contract (palette-index
// framebuffers rather than RGB, so the same interface serves MDA's
// one-bit attribute plane and EGA's 4-bit planar pixels without a
// lossy common denominator) and on the teacher's component_reset.go
// multi-chip reset dispatch pattern, narrowed to the three adapters
// the spec names instead of the teacher's VGA/ULA/ANTIC/TED set.
//
// (c) 2024-2026 the pcxt authors - GPLv3 or later

package main

// Aperture selects how much of a video card's address space a host
// front-end is allowed to read back for display, per spec §5.
type Aperture int

const (
	ApertureCropped Aperture = iota // visible raster only
	ApertureAccurate                 // visible raster + overscan border
	ApertureFull                     // entire VRAM, including off-screen pages
	ApertureDebug                    // ApertureFull plus register/attribute overlay
)

// apertureTable names each aperture for config/CLI parsing.
var apertureTable = map[string]Aperture{
	"cropped":  ApertureCropped,
	"accurate": ApertureAccurate,
	"full":     ApertureFull,
	"debug":    ApertureDebug,
}

// VideoCard is implemented by each adapter (MDA/CGA/EGA). It extends
// Device with the port/MMIO surface every card exposes plus a
// palette-index framebuffer snapshot for the host to render.
type VideoCard interface {
	Device
	PortDevice
	MMIODevice

	// Framebuffer returns the current frame as palette indices, sized
	// according to aperture, plus its width/height in pixels.
	Framebuffer(aperture Aperture) (pixels []byte, w, h int)

	// Palette returns the card's current palette as packed RGB triples,
	// indexed the same way Framebuffer's pixel bytes are.
	Palette() [][3]byte
}

// textGlyph renders one character cell's foreground/background pixels
// into dst at (cx,cy) using an 8x8 (MDA/CGA) or 8x14 (EGA) font; shared
// by all three adapters' text-mode rasterizer.
func textGlyph(dst []byte, w, cx, cy int, font []byte, glyphHeight int, ch byte, fg, bg byte) {
	glyph := font[int(ch)*glyphHeight : int(ch)*glyphHeight+glyphHeight]
	for row := 0; row < glyphHeight; row++ {
		bits := glyph[row]
		for col := 0; col < 8; col++ {
			px := fg
			if bits&(0x80>>uint(col)) == 0 {
				px = bg
			}
			idx := (cy*glyphHeight+row)*w + cx*8 + col
			if idx >= 0 && idx < len(dst) {
				dst[idx] = px
			}
		}
	}
}
