package text

import "github.com/gogpu/lumen"

// MaskFormat describes the channel layout of a glyph mask.
type MaskFormat uint8

const (
	// MaskA8 is one coverage byte per pixel, the grayscale
	// anti-aliasing path.
	MaskA8 MaskFormat = iota
	// MaskRGB is three coverage bytes per pixel for subpixel
	// anti-aliasing on horizontally striped LCDs.
	MaskRGB
)

// BytesPerPixel returns the per-pixel size of the format.
func (f MaskFormat) BytesPerPixel() int {
	if f == MaskRGB {
		return 3
	}
	return 1
}

// GlyphMask is a rasterized glyph coverage bitmap. Pix is row-major
// with Format deciding the per-pixel layout.
type GlyphMask struct {
	W, H   int
	Format MaskFormat
	Pix    []uint8
}

// Coverage returns the grayscale coverage at (x, y) in [0, 1]. RGB
// masks average their stripes.
func (m *GlyphMask) Coverage(x, y int) float32 {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return 0
	}
	bpp := m.Format.BytesPerPixel()
	i := (y*m.W + x) * bpp
	if m.Format == MaskRGB {
		sum := int(m.Pix[i]) + int(m.Pix[i+1]) + int(m.Pix[i+2])
		return float32(sum) / (3 * 255)
	}
	return float32(m.Pix[i]) / 255
}

// PositionedGlyph is one glyph mask placed relative to the run origin.
type PositionedGlyph struct {
	Mask *GlyphMask

	// Offset is the top-left of the mask relative to the run origin on
	// the baseline.
	Offset lumen.Point

	// Color is the premultiplied linear glyph color. Per-glyph so color
	// emoji and selection tints batch together with plain text.
	Color lumen.Color
}

// GlyphBatch is the cacheable result of shaping and rasterizing one
// run: every glyph positioned and colored, ready to composite.
type GlyphBatch struct {
	Glyphs []PositionedGlyph

	// Bounds is the union of glyph mask boxes relative to the run
	// origin.
	Bounds lumen.Rect

	// Advance is the total pen advance of the run in pixels.
	Advance float32

	// Lines is the number of wrapped lines the run produced.
	Lines int
}

// IsEmpty reports whether the batch paints nothing.
func (b *GlyphBatch) IsEmpty() bool { return b == nil || len(b.Glyphs) == 0 }

// MemSize estimates the batch's memory footprint in bytes, used for
// cache budget accounting.
func (b *GlyphBatch) MemSize() int {
	if b == nil {
		return 0
	}
	size := len(b.Glyphs) * 32
	seen := make(map[*GlyphMask]bool, len(b.Glyphs))
	for i := range b.Glyphs {
		m := b.Glyphs[i].Mask
		if m == nil || seen[m] {
			continue
		}
		seen[m] = true
		size += len(m.Pix)
	}
	return size
}
