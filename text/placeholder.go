package text

import "github.com/gogpu/lumen"

// PlaceholderBatch builds the hollow-box batch drawn in place of a run
// whose provider failed. The box approximates the run's footprint from
// the request alone so layout does not collapse around missing text.
func PlaceholderBatch(req Request) *GlyphBatch {
	if req.Text == "" || req.SizePx <= 0 {
		return &GlyphBatch{}
	}

	// Rough advance estimate: half an em per rune.
	width := float32(len([]rune(req.Text))) * req.SizePx * 0.5
	if req.MaxWidth > 0 && width > req.MaxWidth {
		width = req.MaxWidth
	}
	height := req.SizePx

	w := int(width)
	h := int(height)
	if w < 2 {
		w = 2
	}
	if h < 2 {
		h = 2
	}

	mask := &GlyphMask{W: w, H: h, Format: MaskA8, Pix: make([]uint8, w*h)}
	border := h / 8
	if border < 1 {
		border = 1
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < border || x >= w-border || y < border || y >= h-border {
				mask.Pix[y*w+x] = 0xFF
			}
		}
	}

	return &GlyphBatch{
		Glyphs: []PositionedGlyph{{
			Mask:   mask,
			Offset: lumen.Point{Y: -height},
			Color:  req.Color,
		}},
		Bounds:  lumen.Rect{Y: -height, W: width, H: height},
		Advance: width,
		Lines:   1,
	}
}
