// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/lumen"
	"github.com/gogpu/lumen/internal/blend"
)

// CompositeOver blends src over dst pixel by pixel with the
// premultiplied source-over law. Both targets must be the same size;
// mismatched sizes composite the overlapping region only.
func CompositeOver(dst, src *LinearTarget) {
	w := dst.Width()
	if src.Width() < w {
		w = src.Width()
	}
	h := dst.Height()
	if src.Height() < h {
		h = src.Height()
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Set(x, y, blend.Over(src.At(x, y), dst.At(x, y)))
		}
	}
}

// CompositeSource replaces dst's overlapping region with src, the
// non-preserving variant used when the frame fully covers the target.
func CompositeSource(dst, src *LinearTarget) {
	w := dst.Width()
	if src.Width() < w {
		w = src.Width()
	}
	h := dst.Height()
	if src.Height() < h {
		h = src.Height()
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Set(x, y, src.At(x, y))
		}
	}
}

// BlitNearest scales src onto dst with nearest-neighbor sampling.
// During an interactive resize the last laid-out frame is blitted to
// the new surface size; nearest sampling keeps the blit cheap and the
// stretch artifact disappears at the next layout.
//
// flipY samples src bottom-up, matching surfaces whose texture origin
// is the lower-left corner.
func BlitNearest(dst, src *Surface, flipY bool) {
	dw, dh := dst.Width(), dst.Height()
	sw, sh := src.Width(), src.Height()
	if dw == 0 || dh == 0 || sw == 0 || sh == 0 {
		return
	}

	for y := 0; y < dh; y++ {
		sy := y * sh / dh
		if flipY {
			sy = sh - 1 - sy
		}
		for x := 0; x < dw; x++ {
			sx := x * sw / dw
			r, g, b, a := src.RGBA8At(sx, sy)
			dst.SetRGBA8(x, y, r, g, b, a)
		}
	}
}

// FillSurface writes a single color to every surface pixel, encoding
// once. Used by the root background fast paths.
func FillSurface(dst *Surface, c lumen.Color) {
	r, g, b, a := c.ToSRGB8()
	for i := 0; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = r
		dst.Pix[i+1] = g
		dst.Pix[i+2] = b
		dst.Pix[i+3] = a
	}
}
