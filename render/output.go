// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "github.com/gogpu/lumen"

// bayer4 is the 4x4 ordered-dither matrix, thresholds in [0, 16).
var bayer4 = [4][4]float32{
	{0, 8, 2, 10},
	{12, 4, 14, 6},
	{3, 11, 1, 9},
	{15, 7, 13, 5},
}

// EncodeToSurface runs the output pass: un-premultiply, encode linear
// to sRGB and quantize to 8 bits, the one conversion point of the
// pipeline. With dithering enabled an ordered 4x4 threshold is folded
// into the quantization to break up gradient banding.
func EncodeToSurface(dst *Surface, src *LinearTarget, dither bool) {
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
			c := src.At(x, y)
			if !dither {
				r, g, b, a := c.ToSRGB8()
				dst.SetRGBA8(x, y, r, g, b, a)
				continue
			}

			// Threshold centered on zero, strength under one LSB.
			t := (bayer4[y&3][x&3] + 0.5) / 16
			lr, lg, lb, la := c.Unpremultiply()
			dst.SetRGBA8(x, y,
				quantizeDithered(lumen.LinearToSRGB(lr), t),
				quantizeDithered(lumen.LinearToSRGB(lg), t),
				quantizeDithered(lumen.LinearToSRGB(lb), t),
				quantizeDithered(la, t),
			)
		}
	}
}

// quantizeDithered rounds an encoded [0,1] component to 8 bits using a
// positional threshold instead of 0.5.
func quantizeDithered(v, threshold float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + threshold)
}
