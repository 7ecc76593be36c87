// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/lumen"
)

// Target is a rendering destination.
//
// Intermediate targets hold premultiplied linear color; the presentable
// surface holds encoded sRGB bytes. The GPU path backs targets with
// wgpu textures, the software path with the types below.
type Target interface {
	// Width returns the target width in pixels.
	Width() int

	// Height returns the target height in pixels.
	Height() int

	// Format returns the pixel format of the target.
	Format() gputypes.TextureFormat
}

// LinearTarget is a CPU intermediate target: one premultiplied linear
// Color per pixel, row-major. It is the working buffer of every
// software pass.
type LinearTarget struct {
	w, h int

	// Pix is indexable as Pix[y*Width()+x].
	Pix []lumen.Color
}

// NewLinearTarget allocates a transparent intermediate target.
func NewLinearTarget(width, height int) *LinearTarget {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &LinearTarget{
		w:   width,
		h:   height,
		Pix: make([]lumen.Color, width*height),
	}
}

// Width implements Target.
func (t *LinearTarget) Width() int { return t.w }

// Height implements Target.
func (t *LinearTarget) Height() int { return t.h }

// Format implements Target. The CPU buffer mirrors the float16 linear
// texture the GPU path renders into.
func (t *LinearTarget) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA16Float
}

// At returns the pixel at (x, y), transparent outside the target.
func (t *LinearTarget) At(x, y int) lumen.Color {
	if x < 0 || y < 0 || x >= t.w || y >= t.h {
		return lumen.Transparent
	}
	return t.Pix[y*t.w+x]
}

// Set stores the pixel at (x, y). Out-of-bounds writes are dropped.
func (t *LinearTarget) Set(x, y int, c lumen.Color) {
	if x < 0 || y < 0 || x >= t.w || y >= t.h {
		return
	}
	t.Pix[y*t.w+x] = c
}

// Clear fills the whole target with c.
func (t *LinearTarget) Clear(c lumen.Color) {
	for i := range t.Pix {
		t.Pix[i] = c
	}
}

// Surface is a CPU presentable surface: 8-bit straight-alpha sRGB
// bytes, four per pixel, the layout swapchain textures map to.
type Surface struct {
	w, h int

	// Pix holds R, G, B, A bytes per pixel, row-major with no padding.
	Pix []uint8
}

// NewSurface allocates a zeroed presentable surface.
func NewSurface(width, height int) *Surface {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Surface{w: width, h: height, Pix: make([]uint8, width*height*4)}
}

// Width implements Target.
func (s *Surface) Width() int { return s.w }

// Height implements Target.
func (s *Surface) Height() int { return s.h }

// Format implements Target.
func (s *Surface) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8UnormSrgb
}

// Stride returns bytes per row.
func (s *Surface) Stride() int { return s.w * 4 }

// RGBA8At returns the encoded bytes at (x, y).
func (s *Surface) RGBA8At(x, y int) (r, g, b, a uint8) {
	if x < 0 || y < 0 || x >= s.w || y >= s.h {
		return 0, 0, 0, 0
	}
	i := (y*s.w + x) * 4
	return s.Pix[i], s.Pix[i+1], s.Pix[i+2], s.Pix[i+3]
}

// SetRGBA8 stores encoded bytes at (x, y).
func (s *Surface) SetRGBA8(x, y int, r, g, b, a uint8) {
	if x < 0 || y < 0 || x >= s.w || y >= s.h {
		return
	}
	i := (y*s.w + x) * 4
	s.Pix[i] = r
	s.Pix[i+1] = g
	s.Pix[i+2] = b
	s.Pix[i+3] = a
}

var (
	_ Target = (*LinearTarget)(nil)
	_ Target = (*Surface)(nil)
)
