package filter

import (
	"math"

	"github.com/gogpu/lumen"
)

// Shadow describes a drop or inner shadow for a rounded-rect occluder.
// Offsets and sizes are in device pixels.
type Shadow struct {
	OffsetX float32
	OffsetY float32
	Blur    float32 // blur radius, converted to sigma internally
	Spread  float32 // grows (positive) or shrinks (negative) the occluder
	Inner   bool
}

// Sigma returns the Gaussian standard deviation for the shadow's blur
// radius.
func (s Shadow) Sigma() float32 { return SigmaForRadius(s.Blur) }

// Padding returns how far the shadow can extend past the occluder
// bounds on each side. Callers size the shadow mask by the occluder
// expanded by this amount plus the offset.
func (s Shadow) Padding() int {
	pad := KernelRadius(s.Sigma())
	if s.Spread > 0 {
		pad += int(math.Ceil(float64(s.Spread)))
	}
	return pad
}

// ShadowMask rasterizes the shadow of a rounded rect and returns the
// coverage mask together with the mask's top-left position in device
// space. The caller multiplies the mask by the shadow color and
// composites it under (drop) or over (inner) the shape.
func ShadowMask(rect lumen.Rect, radii lumen.RoundedRadii, s Shadow) (*Mask, lumen.Point) {
	occluder := applySpread(rect, radii, s.Spread)
	pad := s.Padding()

	origin := lumen.Point{
		X: float32(math.Floor(float64(occluder.rect.X+s.OffsetX))) - float32(pad),
		Y: float32(math.Floor(float64(occluder.rect.Y+s.OffsetY))) - float32(pad),
	}
	w := int(math.Ceil(float64(occluder.rect.W))) + 2*pad + 1
	h := int(math.Ceil(float64(occluder.rect.H))) + 2*pad + 1

	m := NewMask(w, h)
	local := occluder.rect.Translate(s.OffsetX-origin.X, s.OffsetY-origin.Y)
	RasterizeRoundedRect(m, local, occluder.radii)

	if s.Inner {
		m.Invert()
	}
	m.Blur(s.Sigma())
	if s.Inner {
		// Inner shadows only show inside the original shape. Mask the
		// blurred inverse by the un-offset occluder coverage.
		clip := NewMask(w, h)
		clipRect := rect.Translate(-origin.X, -origin.Y)
		RasterizeRoundedRect(clip, clipRect, radii)
		for i := range m.Pix {
			m.Pix[i] *= clip.Pix[i]
		}
	}
	return m, origin
}

type spreadShape struct {
	rect  lumen.Rect
	radii lumen.RoundedRadii
}

// applySpread grows or shrinks the occluder. Corner radii scale with
// the spread so a spread rounded rect keeps its corner shape, clamped
// at zero.
func applySpread(rect lumen.Rect, radii lumen.RoundedRadii, spread float32) spreadShape {
	if spread == 0 {
		return spreadShape{rect, radii}
	}
	grown := rect.Expand(spread)
	if grown.W < 0 {
		grown.W = 0
	}
	if grown.H < 0 {
		grown.H = 0
	}
	adj := func(r float32) float32 {
		r += spread
		if r < 0 {
			return 0
		}
		return r
	}
	return spreadShape{grown, lumen.RoundedRadii{
		TL: adj(radii.TL), TR: adj(radii.TR),
		BR: adj(radii.BR), BL: adj(radii.BL),
	}}
}

// RasterizeRoundedRect writes the coverage of a rounded rect into the
// mask using its signed distance, giving one pixel of analytic
// anti-aliasing at the edge. Radii larger than half the side are
// clamped.
func RasterizeRoundedRect(m *Mask, rect lumen.Rect, radii lumen.RoundedRadii) {
	if rect.IsEmpty() {
		return
	}
	radii = clampRadii(rect, radii)

	x0 := int(math.Floor(float64(rect.X)))
	y0 := int(math.Floor(float64(rect.Y)))
	x1 := int(math.Ceil(float64(rect.MaxX())))
	y1 := int(math.Ceil(float64(rect.MaxY())))
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > m.W {
		x1 = m.W
	}
	if y1 > m.H {
		y1 = m.H
	}

	for y := y0; y < y1; y++ {
		py := float32(y) + 0.5
		for x := x0; x < x1; x++ {
			px := float32(x) + 0.5
			d := roundedRectSDF(px, py, rect, radii)
			cov := clampCoverage(0.5 - d)
			if cov > 0 {
				idx := y*m.W + x
				if cov > m.Pix[idx] {
					m.Pix[idx] = cov
				}
			}
		}
	}
}

// roundedRectSDF returns the signed distance from a point to the
// boundary of a rounded rect, negative inside. Each corner uses its own
// radius.
func roundedRectSDF(px, py float32, rect lumen.Rect, radii lumen.RoundedRadii) float32 {
	cx := rect.X + rect.W/2
	cy := rect.Y + rect.H/2
	hw := rect.W / 2
	hh := rect.H / 2

	// Select the radius of the quadrant the point falls in.
	var r float32
	switch {
	case px < cx && py < cy:
		r = radii.TL
	case px >= cx && py < cy:
		r = radii.TR
	case px >= cx && py >= cy:
		r = radii.BR
	default:
		r = radii.BL
	}

	qx := absf(px-cx) - hw + r
	qy := absf(py-cy) - hh + r

	outside := float32(math.Sqrt(float64(maxf0(qx)*maxf0(qx) + maxf0(qy)*maxf0(qy))))
	inside := minf32(maxf32(qx, qy), 0)
	return outside + inside - r
}

func clampRadii(rect lumen.Rect, radii lumen.RoundedRadii) lumen.RoundedRadii {
	limit := rect.W / 2
	if rect.H/2 < limit {
		limit = rect.H / 2
	}
	clamp := func(r float32) float32 {
		if r < 0 {
			return 0
		}
		if r > limit {
			return limit
		}
		return r
	}
	return lumen.RoundedRadii{
		TL: clamp(radii.TL), TR: clamp(radii.TR),
		BR: clamp(radii.BR), BL: clamp(radii.BL),
	}
}

func clampCoverage(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func maxf0(v float32) float32 {
	if v < 0 {
		return 0
	}
	return v
}

func maxf32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func minf32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
