// Package blend implements Porter-Duff compositing on premultiplied
// linear colors.
//
// Unlike byte-based blenders, everything here operates on float32
// channels in linear light with alpha already multiplied in, which makes
// source-over a single multiply-add per channel and keeps the compositor
// exact to within float epsilon.
//
// References:
//   - Porter-Duff: "Compositing Digital Images" (1984)
//   - W3C Compositing and Blending Level 1: https://www.w3.org/TR/compositing-1/
package blend

import "github.com/gogpu/lumen"

// Mode is a Porter-Duff compositing operator.
type Mode uint8

const (
	// SourceOver is S + D*(1-Sa), the engine default. The compositor is
	// only considered correct if this law holds exactly; a result equal
	// to raw S regardless of D is a blend-state configuration defect.
	SourceOver Mode = iota
	// Clear yields transparent black.
	Clear
	// Source replaces the destination.
	Source
	// Destination keeps the destination.
	Destination
	// DestinationOut is D*(1-Sa), used to punch holes for inner shadows.
	DestinationOut
	// Plus is S + D without the alpha weighting, used for additive
	// accumulation of coverage.
	Plus
)

// Func composites a premultiplied source over a premultiplied
// destination and returns the premultiplied result.
type Func func(src, dst lumen.Color) lumen.Color

// ForMode returns the blend function for a mode. Unknown modes fall back
// to SourceOver.
func ForMode(mode Mode) Func {
	switch mode {
	case Clear:
		return func(lumen.Color, lumen.Color) lumen.Color { return lumen.Transparent }
	case Source:
		return func(src, _ lumen.Color) lumen.Color { return src }
	case Destination:
		return func(_, dst lumen.Color) lumen.Color { return dst }
	case DestinationOut:
		return destinationOut
	case Plus:
		return plus
	default:
		return Over
	}
}

// Over composites src over dst: S + D*(1-Sa), channel-wise on
// premultiplied operands.
func Over(src, dst lumen.Color) lumen.Color {
	inv := 1 - src.A
	return lumen.Color{
		R: src.R + dst.R*inv,
		G: src.G + dst.G*inv,
		B: src.B + dst.B*inv,
		A: src.A + dst.A*inv,
	}
}

// destinationOut keeps destination only where source is transparent.
func destinationOut(src, dst lumen.Color) lumen.Color {
	inv := 1 - src.A
	return lumen.Color{R: dst.R * inv, G: dst.G * inv, B: dst.B * inv, A: dst.A * inv}
}

// plus adds source and destination, clamped to valid premultiplied range.
func plus(src, dst lumen.Color) lumen.Color {
	c := lumen.Color{
		R: src.R + dst.R,
		G: src.G + dst.G,
		B: src.B + dst.B,
		A: src.A + dst.A,
	}
	if c.A > 1 {
		c.A = 1
	}
	return c
}

// OverCoverage composites src weighted by a coverage value in [0, 1]
// over dst. Scaling a premultiplied color by coverage keeps the
// source-over law intact, which is how anti-aliased edges and glyph
// masks blend.
func OverCoverage(src lumen.Color, coverage float32, dst lumen.Color) lumen.Color {
	if coverage <= 0 {
		return dst
	}
	if coverage >= 1 {
		return Over(src, dst)
	}
	return Over(src.Scale(coverage), dst)
}
