package blend

import (
	"testing"

	"github.com/gogpu/lumen"
)

const epsilon = 1e-4

func colorsClose(a, b lumen.Color) bool {
	d := func(x, y float32) float32 {
		if x > y {
			return x - y
		}
		return y - x
	}
	return d(a.R, b.R) < epsilon && d(a.G, b.G) < epsilon &&
		d(a.B, b.B) < epsilon && d(a.A, b.A) < epsilon
}

func TestOverLaw(t *testing.T) {
	// Semi-transparent gray over a dark opaque background. The result
	// must be strictly between the two operands; raw source passthrough
	// indicates broken blend state.
	dst := lumen.Color{R: 0.043, G: 0.043, B: 0.090, A: 1.0}
	src := lumen.Color{R: 0.102, G: 0.102, B: 0.102, A: 0.102}

	got := Over(src, dst)
	want := lumen.Color{
		R: src.R + dst.R*(1-src.A),
		G: src.G + dst.G*(1-src.A),
		B: src.B + dst.B*(1-src.A),
		A: 1.0,
	}
	if !colorsClose(got, want) {
		t.Errorf("Over = %+v, want %+v", got, want)
	}
	if colorsClose(got, src) {
		t.Error("Over returned raw source; destination must contribute")
	}
	if got.A != 1.0 {
		t.Errorf("Over alpha = %g, want 1 (opaque destination stays opaque)", got.A)
	}
}

func TestOverEdgeCases(t *testing.T) {
	dst := lumen.Color{R: 0.2, G: 0.4, B: 0.6, A: 1.0}

	tests := []struct {
		name string
		src  lumen.Color
		want lumen.Color
	}{
		{"transparent source keeps destination", lumen.Transparent, dst},
		{"opaque source replaces destination", lumen.Color{R: 1, A: 1}, lumen.Color{R: 1, A: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Over(tt.src, dst); !colorsClose(got, tt.want) {
				t.Errorf("Over(%+v, dst) = %+v, want %+v", tt.src, got, tt.want)
			}
		})
	}
}

func TestOverAssociativity(t *testing.T) {
	// Source-over on premultiplied colors is associative, which is what
	// lets the compositor flatten layers in any grouping.
	a := lumen.Color{R: 0.3, G: 0.1, B: 0.0, A: 0.5}
	b := lumen.Color{R: 0.0, G: 0.2, B: 0.1, A: 0.25}
	c := lumen.Color{R: 0.1, G: 0.1, B: 0.4, A: 1.0}

	left := Over(Over(a, b), c)
	right := Over(a, Over(b, c))
	if !colorsClose(left, right) {
		t.Errorf("(a over b) over c = %+v, a over (b over c) = %+v", left, right)
	}
}

func TestForMode(t *testing.T) {
	src := lumen.Color{R: 0.5, G: 0.25, B: 0.0, A: 0.5}
	dst := lumen.Color{R: 0.1, G: 0.2, B: 0.3, A: 1.0}

	tests := []struct {
		name string
		mode Mode
		want lumen.Color
	}{
		{"clear", Clear, lumen.Transparent},
		{"source", Source, src},
		{"destination", Destination, dst},
		{"source over", SourceOver, Over(src, dst)},
		{"destination out", DestinationOut, lumen.Color{R: 0.05, G: 0.1, B: 0.15, A: 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ForMode(tt.mode)(src, dst); !colorsClose(got, tt.want) {
				t.Errorf("ForMode(%d) = %+v, want %+v", tt.mode, got, tt.want)
			}
		})
	}
}

func TestPlusClampsAlpha(t *testing.T) {
	a := lumen.Color{R: 0.5, G: 0.5, B: 0.5, A: 0.8}
	b := lumen.Color{R: 0.3, G: 0.3, B: 0.3, A: 0.7}
	got := ForMode(Plus)(a, b)
	if got.A != 1 {
		t.Errorf("Plus alpha = %g, want clamped to 1", got.A)
	}
}

func TestOverCoverage(t *testing.T) {
	src := lumen.Color{R: 1, G: 1, B: 1, A: 1}
	dst := lumen.Color{A: 1}

	if got := OverCoverage(src, 0, dst); !colorsClose(got, dst) {
		t.Errorf("coverage 0 = %+v, want destination", got)
	}
	if got := OverCoverage(src, 1, dst); !colorsClose(got, src) {
		t.Errorf("coverage 1 = %+v, want source", got)
	}
	got := OverCoverage(src, 0.5, dst)
	want := lumen.Color{R: 0.5, G: 0.5, B: 0.5, A: 1}
	if !colorsClose(got, want) {
		t.Errorf("coverage 0.5 = %+v, want %+v", got, want)
	}
}
