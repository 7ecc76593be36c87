package filter

import (
	"math"
	"testing"

	"github.com/gogpu/lumen"
)

func TestGaussianKernelNormalized(t *testing.T) {
	for _, sigma := range []float32{0.5, 1, 2, 3.7, 10} {
		kernel := GaussianKernel(sigma)

		var sum float64
		for _, w := range kernel {
			sum += float64(w)
		}
		if math.Abs(sum-1) > 1e-4 {
			t.Errorf("sigma %g: kernel sum = %g, want 1 within 1e-4", sigma, sum)
		}
		if len(kernel) != 2*KernelRadius(sigma)+1 {
			t.Errorf("sigma %g: kernel length %d, want %d", sigma, len(kernel), 2*KernelRadius(sigma)+1)
		}
	}
}

func TestGaussianKernelSymmetric(t *testing.T) {
	kernel := GaussianKernel(2)
	n := len(kernel)
	for i := 0; i < n/2; i++ {
		if kernel[i] != kernel[n-1-i] {
			t.Errorf("kernel[%d] = %g != kernel[%d] = %g", i, kernel[i], n-1-i, kernel[n-1-i])
		}
	}
	// Center weight must dominate.
	for i, w := range kernel {
		if i != n/2 && w >= kernel[n/2] {
			t.Errorf("kernel[%d] = %g >= center %g", i, w, kernel[n/2])
		}
	}
}

func TestGaussianKernelZeroSigma(t *testing.T) {
	kernel := GaussianKernel(0)
	if len(kernel) != 1 || kernel[0] != 1 {
		t.Errorf("GaussianKernel(0) = %v, want [1]", kernel)
	}
}

func TestBlurPreservesEnergy(t *testing.T) {
	// A point of coverage in the middle of a large mask must spread but
	// keep its total energy, since the kernel sums to 1 and no weight
	// falls off the edge.
	m := NewMask(41, 41)
	m.Set(20, 20, 1)
	m.Blur(2)

	var sum float64
	for _, v := range m.Pix {
		sum += float64(v)
	}
	if math.Abs(sum-1) > 1e-3 {
		t.Errorf("total coverage after blur = %g, want 1", sum)
	}
	if center := m.At(20, 20); center >= 1 || center <= 0 {
		t.Errorf("center after blur = %g, want in (0, 1)", center)
	}
	if m.At(20, 20) <= m.At(22, 20) {
		t.Error("blur must peak at the impulse location")
	}
}

func TestBlurZeroSigmaIdentity(t *testing.T) {
	m := NewMask(5, 5)
	m.Set(2, 2, 0.75)
	m.Blur(0)
	if got := m.At(2, 2); got != 0.75 {
		t.Errorf("At(2,2) after zero blur = %g, want 0.75", got)
	}
}

func TestMaskInvert(t *testing.T) {
	m := NewMask(2, 1)
	m.Set(0, 0, 0.25)
	m.Invert()
	if got := m.At(0, 0); got != 0.75 {
		t.Errorf("inverted 0.25 = %g, want 0.75", got)
	}
	if got := m.At(1, 0); got != 1 {
		t.Errorf("inverted 0 = %g, want 1", got)
	}
}

func TestRasterizeRoundedRectCoverage(t *testing.T) {
	m := NewMask(40, 40)
	rect := lumen.Rect{X: 5, Y: 5, W: 30, H: 30}
	RasterizeRoundedRect(m, rect, lumen.Uniform(8))

	// Deep interior is fully covered.
	if got := m.At(20, 20); got != 1 {
		t.Errorf("interior coverage = %g, want 1", got)
	}
	// Far outside is empty.
	if got := m.At(1, 1); got != 0 {
		t.Errorf("exterior coverage = %g, want 0", got)
	}
	// The square corner region cut away by the radius is empty.
	if got := m.At(6, 6); got != 0 {
		t.Errorf("rounded-off corner coverage = %g, want 0", got)
	}
	// A sharp-cornered rect covers its corner pixel.
	m2 := NewMask(40, 40)
	RasterizeRoundedRect(m2, rect, lumen.RoundedRadii{})
	if got := m2.At(6, 6); got != 1 {
		t.Errorf("sharp corner coverage = %g, want 1", got)
	}
}

func TestRasterizeRoundedRectClampsRadii(t *testing.T) {
	// Radii above half the side must clamp instead of producing negative
	// coverage. A 10x10 rect with radius 50 degenerates to a circle.
	m := NewMask(20, 20)
	rect := lumen.Rect{X: 5, Y: 5, W: 10, H: 10}
	RasterizeRoundedRect(m, rect, lumen.Uniform(50))

	if got := m.At(10, 10); got != 1 {
		t.Errorf("center coverage = %g, want 1", got)
	}
	if got := m.At(5, 5); got != 0 {
		t.Errorf("corner coverage = %g, want 0 for fully rounded rect", got)
	}
}

func TestShadowMaskDrop(t *testing.T) {
	rect := lumen.Rect{X: 10, Y: 10, W: 20, H: 20}
	s := Shadow{OffsetX: 4, OffsetY: 4, Blur: 4}
	m, origin := ShadowMask(rect, lumen.RoundedRadii{}, s)

	// Mask extends past the offset rect by the kernel radius.
	pad := float32(s.Padding())
	if origin.X != 14-pad || origin.Y != 14-pad {
		t.Errorf("origin = %+v, want (%g, %g)", origin, 14-pad, 14-pad)
	}

	// Center of the offset rect in mask space is fully shadowed.
	cx := int(24 - origin.X)
	cy := int(24 - origin.Y)
	if got := m.At(cx, cy); got < 0.99 {
		t.Errorf("shadow center coverage = %g, want ~1", got)
	}
	// Mask corner is effectively clear.
	if got := m.At(0, 0); got > 0.01 {
		t.Errorf("shadow mask corner coverage = %g, want ~0", got)
	}
}

func TestShadowMaskInner(t *testing.T) {
	rect := lumen.Rect{X: 0, Y: 0, W: 40, H: 40}
	s := Shadow{Blur: 6, Inner: true}
	m, origin := ShadowMask(rect, lumen.RoundedRadii{}, s)

	center := m.At(int(20-origin.X), int(20-origin.Y))
	edge := m.At(int(1-origin.X), int(20-origin.Y))
	if center >= edge {
		t.Errorf("inner shadow: center %g should be lighter than edge %g", center, edge)
	}
	// Outside the shape the inner shadow must not render.
	if got := m.At(int(-3-origin.X), int(20-origin.Y)); got != 0 {
		t.Errorf("inner shadow outside shape = %g, want 0", got)
	}
}

func TestShadowSpreadGrowsOccluder(t *testing.T) {
	rect := lumen.Rect{X: 20, Y: 20, W: 10, H: 10}
	plain, originP := ShadowMask(rect, lumen.RoundedRadii{}, Shadow{})
	spread, originS := ShadowMask(rect, lumen.RoundedRadii{}, Shadow{Spread: 5})

	// A point just outside the plain occluder is covered once spread
	// grows it.
	px, py := float32(17), float32(25)
	if got := plain.At(int(px-originP.X), int(py-originP.Y)); got != 0 {
		t.Errorf("no-spread coverage at (17,25) = %g, want 0", got)
	}
	if got := spread.At(int(px-originS.X), int(py-originS.Y)); got != 1 {
		t.Errorf("spread coverage at (17,25) = %g, want 1", got)
	}
}
