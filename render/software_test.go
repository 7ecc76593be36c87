// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"math"
	"testing"

	"github.com/gogpu/lumen"
	"github.com/gogpu/lumen/scene"
	"github.com/gogpu/lumen/text"
)

const colorEps = 1e-3

func closeTo(a, b lumen.Color) bool {
	d := func(x, y float32) float32 {
		if x > y {
			return x - y
		}
		return y - x
	}
	return d(a.R, b.R) < colorEps && d(a.G, b.G) < colorEps &&
		d(a.B, b.B) < colorEps && d(a.A, b.A) < colorEps
}

// renderList runs the software passes over a fresh 100x100 target.
func renderList(t *testing.T, list *scene.DisplayList, exec *SoftwareExecutor) *LinearTarget {
	t.Helper()
	target := NewLinearTarget(100, 100)
	target.Clear(list.Background)

	pm := NewPassManager()
	skip, err := pm.BeginFrame(list, target.Width(), target.Height(), false)
	if err != nil || skip {
		t.Fatalf("BeginFrame = skip %v, err %v", skip, err)
	}
	if err := exec.RenderList(pm, target, list); err != nil {
		t.Fatalf("RenderList: %v", err)
	}
	pm.EndFrame()
	return target
}

func newExec() *SoftwareExecutor {
	return NewSoftwareExecutor(nil, text.NewCache(64))
}

func TestSolidFillCompositesOverBackground(t *testing.T) {
	dst := lumen.Color{R: 0.043, G: 0.043, B: 0.090, A: 1.0}
	src := lumen.Color{R: 0.102, G: 0.102, B: 0.102, A: 0.102}

	p := scene.NewPainter(100, 100)
	p.SetBackground(dst)
	p.FillRect(lumen.Rect{X: 10, Y: 10, W: 50, H: 50}, lumen.Solid(src))
	list, err := p.Finish()
	if err != nil {
		t.Fatal(err)
	}

	target := renderList(t, list, newExec())

	got := target.At(30, 30)
	want := lumen.Color{R: 0.1414, G: 0.1414, B: 0.1828, A: 1.0}
	if !closeTo(got, want) {
		t.Errorf("interior pixel = %+v, want source-over result %+v", got, want)
	}
	if closeTo(got, src) {
		t.Error("result equals raw source; destination must contribute")
	}
	// Outside the rect the background is untouched.
	if got := target.At(80, 80); !closeTo(got, dst) {
		t.Errorf("exterior pixel = %+v, want background %+v", got, dst)
	}
}

func TestLinearGradientMidpoint(t *testing.T) {
	// White to black across 100px in linear space: the center pixel is
	// physical mid-gray, not the darker sRGB midpoint.
	p := scene.NewPainter(100, 100)
	g := lumen.NewLinearGradient(0, 0, 100, 0).
		AddStop(0, lumen.RGB(1, 1, 1)).
		AddStop(1, lumen.RGB(0, 0, 0))
	p.FillRect(lumen.Rect{W: 100, H: 100}, g)
	list, err := p.Finish()
	if err != nil {
		t.Fatal(err)
	}

	target := renderList(t, list, newExec())
	got := target.At(50, 50)
	want := lumen.Color{R: 0.5, G: 0.5, B: 0.5, A: 1}
	d := float64(got.R) - 0.5
	if math.Abs(d) > 0.01 {
		t.Errorf("midpoint = %+v, want %+v within 1%%", got, want)
	}
}

func TestRoundedRectCornersClipped(t *testing.T) {
	p := scene.NewPainter(100, 100)
	p.SetBackground(lumen.RGB(0, 0, 0))
	p.FillRoundedRect(lumen.Rect{X: 20, Y: 20, W: 60, H: 60}, lumen.Uniform(15), lumen.Solid(lumen.RGB(1, 1, 1)))
	list, err := p.Finish()
	if err != nil {
		t.Fatal(err)
	}

	target := renderList(t, list, newExec())
	if got := target.At(50, 50); !closeTo(got, lumen.RGB(1, 1, 1)) {
		t.Errorf("center = %+v, want filled", got)
	}
	// The sharp corner pixel is outside the rounded outline.
	if got := target.At(21, 21); got.R > 0.1 {
		t.Errorf("corner = %+v, want rounded away", got)
	}
}

func TestEllipseFill(t *testing.T) {
	p := scene.NewPainter(100, 100)
	p.SetBackground(lumen.RGB(0, 0, 0))
	p.FillEllipse(lumen.Rect{X: 10, Y: 30, W: 80, H: 40}, lumen.Solid(lumen.RGB(1, 0, 0)))
	list, err := p.Finish()
	if err != nil {
		t.Fatal(err)
	}

	target := renderList(t, list, newExec())
	if got := target.At(50, 50); got.R < 0.9 {
		t.Errorf("ellipse center = %+v, want red", got)
	}
	// Bounding box corner is outside the ellipse.
	if got := target.At(12, 32); got.R > 0.1 {
		t.Errorf("bounding box corner = %+v, want background", got)
	}
}

func TestPathFillNonZero(t *testing.T) {
	p := scene.NewPainter(100, 100)
	p.SetBackground(lumen.RGB(0, 0, 0))
	tri := scene.NewPath().MoveTo(50, 10).LineTo(90, 90).LineTo(10, 90).Close()
	p.FillPath(tri, lumen.Solid(lumen.RGB(0, 1, 0)))
	list, err := p.Finish()
	if err != nil {
		t.Fatal(err)
	}

	target := renderList(t, list, newExec())
	if got := target.At(50, 60); got.G < 0.9 {
		t.Errorf("triangle interior = %+v, want green", got)
	}
	if got := target.At(15, 20); got.G > 0.1 {
		t.Errorf("outside triangle = %+v, want background", got)
	}
}

func TestStrokeRect(t *testing.T) {
	p := scene.NewPainter(100, 100)
	p.SetBackground(lumen.RGB(0, 0, 0))
	p.StrokeRect(lumen.Rect{X: 20, Y: 20, W: 60, H: 60}, lumen.Solid(lumen.RGB(1, 1, 1)), 4)
	list, err := p.Finish()
	if err != nil {
		t.Fatal(err)
	}

	target := renderList(t, list, newExec())
	// On the outline.
	if got := target.At(50, 20); got.R < 0.9 {
		t.Errorf("on stroke = %+v, want white", got)
	}
	// Deep interior stays background.
	if got := target.At(50, 50); got.R > 0.1 {
		t.Errorf("stroke interior = %+v, want hollow", got)
	}
}

func TestClipRestrictsDrawing(t *testing.T) {
	p := scene.NewPainter(100, 100)
	p.SetBackground(lumen.RGB(0, 0, 0))
	p.PushClip(lumen.Rect{X: 0, Y: 0, W: 40, H: 100})
	p.FillRect(lumen.Rect{W: 100, H: 100}, lumen.Solid(lumen.RGB(1, 1, 1)))
	p.PopClip()
	list, err := p.Finish()
	if err != nil {
		t.Fatal(err)
	}

	target := renderList(t, list, newExec())
	if got := target.At(20, 50); got.R < 0.9 {
		t.Errorf("inside clip = %+v, want filled", got)
	}
	if got := target.At(60, 50); got.R > 0.1 {
		t.Errorf("outside clip = %+v, want background", got)
	}
}

func TestTransformedFill(t *testing.T) {
	p := scene.NewPainter(100, 100)
	p.SetBackground(lumen.RGB(0, 0, 0))
	p.Translate(30, 0)
	p.FillRect(lumen.Rect{X: 0, Y: 40, W: 20, H: 20}, lumen.Solid(lumen.RGB(1, 1, 1)))
	p.PopTransform()
	list, err := p.Finish()
	if err != nil {
		t.Fatal(err)
	}

	target := renderList(t, list, newExec())
	if got := target.At(40, 50); got.R < 0.9 {
		t.Errorf("translated rect = %+v, want filled at x+30", got)
	}
	if got := target.At(10, 50); got.R > 0.1 {
		t.Errorf("untranslated position = %+v, want background", got)
	}
}

func TestZOrderAcrossFills(t *testing.T) {
	p := scene.NewPainter(100, 100)
	p.SetBackground(lumen.RGB(0, 0, 0))
	// Red drawn last but forced beneath white via z.
	p.WithZ(10).FillRect(lumen.Rect{X: 20, Y: 20, W: 40, H: 40}, lumen.Solid(lumen.RGB(1, 1, 1)))
	p.WithZ(5).FillRect(lumen.Rect{X: 20, Y: 20, W: 40, H: 40}, lumen.Solid(lumen.RGB(1, 0, 0)))
	list, err := p.Finish()
	if err != nil {
		t.Fatal(err)
	}

	target := renderList(t, list, newExec())
	if got := target.At(30, 30); !closeTo(got, lumen.RGB(1, 1, 1)) {
		t.Errorf("overlap = %+v, want white on top by z", got)
	}
}

func TestShadowFallsOutsideShape(t *testing.T) {
	p := scene.NewPainter(100, 100)
	p.SetBackground(lumen.RGB(1, 1, 1))
	p.ShadowedRect(lumen.Rect{X: 30, Y: 30, W: 30, H: 30}, lumen.RoundedRadii{},
		lumen.Solid(lumen.RGB(0, 0, 1)),
		scene.Shadow{OffsetX: 6, OffsetY: 6, Blur: 4, Color: lumen.Color{A: 0.8}})
	list, err := p.Finish()
	if err != nil {
		t.Fatal(err)
	}

	target := renderList(t, list, newExec())
	// The fill is intact.
	if got := target.At(45, 45); got.B < 0.9 {
		t.Errorf("fill = %+v, want blue", got)
	}
	// Just outside the bottom-right edge the shadow darkens the white
	// background.
	shadowPx := target.At(63, 63)
	if shadowPx.R > 0.9 {
		t.Errorf("shadow region = %+v, want darkened", shadowPx)
	}
	// Far corner is untouched.
	if got := target.At(5, 5); !closeTo(got, lumen.RGB(1, 1, 1)) {
		t.Errorf("far corner = %+v, want white", got)
	}
}

// failingProvider always fails, exercising the placeholder path.
type failingProvider struct{}

func (failingProvider) Tag() string { return "failing" }
func (failingProvider) Metrics(sizePx float32) text.LineMetrics {
	return text.LineMetrics{Ascent: sizePx * 0.8, Descent: sizePx * 0.2}
}
func (failingProvider) ShapeAndRasterize(text.Request) (*text.GlyphBatch, error) {
	return nil, fmt.Errorf("no fonts available")
}

func TestTextProviderFailureDrawsPlaceholder(t *testing.T) {
	exec := NewSoftwareExecutor(failingProvider{}, text.NewCache(16))

	p := scene.NewPainter(100, 100)
	p.SetBackground(lumen.RGB(0, 0, 0))
	p.DrawText(scene.TextRun{
		ID:     1,
		Text:   "hello",
		SizePx: 16,
		Color:  lumen.RGB(1, 1, 1),
		Origin: lumen.Point{X: 10, Y: 50},
	})
	list, err := p.Finish()
	if err != nil {
		t.Fatal(err)
	}

	target := renderList(t, list, exec)
	// The placeholder box border sits at the run origin, one line up.
	found := false
	for y := 30; y < 55 && !found; y++ {
		for x := 10; x < 50; x++ {
			if target.At(x, y).R > 0.5 {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("provider failure must draw a placeholder box, not nothing")
	}
}

// countingProvider tracks rasterizations for cache coherency checks.
type countingProvider struct {
	calls int
}

func (p *countingProvider) Tag() string { return "counting" }
func (p *countingProvider) Metrics(sizePx float32) text.LineMetrics {
	return text.LineMetrics{Ascent: sizePx * 0.8, Descent: sizePx * 0.2}
}
func (p *countingProvider) ShapeAndRasterize(req text.Request) (*text.GlyphBatch, error) {
	p.calls++
	mask := &text.GlyphMask{W: 8, H: 8, Format: text.MaskA8, Pix: make([]uint8, 64)}
	for i := range mask.Pix {
		mask.Pix[i] = 0xFF
	}
	return &text.GlyphBatch{
		Glyphs: []text.PositionedGlyph{{Mask: mask, Offset: lumen.Point{Y: -8}, Color: req.Color}},
		Lines:  1,
	}, nil
}

func TestRepeatedFramesReuseGlyphBatches(t *testing.T) {
	provider := &countingProvider{}
	exec := NewSoftwareExecutor(provider, text.NewCache(64))

	build := func() *scene.DisplayList {
		p := scene.NewPainter(100, 100)
		p.DrawText(scene.TextRun{ID: 1, Text: "cached", SizePx: 14, Color: lumen.RGB(1, 1, 1), Origin: lumen.Point{X: 10, Y: 40}})
		list, err := p.Finish()
		if err != nil {
			t.Fatal(err)
		}
		return list
	}

	for i := 0; i < 5; i++ {
		renderList(t, build(), exec)
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d across 5 identical frames, want 1", provider.calls)
	}
}
