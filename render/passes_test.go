// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"testing"

	"github.com/gogpu/lumen"
	"github.com/gogpu/lumen/scene"
)

func solidList(t *testing.T) *scene.DisplayList {
	t.Helper()
	p := scene.NewPainter(100, 100)
	p.SetBackground(lumen.Color{R: 0.1, G: 0.1, B: 0.1, A: 1})
	p.FillRect(lumen.Rect{W: 50, H: 50}, lumen.Solid(lumen.RGB(1, 1, 1)))
	list, err := p.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	return list
}

func gradientList(t *testing.T) *scene.DisplayList {
	t.Helper()
	p := scene.NewPainter(100, 100)
	p.SetBackground(lumen.Color{R: 0.1, G: 0.1, B: 0.1, A: 1})
	g := lumen.NewLinearGradient(0, 0, 100, 0).
		AddStop(0, lumen.RGB(1, 1, 1)).
		AddStop(1, lumen.RGB(0, 0, 0))
	p.FillRect(lumen.Rect{W: 100, H: 100}, g)
	list, err := p.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	return list
}

func TestPassSequence(t *testing.T) {
	pm := NewPassManager()
	skip, err := pm.BeginFrame(solidList(t), 100, 100, false)
	if err != nil || skip {
		t.Fatalf("BeginFrame = skip %v, err %v", skip, err)
	}

	for _, pass := range []Pass{PassFill, PassGradient, PassShadow, PassText, PassComposite, PassOutput, PassPresent} {
		if err := pm.Advance(pass); err != nil {
			t.Fatalf("Advance(%s): %v", pass, err)
		}
	}
	stats := pm.EndFrame()
	if stats.Skipped || stats.Direct {
		t.Errorf("stats = %+v, want plain offscreen frame", stats)
	}
	if pm.Phase() != PassIdle {
		t.Error("EndFrame must return to idle")
	}
}

func TestPassSkippingAllowed(t *testing.T) {
	pm := NewPassManager()
	if _, err := pm.BeginFrame(solidList(t), 100, 100, false); err != nil {
		t.Fatal(err)
	}
	// A frame with only solid fills jumps fill -> composite.
	if err := pm.Advance(PassFill); err != nil {
		t.Fatal(err)
	}
	if err := pm.Advance(PassComposite); err != nil {
		t.Fatalf("skipping gradient/shadow/text: %v", err)
	}
	pm.EndFrame()
}

func TestPassOutOfOrderRejected(t *testing.T) {
	pm := NewPassManager()
	if _, err := pm.BeginFrame(solidList(t), 100, 100, false); err != nil {
		t.Fatal(err)
	}
	if err := pm.Advance(PassText); err != nil {
		t.Fatal(err)
	}
	if err := pm.Advance(PassFill); err == nil {
		t.Error("fill after text must be rejected")
	}
	if err := pm.Advance(PassText); err == nil {
		t.Error("repeating a pass must be rejected")
	}
	pm.EndFrame()
}

func TestPassOutsideFrameRejected(t *testing.T) {
	pm := NewPassManager()
	if err := pm.Advance(PassFill); err == nil {
		t.Error("pass outside a frame must be rejected")
	}
}

func TestZeroAreaSurfaceSkipsFrame(t *testing.T) {
	pm := NewPassManager()
	skip, err := pm.BeginFrame(solidList(t), 0, 600, false)
	if err != nil {
		t.Fatalf("BeginFrame: %v", err)
	}
	if !skip {
		t.Fatal("zero-width surface must skip the frame")
	}
	stats := pm.EndFrame()
	if !stats.Skipped {
		t.Error("stats must record the skip")
	}
}

func TestDirectPathGranted(t *testing.T) {
	pm := NewPassManager()
	skip, err := pm.BeginFrame(solidList(t), 100, 100, true)
	if err != nil || skip {
		t.Fatal(err)
	}
	if !pm.Direct() {
		t.Fatal("opaque solid list must be granted the direct path")
	}
	// Composite is illegal on the direct path.
	if err := pm.Advance(PassFill); err != nil {
		t.Fatal(err)
	}
	if err := pm.Advance(PassComposite); err == nil {
		t.Error("composite on the direct path must be rejected")
	}
	pm.EndFrame()
}

func TestDirectPathRefusedForGradient(t *testing.T) {
	pm := NewPassManager()
	if _, err := pm.BeginFrame(gradientList(t), 100, 100, true); err != nil {
		t.Fatal(err)
	}
	if pm.Direct() {
		t.Error("gradient content must fall back to the offscreen path")
	}
	pm.EndFrame()
}

func TestPresentRequiresOutputOffscreen(t *testing.T) {
	pm := NewPassManager()
	if _, err := pm.BeginFrame(solidList(t), 100, 100, false); err != nil {
		t.Fatal(err)
	}
	if err := pm.Advance(PassFill); err != nil {
		t.Fatal(err)
	}
	if err := pm.Advance(PassPresent); err == nil {
		t.Error("present without output must be rejected on the offscreen path")
	}
	pm.EndFrame()
}

func TestBeginFrameDuringFrameRejected(t *testing.T) {
	pm := NewPassManager()
	if _, err := pm.BeginFrame(solidList(t), 100, 100, false); err != nil {
		t.Fatal(err)
	}
	if _, err := pm.BeginFrame(solidList(t), 100, 100, false); err == nil {
		t.Error("nested BeginFrame must be rejected")
	}
	pm.EndFrame()
}
