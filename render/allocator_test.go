// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/lumen"
)

func rgbaDesc(label string, w, h uint32) TextureDescriptor {
	return TextureDescriptor{
		Label:  label,
		Width:  w,
		Height: h,
		Format: gputypes.TextureFormatRGBA16Float,
		Usage:  TextureUsageTextureBinding | TextureUsageRenderAttachment,
	}
}

func TestAllocatorPoolsAcrossFrames(t *testing.T) {
	a := NewAllocator(SoftwareTextureFactory, 0)
	desc := rgbaDesc("intermediate", 800, 600)

	h1, err := a.Acquire(desc)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	a.Release(h1)
	a.EndFrame()

	h2, err := a.Acquire(desc)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	stats := a.Stats()
	if stats.Created != 1 {
		t.Errorf("Created = %d, want 1 (second acquisition pooled)", stats.Created)
	}
	if stats.PoolHits != 1 {
		t.Errorf("PoolHits = %d, want 1", stats.PoolHits)
	}
	if h2.Resource() != h1.resource {
		t.Error("pooled acquisition should return the same backing resource")
	}
}

func TestAllocatorNoReuseWithinFrame(t *testing.T) {
	a := NewAllocator(SoftwareTextureFactory, 0)
	desc := rgbaDesc("t", 64, 64)

	h1, _ := a.Acquire(desc)
	a.Release(h1)

	// No EndFrame yet: the released texture must not be recycled into
	// the same frame.
	h2, err := a.Acquire(desc)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if h2.Resource() == h1.resource {
		t.Error("released texture recycled into the same frame")
	}
	if got := a.Stats().Created; got != 2 {
		t.Errorf("Created = %d, want 2", got)
	}
}

func TestAllocatorDistinctDescriptorsDistinctPools(t *testing.T) {
	a := NewAllocator(SoftwareTextureFactory, 0)

	h1, _ := a.Acquire(rgbaDesc("a", 64, 64))
	a.Release(h1)
	a.EndFrame()

	// Different size must not hit the 64x64 pool.
	if _, err := a.Acquire(rgbaDesc("b", 128, 64)); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	stats := a.Stats()
	if stats.PoolHits != 0 {
		t.Errorf("PoolHits = %d, want 0 for a different descriptor", stats.PoolHits)
	}
	if stats.Created != 2 {
		t.Errorf("Created = %d, want 2", stats.Created)
	}
}

func TestAllocatorSteadyStateCreatesNothing(t *testing.T) {
	a := NewAllocator(SoftwareTextureFactory, 0)
	desc := rgbaDesc("frame", 256, 256)

	// Warm-up frame.
	h, _ := a.Acquire(desc)
	a.Release(h)
	a.EndFrame()

	for frame := 0; frame < 20; frame++ {
		h, err := a.Acquire(desc)
		if err != nil {
			t.Fatalf("frame %d: %v", frame, err)
		}
		a.Release(h)
		a.EndFrame()
	}

	stats := a.Stats()
	if stats.Created != 1 {
		t.Errorf("Created = %d after steady-state frames, want 1", stats.Created)
	}
	if stats.PoolHits != 20 {
		t.Errorf("PoolHits = %d, want 20", stats.PoolHits)
	}
}

func TestAllocatorBudgetExhaustion(t *testing.T) {
	// 1 MB budget; each 256x256 RGBA16F texture is 512 KiB.
	a := NewAllocator(SoftwareTextureFactory, 1)
	desc := rgbaDesc("big", 256, 256)

	h1, err := a.Acquire(desc)
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	if _, err := a.Acquire(desc); err != nil {
		t.Fatalf("second Acquire: %v", err)
	}

	_, err = a.Acquire(desc)
	if !errors.Is(err, lumen.ErrResourceExhausted) {
		t.Fatalf("third Acquire = %v, want ErrResourceExhausted", err)
	}

	// Frame-scoped failure: releasing frees budget for the next frame.
	a.Release(h1)
	a.EndFrame()
	// The pooled texture serves the retry without new memory.
	if _, err := a.Acquire(desc); err != nil {
		t.Fatalf("Acquire after release = %v, want pooled success", err)
	}
}

func TestAllocatorBudgetEvictsIdle(t *testing.T) {
	a := NewAllocator(SoftwareTextureFactory, 1)

	// Fill the budget with two pooled 512 KiB textures.
	h1, _ := a.Acquire(rgbaDesc("a", 256, 256))
	h2, _ := a.Acquire(rgbaDesc("b", 256, 256))
	a.Release(h1)
	a.Release(h2)
	a.EndFrame()

	// A different descriptor needs space; idle textures must be evicted
	// rather than failing.
	if _, err := a.Acquire(rgbaDesc("c", 512, 128)); err != nil {
		t.Fatalf("Acquire with evictable pool = %v, want success", err)
	}
	if got := a.Stats().Destroyed; got == 0 {
		t.Error("expected idle pool evictions under budget pressure")
	}
}

func TestAllocatorZeroArea(t *testing.T) {
	a := NewAllocator(SoftwareTextureFactory, 0)
	if _, err := a.Acquire(rgbaDesc("empty", 0, 100)); err == nil {
		t.Fatal("zero-width texture must be rejected")
	}
}

func TestAllocatorDoubleRelease(t *testing.T) {
	a := NewAllocator(SoftwareTextureFactory, 0)
	h, _ := a.Acquire(rgbaDesc("t", 32, 32))
	a.Release(h)
	a.Release(h)
	a.EndFrame()

	if got := a.Stats().Pooled; got != 1 {
		t.Errorf("Pooled = %d after double release, want 1", got)
	}
	if h.Resource() != nil {
		t.Error("released handle must not expose its resource")
	}
}

func TestAllocatorStaleHandleAfterRecycle(t *testing.T) {
	a := NewAllocator(SoftwareTextureFactory, 0)

	h1, _ := a.Acquire(rgbaDesc("t", 32, 32))
	a.Release(h1)
	a.EndFrame()

	// The next frame recycles the same texture under a new handle.
	h2, _ := a.Acquire(rgbaDesc("t", 32, 32))
	if h2.Resource() != h1.resource {
		t.Fatal("expected the pooled texture to be recycled")
	}
	if h1.Resource() != nil {
		t.Error("stale handle must read nil, not the recycled texture")
	}
	if h1.Generation() == h2.Generation() {
		t.Errorf("generations must differ across frames, both = %d", h1.Generation())
	}
}

func TestAllocatorShutdown(t *testing.T) {
	a := NewAllocator(SoftwareTextureFactory, 0)
	h1, _ := a.Acquire(rgbaDesc("a", 32, 32))
	h2, _ := a.Acquire(rgbaDesc("b", 64, 64))
	a.Release(h1)
	a.Release(h2)
	a.Shutdown()

	stats := a.Stats()
	if stats.Destroyed != 2 {
		t.Errorf("Destroyed = %d, want 2", stats.Destroyed)
	}
	if stats.Pooled != 0 {
		t.Errorf("Pooled = %d after shutdown, want 0", stats.Pooled)
	}
	if stats.Bytes != 0 {
		t.Errorf("Bytes = %d after shutdown, want 0", stats.Bytes)
	}
}

func TestTargetOf(t *testing.T) {
	a := NewAllocator(SoftwareTextureFactory, 0)
	h, _ := a.Acquire(rgbaDesc("t", 16, 8))

	target := TargetOf(h)
	if target == nil {
		t.Fatal("software handle must expose a LinearTarget")
	}
	if target.Width() != 16 || target.Height() != 8 {
		t.Errorf("target size = %dx%d, want 16x8", target.Width(), target.Height())
	}
	if TargetOf(nil) != nil {
		t.Error("TargetOf(nil) must be nil")
	}
}
