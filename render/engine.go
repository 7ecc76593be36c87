// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/lumen"
	"github.com/gogpu/lumen/scene"
	"github.com/gogpu/lumen/text"
)

var errEngineClosed = errors.New("render: engine closed")

// PresentFunc pushes an encoded frame to the host surface. A nil
// PresentFunc leaves frames offscreen, which is what tests and
// screenshot tooling want.
type PresentFunc func(frame *Surface) error

// EngineOptions carries the construction-time collaborators of an
// Engine. Width and Height are required; everything else has a
// software fallback.
type EngineOptions struct {
	// Width and Height set the initial surface size in pixels.
	Width, Height int

	// Provider shapes and rasterizes text runs. Nil disables text.
	Provider text.Provider

	// Device is the host GPU handle. Nil means software rendering.
	Device DeviceHandle

	// Factory creates pooled frame textures. Nil selects the software
	// factory.
	Factory TextureFactory

	// Present delivers finished frames to the host surface.
	Present PresentFunc

	// Clock drives resize debouncing. Nil selects the system clock.
	Clock Clock
}

// Engine ties the display list, allocator, pass manager, executor,
// glyph cache, and resize tracker into a frame loop. One Engine drives
// one surface; methods are safe for concurrent use.
type Engine struct {
	mu sync.Mutex

	cfg    lumen.Config
	device DeviceHandle

	alloc   *Allocator
	passes  *PassManager
	exec    *SoftwareExecutor
	glyphs  *text.Cache
	resize  *ResizeTracker
	present PresentFunc

	// Layout size: what the display list is built against. Lags the
	// visual size during a resize burst.
	layoutW, layoutH int

	// scratch is the CPU raster target used when the allocator hands
	// back textures without CPU-visible pixels, and on the direct path.
	scratch *LinearTarget

	// preserved holds the previous frame for PreserveContents.
	preserved *LinearTarget

	// surface is the encoded sRGB frame; blitSurf its stretched copy
	// presented while layout lags a resize.
	surface  *Surface
	blitSurf *Surface

	frames uint64
	closed bool
}

// NewEngine validates options and assembles an engine. Presenting to a
// surface requires a host device; that mismatch reports ErrNoDevice.
func NewEngine(cfg lumen.Config, opts EngineOptions) (*Engine, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("render: engine size %dx%d is not positive", opts.Width, opts.Height)
	}
	if opts.Present != nil && !HasDevice(opts.Device) {
		return nil, fmt.Errorf("%w: presenting requires a host device", lumen.ErrNoDevice)
	}

	cfg = cfg.WithDefaults()

	device := opts.Device
	if device == nil {
		device = NullDeviceHandle{}
	}
	factory := opts.Factory
	if factory == nil {
		factory = SoftwareTextureFactory
	}
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock{}
	}

	glyphs := text.NewCache(cfg.GlyphCacheCapacity)

	resize := NewResizeTracker(clock, cfg.ResizeSettleDelay, cfg.ResizeMaxDelay, cfg.ResizePixelThreshold)
	resize.Seed(opts.Width, opts.Height)

	return &Engine{
		cfg:     cfg,
		device:  device,
		alloc:   NewAllocator(factory, cfg.MemoryBudgetMB),
		passes:  NewPassManager(),
		exec:    NewSoftwareExecutor(opts.Provider, glyphs),
		glyphs:  glyphs,
		resize:  resize,
		present: opts.Present,
		layoutW: opts.Width,
		layoutH: opts.Height,
	}, nil
}

// Frame is the result of one RenderFrame call.
type Frame struct {
	// Surface holds the encoded pixels that were (or would be)
	// presented. During a resize blit this is the stretched copy.
	Surface *Surface

	// Stats summarizes the frame's pass execution.
	Stats FrameStats

	// Resized reports that a debounced layout fired before this frame.
	Resized bool

	// Blitted reports that the frame was stretched to cover a surface
	// larger than the current layout.
	Blitted bool
}

// Resize records a surface size change. Layout is debounced: it fires
// on a later RenderFrame once events settle, except that large width
// jumps update the layout width immediately.
func (e *Engine) Resize(width, height int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	if e.resize.Observe(width, height) {
		w, h := e.resize.LayoutSize()
		e.layoutW, e.layoutH = w, h
	}
}

// RenderFrame runs the full pass sequence for one display list and
// returns the encoded frame. A zero-area layout skips the frame
// entirely; Stats.Skipped reports it.
func (e *Engine) RenderFrame(list *scene.DisplayList) (*Frame, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, errEngineClosed
	}
	if list == nil {
		return nil, fmt.Errorf("%w: nil display list", lumen.ErrMalformedDisplayList)
	}

	resized := e.resize.Poll()
	if resized {
		e.layoutW, e.layoutH = e.resize.LayoutSize()
		// Stale pixels at the old size must not leak into the new one.
		e.preserved = nil
	}
	w, h := e.layoutW, e.layoutH

	skip, err := e.passes.BeginFrame(list, w, h, e.cfg.DirectToSurface)
	if err != nil {
		return nil, err
	}
	if skip {
		stats := e.passes.EndFrame()
		return &Frame{Stats: stats, Resized: resized}, nil
	}
	direct := e.passes.Direct()

	// The direct path renders without an intermediate allocation; the
	// offscreen path pulls a pooled frame target.
	var handle *Handle
	var target *LinearTarget
	if direct {
		target = e.ensureScratch(w, h)
	} else {
		handle, err = e.alloc.Acquire(frameTargetDescriptor(w, h))
		if err != nil {
			e.passes.EndFrame()
			e.alloc.EndFrame()
			return nil, err
		}
		if target = TargetOf(handle); target == nil {
			// GPU-backed allocation: rasterize on the CPU side and
			// keep the texture as the pooled upload slot.
			target = e.ensureScratch(w, h)
		}
	}

	if e.cfg.PreserveContents && e.preserved != nil &&
		e.preserved.Width() == w && e.preserved.Height() == h {
		CompositeSource(target, e.preserved)
	} else {
		target.Clear(list.Background)
	}

	if err := e.exec.RenderList(e.passes, target, list); err != nil {
		e.finishFrame(handle)
		return nil, err
	}

	if !direct {
		if err := e.passes.Advance(PassComposite); err != nil {
			e.finishFrame(handle)
			return nil, err
		}
	}

	if err := e.passes.Advance(PassOutput); err != nil {
		e.finishFrame(handle)
		return nil, err
	}
	e.ensureSurface(w, h)
	EncodeToSurface(e.surface, target, !e.cfg.DisableDither)

	if e.cfg.PreserveContents {
		e.savePreserved(target)
	}

	// While the visual size runs ahead of layout, stretch the frame so
	// the surface is never undersized.
	out := e.surface
	blitted := false
	if e.resize.NeedsBlit() {
		vw, vh := e.resize.VisualSize()
		if vw > 0 && vh > 0 && (vw != w || vh != h) {
			e.ensureBlitSurface(vw, vh)
			BlitNearest(e.blitSurf, e.surface, false)
			out = e.blitSurf
			blitted = true
		}
	}

	if err := e.passes.Advance(PassPresent); err != nil {
		e.finishFrame(handle)
		return nil, err
	}
	if e.present != nil {
		if err := e.present(out); err != nil {
			e.finishFrame(handle)
			return nil, fmt.Errorf("%w: %v", lumen.ErrSurfaceUnavailable, err)
		}
	}

	if handle != nil {
		e.alloc.Release(handle)
	}
	stats := e.passes.EndFrame()
	e.alloc.EndFrame()
	e.frames++

	return &Frame{Surface: out, Stats: stats, Resized: resized, Blitted: blitted}, nil
}

// finishFrame unwinds pass and allocator state after a mid-frame error.
func (e *Engine) finishFrame(handle *Handle) {
	if handle != nil {
		e.alloc.Release(handle)
	}
	e.passes.EndFrame()
	e.alloc.EndFrame()
}

// FocusGained marks a text element as being edited; its cached glyph
// batches are invalidated and stay uncached until FocusLost.
func (e *Engine) FocusGained(id uint64) { e.glyphs.FocusGained(id) }

// FocusLost returns a text element to normal caching.
func (e *Engine) FocusLost(id uint64) { e.glyphs.FocusLost(id) }

// InvalidateText drops cached glyph batches for one element.
func (e *Engine) InvalidateText(id uint64) { e.glyphs.Invalidate(id) }

// GlyphStats returns glyph cache hit/miss counters.
func (e *Engine) GlyphStats() text.Stats { return e.glyphs.Stats() }

// AllocatorStats returns texture pool counters.
func (e *Engine) AllocatorStats() AllocatorStats { return e.alloc.Stats() }

// Frames returns the number of completed (non-skipped) frames.
func (e *Engine) Frames() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}

// LayoutSize returns the size the next display list should target.
func (e *Engine) LayoutSize() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.layoutW, e.layoutH
}

// Close releases pooled textures and cached glyphs. The engine cannot
// be used afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.alloc.Shutdown()
	e.glyphs.Clear()
}

// frameTargetDescriptor is the pooled intermediate target for one frame.
func frameTargetDescriptor(w, h int) TextureDescriptor {
	return TextureDescriptor{
		Label:  "frame_target",
		Width:  uint32(w),
		Height: uint32(h),
		Format: gputypes.TextureFormatRGBA16Float,
		Usage:  TextureUsageTextureBinding | TextureUsageRenderAttachment,
	}
}

func (e *Engine) ensureScratch(w, h int) *LinearTarget {
	if e.scratch == nil || e.scratch.Width() != w || e.scratch.Height() != h {
		e.scratch = NewLinearTarget(w, h)
	}
	return e.scratch
}

func (e *Engine) ensureSurface(w, h int) {
	if e.surface == nil || e.surface.Width() != w || e.surface.Height() != h {
		e.surface = NewSurface(w, h)
	}
}

func (e *Engine) ensureBlitSurface(w, h int) {
	if e.blitSurf == nil || e.blitSurf.Width() != w || e.blitSurf.Height() != h {
		e.blitSurf = NewSurface(w, h)
	}
}

func (e *Engine) savePreserved(target *LinearTarget) {
	if e.preserved == nil || e.preserved.Width() != target.Width() || e.preserved.Height() != target.Height() {
		e.preserved = NewLinearTarget(target.Width(), target.Height())
	}
	copy(e.preserved.Pix, target.Pix)
}
