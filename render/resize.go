// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"sync"
	"time"
)

// Clock abstracts time for the resize tracker so tests can drive the
// debounce windows deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock Clock used in production.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// ResizeTracker debounces resize events.
//
// During an interactive resize the visual size follows every event so
// blitting stays current, but the expensive layout recompute is
// deferred: it fires once events have been quiet for the settle delay,
// or once the burst has lasted the max delay, whichever comes first.
// A width jump past the pixel threshold updates the layout width
// immediately without waiting for the windows.
//
// Observe is last-write-wins: only the newest size is ever laid out,
// intermediate sizes are skipped.
type ResizeTracker struct {
	mu sync.Mutex

	clock       Clock
	settleDelay time.Duration
	maxDelay    time.Duration
	pixelThresh int

	visualW, visualH int
	layoutW, layoutH int

	pending    bool
	firstEvent time.Time
	lastEvent  time.Time

	layouts uint64
}

// NewResizeTracker creates a tracker with the given debounce windows.
// A nil clock selects the system clock.
func NewResizeTracker(clock Clock, settle, max time.Duration, pixelThreshold int) *ResizeTracker {
	if clock == nil {
		clock = SystemClock{}
	}
	return &ResizeTracker{
		clock:       clock,
		settleDelay: settle,
		maxDelay:    max,
		pixelThresh: pixelThreshold,
	}
}

// Seed sets the initial visual and layout size without scheduling a
// layout recompute. Call once at construction so the pixel-threshold
// path has a layout width to compare against from the first burst.
func (t *ResizeTracker) Seed(width, height int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.visualW, t.visualH = width, height
	t.layoutW, t.layoutH = width, height
}

// Observe records a resize event. It returns true when the event forced
// an immediate layout-width update via the pixel threshold.
func (t *ResizeTracker) Observe(width, height int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	if !t.pending {
		t.firstEvent = now
	}
	t.lastEvent = now
	t.pending = true

	t.visualW = width
	t.visualH = height

	delta := width - t.layoutW
	if delta < 0 {
		delta = -delta
	}
	if t.pixelThresh > 0 && delta >= t.pixelThresh && t.layoutW != 0 {
		t.layoutW = width
		return true
	}
	return false
}

// Poll reports whether a layout recompute is due at the tracker's
// current time, and if so consumes the pending state and moves the
// layout size to the newest observed size.
func (t *ResizeTracker) Poll() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.pending {
		return false
	}
	now := t.clock.Now()
	settled := now.Sub(t.lastEvent) >= t.settleDelay
	capped := now.Sub(t.firstEvent) >= t.maxDelay
	if !settled && !capped {
		return false
	}

	t.pending = false
	t.layoutW = t.visualW
	t.layoutH = t.visualH
	t.layouts++
	return true
}

// VisualSize returns the size the surface is currently displayed at.
func (t *ResizeTracker) VisualSize() (w, h int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visualW, t.visualH
}

// LayoutSize returns the size layout last recomputed for. The renderer
// blits the layout-sized frame to the visual size while they differ.
func (t *ResizeTracker) LayoutSize() (w, h int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.layoutW, t.layoutH
}

// NeedsBlit reports whether visual and layout sizes differ, meaning the
// presented frame must be scaled rather than relaid.
func (t *ResizeTracker) NeedsBlit() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visualW != t.layoutW || t.visualH != t.layoutH
}

// Layouts returns how many layout recomputes the tracker has released.
func (t *ResizeTracker) Layouts() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.layouts
}
