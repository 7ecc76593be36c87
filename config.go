package lumen

import "time"

// Resize and cache defaults. The two debounce windows follow the
// rendering heuristics this engine was tuned with: layout settles 200ms
// after the last resize event, but is never deferred more than 300ms
// past the first event of a burst.
const (
	// DefaultResizeSettleDelay is how long resize events must be quiet
	// before layout recomputes.
	DefaultResizeSettleDelay = 200 * time.Millisecond

	// DefaultResizeMaxDelay caps how long a continuous resize burst can
	// postpone layout.
	DefaultResizeMaxDelay = 300 * time.Millisecond

	// DefaultResizePixelThreshold is the minimum width delta, in pixels,
	// that updates the layout width before the debounce window elapses.
	DefaultResizePixelThreshold = 8

	// DefaultGlyphCacheCapacity bounds the glyph batch cache.
	DefaultGlyphCacheCapacity = 1024

	// DefaultMemoryBudgetMB bounds the pooled GPU resource memory.
	DefaultMemoryBudgetMB = 256
)

// Config carries every behavior switch the engine recognizes. All
// switches are explicit construction parameters, never process state, so
// multiple engines with different behavior can coexist and tests can
// vary them freely.
type Config struct {
	// DirectToSurface bypasses the offscreen compositor and renders
	// straight to the surface. Only valid for opaque solid-fill content;
	// the pass manager enforces that precondition per frame and falls
	// back to the offscreen path when it does not hold.
	DirectToSurface bool

	// PreserveContents skips the clear at the start of a frame, keeping
	// the previous frame's pixels in the intermediate target.
	PreserveContents bool

	// ResizeSettleDelay is the quiet period after the last resize event
	// before layout recomputes. Zero selects the default.
	ResizeSettleDelay time.Duration

	// ResizeMaxDelay caps how long a resize burst may defer layout.
	// Zero selects the default.
	ResizeMaxDelay time.Duration

	// ResizePixelThreshold is the width delta that forces a layout-width
	// update ahead of the debounce window. Zero selects the default.
	ResizePixelThreshold int

	// GlyphCacheCapacity bounds the glyph batch cache entry count.
	// Zero selects the default.
	GlyphCacheCapacity int

	// MemoryBudgetMB bounds pooled GPU memory in megabytes.
	// Zero selects the default.
	MemoryBudgetMB int

	// DisableDither turns off ordered dithering in the output encode.
	// Dithering is on by default; gradient-heavy content bands visibly
	// in 8-bit without it.
	DisableDither bool
}

// WithDefaults returns a copy of c with zero fields replaced by the
// package defaults.
func (c Config) WithDefaults() Config {
	if c.ResizeSettleDelay <= 0 {
		c.ResizeSettleDelay = DefaultResizeSettleDelay
	}
	if c.ResizeMaxDelay <= 0 {
		c.ResizeMaxDelay = DefaultResizeMaxDelay
	}
	if c.ResizePixelThreshold <= 0 {
		c.ResizePixelThreshold = DefaultResizePixelThreshold
	}
	if c.GlyphCacheCapacity <= 0 {
		c.GlyphCacheCapacity = DefaultGlyphCacheCapacity
	}
	if c.MemoryBudgetMB <= 0 {
		c.MemoryBudgetMB = DefaultMemoryBudgetMB
	}
	return c
}
