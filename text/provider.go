// Package text turns text runs into positioned glyph masks.
//
// Shaping and rasterization sit behind the Provider interface so the
// engine can swap shaping backends without touching the renderer. The
// default provider shapes with go-text/typesetting's HarfBuzz port and
// rasterizes with golang.org/x/image.
package text

import "github.com/gogpu/lumen"

// Request describes one run of text to shape and rasterize. All sizes
// are device pixels.
type Request struct {
	// Text is the UTF-8 run content.
	Text string

	// SizePx is the font size in pixels.
	SizePx float32

	// MaxWidth wraps the run at this width. Zero disables wrapping.
	MaxWidth float32

	// DPI scales subpixel positioning decisions; 1.0 is 96dpi.
	DPI float32

	// Color tints every glyph in the produced batch.
	Color lumen.Color
}

// LineMetrics are the vertical metrics of a face at a given size, in
// pixels. Ascent is positive above the baseline, Descent positive
// below.
type LineMetrics struct {
	Ascent  float32
	Descent float32
	LineGap float32
}

// Height returns the baseline-to-baseline distance.
func (m LineMetrics) Height() float32 {
	return m.Ascent + m.Descent + m.LineGap
}

// Provider shapes and rasterizes text runs.
//
// Implementations must be safe for concurrent use; the renderer may
// resolve runs for several lists at once. A failed run returns an error
// wrapping lumen.ErrProviderFailure and the renderer substitutes a
// placeholder box rather than aborting the frame.
type Provider interface {
	// Tag identifies the provider configuration. Cached batches are
	// keyed on it so a provider swap never serves stale glyphs.
	Tag() string

	// ShapeAndRasterize produces the positioned glyph masks for a run.
	// Offsets in the batch are relative to the run origin on the first
	// baseline.
	ShapeAndRasterize(req Request) (*GlyphBatch, error)

	// Metrics returns the face's line metrics at a pixel size.
	Metrics(sizePx float32) LineMetrics
}
