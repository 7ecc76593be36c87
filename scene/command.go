// Package scene defines the immutable display list the renderer
// consumes and the Painter that builds it.
//
// A display list is a flat slice of commands with explicit z order and
// captured transform state. Once built it carries everything a frame
// needs; the renderer never reaches back into application state, which
// is what makes lists safe to build on one goroutine and render on
// another.
package scene

import "github.com/gogpu/lumen"

// Kind discriminates display list commands.
type Kind uint8

const (
	// KindRect fills an axis-aligned rectangle.
	KindRect Kind = iota
	// KindRoundedRect fills a rectangle with per-corner radii.
	KindRoundedRect
	// KindEllipse fills an axis-aligned ellipse.
	KindEllipse
	// KindPath fills or strokes an arbitrary path.
	KindPath
	// KindText draws a shaped text run.
	KindText
	// KindPushClip pushes a rectangular clip.
	KindPushClip
	// KindPopClip pops the innermost clip.
	KindPopClip
	// KindPushTransform pushes an affine transform.
	KindPushTransform
	// KindPopTransform pops the innermost transform.
	KindPopTransform
)

// String returns the command kind name for logs and test failures.
func (k Kind) String() string {
	switch k {
	case KindRect:
		return "rect"
	case KindRoundedRect:
		return "rounded-rect"
	case KindEllipse:
		return "ellipse"
	case KindPath:
		return "path"
	case KindText:
		return "text"
	case KindPushClip:
		return "push-clip"
	case KindPopClip:
		return "pop-clip"
	case KindPushTransform:
		return "push-transform"
	case KindPopTransform:
		return "pop-transform"
	}
	return "unknown"
}

// Shadow attaches a drop or inner shadow to a fill command.
type Shadow struct {
	OffsetX float32
	OffsetY float32
	Blur    float32
	Spread  float32
	Color   lumen.Color
	Inner   bool
}

// TextRun is the paint-side description of one run of text. The
// renderer resolves it through the text provider and glyph cache; the
// display list itself never holds glyphs.
type TextRun struct {
	// ID is a stable identity for the element producing this run. The
	// glyph cache keys on it, so two elements with equal text do not
	// share invalidation.
	ID uint64

	// Text is the UTF-8 run content.
	Text string

	// SizePx is the font size in device pixels.
	SizePx float32

	// Color is the premultiplied linear text color.
	Color lumen.Color

	// Origin is the position of the first glyph's baseline origin.
	Origin lumen.Point

	// MaxWidth wraps the run at this width in pixels. Zero disables
	// wrapping.
	MaxWidth float32

	// Dynamic marks runs under active edit. Dynamic runs bypass the
	// frozen-entry reuse path in the glyph cache.
	Dynamic bool

	// ProviderTag names the shaping provider configuration so cached
	// batches do not survive a provider change.
	ProviderTag string
}

// Command is one entry in a display list. Fields beyond Kind, Z and
// Transform are populated per kind; unused fields stay zero.
type Command struct {
	Kind Kind

	// Z is the sort key. Equal z preserves submission order.
	Z int32

	// Transform is the full transform captured at record time. Clip and
	// transform stack commands carry the engine's bookkeeping instead.
	Transform lumen.Affine

	// Rect is the geometry for rect, rounded-rect, ellipse (bounding
	// box) and push-clip commands.
	Rect lumen.Rect

	// Radii applies to rounded-rect commands.
	Radii lumen.RoundedRadii

	// Brush paints fill commands. Nil for non-fill commands.
	Brush lumen.Brush

	// StrokeWidth, when positive, strokes the shape outline instead of
	// filling it.
	StrokeWidth float32

	// Shadow, when non-nil, schedules a shadow for this fill in the
	// shadow pass.
	Shadow *Shadow

	// Path holds the outline for path commands.
	Path *Path

	// Text holds the run for text commands.
	Text *TextRun
}

// IsDraw reports whether the command produces pixels, as opposed to
// manipulating clip or transform state.
func (c *Command) IsDraw() bool {
	switch c.Kind {
	case KindRect, KindRoundedRect, KindEllipse, KindPath, KindText:
		return true
	}
	return false
}

// Bounds returns the device-space bounding box of a draw command after
// its transform. State commands return the zero rect.
func (c *Command) Bounds() lumen.Rect {
	var local lumen.Rect
	switch c.Kind {
	case KindRect, KindRoundedRect, KindEllipse:
		local = c.Rect
		if c.Shadow != nil && !c.Shadow.Inner {
			s := c.Shadow
			pad := s.Blur + maxf(s.Spread, 0)
			local = local.Expand(pad).Translate(minf(s.OffsetX, 0), minf(s.OffsetY, 0))
			local.W += absf(s.OffsetX)
			local.H += absf(s.OffsetY)
		}
		if c.StrokeWidth > 0 {
			local = local.Expand(c.StrokeWidth / 2)
		}
	case KindPath:
		if c.Path == nil {
			return lumen.Rect{}
		}
		local = c.Path.Bounds()
		if c.StrokeWidth > 0 {
			local = local.Expand(c.StrokeWidth / 2)
		}
	case KindText:
		if c.Text == nil {
			return lumen.Rect{}
		}
		// Conservative box; the renderer refines it after shaping.
		w := c.Text.MaxWidth
		if w <= 0 {
			w = float32(len(c.Text.Text)) * c.Text.SizePx
		}
		local = lumen.Rect{
			X: c.Text.Origin.X,
			Y: c.Text.Origin.Y - c.Text.SizePx,
			W: w,
			H: c.Text.SizePx * 1.5,
		}
	default:
		return lumen.Rect{}
	}
	if c.Transform.IsIdentity() {
		return local
	}
	return c.Transform.TransformRect(local)
}

// DisplayList is one frame's worth of commands plus the viewport they
// were laid out against. Lists are immutable after Finish.
type DisplayList struct {
	// Viewport is the device-pixel size the list was built for. A list
	// rendered at another size is blitted, not relaid.
	Viewport lumen.Point

	// Background fills the frame before any command runs.
	Background lumen.Color

	// Commands are sorted by z before rendering; see Sorted.
	Commands []Command
}

// IsEmpty reports whether the list draws nothing.
func (dl *DisplayList) IsEmpty() bool {
	for i := range dl.Commands {
		if dl.Commands[i].IsDraw() {
			return false
		}
	}
	return true
}

// OpaqueSolidOnly reports whether every draw command is an opaque
// solid-color fill with no shadow, stroke or transform. This is the
// precondition for the direct-to-surface fast path.
func (dl *DisplayList) OpaqueSolidOnly() bool {
	for i := range dl.Commands {
		c := &dl.Commands[i]
		if !c.IsDraw() {
			// Clips are fine, transforms defeat the fast path.
			if c.Kind == KindPushTransform || c.Kind == KindPopTransform {
				return false
			}
			continue
		}
		if c.Kind != KindRect || c.Shadow != nil || c.StrokeWidth > 0 {
			return false
		}
		if !c.Transform.IsIdentity() {
			return false
		}
		if c.Brush == nil || !c.Brush.Opaque() {
			return false
		}
		if _, ok := c.Brush.(lumen.SolidBrush); !ok {
			return false
		}
	}
	return dl.Background.IsOpaque()
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
