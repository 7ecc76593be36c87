package scene

import (
	"fmt"
	"math"

	"github.com/gogpu/lumen"
)

// backgroundZ sorts a background fill beneath every default-z command.
const backgroundZ = math.MinInt32

// Painter records drawing operations into a display list.
//
// The painter tracks the current transform and clip stacks while
// recording, captures the combined transform into each draw command,
// and assigns z order. Finish validates stack balance and seals the
// list; a painter is single-use after Finish.
//
// Painter methods chain:
//
//	p := scene.NewPainter(800, 600)
//	p.SetBackground(bg).
//	    FillRect(lumen.Rect{X: 10, Y: 10, W: 100, H: 40}, lumen.Solid(accent)).
//	    PushClip(lumen.Rect{W: 400, H: 600})
//	p.DrawText(run)
//	p.PopClip()
//	list, err := p.Finish()
type Painter struct {
	list       *DisplayList
	transform  lumen.Affine
	xformStack []lumen.Affine
	clipDepth  int
	nextZ      int32
	explicitZ  bool
	pendingZ   int32
	finished   bool
	firstUnbal string
}

// NewPainter starts a display list for a viewport of the given size in
// device pixels.
func NewPainter(width, height float32) *Painter {
	return &Painter{
		list: &DisplayList{
			Viewport: lumen.Point{X: width, Y: height},
		},
		transform: lumen.Identity(),
	}
}

// SetBackground sets the frame background color.
func (p *Painter) SetBackground(c lumen.Color) *Painter {
	p.list.Background = c
	return p
}

// SetBackgroundBrush paints the frame background with a brush. A solid
// brush sets the clear color directly; gradient brushes record a
// full-viewport fill beneath every other command. Call it before any
// clip or transform push so the fill sorts under the rest of the frame.
func (p *Painter) SetBackgroundBrush(brush lumen.Brush) *Painter {
	if s, ok := brush.(lumen.SolidBrush); ok {
		return p.SetBackground(s.Color)
	}
	r := lumen.Rect{W: p.list.Viewport.X, H: p.list.Viewport.Y}
	return p.WithZ(backgroundZ).FillRect(r, brush)
}

// WithZ forces the next draw command to the given z instead of the
// monotonically increasing default.
func (p *Painter) WithZ(z int32) *Painter {
	p.explicitZ = true
	p.pendingZ = z
	return p
}

func (p *Painter) takeZ() int32 {
	if p.explicitZ {
		p.explicitZ = false
		return p.pendingZ
	}
	z := p.nextZ
	p.nextZ++
	return z
}

// FillRect fills a rectangle with the brush.
func (p *Painter) FillRect(r lumen.Rect, brush lumen.Brush) *Painter {
	return p.push(Command{Kind: KindRect, Rect: r, Brush: brush})
}

// StrokeRect strokes a rectangle outline.
func (p *Painter) StrokeRect(r lumen.Rect, brush lumen.Brush, width float32) *Painter {
	return p.push(Command{Kind: KindRect, Rect: r, Brush: brush, StrokeWidth: width})
}

// FillRoundedRect fills a rounded rectangle.
func (p *Painter) FillRoundedRect(r lumen.Rect, radii lumen.RoundedRadii, brush lumen.Brush) *Painter {
	return p.push(Command{Kind: KindRoundedRect, Rect: r, Radii: radii, Brush: brush})
}

// FillEllipse fills the ellipse inscribed in r.
func (p *Painter) FillEllipse(r lumen.Rect, brush lumen.Brush) *Painter {
	return p.push(Command{Kind: KindEllipse, Rect: r, Brush: brush})
}

// FillPath fills an arbitrary path with the non-zero winding rule.
func (p *Painter) FillPath(path *Path, brush lumen.Brush) *Painter {
	if path == nil || path.IsEmpty() {
		return p
	}
	return p.push(Command{Kind: KindPath, Path: path, Brush: brush})
}

// StrokePath strokes an arbitrary path.
func (p *Painter) StrokePath(path *Path, brush lumen.Brush, width float32) *Painter {
	if path == nil || path.IsEmpty() {
		return p
	}
	return p.push(Command{Kind: KindPath, Path: path, Brush: brush, StrokeWidth: width})
}

// ShadowedRect fills a rectangle, rounded when radii are non-zero, and
// schedules its shadow for the shadow pass.
func (p *Painter) ShadowedRect(r lumen.Rect, radii lumen.RoundedRadii, brush lumen.Brush, shadow Shadow) *Painter {
	s := shadow
	kind := KindRoundedRect
	if radii == (lumen.RoundedRadii{}) {
		kind = KindRect
	}
	return p.push(Command{Kind: kind, Rect: r, Radii: radii, Brush: brush, Shadow: &s})
}

// DrawText records a text run. Shaping and rasterization happen later
// in the text pass; the painter only captures the run description.
func (p *Painter) DrawText(run TextRun) *Painter {
	r := run
	return p.push(Command{Kind: KindText, Text: &r})
}

// PushClip intersects a rectangular clip, in the current transform's
// space, with the active clip region.
func (p *Painter) PushClip(r lumen.Rect) *Painter {
	p.clipDepth++
	return p.pushState(Command{Kind: KindPushClip, Rect: r, Transform: p.transform})
}

// PopClip removes the innermost clip. Unbalanced pops are recorded and
// reported by Finish.
func (p *Painter) PopClip() *Painter {
	p.clipDepth--
	if p.clipDepth < 0 && p.firstUnbal == "" {
		p.firstUnbal = "PopClip without matching PushClip"
	}
	return p.pushState(Command{Kind: KindPopClip})
}

// PushTransform composes t onto the current transform for subsequent
// commands.
func (p *Painter) PushTransform(t lumen.Affine) *Painter {
	p.xformStack = append(p.xformStack, p.transform)
	p.transform = p.transform.Concat(t)
	return p.pushState(Command{Kind: KindPushTransform, Transform: t})
}

// PopTransform restores the transform active before the matching
// PushTransform.
func (p *Painter) PopTransform() *Painter {
	if len(p.xformStack) == 0 {
		if p.firstUnbal == "" {
			p.firstUnbal = "PopTransform without matching PushTransform"
		}
	} else {
		p.transform = p.xformStack[len(p.xformStack)-1]
		p.xformStack = p.xformStack[:len(p.xformStack)-1]
	}
	return p.pushState(Command{Kind: KindPopTransform})
}

// Translate is shorthand for PushTransform with a translation.
func (p *Painter) Translate(dx, dy float32) *Painter {
	return p.PushTransform(lumen.Translate(dx, dy))
}

// Scale is shorthand for PushTransform with a scale.
func (p *Painter) Scale(sx, sy float32) *Painter {
	return p.PushTransform(lumen.Scale(sx, sy))
}

// push records a draw command with the captured transform and assigned z.
func (p *Painter) push(c Command) *Painter {
	if p.finished {
		return p
	}
	c.Transform = p.transform
	c.Z = p.takeZ()
	p.list.Commands = append(p.list.Commands, c)
	return p
}

// pushState records a clip/transform command without consuming a z.
func (p *Painter) pushState(c Command) *Painter {
	if p.finished {
		return p
	}
	p.list.Commands = append(p.list.Commands, c)
	return p
}

// Finish validates the recorded list and returns it. The list is
// rejected with ErrMalformedDisplayList if any clip or transform stack
// is unbalanced; no partial list is returned in that case.
func (p *Painter) Finish() (*DisplayList, error) {
	if p.finished {
		return nil, fmt.Errorf("%w: painter already finished", lumen.ErrMalformedDisplayList)
	}
	p.finished = true

	if p.firstUnbal != "" {
		return nil, fmt.Errorf("%w: %s", lumen.ErrMalformedDisplayList, p.firstUnbal)
	}
	if p.clipDepth != 0 {
		return nil, fmt.Errorf("%w: %d unclosed clip(s)", lumen.ErrMalformedDisplayList, p.clipDepth)
	}
	if len(p.xformStack) != 0 {
		return nil, fmt.Errorf("%w: %d unclosed transform(s)", lumen.ErrMalformedDisplayList, len(p.xformStack))
	}
	return p.list, nil
}
