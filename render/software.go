// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"math"

	"github.com/gogpu/lumen"
	"github.com/gogpu/lumen/internal/blend"
	"github.com/gogpu/lumen/internal/filter"
	"github.com/gogpu/lumen/scene"
	"github.com/gogpu/lumen/text"
)

// SoftwareExecutor runs every render pass on the CPU. It is the
// reference implementation of the pipeline semantics: the GPU path must
// match it, and the correctness tests assert against it.
type SoftwareExecutor struct {
	provider text.Provider
	glyphs   *text.Cache
}

// NewSoftwareExecutor creates an executor. The provider may be nil when
// no display list will carry text.
func NewSoftwareExecutor(provider text.Provider, glyphs *text.Cache) *SoftwareExecutor {
	return &SoftwareExecutor{provider: provider, glyphs: glyphs}
}

// passOf classifies which pass renders a draw command.
func passOf(c *scene.Command) Pass {
	switch c.Kind {
	case scene.KindText:
		return PassText
	case scene.KindRect, scene.KindRoundedRect, scene.KindEllipse, scene.KindPath:
		if _, ok := c.Brush.(lumen.SolidBrush); ok {
			return PassFill
		}
		return PassGradient
	}
	return PassIdle
}

// drawItem is one draw command with its replayed clip state.
type drawItem struct {
	cmd  *scene.Command
	clip lumen.Rect
	pass Pass
}

// resolveDraws walks the sorted list and attaches the active clip to
// each draw. The clip is the intersection of every pushed clip rect's
// device-space bounding box with the target bounds.
func resolveDraws(list *scene.DisplayList, w, h int) []drawItem {
	full := lumen.Rect{W: float32(w), H: float32(h)}
	clipStack := []lumen.Rect{full}

	var items []drawItem
	for _, idx := range list.Sorted() {
		c := &list.Commands[idx]
		switch c.Kind {
		case scene.KindPushClip:
			r := c.Rect
			if !c.Transform.IsIdentity() {
				r = c.Transform.TransformRect(r)
			}
			top := clipStack[len(clipStack)-1]
			clipStack = append(clipStack, top.Intersect(r))
		case scene.KindPopClip:
			if len(clipStack) > 1 {
				clipStack = clipStack[:len(clipStack)-1]
			}
		case scene.KindPushTransform, scene.KindPopTransform:
			// Draw commands carry their composed transform already.
		default:
			items = append(items, drawItem{
				cmd:  c,
				clip: clipStack[len(clipStack)-1],
				pass: passOf(c),
			})
		}
	}
	return items
}

// RenderList runs the fill, gradient, shadow and text passes of a
// display list into the target, driving the pass manager through the
// sequence. The target must already hold the frame background.
func (e *SoftwareExecutor) RenderList(pm *PassManager, target *LinearTarget, list *scene.DisplayList) error {
	items := resolveDraws(list, target.Width(), target.Height())

	for _, pass := range []Pass{PassFill, PassGradient, PassShadow, PassText} {
		if err := pm.Advance(pass); err != nil {
			return err
		}
		n := 0
		for i := range items {
			it := &items[i]
			switch pass {
			case PassShadow:
				if it.cmd.Shadow == nil {
					continue
				}
				e.drawShadow(target, it)
				n++
			case PassText:
				if it.pass != PassText {
					continue
				}
				e.drawText(target, it)
				n++
			default:
				if it.pass != pass {
					continue
				}
				e.drawShape(target, it)
				n++
			}
		}
		pm.CountDraw(pass, n)
	}
	return nil
}

// drawShape rasterizes a fill or stroke by sampling the shape's signed
// distance at each covered pixel. Pixels map through the inverse
// transform into shape space, where the brush is also evaluated.
func (e *SoftwareExecutor) drawShape(target *LinearTarget, it *drawItem) {
	c := it.cmd
	inv, ok := invert(c.Transform)
	if !ok {
		return
	}
	scale := transformScale(c.Transform)

	if c.Kind == scene.KindPath {
		e.drawPath(target, it, inv, scale)
		return
	}

	bounds := c.Bounds().Intersect(it.clip)
	if bounds.IsEmpty() {
		return
	}

	x0, y0, x1, y1 := pixelSpan(bounds, target.Width(), target.Height())
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			dx := float32(x) + 0.5
			dy := float32(y) + 0.5
			lx, ly := inv.Apply(dx, dy)

			d := shapeDistance(c, lx, ly) * scale
			var cov float32
			if c.StrokeWidth > 0 {
				half := c.StrokeWidth * scale / 2
				cov = clampCov(0.5 + half - absf32(d))
			} else {
				cov = clampCov(0.5 - d)
			}
			if cov <= 0 {
				continue
			}
			src := c.Brush.ColorAt(lx, ly)
			target.Set(x, y, blend.OverCoverage(src, cov, target.At(x, y)))
		}
	}
}

// shapeDistance returns the signed distance from a point in shape space
// to the command's outline, negative inside.
func shapeDistance(c *scene.Command, x, y float32) float32 {
	switch c.Kind {
	case scene.KindRect:
		return rectDistance(x, y, c.Rect)
	case scene.KindRoundedRect:
		return roundedDistance(x, y, c.Rect, c.Radii)
	case scene.KindEllipse:
		return ellipseDistance(x, y, c.Rect)
	}
	return 1
}

func rectDistance(x, y float32, r lumen.Rect) float32 {
	cx := r.X + r.W/2
	cy := r.Y + r.H/2
	qx := absf32(x-cx) - r.W/2
	qy := absf32(y-cy) - r.H/2
	outside := float32(math.Sqrt(float64(posf(qx)*posf(qx) + posf(qy)*posf(qy))))
	inside := minf32(maxf32(qx, qy), 0)
	return outside + inside
}

func roundedDistance(x, y float32, r lumen.Rect, radii lumen.RoundedRadii) float32 {
	cx := r.X + r.W/2
	cy := r.Y + r.H/2
	var rad float32
	switch {
	case x < cx && y < cy:
		rad = radii.TL
	case x >= cx && y < cy:
		rad = radii.TR
	case x >= cx && y >= cy:
		rad = radii.BR
	default:
		rad = radii.BL
	}
	limit := minf32(r.W, r.H) / 2
	if rad > limit {
		rad = limit
	}
	qx := absf32(x-cx) - r.W/2 + rad
	qy := absf32(y-cy) - r.H/2 + rad
	outside := float32(math.Sqrt(float64(posf(qx)*posf(qx) + posf(qy)*posf(qy))))
	inside := minf32(maxf32(qx, qy), 0)
	return outside + inside - rad
}

// ellipseDistance approximates the ellipse signed distance by scaling
// the normalized radial distance back to pixels with the smaller
// radius. Exact for circles, slightly conservative for flat ellipses.
func ellipseDistance(x, y float32, r lumen.Rect) float32 {
	rx := r.W / 2
	ry := r.H / 2
	if rx <= 0 || ry <= 0 {
		return 1
	}
	nx := (x - (r.X + rx)) / rx
	ny := (y - (r.Y + ry)) / ry
	norm := float32(math.Sqrt(float64(nx*nx + ny*ny)))
	return (norm - 1) * minf32(rx, ry)
}

// drawPath fills with the non-zero winding rule, or strokes by capsule
// distance to the flattened segments. Coverage is binary for fills and
// distance-based for strokes.
func (e *SoftwareExecutor) drawPath(target *LinearTarget, it *drawItem, inv lumen.Affine, scale float32) {
	c := it.cmd
	var subpaths [][]lumen.Point
	c.Path.Flatten(0.25, func(pts []lumen.Point) {
		cp := make([]lumen.Point, len(pts))
		copy(cp, pts)
		subpaths = append(subpaths, cp)
	})
	if len(subpaths) == 0 {
		return
	}

	bounds := c.Bounds().Intersect(it.clip)
	if bounds.IsEmpty() {
		return
	}
	x0, y0, x1, y1 := pixelSpan(bounds, target.Width(), target.Height())

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			dx := float32(x) + 0.5
			dy := float32(y) + 0.5
			lx, ly := inv.Apply(dx, dy)

			var cov float32
			if c.StrokeWidth > 0 {
				d := pathSegmentDistance(subpaths, lx, ly) * scale
				half := c.StrokeWidth * scale / 2
				cov = clampCov(0.5 + half - d)
			} else if windingNonZero(subpaths, lx, ly) {
				cov = 1
			}
			if cov <= 0 {
				continue
			}
			src := c.Brush.ColorAt(lx, ly)
			target.Set(x, y, blend.OverCoverage(src, cov, target.At(x, y)))
		}
	}
}

// windingNonZero computes the winding number of the point against every
// subpath, closing open subpaths implicitly.
func windingNonZero(subpaths [][]lumen.Point, x, y float32) bool {
	winding := 0
	for _, pts := range subpaths {
		n := len(pts)
		for i := 0; i < n; i++ {
			a := pts[i]
			b := pts[(i+1)%n]
			if a.Y <= y {
				if b.Y > y && cross(a, b, x, y) > 0 {
					winding++
				}
			} else if b.Y <= y && cross(a, b, x, y) < 0 {
				winding--
			}
		}
	}
	return winding != 0
}

func cross(a, b lumen.Point, x, y float32) float32 {
	return (b.X-a.X)*(y-a.Y) - (x-a.X)*(b.Y-a.Y)
}

// pathSegmentDistance returns the distance from the point to the
// nearest flattened segment.
func pathSegmentDistance(subpaths [][]lumen.Point, x, y float32) float32 {
	best := float32(math.Inf(1))
	for _, pts := range subpaths {
		for i := 0; i+1 < len(pts); i++ {
			d := segmentDistance(pts[i], pts[i+1], x, y)
			if d < best {
				best = d
			}
		}
	}
	return best
}

func segmentDistance(a, b lumen.Point, x, y float32) float32 {
	abx := b.X - a.X
	aby := b.Y - a.Y
	apx := x - a.X
	apy := y - a.Y
	lenSq := abx*abx + aby*aby
	t := float32(0)
	if lenSq > 0 {
		t = (apx*abx + apy*aby) / lenSq
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
	}
	ex := apx - t*abx
	ey := apy - t*aby
	return float32(math.Sqrt(float64(ex*ex + ey*ey)))
}

// drawShadow renders a command's shadow mask tinted by the shadow
// color. Drop shadows are masked by the inverse of the occluder so the
// shadow never shows through its own opaque shape; inner shadows paint
// within the shape on top of the fill.
func (e *SoftwareExecutor) drawShadow(target *LinearTarget, it *drawItem) {
	c := it.cmd
	s := c.Shadow
	radii := c.Radii
	if c.Kind == scene.KindEllipse {
		radii = lumen.Uniform(minf32(c.Rect.W, c.Rect.H) / 2)
	}
	mask, origin := filter.ShadowMask(c.Rect, radii, filter.Shadow{
		OffsetX: s.OffsetX,
		OffsetY: s.OffsetY,
		Blur:    s.Blur,
		Spread:  s.Spread,
		Inner:   s.Inner,
	})

	inv, ok := invert(c.Transform)
	if !ok {
		return
	}

	bounds := c.Bounds().Intersect(it.clip)
	if bounds.IsEmpty() {
		return
	}
	x0, y0, x1, y1 := pixelSpan(bounds, target.Width(), target.Height())
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			lx, ly := inv.Apply(float32(x)+0.5, float32(y)+0.5)
			cov := mask.At(int(lx-origin.X), int(ly-origin.Y))
			if cov <= 0 {
				continue
			}
			if !s.Inner {
				// Occlude the shadow under the shape itself.
				occ := clampCov(0.5 - shapeDistance(c, lx, ly))
				cov *= 1 - occ
				if cov <= 0 {
					continue
				}
			}
			target.Set(x, y, blend.OverCoverage(s.Color, cov, target.At(x, y)))
		}
	}
}

// drawText resolves the run through the glyph cache and composites each
// positioned mask. A provider failure substitutes the placeholder box
// and the frame continues.
func (e *SoftwareExecutor) drawText(target *LinearTarget, it *drawItem) {
	c := it.cmd
	run := c.Text
	if run == nil || e.provider == nil {
		return
	}

	req := text.Request{
		Text:     run.Text,
		SizePx:   run.SizePx,
		MaxWidth: run.MaxWidth,
		DPI:      1,
		Color:    run.Color,
	}
	key := text.KeyFor(run.ID, req, e.provider.Tag(), run.Dynamic, run.Origin)

	batch, err := e.glyphs.Batch(e.provider, key, req)
	if err != nil {
		if errors.Is(err, lumen.ErrProviderFailure) {
			lumen.Logger().Warn("text provider failed, drawing placeholder",
				"id", run.ID, "err", err)
			batch = text.PlaceholderBatch(req)
		} else {
			return
		}
	}
	if batch.IsEmpty() {
		return
	}

	for gi := range batch.Glyphs {
		g := &batch.Glyphs[gi]
		e.compositeMask(target, it, g, run.Origin, c.Transform)
	}
}

func (e *SoftwareExecutor) compositeMask(target *LinearTarget, it *drawItem, g *text.PositionedGlyph, origin lumen.Point, xf lumen.Affine) {
	baseX := origin.X + g.Offset.X
	baseY := origin.Y + g.Offset.Y
	for my := 0; my < g.Mask.H; my++ {
		for mx := 0; mx < g.Mask.W; mx++ {
			cov := g.Mask.Coverage(mx, my)
			if cov <= 0 {
				continue
			}
			dx, dy := xf.Apply(baseX+float32(mx)+0.5, baseY+float32(my)+0.5)
			if !it.clip.Contains(dx, dy) {
				continue
			}
			x := int(dx)
			y := int(dy)
			target.Set(x, y, blend.OverCoverage(g.Color, cov, target.At(x, y)))
		}
	}
}

// pixelSpan clamps a device rect to the target's pixel grid.
func pixelSpan(r lumen.Rect, w, h int) (x0, y0, x1, y1 int) {
	x0 = int(math.Floor(float64(r.X)))
	y0 = int(math.Floor(float64(r.Y)))
	x1 = int(math.Ceil(float64(r.MaxX())))
	y1 = int(math.Ceil(float64(r.MaxY())))
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > w {
		x1 = w
	}
	if y1 > h {
		y1 = h
	}
	return
}

// invert returns the inverse affine, or false for a degenerate
// transform (zero scale), which draws nothing.
func invert(t lumen.Affine) (lumen.Affine, bool) {
	if t.IsIdentity() {
		return t, true
	}
	det := t[0]*t[3] - t[1]*t[2]
	if det == 0 {
		return lumen.Affine{}, false
	}
	id := 1 / det
	return lumen.Affine{
		t[3] * id,
		-t[1] * id,
		-t[2] * id,
		t[0] * id,
		(t[2]*t[5] - t[3]*t[4]) * id,
		(t[1]*t[4] - t[0]*t[5]) * id,
	}, true
}

// transformScale estimates the uniform scale factor of a transform,
// used to convert shape-space distances to device pixels.
func transformScale(t lumen.Affine) float32 {
	if t.IsIdentity() {
		return 1
	}
	det := absf32(t[0]*t[3] - t[1]*t[2])
	return float32(math.Sqrt(float64(det)))
}

func clampCov(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func absf32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func posf(v float32) float32 {
	if v < 0 {
		return 0
	}
	return v
}

func minf32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
