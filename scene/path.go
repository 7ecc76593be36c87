package scene

import (
	"math"

	"github.com/gogpu/lumen"
)

// Verb identifies one path segment operation.
type Verb uint8

const (
	VerbMoveTo Verb = iota
	VerbLineTo
	VerbQuadTo
	VerbCubicTo
	VerbClose
)

// pointsFor returns how many control points the verb consumes.
func pointsFor(v Verb) int {
	switch v {
	case VerbMoveTo, VerbLineTo:
		return 1
	case VerbQuadTo:
		return 2
	case VerbCubicTo:
		return 3
	}
	return 0
}

// Path is an immutable outline built from move/line/curve segments.
// Verbs and points are stored in parallel flat slices to keep paths
// cheap to copy into display lists.
type Path struct {
	verbs  []Verb
	points []lumen.Point

	bounds      lumen.Rect
	boundsValid bool
}

// NewPath creates an empty path.
func NewPath() *Path {
	return &Path{}
}

// MoveTo starts a new subpath at (x, y).
func (p *Path) MoveTo(x, y float32) *Path {
	p.append(VerbMoveTo, lumen.Point{X: x, Y: y})
	return p
}

// LineTo adds a line segment to (x, y).
func (p *Path) LineTo(x, y float32) *Path {
	p.append(VerbLineTo, lumen.Point{X: x, Y: y})
	return p
}

// QuadTo adds a quadratic Bezier through control (cx, cy) to (x, y).
func (p *Path) QuadTo(cx, cy, x, y float32) *Path {
	p.append(VerbQuadTo, lumen.Point{X: cx, Y: cy}, lumen.Point{X: x, Y: y})
	return p
}

// CubicTo adds a cubic Bezier with controls (c1x, c1y) and (c2x, c2y)
// to (x, y).
func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float32) *Path {
	p.append(VerbCubicTo,
		lumen.Point{X: c1x, Y: c1y},
		lumen.Point{X: c2x, Y: c2y},
		lumen.Point{X: x, Y: y})
	return p
}

// Close closes the current subpath.
func (p *Path) Close() *Path {
	p.append(VerbClose)
	return p
}

func (p *Path) append(v Verb, pts ...lumen.Point) {
	p.verbs = append(p.verbs, v)
	p.points = append(p.points, pts...)
	p.boundsValid = false
}

// IsEmpty reports whether the path has no segments.
func (p *Path) IsEmpty() bool { return len(p.verbs) == 0 }

// Segments calls fn for each verb with its control points. The points
// slice is only valid for the duration of the call.
func (p *Path) Segments(fn func(v Verb, pts []lumen.Point)) {
	i := 0
	for _, v := range p.verbs {
		n := pointsFor(v)
		fn(v, p.points[i:i+n])
		i += n
	}
}

// Bounds returns the control-point bounding box. Curves are bounded by
// their control polygons, which over-covers slightly but never clips.
func (p *Path) Bounds() lumen.Rect {
	if p.boundsValid {
		return p.bounds
	}
	if len(p.points) == 0 {
		return lumen.Rect{}
	}
	minX, minY := p.points[0].X, p.points[0].Y
	maxX, maxY := minX, minY
	for _, pt := range p.points[1:] {
		minX = minf(minX, pt.X)
		minY = minf(minY, pt.Y)
		maxX = maxf(maxX, pt.X)
		maxY = maxf(maxY, pt.Y)
	}
	p.bounds = lumen.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
	p.boundsValid = true
	return p.bounds
}

// Flatten approximates the path with line segments, invoking fn with
// consecutive polyline points per subpath. The tolerance is the maximum
// distance between the curve and its approximation, in the path's own
// coordinate space.
func (p *Path) Flatten(tolerance float32, fn func(subpath []lumen.Point)) {
	if tolerance <= 0 {
		tolerance = 0.25
	}
	var current []lumen.Point
	var start lumen.Point
	flush := func() {
		if len(current) > 1 {
			fn(current)
		}
		current = nil
	}
	p.Segments(func(v Verb, pts []lumen.Point) {
		switch v {
		case VerbMoveTo:
			flush()
			start = pts[0]
			current = append(current, pts[0])
		case VerbLineTo:
			current = append(current, pts[0])
		case VerbQuadTo:
			if len(current) == 0 {
				current = append(current, lumen.Point{})
			}
			p0 := current[len(current)-1]
			current = appendQuad(current, p0, pts[0], pts[1], tolerance)
		case VerbCubicTo:
			if len(current) == 0 {
				current = append(current, lumen.Point{})
			}
			p0 := current[len(current)-1]
			current = appendCubic(current, p0, pts[0], pts[1], pts[2], tolerance)
		case VerbClose:
			if len(current) > 0 {
				current = append(current, start)
			}
			flush()
		}
	})
	flush()
}

// appendQuad subdivides a quadratic Bezier uniformly. The step count
// comes from the control polygon deviation against the tolerance.
func appendQuad(dst []lumen.Point, p0, c, p1 lumen.Point, tol float32) []lumen.Point {
	steps := curveSteps(deviationQuad(p0, c, p1), tol)
	for i := 1; i <= steps; i++ {
		t := float32(i) / float32(steps)
		mt := 1 - t
		x := mt*mt*p0.X + 2*mt*t*c.X + t*t*p1.X
		y := mt*mt*p0.Y + 2*mt*t*c.Y + t*t*p1.Y
		dst = append(dst, lumen.Point{X: x, Y: y})
	}
	return dst
}

func appendCubic(dst []lumen.Point, p0, c1, c2, p1 lumen.Point, tol float32) []lumen.Point {
	steps := curveSteps(deviationCubic(p0, c1, c2, p1), tol)
	for i := 1; i <= steps; i++ {
		t := float32(i) / float32(steps)
		mt := 1 - t
		a := mt * mt * mt
		b := 3 * mt * mt * t
		cc := 3 * mt * t * t
		d := t * t * t
		x := a*p0.X + b*c1.X + cc*c2.X + d*p1.X
		y := a*p0.Y + b*c1.Y + cc*c2.Y + d*p1.Y
		dst = append(dst, lumen.Point{X: x, Y: y})
	}
	return dst
}

// deviationQuad is the max distance from the control point to the
// chord, an upper bound on curve flatness error.
func deviationQuad(p0, c, p1 lumen.Point) float32 {
	dx := c.X - (p0.X+p1.X)/2
	dy := c.Y - (p0.Y+p1.Y)/2
	return absf(dx) + absf(dy)
}

func deviationCubic(p0, c1, c2, p1 lumen.Point) float32 {
	d1x := c1.X - (2*p0.X+p1.X)/3
	d1y := c1.Y - (2*p0.Y+p1.Y)/3
	d2x := c2.X - (p0.X+2*p1.X)/3
	d2y := c2.Y - (p0.Y+2*p1.Y)/3
	return maxf(absf(d1x)+absf(d1y), absf(d2x)+absf(d2y))
}

func curveSteps(deviation, tol float32) int {
	if deviation <= tol {
		return 1
	}
	// Error shrinks quadratically with subdivision.
	n := int(math.Sqrt(float64(deviation/tol))) + 1
	if n > 64 {
		n = 64
	}
	return n
}
