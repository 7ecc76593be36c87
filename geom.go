package lumen

// Point is a 2D point or vector.
type Point struct {
	X, Y float32
}

// Rect is an axis-aligned rectangle given by origin and size.
type Rect struct {
	X, Y, W, H float32
}

// IsEmpty reports whether the rect has no area.
func (r Rect) IsEmpty() bool {
	return r.W <= 0 || r.H <= 0
}

// MaxX returns the right edge.
func (r Rect) MaxX() float32 { return r.X + r.W }

// MaxY returns the bottom edge.
func (r Rect) MaxY() float32 { return r.Y + r.H }

// Inset shrinks the rect by d on every side. A negative d expands it.
func (r Rect) Inset(d float32) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, W: r.W - 2*d, H: r.H - 2*d}
}

// Expand grows the rect by d on every side.
func (r Rect) Expand(d float32) Rect {
	return r.Inset(-d)
}

// Translate moves the rect by (dx, dy).
func (r Rect) Translate(dx, dy float32) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

// Intersect returns the intersection of two rects, or an empty rect if
// they do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	x0 := maxf(r.X, o.X)
	y0 := maxf(r.Y, o.Y)
	x1 := minf(r.MaxX(), o.MaxX())
	y1 := minf(r.MaxY(), o.MaxY())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Contains reports whether the point (x, y) is inside the rect.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x < r.MaxX() && y >= r.Y && y < r.MaxY()
}

// RoundedRadii holds the per-corner radii of a rounded rectangle, in
// clockwise order from top-left.
type RoundedRadii struct {
	TL, TR, BR, BL float32
}

// Uniform returns radii with the same value at every corner.
func Uniform(r float32) RoundedRadii {
	return RoundedRadii{TL: r, TR: r, BR: r, BL: r}
}

// RoundedRect is a rectangle with per-corner rounding.
type RoundedRect struct {
	Rect  Rect
	Radii RoundedRadii
}

// Affine is a 2D affine transform [a b c d e f] for the matrix
//
//	| a  c  e |
//	| b  d  f |
//	| 0  0  1 |
type Affine [6]float32

// Identity returns the identity transform.
func Identity() Affine {
	return Affine{1, 0, 0, 1, 0, 0}
}

// Translate returns a translation transform.
func Translate(tx, ty float32) Affine {
	return Affine{1, 0, 0, 1, tx, ty}
}

// Scale returns a scale transform.
func Scale(sx, sy float32) Affine {
	return Affine{sx, 0, 0, sy, 0, 0}
}

// Concat composes two transforms: the result applies other first, then t.
func (t Affine) Concat(other Affine) Affine {
	a1, b1, c1, d1, e1, f1 := t[0], t[1], t[2], t[3], t[4], t[5]
	a2, b2, c2, d2, e2, f2 := other[0], other[1], other[2], other[3], other[4], other[5]
	return Affine{
		a1*a2 + c1*b2,
		b1*a2 + d1*b2,
		a1*c2 + c1*d2,
		b1*c2 + d1*d2,
		a1*e2 + c1*f2 + e1,
		b1*e2 + d1*f2 + f1,
	}
}

// Apply transforms the point (x, y).
func (t Affine) Apply(x, y float32) (float32, float32) {
	return t[0]*x + t[2]*y + t[4], t[1]*x + t[3]*y + t[5]
}

// IsIdentity reports whether the transform is exactly the identity.
func (t Affine) IsIdentity() bool {
	return t == Affine{1, 0, 0, 1, 0, 0}
}

// TransformRect returns the axis-aligned bounding box of the transformed
// rect corners.
func (t Affine) TransformRect(r Rect) Rect {
	x0, y0 := t.Apply(r.X, r.Y)
	x1, y1 := t.Apply(r.MaxX(), r.Y)
	x2, y2 := t.Apply(r.MaxX(), r.MaxY())
	x3, y3 := t.Apply(r.X, r.MaxY())

	minX := minf(minf(x0, x1), minf(x2, x3))
	minY := minf(minf(y0, y1), minf(y2, y3))
	maxX := maxf(maxf(x0, x1), maxf(x2, x3))
	maxY := maxf(maxf(y0, y1), maxf(y2, y3))

	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
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
