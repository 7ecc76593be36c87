package lumen

import (
	"math"
	"sort"
)

// Brush describes what to paint with.
// This is a sealed interface; only types in this package implement it.
//
// All brushes produce premultiplied linear Colors, so brush output can be
// fed straight into the compositor without conversion.
type Brush interface {
	// brushMarker seals the interface.
	brushMarker()

	// ColorAt returns the color at the given coordinates, in the
	// coordinate space of the shape being painted.
	ColorAt(x, y float32) Color

	// Opaque reports whether every color the brush can produce is fully
	// opaque. The compositor-bypass path asserts this before rendering
	// without blending.
	Opaque() bool
}

// SolidBrush paints a single color.
type SolidBrush struct {
	Color Color
}

func (SolidBrush) brushMarker() {}

// ColorAt returns the solid color regardless of position.
func (b SolidBrush) ColorAt(_, _ float32) Color { return b.Color }

// Opaque implements Brush.
func (b SolidBrush) Opaque() bool { return b.Color.IsOpaque() }

// Solid creates a SolidBrush.
func Solid(c Color) SolidBrush {
	return SolidBrush{Color: c}
}

// SpreadMode defines how gradients behave for parameters outside [0, 1].
type SpreadMode int

const (
	// SpreadClamp extends the edge stop colors indefinitely. This is the
	// default and the only mode required by most UI content.
	SpreadClamp SpreadMode = iota
	// SpreadRepeat tiles the gradient.
	SpreadRepeat
	// SpreadReflect mirrors the gradient on every repeat.
	SpreadReflect
)

// ColorStop is a color at an offset within a gradient.
type ColorStop struct {
	Offset float32 // position in the gradient, 0.0 to 1.0
	Color  Color
}

// LinearGradientBrush paints a linear color transition between two
// points. Interpolation between stops happens in premultiplied linear
// space, so a white→black ramp passes through physical mid-gray, not the
// darker sRGB midpoint.
type LinearGradientBrush struct {
	Start  Point
	End    Point
	Stops  []ColorStop
	Spread SpreadMode
}

// NewLinearGradient creates a linear gradient from (x0, y0) to (x1, y1).
func NewLinearGradient(x0, y0, x1, y1 float32) *LinearGradientBrush {
	return &LinearGradientBrush{
		Start: Point{X: x0, Y: y0},
		End:   Point{X: x1, Y: y1},
	}
}

// AddStop appends a color stop. Returns the brush for chaining.
func (g *LinearGradientBrush) AddStop(offset float32, c Color) *LinearGradientBrush {
	g.Stops = append(g.Stops, ColorStop{Offset: offset, Color: c})
	return g
}

// SetSpread sets the spread mode. Returns the brush for chaining.
func (g *LinearGradientBrush) SetSpread(mode SpreadMode) *LinearGradientBrush {
	g.Spread = mode
	return g
}

func (LinearGradientBrush) brushMarker() {}

// ColorAt projects the point onto the gradient axis and evaluates the
// stop ramp at the normalized parameter.
func (g *LinearGradientBrush) ColorAt(x, y float32) Color {
	dx := g.End.X - g.Start.X
	dy := g.End.Y - g.Start.Y
	lengthSq := dx*dx + dy*dy

	if lengthSq == 0 {
		return firstStopColor(g.Stops)
	}

	// t = dot(P - Start, End - Start) / |End - Start|^2
	px := x - g.Start.X
	py := y - g.Start.Y
	t := (px*dx + py*dy) / lengthSq

	return colorAtOffset(g.Stops, t, g.Spread)
}

// Opaque implements Brush.
func (g *LinearGradientBrush) Opaque() bool { return stopsOpaque(g.Stops) }

// RadialGradientBrush paints a radial transition from a center point.
// RadiusX and RadiusY may differ; the distance computation scales each
// axis independently so the gradient stays aspect-correct when the
// painted shape is not square.
type RadialGradientBrush struct {
	Center  Point
	RadiusX float32
	RadiusY float32
	Stops   []ColorStop
	Spread  SpreadMode
}

// NewRadialGradient creates a radial gradient centered at (cx, cy) with a
// circular radius r.
func NewRadialGradient(cx, cy, r float32) *RadialGradientBrush {
	return &RadialGradientBrush{
		Center:  Point{X: cx, Y: cy},
		RadiusX: r,
		RadiusY: r,
	}
}

// SetRadii sets independent horizontal and vertical radii.
// Returns the brush for chaining.
func (g *RadialGradientBrush) SetRadii(rx, ry float32) *RadialGradientBrush {
	g.RadiusX = rx
	g.RadiusY = ry
	return g
}

// AddStop appends a color stop. Returns the brush for chaining.
func (g *RadialGradientBrush) AddStop(offset float32, c Color) *RadialGradientBrush {
	g.Stops = append(g.Stops, ColorStop{Offset: offset, Color: c})
	return g
}

// SetSpread sets the spread mode. Returns the brush for chaining.
func (g *RadialGradientBrush) SetSpread(mode SpreadMode) *RadialGradientBrush {
	g.Spread = mode
	return g
}

func (RadialGradientBrush) brushMarker() {}

// ColorAt evaluates the normalized, aspect-corrected distance from the
// center and samples the stop ramp.
func (g *RadialGradientBrush) ColorAt(x, y float32) Color {
	if g.RadiusX <= 0 || g.RadiusY <= 0 {
		return firstStopColor(g.Stops)
	}

	dx := (x - g.Center.X) / g.RadiusX
	dy := (y - g.Center.Y) / g.RadiusY
	t := float32(math.Sqrt(float64(dx*dx + dy*dy)))

	return colorAtOffset(g.Stops, t, g.Spread)
}

// Opaque implements Brush.
func (g *RadialGradientBrush) Opaque() bool { return stopsOpaque(g.Stops) }

// sortStops returns the stops sorted by offset. The sort is stable so
// that duplicate offsets keep their insertion order; colorAtOffset then
// resolves exact-boundary sampling as last-wins.
func sortStops(stops []ColorStop) []ColorStop {
	if sort.SliceIsSorted(stops, func(i, j int) bool {
		return stops[i].Offset < stops[j].Offset
	}) {
		return stops
	}

	sorted := make([]ColorStop, len(stops))
	copy(sorted, stops)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})
	return sorted
}

// applySpread normalizes t to [0, 1] per the spread mode.
func applySpread(t float32, mode SpreadMode) float32 {
	switch mode {
	case SpreadRepeat:
		t -= float32(math.Floor(float64(t)))
		if t < 0 {
			t++
		}
	case SpreadReflect:
		t = float32(math.Abs(float64(t)))
		period := float32(math.Floor(float64(t)))
		t -= period
		if int(period)%2 == 1 {
			t = 1 - t
		}
	default: // SpreadClamp
		t = clamp01(t)
	}
	return t
}

// colorAtOffset evaluates the stop ramp at parameter t.
//
// The bracketing stop pair is found by binary search and the two colors
// are interpolated in premultiplied linear space with t remapped into the
// bracket. When t lands exactly on a duplicated offset the later stop
// wins.
func colorAtOffset(stops []ColorStop, t float32, mode SpreadMode) Color {
	if len(stops) == 0 {
		return Transparent
	}
	if len(stops) == 1 {
		return stops[0].Color
	}

	sorted := sortStops(stops)
	t = applySpread(t, mode)

	// First stop with Offset > t; sorted[idx-1] then holds the last stop
	// with Offset <= t, which gives last-wins at exact boundaries.
	idx := sort.Search(len(sorted), func(i int) bool {
		return sorted[i].Offset > t
	})

	if idx == 0 {
		return sorted[0].Color
	}
	if idx >= len(sorted) {
		return sorted[len(sorted)-1].Color
	}

	a := sorted[idx-1]
	b := sorted[idx]

	if b.Offset == a.Offset {
		return b.Color
	}

	local := (t - a.Offset) / (b.Offset - a.Offset)
	return a.Color.Lerp(b.Color, local)
}

// firstStopColor returns the lowest-offset stop color, or Transparent.
func firstStopColor(stops []ColorStop) Color {
	if len(stops) == 0 {
		return Transparent
	}
	return sortStops(stops)[0].Color
}

// stopsOpaque reports whether every stop is fully opaque. An empty stop
// list paints nothing and is not opaque.
func stopsOpaque(stops []ColorStop) bool {
	if len(stops) == 0 {
		return false
	}
	for _, s := range stops {
		if !s.Color.IsOpaque() {
			return false
		}
	}
	return true
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
