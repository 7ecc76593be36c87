package gpu

import (
	_ "embed"
	"errors"
)

// Embedded WGSL shader sources, one per pipeline stage.

//go:embed shaders/fill.wgsl
var fillShaderSource string

//go:embed shaders/gradient.wgsl
var gradientShaderSource string

//go:embed shaders/blur.wgsl
var blurShaderSource string

//go:embed shaders/text.wgsl
var textShaderSource string

//go:embed shaders/composite.wgsl
var compositeShaderSource string

//go:embed shaders/output.wgsl
var outputShaderSource string

//go:embed shaders/blit.wgsl
var blitShaderSource string

// ValidateShaderSources checks that all embedded shaders are present.
// An empty source means a broken build, not a runtime condition.
func ValidateShaderSources() error {
	sources := []struct {
		name string
		src  string
	}{
		{"fill", fillShaderSource},
		{"gradient", gradientShaderSource},
		{"blur", blurShaderSource},
		{"text", textShaderSource},
		{"composite", compositeShaderSource},
		{"output", outputShaderSource},
		{"blit", blitShaderSource},
	}
	for _, s := range sources {
		if s.src == "" {
			return errors.New("gpu: " + s.name + " shader source is empty")
		}
	}
	return nil
}

// Shape kinds understood by the fill shader. Matched against the
// shape_kind vertex attribute in fill.wgsl.
const (
	ShapeKindRect    float32 = 0
	ShapeKindRRect   float32 = 1
	ShapeKindEllipse float32 = 2
)

// fillVertexStride is the byte stride per vertex in the fill pipeline.
// Layout per vertex:
//
//	position (vec2<f32>) = 8 bytes  (location 0)
//	local    (vec2<f32>) = 8 bytes  (location 1)
//	shape_kind (f32)     = 4 bytes  (location 2)
//	half_w   (f32)       = 4 bytes  (location 3)
//	half_h   (f32)       = 4 bytes  (location 4)
//	radius   (f32)       = 4 bytes  (location 5)
//	half_stroke (f32)    = 4 bytes  (location 6)
//	color    (vec4<f32>) = 16 bytes (location 7)
//
// Total = 52 bytes per vertex.
const fillVertexStride = 52

// viewportUniformSize is the byte size of the shared viewport uniform.
// Layout: viewport (vec2<f32>) + padding (vec2<f32>) = 16 bytes.
const viewportUniformSize = 16

// gradientUniformSize is the byte size of the gradient parameter block.
// Layout matches GradientParams in gradient.wgsl.
const gradientUniformSize = 48

// maxGradientStops bounds the stop array in the gradient uniform block.
const maxGradientStops = 16

// GradientParams mirrors the uniform struct in gradient.wgsl.
// Kind 0 is linear, 1 is radial. Spread 0 clamps, 1 repeats, 2 reflects.
type GradientParams struct {
	P0X, P0Y  float32 // start point / center
	P1X, P1Y  float32 // end point / unused
	RadiusX   float32
	RadiusY   float32
	Kind      uint32
	Spread    uint32
	StopCount uint32
	Pad       [3]uint32
}

// BlurParams mirrors the uniform struct in blur.wgsl.
// Direction selects the separable pass: 0 horizontal, 1 vertical.
type BlurParams struct {
	Width     uint32
	Height    uint32
	Radius    uint32
	Direction uint32
}

// OutputParams mirrors the uniform struct in output.wgsl.
type OutputParams struct {
	Width  uint32
	Height uint32
	Dither uint32 // 1 enables ordered dithering
	Pad    uint32
}
