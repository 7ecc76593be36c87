package lumen

import "math"

// Color is a premultiplied color in linear light.
//
// The R, G and B channels store the channel value already multiplied by
// A, and all four channels are proportional to physical light intensity
// (no gamma encoding). This is the only color representation used inside
// the pipeline; sRGB encoding and un-premultiplication happen exactly
// once, at the output pass.
//
// Bit depth is an encoding concern: 8-bit and float16 storage are
// different encodings of the same logical Color value.
type Color struct {
	R, G, B, A float32
}

// Transparent is fully transparent black, the additive identity for
// premultiplied source-over compositing.
var Transparent = Color{}

// RGB creates an opaque color from linear RGB components in [0, 1].
func RGB(r, g, b float32) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// FromLinear creates a Color from straight (non-premultiplied) linear
// RGBA components and premultiplies.
func FromLinear(r, g, b, a float32) Color {
	return Color{R: r * a, G: g * a, B: b * a, A: a}
}

// FromSRGB8 creates a Color from 8-bit sRGB components, the form colors
// usually arrive in from UI code. The RGB channels are decoded to linear
// and premultiplied; alpha is always linear and is passed through.
func FromSRGB8(r, g, b, a uint8) Color {
	af := float32(a) / 255
	return Color{
		R: SRGBToLinear(float32(r)/255) * af,
		G: SRGBToLinear(float32(g)/255) * af,
		B: SRGBToLinear(float32(b)/255) * af,
		A: af,
	}
}

// FromSRGB creates a Color from 8-bit sRGB channels and a float alpha,
// matching the CSS rgba(r, g, b, a) convention.
func FromSRGB(r, g, b uint8, a float32) Color {
	return Color{
		R: SRGBToLinear(float32(r)/255) * a,
		G: SRGBToLinear(float32(g)/255) * a,
		B: SRGBToLinear(float32(b)/255) * a,
		A: a,
	}
}

// Hex creates a Color from an sRGB hex string.
// Supports "RGB", "RGBA", "RRGGBB" and "RRGGBBAA", with an optional '#'
// prefix. Invalid input yields opaque black.
func Hex(hex string) Color {
	if hex != "" && hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint32
	a = 255

	switch len(hex) {
	case 3: // RGB
		parseHex(hex[0:1], &r)
		parseHex(hex[1:2], &g)
		parseHex(hex[2:3], &b)
		r, g, b = r*17, g*17, b*17
	case 4: // RGBA
		parseHex(hex[0:1], &r)
		parseHex(hex[1:2], &g)
		parseHex(hex[2:3], &b)
		parseHex(hex[3:4], &a)
		r, g, b, a = r*17, g*17, b*17, a*17
	case 6: // RRGGBB
		parseHex(hex[0:2], &r)
		parseHex(hex[2:4], &g)
		parseHex(hex[4:6], &b)
	case 8: // RRGGBBAA
		parseHex(hex[0:2], &r)
		parseHex(hex[2:4], &g)
		parseHex(hex[4:6], &b)
		parseHex(hex[6:8], &a)
	default:
		return Color{A: 1}
	}

	//nolint:gosec // G115: parseHex output is bounded to [0,255]
	return FromSRGB8(uint8(r), uint8(g), uint8(b), uint8(a))
}

// parseHex is a helper for hex parsing.
func parseHex(s string, val *uint32) {
	*val = 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		*val *= 16
		switch {
		case '0' <= c && c <= '9':
			*val += uint32(c - '0')
		case 'a' <= c && c <= 'f':
			*val += uint32(c - 'a' + 10)
		case 'A' <= c && c <= 'F':
			*val += uint32(c - 'A' + 10)
		default:
			return
		}
	}
}

// Unpremultiply returns the straight-alpha linear components.
// Only the output pass should need this.
func (c Color) Unpremultiply() (r, g, b, a float32) {
	if c.A <= 0 {
		return 0, 0, 0, 0
	}
	return c.R / c.A, c.G / c.A, c.B / c.A, c.A
}

// ToSRGB8 encodes the color for an 8-bit sRGB straight-alpha destination.
// This is the single linear→encoded conversion point in the pipeline.
func (c Color) ToSRGB8() (r, g, b, a uint8) {
	lr, lg, lb, la := c.Unpremultiply()
	return encodeSRGB8(lr), encodeSRGB8(lg), encodeSRGB8(lb), quantize8(la)
}

// Lerp interpolates between two colors in premultiplied linear space.
// Interpolating premultiplied values is what makes gradient ramps through
// transparency correct.
func (c Color) Lerp(other Color, t float32) Color {
	return Color{
		R: c.R + (other.R-c.R)*t,
		G: c.G + (other.G-c.G)*t,
		B: c.B + (other.B-c.B)*t,
		A: c.A + (other.A-c.A)*t,
	}
}

// Scale multiplies all channels by f. Because the color is premultiplied
// this is the correct way to apply an extra coverage or opacity factor.
func (c Color) Scale(f float32) Color {
	return Color{R: c.R * f, G: c.G * f, B: c.B * f, A: c.A * f}
}

// Over composites c over dst using the premultiplied source-over law
// result = src + dst*(1 - src.alpha).
func (c Color) Over(dst Color) Color {
	inv := 1 - c.A
	return Color{
		R: c.R + dst.R*inv,
		G: c.G + dst.G*inv,
		B: c.B + dst.B*inv,
		A: c.A + dst.A*inv,
	}
}

// IsOpaque reports whether the color is fully opaque.
func (c Color) IsOpaque() bool {
	return c.A >= 1
}

// SRGBToLinear converts an sRGB-encoded component to linear light (EOTF).
// Input and output are in [0, 1].
func SRGBToLinear(s float32) float32 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return float32(math.Pow(float64(s+0.055)/1.055, 2.4))
}

// LinearToSRGB converts a linear component to sRGB encoding (OETF).
// Input and output are in [0, 1].
func LinearToSRGB(l float32) float32 {
	if l <= 0.0031308 {
		return l * 12.92
	}
	return 1.055*float32(math.Pow(float64(l), 1.0/2.4)) - 0.055
}

// encodeSRGB8 gamma-encodes a linear component and quantizes to 8 bits.
func encodeSRGB8(l float32) uint8 {
	return quantize8(LinearToSRGB(l))
}

// quantize8 clamps a [0,1] component and rounds to uint8.
func quantize8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
