// Package filter implements the blur and shadow mask generation used by
// the shadow render pass.
//
// All filtering happens on single-channel float32 coverage masks in
// linear space. Gaussian blur is separable, so a 2D blur is two 1D
// convolutions with the same normalized kernel.
package filter

import "math"

// GaussianKernel returns a normalized 1D Gaussian kernel for the given
// standard deviation. The radius is ceil(3*sigma), which captures 99.7%
// of the distribution; the weights are renormalized afterwards so they
// sum to exactly 1 and repeated blurring never gains or loses energy.
//
// A sigma <= 0 returns the identity kernel [1].
func GaussianKernel(sigma float32) []float32 {
	if sigma <= 0 {
		return []float32{1}
	}

	radius := KernelRadius(sigma)
	kernel := make([]float32, 2*radius+1)

	s2 := float64(sigma) * float64(sigma)
	var sum float64
	for i := -radius; i <= radius; i++ {
		w := math.Exp(-float64(i*i) / (2 * s2))
		kernel[i+radius] = float32(w)
		sum += w
	}

	inv := float32(1 / sum)
	for i := range kernel {
		kernel[i] *= inv
	}
	return kernel
}

// KernelRadius returns the half-width of the kernel GaussianKernel
// produces for sigma.
func KernelRadius(sigma float32) int {
	if sigma <= 0 {
		return 0
	}
	return int(math.Ceil(3 * float64(sigma)))
}

// SigmaForRadius converts a user-facing blur radius to the Gaussian
// standard deviation, matching the CSS box-shadow convention where the
// blur radius is roughly twice sigma.
func SigmaForRadius(radius float32) float32 {
	if radius <= 0 {
		return 0
	}
	return radius * 0.5
}
