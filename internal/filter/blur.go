package filter

// Mask is a single-channel float32 coverage buffer. Values are in
// [0, 1] with row-major layout.
type Mask struct {
	W, H int
	Pix  []float32
}

// NewMask allocates a zeroed coverage mask.
func NewMask(w, h int) *Mask {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Mask{W: w, H: h, Pix: make([]float32, w*h)}
}

// At returns the coverage at (x, y), 0 outside the mask.
func (m *Mask) At(x, y int) float32 {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return 0
	}
	return m.Pix[y*m.W+x]
}

// Set stores coverage at (x, y). Out-of-bounds writes are dropped.
func (m *Mask) Set(x, y int, v float32) {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return
	}
	m.Pix[y*m.W+x] = v
}

// Blur applies a separable Gaussian blur in place and returns the mask.
// Edges clamp to zero coverage, which darkens shadows toward the mask
// border instead of smearing; callers pad the mask by the kernel radius
// before blurring to avoid clipping.
func (m *Mask) Blur(sigma float32) *Mask {
	kernel := GaussianKernel(sigma)
	if len(kernel) == 1 {
		return m
	}
	radius := len(kernel) / 2

	tmp := make([]float32, len(m.Pix))

	// Horizontal pass into tmp.
	for y := 0; y < m.H; y++ {
		row := m.Pix[y*m.W : (y+1)*m.W]
		out := tmp[y*m.W : (y+1)*m.W]
		for x := 0; x < m.W; x++ {
			var acc float32
			for k := -radius; k <= radius; k++ {
				sx := x + k
				if sx < 0 || sx >= m.W {
					continue
				}
				acc += row[sx] * kernel[k+radius]
			}
			out[x] = acc
		}
	}

	// Vertical pass back into the mask.
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			var acc float32
			for k := -radius; k <= radius; k++ {
				sy := y + k
				if sy < 0 || sy >= m.H {
					continue
				}
				acc += tmp[sy*m.W+x] * kernel[k+radius]
			}
			m.Pix[y*m.W+x] = acc
		}
	}
	return m
}

// Invert replaces every sample v with 1-v. Inner shadows blur the
// inverted occluder mask so the shadow falls inside the shape.
func (m *Mask) Invert() *Mask {
	for i, v := range m.Pix {
		m.Pix[i] = 1 - v
	}
	return m
}
