package render

import "math"

// DepthBuffer records the nearest NDC depth seen at each pixel during a frame.
type DepthBuffer struct {
	Width  int
	Height int
	Values []float64 // Row-major, +Inf means nothing drawn yet
}

// NewDepthBuffer creates a cleared depth buffer.
func NewDepthBuffer(width, height int) *DepthBuffer {
	d := &DepthBuffer{
		Width:  width,
		Height: height,
		Values: make([]float64, width*height),
	}
	d.Clear()
	return d
}

// Clear resets every entry to +Inf (call before each frame).
func (d *DepthBuffer) Clear() {
	// copy-doubling is faster than a plain loop for large buffers
	n := len(d.Values)
	if n == 0 {
		return
	}
	d.Values[0] = math.Inf(1)
	for i := 1; i < n; i *= 2 {
		copy(d.Values[i:], d.Values[:i])
	}
}

// At returns the stored depth at (x, y), or +Inf out of bounds.
func (d *DepthBuffer) At(x, y int) float64 {
	if x < 0 || x >= d.Width || y < 0 || y >= d.Height {
		return math.Inf(1)
	}
	return d.Values[y*d.Width+x]
}

// TestOpaque passes when z <= the stored depth and then records z.
// Equal depths pass, so redrawing the same surface is idempotent.
func (d *DepthBuffer) TestOpaque(i int, z float64) bool {
	if z <= d.Values[i] {
		d.Values[i] = z
		return true
	}
	return false
}

// TestTranslucent passes only when z is strictly nearer than the stored
// depth. It never writes.
func (d *DepthBuffer) TestTranslucent(i int, z float64) bool {
	return z < d.Values[i]
}

// Weights converts the three edge values of a pixel into barycentric weights
// by dividing through by the triangle's signed double area.
// area must be non-zero.
func Weights(e [3]float64, area float64) [3]float64 {
	inv := 1 / area
	return [3]float64{e[0] * inv, e[1] * inv, e[2] * inv}
}

// InterpolateDepth blends the three vertex NDC depths harmonically:
// 1 / (w0/z0 + w1/z1 + w2/z2).
// A vertex at exactly z == 0 drives the result to 0; NaN results fail every
// depth test.
func InterpolateDepth(w, z [3]float64) float64 {
	return 1 / (w[0]/z[0] + w[1]/z[1] + w[2]/z[2])
}
