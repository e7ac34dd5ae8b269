package render

// Overwrite stores an opaque shaded color at pixel index i. Channels are
// clamped to at most 1; the packed pixel is always fully opaque.
func (fb *Framebuffer) Overwrite(i int, c Color) {
	fb.Pixels[i] = c.MaxToOne().Opaque().ToRGBA()
}

// Blend composites a translucent shaded color over the pixel at index i,
// using the color's alpha (clamped to 1) as coverage:
// alpha*c + (1-alpha)*existing, clamped to at most 1.
// The existing pixel's alpha is kept.
func (fb *Framebuffer) Blend(i int, c Color) {
	alpha := min(c.A, 1)
	dst := ColorFromRGBA(fb.Pixels[i])
	out := Color{
		R: alpha*c.R + (1-alpha)*dst.R,
		G: alpha*c.G + (1-alpha)*dst.G,
		B: alpha*c.B + (1-alpha)*dst.B,
		A: dst.A,
	}
	fb.Pixels[i] = out.MaxToOne().ToRGBA()
}
