package render

import (
	"image/color"
	"math"
)

// Color is a linear RGBA color with float channels. Shading works in this
// space; values above 1 are legal until the compositor clamps them.
type Color struct {
	R, G, B, A float64
}

// Common colors.
var (
	Black = Color{0, 0, 0, 1}
	White = Color{1, 1, 1, 1}
)

// RGBA creates a color from float channels.
func RGBA(r, g, b, a float64) Color {
	return Color{r, g, b, a}
}

// Grey returns an opaque grey of intensity v.
func Grey(v float64) Color {
	return Color{v, v, v, 1}
}

// ColorFromRGBA converts a packed 8-bit color to float channels.
func ColorFromRGBA(c color.RGBA) Color {
	return Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
		A: float64(c.A) / 255,
	}
}

// Add returns the channel-wise sum of all four channels.
func (c Color) Add(o Color) Color {
	return Color{c.R + o.R, c.G + o.G, c.B + o.B, c.A + o.A}
}

// Scale multiplies all four channels by s.
func (c Color) Scale(s float64) Color {
	return Color{c.R * s, c.G * s, c.B * s, c.A * s}
}

// Mul returns the channel-wise product.
func (c Color) Mul(o Color) Color {
	return Color{c.R * o.R, c.G * o.G, c.B * o.B, c.A * o.A}
}

// Opaque returns c with alpha set to 1.
func (c Color) Opaque() Color {
	c.A = 1
	return c
}

// MaxToOne clamps every channel to at most 1. Lower values are left alone.
func (c Color) MaxToOne() Color {
	return Color{
		math.Min(c.R, 1),
		math.Min(c.G, 1),
		math.Min(c.B, 1),
		math.Min(c.A, 1),
	}
}

// ToRGBA packs the color into 8-bit channels, truncating like a plain
// float-to-byte conversion.
func (c Color) ToRGBA() color.RGBA {
	return color.RGBA{
		R: toByte(c.R),
		G: toByte(c.G),
		B: toByte(c.B),
		A: toByte(c.A),
	}
}

func toByte(v float64) uint8 {
	switch {
	case v <= 0 || math.IsNaN(v):
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v * 255)
}
