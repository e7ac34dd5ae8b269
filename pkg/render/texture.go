package render

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"math"
	"os"

	_ "golang.org/x/image/bmp"  // Register BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// Sampler maps a texture coordinate in [0,1]² to an RGBA color in [0,1]⁴.
// Implementations must be safe for concurrent reads.
type Sampler interface {
	Sample(u, v float64) Color
}

// SolidColor is a Sampler that returns the same color everywhere.
type SolidColor Color

// Sample implements Sampler.
func (s SolidColor) Sample(_, _ float64) Color {
	return Color(s)
}

// FilterMode determines how texture sampling is performed.
type FilterMode int

const (
	FilterNearest  FilterMode = iota // Nearest-neighbor (pixelated)
	FilterBilinear                   // Bilinear interpolation (smooth)
)

// Next returns the other filter mode.
func (f FilterMode) Next() FilterMode {
	if f == FilterNearest {
		return FilterBilinear
	}
	return FilterNearest
}

func (f FilterMode) String() string {
	if f == FilterBilinear {
		return "Bilinear"
	}
	return "Nearest"
}

// Texture holds a decoded image as float colors. Coordinates are clamped to
// [0,1]; v = 0 is the top row of the image.
type Texture struct {
	Width      int
	Height     int
	Pixels     []Color // Row-major pixel data, straight alpha
	FilterMode FilterMode
}

// NewTexture creates an empty texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
	}
}

// LoadTexture loads a texture from an image file. PNG, JPEG, BMP, TIFF and
// WebP are supported.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	return TextureFromImage(img), nil
}

// TextureFromImage creates a texture from an image.Image.
func TextureFromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		// normalize every source format to straight-alpha 8-bit channels
		nrgba = image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)
		bounds = nrgba.Bounds()
	}

	tex := NewTexture(bounds.Dx(), bounds.Dy())
	for y := range tex.Height {
		for x := range tex.Width {
			c := nrgba.NRGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
			tex.Pixels[y*tex.Width+x] = ColorFromRGBA(color.RGBA(c))
		}
	}
	return tex
}

// NewCheckerTexture creates a procedural checkerboard texture.
func NewCheckerTexture(width, height, checkSize int, c1, c2 Color) *Texture {
	tex := NewTexture(width, height)
	for y := range height {
		for x := range width {
			if (x/checkSize+y/checkSize)%2 == 0 {
				tex.SetPixel(x, y, c1)
			} else {
				tex.SetPixel(x, y, c2)
			}
		}
	}
	return tex
}

// SetPixel sets a pixel in the texture.
func (t *Texture) SetPixel(x, y int, c Color) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Pixels[y*t.Width+x] = c
}

// GetPixel returns the pixel at (x, y), clamping to the edge.
func (t *Texture) GetPixel(x, y int) Color {
	x = min(max(x, 0), t.Width-1)
	y = min(max(y, 0), t.Height-1)
	return t.Pixels[y*t.Width+x]
}

// Sample implements Sampler.
func (t *Texture) Sample(u, v float64) Color {
	u = clamp(u, 0, 1)
	v = clamp(v, 0, 1)

	switch t.FilterMode {
	case FilterBilinear:
		return t.sampleBilinear(u, v)
	default:
		return t.sampleNearest(u, v)
	}
}

// sampleNearest returns the nearest pixel.
func (t *Texture) sampleNearest(u, v float64) Color {
	return t.GetPixel(int(u*float64(t.Width)), int(v*float64(t.Height)))
}

// sampleBilinear returns bilinearly interpolated color.
func (t *Texture) sampleBilinear(u, v float64) Color {
	fx := u*float64(t.Width) - 0.5
	fy := v*float64(t.Height) - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	c00 := t.GetPixel(x0, y0)
	c10 := t.GetPixel(x0+1, y0)
	c01 := t.GetPixel(x0, y0+1)
	c11 := t.GetPixel(x0+1, y0+1)

	top := lerpColor(c00, c10, tx)
	bot := lerpColor(c01, c11, tx)
	return lerpColor(top, bot, ty)
}

// lerpColor linearly interpolates between two colors.
func lerpColor(a, b Color, t float64) Color {
	return a.Add(b.Add(a.Scale(-1)).Scale(t))
}
