package render

import (
	"math"

	"github.com/taigrr/softrast/pkg/math3d"
)

// ToScreen maps NDC x and y to pixel coordinates. NDC +y is up, image +y
// is down.
func ToScreen(ndc math3d.Vec4, width, height int) math3d.Vec2 {
	return math3d.Vec2{
		X: 0.5 * (ndc.X + 1) * float64(width),
		Y: 0.5 * (1 - ndc.Y) * float64(height),
	}
}

// Box is an axis-aligned pixel-space rectangle.
type Box struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// BoundingBox returns the bounds of three screen points clamped to
// [0,width]x[0,height].
func BoundingBox(p0, p1, p2 math3d.Vec2, width, height int) Box {
	w, h := float64(width), float64(height)
	return Box{
		MinX: clamp(math.Min(p0.X, math.Min(p1.X, p2.X)), 0, w),
		MinY: clamp(math.Min(p0.Y, math.Min(p1.Y, p2.Y)), 0, h),
		MaxX: clamp(math.Max(p0.X, math.Max(p1.X, p2.X)), 0, w),
		MaxY: clamp(math.Max(p0.Y, math.Max(p1.Y, p2.Y)), 0, h),
	}
}

// Pixels returns the integer pixel range [x0,x1)x[y0,y1) visited for the
// box: every pixel from floor(min) while the coordinate stays below max.
func (b Box) Pixels() (x0, y0, x1, y1 int) {
	return int(b.MinX), int(b.MinY), int(math.Ceil(b.MaxX)), int(math.Ceil(b.MaxY))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
