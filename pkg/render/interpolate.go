package render

import "github.com/taigrr/softrast/pkg/math3d"

// Fragment is the per-pixel input to a shader.
type Fragment struct {
	X, Y    int
	Depth   float64     // Interpolated NDC depth
	Normal  math3d.Vec3 // Unit length
	Tangent math3d.Vec3 // Unit length
	ViewDir math3d.Vec3 // Unit length, surface towards camera
	UV      math3d.Vec2
}

// Interpolate builds the fragment for pixel (x, y) from barycentric weights
// w, correcting every attribute for perspective with the vertices' stored
// 1/w.
func Interpolate(w [3]float64, v0, v1, v2 *ShadedVertex, x, y int, depth float64) Fragment {
	// weights pre-multiplied by each vertex's 1/w
	p0 := w[0] * v0.Position.W
	p1 := w[1] * v1.Position.W
	p2 := w[2] * v2.Position.W
	wInterp := 1 / (p0 + p1 + p2)

	return Fragment{
		X:       x,
		Y:       y,
		Depth:   depth,
		Normal:  lerp3(v0.Normal, v1.Normal, v2.Normal, p0, p1, p2, wInterp).Normalize(),
		Tangent: lerp3(v0.Tangent, v1.Tangent, v2.Tangent, p0, p1, p2, wInterp).Normalize(),
		ViewDir: lerp3(v0.ViewDir, v1.ViewDir, v2.ViewDir, p0, p1, p2, wInterp).Normalize(),
		UV: math3d.Vec2{
			X: (v0.UV.X*p0 + v1.UV.X*p1 + v2.UV.X*p2) * wInterp,
			Y: (v0.UV.Y*p0 + v1.UV.Y*p1 + v2.UV.Y*p2) * wInterp,
		},
	}
}

func lerp3(a0, a1, a2 math3d.Vec3, p0, p1, p2, scale float64) math3d.Vec3 {
	return math3d.Vec3{
		X: (a0.X*p0 + a1.X*p1 + a2.X*p2) * scale,
		Y: (a0.Y*p0 + a1.Y*p1 + a2.Y*p2) * scale,
		Z: (a0.Z*p0 + a1.Z*p1 + a2.Z*p2) * scale,
	}
}
