package render

import "github.com/taigrr/softrast/pkg/math3d"

// InputVertex is a mesh vertex in object space.
type InputVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	Tangent  math3d.Vec3
	UV       math3d.Vec2
}

// ShadedVertex is a vertex after the vertex stage.
type ShadedVertex struct {
	// Position holds NDC x, y and z after the perspective divide, and the
	// reciprocal of clip-space w in W.
	Position math3d.Vec4
	Normal   math3d.Vec3 // World space
	Tangent  math3d.Vec3 // World space
	ViewDir  math3d.Vec3 // Camera origin minus world position, unnormalized
	UV       math3d.Vec2
}

// TransformVertex runs a single vertex through the vertex stage.
// wvp is proj·view·world. Normals and tangents are transformed by the world
// matrix directly rather than its inverse-transpose, which is only exact
// under uniform scale.
func TransformVertex(in InputVertex, world, wvp math3d.Mat4, eye math3d.Vec3) ShadedVertex {
	clip := wvp.MulVec4(math3d.V4FromV3(in.Position, 1))
	return ShadedVertex{
		Position: clip.PerspectiveDivide(),
		Normal:   world.MulVec3Dir(in.Normal),
		Tangent:  world.MulVec3Dir(in.Tangent),
		ViewDir:  eye.Sub(world.MulVec3(in.Position)),
		UV:       in.UV,
	}
}

// TransformVertices runs src through the vertex stage into dst, which must be
// at least as long as src. Output order matches input order.
func TransformVertices(dst []ShadedVertex, src []InputVertex, world, view, proj math3d.Mat4, eye math3d.Vec3) {
	wvp := proj.Mul(view).Mul(world)
	for i, v := range src {
		dst[i] = TransformVertex(v, world, wvp, eye)
	}
}
