package render

import "github.com/taigrr/softrast/pkg/math3d"

type triState uint8

const (
	triLive triState = iota
	triDegenerate
	triOutside
	triFacing
)

// triangle is the per-triangle setup shared by every tile.
type triangle struct {
	state triState
	idx   [3]uint32
	area  float64 // Signed double area in screen space
	sign  float64 // Sign of area
	edges [3]edge // Opposite vertex 0, 1 and 2

	// Pixel range of the clamped bounding box, half-open
	x0, y0, x1, y1 int
}

// setupTriangle applies, in order, the degenerate-index test, the frustum
// test, screen mapping and the facing test, and prepares edge equations for
// triangles that survive.
func setupTriangle(verts []ShadedVertex, i0, i1, i2 uint32, width, height int, cull CullMode) triangle {
	t := triangle{idx: [3]uint32{i0, i1, i2}}
	if IsDegenerate(i0, i1, i2) {
		t.state = triDegenerate
		return t
	}

	v0, v1, v2 := &verts[i0], &verts[i1], &verts[i2]
	if !InFrustum(v0, v1, v2) {
		t.state = triOutside
		return t
	}

	p0 := ToScreen(v0.Position, width, height)
	p1 := ToScreen(v1.Position, width, height)
	p2 := ToScreen(v2.Position, width, height)

	t.area = SignedArea(p0, p1, p2)
	if !cull.Keeps(t.area) {
		t.state = triFacing
		return t
	}

	t.sign = 1
	if t.area < 0 {
		t.sign = -1
	}
	t.edges = [3]edge{
		newEdge(p1, p2, t.sign),
		newEdge(p2, p0, t.sign),
		newEdge(p0, p1, t.sign),
	}
	t.x0, t.y0, t.x1, t.y1 = BoundingBox(p0, p1, p2, width, height).Pixels()
	return t
}

// SignedArea returns cross(p1-p0, p2-p0), twice the signed area of the
// triangle. It is positive for clockwise screen-space winding.
func SignedArea(p0, p1, p2 math3d.Vec2) float64 {
	return p1.Sub(p0).Cross(p2.Sub(p0))
}

// coverage evaluates the three edge functions at a pixel center and applies
// the top-left fill rule, so a pixel on an edge shared by two triangles is
// drawn by exactly one of them.
func (t *triangle) coverage(px, py float64) ([3]float64, bool) {
	e := [3]float64{
		t.edges[0].eval(px, py),
		t.edges[1].eval(px, py),
		t.edges[2].eval(px, py),
	}
	inside := t.edges[0].covers(e[0]*t.sign) &&
		t.edges[1].covers(e[1]*t.sign) &&
		t.edges[2].covers(e[2]*t.sign)
	return e, inside
}
