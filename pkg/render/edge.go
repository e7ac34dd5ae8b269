package render

import "github.com/taigrr/softrast/pkg/math3d"

// edge is the line equation a*x + b*y + c through two screen points.
// Evaluated at p it equals cross(to-from, p-from), the signed double area of
// (from, to, p).
type edge struct {
	a, b, c float64
	// topLeft marks edges that own the pixels lying exactly on them.
	topLeft bool
}

// newEdge builds the edge from -> to. sign is the sign of the triangle's
// area, used to orient the edge consistently for the fill rule.
func newEdge(from, to math3d.Vec2, sign float64) edge {
	d := to.Sub(from).Scale(sign)
	return edge{
		a:       from.Y - to.Y,
		b:       to.X - from.X,
		c:       from.X*to.Y - to.X*from.Y,
		topLeft: (d.Y == 0 && d.X > 0) || d.Y < 0,
	}
}

func (e edge) eval(x, y float64) float64 {
	return e.a*x + e.b*y + e.c
}

// covers applies the top-left fill rule to an edge value already multiplied
// by the area sign: strictly inside, or exactly on an owning edge.
func (e edge) covers(v float64) bool {
	return v > 0 || (v == 0 && e.topLeft)
}
