package render

import (
	"math"
	"testing"

	"github.com/taigrr/softrast/pkg/math3d"
)

func TestPlaneDistanceToPoint(t *testing.T) {
	// Plane at Z=0, normal pointing +Z
	plane := Plane{Normal: math3d.V3(0, 0, 1), D: 0}

	tests := []struct {
		name     string
		point    math3d.Vec3
		expected float64
	}{
		{"origin", math3d.V3(0, 0, 0), 0},
		{"in front", math3d.V3(0, 0, 5), 5},
		{"behind", math3d.V3(0, 0, -3), -3},
		{"offset XY", math3d.V3(10, -5, 2), 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dist := plane.DistanceToPoint(tc.point)
			if math.Abs(dist-tc.expected) > 1e-9 {
				t.Errorf("got %v, want %v", dist, tc.expected)
			}
		})
	}
}

func TestPlaneNormalize(t *testing.T) {
	plane := Plane{Normal: math3d.V3(0, 3, 4), D: 10}
	plane.Normalize()

	if math.Abs(plane.Normal.Len()-1.0) > 1e-9 {
		t.Errorf("normalized normal length = %v, want 1.0", plane.Normal.Len())
	}
	if math.Abs(plane.D-2.0) > 1e-9 {
		t.Errorf("D = %v, want 2.0", plane.D)
	}
}

func TestAABBTransform(t *testing.T) {
	box := NewAABB(math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1))

	t.Run("translation", func(t *testing.T) {
		transformed := box.Transform(math3d.Translate(math3d.V3(10, 20, 30)))

		if transformed.Min.X != 9 || transformed.Min.Y != 19 || transformed.Min.Z != 29 {
			t.Errorf("translated min = %v, want (9, 19, 29)", transformed.Min)
		}
		if transformed.Max.X != 11 || transformed.Max.Y != 21 || transformed.Max.Z != 31 {
			t.Errorf("translated max = %v, want (11, 21, 31)", transformed.Max)
		}
	})

	t.Run("rotation grows box", func(t *testing.T) {
		transformed := box.Transform(math3d.RotateY(math.Pi / 4))
		want := math.Sqrt2
		if math.Abs(transformed.Max.X-want) > 1e-9 || math.Abs(transformed.Min.Z+want) > 1e-9 {
			t.Errorf("rotated box = %v, want half-extent %v in x and z", transformed, want)
		}
	})
}

func TestFrustumPlanesNormalized(t *testing.T) {
	proj := math3d.PerspectiveZO(math.Pi/3, 16.0/9.0, 0.1, 100)
	frustum := NewFrustumFromMatrix(proj)

	for i, plane := range frustum.Planes {
		if math.Abs(plane.Normal.Len()-1.0) > 1e-6 {
			t.Errorf("plane %d normal length = %v, want 1.0", i, plane.Normal.Len())
		}
	}
}

func TestFrustumIntersectAABB(t *testing.T) {
	proj := math3d.PerspectiveZO(math.Pi/3, 16.0/9.0, 1.0, 100.0)
	frustum := NewFrustumFromMatrix(proj)

	tests := []struct {
		name     string
		box      AABB
		expected bool
	}{
		{"fully inside", NewAABB(math3d.V3(-1, -1, -10), math3d.V3(1, 1, -5)), true},
		{"crosses near plane", NewAABB(math3d.V3(-1, -1, -2), math3d.V3(1, 1, 2)), true},
		{"behind camera", NewAABB(math3d.V3(-1, -1, 5), math3d.V3(1, 1, 10)), false},
		{"between eye and near plane", NewAABB(math3d.V3(-0.1, -0.1, -0.8), math3d.V3(0.1, 0.1, -0.2)), false},
		{"beyond far plane", NewAABB(math3d.V3(-1, -1, -150), math3d.V3(1, 1, -120)), false},
		{"far to the right", NewAABB(math3d.V3(100, -1, -10), math3d.V3(110, 1, -5)), false},
		{"large box containing frustum", NewAABB(math3d.V3(-200, -200, -200), math3d.V3(200, 200, 200)), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := frustum.IntersectAABB(tc.box); got != tc.expected {
				t.Errorf("IntersectAABB(%v) = %v, want %v", tc.box, got, tc.expected)
			}
		})
	}
}

func TestFrustumIdentityIsNDCVolume(t *testing.T) {
	frustum := NewFrustumFromMatrix(math3d.Identity())

	tests := []struct {
		name     string
		box      AABB
		expected bool
	}{
		{"unit volume", NewAABB(math3d.V3(-1, -1, 0), math3d.V3(1, 1, 1)), true},
		{"negative depth", NewAABB(math3d.V3(-1, -1, -2), math3d.V3(1, 1, -0.5)), false},
		{"past x edge", NewAABB(math3d.V3(1.5, -1, 0), math3d.V3(3, 1, 1)), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := frustum.IntersectAABB(tc.box); got != tc.expected {
				t.Errorf("IntersectAABB(%v) = %v, want %v", tc.box, got, tc.expected)
			}
		})
	}
}

func BenchmarkFrustumIntersectAABB(b *testing.B) {
	proj := math3d.PerspectiveZO(math.Pi/3, 16.0/9.0, 0.1, 100)
	view := math3d.LookAt(math3d.V3(0, 0, -50), math3d.V3(0, 0, 0), math3d.Up())
	frustum := NewFrustumFromMatrix(proj.Mul(view))
	box := NewAABB(math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1))

	for b.Loop() {
		_ = frustum.IntersectAABB(box)
	}
}
