package render

import (
	"testing"

	"github.com/taigrr/softrast/pkg/math3d"
)

func TestCullModeKeeps(t *testing.T) {
	tests := []struct {
		mode           CullMode
		pos, neg, zero bool
	}{
		{CullBack, true, false, false},
		{CullFront, false, true, false},
		{CullNone, true, true, false},
	}

	for _, tc := range tests {
		t.Run(tc.mode.String(), func(t *testing.T) {
			if got := tc.mode.Keeps(12.5); got != tc.pos {
				t.Errorf("Keeps(A>0) = %v, want %v", got, tc.pos)
			}
			if got := tc.mode.Keeps(-12.5); got != tc.neg {
				t.Errorf("Keeps(A<0) = %v, want %v", got, tc.neg)
			}
			if got := tc.mode.Keeps(0); got != tc.zero {
				t.Errorf("Keeps(0) = %v, want %v", got, tc.zero)
			}
		})
	}
}

func TestCullModeCycle(t *testing.T) {
	m := CullBack
	want := []CullMode{CullFront, CullNone, CullBack}
	for i, w := range want {
		m = m.Next()
		if m != w {
			t.Fatalf("step %d: got %v, want %v", i, m, w)
		}
	}
}

func TestParseCullMode(t *testing.T) {
	tests := []struct {
		in      string
		want    CullMode
		wantErr bool
	}{
		{"back", CullBack, false},
		{"FrontFace", CullFront, false},
		{"none", CullNone, false},
		{"sideways", 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseCullMode(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tc.wantErr)
			}
			if err == nil && got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsDegenerate(t *testing.T) {
	tests := []struct {
		i    [3]uint32
		want bool
	}{
		{[3]uint32{0, 1, 2}, false},
		{[3]uint32{0, 0, 2}, true},
		{[3]uint32{0, 1, 1}, true},
		{[3]uint32{2, 1, 2}, true},
		{[3]uint32{4, 4, 4}, true},
	}

	for _, tc := range tests {
		if got := IsDegenerate(tc.i[0], tc.i[1], tc.i[2]); got != tc.want {
			t.Errorf("IsDegenerate(%v) = %v, want %v", tc.i, got, tc.want)
		}
	}
}

func TestInFrustum(t *testing.T) {
	in := ShadedVertex{Position: math3d.V4(0, 0, 0.5, 1)}

	tests := []struct {
		name string
		p    math3d.Vec4
		want bool
	}{
		{"center", math3d.V4(0, 0, 0.5, 1), true},
		{"corner", math3d.V4(1, -1, 1, 1), true},
		{"near plane", math3d.V4(0, 0, 0, 1), true},
		{"x too far right", math3d.V4(1.5, 0, 0.5, 1), false},
		{"y too low", math3d.V4(0, -1.01, 0.5, 1), false},
		{"negative depth", math3d.V4(0, 0, -0.01, 1), false},
		{"past far plane", math3d.V4(0, 0, 1.01, 1), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := ShadedVertex{Position: tc.p}
			if got := InFrustum(&in, &v, &in); got != tc.want {
				t.Errorf("InFrustum = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestScreenMapping(t *testing.T) {
	tests := []struct {
		name string
		ndc  math3d.Vec4
		want math3d.Vec2
	}{
		{"top left", math3d.V4(-1, 1, 0, 1), math3d.V2(0, 0)},
		{"bottom right", math3d.V4(1, -1, 0, 1), math3d.V2(200, 100)},
		{"center", math3d.V4(0, 0, 0, 1), math3d.V2(100, 50)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ToScreen(tc.ndc, 200, 100); got != tc.want {
				t.Errorf("ToScreen = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBoundingBoxClamped(t *testing.T) {
	b := BoundingBox(math3d.V2(-20, 5.5), math3d.V2(30.2, -3), math3d.V2(150, 70), 100, 60)
	want := Box{MinX: 0, MinY: 0, MaxX: 100, MaxY: 60}
	if b != want {
		t.Errorf("box = %+v, want %+v", b, want)
	}

	b = BoundingBox(math3d.V2(10.2, 5.5), math3d.V2(30.2, 7), math3d.V2(12, 20.5), 100, 60)
	x0, y0, x1, y1 := b.Pixels()
	if x0 != 10 || y0 != 5 || x1 != 31 || y1 != 21 {
		t.Errorf("pixel range = [%d,%d)x[%d,%d), want [10,31)x[5,21)", x0, x1, y0, y1)
	}
}

func TestTilesCoverBuffer(t *testing.T) {
	const w, h = 150, 70
	covered := make([]int, w*h)
	for _, tl := range tiles(w, h) {
		for y := tl.y0; y < tl.y1; y++ {
			for x := tl.x0; x < tl.x1; x++ {
				covered[y*w+x]++
			}
		}
	}
	for i, n := range covered {
		if n != 1 {
			t.Fatalf("pixel %d covered %d times", i, n)
		}
	}
}
