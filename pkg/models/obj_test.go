package models

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taigrr/softrast/pkg/math3d"
	"github.com/taigrr/softrast/pkg/render"
)

const quadOBJ = `# unit quad facing +Z
v -1 -1 0
v 1 -1 0
v 1 1 0
v -1 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
f 1/1 2/2 3/3 4/4
`

func TestParseOBJQuad(t *testing.T) {
	mesh, err := ParseOBJ(strings.NewReader(quadOBJ), "quad")
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}

	if mesh.VertexCount() != 4 || mesh.TriangleCount() != 2 {
		t.Fatalf("got %d vertices, %d triangles", mesh.VertexCount(), mesh.TriangleCount())
	}
	wantFaces := [][3]int{{0, 2, 1}, {0, 3, 2}}
	for i, f := range mesh.Faces {
		if f.V != wantFaces[i] {
			t.Errorf("face %d = %v, want %v", i, f.V, wantFaces[i])
		}
	}
	// v flipped to a top-left origin
	if mesh.Vertices[0].UV != math3d.V2(0, 1) {
		t.Errorf("vertex 0 uv = %v, want (0, 1)", mesh.Vertices[0].UV)
	}
	for i, v := range mesh.Vertices {
		if !approx(v.Normal, math3d.V3(0, 0, 1)) {
			t.Errorf("vertex %d normal = %v, want +Z", i, v.Normal)
		}
		if !approx(v.Tangent, math3d.V3(1, 0, 0)) {
			t.Errorf("vertex %d tangent = %v, want +X", i, v.Tangent)
		}
	}
}

func TestParseOBJReferences(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 -1
f 1//1 2//1 3//1
f -3 -2 -1
`
	mesh, err := ParseOBJ(strings.NewReader(src), "refs")
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}
	// "1//1" and "1" are different vertices
	if mesh.VertexCount() != 6 {
		t.Errorf("VertexCount = %d, want 6", mesh.VertexCount())
	}
	if mesh.Vertices[0].Normal != math3d.V3(0, 0, -1) {
		t.Errorf("explicit normal = %v, want (0, 0, -1)", mesh.Vertices[0].Normal)
	}
	if mesh.Faces[1].V != [3]int{3, 5, 4} {
		t.Errorf("relative face = %v, want [3 5 4]", mesh.Faces[1].V)
	}
}

func TestParseOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"short vertex", "v 1 2\n"},
		{"bad number", "v 1 x 3\n"},
		{"two vertex face", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
		{"index out of range", "v 0 0 0\nf 1 2 3\n"},
		{"zero index", "v 0 0 0\nf 0 1 1\n"},
		{"missing position", "v 0 0 0\nf /1 1 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseOBJ(strings.NewReader(tt.src), tt.name); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadDispatch(t *testing.T) {
	dir := t.TempDir()
	objPath := filepath.Join(dir, "quad.obj")
	if err := os.WriteFile(objPath, []byte(quadOBJ), 0o644); err != nil {
		t.Fatal(err)
	}

	mesh, err := Load(objPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if mesh.Name != "quad.obj" || mesh.TriangleCount() != 2 {
		t.Errorf("loaded %q with %d triangles", mesh.Name, mesh.TriangleCount())
	}

	if _, err := Load(filepath.Join(dir, "scene.fbx")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Load(.fbx) error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := Load(filepath.Join(dir, "missing.obj")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

// TestLoadedWindingFacesCamera renders the quad from both sides: loaders
// store faces so that back-face culling keeps the side the normals face.
func TestLoadedWindingFacesCamera(t *testing.T) {
	mesh, err := ParseOBJ(strings.NewReader(quadOBJ), "quad")
	if err != nil {
		t.Fatal(err)
	}
	solid := render.SolidColor(render.White)
	shader := render.NewOpaqueShader(render.Material{
		Diffuse:    solid,
		Normal:     render.SolidColor(render.Color{R: 0.5, G: 0.5, B: 1, A: 1}),
		Specular:   solid,
		Glossiness: solid,
	})
	drawable := mesh.ToRender(shader)

	tests := []struct {
		name         string
		eyeZ         float64
		rasterized   int
		facingCulled int
	}{
		{"front", 5, 2, 0},
		{"back", -5, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := render.NewCamera()
			cam.SetPosition(math3d.V3(0, 0, tt.eyeZ))
			r := render.NewRenderer(32, 18, 1)
			r.BeginFrame(render.Black.ToRGBA())
			if err := r.DrawMesh(drawable, cam, render.DefaultSettings()); err != nil {
				t.Fatalf("DrawMesh: %v", err)
			}
			s := r.Stats()
			if s.Rasterized != tt.rasterized || s.FacingCulled != tt.facingCulled {
				t.Errorf("rasterized %d, facing culled %d; want %d, %d",
					s.Rasterized, s.FacingCulled, tt.rasterized, tt.facingCulled)
			}
		})
	}
}
