package scene

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/taigrr/softrast/pkg/math3d"
	"github.com/taigrr/softrast/pkg/models"
	"github.com/taigrr/softrast/pkg/render"
)

// quadOBJ is a 2x2 quad in the z=0 plane facing -Z, towards a camera on
// the negative Z axis and into the default light.
const quadOBJ = `v -1 -1 0
v 1 -1 0
v 1 1 0
v -1 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
f 1/1 4/4 3/3 2/2
`

func writePNG(t *testing.T, path string, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := range 2 {
		for x := range 2 {
			img.SetNRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

// testScene writes an opaque red quad and a translucent green quad in
// front of it and loads them.
func testScene(t *testing.T) *Scene {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "quad.obj"), quadOBJ)
	writePNG(t, filepath.Join(dir, "red.png"), color.NRGBA{255, 0, 0, 255})
	writePNG(t, filepath.Join(dir, "green.png"), color.NRGBA{0, 255, 0, 255})
	writeFile(t, filepath.Join(dir, "scene.yaml"), `
width: 64
height: 36
workers: 2
rotate: false
camera:
  position: [0, 0, -5]
  fov: 60
meshes:
  - name: body
    model: quad.obj
    shading: diffuse
    textures:
      diffuse: red.png
  - name: fx
    model: quad.obj
    kind: translucent
    position: [0, 0, -0.5]
    textures:
      diffuse: green.png
`)

	cfg, err := Load(filepath.Join(dir, "scene.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s, err := Build(*cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return s
}

func TestBuildAndRender(t *testing.T) {
	s := testScene(t)
	if len(s.Objects) != 2 {
		t.Fatalf("got %d objects, want 2", len(s.Objects))
	}

	r := render.NewRenderer(s.Width, s.Height, s.Workers)
	if err := s.Render(r); err != nil {
		t.Fatalf("Render: %v", err)
	}

	stats := r.Stats()
	if stats.Meshes != 2 || stats.Rasterized != 4 {
		t.Errorf("stats = %+v, want 2 meshes and 4 rasterized triangles", stats)
	}
	center := r.Framebuffer().GetPixel(32, 18)
	if center != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("center = %v, want the translucent green on top", center)
	}
	corner := r.Framebuffer().GetPixel(0, 0)
	if corner != (color.RGBA{99, 99, 99, 255}) {
		t.Errorf("corner = %v, want the background", corner)
	}

	s.ToggleTranslucent()
	if err := s.Render(r); err != nil {
		t.Fatalf("Render: %v", err)
	}
	center = r.Framebuffer().GetPixel(32, 18)
	if center != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("center without translucent = %v, want lit red", center)
	}

	s.ToggleUniformClear()
	if err := s.Render(r); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := r.Framebuffer().GetPixel(0, 0); got != (color.RGBA{25, 25, 25, 255}) {
		t.Errorf("corner = %v, want the uniform clear color", got)
	}
}

func TestBuildMissingTexture(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "quad.obj"), quadOBJ)

	cfg := DefaultConfig()
	cfg.Meshes = []MeshConfig{{
		Model:    filepath.Join(dir, "quad.obj"),
		Textures: TextureConfig{Diffuse: filepath.Join(dir, "missing.png")},
	}}
	if _, err := Build(cfg); err == nil {
		t.Error("expected an error for a missing texture")
	}
}

func TestBuildFallbackTextures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "quad.obj"), quadOBJ)

	cfg := DefaultConfig()
	cfg.Meshes = []MeshConfig{{Model: filepath.Join(dir, "quad.obj")}}
	s, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	shader, ok := s.Objects[0].Mesh.Shader.(*render.OpaqueShader)
	if !ok {
		t.Fatalf("shader = %T, want *render.OpaqueShader", s.Objects[0].Mesh.Shader)
	}
	settings := s.Objects[0].Settings()
	if err := shader.Validate(&settings); err != nil {
		t.Errorf("fallback material fails validation: %v", err)
	}
	if _, ok := shader.Material.Diffuse.(*render.Texture); !ok {
		t.Errorf("diffuse = %T, want the checker texture", shader.Material.Diffuse)
	}
}

func TestUpdateRotation(t *testing.T) {
	mesh := render.NewMesh("m", nil, nil, nil)
	s := New(DefaultConfig())
	o := NewObject("m", mesh, false, render.DefaultSettings())
	o.Position = math3d.V3(0, 0, 10)
	s.Add(o)

	s.Update(0.5)
	want := DefaultRotationSpeed * 0.5
	if math.Abs(o.Angle-want) > 1e-12 {
		t.Errorf("angle = %v, want %v", o.Angle, want)
	}
	// world = translate · rotateY, so the origin lands on the position
	if got := mesh.World.MulVec3(math3d.V3(0, 0, 0)); got != o.Position {
		t.Errorf("origin maps to %v, want %v", got, o.Position)
	}

	s.ToggleRotation()
	for range 120 {
		s.Update(1.0 / 60)
	}
	before := o.Angle
	s.Update(1.0 / 60)
	if d := o.Angle - before; d < 0 || d > 1e-4 {
		t.Errorf("angle still advancing by %v after stopping", d)
	}

	stopped := o.Angle
	s.Update(0)
	s.Update(-1)
	if o.Angle != stopped {
		t.Errorf("non-positive dt moved the angle from %v to %v", stopped, o.Angle)
	}
}

func TestControls(t *testing.T) {
	s := New(DefaultConfig())
	shader := render.NewOpaqueShader(render.Material{})
	opaque := NewObject("body", render.NewMesh("body", nil, nil, shader), false, render.DefaultSettings())
	fxSettings := render.DefaultSettings()
	fxSettings.CullMode = render.CullNone
	fx := NewObject("fx", render.NewMesh("fx", nil, nil, render.NewTranslucentShader(nil)), true, fxSettings)
	tex := render.NewTexture(1, 1)
	opaque.textures = []*render.Texture{tex}
	s.Add(opaque)
	s.Add(fx)

	wantCull := []render.CullMode{render.CullFront, render.CullNone, render.CullBack}
	for _, want := range wantCull {
		if got := s.CycleCullMode(); got != want {
			t.Errorf("CycleCullMode() = %v, want %v", got, want)
		}
		if opaque.Settings().CullMode != want {
			t.Errorf("opaque cull = %v, want %v", opaque.Settings().CullMode, want)
		}
	}
	if fx.Settings().CullMode != render.CullNone {
		t.Errorf("translucent cull changed to %v", fx.Settings().CullMode)
	}

	wantShade := []render.ShadingMode{render.ShadeObservedArea, render.ShadeDiffuse, render.ShadeSpecular, render.ShadeCombined}
	for _, want := range wantShade {
		if got := s.CycleShadingMode(); got != want {
			t.Errorf("CycleShadingMode() = %v, want %v", got, want)
		}
	}

	if s.ToggleNormalMap() || opaque.Settings().NormalMap {
		t.Error("normal map should toggle off")
	}
	if !s.ToggleDepthVisualization() || !opaque.Settings().VisualizeDepth {
		t.Error("depth visualization should toggle on")
	}
	if !s.ToggleBoundsVisualization() || !opaque.Settings().VisualizeBounds {
		t.Error("bounds visualization should toggle on")
	}
	if fx.Settings() != fxSettings {
		t.Errorf("translucent settings changed to %+v", fx.Settings())
	}

	if s.CycleFilter() != render.FilterBilinear || tex.FilterMode != render.FilterBilinear {
		t.Error("filter should switch the opaque textures to bilinear")
	}

	if s.ToggleRotation() {
		t.Error("rotation should toggle off")
	}
	if s.ToggleTranslucent() {
		t.Error("translucent meshes should toggle off")
	}
	if got := s.Draws(); len(got) != 1 || got[0].Mesh != opaque.Mesh {
		t.Errorf("draws = %+v, want only the opaque mesh", got)
	}
	s.ToggleTranslucent()
	if got := s.Draws(); len(got) != 2 || got[1].Mesh != fx.Mesh {
		t.Errorf("draws = %+v, want opaque then translucent", got)
	}

	if s.ClearColor() != s.Background {
		t.Error("default clear color should be the background")
	}
	if !s.ToggleUniformClear() || s.ClearColor() != s.UniformClear {
		t.Error("uniform clear should toggle on")
	}
}

func TestControlsWithoutOpaqueObjects(t *testing.T) {
	s := New(DefaultConfig())
	if s.CycleCullMode() != render.CullBack || s.CycleShadingMode() != render.ShadeCombined {
		t.Error("cycling with no opaque objects should return the defaults")
	}
}

func TestBaseTransform(t *testing.T) {
	m := models.NewMesh("box")
	m.BoundsMin = math3d.V3(2, 0, 0)
	m.BoundsMax = math3d.V3(6, 2, 1)

	base := baseTransform(m, true, 2)
	if got := base.MulVec3(m.Center()); got != math3d.V3(0, 0, 0) {
		t.Errorf("center maps to %v, want origin", got)
	}
	if got := base.MulVec3(m.BoundsMax); got != math3d.V3(1, 0.5, 0.25) {
		t.Errorf("max corner maps to %v, want (1, 0.5, 0.25)", got)
	}

	if got := baseTransform(m, false, 0); got != math3d.Identity() {
		t.Errorf("no centering or fit = %v, want identity", got)
	}
}

func TestResize(t *testing.T) {
	s := New(DefaultConfig())
	s.Resize(100, 50)
	if s.Camera.AspectRatio != 2 || s.Width != 100 || s.Height != 50 {
		t.Errorf("after resize: %dx%d aspect %v", s.Width, s.Height, s.Camera.AspectRatio)
	}
	s.Resize(0, 10)
	if s.Width != 100 {
		t.Error("invalid sizes should be ignored")
	}
}
