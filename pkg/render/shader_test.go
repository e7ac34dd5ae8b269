package render

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/softrast/pkg/math3d"
)

const shadeEpsilon = 1e-9

func approxColor(a, b Color) bool {
	return math.Abs(a.R-b.R) < shadeEpsilon &&
		math.Abs(a.G-b.G) < shadeEpsilon &&
		math.Abs(a.B-b.B) < shadeEpsilon &&
		math.Abs(a.A-b.A) < shadeEpsilon
}

func testShader() *OpaqueShader {
	return NewOpaqueShader(Material{
		Diffuse:    SolidColor{1, 0.5, 0.25, 1},
		Normal:     SolidColor{0.5, 1, 0.5, 1},
		Specular:   SolidColor{0.4, 0.4, 0.4, 1},
		Glossiness: SolidColor{0.5, 0.5, 0.5, 1},
	})
}

func TestOpaqueShadingModes(t *testing.T) {
	shader := testShader()
	toLight := shader.Light.Direction.Negate()
	invSqrt3 := 1 / math.Sqrt(3)
	k := 7 / math.Pi

	// Normal straight up: observed area 1/√3, and the reflected light
	// direction points along (-1,-1,-1)/√3.
	up := Fragment{
		Normal:  math3d.V3(0, 1, 0),
		Tangent: math3d.V3(1, 0, 0),
		ViewDir: math3d.V3(-1, -1, -1).Normalize(),
	}
	facing := Fragment{
		Normal:  toLight,
		Tangent: math3d.V3(1, 0, 1).Normalize(),
		ViewDir: math3d.V3(0, 0, -1),
	}

	tests := []struct {
		name string
		frag Fragment
		mode ShadingMode
		want Color
	}{
		{"observed area facing light", facing, ShadeObservedArea, Grey(1)},
		{"observed area tilted", up, ShadeObservedArea, Grey(invSqrt3)},
		{"diffuse", facing, ShadeDiffuse, Color{k, 0.5 * k, 0.25 * k, 1}},
		{"specular at mirror angle", up, ShadeSpecular, Color{0.4 * invSqrt3, 0.4 * invSqrt3, 0.4 * invSqrt3, 1}},
		{
			"combined",
			up,
			ShadeCombined,
			Color{
				(k + 0.4 + 0.025) * invSqrt3,
				(0.5*k + 0.4 + 0.025) * invSqrt3,
				(0.25*k + 0.4 + 0.025) * invSqrt3,
				1,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := RenderSettings{ShadingMode: tc.mode}
			if got := shader.Shade(&tc.frag, &s); !approxColor(got, tc.want) {
				t.Errorf("Shade = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestOpaqueShaderFacingAway(t *testing.T) {
	shader := testShader()
	frag := Fragment{Normal: shader.Light.Direction, ViewDir: math3d.V3(0, 0, -1)}

	for _, mode := range []ShadingMode{ShadeCombined, ShadeObservedArea, ShadeDiffuse, ShadeSpecular} {
		s := RenderSettings{ShadingMode: mode}
		if got := shader.Shade(&frag, &s); !approxColor(got, Grey(0)) {
			t.Errorf("%v: Shade = %+v, want black", mode, got)
		}
	}
}

func TestNormalMapPerturbsNormal(t *testing.T) {
	shader := testShader()
	// Facing +z, the light never reaches it. The map sample (0.5, 1, 0.5)
	// is the bitangent cross(N, T) = +y, which does.
	frag := Fragment{
		Normal:  math3d.V3(0, 0, 1),
		Tangent: math3d.V3(1, 0, 0),
	}

	flat := RenderSettings{ShadingMode: ShadeObservedArea}
	if got := shader.Shade(&frag, &flat); !approxColor(got, Grey(0)) {
		t.Errorf("without normal map = %+v, want black", got)
	}

	mapped := RenderSettings{ShadingMode: ShadeObservedArea, NormalMap: true}
	if got := shader.Shade(&frag, &mapped); !approxColor(got, Grey(1/math.Sqrt(3))) {
		t.Errorf("with normal map = %+v, want grey 1/√3", got)
	}
}

func TestDepthVisualization(t *testing.T) {
	shader := testShader()

	tests := []struct {
		depth float64
		want  float64
	}{
		{0.5, 0},
		{0.995, 0},
		{0.9975, 0.5},
		{1, 1},
		{1.5, 1},
	}

	for _, tc := range tests {
		frag := Fragment{Depth: tc.depth, Normal: math3d.V3(0, 0, 1)}
		s := RenderSettings{VisualizeDepth: true, NormalMap: true}
		got := shader.Shade(&frag, &s)
		if math.Abs(got.R-tc.want) > 1e-6 || got.R != got.G || got.G != got.B || got.A != 1 {
			t.Errorf("depth %v: Shade = %+v, want grey %v", tc.depth, got, tc.want)
		}
	}
}

func TestTranslucentShaderScalesAlpha(t *testing.T) {
	shader := NewTranslucentShader(SolidColor{0.2, 0.4, 0.6, 0.3})
	got := shader.Shade(&Fragment{}, &RenderSettings{})
	k := 7 / math.Pi
	want := Color{0.2 * k, 0.4 * k, 0.6 * k, 0.3 * k}
	if !approxColor(got, want) {
		t.Errorf("Shade = %+v, want %+v", got, want)
	}
	if shader.WritesDepth() {
		t.Error("translucent shader writes depth")
	}
	if !testShader().WritesDepth() {
		t.Error("opaque shader does not write depth")
	}
}

func TestOpaqueShaderValidate(t *testing.T) {
	full := testShader().Material
	noNormal := full
	noNormal.Normal = nil
	noSpecular := full
	noSpecular.Specular = nil

	tests := []struct {
		name     string
		material Material
		settings RenderSettings
		wantErr  bool
	}{
		{"complete", full, DefaultSettings(), false},
		{"normal map off", noNormal, RenderSettings{}, false},
		{"normal map on", noNormal, DefaultSettings(), true},
		{"combined needs specular", noSpecular, RenderSettings{}, true},
		{"diffuse mode ignores specular", noSpecular, RenderSettings{ShadingMode: ShadeDiffuse}, false},
		{"observed area needs nothing", Material{}, RenderSettings{ShadingMode: ShadeObservedArea}, false},
		{"depth view needs nothing", Material{}, RenderSettings{NormalMap: true, VisualizeDepth: true}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := NewOpaqueShader(tc.material).Validate(&tc.settings)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate error = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, ErrMissingTexture) {
				t.Errorf("error %v is not ErrMissingTexture", err)
			}
		})
	}
}

func TestShadingModeCycle(t *testing.T) {
	m := ShadeCombined
	want := []ShadingMode{ShadeObservedArea, ShadeDiffuse, ShadeSpecular, ShadeCombined}
	for i, w := range want {
		m = m.Next()
		if m != w {
			t.Fatalf("step %d: got %v, want %v", i, m, w)
		}
	}
}

func TestParseShadingMode(t *testing.T) {
	for _, m := range []ShadingMode{ShadeCombined, ShadeObservedArea, ShadeDiffuse, ShadeSpecular} {
		got, err := ParseShadingMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseShadingMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseShadingMode("toon"); err == nil {
		t.Error("ParseShadingMode accepted an unknown mode")
	}
}
