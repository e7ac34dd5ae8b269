package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/softrast/pkg/math3d"
)

// ErrMissingTexture is returned when a draw needs a texture the shader does
// not have.
var ErrMissingTexture = errors.New("missing texture")

// depthVisualizationFloor is the NDC depth mapped to black when visualizing
// the depth buffer. Perspective depth crowds near 1, so the visible range is
// narrow.
const depthVisualizationFloor = 0.995

// Shader turns an interpolated fragment into a color. It is chosen once per
// mesh; WritesDepth selects the opaque or translucent depth and blend
// discipline.
type Shader interface {
	Shade(f *Fragment, s *RenderSettings) Color
	WritesDepth() bool
	// Validate reports whether the shader can run with s.
	Validate(s *RenderSettings) error
}

// Light is a directional light.
type Light struct {
	Direction math3d.Vec3 // Unit vector pointing from the light into the scene
	Intensity float64
	Shininess float64
	Ambient   Color
}

// DefaultLight returns the scene's fixed light.
func DefaultLight() Light {
	return Light{
		Direction: math3d.V3(0.577, -0.577, 0.577).Normalize(),
		Intensity: 7,
		Shininess: 25,
		Ambient:   Color{0.025, 0.025, 0.025, 0},
	}
}

// Material holds the textures an opaque surface is shaded with.
// Translucent surfaces use Diffuse only.
type Material struct {
	Diffuse    Sampler
	Normal     Sampler // Tangent-space normals, channels in [0,1]
	Specular   Sampler
	Glossiness Sampler // Greyscale; the red channel scales the shininess
}

// OpaqueShader lights surfaces with Lambert diffuse and Phong specular.
type OpaqueShader struct {
	Material Material
	Light    Light
}

// NewOpaqueShader returns an opaque shader lit by DefaultLight.
func NewOpaqueShader(m Material) *OpaqueShader {
	return &OpaqueShader{Material: m, Light: DefaultLight()}
}

// WritesDepth implements Shader.
func (*OpaqueShader) WritesDepth() bool { return true }

// Validate implements Shader.
func (o *OpaqueShader) Validate(s *RenderSettings) error {
	if s.VisualizeDepth || s.VisualizeBounds {
		return nil
	}
	if s.NormalMap && o.Material.Normal == nil {
		return fmt.Errorf("normal map enabled: %w", ErrMissingTexture)
	}
	switch s.ShadingMode {
	case ShadeObservedArea:
		return nil
	case ShadeDiffuse:
		if o.Material.Diffuse == nil {
			return fmt.Errorf("diffuse: %w", ErrMissingTexture)
		}
	case ShadeSpecular:
		if o.Material.Specular == nil || o.Material.Glossiness == nil {
			return fmt.Errorf("specular: %w", ErrMissingTexture)
		}
	default:
		if o.Material.Diffuse == nil || o.Material.Specular == nil || o.Material.Glossiness == nil {
			return fmt.Errorf("combined: %w", ErrMissingTexture)
		}
	}
	return nil
}

// Shade implements Shader.
func (o *OpaqueShader) Shade(f *Fragment, s *RenderSettings) Color {
	if s.VisualizeDepth {
		return Grey(clamp((f.Depth-depthVisualizationFloor)/(1-depthVisualizationFloor), 0, 1))
	}

	n := f.Normal
	if s.NormalMap {
		n = o.perturb(f)
	}

	l := o.Light.Direction
	observedArea := math.Max(0, n.Dot(l.Negate()))

	switch s.ShadingMode {
	case ShadeObservedArea:
		return Grey(observedArea)
	case ShadeDiffuse:
		return o.diffuse(f).Scale(observedArea).Opaque()
	case ShadeSpecular:
		return o.specular(f, n).Scale(observedArea).Opaque()
	default:
		return o.diffuse(f).
			Add(o.specular(f, n)).
			Add(o.Light.Ambient).
			Scale(observedArea).
			Opaque()
	}
}

// perturb replaces the interpolated normal with the normal map sample,
// transformed out of the (tangent, normal×tangent, normal) basis.
func (o *OpaqueShader) perturb(f *Fragment) math3d.Vec3 {
	c := o.Material.Normal.Sample(f.UV.X, f.UV.Y)
	t := f.Tangent
	b := f.Normal.Cross(t)
	return t.Scale(2*c.R - 1).
		Add(b.Scale(2*c.G - 1)).
		Add(f.Normal.Scale(2*c.B - 1)).
		Normalize()
}

func (o *OpaqueShader) diffuse(f *Fragment) Color {
	return o.Material.Diffuse.Sample(f.UV.X, f.UV.Y).Scale(o.Light.Intensity / math.Pi)
}

func (o *OpaqueShader) specular(f *Fragment, n math3d.Vec3) Color {
	r := o.Light.Direction.Negate().Reflect(n)
	reflectance := math.Max(0, r.Dot(f.ViewDir))
	gloss := o.Material.Glossiness.Sample(f.UV.X, f.UV.Y).R
	return o.Material.Specular.Sample(f.UV.X, f.UV.Y).Scale(math.Pow(reflectance, gloss*o.Light.Shininess))
}

// TranslucentShader emits the lit diffuse texture. The sampled alpha, scaled
// along with the color, is the coverage the compositor blends with.
type TranslucentShader struct {
	Diffuse   Sampler
	Intensity float64
}

// NewTranslucentShader returns a translucent shader with the default light
// intensity.
func NewTranslucentShader(diffuse Sampler) *TranslucentShader {
	return &TranslucentShader{Diffuse: diffuse, Intensity: DefaultLight().Intensity}
}

// WritesDepth implements Shader.
func (*TranslucentShader) WritesDepth() bool { return false }

// Validate implements Shader.
func (t *TranslucentShader) Validate(s *RenderSettings) error {
	if t.Diffuse == nil && !s.VisualizeBounds {
		return fmt.Errorf("translucent diffuse: %w", ErrMissingTexture)
	}
	return nil
}

// Shade implements Shader.
func (t *TranslucentShader) Shade(f *Fragment, _ *RenderSettings) Color {
	return t.Diffuse.Sample(f.UV.X, f.UV.Y).Scale(t.Intensity / math.Pi)
}
