package scene

import (
	"fmt"
	"image/color"
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/softrast/pkg/math3d"
	"github.com/taigrr/softrast/pkg/models"
	"github.com/taigrr/softrast/pkg/render"
)

// Spin easing: frequency and damping of the spring that ramps mesh rotation
// up and down when it is toggled. Critically damped, so no overshoot.
const (
	spinFrequency = 6.0
	spinDamping   = 1.0
)

// Object is one mesh in the scene with its animation and render settings.
type Object struct {
	Name        string
	Mesh        *render.Mesh
	Translucent bool
	Position    math3d.Vec3
	Speed       float64 // Radians per second about Y
	Angle       float64

	base     math3d.Mat4 // Centering and fit, applied before rotation
	settings render.RenderSettings
	textures []*render.Texture
}

// NewObject wraps a drawable mesh. The mesh's world transform is managed by
// the object from now on.
func NewObject(name string, mesh *render.Mesh, translucent bool, settings render.RenderSettings) *Object {
	o := &Object{
		Name:        name,
		Mesh:        mesh,
		Translucent: translucent,
		Speed:       DefaultRotationSpeed,
		base:        math3d.Identity(),
		settings:    settings,
	}
	o.updateWorld()
	return o
}

// Settings returns the settings the object is drawn with.
func (o *Object) Settings() render.RenderSettings {
	return o.settings
}

// SetSettings replaces the object's render settings.
func (o *Object) SetSettings(s render.RenderSettings) {
	o.settings = s
}

// Advance rotates the object by its speed over dt seconds, scaled by rate.
func (o *Object) Advance(dt, rate float64) {
	o.Angle = math.Mod(o.Angle+o.Speed*dt*rate, 2*math.Pi)
	o.updateWorld()
}

// updateWorld sets world = translate · rotateY · base.
func (o *Object) updateWorld() {
	o.Mesh.World = math3d.Translate(o.Position).
		Mul(math3d.RotateY(o.Angle)).
		Mul(o.base)
}

// Scene holds the objects, camera and frame-level state of the viewer.
// Methods are not safe for concurrent use.
type Scene struct {
	Objects []*Object
	Camera  *render.Camera

	Background      color.RGBA
	UniformClear    color.RGBA
	UseUniformClear bool
	ShowTranslucent bool
	Rotating        bool
	Filter          render.FilterMode

	Width, Height, Workers int

	// spin eases towards 1 while rotating and 0 when stopped
	spin, spinVel float64
}

// New creates an empty scene from the frame-level parts of cfg.
func New(cfg Config) *Scene {
	cam := render.NewCamera()
	cam.SetPosition(math3d.V3(cfg.Camera.Position[0], cfg.Camera.Position[1], cfg.Camera.Position[2]))
	cam.LookAt(math3d.V3(cfg.Camera.Target[0], cfg.Camera.Target[1], cfg.Camera.Target[2]))
	cam.SetFOV(cfg.Camera.FOV * math.Pi / 180)
	cam.SetClipPlanes(cfg.Camera.Near, cfg.Camera.Far)
	cam.SetAspectRatio(float64(cfg.Width) / float64(cfg.Height))

	filter, _ := parseFilter(cfg.Filter)
	rotating := cfg.Rotate == nil || *cfg.Rotate
	spin := 0.0
	if rotating {
		spin = 1
	}

	return &Scene{
		Camera:          cam,
		Background:      rgba(cfg.Background),
		UniformClear:    rgba(cfg.UniformClear),
		UseUniformClear: cfg.UseUniformClear,
		ShowTranslucent: true,
		Rotating:        rotating,
		Filter:          filter,
		Width:           cfg.Width,
		Height:          cfg.Height,
		Workers:         cfg.Workers,
		spin:            spin,
	}
}

// Build validates cfg, loads every mesh and its textures and returns the
// scene.
func Build(cfg Config) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := New(cfg)
	for i := range cfg.Meshes {
		mc := &cfg.Meshes[i]
		obj, err := buildObject(mc, s.Filter)
		if err != nil {
			return nil, fmt.Errorf("mesh %q: %w", mc.Model, err)
		}
		s.Add(obj)
		render.Logger().Info("loaded mesh",
			"name", obj.Name,
			"vertices", len(obj.Mesh.Vertices),
			"triangles", obj.Mesh.TriangleCount(),
			"translucent", obj.Translucent,
		)
	}
	return s, nil
}

// Add appends an object. Its textures take the scene's filter mode.
func (s *Scene) Add(o *Object) {
	for _, t := range o.textures {
		t.FilterMode = s.Filter
	}
	s.Objects = append(s.Objects, o)
}

func buildObject(mc *MeshConfig, filter render.FilterMode) (*Object, error) {
	model, err := models.Load(mc.Model)
	if err != nil {
		return nil, err
	}

	name := mc.Name
	if name == "" {
		name = model.Name
	}
	translucent := mc.Kind == KindTranslucent

	var textures []*render.Texture
	load := func(path string, embedded func() *render.Texture) (*render.Texture, error) {
		var tex *render.Texture
		switch {
		case path != "":
			loaded, err := render.LoadTexture(path)
			if err != nil {
				return nil, err
			}
			tex = loaded
		case embedded != nil:
			tex = embedded()
		}
		if tex != nil {
			tex.FilterMode = filter
			textures = append(textures, tex)
		}
		return tex, nil
	}
	diffuse, err := load(mc.Textures.Diffuse, func() *render.Texture {
		if img := model.FirstBaseMap(); img != nil {
			return render.TextureFromImage(img)
		}
		return render.NewCheckerTexture(64, 64, 8, render.Grey(0.8), render.Grey(0.4))
	})
	if err != nil {
		return nil, fmt.Errorf("diffuse: %w", err)
	}

	var shader render.Shader
	if translucent {
		shader = render.NewTranslucentShader(diffuse)
	} else {
		mat := render.Material{Diffuse: diffuse}

		normal, err := load(mc.Textures.Normal, func() *render.Texture {
			if img := model.FirstNormalMap(); img != nil {
				return render.TextureFromImage(img)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("normal: %w", err)
		}
		specular, err := load(mc.Textures.Specular, nil)
		if err != nil {
			return nil, fmt.Errorf("specular: %w", err)
		}
		gloss, err := load(mc.Textures.Glossiness, nil)
		if err != nil {
			return nil, fmt.Errorf("glossiness: %w", err)
		}

		mat.Normal = samplerOr(normal, render.SolidColor(flatNormal))
		mat.Specular = samplerOr(specular, render.SolidColor(defaultSpecular))
		mat.Glossiness = samplerOr(gloss, render.SolidColor(defaultGlossiness))
		shader = render.NewOpaqueShader(mat)
	}

	obj := NewObject(name, model.ToRender(shader), translucent, mc.settings())
	obj.Position = math3d.V3(mc.Position[0], mc.Position[1], mc.Position[2])
	obj.Speed = mc.rotationSpeed()
	obj.base = baseTransform(model, mc.Center, mc.Fit)
	obj.textures = textures
	obj.updateWorld()
	return obj, nil
}

// Defaults for opaque materials without the corresponding texture.
var (
	flatNormal        = render.Color{R: 0.5, G: 0.5, B: 1, A: 1}
	defaultSpecular   = render.Grey(0.25)
	defaultGlossiness = render.Grey(1)
)

// samplerOr returns t as a Sampler, or fallback when t is nil. A nil
// *Texture must not become a non-nil interface.
func samplerOr(t *render.Texture, fallback render.Sampler) render.Sampler {
	if t == nil {
		return fallback
	}
	return t
}

// baseTransform optionally recenters the model on the origin and scales its
// largest extent to fit.
func baseTransform(m *models.Mesh, center bool, fit float64) math3d.Mat4 {
	base := math3d.Identity()
	if center {
		base = math3d.Translate(m.Center().Negate())
	}
	if fit > 0 {
		size := m.Size()
		maxDim := math.Max(size.X, math.Max(size.Y, size.Z))
		if maxDim > 0 {
			k := fit / maxDim
			base = math3d.Scale(math3d.V3(k, k, k)).Mul(base)
		}
	}
	return base
}

func rgba(c RGB) color.RGBA {
	return color.RGBA{c[0], c[1], c[2], 255}
}

// Update advances the animation by dt seconds.
func (s *Scene) Update(dt float64) {
	if dt <= 0 {
		return
	}
	target := 0.0
	if s.Rotating {
		target = 1
	}
	spring := harmonica.NewSpring(dt, spinFrequency, spinDamping)
	s.spin, s.spinVel = spring.Update(s.spin, s.spinVel, target)

	for _, o := range s.Objects {
		o.Advance(dt, s.spin)
	}
}

// ClearColor returns the color the frame is cleared to.
func (s *Scene) ClearColor() color.RGBA {
	if s.UseUniformClear {
		return s.UniformClear
	}
	return s.Background
}

// Draws returns the visible objects in draw order, opaque before
// translucent.
func (s *Scene) Draws() []render.Draw {
	draws := make([]render.Draw, 0, len(s.Objects))
	for _, o := range s.Objects {
		if !o.Translucent {
			draws = append(draws, render.Draw{Mesh: o.Mesh, Settings: o.settings})
		}
	}
	if s.ShowTranslucent {
		for _, o := range s.Objects {
			if o.Translucent {
				draws = append(draws, render.Draw{Mesh: o.Mesh, Settings: o.settings})
			}
		}
	}
	return draws
}

// Render draws one frame into r.
func (s *Scene) Render(r *render.Renderer) error {
	return r.RenderFrame(s.Camera, s.ClearColor(), s.Draws()...)
}

// Resize updates the camera aspect ratio for a new image size.
func (s *Scene) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.Width, s.Height = width, height
	s.Camera.SetAspectRatio(float64(width) / float64(height))
}
