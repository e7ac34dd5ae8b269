// Package scene describes what the viewer draws: meshes with their shaders
// and render settings, the camera, clear colors and animation. Scenes are
// read from YAML files or built from defaults.
package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/taigrr/softrast/pkg/render"
)

// Mesh kinds.
const (
	KindOpaque      = "opaque"
	KindTranslucent = "translucent"
)

// DefaultRotationSpeed is the spin rate of a mesh in radians per second.
const DefaultRotationSpeed = 0.785398

// maxConfigSize bounds scene files read by Load.
const maxConfigSize = 1 << 20

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid scene config")

// RGB is an 8-bit color written as a three element list.
type RGB [3]uint8

// Config is the on-disk scene description.
type Config struct {
	Width   int `yaml:"width"`
	Height  int `yaml:"height"`
	Workers int `yaml:"workers"` // 0 uses GOMAXPROCS

	Background      RGB    `yaml:"background"`
	UniformClear    RGB    `yaml:"uniform_clear"`
	UseUniformClear bool   `yaml:"use_uniform_clear"`
	Filter          string `yaml:"filter"` // nearest or bilinear
	Rotate          *bool  `yaml:"rotate"` // pointer to distinguish unset vs false

	Camera CameraConfig `yaml:"camera"`
	Meshes []MeshConfig `yaml:"meshes"`
}

// CameraConfig places the camera.
type CameraConfig struct {
	Position [3]float64 `yaml:"position"`
	Target   [3]float64 `yaml:"target"`
	FOV      float64    `yaml:"fov"` // Vertical, degrees
	Near     float64    `yaml:"near"`
	Far      float64    `yaml:"far"`
}

// MeshConfig describes one drawable.
type MeshConfig struct {
	Name     string     `yaml:"name"`
	Model    string     `yaml:"model"`
	Kind     string     `yaml:"kind"`
	Position [3]float64 `yaml:"position"`
	// Fit scales the model uniformly so its largest extent equals Fit.
	// Zero keeps the model's own units.
	Fit           float64  `yaml:"fit"`
	Center        bool     `yaml:"center"`
	RotationSpeed *float64 `yaml:"rotation_speed"`

	Cull            string `yaml:"cull"`
	Shading         string `yaml:"shading"`
	NormalMap       *bool  `yaml:"normal_map"`
	VisualizeDepth  bool   `yaml:"visualize_depth"`
	VisualizeBounds bool   `yaml:"visualize_bounds"`

	Textures TextureConfig `yaml:"textures"`
}

// TextureConfig names the image files a mesh is shaded with. Empty entries
// fall back to the model's embedded material, then to a default.
type TextureConfig struct {
	Diffuse    string `yaml:"diffuse"`
	Normal     string `yaml:"normal"`
	Specular   string `yaml:"specular"`
	Glossiness string `yaml:"glossiness"`
}

// DefaultConfig returns a scene with no meshes: a 640x360 image, a grey
// background and a camera 50 units down -Z looking at the origin.
func DefaultConfig() Config {
	return Config{
		Width:        640,
		Height:       360,
		Background:   RGB{99, 99, 99},
		UniformClear: RGB{25, 25, 25},
		Filter:       "nearest",
		Camera: CameraConfig{
			Position: [3]float64{0, 0, -50},
			FOV:      45,
			Near:     0.1,
			Far:      100,
		},
	}
}

// Load reads a YAML scene file. Unset fields take DefaultConfig values and
// relative paths are resolved against the file's directory.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat scene: %w", err)
	}
	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("scene %s is %d bytes: %w", path, info.Size(), ErrInvalidConfig)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse scene %s: %w", path, err)
	}

	cfg.resolvePaths(filepath.Dir(path))
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	render.Logger().Info("loaded scene", "path", path, "meshes", len(cfg.Meshes))
	return &cfg, nil
}

func (c *Config) resolvePaths(dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	for i := range c.Meshes {
		m := &c.Meshes[i]
		m.Model = abs(m.Model)
		m.Textures.Diffuse = abs(m.Textures.Diffuse)
		m.Textures.Normal = abs(m.Textures.Normal)
		m.Textures.Specular = abs(m.Textures.Specular)
		m.Textures.Glossiness = abs(m.Textures.Glossiness)
	}
}

// Validate checks sizes, camera parameters and the enums of every mesh.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("size %dx%d: %w", c.Width, c.Height, ErrInvalidConfig)
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		return fmt.Errorf("camera fov %v: %w", c.Camera.FOV, ErrInvalidConfig)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("clip planes %v..%v: %w", c.Camera.Near, c.Camera.Far, ErrInvalidConfig)
	}
	if c.Camera.Position == c.Camera.Target {
		return fmt.Errorf("camera position equals target: %w", ErrInvalidConfig)
	}
	if _, err := parseFilter(c.Filter); err != nil {
		return err
	}

	for i, m := range c.Meshes {
		if err := m.validate(); err != nil {
			return fmt.Errorf("mesh %d (%s): %w", i, m.Name, err)
		}
	}
	return nil
}

func (m *MeshConfig) validate() error {
	if m.Model == "" {
		return fmt.Errorf("no model: %w", ErrInvalidConfig)
	}
	switch m.Kind {
	case "", KindOpaque, KindTranslucent:
	default:
		return fmt.Errorf("kind %q: %w", m.Kind, ErrInvalidConfig)
	}
	if m.Fit < 0 {
		return fmt.Errorf("fit %v: %w", m.Fit, ErrInvalidConfig)
	}
	if m.Cull != "" {
		if _, err := render.ParseCullMode(m.Cull); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	if m.Shading != "" {
		if _, err := render.ParseShadingMode(m.Shading); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// settings returns the initial render settings of the mesh. Translucent
// meshes default to no culling.
func (m *MeshConfig) settings() render.RenderSettings {
	s := render.DefaultSettings()
	if m.Kind == KindTranslucent {
		s.CullMode = render.CullNone
	}
	if m.Cull != "" {
		s.CullMode, _ = render.ParseCullMode(m.Cull)
	}
	if m.Shading != "" {
		s.ShadingMode, _ = render.ParseShadingMode(m.Shading)
	}
	if m.NormalMap != nil {
		s.NormalMap = *m.NormalMap
	}
	s.VisualizeDepth = m.VisualizeDepth
	s.VisualizeBounds = m.VisualizeBounds
	return s
}

func (m *MeshConfig) rotationSpeed() float64 {
	if m.RotationSpeed == nil {
		return DefaultRotationSpeed
	}
	return *m.RotationSpeed
}

func parseFilter(s string) (render.FilterMode, error) {
	switch s {
	case "", "nearest", "point":
		return render.FilterNearest, nil
	case "bilinear", "linear":
		return render.FilterBilinear, nil
	default:
		return 0, fmt.Errorf("filter %q: %w", s, ErrInvalidConfig)
	}
}
