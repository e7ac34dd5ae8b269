package render

import "fmt"

// ShadingMode selects which lighting terms the opaque shader outputs.
type ShadingMode int

const (
	ShadeCombined     ShadingMode = iota // (diffuse + specular + ambient) × observed area
	ShadeObservedArea                    // observed area as greyscale
	ShadeDiffuse                         // Lambert diffuse × observed area
	ShadeSpecular                        // Phong specular × observed area
)

// Next returns the mode after m in the cycle Combined, ObservedArea,
// Diffuse, Specular.
func (m ShadingMode) Next() ShadingMode {
	switch m {
	case ShadeCombined:
		return ShadeObservedArea
	case ShadeObservedArea:
		return ShadeDiffuse
	case ShadeDiffuse:
		return ShadeSpecular
	default:
		return ShadeCombined
	}
}

func (m ShadingMode) String() string {
	switch m {
	case ShadeCombined:
		return "Combined"
	case ShadeObservedArea:
		return "ObservedArea"
	case ShadeDiffuse:
		return "Diffuse"
	case ShadeSpecular:
		return "Specular"
	default:
		return fmt.Sprintf("ShadingMode(%d)", int(m))
	}
}

// ParseShadingMode parses the names printed by String and their lower-case
// forms.
func ParseShadingMode(s string) (ShadingMode, error) {
	switch s {
	case "Combined", "combined":
		return ShadeCombined, nil
	case "ObservedArea", "observed-area", "observedarea":
		return ShadeObservedArea, nil
	case "Diffuse", "diffuse":
		return ShadeDiffuse, nil
	case "Specular", "specular":
		return ShadeSpecular, nil
	}
	return 0, fmt.Errorf("unknown shading mode %q", s)
}

// RenderSettings controls a single draw. The renderer only reads it; callers
// change settings between frames.
type RenderSettings struct {
	CullMode        CullMode
	ShadingMode     ShadingMode
	NormalMap       bool // Perturb normals with the material's normal map
	VisualizeDepth  bool // Output depth as greyscale instead of lighting
	VisualizeBounds bool // Fill each triangle's bounding box instead of rasterizing
}

// DefaultSettings returns back-face culling, combined shading and normal
// mapping enabled.
func DefaultSettings() RenderSettings {
	return RenderSettings{
		CullMode:    CullBack,
		ShadingMode: ShadeCombined,
		NormalMap:   true,
	}
}
