package render

import "fmt"

// CullMode selects which winding survives the facing test.
type CullMode int

const (
	// CullBack keeps triangles with positive screen-space signed area.
	CullBack CullMode = iota
	// CullFront keeps triangles with negative screen-space signed area.
	CullFront
	// CullNone keeps both windings.
	CullNone
)

// Next returns the mode after m in the cycle Back, Front, None.
func (m CullMode) Next() CullMode {
	switch m {
	case CullBack:
		return CullFront
	case CullFront:
		return CullNone
	default:
		return CullBack
	}
}

func (m CullMode) String() string {
	switch m {
	case CullBack:
		return "BackFace"
	case CullFront:
		return "FrontFace"
	case CullNone:
		return "None"
	default:
		return fmt.Sprintf("CullMode(%d)", int(m))
	}
}

// ParseCullMode parses the names printed by String, case-sensitively, as
// well as the short forms "back", "front" and "none".
func ParseCullMode(s string) (CullMode, error) {
	switch s {
	case "BackFace", "back":
		return CullBack, nil
	case "FrontFace", "front":
		return CullFront, nil
	case "None", "none":
		return CullNone, nil
	}
	return 0, fmt.Errorf("unknown cull mode %q", s)
}

// Keeps reports whether a triangle with signed double area a survives the
// facing test. Zero area is always rejected.
func (m CullMode) Keeps(a float64) bool {
	switch m {
	case CullBack:
		return a > 0
	case CullFront:
		return a < 0
	default:
		return a != 0
	}
}

// IsDegenerate reports whether a triangle repeats any index.
func IsDegenerate(i0, i1, i2 uint32) bool {
	return i0 == i1 || i1 == i2 || i0 == i2
}

// InFrustum reports whether all three vertices lie inside the NDC volume
// [-1,1]x[-1,1]x[0,1]. There is no clipping: a triangle with any vertex
// outside is dropped whole, even if part of it would be visible.
func InFrustum(v0, v1, v2 *ShadedVertex) bool {
	return ndcInside(v0) && ndcInside(v1) && ndcInside(v2)
}

func ndcInside(v *ShadedVertex) bool {
	p := v.Position
	return p.X >= -1 && p.X <= 1 &&
		p.Y >= -1 && p.Y <= 1 &&
		p.Z >= 0 && p.Z <= 1
}
