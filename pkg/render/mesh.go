package render

import (
	"errors"
	"fmt"

	"github.com/taigrr/softrast/pkg/math3d"
)

// Precondition errors returned by DrawMesh before any pixel is touched.
var (
	ErrIndexCount = errors.New("index count is not a multiple of 3")
	ErrIndexRange = errors.New("index out of range")
	ErrNoShader   = errors.New("mesh has no shader")
)

// Mesh is an indexed triangle list ready to draw.
type Mesh struct {
	Name     string
	Vertices []InputVertex
	Indices  []uint32 // Three per triangle
	World    math3d.Mat4
	Shader   Shader

	// Bounds is the object-space box of Vertices. When set, a mesh whose
	// transformed box lies wholly outside the view volume is skipped before
	// the vertex stage.
	Bounds    AABB
	HasBounds bool
}

// NewMesh creates a mesh with an identity world transform and computed
// bounds.
func NewMesh(name string, vertices []InputVertex, indices []uint32, shader Shader) *Mesh {
	m := &Mesh{
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
		World:    math3d.Identity(),
		Shader:   shader,
	}
	m.CalculateBounds()
	return m
}

// CalculateBounds recomputes Bounds from the vertex positions.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		m.Bounds, m.HasBounds = AABB{}, false
		return
	}
	lo, hi := m.Vertices[0].Position, m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		lo = lo.Min(v.Position)
		hi = hi.Max(v.Position)
	}
	m.Bounds, m.HasBounds = NewAABB(lo, hi), true
}

// TriangleCount returns the number of triangles in the index list.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Validate checks the index list and shader.
func (m *Mesh) Validate() error {
	if m.Shader == nil {
		return ErrNoShader
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%d indices: %w", len(m.Indices), ErrIndexCount)
	}
	n := uint32(len(m.Vertices))
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("index %d at position %d, %d vertices: %w", idx, i, n, ErrIndexRange)
		}
	}
	return nil
}
