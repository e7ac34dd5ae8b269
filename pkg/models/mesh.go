// Package models loads triangle meshes from glTF and OBJ files and prepares
// them for the renderer.
package models

import (
	"image"
	"math"

	"github.com/taigrr/softrast/pkg/math3d"
	"github.com/taigrr/softrast/pkg/render"
)

// Mesh represents a 3D mesh with vertices, faces, and materials.
type Mesh struct {
	Name      string
	Vertices  []MeshVertex
	Faces     []Face
	Materials []Material

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// MeshVertex holds all vertex attributes.
type MeshVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	Tangent  math3d.Vec3
	UV       math3d.Vec2 // Top-left origin
}

// Face represents a triangle face with vertex indices and material reference.
// Faces wind clockwise when viewed from the front in a y-up, right-handed
// frame, which is counter-clockwise once y is flipped for the screen.
type Face struct {
	V        [3]int // Indices into Mesh.Vertices
	Material int    // Index into Mesh.Materials (-1 for no material)
}

// Material is the subset of a source material the renderer can use.
type Material struct {
	Name      string
	BaseColor [4]float64  // RGBA in 0-1 range
	BaseMap   image.Image // Optional base color texture
	NormalMap image.Image // Optional tangent-space normal map
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: make([]MeshVertex, 0),
		Faces:    make([]Face, 0),
	}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// faceNormal returns the unnormalized front-facing normal of f.
func (m *Mesh) faceNormal(f Face) math3d.Vec3 {
	v0 := m.Vertices[f.V[0]].Position
	v1 := m.Vertices[f.V[1]].Position
	v2 := m.Vertices[f.V[2]].Position
	// faces are stored clockwise, so the cross product is taken reversed
	return v2.Sub(v0).Cross(v1.Sub(v0))
}

// CalculateNormals computes face normals and assigns them to vertices.
// Vertices shared between faces keep the normal of the last face.
func (m *Mesh) CalculateNormals() {
	for _, f := range m.Faces {
		normal := m.faceNormal(f).Normalize()
		m.Vertices[f.V[0]].Normal = normal
		m.Vertices[f.V[1]].Normal = normal
		m.Vertices[f.V[2]].Normal = normal
	}
}

// CalculateSmoothNormals computes area-weighted averaged normals.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Vec3{}
	}

	for _, f := range m.Faces {
		normal := m.faceNormal(f) // Don't normalize yet
		for _, vi := range f.V {
			m.Vertices[vi].Normal = m.Vertices[vi].Normal.Add(normal)
		}
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// HasTangents reports whether any vertex carries a tangent.
func (m *Mesh) HasTangents() bool {
	for _, v := range m.Vertices {
		if v.Tangent.Len() > 0.001 {
			return true
		}
	}
	return false
}

// CalculateTangents derives per-vertex tangents from positions and UVs, the
// direction of increasing u, orthogonalized against the vertex normal.
// Faces with a degenerate UV mapping contribute nothing; vertices left
// without a tangent get an arbitrary one perpendicular to the normal.
func (m *Mesh) CalculateTangents() {
	for i := range m.Vertices {
		m.Vertices[i].Tangent = math3d.Vec3{}
	}

	for _, f := range m.Faces {
		v0 := m.Vertices[f.V[0]]
		v1 := m.Vertices[f.V[1]]
		v2 := m.Vertices[f.V[2]]

		e1 := v1.Position.Sub(v0.Position)
		e2 := v2.Position.Sub(v0.Position)
		d1 := v1.UV.Sub(v0.UV)
		d2 := v2.UV.Sub(v0.UV)

		denom := d1.Cross(d2)
		if denom == 0 {
			continue
		}
		t := e1.Scale(d2.Y / denom).Sub(e2.Scale(d1.Y / denom))

		for _, vi := range f.V {
			m.Vertices[vi].Tangent = m.Vertices[vi].Tangent.Add(t)
		}
	}

	for i := range m.Vertices {
		n := m.Vertices[i].Normal
		t := m.Vertices[i].Tangent
		t = t.Sub(n.Scale(n.Dot(t)))
		if t.Len() < 1e-6 {
			if math.Abs(n.X) < 0.9 {
				t = math3d.V3(1, 0, 0).Sub(n.Scale(n.X))
			} else {
				t = math3d.V3(0, 1, 0).Sub(n.Scale(n.Y))
			}
		}
		m.Vertices[i].Tangent = t.Normalize()
	}
}

// Clone creates a deep copy of the mesh. Material images are shared.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:      m.Name,
		Vertices:  make([]MeshVertex, len(m.Vertices)),
		Faces:     make([]Face, len(m.Faces)),
		Materials: make([]Material, len(m.Materials)),
		BoundsMin: m.BoundsMin,
		BoundsMax: m.BoundsMax,
	}
	copy(clone.Vertices, m.Vertices)
	copy(clone.Faces, m.Faces)
	copy(clone.Materials, m.Materials)
	return clone
}

// GetFaceMaterial returns the material index for face i.
// Returns -1 if no material assigned.
func (m *Mesh) GetFaceMaterial(i int) int {
	return m.Faces[i].Material
}

// GetMaterial returns the material at index i.
// Returns nil if index is out of bounds or -1.
func (m *Mesh) GetMaterial(i int) *Material {
	if i < 0 || i >= len(m.Materials) {
		return nil
	}
	return &m.Materials[i]
}

// MaterialCount returns the number of materials.
func (m *Mesh) MaterialCount() int {
	return len(m.Materials)
}

// FirstBaseMap returns the first material base color texture, or nil.
func (m *Mesh) FirstBaseMap() image.Image {
	for _, mat := range m.Materials {
		if mat.BaseMap != nil {
			return mat.BaseMap
		}
	}
	return nil
}

// FirstNormalMap returns the first material normal map, or nil.
func (m *Mesh) FirstNormalMap() image.Image {
	for _, mat := range m.Materials {
		if mat.NormalMap != nil {
			return mat.NormalMap
		}
	}
	return nil
}

// Indices flattens the faces into a triangle index list.
func (m *Mesh) Indices() []uint32 {
	indices := make([]uint32, 0, len(m.Faces)*3)
	for _, f := range m.Faces {
		indices = append(indices, uint32(f.V[0]), uint32(f.V[1]), uint32(f.V[2]))
	}
	return indices
}

// InputVertices converts the vertices to the renderer's vertex format.
func (m *Mesh) InputVertices() []render.InputVertex {
	out := make([]render.InputVertex, len(m.Vertices))
	for i, v := range m.Vertices {
		out[i] = render.InputVertex{
			Position: v.Position,
			Normal:   v.Normal,
			Tangent:  v.Tangent,
			UV:       v.UV,
		}
	}
	return out
}

// ToRender builds a drawable mesh shaded by shader.
func (m *Mesh) ToRender(shader render.Shader) *render.Mesh {
	return render.NewMesh(m.Name, m.InputVertices(), m.Indices(), shader)
}
