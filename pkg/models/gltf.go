package models

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/softrast/pkg/math3d"
)

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	// Options
	CalculateNormals  bool
	SmoothNormals     bool
	CalculateTangents bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals:  true,
		SmoothNormals:     true,
		CalculateTangents: true,
	}
}

// LoadGLB loads a binary or JSON GLTF file with the default options.
func LoadGLB(path string) (*Mesh, error) {
	loader := NewGLTFLoader()
	return loader.Load(path)
}

// Load loads a GLTF or GLB file and returns a Mesh. Node transforms are
// ignored; every triangle primitive of every mesh is merged into one.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))
	mesh.Materials = loadMaterials(doc, filepath.Dir(path))

	for _, m := range doc.Meshes {
		if err := l.processMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}

	l.finish(mesh)
	return mesh, nil
}

// finish fills in normals and tangents the file did not provide.
func (l *GLTFLoader) finish(mesh *Mesh) {
	hasNormals := false
	for _, v := range mesh.Vertices {
		if v.Normal.Len() > 0.001 {
			hasNormals = true
			break
		}
	}

	if l.CalculateNormals && !hasNormals {
		if l.SmoothNormals {
			mesh.CalculateSmoothNormals()
		} else {
			mesh.CalculateNormals()
		}
	}

	if l.CalculateTangents && !mesh.HasTangents() {
		mesh.CalculateTangents()
	}

	mesh.CalculateBounds()
}

// processMesh extracts geometry from a GLTF mesh.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals []math3d.Vec3
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = readVec3Accessor(doc, normIdx)
			if err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}

		// TANGENT is a VEC4; w holds the bitangent sign, which the shader
		// does not use.
		var tangents []math3d.Vec3
		if tanIdx, ok := prim.Attributes[gltf.TANGENT]; ok {
			tangents, err = readVec4AccessorXYZ(doc, tanIdx)
			if err != nil {
				return fmt.Errorf("read tangents: %w", err)
			}
		}

		var uvs []math3d.Vec2
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = readVec2Accessor(doc, uvIdx)
			if err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		material := -1
		if prim.Material != nil {
			material = *prim.Material
		}

		baseVertex := len(mesh.Vertices)

		for i := range positions {
			v := MeshVertex{
				Position: positions[i],
			}
			if i < len(normals) {
				v.Normal = normals[i]
			}
			if i < len(tangents) {
				v.Tangent = tangents[i]
			}
			if i < len(uvs) {
				// GLTF already uses a top-left UV origin
				v.UV = uvs[i]
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			// No indices, assume sequential triangles
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		// GLTF front faces wind CCW; the screen flips y, so the winding is
		// reversed to keep front faces at positive screen area.
		for i := 0; i+2 < len(indices); i += 3 {
			for _, idx := range indices[i : i+3] {
				if idx >= len(positions) {
					return fmt.Errorf("index %d out of range for %d vertices", idx, len(positions))
				}
			}
			mesh.Faces = append(mesh.Faces, Face{
				V: [3]int{
					baseVertex + indices[i],
					baseVertex + indices[i+2], // swapped
					baseVertex + indices[i+1], // swapped
				},
				Material: material,
			})
		}
	}

	return nil
}

// loadMaterials converts the document materials, decoding the base color
// and normal textures they reference. Images that cannot be decoded are
// left nil.
func loadMaterials(doc *gltf.Document, dir string) []Material {
	images := make(map[int]image.Image)
	decode := func(texture int) image.Image {
		if texture < 0 || texture >= len(doc.Textures) || doc.Textures[texture].Source == nil {
			return nil
		}
		src := *doc.Textures[texture].Source
		if img, ok := images[src]; ok {
			return img
		}
		img := decodeImage(doc, src, dir)
		images[src] = img
		return img
	}

	materials := make([]Material, len(doc.Materials))
	for i, m := range doc.Materials {
		mat := Material{
			Name:      m.Name,
			BaseColor: [4]float64{1, 1, 1, 1},
		}
		if pbr := m.PBRMetallicRoughness; pbr != nil {
			if pbr.BaseColorFactor != nil {
				mat.BaseColor = *pbr.BaseColorFactor
			}
			if pbr.BaseColorTexture != nil {
				mat.BaseMap = decode(pbr.BaseColorTexture.Index)
			}
		}
		if m.NormalTexture != nil && m.NormalTexture.Index != nil {
			mat.NormalMap = decode(*m.NormalTexture.Index)
		}
		materials[i] = mat
	}
	return materials
}

// decodeImage decodes image src from its buffer view or from a file next to
// the document.
func decodeImage(doc *gltf.Document, src int, dir string) image.Image {
	if src < 0 || src >= len(doc.Images) {
		return nil
	}
	img := doc.Images[src]

	var data []byte
	switch {
	case img.BufferView != nil:
		bv := doc.BufferViews[*img.BufferView]
		buf := doc.Buffers[bv.Buffer]
		if buf.Data == nil || bv.ByteOffset+bv.ByteLength > len(buf.Data) {
			return nil
		}
		data = buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
	case img.URI != "":
		var err error
		data, err = os.ReadFile(filepath.Join(dir, img.URI))
		if err != nil {
			return nil
		}
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	return decoded
}

// readVec3Accessor reads Vec3 data from a GLTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	floats, err := readFloats(doc, accessorIdx, gltf.AccessorVec3, 3)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec3, len(floats))
	for i, f := range floats {
		result[i] = math3d.V3(f[0], f[1], f[2])
	}
	return result, nil
}

// readVec4AccessorXYZ reads the xyz part of Vec4 data from a GLTF accessor.
func readVec4AccessorXYZ(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	floats, err := readFloats(doc, accessorIdx, gltf.AccessorVec4, 4)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec3, len(floats))
	for i, f := range floats {
		result[i] = math3d.V3(f[0], f[1], f[2])
	}
	return result, nil
}

// readVec2Accessor reads Vec2 data from a GLTF accessor.
func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec2, error) {
	floats, err := readFloats(doc, accessorIdx, gltf.AccessorVec2, 2)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec2, len(floats))
	for i, f := range floats {
		result[i] = math3d.V2(f[0], f[1])
	}
	return result, nil
}

// readFloats reads n-component float vectors from an accessor.
func readFloats(doc *gltf.Document, accessorIdx int, want gltf.AccessorType, n int) ([][4]float64, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != want {
		return nil, fmt.Errorf("expected %v, got %v", want, accessor.Type)
	}
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("unsupported component type %v", accessor.ComponentType)
	}

	data, start, stride, err := accessorBytes(doc, accessor, n*4)
	if err != nil {
		return nil, err
	}

	result := make([][4]float64, accessor.Count)
	for i := range accessor.Count {
		offset := start + i*stride
		for j := range n {
			result[i][j] = float64(readFloat32(data[offset+j*4:]))
		}
	}
	return result, nil
}

// readIndices reads index data from a GLTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR indices, got %v", accessor.Type)
	}

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index type: %v", accessor.ComponentType)
	}

	data, start, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}

	result := make([]int, accessor.Count)
	for i := range accessor.Count {
		b := data[start+i*stride:]
		switch size {
		case 1:
			result[i] = int(b[0])
		case 2:
			result[i] = int(uint16(b[0]) | uint16(b[1])<<8)
		case 4:
			result[i] = int(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24)
		}
	}
	return result, nil
}

// accessorBytes returns the buffer backing an accessor with the offset of
// its first element and the element stride. elemSize is the packed size of
// one element, used when the buffer view has no stride.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) ([]byte, int, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("accessor has no buffer view")
	}

	bufferView := doc.BufferViews[*accessor.BufferView]
	buffer := doc.Buffers[bufferView.Buffer]

	// gltf.Open loads both embedded (GLB) and external buffers
	if buffer.Data == nil {
		return nil, 0, 0, fmt.Errorf("buffer has no data")
	}

	start := bufferView.ByteOffset + accessor.ByteOffset
	stride := bufferView.ByteStride
	if stride == 0 {
		stride = elemSize
	}

	if accessor.Count > 0 {
		end := start + (accessor.Count-1)*stride + elemSize
		if end > len(buffer.Data) {
			return nil, 0, 0, fmt.Errorf("accessor reads %d bytes past a %d byte buffer", end, len(buffer.Data))
		}
	}
	return buffer.Data, start, stride, nil
}

// readFloat32 reads a little-endian float32.
func readFloat32(b []byte) float32 {
	bits := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return math.Float32frombits(bits)
}
