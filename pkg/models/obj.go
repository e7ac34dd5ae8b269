package models

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/softrast/pkg/math3d"
)

// ErrUnsupportedFormat is returned by Load for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// Load loads a model, choosing the loader by file extension.
func Load(path string) (*Mesh, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb", ".gltf":
		return LoadGLB(path)
	case ".obj":
		return LoadOBJ(path)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// LoadOBJ loads a Wavefront OBJ file. Materials are not read.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	mesh, err := ParseOBJ(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return mesh, nil
}

// objKey identifies a unique position/texcoord/normal combination.
type objKey struct {
	v, vt, vn int
}

// ParseOBJ reads the v, vt, vn and f statements of an OBJ stream. Polygons
// are triangulated as fans, texture v is flipped to a top-left origin, and
// missing normals and tangents are calculated.
func ParseOBJ(r io.Reader, name string) (*Mesh, error) {
	var (
		positions []math3d.Vec3
		uvs       []math3d.Vec2
		normals   []math3d.Vec3
		hasNormal bool
	)

	mesh := NewMesh(name)
	seen := make(map[objKey]int)

	vertex := func(ref string) (int, error) {
		key, err := parseFaceRef(ref, len(positions), len(uvs), len(normals))
		if err != nil {
			return 0, err
		}
		if idx, ok := seen[key]; ok {
			return idx, nil
		}
		v := MeshVertex{Position: positions[key.v]}
		if key.vt >= 0 {
			uv := uvs[key.vt]
			v.UV = math3d.V2(uv.X, 1-uv.Y)
		}
		if key.vn >= 0 {
			v.Normal = normals[key.vn]
			hasNormal = true
		}
		seen[key] = len(mesh.Vertices)
		mesh.Vertices = append(mesh.Vertices, v)
		return seen[key], nil
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			p, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			positions = append(positions, math3d.V3(p[0], p[1], p[2]))
		case "vt":
			p, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			uvs = append(uvs, math3d.V2(p[0], p[1]))
		case "vn":
			p, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			normals = append(normals, math3d.V3(p[0], p[1], p[2]))
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face with %d vertices", lineNo, len(fields)-1)
			}
			poly := make([]int, len(fields)-1)
			for i, ref := range fields[1:] {
				idx, err := vertex(ref)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				poly[i] = idx
			}
			// fan, with the CCW winding reversed as for glTF
			for i := 1; i+1 < len(poly); i++ {
				mesh.Faces = append(mesh.Faces, Face{
					V:        [3]int{poly[0], poly[i+1], poly[i]},
					Material: -1,
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if !hasNormal {
		mesh.CalculateSmoothNormals()
	}
	mesh.CalculateTangents()
	mesh.CalculateBounds()
	return mesh, nil
}

// parseFloats parses the first n fields as floats.
func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(fields))
	}
	out := make([]float64, n)
	for i := range n {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// parseFaceRef parses a v, v/vt, v//vn or v/vt/vn reference into zero-based
// indices, -1 for an absent component. Negative references count back from
// the end of the lists read so far.
func parseFaceRef(ref string, nv, nvt, nvn int) (objKey, error) {
	parts := strings.Split(ref, "/")
	if len(parts) > 3 {
		return objKey{}, fmt.Errorf("bad face reference %q", ref)
	}

	key := objKey{v: -1, vt: -1, vn: -1}
	targets := []*int{&key.v, &key.vt, &key.vn}
	counts := []int{nv, nvt, nvn}
	for i, p := range parts {
		if p == "" {
			if i == 0 {
				return objKey{}, fmt.Errorf("bad face reference %q", ref)
			}
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return objKey{}, fmt.Errorf("bad face reference %q: %w", ref, err)
		}
		switch {
		case n > 0:
			n--
		case n < 0:
			n += counts[i]
		default:
			return objKey{}, fmt.Errorf("zero index in face reference %q", ref)
		}
		if n < 0 || n >= counts[i] {
			return objKey{}, fmt.Errorf("face reference %q out of range", ref)
		}
		*targets[i] = n
	}
	return key, nil
}
