package render

import (
	"errors"
	"fmt"
	"image/color"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/softrast/pkg/math3d"
)

// ErrBufferSize is returned when a color or depth buffer does not match the
// renderer's dimensions.
var ErrBufferSize = errors.New("buffer size mismatch")

const (
	vertexChunk   = 1024 // vertices per vertex-stage task
	triangleChunk = 256  // triangles per setup task
)

// FrameStats counts what happened to the triangles drawn since the last
// BeginFrame.
type FrameStats struct {
	Meshes         int   // Meshes submitted
	MeshesCulled   int   // Meshes skipped because their bounds were outside the view
	Triangles      int   // Triangles in meshes that reached the vertex stage
	Degenerate     int   // Triangles with a repeated index
	OutsideFrustum int   // Triangles with a vertex outside the NDC volume
	FacingCulled   int   // Triangles rejected by the cull mode or with zero area
	Rasterized     int   // Triangles that reached scan conversion
	Fragments      int64 // Pixels that passed the depth test and were shaded
}

// Draw pairs a mesh with the settings it is drawn with.
type Draw struct {
	Mesh     *Mesh
	Settings RenderSettings
}

// Renderer owns a color buffer and a depth buffer and rasterizes meshes into
// them. Draw calls fan out across goroutines internally but a Renderer must
// not be used from more than one goroutine at a time.
type Renderer struct {
	width, height int
	fb            *Framebuffer
	depth         *DepthBuffer
	workers       int
	tiles         []tile

	// per-draw scratch, reused across frames
	vertices  []ShadedVertex
	triangles []triangle
	live      []int

	stats FrameStats
}

// NewRenderer creates a renderer with its own buffers. workers <= 0 uses
// GOMAXPROCS.
func NewRenderer(width, height, workers int) *Renderer {
	r, _ := NewRendererWithBuffers(NewFramebuffer(width, height), NewDepthBuffer(width, height), workers)
	return r
}

// NewRendererWithBuffers creates a renderer drawing into caller-owned
// buffers, which must have the same dimensions.
func NewRendererWithBuffers(fb *Framebuffer, depth *DepthBuffer, workers int) (*Renderer, error) {
	if fb.Width != depth.Width || fb.Height != depth.Height ||
		len(fb.Pixels) != fb.Width*fb.Height || len(depth.Values) != depth.Width*depth.Height {
		return nil, fmt.Errorf("color %dx%d, depth %dx%d: %w",
			fb.Width, fb.Height, depth.Width, depth.Height, ErrBufferSize)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Renderer{
		width:   fb.Width,
		height:  fb.Height,
		fb:      fb,
		depth:   depth,
		workers: workers,
		tiles:   tiles(fb.Width, fb.Height),
	}, nil
}

// Resize replaces both buffers with new ones of the given size.
func (r *Renderer) Resize(width, height int) {
	if width == r.width && height == r.height {
		return
	}
	r.width, r.height = width, height
	r.fb = NewFramebuffer(width, height)
	r.depth = NewDepthBuffer(width, height)
	r.tiles = tiles(width, height)
}

// Width returns the framebuffer width.
func (r *Renderer) Width() int { return r.width }

// Height returns the framebuffer height.
func (r *Renderer) Height() int { return r.height }

// Framebuffer returns the color buffer.
func (r *Renderer) Framebuffer() *Framebuffer { return r.fb }

// Depth returns the depth buffer.
func (r *Renderer) Depth() *DepthBuffer { return r.depth }

// Stats returns the counters for the current frame.
func (r *Renderer) Stats() FrameStats { return r.stats }

// BeginFrame clears the color buffer to background, the depth buffer to
// +Inf, and the frame statistics.
func (r *Renderer) BeginFrame(background color.RGBA) {
	r.fb.Clear(background)
	r.depth.Clear()
	r.stats = FrameStats{}
}

// RenderFrame clears both buffers and draws each mesh in order. Opaque
// meshes should come before translucent ones. It stops at the first draw
// that fails its preconditions.
func (r *Renderer) RenderFrame(cam CameraProvider, background color.RGBA, draws ...Draw) error {
	r.BeginFrame(background)
	for _, d := range draws {
		if err := r.DrawMesh(d.Mesh, cam, d.Settings); err != nil {
			return err
		}
	}
	s := r.stats
	Logger().Debug("frame",
		"meshes", s.Meshes,
		"meshes_culled", s.MeshesCulled,
		"triangles", s.Triangles,
		"degenerate", s.Degenerate,
		"outside_frustum", s.OutsideFrustum,
		"facing_culled", s.FacingCulled,
		"rasterized", s.Rasterized,
		"fragments", s.Fragments,
	)
	return nil
}

// DrawMesh runs one mesh through the pipeline into the current frame.
// Precondition failures are returned before any pixel is written.
func (r *Renderer) DrawMesh(m *Mesh, cam CameraProvider, s RenderSettings) error {
	if err := r.validate(m, &s); err != nil {
		Logger().Warn("draw rejected", "mesh", m.Name, "err", err)
		return fmt.Errorf("draw %q: %w", m.Name, err)
	}

	r.stats.Meshes++
	view, proj := cam.ViewMatrix(), cam.ProjectionMatrix()

	if m.HasBounds {
		f := NewFrustumFromMatrix(proj.Mul(view))
		if !f.IntersectAABB(m.Bounds.Transform(m.World)) {
			r.stats.MeshesCulled++
			return nil
		}
	}

	r.transform(m, view, proj, cam.Origin())
	r.setup(m, s.CullMode)
	r.rasterize(m.Shader, &s)
	return nil
}

func (r *Renderer) validate(m *Mesh, s *RenderSettings) error {
	if len(r.fb.Pixels) != r.width*r.height || len(r.depth.Values) != r.width*r.height {
		return ErrBufferSize
	}
	if err := m.Validate(); err != nil {
		return err
	}
	return m.Shader.Validate(s)
}

// transform runs the vertex stage over fixed-size chunks in parallel.
func (r *Renderer) transform(m *Mesh, view, proj math3d.Mat4, eye math3d.Vec3) {
	n := len(m.Vertices)
	if cap(r.vertices) < n {
		r.vertices = make([]ShadedVertex, n)
	}
	r.vertices = r.vertices[:n]

	var g errgroup.Group
	g.SetLimit(r.workers)
	for lo := 0; lo < n; lo += vertexChunk {
		hi := min(lo+vertexChunk, n)
		g.Go(func() error {
			TransformVertices(r.vertices[lo:hi], m.Vertices[lo:hi], m.World, view, proj, eye)
			return nil
		})
	}
	_ = g.Wait()
}

// setup prepares every triangle in parallel, each task writing only its own
// slots, then collects the survivors in index order.
func (r *Renderer) setup(m *Mesh, cull CullMode) {
	n := m.TriangleCount()
	if cap(r.triangles) < n {
		r.triangles = make([]triangle, n)
	}
	r.triangles = r.triangles[:n]

	var g errgroup.Group
	g.SetLimit(r.workers)
	for lo := 0; lo < n; lo += triangleChunk {
		hi := min(lo+triangleChunk, n)
		g.Go(func() error {
			for t := lo; t < hi; t++ {
				idx := m.Indices[3*t : 3*t+3]
				r.triangles[t] = setupTriangle(r.vertices, idx[0], idx[1], idx[2], r.width, r.height, cull)
			}
			return nil
		})
	}
	_ = g.Wait()

	r.live = r.live[:0]
	r.stats.Triangles += n
	for i := range r.triangles {
		switch r.triangles[i].state {
		case triDegenerate:
			r.stats.Degenerate++
		case triOutside:
			r.stats.OutsideFrustum++
		case triFacing:
			r.stats.FacingCulled++
		default:
			r.stats.Rasterized++
			r.live = append(r.live, i)
		}
	}
}

// rasterize hands each tile to one goroutine. Every tile walks the live
// triangles in index order, so the result matches a serial render.
func (r *Renderer) rasterize(shader Shader, s *RenderSettings) {
	if len(r.live) == 0 {
		return
	}

	var fragments atomic.Int64
	var g errgroup.Group
	g.SetLimit(r.workers)
	for _, tl := range r.tiles {
		g.Go(func() error {
			fragments.Add(int64(r.drawTile(tl, shader, s)))
			return nil
		})
	}
	_ = g.Wait()
	r.stats.Fragments += fragments.Load()
}

func (r *Renderer) drawTile(tl tile, shader Shader, s *RenderSettings) int {
	shaded := 0
	writesDepth := shader.WritesDepth()

	for _, ti := range r.live {
		t := &r.triangles[ti]
		x0, y0, x1, y1, ok := tl.clip(t.x0, t.y0, t.x1, t.y1)
		if !ok {
			continue
		}

		if s.VisualizeBounds {
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					r.fb.Overwrite(y*r.width+x, White)
				}
			}
			continue
		}

		v0, v1, v2 := &r.vertices[t.idx[0]], &r.vertices[t.idx[1]], &r.vertices[t.idx[2]]
		z := [3]float64{v0.Position.Z, v1.Position.Z, v2.Position.Z}

		for y := y0; y < y1; y++ {
			py := float64(y) + 0.5
			for x := x0; x < x1; x++ {
				px := float64(x) + 0.5

				e, inside := t.coverage(px, py)
				if !inside {
					continue
				}

				w := Weights(e, t.area)
				depth := InterpolateDepth(w, z)

				i := y*r.width + x
				if writesDepth {
					if !r.depth.TestOpaque(i, depth) {
						continue
					}
				} else if !r.depth.TestTranslucent(i, depth) {
					continue
				}

				frag := Interpolate(w, v0, v1, v2, x, y, depth)
				c := shader.Shade(&frag, s)
				if writesDepth {
					r.fb.Overwrite(i, c)
				} else {
					r.fb.Blend(i, c)
				}
				shaded++
			}
		}
	}
	return shaded
}
