package render

import (
	"math"

	"github.com/taigrr/softrast/pkg/math3d"
)

// CameraProvider supplies the matrices and eye position a draw needs.
type CameraProvider interface {
	ViewMatrix() math3d.Mat4
	ProjectionMatrix() math3d.Mat4 // Depth range [0,1]
	Origin() math3d.Vec3
}

// Camera is a look-at camera with a perspective projection.
type Camera struct {
	// Position in world space
	Position math3d.Vec3
	// Target is the point the camera looks at
	Target math3d.Vec3

	// Projection parameters
	FOV         float64 // Vertical field of view in radians
	AspectRatio float64 // Width / Height
	Near        float64 // Near clipping plane
	Far         float64 // Far clipping plane

	// Cached matrices (computed on demand)
	viewMatrix math3d.Mat4
	projMatrix math3d.Mat4
	viewDirty  bool
	projDirty  bool
}

// NewCamera creates a camera at (0, 0, -50) looking at the origin with a 45
// degree field of view.
func NewCamera() *Camera {
	return &Camera{
		Position:    math3d.V3(0, 0, -50),
		Target:      math3d.V3(0, 0, 0),
		FOV:         math.Pi / 4,
		AspectRatio: 16.0 / 9.0,
		Near:        0.1,
		Far:         100,
		viewDirty:   true,
		projDirty:   true,
	}
}

// SetPosition sets the camera position.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.Position = pos
	c.viewDirty = true
}

// LookAt points the camera at a target.
func (c *Camera) LookAt(target math3d.Vec3) {
	c.Target = target
	c.viewDirty = true
}

// SetFOV sets the field of view (in radians).
func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
	c.projDirty = true
}

// SetAspectRatio sets the aspect ratio.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
	c.projDirty = true
}

// SetClipPlanes sets the near and far clipping planes.
func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near = near
	c.Far = far
	c.projDirty = true
}

// Origin implements CameraProvider.
func (c *Camera) Origin() math3d.Vec3 {
	return c.Position
}

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.viewMatrix = math3d.LookAt(c.Position, c.Target, math3d.Up())
		c.viewDirty = false
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		c.projMatrix = math3d.PerspectiveZO(c.FOV, c.AspectRatio, c.Near, c.Far)
		c.projDirty = false
	}
	return c.projMatrix
}

// Orbit moves the camera around its target, keeping its distance, by the
// given yaw (around world Y) and pitch angles in radians. Pitch is clamped
// short of the poles.
func (c *Camera) Orbit(deltaYaw, deltaPitch float64) {
	offset := c.Position.Sub(c.Target)
	dist := offset.Len()
	if dist == 0 {
		return
	}

	yaw := math.Atan2(offset.X, offset.Z) + deltaYaw
	pitch := math.Asin(offset.Y/dist) + deltaPitch

	const maxPitch = math.Pi/2 - 0.01
	pitch = math.Max(-maxPitch, math.Min(maxPitch, pitch))

	c.Position = c.Target.Add(math3d.V3(
		dist*math.Cos(pitch)*math.Sin(yaw),
		dist*math.Sin(pitch),
		dist*math.Cos(pitch)*math.Cos(yaw),
	))
	c.viewDirty = true
}

// Zoom moves the camera towards (positive) or away from its target, never
// closer than the near plane.
func (c *Camera) Zoom(distance float64) {
	offset := c.Position.Sub(c.Target)
	dist := offset.Len()
	if dist == 0 {
		return
	}
	next := math.Max(c.Near*2, dist-distance)
	c.Position = c.Target.Add(offset.Scale(next / dist))
	c.viewDirty = true
}
