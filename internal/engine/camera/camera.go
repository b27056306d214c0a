// Package camera provides the orbit camera used by the viewport.
package camera

import (
	gomath "math"

	"github.com/Faultbox/rigview/pkg/math"
)

// DefaultFovY is the vertical field of view in radians.
const DefaultFovY = 0.785398

// OrbitCamera orbits around a target point. Units are scene units (meters
// for glTF content).
type OrbitCamera struct {
	Target math.Vec3

	Distance  float32
	RotationX float32 // pitch, radians
	RotationY float32 // yaw, radians
	FovY      float32

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera returns a camera looking at the origin from the front,
// slightly above.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Target:          math.Vec3{Y: 1},
		Distance:        4,
		RotationX:       0.3,
		FovY:            DefaultFovY,
		MinDistance:     0.1,
		MaxDistance:     500,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.01,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the eye position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	cosX := float32(gomath.Cos(float64(c.RotationX)))
	sinX := float32(gomath.Sin(float64(c.RotationX)))
	cosY := float32(gomath.Cos(float64(c.RotationY)))
	sinY := float32(gomath.Sin(float64(c.RotationY)))

	return c.Target.Add(math.Vec3{
		X: c.Distance * cosX * sinY,
		Y: c.Distance * sinX,
		Z: c.Distance * cosX * cosY,
	})
}

// ViewMatrix returns the view matrix.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Target, math.Vec3{Y: 1})
}

// ProjectionMatrix returns a perspective projection for the given aspect
// ratio. Clip planes follow the orbit distance.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	near := c.Distance * 0.01
	if near < 0.001 {
		near = 0.001
	}
	return math.Perspective(c.FovY, aspect, near, c.Distance*100)
}

// HandleDrag rotates the camera by a mouse drag delta in pixels.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.RotationY -= deltaX * c.DragSensitivity
	c.RotationX += deltaY * c.DragSensitivity
	c.RotationX = clamp(c.RotationX, c.MinPitch, c.MaxPitch)
}

// HandleZoom moves the camera toward or away from the target.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = clamp(c.Distance, c.MinDistance, c.MaxDistance)
}

// FitToBounds targets the center of a bounding box and backs off until the
// whole box is in view.
func (c *OrbitCamera) FitToBounds(min, max math.Vec3) {
	c.Target = min.Add(max).Scale(0.5)
	radius := max.Sub(min).Length() / 2
	half := float64(c.FovY) / 2
	c.Distance = clamp(radius/float32(gomath.Sin(half))*1.1, c.MinDistance, c.MaxDistance)
	c.RotationX = 0.3
	c.RotationY = 0
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
