package engine

import (
	"github.com/Faultbox/rigview/pkg/math"
)

// Skeleton viewer display modes.
const (
	DisplayLines          = "lines"
	DisplaySpheres        = "spheres"
	DisplaySphereAndSpurs = "sphere_and_spurs"
)

// SkeletonViewerOptions controls the bone overlay.
type SkeletonViewerOptions struct {
	DisplayMode     string
	SphereBaseSize  float32
	SphereScaleUnit float32
	SphereFactor    float32
	MidStep         float32
	MidStepFactor   float32
}

// DefaultSkeletonViewerOptions returns sphere-and-spurs settings tuned for
// meter-scale characters.
func DefaultSkeletonViewerOptions() SkeletonViewerOptions {
	return SkeletonViewerOptions{
		DisplayMode:     DisplaySphereAndSpurs,
		SphereBaseSize:  0.01,
		SphereScaleUnit: 15,
		SphereFactor:    0.9,
		MidStep:         0.25,
		MidStepFactor:   0.05,
	}
}

// Segment is a line between two points in world space.
type Segment struct {
	From, To math.Vec3
}

// SkeletonViewer is a debug overlay drawing the bones of one skeleton.
type SkeletonViewer struct {
	Skeleton *Skeleton
	Root     *Mesh
	Options  SkeletonViewerOptions

	enabled  bool
	disposed bool
	scene    *Scene
}

// SetEnabled toggles drawing.
func (v *SkeletonViewer) SetEnabled(enabled bool) {
	if v.disposed {
		return
	}
	v.enabled = enabled
}

// IsEnabled reports whether the overlay is drawn.
func (v *SkeletonViewer) IsEnabled() bool {
	return v.enabled && !v.disposed
}

// IsDisposed reports whether Dispose was called.
func (v *SkeletonViewer) IsDisposed() bool {
	return v.disposed
}

// Dispose removes the overlay from its scene. It releases the viewer's hold
// on the skeleton.
func (v *SkeletonViewer) Dispose() {
	if v.disposed {
		return
	}
	v.enabled = false
	v.disposed = true
	if v.scene != nil {
		v.scene.releaseViewer(v)
		v.scene = nil
	}
}

// Segments returns one segment per parented bone. Disabled viewers return
// nothing.
func (v *SkeletonViewer) Segments() []Segment {
	if !v.IsEnabled() || v.Skeleton == nil {
		return nil
	}
	var out []Segment
	for _, b := range v.Skeleton.Bones {
		if b.Parent == nil {
			continue
		}
		out = append(out, Segment{
			From: b.Parent.WorldMatrix().Translation(),
			To:   b.WorldMatrix().Translation(),
		})
	}
	return out
}

// Joints returns the world position of every bone.
func (v *SkeletonViewer) Joints() []math.Vec3 {
	if !v.IsEnabled() || v.Skeleton == nil {
		return nil
	}
	out := make([]math.Vec3, len(v.Skeleton.Bones))
	for i, b := range v.Skeleton.Bones {
		out[i] = b.WorldMatrix().Translation()
	}
	return out
}

// SphereRadius returns the joint sphere radius for a bone of the given
// length.
func (v *SkeletonViewer) SphereRadius(boneLength float32) float32 {
	o := v.Options
	return o.SphereBaseSize + boneLength*o.SphereFactor/o.SphereScaleUnit
}
