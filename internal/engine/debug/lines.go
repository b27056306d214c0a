// Package debug builds line lists for viewport overlays: bounds, ground
// grid and skeleton bones. Every function returns flat [x, y, z] vertex
// pairs ready for GL_LINES.
package debug

import (
	"github.com/Faultbox/rigview/internal/engine"
	"github.com/Faultbox/rigview/pkg/math"
)

// BoundsWireframe returns the 12 edges of an axis-aligned box.
func BoundsWireframe(min, max math.Vec3) []float32 {
	return []float32{
		// bottom
		min.X, min.Y, min.Z, max.X, min.Y, min.Z,
		max.X, min.Y, min.Z, max.X, min.Y, max.Z,
		max.X, min.Y, max.Z, min.X, min.Y, max.Z,
		min.X, min.Y, max.Z, min.X, min.Y, min.Z,
		// top
		min.X, max.Y, min.Z, max.X, max.Y, min.Z,
		max.X, max.Y, min.Z, max.X, max.Y, max.Z,
		max.X, max.Y, max.Z, min.X, max.Y, max.Z,
		min.X, max.Y, max.Z, min.X, max.Y, min.Z,
		// verticals
		min.X, min.Y, min.Z, min.X, max.Y, min.Z,
		max.X, min.Y, min.Z, max.X, max.Y, min.Z,
		max.X, min.Y, max.Z, max.X, max.Y, max.Z,
		min.X, min.Y, max.Z, min.X, max.Y, max.Z,
	}
}

// GroundGrid returns a square grid on the y=0 plane with 2*cells+1 lines
// per axis, spaced step apart.
func GroundGrid(cells int, step float32) []float32 {
	if cells <= 0 || step <= 0 {
		return nil
	}
	half := float32(cells) * step
	out := make([]float32, 0, (2*cells+1)*12)
	for i := -cells; i <= cells; i++ {
		p := float32(i) * step
		out = append(out,
			p, 0, -half, p, 0, half,
			-half, 0, p, half, 0, p,
		)
	}
	return out
}

// SkeletonLines draws a skeleton viewer. Bones become segments; in the
// sphere display modes every joint also gets an axis cross sized by the
// viewer's sphere radius, and sphere_and_spurs adds a tick at MidStep along
// each bone.
func SkeletonLines(v *engine.SkeletonViewer) []float32 {
	segments := v.Segments()
	if len(segments) == 0 {
		return nil
	}
	var out []float32
	for _, s := range segments {
		out = appendSegment(out, s.From, s.To)
	}
	if v.Options.DisplayMode == engine.DisplayLines {
		return out
	}

	for _, s := range segments {
		length := s.To.Distance(s.From)
		r := v.SphereRadius(length)
		out = appendCross(out, s.To, r)
		if v.Options.DisplayMode != engine.DisplaySphereAndSpurs {
			continue
		}
		mid := s.From.Lerp(s.To, v.Options.MidStep)
		out = appendCross(out, mid, length*v.Options.MidStepFactor)
	}
	return out
}

// SceneBounds returns the world-space bounds of every mesh in the scene,
// skinned meshes in their current pose. ok is false for an empty scene.
func SceneBounds(s *engine.Scene) (min, max math.Vec3, ok bool) {
	for _, m := range s.Meshes() {
		for _, p := range m.SkinnedPositions() {
			v := math.Vec3FromArray(p)
			if !ok {
				min, max, ok = v, v, true
				continue
			}
			min = math.Vec3{X: minf(min.X, v.X), Y: minf(min.Y, v.Y), Z: minf(min.Z, v.Z)}
			max = math.Vec3{X: maxf(max.X, v.X), Y: maxf(max.Y, v.Y), Z: maxf(max.Z, v.Z)}
		}
	}
	return min, max, ok
}

func appendSegment(out []float32, a, b math.Vec3) []float32 {
	return append(out, a.X, a.Y, a.Z, b.X, b.Y, b.Z)
}

func appendCross(out []float32, c math.Vec3, r float32) []float32 {
	out = appendSegment(out, c.Sub(math.Vec3{X: r}), c.Add(math.Vec3{X: r}))
	out = appendSegment(out, c.Sub(math.Vec3{Y: r}), c.Add(math.Vec3{Y: r}))
	return appendSegment(out, c.Sub(math.Vec3{Z: r}), c.Add(math.Vec3{Z: r}))
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
