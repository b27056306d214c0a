package renderer

import (
	"github.com/Faultbox/rigview/internal/engine"
	"github.com/Faultbox/rigview/pkg/math"
)

// floatsPerVertex is position + normal.
const floatsPerVertex = 6

// MeshTriangles flattens a mesh into an unindexed triangle list of
// interleaved position and face normal, posed by the current skeleton.
// Faces referencing missing vertices are skipped. Geometry without indices
// is read as a plain triangle list.
func MeshTriangles(m *engine.Mesh) []float32 {
	positions := m.SkinnedPositions()
	if len(positions) == 0 {
		return nil
	}
	indices := m.Geometry.Indices
	count := len(indices)
	if count == 0 {
		count = len(positions) - len(positions)%3
	}

	out := make([]float32, 0, count*floatsPerVertex)
	index := func(i int) int {
		if indices == nil {
			return i
		}
		return int(indices[i])
	}
	for i := 0; i+2 < count; i += 3 {
		a, b, c := index(i), index(i+1), index(i+2)
		if a >= len(positions) || b >= len(positions) || c >= len(positions) {
			continue
		}
		pa := math.Vec3FromArray(positions[a])
		pb := math.Vec3FromArray(positions[b])
		pc := math.Vec3FromArray(positions[c])
		n := pb.Sub(pa).Cross(pc.Sub(pa)).Normalize()
		for _, p := range [3]math.Vec3{pa, pb, pc} {
			out = append(out, p.X, p.Y, p.Z, n.X, n.Y, n.Z)
		}
	}
	return out
}
