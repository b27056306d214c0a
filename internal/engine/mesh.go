package engine

import (
	"github.com/Faultbox/rigview/pkg/math"
)

// Geometry holds vertex data shared by meshes.
type Geometry struct {
	ID        string
	Positions [][3]float32
	Normals   [][3]float32
	Indices   []uint32
	Joints    [][4]uint16
	Weights   [][4]float32
}

// VertexCount returns the number of positions.
func (g *Geometry) VertexCount() int {
	return len(g.Positions)
}

// IsSkinned reports whether the geometry carries skin attributes for every
// vertex.
func (g *Geometry) IsSkinned() bool {
	return len(g.Positions) > 0 &&
		len(g.Joints) == len(g.Positions) &&
		len(g.Weights) == len(g.Positions)
}

// Mesh is a renderable node.
type Mesh struct {
	Node
	Geometry         *Geometry
	Skeleton         *Skeleton
	RenderingGroupID int
}

// NewMesh creates a detached mesh.
func NewMesh(name string, geom *Geometry) *Mesh {
	return &Mesh{Node: newNode(name), Geometry: geom}
}

// SkinnedPositions returns world-space vertex positions. Skinned geometry is
// deformed by the current bone pose; other geometry is transformed by the
// mesh world matrix.
func (m *Mesh) SkinnedPositions() [][3]float32 {
	if m.Geometry == nil {
		return nil
	}
	out := make([][3]float32, len(m.Geometry.Positions))

	if m.Skeleton == nil || !m.Geometry.IsSkinned() {
		world := m.WorldMatrix()
		for i, p := range m.Geometry.Positions {
			out[i] = world.TransformPoint(p)
		}
		return out
	}

	skin := m.Skeleton.SkinMatrices()
	for i, p := range m.Geometry.Positions {
		var blended math.Mat4
		total := float32(0)
		joints := m.Geometry.Joints[i]
		weights := m.Geometry.Weights[i]
		for k := 0; k < 4; k++ {
			w := weights[k]
			j := int(joints[k])
			if w == 0 || j >= len(skin) {
				continue
			}
			blended = blended.AddScaled(skin[j], w)
			total += w
		}
		if total == 0 {
			out[i] = p
			continue
		}
		out[i] = blended.TransformPoint(p)
	}
	return out
}
