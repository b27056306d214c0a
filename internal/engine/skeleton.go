package engine

import (
	"github.com/Faultbox/rigview/pkg/math"
)

// Skeleton is an ordered bone list. Bone order matches the joint indices of
// skinned geometry.
type Skeleton struct {
	Name  string
	ID    string
	Bones []*Bone
}

// NewSkeleton creates an empty skeleton.
func NewSkeleton(name, id string) *Skeleton {
	return &Skeleton{Name: name, ID: id}
}

// AddBone appends a bone and assigns its index.
func (s *Skeleton) AddBone(b *Bone) {
	b.Index = len(s.Bones)
	s.Bones = append(s.Bones, b)
}

// SkinMatrices returns one skinning matrix per bone.
func (s *Skeleton) SkinMatrices() []math.Mat4 {
	out := make([]math.Mat4, len(s.Bones))
	for i, b := range s.Bones {
		out[i] = b.SkinMatrix()
	}
	return out
}

// Bone is a skeleton joint. When linked to a transform node the bone follows
// that node; otherwise it stays in its rest pose.
type Bone struct {
	Name        string
	Index       int
	Parent      *Bone
	Rest        math.Mat4
	InverseBind math.Mat4

	node *TransformNode
}

// NewBone creates an unlinked bone with identity rest and bind matrices.
func NewBone(name string, parent *Bone) *Bone {
	return &Bone{
		Name:        name,
		Parent:      parent,
		Rest:        math.Identity(),
		InverseBind: math.Identity(),
	}
}

// LinkTransformNode makes the bone follow a transform node.
func (b *Bone) LinkTransformNode(tn *TransformNode) {
	b.node = tn
}

// TransformNode returns the linked node, or nil.
func (b *Bone) TransformNode() *TransformNode {
	return b.node
}

// WorldMatrix returns the bone's current world transform.
func (b *Bone) WorldMatrix() math.Mat4 {
	if b.node != nil {
		return b.node.WorldMatrix()
	}
	world := b.Rest
	depth := 0
	for p := b.Parent; p != nil && depth < maxHierarchyDepth; p = p.Parent {
		if p.node != nil {
			return p.node.WorldMatrix().Mul(world)
		}
		world = p.Rest.Mul(world)
		depth++
	}
	return world
}

// SkinMatrix maps bind-pose vertices to the current pose.
func (b *Bone) SkinMatrix() math.Mat4 {
	return b.WorldMatrix().Mul(b.InverseBind)
}
