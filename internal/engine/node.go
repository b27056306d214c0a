// Package engine is a headless retained-mode scene graph: nodes, meshes,
// skeletons, keyframe animations and the registries a render loop draws from.
//
// Resources are created detached and only become visible once registered in
// a Scene. Registration is explicit and checked; registering a resource twice
// or removing one that is absent is an error rather than a silent no-op.
package engine

import (
	"fmt"

	"github.com/Faultbox/rigview/pkg/math"
)

// Animatable property names understood by Node.SetProperty.
const (
	PropertyPosition           = "position"
	PropertyRotation           = "rotation"
	PropertyRotationQuaternion = "rotationQuaternion"
	PropertyScaling            = "scaling"
)

// maxHierarchyDepth bounds parent walks so a malformed cycle cannot hang the
// render loop.
const maxHierarchyDepth = 256

// Node is a transformable element of the scene hierarchy.
// Rotation holds euler angles in radians and is ignored while
// RotationQuaternion is set.
type Node struct {
	Name               string
	Parent             *Node
	Position           math.Vec3
	Rotation           math.Vec3
	RotationQuaternion *math.Quat
	Scaling            math.Vec3
}

// NewNode creates a detached node with unit scale.
func NewNode(name string) *Node {
	n := newNode(name)
	return &n
}

func newNode(name string) Node {
	return Node{Name: name, Scaling: math.Vec3One}
}

// SetProperty writes an animatable property.
func (n *Node) SetProperty(property string, v Value) error {
	switch property {
	case PropertyPosition:
		n.Position = v.Vec3()
	case PropertyRotation:
		n.Rotation = v.Vec3()
	case PropertyRotationQuaternion:
		q := v.Quat()
		n.RotationQuaternion = &q
	case PropertyScaling:
		n.Scaling = v.Vec3()
	default:
		return fmt.Errorf("%s on node %q: %w", property, n.Name, ErrUnknownProperty)
	}
	return nil
}

// Property reads an animatable property.
func (n *Node) Property(property string) (Value, error) {
	switch property {
	case PropertyPosition:
		return VectorValue(n.Position), nil
	case PropertyRotation:
		return VectorValue(n.Rotation), nil
	case PropertyRotationQuaternion:
		return QuaternionValue(n.Orientation()), nil
	case PropertyScaling:
		return VectorValue(n.Scaling), nil
	}
	return Value{}, fmt.Errorf("%s on node %q: %w", property, n.Name, ErrUnknownProperty)
}

// Orientation returns the effective rotation of the node.
func (n *Node) Orientation() math.Quat {
	if n.RotationQuaternion != nil {
		return *n.RotationQuaternion
	}
	return math.QuatFromEuler(n.Rotation)
}

// LocalMatrix returns translation * rotation * scale.
func (n *Node) LocalMatrix() math.Mat4 {
	return math.Compose(n.Position, n.Orientation(), n.Scaling)
}

// WorldMatrix composes the local matrices of the node and its ancestors.
func (n *Node) WorldMatrix() math.Mat4 {
	world := n.LocalMatrix()
	depth := 0
	for p := n.Parent; p != nil && p != n && depth < maxHierarchyDepth; p = p.Parent {
		world = p.LocalMatrix().Mul(world)
		depth++
	}
	return world
}

// IsDescendantOf reports whether ancestor appears in the parent chain.
func (n *Node) IsDescendantOf(ancestor *Node) bool {
	depth := 0
	for p := n.Parent; p != nil && depth < maxHierarchyDepth; p = p.Parent {
		if p == ancestor {
			return true
		}
		depth++
	}
	return false
}

// TransformNode is a node without geometry: skeleton joints, pivots and
// grouping nodes.
type TransformNode struct {
	Node
}

// NewTransformNode creates a detached transform node.
func NewTransformNode(name string) *TransformNode {
	return &TransformNode{Node: newNode(name)}
}
