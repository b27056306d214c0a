package engine

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrAlreadyRegistered = errors.New("already registered")
	ErrNotRegistered     = errors.New("not registered")
	ErrSkeletonInUse     = errors.New("skeleton referenced by a live viewer")
	ErrUnknownProperty   = errors.New("unknown property")
)

func isAnimatable(property string) bool {
	switch property {
	case PropertyPosition, PropertyRotation, PropertyRotationQuaternion, PropertyScaling:
		return true
	}
	return false
}

type registry[T comparable] struct {
	kind  string
	items []T
}

func (r *registry[T]) add(item T) error {
	if slices.Contains(r.items, item) {
		return fmt.Errorf("%s: %w", r.kind, ErrAlreadyRegistered)
	}
	r.items = append(r.items, item)
	return nil
}

func (r *registry[T]) remove(item T) error {
	i := slices.Index(r.items, item)
	if i < 0 {
		return fmt.Errorf("%s: %w", r.kind, ErrNotRegistered)
	}
	r.items = slices.Delete(r.items, i, i+1)
	return nil
}

func (r *registry[T]) contains(item T) bool {
	return slices.Contains(r.items, item)
}

func (r *registry[T]) list() []T {
	return slices.Clone(r.items)
}

// Scene is the set of resources a render loop draws and animates.
type Scene struct {
	meshes         registry[*Mesh]
	geometries     registry[*Geometry]
	skeletons      registry[*Skeleton]
	transformNodes registry[*TransformNode]
	groups         registry[*AnimationGroup]
	viewers        registry[*SkeletonViewer]
}

// NewScene creates an empty scene.
func NewScene() *Scene {
	return &Scene{
		meshes:         registry[*Mesh]{kind: "mesh"},
		geometries:     registry[*Geometry]{kind: "geometry"},
		skeletons:      registry[*Skeleton]{kind: "skeleton"},
		transformNodes: registry[*TransformNode]{kind: "transform node"},
		groups:         registry[*AnimationGroup]{kind: "animation group"},
		viewers:        registry[*SkeletonViewer]{kind: "skeleton viewer"},
	}
}

func (s *Scene) AddMesh(m *Mesh) error            { return s.meshes.add(m) }
func (s *Scene) RemoveMesh(m *Mesh) error         { return s.meshes.remove(m) }
func (s *Scene) HasMesh(m *Mesh) bool             { return s.meshes.contains(m) }
func (s *Scene) Meshes() []*Mesh                  { return s.meshes.list() }
func (s *Scene) AddGeometry(g *Geometry) error    { return s.geometries.add(g) }
func (s *Scene) RemoveGeometry(g *Geometry) error { return s.geometries.remove(g) }
func (s *Scene) HasGeometry(g *Geometry) bool     { return s.geometries.contains(g) }
func (s *Scene) Geometries() []*Geometry          { return s.geometries.list() }
func (s *Scene) AddSkeleton(sk *Skeleton) error   { return s.skeletons.add(sk) }
func (s *Scene) HasSkeleton(sk *Skeleton) bool    { return s.skeletons.contains(sk) }
func (s *Scene) Skeletons() []*Skeleton           { return s.skeletons.list() }
func (s *Scene) AddTransformNode(t *TransformNode) error {
	return s.transformNodes.add(t)
}
func (s *Scene) RemoveTransformNode(t *TransformNode) error {
	return s.transformNodes.remove(t)
}
func (s *Scene) HasTransformNode(t *TransformNode) bool { return s.transformNodes.contains(t) }
func (s *Scene) TransformNodes() []*TransformNode       { return s.transformNodes.list() }

// RemoveSkeleton deregisters a skeleton. It fails while a live viewer still
// draws it.
func (s *Scene) RemoveSkeleton(sk *Skeleton) error {
	for _, v := range s.viewers.items {
		if v.Skeleton == sk {
			return fmt.Errorf("skeleton %q: %w", sk.Name, ErrSkeletonInUse)
		}
	}
	return s.skeletons.remove(sk)
}

// AddAnimationGroup registers a group so Advance ticks it.
func (s *Scene) AddAnimationGroup(g *AnimationGroup) error {
	if err := s.groups.add(g); err != nil {
		return err
	}
	g.scene = s
	return nil
}

// RemoveAnimationGroup detaches a group without disposing it.
func (s *Scene) RemoveAnimationGroup(g *AnimationGroup) error {
	if err := s.groups.remove(g); err != nil {
		return err
	}
	g.scene = nil
	return nil
}

// AnimationGroups returns the registered groups.
func (s *Scene) AnimationGroups() []*AnimationGroup { return s.groups.list() }

// CreateSkeletonViewer attaches an enabled overlay for a registered skeleton.
func (s *Scene) CreateSkeletonViewer(sk *Skeleton, root *Mesh, opts SkeletonViewerOptions) (*SkeletonViewer, error) {
	if !s.skeletons.contains(sk) {
		return nil, fmt.Errorf("viewer for skeleton %q: %w", sk.Name, ErrNotRegistered)
	}
	v := &SkeletonViewer{Skeleton: sk, Root: root, Options: opts, enabled: true, scene: s}
	if err := s.viewers.add(v); err != nil {
		return nil, err
	}
	return v, nil
}

// SkeletonViewers returns the live overlays.
func (s *Scene) SkeletonViewers() []*SkeletonViewer { return s.viewers.list() }

func (s *Scene) releaseViewer(v *SkeletonViewer) {
	_ = s.viewers.remove(v)
}

// Advance ticks every registered group by dt seconds.
func (s *Scene) Advance(dt float32) {
	for _, g := range s.groups.list() {
		g.Advance(dt)
	}
}

// Nodes returns every registered mesh and transform node.
func (s *Scene) Nodes() []*Node {
	out := make([]*Node, 0, len(s.meshes.items)+len(s.transformNodes.items))
	for _, m := range s.meshes.items {
		out = append(out, &m.Node)
	}
	for _, t := range s.transformNodes.items {
		out = append(out, &t.Node)
	}
	return out
}
