// Package asset holds the imported asset records: models and the motions
// extracted from their animation clips.
package asset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/rigview/internal/engine"
	"github.com/Faultbox/rigview/internal/ident"
)

var (
	ErrEmptySkeletonAsset = errors.New("skeleton asset has no meshes")
	ErrEmptyMeshAsset     = errors.New("mesh asset has no meshes")
)

// Kind distinguishes rigged models from static ones.
type Kind int

const (
	KindPlain Kind = iota
	KindHuman
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindHuman:
		return "human"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// HumanParts is the skeleton data carried only by human models.
type HumanParts struct {
	Skeleton       *engine.Skeleton
	Bones          []*engine.Bone
	TransformNodes []*engine.TransformNode

	// Viewer is set while the model is visualized.
	Viewer *engine.SkeletonViewer
}

// Model is an imported asset. Meshes and nodes are references into the
// decoded container; the model does not own them.
type Model struct {
	ID        ident.ID
	Name      string
	Extension string
	Kind      Kind

	RootMesh   *engine.Mesh
	Meshes     []*engine.Mesh
	Geometries []*engine.Geometry
	Motions    []*Motion

	// Human is non-nil iff Kind is KindHuman.
	Human *HumanParts
}

// SplitFileName splits at the last '.'. A name without a dot has an empty
// extension.
func SplitFileName(fileName string) (name, ext string) {
	i := strings.LastIndexByte(fileName, '.')
	if i < 0 {
		return fileName, ""
	}
	return fileName[:i], fileName[i+1:]
}

// NewModel builds a model from a decoded container. Every animation group in
// the container is stopped and captured as a Motion.
func NewModel(fileName string, c *engine.Container) (*Model, error) {
	name, ext := SplitFileName(fileName)
	m := &Model{
		ID:         ident.New(),
		Name:       name,
		Extension:  ext,
		Meshes:     c.Meshes,
		Geometries: c.Geometries,
	}

	if len(c.Skeletons) > 0 && len(c.Skeletons[0].Bones) >= 1 {
		if len(c.Meshes) == 0 {
			return nil, fmt.Errorf("%s: %w", fileName, ErrEmptySkeletonAsset)
		}
		skel := c.Skeletons[0]
		m.Kind = KindHuman
		m.Human = &HumanParts{
			Skeleton:       skel,
			Bones:          skel.Bones,
			TransformNodes: c.TransformNodes,
		}
	} else if len(c.Meshes) == 0 {
		return nil, fmt.Errorf("%s: %w", fileName, ErrEmptyMeshAsset)
	}
	m.RootMesh = c.Meshes[0]

	for _, g := range c.AnimationGroups {
		g.Stop()
	}
	for _, g := range c.AnimationGroups {
		m.Motions = append(m.Motions, ExtractMotion(m.ID, g))
	}
	return m, nil
}

// Motion returns the owned motion with the given id.
func (m *Model) Motion(id ident.ID) (*Motion, bool) {
	for _, mo := range m.Motions {
		if mo.ID == id {
			return mo, true
		}
	}
	return nil, false
}

// IsHuman reports whether the model carries a skeleton.
func (m *Model) IsHuman() bool {
	return m.Kind == KindHuman
}

// Stats summarizes a model for display.
type Stats struct {
	Meshes         int
	Geometries     int
	Bones          int
	TransformNodes int
	Motions        int
}

// Stats counts the model's resources.
func (m *Model) Stats() Stats {
	s := Stats{
		Meshes:     len(m.Meshes),
		Geometries: len(m.Geometries),
		Motions:    len(m.Motions),
	}
	if m.Human != nil {
		s.Bones = len(m.Human.Bones)
		s.TransformNodes = len(m.Human.TransformNodes)
	}
	return s
}
