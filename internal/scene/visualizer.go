package scene

import (
	"fmt"
	"slices"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/rigview/internal/asset"
	"github.com/Faultbox/rigview/internal/engine"
)

// Visualizer mounts and unmounts models in the render scene. At most one
// model is visualized at a time.
type Visualizer struct {
	graph      Graph
	viewerOpts engine.SkeletonViewerOptions
	visualized []*asset.Model
	log        *zap.Logger
}

// NewVisualizer creates a visualizer over g.
func NewVisualizer(g Graph, viewerOpts engine.SkeletonViewerOptions, log *zap.Logger) *Visualizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Visualizer{graph: g, viewerOpts: viewerOpts, log: log}
}

// Visualized returns the mounted models.
func (v *Visualizer) Visualized() []*asset.Model {
	return slices.Clone(v.visualized)
}

// IsVisualized reports whether m is mounted.
func (v *Visualizer) IsVisualized(m *asset.Model) bool {
	return slices.Contains(v.visualized, m)
}

// Mount adds the model's resources to the scene. Human models also get a
// skeleton viewer parented to the root mesh.
func (v *Visualizer) Mount(m *asset.Model) error {
	if v.IsVisualized(m) {
		return v.fail("mount", m, fmt.Errorf("%q already visualized: %w", m.Name, ErrInvalidStateTransition))
	}
	if len(v.visualized) > 0 {
		return v.fail("mount", m, fmt.Errorf("%q while %q is visualized: %w",
			m.Name, v.visualized[0].Name, ErrInvalidStateTransition))
	}

	var (
		undo rollback
		err  error
	)
	switch m.Kind {
	case asset.KindHuman:
		err = v.mountHuman(m, &undo)
	case asset.KindPlain:
		err = v.mountShapes(m, &undo)
	default:
		err = fmt.Errorf("model %q has kind %v: %w", m.Name, m.Kind, ErrInvalidStateTransition)
	}
	if err != nil {
		return v.fail("mount", m, multierr.Append(err, undo.run()))
	}

	v.visualized = append(v.visualized, m)
	v.log.Info("model mounted",
		zap.String("model", m.Name),
		zap.Stringer("kind", m.Kind),
		zap.Int("meshes", len(m.Meshes)))
	return nil
}

// rollback holds the removals for what a failed mount already registered.
type rollback []func() error

func (r *rollback) push(undo func() error) { *r = append(*r, undo) }

// run undoes in reverse registration order.
func (r rollback) run() error {
	var err error
	for i := len(r) - 1; i >= 0; i-- {
		err = multierr.Append(err, r[i]())
	}
	return err
}

func (v *Visualizer) mountShapes(m *asset.Model, undo *rollback) error {
	for _, mesh := range m.Meshes {
		if err := v.graph.AddMesh(mesh); err != nil {
			return fmt.Errorf("mesh %q: %w", mesh.Name, err)
		}
		undo.push(func() error { return v.graph.RemoveMesh(mesh) })
	}
	for _, g := range m.Geometries {
		if err := v.graph.AddGeometry(g); err != nil {
			return fmt.Errorf("geometry %q: %w", g.ID, err)
		}
		undo.push(func() error { return v.graph.RemoveGeometry(g) })
	}
	return nil
}

func (v *Visualizer) mountHuman(m *asset.Model, undo *rollback) error {
	if m.Human == nil {
		return fmt.Errorf("human model %q without skeleton: %w", m.Name, ErrInvalidStateTransition)
	}
	if err := v.mountShapes(m, undo); err != nil {
		return err
	}
	if err := v.graph.AddSkeleton(m.Human.Skeleton); err != nil {
		return fmt.Errorf("skeleton %q: %w", m.Human.Skeleton.Name, err)
	}
	undo.push(func() error { return v.graph.RemoveSkeleton(m.Human.Skeleton) })
	for _, tn := range m.Human.TransformNodes {
		if err := v.graph.AddTransformNode(tn); err != nil {
			return fmt.Errorf("transform node %q: %w", tn.Name, err)
		}
		undo.push(func() error { return v.graph.RemoveTransformNode(tn) })
	}
	viewer, err := v.graph.CreateSkeletonViewer(m.Human.Skeleton, m.RootMesh, v.viewerOpts)
	if err != nil {
		return fmt.Errorf("skeleton viewer: %w", err)
	}
	m.Human.Viewer = viewer
	return nil
}

// Unmount removes the model's resources from the scene. Independent removal
// failures are collected and returned together.
func (v *Visualizer) Unmount(m *asset.Model) error {
	i := slices.Index(v.visualized, m)
	if i < 0 {
		return v.fail("unmount", m, fmt.Errorf("%q not visualized: %w", m.Name, ErrInvalidStateTransition))
	}

	var err error
	switch m.Kind {
	case asset.KindHuman:
		err = v.unmountHuman(m)
	case asset.KindPlain:
		err = v.unmountShapes(m)
	default:
		err = fmt.Errorf("model %q has kind %v: %w", m.Name, m.Kind, ErrInvalidStateTransition)
	}

	v.visualized = slices.Delete(v.visualized, i, i+1)
	if err != nil {
		return v.fail("unmount", m, err)
	}
	v.log.Info("model unmounted", zap.String("model", m.Name))
	return nil
}

func (v *Visualizer) unmountHuman(m *asset.Model) error {
	var err error
	if m.Human.Viewer != nil {
		m.Human.Viewer.Dispose()
		m.Human.Viewer = nil
	}
	err = multierr.Append(err, v.graph.RemoveSkeleton(m.Human.Skeleton))
	for _, tn := range m.Human.TransformNodes {
		err = multierr.Append(err, v.graph.RemoveTransformNode(tn))
	}
	return multierr.Append(err, v.unmountShapes(m))
}

func (v *Visualizer) unmountShapes(m *asset.Model) error {
	var err error
	for _, mesh := range m.Meshes {
		err = multierr.Append(err, v.graph.RemoveMesh(mesh))
	}
	for _, g := range m.Geometries {
		err = multierr.Append(err, v.graph.RemoveGeometry(g))
	}
	return err
}

// SwitchTo unmounts every visualized model and then mounts m.
func (v *Visualizer) SwitchTo(m *asset.Model) error {
	if err := v.Clear(); err != nil {
		return err
	}
	return v.Mount(m)
}

// Clear unmounts every visualized model.
func (v *Visualizer) Clear() error {
	var err error
	for _, m := range v.Visualized() {
		err = multierr.Append(err, v.Unmount(m))
	}
	return err
}

func (v *Visualizer) fail(op string, m *asset.Model, err error) error {
	v.log.Error(op+" failed", zap.String("model", m.Name), zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}
