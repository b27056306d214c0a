package scene

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/rigview/internal/anim"
	"github.com/Faultbox/rigview/internal/asset"
	"github.com/Faultbox/rigview/internal/engine"
)

// DefaultExclude lists the node name fragments dropped from exports.
var DefaultExclude = []string{"joint", "ground", "scene"}

// ExcludeFilter returns a node filter rejecting names that contain any of
// the given substrings. Matching is case-sensitive.
func ExcludeFilter(exclude []string) func(*engine.Node) bool {
	return func(n *engine.Node) bool {
		for _, s := range exclude {
			if s != "" && strings.Contains(n.Name, s) {
				return false
			}
		}
		return true
	}
}

// Exporter writes the visualized model with one motion applied.
type Exporter struct {
	scene      *engine.Scene
	visualizer *Visualizer
	encoder    Encoder
	exclude    []string
	log        *zap.Logger
}

// NewExporter creates an exporter. A nil exclude list uses DefaultExclude.
func NewExporter(s *engine.Scene, vis *Visualizer, enc Encoder, exclude []string, log *zap.Logger) *Exporter {
	if exclude == nil {
		exclude = DefaultExclude
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{scene: s, visualizer: vis, encoder: enc, exclude: exclude, log: log}
}

// Export encodes the scene with only the given motion attached. The skeleton
// viewer and the scene's own animation groups are restored once encoding has
// finished, whether it succeeded or not.
func (e *Exporter) Export(ctx context.Context, motion *asset.Motion) (Artifact, error) {
	model := e.ownerOf(motion)
	if model == nil {
		return nil, fmt.Errorf("export %q: %w", motion.Name, ErrNotVisualized)
	}

	if model.Human != nil && model.Human.Viewer != nil {
		viewer := model.Human.Viewer
		viewer.SetEnabled(false)
		defer viewer.SetEnabled(true)
	}

	detached := e.scene.AnimationGroups()
	for _, g := range detached {
		if err := e.scene.RemoveAnimationGroup(g); err != nil {
			return nil, fmt.Errorf("export %q: %w", motion.Name, err)
		}
	}
	defer func() {
		for _, g := range detached {
			if g.IsDisposed() {
				continue
			}
			if err := e.scene.AddAnimationGroup(g); err != nil {
				e.log.Error("reattach animation group", zap.String("group", g.Name), zap.Error(err))
			}
		}
	}()

	group, err := anim.Reconstruct(e.scene, motion, anim.DefaultFPS)
	if err != nil {
		return nil, fmt.Errorf("export %q: %w", motion.Name, err)
	}
	defer group.Dispose()

	art, err := e.encoder.Encode(ctx, e.scene, model.Name, engine.ExportOptions{
		ShouldExportNode: ExcludeFilter(e.exclude),
	})
	if err != nil {
		e.log.Error("export failed", zap.String("motion", motion.Name), zap.Error(err))
		return nil, fmt.Errorf("export %q: %w: %w", motion.Name, ErrEncodeFailure, err)
	}

	e.log.Info("motion exported",
		zap.String("model", model.Name),
		zap.String("motion", motion.Name),
		zap.Int("bytes", len(art.Bytes())))
	return art, nil
}

func (e *Exporter) ownerOf(motion *asset.Motion) *asset.Model {
	for _, m := range e.visualizer.Visualized() {
		if m.ID == motion.ModelID {
			return m
		}
	}
	return nil
}
