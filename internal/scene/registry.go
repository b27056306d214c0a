package scene

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/rigview/internal/asset"
	"github.com/Faultbox/rigview/internal/ident"
)

// Registry keeps every imported model and motion in insertion order.
type Registry struct {
	decoder    Decoder
	visualizer *Visualizer
	log        *zap.Logger

	models  []*asset.Model
	motions []*asset.Motion
}

// NewRegistry creates an empty registry. visualizer may be nil for headless
// use; Visualize then fails.
func NewRegistry(dec Decoder, visualizer *Visualizer, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{decoder: dec, visualizer: visualizer, log: log}
}

// Decodable reports whether a file name has an extension the decoder reads.
func Decodable(fileName string) bool {
	_, ext := asset.SplitFileName(fileName)
	switch strings.ToLower(ext) {
	case "glb", "gltf":
		return true
	}
	return false
}

// Load decodes a file into a model without registering it.
func (r *Registry) Load(ctx context.Context, fileName string, src io.Reader) (*asset.Model, error) {
	if !Decodable(fileName) {
		return nil, fmt.Errorf("load %s: %w", fileName, ErrUnsupportedExtension)
	}
	c, err := r.decoder.Decode(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w: %w", fileName, ErrDecodeFailure, err)
	}
	m, err := asset.NewModel(fileName, c)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", fileName, err)
	}
	return m, nil
}

// Add registers a model and its motions.
func (r *Registry) Add(m *asset.Model) {
	r.models = append(r.models, m)
	r.motions = append(r.motions, m.Motions...)
	r.log.Info("model imported",
		zap.String("model", m.Name),
		zap.String("id", m.ID.String()),
		zap.Stringer("kind", m.Kind),
		zap.Int("motions", len(m.Motions)))
}

// Import loads and registers a model. On error nothing is registered.
func (r *Registry) Import(ctx context.Context, fileName string, src io.Reader) (*asset.Model, error) {
	m, err := r.Load(ctx, fileName, src)
	if err != nil {
		r.log.Warn("import failed", zap.String("file", fileName), zap.Error(err))
		return nil, err
	}
	r.Add(m)
	return m, nil
}

// Models returns the registered models.
func (r *Registry) Models() []*asset.Model {
	return slices.Clone(r.models)
}

// Motions returns every registered motion.
func (r *Registry) Motions() []*asset.Motion {
	return slices.Clone(r.motions)
}

// ModelByID looks up a model.
func (r *Registry) ModelByID(id ident.ID) (*asset.Model, error) {
	for _, m := range r.models {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, fmt.Errorf("model %s: %w", id, ErrUnknownModel)
}

// MotionByID looks up a motion.
func (r *Registry) MotionByID(id ident.ID) (*asset.Motion, error) {
	for _, m := range r.motions {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, fmt.Errorf("motion %s: %w", id, ErrUnknownMotion)
}

// MotionsFor returns the motions owned by a model.
func (r *Registry) MotionsFor(modelID ident.ID) []*asset.Motion {
	var out []*asset.Motion
	for _, m := range r.motions {
		if m.ModelID == modelID {
			out = append(out, m)
		}
	}
	return out
}

// Visualize switches the scene to the given model.
func (r *Registry) Visualize(modelID ident.ID) (*asset.Model, error) {
	m, err := r.ModelByID(modelID)
	if err != nil {
		return nil, err
	}
	if r.visualizer == nil {
		return nil, fmt.Errorf("visualize %q: no visualizer", m.Name)
	}
	if err := r.visualizer.SwitchTo(m); err != nil {
		return nil, err
	}
	return m, nil
}
