// Package scene manages which imported model is shown in the shared render
// scene, keeps the registry of imported models and motions, and exports the
// selected motion.
package scene

import (
	"context"
	"errors"
	"io"

	"github.com/Faultbox/rigview/internal/engine"
)

var (
	ErrDecodeFailure          = errors.New("decode failed")
	ErrEncodeFailure          = errors.New("encode failed")
	ErrUnsupportedExtension   = errors.New("unsupported file extension")
	ErrInvalidStateTransition = errors.New("invalid visualization state transition")
	ErrUnknownModel           = errors.New("unknown model")
	ErrUnknownMotion          = errors.New("unknown motion")
	ErrNotVisualized          = errors.New("model is not visualized")
)

// Graph is the part of the render scene the visualizer mutates.
type Graph interface {
	AddMesh(*engine.Mesh) error
	RemoveMesh(*engine.Mesh) error
	AddGeometry(*engine.Geometry) error
	RemoveGeometry(*engine.Geometry) error
	AddSkeleton(*engine.Skeleton) error
	RemoveSkeleton(*engine.Skeleton) error
	AddTransformNode(*engine.TransformNode) error
	RemoveTransformNode(*engine.TransformNode) error
	CreateSkeletonViewer(*engine.Skeleton, *engine.Mesh, engine.SkeletonViewerOptions) (*engine.SkeletonViewer, error)
}

// Decoder turns asset file content into unregistered engine resources.
type Decoder interface {
	Decode(ctx context.Context, r io.Reader) (*engine.Container, error)
}

// Artifact is an encoded export.
type Artifact = engine.Artifact

// Encoder serializes the exportable part of a scene.
type Encoder interface {
	Encode(ctx context.Context, s *engine.Scene, name string, opts engine.ExportOptions) (Artifact, error)
}
