package engine

// Container holds the resources produced by decoding one asset file. None of
// them is registered in a scene.
type Container struct {
	Meshes          []*Mesh
	Geometries      []*Geometry
	Skeletons       []*Skeleton
	TransformNodes  []*TransformNode
	AnimationGroups []*AnimationGroup
}

// ExportOptions filters what an encoder writes.
type ExportOptions struct {
	// ShouldExportNode reports whether a node is written. Nil exports all.
	ShouldExportNode func(*Node) bool
}

// Accepts applies the node filter.
func (o ExportOptions) Accepts(n *Node) bool {
	return o.ShouldExportNode == nil || o.ShouldExportNode(n)
}

// Artifact is an encoded export ready to be saved.
type Artifact interface {
	// Name is the base file name without extension.
	Name() string
	// Bytes returns the encoded payload.
	Bytes() []byte
	// WriteFiles saves the payload into dir.
	WriteFiles(dir string) error
}
