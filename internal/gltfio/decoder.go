// Package gltfio reads glTF/GLB assets into engine containers and writes
// engine scenes back out as GLB.
package gltfio

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/rigview/internal/engine"
	"github.com/Faultbox/rigview/pkg/math"
)

// LoaderFrameRate converts sampler seconds into key frames on import.
const LoaderFrameRate = 60

// RootMeshName is the name of the synthetic mesh parenting every top-level
// node of an imported asset.
const RootMeshName = "__root__"

var (
	ErrNoPositions      = errors.New("primitive has no POSITION attribute")
	ErrBadAccessor      = errors.New("accessor index out of range")
	ErrUnsupportedValue = errors.New("unsupported accessor component type")
	ErrCyclicHierarchy  = errors.New("node hierarchy contains a cycle")
)

var identityMatrix = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// Decoder reads glTF 2.0 content. External buffer URIs are not resolved.
type Decoder struct {
	log *zap.Logger
}

// NewDecoder creates a decoder.
func NewDecoder(log *zap.Logger) *Decoder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Decoder{log: log}
}

// decodeState carries the per-document index maps.
type decodeState struct {
	doc   *gltf.Document
	c     *engine.Container
	nodes []*engine.Node
	tns   []*engine.TransformNode
	// meshes holds the engine meshes created for each glTF node.
	meshes [][]*engine.Mesh
}

// Decode parses a GLB or JSON glTF stream.
func (d *Decoder) Decode(ctx context.Context, r io.Reader) (*engine.Container, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("parse gltf: %w", err)
	}
	return d.DecodeDocument(ctx, doc)
}

// DecodeDocument converts an already parsed document.
func (d *Decoder) DecodeDocument(ctx context.Context, doc *gltf.Document) (*engine.Container, error) {
	st := &decodeState{
		doc:    doc,
		c:      new(engine.Container),
		nodes:  make([]*engine.Node, len(doc.Nodes)),
		tns:    make([]*engine.TransformNode, len(doc.Nodes)),
		meshes: make([][]*engine.Mesh, len(doc.Nodes)),
	}

	root := engine.NewMesh(RootMeshName, nil)
	st.c.Meshes = append(st.c.Meshes, root)

	if err := st.buildNodes(); err != nil {
		return nil, err
	}
	if err := st.linkHierarchy(&root.Node); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := st.buildSkins(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := st.buildAnimations(); err != nil {
		return nil, err
	}

	d.log.Debug("gltf decoded",
		zap.Int("nodes", len(doc.Nodes)),
		zap.Int("meshes", len(st.c.Meshes)),
		zap.Int("skeletons", len(st.c.Skeletons)),
		zap.Int("animations", len(st.c.AnimationGroups)))
	return st.c, nil
}

func (st *decodeState) buildNodes() error {
	for i, n := range st.doc.Nodes {
		name := n.Name
		if name == "" {
			name = fmt.Sprintf("node%d", i)
		}
		t, r, s := nodeTRS(n)

		if n.Mesh == nil {
			tn := engine.NewTransformNode(name)
			tn.Position, tn.RotationQuaternion, tn.Scaling = t, &r, s
			st.tns[i] = tn
			st.nodes[i] = &tn.Node
			st.c.TransformNodes = append(st.c.TransformNodes, tn)
			continue
		}

		if *n.Mesh < 0 || *n.Mesh >= len(st.doc.Meshes) {
			return fmt.Errorf("node %q mesh %d: %w", name, *n.Mesh, ErrBadAccessor)
		}
		gm := st.doc.Meshes[*n.Mesh]
		for p, prim := range gm.Primitives {
			geom, err := st.readPrimitive(gm.Name, p, prim)
			if err != nil {
				return fmt.Errorf("node %q: %w", name, err)
			}
			meshName := name
			if p > 0 {
				meshName = fmt.Sprintf("%s_primitive%d", name, p)
			}
			m := engine.NewMesh(meshName, geom)
			if p == 0 {
				m.Position, m.RotationQuaternion, m.Scaling = t, &r, s
			} else {
				m.Parent = &st.meshes[i][0].Node
			}
			st.meshes[i] = append(st.meshes[i], m)
			st.c.Meshes = append(st.c.Meshes, m)
			st.c.Geometries = append(st.c.Geometries, geom)
		}
		if len(st.meshes[i]) == 0 {
			// A mesh without primitives still anchors its children.
			m := engine.NewMesh(name, nil)
			m.Position, m.RotationQuaternion, m.Scaling = t, &r, s
			st.meshes[i] = append(st.meshes[i], m)
			st.c.Meshes = append(st.c.Meshes, m)
		}
		st.nodes[i] = &st.meshes[i][0].Node
	}
	return nil
}

// linkHierarchy parents every node to the node listing it as a child.
// Nodes without a parent hang off root. A parent chain that never reaches
// root is a cycle.
func (st *decodeState) linkHierarchy(root *engine.Node) error {
	for i, n := range st.doc.Nodes {
		for _, child := range n.Children {
			if child < 0 || child >= len(st.nodes) {
				return fmt.Errorf("node %d child %d: %w", i, child, ErrBadAccessor)
			}
			if child == i {
				return fmt.Errorf("node %d: %w", i, ErrCyclicHierarchy)
			}
			st.nodes[child].Parent = st.nodes[i]
		}
	}
	for _, n := range st.nodes {
		if n.Parent == nil {
			n.Parent = root
		}
	}
	for i, n := range st.nodes {
		steps := 0
		for p := n.Parent; p != root; p = p.Parent {
			if p == nil || steps > len(st.nodes) {
				return fmt.Errorf("node %d %q: %w", i, n.Name, ErrCyclicHierarchy)
			}
			steps++
		}
	}
	return nil
}

func (st *decodeState) readPrimitive(meshName string, index int, prim *gltf.Primitive) (*engine.Geometry, error) {
	geom := &engine.Geometry{ID: fmt.Sprintf("%s#%d", meshName, index)}

	pos, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("geometry %s: %w", geom.ID, ErrNoPositions)
	}
	acc, err := st.accessor(pos)
	if err != nil {
		return nil, err
	}
	if geom.Positions, err = modeler.ReadPosition(st.doc, acc, nil); err != nil {
		return nil, fmt.Errorf("geometry %s positions: %w", geom.ID, err)
	}

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if acc, err = st.accessor(idx); err != nil {
			return nil, err
		}
		if geom.Normals, err = modeler.ReadNormal(st.doc, acc, nil); err != nil {
			return nil, fmt.Errorf("geometry %s normals: %w", geom.ID, err)
		}
	}

	if prim.Indices != nil {
		if acc, err = st.accessor(*prim.Indices); err != nil {
			return nil, err
		}
		if geom.Indices, err = modeler.ReadIndices(st.doc, acc, nil); err != nil {
			return nil, fmt.Errorf("geometry %s indices: %w", geom.ID, err)
		}
	}

	jIdx, hasJoints := prim.Attributes[gltf.JOINTS_0]
	wIdx, hasWeights := prim.Attributes[gltf.WEIGHTS_0]
	if hasJoints && hasWeights {
		if acc, err = st.accessor(jIdx); err != nil {
			return nil, err
		}
		if geom.Joints, err = modeler.ReadJoints(st.doc, acc, nil); err != nil {
			return nil, fmt.Errorf("geometry %s joints: %w", geom.ID, err)
		}
		if acc, err = st.accessor(wIdx); err != nil {
			return nil, err
		}
		if geom.Weights, err = modeler.ReadWeights(st.doc, acc, nil); err != nil {
			return nil, fmt.Errorf("geometry %s weights: %w", geom.ID, err)
		}
	}
	return geom, nil
}

func (st *decodeState) buildSkins() error {
	for si, skin := range st.doc.Skins {
		name := skin.Name
		if name == "" {
			name = fmt.Sprintf("skin%d", si)
		}
		skel := engine.NewSkeleton(name, fmt.Sprintf("skin%d", si))

		var inverse [][4][4]float32
		if skin.InverseBindMatrices != nil {
			acc, err := st.accessor(*skin.InverseBindMatrices)
			if err != nil {
				return err
			}
			data, err := modeler.ReadAccessor(st.doc, acc, nil)
			if err != nil {
				return fmt.Errorf("skin %q inverse bind matrices: %w", name, err)
			}
			mats, ok := data.([][4][4]float32)
			if !ok {
				return fmt.Errorf("skin %q inverse bind matrices: %w", name, ErrUnsupportedValue)
			}
			inverse = mats
		}

		byNode := make(map[int]*engine.Bone, len(skin.Joints))
		for j, nodeIdx := range skin.Joints {
			if nodeIdx < 0 || nodeIdx >= len(st.nodes) {
				return fmt.Errorf("skin %q joint %d: %w", name, j, ErrBadAccessor)
			}
			bone := engine.NewBone(st.nodes[nodeIdx].Name, nil)
			bone.Rest = st.nodes[nodeIdx].LocalMatrix()
			if j < len(inverse) {
				bone.InverseBind = columnMajor(inverse[j])
			}
			if tn := st.tns[nodeIdx]; tn != nil {
				bone.LinkTransformNode(tn)
			}
			byNode[nodeIdx] = bone
			skel.AddBone(bone)
		}

		// Bone parent is the nearest ancestor joint of the same skin.
		for _, nodeIdx := range skin.Joints {
			for p, depth := st.parentIndex(nodeIdx), 0; p >= 0 && depth < len(st.nodes); p, depth = st.parentIndex(p), depth+1 {
				if parent, ok := byNode[p]; ok {
					byNode[nodeIdx].Parent = parent
					break
				}
			}
		}
		st.c.Skeletons = append(st.c.Skeletons, skel)
	}

	for i, n := range st.doc.Nodes {
		if n.Skin == nil || *n.Skin < 0 || *n.Skin >= len(st.c.Skeletons) {
			continue
		}
		for _, m := range st.meshes[i] {
			m.Skeleton = st.c.Skeletons[*n.Skin]
		}
	}
	return nil
}

func (st *decodeState) parentIndex(child int) int {
	parent := st.nodes[child].Parent
	for i, n := range st.nodes {
		if n == parent {
			return i
		}
	}
	return -1
}

func (st *decodeState) buildAnimations() error {
	for ai, a := range st.doc.Animations {
		name := a.Name
		if name == "" {
			name = fmt.Sprintf("animation%d", ai)
		}
		group := engine.NewAnimationGroup(name)

		for ci, ch := range a.Channels {
			if ch.Target.Node == nil || ch.Target.Path == gltf.TRSWeights {
				continue
			}
			nodeIdx := *ch.Target.Node
			if nodeIdx < 0 || nodeIdx >= len(st.nodes) {
				return fmt.Errorf("animation %q channel %d: %w", name, ci, ErrBadAccessor)
			}
			if ch.Sampler < 0 || ch.Sampler >= len(a.Samplers) {
				return fmt.Errorf("animation %q channel %d sampler: %w", name, ci, ErrBadAccessor)
			}
			target := st.nodes[nodeIdx]

			property, dataType, ok := channelProperty(ch.Target.Path)
			if !ok {
				continue
			}
			keys, err := st.readKeys(a.Samplers[ch.Sampler], dataType)
			if err != nil {
				return fmt.Errorf("animation %q channel %d: %w", name, ci, err)
			}
			if len(keys) == 0 {
				continue
			}

			anim := engine.NewAnimation(target.Name+"."+property, property, LoaderFrameRate, dataType, engine.LoopCycle)
			anim.SetKeys(keys)
			if err := group.AddTargetedAnimation(anim, target); err != nil {
				return fmt.Errorf("animation %q: %w", name, err)
			}
		}
		st.c.AnimationGroups = append(st.c.AnimationGroups, group)
	}
	return nil
}

func channelProperty(path gltf.TRSProperty) (string, engine.DataType, bool) {
	switch path {
	case gltf.TRSTranslation:
		return engine.PropertyPosition, engine.DataVector3, true
	case gltf.TRSRotation:
		return engine.PropertyRotationQuaternion, engine.DataQuaternion, true
	case gltf.TRSScale:
		return engine.PropertyScaling, engine.DataVector3, true
	}
	return "", 0, false
}

func (st *decodeState) readKeys(s *gltf.AnimationSampler, dataType engine.DataType) ([]engine.Key, error) {
	inAcc, err := st.accessor(s.Input)
	if err != nil {
		return nil, err
	}
	inData, err := modeler.ReadAccessor(st.doc, inAcc, nil)
	if err != nil {
		return nil, fmt.Errorf("sampler input: %w", err)
	}
	times, ok := inData.([]float32)
	if !ok {
		return nil, fmt.Errorf("sampler input: %w", ErrUnsupportedValue)
	}

	outAcc, err := st.accessor(s.Output)
	if err != nil {
		return nil, err
	}
	outData, err := modeler.ReadAccessor(st.doc, outAcc, nil)
	if err != nil {
		return nil, fmt.Errorf("sampler output: %w", err)
	}
	values, err := toValues(outData)
	if err != nil {
		return nil, fmt.Errorf("sampler output: %w", err)
	}

	// Cubic spline outputs are (in-tangent, value, out-tangent) triples.
	stride, offset := 1, 0
	if s.Interpolation == gltf.InterpolationCubicSpline {
		stride, offset = 3, 1
	}

	keys := make([]engine.Key, 0, len(times))
	for i, t := range times {
		vi := i*stride + offset
		if vi >= len(values) {
			break
		}
		v := values[vi]
		if dataType == engine.DataQuaternion {
			v = engine.QuaternionValue(v.Quat().Normalize())
		}
		keys = append(keys, engine.Key{Frame: t * LoaderFrameRate, Value: v})
	}
	return keys, nil
}

func toValues(data any) ([]engine.Value, error) {
	switch d := data.(type) {
	case [][3]float32:
		out := make([]engine.Value, len(d))
		for i, v := range d {
			out[i] = engine.Value{X: v[0], Y: v[1], Z: v[2]}
		}
		return out, nil
	case [][4]float32:
		out := make([]engine.Value, len(d))
		for i, v := range d {
			out[i] = engine.Value{X: v[0], Y: v[1], Z: v[2], W: v[3]}
		}
		return out, nil
	case [][4]int16:
		out := make([]engine.Value, len(d))
		for i, v := range d {
			out[i] = engine.Value{X: snorm16(v[0]), Y: snorm16(v[1]), Z: snorm16(v[2]), W: snorm16(v[3])}
		}
		return out, nil
	case [][4]int8:
		out := make([]engine.Value, len(d))
		for i, v := range d {
			out[i] = engine.Value{X: snorm8(v[0]), Y: snorm8(v[1]), Z: snorm8(v[2]), W: snorm8(v[3])}
		}
		return out, nil
	}
	return nil, fmt.Errorf("%T: %w", data, ErrUnsupportedValue)
}

func snorm16(v int16) float32 { return max(float32(v)/32767, -1) }
func snorm8(v int8) float32   { return max(float32(v)/127, -1) }

func (st *decodeState) accessor(i int) (*gltf.Accessor, error) {
	if i < 0 || i >= len(st.doc.Accessors) {
		return nil, fmt.Errorf("accessor %d: %w", i, ErrBadAccessor)
	}
	return st.doc.Accessors[i], nil
}

// nodeTRS returns the local transform of a node. A non-identity matrix wins
// over the TRS fields.
func nodeTRS(n *gltf.Node) (math.Vec3, math.Quat, math.Vec3) {
	if n.Matrix != identityMatrix && n.Matrix != ([16]float64{}) {
		var m math.Mat4
		for i, v := range n.Matrix {
			m[i] = float32(v)
		}
		return m.Decompose()
	}

	t := math.Vec3{X: float32(n.Translation[0]), Y: float32(n.Translation[1]), Z: float32(n.Translation[2])}
	r := math.QuatIdentity()
	if n.Rotation != ([4]float64{}) {
		r = math.Quat{X: float32(n.Rotation[0]), Y: float32(n.Rotation[1]), Z: float32(n.Rotation[2]), W: float32(n.Rotation[3])}
	}
	s := math.Vec3One
	if n.Scale != ([3]float64{}) {
		s = math.Vec3{X: float32(n.Scale[0]), Y: float32(n.Scale[1]), Z: float32(n.Scale[2])}
	}
	return t, r, s
}

func columnMajor(m [4][4]float32) math.Mat4 {
	var out math.Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			out[c*4+r] = m[c][r]
		}
	}
	return out
}
