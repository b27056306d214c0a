package gltfio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/rigview/internal/engine"
	"github.com/Faultbox/rigview/pkg/math"
)

// Artifact is an encoded GLB file.
type Artifact struct {
	name string
	data []byte
}

// Name returns the base file name.
func (a *Artifact) Name() string { return a.name }

// Bytes returns the GLB payload.
func (a *Artifact) Bytes() []byte { return a.data }

// FileName returns name with the .glb extension.
func (a *Artifact) FileName() string { return a.name + ".glb" }

// WriteFiles writes <name>.glb into dir, creating dir if needed.
func (a *Artifact) WriteFiles(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, a.FileName())
	if err := os.WriteFile(path, a.data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Encoder writes scenes as binary glTF.
type Encoder struct {
	log *zap.Logger
}

// NewEncoder creates an encoder.
func NewEncoder(log *zap.Logger) *Encoder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Encoder{log: log}
}

type encodeState struct {
	doc   *gltf.Document
	opts  engine.ExportOptions
	index map[*engine.Node]int
	order []*engine.Node
	// skins maps a skeleton to its glTF skin, or -1 when it cannot be written.
	skins map[*engine.Skeleton]int
}

// Encode writes the registered meshes, transform nodes, skins and animation
// groups of s that pass the export filter.
func (e *Encoder) Encode(ctx context.Context, s *engine.Scene, name string, opts engine.ExportOptions) (engine.Artifact, error) {
	doc, err := e.BuildDocument(ctx, s, name, opts)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := gltf.NewEncoder(&buf)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode glb: %w", err)
	}

	e.log.Debug("gltf encoded",
		zap.String("name", name),
		zap.Int("nodes", len(doc.Nodes)),
		zap.Int("animations", len(doc.Animations)),
		zap.Int("bytes", buf.Len()))
	return &Artifact{name: name, data: buf.Bytes()}, nil
}

// BuildDocument converts the exportable part of s into a glTF document.
func (e *Encoder) BuildDocument(ctx context.Context, s *engine.Scene, name string, opts engine.ExportOptions) (*gltf.Document, error) {
	st := &encodeState{
		doc: &gltf.Document{
			Asset:   gltf.Asset{Version: "2.0", Generator: "rigview"},
			Buffers: []*gltf.Buffer{{}},
			Scenes:  []*gltf.Scene{{Name: name}},
			Scene:   gltf.Index(0),
		},
		opts:  opts,
		index: make(map[*engine.Node]int),
		skins: make(map[*engine.Skeleton]int),
	}

	var meshes []*engine.Mesh
	for _, m := range s.Meshes() {
		// The synthetic import root is folded into its children.
		if m.Name == RootMeshName && m.Geometry == nil {
			continue
		}
		if opts.Accepts(&m.Node) {
			st.addNode(&m.Node)
			meshes = append(meshes, m)
		}
	}
	for _, tn := range s.TransformNodes() {
		if opts.Accepts(&tn.Node) {
			st.addNode(&tn.Node)
		}
	}
	st.linkNodes()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, m := range meshes {
		if err := st.writeMesh(m); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, g := range s.AnimationGroups() {
		st.writeAnimation(g)
	}
	return st.doc, nil
}

func (st *encodeState) addNode(n *engine.Node) {
	st.index[n] = len(st.doc.Nodes)
	st.order = append(st.order, n)
	st.doc.Nodes = append(st.doc.Nodes, &gltf.Node{Name: n.Name, Matrix: identityMatrix})
}

// exportedParent returns the nearest ancestor that is written.
func (st *encodeState) exportedParent(n *engine.Node) *engine.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if _, ok := st.index[p]; ok {
			return p
		}
	}
	return nil
}

func (st *encodeState) linkNodes() {
	for i, n := range st.order {
		gn := st.doc.Nodes[i]
		parent := st.exportedParent(n)

		var t math.Vec3
		var r math.Quat
		var s math.Vec3
		switch {
		case parent == n.Parent:
			t, r, s = n.Position, n.Orientation(), n.Scaling
		case parent == nil:
			t, r, s = n.WorldMatrix().Decompose()
		default:
			t, r, s = parent.WorldMatrix().Inverse().Mul(n.WorldMatrix()).Decompose()
		}
		gn.Translation = [3]float64{float64(t.X), float64(t.Y), float64(t.Z)}
		gn.Rotation = [4]float64{float64(r.X), float64(r.Y), float64(r.Z), float64(r.W)}
		gn.Scale = [3]float64{float64(s.X), float64(s.Y), float64(s.Z)}

		if parent == nil {
			st.doc.Scenes[0].Nodes = append(st.doc.Scenes[0].Nodes, i)
			continue
		}
		pi := st.index[parent]
		st.doc.Nodes[pi].Children = append(st.doc.Nodes[pi].Children, i)
	}
}

func (st *encodeState) writeMesh(m *engine.Mesh) error {
	g := m.Geometry
	if g == nil || len(g.Positions) == 0 {
		return nil
	}
	attrs := map[string]int{
		gltf.POSITION: modeler.WritePosition(st.doc, g.Positions),
	}
	if len(g.Normals) == len(g.Positions) {
		attrs[gltf.NORMAL] = modeler.WriteNormal(st.doc, g.Normals)
	}

	skin := -1
	if m.Skeleton != nil && g.IsSkinned() {
		skin = st.writeSkin(m.Skeleton)
	}
	if skin >= 0 {
		attrs[gltf.JOINTS_0] = modeler.WriteJoints(st.doc, g.Joints)
		attrs[gltf.WEIGHTS_0] = modeler.WriteWeights(st.doc, g.Weights)
	}

	prim := &gltf.Primitive{Attributes: attrs}
	if len(g.Indices) > 0 {
		prim.Indices = gltf.Index(modeler.WriteIndices(st.doc, g.Indices))
	}
	st.doc.Meshes = append(st.doc.Meshes, &gltf.Mesh{Name: g.ID, Primitives: []*gltf.Primitive{prim}})

	gn := st.doc.Nodes[st.index[&m.Node]]
	gn.Mesh = gltf.Index(len(st.doc.Meshes) - 1)
	if skin >= 0 {
		gn.Skin = gltf.Index(skin)
	}
	return nil
}

// writeSkin writes a skeleton once. Skeletons with a bone whose node was
// filtered out are not written.
func (st *encodeState) writeSkin(sk *engine.Skeleton) int {
	if idx, ok := st.skins[sk]; ok {
		return idx
	}
	joints := make([]int, len(sk.Bones))
	inverse := make([][4][4]float32, len(sk.Bones))
	for i, b := range sk.Bones {
		tn := b.TransformNode()
		if tn == nil {
			st.skins[sk] = -1
			return -1
		}
		ni, ok := st.index[&tn.Node]
		if !ok {
			st.skins[sk] = -1
			return -1
		}
		joints[i] = ni
		for c := 0; c < 4; c++ {
			for r := 0; r < 4; r++ {
				inverse[i][c][r] = b.InverseBind[c*4+r]
			}
		}
	}
	ibm := modeler.WriteAccessor(st.doc, gltf.TargetNone, inverse)
	st.doc.Skins = append(st.doc.Skins, &gltf.Skin{
		Name:                sk.Name,
		Joints:              joints,
		InverseBindMatrices: gltf.Index(ibm),
	})
	idx := len(st.doc.Skins) - 1
	st.skins[sk] = idx
	return idx
}

func (st *encodeState) writeAnimation(g *engine.AnimationGroup) {
	out := &gltf.Animation{Name: g.Name}
	for _, ta := range g.TargetedAnimations() {
		ni, ok := st.index[ta.Target]
		if !ok {
			continue
		}
		a := ta.Animation
		keys := a.Keys()
		if len(keys) == 0 {
			continue
		}
		fps := a.FPS
		if fps <= 0 {
			fps = LoaderFrameRate
		}

		times := make([]float32, len(keys))
		for i, k := range keys {
			times[i] = k.Frame / fps
		}
		input := modeler.WriteAccessor(st.doc, gltf.TargetNone, times)
		acc := st.doc.Accessors[input]
		acc.Min = []float64{float64(times[0])}
		acc.Max = []float64{float64(times[len(times)-1])}

		var path gltf.TRSProperty
		var output int
		switch a.TargetProperty {
		case engine.PropertyPosition, engine.PropertyScaling:
			path = gltf.TRSTranslation
			if a.TargetProperty == engine.PropertyScaling {
				path = gltf.TRSScale
			}
			vals := make([][3]float32, len(keys))
			for i, k := range keys {
				vals[i] = k.Value.Vec3().Array()
			}
			output = modeler.WriteAccessor(st.doc, gltf.TargetNone, vals)
		case engine.PropertyRotationQuaternion, engine.PropertyRotation:
			path = gltf.TRSRotation
			vals := make([][4]float32, len(keys))
			for i, k := range keys {
				q := k.Value.Quat()
				if a.TargetProperty == engine.PropertyRotation {
					q = math.QuatFromEuler(k.Value.Vec3())
				}
				vals[i] = q.Normalize().Array()
			}
			output = modeler.WriteAccessor(st.doc, gltf.TargetNone, vals)
		default:
			continue
		}

		out.Samplers = append(out.Samplers, &gltf.AnimationSampler{
			Input:         input,
			Output:        output,
			Interpolation: gltf.InterpolationLinear,
		})
		out.Channels = append(out.Channels, &gltf.AnimationChannel{
			Sampler: len(out.Samplers) - 1,
			Target:  gltf.AnimationChannelTarget{Node: gltf.Index(ni), Path: path},
		})
	}
	if len(out.Channels) > 0 {
		st.doc.Animations = append(st.doc.Animations, out)
	}
}
