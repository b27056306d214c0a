package asset

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Faultbox/rigview/internal/engine"
	"github.com/Faultbox/rigview/pkg/math"
)

func vecKey(frame, x float32) engine.Key {
	return engine.Key{Frame: frame, Value: engine.VectorValue(math.Vec3{X: x})}
}

func testGroup(t *testing.T, name string, target *engine.Node, keys []engine.Key) *engine.AnimationGroup {
	t.Helper()
	a := engine.NewAnimation(name+".position", engine.PropertyPosition, 60, engine.DataVector3, engine.LoopCycle)
	a.SetKeys(keys)
	g := engine.NewAnimationGroup(name)
	if err := g.AddTargetedAnimation(a, target); err != nil {
		t.Fatal(err)
	}
	return g
}

func humanContainer(t *testing.T) *engine.Container {
	t.Helper()
	hips := engine.NewTransformNode("hips")
	bone := engine.NewBone("hips", nil)
	bone.LinkTransformNode(hips)
	skel := engine.NewSkeleton("rig", "skin0")
	skel.AddBone(bone)

	root := engine.NewMesh("__root__", nil)
	body := engine.NewMesh("body", &engine.Geometry{ID: "g0"})
	body.Skeleton = skel

	g := testGroup(t, "walk", &hips.Node, []engine.Key{vecKey(0, 0), vecKey(30, 1)})
	g.Start(true, 1, 0, 30)

	return &engine.Container{
		Meshes:          []*engine.Mesh{root, body},
		Geometries:      []*engine.Geometry{body.Geometry},
		Skeletons:       []*engine.Skeleton{skel},
		TransformNodes:  []*engine.TransformNode{hips},
		AnimationGroups: []*engine.AnimationGroup{g},
	}
}

func TestSplitFileName(t *testing.T) {
	tests := []struct {
		in, name, ext string
	}{
		{"hero.glb", "hero", "glb"},
		{"hero.v2.glb", "hero.v2", "glb"},
		{"hero", "hero", ""},
		{".glb", "", "glb"},
		{"hero.", "hero", ""},
	}
	for _, tt := range tests {
		name, ext := SplitFileName(tt.in)
		if name != tt.name || ext != tt.ext {
			t.Errorf("SplitFileName(%q) = %q, %q; want %q, %q", tt.in, name, ext, tt.name, tt.ext)
		}
	}
}

func TestValueTypeFor(t *testing.T) {
	tests := map[string]engine.DataType{
		engine.PropertyRotationQuaternion: engine.DataQuaternion,
		engine.PropertyPosition:           engine.DataVector3,
		engine.PropertyRotation:           engine.DataVector3,
		engine.PropertyScaling:            engine.DataVector3,
		"RotationQuaternion":              engine.DataVector3,
	}
	for prop, want := range tests {
		if got := ValueTypeFor(prop); got != want {
			t.Errorf("ValueTypeFor(%q) = %v, want %v", prop, got, want)
		}
	}
}

func TestNewModelHuman(t *testing.T) {
	c := humanContainer(t)
	m, err := NewModel("hero.glb", c)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}

	if m.Kind != KindHuman || m.Human == nil {
		t.Fatalf("expected human model, got %v", m.Kind)
	}
	if m.Name != "hero" || m.Extension != "glb" {
		t.Errorf("unexpected name %q ext %q", m.Name, m.Extension)
	}
	if m.RootMesh != c.Meshes[0] {
		t.Error("root mesh must be the first container mesh")
	}
	if m.ID.IsZero() {
		t.Error("expected an id")
	}
	if c.AnimationGroups[0].IsPlaying() {
		t.Error("import must stop every animation group")
	}
	if len(m.Motions) != 1 || m.Motions[0].ModelID != m.ID {
		t.Fatalf("expected one motion owned by the model, got %v", m.Motions)
	}
	if got, ok := m.Motion(m.Motions[0].ID); !ok || got != m.Motions[0] {
		t.Error("Motion lookup failed")
	}

	want := Stats{Meshes: 2, Geometries: 1, Bones: 1, TransformNodes: 1, Motions: 1}
	if diff := cmp.Diff(want, m.Stats()); diff != "" {
		t.Errorf("Stats mismatch (-want +got):\n%s", diff)
	}
}

func TestNewModelPlain(t *testing.T) {
	c := &engine.Container{
		Meshes:    []*engine.Mesh{engine.NewMesh("__root__", nil)},
		Skeletons: []*engine.Skeleton{engine.NewSkeleton("empty", "skin0")},
	}
	m, err := NewModel("crate.glb", c)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	if m.Kind != KindPlain || m.Human != nil {
		t.Error("skeleton without bones must give a plain model")
	}
}

func TestNewModelGuards(t *testing.T) {
	skel := engine.NewSkeleton("rig", "skin0")
	skel.AddBone(engine.NewBone("root", nil))

	tests := []struct {
		name string
		c    *engine.Container
		want error
	}{
		{"human without meshes", &engine.Container{Skeletons: []*engine.Skeleton{skel}}, ErrEmptySkeletonAsset},
		{"plain without meshes", &engine.Container{}, ErrEmptyMeshAsset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewModel("x.glb", tt.c)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestExtractMotionCopiesAndSorts(t *testing.T) {
	target := engine.NewNode("hips")
	keys := []engine.Key{vecKey(10, 1), vecKey(0, 0), vecKey(5, 0.5)}
	g := testGroup(t, "wave", target, keys)

	mo := ExtractMotion("model-1", g)
	tracks := mo.Tracks()
	if len(tracks) != 1 {
		t.Fatalf("expected 1 track, got %d", len(tracks))
	}
	tr := tracks[0]
	if tr.Target != target || tr.Property != engine.PropertyPosition || tr.ValueType() != engine.DataVector3 {
		t.Errorf("unexpected track %+v", tr)
	}

	want := []engine.Key{vecKey(0, 0), vecKey(5, 0.5), vecKey(10, 1)}
	if diff := cmp.Diff(want, tr.Keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	if keys[0].Frame != 10 {
		t.Error("source keys were mutated")
	}

	// Disposing the source and editing the returned copy leaves the motion intact.
	g.Dispose()
	tr.Keys[0].Frame = 99
	if mo.Tracks()[0].Keys[0].Frame != 0 {
		t.Error("motion keys are not isolated")
	}

	from, to, ok := mo.FrameRange()
	if !ok || from != 0 || to != 10 {
		t.Errorf("FrameRange = %v, %v, %v", from, to, ok)
	}
}
