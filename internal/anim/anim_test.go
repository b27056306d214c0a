package anim

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Faultbox/rigview/internal/asset"
	"github.com/Faultbox/rigview/internal/engine"
	"github.com/Faultbox/rigview/pkg/math"
)

func testMotion(t *testing.T) (*asset.Motion, *engine.TransformNode) {
	t.Helper()
	hips := engine.NewTransformNode("hips")

	pos := engine.NewAnimation("hips.position", engine.PropertyPosition, 60, engine.DataVector3, engine.LoopConstant)
	pos.SetKeys([]engine.Key{
		{Frame: 0, Value: engine.VectorValue(math.Vec3{})},
		{Frame: 10, Value: engine.VectorValue(math.Vec3{X: 10})},
	})
	rot := engine.NewAnimation("hips.rotation", engine.PropertyRotationQuaternion, 60, engine.DataQuaternion, engine.LoopConstant)
	rot.SetKeys([]engine.Key{
		{Frame: 0, Value: engine.QuaternionValue(math.QuatIdentity())},
		{Frame: 20, Value: engine.QuaternionValue(math.QuatFromAxisAngle(math.Vec3{Y: 1}, 1))},
	})

	g := engine.NewAnimationGroup("walk")
	if err := g.AddTargetedAnimation(pos, &hips.Node); err != nil {
		t.Fatal(err)
	}
	if err := g.AddTargetedAnimation(rot, &hips.Node); err != nil {
		t.Fatal(err)
	}
	return asset.ExtractMotion("model-1", g), hips
}

func TestReconstruct(t *testing.T) {
	m, hips := testMotion(t)
	s := engine.NewScene()

	g, err := Reconstruct(s, m, DefaultFPS)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if g.Name != "walk" {
		t.Errorf("group name %q", g.Name)
	}
	if g.From() != DefaultFrom || g.To() != DefaultTo {
		t.Errorf("window %v..%v, want %v..%v", g.From(), g.To(), DefaultFrom, DefaultTo)
	}
	if got := s.AnimationGroups(); len(got) != 1 || got[0] != g {
		t.Error("group not registered in scene")
	}

	targeted := g.TargetedAnimations()
	tracks := m.Tracks()
	if len(targeted) != len(tracks) {
		t.Fatalf("expected %d animations, got %d", len(tracks), len(targeted))
	}
	for i, ta := range targeted {
		a := ta.Animation
		if ta.Target != &hips.Node {
			t.Errorf("animation %d bound to wrong target", i)
		}
		if a.FPS != DefaultFPS || a.LoopMode != engine.LoopCycle {
			t.Errorf("animation %d fps %v loop %v", i, a.FPS, a.LoopMode)
		}
		if a.DataType != asset.ValueTypeFor(tracks[i].Property) {
			t.Errorf("animation %d data type %v", i, a.DataType)
		}
		if diff := cmp.Diff(tracks[i].Keys, a.Keys()); diff != "" {
			t.Errorf("animation %d keys changed (-want +got):\n%s", i, diff)
		}
	}
}

func TestReconstructDetached(t *testing.T) {
	m, _ := testMotion(t)
	g, err := Reconstruct(nil, m, DefaultFPS)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.TargetedAnimations()) != 2 {
		t.Error("expected two animations")
	}
}

func TestSlotReplaceDisposesPrevious(t *testing.T) {
	var slot Slot
	first := engine.NewAnimationGroup("a")
	first.Start(true, 1, 0, 10)
	slot.Replace(first)

	second := engine.NewAnimationGroup("b")
	slot.Replace(second)

	if !first.IsDisposed() || first.IsPlaying() {
		t.Error("previous group must be stopped and disposed")
	}
	if slot.Group() != second {
		t.Error("slot must hold the new group")
	}

	slot.Release()
	if slot.Group() != nil || !second.IsDisposed() {
		t.Error("Release must dispose and clear")
	}
}

func TestPlayerLifecycle(t *testing.T) {
	m, hips := testMotion(t)
	s := engine.NewScene()
	p := NewPlayer(nil)

	p.Play()
	if p.IsPlaying() || p.HasAnimation() {
		t.Fatal("player without a group must do nothing")
	}

	if err := p.Load(s, m); err != nil {
		t.Fatal(err)
	}
	p.Play()
	if !p.IsPlaying() {
		t.Fatal("expected playing")
	}

	s.Advance(4)
	if p.Frame() != 4 {
		t.Errorf("frame %v, want 4", p.Frame())
	}
	if hips.Position.X != 4 {
		t.Errorf("position.x %v, want 4", hips.Position.X)
	}

	p.Pause()
	s.Advance(2)
	if p.IsPlaying() || p.Frame() != 4 {
		t.Errorf("pause failed: playing=%v frame=%v", p.IsPlaying(), p.Frame())
	}

	p.Play()
	s.Advance(1)
	if p.Frame() != 5 {
		t.Errorf("resume frame %v, want 5", p.Frame())
	}

	p.Stop()
	if p.IsPlaying() || p.Frame() != DefaultFrom {
		t.Errorf("stop failed: playing=%v frame=%v", p.IsPlaying(), p.Frame())
	}
	if hips.Position.X != 0 {
		t.Errorf("stop must restore the first frame pose, got %v", hips.Position.X)
	}
}

func TestPlayerSeekClamps(t *testing.T) {
	m, _ := testMotion(t)
	p := NewPlayer(nil)
	if err := p.Load(nil, m); err != nil {
		t.Fatal(err)
	}

	tests := []struct{ in, want float32 }{
		{-5, DefaultFrom},
		{3, 3},
		{50, DefaultTo},
	}
	for _, tt := range tests {
		p.Seek(tt.in)
		if p.Frame() != tt.want {
			t.Errorf("Seek(%v) -> %v, want %v", tt.in, p.Frame(), tt.want)
		}
	}
}

func TestPlayerLoadReplaces(t *testing.T) {
	m, _ := testMotion(t)
	s := engine.NewScene()
	p := NewPlayer(nil)
	if err := p.Load(s, m); err != nil {
		t.Fatal(err)
	}
	first := p.Group()
	if err := p.Load(s, m); err != nil {
		t.Fatal(err)
	}
	if !first.IsDisposed() {
		t.Error("previous group not disposed")
	}
	if len(s.AnimationGroups()) != 1 {
		t.Errorf("expected one registered group, got %d", len(s.AnimationGroups()))
	}
}

func TestPlayerLoadFailureLeavesSlotEmpty(t *testing.T) {
	m, _ := testMotion(t)
	s := engine.NewScene()
	p := NewPlayer(nil)
	if err := p.Load(s, m); err != nil {
		t.Fatal(err)
	}
	first := p.Group()

	broken := asset.NewMotion("model-1", "broken", []asset.Track{{
		Name:     "orphan.position",
		Property: engine.PropertyPosition,
		Keys:     []engine.Key{{Frame: 0, Value: engine.VectorValue(math.Vec3{})}},
	}})
	if err := p.Load(s, broken); err == nil {
		t.Fatal("expected an error for a track without a target")
	}
	if !first.IsDisposed() {
		t.Error("previous group must be disposed before reconstructing")
	}
	if p.HasAnimation() {
		t.Error("slot must stay empty after a failed load")
	}
	if got := len(s.AnimationGroups()); got != 0 {
		t.Errorf("expected no registered groups, got %d", got)
	}
}

func TestMotionRoundTrip(t *testing.T) {
	m, _ := testMotion(t)
	g, err := Reconstruct(nil, m, DefaultFPS)
	if err != nil {
		t.Fatal(err)
	}
	again := asset.ExtractMotion(m.ModelID, g)

	if again.Name != m.Name || again.ModelID != m.ModelID {
		t.Errorf("got %q/%q, want %q/%q", again.Name, again.ModelID, m.Name, m.ModelID)
	}
	sameNode := cmp.Comparer(func(a, b *engine.Node) bool { return a == b })
	if diff := cmp.Diff(m.Tracks(), again.Tracks(), sameNode); diff != "" {
		t.Errorf("tracks changed over extract/reconstruct (-want +got):\n%s", diff)
	}
}
