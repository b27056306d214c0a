package engine

import (
	"errors"
	"testing"

	"github.com/Faultbox/rigview/pkg/math"
)

func newTestGroup(t *testing.T) (*AnimationGroup, *TransformNode) {
	t.Helper()
	tn := NewTransformNode("hips")
	a := NewAnimation("hips.position", PropertyPosition, 1, DataVector3, LoopCycle)
	a.SetKeys([]Key{
		{Frame: 0, Value: VectorValue(math.Vec3{})},
		{Frame: 10, Value: VectorValue(math.Vec3{X: 10})},
	})
	g := NewAnimationGroup("walk")
	if err := g.AddTargetedAnimation(a, &tn.Node); err != nil {
		t.Fatalf("AddTargetedAnimation: %v", err)
	}
	return g, tn
}

func TestAddTargetedAnimationUnknownProperty(t *testing.T) {
	g := NewAnimationGroup("g")
	a := NewAnimation("bad", "color", 1, DataVector3, LoopCycle)
	err := g.AddTargetedAnimation(a, NewNode("n"))
	if !errors.Is(err, ErrUnknownProperty) {
		t.Fatalf("expected ErrUnknownProperty, got %v", err)
	}
}

func TestGroupStartAdvanceLoops(t *testing.T) {
	g, tn := newTestGroup(t)
	g.Normalize(0, 10)
	g.Start(true, 1, 0, 10)

	if !g.IsPlaying() || !g.IsStarted() {
		t.Fatal("expected group to be playing after Start")
	}

	g.Advance(4)
	if g.Frame() != 4 {
		t.Errorf("expected frame 4, got %v", g.Frame())
	}
	if tn.Position.X != 4 {
		t.Errorf("expected position.x 4, got %v", tn.Position.X)
	}

	g.Advance(8)
	if g.Frame() != 2 {
		t.Errorf("expected looped frame 2, got %v", g.Frame())
	}
}

func TestGroupNoLoopEnds(t *testing.T) {
	g, _ := newTestGroup(t)
	g.Start(false, 1, 0, 10)
	g.Advance(20)
	if g.IsPlaying() || g.IsStarted() {
		t.Error("expected non-looping group to stop at the end")
	}
	if g.Frame() != 10 {
		t.Errorf("expected frame 10, got %v", g.Frame())
	}
}

func TestGroupPausePlayStop(t *testing.T) {
	g, _ := newTestGroup(t)
	g.Start(true, 1, 0, 10)
	g.Advance(3)
	g.Pause()
	g.Advance(3)
	if g.Frame() != 3 {
		t.Errorf("paused group advanced to %v", g.Frame())
	}

	g.Play()
	g.Advance(1)
	if g.Frame() != 4 {
		t.Errorf("resumed group at %v, want 4", g.Frame())
	}

	g.GoToFrame(0)
	g.Stop()
	if g.IsStarted() || g.IsPlaying() {
		t.Error("expected stopped group")
	}
	if g.Frame() != 0 {
		t.Errorf("expected frame 0 after stop, got %v", g.Frame())
	}
}

func TestGroupNormalizeKeepsKeys(t *testing.T) {
	g, _ := newTestGroup(t)
	before := g.TargetedAnimations()[0].Animation.Keys()
	g.Normalize(0, 100)

	if g.From() != 0 || g.To() != 100 {
		t.Errorf("expected window 0..100, got %v..%v", g.From(), g.To())
	}
	after := g.TargetedAnimations()[0].Animation.Keys()
	if len(after) != len(before) || after[1].Frame != 10 {
		t.Errorf("Normalize changed keys: %v", after)
	}
}

func TestGroupDisposeDetaches(t *testing.T) {
	s := NewScene()
	g, _ := newTestGroup(t)
	if err := s.AddAnimationGroup(g); err != nil {
		t.Fatal(err)
	}
	g.Dispose()

	if len(s.AnimationGroups()) != 0 {
		t.Error("expected disposed group to leave the scene")
	}
	g.Start(true, 1, 0, 10)
	if g.IsPlaying() {
		t.Error("disposed group must ignore Start")
	}
}
