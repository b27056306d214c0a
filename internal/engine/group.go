package engine

import (
	"fmt"
	gomath "math"
)

// defaultGroupFPS is used by groups that hold no animations.
const defaultGroupFPS = 60

// AnimationGroup plays a set of targeted animations over a shared frame
// window. A disposed group ignores every call.
type AnimationGroup struct {
	Name string

	targeted []TargetedAnimation
	from, to float32
	frame    float32
	speed    float32
	loop     bool
	started  bool
	playing  bool
	disposed bool

	scene *Scene
}

// NewAnimationGroup creates an empty, unregistered group.
func NewAnimationGroup(name string) *AnimationGroup {
	return &AnimationGroup{Name: name, speed: 1}
}

// AddTargetedAnimation binds an animation to a node. The animation's
// property must be one the node understands.
func (g *AnimationGroup) AddTargetedAnimation(a *Animation, target *Node) error {
	if a == nil || target == nil {
		return fmt.Errorf("group %q: nil animation or target", g.Name)
	}
	if !isAnimatable(a.TargetProperty) {
		return fmt.Errorf("group %q: %s: %w", g.Name, a.TargetProperty, ErrUnknownProperty)
	}
	g.targeted = append(g.targeted, TargetedAnimation{Animation: a, Target: target})
	if from, to, ok := a.FrameRange(); ok {
		if len(g.targeted) == 1 {
			g.from, g.to = from, to
		} else {
			g.from = min(g.from, from)
			g.to = max(g.to, to)
		}
	}
	return nil
}

// TargetedAnimations returns the bound animations in insertion order.
func (g *AnimationGroup) TargetedAnimations() []TargetedAnimation {
	return g.targeted
}

// Normalize sets the playback window. Keys are left untouched.
func (g *AnimationGroup) Normalize(from, to float32) {
	if g.disposed {
		return
	}
	g.from, g.to = from, to
}

// Start begins playback at from and marks the group started.
func (g *AnimationGroup) Start(loop bool, speed, from, to float32) {
	if g.disposed {
		return
	}
	g.loop = loop
	g.speed = speed
	g.from, g.to = from, to
	g.started = true
	g.playing = true
	g.frame = from
	g.apply()
}

// Play resumes a paused group, or starts a looping one from its window.
func (g *AnimationGroup) Play() {
	if g.disposed {
		return
	}
	if !g.started {
		g.Start(true, g.speed, g.from, g.to)
		return
	}
	g.playing = true
}

// Pause freezes the current frame.
func (g *AnimationGroup) Pause() {
	if g.disposed {
		return
	}
	g.playing = false
}

// Stop halts playback and forgets the started state. The pose stays where
// it was.
func (g *AnimationGroup) Stop() {
	if g.disposed {
		return
	}
	g.playing = false
	g.started = false
}

// GoToFrame jumps to a frame and applies the pose.
func (g *AnimationGroup) GoToFrame(frame float32) {
	if g.disposed {
		return
	}
	g.frame = frame
	g.apply()
}

// Advance moves a playing group forward by dt seconds.
func (g *AnimationGroup) Advance(dt float32) {
	if g.disposed || !g.playing {
		return
	}
	g.frame += dt * g.speed * g.fps()
	if g.frame >= g.to {
		span := g.to - g.from
		switch {
		case g.loop && span > 0:
			g.frame = g.from + float32(gomath.Mod(float64(g.frame-g.from), float64(span)))
		case g.loop:
			g.frame = g.from
		default:
			g.frame = g.to
			g.playing = false
			g.started = false
		}
	}
	g.apply()
}

func (g *AnimationGroup) fps() float32 {
	for _, ta := range g.targeted {
		if ta.Animation.FPS > 0 {
			return ta.Animation.FPS
		}
	}
	return defaultGroupFPS
}

func (g *AnimationGroup) apply() {
	for _, ta := range g.targeted {
		// Property names were checked in AddTargetedAnimation.
		_ = ta.Target.SetProperty(ta.Animation.TargetProperty, ta.Animation.Evaluate(g.frame))
	}
}

// IsPlaying reports whether the group advances on tick.
func (g *AnimationGroup) IsPlaying() bool { return g.playing }

// IsStarted reports whether Start ran since the last Stop.
func (g *AnimationGroup) IsStarted() bool { return g.started }

// IsDisposed reports whether Dispose was called.
func (g *AnimationGroup) IsDisposed() bool { return g.disposed }

// Frame returns the current frame.
func (g *AnimationGroup) Frame() float32 { return g.frame }

// From returns the window start.
func (g *AnimationGroup) From() float32 { return g.from }

// To returns the window end.
func (g *AnimationGroup) To() float32 { return g.to }

// Dispose stops the group, detaches it from its scene and drops its
// animations.
func (g *AnimationGroup) Dispose() {
	if g.disposed {
		return
	}
	g.Stop()
	if g.scene != nil {
		_ = g.scene.RemoveAnimationGroup(g)
	}
	g.targeted = nil
	g.disposed = true
}
