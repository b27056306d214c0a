// Package anim rebuilds live animation groups from stored motions and drives
// their playback.
package anim

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/rigview/internal/asset"
	"github.com/Faultbox/rigview/internal/engine"
)

// Playback defaults.
const (
	DefaultFPS   = 1
	DefaultSpeed = 1
	DefaultFrom  = 0
	DefaultTo    = 10
)

// Reconstruct builds a live animation group from a motion. Each track becomes
// one looping animation bound to the track target, with keys copied
// verbatim. The group window is normalized to DefaultFrom..DefaultTo. When s
// is non-nil the group is registered in it.
func Reconstruct(s *engine.Scene, m *asset.Motion, fps float32) (*engine.AnimationGroup, error) {
	g := engine.NewAnimationGroup(m.Name)
	for _, t := range m.Tracks() {
		a := engine.NewAnimation(t.Name, t.Property, fps, asset.ValueTypeFor(t.Property), engine.LoopCycle)
		a.SetKeys(t.Keys)
		if err := g.AddTargetedAnimation(a, t.Target); err != nil {
			return nil, fmt.Errorf("reconstruct %q track %q: %w", m.Name, t.Name, err)
		}
	}
	g.Normalize(DefaultFrom, DefaultTo)

	if s != nil {
		if err := s.AddAnimationGroup(g); err != nil {
			return nil, fmt.Errorf("reconstruct %q: %w", m.Name, err)
		}
	}
	return g, nil
}

// Slot holds at most one live group.
type Slot struct {
	group *engine.AnimationGroup
}

// Replace stops and disposes the held group, then holds g.
func (s *Slot) Replace(g *engine.AnimationGroup) {
	s.Release()
	s.group = g
}

// Release disposes the held group.
func (s *Slot) Release() {
	if s.group == nil {
		return
	}
	s.group.Stop()
	s.group.Dispose()
	s.group = nil
}

// Group returns the held group, or nil.
func (s *Slot) Group() *engine.AnimationGroup {
	return s.group
}

// Player drives the group held in its slot.
type Player struct {
	slot Slot
	log  *zap.Logger
}

// NewPlayer creates a player with an empty slot.
func NewPlayer(log *zap.Logger) *Player {
	if log == nil {
		log = zap.NewNop()
	}
	return &Player{log: log}
}

// Load disposes the previous group, then reconstructs m into the slot. On
// failure the slot stays empty.
func (p *Player) Load(s *engine.Scene, m *asset.Motion) error {
	p.slot.Release()
	g, err := Reconstruct(s, m, DefaultFPS)
	if err != nil {
		return err
	}
	p.slot.Replace(g)
	p.log.Debug("motion loaded",
		zap.String("motion", m.Name),
		zap.Int("tracks", m.TrackCount()))
	return nil
}

// Release drops the current group.
func (p *Player) Release() {
	p.slot.Release()
}

// Group returns the live group, or nil.
func (p *Player) Group() *engine.AnimationGroup {
	return p.slot.Group()
}

// HasAnimation reports whether a group is loaded.
func (p *Player) HasAnimation() bool {
	return p.slot.Group() != nil
}

// IsPlaying reports whether the loaded group is playing.
func (p *Player) IsPlaying() bool {
	g := p.slot.Group()
	return g != nil && g.IsPlaying()
}

// Play starts the group from the default window or resumes it.
func (p *Player) Play() {
	g := p.slot.Group()
	if g == nil || g.IsPlaying() {
		return
	}
	if g.IsStarted() {
		g.Play()
		return
	}
	g.Start(true, DefaultSpeed, DefaultFrom, DefaultTo)
}

// Pause freezes a playing group.
func (p *Player) Pause() {
	if g := p.slot.Group(); g != nil && g.IsPlaying() {
		g.Pause()
	}
}

// Stop rewinds to the first frame and stops.
func (p *Player) Stop() {
	g := p.slot.Group()
	if g == nil || !g.IsStarted() {
		return
	}
	g.GoToFrame(DefaultFrom)
	g.Stop()
}

// Seek jumps to a frame clamped to the group window.
func (p *Player) Seek(frame float32) {
	g := p.slot.Group()
	if g == nil {
		return
	}
	g.GoToFrame(min(max(frame, g.From()), g.To()))
}

// Frame returns the current frame, or 0 without a group.
func (p *Player) Frame() float32 {
	if g := p.slot.Group(); g != nil {
		return g.Frame()
	}
	return 0
}
