package asset

import (
	"slices"

	"github.com/Faultbox/rigview/internal/engine"
	"github.com/Faultbox/rigview/internal/ident"
)

// ValueTypeFor returns the keyframe data type used for a property. Only
// rotationQuaternion is interpolated as a quaternion.
func ValueTypeFor(property string) engine.DataType {
	if property == engine.PropertyRotationQuaternion {
		return engine.DataQuaternion
	}
	return engine.DataVector3
}

// Track is the keyframe data of one animated property of one node.
type Track struct {
	Name     string
	Target   *engine.Node
	Property string
	Keys     []engine.Key
}

// ValueType returns the data type implied by the track property.
func (t Track) ValueType() engine.DataType {
	return ValueTypeFor(t.Property)
}

// Motion is one animation clip captured from an imported asset. It owns a
// private copy of its keys and never changes after extraction.
type Motion struct {
	ID      ident.ID
	Name    string
	ModelID ident.ID

	tracks []Track
}

// ExtractMotion copies the keyframes of an animation group into a new Motion
// owned by modelID. The group is not modified and may be disposed
// afterwards.
func ExtractMotion(modelID ident.ID, g *engine.AnimationGroup) *Motion {
	var tracks []Track
	for _, ta := range g.TargetedAnimations() {
		tracks = append(tracks, Track{
			Name:     ta.Animation.Name,
			Target:   ta.Target,
			Property: ta.Animation.TargetProperty,
			Keys:     ta.Animation.Keys(),
		})
	}
	return NewMotion(modelID, g.Name, tracks)
}

// NewMotion builds a motion from tracks. Keys are cloned and sorted by frame.
func NewMotion(modelID ident.ID, name string, tracks []Track) *Motion {
	m := &Motion{
		ID:      ident.New(),
		Name:    name,
		ModelID: modelID,
	}
	for _, t := range tracks {
		t.Keys = slices.Clone(t.Keys)
		slices.SortStableFunc(t.Keys, func(a, b engine.Key) int {
			switch {
			case a.Frame < b.Frame:
				return -1
			case a.Frame > b.Frame:
				return 1
			}
			return 0
		})
		m.tracks = append(m.tracks, t)
	}
	return m
}

// Tracks returns a copy of the motion's tracks, keys included.
func (m *Motion) Tracks() []Track {
	out := make([]Track, len(m.tracks))
	for i, t := range m.tracks {
		t.Keys = slices.Clone(t.Keys)
		out[i] = t
	}
	return out
}

// TrackCount returns the number of tracks.
func (m *Motion) TrackCount() int {
	return len(m.tracks)
}

// FrameRange returns the earliest and latest key frame over all tracks.
func (m *Motion) FrameRange() (from, to float32, ok bool) {
	for _, t := range m.tracks {
		if len(t.Keys) == 0 {
			continue
		}
		first, last := t.Keys[0].Frame, t.Keys[len(t.Keys)-1].Frame
		if !ok {
			from, to, ok = first, last, true
			continue
		}
		from = min(from, first)
		to = max(to, last)
	}
	return from, to, ok
}
