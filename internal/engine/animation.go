package engine

import (
	"github.com/Faultbox/rigview/pkg/math"
)

// DataType selects how an animation interpolates its key values.
type DataType int

const (
	// DataVector3 interpolates 3-component vectors linearly.
	DataVector3 DataType = iota
	// DataQuaternion interpolates rotations spherically.
	DataQuaternion
)

// String returns the data type name.
func (d DataType) String() string {
	switch d {
	case DataVector3:
		return "vector3"
	case DataQuaternion:
		return "quaternion"
	default:
		return "unknown"
	}
}

// LoopMode controls what a curve does past its last key.
type LoopMode int

const (
	// LoopCycle restarts from the first key.
	LoopCycle LoopMode = iota
	// LoopConstant holds the last key.
	LoopConstant
)

// Value is a keyframe value. Vector values use X, Y and Z; quaternion values
// use all four components.
type Value struct {
	X, Y, Z, W float32
}

// VectorValue wraps a vector as a key value.
func VectorValue(v math.Vec3) Value {
	return Value{X: v.X, Y: v.Y, Z: v.Z}
}

// QuaternionValue wraps a rotation as a key value.
func QuaternionValue(q math.Quat) Value {
	return Value{X: q.X, Y: q.Y, Z: q.Z, W: q.W}
}

// Vec3 reads the value as a vector.
func (v Value) Vec3() math.Vec3 {
	return math.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

// Quat reads the value as a quaternion.
func (v Value) Quat() math.Quat {
	return math.Quat{X: v.X, Y: v.Y, Z: v.Z, W: v.W}
}

// Key is a single keyframe.
type Key struct {
	Frame float32
	Value Value
}

// Animation is a keyframe curve driving one property of one target.
// Keys are expected in ascending frame order.
type Animation struct {
	Name           string
	TargetProperty string
	FPS            float32
	DataType       DataType
	LoopMode       LoopMode

	keys []Key
}

// NewAnimation creates an animation curve with no keys.
func NewAnimation(name, targetProperty string, fps float32, dataType DataType, loopMode LoopMode) *Animation {
	return &Animation{
		Name:           name,
		TargetProperty: targetProperty,
		FPS:            fps,
		DataType:       dataType,
		LoopMode:       loopMode,
	}
}

// SetKeys replaces the curve keys. The slice is used as given.
func (a *Animation) SetKeys(keys []Key) {
	a.keys = keys
}

// Keys returns the curve keys. Callers must not modify the returned slice.
func (a *Animation) Keys() []Key {
	return a.keys
}

// FrameRange returns the first and last key frames.
func (a *Animation) FrameRange() (from, to float32, ok bool) {
	if len(a.keys) == 0 {
		return 0, 0, false
	}
	return a.keys[0].Frame, a.keys[len(a.keys)-1].Frame, true
}

// Evaluate samples the curve at the given frame. Frames before the first key
// or after the last key clamp to that key.
func (a *Animation) Evaluate(frame float32) Value {
	keys := a.keys
	if len(keys) == 0 {
		if a.DataType == DataQuaternion {
			return QuaternionValue(math.QuatIdentity())
		}
		return Value{}
	}
	if len(keys) == 1 {
		return keys[0].Value
	}

	// Find surrounding keyframes
	var prev, next int
	for i := range keys {
		if keys[i].Frame > frame {
			next = i
			break
		}
		prev = i
		next = i
	}

	if prev == next {
		return keys[prev].Value
	}

	k0 := keys[prev]
	k1 := keys[next]
	t := float32(0)
	if k1.Frame != k0.Frame {
		t = (frame - k0.Frame) / (k1.Frame - k0.Frame)
	}

	if a.DataType == DataQuaternion {
		return QuaternionValue(k0.Value.Quat().Slerp(k1.Value.Quat(), t))
	}
	return VectorValue(k0.Value.Vec3().Lerp(k1.Value.Vec3(), t))
}

// TargetedAnimation binds a curve to the node it drives.
type TargetedAnimation struct {
	Animation *Animation
	Target    *Node
}
