package engine

import (
	"testing"

	"github.com/Faultbox/rigview/pkg/math"
)

func TestEvaluateVectorLerp(t *testing.T) {
	a := NewAnimation("pos", PropertyPosition, 1, DataVector3, LoopCycle)
	a.SetKeys([]Key{
		{Frame: 0, Value: VectorValue(math.Vec3{})},
		{Frame: 10, Value: VectorValue(math.Vec3{X: 10, Y: 20})},
	})

	tests := []struct {
		frame float32
		want  math.Vec3
	}{
		{-1, math.Vec3{}},
		{0, math.Vec3{}},
		{5, math.Vec3{X: 5, Y: 10}},
		{10, math.Vec3{X: 10, Y: 20}},
		{15, math.Vec3{X: 10, Y: 20}},
	}
	for _, tt := range tests {
		got := a.Evaluate(tt.frame).Vec3()
		if !got.ApproxEqual(tt.want, 1e-5) {
			t.Errorf("Evaluate(%v) = %v, want %v", tt.frame, got, tt.want)
		}
	}
}

func TestEvaluateQuaternionSlerp(t *testing.T) {
	end := math.QuatFromAxisAngle(math.Vec3{Y: 1}, 3.14159265/2)
	a := NewAnimation("rot", PropertyRotationQuaternion, 1, DataQuaternion, LoopCycle)
	a.SetKeys([]Key{
		{Frame: 0, Value: QuaternionValue(math.QuatIdentity())},
		{Frame: 2, Value: QuaternionValue(end)},
	})

	mid := a.Evaluate(1).Quat()
	want := math.QuatFromAxisAngle(math.Vec3{Y: 1}, 3.14159265/4)
	if !mid.ApproxEqual(want, 1e-4) {
		t.Errorf("Evaluate(1) = %v, want %v", mid, want)
	}
}

func TestEvaluateEmpty(t *testing.T) {
	a := NewAnimation("rot", PropertyRotationQuaternion, 1, DataQuaternion, LoopCycle)
	if got := a.Evaluate(3).Quat(); got != math.QuatIdentity() {
		t.Errorf("expected identity for empty curve, got %v", got)
	}
	if _, _, ok := a.FrameRange(); ok {
		t.Error("expected no frame range for empty curve")
	}
}

func TestDataTypeString(t *testing.T) {
	if DataVector3.String() != "vector3" || DataQuaternion.String() != "quaternion" {
		t.Errorf("unexpected names %q %q", DataVector3, DataQuaternion)
	}
}
