package math

import "math"

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{X: 0, Y: 0, Z: 0, W: 1}
}

// QuatFromAxisAngle creates a quaternion from axis-angle rotation.
// axis should be normalized, angle is in radians.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	halfAngle := angle / 2
	s := float32(math.Sin(float64(halfAngle)))
	return Quat{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: float32(math.Cos(float64(halfAngle))),
	}
}

// QuatFromEuler converts euler angles (radians) to a quaternion.
// Rotation order is yaw (Y), then pitch (X), then roll (Z).
func QuatFromEuler(e Vec3) Quat {
	sp, cp := math.Sincos(float64(e.X) * 0.5)
	sy, cy := math.Sincos(float64(e.Y) * 0.5)
	sr, cr := math.Sincos(float64(e.Z) * 0.5)

	return Quat{
		X: float32(cy*sp*cr + sy*cp*sr),
		Y: float32(sy*cp*cr - cy*sp*sr),
		Z: float32(cy*cp*sr - sy*sp*cr),
		W: float32(cy*cp*cr + sy*sp*sr),
	}
}

// QuatFromMat4 extracts the rotation of a pure rotation matrix.
func QuatFromMat4(m Mat4) Quat {
	m00, m01, m02 := float64(m[0]), float64(m[4]), float64(m[8])
	m10, m11, m12 := float64(m[1]), float64(m[5]), float64(m[9])
	m20, m21, m22 := float64(m[2]), float64(m[6]), float64(m[10])

	var x, y, z, w float64
	trace := m00 + m11 + m22
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		w = 0.25 / s
		x = (m21 - m12) * s
		y = (m02 - m20) * s
		z = (m10 - m01) * s
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		w = (m21 - m12) / s
		x = 0.25 * s
		y = (m01 + m10) / s
		z = (m02 + m20) / s
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		w = (m02 - m20) / s
		x = (m01 + m10) / s
		y = 0.25 * s
		z = (m12 + m21) / s
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		w = (m10 - m01) / s
		x = (m02 + m20) / s
		y = (m12 + m21) / s
		z = 0.25 * s
	}
	return Quat{X: float32(x), Y: float32(y), Z: float32(z), W: float32(w)}.Normalize()
}

// Normalize returns a normalized quaternion.
func (q Quat) Normalize() Quat {
	length := float32(math.Sqrt(float64(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)))
	if length < 0.0001 {
		return QuatIdentity()
	}
	invLen := 1.0 / length
	return Quat{
		X: q.X * invLen,
		Y: q.Y * invLen,
		Z: q.Z * invLen,
		W: q.W * invLen,
	}
}

// Dot returns the dot product of two quaternions.
func (q Quat) Dot(other Quat) float32 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

// Slerp performs spherical linear interpolation between two quaternions.
// t should be in range [0, 1].
func (q Quat) Slerp(other Quat, t float32) Quat {
	dot := q.Dot(other)

	// Take the shorter path
	if dot < 0 {
		other = Quat{X: -other.X, Y: -other.Y, Z: -other.Z, W: -other.W}
		dot = -dot
	}

	// Nearly parallel: lerp avoids dividing by sin(~0)
	if dot > 0.9995 {
		return Quat{
			X: q.X + t*(other.X-q.X),
			Y: q.Y + t*(other.Y-q.Y),
			Z: q.Z + t*(other.Z-q.Z),
			W: q.W + t*(other.W-q.W),
		}.Normalize()
	}

	theta0 := float32(math.Acos(float64(dot)))
	theta := theta0 * t
	sinTheta := float32(math.Sin(float64(theta)))
	sinTheta0 := float32(math.Sin(float64(theta0)))

	s0 := float32(math.Cos(float64(theta))) - dot*sinTheta/sinTheta0
	s1 := sinTheta / sinTheta0

	return Quat{
		X: q.X*s0 + other.X*s1,
		Y: q.Y*s0 + other.Y*s1,
		Z: q.Z*s0 + other.Z*s1,
		W: q.W*s0 + other.W*s1,
	}
}

// ToMat4 converts the quaternion to a 4x4 rotation matrix.
func (q Quat) ToMat4() Mat4 {
	q = q.Normalize()

	xx := q.X * q.X
	xy := q.X * q.Y
	xz := q.X * q.Z
	xw := q.X * q.W
	yy := q.Y * q.Y
	yz := q.Y * q.Z
	yw := q.Y * q.W
	zz := q.Z * q.Z
	zw := q.Z * q.W

	return Mat4{
		1 - 2*(yy+zz), 2 * (xy + zw), 2 * (xz - yw), 0,
		2 * (xy - zw), 1 - 2*(xx+zz), 2 * (yz + xw), 0,
		2 * (xz + yw), 2 * (yz - xw), 1 - 2*(xx+yy), 0,
		0, 0, 0, 1,
	}
}

// Mul multiplies two quaternions (combines rotations).
func (q Quat) Mul(other Quat) Quat {
	return Quat{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

// ApproxEqual reports whether q and other describe the same rotation
// within eps, treating q and -q as equal.
func (q Quat) ApproxEqual(other Quat, eps float32) bool {
	d := q.Normalize().Dot(other.Normalize())
	return 1-absf(d) <= eps
}

// Array returns the components as [x, y, z, w].
func (q Quat) Array() [4]float32 {
	return [4]float32{q.X, q.Y, q.Z, q.W}
}

// QuatFromArray builds a Quat from [x, y, z, w].
func QuatFromArray(a [4]float32) Quat {
	return Quat{X: a[0], Y: a[1], Z: a[2], W: a[3]}
}
