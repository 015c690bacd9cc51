package game

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Clamp limits v to the inclusive range [min, max].
func Clamp(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// AxisAngle returns the rotation matrix for a right-handed rotation of angle
// radians around the given unit axis.
func AxisAngle(axis mgl32.Vec3, angle float32) mgl32.Mat3 {
	s, c := math32.Sin(angle), math32.Cos(angle)
	t := 1 - c
	x, y, z := axis.X(), axis.Y(), axis.Z()
	return mgl32.Mat3FromCols(
		mgl32.Vec3{t*x*x + c, t*x*y + s*z, t*x*z - s*y},
		mgl32.Vec3{t*x*y - s*z, t*y*y + c, t*y*z + s*x},
		mgl32.Vec3{t*x*z + s*y, t*y*z - s*x, t*z*z + c},
	)
}

// Projection returns the projection of a onto the unit normal.
func Projection(a, normal mgl32.Vec3) mgl32.Vec3 {
	return normal.Mul(normal.Dot(a))
}

// NormalOrZero normalizes v, returning the zero vector for near-zero input.
func NormalOrZero(v mgl32.Vec3) mgl32.Vec3 {
	if v.LenSqr() < 1e-12 {
		return mgl32.Vec3{}
	}
	return v.Normalize()
}

// LimitVectorLength scales v down so its length does not exceed maxLen.
func LimitVectorLength(v mgl32.Vec3, maxLen float32) mgl32.Vec3 {
	if n := v.Len(); n > maxLen {
		return v.Mul(maxLen / n)
	}
	return v
}

// LimitVectorLength2 is LimitVectorLength for 2-vectors.
func LimitVectorLength2(v mgl32.Vec2, maxLen float32) mgl32.Vec2 {
	if n := v.Len(); n > maxLen {
		return v.Mul(maxLen / n)
	}
	return v
}
