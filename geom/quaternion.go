package geom

import "github.com/go-gl/mathgl/mgl32"

// NewQuaternionFromArray reads glTF order (x, y, z, w).
func NewQuaternionFromArray(arr [4]float32) mgl32.Quat {
	return mgl32.Quat{W: arr[3], V: mgl32.Vec3{arr[0], arr[1], arr[2]}}
}

// Nlerp blends along the shorter arc and normalizes the result.
func Nlerp(a, b mgl32.Quat, t float32) mgl32.Quat {
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	q := a.Scale(1 - t).Add(b.Scale(t))
	if q.Len() == 0 {
		return mgl32.QuatIdent()
	}
	return q.Normalize()
}
