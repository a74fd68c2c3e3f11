package geom

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// column-major, same layout as glTF node.matrix
func NewMatrix4FromArray(a [16]float32) mgl32.Mat4 {
	return mgl32.Mat4(a)
}

// NewTRSMatrix4 returns T * R * S.
func NewTRSMatrix4(pos mgl32.Vec3, rot mgl32.Quat, scale mgl32.Vec3) mgl32.Mat4 {
	t := mgl32.Translate3D(pos.X(), pos.Y(), pos.Z())
	s := mgl32.Scale3D(scale.X(), scale.Y(), scale.Z())
	return t.Mul4(rot.Mat4()).Mul4(s)
}

// IsIdentity compares exactly. Matrices that are only close to identity are
// not identity.
func IsIdentity(m mgl32.Mat4) bool {
	return m == mgl32.Ident4()
}

// NormalMatrix returns the inverse-transpose of the upper 3x3 of m.
func NormalMatrix(m mgl32.Mat4) (mgl32.Mat3, bool) {
	m3 := m.Mat3()
	if m3.Det() == 0 {
		return mgl32.Mat3{}, false
	}
	return m3.Inv().Transpose(), true
}

func ApplyToPoints(m mgl32.Mat4, points []mgl32.Vec3) {
	for i, p := range points {
		points[i] = m.Mul4x1(p.Vec4(1)).Vec3()
	}
}

// ApplyToDirections transforms and renormalizes. Zero vectors stay zero.
func ApplyToDirections(m mgl32.Mat3, dirs []mgl32.Vec3) {
	for i, d := range dirs {
		dirs[i] = normalize(m.Mul3x1(d))
	}
}

// ApplyToTangents transforms xyz by the upper 3x3 of m and keeps the
// handedness in w.
func ApplyToTangents(m mgl32.Mat4, tangents []mgl32.Vec4) {
	m3 := m.Mat3()
	for i, t := range tangents {
		tangents[i] = normalize(m3.Mul3x1(t.Vec3())).Vec4(t.W())
	}
}

func normalize(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l == 0 || math32.IsNaN(l) {
		return v
	}
	return v.Mul(1 / l)
}
