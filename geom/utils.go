package geom

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func Lerp(a, b, t float32) float32 {
	return (1-t)*a + t*b
}

func LerpVec3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Mul(1 - t).Add(b.Mul(t))
}

// Wrap maps x into [origin, origin+period). A non-positive period maps
// everything to origin.
func Wrap(x, origin, period float32) float32 {
	if !(period > 0) {
		return origin
	}
	r := math32.Mod(x-origin, period)
	if r < 0 {
		r += period
	}
	if r >= period {
		r = 0
	}
	return origin + r
}
