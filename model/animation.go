package model

import (
	"github.com/binzume/gltfmodel/geom"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

var ErrInvalidKeyFrames = errors.New("model: invalid keyframes")

type Interpolation int

const (
	InterpolationLinear Interpolation = iota
	InterpolationStep
)

func (i Interpolation) String() string {
	if i == InterpolationStep {
		return "step"
	}
	return "linear"
}

type Animation struct {
	Name      string
	KeyFrames []*KeyFrames
}

// Duration is the longest time axis among the tracks.
func (a *Animation) Duration() float32 {
	var d float32
	for _, kf := range a.KeyFrames {
		if t := kf.Times[len(kf.Times)-1]; t > d {
			d = t
		}
	}
	return d
}

// KeyFrames is the track of one animated node. A nil value channel is absent.
type KeyFrames struct {
	TargetNode    int
	Interpolation Interpolation
	Times         []float32

	Rotations    []mgl32.Quat
	Translations []mgl32.Vec3
	Scales       []mgl32.Vec3
	// Weights is row-major: one row of morph target weights per keyframe.
	Weights []float32
}

func (k *KeyFrames) Validate() error {
	n := len(k.Times)
	if n < 2 {
		return errors.Wrapf(ErrInvalidKeyFrames, "node %d: %d keyframes, need at least 2", k.TargetNode, n)
	}
	for i := 1; i < n; i++ {
		if !(k.Times[i] > k.Times[i-1]) {
			return errors.Wrapf(ErrInvalidKeyFrames, "node %d: times not strictly increasing at %d", k.TargetNode, i)
		}
	}
	if k.Rotations != nil && len(k.Rotations) != n {
		return errors.Wrapf(ErrInvalidKeyFrames, "node %d: %d rotations for %d keyframes", k.TargetNode, len(k.Rotations), n)
	}
	if k.Translations != nil && len(k.Translations) != n {
		return errors.Wrapf(ErrInvalidKeyFrames, "node %d: %d translations for %d keyframes", k.TargetNode, len(k.Translations), n)
	}
	if k.Scales != nil && len(k.Scales) != n {
		return errors.Wrapf(ErrInvalidKeyFrames, "node %d: %d scales for %d keyframes", k.TargetNode, len(k.Scales), n)
	}
	if k.Weights != nil && (len(k.Weights) == 0 || len(k.Weights)%n != 0) {
		return errors.Wrapf(ErrInvalidKeyFrames, "node %d: %d weights for %d keyframes", k.TargetNode, len(k.Weights), n)
	}
	return nil
}

// MorphTargetCount is the number of weights per keyframe.
func (k *KeyFrames) MorphTargetCount() int {
	if len(k.Times) == 0 {
		return 0
	}
	return len(k.Weights) / len(k.Times)
}

// Transform samples the track at time. The result is T * S * R; absent
// channels contribute identity.
func (k *KeyFrames) Transform(time float32) mgl32.Mat4 {
	index, t := k.interpolate(time)
	m := mgl32.Ident4()
	if k.Rotations != nil {
		var q mgl32.Quat
		if k.Interpolation == InterpolationStep {
			q = k.Rotations[index+k.step(t)]
		} else {
			q = geom.Nlerp(k.Rotations[index], k.Rotations[index+1], t)
		}
		m = m.Mul4(q.Mat4())
	}
	if k.Scales != nil {
		v := k.lerpVec3(k.Scales, index, t)
		m = mgl32.Scale3D(v.X(), v.Y(), v.Z()).Mul4(m)
	}
	if k.Translations != nil {
		v := k.lerpVec3(k.Translations, index, t)
		m = mgl32.Translate3D(v.X(), v.Y(), v.Z()).Mul4(m)
	}
	return m
}

// WeightsAt samples the morph target weights at time. Empty without a weight
// channel.
func (k *KeyFrames) WeightsAt(time float32) []float32 {
	if k.Weights == nil {
		return []float32{}
	}
	index, t := k.interpolate(time)
	count := k.MorphTargetCount()
	v0 := k.Weights[count*index : count*(index+1)]
	v1 := k.Weights[count*(index+1) : count*(index+2)]
	if k.Interpolation == InterpolationStep {
		if k.step(t) == 1 {
			v0 = v1
		}
		return append([]float32(nil), v0...)
	}
	w := make([]float32, count)
	for i := range w {
		w[i] = geom.Lerp(v0[i], v1[i], t)
	}
	return w
}

func (k *KeyFrames) lerpVec3(values []mgl32.Vec3, index int, t float32) mgl32.Vec3 {
	if k.Interpolation == InterpolationStep {
		return values[index+k.step(t)]
	}
	return geom.LerpVec3(values[index], values[index+1], t)
}

func (k *KeyFrames) step(t float32) int {
	if t >= 1 {
		return 1
	}
	return 0
}

// interpolate returns the segment and the position inside it. time is
// wrapped into one cycle starting at Times[0]. The last segment is never
// scanned; times past the second to last keyframe map to its end.
func (k *KeyFrames) interpolate(time float32) (int, float32) {
	n := len(k.Times)
	first, last := k.Times[0], k.Times[n-1]
	time = geom.Wrap(time, first, last-first)
	for i := 0; i < n-2; i++ {
		if k.Times[i] <= time && time < k.Times[i+1] {
			return i, (time - k.Times[i]) / (k.Times[i+1] - k.Times[i])
		}
	}
	return n - 2, 1
}
