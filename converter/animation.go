package converter

import (
	"github.com/binzume/gltfmodel/geom"
	"github.com/binzume/gltfmodel/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"
)

type trackKey struct {
	node          uint32
	input         uint32
	interpolation gltf.Interpolation
}

// convertAnimations builds one KeyFrames per animated node. Channels of the
// same node sharing time input and interpolation are merged into one track.
func (s *importState) convertAnimations() ([]*model.Animation, error) {
	animations := make([]*model.Animation, 0, len(s.doc.Animations))
	for ai, a := range s.doc.Animations {
		anim := &model.Animation{Name: indexName(a.Name, ai)}
		tracks := map[trackKey]*model.KeyFrames{}

		for ci, ch := range a.Channels {
			if ch.Target.Node == nil {
				continue
			}
			if ch.Sampler == nil || int(*ch.Sampler) >= len(a.Samplers) {
				return nil, errors.Wrapf(ErrInvalidReference, "animation %s: channel %d sampler", anim.Name, ci)
			}
			sampler := a.Samplers[*ch.Sampler]
			if sampler.Input == nil || sampler.Output == nil {
				return nil, errors.Wrapf(ErrInvalidReference, "animation %s: channel %d accessors", anim.Name, ci)
			}

			cubic := sampler.Interpolation == gltf.InterpolationCubicSpline
			if cubic {
				if s.CubicSpline == CubicSplineError {
					return nil, errors.Wrapf(ErrUnsupportedInterpolation, "animation %s: channel %d cubic spline", anim.Name, ci)
				}
				s.log.Warn("cubic spline sampled linearly", zap.String("animation", anim.Name), zap.Int("channel", ci))
			}

			key := trackKey{node: *ch.Target.Node, input: *sampler.Input, interpolation: sampler.Interpolation}
			kf := tracks[key]
			if kf == nil {
				times, err := s.readFloats(*sampler.Input)
				if err != nil {
					return nil, errors.Wrapf(err, "animation %s: channel %d input", anim.Name, ci)
				}
				kf = &model.KeyFrames{TargetNode: int(*ch.Target.Node), Times: times}
				if sampler.Interpolation == gltf.InterpolationStep {
					kf.Interpolation = model.InterpolationStep
				}
				tracks[key] = kf
				anim.KeyFrames = append(anim.KeyFrames, kf)
			}

			if err := s.readChannel(kf, ch.Target.Path, *sampler.Output, cubic); err != nil {
				return nil, errors.Wrapf(err, "animation %s: channel %d", anim.Name, ci)
			}
		}

		for _, kf := range anim.KeyFrames {
			if err := kf.Validate(); err != nil {
				return nil, errors.Wrapf(err, "animation %s", anim.Name)
			}
		}
		animations = append(animations, anim)
	}
	return animations, nil
}

func (s *importState) readChannel(kf *model.KeyFrames, path gltf.TRSProperty, output uint32, cubic bool) error {
	keys := len(kf.Times)
	data, err := s.readAccessor(output)
	if err != nil {
		return err
	}
	switch path {
	case gltf.TRSTranslation, gltf.TRSScale:
		v, ok := data.([][3]float32)
		if !ok {
			return errors.Wrapf(model.ErrInvalidKeyFrames, "%v: output type %T", path, data)
		}
		values := make([]mgl32.Vec3, len(v))
		for i, e := range v {
			values[i] = mgl32.Vec3(e)
		}
		if cubic {
			values = splineValues(values, keys)
		}
		if path == gltf.TRSTranslation {
			if kf.Translations != nil {
				return errors.Wrap(ErrInvalidReference, "duplicate translation channel")
			}
			kf.Translations = values
		} else {
			if kf.Scales != nil {
				return errors.Wrap(ErrInvalidReference, "duplicate scale channel")
			}
			kf.Scales = values
		}
	case gltf.TRSRotation:
		values, err := toQuats(data)
		if err != nil {
			return err
		}
		if cubic {
			values = splineValues(values, keys)
		}
		if kf.Rotations != nil {
			return errors.Wrap(ErrInvalidReference, "duplicate rotation channel")
		}
		kf.Rotations = values
	case gltf.TRSWeights:
		values, err := toFloats(data)
		if err != nil {
			return err
		}
		if cubic {
			values = splineValues(values, keys)
		}
		if kf.Weights != nil {
			return errors.Wrap(ErrInvalidReference, "duplicate weights channel")
		}
		kf.Weights = values
	default:
		return errors.Wrapf(ErrInvalidReference, "target path %v", path)
	}
	return nil
}

func (s *importState) readFloats(index uint32) ([]float32, error) {
	data, err := s.readAccessor(index)
	if err != nil {
		return nil, err
	}
	return toFloats(data)
}

// splineValues keeps the value element of each (in-tangent, value,
// out-tangent) triple. Mismatched lengths are returned as they are and left
// to KeyFrames.Validate.
func splineValues[T any](v []T, keys int) []T {
	if keys == 0 || len(v)%(3*keys) != 0 {
		return v
	}
	block := len(v) / (3 * keys)
	out := make([]T, 0, keys*block)
	for i := 0; i < keys; i++ {
		out = append(out, v[(3*i+1)*block:(3*i+2)*block]...)
	}
	return out
}

func toFloats(data interface{}) ([]float32, error) {
	var out []float32
	switch v := data.(type) {
	case []float32:
		return v, nil
	case []int8:
		out = make([]float32, len(v))
		for i, e := range v {
			out[i] = gltf.DenormalizeByte(e)
		}
	case []uint8:
		out = make([]float32, len(v))
		for i, e := range v {
			out[i] = gltf.DenormalizeUbyte(e)
		}
	case []int16:
		out = make([]float32, len(v))
		for i, e := range v {
			out[i] = gltf.DenormalizeShort(e)
		}
	case []uint16:
		out = make([]float32, len(v))
		for i, e := range v {
			out[i] = gltf.DenormalizeUshort(e)
		}
	default:
		return nil, errors.Wrapf(model.ErrInvalidKeyFrames, "scalar type %T", data)
	}
	return out, nil
}

func toQuats(data interface{}) ([]mgl32.Quat, error) {
	var rows [][4]float32
	switch v := data.(type) {
	case [][4]float32:
		rows = v
	case [][4]int8:
		rows = make([][4]float32, len(v))
		for i, e := range v {
			for j := range e {
				rows[i][j] = gltf.DenormalizeByte(e[j])
			}
		}
	case [][4]uint8:
		rows = make([][4]float32, len(v))
		for i, e := range v {
			for j := range e {
				rows[i][j] = gltf.DenormalizeUbyte(e[j])
			}
		}
	case [][4]int16:
		rows = make([][4]float32, len(v))
		for i, e := range v {
			for j := range e {
				rows[i][j] = gltf.DenormalizeShort(e[j])
			}
		}
	case [][4]uint16:
		rows = make([][4]float32, len(v))
		for i, e := range v {
			for j := range e {
				rows[i][j] = gltf.DenormalizeUshort(e[j])
			}
		}
	default:
		return nil, errors.Wrapf(model.ErrInvalidKeyFrames, "rotation type %T", data)
	}
	out := make([]mgl32.Quat, len(rows))
	for i, r := range rows {
		out[i] = geom.NewQuaternionFromArray(r)
	}
	return out, nil
}
