package converter

import (
	"encoding/json"

	"github.com/binzume/gltfmodel/assets"
	"github.com/binzume/gltfmodel/gltfutil"
	"github.com/binzume/gltfmodel/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"
)

const (
	ExtensionTransmission = "KHR_materials_transmission"
	ExtensionIOR          = "KHR_materials_ior"
)

type MaterialTransmission struct {
	TransmissionFactor  float32           `json:"transmissionFactor"`
	TransmissionTexture *gltf.TextureInfo `json:"transmissionTexture,omitempty"`
}

type MaterialIOR struct {
	IOR float32 `json:"ior"`
}

func init() {
	gltf.RegisterExtension(ExtensionTransmission, func(data []byte) (interface{}, error) {
		ext := &MaterialTransmission{}
		err := json.Unmarshal(data, ext)
		return ext, err
	})
	gltf.RegisterExtension(ExtensionIOR, func(data []byte) (interface{}, error) {
		ext := &MaterialIOR{IOR: 1.5}
		err := json.Unmarshal(data, ext)
		return ext, err
	})
}

func transmissionExtension(ext gltf.Extensions) (*MaterialTransmission, error) {
	switch v := ext[ExtensionTransmission].(type) {
	case *MaterialTransmission:
		return v, nil
	case json.RawMessage:
		t := &MaterialTransmission{}
		return t, json.Unmarshal(v, t)
	}
	return nil, nil
}

func iorExtension(ext gltf.Extensions) (*MaterialIOR, error) {
	switch v := ext[ExtensionIOR].(type) {
	case *MaterialIOR:
		return v, nil
	case json.RawMessage:
		t := &MaterialIOR{IOR: 1.5}
		return t, json.Unmarshal(v, t)
	}
	return nil, nil
}

func (s *importState) convertMaterial(index int, m *gltf.Material) (*model.PbrMaterial, error) {
	mat := model.NewPbrMaterial(indexName(m.Name, index))
	var err error

	if pbr := m.PBRMetallicRoughness; pbr != nil {
		col := pbr.BaseColorFactorOrDefault()
		mat.Albedo = mgl32.Vec4{col[0], col[1], col[2], col[3]}
		mat.Metallic = pbr.MetallicFactorOrDefault()
		mat.Roughness = pbr.RoughnessFactorOrDefault()
		if pbr.BaseColorTexture != nil {
			if mat.AlbedoTexture, err = s.texture(pbr.BaseColorTexture.Index); err != nil {
				return nil, errors.Wrapf(err, "material %s: base color", mat.Name)
			}
		}
		if pbr.MetallicRoughnessTexture != nil {
			if mat.MetallicRoughnessTexture, err = s.texture(pbr.MetallicRoughnessTexture.Index); err != nil {
				return nil, errors.Wrapf(err, "material %s: metallic roughness", mat.Name)
			}
		}
	}

	if t := m.NormalTexture; t != nil {
		mat.NormalScale = t.ScaleOrDefault()
		if t.Index != nil {
			if mat.NormalTexture, err = s.texture(*t.Index); err != nil {
				return nil, errors.Wrapf(err, "material %s: normal", mat.Name)
			}
		}
	}

	if t := m.OcclusionTexture; t != nil {
		mat.OcclusionStrength = t.StrengthOrDefault()
		if t.Index != nil {
			if mat.OcclusionTexture, err = s.texture(*t.Index); err != nil {
				return nil, errors.Wrapf(err, "material %s: occlusion", mat.Name)
			}
		}
	}

	e := m.EmissiveFactor
	mat.Emissive = mgl32.Vec3{e[0], e[1], e[2]}
	if m.EmissiveTexture != nil {
		if mat.EmissiveTexture, err = s.texture(m.EmissiveTexture.Index); err != nil {
			return nil, errors.Wrapf(err, "material %s: emissive", mat.Name)
		}
	}

	tr, err := transmissionExtension(m.Extensions)
	if err != nil {
		return nil, errors.Wrapf(err, "material %s: %s", mat.Name, ExtensionTransmission)
	}
	if tr != nil {
		mat.Transmission = tr.TransmissionFactor
		if tr.TransmissionTexture != nil {
			if mat.TransmissionTexture, err = s.texture(tr.TransmissionTexture.Index); err != nil {
				return nil, errors.Wrapf(err, "material %s: transmission", mat.Name)
			}
		}
	}
	ior, err := iorExtension(m.Extensions)
	if err != nil {
		return nil, errors.Wrapf(err, "material %s: %s", mat.Name, ExtensionIOR)
	}
	if ior != nil {
		mat.IndexOfRefraction = ior.IOR
	}

	switch m.AlphaMode {
	case gltf.AlphaMask:
		mat.AlphaMode = model.AlphaMask
	case gltf.AlphaBlend:
		mat.AlphaMode = model.AlphaBlend
	default:
		mat.AlphaMode = model.AlphaOpaque
	}
	mat.AlphaCutout = m.AlphaCutoffOrDefault()
	mat.DoubleSided = m.DoubleSided

	return mat, nil
}

// texture resolves a texture index to decoded pixels. Images in buffer views
// or data-URLs go through the configured decoder, file URIs through the store.
func (s *importState) texture(index uint32) (*model.Texture2D, error) {
	if s.SkipTextures {
		return nil, nil
	}
	img, imgIndex, err := gltfutil.TextureImage(s.doc, index)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidReference, err.Error())
	}
	name := indexName(img.Name, int(imgIndex))

	switch {
	case img.BufferView != nil:
		data, stride, err := s.bufferViewData(*img.BufferView)
		if err != nil {
			return nil, err
		}
		if stride != 0 {
			return nil, errors.Wrapf(ErrUnsupportedStridedImage, "image %d: stride %d", imgIndex, stride)
		}
		return s.decodeImage(name, img.MimeType, data)
	case assets.IsDataURL(img.URI):
		data, err := assets.DecodeDataURL(img.URI)
		if err != nil {
			return nil, errors.Wrapf(err, "image %d", imgIndex)
		}
		mimeType := img.MimeType
		if mimeType == "" {
			mimeType = assets.DataURLMediaType(img.URI)
		}
		return s.decodeImage(name, mimeType, data)
	case img.URI != "":
		return s.store.Deserialize(gltfutil.ResolveURI(s.baseDir, img.URI))
	}
	return nil, errors.Wrapf(ErrInvalidReference, "image %d has no source", imgIndex)
}

// decodeImage decodes image bytes carried by the document itself.
func (s *importState) decodeImage(name, mimeType string, data []byte) (*model.Texture2D, error) {
	if s.ImageDecoder == nil {
		return nil, &CapabilityMissingError{Name: "image"}
	}
	s.log.Debug("decoding embedded image", zap.String("image", name), zap.String("mimeType", mimeType))
	return s.ImageDecoder.Decode(name, data)
}
