package model

import "github.com/go-gl/mathgl/mgl32"

type LightingKind int

const (
	CookTorrance LightingKind = iota
)

type NormalDistribution int

const (
	TrowbridgeReitzGGX NormalDistribution = iota
)

type GeometryFunction int

const (
	SmithSchlickGGX GeometryFunction = iota
)

type LightingModel struct {
	Kind         LightingKind
	Distribution NormalDistribution
	Geometry     GeometryFunction
}

// DefaultLightingModel is used for every imported material.
var DefaultLightingModel = LightingModel{
	Kind:         CookTorrance,
	Distribution: TrowbridgeReitzGGX,
	Geometry:     SmithSchlickGGX,
}

type AlphaMode int

const (
	AlphaOpaque AlphaMode = iota
	AlphaMask
	AlphaBlend
)

type PbrMaterial struct {
	Name string

	Albedo        mgl32.Vec4
	AlbedoTexture *Texture2D

	Metallic                 float32
	Roughness                float32
	MetallicRoughnessTexture *Texture2D

	NormalTexture *Texture2D
	NormalScale   float32

	OcclusionTexture  *Texture2D
	OcclusionStrength float32

	Emissive        mgl32.Vec3
	EmissiveTexture *Texture2D

	Transmission        float32
	TransmissionTexture *Texture2D
	IndexOfRefraction   float32

	AlphaMode   AlphaMode
	AlphaCutout float32
	DoubleSided bool

	LightingModel LightingModel
}

// NewPbrMaterial returns a material with the glTF default factors.
func NewPbrMaterial(name string) *PbrMaterial {
	return &PbrMaterial{
		Name:              name,
		Albedo:            mgl32.Vec4{1, 1, 1, 1},
		Metallic:          1,
		Roughness:         1,
		NormalScale:       1,
		OcclusionStrength: 1,
		IndexOfRefraction: 1.5,
		AlphaCutout:       0.5,
		LightingModel:     DefaultLightingModel,
	}
}

// Textures returns the resolved textures in a fixed slot order, skipping
// empty slots.
func (m *PbrMaterial) Textures() []*Texture2D {
	var r []*Texture2D
	for _, t := range []*Texture2D{
		m.AlbedoTexture,
		m.MetallicRoughnessTexture,
		m.NormalTexture,
		m.OcclusionTexture,
		m.EmissiveTexture,
		m.TransmissionTexture,
	} {
		if t != nil {
			r = append(r, t)
		}
	}
	return r
}
