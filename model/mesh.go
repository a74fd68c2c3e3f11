package model

import (
	"image/color"

	"github.com/binzume/gltfmodel/geom"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

var ErrInvalidMesh = errors.New("model: invalid mesh")

type IndexFormat int

const (
	IndicesNone IndexFormat = iota
	IndicesU8
	IndicesU16
	IndicesU32
)

func (f IndexFormat) String() string {
	switch f {
	case IndicesU8:
		return "u8"
	case IndicesU16:
		return "u16"
	case IndicesU32:
		return "u32"
	}
	return "none"
}

// Indices keeps the width declared by the source. Only the slice selected by
// Format is used. IndicesNone means a flat triangle list over the positions.
type Indices struct {
	Format IndexFormat
	U8     []uint8
	U16    []uint16
	U32    []uint32
}

func (ix *Indices) Len() int {
	switch ix.Format {
	case IndicesU8:
		return len(ix.U8)
	case IndicesU16:
		return len(ix.U16)
	case IndicesU32:
		return len(ix.U32)
	}
	return 0
}

func (ix *Indices) At(i int) uint32 {
	switch ix.Format {
	case IndicesU8:
		return uint32(ix.U8[i])
	case IndicesU16:
		return uint32(ix.U16[i])
	case IndicesU32:
		return ix.U32[i]
	}
	return uint32(i)
}

// TriMesh is one mesh primitive in world space. A nil optional channel is
// absent.
type TriMesh struct {
	Name      string
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	Tangents  []mgl32.Vec4
	Indices   Indices
	Colors    []color.RGBA
	UVs       []mgl32.Vec2

	// MaterialName is matched against PbrMaterial.Name.
	MaterialName string
}

// TriangleCount counts whole triangles only.
func (m *TriMesh) TriangleCount() int {
	if m.Indices.Format == IndicesNone {
		return len(m.Positions) / 3
	}
	return m.Indices.Len() / 3
}

func (m *TriMesh) Validate() error {
	n := len(m.Positions)
	if m.Normals != nil && len(m.Normals) != n {
		return errors.Wrapf(ErrInvalidMesh, "%s: %d normals for %d positions", m.Name, len(m.Normals), n)
	}
	if m.Tangents != nil && len(m.Tangents) != n {
		return errors.Wrapf(ErrInvalidMesh, "%s: %d tangents for %d positions", m.Name, len(m.Tangents), n)
	}
	if m.Colors != nil && len(m.Colors) != n {
		return errors.Wrapf(ErrInvalidMesh, "%s: %d colors for %d positions", m.Name, len(m.Colors), n)
	}
	if m.UVs != nil && len(m.UVs) != n {
		return errors.Wrapf(ErrInvalidMesh, "%s: %d uvs for %d positions", m.Name, len(m.UVs), n)
	}
	for i := 0; i < m.Indices.Len(); i++ {
		if v := m.Indices.At(i); int(v) >= n {
			return errors.Wrapf(ErrInvalidMesh, "%s: index %d out of range (%d positions)", m.Name, v, n)
		}
	}
	return nil
}

// Transform moves positions, normals and tangents into the space of mat. When
// the upper 3x3 of mat is singular there is no normal matrix, the normals are
// left as they are and false is returned.
func (m *TriMesh) Transform(mat mgl32.Mat4) bool {
	geom.ApplyToPoints(mat, m.Positions)
	geom.ApplyToTangents(mat, m.Tangents)
	nm, ok := geom.NormalMatrix(mat)
	if ok {
		geom.ApplyToDirections(nm, m.Normals)
	}
	return ok
}
