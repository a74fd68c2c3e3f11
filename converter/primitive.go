package converter

import (
	"image/color"

	"github.com/binzume/gltfmodel/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/binary"
	"github.com/qmuntal/gltf/modeler"
)

// accessor returns the accessor at index once its data is known to lie within
// its buffer views.
func (s *importState) accessor(index uint32) (*gltf.Accessor, error) {
	if int(index) >= len(s.doc.Accessors) {
		return nil, errors.Wrapf(ErrInvalidReference, "accessor %d", index)
	}
	acr := s.doc.Accessors[index]
	elem := gltf.SizeOfElement(acr.ComponentType, acr.Type)
	if acr.BufferView != nil {
		if err := s.checkViewRange(*acr.BufferView, acr.ByteOffset, acr.Count, elem); err != nil {
			return nil, errors.Wrapf(err, "accessor %d", index)
		}
	}
	if sp := acr.Sparse; sp != nil {
		if err := s.checkViewRange(sp.Indices.BufferView, sp.Indices.ByteOffset, sp.Count, sp.Indices.ComponentType.ByteSize()); err != nil {
			return nil, errors.Wrapf(err, "accessor %d: sparse indices", index)
		}
		if err := s.checkViewRange(sp.Values.BufferView, sp.Values.ByteOffset, sp.Count, elem); err != nil {
			return nil, errors.Wrapf(err, "accessor %d: sparse values", index)
		}
	}
	return acr, nil
}

// checkViewRange fails unless count elements of elemSize bytes starting at
// offset fit in the buffer view.
func (s *importState) checkViewRange(view, offset, count, elemSize uint32) error {
	if int(view) >= len(s.doc.BufferViews) {
		return errors.Wrapf(ErrInvalidReference, "buffer view %d", view)
	}
	bv := s.doc.BufferViews[view]
	stride := uint64(bv.ByteStride)
	if stride == 0 {
		stride = uint64(elemSize)
	}
	end := uint64(offset)
	if count > 0 {
		end += stride*uint64(count-1) + uint64(elemSize)
	}
	if end > uint64(bv.ByteLength) {
		return errors.Wrapf(ErrCorruptBufferData, "buffer view %d: %d bytes needed, %d available", view, end, bv.ByteLength)
	}
	return nil
}

// noData reports an accessor without buffer view or sparse storage. All its
// elements are zero.
func noData(acr *gltf.Accessor) bool {
	return acr.BufferView == nil && acr.Sparse == nil
}

// guard returns a panic raised by fn as an error. modeler trusts sparse
// indices and component types.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("%v", r)
		}
	}()
	return fn()
}

func (s *importState) readAccessor(index uint32) (interface{}, error) {
	acr, err := s.accessor(index)
	if err != nil {
		return nil, err
	}
	var data interface{}
	err = guard(func() (err error) {
		if noData(acr) {
			data = binary.MakeSlice(acr.ComponentType, acr.Type, acr.Count)
			return nil
		}
		data, err = modeler.ReadAccessor(s.doc, acr, nil)
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(ErrCorruptBufferData, "accessor %d: %v", index, err)
	}
	return data, nil
}

// readAttribute reads a vertex attribute of type tp with one of the modeler
// readers.
func readAttribute[T any](s *importState, index uint32, tp gltf.AccessorType, read func(*gltf.Document, *gltf.Accessor, []T) ([]T, error)) ([]T, error) {
	acr, err := s.accessor(index)
	if err != nil {
		return nil, err
	}
	if noData(acr) {
		if acr.Type != tp {
			return nil, errors.Wrapf(ErrCorruptBufferData, "accessor %d: type %v", index, acr.Type)
		}
		return make([]T, acr.Count), nil
	}
	var out []T
	err = guard(func() (err error) {
		out, err = read(s.doc, acr, nil)
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(ErrCorruptBufferData, "accessor %d: %v", index, err)
	}
	return out, nil
}

func (s *importState) materialName(index *uint32) string {
	if index == nil || int(*index) >= len(s.doc.Materials) {
		return "default"
	}
	return indexName(s.doc.Materials[*index].Name, int(*index))
}

// decodePrimitive reads one primitive into a mesh in its local space.
func (s *importState) decodePrimitive(name string, p *gltf.Primitive) (*model.TriMesh, error) {
	posIndex, ok := p.Attributes["POSITION"]
	if !ok {
		return nil, errors.Wrap(ErrPrimitiveMissingPositions, name)
	}
	mesh := &model.TriMesh{Name: name, MaterialName: s.materialName(p.Material)}

	pos, err := readAttribute(s, posIndex, gltf.AccessorVec3, modeler.ReadPosition)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: positions", name)
	}
	mesh.Positions = make([]mgl32.Vec3, len(pos))
	for i, v := range pos {
		mesh.Positions[i] = mgl32.Vec3(v)
	}

	if idx, ok := p.Attributes["NORMAL"]; ok {
		normals, err := readAttribute(s, idx, gltf.AccessorVec3, modeler.ReadNormal)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: normals", name)
		}
		mesh.Normals = make([]mgl32.Vec3, len(normals))
		for i, v := range normals {
			mesh.Normals[i] = mgl32.Vec3(v)
		}
	}

	if idx, ok := p.Attributes["TANGENT"]; ok {
		tangents, err := readAttribute(s, idx, gltf.AccessorVec4, modeler.ReadTangent)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: tangents", name)
		}
		mesh.Tangents = make([]mgl32.Vec4, len(tangents))
		for i, v := range tangents {
			mesh.Tangents[i] = mgl32.Vec4(v)
		}
	}

	if idx, ok := p.Attributes["COLOR_0"]; ok {
		data, err := s.readAccessor(idx)
		if err != nil {
			return nil, err
		}
		if mesh.Colors, err = toColors(data); err != nil {
			return nil, errors.Wrap(err, name)
		}
	}

	if idx, ok := p.Attributes["TEXCOORD_0"]; ok {
		uvs, err := readAttribute(s, idx, gltf.AccessorVec2, modeler.ReadTextureCoord)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: uvs", name)
		}
		mesh.UVs = make([]mgl32.Vec2, len(uvs))
		for i, v := range uvs {
			mesh.UVs[i] = mgl32.Vec2(v)
		}
	}

	if p.Indices != nil {
		data, err := s.readAccessor(*p.Indices)
		if err != nil {
			return nil, err
		}
		switch v := data.(type) {
		case []uint8:
			mesh.Indices = model.Indices{Format: model.IndicesU8, U8: v}
		case []uint16:
			mesh.Indices = model.Indices{Format: model.IndicesU16, U16: v}
		case []uint32:
			mesh.Indices = model.Indices{Format: model.IndicesU32, U32: v}
		default:
			return nil, errors.Wrapf(model.ErrInvalidMesh, "%s: index type %T", name, data)
		}
	}

	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	return mesh, nil
}

func unorm8(v float32) uint8 {
	return uint8(mgl32.Clamp(v, 0, 1)*255 + 0.5)
}

// toColors keeps the top byte of 16-bit channels. modeler.ReadColor
// truncates them instead.
func toColors(data interface{}) ([]color.RGBA, error) {
	switch v := data.(type) {
	case [][4]uint8:
		out := make([]color.RGBA, len(v))
		for i, c := range v {
			out[i] = color.RGBA{c[0], c[1], c[2], c[3]}
		}
		return out, nil
	case [][3]uint8:
		out := make([]color.RGBA, len(v))
		for i, c := range v {
			out[i] = color.RGBA{c[0], c[1], c[2], 255}
		}
		return out, nil
	case [][4]uint16:
		out := make([]color.RGBA, len(v))
		for i, c := range v {
			out[i] = color.RGBA{uint8(c[0] >> 8), uint8(c[1] >> 8), uint8(c[2] >> 8), uint8(c[3] >> 8)}
		}
		return out, nil
	case [][3]uint16:
		out := make([]color.RGBA, len(v))
		for i, c := range v {
			out[i] = color.RGBA{uint8(c[0] >> 8), uint8(c[1] >> 8), uint8(c[2] >> 8), 255}
		}
		return out, nil
	case [][4]float32:
		out := make([]color.RGBA, len(v))
		for i, c := range v {
			out[i] = color.RGBA{unorm8(c[0]), unorm8(c[1]), unorm8(c[2]), unorm8(c[3])}
		}
		return out, nil
	case [][3]float32:
		out := make([]color.RGBA, len(v))
		for i, c := range v {
			out[i] = color.RGBA{unorm8(c[0]), unorm8(c[1]), unorm8(c[2]), 255}
		}
		return out, nil
	}
	return nil, errors.Wrapf(model.ErrInvalidMesh, "color type %T", data)
}
