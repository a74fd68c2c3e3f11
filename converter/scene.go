package converter

import (
	"github.com/binzume/gltfmodel/geom"
	"github.com/binzume/gltfmodel/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"
)

// nodeMatrix returns the local transform of n. An explicit matrix wins unless
// it is identity, in which case TRS is composed. Parsed nodes carry identity
// defaults, so a zero matrix there is degenerate. For nodes built in memory
// zero matrix, rotation and scale mean unset.
func nodeMatrix(n *gltf.Node, inMemory bool) mgl32.Mat4 {
	matrix, rotation, scale := n.Matrix, n.Rotation, n.Scale
	if inMemory {
		matrix, rotation, scale = n.MatrixOrDefault(), n.RotationOrDefault(), n.ScaleOrDefault()
	}
	m := geom.NewMatrix4FromArray(matrix)
	if !geom.IsIdentity(m) {
		return m
	}
	return geom.NewTRSMatrix4(mgl32.Vec3(n.Translation), geom.NewQuaternionFromArray(rotation), mgl32.Vec3(scale))
}

type nodeEntry struct {
	node   uint32
	parent mgl32.Mat4
}

// flattenScenes walks every scene depth-first, pre-order, children in
// declaration order, and returns one world-space mesh per primitive. A node
// with a singular local transform is skipped with its whole subtree.
func (s *importState) flattenScenes() ([]*model.TriMesh, error) {
	var geometries []*model.TriMesh
	for si, scene := range s.doc.Scenes {
		visited := map[uint32]bool{}
		stack := make([]nodeEntry, 0, len(scene.Nodes))
		for i := len(scene.Nodes) - 1; i >= 0; i-- {
			stack = append(stack, nodeEntry{node: scene.Nodes[i], parent: mgl32.Ident4()})
		}

		for len(stack) > 0 {
			e := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if int(e.node) >= len(s.doc.Nodes) {
				return nil, errors.Wrapf(ErrInvalidReference, "scene %d: node %d", si, e.node)
			}
			if visited[e.node] {
				return nil, errors.Wrapf(ErrInvalidReference, "scene %d: node %d reached twice", si, e.node)
			}
			visited[e.node] = true
			node := s.doc.Nodes[e.node]

			local := nodeMatrix(node, s.inMemory)
			if local.Det() == 0 {
				s.log.Debug("skipping degenerate node", zap.Uint32("node", e.node), zap.String("name", node.Name))
				continue
			}
			world := e.parent.Mul4(local)

			if node.Mesh != nil {
				meshes, err := s.convertMesh(*node.Mesh, world)
				if err != nil {
					return nil, err
				}
				geometries = append(geometries, meshes...)
			}

			for i := len(node.Children) - 1; i >= 0; i-- {
				stack = append(stack, nodeEntry{node: node.Children[i], parent: world})
			}
		}
	}
	return geometries, nil
}

func (s *importState) convertMesh(index uint32, world mgl32.Mat4) ([]*model.TriMesh, error) {
	if int(index) >= len(s.doc.Meshes) {
		return nil, errors.Wrapf(ErrInvalidReference, "mesh %d", index)
	}
	m := s.doc.Meshes[index]
	name := indexName(m.Name, int(index))
	identity := geom.IsIdentity(world)

	meshes := make([]*model.TriMesh, 0, len(m.Primitives))
	for _, p := range m.Primitives {
		mesh, err := s.decodePrimitive(name, p)
		if err != nil {
			return nil, err
		}
		if !identity {
			if !mesh.Transform(world) {
				s.log.Warn("normals left untransformed", zap.String("mesh", name))
			}
		}
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}
