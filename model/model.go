// Package model is the engine-neutral result of an import: world-space
// triangle meshes, PBR materials and keyframe animations.
package model

import (
	"image"

	"github.com/pkg/errors"
)

var (
	ErrMaterialNotFound = errors.New("model: material not found")
	ErrNodeNotFound     = errors.New("model: node not found")
)

// Model is read-only after import.
type Model struct {
	Geometries []*TriMesh
	Materials  []*PbrMaterial
	Animations []*Animation

	// NodeNames has one entry per document node. KeyFrames.TargetNode
	// indexes into it.
	NodeNames []string
}

// Texture2D is a decoded image. Name is the resolved source path or data-URL.
type Texture2D struct {
	Name  string
	Image *image.NRGBA
}

func (t *Texture2D) Size() (int, int) {
	if t.Image == nil {
		return 0, 0
	}
	b := t.Image.Bounds()
	return b.Dx(), b.Dy()
}

// Material looks up a material by name, as referenced by TriMesh.MaterialName.
func (m *Model) Material(name string) (*PbrMaterial, error) {
	for _, mat := range m.Materials {
		if mat.Name == name {
			return mat, nil
		}
	}
	return nil, errors.Wrapf(ErrMaterialNotFound, "%q", name)
}

// TargetName resolves the node animated by kf.
func (m *Model) TargetName(kf *KeyFrames) (string, error) {
	if kf.TargetNode < 0 || kf.TargetNode >= len(m.NodeNames) {
		return "", errors.Wrapf(ErrNodeNotFound, "node %d", kf.TargetNode)
	}
	return m.NodeNames[kf.TargetNode], nil
}

// Animation returns the first animation named name, or nil.
func (m *Model) Animation(name string) *Animation {
	for _, a := range m.Animations {
		if a.Name == name {
			return a
		}
	}
	return nil
}
