package converter

import (
	"fmt"

	"github.com/binzume/gltfmodel/assets"
	"github.com/binzume/gltfmodel/gltfutil"
	"github.com/binzume/gltfmodel/model"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"
)

// AssetStore provides raw bytes by resolved path. Remove consumes the entry.
type AssetStore interface {
	Get(path string) ([]byte, error)
	Remove(path string) ([]byte, error)
	Deserialize(path string) (*model.Texture2D, error)
}

type ImageDecoder = assets.ImageDecoder

const (
	CubicSplineLinear = "linear"
	CubicSplineError  = "error"
)

type GLTFToModelOption struct {
	// CubicSpline selects how CUBICSPLINE samplers are handled.
	// "linear" (default): sample the keyframe values linearly. "error": fail.
	CubicSpline    string `yaml:"cubicSpline"`
	SkipAnimations bool   `yaml:"skipAnimations"`
	SkipTextures   bool   `yaml:"skipTextures"`

	// MaxPixels limits images decoded by Open. 0: unlimited
	MaxPixels int `yaml:"maxPixels"`

	// ImageDecoder decodes images stored in buffer views. nil: such images
	// fail with CapabilityMissingError.
	ImageDecoder ImageDecoder `yaml:"-"`
	Logger       *zap.Logger  `yaml:"-"`
}

type gltfToModel struct {
	*GLTFToModelOption
	log *zap.Logger
}

func NewGLTFToModelConverter(options *GLTFToModelOption) *gltfToModel {
	if options == nil {
		options = &GLTFToModelOption{}
	}
	if options.CubicSpline == "" {
		options.CubicSpline = CubicSplineLinear
	}
	log := options.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &gltfToModel{
		GLTFToModelOption: options,
		log:               log,
	}
}

// importState is everything one import needs. The store is only reachable
// from here, never from package state.
type importState struct {
	*gltfToModel
	store   AssetStore
	doc     *gltf.Document
	baseDir string
	buffers [][]byte

	// inMemory reads all-zero node transform fields as unset.
	inMemory bool
}

// Convert consumes the document at path from store, along with every buffer
// it references, and builds a Model. The first error aborts the import.
func (c *gltfToModel) Convert(store AssetStore, path string) (*model.Model, error) {
	data, err := store.Remove(path)
	if err != nil {
		return nil, err
	}
	doc, blob, err := gltfutil.Parse(data)
	if err != nil {
		return nil, err
	}
	c.log.Debug("parsed document", zap.String("path", path),
		zap.Int("buffers", len(doc.Buffers)), zap.Int("nodes", len(doc.Nodes)))
	s := &importState{gltfToModel: c, store: store, doc: doc, baseDir: gltfutil.BaseDir(path)}
	return s.convert(blob)
}

// ConvertDocument converts a document built in memory. A node whose Matrix,
// Rotation or Scale is all zero is treated as not setting it, as with
// gltf.Node.MatrixOrDefault. Relative URIs are resolved against baseDir.
// blob is the GLB binary chunk, if any.
func (c *gltfToModel) ConvertDocument(store AssetStore, doc *gltf.Document, blob []byte, baseDir string) (*model.Model, error) {
	s := &importState{gltfToModel: c, store: store, doc: doc, baseDir: baseDir, inMemory: true}
	return s.convert(blob)
}

func (s *importState) convert(blob []byte) (*model.Model, error) {
	c, doc := s.gltfToModel, s.doc

	if err := s.resolveBuffers(blob); err != nil {
		return nil, err
	}

	materials := make([]*model.PbrMaterial, 0, len(doc.Materials))
	for i, m := range doc.Materials {
		mat, err := s.convertMaterial(i, m)
		if err != nil {
			return nil, err
		}
		materials = append(materials, mat)
	}

	geometries, err := s.flattenScenes()
	if err != nil {
		return nil, err
	}

	var animations []*model.Animation
	if !c.SkipAnimations {
		if animations, err = s.convertAnimations(); err != nil {
			return nil, err
		}
	}

	nodeNames := make([]string, len(doc.Nodes))
	for i, n := range doc.Nodes {
		nodeNames[i] = n.Name
	}

	c.log.Info("converted",
		zap.Int("geometries", len(geometries)),
		zap.Int("materials", len(materials)),
		zap.Int("animations", len(animations)))

	return &model.Model{
		Geometries: geometries,
		Materials:  materials,
		Animations: animations,
		NodeNames:  nodeNames,
	}, nil
}

func indexName(name string, index int) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("index %d", index)
}
