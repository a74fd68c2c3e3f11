package converter

import (
	"os"

	"github.com/binzume/gltfmodel/assets"
	"github.com/binzume/gltfmodel/gltfutil"
	"github.com/binzume/gltfmodel/imgcodec"
	"github.com/binzume/gltfmodel/model"
	"go.uber.org/zap"
)

// Open loads a .gltf or .glb file and every file it depends on from disk,
// then converts it. Images are decoded with imgcodec, limited to MaxPixels,
// unless options carries another decoder.
func Open(path string, options *GLTFToModelOption) (*model.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var opt GLTFToModelOption
	if options != nil {
		opt = *options
	}
	if opt.ImageDecoder == nil {
		opt.ImageDecoder = &imgcodec.Decoder{MaxPixels: opt.MaxPixels}
	}
	conv := NewGLTFToModelConverter(&opt)

	deps := gltfutil.Dependencies(data, path)
	conv.log.Debug("dependencies", zap.String("path", path), zap.Strings("files", deps))
	store, err := assets.Load(opt.ImageDecoder, deps...)
	if err != nil {
		return nil, err
	}
	store.Insert(path, data)
	return conv.Convert(store, path)
}
