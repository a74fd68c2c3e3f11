// Package imgcodec decodes texture images into NRGBA pixel buffers.
package imgcodec

import (
	"bytes"
	"image"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/binzume/gltfmodel/model"
	"github.com/blezek/tga"
	_ "github.com/oov/psd"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type Decoder struct {
	// MaxPixels rejects larger images. 0: unlimited
	MaxPixels int
}

func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode detects the format from the content. TGA has no magic number, so it
// is tried when detection fails.
func (d *Decoder) Decode(name string, data []byte) (*model.Texture2D, error) {
	if d.MaxPixels > 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err == nil && cfg.Width*cfg.Height > d.MaxPixels {
			return nil, errors.Errorf("imgcodec: %s: %dx%d exceeds limit", name, cfg.Width, cfg.Height)
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil && (err == image.ErrFormat || strings.ToLower(filepath.Ext(name)) == ".tga") {
		// retry
		var terr error
		img, terr = tga.Decode(bytes.NewReader(data))
		if terr == nil {
			err = nil
		}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "imgcodec: %s", name)
	}
	return &model.Texture2D{Name: name, Image: ToNRGBA(img)}, nil
}

func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
