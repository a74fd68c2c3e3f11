package gltfutil

import (
	"encoding/binary"
	"encoding/json"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
)

const (
	glbMagic     = 0x46546C67 // "glTF"
	glbHeaderLen = 12
	chunkJSON    = 0x4E4F534A
	chunkBIN     = 0x004E4942
)

var ErrInvalidContainer = errors.New("gltf: invalid binary container")

func IsBinary(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data) == glbMagic
}

// SplitBinary returns the JSON chunk and the BIN chunk of a .glb file. bin is
// nil when the container has no BIN chunk.
func SplitBinary(data []byte) (jsonChunk, bin []byte, err error) {
	if len(data) < glbHeaderLen || !IsBinary(data) {
		return nil, nil, ErrInvalidContainer
	}
	if v := binary.LittleEndian.Uint32(data[4:]); v != 2 {
		return nil, nil, errors.Wrapf(ErrInvalidContainer, "version %d", v)
	}
	total := int(binary.LittleEndian.Uint32(data[8:]))
	if total > len(data) || total < glbHeaderLen {
		return nil, nil, errors.Wrapf(ErrInvalidContainer, "length %d, have %d", total, len(data))
	}
	pos := glbHeaderLen
	for pos+8 <= total {
		size := int(binary.LittleEndian.Uint32(data[pos:]))
		typ := binary.LittleEndian.Uint32(data[pos+4:])
		pos += 8
		if size < 0 || pos+size > total {
			return nil, nil, errors.Wrapf(ErrInvalidContainer, "chunk length %d", size)
		}
		switch typ {
		case chunkJSON:
			if jsonChunk == nil {
				jsonChunk = data[pos : pos+size]
			}
		case chunkBIN:
			if bin == nil {
				bin = data[pos : pos+size]
			}
		}
		pos += size
	}
	if jsonChunk == nil {
		return nil, nil, errors.Wrap(ErrInvalidContainer, "no JSON chunk")
	}
	return jsonChunk, bin, nil
}

// Parse decodes a .gltf or .glb document without touching its buffers. blob
// is the GLB binary chunk, nil for JSON documents.
func Parse(data []byte) (doc *gltf.Document, blob []byte, err error) {
	js := data
	if IsBinary(data) {
		if js, blob, err = SplitBinary(data); err != nil {
			return nil, nil, err
		}
	}
	doc = new(gltf.Document)
	if err := json.Unmarshal(js, doc); err != nil {
		return nil, nil, errors.Wrap(err, "gltf: parse document")
	}
	return doc, blob, nil
}

// BaseDir is the directory URIs of the document at docPath are relative to.
func BaseDir(docPath string) string {
	return path.Dir(filepath.ToSlash(docPath))
}

// ResolveURI returns data-URLs unchanged and joins relative URIs with
// baseDir.
func ResolveURI(baseDir, uri string) string {
	if strings.HasPrefix(uri, "data:") {
		return uri
	}
	if u, err := url.PathUnescape(uri); err == nil {
		uri = u
	}
	return path.Join(baseDir, uri)
}

// TextureImage follows texture -> image.
func TextureImage(doc *gltf.Document, texture uint32) (*gltf.Image, uint32, error) {
	if int(texture) >= len(doc.Textures) {
		return nil, 0, errors.Errorf("gltf: texture %d out of range", texture)
	}
	src := doc.Textures[texture].Source
	if src == nil {
		return nil, 0, errors.Errorf("gltf: texture %d has no source", texture)
	}
	if int(*src) >= len(doc.Images) {
		return nil, 0, errors.Errorf("gltf: image %d out of range", *src)
	}
	return doc.Images[*src], *src, nil
}
