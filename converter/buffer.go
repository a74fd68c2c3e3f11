package converter

import (
	"github.com/binzume/gltfmodel/assets"
	"github.com/binzume/gltfmodel/gltfutil"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// resolveBuffers loads every buffer of the document. The GLB blob can back
// one URI-less buffer only.
func (s *importState) resolveBuffers(blob []byte) error {
	s.buffers = make([][]byte, len(s.doc.Buffers))
	for i, b := range s.doc.Buffers {
		var data []byte
		var err error
		switch {
		case b.URI == "":
			if blob == nil {
				return errors.Wrapf(ErrMissingEmbeddedData, "buffer %d", i)
			}
			data, blob = blob, nil
		case assets.IsDataURL(b.URI):
			data, err = assets.DecodeDataURL(b.URI)
		default:
			data, err = s.store.Remove(gltfutil.ResolveURI(s.baseDir, b.URI))
		}
		if err != nil {
			return errors.Wrapf(err, "buffer %d", i)
		}
		if len(data) < int(b.ByteLength) {
			return errors.Wrapf(ErrCorruptBufferData, "buffer %d: %d bytes, declared %d", i, len(data), b.ByteLength)
		}
		data = padTo4(data)
		b.Data = data
		s.buffers[i] = data
		s.log.Debug("buffer loaded", zap.Int("buffer", i), zap.Int("bytes", len(data)))
	}
	return nil
}

// padTo4 returns data zero-padded to a multiple of four bytes. The input is
// never appended to in place since it may alias a larger file.
func padTo4(data []byte) []byte {
	if len(data)%4 == 0 {
		return data
	}
	out := make([]byte, (len(data)+3)&^3)
	copy(out, data)
	return out
}

// bufferViewData returns the bytes of a buffer view.
func (s *importState) bufferViewData(index uint32) ([]byte, uint32, error) {
	if int(index) >= len(s.doc.BufferViews) {
		return nil, 0, errors.Wrapf(ErrInvalidReference, "buffer view %d", index)
	}
	view := s.doc.BufferViews[index]
	if int(view.Buffer) >= len(s.buffers) {
		return nil, 0, errors.Wrapf(ErrInvalidReference, "buffer %d", view.Buffer)
	}
	buf := s.buffers[view.Buffer]
	start, end := int(view.ByteOffset), int(view.ByteOffset)+int(view.ByteLength)
	if end > len(buf) {
		return nil, 0, errors.Wrapf(ErrCorruptBufferData, "buffer view %d exceeds buffer %d", index, view.Buffer)
	}
	return buf[start:end], view.ByteStride, nil
}
