package gltfutil

import (
	"encoding/binary"
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func makeGLB(js string, bin []byte) []byte {
	for len(js)%4 != 0 {
		js += " "
	}
	for len(bin)%4 != 0 {
		bin = append(bin, 0)
	}
	total := 12 + 8 + len(js)
	if bin != nil {
		total += 8 + len(bin)
	}
	out := make([]byte, 0, total)
	out = binary.LittleEndian.AppendUint32(out, glbMagic)
	out = binary.LittleEndian.AppendUint32(out, 2)
	out = binary.LittleEndian.AppendUint32(out, uint32(total))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(js)))
	out = binary.LittleEndian.AppendUint32(out, chunkJSON)
	out = append(out, js...)
	if bin != nil {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(bin)))
		out = binary.LittleEndian.AppendUint32(out, chunkBIN)
		out = append(out, bin...)
	}
	return out
}

func TestParse(t *testing.T) {
	doc, blob, err := Parse([]byte(`{"asset":{"version":"2.0"},"nodes":[{"name":"n"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if blob != nil || len(doc.Nodes) != 1 || doc.Nodes[0].Name != "n" {
		t.Error("Parse: ", doc, blob)
	}
	if doc.Nodes[0].Scale != [3]float32{1, 1, 1} {
		t.Error("node scale should default to 1: ", doc.Nodes[0].Scale)
	}

	if _, _, err := Parse([]byte(`{"nodes":`)); err == nil {
		t.Error("broken json should fail")
	}
}

func TestParseBinary(t *testing.T) {
	data := makeGLB(`{"asset":{"version":"2.0"},"buffers":[{"byteLength":3}]}`, []byte{1, 2, 3})
	if !IsBinary(data) {
		t.Fatal("IsBinary")
	}
	doc, blob, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Buffers) != 1 || doc.Buffers[0].ByteLength != 3 {
		t.Error("buffers: ", doc.Buffers)
	}
	if len(blob) != 4 || blob[2] != 3 {
		t.Error("blob: ", blob)
	}

	_, blob, err = Parse(makeGLB(`{"asset":{"version":"2.0"}}`, nil))
	if err != nil || blob != nil {
		t.Error("glb without BIN chunk: ", blob, err)
	}

	truncated := data[:len(data)-4]
	if _, _, err := Parse(truncated); !errors.Is(err, ErrInvalidContainer) {
		t.Error("truncated glb: ", err)
	}
}

func TestResolveURI(t *testing.T) {
	for _, c := range []struct {
		doc, uri, expected string
	}{
		{"Cube.gltf", "Cube.bin", "Cube.bin"},
		{"test_data/Cube.gltf", "Cube_BaseColor.png", "test_data/Cube_BaseColor.png"},
		{"a/b/c.gltf", "../tex/x%20y.png", "a/tex/x y.png"},
		{"a/c.gltf", "data:,abc", "data:,abc"},
	} {
		if r := ResolveURI(BaseDir(c.doc), c.uri); r != c.expected {
			t.Error("ResolveURI: ", c, r)
		}
	}
}

func TestDependencies(t *testing.T) {
	js := `{
		"asset": {"version": "2.0"},
		"buffers": [{"uri": "Cube.bin", "byteLength": 4}, {"byteLength": 4}, {"uri": "data:,abcd", "byteLength": 4}],
		"images": [{"uri": "a.png"}, {"uri": "a.png"}, {"bufferView": 0, "mimeType": "image/png"}, {"uri": "unused.png"}],
		"textures": [{"source": 0}, {"source": 1}, {"source": 2}, {"source": 9}]
	}`
	deps := Dependencies([]byte(js), "models/Cube.gltf")
	expected := []string{"data:,abcd", "models/Cube.bin", "models/a.png"}
	if !reflect.DeepEqual(deps, expected) {
		t.Error("Dependencies: ", deps)
	}

	glb := Dependencies(makeGLB(js, []byte{0}), "Cube.glb")
	if len(glb) != 3 || glb[0] != "Cube.bin" {
		t.Error("Dependencies(glb): ", glb)
	}

	for _, broken := range [][]byte{nil, []byte("{"), []byte("glTF"), makeGLB(`[]`, nil)} {
		if d := Dependencies(broken, "x.gltf"); d == nil || len(d) != 0 {
			t.Error("broken input should give empty result: ", d)
		}
	}
}
