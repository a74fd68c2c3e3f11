package converter

import (
	"image/color"
	"os"
	"reflect"
	"testing"

	"github.com/binzume/gltfmodel/assets"
	"github.com/binzume/gltfmodel/imgcodec"
	"github.com/binzume/gltfmodel/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

func transformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

func near(a, b mgl32.Vec3, eps float32) bool {
	return a.Sub(b).Len() < eps
}

func TestConvertCube(t *testing.T) {
	store, err := assets.Load(imgcodec.NewDecoder(),
		"../testdata/Cube.gltf",
		"../testdata/Cube.bin",
		"../testdata/Cube_BaseColor.png",
		"../testdata/Cube_MetallicRoughness.png")
	if err != nil {
		t.Fatal(err)
	}

	m, err := NewGLTFToModelConverter(nil).Convert(store, "../testdata/Cube.gltf")
	if err != nil {
		t.Fatal(err)
	}

	if len(m.Geometries) != 1 {
		t.Fatal("geometries: ", len(m.Geometries))
	}
	g := m.Geometries[0]
	if g.Name != "Cube" || g.MaterialName != "Cube" {
		t.Error("names: ", g.Name, g.MaterialName)
	}
	if len(g.Positions) != 8 || g.Positions[0] != (mgl32.Vec3{-1, -1, -1}) {
		t.Error("positions: ", g.Positions)
	}
	if g.Indices.Format != model.IndicesU16 || g.Indices.Len() != 36 || g.TriangleCount() != 12 {
		t.Error("indices: ", g.Indices.Format, g.Indices.Len())
	}
	if len(g.Normals) != 8 || len(g.UVs) != 8 || g.Tangents != nil || g.Colors != nil {
		t.Error("channels: ", len(g.Normals), len(g.UVs), g.Tangents, g.Colors)
	}
	for _, n := range g.Normals {
		if l := n.Len(); l < 0.999 || l > 1.001 {
			t.Error("normal length: ", n)
		}
	}
	if g.UVs[7] != (mgl32.Vec2{1, 1}) {
		t.Error("uv: ", g.UVs[7])
	}

	mat, err := m.Material(g.MaterialName)
	if err != nil {
		t.Fatal(err)
	}
	if mat.Metallic != 1 || mat.Roughness != 1 || mat.Albedo != (mgl32.Vec4{1, 1, 1, 1}) {
		t.Error("default factors: ", mat.Metallic, mat.Roughness, mat.Albedo)
	}
	if mat.AlbedoTexture == nil || mat.MetallicRoughnessTexture == nil {
		t.Fatal("textures not resolved")
	}
	if w, h := mat.AlbedoTexture.Size(); w != 2 || h != 2 {
		t.Error("albedo size: ", w, h)
	}
	if c := mat.AlbedoTexture.Image.NRGBAAt(0, 0); c != (color.NRGBA{255, 0, 0, 255}) {
		t.Error("albedo pixel: ", c)
	}
	if w, h := mat.MetallicRoughnessTexture.Size(); w != 4 || h != 4 {
		t.Error("metallic roughness size: ", w, h)
	}
	if len(mat.Textures()) != 2 {
		t.Error("Textures: ", mat.Textures())
	}

	// document and buffer consumed, images kept
	keys := store.Keys()
	expected := []string{"testdata/Cube_BaseColor.png", "testdata/Cube_MetallicRoughness.png"}
	if !reflect.DeepEqual(keys, expected) {
		t.Error("store after import: ", keys)
	}
}

func TestOpenDataURL(t *testing.T) {
	m, err := Open("../testdata/data_url.gltf", nil)
	if err != nil {
		t.Fatal(err)
	}

	// root(T) > child(S, mesh) > leaf(matrix, mesh); hidden has zero scale.
	if len(m.Geometries) != 2 {
		t.Fatal("geometries: ", len(m.Geometries))
	}
	child, leaf := m.Geometries[0], m.Geometries[1]
	if child.Name != "index 0" || child.MaterialName != "default" {
		t.Error("names: ", child.Name, child.MaterialName)
	}
	for i, expected := range []mgl32.Vec3{{1, 2, 3}, {3, 2, 3}, {1, 4, 3}} {
		if !near(child.Positions[i], expected, 1e-5) {
			t.Error("child position: ", i, child.Positions[i])
		}
	}
	for i, expected := range []mgl32.Vec3{{1, 2, 1}, {3, 2, 1}, {1, 4, 1}} {
		if !near(leaf.Positions[i], expected, 1e-5) {
			t.Error("leaf position: ", i, leaf.Positions[i])
		}
	}
	if !near(child.Normals[0], mgl32.Vec3{0, 0, 1}, 1e-5) {
		t.Error("normal: ", child.Normals[0])
	}
	if child.Indices.Format != model.IndicesNone || child.TriangleCount() != 1 {
		t.Error("indices: ", child.Indices.Format)
	}
	expectedColors := []color.RGBA{{255, 0, 0, 255}, {0, 255, 0, 255}, {0, 0, 255, 255}}
	if !reflect.DeepEqual(child.Colors, expectedColors) {
		t.Error("colors: ", child.Colors)
	}

	if len(m.NodeNames) != 5 || m.NodeNames[3] != "hidden" {
		t.Error("node names: ", m.NodeNames)
	}
	if len(m.Materials) != 0 || len(m.Animations) != 0 {
		t.Error("unexpected materials or animations")
	}
}

func TestOpenAnimatedTriangle(t *testing.T) {
	m, err := Open("../testdata/AnimatedTriangle.gltf", nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(m.Geometries) != 2 {
		t.Fatal("geometries: ", len(m.Geometries))
	}
	if m.Geometries[0].Indices.Format != model.IndicesNone || m.Geometries[1].Indices.Format != model.IndicesU8 {
		t.Error("index formats: ", m.Geometries[0].Indices.Format, m.Geometries[1].Indices.Format)
	}
	for _, g := range m.Geometries {
		if g.Name != "Triangle" || g.MaterialName != "index 0" {
			t.Error("names: ", g.Name, g.MaterialName)
		}
	}

	if len(m.Materials) != 1 {
		t.Fatal("materials: ", len(m.Materials))
	}
	mat := m.Materials[0]
	if mat.Name != "index 0" {
		t.Error("material name: ", mat.Name)
	}
	if mat.Albedo != (mgl32.Vec4{1, 0.5, 0.25, 1}) || mat.Metallic != 0.5 || mat.Roughness != 0.25 {
		t.Error("factors: ", mat.Albedo, mat.Metallic, mat.Roughness)
	}
	if mat.Emissive != (mgl32.Vec3{0.1, 0.2, 0.3}) {
		t.Error("emissive: ", mat.Emissive)
	}
	if mat.AlphaMode != model.AlphaMask || mat.AlphaCutout != 0.3 || !mat.DoubleSided {
		t.Error("alpha: ", mat.AlphaMode, mat.AlphaCutout, mat.DoubleSided)
	}
	if mat.Transmission != 0.75 || mat.IndexOfRefraction != 1.33 {
		t.Error("extensions: ", mat.Transmission, mat.IndexOfRefraction)
	}
	if mat.LightingModel != model.DefaultLightingModel {
		t.Error("lighting model: ", mat.LightingModel)
	}

	anim := m.Animation("Rotate")
	if anim == nil || len(m.Animations) != 1 {
		t.Fatal("animation not found: ", m.Animations)
	}
	if len(anim.KeyFrames) != 1 {
		t.Fatal("channels sharing input should merge: ", len(anim.KeyFrames))
	}
	kf := anim.KeyFrames[0]
	if name, err := m.TargetName(kf); err != nil || name != "Triangle" {
		t.Error("target: ", name, err)
	}
	if len(kf.Times) != 5 || len(kf.Rotations) != 5 || len(kf.Translations) != 5 || kf.Scales != nil || kf.Weights != nil {
		t.Error("channels: ", kf)
	}
	if kf.Interpolation != model.InterpolationLinear || anim.Duration() != 1 {
		t.Error("interpolation/duration: ", kf.Interpolation, anim.Duration())
	}

	for _, c := range []struct {
		time     float32
		expected mgl32.Vec3
	}{
		{0, mgl32.Vec3{1, 0, 0}},
		{0.25, mgl32.Vec3{1, 1, 0}},
		{1.25, mgl32.Vec3{1, 1, 0}},
		{0.125, mgl32.Vec3{0.5 + 0.70710677, 0.70710677, 0}},
	} {
		p := transformPoint(kf.Transform(c.time), mgl32.Vec3{1, 0, 0})
		if !near(p, c.expected, 1e-4) {
			t.Error("Transform: ", c.time, p)
		}
	}
}

func TestOpenBinary(t *testing.T) {
	m, err := Open("../testdata/Triangle.glb", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Geometries) != 1 || len(m.Geometries[0].UVs) != 3 {
		t.Fatal("geometries: ", m.Geometries)
	}
	mat, err := m.Material("Textured")
	if err != nil {
		t.Fatal(err)
	}
	if mat.AlbedoTexture == nil || mat.AlbedoTexture.Name != "BaseColor" {
		t.Fatal("embedded texture: ", mat.AlbedoTexture)
	}
	if w, h := mat.AlbedoTexture.Size(); w != 2 || h != 2 {
		t.Error("size: ", w, h)
	}
}

func TestConvertBinaryWithoutDecoder(t *testing.T) {
	data, err := os.ReadFile("../testdata/Triangle.glb")
	if err != nil {
		t.Fatal(err)
	}

	store := assets.NewStore(nil).Insert("Triangle.glb", data)
	_, err = NewGLTFToModelConverter(nil).Convert(store, "Triangle.glb")
	var capErr *CapabilityMissingError
	if !errors.As(err, &capErr) || capErr.Name != "image" {
		t.Error("embedded image without decoder should fail: ", err)
	}

	store = assets.NewStore(nil).Insert("Triangle.glb", data)
	m, err := NewGLTFToModelConverter(&GLTFToModelOption{SkipTextures: true}).Convert(store, "Triangle.glb")
	if err != nil {
		t.Fatal(err)
	}
	if m.Materials[0].AlbedoTexture != nil {
		t.Error("texture should be skipped")
	}
}

func TestOpenMissingDependency(t *testing.T) {
	dir := t.TempDir()
	data, err := os.ReadFile("../testdata/Cube.gltf")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dir+"/Cube.gltf", data, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(dir+"/Cube.gltf", nil); err == nil {
		t.Error("missing Cube.bin should fail")
	}
	if _, err := Open(dir+"/NotFound.gltf", nil); err == nil {
		t.Error("missing document should fail")
	}
}

func TestOpenDeterministic(t *testing.T) {
	for _, path := range []string{"../testdata/Cube.gltf", "../testdata/AnimatedTriangle.gltf", "../testdata/Triangle.glb"} {
		a, err := Open(path, nil)
		if err != nil {
			t.Fatal(err)
		}
		b, err := Open(path, nil)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(a, b) {
			t.Error("two imports differ: ", path)
		}
	}
}

func TestOpenMaxPixels(t *testing.T) {
	// Cube_MetallicRoughness.png is 4x4
	if _, err := Open("../testdata/Cube.gltf", &GLTFToModelOption{MaxPixels: 4}); err == nil {
		t.Error("image over the limit should fail")
	}
	if _, err := Open("../testdata/Cube.gltf", &GLTFToModelOption{MaxPixels: 16}); err != nil {
		t.Error(err)
	}
}

const zeroMatrixGLTF = `{
  "asset": {"version": "2.0"},
  "buffers": [{"byteLength": 36, "uri": "data:application/octet-stream;base64,AAAAAAAAAAAAAAAAAACAPwAAAAAAAAAAAAAAAAAAgD8AAAAA"}],
  "bufferViews": [{"buffer": 0, "byteLength": 36}],
  "accessors": [{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"}],
  "meshes": [{"name": "tri", "primitives": [{"attributes": {"POSITION": 0}}]}],
  "nodes": [
    {"name": "zero", "mesh": 0, "matrix": [0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0], "children": [1]},
    {"name": "child", "mesh": 0},
    {"name": "plain", "mesh": 0, "translation": [0, 0, 1]}
  ],
  "scenes": [{"nodes": [0, 2]}]
}`

func TestConvertZeroMatrix(t *testing.T) {
	store := assets.NewStore(nil).Insert("zero.gltf", []byte(zeroMatrixGLTF))
	m, err := NewGLTFToModelConverter(nil).Convert(store, "zero.gltf")
	if err != nil {
		t.Fatal(err)
	}
	// the zero matrix node and its child are culled
	if len(m.Geometries) != 1 || m.Geometries[0].Positions[1] != (mgl32.Vec3{1, 0, 1}) {
		t.Error("geometries: ", m.Geometries)
	}
}
