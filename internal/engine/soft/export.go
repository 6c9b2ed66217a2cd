package soft

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"miirender/internal/render"
	"miirender/internal/view"
)

// GLB container constants.
const (
	glbMagic     = 0x46546C67
	glbVersion   = 2
	chunkJSON    = 0x4E4F534A
	chunkBIN     = 0x004E4942
	glbHeaderLen = 12

	componentFloat  = 5126
	componentUShort = 5123
	targetArray     = 34962
	targetElements  = 34963
)

var ErrForeignModel = errors.New("soft: model was not built by this engine")

// Exporter implements render.SceneExporter. It writes the head of a Model
// as a binary glTF 2.0 scene.
type Exporter struct{}

type gltfDoc struct {
	Asset       gltfAsset        `json:"asset"`
	Scene       int              `json:"scene"`
	Scenes      []gltfScene      `json:"scenes"`
	Nodes       []gltfNode       `json:"nodes"`
	Meshes      []gltfMesh       `json:"meshes"`
	Materials   []gltfMaterial   `json:"materials"`
	Accessors   []gltfAccessor   `json:"accessors"`
	BufferViews []gltfBufferView `json:"bufferViews"`
	Buffers     []gltfBuffer     `json:"buffers"`
	Images      []gltfImage      `json:"images,omitempty"`
	Textures    []gltfTexture    `json:"textures,omitempty"`
}

type gltfAsset struct {
	Version   string `json:"version"`
	Generator string `json:"generator"`
}

type gltfScene struct {
	Nodes []int `json:"nodes"`
}

type gltfNode struct {
	Name string `json:"name"`
	Mesh int    `json:"mesh"`
}

type gltfMesh struct {
	Name       string          `json:"name"`
	Primitives []gltfPrimitive `json:"primitives"`
}

type gltfPrimitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    int            `json:"indices"`
	Material   int            `json:"material"`
}

type gltfMaterial struct {
	Name        string  `json:"name"`
	PBR         gltfPBR `json:"pbrMetallicRoughness"`
	AlphaMode   string  `json:"alphaMode,omitempty"`
	DoubleSided bool    `json:"doubleSided,omitempty"`
}

type gltfPBR struct {
	BaseColorFactor  [4]float32   `json:"baseColorFactor"`
	BaseColorTexture *gltfTexInfo `json:"baseColorTexture,omitempty"`
	MetallicFactor   float32      `json:"metallicFactor"`
	RoughnessFactor  float32      `json:"roughnessFactor"`
}

type gltfTexInfo struct {
	Index int `json:"index"`
}

type gltfAccessor struct {
	BufferView    int       `json:"bufferView"`
	ComponentType int       `json:"componentType"`
	Count         int       `json:"count"`
	Type          string    `json:"type"`
	Min           []float32 `json:"min,omitempty"`
	Max           []float32 `json:"max,omitempty"`
}

type gltfBufferView struct {
	Buffer     int `json:"buffer"`
	ByteOffset int `json:"byteOffset"`
	ByteLength int `json:"byteLength"`
	Target     int `json:"target,omitempty"`
}

type gltfBuffer struct {
	ByteLength int `json:"byteLength"`
}

type gltfImage struct {
	BufferView int    `json:"bufferView"`
	MimeType   string `json:"mimeType"`
}

type gltfTexture struct {
	Source int `json:"source"`
}

type sceneBuilder struct {
	doc gltfDoc
	bin bytes.Buffer
}

func (b *sceneBuilder) view(data []byte, target int) int {
	for b.bin.Len()%4 != 0 {
		b.bin.WriteByte(0)
	}
	off := b.bin.Len()
	b.bin.Write(data)
	b.doc.BufferViews = append(b.doc.BufferViews, gltfBufferView{ByteOffset: off, ByteLength: len(data), Target: target})
	return len(b.doc.BufferViews) - 1
}

func (b *sceneBuilder) accessor(a gltfAccessor) int {
	b.doc.Accessors = append(b.doc.Accessors, a)
	return len(b.doc.Accessors) - 1
}

func (b *sceneBuilder) vec3s(vs []mgl32.Vec3, bounds bool) int {
	buf := make([]byte, 0, len(vs)*12)
	lo := []float32{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	hi := []float32{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	for _, v := range vs {
		for k := 0; k < 3; k++ {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v[k]))
			lo[k], hi[k] = min(lo[k], v[k]), max(hi[k], v[k])
		}
	}
	a := gltfAccessor{BufferView: b.view(buf, targetArray), ComponentType: componentFloat, Count: len(vs), Type: "VEC3"}
	if bounds {
		a.Min, a.Max = lo, hi
	}
	return b.accessor(a)
}

func (b *sceneBuilder) vec2s(vs []mgl32.Vec2) int {
	buf := make([]byte, 0, len(vs)*8)
	for _, v := range vs {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v[0]))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v[1]))
	}
	return b.accessor(gltfAccessor{BufferView: b.view(buf, targetArray), ComponentType: componentFloat, Count: len(vs), Type: "VEC2"})
}

func (b *sceneBuilder) indices(is []uint16) int {
	buf := make([]byte, 0, len(is)*2)
	for _, i := range is {
		buf = binary.LittleEndian.AppendUint16(buf, i)
	}
	return b.accessor(gltfAccessor{BufferView: b.view(buf, targetElements), ComponentType: componentUShort, Count: len(is), Type: "SCALAR"})
}

func (b *sceneBuilder) addMesh(m Mesh, blend bool) error {
	if len(m.Indices) == 0 {
		return nil
	}
	attrs := map[string]int{
		"POSITION": b.vec3s(m.Positions, true),
		"NORMAL":   b.vec3s(m.Normals, false),
	}
	mat := gltfMaterial{
		Name: m.Name,
		PBR: gltfPBR{
			BaseColorFactor: [4]float32(m.Color),
			RoughnessFactor: 1,
		},
	}
	if m.Texture != nil && len(m.UVs) == len(m.Positions) {
		attrs["TEXCOORD_0"] = b.vec2s(m.UVs)
		var img bytes.Buffer
		if err := png.Encode(&img, m.Texture); err != nil {
			return fmt.Errorf("encode %s texture: %w", m.Name, err)
		}
		b.doc.Images = append(b.doc.Images, gltfImage{BufferView: b.view(img.Bytes(), 0), MimeType: "image/png"})
		b.doc.Textures = append(b.doc.Textures, gltfTexture{Source: len(b.doc.Images) - 1})
		mat.PBR.BaseColorTexture = &gltfTexInfo{Index: len(b.doc.Textures) - 1}
	}
	if blend {
		mat.AlphaMode = "BLEND"
		mat.DoubleSided = true
	}
	b.doc.Materials = append(b.doc.Materials, mat)
	b.doc.Meshes = append(b.doc.Meshes, gltfMesh{
		Name: m.Name,
		Primitives: []gltfPrimitive{{
			Attributes: attrs,
			Indices:    b.indices(m.Indices),
			Material:   len(b.doc.Materials) - 1,
		}},
	})
	b.doc.Nodes = append(b.doc.Nodes, gltfNode{Name: m.Name, Mesh: len(b.doc.Meshes) - 1})
	b.doc.Scenes[0].Nodes = append(b.doc.Scenes[0].Nodes, len(b.doc.Nodes)-1)
	return nil
}

func exportsOpa(s render.DrawStage) bool {
	return s == render.DrawAll || s == render.DrawOpaOnly
}

func exportsXlu(s render.DrawStage) bool {
	return s != render.DrawOpaOnly
}

// Export writes the head meshes selected by stage. Mask-only exports the
// face mask quad alone.
func (Exporter) Export(w io.Writer, rm render.Model, stage render.DrawStage) error {
	m, ok := rm.(*Model)
	if !ok {
		return ErrForeignModel
	}
	if m.released {
		return errors.New("soft: model released")
	}

	b := &sceneBuilder{doc: gltfDoc{
		Asset:  gltfAsset{Version: "2.0", Generator: "miirender"},
		Scenes: []gltfScene{{Nodes: []int{}}},
	}}
	if exportsOpa(stage) {
		for _, mesh := range m.headMeshes(view.HeadAll) {
			if err := b.addMesh(mesh, false); err != nil {
				return err
			}
		}
	}
	if exportsXlu(stage) {
		if err := b.addMesh(m.front, true); err != nil {
			return err
		}
	}
	for b.bin.Len()%4 != 0 {
		b.bin.WriteByte(0)
	}
	b.doc.Buffers = []gltfBuffer{{ByteLength: b.bin.Len()}}
	return writeGLB(w, &b.doc, b.bin.Bytes())
}

func writeGLB(w io.Writer, doc *gltfDoc, bin []byte) error {
	js, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	for len(js)%4 != 0 {
		js = append(js, ' ')
	}
	total := glbHeaderLen + 8 + len(js) + 8 + len(bin)

	out := make([]byte, 0, total)
	le := binary.LittleEndian
	out = le.AppendUint32(out, glbMagic)
	out = le.AppendUint32(out, glbVersion)
	out = le.AppendUint32(out, uint32(total))
	out = le.AppendUint32(out, uint32(len(js)))
	out = le.AppendUint32(out, chunkJSON)
	out = append(out, js...)
	out = le.AppendUint32(out, uint32(len(bin)))
	out = le.AppendUint32(out, chunkBIN)
	out = append(out, bin...)
	_, err = w.Write(out)
	return err
}

// GLBLength reads the total length from a GLB header.
func GLBLength(header []byte) (int, error) {
	if len(header) < glbHeaderLen {
		return 0, fmt.Errorf("glb header: need %d bytes, got %d", glbHeaderLen, len(header))
	}
	if binary.LittleEndian.Uint32(header) != glbMagic {
		return 0, errors.New("glb header: bad magic")
	}
	return int(binary.LittleEndian.Uint32(header[8:])), nil
}
