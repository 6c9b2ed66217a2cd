package render

import (
	"errors"
	"image"
	"io"

	"github.com/go-gl/mathgl/mgl32"

	"miirender/internal/mii"
	"miirender/internal/view"
)

// ErrResourceUnavailable means the engine could not build a model for the
// avatar. It ends the current request only.
var ErrResourceUnavailable = errors.New("model resources unavailable")

// ModelDesc is everything an Engine needs to build one avatar model.
type ModelDesc struct {
	CharInfo      *mii.CharInfo
	TexResolution int
	MipMap        bool
	// Expressions holds one bit per expression the model must support.
	Expressions  [3]uint32
	Expression   uint8
	ResourceType uint8
	Shader       view.ShaderType
	Flags        ModelFlag
	LightEnable  bool
	// LightDirection is nil when the shader default applies.
	LightDirection *mgl32.Vec3
}

// ResolutionValue packs the texture size and mip map flag into one value.
func (d ModelDesc) ResolutionValue() uint32 {
	v := uint32(d.TexResolution)
	if d.MipMap {
		v |= MipMapFlag
	}
	return v
}

// Pass is the per-draw transform state.
type Pass struct {
	// Model places the head. Root is the model rotation alone and places
	// the body.
	Model      mgl32.Mat4
	Root       mgl32.Mat4
	View       mgl32.Mat4
	Projection mgl32.Mat4
	// Camera is the eye position in world space, used for specular light.
	Camera   mgl32.Vec3
	HeadMode view.HeadMode
	// DepthMask lets translucent geometry write depth.
	DepthMask bool
}

// BodyDraw describes the body under the head. Its colors are read from the
// model's CharInfo at draw time.
type BodyDraw struct {
	Type  view.BodyType
	Scale mgl32.Vec3
	Pants view.PantsColor
}

type HatDraw struct {
	Type       view.HatType
	Color      uint8
	Attachment view.HatAttachment
}

// Model is one built avatar. Only one is alive at a time.
type Model interface {
	// CharInfo returns the record the model was built from. Callers may
	// temporarily change it between draws.
	CharInfo() *mii.CharInfo
	DrawOpa(t Target, p Pass)
	DrawXlu(t Target, p Pass)
	DrawBody(t Target, p Pass, b BodyDraw)
	DrawHat(t Target, p Pass, h HatDraw)
	// Mask returns the face mask texture of the active expression.
	Mask() *image.RGBA
	Release()
}

// Target is an off-screen color and depth buffer.
type Target interface {
	Size() (w, h int)
	// Pixels returns RGBA8 rows, top row first.
	Pixels() []byte
}

type Engine interface {
	NewModel(desc ModelDesc) (Model, error)
	NewTarget(w, h int, clear [4]float32) Target
}

// SceneExporter writes a self-contained binary scene of a model.
type SceneExporter interface {
	Export(w io.Writer, m Model, stage DrawStage) error
}

// ViewResolver computes the camera for a view type. view.Resolver
// implements it.
type ViewResolver interface {
	Resolve(vt view.ViewType, build, height uint8) view.Params
	BodyScale(build, height uint8) mgl32.Vec3
}
