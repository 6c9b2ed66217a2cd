package view

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

type ShaderType uint8

const (
	ShaderWiiU ShaderType = iota
	ShaderSwitch
	ShaderMiitomo
	ShaderWiiUBlinn
	ShaderFFLIconWithBody
	shaderTypeCount
)

var shaderNames = [shaderTypeCount]string{"wiiu", "switch", "miitomo", "wiiu_blinn", "ffliconwithbody"}

func (s ShaderType) Valid() bool { return s < shaderTypeCount }

func (s ShaderType) String() string {
	if !s.Valid() {
		return fmt.Sprintf("shader(%d)", uint8(s))
	}
	return shaderNames[s]
}

func ParseShaderType(s string) (ShaderType, bool) {
	for i, n := range shaderNames {
		if n == s {
			return ShaderType(i), true
		}
	}
	return 0, false
}

// BodyType selects the body model and its head attachment.
type BodyType int8

const (
	BodyTypeDefault BodyType = -1
	BodyWiiU        BodyType = 0
	BodySwitch      BodyType = 1
	BodyMiitomo     BodyType = 2
	BodyFFLBodyRes  BodyType = 3
	Body3DS         BodyType = 4
	bodyTypeCount            = 5
)

// FFLBodyResParam is the build and height forced onto the record when the
// fflbodyres body is drawn.
const FFLBodyResParam uint8 = 64

var bodyNames = [bodyTypeCount]string{"wiiu", "switch", "miitomo", "fflbodyres", "3ds"}

func (b BodyType) Valid() bool { return b >= 0 && b < bodyTypeCount }

func (b BodyType) String() string {
	if !b.Valid() {
		return "default"
	}
	return bodyNames[b]
}

// ParseBodyType maps a name to a body type. "default" maps to
// BodyTypeDefault.
func ParseBodyType(s string) (BodyType, bool) {
	if s == "default" {
		return BodyTypeDefault, true
	}
	for i, n := range bodyNames {
		if n == s {
			return BodyType(i), true
		}
	}
	return BodyTypeDefault, false
}

var shaderDefaultBody = [shaderTypeCount]BodyType{
	ShaderWiiU:            BodyWiiU,
	ShaderSwitch:          BodySwitch,
	ShaderMiitomo:         BodyMiitomo,
	ShaderWiiUBlinn:       BodyWiiU,
	ShaderFFLIconWithBody: BodyFFLBodyRes,
}

// DefaultBodyType returns the body paired with a shader.
func DefaultBodyType(s ShaderType) BodyType {
	if !s.Valid() {
		return BodyWiiU
	}
	return shaderDefaultBody[s]
}

// ResolveBodyType substitutes the shader's default for the sentinel or any
// out of range value.
func ResolveBodyType(b BodyType, s ShaderType) BodyType {
	if b.Valid() {
		return b
	}
	return DefaultBodyType(s)
}

// Head attachment per body type. The head sits on the skeleton root plus
// the neck (4.1).
var (
	middleHeadRotation = mgl32.Vec3{0.002 - 0.005, 0.000005, -0.001}

	bodyHeadRotation = [bodyTypeCount]mgl32.Vec3{
		middleHeadRotation,
		{0, 0, 0},
		{0.012, 0, 0},
		{0, 0, 0},
		middleHeadRotation,
	}
	bodyScaleFactor = [bodyTypeCount]float32{7, 7, 7, 8.715, 7}
	bodyHeadY       = [bodyTypeCount]float32{
		6.6766 + 4.1,
		6.7143 + 4.1,
		6.5 + 4.1,
		6.6766 + 4.1,
		6.6766 + 4.1,
	}
)

// ScaleFactor is the uniform scale the body model is authored at.
func ScaleFactor(b BodyType) float32 { return bodyScaleFactor[b] }

func HeadRotation(b BodyType) mgl32.Vec3 { return bodyHeadRotation[b] }

// HeadTranslation places the head on top of a body scaled by scale.
func HeadTranslation(b BodyType, scale mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{0, bodyHeadY[b] * scale.Y() * bodyScaleFactor[b], 0}
}

// HeadMatrix rotates then translates the head onto the body.
func HeadMatrix(b BodyType, scale mgl32.Vec3) mgl32.Mat4 {
	t := HeadTranslation(b, scale)
	return mgl32.Translate3D(t.X(), t.Y(), t.Z()).Mul4(EulerXYZ(HeadRotation(b)))
}

// EulerXYZ builds a rotation applying X, then Y, then Z.
func EulerXYZ(r mgl32.Vec3) mgl32.Mat4 {
	return mgl32.HomogRotate3DZ(r.Z()).
		Mul4(mgl32.HomogRotate3DY(r.Y())).
		Mul4(mgl32.HomogRotate3DX(r.X()))
}

// PantsColor selects the color of the lower body.
type PantsColor int8

const (
	PantsDefault PantsColor = -1
	PantsGray    PantsColor = 0
	PantsBlue    PantsColor = 1
	PantsRed     PantsColor = 2
	PantsGold    PantsColor = 3
	// PantsBody reuses the body (favorite) color.
	PantsBody PantsColor = 4
	// PantsNone skips the pants mesh.
	PantsNone       PantsColor = 5
	pantsColorCount            = 6
)

var pantsNames = [pantsColorCount]string{"gray", "blue", "red", "gold", "body", "none"}

var pantsRGBA = [PantsBody]mgl32.Vec4{
	PantsGray: {0.25098, 0.27451, 0.30588, 1},
	PantsBlue: {0.15686, 0.25098, 0.47059, 1},
	PantsRed:  {0.43922, 0.12549, 0.06275, 1},
	PantsGold: {0.75294, 0.62745, 0.18824, 1},
}

func (p PantsColor) String() string {
	if p < 0 || p >= pantsColorCount {
		return "default"
	}
	return pantsNames[p]
}

func ParsePantsColor(s string) (PantsColor, bool) {
	if s == "default" {
		return PantsDefault, true
	}
	for i, n := range pantsNames {
		if n == s {
			return PantsColor(i), true
		}
	}
	return PantsDefault, false
}

// ResolvePants picks red for a favorite avatar and gray otherwise when no
// color is requested.
func ResolvePants(p PantsColor, favorite bool) PantsColor {
	if p >= 0 && p < pantsColorCount {
		return p
	}
	if favorite {
		return PantsRed
	}
	return PantsGray
}

// RGBA returns the fixed color, or ok=false for PantsBody and PantsNone.
func (p PantsColor) RGBA() (c mgl32.Vec4, ok bool) {
	if p < 0 || p >= PantsBody {
		return mgl32.Vec4{}, false
	}
	return pantsRGBA[p], true
}
