package render

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// RequestSize is the exact byte length of an encoded Request.
const RequestSize = 160

// PayloadCapacity is the size of the avatar data buffer in a Request.
const PayloadCapacity = 96

type ResponseFormat uint8

const (
	ResponseTGA ResponseFormat = iota
	ResponseGLTF
	// ResponseTGABGRAFlipY emits BGRA rows bottom-up, as TGA readers expect.
	ResponseTGABGRAFlipY
)

type DrawStage uint8

const (
	DrawAll DrawStage = iota
	DrawOpaOnly
	DrawXluOnly
	DrawMaskOnly
	DrawXluDepthMask
)

var drawStageNames = [...]string{"all", "opa_only", "xlu_only", "mask_only", "xlu_depth_mask"}

func (d DrawStage) String() string {
	if int(d) < len(drawStageNames) {
		return drawStageNames[d]
	}
	return fmt.Sprintf("DrawStage(%d)", uint8(d))
}

func ParseDrawStage(s string) (DrawStage, bool) {
	for i, n := range drawStageNames {
		if n == s {
			return DrawStage(i), true
		}
	}
	return DrawAll, false
}

func (d DrawStage) opa() bool { return d == DrawAll || d == DrawOpaOnly }

func (d DrawStage) xlu() bool { return d == DrawAll || d == DrawXluOnly || d == DrawXluDepthMask }

type InstanceRotationMode uint8

const (
	RotateModel InstanceRotationMode = iota
	RotateCamera
	// RotateExpression is accepted and ignored.
	RotateExpression
)

var rotationModeNames = [...]string{"model", "camera", "expression"}

func (m InstanceRotationMode) String() string {
	if int(m) < len(rotationModeNames) {
		return rotationModeNames[m]
	}
	return fmt.Sprintf("InstanceRotationMode(%d)", uint8(m))
}

func ParseInstanceRotationMode(s string) (InstanceRotationMode, bool) {
	for i, n := range rotationModeNames {
		if n == s {
			return InstanceRotationMode(i), true
		}
	}
	return RotateModel, false
}

type SplitMode uint8

const (
	SplitNone SplitMode = iota
	SplitFront
	SplitBack
	SplitBoth
)

var splitModeNames = [...]string{"none", "front", "back", "both"}

func (m SplitMode) String() string {
	if int(m) < len(splitModeNames) {
		return splitModeNames[m]
	}
	return fmt.Sprintf("SplitMode(%d)", uint8(m))
}

func ParseSplitMode(s string) (SplitMode, bool) {
	for i, n := range splitModeNames {
		if n == s {
			return SplitMode(i), true
		}
	}
	return SplitNone, false
}

// ModelFlag carries the head model type in its low bits and the flatten
// nose option.
type ModelFlag uint8

const (
	ModelFlagNormal      ModelFlag = 1 << 0
	ModelFlagHat         ModelFlag = 1 << 1
	ModelFlagFaceOnly    ModelFlag = 1 << 2
	ModelFlagFlattenNose ModelFlag = 1 << 3
)

// MipMapFlag is or'ed into the texture resolution to request mip maps.
const MipMapFlag = 1 << 30

// Request is the fixed-size render request. Field order and widths match
// the wire layout exactly.
type Request struct {
	Data           [PayloadCapacity]byte
	DataLength     uint16
	ModelFlag      ModelFlag
	ResponseFormat ResponseFormat
	Resolution     uint16
	// TexResolution is negative to enable mip maps.
	TexResolution        int16
	ViewType             uint8
	ResourceType         uint8
	ShaderType           uint8
	Expression           uint8
	ExpressionFlag       [3]uint32
	CameraRotate         [3]int16
	ModelRotate          [3]int16
	BackgroundColor      [4]uint8
	AAMethod             uint8
	DrawStage            DrawStage
	VerifyCharInfo       bool
	VerifyCRC16          bool
	LightEnable          bool
	ClothesColor         int8
	PantsColor           int8
	BodyType             int8
	HatType              uint8
	HatColor             uint8
	InstanceCount        uint8
	InstanceRotationMode InstanceRotationMode
	// LightDirection is unset when all components are negative.
	LightDirection [3]int16
	SplitMode      SplitMode
	_              [5]byte
}

// ErrFraming means the request was not exactly RequestSize bytes.
var ErrFraming = errors.New("render request framing error")

// DecodeRequest parses a RequestSize byte buffer.
func DecodeRequest(b []byte) (*Request, error) {
	if len(b) != RequestSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrFraming, len(b), RequestSize)
	}
	r := &Request{}
	le := binary.LittleEndian
	copy(r.Data[:], b[0:96])
	r.DataLength = le.Uint16(b[96:])
	r.ModelFlag = ModelFlag(b[98])
	r.ResponseFormat = ResponseFormat(b[99])
	r.Resolution = le.Uint16(b[100:])
	r.TexResolution = int16(le.Uint16(b[102:]))
	r.ViewType, r.ResourceType, r.ShaderType, r.Expression = b[104], b[105], b[106], b[107]
	for i := range r.ExpressionFlag {
		r.ExpressionFlag[i] = le.Uint32(b[108+4*i:])
	}
	for i := 0; i < 3; i++ {
		r.CameraRotate[i] = int16(le.Uint16(b[120+2*i:]))
		r.ModelRotate[i] = int16(le.Uint16(b[126+2*i:]))
		r.LightDirection[i] = int16(le.Uint16(b[148+2*i:]))
	}
	copy(r.BackgroundColor[:], b[132:136])
	r.AAMethod = b[136]
	r.DrawStage = DrawStage(b[137])
	r.VerifyCharInfo = b[138] != 0
	r.VerifyCRC16 = b[139] != 0
	r.LightEnable = b[140] != 0
	r.ClothesColor = int8(b[141])
	r.PantsColor = int8(b[142])
	r.BodyType = int8(b[143])
	r.HatType = b[144]
	r.HatColor = b[145]
	r.InstanceCount = b[146]
	r.InstanceRotationMode = InstanceRotationMode(b[147])
	r.SplitMode = SplitMode(b[154])
	return r, nil
}

// MarshalBinary encodes r into its RequestSize wire form.
func (r *Request) MarshalBinary() ([]byte, error) {
	b := make([]byte, RequestSize)
	le := binary.LittleEndian
	copy(b[0:96], r.Data[:])
	le.PutUint16(b[96:], r.DataLength)
	b[98] = byte(r.ModelFlag)
	b[99] = byte(r.ResponseFormat)
	le.PutUint16(b[100:], r.Resolution)
	le.PutUint16(b[102:], uint16(r.TexResolution))
	b[104], b[105], b[106], b[107] = r.ViewType, r.ResourceType, r.ShaderType, r.Expression
	for i, f := range r.ExpressionFlag {
		le.PutUint32(b[108+4*i:], f)
	}
	for i := 0; i < 3; i++ {
		le.PutUint16(b[120+2*i:], uint16(r.CameraRotate[i]))
		le.PutUint16(b[126+2*i:], uint16(r.ModelRotate[i]))
		le.PutUint16(b[148+2*i:], uint16(r.LightDirection[i]))
	}
	copy(b[132:136], r.BackgroundColor[:])
	b[136] = r.AAMethod
	b[137] = byte(r.DrawStage)
	b[138] = boolByte(r.VerifyCharInfo)
	b[139] = boolByte(r.VerifyCRC16)
	b[140] = boolByte(r.LightEnable)
	b[141] = byte(r.ClothesColor)
	b[142] = byte(r.PantsColor)
	b[143] = byte(r.BodyType)
	b[144] = r.HatType
	b[145] = r.HatColor
	b[146] = r.InstanceCount
	b[147] = byte(r.InstanceRotationMode)
	b[154] = byte(r.SplitMode)
	return b, nil
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

// ReadRequest reads exactly one request. Anything shorter is ErrFraming.
func ReadRequest(r io.Reader) (*Request, error) {
	buf := make([]byte, RequestSize)
	n, err := io.ReadFull(r, buf)
	if err != nil {
		return nil, fmt.Errorf("%w: read %d of %d bytes: %v", ErrFraming, n, RequestSize, err)
	}
	return DecodeRequest(buf)
}

// SetPayload copies avatar data into the request and records its length.
func (r *Request) SetPayload(data []byte) error {
	if len(data) > PayloadCapacity {
		return fmt.Errorf("payload of %d bytes exceeds %d", len(data), PayloadCapacity)
	}
	r.Data = [PayloadCapacity]byte{}
	copy(r.Data[:], data)
	r.DataLength = uint16(len(data))
	return nil
}

// ExpressionMask returns the wide expression flag, or the single
// Expression bit when the flag is empty.
func (r *Request) ExpressionMask() [3]uint32 {
	if r.ExpressionFlag != [3]uint32{} {
		return r.ExpressionFlag
	}
	var m [3]uint32
	if r.Expression < 96 {
		m[r.Expression/32] = 1 << (r.Expression % 32)
	}
	return m
}

// TextureResolution decodes TexResolution into a size and mip map flag.
func (r *Request) TextureResolution() (size int, mipmap bool) {
	if r.TexResolution < 0 {
		return -int(r.TexResolution), true
	}
	return int(r.TexResolution), false
}

// LightDirectionSet reports whether a custom light direction was sent.
func (r *Request) LightDirectionSet() bool {
	for _, v := range r.LightDirection {
		if v >= 0 {
			return true
		}
	}
	return false
}
