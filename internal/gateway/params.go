package gateway

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"miirender/internal/config"
	"miirender/internal/output"
	"miirender/internal/render"
	"miirender/internal/view"
)

const (
	defaultWidth    = 270
	defaultSSAA     = 2
	minDataLength   = 46
	minTexRes       = 2
	expressionLimit = 70
	// lastMiddleExpression is the highest expression the middle resource
	// carries.
	lastMiddleExpression = 18
	resourceMiddle       = 0
)

type outputKind int

const (
	outputPNG outputKind = iota
	outputTGA
	outputGLB
	outputPDF
)

var outputNames = [...]string{"png", "tga", "glb", "pdf"}

func (k outputKind) String() string { return outputNames[k] }

// Mii Studio names wink expressions from the viewer's side, so the left
// and right variants are swapped relative to the expression numbers.
var expressionNames = map[string]int{
	"normal":                0,
	"smile":                 1,
	"anger":                 2,
	"sorrow":                3,
	"puzzled":               3,
	"surprise":              4,
	"surprised":             4,
	"blink":                 5,
	"open_mouth":            6,
	"normal_open_mouth":     6,
	"happy":                 7,
	"smile_open_mouth":      7,
	"anger_open_mouth":      8,
	"sorrow_open_mouth":     9,
	"surprise_open_mouth":   10,
	"blink_open_mouth":      11,
	"wink_right":            12,
	"wink_left":             13,
	"wink_right_open_mouth": 14,
	"wink_left_open_mouth":  15,
	"like":                  16,
	"like_wink_right":       16,
	"like_wink_left":        17,
	"frustrated":            18,
}

var clothesNames = map[string]int{
	"default":     -1,
	"red":         0,
	"orange":      1,
	"yellow":      2,
	"yellowgreen": 3,
	"green":       4,
	"blue":        5,
	"skyblue":     6,
	"pink":        7,
	"purple":      8,
	"brown":       9,
	"white":       10,
	"black":       11,
}

var resourceNames = map[string]int{
	"default": -1,
	"middle":  0,
	"high":    1,
}

var modelTypeFlags = map[string]render.ModelFlag{
	"normal":    render.ModelFlagNormal,
	"hat":       render.ModelFlagHat,
	"face_only": render.ModelFlagFaceOnly,
}

// httpError carries the status a query problem should be answered with.
type httpError struct {
	status int
	msg    string
}

func (e *httpError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &httpError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

// plan is a parsed image query.
type plan struct {
	req  render.Request
	kind outputKind
	ssaa int
}

// decodeData reads avatar data given as hex or base64. Spaces are dropped
// and URL-safe base64 without padding is accepted.
func decodeData(s string) ([]byte, error) {
	s = strings.ReplaceAll(s, " ", "")
	if b, err := hex.DecodeString(s); err == nil {
		return b, nil
	}
	s = strings.NewReplacer("-", "+", "_", "/").Replace(s)
	if n := len(s) % 4; n != 0 {
		s += strings.Repeat("=", 4-n)
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("data is neither hex nor base64: %w", err)
	}
	return b, nil
}

// lookupInt parses s as an integer or, failing that, through names.
// Unknown names give def.
func lookupInt(s string, names map[string]int, def int) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	if v, ok := names[strings.ToLower(s)]; ok {
		return v
	}
	return def
}

// intParam returns the integer value of key, or def when it is missing or
// malformed.
func intParam(q url.Values, key string, def int) int {
	v, err := strconv.Atoi(q.Get(key))
	if err != nil {
		return def
	}
	return v
}

// parsePlan turns query parameters into a render request. data must
// already be decoded.
func parsePlan(q url.Values, kind outputKind, data []byte, limits config.Gateway) (*plan, error) {
	p := &plan{kind: kind, ssaa: defaultSSAA}
	r := &p.req

	if len(data) < minDataLength || len(data) > render.PayloadCapacity {
		return nil, badRequest("data length should be between %d and %d bytes, got %d",
			minDataLength, render.PayloadCapacity, len(data))
	}
	if err := r.SetPayload(data); err != nil {
		return nil, badRequest("%v", err)
	}

	typeName := q.Get("type")
	if typeName == "" {
		typeName = "face"
	}
	vt, ok := view.ParseViewType(typeName)
	if !ok {
		return nil, badRequest("unknown type %q", typeName)
	}
	r.ViewType = uint8(vt)

	width := defaultWidth
	widthDefault := true
	if s := q.Get("width"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			return nil, badRequest("width must be a positive number")
		}
		width, widthDefault = v, false
	}
	if width > limits.MaxWidth {
		return nil, badRequest("width exceeds %d", limits.MaxWidth)
	}

	if s := q.Get("scale"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > 2 {
			return nil, badRequest("scale must be 1 or 2")
		}
		p.ssaa = v
	}
	// The PDF sheet is already printed at a fixed size.
	if kind == outputGLB || kind == outputPDF {
		p.ssaa = 1
	}

	stage, _ := render.ParseDrawStage(q.Get("drawStageMode"))
	r.DrawStage = stage

	texRes := width
	override := false
	if s := q.Get("texResolution"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, badRequest("texResolution must be a number")
		}
		texRes, override = v, true
	}
	if width < 256 && !override {
		texRes *= 2
	}
	if stage == render.DrawMaskOnly {
		// The mask is returned at its own resolution.
		if widthDefault {
			width = texRes
		} else {
			texRes = width
		}
		p.ssaa = 1
	} else {
		width *= p.ssaa
		if !override {
			texRes *= p.ssaa
		}
	}
	if !override && texRes > limits.MaxTexResolution {
		texRes = limits.MaxTexResolution
	}
	if texRes < minTexRes || texRes > limits.MaxTexResolution {
		return nil, badRequest("texResolution must be between %d and %d", minTexRes, limits.MaxTexResolution)
	}
	r.Resolution = uint16(width)
	r.TexResolution = int16(texRes)
	if q.Has("mipmapEnable") {
		r.TexResolution = -r.TexResolution
	}

	resource := lookupInt(q.Get("resourceType"), resourceNames, -1)
	r.ResourceType = uint8(int8(resource))

	if s := q.Get("shaderType"); s != "" {
		shader, ok := view.ParseShaderType(strings.ToLower(s))
		if !ok {
			v, err := strconv.Atoi(s)
			if err != nil || !view.ShaderType(v).Valid() {
				return nil, badRequest("unknown shaderType %q", s)
			}
			shader = view.ShaderType(v)
		}
		r.ShaderType = uint8(shader)
	}

	r.BodyType = int8(view.BodyTypeDefault)
	if s := q.Get("bodyType"); s != "" {
		body, ok := view.ParseBodyType(strings.ToLower(s))
		if !ok {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, badRequest("unknown bodyType %q", s)
			}
			body = view.BodyType(v)
		}
		r.BodyType = int8(body)
	}

	expression := lookupInt(q.Get("expression"), expressionNames, 0)
	if expression < 0 || expression >= expressionLimit {
		return nil, badRequest("expression must be below %d", expressionLimit)
	}
	if expression > lastMiddleExpression && resource == resourceMiddle {
		return nil, badRequest("expression %d is not available with the middle resource", expression)
	}
	r.Expression = uint8(expression)
	if kind == outputGLB && q.Has("expression") {
		for _, name := range strings.Split(q.Get("expression"), ",") {
			e := lookupInt(strings.TrimSpace(name), expressionNames, 0)
			if e < 0 || e >= expressionLimit {
				return nil, badRequest("expression must be below %d", expressionLimit)
			}
			r.ExpressionFlag[e/32] |= 1 << (e % 32)
		}
	}

	r.ClothesColor = int8(lookupInt(q.Get("clothesColor"), clothesNames, -1))
	r.PantsColor = int8(view.PantsDefault)
	if s := q.Get("pantsColor"); s != "" {
		pants, ok := view.ParsePantsColor(strings.ToLower(s))
		if !ok {
			if v, err := strconv.Atoi(s); err == nil {
				pants = view.PantsColor(v)
			}
		}
		r.PantsColor = int8(pants)
	}

	if s := q.Get("hatType"); s != "" {
		hat, ok := view.ParseHatType(strings.ToLower(s))
		if !ok {
			v, err := strconv.Atoi(s)
			if err != nil || !view.HatType(v).Valid() {
				return nil, badRequest("unknown hatType %q", s)
			}
			hat = view.HatType(v)
		}
		r.HatType = uint8(hat)
	}
	// Hat colors count from one; zero keeps the avatar's favorite color.
	if s := q.Get("hatColor"); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			r.HatColor = uint8(v)
		} else if c, ok := clothesNames[strings.ToLower(s)]; ok {
			r.HatColor = uint8(c + 1)
		}
	}

	count := intParam(q, "instanceCount", 1)
	if count < 1 || count > limits.MaxInstances {
		return nil, badRequest("instanceCount must be between 1 and %d", limits.MaxInstances)
	}
	r.InstanceCount = uint8(count)
	if stage != render.DrawMaskOnly && kind != outputGLB {
		aspect := view.Resolver{}.Resolve(vt, 0, 0).AspectFactor
		if rows := aspect.Ceil(int(r.Resolution) * count); rows > output.MaxDimension {
			return nil, badRequest("image of %d rows exceeds %d; lower width or instanceCount", rows, output.MaxDimension)
		}
	}
	if s := q.Get("instanceRotationMode"); s != "" {
		mode, ok := render.ParseInstanceRotationMode(strings.ToLower(s))
		if !ok {
			mode = render.InstanceRotationMode(intParam(q, "instanceRotationMode", 0))
		}
		r.InstanceRotationMode = mode
	}

	modelType := q.Get("modelType")
	if modelType == "" {
		modelType = "normal"
	}
	flag, ok := modelTypeFlags[modelType]
	if !ok {
		return nil, badRequest("unknown modelType %q", modelType)
	}
	if q.Has("flattenNose") {
		flag |= render.ModelFlagFlattenNose
	}
	r.ModelFlag = flag

	r.SplitMode, _ = render.ParseSplitMode(q.Get("splitMode"))

	r.LightEnable = q.Get("lightEnable") != "0"
	r.VerifyCharInfo = q.Get("verifyCharInfo") != "0"
	r.VerifyCRC16 = q.Get("verifyCRC16") != "0"

	for i, axis := range []string{"X", "Y", "Z"} {
		r.CameraRotate[i] = int16(intParam(q, "camera"+axis+"Rotate", 0))
		r.ModelRotate[i] = int16(intParam(q, "character"+axis+"Rotate", 0))
		r.LightDirection[i] = int16(intParam(q, "light"+axis+"Direction", -1))
	}

	r.BackgroundColor = transparentWhite
	if s := q.Get("bgColor"); s != "" {
		c, err := ParseHexColor(s)
		if err != nil {
			return nil, badRequest("bgColor: %v", err)
		}
		r.BackgroundColor = c
	}

	r.ResponseFormat = render.ResponseTGA
	if kind == outputGLB {
		r.ResponseFormat = render.ResponseGLTF
	}
	return p, nil
}
