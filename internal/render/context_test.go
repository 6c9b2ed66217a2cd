package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"miirender/internal/mii"
	"miirender/internal/output"
	"miirender/internal/view"
)

type fakeTarget struct {
	w, h  int
	clear [4]float32
}

func (t *fakeTarget) Size() (int, int) { return t.w, t.h }

func (t *fakeTarget) Pixels() []byte {
	pix := make([]byte, t.w*t.h*4)
	for i := range pix {
		pix[i] = byte(t.clear[i%4] * 255)
	}
	return pix
}

type fakeModel struct {
	info     *mii.CharInfo
	calls    []string
	passes   []Pass
	bodies   []BodyDraw
	hats     []HatDraw
	bodyFav  []uint8
	released bool
}

func (m *fakeModel) CharInfo() *mii.CharInfo { return m.info }

func (m *fakeModel) DrawOpa(_ Target, p Pass) {
	m.calls = append(m.calls, "opa")
	m.passes = append(m.passes, p)
}

func (m *fakeModel) DrawXlu(Target, Pass) { m.calls = append(m.calls, "xlu") }

func (m *fakeModel) DrawBody(_ Target, _ Pass, b BodyDraw) {
	m.calls = append(m.calls, "body")
	m.bodies = append(m.bodies, b)
	m.bodyFav = append(m.bodyFav, m.info.FavoriteColor)
}

func (m *fakeModel) DrawHat(_ Target, _ Pass, h HatDraw) {
	m.calls = append(m.calls, "hat")
	m.hats = append(m.hats, h)
}

func (m *fakeModel) Mask() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 0xAB
	}
	return img
}

func (m *fakeModel) Release() { m.released = true }

type fakeEngine struct {
	err    error
	descs  []ModelDesc
	models []*fakeModel
}

func (e *fakeEngine) NewModel(d ModelDesc) (Model, error) {
	e.descs = append(e.descs, d)
	if e.err != nil {
		return nil, e.err
	}
	m := &fakeModel{info: d.CharInfo}
	e.models = append(e.models, m)
	return m, nil
}

func (e *fakeEngine) NewTarget(w, h int, clear [4]float32) Target {
	return &fakeTarget{w: w, h: h, clear: clear}
}

type fakeExporter struct{ err error }

func (x fakeExporter) Export(w io.Writer, _ Model, stage DrawStage) error {
	if x.err != nil {
		return x.err
	}
	_, err := io.WriteString(w, "glTF:"+stage.String())
	return err
}

type countingResolver struct {
	view.Resolver
	n int
}

func (r *countingResolver) Resolve(vt view.ViewType, build, height uint8) view.Params {
	r.n++
	return r.Resolver.Resolve(vt, build, height)
}

// studioRequest builds a request around a 46 byte studio payload with a
// valid eyebrow position.
func studioRequest(t *testing.T, edit func(raw []byte)) *Request {
	t.Helper()
	raw := make([]byte, 46)
	raw[16] = 10 // eyebrow y
	raw[2], raw[30] = 64, 64
	if edit != nil {
		edit(raw)
	}
	r := &Request{
		Resolution:    32,
		TexResolution: 256,
		ViewType:      uint8(view.ViewFaceOnly),
		ClothesColor:  -1,
		PantsColor:    -1,
		BodyType:      -1,
		InstanceCount: 1,
	}
	require.NoError(t, r.SetPayload(raw))
	return r
}

func newTestContext(e *fakeEngine, x SceneExporter, v ViewResolver) *Context {
	return NewContext(e, x, v, zerolog.Nop())
}

func TestRender_SingleFrame(t *testing.T) {
	e := &fakeEngine{}
	c := newTestContext(e, fakeExporter{}, view.Resolver{})
	req := studioRequest(t, nil)
	req.BackgroundColor = [4]uint8{255, 0, 255, 255}

	var out bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &out, req))

	h, err := output.ParseHeader(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, uint16(32), h.Width)
	assert.Equal(t, uint16(32), h.Height)
	assert.True(t, h.TopDown())
	assert.Equal(t, output.HeaderSize+h.PixelBytes(), out.Len())
	assert.Equal(t, []byte{255, 0, 255, 255}, out.Bytes()[output.HeaderSize:output.HeaderSize+4])

	m := e.models[0]
	assert.Equal(t, []string{"opa", "xlu"}, m.calls, "face only view draws no body")
	assert.Equal(t, 256, e.descs[0].TexResolution)
	assert.Nil(t, e.descs[0].LightDirection)
}

func TestRender_InstancesRotateCamera(t *testing.T) {
	e := &fakeEngine{}
	c := newTestContext(e, fakeExporter{}, view.Resolver{})
	req := studioRequest(t, nil)
	req.Resolution = 63
	req.InstanceCount = 3
	req.InstanceRotationMode = RotateCamera

	var out bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &out, req))

	h, err := output.ParseHeader(out.Bytes())
	require.NoError(t, err)
	// 63*3 = 189 rows rounded up to 190; one padding row.
	assert.Equal(t, uint16(190), h.Height)
	assert.Equal(t, output.HeaderSize+63*190*4, out.Len())
	assert.Equal(t, 1, bytes.Count(out.Bytes(), []byte{0, 0, 2, 0}), "exactly one header")

	m := e.models[0]
	require.Len(t, m.passes, 3)
	radius := float64(view.Resolver{}.Resolve(view.ViewFaceOnly, 64, 64).Position.Z())
	for i, p := range m.passes {
		theta := float64(i) * 2 * math.Pi / 3
		assert.InDelta(t, -radius*math.Sin(theta), p.Camera.X(), 1e-2, "instance %d", i)
		assert.InDelta(t, radius*math.Cos(theta), p.Camera.Z(), 1e-2, "instance %d", i)
		assert.Equal(t, mgl32.Ident4(), p.Model, "model stays put")
	}
}

// sealedRFLStoreData is a 76 byte Wii store record with a valid CRC16 and
// an eyebrow position that passes verification.
func sealedRFLStoreData() []byte {
	b := make([]byte, 76)
	b[0x27] = 10 << 4 // eyebrow y, low byte of a big-endian word
	mii.SealCRC16(b)
	return b
}

func TestRender_InstancesRotateCamera_SealedStoreData(t *testing.T) {
	e := &fakeEngine{}
	c := newTestContext(e, fakeExporter{}, view.Resolver{})
	req := studioRequest(t, nil)
	require.NoError(t, req.SetPayload(sealedRFLStoreData()))
	req.VerifyCRC16 = true
	req.VerifyCharInfo = true
	req.Resolution = 40
	req.InstanceCount = 4
	req.InstanceRotationMode = RotateCamera

	var out bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &out, req))
	assert.False(t, strings.HasPrefix(out.String(), output.ErrorPrefix))

	h, err := output.ParseHeader(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, uint16(40), h.Width)
	assert.Equal(t, uint16(160), h.Height)
	assert.Equal(t, output.HeaderSize+40*160*4, out.Len())

	require.Len(t, e.descs, 1)
	assert.Equal(t, mii.BirthPlatformWii, e.descs[0].CharInfo.BirthPlatform)
	assert.Equal(t, uint8(10), e.descs[0].CharInfo.Parts.EyebrowPositionY)

	m := e.models[0]
	require.Len(t, m.passes, 4)
	radius := float64(view.Resolver{}.Resolve(view.ViewFaceOnly, 64, 64).Position.Z())
	for i, p := range m.passes {
		theta := float64(i) * math.Pi / 2
		assert.InDelta(t, -radius*math.Sin(theta), p.Camera.X(), 1e-2, "instance %d", i)
		assert.InDelta(t, radius*math.Cos(theta), p.Camera.Z(), 1e-2, "instance %d", i)
	}
}

func TestRender_CanvasTooTall(t *testing.T) {
	e := &fakeEngine{}
	c := newTestContext(e, fakeExporter{}, view.Resolver{})
	req := studioRequest(t, nil)
	req.ViewType = uint8(view.ViewAllBodySugar)
	req.Resolution = 4096
	req.InstanceCount = 20

	var out bytes.Buffer
	err := c.Render(context.Background(), &out, req)
	require.ErrorIs(t, err, output.ErrTooLarge)
	assert.Equal(t, "ERROR: image too large: 4096x109228 canvas exceeds 65535 rows\n", out.String())
	assert.Empty(t, e.models[0].passes, "no frame drawn")

	req.ViewType = uint8(view.ViewFaceOnly)
	req.Resolution = 257
	req.InstanceCount = 255
	assert.ErrorIs(t, c.Render(context.Background(), io.Discard, req), output.ErrTooLarge, "65535 rows round up to 65536")

	req.Resolution = 256
	require.NoError(t, c.Render(context.Background(), io.Discard, req))
}

func TestRender_InstancesRotateModel(t *testing.T) {
	e := &fakeEngine{}
	c := newTestContext(e, fakeExporter{}, view.Resolver{})
	req := studioRequest(t, nil)
	req.InstanceCount = 4
	req.InstanceRotationMode = RotateModel

	require.NoError(t, c.Render(context.Background(), io.Discard, req))
	m := e.models[0]
	require.Len(t, m.passes, 4)
	want := view.EulerXYZ(mgl32.Vec3{0, mgl32.DegToRad(90), 0})
	assert.True(t, m.passes[1].Model.ApproxEqualThreshold(want, 1e-5))
	for _, p := range m.passes {
		assert.InDelta(t, 0, p.Camera.X(), 1e-3)
	}
}

func TestRender_InstancesRotateExpressionIsIgnored(t *testing.T) {
	e := &fakeEngine{}
	c := newTestContext(e, fakeExporter{}, view.Resolver{})
	req := studioRequest(t, nil)
	req.InstanceCount = 2
	req.InstanceRotationMode = RotateExpression

	require.NoError(t, c.Render(context.Background(), io.Discard, req))
	m := e.models[0]
	require.Len(t, m.passes, 2)
	assert.Equal(t, m.passes[0], m.passes[1])
}

func TestRender_MaskOnlySkipsCamera(t *testing.T) {
	e := &fakeEngine{}
	res := &countingResolver{}
	c := newTestContext(e, fakeExporter{}, res)
	req := studioRequest(t, nil)
	req.DrawStage = DrawMaskOnly
	req.InstanceCount = 5

	var out bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &out, req))
	assert.Zero(t, res.n)

	h, err := output.ParseHeader(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, uint16(4), h.Width)
	assert.Equal(t, uint16(4), h.Height)
	assert.Equal(t, bytes.Repeat([]byte{0xAB}, 64), out.Bytes()[output.HeaderSize:])
	assert.Empty(t, e.models[0].calls)
}

func TestRender_GLTF(t *testing.T) {
	e := &fakeEngine{}
	c := newTestContext(e, fakeExporter{}, view.Resolver{})
	req := studioRequest(t, nil)
	req.ResponseFormat = ResponseGLTF
	req.DrawStage = DrawOpaOnly

	var out bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &out, req))
	assert.Equal(t, "glTF:opa_only", out.String())

	out.Reset()
	c = newTestContext(e, fakeExporter{err: errors.New("buffer too large")}, view.Resolver{})
	assert.Error(t, c.Render(context.Background(), &out, req))
	assert.Equal(t, "ERROR: buffer too large\n", out.String())
}

func TestRender_Errors(t *testing.T) {
	tests := []struct {
		name   string
		engine *fakeEngine
		req    func(*Request)
		want   string
	}{
		{
			name: "unknown length",
			req:  func(r *Request) { r.DataLength = 10 },
			want: "ERROR: unknown data type (format not recognized: 10 bytes)\n",
		},
		{
			name: "checksum",
			req: func(r *Request) {
				data := make([]byte, 96)
				data[0] = 1
				_ = r.SetPayload(data)
				r.VerifyCRC16 = true
			},
			want: "ERROR: data CRC16 verification failed\n",
		},
		{
			name: "verification",
			req: func(r *Request) {
				r.Data[16] = 0
				r.VerifyCharInfo = true
			},
			want: "ERROR: character data verification failed: EYEBROW_POSITION_Y\n",
		},
		{
			name:   "resources",
			engine: &fakeEngine{err: errors.New("no shape for hair 200")},
			req:    func(r *Request) {},
			want:   "ERROR: model initialization failed: model resources unavailable: no shape for hair 200\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.engine
			if e == nil {
				e = &fakeEngine{}
			}
			c := newTestContext(e, fakeExporter{}, view.Resolver{})
			req := studioRequest(t, nil)
			tt.req(req)

			var out bytes.Buffer
			assert.Error(t, c.Render(context.Background(), &out, req))
			assert.Equal(t, tt.want, out.String())
			assert.True(t, strings.HasPrefix(out.String(), output.ErrorPrefix))
		})
	}
}

func TestRender_VerifiedDataPasses(t *testing.T) {
	e := &fakeEngine{}
	c := newTestContext(e, fakeExporter{}, view.Resolver{})
	req := studioRequest(t, nil)
	req.VerifyCharInfo = true
	require.NoError(t, c.Render(context.Background(), io.Discard, req))
}

func TestRender_BodyAndHat(t *testing.T) {
	e := &fakeEngine{}
	c := newTestContext(e, fakeExporter{}, view.Resolver{})
	req := studioRequest(t, func(raw []byte) { raw[21] = 3 })
	req.ViewType = uint8(view.ViewFace)
	req.ClothesColor = 7
	req.HatType = 1

	require.NoError(t, c.Render(context.Background(), io.Discard, req))
	m := e.models[0]
	assert.Equal(t, []string{"opa", "body", "hat", "xlu"}, m.calls)
	assert.Equal(t, []uint8{7}, m.bodyFav, "body sees the clothes color")
	assert.Equal(t, uint8(3), m.info.FavoriteColor, "favorite color restored")
	assert.Equal(t, uint8(3), m.hats[0].Color, "hat follows the real favorite color")
	assert.Equal(t, view.PantsGray, m.bodies[0].Pants)
	assert.Equal(t, view.BodyWiiU, m.bodies[0].Type)

	p := m.passes[0]
	lift := view.HeadTranslation(view.BodyWiiU, m.bodies[0].Scale)
	assert.InDelta(t, 33.016785+lift.Y(), p.Camera.Y(), 1e-3)
	assert.Equal(t, mgl32.Ident4(), p.Root)
	assert.NotEqual(t, p.Root, p.Model)
	assert.Equal(t, view.HeadHatOnly, p.HeadMode)
}

func TestRender_ClothesColorOutOfRange(t *testing.T) {
	e := &fakeEngine{}
	c := newTestContext(e, fakeExporter{}, view.Resolver{})
	req := studioRequest(t, func(raw []byte) { raw[21] = 5 })
	req.ViewType = uint8(view.ViewFace)
	req.ClothesColor = 12

	require.NoError(t, c.Render(context.Background(), io.Discard, req))
	assert.Equal(t, []uint8{5}, e.models[0].bodyFav)
}

func TestRender_DrawStages(t *testing.T) {
	tests := []struct {
		stage DrawStage
		calls []string
		depth bool
	}{
		{DrawOpaOnly, []string{"opa"}, false},
		{DrawXluOnly, []string{"xlu"}, false},
		{DrawXluDepthMask, []string{"xlu"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.stage.String(), func(t *testing.T) {
			e := &fakeEngine{}
			c := newTestContext(e, fakeExporter{}, view.Resolver{})
			req := studioRequest(t, nil)
			req.DrawStage = tt.stage
			require.NoError(t, c.Render(context.Background(), io.Discard, req))
			assert.Equal(t, tt.calls, e.models[0].calls)
		})
	}
}

func TestRender_ShaderAdjustments(t *testing.T) {
	e := &fakeEngine{}
	c := newTestContext(e, fakeExporter{}, view.Resolver{})
	req := studioRequest(t, func(raw []byte) {
		raw[24] = 2 // glass scale
		raw[2], raw[30] = 10, 120
	})
	req.ShaderType = uint8(view.ShaderMiitomo)
	req.BodyType = int8(view.BodyFFLBodyRes)

	require.NoError(t, c.Render(context.Background(), io.Discard, req))
	info := e.descs[0].CharInfo
	assert.Equal(t, uint8(3), info.Parts.GlassScale)
	assert.Equal(t, view.FFLBodyResParam, info.Build)
	assert.Equal(t, view.FFLBodyResParam, info.Height)
	assert.Equal(t, view.ShaderMiitomo, e.descs[0].Shader)
}

func TestRender_ReleasesPreviousModel(t *testing.T) {
	e := &fakeEngine{}
	c := newTestContext(e, fakeExporter{}, view.Resolver{})
	require.NoError(t, c.Render(context.Background(), io.Discard, studioRequest(t, nil)))
	require.NoError(t, c.Render(context.Background(), io.Discard, studioRequest(t, nil)))

	require.Len(t, e.models, 2)
	assert.True(t, e.models[0].released)
	assert.False(t, e.models[1].released)

	bad := studioRequest(t, nil)
	bad.DataLength = 1
	assert.Error(t, c.Render(context.Background(), io.Discard, bad))
	assert.True(t, e.models[1].released, "released even when the next request fails")

	c.Close()
	c.Close()
}

type conn struct {
	io.Reader
	bytes.Buffer
}

func (c *conn) Read(p []byte) (int, error) { return c.Reader.Read(p) }

func TestHandle(t *testing.T) {
	e := &fakeEngine{}
	c := newTestContext(e, fakeExporter{}, view.Resolver{})

	b, err := studioRequest(t, nil).MarshalBinary()
	require.NoError(t, err)
	rw := &conn{Reader: bytes.NewReader(b)}
	require.NoError(t, c.Handle(context.Background(), rw))
	assert.Equal(t, output.HeaderSize+32*32*4, rw.Len())

	short := &conn{Reader: bytes.NewReader(b[:100])}
	assert.ErrorIs(t, c.Handle(context.Background(), short), ErrFraming)
	assert.Zero(t, short.Len(), "no reply on a short read")
}

func TestRender_LightDirection(t *testing.T) {
	e := &fakeEngine{}
	c := newTestContext(e, fakeExporter{}, view.Resolver{})
	req := studioRequest(t, nil)
	req.LightEnable = true
	req.LightDirection = [3]int16{0, -1, 5}
	require.NoError(t, c.Render(context.Background(), io.Discard, req))
	require.NotNil(t, e.descs[0].LightDirection)
	assert.Equal(t, mgl32.Vec3{0, -1, 5}, *e.descs[0].LightDirection)
}
