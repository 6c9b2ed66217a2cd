package render

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"

	"miirender/internal/mii"
	"miirender/internal/output"
	"miirender/internal/view"
)

// Context owns the rendering engine for the life of the process. It keeps
// at most one live model and must not be used from more than one goroutine.
type Context struct {
	engine   Engine
	exporter SceneExporter
	views    ViewResolver
	log      zerolog.Logger

	model Model
}

func NewContext(engine Engine, exporter SceneExporter, views ViewResolver, log zerolog.Logger) *Context {
	return &Context{engine: engine, exporter: exporter, views: views, log: log}
}

// Close releases the live model, if any.
func (c *Context) Close() {
	c.release()
}

func (c *Context) release() {
	if c.model != nil {
		c.model.Release()
		c.model = nil
	}
}

func (c *Context) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &c.log
}

// Handle serves one connection: it reads a single request and writes the
// response. A short read is dropped without any reply. The caller closes
// conn.
func (c *Context) Handle(ctx context.Context, conn io.ReadWriter) error {
	req, err := ReadRequest(conn)
	if err != nil {
		c.logger(ctx).Warn().Err(err).Msg("dropping request")
		return err
	}
	return c.Render(ctx, conn, req)
}

// Render produces the response for req on w.
func (c *Context) Render(ctx context.Context, w io.Writer, req *Request) error {
	log := c.logger(ctx)

	// The previous model must be gone before a new one is built.
	c.release()

	info, format, err := mii.Normalize(req.Data[:], int(req.DataLength), req.VerifyCRC16)
	if err != nil {
		return c.fail(log, w, err)
	}
	log.Debug().Stringer("format", format).Str("name", info.NameString()).Msg("normalized")

	if req.VerifyCharInfo {
		if err := mii.Verify(info); err != nil {
			return c.fail(log, w, err)
		}
	}

	shader := view.ShaderType(req.ShaderType)
	if !shader.Valid() {
		shader = view.ShaderWiiU
	}
	if shader == view.ShaderMiitomo {
		info.Parts.GlassScale++
	}
	body := view.ResolveBodyType(view.BodyType(req.BodyType), shader)
	if body == view.BodyFFLBodyRes {
		info.Build, info.Height = view.FFLBodyResParam, view.FFLBodyResParam
	}

	model, err := c.engine.NewModel(c.modelDesc(req, info, shader))
	if err != nil {
		return c.fail(log, w, fmt.Errorf("%w: %v", ErrResourceUnavailable, err))
	}
	c.model = model

	switch {
	case req.ResponseFormat == ResponseGLTF:
		return c.export(log, w, model, req.DrawStage)
	case req.DrawStage == DrawMaskOnly:
		return c.streamMask(log, w, model, req)
	}
	return c.renderInstances(log, w, req, model, body)
}

func (c *Context) modelDesc(req *Request, info *mii.CharInfo, shader view.ShaderType) ModelDesc {
	size, mip := req.TextureResolution()
	d := ModelDesc{
		CharInfo:      info,
		TexResolution: size,
		MipMap:        mip,
		Expressions:   req.ExpressionMask(),
		Expression:    req.Expression,
		ResourceType:  req.ResourceType,
		Shader:        shader,
		Flags:         req.ModelFlag,
		LightEnable:   req.LightEnable,
	}
	if req.LightDirectionSet() {
		dir := mgl32.Vec3{float32(req.LightDirection[0]), float32(req.LightDirection[1]), float32(req.LightDirection[2])}
		d.LightDirection = &dir
	}
	return d
}

func (c *Context) fail(log *zerolog.Logger, w io.Writer, err error) error {
	log.Info().Err(err).Msg("request rejected")
	if werr := output.WriteError(w, ProtocolMessage(err)); werr != nil {
		log.Warn().Err(werr).Msg("writing error line")
	}
	return err
}

// export renders the scene into memory first so a failure can still be
// reported as an error line.
func (c *Context) export(log *zerolog.Logger, w io.Writer, m Model, stage DrawStage) error {
	var buf bytes.Buffer
	if err := c.exporter.Export(&buf, m, stage); err != nil {
		log.Error().Err(err).Msg("scene export failed")
		return c.fail(log, w, err)
	}
	n, err := w.Write(buf.Bytes())
	log.Info().Int("bytes", n).Msg("wrote scene")
	return err
}

func (c *Context) streamMask(log *zerolog.Logger, w io.Writer, m Model, req *Request) error {
	mask := m.Mask()
	bounds := mask.Bounds()
	st := output.NewStreamer(w, req.ResponseFormat == ResponseTGABGRAFlipY)
	if err := st.WriteHeader(bounds.Dx(), bounds.Dy()); err != nil {
		return err
	}
	if err := st.WriteFrame(mask.Pix, bounds.Dx(), bounds.Dy()); err != nil {
		return err
	}
	log.Info().Int64("bytes", st.Written()).Int("width", bounds.Dx()).Msg("wrote mask")
	return nil
}

func (c *Context) renderInstances(log *zerolog.Logger, w io.Writer, req *Request, m Model, body view.BodyType) error {
	info := m.CharInfo()
	vt := view.ViewType(req.ViewType)
	params := c.views.Resolve(vt, info.Build, info.Height)

	count := int(req.InstanceCount)
	if count < 1 {
		count = 1
	}
	width := int(req.Resolution)
	canvas := CanvasHeight(width, params.AspectFactor, count)
	if canvas > output.MaxDimension {
		return c.fail(log, w, fmt.Errorf("%w: %dx%d canvas exceeds %d rows", output.ErrTooLarge, width, canvas, output.MaxDimension))
	}
	frame := canvas / count

	if req.SplitMode == SplitBoth {
		log.Warn().Msg("split mode both is not supported in one pass; rendering unsplit")
	}

	hat := view.HatType(req.HatType)
	bodyDraw := BodyDraw{
		Type:  body,
		Scale: c.views.BodyScale(info.Build, info.Height),
		Pants: view.ResolvePants(view.PantsColor(req.PantsColor), info.FavoriteMii),
	}
	hatDraw := HatDraw{
		Type:       hat,
		Color:      view.HatColor(req.HatColor, info.FavoriteColor),
		Attachment: hat.Attachment(info.Gender),
	}
	clear := [4]float32{
		float32(req.BackgroundColor[0]) / 255,
		float32(req.BackgroundColor[1]) / 255,
		float32(req.BackgroundColor[2]) / 255,
		float32(req.BackgroundColor[3]) / 255,
	}

	st := output.NewStreamer(w, req.ResponseFormat == ResponseTGABGRAFlipY)
	if err := st.WriteHeader(width, canvas); err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		params = c.views.Resolve(vt, info.Build, info.Height)
		pass := c.instancePass(req, params, bodyDraw, i, count)
		pass.HeadMode = hat.HeadMode()
		pass.DepthMask = req.DrawStage == DrawXluDepthMask

		target := c.engine.NewTarget(width, frame, clear)
		c.draw(target, pass, req, m, params.IncludeBody, bodyDraw, hatDraw)

		tw, th := target.Size()
		if err := st.WriteFrame(target.Pixels(), tw, th); err != nil {
			return err
		}
		log.Debug().Int("instance", i).Msg("frame streamed")
	}
	if err := st.WritePadding(canvas - frame*count); err != nil {
		return err
	}
	log.Info().
		Int64("bytes", st.Written()).
		Int("width", width).
		Int("height", canvas).
		Int("instances", count).
		Msg("wrote render")
	return nil
}

// instancePass computes camera and model transforms for instance i of
// count.
func (c *Context) instancePass(req *Request, params view.Params, body BodyDraw, i, count int) Pass {
	camDeg, modelDeg := degrees(req.CameraRotate), degrees(req.ModelRotate)
	if count > 1 {
		step := float32(i) * 360 / float32(count)
		switch req.InstanceRotationMode {
		case RotateModel:
			modelDeg[1] += step
		case RotateCamera:
			camDeg[1] += step
		}
	}
	camRot, modelRot := RotationRadians(camDeg), RotationRadians(modelDeg)

	pos := OrbitPosition(params.Position.Z(), camRot)
	pos[1] += params.Position.Y()
	target := params.Target

	root := view.EulerXYZ(modelRot)
	head := root
	if params.IncludeBody {
		lift := view.HeadTranslation(body.Type, body.Scale)
		pos = pos.Add(lift)
		if !params.CameraAbsolute {
			target = target.Add(lift)
		}
		head = root.Mul4(view.HeadMatrix(body.Type, body.Scale))
	}
	viewMtx := mgl32.LookAtV(pos, target, UpVector(camRot))

	proj := params.Projection
	if req.SplitMode == SplitFront || req.SplitMode == SplitBack {
		proj = SplitProjection(proj, req.SplitMode, ViewDepth(viewMtx.Mul4(head)))
	}
	return Pass{
		Model:      head,
		Root:       root,
		View:       viewMtx,
		Projection: proj.Matrix(),
		Camera:     pos,
	}
}

// draw runs the stages in order: opaque, body, hat, translucent. The
// translucent mask goes last so it can overlay body pixels.
func (c *Context) draw(t Target, p Pass, req *Request, m Model, includeBody bool, body BodyDraw, hat HatDraw) {
	if req.DrawStage.opa() {
		m.DrawOpa(t, p)
	}
	if includeBody {
		info := m.CharInfo()
		favorite := info.FavoriteColor
		if req.ClothesColor >= 0 && req.ClothesColor < mii.FavoriteColorCount {
			info.FavoriteColor = uint8(req.ClothesColor)
		}
		m.DrawBody(t, p, body)
		info.FavoriteColor = favorite
	}
	if hat.Type != view.HatOff && hat.Type.Valid() {
		m.DrawHat(t, p, hat)
	}
	if req.DrawStage.xlu() {
		m.DrawXlu(t, p)
	}
}
