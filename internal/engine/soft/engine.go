// Package soft is the built-in software rendering engine. It builds a
// procedural stand-in avatar from the canonical record and rasterizes it
// on the CPU with a depth buffer.
package soft

import (
	"fmt"
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"miirender/internal/mii"
	"miirender/internal/render"
	"miirender/internal/view"
)

const (
	// MaxTexResolution is the largest mask texture a model may request.
	MaxTexResolution = 4096
	// DefaultTexResolution is used when a request leaves it at zero.
	DefaultTexResolution = 256

	hairTypeCount   = 132
	expressionLimit = 70
)

var defaultLightDir = normalize(mgl32.Vec3{-0.3, 0.6, 1})

// Engine implements render.Engine.
type Engine struct{}

func New() *Engine { return &Engine{} }

func (e *Engine) NewTarget(w, h int, clear [4]float32) render.Target {
	return newTarget(w, h, clear)
}

// NewModel builds the meshes for one avatar. It fails for part indices it
// has no shape for and for oversized textures.
func (e *Engine) NewModel(d render.ModelDesc) (render.Model, error) {
	info := d.CharInfo
	if info == nil {
		return nil, fmt.Errorf("soft: no character data")
	}
	if info.Parts.HairType >= hairTypeCount {
		return nil, fmt.Errorf("soft: no shape for hair type %d", info.Parts.HairType)
	}
	res := d.TexResolution
	if res == 0 {
		res = DefaultTexResolution
	}
	if res < 2 || res > MaxTexResolution {
		return nil, fmt.Errorf("soft: texture resolution %d out of range", res)
	}
	expr, err := activeExpression(d.Expressions, d.Expression)
	if err != nil {
		return nil, err
	}

	m := &Model{
		info:       info,
		texRes:     res,
		expression: expr,
		flags:      d.Flags,
		light:      light{toLight: defaultLightDir, ambient: 0.45},
	}
	if !d.LightEnable {
		m.light = light{}
	} else if d.LightDirection != nil && d.LightDirection.Len() > 0 {
		m.light.toLight = normalize(*d.LightDirection)
	}
	m.mask = drawMask(info, expr, res)
	m.build()
	return m, nil
}

// activeExpression picks want when its bit is set, otherwise the lowest set
// bit of flags.
func activeExpression(flags [3]uint32, want uint8) (int, error) {
	first := -1
	for i := 0; i < 96; i++ {
		if flags[i/32]&(1<<(i%32)) == 0 {
			continue
		}
		if i >= expressionLimit {
			return 0, fmt.Errorf("soft: expression %d out of range", i)
		}
		if first < 0 {
			first = i
		}
	}
	if int(want) < 96 && flags[want/32]&(1<<(want%32)) != 0 {
		return int(want), nil
	}
	if first < 0 {
		return 0, nil
	}
	return first, nil
}

// Model implements render.Model.
type Model struct {
	info       *mii.CharInfo
	texRes     int
	expression int
	flags      render.ModelFlag
	light      light

	// Head space meshes.
	face  Mesh
	hair  Mesh
	nose  Mesh
	glass Mesh
	front Mesh
	mask  *image.RGBA

	released bool
}

func (m *Model) CharInfo() *mii.CharInfo { return m.info }

func (m *Model) Mask() *image.RGBA { return m.mask }

func (m *Model) Release() {
	m.released = true
	m.face, m.hair, m.nose, m.glass, m.front = Mesh{}, Mesh{}, Mesh{}, Mesh{}, Mesh{}
}

// Released reports whether Release was called.
func (m *Model) Released() bool { return m.released }

// Expression is the expression drawn on the face mask.
func (m *Model) Expression() int { return m.expression }

func (m *Model) build() {
	p := &m.info.Parts
	skin := opaque(lookup(facelineColors, p.FacelineColor))

	m.face = ellipsoid(mgl32.Vec3{0, 30, 0}, mgl32.Vec3{13, 18, 13}, 16, 20, 0, math.Pi)
	neck := cylinder(12).Transformed(mgl32.Scale3D(5, 14, 5))
	m.face.append(neck)
	m.face.Name, m.face.Color = "faceline", skin

	m.hair = ellipsoid(mgl32.Vec3{0, 34, -1}, mgl32.Vec3{14, 16, 14}, 8, 20, 0, 1.5)
	m.hair.Name, m.hair.Color = "hair", opaque(lookup(hairColors, p.HairColor))

	noseDepth := float32(2 + float32(p.NoseScale)*0.3)
	if m.flags&render.ModelFlagFlattenNose != 0 {
		noseDepth = 0.4
	}
	m.nose = ellipsoid(mgl32.Vec3{0, 28 - float32(p.NosePositionY)*0.3, 12.5}, mgl32.Vec3{2, 2, noseDepth}, 6, 8, 0, math.Pi)
	m.nose.Name, m.nose.Color = "nose", skin

	if p.GlassType != 0 {
		w := 9 + float32(p.GlassScale)*0.5
		y := 33 - float32(p.GlassPositionY)*0.2
		m.glass = box(mgl32.Vec3{-w, y - 0.6, 13.6}, mgl32.Vec3{w, y + 0.6, 14.2})
		m.glass.Name, m.glass.Color = "glass", opaque(lookup(glassColors, p.GlassColor))
	}

	m.front = quad(mgl32.Vec2{-11, 17}, mgl32.Vec2{11, 43}, 13.4)
	m.front.Name, m.front.Texture, m.front.Color = "mask", m.mask, mgl32.Vec4{1, 1, 1, 1}
}

func target(t render.Target) (*Target, bool) {
	st, ok := t.(*Target)
	return st, ok
}

func mvp(p render.Pass, model mgl32.Mat4) mgl32.Mat4 {
	return p.Projection.Mul4(p.View).Mul4(model)
}

// headMeshes returns the opaque head meshes kept for the pass's head mode.
// The model type flags narrow the mode the same way a hat does.
func (m *Model) headMeshes(mode view.HeadMode) []Mesh {
	if mode == view.HeadAll {
		switch {
		case m.flags&render.ModelFlagFaceOnly != 0:
			mode = view.HeadFaceOnly
		case m.flags&render.ModelFlagHat != 0:
			mode = view.HeadHatOnly
		}
	}
	meshes := []Mesh{m.face, m.nose}
	switch mode {
	case view.HeadAll:
		meshes = append(meshes, m.hair)
	case view.HeadHatOnly:
		cut := m.hair.Transformed(mgl32.Translate3D(0, 34, 0).Mul4(mgl32.Scale3D(1, 0.6, 1)).Mul4(mgl32.Translate3D(0, -34, 0)))
		cut.Name = "hair_cut"
		meshes = append(meshes, cut)
	}
	if len(m.glass.Indices) > 0 {
		meshes = append(meshes, m.glass)
	}
	return meshes
}

func (m *Model) DrawOpa(t render.Target, p render.Pass) {
	st, ok := target(t)
	if !ok || m.released {
		return
	}
	mat := mvp(p, p.Model)
	for _, mesh := range m.headMeshes(p.HeadMode) {
		drawMesh(st, mesh, p.Model, mat, drawOpts{depthWrite: true, light: m.light})
	}
}

func (m *Model) DrawXlu(t render.Target, p render.Pass) {
	st, ok := target(t)
	if !ok || m.released {
		return
	}
	drawMesh(st, m.front, p.Model, mvp(p, p.Model), drawOpts{blend: true, depthWrite: p.DepthMask})
}

// Body geometry in body units; the head joins at the top of the neck.
var (
	bodyLegs  = [2][2]mgl32.Vec3{{{-1.9, -3, -1.2}, {-0.2, 4.5, 1.2}}, {{0.2, -3, -1.2}, {1.9, 4.5, 1.2}}}
	bodyTorso = [2]mgl32.Vec3{{-2.4, 4.5, -1.5}, {2.4, 10.8, 1.5}}
	bodyArms  = [2][2]mgl32.Vec3{{{-3.3, 6, -0.8}, {-2.5, 10.4, 0.8}}, {{2.5, 6, -0.8}, {3.3, 10.4, 0.8}}}
)

func (m *Model) bodyMeshes(b render.BodyDraw) []Mesh {
	clothes := opaque(favoriteColor(m.info.FavoriteColor))
	torso := box(bodyTorso[0], bodyTorso[1])
	for _, a := range bodyArms {
		torso.append(box(a[0], a[1]))
	}
	torso.Name, torso.Color = "body", clothes
	meshes := []Mesh{torso}

	var legs Mesh
	for _, l := range bodyLegs {
		legs.append(box(l[0], l[1]))
	}
	legs.Name = "pants"
	switch b.Pants {
	case view.PantsNone:
		return meshes
	case view.PantsBody:
		legs.Color = clothes
	default:
		c, ok := b.Pants.RGBA()
		if !ok {
			c, _ = view.PantsGray.RGBA()
		}
		legs.Color = c
	}
	return append(meshes, legs)
}

func bodyMatrix(p render.Pass, b render.BodyDraw) mgl32.Mat4 {
	bt := b.Type
	if !bt.Valid() {
		bt = view.BodyWiiU
	}
	s := b.Scale.Mul(view.ScaleFactor(bt))
	return p.Root.Mul4(mgl32.Scale3D(s.X(), s.Y(), s.Z()))
}

func (m *Model) DrawBody(t render.Target, p render.Pass, b render.BodyDraw) {
	st, ok := target(t)
	if !ok || m.released {
		return
	}
	model := bodyMatrix(p, b)
	mat := mvp(p, model)
	for _, mesh := range m.bodyMeshes(b) {
		drawMesh(st, mesh, model, mat, drawOpts{depthWrite: true, light: m.light})
	}
}

func hatMesh(h render.HatDraw) Mesh {
	mesh := cylinder(16).Transformed(h.Attachment.Matrix())
	mesh.Name, mesh.Color = "hat", opaque(favoriteColor(h.Color))
	return mesh
}

func (m *Model) DrawHat(t render.Target, p render.Pass, h render.HatDraw) {
	st, ok := target(t)
	if !ok || m.released || h.Type == view.HatOff {
		return
	}
	drawMesh(st, hatMesh(h), p.Model, mvp(p, p.Model), drawOpts{depthWrite: true, light: m.light})
}
