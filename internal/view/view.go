package view

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type ViewType uint8

const (
	ViewFace ViewType = iota
	ViewFaceOnly
	ViewAllBody
	ViewFFLMakeIcon
	ViewFFLIconWithBody
	ViewVariableIconBody
	ViewAllBodySugar
	viewTypeCount
)

var viewNames = [viewTypeCount]string{
	"face", "face_only", "all_body", "fflmakeicon", "ffliconwithbody", "variableiconbody", "all_body_sugar",
}

func (v ViewType) String() string {
	if v >= viewTypeCount {
		return "fflmakeicon"
	}
	return viewNames[v]
}

func ParseViewType(s string) (ViewType, bool) {
	for i, n := range viewNames {
		if n == s {
			return ViewType(i), true
		}
	}
	return ViewFace, false
}

// Projection is a symmetric perspective frustum. FovY is in radians.
type Projection struct {
	FovY   float32
	Aspect float32
	Near   float32
	Far    float32
}

func (p Projection) Matrix() mgl32.Mat4 {
	return mgl32.Perspective(p.FovY, p.Aspect, p.Near, p.Far)
}

var (
	// RFLiMakeIcon framing, head only.
	headProjection = Projection{
		FovY:   2 * float32(math.Atan2(43.2, 500)),
		Aspect: 1,
		Near:   500,
		Far:    1200,
	}
	// GetFaceMatrix framing, wide enough for a body.
	iconBodyProjection = Projection{
		FovY:   mgl32.DegToRad(15),
		Aspect: 1,
		Near:   10,
		Far:    1000,
	}
)

// Params is everything the orchestrator needs to place the camera for one
// view type.
type Params struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3

	Projection Projection
	// AspectFactor is frame height over frame width.
	AspectFactor Ratio
	// CameraAbsolute keeps the target fixed when the head is lifted onto
	// the body.
	CameraAbsolute bool
	IncludeBody    bool
}

// Ratio is an exact fraction Num/Den. The zero value reads as 1.
type Ratio struct {
	Num, Den int
}

// Ceil returns the smallest integer not below n*r.
func (r Ratio) Ceil(n int) int {
	if r.Num <= 0 || r.Den <= 0 {
		return n
	}
	return (n*r.Num + r.Den - 1) / r.Den
}

type pose struct {
	pos, target mgl32.Vec3
}

var viewPoses = [viewTypeCount]pose{
	ViewFace:             {mgl32.Vec3{0, 33.016785, 411.181793}, mgl32.Vec3{0, 33.016785, 0}},
	ViewFaceOnly:         {mgl32.Vec3{0, 33.016785, 411.181793}, mgl32.Vec3{0, 33.016785, 0}},
	ViewAllBody:          {mgl32.Vec3{0, 9, 900}, mgl32.Vec3{0, 6, 0}},
	ViewFFLMakeIcon:      {mgl32.Vec3{0, 34.5, 600}, mgl32.Vec3{0, 34.5, 0}},
	ViewFFLIconWithBody:  {mgl32.Vec3{0, 37.05, 415.53}, mgl32.Vec3{0, 37.05, 0}},
	ViewVariableIconBody: {mgl32.Vec3{0, 37, 380}, mgl32.Vec3{0, 37, 0}},
}

// Endpoints of the aspect-corrected full body camera.
var (
	sugarShortest = pose{mgl32.Vec3{0, 50, 520}, mgl32.Vec3{0, 45, 0}}
	sugarTallest  = pose{mgl32.Vec3{0, 80, 680}, mgl32.Vec3{0, 70, 0}}
)

const (
	sugarAspect = float32(3) / 4
)

var sugarAspectFactor = Ratio{Num: 4, Den: 3}

func lerp(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Mul(1 - t).Add(b.Mul(t))
}

func sugarPose(t float32) pose {
	return pose{
		pos:    lerp(sugarShortest.pos, sugarTallest.pos, t),
		target: lerp(sugarShortest.target, sugarTallest.target, t),
	}
}

// Resolver maps view types to camera parameters. It holds no state besides
// the scale formula and is safe for concurrent use.
type Resolver struct {
	Formula ScaleFormula
}

// Resolve returns the camera for vt. build and height must be in 0..127;
// the all-body sugar view relies on that range and does not clamp.
func (r Resolver) Resolve(vt ViewType, build, height uint8) Params {
	p := Params{
		Up:           mgl32.Vec3{0, 1, 0},
		Projection:   iconBodyProjection,
		AspectFactor: Ratio{Num: 1, Den: 1},
	}
	switch vt {
	case ViewFace, ViewAllBody, ViewFFLIconWithBody, ViewVariableIconBody:
		p.IncludeBody = true
		p.Position, p.Target = viewPoses[vt].pos, viewPoses[vt].target
		p.CameraAbsolute = vt == ViewAllBody
	case ViewFaceOnly:
		p.Position, p.Target = viewPoses[vt].pos, viewPoses[vt].target
	case ViewAllBodySugar:
		lo, hi := r.Formula.scaleYRange()
		t := (r.Formula.Scale(build, height).Y() - lo) / (hi - lo)
		s := sugarPose(t)
		p.Position, p.Target = s.pos, s.target
		p.Projection.Aspect = sugarAspect
		p.AspectFactor = sugarAspectFactor
		p.IncludeBody = true
		p.CameraAbsolute = true
	default:
		p.Position, p.Target = viewPoses[ViewFFLMakeIcon].pos, viewPoses[ViewFFLMakeIcon].target
		p.Projection = headProjection
	}
	return p
}

// BodyScale exposes the configured formula.
func (r Resolver) BodyScale(build, height uint8) mgl32.Vec3 {
	return r.Formula.Scale(build, height)
}
