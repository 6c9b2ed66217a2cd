package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"miirender/internal/view"
)

// RotationRadians wraps each angle in degrees into (-360, 360) and converts
// it to radians.
func RotationRadians(deg [3]float32) mgl32.Vec3 {
	var r mgl32.Vec3
	for i, d := range deg {
		r[i] = mgl32.DegToRad(float32(math.Mod(float64(d), 360)))
	}
	return r
}

func degrees(v [3]int16) [3]float32 {
	return [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
}

// OrbitPosition places the camera on a sphere of the given radius around
// the origin. X rotation is elevation and Y rotation is azimuth.
func OrbitPosition(radius float32, r mgl32.Vec3) mgl32.Vec3 {
	sx, cx := sincos(r.X())
	sy, cy := sincos(r.Y())
	return mgl32.Vec3{
		radius * -sy * cx,
		radius * sx,
		radius * cy * cx,
	}
}

// UpVector rolls the camera by the Z rotation.
func UpVector(r mgl32.Vec3) mgl32.Vec3 {
	s, c := sincos(r.Z())
	return mgl32.Vec3{s, c, 0}
}

func sincos(a float32) (float32, float32) {
	s, c := math.Sincos(float64(a))
	return float32(s), float32(c)
}

// CanvasHeight is the total output height for count frames, rounded up to
// an even number of rows.
func CanvasHeight(resolution int, aspect view.Ratio, count int) int {
	h := aspect.Ceil(resolution * count)
	if h%2 != 0 {
		h++
	}
	return h
}

// ViewDepth is the distance in front of the camera of the origin of
// modelView.
func ViewDepth(modelView mgl32.Mat4) float32 {
	return -modelView.Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Z()
}

// SplitProjection moves one clip plane to depth. Front keeps what lies in
// front of depth, back keeps what lies behind it. SplitBoth is not
// supported in a single pass and leaves p unchanged, as does a depth
// outside the frustum.
func SplitProjection(p view.Projection, mode SplitMode, depth float32) view.Projection {
	if depth <= p.Near || depth >= p.Far {
		return p
	}
	switch mode {
	case SplitFront:
		p.Far = depth
	case SplitBack:
		p.Near = depth
	}
	return p
}
