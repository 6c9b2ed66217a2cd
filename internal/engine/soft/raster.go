package soft

import (
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Target is an RGBA8 color buffer with a float depth buffer.
type Target struct {
	w, h  int
	pix   []byte
	depth []float32
}

func newTarget(w, h int, clear [4]float32) *Target {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	t := &Target{w: w, h: h, pix: make([]byte, w*h*4), depth: make([]float32, w*h)}
	var c [4]byte
	for i, v := range clear {
		c[i] = unitToByte(v)
	}
	for i := 0; i < len(t.pix); i += 4 {
		copy(t.pix[i:i+4], c[:])
	}
	for i := range t.depth {
		t.depth[i] = math.MaxFloat32
	}
	return t
}

func (t *Target) Size() (int, int) { return t.w, t.h }

func (t *Target) Pixels() []byte { return t.pix }

func unitToByte(v float32) byte {
	return byte(clamp(v, 0, 1)*255 + 0.5)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// light is a Lambert term with an ambient floor. A zero direction turns
// shading off.
type light struct {
	toLight mgl32.Vec3
	ambient float32
}

func (l light) intensity(n mgl32.Vec3) float32 {
	if l.toLight == (mgl32.Vec3{}) {
		return 1
	}
	d := n.Dot(l.toLight)
	if d < 0 {
		d = 0
	}
	return clamp(l.ambient+(1-l.ambient)*d, 0, 1)
}

type drawOpts struct {
	blend      bool
	depthWrite bool
	light      light
}

type screenVert struct {
	x, y, z float32
	uv      mgl32.Vec2
}

// drawMesh rasterizes m with model-view-projection mvp. Triangles with any
// vertex outside the depth range are dropped whole, which is how the near
// and far planes (and split planes) take effect.
func drawMesh(t *Target, m Mesh, model, mvp mgl32.Mat4, o drawOpts) {
	if t.w == 0 || t.h == 0 {
		return
	}
	for i := 0; i+2 < len(m.Indices); i += 3 {
		var sv [3]screenVert
		ok := true
		var n mgl32.Vec3
		for k := 0; k < 3; k++ {
			idx := m.Indices[i+k]
			if int(idx) >= len(m.Positions) {
				ok = false
				break
			}
			clip := mvp.Mul4x1(m.Positions[idx].Vec4(1))
			if clip.W() <= 0 {
				ok = false
				break
			}
			ndc := clip.Vec3().Mul(1 / clip.W())
			if ndc.Z() < -1 || ndc.Z() > 1 {
				ok = false
				break
			}
			sv[k] = screenVert{
				x: (ndc.X()*0.5 + 0.5) * float32(t.w),
				y: (1 - (ndc.Y()*0.5 + 0.5)) * float32(t.h),
				z: ndc.Z()*0.5 + 0.5,
			}
			if int(idx) < len(m.UVs) {
				sv[k].uv = m.UVs[idx]
			}
			if int(idx) < len(m.Normals) {
				n = n.Add(m.Normals[idx])
			}
		}
		if !ok {
			continue
		}
		shade := o.light.intensity(normalize(mgl32.TransformNormal(n, model)))
		fillTriangle(t, sv, m.Color, m.Texture, shade, o)
	}
}

func edge(a, b screenVert, x, y float32) float32 {
	return (x-a.x)*(b.y-a.y) - (y-a.y)*(b.x-a.x)
}

func fillTriangle(t *Target, v [3]screenVert, color mgl32.Vec4, tex *image.RGBA, shade float32, o drawOpts) {
	area := edge(v[0], v[1], v[2].x, v[2].y)
	if area == 0 {
		return
	}
	minX := int(math.Floor(float64(min(v[0].x, v[1].x, v[2].x))))
	maxX := int(math.Ceil(float64(max(v[0].x, v[1].x, v[2].x))))
	minY := int(math.Floor(float64(min(v[0].y, v[1].y, v[2].y))))
	maxY := int(math.Ceil(float64(max(v[0].y, v[1].y, v[2].y))))
	minX, minY = max(minX, 0), max(minY, 0)
	maxX, maxY = min(maxX, t.w-1), min(maxY, t.h-1)

	inv := 1 / area
	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			w0 := edge(v[1], v[2], px, py) * inv
			w1 := edge(v[2], v[0], px, py) * inv
			w2 := edge(v[0], v[1], px, py) * inv
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := w0*v[0].z + w1*v[1].z + w2*v[2].z
			i := y*t.w + x
			if z >= t.depth[i] {
				continue
			}
			c := color
			if tex != nil {
				uv := v[0].uv.Mul(w0).Add(v[1].uv.Mul(w1)).Add(v[2].uv.Mul(w2))
				c = sample(tex, uv)
			}
			rgb := c.Vec3().Mul(shade)
			a := c.W()
			if !o.blend {
				a = 1
			}
			if a <= 0 {
				continue
			}
			if o.depthWrite {
				t.depth[i] = z
			}
			p := t.pix[i*4 : i*4+4]
			for k := 0; k < 3; k++ {
				dst := float32(p[k]) / 255
				p[k] = unitToByte(rgb[k]*a + dst*(1-a))
			}
			p[3] = unitToByte(a + float32(p[3])/255*(1-a))
		}
	}
}

// sample is a nearest-texel lookup with clamped coordinates.
func sample(tex *image.RGBA, uv mgl32.Vec2) mgl32.Vec4 {
	b := tex.Bounds()
	x := b.Min.X + int(clamp(uv.X(), 0, 1)*float32(b.Dx()-1)+0.5)
	y := b.Min.Y + int(clamp(uv.Y(), 0, 1)*float32(b.Dy()-1)+0.5)
	c := tex.RGBAAt(x, y)
	return mgl32.Vec4{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
}
