package soft

import (
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is an indexed triangle list with one material.
type Mesh struct {
	Name      string
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	// UVs is empty unless Texture is set.
	UVs     []mgl32.Vec2
	Indices []uint16

	Color   mgl32.Vec4
	Texture *image.RGBA
}

// Transformed returns a copy of m with positions and normals moved by mtx.
func (m Mesh) Transformed(mtx mgl32.Mat4) Mesh {
	out := m
	out.Positions = make([]mgl32.Vec3, len(m.Positions))
	out.Normals = make([]mgl32.Vec3, len(m.Normals))
	for i, p := range m.Positions {
		out.Positions[i] = mgl32.TransformCoordinate(p, mtx)
	}
	for i, n := range m.Normals {
		out.Normals[i] = normalize(mgl32.TransformNormal(n, mtx))
	}
	return out
}

func (m *Mesh) append(o Mesh) {
	base := uint16(len(m.Positions))
	m.Positions = append(m.Positions, o.Positions...)
	m.Normals = append(m.Normals, o.Normals...)
	m.UVs = append(m.UVs, o.UVs...)
	for _, i := range o.Indices {
		m.Indices = append(m.Indices, base+i)
	}
}

func normalize(v mgl32.Vec3) mgl32.Vec3 {
	if l := v.Len(); l > 0 {
		return v.Mul(1 / l)
	}
	return v
}

// ellipsoid builds a UV sphere scaled by radii around center. Only the
// stacks from latMin to latMax radians (0 is the top pole, pi the bottom)
// are generated, which makes open caps possible.
func ellipsoid(center, radii mgl32.Vec3, stacks, slices int, latMin, latMax float64) Mesh {
	var m Mesh
	for i := 0; i <= stacks; i++ {
		lat := latMin + (latMax-latMin)*float64(i)/float64(stacks)
		sl, cl := math.Sincos(lat)
		for j := 0; j <= slices; j++ {
			lon := 2 * math.Pi * float64(j) / float64(slices)
			so, co := math.Sincos(lon)
			unit := mgl32.Vec3{float32(sl * so), float32(cl), float32(sl * co)}
			m.Positions = append(m.Positions, center.Add(mgl32.Vec3{unit[0] * radii[0], unit[1] * radii[1], unit[2] * radii[2]}))
			m.Normals = append(m.Normals, normalize(mgl32.Vec3{unit[0] / radii[0], unit[1] / radii[1], unit[2] / radii[2]}))
		}
	}
	row := slices + 1
	for i := 0; i < stacks; i++ {
		for j := 0; j < slices; j++ {
			a := uint16(i*row + j)
			b := a + uint16(row)
			m.Indices = append(m.Indices, a, b, a+1, a+1, b, b+1)
		}
	}
	return m
}

// cylinder is a capped unit-radius cylinder from y=0 to y=1.
func cylinder(segments int) Mesh {
	var m Mesh
	for _, y := range []float32{0, 1} {
		for j := 0; j <= segments; j++ {
			s, c := math.Sincos(2 * math.Pi * float64(j) / float64(segments))
			m.Positions = append(m.Positions, mgl32.Vec3{float32(s), y, float32(c)})
			m.Normals = append(m.Normals, mgl32.Vec3{float32(s), 0, float32(c)})
		}
	}
	row := uint16(segments + 1)
	for j := uint16(0); j < uint16(segments); j++ {
		m.Indices = append(m.Indices, j, j+row, j+1, j+1, j+row, j+row+1)
	}
	for _, y := range []float32{0, 1} {
		n := mgl32.Vec3{0, 2*y - 1, 0}
		center := uint16(len(m.Positions))
		m.Positions = append(m.Positions, mgl32.Vec3{0, y, 0})
		m.Normals = append(m.Normals, n)
		for j := 0; j <= segments; j++ {
			s, c := math.Sincos(2 * math.Pi * float64(j) / float64(segments))
			m.Positions = append(m.Positions, mgl32.Vec3{float32(s), y, float32(c)})
			m.Normals = append(m.Normals, n)
		}
		for j := uint16(0); j < uint16(segments); j++ {
			m.Indices = append(m.Indices, center, center+1+j, center+2+j)
		}
	}
	return m
}

var boxFaces = [6]struct {
	normal  mgl32.Vec3
	corners [4]mgl32.Vec3
}{
	{mgl32.Vec3{1, 0, 0}, [4]mgl32.Vec3{{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}}},
	{mgl32.Vec3{-1, 0, 0}, [4]mgl32.Vec3{{0, 0, 1}, {0, 1, 1}, {0, 1, 0}, {0, 0, 0}}},
	{mgl32.Vec3{0, 1, 0}, [4]mgl32.Vec3{{0, 1, 1}, {1, 1, 1}, {1, 1, 0}, {0, 1, 0}}},
	{mgl32.Vec3{0, -1, 0}, [4]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}}},
	{mgl32.Vec3{0, 0, 1}, [4]mgl32.Vec3{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}}},
	{mgl32.Vec3{0, 0, -1}, [4]mgl32.Vec3{{1, 0, 0}, {0, 0, 0}, {0, 1, 0}, {1, 1, 0}}},
}

// box spans lo to hi.
func box(lo, hi mgl32.Vec3) Mesh {
	var m Mesh
	size := hi.Sub(lo)
	for _, f := range boxFaces {
		base := uint16(len(m.Positions))
		for _, c := range f.corners {
			m.Positions = append(m.Positions, lo.Add(mgl32.Vec3{c[0] * size[0], c[1] * size[1], c[2] * size[2]}))
			m.Normals = append(m.Normals, f.normal)
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}

// quad is an upright rectangle facing +Z with UVs, top row v=0.
func quad(lo, hi mgl32.Vec2, z float32) Mesh {
	n := mgl32.Vec3{0, 0, 1}
	return Mesh{
		Positions: []mgl32.Vec3{{lo[0], lo[1], z}, {hi[0], lo[1], z}, {hi[0], hi[1], z}, {lo[0], hi[1], z}},
		Normals:   []mgl32.Vec3{n, n, n, n},
		UVs:       []mgl32.Vec2{{0, 1}, {1, 1}, {1, 0}, {0, 0}},
		Indices:   []uint16{0, 1, 2, 0, 2, 3},
	}
}
