package soft

import (
	"github.com/go-gl/mathgl/mgl32"

	"miirender/internal/mii"
)

// Linear RGB approximations of the avatar color tables.
var (
	favoriteColors = [mii.FavoriteColorCount]mgl32.Vec3{
		{0.824, 0.118, 0.078},
		{1.000, 0.431, 0.098},
		{1.000, 0.847, 0.125},
		{0.471, 0.824, 0.125},
		{0.000, 0.471, 0.188},
		{0.039, 0.282, 0.706},
		{0.235, 0.667, 0.871},
		{0.961, 0.353, 0.490},
		{0.451, 0.157, 0.678},
		{0.282, 0.220, 0.094},
		{0.878, 0.878, 0.878},
		{0.094, 0.094, 0.078},
	}
	facelineColors = []mgl32.Vec3{
		{1.000, 0.827, 0.678},
		{1.000, 0.714, 0.420},
		{0.871, 0.475, 0.259},
		{1.000, 0.667, 0.549},
		{0.678, 0.318, 0.161},
		{0.388, 0.173, 0.094},
	}
	hairColors = []mgl32.Vec3{
		{0.118, 0.102, 0.094},
		{0.251, 0.125, 0.063},
		{0.361, 0.094, 0.039},
		{0.486, 0.227, 0.078},
		{0.471, 0.471, 0.502},
		{0.306, 0.243, 0.063},
		{0.533, 0.345, 0.094},
		{0.816, 0.627, 0.290},
	}
	eyeColors = []mgl32.Vec3{
		{0.000, 0.000, 0.000},
		{0.424, 0.439, 0.439},
		{0.400, 0.235, 0.173},
		{0.376, 0.369, 0.188},
		{0.275, 0.329, 0.659},
		{0.220, 0.439, 0.345},
	}
	mouthColors = []mgl32.Vec3{
		{0.847, 0.322, 0.031},
		{0.941, 0.047, 0.031},
		{0.961, 0.282, 0.282},
		{0.941, 0.604, 0.455},
		{0.549, 0.314, 0.251},
	}
	glassColors = []mgl32.Vec3{
		{0.094, 0.094, 0.094},
		{0.376, 0.220, 0.063},
		{0.659, 0.063, 0.031},
		{0.125, 0.188, 0.408},
		{0.659, 0.376, 0.000},
		{0.471, 0.439, 0.408},
	}
)

// lookup resolves a palette color. Common-table indices fold onto the
// legacy table.
func lookup(table []mgl32.Vec3, c mii.Color) mgl32.Vec3 {
	return table[int(c.Index())%len(table)]
}

func favoriteColor(i uint8) mgl32.Vec3 {
	return favoriteColors[int(i)%len(favoriteColors)]
}

func opaque(c mgl32.Vec3) mgl32.Vec4 { return c.Vec4(1) }
