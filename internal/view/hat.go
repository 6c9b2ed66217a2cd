package view

import (
	"github.com/go-gl/mathgl/mgl32"

	"miirender/internal/mii"
)

type HatType uint8

const (
	HatOff HatType = iota
	HatCap
	HatBeanie
	HatTopHat
	HatRibbon
	HatBow
	HatCatEars
	HatStrawHat
	HatHijab
	HatBikeHelmet
	hatTypeCount
)

var hatNames = [hatTypeCount]string{
	"off", "cap", "beanie", "top_hat", "ribbon", "bow", "cat_ears", "straw_hat", "hijab", "bike_helmet",
}

func (h HatType) Valid() bool { return h < hatTypeCount }

func (h HatType) String() string {
	if !h.Valid() {
		return "off"
	}
	return hatNames[h]
}

func ParseHatType(s string) (HatType, bool) {
	for i, n := range hatNames {
		if n == s {
			return HatType(i), true
		}
	}
	return HatOff, false
}

// HeadMode says which head geometry is kept under a hat.
type HeadMode uint8

const (
	HeadAll HeadMode = iota
	// HeadHatOnly cuts the hair to fit under the hat.
	HeadHatOnly
	HeadFaceOnly
	// HeadBald replaces the hair entirely.
	HeadBald
)

var hatHeadModes = [hatTypeCount]HeadMode{
	HeadAll,
	HeadHatOnly,
	HeadHatOnly,
	HeadHatOnly,
	HeadAll,
	HeadAll,
	HeadAll,
	HeadHatOnly,
	HeadBald,
	HeadHatOnly,
}

func (h HatType) HeadMode() HeadMode {
	if !h.Valid() {
		return HeadAll
	}
	return hatHeadModes[h]
}

// HatAttachment positions a hat mesh relative to the head origin. Scale is
// radius and height of the crown; Translation lifts it onto the hair.
type HatAttachment struct {
	Scale       mgl32.Vec3
	Rotation    mgl32.Vec3
	Translation mgl32.Vec3
}

// Matrix composes translation, rotation and scale.
func (a HatAttachment) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(a.Translation.X(), a.Translation.Y(), a.Translation.Z()).
		Mul4(EulerXYZ(a.Rotation)).
		Mul4(mgl32.Scale3D(a.Scale.X(), a.Scale.Y(), a.Scale.Z()))
}

// Female hair sits slightly higher on the default head.
var hatAttachments = [hatTypeCount][mii.GenderMax]HatAttachment{
	HatOff: {},
	HatCap: {
		{Scale: mgl32.Vec3{13, 6, 13}, Translation: mgl32.Vec3{0, 50, 1}},
		{Scale: mgl32.Vec3{13.5, 6, 13.5}, Translation: mgl32.Vec3{0, 51, 1}},
	},
	HatBeanie: {
		{Scale: mgl32.Vec3{12.5, 9, 12.5}, Translation: mgl32.Vec3{0, 48, 0}},
		{Scale: mgl32.Vec3{13, 9, 13}, Translation: mgl32.Vec3{0, 49, 0}},
	},
	HatTopHat: {
		{Scale: mgl32.Vec3{10, 18, 10}, Translation: mgl32.Vec3{0, 52, 0}},
		{Scale: mgl32.Vec3{10, 18, 10}, Translation: mgl32.Vec3{0, 53, 0}},
	},
	HatRibbon: {
		{Scale: mgl32.Vec3{4, 3, 2}, Rotation: mgl32.Vec3{0, 0, 0.3}, Translation: mgl32.Vec3{8, 54, 6}},
		{Scale: mgl32.Vec3{4, 3, 2}, Rotation: mgl32.Vec3{0, 0, 0.3}, Translation: mgl32.Vec3{8, 55, 6}},
	},
	HatBow: {
		{Scale: mgl32.Vec3{5, 3, 2}, Translation: mgl32.Vec3{0, 56, -2}},
		{Scale: mgl32.Vec3{5, 3, 2}, Translation: mgl32.Vec3{0, 57, -2}},
	},
	HatCatEars: {
		{Scale: mgl32.Vec3{11, 5, 3}, Translation: mgl32.Vec3{0, 55, 0}},
		{Scale: mgl32.Vec3{11, 5, 3}, Translation: mgl32.Vec3{0, 56, 0}},
	},
	HatStrawHat: {
		{Scale: mgl32.Vec3{20, 7, 20}, Translation: mgl32.Vec3{0, 50, 0}},
		{Scale: mgl32.Vec3{20, 7, 20}, Translation: mgl32.Vec3{0, 51, 0}},
	},
	HatHijab: {
		{Scale: mgl32.Vec3{14, 26, 14}, Translation: mgl32.Vec3{0, 26, -2}},
		{Scale: mgl32.Vec3{14, 26, 14}, Translation: mgl32.Vec3{0, 26, -2}},
	},
	HatBikeHelmet: {
		{Scale: mgl32.Vec3{14, 10, 15}, Translation: mgl32.Vec3{0, 47, 0}},
		{Scale: mgl32.Vec3{14.5, 10, 15.5}, Translation: mgl32.Vec3{0, 48, 0}},
	},
}

// Attachment returns the placement for a gender. Unknown genders use the
// male entry.
func (h HatType) Attachment(g mii.Gender) HatAttachment {
	if !h.Valid() {
		return HatAttachment{}
	}
	if g >= mii.GenderMax {
		g = mii.GenderMale
	}
	return hatAttachments[h][g]
}

// HatColor maps the request's hat color onto a favorite color index. Zero
// and anything past the palette fall back to the avatar's own color.
func HatColor(requested, favorite uint8) uint8 {
	if requested != 0 && requested < 12 {
		return requested - 1
	}
	return favorite
}
