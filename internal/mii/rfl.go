package mii

import "encoding/binary"

const (
	rflCharDataSize  = 74
	rflStoreDataSize = 76
)

// swapGroup describes a run of count fields of size bytes each.
type swapGroup struct {
	size  int
	count int
}

// rflSwapLayout lists every field of the big-endian RFL record in order.
var rflSwapLayout = []swapGroup{
	{2, 1},  // flags: gender, birthday, favorite color
	{2, 10}, // name
	{1, 1},  // height
	{1, 1},  // build
	{1, 4},  // creator id
	{1, 4},  // system id
	{2, 1},  // face
	{2, 1},  // hair
	{2, 2},  // eyebrow
	{2, 2},  // eye
	{2, 1},  // nose
	{2, 1},  // mouth
	{2, 1},  // glass
	{2, 1},  // beard
	{2, 1},  // mole
	{2, 10}, // creator name
}

// swapRFL returns a copy of the record with every multi-byte field in
// little-endian order. All field extraction works on this copy.
func swapRFL(src []byte) []byte {
	b := make([]byte, rflCharDataSize)
	copy(b, src[:rflCharDataSize])
	off := 0
	for _, g := range rflSwapLayout {
		for i := 0; i < g.count; i++ {
			if g.size == 2 {
				b[off], b[off+1] = b[off+1], b[off]
			}
			off += g.size
		}
	}
	return b
}

// RFL bit fields fill each 16-bit word from the most significant bit down;
// shifts below are already converted to LSB positions.
var (
	rflGender     = bitField{off: 0x00, size: 2, shift: 14, width: 1}
	rflBirthMonth = bitField{off: 0x00, size: 2, shift: 10, width: 4}
	rflBirthDay   = bitField{off: 0x00, size: 2, shift: 5, width: 5}
	rflFavColor   = bitField{off: 0x00, size: 2, shift: 1, width: 4}
	rflFavorite   = bitField{off: 0x00, size: 2, shift: 0, width: 1}

	rflHeight = bitField{off: 0x16, size: 1, shift: 0, width: 8}
	rflBuild  = bitField{off: 0x17, size: 1, shift: 0, width: 8}

	rflFaceType  = bitField{off: 0x20, size: 2, shift: 13, width: 3}
	rflFaceColor = bitField{off: 0x20, size: 2, shift: 10, width: 3}
	rflFaceTex   = bitField{off: 0x20, size: 2, shift: 6, width: 4}

	rflHairType  = bitField{off: 0x22, size: 2, shift: 9, width: 7}
	rflHairColor = bitField{off: 0x22, size: 2, shift: 6, width: 3}
	rflHairFlip  = bitField{off: 0x22, size: 2, shift: 5, width: 1}

	rflEyebrowType   = bitField{off: 0x24, size: 2, shift: 11, width: 5}
	rflEyebrowRotate = bitField{off: 0x24, size: 2, shift: 6, width: 5}
	rflEyebrowColor  = bitField{off: 0x26, size: 2, shift: 13, width: 3}
	rflEyebrowScale  = bitField{off: 0x26, size: 2, shift: 9, width: 4}
	rflEyebrowY      = bitField{off: 0x26, size: 2, shift: 4, width: 5}
	rflEyebrowX      = bitField{off: 0x26, size: 2, shift: 0, width: 4}

	rflEyeType   = bitField{off: 0x28, size: 2, shift: 10, width: 6}
	rflEyeRotate = bitField{off: 0x28, size: 2, shift: 5, width: 5}
	rflEyeY      = bitField{off: 0x28, size: 2, shift: 0, width: 5}
	rflEyeColor  = bitField{off: 0x2A, size: 2, shift: 13, width: 3}
	rflEyeScale  = bitField{off: 0x2A, size: 2, shift: 9, width: 4}
	rflEyeX      = bitField{off: 0x2A, size: 2, shift: 5, width: 4}

	rflNoseType  = bitField{off: 0x2C, size: 2, shift: 12, width: 4}
	rflNoseScale = bitField{off: 0x2C, size: 2, shift: 8, width: 4}
	rflNoseY     = bitField{off: 0x2C, size: 2, shift: 3, width: 5}

	rflMouthType  = bitField{off: 0x2E, size: 2, shift: 11, width: 5}
	rflMouthColor = bitField{off: 0x2E, size: 2, shift: 9, width: 2}
	rflMouthScale = bitField{off: 0x2E, size: 2, shift: 5, width: 4}
	rflMouthY     = bitField{off: 0x2E, size: 2, shift: 0, width: 5}

	rflGlassType  = bitField{off: 0x30, size: 2, shift: 12, width: 4}
	rflGlassColor = bitField{off: 0x30, size: 2, shift: 9, width: 3}
	rflGlassScale = bitField{off: 0x30, size: 2, shift: 5, width: 4}
	rflGlassY     = bitField{off: 0x30, size: 2, shift: 0, width: 5}

	rflMustacheType = bitField{off: 0x32, size: 2, shift: 14, width: 2}
	rflBeardType    = bitField{off: 0x32, size: 2, shift: 12, width: 2}
	rflBeardColor   = bitField{off: 0x32, size: 2, shift: 9, width: 3}
	rflBeardScale   = bitField{off: 0x32, size: 2, shift: 5, width: 4}
	rflBeardY       = bitField{off: 0x32, size: 2, shift: 0, width: 5}

	rflMoleType  = bitField{off: 0x34, size: 2, shift: 15, width: 1}
	rflMoleScale = bitField{off: 0x34, size: 2, shift: 11, width: 4}
	rflMoleY     = bitField{off: 0x34, size: 2, shift: 6, width: 5}
	rflMoleX     = bitField{off: 0x34, size: 2, shift: 1, width: 5}
)

const (
	rflNameOff        = 0x02
	rflCreatorIDOff   = 0x18
	rflCreatorNameOff = 0x36
	rflDefaultScaleY  = 3
)

// The Wii face texture combines wrinkles and makeup in one index.
var (
	rflFaceTexToFaceLine   = [12]uint8{0, 0, 0, 0, 5, 2, 3, 7, 8, 0, 9, 11}
	rflFaceTexToFaceMakeup = [12]uint8{0, 1, 6, 9, 0, 0, 0, 0, 0, 10, 0, 0}
)

// rflToVer3NoseType maps the Wii nose order onto the Ver3 nose order.
var rflToVer3NoseType = [12]uint8{1, 10, 2, 3, 6, 0, 5, 4, 8, 9, 7, 11}

// decodeRFL converts a big-endian Wii record. The byte-order swap happens
// first; every field is read from the swapped copy, never from src.
func decodeRFL(src []byte) *CharInfo {
	b := swapRFL(src)
	c := &CharInfo{BirthPlatform: BirthPlatformWii}
	p := &c.Parts

	c.Gender = Gender(rflGender.get(b))
	c.BirthMonth = rflBirthMonth.get(b)
	c.BirthDay = rflBirthDay.get(b)
	c.FavoriteColor = rflFavColor.get(b)
	c.FavoriteMii = rflFavorite.get(b) != 0
	c.Height = rflHeight.get(b)
	c.Build = rflBuild.get(b)
	for i := 0; i < 10; i++ {
		c.Name[i] = binary.LittleEndian.Uint16(b[rflNameOff+2*i:])
		c.CreatorName[i] = binary.LittleEndian.Uint16(b[rflCreatorNameOff+2*i:])
	}
	copy(c.CreatorID[:8], b[rflCreatorIDOff:rflCreatorIDOff+8])

	p.FaceType = rflFaceType.get(b)
	p.FacelineColor = Color(rflFaceColor.get(b))
	tex := rflFaceTex.get(b)
	if int(tex) < len(rflFaceTexToFaceLine) {
		p.FaceLine = rflFaceTexToFaceLine[tex]
		p.FaceMakeup = rflFaceTexToFaceMakeup[tex]
	}
	p.HairType = rflHairType.get(b)
	p.HairColor = Color(rflHairColor.get(b))
	p.HairFlip = rflHairFlip.get(b)

	p.EyebrowType = rflEyebrowType.get(b)
	p.EyebrowRotate = rflEyebrowRotate.get(b)
	p.EyebrowColor = Color(rflEyebrowColor.get(b))
	p.EyebrowScale = rflEyebrowScale.get(b)
	p.EyebrowScaleY = rflDefaultScaleY
	p.EyebrowPositionY = rflEyebrowY.get(b)
	p.EyebrowSpacingX = rflEyebrowX.get(b)

	p.EyeType = rflEyeType.get(b)
	p.EyeRotate = rflEyeRotate.get(b)
	p.EyePositionY = rflEyeY.get(b)
	p.EyeColor = Color(rflEyeColor.get(b))
	p.EyeScale = rflEyeScale.get(b)
	p.EyeScaleY = rflDefaultScaleY
	p.EyeSpacingX = rflEyeX.get(b)

	nose := rflNoseType.get(b)
	if int(nose) < len(rflToVer3NoseType) {
		p.NoseType = rflToVer3NoseType[nose]
	} else {
		p.NoseType = nose
	}
	p.NoseScale = rflNoseScale.get(b)
	p.NosePositionY = rflNoseY.get(b)

	p.MouthType = rflMouthType.get(b)
	p.MouthColor = Color(rflMouthColor.get(b))
	p.MouthScale = rflMouthScale.get(b)
	p.MouthScaleY = rflDefaultScaleY
	p.MouthPositionY = rflMouthY.get(b)

	p.GlassType = rflGlassType.get(b)
	p.GlassColor = Color(rflGlassColor.get(b))
	p.GlassScale = rflGlassScale.get(b)
	p.GlassPositionY = rflGlassY.get(b)

	p.MustacheType = rflMustacheType.get(b)
	p.BeardType = rflBeardType.get(b)
	p.BeardColor = Color(rflBeardColor.get(b))
	p.MustacheScale = rflBeardScale.get(b)
	p.MustachePositionY = rflBeardY.get(b)

	p.MoleType = rflMoleType.get(b)
	p.MoleScale = rflMoleScale.get(b)
	p.MolePositionY = rflMoleY.get(b)
	p.MolePositionX = rflMoleX.get(b)
	return c
}
