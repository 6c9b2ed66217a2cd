package mii

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rflFields writes fields in host order; swapRFL turns the result into the
// big-endian wire layout.
func rflFields() []byte {
	b := make([]byte, rflCharDataSize)
	rflGender.set(b, 1)
	rflBirthMonth.set(b, 9)
	rflBirthDay.set(b, 21)
	rflFavColor.set(b, 6)
	rflFavorite.set(b, 1)
	putUTF16LE(b[rflNameOff:], "Wii")
	rflHeight.set(b, 77)
	rflBuild.set(b, 12)
	copy(b[rflCreatorIDOff:], []byte{0x80, 0x11, 0x22, 0x33, 0xE0, 0x44, 0x55, 0x66})
	rflFaceType.set(b, 7)
	rflFaceColor.set(b, 5)
	rflFaceTex.set(b, 4)
	rflHairType.set(b, 71)
	rflHairColor.set(b, 6)
	rflHairFlip.set(b, 1)
	rflEyebrowType.set(b, 23)
	rflEyebrowRotate.set(b, 11)
	rflEyebrowColor.set(b, 4)
	rflEyebrowScale.set(b, 8)
	rflEyebrowY.set(b, 17)
	rflEyebrowX.set(b, 12)
	rflEyeType.set(b, 47)
	rflEyeRotate.set(b, 7)
	rflEyeY.set(b, 18)
	rflEyeColor.set(b, 5)
	rflEyeScale.set(b, 7)
	rflEyeX.set(b, 12)
	rflNoseType.set(b, 0)
	rflNoseScale.set(b, 8)
	rflNoseY.set(b, 18)
	rflMouthType.set(b, 23)
	rflMouthColor.set(b, 2)
	rflMouthScale.set(b, 8)
	rflMouthY.set(b, 18)
	rflGlassType.set(b, 8)
	rflGlassColor.set(b, 5)
	rflGlassScale.set(b, 7)
	rflGlassY.set(b, 20)
	rflMustacheType.set(b, 3)
	rflBeardType.set(b, 3)
	rflBeardColor.set(b, 7)
	rflBeardScale.set(b, 8)
	rflBeardY.set(b, 16)
	rflMoleType.set(b, 1)
	rflMoleScale.set(b, 8)
	rflMoleY.set(b, 30)
	rflMoleX.set(b, 16)
	putUTF16LE(b[rflCreatorNameOff:], "Ed")
	return b
}

func rflStoreFixture() []byte {
	b := append(swapRFL(rflFields()), 0, 0)
	SealCRC16(b)
	return b
}

func TestNormalize_RFLCharData(t *testing.T) {
	wire := swapRFL(rflFields())
	c, f, err := Normalize(wire, len(wire), true)
	require.NoError(t, err)
	assert.Equal(t, FormatRFLCharData, f)

	assert.Equal(t, BirthPlatformWii, c.BirthPlatform)
	assert.Equal(t, GenderFemale, c.Gender)
	assert.Equal(t, uint8(9), c.BirthMonth)
	assert.Equal(t, uint8(21), c.BirthDay)
	assert.Equal(t, uint8(6), c.FavoriteColor)
	assert.True(t, c.FavoriteMii)
	assert.Equal(t, "Wii", c.NameString())
	assert.Equal(t, "Ed", c.CreatorNameString())
	assert.Equal(t, uint8(77), c.Height)
	assert.Equal(t, uint8(12), c.Build)
	assert.Equal(t, [16]byte{0x80, 0x11, 0x22, 0x33, 0xE0, 0x44, 0x55, 0x66}, c.CreatorID)

	p := c.Parts
	assert.Equal(t, uint8(7), p.FaceType)
	assert.Equal(t, Color(5), p.FacelineColor)
	assert.False(t, p.FacelineColor.IsCommon())
	assert.Equal(t, uint8(5), p.FaceLine, "face texture 4 is a wrinkle")
	assert.Equal(t, uint8(0), p.FaceMakeup)
	assert.Equal(t, uint8(71), p.HairType)
	assert.Equal(t, Color(6), p.HairColor)
	assert.Equal(t, uint8(1), p.HairFlip)
	assert.Equal(t, uint8(23), p.EyebrowType)
	assert.Equal(t, uint8(11), p.EyebrowRotate)
	assert.Equal(t, Color(4), p.EyebrowColor)
	assert.Equal(t, uint8(8), p.EyebrowScale)
	assert.Equal(t, uint8(rflDefaultScaleY), p.EyebrowScaleY)
	assert.Equal(t, uint8(17), p.EyebrowPositionY)
	assert.Equal(t, uint8(12), p.EyebrowSpacingX)
	assert.Equal(t, uint8(47), p.EyeType)
	assert.Equal(t, uint8(7), p.EyeRotate)
	assert.Equal(t, uint8(18), p.EyePositionY)
	assert.Equal(t, Color(5), p.EyeColor)
	assert.Equal(t, uint8(7), p.EyeScale)
	assert.Equal(t, uint8(rflDefaultScaleY), p.EyeScaleY)
	assert.Equal(t, uint8(12), p.EyeSpacingX)
	assert.Equal(t, uint8(1), p.NoseType, "Wii nose 0 is Ver3 nose 1")
	assert.Equal(t, uint8(8), p.NoseScale)
	assert.Equal(t, uint8(18), p.NosePositionY)
	assert.Equal(t, uint8(23), p.MouthType)
	assert.Equal(t, Color(2), p.MouthColor)
	assert.Equal(t, uint8(rflDefaultScaleY), p.MouthScaleY)
	assert.Equal(t, uint8(18), p.MouthPositionY)
	assert.Equal(t, uint8(8), p.GlassType)
	assert.Equal(t, uint8(20), p.GlassPositionY)
	assert.Equal(t, uint8(3), p.MustacheType)
	assert.Equal(t, uint8(3), p.BeardType)
	assert.Equal(t, Color(7), p.BeardColor)
	assert.Equal(t, uint8(8), p.MustacheScale)
	assert.Equal(t, uint8(16), p.MustachePositionY)
	assert.Equal(t, uint8(1), p.MoleType)
	assert.Equal(t, uint8(8), p.MoleScale)
	assert.Equal(t, uint8(30), p.MolePositionY)
	assert.Equal(t, uint8(16), p.MolePositionX)

	assert.Equal(t, ReasonOK, Validate(c))
}

func TestNormalize_RFLIsBigEndian(t *testing.T) {
	wire := make([]byte, rflCharDataSize)
	wire[0] = 0x40 // gender bit in the high byte of the first word
	wire[2], wire[3] = 0x00, 'K'

	c, _, err := Normalize(wire, len(wire), false)
	require.NoError(t, err)
	assert.Equal(t, GenderFemale, c.Gender)
	assert.Equal(t, "K", c.NameString())
	// input untouched by the swap
	assert.Equal(t, byte(0x40), wire[0])
}

func TestNormalize_RFLStoreData(t *testing.T) {
	b := rflStoreFixture()
	c, f, err := Normalize(b, len(b), true)
	require.NoError(t, err)
	assert.Equal(t, FormatRFLStoreData, f)
	assert.Equal(t, "Wii", c.NameString())
}

func TestSwapRFLIsInvolution(t *testing.T) {
	b := rflFields()
	assert.Equal(t, b, swapRFL(swapRFL(b)))
}
