package mii

const (
	nxCharInfoSize  = 88
	nxCoreDataSize  = 48
	nxStoreDataSize = 68
)

// nxCharInfo is the unpacked NX record. Studio data and NX core data are
// both expanded into it before conversion to CharInfo.
type nxCharInfo struct {
	createID    [16]byte
	nickname    [11]uint16
	fontRegion  uint8
	favColor    uint8
	gender      uint8
	height      uint8
	build       uint8
	special     uint8
	regionMove  uint8
	facelineTyp uint8
	facelineCol uint8
	wrinkle     uint8
	makeup      uint8
	hairType    uint8
	hairColor   uint8
	hairFlip    uint8
	eyeType     uint8
	eyeColor    uint8
	eyeScale    uint8
	eyeAspect   uint8
	eyeRotate   uint8
	eyeX        uint8
	eyeY        uint8
	browType    uint8
	browColor   uint8
	browScale   uint8
	browAspect  uint8
	browRotate  uint8
	browX       uint8
	browY       uint8
	noseType    uint8
	noseScale   uint8
	noseY       uint8
	mouthType   uint8
	mouthColor  uint8
	mouthScale  uint8
	mouthAspect uint8
	mouthY      uint8
	beardColor  uint8
	beardType   uint8
	mustType    uint8
	mustScale   uint8
	mustY       uint8
	glassType   uint8
	glassColor  uint8
	glassScale  uint8
	glassY      uint8
	moleType    uint8
	moleScale   uint8
	moleX       uint8
	moleY       uint8
}

// parseNXCharInfo reads the 88-byte byte-aligned NX layout.
func parseNXCharInfo(b []byte) nxCharInfo {
	var n nxCharInfo
	copy(n.createID[:], b[0:16])
	readUTF16LE(n.nickname[:], b[16:38])
	f := b[38:]
	n.fontRegion, n.favColor, n.gender, n.height, n.build, n.special, n.regionMove = f[0], f[1], f[2], f[3], f[4], f[5], f[6]
	n.facelineTyp, n.facelineCol, n.wrinkle, n.makeup = f[7], f[8], f[9], f[10]
	n.hairType, n.hairColor, n.hairFlip = f[11], f[12], f[13]
	n.eyeType, n.eyeColor, n.eyeScale, n.eyeAspect, n.eyeRotate, n.eyeX, n.eyeY = f[14], f[15], f[16], f[17], f[18], f[19], f[20]
	n.browType, n.browColor, n.browScale, n.browAspect, n.browRotate, n.browX, n.browY = f[21], f[22], f[23], f[24], f[25], f[26], f[27]
	n.noseType, n.noseScale, n.noseY = f[28], f[29], f[30]
	n.mouthType, n.mouthColor, n.mouthScale, n.mouthAspect, n.mouthY = f[31], f[32], f[33], f[34], f[35]
	n.beardColor, n.beardType = f[36], f[37]
	n.mustType, n.mustScale, n.mustY = f[38], f[39], f[40]
	n.glassType, n.glassColor, n.glassScale, n.glassY = f[41], f[42], f[43], f[44]
	n.moleType, n.moleScale, n.moleX, n.moleY = f[45], f[46], f[47], f[48]
	return n
}

// Core data bit layout. Fields sharing a byte fill it from the least
// significant bit up, in declaration order.
var (
	coreHairType      = bitField{off: 0, size: 1, shift: 0, width: 8}
	coreHeight        = bitField{off: 1, size: 1, shift: 0, width: 7}
	coreMoleType      = bitField{off: 1, size: 1, shift: 7, width: 1}
	coreBuild         = bitField{off: 2, size: 1, shift: 0, width: 7}
	coreHairFlip      = bitField{off: 2, size: 1, shift: 7, width: 1}
	coreHairColor     = bitField{off: 3, size: 1, shift: 0, width: 7}
	coreSpecial       = bitField{off: 3, size: 1, shift: 7, width: 1}
	coreEyeColor      = bitField{off: 4, size: 1, shift: 0, width: 7}
	coreGender        = bitField{off: 4, size: 1, shift: 7, width: 1}
	coreEyebrowColor  = bitField{off: 5, size: 1, shift: 0, width: 7}
	coreMouthColor    = bitField{off: 6, size: 1, shift: 0, width: 7}
	coreBeardColor    = bitField{off: 7, size: 1, shift: 0, width: 7}
	coreGlassColor    = bitField{off: 8, size: 1, shift: 0, width: 7}
	coreEyeType       = bitField{off: 9, size: 1, shift: 0, width: 6}
	coreRegionMove    = bitField{off: 9, size: 1, shift: 6, width: 2}
	coreMouthType     = bitField{off: 10, size: 1, shift: 0, width: 6}
	coreFontRegion    = bitField{off: 10, size: 1, shift: 6, width: 2}
	coreEyeY          = bitField{off: 11, size: 1, shift: 0, width: 5}
	coreGlassScale    = bitField{off: 11, size: 1, shift: 5, width: 3}
	coreEyebrowType   = bitField{off: 12, size: 1, shift: 0, width: 5}
	coreMustacheType  = bitField{off: 12, size: 1, shift: 5, width: 3}
	coreNoseType      = bitField{off: 13, size: 1, shift: 0, width: 5}
	coreBeardType     = bitField{off: 13, size: 1, shift: 5, width: 3}
	coreNoseY         = bitField{off: 14, size: 1, shift: 0, width: 5}
	coreMouthAspect   = bitField{off: 14, size: 1, shift: 5, width: 3}
	coreMouthY        = bitField{off: 15, size: 1, shift: 0, width: 5}
	coreEyebrowAspect = bitField{off: 15, size: 1, shift: 5, width: 3}
	coreMustacheY     = bitField{off: 16, size: 1, shift: 0, width: 5}
	coreEyeRotate     = bitField{off: 16, size: 1, shift: 5, width: 3}
	coreGlassY        = bitField{off: 17, size: 1, shift: 0, width: 5}
	coreEyeAspect     = bitField{off: 17, size: 1, shift: 5, width: 3}
	coreMoleX         = bitField{off: 18, size: 1, shift: 0, width: 5}
	coreEyeScale      = bitField{off: 18, size: 1, shift: 5, width: 3}
	coreMoleY         = bitField{off: 19, size: 1, shift: 0, width: 5}
	coreGlassType     = bitField{off: 20, size: 1, shift: 0, width: 5}
	coreFavoriteColor = bitField{off: 21, size: 1, shift: 0, width: 4}
	coreFacelineType  = bitField{off: 21, size: 1, shift: 4, width: 4}
	coreFacelineColor = bitField{off: 22, size: 1, shift: 0, width: 4}
	coreWrinkle       = bitField{off: 22, size: 1, shift: 4, width: 4}
	coreMakeup        = bitField{off: 23, size: 1, shift: 0, width: 4}
	coreEyeX          = bitField{off: 23, size: 1, shift: 4, width: 4}
	coreEyebrowScale  = bitField{off: 24, size: 1, shift: 0, width: 4}
	coreEyebrowRotate = bitField{off: 24, size: 1, shift: 4, width: 4}
	coreEyebrowX      = bitField{off: 25, size: 1, shift: 0, width: 4}
	coreEyebrowY      = bitField{off: 25, size: 1, shift: 4, width: 4}
	coreNoseScale     = bitField{off: 26, size: 1, shift: 0, width: 4}
	coreMouthScale    = bitField{off: 26, size: 1, shift: 4, width: 4}
	coreMustacheScale = bitField{off: 27, size: 1, shift: 0, width: 4}
	coreMoleScale     = bitField{off: 27, size: 1, shift: 4, width: 4}
)

// coreEyebrowYBias is added to the stored eyebrow position; core data keeps
// it relative to the lowest legal value.
const coreEyebrowYBias = 3

// parseNXCoreData expands the bit-packed 48-byte core data.
func parseNXCoreData(b []byte) nxCharInfo {
	var n nxCharInfo
	n.hairType = coreHairType.get(b)
	n.height = coreHeight.get(b)
	n.moleType = coreMoleType.get(b)
	n.build = coreBuild.get(b)
	n.hairFlip = coreHairFlip.get(b)
	n.hairColor = coreHairColor.get(b)
	n.special = coreSpecial.get(b)
	n.eyeColor = coreEyeColor.get(b)
	n.gender = coreGender.get(b)
	n.browColor = coreEyebrowColor.get(b)
	n.mouthColor = coreMouthColor.get(b)
	n.beardColor = coreBeardColor.get(b)
	n.glassColor = coreGlassColor.get(b)
	n.eyeType = coreEyeType.get(b)
	n.regionMove = coreRegionMove.get(b)
	n.mouthType = coreMouthType.get(b)
	n.fontRegion = coreFontRegion.get(b)
	n.eyeY = coreEyeY.get(b)
	n.glassScale = coreGlassScale.get(b)
	n.browType = coreEyebrowType.get(b)
	n.mustType = coreMustacheType.get(b)
	n.noseType = coreNoseType.get(b)
	n.beardType = coreBeardType.get(b)
	n.noseY = coreNoseY.get(b)
	n.mouthAspect = coreMouthAspect.get(b)
	n.mouthY = coreMouthY.get(b)
	n.browAspect = coreEyebrowAspect.get(b)
	n.mustY = coreMustacheY.get(b)
	n.eyeRotate = coreEyeRotate.get(b)
	n.glassY = coreGlassY.get(b)
	n.eyeAspect = coreEyeAspect.get(b)
	n.moleX = coreMoleX.get(b)
	n.eyeScale = coreEyeScale.get(b)
	n.moleY = coreMoleY.get(b)
	n.glassType = coreGlassType.get(b)
	n.favColor = coreFavoriteColor.get(b)
	n.facelineTyp = coreFacelineType.get(b)
	n.facelineCol = coreFacelineColor.get(b)
	n.wrinkle = coreWrinkle.get(b)
	n.makeup = coreMakeup.get(b)
	n.eyeX = coreEyeX.get(b)
	n.browScale = coreEyebrowScale.get(b)
	n.browRotate = coreEyebrowRotate.get(b)
	n.browX = coreEyebrowX.get(b)
	n.browY = coreEyebrowY.get(b) + coreEyebrowYBias
	n.noseScale = coreNoseScale.get(b)
	n.mouthScale = coreMouthScale.get(b)
	n.mustScale = coreMustacheScale.get(b)
	n.moleScale = coreMoleScale.get(b)
	readUTF16LE(n.nickname[:10], b[28:48])
	return n
}

// nxToVer3GlassType folds the NX glass shapes onto the older set.
var nxToVer3GlassType = [20]uint8{0, 1, 2, 3, 4, 5, 6, 7, 8, 1, 2, 1, 3, 7, 7, 6, 7, 8, 7, 7}

func (n *nxCharInfo) toCharInfo() *CharInfo {
	c := &CharInfo{}
	p := &c.Parts
	p.FaceType = n.facelineTyp
	p.FacelineColor = CommonColor(n.facelineCol)
	p.FaceLine = n.wrinkle
	p.FaceMakeup = n.makeup
	p.HairType = n.hairType
	p.HairColor = CommonColor(n.hairColor)
	p.HairFlip = n.hairFlip
	p.EyeType = n.eyeType
	p.EyeColor = CommonColor(n.eyeColor)
	p.EyeScale = n.eyeScale
	p.EyeScaleY = n.eyeAspect
	p.EyeRotate = n.eyeRotate
	p.EyeSpacingX = n.eyeX
	p.EyePositionY = n.eyeY
	p.EyebrowType = n.browType
	p.EyebrowColor = CommonColor(n.browColor)
	p.EyebrowScale = n.browScale
	p.EyebrowScaleY = n.browAspect
	p.EyebrowRotate = n.browRotate
	p.EyebrowSpacingX = n.browX
	p.EyebrowPositionY = n.browY
	p.NoseType = n.noseType
	p.NoseScale = n.noseScale
	p.NosePositionY = n.noseY
	p.MouthType = n.mouthType
	p.MouthColor = CommonColor(n.mouthColor)
	p.MouthScale = n.mouthScale
	p.MouthScaleY = n.mouthAspect
	p.MouthPositionY = n.mouthY
	p.MustacheType = n.mustType
	p.BeardType = n.beardType
	p.BeardColor = CommonColor(n.beardColor)
	p.MustacheScale = n.mustScale
	p.MustachePositionY = n.mustY
	if int(n.glassType) < len(nxToVer3GlassType) {
		p.GlassType = nxToVer3GlassType[n.glassType]
	} else {
		// out of the table; left for the validator to reject
		p.GlassType = n.glassType
	}
	p.GlassColor = CommonColor(n.glassColor)
	p.GlassScale = n.glassScale
	p.GlassPositionY = n.glassY
	p.MoleType = n.moleType
	p.MoleScale = n.moleScale
	p.MolePositionX = n.moleX
	p.MolePositionY = n.moleY

	c.Height = n.height
	c.Build = n.build
	c.Gender = Gender(n.gender)
	c.FavoriteColor = n.favColor
	c.FavoriteMii = n.special != 0
	c.RegionMove = n.regionMove
	c.FontRegion = n.fontRegion
	copy(c.Name[:10], n.nickname[:10])
	c.CreatorID = n.createID
	return c
}
