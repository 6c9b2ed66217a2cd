package mii

const (
	ver3CoreSize      = 72
	ver3OfficialSize  = 92
	ver3StoreDataSize = 96
)

// Ver3 core data, little-endian words with fields packed from bit 0 up.
var (
	v3RegionMove    = bitField{off: 0x00, size: 4, shift: 10, width: 2}
	v3FontRegion    = bitField{off: 0x00, size: 4, shift: 12, width: 2}
	v3BirthPlatform = bitField{off: 0x00, size: 4, shift: 28, width: 3}

	v3Gender        = bitField{off: 0x18, size: 2, shift: 0, width: 1}
	v3BirthMonth    = bitField{off: 0x18, size: 2, shift: 1, width: 4}
	v3BirthDay      = bitField{off: 0x18, size: 2, shift: 5, width: 5}
	v3FavoriteColor = bitField{off: 0x18, size: 2, shift: 10, width: 4}
	v3Favorite      = bitField{off: 0x18, size: 2, shift: 14, width: 1}

	v3Height = bitField{off: 0x2E, size: 1, shift: 0, width: 8}
	v3Build  = bitField{off: 0x2F, size: 1, shift: 0, width: 8}

	v3FaceType      = bitField{off: 0x30, size: 2, shift: 1, width: 4}
	v3FacelineColor = bitField{off: 0x30, size: 2, shift: 5, width: 3}
	v3FaceLine      = bitField{off: 0x30, size: 2, shift: 8, width: 4}
	v3FaceMakeup    = bitField{off: 0x30, size: 2, shift: 12, width: 4}

	v3HairType  = bitField{off: 0x32, size: 2, shift: 0, width: 8}
	v3HairColor = bitField{off: 0x32, size: 2, shift: 8, width: 3}
	v3HairFlip  = bitField{off: 0x32, size: 2, shift: 11, width: 1}

	v3EyeType      = bitField{off: 0x34, size: 4, shift: 0, width: 6}
	v3EyeColor     = bitField{off: 0x34, size: 4, shift: 6, width: 3}
	v3EyeScale     = bitField{off: 0x34, size: 4, shift: 9, width: 4}
	v3EyeScaleY    = bitField{off: 0x34, size: 4, shift: 13, width: 3}
	v3EyeRotate    = bitField{off: 0x34, size: 4, shift: 16, width: 5}
	v3EyeSpacingX  = bitField{off: 0x34, size: 4, shift: 21, width: 4}
	v3EyePositionY = bitField{off: 0x34, size: 4, shift: 25, width: 5}

	v3EyebrowType      = bitField{off: 0x38, size: 4, shift: 0, width: 5}
	v3EyebrowColor     = bitField{off: 0x38, size: 4, shift: 5, width: 3}
	v3EyebrowScale     = bitField{off: 0x38, size: 4, shift: 8, width: 4}
	v3EyebrowScaleY    = bitField{off: 0x38, size: 4, shift: 12, width: 3}
	v3EyebrowRotate    = bitField{off: 0x38, size: 4, shift: 16, width: 4}
	v3EyebrowSpacingX  = bitField{off: 0x38, size: 4, shift: 21, width: 4}
	v3EyebrowPositionY = bitField{off: 0x38, size: 4, shift: 25, width: 5}

	v3NoseType      = bitField{off: 0x3C, size: 2, shift: 0, width: 5}
	v3NoseScale     = bitField{off: 0x3C, size: 2, shift: 5, width: 4}
	v3NosePositionY = bitField{off: 0x3C, size: 2, shift: 9, width: 5}

	v3MouthType      = bitField{off: 0x3E, size: 2, shift: 0, width: 6}
	v3MouthColor     = bitField{off: 0x3E, size: 2, shift: 6, width: 3}
	v3MouthScale     = bitField{off: 0x3E, size: 2, shift: 9, width: 4}
	v3MouthScaleY    = bitField{off: 0x3E, size: 2, shift: 13, width: 3}
	v3MouthPositionY = bitField{off: 0x40, size: 2, shift: 0, width: 5}
	v3MustacheType   = bitField{off: 0x40, size: 2, shift: 5, width: 3}

	v3BeardType         = bitField{off: 0x42, size: 2, shift: 0, width: 3}
	v3BeardColor        = bitField{off: 0x42, size: 2, shift: 3, width: 3}
	v3MustacheScale     = bitField{off: 0x42, size: 2, shift: 6, width: 4}
	v3MustachePositionY = bitField{off: 0x42, size: 2, shift: 10, width: 5}

	v3GlassType      = bitField{off: 0x44, size: 2, shift: 0, width: 4}
	v3GlassColor     = bitField{off: 0x44, size: 2, shift: 4, width: 3}
	v3GlassScale     = bitField{off: 0x44, size: 2, shift: 7, width: 4}
	v3GlassPositionY = bitField{off: 0x44, size: 2, shift: 11, width: 5}

	v3MoleType      = bitField{off: 0x46, size: 2, shift: 0, width: 1}
	v3MoleScale     = bitField{off: 0x46, size: 2, shift: 1, width: 4}
	v3MolePositionX = bitField{off: 0x46, size: 2, shift: 5, width: 5}
	v3MolePositionY = bitField{off: 0x46, size: 2, shift: 10, width: 5}
)

const (
	v3CreateIDOff    = 0x0C
	v3CreateIDSize   = 10
	v3NameOff        = 0x1A
	v3CreatorNameOff = 0x48
)

// decodeVer3 converts a Ver3 core record. Longer Ver3 layouts share the
// same prefix, so b may be 72, 92 or 96 bytes long.
func decodeVer3(b []byte) *CharInfo {
	c := &CharInfo{}
	p := &c.Parts

	c.RegionMove = v3RegionMove.get(b)
	c.FontRegion = v3FontRegion.get(b)
	c.BirthPlatform = BirthPlatform(v3BirthPlatform.get(b))
	copy(c.CreatorID[:v3CreateIDSize], b[v3CreateIDOff:v3CreateIDOff+v3CreateIDSize])

	c.Gender = Gender(v3Gender.get(b))
	c.BirthMonth = v3BirthMonth.get(b)
	c.BirthDay = v3BirthDay.get(b)
	c.FavoriteColor = v3FavoriteColor.get(b)
	c.FavoriteMii = v3Favorite.get(b) != 0
	readUTF16LE(c.Name[:10], b[v3NameOff:v3NameOff+20])
	c.Height = v3Height.get(b)
	c.Build = v3Build.get(b)

	p.FaceType = v3FaceType.get(b)
	p.FacelineColor = Color(v3FacelineColor.get(b))
	p.FaceLine = v3FaceLine.get(b)
	p.FaceMakeup = v3FaceMakeup.get(b)
	p.HairType = v3HairType.get(b)
	p.HairColor = Color(v3HairColor.get(b))
	p.HairFlip = v3HairFlip.get(b)
	p.EyeType = v3EyeType.get(b)
	p.EyeColor = Color(v3EyeColor.get(b))
	p.EyeScale = v3EyeScale.get(b)
	p.EyeScaleY = v3EyeScaleY.get(b)
	p.EyeRotate = v3EyeRotate.get(b)
	p.EyeSpacingX = v3EyeSpacingX.get(b)
	p.EyePositionY = v3EyePositionY.get(b)
	p.EyebrowType = v3EyebrowType.get(b)
	p.EyebrowColor = Color(v3EyebrowColor.get(b))
	p.EyebrowScale = v3EyebrowScale.get(b)
	p.EyebrowScaleY = v3EyebrowScaleY.get(b)
	p.EyebrowRotate = v3EyebrowRotate.get(b)
	p.EyebrowSpacingX = v3EyebrowSpacingX.get(b)
	p.EyebrowPositionY = v3EyebrowPositionY.get(b)
	p.NoseType = v3NoseType.get(b)
	p.NoseScale = v3NoseScale.get(b)
	p.NosePositionY = v3NosePositionY.get(b)
	p.MouthType = v3MouthType.get(b)
	p.MouthColor = Color(v3MouthColor.get(b))
	p.MouthScale = v3MouthScale.get(b)
	p.MouthScaleY = v3MouthScaleY.get(b)
	p.MouthPositionY = v3MouthPositionY.get(b)
	p.MustacheType = v3MustacheType.get(b)
	p.BeardType = v3BeardType.get(b)
	p.BeardColor = Color(v3BeardColor.get(b))
	p.MustacheScale = v3MustacheScale.get(b)
	p.MustachePositionY = v3MustachePositionY.get(b)
	p.GlassType = v3GlassType.get(b)
	p.GlassColor = Color(v3GlassColor.get(b))
	p.GlassScale = v3GlassScale.get(b)
	p.GlassPositionY = v3GlassPositionY.get(b)
	p.MoleType = v3MoleType.get(b)
	p.MoleScale = v3MoleScale.get(b)
	p.MolePositionX = v3MolePositionX.get(b)
	p.MolePositionY = v3MolePositionY.get(b)

	if len(b) >= v3CreatorNameOff+20 {
		readUTF16LE(c.CreatorName[:10], b[v3CreatorNameOff:v3CreatorNameOff+20])
	}
	return c
}
