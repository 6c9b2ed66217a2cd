package mii

// Reason names the first field that failed structural validation.
type Reason int

const (
	ReasonOK Reason = iota
	ReasonFaceType
	ReasonFacelineColor
	ReasonFaceLine
	ReasonFaceMakeup
	ReasonHairType
	ReasonHairColor
	ReasonHairFlip
	ReasonEyeType
	ReasonEyeColor
	ReasonEyeScale
	ReasonEyeScaleY
	ReasonEyeRotate
	ReasonEyeSpacingX
	ReasonEyePositionY
	ReasonEyebrowType
	ReasonEyebrowColor
	ReasonEyebrowScale
	ReasonEyebrowScaleY
	ReasonEyebrowRotate
	ReasonEyebrowSpacingX
	ReasonEyebrowPositionY
	ReasonNoseType
	ReasonNoseScale
	ReasonNosePositionY
	ReasonMouthType
	ReasonMouthColor
	ReasonMouthScale
	ReasonMouthScaleY
	ReasonMouthPositionY
	ReasonMustacheType
	ReasonBeardType
	ReasonBeardColor
	ReasonMustacheScale
	ReasonMustachePositionY
	ReasonGlassType
	ReasonGlassColor
	ReasonGlassScale
	ReasonGlassPositionY
	ReasonMoleType
	ReasonMoleScale
	ReasonMolePositionX
	ReasonMolePositionY
	ReasonHeight
	ReasonBuild
	ReasonGender
	ReasonBirthMonth
	ReasonBirthDay
	ReasonFavoriteColor
	ReasonRegionMove
	ReasonFontRegion
	ReasonBirthPlatform
	ReasonName
)

var reasonNames = [...]string{
	ReasonOK:                "OK",
	ReasonFaceType:          "FACE_TYPE",
	ReasonFacelineColor:     "FACELINE_COLOR",
	ReasonFaceLine:          "FACE_LINE",
	ReasonFaceMakeup:        "FACE_MAKEUP",
	ReasonHairType:          "HAIR_TYPE",
	ReasonHairColor:         "HAIR_COLOR",
	ReasonHairFlip:          "HAIR_FLIP",
	ReasonEyeType:           "EYE_TYPE",
	ReasonEyeColor:          "EYE_COLOR",
	ReasonEyeScale:          "EYE_SCALE",
	ReasonEyeScaleY:         "EYE_SCALE_Y",
	ReasonEyeRotate:         "EYE_ROTATE",
	ReasonEyeSpacingX:       "EYE_SPACING_X",
	ReasonEyePositionY:      "EYE_POSITION_Y",
	ReasonEyebrowType:       "EYEBROW_TYPE",
	ReasonEyebrowColor:      "EYEBROW_COLOR",
	ReasonEyebrowScale:      "EYEBROW_SCALE",
	ReasonEyebrowScaleY:     "EYEBROW_SCALE_Y",
	ReasonEyebrowRotate:     "EYEBROW_ROTATE",
	ReasonEyebrowSpacingX:   "EYEBROW_SPACING_X",
	ReasonEyebrowPositionY:  "EYEBROW_POSITION_Y",
	ReasonNoseType:          "NOSE_TYPE",
	ReasonNoseScale:         "NOSE_SCALE",
	ReasonNosePositionY:     "NOSE_POSITION_Y",
	ReasonMouthType:         "MOUTH_TYPE",
	ReasonMouthColor:        "MOUTH_COLOR",
	ReasonMouthScale:        "MOUTH_SCALE",
	ReasonMouthScaleY:       "MOUTH_SCALE_Y",
	ReasonMouthPositionY:    "MOUTH_POSITION_Y",
	ReasonMustacheType:      "MUSTACHE_TYPE",
	ReasonBeardType:         "BEARD_TYPE",
	ReasonBeardColor:        "BEARD_COLOR",
	ReasonMustacheScale:     "MUSTACHE_SCALE",
	ReasonMustachePositionY: "MUSTACHE_POSITION_Y",
	ReasonGlassType:         "GLASS_TYPE",
	ReasonGlassColor:        "GLASS_COLOR",
	ReasonGlassScale:        "GLASS_SCALE",
	ReasonGlassPositionY:    "GLASS_POSITION_Y",
	ReasonMoleType:          "MOLE_TYPE",
	ReasonMoleScale:         "MOLE_SCALE",
	ReasonMolePositionX:     "MOLE_POSITION_X",
	ReasonMolePositionY:     "MOLE_POSITION_Y",
	ReasonHeight:            "HEIGHT",
	ReasonBuild:             "BUILD",
	ReasonGender:            "GENDER",
	ReasonBirthMonth:        "BIRTH_MONTH",
	ReasonBirthDay:          "BIRTH_DAY",
	ReasonFavoriteColor:     "FAVORITE_COLOR",
	ReasonRegionMove:        "REGION_MOVE",
	ReasonFontRegion:        "FONT_REGION",
	ReasonBirthPlatform:     "BIRTH_PLATFORM",
	ReasonName:              "NAME",
}

func (r Reason) String() string {
	if r < 0 || int(r) >= len(reasonNames) {
		return "UNKNOWN"
	}
	return reasonNames[r]
}

// VerifyError carries the failing Reason. It unwraps to ErrStructuralInvalid.
type VerifyError struct {
	Reason Reason
}

func (e *VerifyError) Error() string {
	return "character data verification failed: " + e.Reason.String()
}

func (e *VerifyError) Unwrap() error { return ErrStructuralInvalid }

// Limits on the value domain of each field. Colors have two limits: one
// for the legacy palette and one for the common color table.
const (
	maxFaceType       = 12
	maxFacelineColor  = 6
	maxCommonFaceline = 10
	maxFaceLine       = 12
	maxFaceMakeup     = 12
	maxHairType       = 132
	maxHairColor      = 8
	maxHairFlip       = 2
	maxEyeType        = 60
	maxEyeColor       = 6
	maxEyeScale       = 8
	maxEyeScaleY      = 7
	maxEyeRotate      = 8
	maxEyeSpacingX    = 13
	maxEyePositionY   = 19
	maxEyebrowType    = 25
	maxEyebrowColor   = 8
	maxEyebrowScale   = 9
	maxEyebrowScaleY  = 7
	maxEyebrowRotate  = 12
	maxEyebrowSpacing = 13
	minEyebrowY       = 3
	maxEyebrowY       = 19
	maxNoseType       = 18
	maxNoseScale      = 9
	maxNosePositionY  = 19
	maxMouthType      = 36
	maxMouthColor     = 5
	maxMouthScale     = 9
	maxMouthScaleY    = 7
	maxMouthPositionY = 19
	maxMustacheType   = 6
	maxBeardType      = 6
	maxBeardColor     = 8
	maxMustacheScale  = 9
	maxMustacheY      = 17
	maxGlassType      = 9
	maxGlassColor     = 6
	maxGlassScale     = 8
	maxGlassPositionY = 21
	maxMoleType       = 2
	maxMoleScale      = 9
	maxMolePositionX  = 17
	maxMolePositionY  = 31
	maxBodyParam      = 128
	maxBirthMonth     = 12
	maxBirthDay       = 31
	maxFavoriteColor  = FavoriteColorCount
	maxRegion         = 4
	maxBirthPlatform  = 8
	maxCommonColor    = 100
)

func colorOK(c Color, legacy, common uint8) bool {
	if c.IsCommon() {
		return uint32(c&^CommonColorFlag) < uint32(common)
	}
	return uint32(c) < uint32(legacy)
}

// Validate checks every field of c against its legal domain and reports the
// first one out of range, or ReasonOK.
func Validate(c *CharInfo) Reason {
	p := &c.Parts
	checks := []struct {
		ok     bool
		reason Reason
	}{
		{p.FaceType < maxFaceType, ReasonFaceType},
		{colorOK(p.FacelineColor, maxFacelineColor, maxCommonFaceline), ReasonFacelineColor},
		{p.FaceLine < maxFaceLine, ReasonFaceLine},
		{p.FaceMakeup < maxFaceMakeup, ReasonFaceMakeup},
		{p.HairType < maxHairType, ReasonHairType},
		{colorOK(p.HairColor, maxHairColor, maxCommonColor), ReasonHairColor},
		{p.HairFlip < maxHairFlip, ReasonHairFlip},
		{p.EyeType < maxEyeType, ReasonEyeType},
		{colorOK(p.EyeColor, maxEyeColor, maxCommonColor), ReasonEyeColor},
		{p.EyeScale < maxEyeScale, ReasonEyeScale},
		{p.EyeScaleY < maxEyeScaleY, ReasonEyeScaleY},
		{p.EyeRotate < maxEyeRotate, ReasonEyeRotate},
		{p.EyeSpacingX < maxEyeSpacingX, ReasonEyeSpacingX},
		{p.EyePositionY < maxEyePositionY, ReasonEyePositionY},
		{p.EyebrowType < maxEyebrowType, ReasonEyebrowType},
		{colorOK(p.EyebrowColor, maxEyebrowColor, maxCommonColor), ReasonEyebrowColor},
		{p.EyebrowScale < maxEyebrowScale, ReasonEyebrowScale},
		{p.EyebrowScaleY < maxEyebrowScaleY, ReasonEyebrowScaleY},
		{p.EyebrowRotate < maxEyebrowRotate, ReasonEyebrowRotate},
		{p.EyebrowSpacingX < maxEyebrowSpacing, ReasonEyebrowSpacingX},
		{p.EyebrowPositionY >= minEyebrowY && p.EyebrowPositionY < maxEyebrowY, ReasonEyebrowPositionY},
		{p.NoseType < maxNoseType, ReasonNoseType},
		{p.NoseScale < maxNoseScale, ReasonNoseScale},
		{p.NosePositionY < maxNosePositionY, ReasonNosePositionY},
		{p.MouthType < maxMouthType, ReasonMouthType},
		{colorOK(p.MouthColor, maxMouthColor, maxCommonColor), ReasonMouthColor},
		{p.MouthScale < maxMouthScale, ReasonMouthScale},
		{p.MouthScaleY < maxMouthScaleY, ReasonMouthScaleY},
		{p.MouthPositionY < maxMouthPositionY, ReasonMouthPositionY},
		{p.MustacheType < maxMustacheType, ReasonMustacheType},
		{p.BeardType < maxBeardType, ReasonBeardType},
		{colorOK(p.BeardColor, maxBeardColor, maxCommonColor), ReasonBeardColor},
		{p.MustacheScale < maxMustacheScale, ReasonMustacheScale},
		{p.MustachePositionY < maxMustacheY, ReasonMustachePositionY},
		{p.GlassType < maxGlassType, ReasonGlassType},
		{colorOK(p.GlassColor, maxGlassColor, maxCommonColor), ReasonGlassColor},
		{p.GlassScale < maxGlassScale, ReasonGlassScale},
		{p.GlassPositionY < maxGlassPositionY, ReasonGlassPositionY},
		{p.MoleType < maxMoleType, ReasonMoleType},
		{p.MoleScale < maxMoleScale, ReasonMoleScale},
		{p.MolePositionX < maxMolePositionX, ReasonMolePositionX},
		{p.MolePositionY < maxMolePositionY, ReasonMolePositionY},
		{c.Height < maxBodyParam, ReasonHeight},
		{c.Build < maxBodyParam, ReasonBuild},
		{c.Gender < GenderMax, ReasonGender},
		{c.BirthMonth <= maxBirthMonth, ReasonBirthMonth},
		{c.BirthDay <= maxBirthDay, ReasonBirthDay},
		{c.FavoriteColor < maxFavoriteColor, ReasonFavoriteColor},
		{c.RegionMove < maxRegion, ReasonRegionMove},
		{c.FontRegion < maxRegion, ReasonFontRegion},
		{c.BirthPlatform < maxBirthPlatform, ReasonBirthPlatform},
		{c.Name[len(c.Name)-1] == 0, ReasonName},
	}
	for _, ch := range checks {
		if !ch.ok {
			return ch.reason
		}
	}
	return ReasonOK
}

// Verify wraps Validate into an error.
func Verify(c *CharInfo) error {
	if r := Validate(c); r != ReasonOK {
		return &VerifyError{Reason: r}
	}
	return nil
}
