// Package mii holds the canonical avatar record and the decoders that turn
// every supported wire encoding into it.
package mii

import (
	"unicode/utf16"

	"github.com/google/uuid"
)

// Color is a palette index. Colors taken from the newer (NX) palette carry
// CommonColorFlag so the renderer looks them up in the common color table.
type Color uint32

const CommonColorFlag Color = 1 << 31

// FavoriteColorCount is the number of favorite colors.
const FavoriteColorCount = 12

// CommonColor marks idx as an index into the common color table.
func CommonColor(idx uint8) Color { return Color(idx) | CommonColorFlag }

func (c Color) IsCommon() bool { return c&CommonColorFlag != 0 }

// Index strips the common color flag.
func (c Color) Index() uint8 { return uint8(c &^ CommonColorFlag) }

type Gender uint8

const (
	GenderMale Gender = iota
	GenderFemale
	GenderMax
)

func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	default:
		return "unknown"
	}
}

type BirthPlatform uint8

const (
	BirthPlatformUnknown BirthPlatform = 0
	BirthPlatformWii     BirthPlatform = 1
	BirthPlatformNTR     BirthPlatform = 2
	BirthPlatformCTR     BirthPlatform = 3
	BirthPlatformWiiU    BirthPlatform = 4
)

// Parts describes the face: shapes, colors and placements.
type Parts struct {
	FaceType      uint8
	FacelineColor Color
	FaceLine      uint8
	FaceMakeup    uint8

	HairType  uint8
	HairColor Color
	HairFlip  uint8

	EyeType      uint8
	EyeColor     Color
	EyeScale     uint8
	EyeScaleY    uint8
	EyeRotate    uint8
	EyeSpacingX  uint8
	EyePositionY uint8

	EyebrowType      uint8
	EyebrowColor     Color
	EyebrowScale     uint8
	EyebrowScaleY    uint8
	EyebrowRotate    uint8
	EyebrowSpacingX  uint8
	EyebrowPositionY uint8

	NoseType      uint8
	NoseScale     uint8
	NosePositionY uint8

	MouthType      uint8
	MouthColor     Color
	MouthScale     uint8
	MouthScaleY    uint8
	MouthPositionY uint8

	MustacheType      uint8
	BeardType         uint8
	BeardColor        Color
	MustacheScale     uint8
	MustachePositionY uint8

	GlassType      uint8
	GlassColor     Color
	GlassScale     uint8
	GlassPositionY uint8

	MoleType      uint8
	MoleScale     uint8
	MolePositionX uint8
	MolePositionY uint8
}

// CharInfo is the format-independent description of one avatar. Every field
// is always populated; decoders zero-fill what their source lacks.
type CharInfo struct {
	Parts Parts

	Height uint8
	Build  uint8
	Gender Gender

	BirthMonth    uint8
	BirthDay      uint8
	FavoriteColor uint8
	FavoriteMii   bool
	RegionMove    uint8
	FontRegion    uint8
	BirthPlatform BirthPlatform

	// UTF-16 code units, the last slot is always a terminator.
	Name        [11]uint16
	CreatorName [11]uint16

	CreatorID [16]byte
}

// NameString decodes the nickname up to its terminator.
func (c *CharInfo) NameString() string {
	return utf16String(c.Name[:])
}

func (c *CharInfo) CreatorNameString() string {
	return utf16String(c.CreatorName[:])
}

// CreatorUUID formats the 128-bit creator identifier.
func (c *CharInfo) CreatorUUID() string {
	return uuid.UUID(c.CreatorID).String()
}

func utf16String(units []uint16) string {
	n := 0
	for n < len(units) && units[n] != 0 {
		n++
	}
	return string(utf16.Decode(units[:n]))
}
