package mii

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	cases := map[int]Format{
		88: FormatNXCharInfo,
		48: FormatNXCoreData,
		68: FormatNXStoreData,
		46: FormatStudioRaw,
		47: FormatStudioEncoded,
		74: FormatRFLCharData,
		76: FormatRFLStoreData,
		72: FormatVer3Core,
		92: FormatVer3Official,
		96: FormatVer3StoreData,
		0:  FormatUnknown,
		95: FormatUnknown,
	}
	for n, want := range cases {
		assert.Equal(t, want, DetectFormat(n), "length %d", n)
		if want != FormatUnknown {
			assert.Equal(t, n, want.Size())
		}
	}
}

func TestNormalize_UnknownLength(t *testing.T) {
	buf := make([]byte, 96)
	_, _, err := Normalize(buf, 50, true)
	require.ErrorIs(t, err, ErrFormatUnrecognized)

	// a known length larger than the buffer
	_, _, err = Normalize(buf[:40], 46, false)
	require.ErrorIs(t, err, ErrFormatUnrecognized)
}

func TestNormalize_Ver3StoreData(t *testing.T) {
	b := ver3Fixture()
	c, f, err := Normalize(b, len(b), true)
	require.NoError(t, err)
	assert.Equal(t, FormatVer3StoreData, f)

	want := &CharInfo{
		Height:        100,
		Build:         20,
		Gender:        GenderFemale,
		BirthMonth:    11,
		BirthDay:      30,
		FavoriteColor: 7,
		FavoriteMii:   true,
		RegionMove:    2,
		FontRegion:    1,
		BirthPlatform: BirthPlatformWiiU,
		Name:          name("Mii"),
		CreatorName:   name("Bob"),
		CreatorID:     [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
	}
	want.Parts = Parts{
		FaceType:          5,
		FacelineColor:     2,
		HairType:          131,
		HairColor:         7,
		HairFlip:          1,
		EyeType:           59,
		EyeRotate:         4,
		EyePositionY:      18,
		EyebrowPositionY:  10,
		EyebrowRotate:     6,
		NoseType:          17,
		MouthType:         35,
		MouthPositionY:    13,
		MustacheType:      5,
		MustachePositionY: 16,
		GlassType:         8,
		GlassPositionY:    20,
		MoleType:          1,
		MolePositionY:     30,
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("Ver3 decode mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Mii", c.NameString())
	assert.Equal(t, "Bob", c.CreatorNameString())
	assert.Equal(t, ReasonOK, Validate(c))
}

func TestNormalize_Ver3CoreSharesPrefix(t *testing.T) {
	b := ver3Fixture()
	full, _, err := Normalize(b, 96, false)
	require.NoError(t, err)

	core, f, err := Normalize(b, 72, false)
	require.NoError(t, err)
	assert.Equal(t, FormatVer3Core, f)
	// creator name lives past the core record
	assert.Equal(t, [11]uint16{}, core.CreatorName)
	core.CreatorName = full.CreatorName
	if diff := cmp.Diff(full, core); diff != "" {
		t.Errorf("core prefix mismatch (-full +core):\n%s", diff)
	}
}

func TestNormalize_ChecksumMutation(t *testing.T) {
	sealed := map[string][]byte{
		"ver3": ver3Fixture(),
		"rfl":  rflStoreFixture(),
	}
	for label, fixture := range sealed {
		t.Run(label, func(t *testing.T) {
			_, _, err := Normalize(fixture, len(fixture), true)
			require.NoError(t, err)

			for _, i := range []int{0, 1, len(fixture) / 2, len(fixture) - 3, len(fixture) - 1} {
				b := append([]byte(nil), fixture...)
				b[i] ^= 0x5A

				_, _, err := Normalize(b, len(b), true)
				assert.ErrorIs(t, err, ErrChecksumInvalid, "byte %d", i)

				_, _, err = Normalize(b, len(b), false)
				assert.NoError(t, err, "byte %d without verification", i)
			}
		})
	}
}

func TestNormalize_NXStoreDataSkipsChecksum(t *testing.T) {
	b := make([]byte, nxStoreDataSize)
	coreHeight.set(b, 90)
	coreEyebrowY.set(b, 2)
	for i := nxCoreDataSize; i < nxCoreDataSize+16; i++ {
		b[i] = byte(i)
	}
	// trailing checksums are garbage and must not matter
	b[64], b[65], b[66], b[67] = 0xDE, 0xAD, 0xBE, 0xEF

	c, f, err := Normalize(b, len(b), true)
	require.NoError(t, err)
	assert.Equal(t, FormatNXStoreData, f)
	assert.Equal(t, uint8(90), c.Height)
	assert.Equal(t, uint8(5), c.Parts.EyebrowPositionY)
	assert.Equal(t, byte(48), c.CreatorID[0])
	assert.Equal(t, byte(63), c.CreatorID[15])
}

func TestNormalize_NXCoreData(t *testing.T) {
	b := make([]byte, nxCoreDataSize)
	coreHairType.set(b, 120)
	coreHeight.set(b, 127)
	coreMoleType.set(b, 1)
	coreBuild.set(b, 33)
	coreHairFlip.set(b, 1)
	coreHairColor.set(b, 45)
	coreSpecial.set(b, 1)
	coreEyeColor.set(b, 12)
	coreGender.set(b, 1)
	coreGlassType.set(b, 13)
	coreEyebrowY.set(b, 7)
	coreFavoriteColor.set(b, 11)
	coreFacelineType.set(b, 9)
	putUTF16LE(b[28:], "core")

	c, f, err := Normalize(b, len(b), false)
	require.NoError(t, err)
	assert.Equal(t, FormatNXCoreData, f)

	assert.Equal(t, uint8(120), c.Parts.HairType)
	assert.Equal(t, uint8(127), c.Height)
	assert.Equal(t, uint8(1), c.Parts.MoleType)
	assert.Equal(t, uint8(33), c.Build)
	assert.Equal(t, uint8(1), c.Parts.HairFlip)
	assert.Equal(t, CommonColor(45), c.Parts.HairColor)
	assert.True(t, c.FavoriteMii)
	assert.Equal(t, CommonColor(12), c.Parts.EyeColor)
	assert.Equal(t, GenderFemale, c.Gender)
	assert.Equal(t, uint8(7), c.Parts.GlassType, "NX glass 13 folds onto 7")
	assert.Equal(t, uint8(10), c.Parts.EyebrowPositionY, "eyebrow Y is stored minus 3")
	assert.Equal(t, uint8(11), c.FavoriteColor)
	assert.Equal(t, uint8(9), c.Parts.FaceType)
	assert.Equal(t, "core", c.NameString())

	// every color carries the common flag, even when zero
	for _, col := range []Color{c.Parts.FacelineColor, c.Parts.EyebrowColor, c.Parts.MouthColor, c.Parts.BeardColor, c.Parts.GlassColor} {
		assert.True(t, col.IsCommon())
		assert.Equal(t, uint8(0), col.Index())
	}
}

func TestNormalize_NXCharInfo(t *testing.T) {
	b := make([]byte, nxCharInfoSize)
	for i := 0; i < 16; i++ {
		b[i] = 0xA0 + byte(i)
	}
	putUTF16LE(b[16:], "Char")
	f := b[38:]
	f[0], f[1], f[2], f[3], f[4], f[5], f[6] = 2, 5, 1, 70, 80, 0, 3 // font, fav, gender, height, build, special, region
	f[8] = 4                                                         // faceline color
	f[12] = 99                                                       // hair color
	f[21] = 24                                                       // eyebrow type
	f[27] = 18                                                       // eyebrow y
	f[41] = 19                                                       // glass type
	f[48] = 30                                                       // mole y

	c, format, err := Normalize(b, len(b), false)
	require.NoError(t, err)
	assert.Equal(t, FormatNXCharInfo, format)
	assert.Equal(t, "Char", c.NameString())
	assert.Equal(t, uint8(5), c.FavoriteColor)
	assert.Equal(t, GenderFemale, c.Gender)
	assert.Equal(t, uint8(70), c.Height)
	assert.Equal(t, uint8(80), c.Build)
	assert.False(t, c.FavoriteMii)
	assert.Equal(t, uint8(3), c.RegionMove)
	assert.Equal(t, CommonColor(4), c.Parts.FacelineColor)
	assert.Equal(t, CommonColor(99), c.Parts.HairColor)
	assert.Equal(t, uint8(24), c.Parts.EyebrowType)
	assert.Equal(t, uint8(18), c.Parts.EyebrowPositionY, "no bias outside core data")
	assert.Equal(t, uint8(7), c.Parts.GlassType)
	assert.Equal(t, uint8(30), c.Parts.MolePositionY)
	assert.Equal(t, "a0a1a2a3-a4a5-a6a7-a8a9-aaabacadaeaf", c.CreatorUUID())
	assert.Equal(t, ReasonOK, Validate(c))
}

func TestNormalize_Studio(t *testing.T) {
	raw := make([]byte, studioRawSize)
	raw[2] = 64   // build
	raw[4] = 8    // eye color
	raw[16] = 9   // eyebrow y
	raw[17] = 1   // faceline color
	raw[21] = 10  // favorite color
	raw[22] = 1   // gender
	raw[25] = 9   // glass type
	raw[27] = 8   // hair color
	raw[29] = 130 // hair type
	raw[30] = 120 // height
	raw[44] = 11  // nose type

	rc, f, err := Normalize(raw, len(raw), false)
	require.NoError(t, err)
	assert.Equal(t, FormatStudioRaw, f)

	enc, err := EncodeStudio(0x3F, raw)
	require.NoError(t, err)
	ec, f, err := Normalize(enc, len(enc), false)
	require.NoError(t, err)
	assert.Equal(t, FormatStudioEncoded, f)

	if diff := cmp.Diff(rc, ec); diff != "" {
		t.Errorf("encoded and raw studio differ (-raw +enc):\n%s", diff)
	}
	assert.Equal(t, uint8(64), ec.Build)
	assert.Equal(t, CommonColor(8), ec.Parts.EyeColor)
	assert.Equal(t, uint8(9), ec.Parts.EyebrowPositionY)
	assert.Equal(t, uint8(10), ec.FavoriteColor)
	assert.Equal(t, GenderFemale, ec.Gender)
	assert.Equal(t, uint8(1), ec.Parts.GlassType)
	assert.Equal(t, CommonColor(8), ec.Parts.HairColor)
	assert.Equal(t, uint8(130), ec.Parts.HairType)
	assert.Equal(t, uint8(120), ec.Height)
	assert.Equal(t, uint8(11), ec.Parts.NoseType)
}

func TestStudioRoundTrip(t *testing.T) {
	raw := make([]byte, studioRawSize)
	for seed := 0; seed < 256; seed += 17 {
		for i := range raw {
			raw[i] = byte(i*31 + seed)
		}
		enc, err := EncodeStudio(byte(seed), raw)
		require.NoError(t, err)
		assert.Equal(t, byte(seed), enc[0])

		dec, err := DecodeStudio(enc)
		require.NoError(t, err)
		assert.Equal(t, raw, dec)
	}
}

func TestDecodeStudio_KnownBytes(t *testing.T) {
	// seed 0x10, plain bytes 0x00 and 0xFF: 0x07^0x10 = 0x17, 0x06^0x17 = 0x11
	enc := make([]byte, studioEncodedSize)
	enc[0], enc[1], enc[2] = 0x10, 0x17, 0x11
	for i := 3; i < len(enc); i++ {
		enc[i] = enc[i-1] ^ 0x07
	}
	dec, err := DecodeStudio(enc)
	require.NoError(t, err)
	assert.Equal(t, byte(0x00), dec[0])
	assert.Equal(t, byte(0xFF), dec[1])
	assert.Equal(t, byte(0x00), dec[2])

	_, err = DecodeStudio(enc[:20])
	assert.Error(t, err)
}

func TestCRC16(t *testing.T) {
	// CRC-16/XMODEM check value
	assert.Equal(t, uint16(0x31C3), CRC16([]byte("123456789")))

	b := append([]byte("123456789"), 0, 0)
	SealCRC16(b)
	assert.Equal(t, []byte{0x31, 0xC3}, b[9:])
	assert.True(t, ValidCRC16(b))
	assert.False(t, ValidCRC16([]byte{1}))
}

func TestNormalizeErrorsWrap(t *testing.T) {
	b := ver3Fixture()
	b[0] ^= 1
	_, f, err := Normalize(b, len(b), true)
	require.Error(t, err)
	assert.Equal(t, FormatVer3StoreData, f)
	assert.True(t, errors.Is(err, ErrChecksumInvalid))
	assert.False(t, errors.Is(err, ErrFormatUnrecognized))
}
