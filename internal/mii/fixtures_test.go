package mii

import "encoding/binary"

// set is the inverse of get, used to build fixtures.
func (f bitField) set(b []byte, v uint8) {
	mask := uint32(1<<f.width-1) << f.shift
	var w uint32
	switch f.size {
	case 1:
		w = uint32(b[f.off])
	case 2:
		w = uint32(binary.LittleEndian.Uint16(b[f.off:]))
	case 4:
		w = binary.LittleEndian.Uint32(b[f.off:])
	}
	w = w&^mask | (uint32(v)<<f.shift)&mask
	switch f.size {
	case 1:
		b[f.off] = byte(w)
	case 2:
		binary.LittleEndian.PutUint16(b[f.off:], uint16(w))
	case 4:
		binary.LittleEndian.PutUint32(b[f.off:], w)
	}
}

func putUTF16LE(b []byte, s string) {
	for i, r := range s {
		binary.LittleEndian.PutUint16(b[2*i:], uint16(r))
	}
}

func name(s string) [11]uint16 {
	var n [11]uint16
	for i, r := range s {
		n[i] = uint16(r)
	}
	return n
}

// validCharInfo returns a record that passes Validate.
func validCharInfo() *CharInfo {
	c := &CharInfo{
		Height:        64,
		Build:         64,
		Gender:        GenderFemale,
		BirthMonth:    4,
		BirthDay:      12,
		FavoriteColor: 3,
		Name:          name("Ann"),
	}
	c.Parts.EyebrowPositionY = 10
	c.Parts.HairColor = CommonColor(40)
	return c
}

// ver3Fixture builds a 96-byte Ver3 store data record with a sealed CRC.
func ver3Fixture() []byte {
	b := make([]byte, ver3StoreDataSize)
	v3BirthPlatform.set(b, uint8(BirthPlatformWiiU))
	v3FontRegion.set(b, 1)
	v3RegionMove.set(b, 2)
	copy(b[v3CreateIDOff:], []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	v3Gender.set(b, 1)
	v3BirthMonth.set(b, 11)
	v3BirthDay.set(b, 30)
	v3FavoriteColor.set(b, 7)
	v3Favorite.set(b, 1)
	putUTF16LE(b[v3NameOff:], "Mii")
	v3Height.set(b, 100)
	v3Build.set(b, 20)
	v3FaceType.set(b, 5)
	v3FacelineColor.set(b, 2)
	v3HairType.set(b, 131)
	v3HairColor.set(b, 7)
	v3HairFlip.set(b, 1)
	v3EyeType.set(b, 59)
	v3EyeRotate.set(b, 4)
	v3EyePositionY.set(b, 18)
	v3EyebrowPositionY.set(b, 10)
	v3EyebrowRotate.set(b, 6)
	v3NoseType.set(b, 17)
	v3MouthType.set(b, 35)
	v3MouthPositionY.set(b, 13)
	v3MustacheType.set(b, 5)
	v3MustachePositionY.set(b, 16)
	v3GlassType.set(b, 8)
	v3GlassPositionY.set(b, 20)
	v3MoleType.set(b, 1)
	v3MolePositionY.set(b, 30)
	putUTF16LE(b[v3CreatorNameOff:], "Bob")
	SealCRC16(b)
	return b
}
