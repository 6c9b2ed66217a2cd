package mii

import "fmt"

const (
	studioRawSize     = 46
	studioEncodedSize = studioRawSize + 1
)

// DecodeStudio reverses the studio URL obfuscation. The first byte is a
// seed; every following byte was produced as (plain+7) XOR previous
// encoded byte. The seed is not part of the output.
func DecodeStudio(encoded []byte) ([]byte, error) {
	if len(encoded) != studioEncodedSize {
		return nil, fmt.Errorf("studio data: expected %d bytes, got %d", studioEncodedSize, len(encoded))
	}
	out := make([]byte, len(encoded)-1)
	for i := 1; i < len(encoded); i++ {
		out[i-1] = (encoded[i] ^ encoded[i-1]) - 7
	}
	return out, nil
}

// EncodeStudio applies the studio URL obfuscation with the given seed.
func EncodeStudio(seed byte, raw []byte) ([]byte, error) {
	if len(raw) != studioRawSize {
		return nil, fmt.Errorf("studio data: expected %d bytes, got %d", studioRawSize, len(raw))
	}
	out := make([]byte, len(raw)+1)
	out[0] = seed
	for i, b := range raw {
		out[i+1] = (b + 7) ^ out[i]
	}
	return out, nil
}

// parseStudioRaw reads the 46 studio fields, which are stored in
// alphabetical order of their names.
func parseStudioRaw(b []byte) nxCharInfo {
	var n nxCharInfo
	n.beardColor, n.beardType, n.build = b[0], b[1], b[2]
	n.eyeAspect, n.eyeColor, n.eyeRotate, n.eyeScale, n.eyeType, n.eyeX, n.eyeY = b[3], b[4], b[5], b[6], b[7], b[8], b[9]
	n.browAspect, n.browColor, n.browRotate, n.browScale, n.browType, n.browX, n.browY = b[10], b[11], b[12], b[13], b[14], b[15], b[16]
	n.facelineCol, n.makeup, n.facelineTyp, n.wrinkle = b[17], b[18], b[19], b[20]
	n.favColor, n.gender = b[21], b[22]
	n.glassColor, n.glassScale, n.glassType, n.glassY = b[23], b[24], b[25], b[26]
	n.hairColor, n.hairFlip, n.hairType, n.height = b[27], b[28], b[29], b[30]
	n.moleScale, n.moleType, n.moleX, n.moleY = b[31], b[32], b[33], b[34]
	n.mouthAspect, n.mouthColor, n.mouthScale, n.mouthType, n.mouthY = b[35], b[36], b[37], b[38], b[39]
	n.mustScale, n.mustType, n.mustY = b[40], b[41], b[42]
	n.noseScale, n.noseType, n.noseY = b[43], b[44], b[45]
	return n
}
