package mii

import (
	"errors"
	"fmt"
)

var (
	ErrFormatUnrecognized = errors.New("format not recognized")
	ErrChecksumInvalid    = errors.New("checksum invalid")
	ErrStructuralInvalid  = errors.New("structural validation failed")
)

// Format identifies one wire encoding. The byte length of a payload is its
// only discriminant.
type Format int

const (
	FormatUnknown Format = iota
	FormatNXCharInfo
	FormatNXCoreData
	FormatNXStoreData
	FormatStudioRaw
	FormatStudioEncoded
	FormatRFLCharData
	FormatRFLStoreData
	FormatVer3Core
	FormatVer3Official
	FormatVer3StoreData
)

func (f Format) String() string {
	switch f {
	case FormatNXCharInfo:
		return "nx-charinfo"
	case FormatNXCoreData:
		return "nx-coredata"
	case FormatNXStoreData:
		return "nx-storedata"
	case FormatStudioRaw:
		return "studio-raw"
	case FormatStudioEncoded:
		return "studio-encoded"
	case FormatRFLCharData:
		return "rfl-chardata"
	case FormatRFLStoreData:
		return "rfl-storedata"
	case FormatVer3Core:
		return "ver3-core"
	case FormatVer3Official:
		return "ver3-official"
	case FormatVer3StoreData:
		return "ver3-storedata"
	default:
		return "unknown"
	}
}

var formatByLength = map[int]Format{
	nxCharInfoSize:    FormatNXCharInfo,
	nxCoreDataSize:    FormatNXCoreData,
	nxStoreDataSize:   FormatNXStoreData,
	studioRawSize:     FormatStudioRaw,
	studioEncodedSize: FormatStudioEncoded,
	rflCharDataSize:   FormatRFLCharData,
	rflStoreDataSize:  FormatRFLStoreData,
	ver3CoreSize:      FormatVer3Core,
	ver3OfficialSize:  FormatVer3Official,
	ver3StoreDataSize: FormatVer3StoreData,
}

// DetectFormat maps a declared payload length to its encoding.
func DetectFormat(length int) Format {
	return formatByLength[length]
}

// Size returns the fixed byte length of f, or 0 for FormatUnknown.
func (f Format) Size() int {
	for n, g := range formatByLength {
		if g == f {
			return n
		}
	}
	return 0
}

// Normalize decodes buf[:length] into a CharInfo. The format is chosen by
// length alone. When verifyChecksum is set, the checksummed variants are
// rejected with ErrChecksumInvalid if their CRC16 does not match.
//
// NX store data shares the core data decode path and is never
// checksum-verified here.
func Normalize(buf []byte, length int, verifyChecksum bool) (*CharInfo, Format, error) {
	f := DetectFormat(length)
	if f == FormatUnknown || length > len(buf) {
		return nil, FormatUnknown, fmt.Errorf("%w: %d bytes", ErrFormatUnrecognized, length)
	}
	data := buf[:length]

	switch f {
	case FormatRFLStoreData:
		if verifyChecksum && !ValidCRC16(data) {
			return nil, f, fmt.Errorf("%s: %w", f, ErrChecksumInvalid)
		}
		return decodeRFL(data), f, nil
	case FormatRFLCharData:
		return decodeRFL(data), f, nil
	case FormatStudioEncoded:
		raw, err := DecodeStudio(data)
		if err != nil {
			return nil, f, err
		}
		n := parseStudioRaw(raw)
		return n.toCharInfo(), f, nil
	case FormatStudioRaw:
		n := parseStudioRaw(data)
		return n.toCharInfo(), f, nil
	case FormatNXCharInfo:
		n := parseNXCharInfo(data)
		return n.toCharInfo(), f, nil
	case FormatNXCoreData, FormatNXStoreData:
		n := parseNXCoreData(data[:nxCoreDataSize])
		if f == FormatNXStoreData {
			copy(n.createID[:], data[nxCoreDataSize:nxCoreDataSize+16])
		}
		return n.toCharInfo(), f, nil
	case FormatVer3StoreData:
		if verifyChecksum && !ValidCRC16(data) {
			return nil, f, fmt.Errorf("%s: %w", f, ErrChecksumInvalid)
		}
		return decodeVer3(data), f, nil
	case FormatVer3Core, FormatVer3Official:
		return decodeVer3(data), f, nil
	}
	return nil, FormatUnknown, fmt.Errorf("%w: %d bytes", ErrFormatUnrecognized, length)
}
