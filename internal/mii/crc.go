package mii

// CRC16 computes CRC-16/CCITT (polynomial 0x1021, initial value 0, no
// reflection) as used by every checksummed avatar format.
func CRC16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// ValidCRC16 reports whether region ends in a big-endian CRC16 of the bytes
// before it. Running the CRC over the whole region including the trailer
// yields zero exactly when they match.
func ValidCRC16(region []byte) bool {
	if len(region) < 2 {
		return false
	}
	return CRC16(region) == 0
}

// SealCRC16 writes the big-endian CRC16 of region[:len-2] into the last two
// bytes of region.
func SealCRC16(region []byte) {
	n := len(region) - 2
	crc := CRC16(region[:n])
	region[n] = byte(crc >> 8)
	region[n+1] = byte(crc)
}
