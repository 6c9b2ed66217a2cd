package mii

import "encoding/binary"

// bitField addresses an unsigned bit range inside a little-endian word.
// Shift is the position of the field's least significant bit.
type bitField struct {
	off   int
	size  int // word size in bytes: 1, 2 or 4
	shift uint
	width uint
}

func (f bitField) get(b []byte) uint8 {
	var w uint32
	switch f.size {
	case 1:
		w = uint32(b[f.off])
	case 2:
		w = uint32(binary.LittleEndian.Uint16(b[f.off:]))
	case 4:
		w = binary.LittleEndian.Uint32(b[f.off:])
	}
	return uint8((w >> f.shift) & (1<<f.width - 1))
}

func readUTF16LE(dst []uint16, b []byte) {
	for i := range dst {
		if 2*i+1 >= len(b) {
			return
		}
		dst[i] = binary.LittleEndian.Uint16(b[2*i:])
	}
}
