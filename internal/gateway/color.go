package gateway

import (
	"errors"
	"strings"
)

var errColorFormat = errors.New("color must be #RRGGBB, #RGB or RRGGBBAA")

// transparentWhite is the background when none is given. Alpha zero keeps
// edges from picking up a dark fringe when composited.
var transparentWhite = [4]uint8{255, 255, 255, 0}

// ParseHexColor reads #RRGGBB, #RGB, RRGGBB or RRGGBBAA. Colors without an
// alpha component are opaque.
func ParseHexColor(s string) ([4]uint8, error) {
	s = strings.TrimPrefix(s, "#")
	c := [4]uint8{0, 0, 0, 255}
	switch len(s) {
	case 3:
		for i := 0; i < 3; i++ {
			v, ok := hexNibble(s[i])
			if !ok {
				return c, errColorFormat
			}
			c[i] = v * 17
		}
	case 6, 8:
		for i := 0; i < len(s)/2; i++ {
			hi, ok1 := hexNibble(s[2*i])
			lo, ok2 := hexNibble(s[2*i+1])
			if !ok1 || !ok2 {
				return c, errColorFormat
			}
			c[i] = hi<<4 | lo
		}
	default:
		return c, errColorFormat
	}
	return c, nil
}

func hexNibble(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}
