// Package view resolves camera poses and body attachment transforms from a
// requested view type and the avatar's proportions.
package view

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ScaleFormula selects how build and height turn into a body scale. It is
// chosen once at start-up.
type ScaleFormula int

const (
	// ScaleApply matches the scale used for most body icons.
	ScaleApply ScaleFormula = iota
	// ScaleLimit keeps the body narrower so less of the pants shows.
	ScaleLimit
)

func (f ScaleFormula) String() string {
	switch f {
	case ScaleApply:
		return "apply"
	case ScaleLimit:
		return "limit"
	default:
		return fmt.Sprintf("ScaleFormula(%d)", int(f))
	}
}

// ParseScaleFormula accepts "apply" or "limit". An empty string selects the
// default.
func ParseScaleFormula(s string) (ScaleFormula, error) {
	switch s {
	case "", "apply":
		return ScaleApply, nil
	case "limit":
		return ScaleLimit, nil
	}
	return ScaleApply, fmt.Errorf("unknown body scale formula %q", s)
}

// MaxBodyParam is the largest legal build or height.
const MaxBodyParam = 127

// Scale returns the body scale for build and height. Z always equals X.
func (f ScaleFormula) Scale(build, height uint8) mgl32.Vec3 {
	b, h := float32(build), float32(height)
	var x, y float32
	switch f {
	case ScaleLimit:
		hf := h / 128
		y = hf*0.55 + 0.6
		x0 := hf*0.3 + 0.6
		x = ((hf*0.6+0.8)-x0)*(b/128) + x0
	default:
		// 0.47/128, 0.23/128 and 0.77/128
		x = b*(h*0.003671875+0.4)/128 + h*0.001796875 + 0.4
		y = h*0.006015625 + 0.5
	}
	return mgl32.Vec3{x, y, x}
}

// scaleYRange returns the smallest and largest Y scale the formula can
// produce. Y depends on height only.
func (f ScaleFormula) scaleYRange() (lo, hi float32) {
	return f.Scale(0, 0).Y(), f.Scale(0, MaxBodyParam).Y()
}
