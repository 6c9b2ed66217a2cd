package soft

import (
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"

	"miirender/internal/mii"
)

// Expression indices that change the face mask.
const (
	exprSmile             = 1
	exprBlink             = 5
	exprOpenMouth         = 6
	exprHappy             = 7
	exprAngerOpenMouth    = 8
	exprSorrowOpenMouth   = 9
	exprSurpriseOpenMouth = 10
	exprBlinkOpenMouth    = 11
	exprWinkLeft          = 12
	exprWinkRight         = 13
	exprWinkLeftOpen      = 14
	exprWinkRightOpen     = 15
	exprLikeWinkRight     = 17
)

type faceState struct {
	leftClosed, rightClosed bool
	mouthOpen               bool
	smile                   bool
}

func expressionFace(e int) faceState {
	var f faceState
	switch e {
	case exprBlink, exprBlinkOpenMouth:
		f.leftClosed, f.rightClosed = true, true
	case exprWinkLeft, exprWinkLeftOpen:
		f.leftClosed = true
	case exprWinkRight, exprWinkRightOpen, exprLikeWinkRight:
		f.rightClosed = true
	}
	switch e {
	case exprOpenMouth, exprAngerOpenMouth, exprSorrowOpenMouth, exprSurpriseOpenMouth,
		exprBlinkOpenMouth, exprWinkLeftOpen, exprWinkRightOpen, exprHappy:
		f.mouthOpen = true
	case exprSmile:
		f.smile = true
	}
	return f
}

// drawMask paints eyes, brows and mouth onto a transparent square texture.
// Coordinates are in texture units, y growing downwards.
func drawMask(info *mii.CharInfo, expression, res int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, res, res))
	p := &info.Parts
	f := expressionFace(expression)

	eyeY := 0.42 + (float32(p.EyePositionY)-12)*0.015
	eyeDX := 0.12 + float32(p.EyeSpacingX)*0.01
	eyeRX := 0.05 + float32(p.EyeScale)*0.006
	eyeRY := eyeRX * (0.8 + float32(p.EyeScaleY)*0.05)
	eye := toRGBA(lookup(eyeColors, p.EyeColor))

	browY := eyeY - 0.08 - float32(p.EyebrowPositionY)*0.004
	browDX := 0.12 + float32(p.EyebrowSpacingX)*0.01
	browRX := 0.06 + float32(p.EyebrowScale)*0.005
	brow := toRGBA(lookup(hairColors, p.EyebrowColor))

	for i, closed := range [2]bool{f.rightClosed, f.leftClosed} {
		side := float32(2*i - 1)
		ry := eyeRY
		if closed {
			ry = 0.012
		}
		fillEllipse(img, mgl32.Vec2{0.5 + side*eyeDX, eyeY}, mgl32.Vec2{eyeRX, ry}, eye)
		fillEllipse(img, mgl32.Vec2{0.5 + side*browDX, browY}, mgl32.Vec2{browRX, 0.014}, brow)
	}

	mouthY := 0.75 + (float32(p.MouthPositionY)-13)*0.012
	mouthRX := 0.12 + float32(p.MouthScale)*0.01
	mouthRY := float32(0.015)
	switch {
	case f.mouthOpen:
		mouthRY = 0.06
	case f.smile:
		mouthRY = 0.03
	}
	fillEllipse(img, mgl32.Vec2{0.5, mouthY}, mgl32.Vec2{mouthRX, mouthRY}, toRGBA(lookup(mouthColors, p.MouthColor)))
	return img
}

func toRGBA(c mgl32.Vec3) color.RGBA {
	return color.RGBA{R: unitToByte(c[0]), G: unitToByte(c[1]), B: unitToByte(c[2]), A: 0xFF}
}

// fillEllipse fills the ellipse at center with radii r, both in texture
// units.
func fillEllipse(img *image.RGBA, center, r mgl32.Vec2, c color.RGBA) {
	size := float32(img.Bounds().Dx())
	cx, cy := center[0]*size, center[1]*size
	rx, ry := r[0]*size, r[1]*size
	if rx <= 0 || ry <= 0 {
		return
	}
	for y := int(cy - ry); y <= int(cy+ry)+1; y++ {
		for x := int(cx - rx); x <= int(cx+rx)+1; x++ {
			dx := (float32(x) + 0.5 - cx) / rx
			dy := (float32(y) + 0.5 - cy) / ry
			if dx*dx+dy*dy > 1 {
				continue
			}
			if (image.Point{X: x, Y: y}).In(img.Rect) {
				img.SetRGBA(x, y, c)
			}
		}
	}
}
