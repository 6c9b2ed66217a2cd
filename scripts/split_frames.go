// split_frames reads a multi-instance TGA written by the render backend
// and writes one PNG per instance next to it.
// Usage: go run ./scripts <render.tga> <instanceCount>
// Output: render_0.png, render_1.png, ...
package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"miirender/internal/output"
)

func main() {
	code := run(os.Args[1:])
	if code != 0 {
		os.Exit(code)
	}
}

func run(args []string) int {
	if len(args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: go run ./scripts <render.tga> <instanceCount>\n")
		return 1
	}
	inPath := filepath.Clean(args[0])
	count, err := strconv.Atoi(args[1])
	if err != nil || count < 1 {
		fmt.Fprintf(os.Stderr, "instanceCount must be a positive number\n")
		return 1
	}
	b, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", inPath, err)
		return 1
	}
	frames, err := splitFrames(b, count)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode: %v\n", err)
		return 1
	}
	base := strings.TrimSuffix(inPath, filepath.Ext(inPath))
	for i, frame := range frames {
		outPath := fmt.Sprintf("%s_%d.png", base, i)
		if err := writePNG(frame, outPath); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", outPath, err)
			return 1
		}
		fmt.Println(outPath)
	}
	return 0
}

// splitFrames cuts the uncompressed 32-bit TGA the backend emits into
// count frames. Bottom-up files are BGRA with each frame flipped on its
// own. Padding rows after the last frame are dropped.
func splitFrames(b []byte, count int) ([]*image.NRGBA, error) {
	h, err := output.ParseHeader(b)
	if err != nil {
		return nil, err
	}
	if h.BitsPerPixel != 32 {
		return nil, fmt.Errorf("unsupported depth %d", h.BitsPerPixel)
	}
	pix := b[output.HeaderSize:]
	if len(pix) < h.PixelBytes() {
		return nil, fmt.Errorf("truncated: %d of %d pixel bytes", len(pix), h.PixelBytes())
	}
	w, fh := int(h.Width), int(h.Height)/count
	stride := w * 4
	frames := make([]*image.NRGBA, count)
	for i := range frames {
		img := image.NewNRGBA(image.Rect(0, 0, w, fh))
		block := pix[i*fh*stride : (i+1)*fh*stride]
		for y := 0; y < fh; y++ {
			srcY := y
			if !h.TopDown() {
				srcY = fh - 1 - y
			}
			dst := img.Pix[y*stride : (y+1)*stride]
			copy(dst, block[srcY*stride:(srcY+1)*stride])
			if !h.TopDown() {
				for x := 0; x < stride; x += 4 {
					dst[x], dst[x+2] = dst[x+2], dst[x]
				}
			}
		}
		frames[i] = img
	}
	return frames, nil
}

func writePNG(img image.Image, path string) (err error) {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return err
	}
	defer func() {
		if cErr := f.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()
	return png.Encode(f, img)
}
