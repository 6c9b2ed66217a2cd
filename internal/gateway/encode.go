package gateway

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/pierrec/lz4/v4"
	"golang.org/x/image/draw"

	"miirender/internal/output"
	"miirender/internal/sheet"
)

const (
	contentTypePNG = "image/png"
	contentTypeTGA = "image/x-tga"
	contentTypeGLB = "model/gltf-binary"
	contentTypePDF = "application/pdf"
)

// toImage wraps a raster response, flipping bottom-up rows so the image is
// always top-down.
func toImage(resp *Response) (*image.NRGBA, error) {
	w, h := int(resp.Header.Width), int(resp.Header.Height)
	if resp.Header.BitsPerPixel != 32 || len(resp.Pixels) != w*h*4 {
		return nil, fmt.Errorf("unexpected raster %dx%d at %d bits", w, h, resp.Header.BitsPerPixel)
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	if resp.Header.TopDown() {
		copy(img.Pix, resp.Pixels)
		return img, nil
	}
	stride := w * 4
	for y := 0; y < h; y++ {
		copy(img.Pix[y*stride:(y+1)*stride], resp.Pixels[(h-1-y)*stride:])
	}
	return img, nil
}

// downscale resolves supersampling by an integer factor.
func downscale(src *image.NRGBA, factor int) *image.NRGBA {
	if factor <= 1 {
		return src
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()/factor, b.Dy()/factor))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// frames cuts a stacked multi-instance canvas into its instances. Rows
// past count whole frames are padding.
func frames(img *image.NRGBA, count int) []image.Image {
	b := img.Bounds()
	fh := b.Dy() / max(count, 1)
	out := make([]image.Image, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, img.SubImage(image.Rect(0, i*fh, b.Dx(), (i+1)*fh)))
	}
	return out
}

// encode turns a backend response into the body and content type for p.
func encode(resp *Response, p *plan, title string) ([]byte, string, error) {
	if p.kind == outputGLB {
		if resp.GLB == nil {
			return nil, "", fmt.Errorf("renderer sent a raster for a glb request")
		}
		return resp.GLB, contentTypeGLB, nil
	}
	img, err := toImage(resp)
	if err != nil {
		return nil, "", err
	}
	img = downscale(img, p.ssaa)

	var buf bytes.Buffer
	switch p.kind {
	case outputTGA:
		b := img.Bounds()
		st := output.NewStreamer(&buf, true)
		if err := st.WriteHeader(b.Dx(), b.Dy()); err != nil {
			return nil, "", err
		}
		if err := st.WriteFrame(img.Pix, b.Dx(), b.Dy()); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), contentTypeTGA, nil
	case outputPDF:
		pdf, err := sheet.Generate(frames(img, int(p.req.InstanceCount)), title)
		if err != nil {
			return nil, "", err
		}
		return pdf, contentTypePDF, nil
	}
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), contentTypePNG, nil
}

// CachedImage is an encoded response held compressed.
type CachedImage struct {
	ContentType string
	Size        int
	Data        []byte
}

func compress(body []byte, contentType string) (CachedImage, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(body); err != nil {
		return CachedImage{}, err
	}
	if err := zw.Close(); err != nil {
		return CachedImage{}, err
	}
	return CachedImage{ContentType: contentType, Size: len(body), Data: buf.Bytes()}, nil
}

func (c CachedImage) decompress() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, c.Size))
	if _, err := io.Copy(buf, lz4.NewReader(bytes.NewReader(c.Data))); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
