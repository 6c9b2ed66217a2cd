// Package output frames rendered pixels and protocol errors onto a stream.
package output

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// HeaderSize is the length of a TGA file header.
const HeaderSize = 18

const (
	imageTypeTrueColor = 2
	bitsPerPixel       = 32
	// 8 alpha bits, rows stored top to bottom.
	descriptorTopDown = 0x28
	// 8 alpha bits, rows stored bottom to top.
	descriptorBottomUp = 0x08
)

// Header is the subset of a TGA header the renderer sets.
type Header struct {
	Width        uint16
	Height       uint16
	BitsPerPixel uint8
	Descriptor   uint8
}

func (h Header) MarshalBinary() [HeaderSize]byte {
	var b [HeaderSize]byte
	b[2] = imageTypeTrueColor
	binary.LittleEndian.PutUint16(b[12:], h.Width)
	binary.LittleEndian.PutUint16(b[14:], h.Height)
	b[16] = h.BitsPerPixel
	b[17] = h.Descriptor
	return b
}

// ParseHeader reads a header written by Header.MarshalBinary.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("tga header: need %d bytes, got %d", HeaderSize, len(b))
	}
	if b[2] != imageTypeTrueColor {
		return Header{}, fmt.Errorf("tga header: unsupported image type %d", b[2])
	}
	return Header{
		Width:        binary.LittleEndian.Uint16(b[12:]),
		Height:       binary.LittleEndian.Uint16(b[14:]),
		BitsPerPixel: b[16],
		Descriptor:   b[17],
	}, nil
}

// TopDown reports whether rows are stored first row first.
func (h Header) TopDown() bool { return h.Descriptor&0x20 != 0 }

// PixelBytes is the payload length that follows the header.
func (h Header) PixelBytes() int {
	return int(h.Width) * int(h.Height) * int(h.BitsPerPixel) / 8
}

var ErrHeaderWritten = errors.New("output header already written")

// MaxDimension is the largest width or height a header can carry.
const MaxDimension = math.MaxUint16

// ErrTooLarge is returned for images a header cannot describe.
var ErrTooLarge = errors.New("image too large")

// Streamer writes one header followed by any number of frames. In BGRA
// mode each frame is converted from RGBA and flipped vertically on its own.
type Streamer struct {
	w       io.Writer
	bgra    bool
	started bool
	width   int
	written int64
}

func NewStreamer(w io.Writer, bgraFlipY bool) *Streamer {
	return &Streamer{w: w, bgra: bgraFlipY}
}

func (s *Streamer) WriteHeader(width, height int) error {
	if s.started {
		return ErrHeaderWritten
	}
	if width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("%w: %dx%d exceeds %d", ErrTooLarge, width, height, MaxDimension)
	}
	s.started = true
	s.width = width
	h := Header{Width: uint16(width), Height: uint16(height), BitsPerPixel: bitsPerPixel, Descriptor: descriptorTopDown}
	if s.bgra {
		h.Descriptor = descriptorBottomUp
	}
	b := h.MarshalBinary()
	return s.write(b[:])
}

// WriteFrame writes w*h RGBA pixels.
func (s *Streamer) WriteFrame(pix []byte, w, h int) error {
	if !s.started {
		return errors.New("output frame written before header")
	}
	stride := w * 4
	if len(pix) < stride*h {
		return fmt.Errorf("output frame: %d bytes for %dx%d", len(pix), w, h)
	}
	if !s.bgra {
		return s.write(pix[:stride*h])
	}
	out := make([]byte, stride*h)
	for y := 0; y < h; y++ {
		src := pix[y*stride : (y+1)*stride]
		dst := out[(h-1-y)*stride : (h-y)*stride]
		for x := 0; x < stride; x += 4 {
			dst[x], dst[x+1], dst[x+2], dst[x+3] = src[x+2], src[x+1], src[x], src[x+3]
		}
	}
	return s.write(out)
}

// WritePadding appends fully transparent rows.
func (s *Streamer) WritePadding(rows int) error {
	if rows <= 0 {
		return nil
	}
	return s.write(make([]byte, rows*s.width*4))
}

// Written is the number of bytes sent so far, header included.
func (s *Streamer) Written() int64 { return s.written }

func (s *Streamer) write(b []byte) error {
	n, err := s.w.Write(b)
	s.written += int64(n)
	return err
}

// ErrorPrefix starts every protocol error line.
const ErrorPrefix = "ERROR: "

// WriteError sends a single protocol error line.
func WriteError(w io.Writer, msg string) error {
	_, err := io.WriteString(w, ErrorPrefix+msg+"\n")
	return err
}
