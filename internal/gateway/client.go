package gateway

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"
	"time"

	"miirender/internal/output"
	"miirender/internal/render"
)

var (
	ErrBackendDown = errors.New("renderer backend is not running")
	// ErrIncomplete means the backend closed the connection mid-response.
	ErrIncomplete = errors.New("incomplete response from renderer")
)

const glbHeaderSize = 12

// BackendError is an error line sent by the backend in place of a
// response.
type BackendError struct {
	Message string
}

func (e *BackendError) Error() string { return "renderer returned " + output.ErrorPrefix + e.Message }

// Response is one backend answer. Raster responses fill Header and Pixels;
// glTF responses fill GLB.
type Response struct {
	Header output.Header
	Pixels []byte
	GLB    []byte
}

// Renderer sends a request to a render backend.
type Renderer interface {
	Do(ctx context.Context, req *render.Request) (*Response, error)
}

// Client talks to a render backend over TCP, one connection per request.
type Client struct {
	Addr        string
	DialTimeout time.Duration
	ReadTimeout time.Duration
}

func (c *Client) Do(ctx context.Context, req *render.Request) (*Response, error) {
	b, err := req.MarshalBinary()
	if err != nil {
		return nil, err
	}

	d := net.Dialer{Timeout: c.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", c.Addr)
	if err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) {
			return nil, fmt.Errorf("%w: %v", ErrBackendDown, err)
		}
		return nil, fmt.Errorf("dial renderer: %w", err)
	}
	defer conn.Close()

	deadline, ok := ctx.Deadline()
	if c.ReadTimeout > 0 {
		if rd := time.Now().Add(c.ReadTimeout); !ok || rd.Before(deadline) {
			deadline, ok = rd, true
		}
	}
	if ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return nil, err
		}
	}

	if _, err := conn.Write(b); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	return readResponse(bufio.NewReader(conn), req.ResponseFormat)
}

func readResponse(br *bufio.Reader, format render.ResponseFormat) (*Response, error) {
	prefix, err := br.Peek(len(output.ErrorPrefix))
	if err != nil && len(prefix) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrIncomplete, err)
	}
	if bytes.Equal(prefix, []byte(output.ErrorPrefix)) {
		line, _ := br.ReadString('\n')
		msg := strings.TrimSuffix(strings.TrimPrefix(line, output.ErrorPrefix), "\n")
		return nil, &BackendError{Message: msg}
	}

	if format == render.ResponseGLTF {
		head := make([]byte, glbHeaderSize)
		if _, err := io.ReadFull(br, head); err != nil {
			return nil, fmt.Errorf("%w: glb header: %v", ErrIncomplete, err)
		}
		total := int(binary.LittleEndian.Uint32(head[8:]))
		if total < glbHeaderSize {
			return nil, fmt.Errorf("glb length %d is shorter than its header", total)
		}
		glb := make([]byte, total)
		copy(glb, head)
		if _, err := io.ReadFull(br, glb[glbHeaderSize:]); err != nil {
			return nil, fmt.Errorf("%w: glb body: %v", ErrIncomplete, err)
		}
		return &Response{GLB: glb}, nil
	}

	head := make([]byte, output.HeaderSize)
	if _, err := io.ReadFull(br, head); err != nil {
		return nil, fmt.Errorf("%w: tga header: %v", ErrIncomplete, err)
	}
	h, err := output.ParseHeader(head)
	if err != nil {
		return nil, err
	}
	pix := make([]byte, h.PixelBytes())
	if _, err := io.ReadFull(br, pix); err != nil {
		return nil, fmt.Errorf("%w: pixels: %v", ErrIncomplete, err)
	}
	return &Response{Header: h, Pixels: pix}, nil
}
