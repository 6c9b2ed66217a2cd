package gateway

import (
	"bufio"
	"bytes"
	"context"
	"net/url"
	"strings"
	"sync"

	"miirender/internal/render"
)

// LocalRenderer runs requests on an in-process render context instead of
// a backend socket. Requests are served one at a time.
type LocalRenderer struct {
	mu      sync.Mutex
	Context *render.Context
}

func (l *LocalRenderer) Do(ctx context.Context, req *render.Request) (*Response, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var buf bytes.Buffer
	if err := l.Context.Render(ctx, &buf, req); err != nil && buf.Len() == 0 {
		return nil, err
	}
	return readResponse(bufio.NewReader(&buf), req.ResponseFormat)
}

// Render produces the body for q as the output named by ext: png, tga,
// glb or pdf.
func (s *Server) Render(ctx context.Context, q url.Values, ext string) ([]byte, string, error) {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	for i, name := range outputNames {
		if name == ext {
			return s.image(ctx, q, outputKind(i))
		}
	}
	return nil, "", badRequest("unknown output %q", ext)
}
