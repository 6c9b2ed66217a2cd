// Package gateway serves avatar renders over HTTP by forwarding each query
// to a render backend and encoding what it returns.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash"
	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/zerolog/log"

	"miirender/internal/cache"
	"miirender/internal/config"
	"miirender/internal/nnid"
	"miirender/internal/preset"
)

const shutdownTimeout = 2 * time.Second

// NNIDLookup resolves a Nintendo Network ID to avatar data.
type NNIDLookup interface {
	Lookup(ctx context.Context, id string) ([]byte, error)
}

type Server struct {
	Conf     config.Gateway
	Renderer Renderer
	// NNIDs may be nil, in which case nnid queries are refused.
	NNIDs NNIDLookup
	// Cache may be nil to disable caching.
	Cache cache.Store[CachedImage]

	presets atomic.Pointer[preset.Set]
}

// NewServer returns a Server talking to the configured upstream with a
// memory cache sized by conf.
func NewServer(conf config.Gateway) *Server {
	s := &Server{
		Conf: conf,
		Renderer: &Client{
			Addr:        conf.Upstream,
			DialTimeout: conf.DialTimeout,
			ReadTimeout: conf.ReadTimeout,
		},
	}
	if conf.CacheEntries > 0 {
		s.Cache = cache.NewMemoryStore[CachedImage](conf.CacheEntries)
	}
	return s
}

// SetPresets replaces the preset set. It is safe to call while serving.
func (s *Server) SetPresets(set *preset.Set) { s.presets.Store(set) }

func (s *Server) Routes() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	_ = router.SetTrustedProxies(nil)
	router.Use(
		gin.Recovery(),
		gin.LoggerWithWriter(log.Logger, "/health"),
		s.corsMiddleware(),
	)

	router.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.GET("/presets", s.handlePresets)

	miis := router.Group("/miis")
	miis.GET("/image.png", s.imageHandler(outputPNG))
	miis.GET("/image.tga", s.imageHandler(outputTGA))
	miis.GET("/image.glb", s.imageHandler(outputGLB))
	miis.GET("/sheet.pdf", s.imageHandler(outputPDF))

	router.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "not found, try /miis/image.png")
	})
	return gzhttp.GzipHandler(router)
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if origin := s.Conf.CORSOrigin; origin != "" {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Private-Network", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			h.Set("Access-Control-Allow-Origin", origin)
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

type presetView struct {
	Description string            `json:"description,omitempty"`
	Params      map[string]string `json:"params"`
}

func (s *Server) handlePresets(c *gin.Context) {
	set := s.presets.Load()
	out := make(map[string]presetView)
	for _, name := range set.Names() {
		p, _ := set.Get(name)
		out[name] = presetView{Description: p.Description, Params: p.Params}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) imageHandler(kind outputKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := c.Request.URL.Query()
		body, contentType, err := s.image(c.Request.Context(), q, kind)
		if err != nil {
			s.writeError(c, err)
			return
		}
		if kind == outputGLB {
			name := q.Get("nnid")
			if name == "" || q.Get("data") != "" {
				name = "mii-data"
			}
			c.Header("Content-Disposition",
				fmt.Sprintf(`attachment; filename="%s-%s.glb"`, time.Now().Format("2006-01-02-15-04-05"), name))
		}
		c.Header("Content-Length", strconv.Itoa(len(body)))
		c.Data(http.StatusOK, contentType, body)
	}
}

// image resolves q into a render request, consults the cache and asks the
// backend on a miss.
func (s *Server) image(ctx context.Context, q url.Values, kind outputKind) ([]byte, string, error) {
	if name := q.Get("preset"); name != "" {
		p, ok := s.presets.Load().Get(name)
		if !ok {
			return nil, "", badRequest("unknown preset %q", name)
		}
		p.Apply(q)
	}

	data, err := s.payload(ctx, q)
	if err != nil {
		return nil, "", err
	}
	p, err := parsePlan(q, kind, data, s.Conf)
	if err != nil {
		return nil, "", err
	}

	key, err := cacheKey(p)
	if err != nil {
		return nil, "", err
	}
	if s.Cache != nil {
		if hit, ok, err := s.Cache.Get(ctx, key); err == nil && ok {
			body, err := hit.decompress()
			if err == nil {
				return body, hit.ContentType, nil
			}
			log.Warn().Err(err).Str("key", key).Msg("dropping unreadable cache entry")
		}
	}

	start := time.Now()
	resp, err := s.Renderer.Do(ctx, &p.req)
	if err != nil {
		return nil, "", err
	}
	title := "Mii"
	if id := q.Get("nnid"); id != "" && q.Get("data") == "" {
		title = id
	}
	body, contentType, err := encode(resp, p, title)
	if err != nil {
		return nil, "", err
	}
	log.Debug().
		Stringer("kind", kind).
		Int("bytes", len(body)).
		Dur("took", time.Since(start)).
		Msg("rendered")

	if s.Cache != nil {
		entry, err := compress(body, contentType)
		if err == nil {
			err = s.Cache.Put(ctx, key, entry)
		}
		if err != nil {
			log.Warn().Err(err).Msg("cache store failed")
		}
	}
	return body, contentType, nil
}

func cacheKey(p *plan) (string, error) {
	b, err := p.req.MarshalBinary()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x-%s-%d", xxhash.Sum64(b), p.kind, p.ssaa), nil
}

// payload returns the avatar data named by q, either inline or looked up
// by NNID.
func (s *Server) payload(ctx context.Context, q url.Values) ([]byte, error) {
	if d := q.Get("data"); d != "" {
		b, err := decodeData(d)
		if err != nil {
			return nil, badRequest("%v", err)
		}
		return b, nil
	}
	if q.Get("pnid") != "" || q.Get("api_id") == "1" {
		return nil, &httpError{status: http.StatusNotImplemented, msg: "Pretendo Network ID lookup is not supported"}
	}
	id := q.Get("nnid")
	if id == "" {
		return nil, badRequest(`specify "data" as avatar data or "nnid" as a Nintendo Network ID`)
	}
	if s.NNIDs == nil {
		return nil, &httpError{status: http.StatusNotImplemented, msg: "NNID lookup is not configured"}
	}
	data, err := s.NNIDs.Lookup(ctx, id)
	if errors.Is(err, nnid.ErrNotFound) {
		return nil, &httpError{status: http.StatusNotFound, msg: "NNID not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("nnid lookup: %w", err)
	}
	return data, nil
}

func (s *Server) writeError(c *gin.Context, err error) {
	var he *httpError
	var be *BackendError
	var ne net.Error
	switch {
	case errors.As(err, &he):
		c.String(he.status, he.msg)
	case errors.As(err, &be):
		c.String(http.StatusInternalServerError, be.Error())
	case errors.Is(err, ErrBackendDown):
		c.String(http.StatusBadGateway, ErrBackendDown.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &ne) && ne.Timeout():
		c.String(http.StatusGatewayTimeout, "renderer timed out")
	default:
		log.Err(err).Str("path", c.Request.URL.Path).Msg("render failed")
		c.String(http.StatusBadGateway, err.Error())
	}
}

// Serve handles HTTP on ln until ctx is cancelled, then shuts down.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	log.Info().Str("addr", ln.Addr().String()).Msg("gateway listening")

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-errc
	return nil
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}
