package proxy

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"

	"github.com/blazor-tools/btp/pkg/archive"
	"github.com/blazor-tools/btp/pkg/blazorpack"
	"github.com/blazor-tools/btp/pkg/intercept"
	"github.com/gorilla/websocket"
)

// Defaults.
const (
	DefaultAPIPrefix   = "/_btp"
	DefaultMaxBodySize = int64(blazorpack.DefaultMaxFrameSize)
)

// Option configures a Server.
type Option func(*Server)

// WithAPIPrefix sets the editor API path prefix.
func WithAPIPrefix(prefix string) Option {
	return func(s *Server) {
		s.apiPrefix = prefix
	}
}

// WithMaxBodySize limits the bytes read from a body for inspection.
// Larger bodies are forwarded without decoding.
func WithMaxBodySize(n int64) Option {
	return func(s *Server) {
		s.maxBodySize = n
	}
}

// WithScope limits which hosts are inspected.
func WithScope(scope intercept.Scope) Option {
	return func(s *Server) {
		s.detector.Scope = scope
	}
}

// WithPreferences sets the preference store.
func WithPreferences(p Preferences) Option {
	return func(s *Server) {
		s.prefs = p
	}
}

// WithStore archives decoded batches.
func WithStore(store archive.Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithCodec sets the codec.
func WithCodec(c *blazorpack.Codec) Option {
	return func(s *Server) {
		s.codec = c
	}
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithTracerName sets the OpenTelemetry tracer name.
func WithTracerName(name string) Option {
	return func(s *Server) {
		s.tracerName = name
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// Server is the intercepting proxy and editor API.
type Server struct {
	upstream    *url.URL
	apiPrefix   string
	maxBodySize int64
	detector    intercept.Detector
	prefs       Preferences
	store       archive.Store
	codec       *blazorpack.Codec
	metrics     *Metrics
	tracerName  string
	logger      *slog.Logger

	tc       *transcoder
	api      http.Handler
	forward  *httputil.ReverseProxy
	upgrader websocket.Upgrader
	dialer   *websocket.Dialer
}

// New creates a Server forwarding to upstream. A nil upstream serves the
// editor API only.
func New(upstream *url.URL, opts ...Option) (*Server, error) {
	if upstream != nil && (upstream.Scheme != "http" && upstream.Scheme != "https" || upstream.Host == "") {
		return nil, errors.New("proxy: upstream must be an absolute http or https URL")
	}
	s := &Server{
		upstream:    upstream,
		apiPrefix:   DefaultAPIPrefix,
		maxBodySize: DefaultMaxBodySize,
		store:       archive.Nop,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default().With("component", "proxy")
	}
	if s.codec == nil {
		s.codec = blazorpack.New(blazorpack.WithLogger(s.logger))
	}
	if s.prefs == nil {
		s.prefs = NewMemoryPreferences(false)
	}
	if s.maxBodySize <= 0 {
		s.maxBodySize = DefaultMaxBodySize
	}
	s.apiPrefix = "/" + strings.Trim(s.apiPrefix, "/")

	s.tc = newTranscoder(s.codec, s.tracerName, s.metrics, s.logger)
	s.api = s.routes()
	if upstream != nil {
		s.forward = s.reverseProxy()
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     func(*http.Request) bool { return true },
	}
	s.dialer = &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: websocket.DefaultDialer.HandshakeTimeout,
	}
	return s, nil
}

// APIPrefix returns the normalized editor API prefix.
func (s *Server) APIPrefix() string {
	return s.apiPrefix
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == s.apiPrefix || strings.HasPrefix(r.URL.Path, s.apiPrefix+"/") {
		s.api.ServeHTTP(w, r)
		return
	}
	if s.forward == nil {
		http.Error(w, "no upstream configured", http.StatusBadGateway)
		return
	}
	if websocket.IsWebSocketUpgrade(r) {
		s.relay(w, r)
		return
	}
	s.inspectRequest(r)
	s.forward.ServeHTTP(w, r)
}

func (s *Server) reverseProxy() *httputil.ReverseProxy {
	rp := httputil.NewSingleHostReverseProxy(s.upstream)
	director := rp.Director
	rp.Director = func(r *http.Request) {
		director(r)
		r.Host = s.upstream.Host
		// Bodies are inspected as plain bytes.
		r.Header.Del("Accept-Encoding")
	}
	rp.ModifyResponse = s.modifyResponse
	rp.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		s.logger.Warn("upstream request failed", "url", r.URL.String(), "error", err)
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}
	return rp
}

// readBody reads up to maxBodySize bytes and restores the body. ok is false
// when the body was larger and must not be inspected.
func (s *Server) readBody(body io.ReadCloser) (data []byte, restored io.ReadCloser, ok bool, err error) {
	if body == nil || body == http.NoBody {
		return nil, body, true, nil
	}
	data, err = io.ReadAll(io.LimitReader(body, s.maxBodySize+1))
	if err != nil {
		return nil, body, false, err
	}
	if int64(len(data)) > s.maxBodySize {
		return nil, readCloser{io.MultiReader(bytes.NewReader(data), body), body}, false, nil
	}
	body.Close()
	return data, io.NopCloser(bytes.NewReader(data)), true, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

func (s *Server) inspectRequest(r *http.Request) {
	data, body, ok, err := s.readBody(r.Body)
	r.Body = body
	if err != nil {
		s.logger.Warn("read request body failed", "url", r.URL.String(), "error", err)
		return
	}
	target := s.targetRequest(r)
	if !ok || !s.detector.IsBlazorRequest(target, data) {
		if ok && intercept.ShouldHighlightRequest(target, data) {
			s.logger.Debug("circuit request not decoded", "url", target.URL.String(), "bytes", len(data))
		}
		return
	}
	s.inspect(r.Context(), archive.Request, target.URL.String(), data)
}

// targetRequest returns a copy of r addressed to the upstream, so scope
// checks see the host being proxied rather than the proxy itself.
func (s *Server) targetRequest(r *http.Request) *http.Request {
	out := r.Clone(r.Context())
	out.URL.Scheme = s.upstream.Scheme
	out.URL.Host = s.upstream.Host
	out.Host = s.upstream.Host
	return out
}

func (s *Server) modifyResponse(resp *http.Response) error {
	req := resp.Request
	data, body, ok, err := s.readBody(resp.Body)
	resp.Body = body
	if err != nil || !ok {
		return err
	}

	if intercept.IsNegotiate(req) && intercept.IsJSON(resp.Header.Get("Content-Type")) {
		out, changed, err := intercept.DowngradeNegotiate(data, s.prefs.UseWebSocket())
		if err != nil {
			s.logger.Warn("negotiate response not rewritten", "url", req.URL.String(), "error", err)
		}
		if changed {
			s.metrics.recordDowngrade()
			s.logger.Info("removed WebSockets from negotiate response", "url", req.URL.String())
			resp.Body = io.NopCloser(bytes.NewReader(out))
			resp.ContentLength = int64(len(out))
			resp.Header.Set("Content-Length", strconv.Itoa(len(out)))
		}
		return nil
	}

	if s.detector.IsBlazorResponse(req, resp, data) {
		if intercept.ShouldHighlightResponse(resp, data) {
			s.logger.Debug("opaque circuit response", "url", req.URL.String(), "bytes", len(data))
		}
		s.inspect(req.Context(), archive.Response, req.URL.String(), data)
	}
	return nil
}

// inspect decodes a batch, logs it and archives it.
func (s *Server) inspect(ctx context.Context, dir archive.Direction, target string, raw []byte) {
	rendered, msgs, err := s.tc.decode(ctx, raw)
	if err != nil {
		s.logger.Warn("undecodable BlazorPack batch", "direction", dir, "url", target, "bytes", len(raw), "error", err)
	} else {
		s.logger.Debug("BlazorPack batch", "direction", dir, "url", target, "messages", len(msgs), "json", string(rendered))
	}

	_, err = s.store.Put(ctx, archive.Capture{
		Direction: dir,
		URL:       target,
		Raw:       raw,
		JSON:      rendered,
	})
	switch {
	case errors.Is(err, archive.ErrRateLimited):
		s.logger.Debug("capture dropped", "direction", dir, "url", target)
	case err != nil:
		s.logger.Warn("archive capture failed", "direction", dir, "url", target, "error", err)
	}
}
