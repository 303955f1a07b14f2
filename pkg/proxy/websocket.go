package proxy

import (
	"context"
	"net/http"
	"strings"

	"github.com/blazor-tools/btp/pkg/archive"
	"github.com/gorilla/websocket"
)

// Headers copied from the browser's upgrade request to the upstream dial.
var relayHeaders = []string{
	"Authorization",
	"Cookie",
	"Origin",
	"User-Agent",
	"X-Signalr-User-Agent",
	"X-Requested-With",
}

// upstreamWebSocketURL maps an inbound request to the upstream ws/wss URL.
func (s *Server) upstreamWebSocketURL(r *http.Request) string {
	u := *s.upstream
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + r.URL.Path
	u.RawPath = ""
	u.RawQuery = r.URL.RawQuery
	return u.String()
}

// relay connects the browser to the upstream WebSocket and copies messages
// both ways, inspecting binary circuit messages.
func (s *Server) relay(w http.ResponseWriter, r *http.Request) {
	header := http.Header{}
	for _, k := range relayHeaders {
		if v := r.Header.Values(k); len(v) > 0 {
			header[k] = v
		}
	}
	wsURL := s.upstreamWebSocketURL(r)
	dialer := *s.dialer
	dialer.Subprotocols = websocket.Subprotocols(r)

	upstream, resp, err := dialer.DialContext(r.Context(), wsURL, header)
	if err != nil {
		status := http.StatusBadGateway
		if resp != nil {
			status = resp.StatusCode
		}
		s.logger.Warn("upstream websocket dial failed", "url", wsURL, "error", err)
		http.Error(w, "upstream websocket unavailable", status)
		return
	}
	defer upstream.Close()

	var respHeader http.Header
	if p := upstream.Subprotocol(); p != "" {
		respHeader = http.Header{"Sec-Websocket-Protocol": {p}}
	}
	client, err := s.upgrader.Upgrade(w, r, respHeader)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "url", r.URL.String(), "error", err)
		return
	}
	defer client.Close()

	// The request context is not canceled when a hijacked connection ends.
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	s.logger.Info("websocket relay opened", "url", r.URL.String())
	errc := make(chan error, 2)
	target := s.targetRequest(r)
	go func() { errc <- s.pump(ctx, target, client, upstream, archive.WebSocketIn) }()
	go func() { errc <- s.pump(ctx, target, upstream, client, archive.WebSocketOut) }()

	err = <-errc
	cancel()
	client.Close()
	upstream.Close()
	<-errc
	if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		s.logger.Debug("websocket relay closed", "url", r.URL.String(), "error", err)
	} else {
		s.logger.Info("websocket relay closed", "url", r.URL.String())
	}
}

// pump copies messages from src to dst until either side fails.
func (s *Server) pump(ctx context.Context, upgrade *http.Request, src, dst *websocket.Conn, dir archive.Direction) error {
	for {
		mt, data, err := src.ReadMessage()
		if err != nil {
			if ce, ok := err.(*websocket.CloseError); ok {
				msg := websocket.FormatCloseMessage(ce.Code, ce.Text)
				if ce.Code == websocket.CloseNoStatusReceived {
					msg = websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
				}
				dst.WriteMessage(websocket.CloseMessage, msg)
			}
			return err
		}
		s.metrics.recordWebSocketFrame(string(dir))
		if mt == websocket.BinaryMessage && s.detector.IsBlazorWebSocket(upgrade, data) {
			s.inspect(ctx, dir, upgrade.URL.String(), data)
		}
		if err := dst.WriteMessage(mt, data); err != nil {
			return err
		}
	}
}
