package intercept

import (
	"bytes"
	"mime"
	"net/http"
	"strings"
)

// Traffic markers.
const (
	// BlazorURLMarker appears in the URL of every circuit request.
	BlazorURLMarker = "_blazor?id="

	// NegotiateURLMarker appears in the URL of SignalR negotiate requests.
	NegotiateURLMarker = "negotiate?negotiateVersion="

	// SignalRHeader is sent by the SignalR JavaScript client.
	SignalRHeader = "X-Signalr-User-Agent"

	// RecordSeparator terminates JSON handshake records.
	RecordSeparator = 0x1E
)

// Detector classifies traffic within a Scope.
type Detector struct {
	Scope Scope
}

// requestURI returns the request target as seen on the wire.
func requestURI(req *http.Request) string {
	if req == nil || req.URL == nil {
		return ""
	}
	return req.URL.RequestURI()
}

// isCircuit reports whether req targets a Blazor circuit.
func isCircuit(req *http.Request) bool {
	if req == nil {
		return false
	}
	return strings.Contains(requestURI(req), BlazorURLMarker) || req.Header.Get(SignalRHeader) != ""
}

func (d Detector) inScope(req *http.Request) bool {
	if req == nil {
		return false
	}
	if req.URL != nil && req.URL.Host != "" {
		return d.Scope.Contains(req.URL)
	}
	return d.Scope.ContainsHost(req.Host)
}

// IsHandshake reports whether body is a JSON handshake record: "{...}"
// followed by the 0x1E record separator.
func IsHandshake(body []byte) bool {
	return len(body) >= 2 && body[0] == '{' && bytes.HasSuffix(body, []byte{'}', RecordSeparator})
}

// IsJSON reports whether a Content-Type header names JSON.
func IsJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// IsNegotiate reports whether req is a SignalR negotiate request.
func IsNegotiate(req *http.Request) bool {
	return strings.Contains(requestURI(req), NegotiateURLMarker)
}

// IsBlazorRequest reports whether a request body should be decoded.
func (d Detector) IsBlazorRequest(req *http.Request, body []byte) bool {
	switch {
	case !d.inScope(req):
		return false
	case IsJSON(req.Header.Get("Content-Type")):
		return false
	case !isCircuit(req):
		return false
	case len(body) == 0:
		return false
	case IsHandshake(body):
		return false
	}
	return true
}

// IsBlazorResponse reports whether a response body should be decoded.
// The circuit and scope tests apply to the initiating request.
func (d Detector) IsBlazorResponse(req *http.Request, resp *http.Response, body []byte) bool {
	switch {
	case resp == nil:
		return false
	case !isCircuit(req):
		return false
	case !d.inScope(req):
		return false
	case len(body) == 0:
		return false
	case len(body) == 3 && bytes.HasPrefix(body, []byte("{}")):
		return false
	case IsHandshake(body):
		return false
	}
	return true
}

// IsBlazorWebSocket reports whether a WebSocket message on a connection
// opened by upgrade should be decoded.
func (d Detector) IsBlazorWebSocket(upgrade *http.Request, payload []byte) bool {
	if upgrade != nil {
		if !d.inScope(upgrade) || !isCircuit(upgrade) {
			return false
		}
	}
	return len(payload) > 0 && !IsHandshake(payload)
}

// ShouldHighlightRequest reports whether a request looks like Blazor traffic
// worth flagging in a capture listing.
func ShouldHighlightRequest(req *http.Request, body []byte) bool {
	if req == nil {
		return false
	}
	if len(body) != 0 && strings.Contains(requestURI(req), "_blazor?id") {
		return true
	}
	return req.Header.Get(SignalRHeader) != ""
}

// ShouldHighlightResponse reports whether a response has an opaque body: no
// recognisable media type and at least one byte.
func ShouldHighlightResponse(resp *http.Response, body []byte) bool {
	if resp == nil || len(body) == 0 {
		return false
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(ct)
	return err != nil || mt == "application/octet-stream"
}
