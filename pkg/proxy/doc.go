// Package proxy is an intercepting reverse proxy for Blazor Server traffic.
//
// A Server forwards every request to a single upstream. Along the way it:
//
//   - strips WebSockets from SignalR negotiate responses (unless the
//     "use WebSocket" preference is set) so the circuit runs over HTTP
//   - decodes BlazorPack request and response bodies, logging and archiving
//     the rendered JSON
//   - relays WebSocket connections, decoding each binary message in both
//     directions
//
// An editor API is served under a path prefix (default "/_btp"):
//
//	POST /_btp/decode       raw batch    -> rendered JSON
//	POST /_btp/encode       JSON text    -> raw batch (422 on failure)
//	GET  /_btp/preferences  {"useWebSocket": false}
//	PUT  /_btp/preferences  {"useWebSocket": true}
//	GET  /_btp/healthz
//	GET  /_btp/metrics      Prometheus exposition, when metrics are enabled
package proxy
