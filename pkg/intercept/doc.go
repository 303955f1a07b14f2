// Package intercept decides which HTTP and WebSocket traffic carries BlazorPack
// and rewrites SignalR negotiation responses.
//
// Blazor Server traffic is recognised by the circuit URL ("_blazor?id=") or
// the X-Signalr-User-Agent header. JSON bodies and the JSON handshake record
// ("{...}" terminated by 0x1E) are never BlazorPack and are excluded.
//
// DowngradeNegotiate removes the WebSockets transport from a negotiate
// response so the browser falls back to Server-Sent Events or long polling,
// which an HTTP intercepting proxy can edit message by message.
package intercept
