// Package blazorpack implements the BlazorPack codec: the MessagePack flavour of
// the SignalR Hub Protocol spoken by Blazor Server circuits.
//
// It converts between the binary wire format and a JSON document that a human
// can read, edit and hand back, without breaking framing or type fidelity.
//
// # Wire Format
//
// A batch is zero or more frames laid end to end. Every frame is a varint
// length prefix followed by exactly that many bytes of MessagePack:
//
//	┌──────────────┬────────────────────────────────────────┐
//	│ Length       │ Payload                                │
//	│ (varint, ≤5) │ (Length bytes, MessagePack array)      │
//	└──────────────┴────────────────────────────────────────┘
//
// The payload is a positional array whose second element (after the array
// header) is the message type:
//
//	Invocation        [1|4, {}, id|nil, target, [args...]] (+ str StreamIds)
//	StreamItem        [2, {}, id|nil, item]
//	Completion        [3, {}, id|nil, kind, result?]
//	CancelInvocation  [5, {}, id|nil]
//	Ping              6
//	Close             [7, error|nil, allowReconnect?]
//
// The headers map is always written empty. Ping is written as the bare type
// integer, and decoding accepts bare integers for every type.
//
// # JSON Form
//
// Decoding renders one object per message, indented with three spaces and
// separated by ",\r\n":
//
//	[{
//	   "MessageType": 1,
//	   "Headers": 0,
//	   "Target": "BeginInvokeDotNetFromJS",
//	   "Arguments": ["1", "null", "DispatchEventAsync", 1, [{"id":3}]]
//	}]
//
// Argument values keep their wire type: JSON booleans, strings, integers and
// floats map to the MessagePack kinds of the same name, the string "null"
// (any case) maps to nil, JSON arrays travel as their string form, and binary
// payloads appear as {"BinaryHeader": n, "BinaryBytes": "<HEX>"}.
//
// # Error Recovery
//
// Decoding is all or nothing per batch. Any malformed frame replaces the whole
// result with a single placeholder message; see DecodeBatch. Encoding refuses
// to produce partial output; see Pack.
//
// # Usage
//
//	c := blazorpack.New(blazorpack.WithLogger(logger))
//
//	text := c.Decode(body)       // raw bytes -> JSON text
//	raw, err := c.Encode(edited) // JSON text -> raw bytes
//	if err != nil {
//	    // Handle error
//	}
//
// A Codec holds no mutable state and is safe for concurrent use.
package blazorpack
