package blazorpack

import (
	"encoding/json"
	"fmt"
)

// MessageType is the SignalR hub message type as it appears on the wire.
type MessageType int

// Hub message types.
const (
	TypeInvocation       MessageType = 1
	TypeStreamItem       MessageType = 2
	TypeCompletion       MessageType = 3
	TypeStreamInvocation MessageType = 4
	TypeCancelInvocation MessageType = 5
	TypePing             MessageType = 6
	TypeClose            MessageType = 7
)

// String returns the hub protocol name of the type.
func (t MessageType) String() string {
	switch t {
	case TypeInvocation:
		return "Invocation"
	case TypeStreamItem:
		return "StreamItem"
	case TypeCompletion:
		return "Completion"
	case TypeStreamInvocation:
		return "StreamInvocation"
	case TypeCancelInvocation:
		return "CancelInvocation"
	case TypePing:
		return "Ping"
	case TypeClose:
		return "Close"
	default:
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
}

// Kind identifies which variant a message belongs to.
type Kind int

// Message variants. KindNone marks a frame that carries no message.
const (
	KindNone Kind = iota
	KindInvocation
	KindStreamItem
	KindCompletion
	KindCancelInvocation
	KindPing
	KindClose
	KindDisplayError
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindInvocation:
		return "InvocationMessage"
	case KindStreamItem:
		return "StreamItemMessage"
	case KindCompletion:
		return "CompletionMessage"
	case KindCancelInvocation:
		return "CancelInvocationMessage"
	case KindPing:
		return "PingMessage"
	case KindClose:
		return "CloseMessage"
	case KindDisplayError:
		return "DisplayErrorMessage"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// KindOf maps a message type to its variant. Types 1 and 4 share the
// invocation layout; unrecognized types fall back to it as well.
func KindOf(t MessageType) Kind {
	switch t {
	case TypeStreamItem:
		return KindStreamItem
	case TypeCompletion:
		return KindCompletion
	case TypeCancelInvocation:
		return KindCancelInvocation
	case TypePing:
		return KindPing
	case TypeClose:
		return KindClose
	default:
		return KindInvocation
	}
}

// Message is one decoded hub message. The set of implementations is closed.
type Message interface {
	Kind() Kind
	message()
}

// Invocation asks the peer to run Target with Arguments. It covers both
// Invocation (1) and StreamInvocation (4).
type Invocation struct {
	MessageType  MessageType     `json:"MessageType"`
	Headers      int             `json:"Headers"`
	InvocationID *string         `json:"InvocationId,omitempty"`
	Target       string          `json:"Target"`
	Arguments    []Value         `json:"Arguments"`
	StreamIDs    json.RawMessage `json:"StreamIds,omitempty"`
}

// StreamItem carries one item of a server-to-client stream.
type StreamItem struct {
	MessageType  MessageType `json:"MessageType"`
	Headers      int         `json:"Headers"`
	InvocationID *string     `json:"InvocationId,omitempty"`
	Item         Value       `json:"Item"`
}

// Result kinds carried by a Completion.
const (
	ResultError   = 1
	ResultVoid    = 2
	ResultNonVoid = 3
)

// Completion ends an invocation. ResultKind 1 carries an error string in
// Result, 2 carries nothing and 3 carries the return value.
type Completion struct {
	MessageType  MessageType `json:"MessageType"`
	Headers      int         `json:"Headers"`
	InvocationID *string     `json:"InvocationId,omitempty"`
	ResultKind   int         `json:"ResultKind"`
	Result       *Value      `json:"Result,omitempty"`
}

// CancelInvocation cancels a streaming invocation.
type CancelInvocation struct {
	MessageType  MessageType `json:"MessageType"`
	Headers      int         `json:"Headers"`
	InvocationID *string     `json:"InvocationId,omitempty"`
}

// Ping is a keep-alive.
type Ping struct {
	MessageType MessageType `json:"MessageType"`
}

// Close terminates the connection. An Error of "null" is written as nil.
type Close struct {
	MessageType    MessageType `json:"MessageType"`
	Error          string      `json:"Error"`
	AllowReconnect *bool       `json:"AllowReconnect,omitempty"`
}

// DisplayErrorText is the message shown when a batch cannot be decoded.
const DisplayErrorText = "Message is incomplete or incompatible"

// DisplayError stands in for a batch that failed to decode. It renders as
// {"BlazorTrafficProcessor Error": "..."} and cannot be encoded.
type DisplayError struct {
	Text string `json:"BlazorTrafficProcessor Error"`
}

func (*Invocation) Kind() Kind       { return KindInvocation }
func (*StreamItem) Kind() Kind       { return KindStreamItem }
func (*Completion) Kind() Kind       { return KindCompletion }
func (*CancelInvocation) Kind() Kind { return KindCancelInvocation }
func (*Ping) Kind() Kind             { return KindPing }
func (*Close) Kind() Kind            { return KindClose }
func (*DisplayError) Kind() Kind     { return KindDisplayError }

func (*Invocation) message()       {}
func (*StreamItem) message()       {}
func (*Completion) message()       {}
func (*CancelInvocation) message() {}
func (*Ping) message()             {}
func (*Close) message()            {}
func (*DisplayError) message()     {}

// placeholder returns the single-element result used for undecodable batches.
func placeholder() []Message {
	return []Message{&DisplayError{Text: DisplayErrorText}}
}

// String returns a pointer to s, for InvocationID fields.
func String(s string) *string { return &s }

// Bool returns a pointer to b, for AllowReconnect fields.
func Bool(b bool) *bool { return &b }
