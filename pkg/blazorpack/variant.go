package blazorpack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
)

// frameHeader is the prefix every payload shares: the declared array length
// and the message type. count is -1 when the type integer appears without an
// enclosing array.
type frameHeader struct {
	count   int
	msgType MessageType
}

// headerless reports whether the payload had no array header.
func (h frameHeader) headerless() bool { return h.count < 0 }

// has reports whether the payload declares at least n elements, or, for a
// headerless payload, whether any bytes remain.
func (h frameHeader) has(n int, u *unpacker) bool {
	if h.headerless() {
		return u.remaining() > 0
	}
	return h.count >= n
}

// variant is one entry of the dispatch table.
type variant struct {
	kind Kind
	name string

	// parse validates a JSON object and converts it into a message.
	parse func(o object) (Message, error)

	// check validates a message before it is encoded.
	check func(m Message) error

	// encode writes the frame payload.
	encode func(p *packer, m Message) error

	// decode reads the rest of a payload after its frame header.
	decode func(u *unpacker, h frameHeader, logger *slog.Logger) (Message, error)
}

// variants is the dispatch table, indexed by Kind.
var variants = [...]*variant{
	KindInvocation:       invocationVariant,
	KindStreamItem:       streamItemVariant,
	KindCompletion:       completionVariant,
	KindCancelInvocation: cancelInvocationVariant,
	KindPing:             pingVariant,
	KindClose:            closeVariant,
}

func lookup(k Kind) (*variant, bool) {
	if k <= KindNone || int(k) >= len(variants) || variants[k] == nil {
		return nil, false
	}
	return variants[k], true
}

// checkType verifies that a message's declared type belongs to kind.
func checkType(kind Kind, t MessageType) error {
	if KindOf(t) != kind {
		return &FieldError{
			Variant: kind.String(),
			Field:   "MessageType",
			Reason:  fmt.Sprintf("type %d does not belong to %s", int(t), kind),
			Err:     ErrInvalidFieldType,
		}
	}
	return nil
}

// object is a structured message as parsed from JSON.
type object map[string]json.RawMessage

// has reports whether key is present.
func (o object) has(key string) bool {
	_, ok := o[key]
	return ok
}

// isNull reports whether key is absent or an explicit JSON null.
func (o object) isNull(key string) bool {
	raw, ok := o[key]
	return !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// require fails with ErrMissingField naming the first absent key.
func (o object) require(variant string, keys ...string) error {
	for _, k := range keys {
		if !o.has(k) {
			return missingField(variant, k, keys)
		}
	}
	return nil
}

func (o object) int(variant, key string) (int, error) {
	raw := bytes.TrimSpace(o[key])
	if len(raw) == 0 || !(raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9')) || !isIntegerLiteral(raw) {
		return 0, invalidField(variant, key, "an integer")
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, invalidField(variant, key, "an integer")
	}
	return n, nil
}

func (o object) string(variant, key string) (string, error) {
	raw := bytes.TrimSpace(o[key])
	if len(raw) == 0 || raw[0] != '"' {
		return "", invalidField(variant, key, "a string")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", invalidField(variant, key, "a string")
	}
	return s, nil
}

// optString returns nil when key is absent or null.
func (o object) optString(variant, key string) (*string, error) {
	if o.isNull(key) {
		return nil, nil
	}
	s, err := o.string(variant, key)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// optBool returns nil when key is absent or null.
func (o object) optBool(variant, key string) (*bool, error) {
	if o.isNull(key) {
		return nil, nil
	}
	var b bool
	raw := bytes.TrimSpace(o[key])
	if len(raw) == 0 || (raw[0] != 't' && raw[0] != 'f') {
		return nil, invalidField(variant, key, "a boolean")
	}
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, invalidField(variant, key, "a boolean")
	}
	return &b, nil
}

// array returns the elements of a JSON array field.
func (o object) array(variant, key string) ([]json.RawMessage, error) {
	raw := bytes.TrimSpace(o[key])
	if len(raw) == 0 || raw[0] != '[' {
		return nil, invalidField(variant, key, "an array")
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, invalidField(variant, key, "an array")
	}
	return elems, nil
}
