package blazorpack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
)

// readFrameHeader reads the array header and type integer of a payload.
// A zero-length array yields count 0 and no type.
func readFrameHeader(u *unpacker) (frameHeader, error) {
	got, err := u.peek()
	if err != nil {
		return frameHeader{}, err
	}
	h := frameHeader{count: -1}
	switch got {
	case wireArray:
		if h.count, err = u.arrayLen(); err != nil {
			return frameHeader{}, err
		}
		if h.count == 0 {
			return h, nil
		}
	case wireInt:
	default:
		return frameHeader{}, fmt.Errorf("%w: got %s", ErrMalformedHeader, got)
	}
	t, err := u.int()
	if err != nil {
		return frameHeader{}, err
	}
	if t < math.MinInt32 || t > math.MaxInt32 {
		return frameHeader{}, fmt.Errorf("%w: message type %d", ErrUnexpectedValueType, t)
	}
	h.msgType = MessageType(t)
	return h, nil
}

// ClassifyBinary reports which variant a frame payload holds, without
// decoding the rest of it. rest is the part of payload after the type field.
// A zero-length array yields KindNone; such frames carry no message.
func ClassifyBinary(payload []byte) (kind Kind, t MessageType, rest []byte, err error) {
	u := newUnpacker(payload)
	h, err := readFrameHeader(u)
	if err != nil {
		return KindNone, 0, nil, err
	}
	rest = payload[len(payload)-u.remaining():]
	if h.count == 0 {
		return KindNone, 0, rest, nil
	}
	return KindOf(h.msgType), h.msgType, rest, nil
}

// ClassifyJSON reports which variant a structured message selects through
// its MessageType field.
func ClassifyJSON(message []byte) (Kind, error) {
	o, err := parseObject(message)
	if err != nil {
		return KindNone, err
	}
	return classifyObject(o)
}

func parseObject(message []byte) (object, error) {
	message = bytes.TrimSpace(message)
	if len(message) == 0 || message[0] != '{' {
		return nil, ErrInvalidJSON
	}
	var o object
	if err := json.Unmarshal(message, &o); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return o, nil
}

func classifyObject(o object) (Kind, error) {
	const name = "Message"
	if err := o.require(name, "MessageType"); err != nil {
		return KindNone, err
	}
	t, err := o.int(name, "MessageType")
	if err != nil {
		return KindNone, err
	}
	if t < math.MinInt32 || t > math.MaxInt32 {
		return KindNone, invalidField(name, "MessageType", "a 32-bit integer")
	}
	return KindOf(MessageType(t)), nil
}

// decodeFrame decodes one frame payload. It returns a nil message for a
// zero-length array.
func decodeFrame(payload []byte, logger *slog.Logger) (Message, error) {
	u := newUnpacker(payload)
	h, err := readFrameHeader(u)
	if err != nil {
		return nil, err
	}
	if h.count == 0 {
		return nil, nil
	}
	v, _ := lookup(KindOf(h.msgType))
	return v.decode(u, h, logger)
}

// parseMessage validates one JSON object and converts it into a message.
func parseMessage(raw []byte) (Message, error) {
	o, err := parseObject(raw)
	if err != nil {
		return nil, err
	}
	k, err := classifyObject(o)
	if err != nil {
		return nil, err
	}
	v, _ := lookup(k)
	m, err := v.parse(o)
	if err != nil {
		return nil, err
	}
	if err := v.check(m); err != nil {
		return nil, err
	}
	return m, nil
}

// appendFrame validates m and appends its length-prefixed frame to dst.
func appendFrame(dst []byte, m Message, maxFrameSize int) ([]byte, error) {
	if m == nil {
		return dst, fmt.Errorf("%w: nil message", ErrNotEncodable)
	}
	v, ok := lookup(m.Kind())
	if !ok {
		return dst, fmt.Errorf("%w: %s", ErrNotEncodable, m.Kind())
	}
	if err := v.check(m); err != nil {
		return dst, err
	}
	p := newPacker()
	if err := v.encode(p, m); err != nil {
		return dst, err
	}
	if p.Len() > maxFrameSize {
		return dst, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, p.Len())
	}
	dst = AppendUvarint(dst, uint32(p.Len()))
	return append(dst, p.Bytes()...), nil
}
