package blazorpack

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
)

// invocationArrayLen is fixed; StreamIds travel after the array.
const invocationArrayLen = 5

var invocationVariant = &variant{
	kind:   KindInvocation,
	name:   KindInvocation.String(),
	parse:  parseInvocation,
	check:  checkInvocation,
	encode: encodeInvocation,
	decode: decodeInvocation,
}

func parseInvocation(o object) (Message, error) {
	name := KindInvocation.String()

	if err := o.require(name, "MessageType", "Headers", "Target", "Arguments"); err != nil {
		return nil, err
	}
	t, err := o.int(name, "MessageType")
	if err != nil {
		return nil, err
	}
	id, err := o.optString(name, "InvocationId")
	if err != nil {
		return nil, err
	}
	headers, err := o.int(name, "Headers")
	if err != nil {
		return nil, err
	}
	target, err := o.string(name, "Target")
	if err != nil {
		return nil, err
	}
	elems, err := o.array(name, "Arguments")
	if err != nil {
		return nil, err
	}
	args := make([]Value, 0, len(elems))
	for _, raw := range elems {
		v, err := parseArgument(raw)
		if err != nil {
			var fe *FieldError
			if errors.As(err, &fe) {
				return nil, err
			}
			return nil, invalidField(name, "Arguments", "an array of JSON values")
		}
		args = append(args, v)
	}

	m := &Invocation{
		MessageType:  MessageType(t),
		Headers:      headers,
		InvocationID: id,
		Target:       target,
		Arguments:    args,
	}
	if !o.isNull("StreamIds") {
		if _, err := o.array(name, "StreamIds"); err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, o["StreamIds"]); err != nil {
			return nil, invalidField(name, "StreamIds", "an array")
		}
		m.StreamIDs = buf.Bytes()
	}
	return m, nil
}

func checkInvocation(m Message) error {
	inv := m.(*Invocation)
	if err := checkType(KindInvocation, inv.MessageType); err != nil {
		return err
	}
	for _, arg := range inv.Arguments {
		if arg.Kind == BinaryValue && arg.BinaryHeader != len(arg.Binary) {
			return invalidField(KindInvocation.String(), "BinaryHeader", "the payload length")
		}
	}
	if len(inv.StreamIDs) > 0 {
		var ids []json.RawMessage
		if err := json.Unmarshal(inv.StreamIDs, &ids); err != nil {
			return invalidField(KindInvocation.String(), "StreamIds", "an array")
		}
	}
	return nil
}

func encodeInvocation(p *packer, m Message) error {
	inv := m.(*Invocation)
	if err := p.arrayLen(invocationArrayLen); err != nil {
		return err
	}
	if err := p.int(int64(inv.MessageType)); err != nil {
		return err
	}
	if err := p.mapLen(0); err != nil {
		return err
	}
	if err := p.optString(inv.InvocationID); err != nil {
		return err
	}
	if err := p.string(inv.Target); err != nil {
		return err
	}
	if err := p.arrayLen(len(inv.Arguments)); err != nil {
		return err
	}
	for _, arg := range inv.Arguments {
		if err := p.argument(arg); err != nil {
			return err
		}
	}
	if len(inv.StreamIDs) > 0 {
		if err := p.strHeader(len(inv.StreamIDs)); err != nil {
			return err
		}
		p.buf.Write(inv.StreamIDs)
	}
	return nil
}

func decodeInvocation(u *unpacker, h frameHeader, logger *slog.Logger) (Message, error) {
	headers, err := u.headers(logger)
	if err != nil {
		return nil, err
	}
	id, err := u.optString()
	if err != nil {
		return nil, err
	}
	target, err := u.string()
	if err != nil {
		return nil, err
	}
	n, err := u.arrayLen()
	if err != nil {
		return nil, err
	}
	if n > u.remaining() {
		return nil, ErrIncompleteMessage
	}
	args := make([]Value, 0, n)
	for i := 0; i < n; i++ {
		v, err := u.argument(logger)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	m := &Invocation{
		MessageType:  h.msgType,
		Headers:      headers,
		InvocationID: id,
		Target:       target,
		Arguments:    args,
	}
	if u.remaining() > 0 {
		ids, err := u.streamIDs(logger)
		if err != nil {
			return nil, err
		}
		m.StreamIDs = ids
	}
	return m, nil
}

// streamIDs reads trailing stream ids. They are either a string holding a
// JSON array, or a MessagePack array of strings.
func (u *unpacker) streamIDs(logger *slog.Logger) (json.RawMessage, error) {
	got, err := u.peek()
	if err != nil {
		return nil, err
	}
	switch got {
	case wireString:
		s, err := u.string()
		if err != nil {
			return nil, err
		}
		if v, err := ArrayOf(s); err == nil {
			return json.RawMessage(v.Str), nil
		}
		logger.Info("blazorpack: ignoring trailing string after invocation arguments")
		return nil, nil
	case wireArray:
		v, err := u.opaque()
		if err != nil {
			return nil, err
		}
		b, err := marshalNoEscape(jsonSafe(v.Opaque))
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		logger.Info("blazorpack: ignoring trailing value after invocation arguments", "wire", got.String())
		return nil, nil
	}
}
