package blazorpack

import (
	"fmt"
	"log/slog"
)

// Completion array lengths, with and without a Result slot.
const (
	completionArrayLen     = 5
	completionVoidArrayLen = 4
)

var completionVariant = &variant{
	kind:   KindCompletion,
	name:   KindCompletion.String(),
	parse:  parseCompletion,
	check:  checkCompletion,
	encode: encodeCompletion,
	decode: decodeCompletion,
}

func parseCompletion(o object) (Message, error) {
	name := KindCompletion.String()

	if err := o.require(name, "MessageType", "Headers", "ResultKind"); err != nil {
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
	kind, err := o.int(name, "ResultKind")
	if err != nil {
		return nil, err
	}
	m := &Completion{
		MessageType:  MessageType(t),
		Headers:      headers,
		InvocationID: id,
		ResultKind:   kind,
	}
	if o.has("Result") {
		v, err := parseScalar(o["Result"])
		if err != nil {
			return nil, invalidField(name, "Result", "a JSON value")
		}
		m.Result = &v
	}
	return m, nil
}

func resultKindError(reason string) *FieldError {
	return &FieldError{
		Variant: KindCompletion.String(),
		Field:   "ResultKind",
		Reason:  reason,
		Err:     ErrInvalidResultKind,
	}
}

func checkCompletion(m Message) error {
	c := m.(*Completion)
	if err := checkType(KindCompletion, c.MessageType); err != nil {
		return err
	}
	switch c.ResultKind {
	case ResultError, ResultNonVoid:
		if c.Result == nil {
			return resultKindError(fmt.Sprintf("kind %d requires a Result", c.ResultKind))
		}
	case ResultVoid:
		if c.Result != nil {
			return resultKindError("kind 2 must not carry a Result")
		}
	default:
		return resultKindError(fmt.Sprintf("kind %d is not in [1,3]", c.ResultKind))
	}
	return nil
}

func encodeCompletion(p *packer, m Message) error {
	c := m.(*Completion)
	n := completionVoidArrayLen
	if c.Result != nil {
		n = completionArrayLen
	}
	if err := p.arrayLen(n); err != nil {
		return err
	}
	if err := p.int(int64(c.MessageType)); err != nil {
		return err
	}
	if err := p.mapLen(0); err != nil {
		return err
	}
	if err := p.optString(c.InvocationID); err != nil {
		return err
	}
	if err := p.int(int64(c.ResultKind)); err != nil {
		return err
	}
	if c.Result != nil {
		return p.scalar(*c.Result)
	}
	return nil
}

func decodeCompletion(u *unpacker, h frameHeader, logger *slog.Logger) (Message, error) {
	headers, err := u.headers(logger)
	if err != nil {
		return nil, err
	}
	id, err := u.optString()
	if err != nil {
		return nil, err
	}
	kind, err := u.int()
	if err != nil {
		return nil, err
	}
	m := &Completion{
		MessageType:  h.msgType,
		Headers:      headers,
		InvocationID: id,
		ResultKind:   int(kind),
	}
	if kind == ResultError || kind == ResultNonVoid {
		v, err := u.scalar()
		if err != nil {
			return nil, err
		}
		m.Result = &v
	}
	return m, nil
}
