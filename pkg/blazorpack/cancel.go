package blazorpack

import "log/slog"

const cancelInvocationArrayLen = 3

var cancelInvocationVariant = &variant{
	kind:   KindCancelInvocation,
	name:   KindCancelInvocation.String(),
	parse:  parseCancelInvocation,
	check:  checkCancelInvocation,
	encode: encodeCancelInvocation,
	decode: decodeCancelInvocation,
}

func parseCancelInvocation(o object) (Message, error) {
	name := KindCancelInvocation.String()

	if err := o.require(name, "MessageType", "Headers"); err != nil {
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
	return &CancelInvocation{
		MessageType:  MessageType(t),
		Headers:      headers,
		InvocationID: id,
	}, nil
}

func checkCancelInvocation(m Message) error {
	return checkType(KindCancelInvocation, m.(*CancelInvocation).MessageType)
}

func encodeCancelInvocation(p *packer, m Message) error {
	c := m.(*CancelInvocation)
	if err := p.arrayLen(cancelInvocationArrayLen); err != nil {
		return err
	}
	if err := p.int(int64(c.MessageType)); err != nil {
		return err
	}
	if err := p.mapLen(0); err != nil {
		return err
	}
	return p.optString(c.InvocationID)
}

func decodeCancelInvocation(u *unpacker, h frameHeader, logger *slog.Logger) (Message, error) {
	headers, err := u.headers(logger)
	if err != nil {
		return nil, err
	}
	m := &CancelInvocation{MessageType: h.msgType, Headers: headers}
	if u.remaining() > 0 {
		id, err := u.optString()
		if err != nil {
			return nil, err
		}
		m.InvocationID = id
	}
	return m, nil
}
