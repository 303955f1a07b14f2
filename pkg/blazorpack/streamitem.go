package blazorpack

import "log/slog"

const streamItemArrayLen = 4

var streamItemVariant = &variant{
	kind:   KindStreamItem,
	name:   KindStreamItem.String(),
	parse:  parseStreamItem,
	check:  checkStreamItem,
	encode: encodeStreamItem,
	decode: decodeStreamItem,
}

func parseStreamItem(o object) (Message, error) {
	name := KindStreamItem.String()

	if err := o.require(name, "MessageType", "Headers", "Item"); err != nil {
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
	item, err := parseScalar(o["Item"])
	if err != nil {
		return nil, invalidField(name, "Item", "a JSON value")
	}
	return &StreamItem{
		MessageType:  MessageType(t),
		Headers:      headers,
		InvocationID: id,
		Item:         item,
	}, nil
}

func checkStreamItem(m Message) error {
	return checkType(KindStreamItem, m.(*StreamItem).MessageType)
}

func encodeStreamItem(p *packer, m Message) error {
	si := m.(*StreamItem)
	if err := p.arrayLen(streamItemArrayLen); err != nil {
		return err
	}
	if err := p.int(int64(si.MessageType)); err != nil {
		return err
	}
	if err := p.mapLen(0); err != nil {
		return err
	}
	if err := p.optString(si.InvocationID); err != nil {
		return err
	}
	return p.scalar(si.Item)
}

func decodeStreamItem(u *unpacker, h frameHeader, logger *slog.Logger) (Message, error) {
	headers, err := u.headers(logger)
	if err != nil {
		return nil, err
	}
	id, err := u.optString()
	if err != nil {
		return nil, err
	}
	item, err := u.scalar()
	if err != nil {
		return nil, err
	}
	return &StreamItem{
		MessageType:  h.msgType,
		Headers:      headers,
		InvocationID: id,
		Item:         item,
	}, nil
}
