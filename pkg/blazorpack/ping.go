package blazorpack

import "log/slog"

// Ping is written as the bare type integer.
var pingVariant = &variant{
	kind:   KindPing,
	name:   KindPing.String(),
	parse:  parsePing,
	check:  checkPing,
	encode: encodePing,
	decode: decodePing,
}

func parsePing(o object) (Message, error) {
	name := KindPing.String()

	if err := o.require(name, "MessageType"); err != nil {
		return nil, err
	}
	t, err := o.int(name, "MessageType")
	if err != nil {
		return nil, err
	}
	return &Ping{MessageType: MessageType(t)}, nil
}

func checkPing(m Message) error {
	return checkType(KindPing, m.(*Ping).MessageType)
}

func encodePing(p *packer, m Message) error {
	return p.int(int64(m.(*Ping).MessageType))
}

func decodePing(_ *unpacker, h frameHeader, _ *slog.Logger) (Message, error) {
	return &Ping{MessageType: h.msgType}, nil
}
