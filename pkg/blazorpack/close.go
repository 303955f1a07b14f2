package blazorpack

import (
	"log/slog"
	"strings"
)

// Close array lengths, with and without AllowReconnect.
const (
	closeReconnectArrayLen = 3
	closeArrayLen          = 2
)

var closeVariant = &variant{
	kind:   KindClose,
	name:   KindClose.String(),
	parse:  parseClose,
	check:  checkClose,
	encode: encodeClose,
	decode: decodeClose,
}

func parseClose(o object) (Message, error) {
	name := KindClose.String()

	if err := o.require(name, "MessageType", "Error"); err != nil {
		return nil, err
	}
	t, err := o.int(name, "MessageType")
	if err != nil {
		return nil, err
	}
	m := &Close{MessageType: MessageType(t), Error: NullString}
	if !o.isNull("Error") {
		if m.Error, err = o.string(name, "Error"); err != nil {
			return nil, err
		}
	}
	if m.AllowReconnect, err = o.optBool(name, "AllowReconnect"); err != nil {
		return nil, err
	}
	return m, nil
}

func checkClose(m Message) error {
	return checkType(KindClose, m.(*Close).MessageType)
}

func encodeClose(p *packer, m Message) error {
	c := m.(*Close)
	n := closeArrayLen
	if c.AllowReconnect != nil {
		n = closeReconnectArrayLen
	}
	if err := p.arrayLen(n); err != nil {
		return err
	}
	if err := p.int(int64(c.MessageType)); err != nil {
		return err
	}
	if strings.EqualFold(c.Error, NullString) {
		if err := p.nil(); err != nil {
			return err
		}
	} else if err := p.string(c.Error); err != nil {
		return err
	}
	if c.AllowReconnect != nil {
		return p.bool(*c.AllowReconnect)
	}
	return nil
}

func decodeClose(u *unpacker, h frameHeader, _ *slog.Logger) (Message, error) {
	m := &Close{MessageType: h.msgType, Error: NullString}
	if h.has(2, u) {
		s, err := u.optString()
		if err != nil {
			return nil, err
		}
		if s != nil {
			m.Error = *s
		}
	}
	if h.has(3, u) {
		b, err := u.bool()
		if err != nil {
			return nil, err
		}
		m.AllowReconnect = &b
	}
	return m, nil
}
