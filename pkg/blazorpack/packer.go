package blazorpack

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// packer writes MessagePack tokens for a single frame payload.
// Integers use the most compact encoding; map keys of opaque values are
// sorted so output is deterministic.
type packer struct {
	buf bytes.Buffer
	enc *msgpack.Encoder
}

func newPacker() *packer {
	p := &packer{}
	p.enc = msgpack.NewEncoder(&p.buf)
	p.enc.UseCompactInts(true)
	p.enc.SetSortMapKeys(true)
	return p
}

// Bytes returns the payload written so far.
func (p *packer) Bytes() []byte {
	return p.buf.Bytes()
}

// Len returns the number of bytes written so far.
func (p *packer) Len() int {
	return p.buf.Len()
}

func (p *packer) arrayLen(n int) error { return p.enc.EncodeArrayLen(n) }
func (p *packer) mapLen(n int) error   { return p.enc.EncodeMapLen(n) }
func (p *packer) nil() error           { return p.enc.EncodeNil() }
func (p *packer) string(s string) error {
	return p.enc.EncodeString(s)
}
func (p *packer) int(n int64) error { return p.enc.EncodeInt(n) }
func (p *packer) bool(b bool) error { return p.enc.EncodeBool(b) }

// optString writes s, or nil when s is absent.
func (p *packer) optString(s *string) error {
	if s == nil {
		return p.nil()
	}
	return p.string(*s)
}

// strHeader writes only a string length header. The caller appends the bytes.
func (p *packer) strHeader(n int) error {
	switch {
	case n < 32:
		p.buf.WriteByte(msgpcode.FixedStrLow | byte(n))
	case n <= math.MaxUint8:
		p.buf.Write([]byte{msgpcode.Str8, byte(n)})
	case n <= math.MaxUint16:
		p.buf.Write([]byte{msgpcode.Str16, byte(n >> 8), byte(n)})
	default:
		p.buf.Write([]byte{msgpcode.Str32, byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)})
	}
	return nil
}

// argument writes an invocation argument by its runtime tag.
func (p *packer) argument(v Value) error {
	switch v.Kind {
	case BoolValue:
		return p.bool(v.Bool)
	case StringValue:
		if v.IsNull() {
			return p.nil()
		}
		return p.string(v.Str)
	case IntValue:
		return p.int(v.Int)
	case FloatValue:
		return p.enc.EncodeFloat64(v.Float)
	case ArrayValue:
		return p.string(v.Str)
	case BinaryValue:
		if err := p.enc.EncodeBytesLen(v.BinaryHeader); err != nil {
			return err
		}
		_, err := p.buf.Write(v.Binary)
		return err
	default:
		return p.opaque(v.Opaque)
	}
}

// scalar writes a stream item or completion result. Only booleans, strings
// and numbers are written natively.
func (p *packer) scalar(v Value) error {
	switch v.Kind {
	case BoolValue, StringValue, IntValue, FloatValue:
		return p.argument(v)
	case ArrayValue:
		var x any
		if err := json.Unmarshal([]byte(v.Str), &x); err != nil {
			return err
		}
		return p.opaque(x)
	case BinaryValue:
		return p.enc.EncodeBytes(v.Binary)
	default:
		return p.opaque(v.Opaque)
	}
}

func (p *packer) opaque(x any) error {
	if x == nil {
		return p.nil()
	}
	return p.enc.Encode(x)
}
