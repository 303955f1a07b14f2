package blazorpack

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// wireKind is the coarse type of the next MessagePack token.
type wireKind int

const (
	wireNil wireKind = iota
	wireBool
	wireInt
	wireFloat
	wireString
	wireBinary
	wireArray
	wireMap
	wireExt
	wireUnknown
)

func (k wireKind) String() string {
	switch k {
	case wireNil:
		return "nil"
	case wireBool:
		return "bool"
	case wireInt:
		return "int"
	case wireFloat:
		return "float"
	case wireString:
		return "string"
	case wireBinary:
		return "binary"
	case wireArray:
		return "array"
	case wireMap:
		return "map"
	case wireExt:
		return "ext"
	default:
		return "unknown"
	}
}

// classify maps a leading MessagePack byte to its wire kind.
func classify(c byte) wireKind {
	switch {
	case msgpcode.IsFixedNum(c):
		return wireInt
	case msgpcode.IsFixedMap(c):
		return wireMap
	case msgpcode.IsFixedArray(c):
		return wireArray
	case msgpcode.IsString(c):
		return wireString
	case msgpcode.IsBin(c):
		return wireBinary
	case msgpcode.IsExt(c):
		return wireExt
	}
	switch c {
	case msgpcode.Nil:
		return wireNil
	case msgpcode.False, msgpcode.True:
		return wireBool
	case msgpcode.Uint8, msgpcode.Uint16, msgpcode.Uint32, msgpcode.Uint64,
		msgpcode.Int8, msgpcode.Int16, msgpcode.Int32, msgpcode.Int64:
		return wireInt
	case msgpcode.Float, msgpcode.Double:
		return wireFloat
	case msgpcode.Array16, msgpcode.Array32:
		return wireArray
	case msgpcode.Map16, msgpcode.Map32:
		return wireMap
	}
	return wireUnknown
}

// unpacker reads MessagePack tokens from a single frame payload. Reading past
// the payload yields ErrIncompleteMessage; a token of the wrong kind yields
// ErrUnexpectedValueType.
type unpacker struct {
	r   *bytes.Reader
	dec *msgpack.Decoder
}

func newUnpacker(payload []byte) *unpacker {
	r := bytes.NewReader(payload)
	return &unpacker{r: r, dec: msgpack.NewDecoder(r)}
}

// remaining returns the number of unread payload bytes.
func (u *unpacker) remaining() int {
	return u.r.Len()
}

func (u *unpacker) fail(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return ErrIncompleteMessage
	case errors.Is(err, ErrIncompleteMessage), errors.Is(err, ErrUnexpectedValueType),
		errors.Is(err, ErrMalformedHeader):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrUnexpectedValueType, err)
	}
}

// peek returns the wire kind of the next token without consuming it.
func (u *unpacker) peek() (wireKind, error) {
	if u.remaining() == 0 {
		return wireUnknown, ErrIncompleteMessage
	}
	c, err := u.dec.PeekCode()
	if err != nil {
		return wireUnknown, u.fail(err)
	}
	return classify(c), nil
}

func (u *unpacker) expect(want wireKind) error {
	got, err := u.peek()
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: want %s, got %s", ErrUnexpectedValueType, want, got)
	}
	return nil
}

func (u *unpacker) arrayLen() (int, error) {
	got, err := u.peek()
	if err != nil {
		return 0, err
	}
	if got != wireArray {
		return 0, fmt.Errorf("%w: got %s", ErrMalformedHeader, got)
	}
	n, err := u.dec.DecodeArrayLen()
	return n, u.fail(err)
}

func (u *unpacker) mapLen() (int, error) {
	got, err := u.peek()
	if err != nil {
		return 0, err
	}
	if got != wireMap {
		return 0, fmt.Errorf("%w: got %s", ErrMalformedHeader, got)
	}
	n, err := u.dec.DecodeMapLen()
	return n, u.fail(err)
}

// headers reads the headers map. Entries are skipped; only the count is kept.
func (u *unpacker) headers(logger *slog.Logger) (int, error) {
	n, err := u.mapLen()
	if err != nil {
		return 0, err
	}
	if n != 0 {
		logger.Info("blazorpack: non-empty headers map", "entries", n)
	}
	for i := 0; i < 2*n; i++ {
		if err := u.dec.Skip(); err != nil {
			return 0, u.fail(err)
		}
	}
	return n, nil
}

func (u *unpacker) int() (int64, error) {
	if err := u.expect(wireInt); err != nil {
		return 0, err
	}
	n, err := u.dec.DecodeInt64()
	return n, u.fail(err)
}

func (u *unpacker) string() (string, error) {
	if err := u.expect(wireString); err != nil {
		return "", err
	}
	s, err := u.dec.DecodeString()
	return s, u.fail(err)
}

func (u *unpacker) bool() (bool, error) {
	if err := u.expect(wireBool); err != nil {
		return false, err
	}
	b, err := u.dec.DecodeBool()
	return b, u.fail(err)
}

// optString reads a string or nil.
func (u *unpacker) optString() (*string, error) {
	got, err := u.peek()
	if err != nil {
		return nil, err
	}
	if got == wireNil {
		return nil, u.fail(u.dec.DecodeNil())
	}
	s, err := u.string()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// integer reads any integer token. Unsigned values above MaxInt64 are kept
// opaque.
func (u *unpacker) integer() (Value, error) {
	c, err := u.dec.PeekCode()
	if err != nil {
		return Value{}, u.fail(err)
	}
	if c == msgpcode.Uint64 {
		n, err := u.dec.DecodeUint64()
		if err != nil {
			return Value{}, u.fail(err)
		}
		if n > math.MaxInt64 {
			return OpaqueOf(n), nil
		}
		return IntOf(int64(n)), nil
	}
	n, err := u.dec.DecodeInt64()
	return IntOf(n), u.fail(err)
}

// argument reads an invocation argument. NUL characters are stripped from
// strings, and a string that opens with '[' is read back as a JSON array,
// first with a closing bracket appended and then as is.
func (u *unpacker) argument(logger *slog.Logger) (Value, error) {
	got, err := u.peek()
	if err != nil {
		return Value{}, err
	}
	switch got {
	case wireNil:
		return Null(), u.fail(u.dec.DecodeNil())
	case wireBool:
		b, err := u.dec.DecodeBool()
		return BoolOf(b), u.fail(err)
	case wireInt:
		return u.integer()
	case wireFloat:
		f, err := u.dec.DecodeFloat64()
		return FloatOf(f), u.fail(err)
	case wireString:
		s, err := u.dec.DecodeString()
		if err != nil {
			return Value{}, u.fail(err)
		}
		s = strings.ReplaceAll(s, "\x00", "")
		if strings.HasPrefix(s, "[") {
			if v, err := ArrayOf(s + "]"); err == nil {
				return v, nil
			}
			if v, err := ArrayOf(s); err == nil {
				return v, nil
			}
		}
		return StringOf(s), nil
	case wireBinary:
		b, err := u.binary()
		if err != nil {
			return Value{}, err
		}
		return BinaryOf(b), nil
	default:
		logger.Info("blazorpack: passing argument through as opaque value", "wire", got.String())
		return u.opaque()
	}
}

// scalar reads a stream item or completion result.
func (u *unpacker) scalar() (Value, error) {
	got, err := u.peek()
	if err != nil {
		return Value{}, err
	}
	switch got {
	case wireNil:
		return Null(), u.fail(u.dec.DecodeNil())
	case wireBool:
		b, err := u.dec.DecodeBool()
		return BoolOf(b), u.fail(err)
	case wireString:
		s, err := u.dec.DecodeString()
		return StringOf(s), u.fail(err)
	case wireInt:
		return u.integer()
	case wireFloat:
		f, err := u.dec.DecodeFloat64()
		return FloatOf(f), u.fail(err)
	case wireBinary:
		b, err := u.binary()
		if err != nil {
			return Value{}, err
		}
		return BinaryOf(b), nil
	default:
		return u.opaque()
	}
}

// binary reads a bin token.
func (u *unpacker) binary() ([]byte, error) {
	n, err := u.dec.DecodeBytesLen()
	if err != nil {
		return nil, u.fail(err)
	}
	if n < 0 || n > u.remaining() {
		return nil, ErrIncompleteMessage
	}
	b := make([]byte, n)
	if err := u.dec.ReadFull(b); err != nil {
		return nil, u.fail(err)
	}
	return b, nil
}

func (u *unpacker) opaque() (Value, error) {
	x, err := u.tree(0)
	if err != nil {
		return Value{}, err
	}
	return OpaqueOf(x), nil
}

// maxTreeDepth bounds the nesting of opaque values.
const maxTreeDepth = 256

// tree reads any value. bin stays []byte, maps with only string keys become
// map[string]any and other maps map[any]any.
func (u *unpacker) tree(depth int) (any, error) {
	if depth > maxTreeDepth {
		return nil, fmt.Errorf("%w: nesting deeper than %d", ErrUnexpectedValueType, maxTreeDepth)
	}
	got, err := u.peek()
	if err != nil {
		return nil, err
	}
	switch got {
	case wireBinary:
		return u.binary()
	case wireArray:
		n, err := u.dec.DecodeArrayLen()
		if err != nil {
			return nil, u.fail(err)
		}
		if n < 0 || n > u.remaining() {
			return nil, ErrIncompleteMessage
		}
		s := make([]any, n)
		for i := range s {
			if s[i], err = u.tree(depth + 1); err != nil {
				return nil, err
			}
		}
		return s, nil
	case wireMap:
		return u.treeMap(depth)
	default:
		x, err := u.dec.DecodeInterfaceLoose()
		if err != nil {
			return nil, u.fail(err)
		}
		return fromWire(x), nil
	}
}

func (u *unpacker) treeMap(depth int) (any, error) {
	n, err := u.dec.DecodeMapLen()
	if err != nil {
		return nil, u.fail(err)
	}
	if n < 0 || 2*n > u.remaining() {
		return nil, ErrIncompleteMessage
	}
	keys := make([]any, 0, n)
	vals := make([]any, 0, n)
	strKeys := true
	for i := 0; i < n; i++ {
		k, err := u.tree(depth + 1)
		if err != nil {
			return nil, err
		}
		v, err := u.tree(depth + 1)
		if err != nil {
			return nil, err
		}
		switch t := k.(type) {
		case string:
		case []byte:
			k = string(t)
		case []any, map[string]any, map[any]any:
			k = fmt.Sprint(k)
			strKeys = false
		default:
			strKeys = false
		}
		keys = append(keys, k)
		vals = append(vals, v)
	}
	if strKeys {
		m := make(map[string]any, n)
		for i, k := range keys {
			m[k.(string)] = vals[i]
		}
		return m, nil
	}
	m := make(map[any]any, n)
	for i, k := range keys {
		m[k] = vals[i]
	}
	return m, nil
}

// fromWire converts unsigned integers that fit into int64, so opaque values
// compare equal to their parsed JSON form.
func fromWire(x any) any {
	if n, ok := x.(uint64); ok && n <= math.MaxInt64 {
		return int64(n)
	}
	return x
}
