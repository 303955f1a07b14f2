package blazorpack

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueKind is the runtime tag of a Value.
type ValueKind int

// Value kinds. OpaqueValue carries anything the codec does not model directly
// and is passed through the generic MessagePack encoder.
const (
	OpaqueValue ValueKind = iota
	BoolValue
	StringValue
	IntValue
	FloatValue
	ArrayValue
	BinaryValue
)

// String returns the kind name.
func (k ValueKind) String() string {
	switch k {
	case OpaqueValue:
		return "opaque"
	case BoolValue:
		return "bool"
	case StringValue:
		return "string"
	case IntValue:
		return "int"
	case FloatValue:
		return "float"
	case ArrayValue:
		return "array"
	case BinaryValue:
		return "binary"
	default:
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
}

// Value is one argument, stream item or completion result.
//
// Only the field matching Kind is meaningful. An ArrayValue holds compact JSON
// array text in Str and travels on the wire as that string. A BinaryValue
// holds raw bytes plus the declared header length.
type Value struct {
	Kind         ValueKind
	Bool         bool
	Str          string
	Int          int64
	Float        float64
	Binary       []byte
	BinaryHeader int
	Opaque       any
}

// NullString is the textual stand-in for a MessagePack nil.
const NullString = "null"

// BoolOf returns a boolean Value.
func BoolOf(b bool) Value { return Value{Kind: BoolValue, Bool: b} }

// StringOf returns a string Value.
func StringOf(s string) Value { return Value{Kind: StringValue, Str: s} }

// IntOf returns an integer Value.
func IntOf(n int64) Value { return Value{Kind: IntValue, Int: n} }

// FloatOf returns a floating point Value.
func FloatOf(f float64) Value { return Value{Kind: FloatValue, Float: f} }

// Null returns the Value that encodes as MessagePack nil.
func Null() Value { return StringOf(NullString) }

// ArrayOf returns an array Value from JSON array text. The text is compacted.
func ArrayOf(text string) (Value, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(text)); err != nil {
		return Value{}, err
	}
	if buf.Len() == 0 || buf.Bytes()[0] != '[' {
		return Value{}, fmt.Errorf("blazorpack: %q is not a JSON array", text)
	}
	return Value{Kind: ArrayValue, Str: buf.String()}, nil
}

// BinaryOf returns a binary Value whose header matches len(b).
func BinaryOf(b []byte) Value {
	return Value{Kind: BinaryValue, Binary: b, BinaryHeader: len(b)}
}

// OpaqueOf returns a Value passed through the generic encoder.
func OpaqueOf(v any) Value { return Value{Kind: OpaqueValue, Opaque: v} }

// IsNull reports whether v encodes as nil.
func (v Value) IsNull() bool {
	switch v.Kind {
	case StringValue:
		return strings.EqualFold(v.Str, NullString)
	case OpaqueValue:
		return v.Opaque == nil
	}
	return false
}

// binaryJSON is the structured form of a BinaryValue.
type binaryJSON struct {
	BinaryHeader int    `json:"BinaryHeader"`
	BinaryBytes  string `json:"BinaryBytes"`
}

// MarshalJSON renders v in its JSON form. HTML characters are not escaped.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case BoolValue:
		return strconv.AppendBool(nil, v.Bool), nil
	case StringValue:
		return marshalNoEscape(v.Str)
	case IntValue:
		return strconv.AppendInt(nil, v.Int, 10), nil
	case FloatValue:
		return formatFloat(v.Float), nil
	case ArrayValue:
		if !json.Valid([]byte(v.Str)) {
			return nil, fmt.Errorf("blazorpack: invalid array text %q", v.Str)
		}
		return []byte(v.Str), nil
	case BinaryValue:
		return marshalNoEscape(binaryJSON{
			BinaryHeader: v.BinaryHeader,
			BinaryBytes:  strings.ToUpper(hex.EncodeToString(v.Binary)),
		})
	default:
		return marshalNoEscape(jsonSafe(v.Opaque))
	}
}

// UnmarshalJSON parses an argument-position JSON value.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := parseArgument(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func marshalNoEscape(x any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(x); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// formatFloat always produces a decimal point or exponent so the value parses
// back as a float. Non-finite values have no JSON number form and are quoted.
func formatFloat(f float64) []byte {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.AppendQuote(nil, strconv.FormatFloat(f, 'g', -1, 64))
	}
	b := strconv.AppendFloat(nil, f, 'g', -1, 64)
	if !bytes.ContainsAny(b, ".eE") {
		b = append(b, '.', '0')
	}
	return b
}

// isIntegerLiteral reports whether a JSON number literal has no fraction or
// exponent part.
func isIntegerLiteral(num []byte) bool {
	return !bytes.ContainsAny(num, ".eE")
}

// parseArgument converts a JSON argument into a Value. Objects carrying both
// BinaryHeader and BinaryBytes become binary values; other objects are opaque.
func parseArgument(raw json.RawMessage) (Value, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Value{}, ErrInvalidJSON
	}
	switch raw[0] {
	case 'n':
		return Null(), nil
	case 't', 'f':
		return parseBool(raw)
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}, err
		}
		return StringOf(s), nil
	case '[':
		return ArrayOf(string(raw))
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return Value{}, err
		}
		header, hasHeader := fields["BinaryHeader"]
		payload, hasPayload := fields["BinaryBytes"]
		if hasHeader && hasPayload {
			return parseBinary(header, payload)
		}
		return parseOpaque(raw)
	default:
		return parseNumber(raw)
	}
}

// parseScalar converts a StreamItem item or Completion result. Booleans,
// strings, numbers and binary objects are modelled; other arrays and objects
// become opaque values.
func parseScalar(raw json.RawMessage) (Value, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Value{}, ErrInvalidJSON
	}
	switch raw[0] {
	case 'n':
		return Null(), nil
	case 't', 'f':
		return parseBool(raw)
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}, err
		}
		return StringOf(s), nil
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return Value{}, err
		}
		header, hasHeader := fields["BinaryHeader"]
		payload, hasPayload := fields["BinaryBytes"]
		if hasHeader && hasPayload && len(fields) == 2 {
			return parseBinary(header, payload)
		}
		return parseOpaque(raw)
	case '[':
		return parseOpaque(raw)
	default:
		return parseNumber(raw)
	}
}

func parseBool(raw json.RawMessage) (Value, error) {
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return Value{}, err
	}
	return BoolOf(b), nil
}

func parseNumber(raw json.RawMessage) (Value, error) {
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return Value{}, err
	}
	if isIntegerLiteral(raw) {
		if n, err := num.Int64(); err == nil {
			return IntOf(n), nil
		}
		if u, err := strconv.ParseUint(num.String(), 10, 64); err == nil {
			return OpaqueOf(u), nil
		}
	}
	f, err := num.Float64()
	if err != nil {
		return Value{}, err
	}
	return FloatOf(f), nil
}

func parseBinary(header, payload json.RawMessage) (Value, error) {
	const variant = "InvocationMessage"

	if !isIntegerLiteral(header) {
		return Value{}, invalidField(variant, "BinaryHeader", "an integer")
	}
	var n int
	if err := json.Unmarshal(header, &n); err != nil || n < 0 {
		return Value{}, invalidField(variant, "BinaryHeader", "a non-negative integer")
	}
	var text string
	if err := json.Unmarshal(payload, &text); err != nil {
		return Value{}, invalidField(variant, "BinaryBytes", "a hex string")
	}
	b, err := hex.DecodeString(text)
	if err != nil {
		return Value{}, invalidField(variant, "BinaryBytes", "a hex string")
	}
	if n != len(b) {
		return Value{}, &FieldError{
			Variant: variant,
			Field:   "BinaryHeader",
			Reason:  fmt.Sprintf("header %d does not match %d payload bytes", n, len(b)),
			Err:     ErrInvalidFieldType,
		}
	}
	return Value{Kind: BinaryValue, Binary: b, BinaryHeader: n}, nil
}

func parseOpaque(raw json.RawMessage) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var x any
	if err := dec.Decode(&x); err != nil {
		return Value{}, err
	}
	return OpaqueOf(fromJSON(x)), nil
}

// fromJSON replaces json.Number with int64 or float64 so integers keep their
// MessagePack integer encoding inside opaque values. Nested binary objects
// become []byte.
func fromJSON(x any) any {
	switch t := x.(type) {
	case json.Number:
		if isIntegerLiteral([]byte(t)) {
			if n, err := t.Int64(); err == nil {
				return n
			}
		}
		f, _ := t.Float64()
		return f
	case []any:
		for i := range t {
			t[i] = fromJSON(t[i])
		}
		return t
	case map[string]any:
		if b, ok := binaryFromJSON(t); ok {
			return b
		}
		for k := range t {
			t[k] = fromJSON(t[k])
		}
		return t
	default:
		return x
	}
}

// binaryFromJSON reports whether m is exactly a BinaryHeader/BinaryBytes pair
// with a matching length, and returns its bytes.
func binaryFromJSON(m map[string]any) ([]byte, bool) {
	if len(m) != 2 {
		return nil, false
	}
	header, ok := m["BinaryHeader"].(json.Number)
	if !ok || !isIntegerLiteral([]byte(header)) {
		return nil, false
	}
	n, err := header.Int64()
	if err != nil {
		return nil, false
	}
	text, ok := m["BinaryBytes"].(string)
	if !ok {
		return nil, false
	}
	b, err := hex.DecodeString(text)
	if err != nil || int64(len(b)) != n {
		return nil, false
	}
	return b, true
}

// jsonSafe rewrites decoded MessagePack values that encoding/json cannot
// marshal: maps with non-string keys and raw byte slices.
func jsonSafe(x any) any {
	switch t := x.(type) {
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = jsonSafe(val)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = jsonSafe(val)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i := range t {
			s[i] = jsonSafe(t[i])
		}
		return s
	case []byte:
		return binaryJSON{BinaryHeader: len(t), BinaryBytes: strings.ToUpper(hex.EncodeToString(t))}
	case float32:
		if math.IsNaN(float64(t)) || math.IsInf(float64(t), 0) {
			return strconv.FormatFloat(float64(t), 'g', -1, 32)
		}
		return t
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return strconv.FormatFloat(t, 'g', -1, 64)
		}
		return t
	default:
		return x
	}
}
