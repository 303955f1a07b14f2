package blazorpack

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"
)

func TestValueMarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"bool", BoolOf(true), `true`},
		{"string", StringOf("a<b>&c"), `"a<b>&c"`},
		{"null", Null(), `"null"`},
		{"int", IntOf(-7), `-7`},
		{"float_integral", FloatOf(2), `2.0`},
		{"float_fraction", FloatOf(0.25), `0.25`},
		{"float_exponent", FloatOf(1e21), `1e+21`},
		{"float_nan", FloatOf(math.NaN()), `"NaN"`},
		{"array", Value{Kind: ArrayValue, Str: `[1,"x"]`}, `[1,"x"]`},
		{"binary", BinaryOf([]byte{0x0A, 0xFF}), `{"BinaryHeader":2,"BinaryBytes":"0AFF"}`},
		{"opaque_map", OpaqueOf(map[string]any{"k": []any{int64(1)}}), `{"k":[1]}`},
		{"opaque_untyped_map", OpaqueOf(map[any]any{int64(1): "v"}), `{"1":"v"}`},
		{"opaque_nil", OpaqueOf(nil), `null`},
		{"opaque_bytes", OpaqueOf(map[string]any{"k": []byte{0xAB}}), `{"k":{"BinaryHeader":1,"BinaryBytes":"AB"}}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.value.MarshalJSON()
			if err != nil {
				t.Fatalf("MarshalJSON error: %v", err)
			}
			if string(got) != tc.want {
				t.Errorf("MarshalJSON = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestParseArgument(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Value
	}{
		{"true", `true`, BoolOf(true)},
		{"string", `"hi"`, StringOf("hi")},
		{"null", `null`, Null()},
		{"int", `42`, IntOf(42)},
		{"negative_int", `-3`, IntOf(-3)},
		{"float", `1.0`, FloatOf(1)},
		{"exponent", `1e3`, FloatOf(1000)},
		{"huge_unsigned", `18446744073709551615`, OpaqueOf(uint64(math.MaxUint64))},
		{"array", `[1, [2, 3]]`, Value{Kind: ArrayValue, Str: `[1,[2,3]]`}},
		{"binary", `{"BinaryHeader":1,"BinaryBytes":"ff"}`, Value{Kind: BinaryValue, Binary: []byte{0xFF}, BinaryHeader: 1}},
		{"object", `{"a":1,"b":1.5}`, OpaqueOf(map[string]any{"a": int64(1), "b": 1.5})},
		{"object_missing_bytes", `{"BinaryHeader":1}`, OpaqueOf(map[string]any{"BinaryHeader": int64(1)})},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseArgument(json.RawMessage(tc.json))
			if err != nil {
				t.Fatalf("parseArgument error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("parseArgument(%s) = %#v, want %#v", tc.json, got, tc.want)
			}
		})
	}
}

func TestParseScalar(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Value
	}{
		{"string", `"x"`, StringOf("x")},
		{"int", `5`, IntOf(5)},
		{"array_is_opaque", `[1]`, OpaqueOf([]any{int64(1)})},
		{"binary_object", `{"BinaryHeader":2,"BinaryBytes":"ff00"}`, BinaryOf([]byte{0xFF, 0x00})},
		{"binary_object_with_extra_field", `{"BinaryHeader":1,"BinaryBytes":"ff","x":1}`,
			OpaqueOf(map[string]any{"BinaryHeader": int64(1), "BinaryBytes": "ff", "x": int64(1)})},
		{"nested_binary_object", `{"k":{"BinaryHeader":1,"BinaryBytes":"0a"}}`,
			OpaqueOf(map[string]any{"k": []byte{0x0A}})},
		{"nested_length_mismatch", `[{"BinaryHeader":2,"BinaryBytes":"0a"}]`,
			OpaqueOf([]any{map[string]any{"BinaryHeader": int64(2), "BinaryBytes": "0a"}})},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseScalar(json.RawMessage(tc.json))
			if err != nil {
				t.Fatalf("parseScalar error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("parseScalar(%s) = %#v, want %#v", tc.json, got, tc.want)
			}
		})
	}
}

func TestValueUnmarshalJSON(t *testing.T) {
	var args []Value
	if err := json.Unmarshal([]byte(`[true, "null", 3, [1]]`), &args); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	want := []Value{BoolOf(true), Null(), IntOf(3), {Kind: ArrayValue, Str: "[1]"}}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("Unmarshal = %#v, want %#v", args, want)
	}
}

func TestValueIsNull(t *testing.T) {
	tests := []struct {
		value Value
		want  bool
	}{
		{StringOf("null"), true},
		{StringOf("NuLL"), true},
		{StringOf("nil"), false},
		{OpaqueOf(nil), true},
		{IntOf(0), false},
	}
	for _, tc := range tests {
		if got := tc.value.IsNull(); got != tc.want {
			t.Errorf("%#v.IsNull() = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestArrayOfRejectsNonArrays(t *testing.T) {
	for _, text := range []string{`{}`, `1`, `[1`, ``} {
		if _, err := ArrayOf(text); err == nil {
			t.Errorf("ArrayOf(%q) succeeded, want error", text)
		}
	}
}
