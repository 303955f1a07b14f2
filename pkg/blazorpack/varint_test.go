package blazorpack

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestEncodeDecodeUvarint(t *testing.T) {
	tests := []struct {
		name  string
		value uint32
		bytes int // expected encoded length
	}{
		{"zero", 0, 1},
		{"one", 1, 1},
		{"max_1byte", 127, 1},
		{"min_2byte", 128, 2},
		{"max_2byte", 16383, 2},
		{"min_3byte", 16384, 3},
		{"min_4byte", 1 << 21, 4},
		{"min_5byte", 1 << 28, 5},
		{"max_uint32", math.MaxUint32, 5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buf := make([]byte, MaxVarintLen)
			n := EncodeUvarint(buf, tc.value)

			if n != tc.bytes {
				t.Errorf("EncodeUvarint(%d) = %d bytes, want %d", tc.value, n, tc.bytes)
			}
			if l := UvarintLen(tc.value); l != n {
				t.Errorf("UvarintLen(%d) = %d, want %d", tc.value, l, n)
			}

			decoded, read, err := DecodeUvarint(buf[:n])
			if err != nil {
				t.Fatalf("DecodeUvarint error: %v", err)
			}
			if read != n {
				t.Errorf("DecodeUvarint read %d bytes, want %d", read, n)
			}
			if decoded != tc.value {
				t.Errorf("DecodeUvarint = %d, want %d", decoded, tc.value)
			}
		})
	}
}

func TestUvarintKnownBytes(t *testing.T) {
	tests := []struct {
		value uint32
		want  []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xAC, 0x02}},
		{math.MaxUint32, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}},
	}

	for _, tc := range tests {
		got := AppendUvarint(nil, tc.value)
		if !bytes.Equal(got, tc.want) {
			t.Errorf("AppendUvarint(%d) = %x, want %x", tc.value, got, tc.want)
		}
	}
}

func TestDecodeUvarintTrailingBytes(t *testing.T) {
	v, n, err := DecodeUvarint([]byte{0x05, 0xAA, 0xBB})
	if err != nil {
		t.Fatalf("DecodeUvarint error: %v", err)
	}
	if v != 5 || n != 1 {
		t.Errorf("DecodeUvarint = (%d, %d), want (5, 1)", v, n)
	}
}

func TestDecodeUvarintErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrTruncatedVarint},
		{"continuation_only", []byte{0x80}, ErrTruncatedVarint},
		{"four_continuations", []byte{0xFF, 0xFF, 0xFF, 0xFF}, ErrTruncatedVarint},
		{"fifth_byte_too_big", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x10}, ErrVarintOverflow},
		{"fifth_byte_continues", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}, ErrVarintOverflow},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := DecodeUvarint(tc.data)
			if !errors.Is(err, tc.want) {
				t.Errorf("DecodeUvarint(%x) error = %v, want %v", tc.data, err, tc.want)
			}
		})
	}
}
