package blazorpack

import (
	"io"
	"log/slog"
	"math"
	"testing"
)

// FuzzUnpack tests that decoding arbitrary bytes doesn't panic.
func FuzzUnpack(f *testing.F) {
	f.Add([]byte{0x01, 0x06})
	f.Add([]byte{0x09, 0x95, 0x01, 0x80, 0xC0, 0xA3, 'F', 'o', 'o', 0x90})
	f.Add([]byte{0x04, 0x93, 0x07, 0xC0, 0xC3})
	f.Add([]byte{0x0A, 0x95, 0x03, 0x80, 0xC0, 0x01, 0xA4, 'b', 'o', 'o', 'm'})
	f.Add([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F})

	c := New(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	f.Fuzz(func(t *testing.T, data []byte) {
		msgs := c.DecodeBatch(data)
		if msgs == nil {
			t.Fatal("DecodeBatch returned nil")
		}
		_ = c.Decode(data)
	})
}

// FuzzEncode tests that encoding arbitrary text doesn't panic, and that
// accepted text survives a round trip.
func FuzzEncode(f *testing.F) {
	f.Add(`[{"MessageType":6}]`)
	f.Add(`[{"MessageType":1,"Headers":0,"Target":"Foo","Arguments":[1,"x",[2],{"BinaryHeader":1,"BinaryBytes":"00"}]}]`)
	f.Add(`[{"MessageType":3,"Headers":0,"ResultKind":1,"Result":"boom"}]`)

	c := New(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	f.Fuzz(func(t *testing.T, text string) {
		raw, err := c.Encode([]byte(text))
		if err != nil {
			return
		}
		if _, err := c.Unpack(raw); err != nil {
			t.Fatalf("Unpack(Encode(%q)) error: %v", text, err)
		}
	})
}

// FuzzUvarint tests that every uint32 survives a round trip in exactly
// UvarintLen bytes.
func FuzzUvarint(f *testing.F) {
	for _, v := range []uint32{0, 1, 127, 128, 16383, 16384, 1 << 21, 1 << 28, math.MaxUint32} {
		f.Add(v)
	}

	f.Fuzz(func(t *testing.T, v uint32) {
		buf := AppendUvarint(nil, v)
		if len(buf) != UvarintLen(v) {
			t.Fatalf("AppendUvarint(%d) = %d bytes, want %d", v, len(buf), UvarintLen(v))
		}
		got, n, err := DecodeUvarint(buf)
		if err != nil {
			t.Fatalf("DecodeUvarint(% x) error: %v", buf, err)
		}
		if got != v || n != len(buf) {
			t.Fatalf("DecodeUvarint(% x) = (%d, %d), want (%d, %d)", buf, got, n, v, len(buf))
		}
	})
}
