package blazorpack

import (
	"io"
	"log/slog"
	"testing"
)

var benchBatch = []byte(`[
	{"MessageType":1,"Headers":0,"Target":"BeginInvokeDotNetFromJS","Arguments":["1","null","DispatchEventAsync",1,[{"eventHandlerId":3,"eventName":"click"}]]},
	{"MessageType":3,"Headers":0,"InvocationId":"1","ResultKind":3,"Result":true},
	{"MessageType":6}
]`)

func benchCodec() *Codec {
	return New(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func BenchmarkVarint_Encode(b *testing.B) {
	buf := make([]byte, MaxVarintLen)
	for i := 0; i < b.N; i++ {
		EncodeUvarint(buf, 1<<20)
	}
}

func BenchmarkVarint_Decode(b *testing.B) {
	buf := AppendUvarint(nil, 1<<20)
	for i := 0; i < b.N; i++ {
		_, _, _ = DecodeUvarint(buf)
	}
}

func BenchmarkEncode(b *testing.B) {
	c := benchCodec()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := c.Encode(benchBatch); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkUnpack(b *testing.B) {
	c := benchCodec()
	raw, err := c.Encode(benchBatch)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(raw)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Unpack(raw); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecode(b *testing.B) {
	c := benchCodec()
	raw, err := c.Encode(benchBatch)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(raw)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Decode(raw)
	}
}
