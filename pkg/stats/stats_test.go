package stats

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/blazor-tools/btp/pkg/blazorpack"
)

func testCodec() *blazorpack.Codec {
	return blazorpack.New(blazorpack.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestCollectorAdd(t *testing.T) {
	c := NewCollector()
	c.Add([]blazorpack.Message{
		&blazorpack.Ping{MessageType: blazorpack.TypePing},
		&blazorpack.Ping{MessageType: blazorpack.TypePing},
		&blazorpack.Close{MessageType: blazorpack.TypeClose, Error: "bye"},
	}, []int{1, 1, 6})

	s, err := c.Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if s.Batches != 1 || s.Frames != 3 {
		t.Errorf("Batches, Frames = %d, %d, want 1, 3", s.Batches, s.Frames)
	}
	if got := s.Variants["PingMessage"]; got != 2 {
		t.Errorf("PingMessage count = %d, want 2", got)
	}
	if got := s.Variants["CloseMessage"]; got != 1 {
		t.Errorf("CloseMessage count = %d, want 1", got)
	}
	if s.MinFrameLen != 1 || s.MaxFrameLen != 6 {
		t.Errorf("min, max = %v, %v, want 1, 6", s.MinFrameLen, s.MaxFrameLen)
	}
	if s.MedianFrameLen != 1 {
		t.Errorf("median = %v, want 1", s.MedianFrameLen)
	}
	if want := 8.0 / 3.0; s.MeanFrameLen != want {
		t.Errorf("mean = %v, want %v", s.MeanFrameLen, want)
	}

	var total int64
	for _, b := range s.Histogram {
		total += b.Count
	}
	if total != 3 {
		t.Errorf("histogram total = %d, want 3", total)
	}
	if names := s.VariantNames(); len(names) != 2 || names[0] != "CloseMessage" {
		t.Errorf("VariantNames() = %v, want [CloseMessage PingMessage]", names)
	}
}

func TestCollectorAddRaw(t *testing.T) {
	codec := testCodec()
	raw, err := codec.Pack([]blazorpack.Message{
		&blazorpack.Ping{MessageType: blazorpack.TypePing},
		&blazorpack.Close{MessageType: blazorpack.TypeClose, Error: "x"},
	})
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	c := NewCollector()
	if err := c.AddRaw(codec, raw); err != nil {
		t.Fatalf("AddRaw: %v", err)
	}
	if err := c.AddRaw(codec, []byte{0x05, 0x91}); err == nil {
		t.Error("AddRaw accepted a truncated batch")
	}

	s, err := c.Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if s.Batches != 2 || s.FailedBatches != 1 {
		t.Errorf("Batches, FailedBatches = %d, %d, want 2, 1", s.Batches, s.FailedBatches)
	}
	if s.Frames != 2 {
		t.Errorf("Frames = %d, want 2", s.Frames)
	}
	if s.MinFrameLen != 1 || s.MaxFrameLen != 4 {
		t.Errorf("min, max = %v, %v, want 1, 4", s.MinFrameLen, s.MaxFrameLen)
	}
}

func TestEmptySummary(t *testing.T) {
	s, err := NewCollector().Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if s.Frames != 0 || s.Histogram != nil {
		t.Errorf("empty summary = %+v", s)
	}
}

func TestSummaryPrint(t *testing.T) {
	c := NewCollector()
	c.Add([]blazorpack.Message{&blazorpack.Ping{MessageType: blazorpack.TypePing}}, []int{1})
	s, err := c.Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	var buf bytes.Buffer
	if err := s.Print(&buf); err != nil {
		t.Fatalf("Print: %v", err)
	}
	var decoded Summary
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if decoded.Variants["PingMessage"] != 1 {
		t.Errorf("decoded variants = %v", decoded.Variants)
	}
}

func TestHistogramOutOfRange(t *testing.T) {
	bars, err := histogram([]float64{2, 1 << 40}, 1, 10)
	if err == nil {
		t.Fatalf("histogram = %v, want error for a length above the tracked range", bars)
	}

	bars, err = histogram([]float64{2, 3, 3}, 2, 3)
	if err != nil {
		t.Fatalf("histogram error: %v", err)
	}
	var total int64
	for _, b := range bars {
		total += b.Count
	}
	if total != 3 {
		t.Errorf("histogram counted %d lengths, want 3", total)
	}
}
