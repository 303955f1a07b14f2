// Package stats summarizes decoded BlazorPack captures: message variants
// seen and the distribution of frame lengths.
package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/blazor-tools/btp/pkg/blazorpack"
	"github.com/codahale/hdrhistogram"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

// Collector accumulates capture statistics. It is safe for concurrent use.
type Collector struct {
	mu       sync.Mutex
	batches  int
	failed   int
	variants map[string]int
	lengths  []float64
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{variants: make(map[string]int)}
}

// Add records one decoded batch and the lengths of its frames.
func (c *Collector) Add(msgs []blazorpack.Message, frameLens []int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches++
	for _, m := range msgs {
		if m == nil {
			continue
		}
		c.variants[m.Kind().String()]++
	}
	for _, n := range frameLens {
		c.lengths = append(c.lengths, float64(n))
	}
}

// AddRaw splits and decodes raw with codec and records the result. A batch
// that fails to decode is counted as failed and its error returned.
func (c *Collector) AddRaw(codec *blazorpack.Codec, raw []byte) error {
	lens, err := blazorpack.FrameLengths(raw)
	if err == nil {
		var msgs []blazorpack.Message
		if msgs, err = codec.Unpack(raw); err == nil {
			c.Add(msgs, lens)
			return nil
		}
	}
	c.mu.Lock()
	c.batches++
	c.failed++
	c.mu.Unlock()
	return err
}

// Bar is one histogram bucket.
type Bar struct {
	From  int64 `json:"from"`
	To    int64 `json:"to"`
	Count int64 `json:"count"`
}

// Summary is a point-in-time view of a Collector.
type Summary struct {
	Batches        int            `json:"batches"`
	FailedBatches  int            `json:"failedBatches"`
	Frames         int            `json:"frames"`
	Variants       map[string]int `json:"variants"`
	MeanFrameLen   float64        `json:"meanFrameLength"`
	MedianFrameLen float64        `json:"medianFrameLength"`
	MinFrameLen    float64        `json:"minFrameLength"`
	MaxFrameLen    float64        `json:"maxFrameLength"`
	P95FrameLen    float64        `json:"p95FrameLength"`
	Histogram      []Bar          `json:"histogram,omitempty"`
}

// Summary computes the current statistics.
func (c *Collector) Summary() (Summary, error) {
	c.mu.Lock()
	lengths := append([]float64(nil), c.lengths...)
	s := Summary{
		Batches:       c.batches,
		FailedBatches: c.failed,
		Frames:        len(c.lengths),
		Variants:      make(map[string]int, len(c.variants)),
	}
	for k, v := range c.variants {
		s.Variants[k] = v
	}
	c.mu.Unlock()

	if len(lengths) == 0 {
		return s, nil
	}

	var err error
	if s.MeanFrameLen, err = stats.Mean(lengths); err != nil {
		return s, errors.Wrapf(err, "Failed to compute mean")
	}
	if s.MedianFrameLen, err = stats.Median(lengths); err != nil {
		return s, errors.Wrapf(err, "Failed to compute median")
	}
	if s.MinFrameLen, err = stats.Min(lengths); err != nil {
		return s, errors.Wrapf(err, "Failed to compute min")
	}
	if s.MaxFrameLen, err = stats.Max(lengths); err != nil {
		return s, errors.Wrapf(err, "Failed to compute max")
	}
	if s.P95FrameLen, err = stats.Percentile(lengths, 95); err != nil {
		return s, errors.Wrapf(err, "Failed to compute 95th percentile")
	}
	if s.Histogram, err = histogram(lengths, int64(s.MinFrameLen), int64(s.MaxFrameLen)); err != nil {
		return s, err
	}
	return s, nil
}

// histogram buckets lengths with one significant figure, dropping empty bars.
func histogram(lengths []float64, lo, hi int64) ([]Bar, error) {
	if lo < 1 {
		lo = 1
	}
	if hi <= lo {
		hi = lo + 1
	}
	hist := hdrhistogram.New(lo, hi, 1)
	for _, n := range lengths {
		if err := hist.RecordValue(int64(n)); err != nil {
			return nil, errors.Wrapf(err, "Failed to record frame length %d", int64(n))
		}
	}
	var bars []Bar
	for _, b := range hist.Distribution() {
		if b.Count == 0 {
			continue
		}
		bars = append(bars, Bar{From: b.From, To: b.To, Count: b.Count})
	}
	return bars, nil
}

// Print writes s as indented JSON.
func (s Summary) Print(out io.Writer) error {
	marshalled, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "Failed to marshal stats into JSON output")
	}
	_, err = fmt.Fprintln(out, string(marshalled))
	return err
}

// VariantNames returns the recorded variant names in sorted order.
func (s Summary) VariantNames() []string {
	names := make([]string, 0, len(s.Variants))
	for k := range s.Variants {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
