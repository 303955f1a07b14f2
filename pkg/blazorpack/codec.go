package blazorpack

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// Codec converts batches between the binary and JSON forms.
// A Codec is immutable after New and safe for concurrent use.
type Codec struct {
	logger       *slog.Logger
	maxFrameSize int
}

// Option configures a Codec.
type Option func(*Codec)

// WithLogger sets the logger for validation failures and unusual input.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Codec) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMaxFrameSize sets the largest frame payload accepted in either
// direction. Values outside (0, HardMaxFrameSize] are clamped.
func WithMaxFrameSize(n int) Option {
	return func(c *Codec) {
		switch {
		case n <= 0:
			c.maxFrameSize = DefaultMaxFrameSize
		case n > HardMaxFrameSize:
			c.maxFrameSize = HardMaxFrameSize
		default:
			c.maxFrameSize = n
		}
	}
}

// New creates a Codec.
func New(opts ...Option) *Codec {
	c := &Codec{
		logger:       slog.Default().With("component", "blazorpack"),
		maxFrameSize: DefaultMaxFrameSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaxFrameSize returns the configured frame limit.
func (c *Codec) MaxFrameSize() int {
	return c.maxFrameSize
}

// Unpack decodes every frame of a batch. Frames holding a zero-length array
// are dropped. An empty batch yields an empty, non-nil slice.
func (c *Codec) Unpack(raw []byte) ([]Message, error) {
	frames, err := SplitFrames(raw, c.maxFrameSize)
	if err != nil {
		return nil, err
	}
	msgs := make([]Message, 0, len(frames))
	for i, f := range frames {
		m, err := decodeFrame(f, c.logger)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		if m != nil {
			msgs = append(msgs, m)
		}
	}
	return msgs, nil
}

// DecodeBatch decodes a batch like Unpack, but replaces the whole result with
// a single DisplayError when any frame fails.
func (c *Codec) DecodeBatch(raw []byte) []Message {
	msgs, err := c.Unpack(raw)
	if err != nil {
		c.logger.Error("blazorpack: batch decode failed", "bytes", len(raw), "error", err)
		return placeholder()
	}
	return msgs
}

// Decode converts a raw batch into rendered JSON text.
func (c *Codec) Decode(raw []byte) []byte {
	text, err := Render(c.DecodeBatch(raw))
	if err != nil {
		c.logger.Error("blazorpack: render failed", "error", err)
		return Placeholder()
	}
	return text
}

// Placeholder returns the rendered text substituted for an undecodable batch.
func Placeholder() []byte {
	text, _ := Render(placeholder())
	return text
}

// Pack encodes messages into a batch. If any message fails validation or
// encoding, no output is produced.
func (c *Codec) Pack(msgs []Message) ([]byte, error) {
	out := []byte{}
	for i, m := range msgs {
		var err error
		if out, err = appendFrame(out, m, c.maxFrameSize); err != nil {
			c.logFailure(i, err)
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
	}
	return out, nil
}

// ParseMessages validates a JSON array of structured messages.
func (c *Codec) ParseMessages(text []byte) ([]Message, error) {
	text = bytes.TrimSpace(text)
	if len(text) == 0 || text[0] != '[' {
		return nil, ErrInvalidJSON
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(text, &elems); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	msgs := make([]Message, 0, len(elems))
	for i, raw := range elems {
		m, err := parseMessage(raw)
		if err != nil {
			c.logFailure(i, err)
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// Encode converts JSON text into a raw batch.
func (c *Codec) Encode(text []byte) ([]byte, error) {
	msgs, err := c.ParseMessages(text)
	if err != nil {
		return nil, err
	}
	return c.Pack(msgs)
}

func (c *Codec) logFailure(index int, err error) {
	var fe *FieldError
	if errors.As(err, &fe) {
		c.logger.Error("blazorpack: invalid message",
			"index", index,
			"variant", fe.Variant,
			"field", fe.Field,
			"reason", fe.Reason,
		)
		return
	}
	c.logger.Error("blazorpack: cannot encode message", "index", index, "error", err)
}

// Decode converts a raw batch into rendered JSON text with a default Codec.
func Decode(raw []byte) []byte {
	return New().Decode(raw)
}

// Encode converts JSON text into a raw batch with a default Codec.
func Encode(text []byte) ([]byte, error) {
	return New().Encode(text)
}
