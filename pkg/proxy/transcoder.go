package proxy

import (
	"context"
	"log/slog"
	"time"

	"github.com/blazor-tools/btp/pkg/blazorpack"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for proxy spans.
const defaultTracerName = "btp"

// Codec directions used as metric labels.
const (
	directionDecode = "decode"
	directionEncode = "encode"
)

// transcoder runs the codec with tracing and metrics.
type transcoder struct {
	codec   *blazorpack.Codec
	tracer  trace.Tracer
	metrics *Metrics
	logger  *slog.Logger
}

func newTranscoder(codec *blazorpack.Codec, tracerName string, metrics *Metrics, logger *slog.Logger) *transcoder {
	if tracerName == "" {
		tracerName = defaultTracerName
	}
	return &transcoder{
		codec:   codec,
		tracer:  otel.Tracer(tracerName),
		metrics: metrics,
		logger:  logger,
	}
}

// decode unpacks raw and renders it. On failure the rendered text is the
// placeholder batch and err is non-nil.
func (t *transcoder) decode(ctx context.Context, raw []byte) (rendered []byte, msgs []blazorpack.Message, err error) {
	_, span := t.tracer.Start(ctx, "blazorpack.decode",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.Int("btp.bytes", len(raw))),
	)
	defer span.End()
	start := time.Now()

	msgs, err = t.codec.Unpack(raw)
	if err == nil {
		rendered, err = blazorpack.Render(msgs)
	}
	t.metrics.recordBatch(directionDecode, start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return blazorpack.Placeholder(), nil, err
	}

	span.SetAttributes(attribute.Int("btp.messages", len(msgs)))
	for _, m := range msgs {
		if m != nil {
			t.metrics.recordVariant(m.Kind().String())
		}
	}
	return rendered, msgs, nil
}

// encode packs JSON text into a batch.
func (t *transcoder) encode(ctx context.Context, text []byte) ([]byte, error) {
	_, span := t.tracer.Start(ctx, "blazorpack.encode",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.Int("btp.bytes", len(text))),
	)
	defer span.End()
	start := time.Now()

	msgs, err := t.codec.ParseMessages(text)
	var raw []byte
	if err == nil {
		raw, err = t.codec.Pack(msgs)
	}
	t.metrics.recordBatch(directionEncode, start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("btp.messages", len(msgs)))
	return raw, nil
}
