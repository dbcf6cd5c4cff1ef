package email

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingTransport records a span around each send
type TracingTransport struct {
	next   Transport
	tracer trace.Tracer
}

func NewTracingTransport(next Transport, tracer trace.Tracer) *TracingTransport {
	return &TracingTransport{next: next, tracer: tracer}
}

func (t *TracingTransport) Send(ctx context.Context, msg Message) error {
	ctx, span := t.tracer.Start(ctx, "email.Send")
	defer span.End()

	span.SetAttributes(attribute.Int("email.recipients", len(msg.To)))

	if err := t.next.Send(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
