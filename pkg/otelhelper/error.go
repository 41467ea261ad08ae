package otelhelper

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SetError marks the span failed and records the error. Extra attributes
// are attached to the recorded error event when supplied.
func SetError(span trace.Span, err error, attrs ...attribute.KeyValue) {
	span.SetStatus(codes.Error, err.Error())

	if len(attrs) > 0 {
		span.RecordError(err, trace.WithAttributes(attrs...))

		return
	}

	span.RecordError(err)
}
