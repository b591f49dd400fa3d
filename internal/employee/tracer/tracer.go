// Package tracer provides the tracing abstraction used around upstream
// employee service calls.
//
// Callers depend on the Tracer and Span interfaces only. Two implementations
// exist: NoopTracer for tests and local runs, OTelTracer for OpenTelemetry.
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks the span as failed.
	// End must be called exactly once, typically via defer.
	End(err error)

	SetAttributes(attrs ...Attribute)

	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a new span. The returned context carries the span and
	// should be passed to child operations.
	//
	//   ctx, span := tr.Start(ctx, tracer.SpanUpstreamGet,
	//       tracer.String(tracer.AttrEmployeeID, id),
	//   )
	//   defer func() { span.End(err) }()
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names for upstream calls.
const (
	SpanUpstreamList   = "upstream.list"
	SpanUpstreamGet    = "upstream.get"
	SpanUpstreamCreate = "upstream.create"
	SpanUpstreamDelete = "upstream.delete"
)

// Attribute keys.
const (
	AttrEmployeeID  = "employee.id"
	AttrHTTPMethod  = "http.method"
	AttrStatusCode  = "http.status_code"
	AttrFailureKind = "failure.kind"
	AttrFailureOp   = "failure.op"
	AttrResultCount = "result.count"
)

// Event names.
const (
	EventEnvelopeDecoded = "envelope.decoded"
)
