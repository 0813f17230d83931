// Package tracing reports executor activity as OpenTelemetry spans.
//
// It is kept apart from package wake so that programs that do not trace do
// not link OpenTelemetry.
package tracing

import (
	"context"
	"fmt"
	"io"
	"time"

	"fortio.org/safecast"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/b97tsk/wake"
)

// InstrumentationName is the name of the tracer spans are recorded with.
const InstrumentationName = "github.com/b97tsk/wake"

// Observer implements [wake.Observer] by recording one span per event.
type Observer struct {
	tracer trace.Tracer
	runID  string
}

var _ wake.Observer = (*Observer)(nil)

// New returns an [Observer] recording spans with tp. runID, if not empty,
// is attached to every span.
func New(tp trace.TracerProvider, runID string) *Observer {
	return &Observer{tracer: tp.Tracer(InstrumentationName), runID: runID}
}

// NewStdoutProvider returns a tracer provider that writes every span to w
// as it ends. The caller must Shutdown the provider when done.
func NewStdoutProvider(w io.Writer, serviceName, serviceVersion string) (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, err
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithResource(res),
	), nil
}

func (o *Observer) attrs(id wake.TaskID, extra ...attribute.KeyValue) trace.SpanStartEventOption {
	kv := make([]attribute.KeyValue, 0, 3+len(extra))
	kv = append(kv,
		attribute.Int64("wake.task.slot", int64(id.Slot)),
		attribute.Int64("wake.task.gen", int64(id.Gen)),
	)
	if o.runID != "" {
		kv = append(kv, attribute.String("wake.run_id", o.runID))
	}
	return trace.WithAttributes(append(kv, extra...)...)
}

func (o *Observer) instant(name string, opts ...trace.SpanStartOption) trace.Span {
	_, span := o.tracer.Start(context.Background(), name, opts...)
	return span
}

// OnSpawn implements [wake.Observer].
func (o *Observer) OnSpawn(id wake.TaskID) {
	o.instant("wake.spawn", o.attrs(id)).End()
}

// OnPoll implements [wake.Observer]. The span covers the poll.
func (o *Observer) OnPoll(id wake.TaskID, ready bool, d time.Duration) {
	end := time.Now()
	span := o.instant("wake.poll",
		trace.WithTimestamp(end.Add(-d)),
		o.attrs(id, attribute.Bool("wake.poll.ready", ready)),
	)
	span.End(trace.WithTimestamp(end))
}

// OnComplete implements [wake.Observer]. A task completing with an error
// value gets an error status.
func (o *Observer) OnComplete(id wake.TaskID, v any) {
	span := o.instant("wake.complete", o.attrs(id))
	if err, ok := v.(error); ok {
		span.SetStatus(codes.Error, err.Error())
	} else if v != nil {
		span.SetAttributes(attribute.String("wake.task.value", fmt.Sprint(v)))
	}
	span.End()
}

// OnStaleWake implements [wake.Observer].
func (o *Observer) OnStaleWake(id wake.TaskID) {
	o.instant("wake.stale_wake", o.attrs(id)).End()
}

// OnOverflow implements [wake.Observer].
func (o *Observer) OnOverflow(lost uint64) {
	n, err := safecast.Conv[int64](lost)
	if err != nil {
		n = -1
	}
	span := o.instant("wake.overflow")
	span.SetAttributes(attribute.Int64("wake.overflow.rejected", n))
	if o.runID != "" {
		span.SetAttributes(attribute.String("wake.run_id", o.runID))
	}
	span.SetStatus(codes.Error, "wake queue overflowed")
	span.End()
}
