package api

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/allscreenshots/allscreenshots-sdk-go/internal/apierrors"
)

const instrumentationName = "github.com/allscreenshots/allscreenshots-sdk-go"

// Metric names.
const (
	MetricAttempts = "allscreenshots.client.attempts"
	MetricDuration = "allscreenshots.client.duration"
)

// Span and metric attribute keys.
const (
	attrMethod    = attribute.Key("http.request.method")
	attrPath      = attribute.Key("url.path")
	attrStatus    = attribute.Key("http.response.status_code")
	attrAttempts  = attribute.Key("allscreenshots.attempts")
	attrErrorKind = attribute.Key("error.type")
	attrRequestID = attribute.Key("allscreenshots.request_id")
)

type telemetry struct {
	tracer   trace.Tracer
	attempts metric.Int64Counter
	duration metric.Float64Histogram
}

func newTelemetry(tp trace.TracerProvider, mp metric.MeterProvider) *telemetry {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	t := &telemetry{tracer: tp.Tracer(instrumentationName)}
	meter := mp.Meter(instrumentationName)
	fallback := noop.NewMeterProvider().Meter(instrumentationName)

	var err error
	t.attempts, err = meter.Int64Counter(MetricAttempts,
		metric.WithDescription("Network attempts made by the AllScreenshots client."),
		metric.WithUnit("{attempt}"))
	if err != nil {
		otel.Handle(err)
		t.attempts, _ = fallback.Int64Counter(MetricAttempts)
	}

	t.duration, err = meter.Float64Histogram(MetricDuration,
		metric.WithDescription("Duration of logical AllScreenshots API calls, retries included."),
		metric.WithUnit("s"))
	if err != nil {
		otel.Handle(err)
		t.duration, _ = fallback.Float64Histogram(MetricDuration)
	}
	return t
}

// start opens the span covering one logical call.
func (t *telemetry) start(ctx context.Context, req *OutboundRequest) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "allscreenshots "+req.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attrMethod.String(req.Method),
			attrPath.String(req.Path),
			attrRequestID.String(req.RequestID()),
		))
}

// attempt records one network round trip. statusCode is 0 when no response
// was received.
func (t *telemetry) attempt(ctx context.Context, req *OutboundRequest, statusCode int) {
	t.attempts.Add(ctx, 1, metric.WithAttributes(
		attrMethod.String(req.Method),
		attrStatus.Int(statusCode),
	))
}

// finish closes the span and records the call duration.
func (t *telemetry) finish(ctx context.Context, span trace.Span, req *OutboundRequest, statusCode, attempts int, elapsed time.Duration, err error) {
	attrs := []attribute.KeyValue{attrMethod.String(req.Method)}

	span.SetAttributes(attrAttempts.Int(attempts))
	if statusCode > 0 {
		span.SetAttributes(attrStatus.Int(statusCode))
	}

	if err != nil {
		kind := apierrors.KindOf(err)
		attrs = append(attrs, attrErrorKind.String(kind.String()))
		span.SetAttributes(attrErrorKind.String(kind.String()))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	t.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
}
