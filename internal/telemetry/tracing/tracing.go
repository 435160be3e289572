package tracing

import (
	"errors"
	"fmt"

	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/honeycombio/honeycomb-opentelemetry-go"
	"github.com/honeycombio/otel-config-go/otelconfig"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var GlobalTracer = otel.Tracer("bodyforecast-backend")

// EndSpanWithErrCheck records err on the span, if any, and ends it.
func EndSpanWithErrCheck(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "ok")
	}
	span.End()
}

type HoneycombSetupParams struct {
	Enabled     bool
	ServiceName string
	Redis       *redis.Client
}

// HoneycombSetup configures the OTLP pipeline towards honeycomb. The returned
// shutdown func must be called on exit to flush pending spans.
func HoneycombSetup(params HoneycombSetupParams) (func(), error) {
	if !params.Enabled {
		log.Debugln("honeycomb tracing disabled")
		return func() {}, nil
	}
	if params.ServiceName == "" {
		return nil, errors.New("tracing service name not set")
	}

	otelShutdown, err := otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithServiceName(params.ServiceName),
		otelconfig.WithSpanProcessor(honeycomb.NewBaggageSpanProcessor()),
	)
	if err != nil {
		return nil, fmt.Errorf("configure open telemetry: %w", err)
	}

	if params.Redis != nil {
		params.Redis.AddHook(redisotel.NewTracingHook())
	}

	log.Infof("honeycomb tracing set up for service [%s]", params.ServiceName)
	return otelShutdown, nil
}
