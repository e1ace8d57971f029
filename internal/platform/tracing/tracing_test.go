package tracing

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

func TestSetup_EmptyEndpoint_NoopWithPropagator(t *testing.T) {
	shutdown, err := Setup(context.Background(), "  ", "club-portal-api")
	if err != nil {
		t.Fatalf("Setup err=%v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown err=%v", err)
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(context.Background(), carrier)
	fields := otel.GetTextMapPropagator().Fields()
	if len(fields) == 0 {
		t.Fatalf("propagator has no fields; want tracecontext+baggage")
	}
}
