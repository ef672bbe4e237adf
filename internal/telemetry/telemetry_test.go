package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestDisabledInitIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	rec := NewRecorder()
	ctx, done := rec.Start(context.Background(), "noop", attribute.String("k", "v"))
	require.NotNil(t, ctx)
	done(errors.New("boom"))
	done(nil)
}

func TestNilRecorder(t *testing.T) {
	var rec *Recorder
	ctx, done := rec.Start(context.Background(), "nil")
	require.NotNil(t, ctx)
	done(nil)
}

func TestEnabledInitWithoutExporters(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{Enabled: true, ServiceName: "foreman-test"})
	require.NoError(t, err)
	_, done := NewRecorder().Start(context.Background(), "op")
	done(nil)
	require.NoError(t, shutdown(context.Background()))
}
