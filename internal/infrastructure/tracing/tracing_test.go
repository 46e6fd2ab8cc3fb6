package tracing_test

import (
	"context"
	"testing"

	"github.com/hilthontt/dealerdesk/internal/infrastructure/tracing"
	"github.com/stretchr/testify/require"
)

func TestInitTracer(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		shutdown, err := tracing.InitTracer(context.Background(), tracing.Config{Exporter: tracing.ExporterNone})
		require.NoError(t, err)
		require.NoError(t, shutdown(context.Background()))
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := tracing.InitTracer(context.Background(), tracing.Config{Exporter: "zipkin"})
		require.Error(t, err)
	})
}
