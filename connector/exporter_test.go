package connector

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracerProviderExportsThroughLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tp := NewTracerProvider(logger)
	defer func() {
		require.NoError(t, tp.Shutdown(context.Background()))
	}()

	_, span := tp.Tracer("test").Start(context.Background(), "genattr.test.span")
	span.End()

	assert.Contains(t, buf.String(), "genattr.test.span")
}

func TestSlogSpanExporterNeverFails(t *testing.T) {
	exporter := NewSlogSpanExporter(nil)
	assert.NoError(t, exporter.ExportSpans(context.Background(), nil))
	assert.NoError(t, exporter.Shutdown(context.Background()))
}
