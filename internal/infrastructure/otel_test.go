package infrastructure

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumOf(t *testing.T, agg metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := agg.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum, got %T", agg)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestReportMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	m, err := CreateReportMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordFetch(ctx, "api-client", 10*time.Millisecond, errors.New("boom"))
	m.RecordFetch(ctx, "direct-http", 5*time.Millisecond, nil)
	m.RecordFallback(ctx)
	m.RecordExport(ctx, "xlsx", time.Millisecond, 2048, nil)
	m.RecordRegenerate(ctx, nil)

	data := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, data["reports_fetch_total"]))
	assert.Equal(t, int64(1), sumOf(t, data["reports_fallback_total"]))
	assert.Equal(t, int64(1), sumOf(t, data["reports_export_total"]))
	assert.Equal(t, int64(2048), sumOf(t, data["reports_export_bytes_total"]))
	assert.Equal(t, int64(1), sumOf(t, data["reports_regenerate_total"]))
}

func TestReportMetrics_NilSafe(t *testing.T) {
	var m *ReportMetrics
	assert.NotPanics(t, func() {
		m.RecordFetch(context.Background(), "api-client", time.Second, nil)
		m.RecordFallback(context.Background())
		m.RecordExport(context.Background(), "csv", time.Second, 1, nil)
		m.RecordWebSocketClients(context.Background(), 1)
	})
	assert.NotNil(t, NoopReportMetrics())
}

func TestInitializeOTel_MetricsOnly(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.EnableTracing = false

	providers, err := InitializeOTel(cfg, nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.PrometheusHTTP)
	assert.Nil(t, providers.TracerProvider)
}

func TestInitializeOTel_UnsupportedExporter(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.EnableTracing = true
	cfg.TraceExporter = "jaeger"

	_, err := InitializeOTel(cfg, nil)
	assert.Error(t, err)
}
