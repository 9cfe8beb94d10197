package metricscollector_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/terryyin/meeting-plunger/internal/transcription/adapters/metricscollector"
	"github.com/terryyin/meeting-plunger/internal/transcription/core"
	"github.com/terryyin/meeting-plunger/internal/transcription/infra/telemetry"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	byName := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			byName[m.Name] = m
		}
	}
	return byName
}

func TestOTelCollector_RecordTranscription(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	collector, err := metricscollector.NewOTelCollector(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, collector.RecordTranscription(ctx, createTestMetrics(core.SourceProvider, true, 250*time.Millisecond)))
	require.NoError(t, collector.RecordTranscription(ctx, createTestMetrics(core.SourceProvider, true, 750*time.Millisecond)))

	failed := createTestMetrics(core.SourceProvider, false, time.Second)
	failed.ErrorKind = string(core.ProviderUnavailable)
	require.NoError(t, collector.RecordTranscription(ctx, failed))

	metrics := collect(t, reader)

	counter, ok := metrics["transcriptions"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, counter.DataPoints, 2)

	for _, dp := range counter.DataPoints {
		outcome, _ := dp.Attributes.Value(attribute.Key("outcome"))
		switch outcome.AsString() {
		case "success":
			assert.Equal(t, int64(2), dp.Value)
		case "failure":
			assert.Equal(t, int64(1), dp.Value)
			kind, _ := dp.Attributes.Value(attribute.Key("error_kind"))
			assert.Equal(t, "unavailable", kind.AsString())
		default:
			t.Fatalf("unexpected outcome %q", outcome.AsString())
		}
	}

	histogram, ok := metrics["transcription.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var total uint64
	var sum float64
	for _, dp := range histogram.DataPoints {
		total += dp.Count
		sum += dp.Sum
	}
	assert.Equal(t, uint64(3), total)
	assert.InDelta(t, 2.0, sum, 0.000001)

	bytesCounter, ok := metrics["transcription.audio"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, bytesCounter.DataPoints, 1)
	assert.Equal(t, int64(3*2048), bytesCounter.DataPoints[0].Value)
}

func TestOTelCollector_PrometheusExposition(t *testing.T) {
	ctx := context.Background()
	tel, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName: "meeting-plunger-test",
		Enabled:     true,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer tel.Shutdown(ctx)

	collector, err := metricscollector.NewOTelCollector(tel.Meter)
	require.NoError(t, err)
	require.NoError(t, collector.RecordTranscription(ctx, createTestMetrics(core.SourceProvider, true, 1500*time.Millisecond)))

	rec := httptest.NewRecorder()
	tel.MetricsHandler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "transcriptions_total{")
	assert.Contains(t, body, "transcription_duration_seconds_sum{")
	assert.Contains(t, body, "transcription_duration_seconds_count{")
	assert.Contains(t, body, "transcription_audio_bytes_total{")
	assert.NotContains(t, body, "milliseconds")
}

type recordingCollector struct {
	records []core.TranscriptionMetrics
	err     error
}

func (c *recordingCollector) RecordTranscription(_ context.Context, m core.TranscriptionMetrics) error {
	c.records = append(c.records, m)
	return c.err
}

func TestFanout_RecordsToAllCollectors(t *testing.T) {
	first := &recordingCollector{err: errors.New("disk full")}
	second := &recordingCollector{}

	fanout := metricscollector.NewFanout(first, second, metricscollector.Nop{})

	err := fanout.RecordTranscription(context.Background(), createTestMetrics(core.SourceMock, true, 0))

	assert.ErrorContains(t, err, "disk full")
	assert.Len(t, first.records, 1)
	assert.Len(t, second.records, 1, "a failing collector must not stop the others")
}

func TestFanout_Empty(t *testing.T) {
	err := metricscollector.NewFanout().RecordTranscription(context.Background(), createTestMetrics(core.SourceMock, true, 0))
	assert.NoError(t, err)
}

func TestCombine(t *testing.T) {
	ctx := context.Background()
	metrics := createTestMetrics(core.SourceMock, true, 0)

	t.Run("none configured", func(t *testing.T) {
		collector := metricscollector.Combine()
		assert.Equal(t, metricscollector.Nop{}, collector)
		assert.NoError(t, collector.RecordTranscription(ctx, metrics))
	})

	t.Run("nil entries dropped", func(t *testing.T) {
		assert.Equal(t, metricscollector.Nop{}, metricscollector.Combine(nil, nil))
	})

	t.Run("single collector used directly", func(t *testing.T) {
		only := &recordingCollector{}
		collector := metricscollector.Combine(nil, only)
		assert.Same(t, only, collector)
	})

	t.Run("several collectors fan out", func(t *testing.T) {
		first := &recordingCollector{}
		second := &recordingCollector{}
		collector := metricscollector.Combine(first, second)

		require.IsType(t, &metricscollector.Fanout{}, collector)
		require.NoError(t, collector.RecordTranscription(ctx, metrics))
		assert.Len(t, first.records, 1)
		assert.Len(t, second.records, 1)
	})
}
