package metricscollector

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/terryyin/meeting-plunger/internal/transcription/core"
)

// Exposed through Prometheus as transcriptions_total,
// transcription_duration_seconds and transcription_audio_bytes_total
const (
	transcriptionsMetric = "transcriptions"
	durationMetric       = "transcription.duration"
	audioBytesMetric     = "transcription.audio"
)

// OTelCollector exports transcription metrics through an OpenTelemetry meter
type OTelCollector struct {
	transcriptions metric.Int64Counter
	duration       metric.Float64Histogram
	audioBytes     metric.Int64Counter
}

func NewOTelCollector(meter metric.Meter) (*OTelCollector, error) {
	transcriptions, err := meter.Int64Counter(transcriptionsMetric,
		metric.WithDescription("Number of transcription requests"))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s counter: %w", transcriptionsMetric, err)
	}

	duration, err := meter.Float64Histogram(durationMetric,
		metric.WithDescription("Time spent producing a transcript"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s histogram: %w", durationMetric, err)
	}

	audioBytes, err := meter.Int64Counter(audioBytesMetric,
		metric.WithDescription("Bytes of uploaded audio"),
		metric.WithUnit("By"))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s counter: %w", audioBytesMetric, err)
	}

	return &OTelCollector{
		transcriptions: transcriptions,
		duration:       duration,
		audioBytes:     audioBytes,
	}, nil
}

func (c *OTelCollector) RecordTranscription(ctx context.Context, metrics core.TranscriptionMetrics) error {
	outcome := "success"
	if !metrics.Success {
		outcome = "failure"
	}

	attrs := metric.WithAttributes(
		attribute.String("source", string(metrics.Source)),
		attribute.String("outcome", outcome),
		attribute.String("error_kind", metrics.ErrorKind),
	)

	c.transcriptions.Add(ctx, 1, attrs)
	c.duration.Record(ctx, metrics.ExecutionTime.Seconds(), attrs)
	c.audioBytes.Add(ctx, metrics.SizeBytes, metric.WithAttributes(
		attribute.String("source", string(metrics.Source)),
	))

	return nil
}
