package metricscollector

import (
	"context"
	"errors"

	"github.com/terryyin/meeting-plunger/internal/transcription/core"
)

// Fanout forwards every record to all of its collectors
type Fanout struct {
	collectors []core.MetricsCollector
}

func NewFanout(collectors ...core.MetricsCollector) *Fanout {
	return &Fanout{collectors: collectors}
}

// RecordTranscription records to every collector even if some fail, and
// returns the joined errors.
func (f *Fanout) RecordTranscription(ctx context.Context, metrics core.TranscriptionMetrics) error {
	var errs []error
	for _, c := range f.collectors {
		if err := c.RecordTranscription(ctx, metrics); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Combine builds the collector for the configured sinks. Nil entries are
// skipped, no sinks yields Nop and a single sink is returned as is.
func Combine(collectors ...core.MetricsCollector) core.MetricsCollector {
	var active []core.MetricsCollector
	for _, c := range collectors {
		if c != nil {
			active = append(active, c)
		}
	}

	switch len(active) {
	case 0:
		return Nop{}
	case 1:
		return active[0]
	default:
		return NewFanout(active...)
	}
}

// Nop discards all metrics
type Nop struct{}

func (Nop) RecordTranscription(context.Context, core.TranscriptionMetrics) error {
	return nil
}
