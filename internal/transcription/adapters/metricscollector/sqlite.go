package metricscollector

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/terryyin/meeting-plunger/internal/transcription/core"
)

// Supported aggregation periods for GetUsageStats
var periods = map[string]time.Duration{
	"hour":  time.Hour,
	"day":   24 * time.Hour,
	"week":  7 * 24 * time.Hour,
	"month": 30 * 24 * time.Hour,
}

type MetricsCollector struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewMetricsCollector creates a new metrics collector with SQLite
func NewMetricsCollector(dbPath string, logger *slog.Logger) (*MetricsCollector, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open metrics database: %w", err)
	}

	// Single writer avoids "database is locked" under concurrent requests
	db.SetMaxOpenConns(1)

	collector := &MetricsCollector{
		db:     db,
		logger: logger,
	}

	if err := collector.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize metrics schema: %w", err)
	}

	logger.InfoContext(context.Background(), "Metrics collector initialized",
		"db_path", dbPath,
	)

	return collector, nil
}

// Close closes the database connection
func (mc *MetricsCollector) Close() error {
	return mc.db.Close()
}

// RecordTranscription records metrics for a transcription request
func (mc *MetricsCollector) RecordTranscription(ctx context.Context, metrics core.TranscriptionMetrics) error {
	mc.logger.DebugContext(ctx, "Recording transcription metrics",
		"request_id", metrics.RequestID,
		"source", metrics.Source,
		"execution_time_ms", metrics.ExecutionTime.Milliseconds(),
		"success", metrics.Success,
	)

	query := `
		INSERT INTO transcription_metrics (
			request_id, source, filename, content_type, size_bytes,
			execution_time_ms, success, error_kind, timestamp_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := mc.db.ExecContext(ctx, query,
		metrics.RequestID,
		string(metrics.Source),
		metrics.Filename,
		metrics.ContentType,
		metrics.SizeBytes,
		metrics.ExecutionTime.Milliseconds(),
		metrics.Success,
		metrics.ErrorKind,
		metrics.Timestamp.UnixMilli(),
	)
	if err != nil {
		mc.logger.ErrorContext(ctx, "Failed to record transcription metrics",
			"request_id", metrics.RequestID,
			"error", err.Error(),
		)
		return fmt.Errorf("failed to record transcription metrics: %w", err)
	}

	return nil
}

// GetUsageStats aggregates the metrics recorded during the given period
// ("hour", "day", "week" or "month") ending now.
func (mc *MetricsCollector) GetUsageStats(ctx context.Context, period string) (*core.UsageStats, error) {
	window, ok := periods[period]
	if !ok {
		return nil, core.NewValidationError("period", fmt.Sprintf("unsupported period %q", period))
	}
	since := time.Now().Add(-window).UnixMilli()

	stats := &core.UsageStats{Period: period}

	var successCount int64
	err := mc.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN success THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(execution_time_ms), 0.0),
			COALESCE(SUM(size_bytes), 0)
		FROM transcription_metrics
		WHERE timestamp_ms >= ?
	`, since).Scan(&stats.Transcriptions, &successCount, &stats.AvgExecutionTimeMs, &stats.TotalAudioBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage totals: %w", err)
	}

	if stats.Transcriptions > 0 {
		stats.SuccessRate = float64(successCount) / float64(stats.Transcriptions)
	}

	if stats.BySource, err = mc.countBySource(ctx, since); err != nil {
		return nil, err
	}

	if stats.TopErrorKinds, err = mc.topErrorKinds(ctx, since); err != nil {
		return nil, err
	}

	return stats, nil
}

func (mc *MetricsCollector) countBySource(ctx context.Context, since int64) (map[string]int64, error) {
	rows, err := mc.db.QueryContext(ctx, `
		SELECT source, COUNT(*)
		FROM transcription_metrics
		WHERE timestamp_ms >= ?
		GROUP BY source
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage by source: %w", err)
	}
	defer rows.Close()

	bySource := make(map[string]int64)
	for rows.Next() {
		var source string
		var count int64
		if err := rows.Scan(&source, &count); err != nil {
			return nil, fmt.Errorf("failed to scan usage by source: %w", err)
		}
		bySource[source] = count
	}

	return bySource, rows.Err()
}

func (mc *MetricsCollector) topErrorKinds(ctx context.Context, since int64) ([]core.ErrorKindCount, error) {
	rows, err := mc.db.QueryContext(ctx, `
		SELECT error_kind, COUNT(*) AS error_count
		FROM transcription_metrics
		WHERE timestamp_ms >= ? AND success = 0 AND error_kind != ''
		GROUP BY error_kind
		ORDER BY error_count DESC, error_kind ASC
		LIMIT 5
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query error kinds: %w", err)
	}
	defer rows.Close()

	kinds := []core.ErrorKindCount{}
	for rows.Next() {
		var item core.ErrorKindCount
		if err := rows.Scan(&item.ErrorKind, &item.Count); err != nil {
			return nil, fmt.Errorf("failed to scan error kinds: %w", err)
		}
		kinds = append(kinds, item)
	}

	return kinds, rows.Err()
}

// CleanupOldMetrics deletes metrics older than the given age and returns how
// many rows were removed.
func (mc *MetricsCollector) CleanupOldMetrics(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UnixMilli()

	result, err := mc.db.ExecContext(ctx, `DELETE FROM transcription_metrics WHERE timestamp_ms < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old metrics: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted metrics: %w", err)
	}

	mc.logger.InfoContext(ctx, "Old transcription metrics cleaned up",
		"older_than", olderThan.String(),
		"deleted", deleted,
	)

	return deleted, nil
}

// initSchema initializes the database schema
func (mc *MetricsCollector) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS transcription_metrics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id TEXT,
		source TEXT NOT NULL,
		filename TEXT,
		content_type TEXT,
		size_bytes INTEGER NOT NULL DEFAULT 0,
		execution_time_ms INTEGER NOT NULL,
		success BOOLEAN NOT NULL,
		error_kind TEXT,
		timestamp_ms INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_transcription_metrics_timestamp ON transcription_metrics(timestamp_ms);
	CREATE INDEX IF NOT EXISTS idx_transcription_metrics_source ON transcription_metrics(source);
	`

	_, err := mc.db.Exec(schema)
	return err
}
