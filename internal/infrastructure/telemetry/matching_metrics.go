package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// MeterName is the instrumentation scope of the business metrics
const MeterName = "transact-nexus"

// MatchingMetrics records the business metrics of matching and extraction.
// All methods are safe on a nil receiver so services can call them
// unconditionally.
type MatchingMetrics struct {
	comparisonsTotal   *Counter
	confidenceScore    *Histogram
	reviewDecisions    *Counter
	autoMatchRuns      *Counter
	autoMatchFailures  *Counter
	extractionsTotal   *Counter
	extractionCache    *Counter
	extractionDuration *Histogram
	connectorExchanges *Counter
}

// NewMatchingMetrics creates the instruments on meter
func NewMatchingMetrics(meter metric.Meter, logger *zap.Logger) (*MatchingMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &MatchingMetrics{}
	var err error

	if m.comparisonsTotal, err = NewCounter(meter, "nexus_comparisons_total",
		"Number of PO/invoice comparisons persisted", "{comparisons}"); err != nil {
		return nil, err
	}
	if m.confidenceScore, err = NewHistogram(meter, "nexus_comparison_confidence_score",
		"Distribution of confidence scores", "1", ScoreBuckets...); err != nil {
		return nil, err
	}
	if m.reviewDecisions, err = NewCounter(meter, "nexus_review_decisions_total",
		"Number of reviewer approvals and rejections", "{decisions}"); err != nil {
		return nil, err
	}
	if m.autoMatchRuns, err = NewCounter(meter, "nexus_automatch_runs_total",
		"Number of auto-match runs", "{runs}"); err != nil {
		return nil, err
	}
	if m.autoMatchFailures, err = NewCounter(meter, "nexus_automatch_invoice_failures_total",
		"Invoices that failed during auto-match", "{invoices}"); err != nil {
		return nil, err
	}
	if m.extractionsTotal, err = NewCounter(meter, "nexus_extractions_total",
		"Number of document extractions", "{extractions}"); err != nil {
		return nil, err
	}
	if m.extractionCache, err = NewCounter(meter, "nexus_extraction_cache_total",
		"Extraction cache lookups", "{lookups}"); err != nil {
		return nil, err
	}
	if m.extractionDuration, err = NewHistogram(meter, "nexus_extraction_duration_seconds",
		"Vision model call latency", "s", ExtractionDurationBuckets...); err != nil {
		return nil, err
	}
	if m.connectorExchanges, err = NewCounter(meter, "nexus_connector_exchanges_total",
		"OAuth code exchanges", "{exchanges}"); err != nil {
		return nil, err
	}

	logger.Debug("Matching metrics registered")
	return m, nil
}

// RecordComparison records a persisted comparison and its score
func (m *MatchingMetrics) RecordComparison(ctx context.Context, status string, score int) {
	if m == nil {
		return
	}
	attrs := AttrStatus.String(status)
	m.comparisonsTotal.Inc(ctx, attrs)
	m.confidenceScore.Record(ctx, float64(score), attrs)
}

// RecordReviewDecision records an approval or rejection
func (m *MatchingMetrics) RecordReviewDecision(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.reviewDecisions.Inc(ctx, AttrStatus.String(status))
}

// RecordAutoMatchRun records one workflow run and its failed invoices
func (m *MatchingMetrics) RecordAutoMatchRun(ctx context.Context, trigger string, failed int) {
	if m == nil {
		return
	}
	m.autoMatchRuns.Inc(ctx, AttrTrigger.String(trigger))
	if failed > 0 {
		m.autoMatchFailures.Add(ctx, int64(failed), AttrTrigger.String(trigger))
	}
}

// RecordExtraction records an extraction outcome ("completed" or "failed")
func (m *MatchingMetrics) RecordExtraction(ctx context.Context, documentType, outcome string) {
	if m == nil {
		return
	}
	m.extractionsTotal.Inc(ctx, AttrDocumentType.String(documentType), AttrOutcome.String(outcome))
}

// RecordCacheLookup records an extraction cache hit or miss
func (m *MatchingMetrics) RecordCacheLookup(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.extractionCache.Inc(ctx, AttrCacheResult.String(result))
}

// RecordModelLatency records how long a vision call took
func (m *MatchingMetrics) RecordModelLatency(ctx context.Context, documentType string, d time.Duration) {
	if m == nil {
		return
	}
	m.extractionDuration.RecordDuration(ctx, d, AttrDocumentType.String(documentType))
}

// RecordConnectorExchange records an OAuth code exchange
func (m *MatchingMetrics) RecordConnectorExchange(ctx context.Context, provider, outcome string) {
	if m == nil {
		return
	}
	m.connectorExchanges.Inc(ctx, AttrProvider.String(provider), AttrOutcome.String(outcome))
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewMatchingMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
