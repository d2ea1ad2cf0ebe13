// Package metrics holds the Prometheus collectors of the ingestion pipeline.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "despesas"

// Skip reasons used as label values of RecordsSkipped.
const (
	ReasonMalformedAmount = "malformed_amount"
	ReasonMalformedDate   = "malformed_date"
	ReasonMissingDocument = "missing_document"
	ReasonUndecodable     = "undecodable"
	ReasonDuplicate       = "duplicate"
	ReasonWriteFailure    = "write_failure"
)

// Pipeline groups the collectors updated by the services.
type Pipeline struct {
	Periods        *prometheus.CounterVec
	RecordsWritten prometheus.Counter
	RecordsSkipped *prometheus.CounterVec
	BatchFailures  prometheus.Counter
	Mismatches     prometheus.Counter
	Recategorized  prometheus.Counter
	FetchDuration  prometheus.Histogram
}

// NewPipeline creates the collectors and registers them on reg.
func NewPipeline(reg prometheus.Registerer) (*Pipeline, error) {
	m := &Pipeline{
		Periods: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "periods_total",
			Help:      "Periods that reached a terminal state, by state.",
		}, []string{"state"}),
		RecordsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_written_total",
			Help:      "Expense records upserted into the store.",
		}),
		RecordsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Expense records dropped before or during write, by reason.",
		}, []string{"reason"}),
		BatchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_failures_total",
			Help:      "Upsert batches that failed.",
		}),
		Mismatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_mismatches_total",
			Help:      "Periods flagged by the reconciler.",
		}),
		Recategorized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recategorized_total",
			Help:      "Rows moved out of the fallback category.",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_fetch_duration_seconds",
			Help:      "Latency of upstream period fetches.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}

	var errs []error
	for _, c := range []prometheus.Collector{
		m.Periods, m.RecordsWritten, m.RecordsSkipped, m.BatchFailures,
		m.Mismatches, m.Recategorized, m.FetchDuration,
	} {
		if err := reg.Register(c); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return m, nil
}

// Discard returns collectors registered on a private registry.
func Discard() *Pipeline {
	m, _ := NewPipeline(prometheus.NewRegistry())
	return m
}
