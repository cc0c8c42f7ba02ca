package store

import (
	"context"
	"time"

	"langsense-bot/internal/metrics"
)

// instrumented decorates a Store with Prometheus counters and latency
// histograms per collection and operation.
type instrumented struct {
	next Store
	m    *metrics.Metrics
}

// WithMetrics wraps s so every operation is observed.
func WithMetrics(s Store, m *metrics.Metrics) Store {
	if m == nil {
		return s
	}
	return &instrumented{next: s, m: m}
}

func (s *instrumented) observe(col, op string, start time.Time) {
	s.m.StoreOperations.WithLabelValues(col, op).Inc()
	s.m.StoreOpLatency.WithLabelValues(col, op).Observe(time.Since(start).Seconds())
}

func (s *instrumented) List(ctx context.Context, col Collection) ([]Record, error) {
	defer s.observe(col.Name, "list", time.Now())
	return s.next.List(ctx, col)
}

func (s *instrumented) Append(ctx context.Context, col Collection, rec Record) error {
	defer s.observe(col.Name, "append", time.Now())
	return s.next.Append(ctx, col, rec)
}

func (s *instrumented) UpdateWhere(ctx context.Context, col Collection, pred Predicate, mut Mutator) (int, error) {
	defer s.observe(col.Name, "update", time.Now())
	return s.next.UpdateWhere(ctx, col, pred, mut)
}

func (s *instrumented) DeleteWhere(ctx context.Context, col Collection, pred Predicate) (int, error) {
	defer s.observe(col.Name, "delete", time.Now())
	return s.next.DeleteWhere(ctx, col, pred)
}

func (s *instrumented) Close() error { return s.next.Close() }
