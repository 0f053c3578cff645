package sqlexec

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ShruAgarwal/Zoogist-Insights/internal/apperr"
)

// Metrics counts executor outcomes. A nil *Metrics records nothing.
type Metrics struct {
	queries  *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg when reg is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zoogist",
			Subsystem: "sql",
			Name:      "queries_total",
			Help:      "SQL tool calls by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "zoogist",
			Subsystem: "sql",
			Name:      "query_duration_seconds",
			Help:      "Time spent loading the table and running one query.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.queries, m.duration)
	}
	return m
}

func (m *Metrics) observe(kind apperr.Kind, d time.Duration) {
	if m == nil {
		return
	}
	outcome := string(kind)
	if outcome == "" {
		outcome = "success"
	}
	m.queries.WithLabelValues(outcome).Inc()
	m.duration.Observe(d.Seconds())
}
