package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReconcileMetrics records outcomes of list reconciliation fan-outs.
type ReconcileMetrics struct {
	cascadeAdds     *prometheus.CounterVec
	cascadeFailures *prometheus.CounterVec
	purchaseTime    *prometheus.HistogramVec
}

// NewReconcileMetrics registers the reconciliation metrics on the provided registerer.
func NewReconcileMetrics(reg prometheus.Registerer) *ReconcileMetrics {
	if reg == nil {
		return &ReconcileMetrics{}
	}
	cascadeAdds := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cascade_adds_total",
		Help: "List rows created by fan-out operations.",
	}, []string{"operation"})
	cascadeFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cascade_failures_total",
		Help: "Per-item failures inside fan-out operations.",
	}, []string{"operation"})
	purchaseTime := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "purchase_closeout_seconds",
		Help:    "Duration of purchase close-out transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	reg.MustRegister(cascadeAdds, cascadeFailures, purchaseTime)
	return &ReconcileMetrics{
		cascadeAdds:     cascadeAdds,
		cascadeFailures: cascadeFailures,
		purchaseTime:    purchaseTime,
	}
}

// AddCascadeRows records rows created by the named fan-out operation.
func (m *ReconcileMetrics) AddCascadeRows(operation string, rows int) {
	if m == nil || m.cascadeAdds == nil || rows <= 0 {
		return
	}
	m.cascadeAdds.WithLabelValues(normalizeLabel(operation)).Add(float64(rows))
}

// IncCascadeFailure increments the failure counter for the named fan-out operation.
func (m *ReconcileMetrics) IncCascadeFailure(operation string) {
	if m == nil || m.cascadeFailures == nil {
		return
	}
	m.cascadeFailures.WithLabelValues(normalizeLabel(operation)).Inc()
}

// ObservePurchase records the duration of a purchase close-out.
func (m *ReconcileMetrics) ObservePurchase(outcome string, duration time.Duration) {
	if m == nil || m.purchaseTime == nil {
		return
	}
	m.purchaseTime.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
