package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestReconcileMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewReconcileMetrics(reg)
	metrics.AddCascadeRows("add_to_all_stores", 3)
	metrics.IncCascadeFailure("weekly_plan_assign")
	metrics.ObservePurchase("ok", 120*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "cascade_adds_total", "operation", "add_to_all_stores"); err != nil {
		t.Fatalf("fetch cascade adds: %v", err)
	} else if got != 3 {
		t.Fatalf("expected cascade_adds_total=3, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "cascade_failures_total", "operation", "weekly_plan_assign"); err != nil {
		t.Fatalf("fetch cascade failures: %v", err)
	} else if got != 1 {
		t.Fatalf("expected cascade_failures_total=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "purchase_closeout_seconds", "outcome", "ok"); err != nil {
		t.Fatalf("fetch purchase duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestReconcileMetricsIgnoresNonPositiveRows(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewReconcileMetrics(reg)
	metrics.AddCascadeRows("add_to_all_stores", 0)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if mf := findMetricFamily(mfs, "cascade_adds_total"); mf != nil && len(mf.GetMetric()) > 0 {
		t.Fatalf("expected no cascade_adds_total samples, got %d", len(mf.GetMetric()))
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
