package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestObserveTickRecordsHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewHarnessCollector(reg)
	if err != nil {
		t.Fatalf("NewHarnessCollector: %v", err)
	}

	collector.ObserveTick(5 * time.Millisecond)

	if count := histogramSampleCount(t, reg, "harness_tick_duration_seconds", nil); count != 1 {
		t.Fatalf("harness_tick_duration_seconds sample_count = %d, want 1", count)
	}
}

func TestObserveStepLabelsByComponent(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewHarnessCollector(reg)
	if err != nil {
		t.Fatalf("NewHarnessCollector: %v", err)
	}

	collector.ObserveStep("res1", time.Millisecond)

	if count := histogramSampleCount(t, reg, "harness_component_step_duration_seconds", map[string]string{
		"component_id": "res1",
	}); count != 1 {
		t.Fatalf("harness_component_step_duration_seconds sample_count = %d, want 1", count)
	}
}

func TestFaultCountersAndGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewHarnessCollector(reg)
	if err != nil {
		t.Fatalf("NewHarnessCollector: %v", err)
	}

	collector.IncHandlerFaults()
	collector.IncHandlerFaults()
	collector.IncStepFaults()
	collector.SetCascadeDepth(3)
	collector.SetHistoryLength(42)

	if got := testutil.ToFloat64(collector.HandlerFaults); got != 2 {
		t.Fatalf("harness_handler_faults_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.StepFaults); got != 1 {
		t.Fatalf("harness_step_faults_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.CascadeDepth); got != 3 {
		t.Fatalf("harness_bus_cascade_depth = %v, want 3", got)
	}
	if got := testutil.ToFloat64(collector.HistoryLength); got != 42 {
		t.Fatalf("harness_history_length = %v, want 42", got)
	}
}

func TestMetricsHandlerServesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewHarnessCollector(reg)
	if err != nil {
		t.Fatalf("NewHarnessCollector: %v", err)
	}
	collector.ObserveTick(time.Millisecond)
	collector.ObserveStep("res1", time.Millisecond)
	collector.SetHistoryLength(7)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"harness_tick_duration_seconds",
		"harness_component_step_duration_seconds",
		"harness_handler_faults_total",
		"harness_step_faults_total",
		"harness_bus_cascade_depth",
		"harness_history_length",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output", metric)
		}
	}
}

func TestDispatcherCollectorTracksDecisions(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewDispatcherCollector(reg)
	if err != nil {
		t.Fatalf("NewDispatcherCollector: %v", err)
	}

	collector.ObserveDecomposition(time.Microsecond)
	collector.SetQueuedCommands(4)
	collector.IncSetpointChanges()
	collector.SetRuleTableHitRatio(1.5) // should clamp to 1

	if got := testutil.ToFloat64(collector.CommandsQueued); got != 4 {
		t.Fatalf("dispatcher_commands_queued = %v, want 4", got)
	}
	if got := testutil.ToFloat64(collector.SetpointChangesTotal); got != 1 {
		t.Fatalf("dispatcher_setpoint_changes_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.RuleTableHitRatio); got != 1 {
		t.Fatalf("dispatcher_rule_table_hit_ratio = %v, want 1 (clamped)", got)
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(want) == 0 {
		return true
	}
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
