package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DispatcherCollector exposes Prometheus metrics for station-control agents
// and the CentralDispatcher's rule-table evaluation and command fan-out.
type DispatcherCollector struct {
	gatherer prometheus.Gatherer

	DecompositionDuration prometheus.Histogram
	CommandsQueued        prometheus.Gauge
	SetpointChangesTotal  prometheus.Counter
	RuleTableHitRatio     prometheus.Gauge
}

// NewDispatcherCollector registers dispatcher metrics against the provided registerer.
func NewDispatcherCollector(reg prometheus.Registerer) (*DispatcherCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	decompHistogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dispatcher_decomposition_duration_seconds",
		Help:    "Duration of station-level goal decomposition into per-device commands.",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
	})
	decompHistogram, err := registerHistogram(reg, decompHistogram, "dispatcher_decomposition_duration_seconds")
	if err != nil {
		return nil, err
	}

	queueGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dispatcher_commands_queued",
		Help: "Number of per-device commands published by station agents during the current tick.",
	})
	queueGauge, err = registerGauge(reg, queueGauge, "dispatcher_commands_queued")
	if err != nil {
		return nil, err
	}

	setpointChanges := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatcher_setpoint_changes_total",
		Help: "Cumulative number of setpoint commands issued by the CentralDispatcher.",
	})
	setpointChanges, err = registerCounter(reg, setpointChanges, "dispatcher_setpoint_changes_total")
	if err != nil {
		return nil, err
	}

	hitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dispatcher_rule_table_hit_ratio",
		Help: "Fraction of rule table evaluations that matched a rule rather than falling through to default.",
	})
	hitRatio, err = registerGauge(reg, hitRatio, "dispatcher_rule_table_hit_ratio")
	if err != nil {
		return nil, err
	}

	return &DispatcherCollector{
		gatherer:              gatherer,
		DecompositionDuration: decompHistogram,
		CommandsQueued:        queueGauge,
		SetpointChangesTotal:  setpointChanges,
		RuleTableHitRatio:     hitRatio,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *DispatcherCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// ObserveDecomposition records a decomposition duration measurement.
func (c *DispatcherCollector) ObserveDecomposition(d time.Duration) {
	if c == nil || c.DecompositionDuration == nil {
		return
	}
	c.DecompositionDuration.Observe(d.Seconds())
}

// SetQueuedCommands updates the queued-commands gauge.
func (c *DispatcherCollector) SetQueuedCommands(count int) {
	if c == nil || c.CommandsQueued == nil {
		return
	}
	c.CommandsQueued.Set(float64(count))
}

// IncSetpointChanges increments the setpoint-change counter.
func (c *DispatcherCollector) IncSetpointChanges() {
	if c == nil || c.SetpointChangesTotal == nil {
		return
	}
	c.SetpointChangesTotal.Inc()
}

// SetRuleTableHitRatio sets the rule table hit ratio, clamped to [0, 1].
func (c *DispatcherCollector) SetRuleTableHitRatio(ratio float64) {
	if c == nil || c.RuleTableHitRatio == nil {
		return
	}
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	c.RuleTableHitRatio.Set(ratio)
}
