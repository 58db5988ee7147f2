package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HarnessCollector bundles the Prometheus metrics emitted by a running
// SimulationHarness and provides a ready-to-serve /metrics handler.
type HarnessCollector struct {
	gatherer prometheus.Gatherer

	TickDuration prometheus.Histogram
	StepDuration *prometheus.HistogramVec

	HandlerFaults prometheus.Counter
	StepFaults    prometheus.Counter

	CascadeDepth  prometheus.Gauge
	HistoryLength prometheus.Gauge
}

// NewHarnessCollector registers harness Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when nil.
func NewHarnessCollector(reg prometheus.Registerer) (*HarnessCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	tickDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "harness_tick_duration_seconds",
		Help:    "Wall-clock duration of one simulation tick (Phase A + Phase B + snapshot).",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})
	tickDuration, err := registerHistogram(reg, tickDuration, "harness_tick_duration_seconds")
	if err != nil {
		return nil, err
	}

	stepDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "harness_component_step_duration_seconds",
		Help:    "Duration of a single component's step call, labeled by component ID.",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
	}, []string{"component_id"})
	stepDuration, err = registerHistogramVec(reg, stepDuration, "harness_component_step_duration_seconds")
	if err != nil {
		return nil, err
	}

	handlerFaults, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "harness_handler_faults_total",
		Help: "Cumulative number of non-fatal HandlerFault events recovered from bus subscribers.",
	}), "harness_handler_faults_total")
	if err != nil {
		return nil, err
	}

	stepFaults, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "harness_step_faults_total",
		Help: "Cumulative number of fatal StepFault events raised by component.Step.",
	}), "harness_step_faults_total")
	if err != nil {
		return nil, err
	}

	cascadeDepth, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "harness_bus_cascade_depth",
		Help: "Nesting depth of the most recent synchronous bus publish.",
	}), "harness_bus_cascade_depth")
	if err != nil {
		return nil, err
	}

	historyLength, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "harness_history_length",
		Help: "Current number of TickResult entries retained in the harness history.",
	}), "harness_history_length")
	if err != nil {
		return nil, err
	}

	return &HarnessCollector{
		gatherer:      gatherer,
		TickDuration:  tickDuration,
		StepDuration:  stepDuration,
		HandlerFaults: handlerFaults,
		StepFaults:    stepFaults,
		CascadeDepth:  cascadeDepth,
		HistoryLength: historyLength,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *HarnessCollector) Handler() http.Handler {
	if c == nil {
		return promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{})
	}
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// ObserveTick records one tick's wall-clock duration.
func (c *HarnessCollector) ObserveTick(d time.Duration) {
	if c == nil || c.TickDuration == nil {
		return
	}
	c.TickDuration.Observe(d.Seconds())
}

// ObserveStep records one component's step duration.
func (c *HarnessCollector) ObserveStep(componentID string, d time.Duration) {
	if c == nil || c.StepDuration == nil {
		return
	}
	c.StepDuration.WithLabelValues(componentID).Observe(d.Seconds())
}

// IncHandlerFaults increments the HandlerFault counter.
func (c *HarnessCollector) IncHandlerFaults() {
	if c == nil || c.HandlerFaults == nil {
		return
	}
	c.HandlerFaults.Inc()
}

// IncStepFaults increments the StepFault counter.
func (c *HarnessCollector) IncStepFaults() {
	if c == nil || c.StepFaults == nil {
		return
	}
	c.StepFaults.Inc()
}

// SetCascadeDepth records the nesting depth of the current publish.
func (c *HarnessCollector) SetCascadeDepth(depth int) {
	if c == nil || c.CascadeDepth == nil {
		return
	}
	c.CascadeDepth.Set(float64(depth))
}

// SetHistoryLength records the current history length.
func (c *HarnessCollector) SetHistoryLength(n int) {
	if c == nil || c.HistoryLength == nil {
		return
	}
	c.HistoryLength.Set(float64(n))
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
