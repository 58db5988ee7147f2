// Package harness implements the SimulationHarness: topology build,
// the two-phase per-tick loop (agents, then physics), start-of-tick
// snapshotting for downstream_head, and history recording.
package harness

import (
	"context"
	"time"

	"github.com/leixiaohui-1974/CHS-SDK/agent"
	"github.com/leixiaohui-1974/CHS-SDK/bus"
	"github.com/leixiaohui-1974/CHS-SDK/component"
	"github.com/leixiaohui-1974/CHS-SDK/controller"
	"github.com/leixiaohui-1974/CHS-SDK/diag"
	"github.com/leixiaohui-1974/CHS-SDK/internal/logging"
	"github.com/leixiaohui-1974/CHS-SDK/internal/observability"
	"github.com/leixiaohui-1974/CHS-SDK/state"
	"github.com/leixiaohui-1974/CHS-SDK/topology"
)

// Mode selects how Phase A is driven.
type Mode int

const (
	// ModeOrchestrated: no agents; the harness itself evaluates
	// registered Controllers and injects control_signal directly into
	// Phase B's action maps.
	ModeOrchestrated Mode = iota
	// ModeMAS: agents drive control via bus publishes during Phase A.
	ModeMAS
)

// solverRequirer is implemented by components (st_venant Canals) that
// must not be scheduled through the ordinary Step loop without a
// NetworkSolver collaborator attached.
type solverRequirer interface {
	RequiresSolver() bool
	HasSolver() bool
}

// ControllerBinding ties a Controller to the component it controls and
// the component whose state it observes, for orchestrated-mode Phase A.
type ControllerBinding struct {
	Controller     controller.Controller
	ObservedID     string
	ObservationKey string
}

// Harness is the SimulationHarness: owns the bus, the component state
// store and the history list, per §5's "shared-resource policy."
type Harness struct {
	Bus *bus.MessageBus

	DT       float64
	NumSteps int

	History       []TickResult
	Sink          Sink
	FlushInterval int

	Logger   logging.Logger
	Metrics  *observability.HarnessCollector
	Recorder diag.Recorder

	components  map[string]component.Component
	agents      []agent.Agent
	graph       *topology.Graph
	controllers map[string]ControllerBinding

	order []string
	built bool
}

// New constructs an empty Harness for the given tick size and duration.
func New(dt float64, numSteps int) *Harness {
	b := bus.New()
	return &Harness{
		Bus:         b,
		DT:          dt,
		NumSteps:    numSteps,
		Sink:        MemorySink{},
		Logger:      logging.Noop(),
		Recorder:    diag.NoopRecorder{},
		components:  make(map[string]component.Component),
		graph:       topology.New(),
		controllers: make(map[string]ControllerBinding),
	}
}

// AddComponent registers a component by its own ID.
func (h *Harness) AddComponent(c component.Component) {
	h.components[c.ID()] = c
	h.graph.AddNode(c.ID())
	if receiver, ok := c.(component.MessageReceiver); ok {
		h.wireComponentReceiver(c.ID(), receiver)
	}
}

func (h *Harness) wireComponentReceiver(id string, receiver component.MessageReceiver) {
	h.Bus.Subscribe(bus.Topic("action/"+id), receiver.OnMessage)
}

// AddAgent registers an agent in registration order (Phase A iterates
// agents in this order).
func (h *Harness) AddAgent(a agent.Agent) {
	h.agents = append(h.agents, a)
}

// AddConnection records a topology edge upstream -> downstream.
func (h *Harness) AddConnection(upstream, downstream string) {
	h.graph.AddEdge(upstream, downstream)
}

// AddController registers an orchestrated-mode controller binding for
// controlledID.
func (h *Harness) AddController(controlledID string, binding ControllerBinding) {
	h.controllers[controlledID] = binding
}

// SetLogger installs l on the harness and propagates it to the bus, so
// every bus handler fault and component fault is logged the same way.
func (h *Harness) SetLogger(l logging.Logger) {
	h.Logger = l
	h.Bus.Logger = l
}

// SetMetrics installs a Prometheus collector on the harness and its bus.
func (h *Harness) SetMetrics(m *observability.HarnessCollector) {
	h.Metrics = m
	h.Bus.Metrics = m
}

// SetRecorder installs a non-fatal fault sink on the harness and its bus.
func (h *Harness) SetRecorder(r diag.Recorder) {
	h.Recorder = r
	h.Bus.Recorder = r
}

// Build validates the topology and caches a deterministic schedule.
// It fails with WiringError if a connection links a registered component
// to an ID that was never added, with CycleDetected if the topology is
// not a DAG, and with InvalidConfig if a st_venant Canal is wired
// without a NetworkSolver.
func (h *Harness) Build() error {
	for _, id := range h.graph.Nodes() {
		linked := append(append([]string(nil), h.graph.Predecessors(id)...), h.graph.Successors(id)...)
		for _, other := range linked {
			if _, ok := h.components[other]; !ok {
				return diag.New(diag.WiringError, "connection references unregistered component "+other).WithID(id)
			}
		}
	}
	for _, id := range h.graph.Nodes() {
		c, ok := h.components[id]
		if !ok {
			continue
		}
		if sv, ok := c.(solverRequirer); ok && sv.RequiresSolver() && !sv.HasSolver() {
			return diag.New(diag.InvalidConfig, "st_venant canal scheduled without a NetworkSolver").WithID(id)
		}
	}

	order, err := h.graph.Sort()
	if err != nil {
		return err
	}
	h.order = order
	h.built = true
	return nil
}

// History length tracked for metrics.
func (h *Harness) historyLen() int { return len(h.History) }

// Run executes tick = 0 .. NumSteps-1 in the given mode, recording one
// TickResult per tick. Run fails fast (no remaining ticks execute) on
// any fatal diag.Fault returned by Build or by a Phase B component step;
// the history accumulated so far remains available on the returned
// error's caller side via h.History. Errors returned by bus publishes
// during Phase A, such as CascadeDepthExceeded, are discarded by the
// publishing agents and do not stop Run.
func (h *Harness) Run(ctx context.Context, mode Mode) error {
	if !h.built {
		if err := h.Build(); err != nil {
			return err
		}
	}

	for tick := 0; tick < h.NumSteps; tick++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		currentTime := float64(tick) * h.DT
		h.Bus.SetTick(tick)

		snapshot := h.snapshotStates()

		if mode == ModeMAS {
			h.runPhaseAAgents(currentTime)
		}

		result, err := h.runPhaseBComponents(tick, currentTime, mode, snapshot)
		if err != nil {
			return err
		}

		h.appendHistory(result)

		if h.Metrics != nil {
			h.Metrics.ObserveTick(time.Since(start))
			h.Metrics.SetHistoryLength(h.historyLen())
		}
	}
	return nil
}

func (h *Harness) runPhaseAAgents(currentTime float64) {
	for _, a := range h.agents {
		a.Run(currentTime)
	}
}

func (h *Harness) snapshotStates() map[string]state.State {
	snap := make(map[string]state.State, len(h.components))
	for id, c := range h.components {
		snap[id] = c.GetState()
	}
	return snap
}

func (h *Harness) runPhaseBComponents(tick int, currentTime float64, mode Mode, snapshot map[string]state.State) (TickResult, error) {
	result := TickResult{Time: currentTime, States: make(map[string]state.State, len(h.order))}

	for _, id := range h.order {
		c, ok := h.components[id]
		if !ok {
			continue
		}
		if sv, ok := c.(solverRequirer); ok && sv.RequiresSolver() {
			// st_venant components are driven by their NetworkSolver, not
			// the ordinary per-component Step loop.
			result.States[id] = c.GetState()
			continue
		}

		action := h.buildAction(id, snapshot)
		if mode == ModeOrchestrated {
			if binding, ok := h.controllers[id]; ok {
				observed := snapshot[binding.ObservedID].GetOr(binding.ObservationKey, 0)
				action["control_signal"] = binding.Controller.ComputeAction(observed, h.DT)
			}
		}

		stepStart := time.Now()
		newState, stepErr := h.stepComponent(c, action)
		if h.Metrics != nil {
			h.Metrics.ObserveStep(id, time.Since(stepStart))
		}
		if stepErr != nil {
			if h.Metrics != nil {
				h.Metrics.IncStepFaults()
			}
			return TickResult{}, stepErr.WithTick(tick).WithID(id)
		}
		result.States[id] = newState
	}
	return result, nil
}

// stepComponent recovers a panicking Step as a StepFault, since §7
// states a raising Step is fatal to the tick and run (unlike a
// HandlerFault, which is recovered and logged).
func (h *Harness) stepComponent(c component.Component, action state.Action) (st state.State, fault *diag.Fault) {
	defer func() {
		if r := recover(); r != nil {
			fault = diag.Wrap(diag.StepFault, "component step panicked", asError(r))
		}
	}()
	return c.Step(action, h.DT), nil
}

func asError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return diag.New(diag.StepFault, toString(r))
}

func toString(v any) string {
	type stringer interface{ String() string }
	if s, ok := v.(stringer); ok {
		return s.String()
	}
	if s, ok := v.(string); ok {
		return s
	}
	return "panic"
}

// buildAction assembles a component's action mapping per §4.5:
// inflow is the sum of predecessors' outflow recorded THIS tick;
// upstream_head is the mean of predecessors' water_level/head THIS
// tick; downstream_head and outflow demand are taken from the
// START-OF-TICK snapshot of successors, avoiding a cyclic dependency
// within the tick. outflow is the sum of what this tick's successors
// drew last tick, i.e. what they are asking this component to release;
// a component with no successors is never asked to release anything.
func (h *Harness) buildAction(id string, snapshot map[string]state.State) state.Action {
	action := state.Action{"dt": h.DT}

	var inflow float64
	var upstreamHeads []float64
	for _, predID := range h.graph.Predecessors(id) {
		pred, ok := h.components[predID]
		if !ok {
			continue
		}
		predState := pred.GetState()
		inflow += predState.GetOr("outflow", 0)
		upstreamHeads = append(upstreamHeads, headOf(predState))
	}
	action["inflow"] = inflow
	if len(upstreamHeads) > 0 {
		action["upstream_head"] = mean(upstreamHeads)
	}

	var downstreamHeads []float64
	var requestedOutflow float64
	haveSuccessor := false
	for _, succID := range h.graph.Successors(id) {
		succState, ok := snapshot[succID]
		if !ok {
			continue
		}
		haveSuccessor = true
		downstreamHeads = append(downstreamHeads, headOf(succState))
		requestedOutflow += succState.GetOr("outflow", 0)
	}
	if len(downstreamHeads) > 0 {
		action["downstream_head"] = mean(downstreamHeads)
	}
	if haveSuccessor {
		action["outflow"] = requestedOutflow
	}

	return action
}

func headOf(st state.State) float64 {
	if v, ok := st.Get("water_level"); ok {
		return v
	}
	return st.GetOr("head", 0)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func (h *Harness) appendHistory(result TickResult) {
	_ = h.Sink.WriteTick(result)
	h.History = append(h.History, result)
	if h.FlushInterval > 0 && len(h.History)%h.FlushInterval == 0 {
		h.History = h.History[:0]
	}
}
