package config

import (
	"sort"
	"strings"

	"github.com/leixiaohui-1974/CHS-SDK/agent"
	"github.com/leixiaohui-1974/CHS-SDK/bus"
	"github.com/leixiaohui-1974/CHS-SDK/component"
	"github.com/leixiaohui-1974/CHS-SDK/diag"
	"github.com/leixiaohui-1974/CHS-SDK/harness"
)

// Build validates cfg and assembles a fully-wired *harness.Harness: one
// name-to-constructor lookup per class family (components, agents,
// controllers), then topology edges, scripted disturbances and
// orchestrated-mode controller bindings, finishing with a call to
// Harness.Build that checks for cycles and unattached st_venant canals.
func Build(cfg *RawConfig) (*harness.Harness, error) {
	dt := cfg.SimulationSettings.DT
	if dt <= 0 {
		return nil, diag.New(diag.InvalidConfig, "simulation_settings.dt must be > 0")
	}

	numSteps := cfg.SimulationSettings.NumSteps
	if numSteps <= 0 {
		if cfg.SimulationSettings.Duration <= 0 {
			return nil, diag.New(diag.InvalidConfig, "simulation_settings must set num_steps or duration")
		}
		numSteps = int(cfg.SimulationSettings.Duration/dt + 0.5)
	}

	h := harness.New(dt, numSteps)
	if cfg.SimulationSettings.MaxCascadeDepth > 0 {
		h.Bus.MaxCascadeDepth = cfg.SimulationSettings.MaxCascadeDepth
	}
	if err := applyHistorySink(h, cfg.SimulationSettings.HistorySink); err != nil {
		return nil, err
	}

	components, err := buildComponents(h, cfg.Components)
	if err != nil {
		return nil, err
	}

	if err := wireTopology(h, components, cfg.Topology); err != nil {
		return nil, err
	}

	ctx := &BuildContext{Bus: h.Bus, Components: components}
	if err := buildAgents(h, ctx, cfg.Agents); err != nil {
		return nil, err
	}

	if err := buildScriptedEvents(h, components, cfg.Disturbances, cfg.ScenarioScript, dt); err != nil {
		return nil, err
	}

	if err := buildControllers(h, components, cfg.Controllers); err != nil {
		return nil, err
	}

	if err := h.Build(); err != nil {
		return nil, err
	}
	return h, nil
}

func applyHistorySink(h *harness.Harness, spec string) error {
	switch {
	case spec == "" || spec == "memory":
		return nil
	case strings.HasPrefix(spec, "jsonl:"):
		sink, err := harness.NewJSONLinesFileSink(strings.TrimPrefix(spec, "jsonl:"))
		if err != nil {
			return diag.Wrap(diag.InvalidConfig, "failed to open history_sink", err)
		}
		h.Sink = sink
		return nil
	default:
		return diag.New(diag.InvalidConfig, "unrecognized history_sink "+spec)
	}
}

func buildComponents(h *harness.Harness, configs []ComponentConfig) (map[string]component.Component, error) {
	components := make(map[string]component.Component, len(configs))
	for _, cc := range configs {
		builder, ok := componentRegistry[cc.Class]
		if !ok {
			return nil, diag.New(diag.UnknownClass, "unknown component class "+cc.Class).WithID(cc.ID)
		}
		c, err := builder(cc.ID, cc)
		if err != nil {
			return nil, err
		}
		h.AddComponent(c)
		components[cc.ID] = c
	}
	return components, nil
}

func wireTopology(h *harness.Harness, components map[string]component.Component, edges []EdgeConfig) error {
	for _, e := range edges {
		if _, ok := components[e.Upstream]; !ok {
			return diag.New(diag.WiringError, "topology edge references unknown component "+e.Upstream)
		}
		if _, ok := components[e.Downstream]; !ok {
			return diag.New(diag.WiringError, "topology edge references unknown component "+e.Downstream)
		}
		h.AddConnection(e.Upstream, e.Downstream)
	}
	return nil
}

func buildAgents(h *harness.Harness, ctx *BuildContext, configs []AgentConfig) error {
	for _, ac := range configs {
		builder, ok := agentRegistry[ac.Class]
		if !ok {
			return diag.New(diag.UnknownClass, "unknown agent class "+ac.Class).WithID(ac.ID)
		}
		a, err := builder(ac.ID, ac.Config, ctx)
		if err != nil {
			return err
		}
		h.AddAgent(a)
	}
	return nil
}

// buildScriptedEvents merges timed disturbances and raw scenario-script
// publishes into one time-sorted ScenarioAgent, since both are
// one-shot scripted bus publishes differing only in how their topic and
// fields are spelled in config.
func buildScriptedEvents(h *harness.Harness, components map[string]component.Component, disturbances []DisturbanceConfig, script []ScenarioEventConfig, dt float64) error {
	var events []agent.ScenarioEvent

	for _, d := range disturbances {
		if _, ok := components[d.ComponentID]; !ok {
			return diag.New(diag.WiringError, "disturbance references unknown component "+d.ComponentID)
		}
		events = append(events, agent.ScenarioEvent{
			Time:   float64(d.TimeStep) * dt,
			Topic:  bus.Topic("action/" + d.ComponentID),
			Fields: map[string]float64{d.Action: d.Value},
		})
	}
	for _, s := range script {
		events = append(events, agent.ScenarioEvent{
			Time:   s.Time,
			Topic:  bus.Topic(s.Topic),
			Fields: s.Message,
		})
	}
	if len(events) == 0 {
		return nil
	}

	sortEvents(events)
	h.AddAgent(agent.NewScenarioAgent("scripted-events", h.Bus, events))
	return nil
}

func sortEvents(events []agent.ScenarioEvent) {
	sort.SliceStable(events, func(i, j int) bool { return events[i].Time < events[j].Time })
}

func buildControllers(h *harness.Harness, components map[string]component.Component, configs []ControllerConfig) error {
	for _, cc := range configs {
		if _, ok := components[cc.Wiring.ControlledID]; !ok {
			return diag.New(diag.WiringError, "controller references unknown controlled component "+cc.Wiring.ControlledID).WithID(cc.ID)
		}
		if _, ok := components[cc.Wiring.ObservedID]; !ok {
			return diag.New(diag.WiringError, "controller references unknown observed component "+cc.Wiring.ObservedID).WithID(cc.ID)
		}
		ctrl, err := BuildController(cc.Type, cc.Params)
		if err != nil {
			return wrapWithID(err, cc.ID)
		}
		h.AddController(cc.Wiring.ControlledID, harness.ControllerBinding{
			Controller:     ctrl,
			ObservedID:     cc.Wiring.ObservedID,
			ObservationKey: cc.Wiring.ObservationKey,
		})
	}
	return nil
}
