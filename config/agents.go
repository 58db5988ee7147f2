package config

import (
	"github.com/leixiaohui-1974/CHS-SDK/agent"
	"github.com/leixiaohui-1974/CHS-SDK/bus"
	"github.com/leixiaohui-1974/CHS-SDK/diag"
)

func registerDefaultAgents() {
	RegisterAgent("digital_twin", buildDigitalTwin)
	RegisterAgent("local_control", buildLocalControl)
	RegisterAgent("central_dispatcher", buildCentralDispatcher)
	RegisterAgent("rainfall", buildRainfall)
	RegisterAgent("dynamic_rainfall", buildDynamicRainfall)
	RegisterAgent("water_use", buildWaterUse)
	RegisterAgent("csv_inflow", buildCsvInflow)
	RegisterAgent("scenario", buildScenario)
	RegisterAgent("pump_control", buildPumpControl)
	RegisterAgent("pump_station_control", buildPumpStationControl)
	RegisterAgent("parameter_identification", buildParameterIdentification)
}

func buildDigitalTwin(id string, cfg map[string]any, ctx *BuildContext) (agent.Agent, error) {
	componentID := str(cfg, "component_id", "")
	comp, ok := ctx.Components[componentID]
	if !ok {
		return nil, diag.New(diag.WiringError, "digital_twin agent references unknown component "+componentID).WithID(id)
	}

	smoothing := agent.SmoothingConfig{}
	if sm := subMap(cfg, "smoothing"); sm != nil {
		smoothing.Alpha = f64(sm, "alpha", 0)
		if keys := stringList(sm, "keys"); len(keys) > 0 {
			smoothing.Keys = make(map[string]bool, len(keys))
			for _, k := range keys {
				smoothing.Keys[k] = true
			}
		}
	}

	stateTopic := bus.Topic(str(cfg, "state_topic", ""))
	return agent.NewDigitalTwinAgent(id, ctx.Bus, comp, stateTopic, smoothing), nil
}

func buildLocalControl(id string, cfg map[string]any, ctx *BuildContext) (agent.Agent, error) {
	ctrlCfg := subMap(cfg, "controller")
	if ctrlCfg == nil {
		return nil, diag.New(diag.InvalidConfig, "local_control agent missing controller config").WithID(id)
	}
	ctrlType := str(ctrlCfg, "type", "")
	ctrl, err := BuildController(ctrlType, floatAnyMap(subMap(ctrlCfg, "params")))
	if err != nil {
		return nil, wrapWithID(err, id)
	}

	return agent.NewLocalControlAgent(
		id, ctx.Bus, ctrl,
		bus.Topic(str(cfg, "observation_topic", "")),
		str(cfg, "observation_key", ""),
		bus.Topic(str(cfg, "command_topic", "")),
		bus.Topic(str(cfg, "action_topic", "")),
	), nil
}

func buildCentralDispatcher(id string, cfg map[string]any, ctx *BuildContext) (agent.Agent, error) {
	var rules []agent.Rule
	for _, raw := range list(cfg, "rules") {
		ruleCfg, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		operator := str(ruleCfg, "operator", ">")
		threshold := f64(ruleCfg, "threshold", 0)
		rules = append(rules, agent.Rule{
			Predicate:    comparator(operator, threshold),
			Setpoint:     f64(ruleCfg, "setpoint", 0),
			CommandTopic: bus.Topic(str(ruleCfg, "command_topic", "")),
		})
	}

	var defaultTopics []bus.Topic
	for _, t := range stringList(cfg, "default_topics") {
		defaultTopics = append(defaultTopics, bus.Topic(t))
	}

	return agent.NewCentralDispatcher(
		id, ctx.Bus,
		bus.Topic(str(cfg, "observation_topic", "")),
		str(cfg, "observation_key", ""),
		rules, defaultTopics, f64(cfg, "default", 0),
	), nil
}

func comparator(operator string, threshold float64) func(float64) bool {
	switch operator {
	case "<":
		return func(v float64) bool { return v < threshold }
	case ">=":
		return func(v float64) bool { return v >= threshold }
	case "<=":
		return func(v float64) bool { return v <= threshold }
	case "==":
		return func(v float64) bool { return v == threshold }
	default: // ">"
		return func(v float64) bool { return v > threshold }
	}
}

func buildProvider(cfg map[string]any) agent.InflowProvider {
	providerCfg := subMap(cfg, "provider")
	if providerCfg == nil {
		return agent.ConstantInflow(0)
	}
	switch str(providerCfg, "type", "constant") {
	case "table":
		return agent.TableInflow{
			Times:  floatList(providerCfg, "times"),
			Values: floatList(providerCfg, "values"),
		}
	default:
		return agent.ConstantInflow(f64(providerCfg, "value", 0))
	}
}

func buildRainfall(id string, cfg map[string]any, ctx *BuildContext) (agent.Agent, error) {
	return agent.NewRainfallAgent(
		id, ctx.Bus,
		bus.Topic(str(cfg, "topic", "")), str(cfg, "field", ""),
		buildProvider(cfg), f64(cfg, "active_from", 0), f64(cfg, "active_until", 0),
	), nil
}

func buildDynamicRainfall(id string, cfg map[string]any, ctx *BuildContext) (agent.Agent, error) {
	return agent.NewDynamicRainfallAgent(
		id, ctx.Bus,
		bus.Topic(str(cfg, "topic", "")), str(cfg, "field", ""),
		buildProvider(cfg), f64(cfg, "active_from", 0), f64(cfg, "active_until", 0),
	), nil
}

func buildWaterUse(id string, cfg map[string]any, ctx *BuildContext) (agent.Agent, error) {
	return agent.NewWaterUseAgent(
		id, ctx.Bus,
		bus.Topic(str(cfg, "topic", "")), str(cfg, "field", ""),
		buildProvider(cfg), f64(cfg, "active_from", 0), f64(cfg, "active_until", 0),
	), nil
}

func buildCsvInflow(id string, cfg map[string]any, ctx *BuildContext) (agent.Agent, error) {
	return agent.NewCsvInflowAgent(
		id, ctx.Bus,
		bus.Topic(str(cfg, "topic", "")), str(cfg, "field", ""),
		buildProvider(cfg),
	), nil
}

func buildScenario(id string, cfg map[string]any, ctx *BuildContext) (agent.Agent, error) {
	events := make([]agent.ScenarioEvent, 0, len(list(cfg, "events")))
	for _, raw := range list(cfg, "events") {
		eventCfg, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		fields := make(map[string]float64)
		if msg := subMap(eventCfg, "message"); msg != nil {
			for k, v := range msg {
				if f, ok := v.(float64); ok {
					fields[k] = f
				}
			}
		}
		events = append(events, agent.ScenarioEvent{
			Time:   f64(eventCfg, "time", 0),
			Topic:  bus.Topic(str(eventCfg, "topic", "")),
			Fields: fields,
		})
	}
	sortEvents(events)
	return agent.NewScenarioAgent(id, ctx.Bus, events), nil
}

func buildDevices(cfg map[string]any, key string) []agent.Device {
	raw := list(cfg, key)
	devices := make([]agent.Device, 0, len(raw))
	for _, entry := range raw {
		dc, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		devices = append(devices, agent.Device{
			ID:       str(dc, "id", ""),
			Topic:    bus.Topic(str(dc, "topic", "")),
			Capacity: f64(dc, "capacity", 0),
			Priority: i(dc, "priority", 0),
		})
	}
	return devices
}

func buildPumpControl(id string, cfg map[string]any, ctx *BuildContext) (agent.Agent, error) {
	rule := agent.DecompositionRule(str(cfg, "rule", string(agent.DecompositionProportional)))
	return agent.NewPumpControlAgent(
		id, ctx.Bus, bus.Topic(str(cfg, "goal_topic", "")), buildDevices(cfg, "devices"), rule,
	), nil
}

func buildPumpStationControl(id string, cfg map[string]any, ctx *BuildContext) (agent.Agent, error) {
	return agent.NewPumpStationControlAgent(
		id, ctx.Bus, bus.Topic(str(cfg, "goal_topic", "")), buildDevices(cfg, "devices"),
	), nil
}

func buildParameterIdentification(id string, cfg map[string]any, ctx *BuildContext) (agent.Agent, error) {
	targetID := str(cfg, "target_component_id", "")
	comp, ok := ctx.Components[targetID]
	if !ok {
		return nil, diag.New(diag.WiringError, "parameter_identification agent references unknown component "+targetID).WithID(id)
	}
	target, ok := comp.(agent.ParameterIdentifiable)
	if !ok {
		return nil, diag.New(diag.InvalidConfig, "component "+targetID+" does not implement IdentifyParameters").WithID(id)
	}

	return agent.NewParameterIdentificationAgent(
		id, ctx.Bus, target, i(cfg, "interval", 1),
		bus.Topic(str(cfg, "input_topic", "")), str(cfg, "input_key", ""),
		bus.Topic(str(cfg, "observation_topic", "")), str(cfg, "observation_key", ""),
	), nil
}

// floatAnyMap narrows a decoded map[string]any (YAML/JSON numbers) down
// to the map[string]float64 the controller registry expects.
func floatAnyMap(m map[string]any) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		switch n := v.(type) {
		case float64:
			out[k] = n
		case int:
			out[k] = float64(n)
		}
	}
	return out
}

func wrapWithID(err error, id string) error {
	if f, ok := err.(*diag.Fault); ok {
		return f.WithID(id)
	}
	return err
}
