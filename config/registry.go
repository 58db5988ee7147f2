package config

import (
	"github.com/leixiaohui-1974/CHS-SDK/agent"
	"github.com/leixiaohui-1974/CHS-SDK/bus"
	"github.com/leixiaohui-1974/CHS-SDK/component"
	"github.com/leixiaohui-1974/CHS-SDK/controller"
	"github.com/leixiaohui-1974/CHS-SDK/diag"
	"github.com/leixiaohui-1974/CHS-SDK/state"
)

// ComponentBuilder constructs one component.Component from its config
// entry. cc.Parameters/InitialState arrive pre-typed; cc.Model carries
// the Canal sub-model string for the one class that needs it.
type ComponentBuilder func(id string, cc ComponentConfig) (component.Component, error)

// BuildContext is what an AgentBuilder needs beyond its own config dict:
// the bus every agent publishes/subscribes on, and the already-built
// components an agent may reference by ID.
type BuildContext struct {
	Bus        *bus.MessageBus
	Components map[string]component.Component
}

// AgentBuilder constructs one agent.Agent from its class-specific config
// dict (spec.md §4.6's "config dict" per agent).
type AgentBuilder func(id string, cfg map[string]any, ctx *BuildContext) (agent.Agent, error)

// ControllerBuilder constructs one controller.Controller from a flat
// scalar params map.
type ControllerBuilder func(params map[string]float64) (controller.Controller, error)

var (
	componentRegistry  = map[string]ComponentBuilder{}
	agentRegistry      = map[string]AgentBuilder{}
	controllerRegistry = map[string]ControllerBuilder{}
)

// RegisterComponent installs (or overrides) the constructor used for a
// component class name. Call from an init() to extend the registry
// without modifying this package.
func RegisterComponent(class string, b ComponentBuilder) { componentRegistry[class] = b }

// RegisterAgent installs (or overrides) the constructor used for an
// agent class name.
func RegisterAgent(class string, b AgentBuilder) { agentRegistry[class] = b }

// RegisterController installs (or overrides) the constructor used for a
// controller type name.
func RegisterController(typ string, b ControllerBuilder) { controllerRegistry[typ] = b }

// BuildController looks up typ in the controller registry and invokes
// it, surfacing UnknownClass if typ is not registered.
func BuildController(typ string, params map[string]float64) (controller.Controller, error) {
	b, ok := controllerRegistry[typ]
	if !ok {
		return nil, diag.New(diag.UnknownClass, "unknown controller type "+typ)
	}
	return b(params)
}

func init() {
	registerDefaultComponents()
	registerDefaultControllers()
	registerDefaultAgents()
}

func registerDefaultComponents() {
	RegisterComponent("reservoir", func(id string, cc ComponentConfig) (component.Component, error) {
		return component.NewReservoir(id, state.NewParameters(cc.Parameters), state.State(cc.InitialState))
	})
	RegisterComponent("gate", func(id string, cc ComponentConfig) (component.Component, error) {
		return component.NewGate(id, state.NewParameters(cc.Parameters), state.State(cc.InitialState))
	})
	RegisterComponent("pipe", func(id string, cc ComponentConfig) (component.Component, error) {
		return component.NewPipe(id, state.NewParameters(cc.Parameters), state.State(cc.InitialState))
	})
	RegisterComponent("pump", func(id string, cc ComponentConfig) (component.Component, error) {
		return component.NewPump(id, state.NewParameters(cc.Parameters), state.State(cc.InitialState))
	})
	RegisterComponent("valve", func(id string, cc ComponentConfig) (component.Component, error) {
		return component.NewValve(id, state.NewParameters(cc.Parameters), state.State(cc.InitialState))
	})
	RegisterComponent("turbine", func(id string, cc ComponentConfig) (component.Component, error) {
		return component.NewTurbine(id, state.NewParameters(cc.Parameters), state.State(cc.InitialState))
	})
	RegisterComponent("canal", func(id string, cc ComponentConfig) (component.Component, error) {
		model := component.CanalModel(cc.Model)
		if model == "" {
			model = component.CanalIntegral
		}
		return component.NewCanal(id, model, state.NewParameters(cc.Parameters), state.State(cc.InitialState))
	})
}

func registerDefaultControllers() {
	RegisterController("pid", func(params map[string]float64) (controller.Controller, error) {
		p := floatMap(params)
		return controller.NewPID(
			p["kp"], p["ki"], p["kd"],
			p["min_output"], p["max_output"], p["setpoint"],
		), nil
	})
	RegisterController("bangbang", func(params map[string]float64) (controller.Controller, error) {
		p := floatMap(params)
		return controller.NewBangBang(p["low"], p["high"], p["hysteresis"], p["setpoint"]), nil
	})
}
