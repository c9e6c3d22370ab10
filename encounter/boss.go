// Package encounter runs tengo-scripted boss encounters. A scene names its
// script; the runtime keeps the script's mutable state between ticks and can
// be reset wholesale when the player respawns.
package encounter

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/milk9111/hollowmere/prefabs"
)

// Hooks are the callbacks a script can reach back into the game with.
type Hooks struct {
	// OnStage fires when the script changes stage.
	OnStage func(stage string)
	// OnEvent fires for script-emitted events.
	OnEvent func(event string)
}

const lifecycleDispatchScript = `
if __phase == "enter" {
	onEnter(__engine, __state, __stage)
} else if __phase == "update" {
	update(__engine, __state, __stage)
} else if __phase == "exit" {
	onExit(__engine, __state, __stage)
}
`

// Runtime is one compiled encounter script plus its mutable state.
type Runtime struct {
	compiled *tengo.Compiled
	hooks    Hooks

	state   *tengo.Map
	initial string
	stage   string
	pending string
	started bool
}

// Load compiles the named script from the prefab script store.
func Load(name string, hooks Hooks) (*Runtime, error) {
	src, err := prefabs.LoadScript(name)
	if err != nil {
		return nil, fmt.Errorf("encounter: load script %s: %w", name, err)
	}
	return New(src, hooks)
}

// New compiles an encounter script.
func New(src []byte, hooks Hooks) (*Runtime, error) {
	script := tengo.NewScript(append(append([]byte{}, src...), []byte("\n"+lifecycleDispatchScript)...))
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	_ = script.Add("__stage", "")
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("encounter: compile: %w", err)
	}

	rt := &Runtime{
		compiled: compiled,
		hooks:    hooks,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
		initial:  "waiting",
	}

	// Resolve the optional initial stage from the script global.
	if err := rt.runPhase("noop"); err != nil {
		return nil, err
	}
	if compiled.IsDefined("initial_stage") {
		if s := strings.TrimSpace(compiled.Get("initial_stage").String()); s != "" {
			rt.initial = s
		}
	}
	rt.stage = rt.initial
	return rt, nil
}

// Stage returns the current encounter stage.
func (rt *Runtime) Stage() string {
	if rt == nil {
		return ""
	}
	return rt.stage
}

// Started reports whether the encounter has begun.
func (rt *Runtime) Started() bool {
	return rt != nil && rt.started
}

// Start begins the encounter, entering the initial stage.
func (rt *Runtime) Start() error {
	if rt == nil || rt.started {
		return nil
	}
	rt.started = true
	if err := rt.runPhase("enter"); err != nil {
		return err
	}
	return rt.applyPending()
}

// Update advances the encounter one tick. Before Start it does nothing.
func (rt *Runtime) Update() error {
	if rt == nil || !rt.started {
		return nil
	}
	if err := rt.runPhase("update"); err != nil {
		return err
	}
	return rt.applyPending()
}

// Reset wipes all script state back to the initial stage. A respawn calls
// this so a half-finished encounter starts over cleanly.
func (rt *Runtime) Reset() {
	if rt == nil {
		return
	}
	rt.state = &tengo.Map{Value: map[string]tengo.Object{}}
	rt.stage = rt.initial
	rt.pending = ""
	rt.started = false
}

func (rt *Runtime) applyPending() error {
	if rt.pending == "" || rt.pending == rt.stage {
		rt.pending = ""
		return nil
	}
	if err := rt.runPhase("exit"); err != nil {
		return err
	}
	rt.stage = rt.pending
	rt.pending = ""
	if rt.hooks.OnStage != nil {
		rt.hooks.OnStage(rt.stage)
	}
	return rt.runPhase("enter")
}

func (rt *Runtime) runPhase(phase string) error {
	if rt.compiled == nil {
		return fmt.Errorf("encounter: nil runtime")
	}
	if err := rt.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := rt.compiled.Set("__engine", rt.engine()); err != nil {
		return err
	}
	if err := rt.compiled.Set("__state", rt.state); err != nil {
		return err
	}
	if err := rt.compiled.Set("__stage", rt.stage); err != nil {
		return err
	}
	return rt.compiled.Run()
}

func (rt *Runtime) engine() *tengo.ImmutableMap {
	values := map[string]tengo.Object{}
	values["set_stage"] = &tengo.UserFunction{Name: "set_stage", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		s, ok := tengo.ToString(args[0])
		if !ok || s == "" {
			return tengo.FalseValue, nil
		}
		rt.pending = s
		return tengo.TrueValue, nil
	}}
	values["emit"] = &tengo.UserFunction{Name: "emit", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		s, ok := tengo.ToString(args[0])
		if !ok {
			return tengo.FalseValue, nil
		}
		if rt.hooks.OnEvent != nil {
			rt.hooks.OnEvent(s)
		}
		return tengo.TrueValue, nil
	}}
	return &tengo.ImmutableMap{Value: values}
}
