package workflow

import (
	"context"
	"errors"
	"testing"
)

type ctxKey string

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateIdle, false},
		{StateBuilding, false},
		{StateRendering, false},
		{StateAssembling, false},
		{StateDelivering, false},
		{StateDone, true},
		{StateFailed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"idle", StateIdle, true},
		{"done", StateDone, true},
		{"invalid state", State("INVALID"), false},
		{"empty state", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestTrigger_String(t *testing.T) {
	if got := TriggerPageRendered.String(); got != "PAGE_RENDERED" {
		t.Errorf("Trigger.String() = %v, want %v", got, "PAGE_RENDERED")
	}
}

func TestBuilder_ConfigureReturnsSameConfig(t *testing.T) {
	builder := NewBuilder()

	config := builder.Configure(StateIdle)
	if config == nil {
		t.Fatal("Configure() returned nil")
	}
	if config2 := builder.Configure(StateIdle); config != config2 {
		t.Error("Configure() should return same config for same state")
	}
}

func TestBuilder_PanicsOnInvalidStates(t *testing.T) {
	cases := map[string]func(){
		"configure": func() { NewBuilder().Configure(State("INVALID")) },
		"build":     func() { NewBuilder().Build(State("INVALID")) },
		"permit":    func() { NewBuilder().Configure(StateIdle).Permit(TriggerStart, State("INVALID")) },
	}

	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Errorf("%s should panic on invalid state", name)
				}
			}()
			fn()
		})
	}
}

func TestStateConfiguration_PermitIf_GuardFailsKeepsState(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateIdle).
		PermitIf(TriggerStart, StateBuilding, func(ctx context.Context) bool { return false })

	machine := builder.Build(StateIdle)

	err := machine.Fire(context.Background(), TriggerStart)
	if !errors.Is(err, ErrGuardFailed) {
		t.Fatalf("Fire() error = %v, want %v", err, ErrGuardFailed)
	}
	if machine.State() != StateIdle {
		t.Errorf("State should remain %v after failed Fire(), got %v", StateIdle, machine.State())
	}
	if len(machine.History()) != 0 {
		t.Errorf("History() = %v, want empty", machine.History())
	}
}

func TestStateConfiguration_PermitIf_FirstPassingGuardWins(t *testing.T) {
	key := ctxKey("deliver")
	builder := NewBuilder()
	builder.Configure(StateAssembling).
		PermitIf(TriggerComplete, StateDelivering, func(ctx context.Context) bool {
			return ctx.Value(key).(bool)
		}).
		PermitIf(TriggerComplete, StateDone, func(ctx context.Context) bool {
			return !ctx.Value(key).(bool)
		})

	m1 := builder.Build(StateAssembling)
	if err := m1.Fire(context.WithValue(context.Background(), key, true), TriggerComplete); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if m1.State() != StateDelivering {
		t.Errorf("State = %v, want %v", m1.State(), StateDelivering)
	}

	m2 := builder.Build(StateAssembling)
	if err := m2.Fire(context.WithValue(context.Background(), key, false), TriggerComplete); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if m2.State() != StateDone {
		t.Errorf("State = %v, want %v", m2.State(), StateDone)
	}
}

func TestStateMachine_Fire_InvalidTransition(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateIdle).Permit(TriggerStart, StateBuilding)
	machine := builder.Build(StateIdle)

	err := machine.Fire(context.Background(), TriggerComplete)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}
	if machine.State() != StateIdle {
		t.Errorf("State should remain %v, got %v", StateIdle, machine.State())
	}
}

func TestStateMachine_Fire_NoConfiguration(t *testing.T) {
	machine := NewBuilder().Build(StateBuilding)

	if err := machine.Fire(context.Background(), TriggerBeginRender); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}
}

func TestStateMachine_PermittedTriggersSorted(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateRendering).
		Permit(TriggerRenderComplete, StateAssembling).
		PermitReentry(TriggerPageRendered).
		Permit(TriggerFail, StateFailed)

	machine := builder.Build(StateRendering)

	got := machine.PermittedTriggers()
	want := []Trigger{TriggerFail, TriggerPageRendered, TriggerRenderComplete}
	if len(got) != len(want) {
		t.Fatalf("PermittedTriggers() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("PermittedTriggers()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestStateMachine_BuiltMachinesAreIndependent(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateIdle).Permit(TriggerStart, StateBuilding)

	m1 := builder.Build(StateIdle)
	m2 := builder.Build(StateIdle)

	// later configuration must not leak into already built machines
	builder.Configure(StateIdle).Permit(TriggerFail, StateFailed)

	if err := m1.Fire(context.Background(), TriggerStart); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if m2.State() != StateIdle {
		t.Errorf("m2 state = %v, want %v", m2.State(), StateIdle)
	}
	if m2.CanFire(TriggerFail) {
		t.Error("m2 should not see configuration added after Build()")
	}
}

func TestExportMachine_HappyPathWithDelivery(t *testing.T) {
	var seen []Transition
	machine := NewExportMachine(nil, func(_ context.Context, tr Transition) {
		seen = append(seen, tr)
	})

	steps := []struct {
		trigger       Trigger
		expectedState State
	}{
		{TriggerStart, StateBuilding},
		{TriggerBeginRender, StateRendering},
		{TriggerPageRendered, StateRendering},
		{TriggerPageRendered, StateRendering},
		{TriggerRenderComplete, StateAssembling},
		{TriggerDeliver, StateDelivering},
		{TriggerComplete, StateDone},
	}

	for i, step := range steps {
		if err := machine.Fire(context.Background(), step.trigger); err != nil {
			t.Fatalf("step %d: Fire(%v) failed: %v", i, step.trigger, err)
		}
		if machine.State() != step.expectedState {
			t.Errorf("step %d: State after Fire(%v) = %v, want %v", i, step.trigger, machine.State(), step.expectedState)
		}
	}

	if len(seen) != len(steps) {
		t.Errorf("listener saw %d transitions, want %d", len(seen), len(steps))
	}
	if len(machine.History()) != len(steps) {
		t.Errorf("History() has %d entries, want %d", len(machine.History()), len(steps))
	}
	if len(machine.PermittedTriggers()) != 0 {
		t.Errorf("terminal state should have no permitted triggers, got %v", machine.PermittedTriggers())
	}
	if err := machine.Fire(context.Background(), TriggerFail); !errors.Is(err, ErrTerminalState) {
		t.Errorf("Fire() after Done error = %v, want %v", err, ErrTerminalState)
	}
}

func TestExportMachine_SkipsDelivery(t *testing.T) {
	machine := NewExportMachine(nil)

	for _, tr := range []Trigger{TriggerStart, TriggerBeginRender, TriggerRenderComplete, TriggerComplete} {
		if err := machine.Fire(context.Background(), tr); err != nil {
			t.Fatalf("Fire(%v) failed: %v", tr, err)
		}
	}
	if machine.State() != StateDone {
		t.Errorf("State = %v, want %v", machine.State(), StateDone)
	}
}

func TestExportMachine_ValidationGuardKeepsIdle(t *testing.T) {
	machine := NewExportMachine(func(context.Context) bool { return false })

	if err := machine.Fire(context.Background(), TriggerStart); !errors.Is(err, ErrGuardFailed) {
		t.Fatalf("Fire() error = %v, want %v", err, ErrGuardFailed)
	}
	if machine.State() != StateIdle {
		t.Errorf("State = %v, want %v", machine.State(), StateIdle)
	}
}

func TestExportMachine_FailFromWorkingStates(t *testing.T) {
	prefixes := map[State][]Trigger{
		StateBuilding:   {TriggerStart},
		StateRendering:  {TriggerStart, TriggerBeginRender},
		StateAssembling: {TriggerStart, TriggerBeginRender, TriggerRenderComplete},
	}

	for state, prefix := range prefixes {
		t.Run(string(state), func(t *testing.T) {
			machine := NewExportMachine(nil)
			for _, tr := range prefix {
				if err := machine.Fire(context.Background(), tr); err != nil {
					t.Fatalf("Fire(%v) failed: %v", tr, err)
				}
			}
			if machine.State() != state {
				t.Fatalf("State = %v, want %v", machine.State(), state)
			}
			if err := machine.Fire(context.Background(), TriggerFail); err != nil {
				t.Fatalf("Fire(FAIL) failed: %v", err)
			}
			if machine.State() != StateFailed {
				t.Errorf("State = %v, want %v", machine.State(), StateFailed)
			}
		})
	}
}

func TestExportMachine_DeliveringCannotFail(t *testing.T) {
	machine := NewExportMachine(nil)
	for _, tr := range []Trigger{TriggerStart, TriggerBeginRender, TriggerRenderComplete, TriggerDeliver} {
		if err := machine.Fire(context.Background(), tr); err != nil {
			t.Fatalf("Fire(%v) failed: %v", tr, err)
		}
	}

	if machine.CanFire(TriggerFail) {
		t.Error("delivery failure must not fail the export")
	}
}
