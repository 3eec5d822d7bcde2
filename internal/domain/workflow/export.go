package workflow

// NewExportMachine wires the export lifecycle:
//
//	Idle -> Building -> Rendering(i/N) -> Assembling -> [Delivering] -> Done
//
// with Failed reachable from every non-terminal working state. The start guard decides
// whether the inputs are acceptable; when it fails the machine stays in Idle.
func NewExportMachine(startGuard GuardFunc, listeners ...TransitionFunc) StateMachine {
	b := NewBuilder()
	for _, fn := range listeners {
		b.OnTransition(fn)
	}

	b.Configure(StateIdle).
		PermitIf(TriggerStart, StateBuilding, startGuard)

	b.Configure(StateBuilding).
		Permit(TriggerBeginRender, StateRendering).
		Permit(TriggerFail, StateFailed)

	b.Configure(StateRendering).
		PermitReentry(TriggerPageRendered).
		Permit(TriggerRenderComplete, StateAssembling).
		Permit(TriggerFail, StateFailed)

	b.Configure(StateAssembling).
		Permit(TriggerDeliver, StateDelivering).
		Permit(TriggerComplete, StateDone).
		Permit(TriggerFail, StateFailed)

	// delivery failures are not fatal: Delivering only ever completes
	b.Configure(StateDelivering).
		Permit(TriggerComplete, StateDone)

	return b.Build(StateIdle)
}
