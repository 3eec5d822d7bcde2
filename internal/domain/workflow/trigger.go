package workflow

// Trigger represents an event that can cause a state transition
type Trigger string

const (
	TriggerStart          Trigger = "START"
	TriggerBeginRender    Trigger = "BEGIN_RENDER"
	TriggerPageRendered   Trigger = "PAGE_RENDERED"
	TriggerRenderComplete Trigger = "RENDER_COMPLETE"
	TriggerDeliver        Trigger = "DELIVER"
	TriggerComplete       Trigger = "COMPLETE"
	TriggerFail           Trigger = "FAIL"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
