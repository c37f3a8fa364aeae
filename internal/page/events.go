package page

import "meettimer/internal/core/message"

// Trigger names an event source that asks for visibility re-evaluation.
type Trigger string

const (
	TriggerLoad       Trigger = "load"
	TriggerMutation   Trigger = "mutation"
	TriggerURLChange  Trigger = "url_change"
	TriggerFullscreen Trigger = "fullscreen"
	TriggerFocus      Trigger = "focus"
	TriggerPoll       Trigger = "poll"
	TriggerMessage    Trigger = "message"
)

// EventKind defines the type of controller event.
type EventKind int

const (
	EventTrigger EventKind = iota
	EventReevaluate
	EventTick
	EventMessage
)

// Event is one unit of work for the controller's dispatch loop.
type Event struct {
	Kind    EventKind
	Trigger Trigger
	Message message.Message
}
