// Package message defines the action-tagged records exchanged between the
// popup and page contexts.
package message

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalid indicates a malformed message.
var ErrInvalid = errors.New("invalid message")

// Action tags a message.
type Action string

const (
	ActionUpdateTarget     Action = "updateTarget"
	ActionToggleTimer      Action = "toggleTimer"
	ActionResetTimer       Action = "resetTimer"
	ActionUpdateVisibility Action = "updateVisibility"
	ActionTimeUpdate       Action = "timeUpdate"
)

// Message is a self-contained instruction or notification.
type Message struct {
	Action             Action `json:"action"`
	TargetMinutes      int    `json:"targetMinutes"`
	IsRunning          bool   `json:"isRunning"`
	ShowOnMeet         bool   `json:"showOnMeet"`
	ShowOnPresentation bool   `json:"showOnPresentation"`
	CurrentSeconds     int    `json:"currentSeconds"`
}

// MarshalJSON emits only the fields that belong to the action.
func (msg Message) MarshalJSON() ([]byte, error) {
	fields := map[string]any{"action": msg.Action}
	switch msg.Action {
	case ActionUpdateTarget:
		fields["targetMinutes"] = msg.TargetMinutes
	case ActionToggleTimer:
		fields["isRunning"] = msg.IsRunning
	case ActionUpdateVisibility:
		fields["showOnMeet"] = msg.ShowOnMeet
		fields["showOnPresentation"] = msg.ShowOnPresentation
	case ActionTimeUpdate:
		fields["currentSeconds"] = msg.CurrentSeconds
	}
	return json.Marshal(fields)
}

// UpdateTarget builds an updateTarget command.
func UpdateTarget(minutes int) Message {
	return Message{Action: ActionUpdateTarget, TargetMinutes: minutes}
}

// ToggleTimer builds a toggleTimer command.
func ToggleTimer(running bool) Message {
	return Message{Action: ActionToggleTimer, IsRunning: running}
}

// ResetTimer builds a resetTimer command.
func ResetTimer() Message {
	return Message{Action: ActionResetTimer}
}

// UpdateVisibility builds an updateVisibility command.
func UpdateVisibility(showOnMeet, showOnPresentation bool) Message {
	return Message{Action: ActionUpdateVisibility, ShowOnMeet: showOnMeet, ShowOnPresentation: showOnPresentation}
}

// TimeUpdate builds the page to popup elapsed-time notification.
func TimeUpdate(seconds int) Message {
	return Message{Action: ActionTimeUpdate, CurrentSeconds: seconds}
}

// Validate checks the action tag and numeric ranges.
func (msg Message) Validate() error {
	switch msg.Action {
	case ActionUpdateTarget:
		if msg.TargetMinutes < 0 {
			return fmt.Errorf("%w: negative target %d", ErrInvalid, msg.TargetMinutes)
		}
	case ActionTimeUpdate:
		if msg.CurrentSeconds < 0 {
			return fmt.Errorf("%w: negative seconds %d", ErrInvalid, msg.CurrentSeconds)
		}
	case ActionToggleTimer, ActionResetTimer, ActionUpdateVisibility:
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalid, msg.Action)
	}
	return nil
}

// IsCommand reports whether the message is sent popup to page.
func (msg Message) IsCommand() bool {
	return msg.Action != ActionTimeUpdate
}
