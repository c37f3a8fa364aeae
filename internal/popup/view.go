package popup

import (
	"fmt"

	"meettimer/internal/core/model"
	"meettimer/internal/core/timekeeper"
)

// Status lines shown under the controls.
const (
	StatusRunning   = "Timer running"
	StatusPaused    = "Timer paused"
	StatusNoTarget  = "Select where to show timer"
	StatusReady     = "Timer ready"
	StartLabelStart = "Start"
	StartLabelPause = "Pause"
)

// ViewModel is everything the popup surface renders.
type ViewModel struct {
	TargetLabel        string
	CurrentLabel       string
	StartLabel         string
	StartDisabled      bool
	TogglesDisabled    bool
	ShowOnMeet         bool
	ShowOnPresentation bool
	Status             string
}

// View renders a ViewModel.
type View interface {
	Render(view ViewModel)
}

// ViewFunc adapts a function to View.
type ViewFunc func(view ViewModel)

// Render calls fn.
func (fn ViewFunc) Render(view ViewModel) {
	fn(view)
}

// Present derives the view model from a timer copy.
func Present(state model.TimerState) ViewModel {
	anyTarget := state.ShowOnMeet || state.ShowOnPresentation
	view := ViewModel{
		TargetLabel:        fmt.Sprintf("%d min", state.TargetMinutes),
		CurrentLabel:       timekeeper.Format(state.CurrentSeconds),
		StartLabel:         StartLabelStart,
		StartDisabled:      !anyTarget,
		TogglesDisabled:    togglesLocked(state),
		ShowOnMeet:         state.ShowOnMeet,
		ShowOnPresentation: state.ShowOnPresentation,
	}
	if state.IsRunning {
		view.StartLabel = StartLabelPause
	}

	switch {
	case state.IsRunning:
		view.Status = StatusRunning
	case state.CurrentSeconds > 0:
		view.Status = StatusPaused
	case !anyTarget:
		view.Status = StatusNoTarget
	default:
		view.Status = StatusReady
	}
	return view
}

func togglesLocked(state model.TimerState) bool {
	return state.IsRunning || state.CurrentSeconds > 0
}
