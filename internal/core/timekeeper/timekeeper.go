package timekeeper

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"meettimer/internal/core/model"
)

// PhaseOf classifies a state.
func PhaseOf(state model.TimerState) Phase {
	switch {
	case state.IsRunning:
		return PhaseRunning
	case state.CurrentSeconds > 0:
		return PhasePaused
	default:
		return PhaseIdle
	}
}

// Elapsed derives whole elapsed seconds from the stored timestamps.
func Elapsed(state model.TimerState, now time.Time) int {
	if !state.HasStart() {
		return state.CurrentSeconds
	}
	elapsed := now.Sub(state.StartTime) + state.PausedTime
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / time.Second)
}

// Recompute refreshes CurrentSeconds while running.
func Recompute(state model.TimerState, now time.Time) model.TimerState {
	if state.IsRunning && state.HasStart() {
		state.CurrentSeconds = Elapsed(state, now)
	}
	return state
}

// Run starts an idle timer or resumes a paused one.
// Resuming anchors StartTime so the elapsed formula reproduces CurrentSeconds at now.
func Run(state model.TimerState, now time.Time) model.TimerState {
	if state.IsRunning {
		return state
	}
	if !state.HasStart() && state.CurrentSeconds == 0 {
		state.StartTime = now
	} else {
		state.StartTime = now.Add(-time.Duration(state.CurrentSeconds) * time.Second)
	}
	state.PausedTime = 0
	state.IsRunning = true
	return state
}

// Pause freezes CurrentSeconds at its value for now.
func Pause(state model.TimerState, now time.Time) model.TimerState {
	if !state.IsRunning {
		return state
	}
	state = Recompute(state, now)
	state.IsRunning = false
	return state
}

// Reset returns to idle, keeping the target and visibility flags.
func Reset(state model.TimerState) model.TimerState {
	state.IsRunning = false
	state.CurrentSeconds = 0
	state.StartTime = time.Time{}
	state.PausedTime = 0
	return state
}

// Alarm reports whether the elapsed time has reached a non-zero target.
func Alarm(state model.TimerState) bool {
	return state.TargetMinutes > 0 && state.CurrentSeconds >= state.TargetMinutes*60
}

// SetTarget sets the alarm threshold, flooring at zero.
func SetTarget(state model.TimerState, minutes int) model.TimerState {
	if minutes < 0 {
		minutes = 0
	}
	state.TargetMinutes = minutes
	return state
}

// IncreaseTarget adds one minute. There is no upper bound.
func IncreaseTarget(state model.TimerState) model.TimerState {
	return SetTarget(state, state.TargetMinutes+1)
}

// DecreaseTarget removes one minute and stays at zero.
func DecreaseTarget(state model.TimerState) model.TimerState {
	return SetTarget(state, state.TargetMinutes-1)
}

// Format renders seconds as MM:SS. Minutes are not wrapped.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Keeper owns one in-memory timer copy and the sticky alarm flag.
// It is not safe for concurrent use; each context drives its own Keeper.
type Keeper struct {
	clock    clockwork.Clock
	state    model.TimerState
	alarming bool
}

// New creates a Keeper in the default state.
func New(clock clockwork.Clock) *Keeper {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Keeper{
		clock: clock,
		state: model.DefaultState(),
	}
}

// State returns a copy of the current state.
func (keeper *Keeper) State() model.TimerState {
	return keeper.state
}

// Phase returns the current phase.
func (keeper *Keeper) Phase() Phase {
	return PhaseOf(keeper.state)
}

// Load replaces the state with a stored snapshot and recomputes elapsed time.
// A running snapshot without a start time is anchored at now. The returned
// values must be persisted when non-empty.
func (keeper *Keeper) Load(state model.TimerState) model.Values {
	now := keeper.clock.Now()
	var repaired model.Values
	if state.IsRunning && !state.HasStart() {
		state.IsRunning = false
		state = Run(state, now)
		repaired = state.Values(model.KeyStartTime, model.KeyPausedTime)
	}
	keeper.state = Recompute(state, now)
	return repaired
}

// Toggle starts, resumes or pauses. It returns the values to persist.
func (keeper *Keeper) Toggle(running bool) model.Values {
	now := keeper.clock.Now()
	if running {
		keeper.state = Run(keeper.state, now)
		return keeper.state.Values(model.KeyIsRunning, model.KeyStartTime, model.KeyPausedTime)
	}
	keeper.state = Pause(keeper.state, now)
	return keeper.state.Values(model.KeyIsRunning, model.KeyCurrentSeconds)
}

// Reset returns to idle and clears the alarm. It returns the values to persist.
func (keeper *Keeper) Reset() model.Values {
	keeper.state = Reset(keeper.state)
	keeper.alarming = false
	return keeper.state.Values(model.KeyIsRunning, model.KeyCurrentSeconds, model.KeyStartTime, model.KeyPausedTime)
}

// SetTarget updates the alarm threshold.
func (keeper *Keeper) SetTarget(minutes int) {
	keeper.state = SetTarget(keeper.state, minutes)
}

// SetVisibility updates both visibility toggles.
func (keeper *Keeper) SetVisibility(showOnMeet, showOnPresentation bool) {
	keeper.state.ShowOnMeet = showOnMeet
	keeper.state.ShowOnPresentation = showOnPresentation
}

// Tick recomputes elapsed seconds and reports whether the value changed.
func (keeper *Keeper) Tick() bool {
	if !keeper.state.IsRunning {
		return false
	}
	previous := keeper.state.CurrentSeconds
	keeper.state = Recompute(keeper.state, keeper.clock.Now())
	return keeper.state.CurrentSeconds != previous
}

// Alarm evaluates the alarm predicate against the sticky flag.
func (keeper *Keeper) Alarm() AlarmChange {
	active := Alarm(keeper.state)
	changed := active != keeper.alarming
	keeper.alarming = active
	return AlarmChange{Active: active, Changed: changed}
}
