package timekeeper

// Phase represents the current timer mode.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseRunning Phase = "running"
	PhasePaused  Phase = "paused"
)

// AlarmChange describes a transition of the alarm visual state.
type AlarmChange struct {
	Active  bool
	Changed bool
}
