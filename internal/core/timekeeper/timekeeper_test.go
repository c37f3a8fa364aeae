package timekeeper

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meettimer/internal/core/model"
)

func newFakeKeeper(t *testing.T) (*Keeper, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	return New(clock), clock
}

func TestStartAndFastForwardPastTarget(t *testing.T) {
	keeper, clock := newFakeKeeper(t)
	keeper.SetTarget(5)

	keeper.Toggle(true)
	clock.Advance(301 * time.Second)
	keeper.Tick()

	assert.Equal(t, "05:01", Format(keeper.State().CurrentSeconds))
	change := keeper.Alarm()
	assert.True(t, change.Active)
	assert.True(t, change.Changed)
}

func TestPausedIntervalExcluded(t *testing.T) {
	keeper, clock := newFakeKeeper(t)

	keeper.Toggle(true)
	clock.Advance(10 * time.Second)
	keeper.Tick()
	keeper.Toggle(false)
	assert.Equal(t, "00:10", Format(keeper.State().CurrentSeconds))
	assert.Equal(t, PhasePaused, keeper.Phase())

	clock.Advance(20 * time.Second)
	assert.False(t, keeper.Tick())
	assert.Equal(t, "00:10", Format(keeper.State().CurrentSeconds))

	keeper.Toggle(true)
	clock.Advance(5 * time.Second)
	keeper.Tick()

	assert.Equal(t, "00:15", Format(keeper.State().CurrentSeconds))
}

func TestManyPauseResumeCyclesTrackRunningTime(t *testing.T) {
	keeper, clock := newFakeKeeper(t)
	running := time.Duration(0)

	for cycle := 0; cycle < 25; cycle++ {
		keeper.Toggle(true)
		for step := 0; step < 3; step++ {
			clock.Advance(time.Second)
			running += time.Second
			previous := keeper.State().CurrentSeconds
			keeper.Tick()
			require.GreaterOrEqual(t, keeper.State().CurrentSeconds, previous)
			require.Equal(t, int(running/time.Second), keeper.State().CurrentSeconds)
		}
		keeper.Toggle(false)
		clock.Advance(7 * time.Second)
		require.Equal(t, int(running/time.Second), keeper.State().CurrentSeconds)
	}
}

func TestTickSurvivesSuspension(t *testing.T) {
	keeper, clock := newFakeKeeper(t)
	keeper.Toggle(true)

	clock.Advance(90 * time.Minute)
	keeper.Tick()

	assert.Equal(t, "90:00", Format(keeper.State().CurrentSeconds))
}

func TestResetPreservesTargetAndFlags(t *testing.T) {
	keeper, clock := newFakeKeeper(t)
	keeper.SetTarget(2)
	keeper.SetVisibility(false, true)
	keeper.Toggle(true)
	clock.Advance(200 * time.Second)
	keeper.Tick()
	require.True(t, keeper.Alarm().Active)

	persist := keeper.Reset()

	state := keeper.State()
	assert.Equal(t, 0, state.CurrentSeconds)
	assert.False(t, state.IsRunning)
	assert.False(t, state.HasStart())
	assert.Equal(t, time.Duration(0), state.PausedTime)
	assert.Equal(t, 2, state.TargetMinutes)
	assert.False(t, state.ShowOnMeet)
	assert.True(t, state.ShowOnPresentation)
	assert.Nil(t, persist[model.KeyStartTime])
	assert.Equal(t, PhaseIdle, keeper.Phase())
	assert.False(t, keeper.Alarm().Changed)
}

func TestAlarmPredicateAtBoundary(t *testing.T) {
	cases := []struct {
		name    string
		target  int
		seconds int
		want    bool
	}{
		{name: "no target", target: 0, seconds: 10_000, want: false},
		{name: "just below", target: 1, seconds: 59, want: false},
		{name: "exactly at", target: 1, seconds: 60, want: true},
		{name: "above", target: 1, seconds: 61, want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			state := model.DefaultState()
			state.TargetMinutes = tc.target
			state.CurrentSeconds = tc.seconds
			assert.Equal(t, tc.want, Alarm(state))
		})
	}
}

func TestAlarmNoHysteresis(t *testing.T) {
	keeper, clock := newFakeKeeper(t)
	keeper.SetTarget(1)
	keeper.Toggle(true)

	clock.Advance(59 * time.Second)
	keeper.Tick()
	assert.Equal(t, AlarmChange{Active: false, Changed: false}, keeper.Alarm())

	clock.Advance(time.Second)
	keeper.Tick()
	assert.Equal(t, AlarmChange{Active: true, Changed: true}, keeper.Alarm())

	keeper.SetTarget(2)
	assert.Equal(t, AlarmChange{Active: false, Changed: true}, keeper.Alarm())

	keeper.SetTarget(1)
	assert.Equal(t, AlarmChange{Active: true, Changed: true}, keeper.Alarm())
}

func TestDecreaseTargetFloorsAtZero(t *testing.T) {
	state := model.DefaultState()

	state = DecreaseTarget(state)
	assert.Equal(t, 0, state.TargetMinutes)

	for i := 0; i < 500; i++ {
		state = IncreaseTarget(state)
	}
	assert.Equal(t, 500, state.TargetMinutes)
}

func TestLoadRecomputesRunningState(t *testing.T) {
	keeper, clock := newFakeKeeper(t)
	stored := model.DefaultState()
	stored.IsRunning = true
	stored.StartTime = clock.Now().Add(-42 * time.Second)
	stored.CurrentSeconds = 3

	repaired := keeper.Load(stored)

	assert.Nil(t, repaired)
	assert.Equal(t, 42, keeper.State().CurrentSeconds)
}

func TestLoadAnchorsRunningStateWithoutStart(t *testing.T) {
	keeper, clock := newFakeKeeper(t)
	stored := model.DefaultState()
	stored.IsRunning = true
	stored.CurrentSeconds = 30

	repaired := keeper.Load(stored)

	require.NotNil(t, repaired)
	assert.True(t, keeper.State().IsRunning)
	assert.True(t, keeper.State().StartTime.Equal(clock.Now().Add(-30*time.Second)))
	clock.Advance(5 * time.Second)
	keeper.Tick()
	assert.Equal(t, 35, keeper.State().CurrentSeconds)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "00:00", Format(0))
	assert.Equal(t, "00:00", Format(-4))
	assert.Equal(t, "01:05", Format(65))
	assert.Equal(t, "100:00", Format(6000))
}

func TestPhaseOf(t *testing.T) {
	state := model.DefaultState()
	assert.Equal(t, PhaseIdle, PhaseOf(state))
	state.CurrentSeconds = 3
	assert.Equal(t, PhasePaused, PhaseOf(state))
	state.IsRunning = true
	assert.Equal(t, PhaseRunning, PhaseOf(state))
}
