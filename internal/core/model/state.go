package model

import (
	"encoding/json"
	"math"
	"time"
)

// Persisted key names.
const (
	KeyTargetMinutes      = "targetMinutes"
	KeyIsRunning          = "isRunning"
	KeyCurrentSeconds     = "currentSeconds"
	KeyStartTime          = "startTime"
	KeyPausedTime         = "pausedTime"
	KeyShowOnMeet         = "showOnMeet"
	KeyShowOnPresentation = "showOnPresentation"
)

// AllKeys lists every persisted key in a stable order.
var AllKeys = []string{
	KeyTargetMinutes,
	KeyIsRunning,
	KeyCurrentSeconds,
	KeyStartTime,
	KeyPausedTime,
	KeyShowOnMeet,
	KeyShowOnPresentation,
}

// Values is a flat key-value snapshot as exchanged with a store.
// A nil value marks a key as absent.
type Values map[string]any

// TimerState is the shared timer record. StartTime is zero when absent.
type TimerState struct {
	TargetMinutes      int
	IsRunning          bool
	CurrentSeconds     int
	StartTime          time.Time
	PausedTime         time.Duration
	ShowOnMeet         bool
	ShowOnPresentation bool
}

// DefaultState returns the state used for absent keys.
func DefaultState() TimerState {
	return TimerState{
		ShowOnMeet:         true,
		ShowOnPresentation: true,
	}
}

// HasStart reports whether a start time is recorded.
func (state TimerState) HasStart() bool {
	return !state.StartTime.IsZero()
}

// Values encodes the requested keys, or every key when none are given.
func (state TimerState) Values(keys ...string) Values {
	if len(keys) == 0 {
		keys = AllKeys
	}
	values := make(Values, len(keys))
	for _, key := range keys {
		switch key {
		case KeyTargetMinutes:
			values[key] = state.TargetMinutes
		case KeyIsRunning:
			values[key] = state.IsRunning
		case KeyCurrentSeconds:
			values[key] = state.CurrentSeconds
		case KeyStartTime:
			if state.HasStart() {
				values[key] = state.StartTime.UnixMilli()
			} else {
				values[key] = nil
			}
		case KeyPausedTime:
			values[key] = state.PausedTime.Milliseconds()
		case KeyShowOnMeet:
			values[key] = state.ShowOnMeet
		case KeyShowOnPresentation:
			values[key] = state.ShowOnPresentation
		}
	}
	return values
}

// FromValues decodes a snapshot, applying defaults for absent or malformed keys.
func FromValues(values Values) TimerState {
	state := DefaultState()
	state.Apply(values)
	return state
}

// Apply overwrites the fields present in values.
func (state *TimerState) Apply(values Values) {
	for key, raw := range values {
		switch key {
		case KeyTargetMinutes:
			state.TargetMinutes = intValue(raw)
		case KeyIsRunning:
			state.IsRunning = boolValue(raw, false)
		case KeyCurrentSeconds:
			state.CurrentSeconds = intValue(raw)
		case KeyStartTime:
			if millis := int64Value(raw); millis > 0 {
				state.StartTime = time.UnixMilli(millis)
			} else {
				state.StartTime = time.Time{}
			}
		case KeyPausedTime:
			state.PausedTime = time.Duration(int64Value(raw)) * time.Millisecond
		case KeyShowOnMeet:
			state.ShowOnMeet = boolValue(raw, true)
		case KeyShowOnPresentation:
			state.ShowOnPresentation = boolValue(raw, true)
		}
	}
}

func intValue(raw any) int {
	value := int64Value(raw)
	if value > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(value)
}

func int64Value(raw any) int64 {
	var value int64
	switch typed := raw.(type) {
	case int:
		value = int64(typed)
	case int32:
		value = int64(typed)
	case int64:
		value = typed
	case uint64:
		if typed > math.MaxInt64 {
			return math.MaxInt64
		}
		value = int64(typed)
	case float64:
		value = int64(typed)
	case json.Number:
		parsed, err := typed.Int64()
		if err != nil {
			floatValue, floatErr := typed.Float64()
			if floatErr != nil {
				return 0
			}
			parsed = int64(floatValue)
		}
		value = parsed
	default:
		return 0
	}
	if value < 0 {
		return 0
	}
	return value
}

func boolValue(raw any, fallback bool) bool {
	typed, ok := raw.(bool)
	if !ok {
		return fallback
	}
	return typed
}
