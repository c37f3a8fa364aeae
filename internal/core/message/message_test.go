package message

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		msg     Message
		wantErr bool
	}{
		{name: "target", msg: UpdateTarget(3)},
		{name: "negative target", msg: UpdateTarget(-1), wantErr: true},
		{name: "toggle", msg: ToggleTimer(true)},
		{name: "reset", msg: ResetTimer()},
		{name: "visibility", msg: UpdateVisibility(false, true)},
		{name: "time update", msg: TimeUpdate(12)},
		{name: "negative seconds", msg: TimeUpdate(-2), wantErr: true},
		{name: "unknown", msg: Message{Action: "launchRocket"}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.msg.Validate()
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalid)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestWireShape(t *testing.T) {
	data, err := json.Marshal(UpdateTarget(4))
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"updateTarget","targetMinutes":4}`, string(data))

	data, err = json.Marshal(ResetTimer())
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"resetTimer"}`, string(data))

	data, err = json.Marshal(ToggleTimer(false))
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"toggleTimer","isRunning":false}`, string(data))

	var decoded Message
	require.NoError(t, json.Unmarshal([]byte(`{"action":"updateVisibility","showOnMeet":true,"showOnPresentation":false}`), &decoded))
	assert.Equal(t, UpdateVisibility(true, false), decoded)
}

func TestIsCommand(t *testing.T) {
	assert.True(t, ToggleTimer(false).IsCommand())
	assert.False(t, TimeUpdate(1).IsCommand())
}
