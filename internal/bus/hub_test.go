package bus

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meettimer/internal/core/message"
)

func TestSendWithoutRecipient(t *testing.T) {
	hub := NewHub(nil)

	err := hub.Send(t.Context(), PopupTarget, message.TimeUpdate(3))

	require.ErrorIs(t, err, ErrNoRecipient)
}

func TestSendDeliversToSubscribers(t *testing.T) {
	hub := NewHub(nil)
	first, cancelFirst := hub.Subscribe(PopupTarget, 2)
	defer cancelFirst()
	second, cancelSecond := hub.Subscribe(PopupTarget, 2)
	defer cancelSecond()

	require.NoError(t, hub.Send(t.Context(), PopupTarget, message.TimeUpdate(9)))

	assert.Equal(t, message.TimeUpdate(9), <-first)
	assert.Equal(t, message.TimeUpdate(9), <-second)
}

func TestSendDropsWhenInboxFull(t *testing.T) {
	hub := NewHub(nil)
	inbox, cancel := hub.Subscribe(PopupTarget, 1)
	defer cancel()

	require.NoError(t, hub.Send(t.Context(), PopupTarget, message.TimeUpdate(1)))
	var envelopes []Envelope
	hub.Tap(func(envelope Envelope) { envelopes = append(envelopes, envelope) })
	require.NoError(t, hub.Send(t.Context(), PopupTarget, message.TimeUpdate(2)))

	assert.Equal(t, message.TimeUpdate(1), <-inbox)
	require.Len(t, envelopes, 1)
	assert.False(t, envelopes[0].Delivered)
	select {
	case msg := <-inbox:
		t.Fatalf("unexpected message %+v", msg)
	default:
	}
}

func TestSendRejectsInvalidMessages(t *testing.T) {
	hub := NewHub(nil)
	_, cancel := hub.Subscribe(PopupTarget, 1)
	defer cancel()

	err := hub.Send(t.Context(), PopupTarget, message.Message{Action: "nope"})

	require.ErrorIs(t, err, message.ErrInvalid)
}

func TestUnsubscribeClosesInbox(t *testing.T) {
	hub := NewHub(nil)
	inbox, cancel := hub.Subscribe(PopupTarget, 1)

	cancel()
	cancel()

	_, open := <-inbox
	assert.False(t, open)
	require.ErrorIs(t, hub.Send(t.Context(), PopupTarget, message.ResetTimer()), ErrNoRecipient)
}

func TestTabsRegistry(t *testing.T) {
	hub := NewHub(nil)
	_, ok := hub.Active()
	assert.False(t, ok)

	meet := hub.Open("https://meet.google.com/abc")
	slides := hub.Open("https://docs.google.com/presentation/d/x/edit")
	assert.True(t, strings.HasPrefix(string(meet), "page-"))

	tab, ok := hub.Active()
	require.True(t, ok)
	assert.Equal(t, meet, tab.Target)

	require.True(t, hub.Activate(slides))
	hub.Navigate(slides, "https://docs.google.com/presentation/d/x/present")
	tab, ok = hub.Active()
	require.True(t, ok)
	assert.Equal(t, "https://docs.google.com/presentation/d/x/present", tab.URL)

	assert.False(t, hub.Activate("page-unknown"))
	assert.Len(t, hub.Tabs(), 2)

	hub.Close(slides)
	_, ok = hub.Active()
	assert.False(t, ok)
	assert.Len(t, hub.Tabs(), 1)
}

func TestTapsObserveSnapshotOfObservers(t *testing.T) {
	hub := NewHub(nil)
	var first, late int
	hub.Tap(func(Envelope) {
		first++
		if first == 1 {
			hub.Tap(func(Envelope) { late++ })
		}
	})

	require.ErrorIs(t, hub.Send(t.Context(), PopupTarget, message.ResetTimer()), ErrNoRecipient)
	assert.Equal(t, 1, first)
	assert.Equal(t, 0, late)

	require.ErrorIs(t, hub.Send(t.Context(), PopupTarget, message.ResetTimer()), ErrNoRecipient)
	assert.Equal(t, 2, first)
	assert.Equal(t, 1, late)
}
