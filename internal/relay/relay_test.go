package relay

import (
	"bytes"
	"log/slog"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meettimer/internal/bus"
	"meettimer/internal/core/message"
	"meettimer/internal/metrics"
)

func TestRelayObservesWithoutConsuming(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	reg := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(reg)

	hub := bus.NewHub(recorder)
	New(logger, recorder).Attach(hub)

	inbox, cancel := hub.Subscribe(bus.PopupTarget, 1)
	defer cancel()

	require.NoError(t, hub.Send(t.Context(), bus.PopupTarget, message.TimeUpdate(9)))
	assert.Equal(t, message.TimeUpdate(9), <-inbox)

	require.ErrorIs(t, hub.Send(t.Context(), "page-missing", message.ResetTimer()), bus.ErrNoRecipient)

	assert.Contains(t, buf.String(), "Message relayed")
	assert.Contains(t, buf.String(), "action=timeUpdate")
	assert.Contains(t, buf.String(), "delivered=false")

	count, err := testutil.GatherAndCount(reg, "meettimer_messages_relayed_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestLifecycleHooksLog(t *testing.T) {
	var buf bytes.Buffer
	relay := New(slog.New(slog.NewTextHandler(&buf, nil)), nil)

	relay.OnInstalled()
	relay.OnSuspend()

	assert.Contains(t, buf.String(), "installed")
	assert.Contains(t, buf.String(), "suspended")
	assert.Contains(t, buf.String(), "context=background")
}
