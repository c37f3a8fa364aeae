package metrics

import (
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.IncCommand("page", "toggleTimer")
	pr.IncCommand("page", "toggleTimer")
	pr.IncRelayed("timeUpdate")
	pr.IncDropped("popup")
	pr.IncStoreError("get")
	pr.IncWidget(true)
	pr.IncWidget(false)
	pr.SetElapsedSeconds(301)

	assert.InDelta(t, 2, testutil.ToFloat64(pr.commands.WithLabelValues("page", "toggleTimer")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.widgets.WithLabelValues("mount")), 0)
	assert.InDelta(t, 301, testutil.ToFloat64(pr.elapsed), 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}

func TestOrNoop(t *testing.T) {
	recorder := OrNoop(nil)
	_, ok := recorder.(NoopRecorder)
	assert.True(t, ok)

	pr := NewPrometheusRecorder(nil)
	assert.Same(t, pr, OrNoop(pr))
}
