package storage

import (
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"meettimer/internal/core/model"
	"meettimer/internal/metrics"
)

func TestSafeWithNilStore(t *testing.T) {
	safe := NewSafe(nil, nil, nil)

	assert.False(t, safe.Available())
	assert.Empty(t, safe.Get(t.Context(), model.KeyIsRunning))
	assert.False(t, safe.Set(t.Context(), model.Values{model.KeyIsRunning: true}))
	assert.Equal(t, model.DefaultState(), safe.Load(t.Context()))
}

func TestSafeDegradesWhenOffline(t *testing.T) {
	reg := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(reg)
	store := NewMemoryStore()
	safe := NewSafe(store, nil, recorder)

	assert.True(t, safe.Set(t.Context(), model.Values{model.KeyTargetMinutes: 4}))
	store.SetOffline(true)

	assert.Equal(t, model.DefaultState(), safe.Load(t.Context()))
	assert.False(t, safe.Set(t.Context(), model.Values{model.KeyTargetMinutes: 5}))

	count, err := testutil.GatherAndCount(reg, "meettimer_store_errors_total")
	assert.NoError(t, err)
	assert.Equal(t, 2, count)

	store.SetOffline(false)
	assert.Equal(t, 4, safe.Load(t.Context()).TargetMinutes)
}

func TestSafeSkipsEmptyWrites(t *testing.T) {
	safe := NewSafe(NewMemoryStore(), nil, nil)
	assert.False(t, safe.Set(t.Context(), nil))
}
