package storage

import (
	"context"
	"log/slog"

	"meettimer/internal/core/model"
	"meettimer/internal/logfields"
	"meettimer/internal/metrics"
)

// Safe guards every access to a possibly unavailable Store. Reads degrade
// to empty values and failed writes are dropped; neither is surfaced.
type Safe struct {
	store   Store
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewSafe wraps store, which may be nil.
func NewSafe(store Store, logger *slog.Logger, recorder metrics.Recorder) *Safe {
	if logger == nil {
		logger = slog.Default()
	}
	return &Safe{
		store:   store,
		logger:  logger,
		metrics: metrics.OrNoop(recorder),
	}
}

// Available reports whether a backing store is configured.
func (safe *Safe) Available() bool {
	return safe != nil && safe.store != nil
}

// Get reads keys, returning empty values when the store fails.
func (safe *Safe) Get(ctx context.Context, keys ...string) model.Values {
	if !safe.Available() {
		return model.Values{}
	}
	values, err := safe.store.Get(ctx, keys...)
	if err != nil {
		safe.metrics.IncStoreError("get")
		safe.logger.Debug("Store read degraded to defaults", logfields.Keys(keys), logfields.Error(err))
		return model.Values{}
	}
	return values
}

// Set writes values and reports whether the write succeeded.
func (safe *Safe) Set(ctx context.Context, values model.Values) bool {
	if !safe.Available() || len(values) == 0 {
		return false
	}
	if err := safe.store.Set(ctx, values); err != nil {
		safe.metrics.IncStoreError("set")
		safe.logger.Debug("Store write skipped", logfields.Error(err))
		return false
	}
	return true
}

// Load reads the whole TimerState with defaults for absent keys.
func (safe *Safe) Load(ctx context.Context) model.TimerState {
	return model.FromValues(safe.Get(ctx, model.AllKeys...))
}
