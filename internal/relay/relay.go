// Package relay is the background context. It observes traffic on the bus
// without consuming or altering it, and owns the lifecycle hooks.
package relay

import (
	"log/slog"

	"meettimer/internal/bus"
	"meettimer/internal/logfields"
	"meettimer/internal/metrics"
)

// Tapper accepts bus observers.
type Tapper interface {
	Tap(observer func(bus.Envelope))
}

// Relay forwards nothing itself; delivery stays with the bus.
type Relay struct {
	logger  *slog.Logger
	metrics metrics.Recorder
}

// New creates a Relay.
func New(logger *slog.Logger, recorder metrics.Recorder) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{
		logger:  logger.With(logfields.Context("background")),
		metrics: metrics.OrNoop(recorder),
	}
}

// Attach registers the relay as an observer on tapper.
func (relay *Relay) Attach(tapper Tapper) {
	tapper.Tap(relay.observe)
}

// OnInstalled runs once when the host starts.
func (relay *Relay) OnInstalled() {
	relay.logger.Info("Meeting timer installed")
}

// OnSuspend runs when the host shuts down.
func (relay *Relay) OnSuspend() {
	relay.logger.Info("Meeting timer suspended")
}

func (relay *Relay) observe(envelope bus.Envelope) {
	relay.metrics.IncRelayed(string(envelope.Message.Action))
	relay.logger.Debug("Message relayed",
		logfields.Target(string(envelope.To)),
		logfields.Action(string(envelope.Message.Action)),
		slog.Bool("delivered", envelope.Delivered))
}
