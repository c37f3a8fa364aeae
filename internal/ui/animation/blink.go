// Package animation drives time-based visual effects for the overlay.
package animation

import (
	"context"
	"sync"
	"time"
)

// BlinkConfig times one on/off cycle.
type BlinkConfig struct {
	On  time.Duration
	Off time.Duration
}

// DefaultBlinkConfig pulses the alarm once a second.
func DefaultBlinkConfig() BlinkConfig {
	return BlinkConfig{On: 600 * time.Millisecond, Off: 400 * time.Millisecond}
}

// Blinker toggles a visual flag until stopped. Stopping always leaves the
// flag on, so an alarm stays visible between pulses.
type Blinker struct {
	mu     sync.Mutex
	config BlinkConfig
	apply  func(on bool)
	cancel context.CancelFunc
	done   chan struct{}
}

// NewBlinker creates a Blinker calling apply on every transition.
func NewBlinker(config BlinkConfig, apply func(on bool)) *Blinker {
	return &Blinker{config: config, apply: apply}
}

// Start begins blinking. Calling Start while running is a no-op.
func (blinker *Blinker) Start(ctx context.Context) {
	blinker.mu.Lock()
	defer blinker.mu.Unlock()
	if blinker.cancel != nil {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	blinker.cancel = cancel
	blinker.done = make(chan struct{})
	go blinker.run(runCtx, blinker.done)
}

// Stop ends blinking and waits for the loop to exit.
func (blinker *Blinker) Stop() {
	blinker.mu.Lock()
	cancel, done := blinker.cancel, blinker.done
	blinker.cancel, blinker.done = nil, nil
	blinker.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the loop is active.
func (blinker *Blinker) Running() bool {
	blinker.mu.Lock()
	defer blinker.mu.Unlock()
	return blinker.cancel != nil
}

func (blinker *Blinker) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer blinker.apply(true)
	for {
		blinker.apply(true)
		if !sleepWithContext(ctx, blinker.config.On) {
			return
		}
		blinker.apply(false)
		if !sleepWithContext(ctx, blinker.config.Off) {
			return
		}
	}
}

func sleepWithContext(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
