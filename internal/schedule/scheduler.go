package schedule

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
)

// Scheduler wraps a gocron scheduler for periodic tasks and a clock for
// one-shot delays.
type Scheduler struct {
	scheduler gocron.Scheduler
	clock     clockwork.Clock
}

// New creates a scheduler driven by clock, or the wall clock when nil.
func New(clock clockwork.Clock) (*Scheduler, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	s, err := gocron.NewScheduler(gocron.WithClock(clock))
	if err != nil {
		return nil, fmt.Errorf("create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s, clock: clock}, nil
}

// Start begins running registered jobs.
func (s *Scheduler) Start() {
	s.scheduler.Start()
}

// Stop shuts down the scheduler and waits for running jobs.
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}

// Every runs task at interval until the returned cancel function is called.
// A run that is still in progress when the next one is due is skipped.
func (s *Scheduler) Every(name string, interval time.Duration, task func()) (func(), error) {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s job: %w", name, err)
	}
	id := job.ID()
	return func() {
		if err := s.scheduler.RemoveJob(id); err != nil {
			slog.Debug("Scheduled job already removed", "job", name, "error", err)
		}
	}, nil
}

// After runs task once after delay unless cancelled first.
func (s *Scheduler) After(delay time.Duration, task func()) func() {
	timer := s.clock.AfterFunc(delay, task)
	return func() {
		timer.Stop()
	}
}

// Jobs returns the number of registered periodic jobs.
func (s *Scheduler) Jobs() int {
	return len(s.scheduler.Jobs())
}
