package popup

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"meettimer/internal/bus"
	"meettimer/internal/core/message"
	"meettimer/internal/core/model"
	"meettimer/internal/core/timekeeper"
	"meettimer/internal/core/visibility"
	"meettimer/internal/logfields"
	"meettimer/internal/metrics"
	"meettimer/internal/storage"
)

// Deps are the collaborators of the popup controller.
type Deps struct {
	Store      storage.Store
	Sender     bus.Sender
	Tabs       bus.Tabs
	View       View
	Classifier visibility.Classifier
	Clock      clockwork.Clock
	Logger     *slog.Logger
	Metrics    metrics.Recorder
}

// Controller mirrors the shared timer while the popup is open. It keeps
// its own copy and never waits for a page to confirm a command. It must
// be used from a single goroutine.
type Controller struct {
	store      *storage.Safe
	sender     bus.Sender
	tabs       bus.Tabs
	view       View
	classifier visibility.Classifier
	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    metrics.Recorder
	state      model.TimerState
}

// Open loads the stored timer and renders it.
func Open(ctx context.Context, deps Deps) *Controller {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(logfields.Context("popup"))
	recorder := metrics.OrNoop(deps.Metrics)
	classifier := deps.Classifier
	if classifier == (visibility.Classifier{}) {
		classifier = visibility.DefaultClassifier()
	}
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	controller := &Controller{
		store:      storage.NewSafe(deps.Store, logger, recorder),
		sender:     deps.Sender,
		tabs:       deps.Tabs,
		view:       deps.View,
		classifier: classifier,
		clock:      clock,
		logger:     logger,
		metrics:    recorder,
	}
	controller.Reload(ctx)
	return controller
}

// State returns the popup's copy.
func (controller *Controller) State() model.TimerState {
	return controller.state
}

// ViewModel returns the current view model.
func (controller *Controller) ViewModel() ViewModel {
	return Present(controller.state)
}

// Reload re-reads the store and renders.
func (controller *Controller) Reload(ctx context.Context) {
	controller.state = timekeeper.Recompute(controller.store.Load(ctx), controller.clock.Now())
	controller.render()
}

// IncreaseTarget adds a minute to the target.
func (controller *Controller) IncreaseTarget(ctx context.Context) {
	controller.state = timekeeper.IncreaseTarget(controller.state)
	controller.commit(ctx, controller.state.Values(model.KeyTargetMinutes), message.UpdateTarget(controller.state.TargetMinutes))
}

// DecreaseTarget removes a minute from the target. At zero it does nothing.
func (controller *Controller) DecreaseTarget(ctx context.Context) {
	if controller.state.TargetMinutes <= 0 {
		return
	}
	controller.state = timekeeper.DecreaseTarget(controller.state)
	controller.commit(ctx, controller.state.Values(model.KeyTargetMinutes), message.UpdateTarget(controller.state.TargetMinutes))
}

// ToggleRun starts, resumes or pauses. Starting is refused while no
// display target is selected. It persists the same keys a page does.
func (controller *Controller) ToggleRun(ctx context.Context) {
	now := controller.clock.Now()
	if controller.state.IsRunning {
		controller.state = timekeeper.Pause(controller.state, now)
		delta := controller.state.Values(model.KeyIsRunning, model.KeyCurrentSeconds)
		controller.commit(ctx, delta, message.ToggleTimer(false))
		return
	}
	if Present(controller.state).StartDisabled {
		return
	}
	controller.state = timekeeper.Run(controller.state, now)
	delta := controller.state.Values(model.KeyIsRunning, model.KeyStartTime, model.KeyPausedTime)
	controller.commit(ctx, delta, message.ToggleTimer(true))
}

// Reset stops the timer and clears elapsed time and its timestamps.
func (controller *Controller) Reset(ctx context.Context) {
	controller.state = timekeeper.Reset(controller.state)
	delta := controller.state.Values(model.KeyIsRunning, model.KeyCurrentSeconds, model.KeyStartTime, model.KeyPausedTime)
	controller.commit(ctx, delta, message.ResetTimer())
}

// SetShowOnMeet changes the call page toggle while the timer is idle.
func (controller *Controller) SetShowOnMeet(ctx context.Context, show bool) {
	if togglesLocked(controller.state) {
		controller.render()
		return
	}
	controller.state.ShowOnMeet = show
	controller.commitVisibility(ctx, model.KeyShowOnMeet)
}

// SetShowOnPresentation changes the slide deck toggle while the timer is idle.
func (controller *Controller) SetShowOnPresentation(ctx context.Context, show bool) {
	if togglesLocked(controller.state) {
		controller.render()
		return
	}
	controller.state.ShowOnPresentation = show
	controller.commitVisibility(ctx, model.KeyShowOnPresentation)
}

// Handle applies a message received from a page.
func (controller *Controller) Handle(msg message.Message) {
	if msg.Action != message.ActionTimeUpdate {
		return
	}
	if err := msg.Validate(); err != nil {
		controller.logger.Debug("Ignoring message", logfields.Error(err))
		return
	}
	controller.state.CurrentSeconds = msg.CurrentSeconds
	controller.render()
}

func (controller *Controller) commitVisibility(ctx context.Context, key string) {
	msg := message.UpdateVisibility(controller.state.ShowOnMeet, controller.state.ShowOnPresentation)
	controller.commit(ctx, controller.state.Values(key), msg)
}

func (controller *Controller) commit(ctx context.Context, delta model.Values, msg message.Message) {
	controller.metrics.IncCommand("popup", string(msg.Action))
	controller.store.Set(ctx, delta)
	controller.sendToActivePage(ctx, msg)
	controller.render()
}

func (controller *Controller) sendToActivePage(ctx context.Context, msg message.Message) {
	if controller.sender == nil || controller.tabs == nil {
		return
	}
	tab, ok := controller.tabs.Active()
	if !ok || !controller.classifier.Recognized(tab.URL) {
		return
	}
	err := controller.sender.Send(ctx, tab.Target, msg)
	if err != nil && !errors.Is(err, bus.ErrNoRecipient) {
		controller.logger.Debug("Command not delivered", logfields.Action(string(msg.Action)), logfields.Error(err))
	}
}

func (controller *Controller) render() {
	if controller.view == nil {
		return
	}
	controller.view.Render(Present(controller.state))
}
